package sas

import (
	"crypto/hmac"
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/util/memzero"
)

const (
	// BytesLength is the number of bytes Bytes derives: enough for seven
	// 6-bit emoji indices or three 13-bit decimals.
	BytesLength  = 6
	macKeyLength = 32
)

// Curve25519PublicKey is the ephemeral key exchanged with the peer.
type Curve25519PublicKey = crypto.Curve25519PublicKey

// Sas holds an ephemeral key pair until the peer's key is accepted.
type Sas struct {
	key  crypto.Curve25519KeyPair
	used bool
}

// New generates a fresh ephemeral key pair.
func New() (*Sas, error) {
	kp, err := crypto.GenerateCurve25519()
	if err != nil {
		return nil, err
	}
	return &Sas{key: kp}, nil
}

// PublicKey is the key to send to the other side.
func (s *Sas) PublicKey() Curve25519PublicKey { return s.key.Public }

// DiffieHellman agrees on a shared secret with the peer. It succeeds at most
// once; the ephemeral secret is wiped after the first call either way.
func (s *Sas) DiffieHellman(their Curve25519PublicKey) (*EstablishedSas, error) {
	if s.used {
		return nil, domain.ErrSasAlreadyUsed
	}
	s.used = true
	defer s.key.Wipe()

	shared, err := s.key.Secret.DiffieHellman(their)
	if err != nil {
		return nil, fmt.Errorf("sas: %w", err)
	}
	return &EstablishedSas{
		shared: shared,
		ours:   s.key.Public,
		theirs: their,
	}, nil
}

// DiffieHellmanWithRaw is DiffieHellman for a base64 encoded peer key.
func (s *Sas) DiffieHellmanWithRaw(their string) (*EstablishedSas, error) {
	if s.used {
		return nil, domain.ErrSasAlreadyUsed
	}
	pub, err := crypto.Curve25519PublicKeyFromBase64(their)
	if err != nil {
		return nil, fmt.Errorf("sas: %w", err)
	}
	return s.DiffieHellman(pub)
}

// EstablishedSas holds the shared secret of a completed exchange.
type EstablishedSas struct {
	shared [32]byte
	ours   Curve25519PublicKey
	theirs Curve25519PublicKey
}

// OurPublicKey is the local ephemeral key.
func (e *EstablishedSas) OurPublicKey() Curve25519PublicKey { return e.ours }

// TheirPublicKey is the peer's ephemeral key.
func (e *EstablishedSas) TheirPublicKey() Curve25519PublicKey { return e.theirs }

// Bytes derives the short authentication string for info. Both sides must
// use the same info, which usually binds the user and device ids and the
// transaction.
func (e *EstablishedSas) Bytes(info string) SasBytes {
	var b SasBytes
	out := crypto.Expand(e.shared[:], nil, []byte(info), BytesLength)
	copy(b[:], out)
	memzero.Zero(out)
	return b
}

// CalculateMac returns the unpadded base64 MAC of input under a key derived
// from the shared secret and info.
func (e *EstablishedSas) CalculateMac(input, info string) string {
	return crypto.B64(e.mac(input, info))
}

// CalculateMacInvalidBase64 is CalculateMac with the base64 encoding libolm
// produced before it was fixed. Only use it to talk to such clients.
func (e *EstablishedSas) CalculateMacInvalidBase64(input, info string) string {
	return libolmBase64(e.mac(input, info))
}

// VerifyMac checks tag against the MAC of input. It returns ErrMacMismatch
// unless they are equal.
func (e *EstablishedSas) VerifyMac(input, info, tag string) error {
	got, err := crypto.DecodeB64(tag)
	if err != nil {
		return fmt.Errorf("sas mac: %w", domain.ErrDecode)
	}
	if !hmac.Equal(got, e.mac(input, info)) {
		return domain.ErrMacMismatch
	}
	return nil
}

// Wipe zeroes the shared secret.
func (e *EstablishedSas) Wipe() { memzero.Zero32(&e.shared) }

func (e *EstablishedSas) mac(input, info string) []byte {
	key := crypto.Expand(e.shared[:], nil, []byte(info), macKeyLength)
	defer memzero.Zero(key)
	return crypto.HMACSHA256(key, []byte(input))
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// libolmBase64 reproduces libolm encoding a MAC into the buffer that still
// held it. Output overwrites input that has not been read yet, so everything
// after the first few characters differs from real base64.
func libolmBase64(in []byte) string {
	n := len(in)
	outLen := n / 3 * 4
	switch n % 3 {
	case 1:
		outLen += 2
	case 2:
		outLen += 3
	}
	buf := make([]byte, max(n, outLen)+1)
	copy(buf, in)

	pos, out := 0, 0
	for end := n / 3 * 3; pos != end; pos, out = pos+3, out+4 {
		v := uint(buf[pos])<<16 | uint(buf[pos+1])<<8 | uint(buf[pos+2])
		buf[out+3] = base64Alphabet[v&0x3F]
		buf[out+2] = base64Alphabet[(v>>6)&0x3F]
		buf[out+1] = base64Alphabet[(v>>12)&0x3F]
		buf[out] = base64Alphabet[v>>18]
	}
	switch n - pos {
	case 2:
		v := (uint(buf[pos])<<8 | uint(buf[pos+1])) << 2
		buf[out+2] = base64Alphabet[v&0x3F]
		buf[out+1] = base64Alphabet[(v>>6)&0x3F]
		buf[out] = base64Alphabet[v>>12]
	case 1:
		v := uint(buf[pos]) << 4
		buf[out+1] = base64Alphabet[v&0x3F]
		buf[out] = base64Alphabet[v>>6]
	}
	return string(buf[:outLen])
}
