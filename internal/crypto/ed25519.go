package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"olmcore/internal/domain"
	"olmcore/internal/util/memzero"
)

const (
	Ed25519PublicKeySize = ed25519.PublicKeySize
	Ed25519SignatureSize = ed25519.SignatureSize
	// Ed25519ExpandedKeySize is the clamped scalar followed by the nonce
	// prefix, the form libolm stores private signing keys in.
	Ed25519ExpandedKeySize = 64
)

// Ed25519PublicKey is an Ed25519 signing public key.
type Ed25519PublicKey [Ed25519PublicKeySize]byte

// Slice returns the key as a []byte.
func (p Ed25519PublicKey) Slice() []byte { return p[:] }

// ToBase64 returns the unpadded base64 form of the key.
func (p Ed25519PublicKey) ToBase64() string { return B64(p[:]) }

// String implements fmt.Stringer.
func (p Ed25519PublicKey) String() string { return p.ToBase64() }

// Verify checks sig over msg.
func (p Ed25519PublicKey) Verify(msg []byte, sig Ed25519Signature) error {
	if !ed25519.Verify(p[:], msg, sig[:]) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Ed25519PublicKeyFromSlice copies b into a public key.
func Ed25519PublicKeyFromSlice(b []byte) (Ed25519PublicKey, error) {
	var out Ed25519PublicKey
	if len(b) != Ed25519PublicKeySize {
		return out, fmt.Errorf("ed25519 public key: want %d bytes, got %d: %w",
			Ed25519PublicKeySize, len(b), domain.ErrInvalidKey)
	}
	if _, err := new(edwards25519.Point).SetBytes(b); err != nil {
		return out, fmt.Errorf("ed25519 public key: %w", domain.ErrInvalidKey)
	}
	copy(out[:], b)
	return out, nil
}

// Ed25519PublicKeyFromBase64 decodes an unpadded base64 public key.
func Ed25519PublicKeyFromBase64(s string) (Ed25519PublicKey, error) {
	b, err := DecodeB64(s)
	if err != nil {
		return Ed25519PublicKey{}, fmt.Errorf("ed25519 public key: %w", domain.ErrInvalidKey)
	}
	return Ed25519PublicKeyFromSlice(b)
}

// Ed25519Signature is a detached Ed25519 signature.
type Ed25519Signature [Ed25519SignatureSize]byte

// Slice returns the signature as a []byte.
func (s Ed25519Signature) Slice() []byte { return s[:] }

// ToBase64 returns the unpadded base64 form of the signature.
func (s Ed25519Signature) ToBase64() string { return B64(s[:]) }

// String implements fmt.Stringer.
func (s Ed25519Signature) String() string { return s.ToBase64() }

// Ed25519SignatureFromSlice copies b into a signature.
func Ed25519SignatureFromSlice(b []byte) (Ed25519Signature, error) {
	var out Ed25519Signature
	if len(b) != Ed25519SignatureSize {
		return out, fmt.Errorf("ed25519 signature: want %d bytes, got %d: %w",
			Ed25519SignatureSize, len(b), domain.ErrInvalidSignature)
	}
	copy(out[:], b)
	return out, nil
}

// Ed25519SignatureFromBase64 decodes an unpadded base64 signature.
func Ed25519SignatureFromBase64(s string) (Ed25519Signature, error) {
	b, err := DecodeB64(s)
	if err != nil {
		return Ed25519Signature{}, fmt.Errorf("ed25519 signature: %w", domain.ErrInvalidSignature)
	}
	return Ed25519SignatureFromSlice(b)
}

// Ed25519KeyPair is a signing key pair. The secret is always held in
// expanded form so that keys imported from libolm, which never kept the
// seed, sign exactly like freshly generated ones.
type Ed25519KeyPair struct {
	Expanded [Ed25519ExpandedKeySize]byte `cbor:"expanded"`
	Public   Ed25519PublicKey             `cbor:"public"`
}

// GenerateEd25519 returns a new Ed25519 signing key pair.
func GenerateEd25519() (*Ed25519KeyPair, error) {
	var seed [ed25519.SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	defer memzero.Zero(seed[:])
	return Ed25519KeyPairFromSeed(seed[:])
}

// Ed25519KeyPairFromSeed expands an RFC 8032 seed into a key pair.
func Ed25519KeyPairFromSeed(seed []byte) (*Ed25519KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed: want %d bytes, got %d: %w",
			ed25519.SeedSize, len(seed), domain.ErrInvalidKey)
	}
	h := sha512.Sum512(seed)
	defer memzero.Zero(h[:])
	return Ed25519KeyPairFromExpanded(h[:])
}

// Ed25519KeyPairFromExpanded builds a key pair from a 64-byte expanded secret
// key (scalar ‖ prefix). The scalar half is clamped before use.
func Ed25519KeyPairFromExpanded(b []byte) (*Ed25519KeyPair, error) {
	if len(b) != Ed25519ExpandedKeySize {
		return nil, fmt.Errorf("ed25519 expanded key: want %d bytes, got %d: %w",
			Ed25519ExpandedKeySize, len(b), domain.ErrInvalidKey)
	}
	kp := &Ed25519KeyPair{}
	copy(kp.Expanded[:], b)
	s, err := kp.scalar()
	if err != nil {
		return nil, err
	}
	copy(kp.Public[:], new(edwards25519.Point).ScalarBaseMult(s).Bytes())
	return kp, nil
}

// Sign returns the deterministic RFC 8032 signature of msg.
func (kp *Ed25519KeyPair) Sign(msg []byte) Ed25519Signature {
	var sig Ed25519Signature

	s, err := kp.scalar()
	if err != nil {
		panic(err)
	}

	h := sha512.New()
	h.Write(kp.Expanded[32:])
	h.Write(msg)
	var digest [sha512.Size]byte
	r, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(digest[:0]))
	if err != nil {
		panic(err)
	}
	R := new(edwards25519.Point).ScalarBaseMult(r)

	h.Reset()
	h.Write(R.Bytes())
	h.Write(kp.Public[:])
	h.Write(msg)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(digest[:0]))
	if err != nil {
		panic(err)
	}
	S := edwards25519.NewScalar().MultiplyAdd(k, s, r)

	copy(sig[:32], R.Bytes())
	copy(sig[32:], S.Bytes())
	return sig
}

// Wipe zeroes the expanded secret key.
func (kp *Ed25519KeyPair) Wipe() { memzero.Zero(kp.Expanded[:]) }

func (kp *Ed25519KeyPair) scalar() (*edwards25519.Scalar, error) {
	s, err := edwards25519.NewScalar().SetBytesWithClamping(kp.Expanded[:32])
	if err != nil {
		return nil, fmt.Errorf("ed25519 scalar: %w", domain.ErrInvalidKey)
	}
	return s, nil
}
