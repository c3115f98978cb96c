package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"olmcore/internal/domain"
	"olmcore/internal/util/memzero"
)

// Curve25519KeySize is the length of Curve25519 public and secret keys.
const Curve25519KeySize = 32

// Curve25519PublicKey is a Curve25519 public key.
type Curve25519PublicKey [Curve25519KeySize]byte

// Slice returns the key as a []byte.
func (p Curve25519PublicKey) Slice() []byte { return p[:] }

// ToBase64 returns the unpadded base64 form of the key.
func (p Curve25519PublicKey) ToBase64() string { return B64(p[:]) }

// String implements fmt.Stringer.
func (p Curve25519PublicKey) String() string { return p.ToBase64() }

// Curve25519PublicKeyFromSlice copies b into a public key.
func Curve25519PublicKeyFromSlice(b []byte) (Curve25519PublicKey, error) {
	var out Curve25519PublicKey
	if len(b) != Curve25519KeySize {
		return out, fmt.Errorf("curve25519 public key: want %d bytes, got %d: %w",
			Curve25519KeySize, len(b), domain.ErrInvalidKey)
	}
	copy(out[:], b)
	return out, nil
}

// Curve25519PublicKeyFromBase64 decodes an unpadded base64 public key.
func Curve25519PublicKeyFromBase64(s string) (Curve25519PublicKey, error) {
	b, err := DecodeB64(s)
	if err != nil {
		return Curve25519PublicKey{}, fmt.Errorf("curve25519 public key: %w", domain.ErrInvalidKey)
	}
	return Curve25519PublicKeyFromSlice(b)
}

// Curve25519SecretKey is a clamped Curve25519 private scalar.
type Curve25519SecretKey [Curve25519KeySize]byte

// Slice returns the key as a []byte.
func (k *Curve25519SecretKey) Slice() []byte { return k[:] }

// PublicKey derives the matching public key.
func (k *Curve25519SecretKey) PublicKey() Curve25519PublicKey {
	var pub Curve25519PublicKey
	pb, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		// X25519 with the base point only fails on a zero scalar, which a
		// clamped key can never be.
		panic(err)
	}
	copy(pub[:], pb)
	return pub
}

// DiffieHellman computes X25519(k, pub). A low-order peer key yields
// ErrInvalidKey rather than an all-zero shared secret.
func (k *Curve25519SecretKey) DiffieHellman(pub Curve25519PublicKey) (out [32]byte, err error) {
	secret, err := curve25519.X25519(k[:], pub[:])
	if err != nil {
		return out, fmt.Errorf("curve25519 diffie-hellman: %w", domain.ErrInvalidKey)
	}
	copy(out[:], secret)
	memzero.Zero(secret)
	return out, nil
}

// Wipe zeroes the secret key.
func (k *Curve25519SecretKey) Wipe() { memzero.Zero(k[:]) }

// Curve25519SecretKeyFromSlice copies and clamps b into a secret key.
func Curve25519SecretKeyFromSlice(b []byte) (Curve25519SecretKey, error) {
	var out Curve25519SecretKey
	if len(b) != Curve25519KeySize {
		return out, fmt.Errorf("curve25519 secret key: want %d bytes, got %d: %w",
			Curve25519KeySize, len(b), domain.ErrInvalidKey)
	}
	copy(out[:], b)
	clamp(&out)
	return out, nil
}

// Curve25519KeyPair bundles a secret key with its public key.
type Curve25519KeyPair struct {
	Secret Curve25519SecretKey `cbor:"secret"`
	Public Curve25519PublicKey `cbor:"public"`
}

// Wipe zeroes the secret half of the pair.
func (kp *Curve25519KeyPair) Wipe() { kp.Secret.Wipe() }

// GenerateCurve25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateCurve25519() (Curve25519KeyPair, error) {
	var kp Curve25519KeyPair
	if _, err := rand.Read(kp.Secret[:]); err != nil {
		return Curve25519KeyPair{}, err
	}
	clamp(&kp.Secret)
	kp.Public = kp.Secret.PublicKey()
	return kp, nil
}

// Curve25519KeyPairFromSecret rebuilds a pair from a stored secret key.
func Curve25519KeyPairFromSecret(b []byte) (Curve25519KeyPair, error) {
	sk, err := Curve25519SecretKeyFromSlice(b)
	if err != nil {
		return Curve25519KeyPair{}, err
	}
	return Curve25519KeyPair{Secret: sk, Public: sk.PublicKey()}, nil
}

func clamp(k *Curve25519SecretKey) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
