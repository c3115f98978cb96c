package olm

import (
	"encoding/binary"

	"olmcore/internal/crypto"
)

// Key types shared with the megolm and sas packages.
type (
	Curve25519PublicKey = crypto.Curve25519PublicKey
	Ed25519PublicKey    = crypto.Ed25519PublicKey
	Ed25519Signature    = crypto.Ed25519Signature
)

var (
	Curve25519PublicKeyFromBase64 = crypto.Curve25519PublicKeyFromBase64
	Ed25519PublicKeyFromBase64    = crypto.Ed25519PublicKeyFromBase64
	Ed25519SignatureFromBase64    = crypto.Ed25519SignatureFromBase64
)

// KeyID identifies a one-time or fallback key within an account.
type KeyID uint64

// ToBase64 renders the id as unpadded base64 of its big-endian bytes, the
// form used as the key of published one-time key maps.
func (k KeyID) ToBase64() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return crypto.B64(b[:])
}

// String implements fmt.Stringer.
func (k KeyID) String() string { return k.ToBase64() }

// IdentityKeys are an account's long-term public keys.
type IdentityKeys struct {
	Ed25519    Ed25519PublicKey
	Curve25519 Curve25519PublicKey
}
