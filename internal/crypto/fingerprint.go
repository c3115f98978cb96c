package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintSize = 10

// Fingerprint is a short hex digest over both identity public keys of an
// account.
func Fingerprint(identity Curve25519PublicKey, signing Ed25519PublicKey) string {
	h := sha256.New()
	h.Write([]byte("OLM_FINGERPRINT"))
	h.Write(identity[:])
	h.Write(signing[:])
	return hex.EncodeToString(h.Sum(nil)[:fingerprintSize])
}
