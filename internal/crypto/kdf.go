package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF info labels.
var (
	InfoRoot       = []byte("OLM_ROOT")
	InfoRatchet    = []byte("OLM_RATCHET")
	InfoMessageKey = []byte("OLM_KEYS")
	InfoMegolmKeys = []byte("MEGOLM_KEYS")
	InfoPickle     = []byte("Pickle")
)

// Expand runs HKDF-SHA-256 over ikm and returns n bytes of output.
func Expand(ikm, salt, info []byte, n int) []byte {
	out := make([]byte, n)
	r := hkdf.New(sha256.New, ikm, salt, info)
	// HKDF-SHA-256 can produce up to 8160 bytes; every caller asks for far less.
	if _, err := io.ReadFull(r, out); err != nil {
		panic(err)
	}
	return out
}

// HMACSHA256 returns HMAC-SHA-256(key, data...).
func HMACSHA256(key []byte, data ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
