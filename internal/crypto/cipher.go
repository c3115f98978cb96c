package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"fmt"

	"olmcore/internal/domain"
	"olmcore/internal/util/memzero"
)

const (
	aesKeySize  = 32
	macKeySize  = 32
	ivSize      = aes.BlockSize
	expandedLen = aesKeySize + macKeySize + ivSize

	// MacSize is the length of an untruncated HMAC-SHA-256 tag.
	MacSize = 32
	// TruncatedMacSize is the tag length used by version 1 messages and
	// libolm pickles.
	TruncatedMacSize = 8
)

// Cipher is the AES-256-CBC plus HMAC-SHA-256 construction used for Olm and
// Megolm payloads and for libolm pickles. All three keys come from a single
// HKDF expansion of a secret under a protocol-specific info label.
type Cipher struct {
	aesKey [aesKeySize]byte
	macKey [macKeySize]byte
	iv     [ivSize]byte
}

// NewCipher expands secret under info into a Cipher.
func NewCipher(secret, info []byte) *Cipher {
	okm := Expand(secret, nil, info, expandedLen)
	defer memzero.Zero(okm)

	c := &Cipher{}
	copy(c.aesKey[:], okm[:aesKeySize])
	copy(c.macKey[:], okm[aesKeySize:aesKeySize+macKeySize])
	copy(c.iv[:], okm[aesKeySize+macKeySize:])
	return c
}

// Encrypt pads plaintext with PKCS#7 and encrypts it with AES-256-CBC.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	block, err := aes.NewCipher(c.aesKey[:])
	if err != nil {
		panic(err)
	}
	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	buf := make([]byte, len(plaintext)+pad)
	copy(buf, plaintext)
	for i := len(plaintext); i < len(buf); i++ {
		buf[i] = byte(pad)
	}
	cipher.NewCBCEncrypter(block, c.iv[:]).CryptBlocks(buf, buf)
	return buf
}

// Decrypt reverses Encrypt. Ciphertext that is not block aligned or whose
// padding is malformed yields ErrDecode.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("cbc: ciphertext length %d: %w", len(ciphertext), domain.ErrDecode)
	}
	block, err := aes.NewCipher(c.aesKey[:])
	if err != nil {
		panic(err)
	}
	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.iv[:]).CryptBlocks(buf, ciphertext)

	pad := int(buf[len(buf)-1])
	if pad == 0 || pad > aes.BlockSize {
		return nil, fmt.Errorf("cbc: %w", domain.ErrDecode)
	}
	for _, b := range buf[len(buf)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("cbc: %w", domain.ErrDecode)
		}
	}
	return buf[:len(buf)-pad], nil
}

// MAC returns the full HMAC-SHA-256 tag of msg.
func (c *Cipher) MAC(msg []byte) []byte {
	return HMACSHA256(c.macKey[:], msg)
}

// VerifyMAC checks tag against the MAC of msg, truncating the computed tag to
// len(tag). Tags shorter than TruncatedMacSize are rejected.
func (c *Cipher) VerifyMAC(msg, tag []byte) error {
	if len(tag) < TruncatedMacSize || len(tag) > MacSize {
		return domain.ErrAuthenticationFailed
	}
	if !hmac.Equal(c.MAC(msg)[:len(tag)], tag) {
		return domain.ErrAuthenticationFailed
	}
	return nil
}

// Wipe zeroes all key material.
func (c *Cipher) Wipe() {
	memzero.Zero(c.aesKey[:])
	memzero.Zero(c.macKey[:])
	memzero.Zero(c.iv[:])
}
