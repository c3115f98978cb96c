package pickle

import (
	"encoding/binary"
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
)

// LibolmDecrypt opens a libolm pickle: base64 of AES-256-CBC ciphertext
// followed by an 8-byte HMAC-SHA-256 tag over the ciphertext, all keys
// expanded from key with HKDF info "Pickle".
func LibolmDecrypt(key []byte, pickle string) ([]byte, error) {
	if len(key) == 0 {
		return nil, domain.ErrEmptyPassphrase
	}
	raw, err := crypto.DecodeB64(pickle)
	if err != nil || len(raw) < crypto.TruncatedMacSize {
		return nil, domain.ErrCorruptPickle
	}
	ciphertext := raw[:len(raw)-crypto.TruncatedMacSize]
	tag := raw[len(raw)-crypto.TruncatedMacSize:]

	c := crypto.NewCipher(key, crypto.InfoPickle)
	defer c.Wipe()
	if err := c.VerifyMAC(ciphertext, tag); err != nil {
		return nil, domain.ErrWrongPassphrase
	}
	plaintext, err := c.Decrypt(ciphertext)
	if err != nil {
		return nil, domain.ErrCorruptPickle
	}
	return plaintext, nil
}

// LibolmEncrypt is the inverse of LibolmDecrypt. New state is never written
// in this format; it exists to produce fixtures.
func LibolmEncrypt(key, plaintext []byte) string {
	c := crypto.NewCipher(key, crypto.InfoPickle)
	defer c.Wipe()
	ciphertext := c.Encrypt(plaintext)
	out := append(ciphertext, c.MAC(ciphertext)[:crypto.TruncatedMacSize]...)
	return crypto.B64(out)
}

// Reader consumes libolm's big-endian binary layout. The first failure
// sticks; check Err once after reading.
type Reader struct {
	buf []byte
	err error
}

// NewReader reads from b.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf) < n {
		r.err = fmt.Errorf("libolm pickle: truncated: %w", domain.ErrCorruptPickle)
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads a single-byte boolean.
func (r *Reader) Bool() bool {
	b := r.take(1)
	return b != nil && b[0] != 0
}

// Bytes copies the next n bytes into dst.
func (r *Reader) Bytes(dst []byte) {
	if b := r.take(len(dst)); b != nil {
		copy(dst, b)
	}
}

// Count reads a list length and rejects lengths above limit.
func (r *Reader) Count(limit int) int {
	n := r.Uint32()
	if r.err == nil && n > uint32(limit) {
		r.err = fmt.Errorf("libolm pickle: list of %d exceeds %d: %w", n, limit, domain.ErrCorruptPickle)
		return 0
	}
	return int(n)
}

// Fail records err unless an earlier error is already set.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Writer produces libolm's binary layout.
type Writer struct {
	buf []byte
}

// Uint32 appends a big-endian uint32.
func (w *Writer) Uint32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

// Uint8 appends a single byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Bool appends a single-byte boolean.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// Write appends b.
func (w *Writer) Write(b []byte) { w.buf = append(w.buf, b...) }

// Bytes returns the buffer written so far.
func (w *Writer) Bytes() []byte { return w.buf }
