package pickle

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/util/memzero"
)

const (
	formatVersion = 1

	keySize    = chacha20poly1305.KeySize
	saltSize   = 16
	nonceSize  = chacha20poly1305.NonceSizeX
	headerSize = 1 + 4 + 4 + 1 + saltSize + nonceSize

	maxTime   = 16
	maxMemory = 1 << 21 // KiB
)

// Kinds bind a pickle to the type it was made from.
const (
	KindAccount             = "account"
	KindSession             = "session"
	KindGroupSession        = "group_session"
	KindInboundGroupSession = "inbound_group_session"
)

// Params are the argon2id cost parameters recorded in each pickle.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams is the second recommended option of RFC 9106: 64 MiB, three
// passes, four lanes. Tests may lower it.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 4}

func (p Params) valid() bool {
	return p.Time >= 1 && p.Time <= maxTime &&
		p.Threads >= 1 &&
		p.Memory >= 8*uint32(p.Threads) && p.Memory <= maxMemory
}

// Encode serializes state with CBOR and seals it under a key derived from
// passphrase. kind is bound into the authenticated data.
func Encode(kind string, state any, passphrase []byte) (string, error) {
	if len(passphrase) == 0 {
		return "", domain.ErrEmptyPassphrase
	}
	params := DefaultParams
	if !params.valid() {
		return "", fmt.Errorf("pickle: invalid argon2 parameters %+v", params)
	}

	plaintext, err := cbor.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("pickle: marshal %s: %w", kind, err)
	}
	defer memzero.Zero(plaintext)

	header := make([]byte, headerSize)
	header[0] = formatVersion
	binary.BigEndian.PutUint32(header[1:5], params.Time)
	binary.BigEndian.PutUint32(header[5:9], params.Memory)
	header[9] = params.Threads
	salt := header[10 : 10+saltSize]
	nonce := header[10+saltSize:]
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	aead, err := newAEAD(passphrase, salt, params)
	if err != nil {
		return "", err
	}
	out := aead.Seal(header, nonce, plaintext, additionalData(header, kind))
	return crypto.B64(out), nil
}

// Decode opens a pickle made by Encode into state. A wrong passphrase yields
// ErrWrongPassphrase; anything malformed yields ErrCorruptPickle.
func Decode(kind, pickle string, passphrase []byte, state any) error {
	if len(passphrase) == 0 {
		return domain.ErrEmptyPassphrase
	}
	raw, err := crypto.DecodeB64(pickle)
	if err != nil || len(raw) < headerSize+chacha20poly1305.Overhead || raw[0] != formatVersion {
		return domain.ErrCorruptPickle
	}

	header := raw[:headerSize]
	params := Params{
		Time:    binary.BigEndian.Uint32(header[1:5]),
		Memory:  binary.BigEndian.Uint32(header[5:9]),
		Threads: header[9],
	}
	if !params.valid() {
		return domain.ErrCorruptPickle
	}
	salt := header[10 : 10+saltSize]
	nonce := header[10+saltSize:]

	aead, err := newAEAD(passphrase, salt, params)
	if err != nil {
		return err
	}
	plaintext, err := aead.Open(nil, nonce, raw[headerSize:], additionalData(header, kind))
	if err != nil {
		return domain.ErrWrongPassphrase
	}
	defer memzero.Zero(plaintext)

	if err := cbor.Unmarshal(plaintext, state); err != nil {
		return domain.ErrCorruptPickle
	}
	return nil
}

func newAEAD(passphrase, salt []byte, p Params) (cipher.AEAD, error) {
	key := argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Threads, keySize)
	defer memzero.Zero(key)
	return chacha20poly1305.NewX(key)
}

func additionalData(header []byte, kind string) []byte {
	ad := make([]byte, 0, len(header)+len(kind))
	ad = append(ad, header...)
	return append(ad, kind...)
}
