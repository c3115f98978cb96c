package megolm

import (
	"encoding/binary"
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/protocol/hashratchet"
)

const (
	sessionKeyVersion  = 0x02
	exportedKeyVersion = 0x01

	exportedKeyLength = 1 + 4 + hashratchet.Length + crypto.Ed25519PublicKeySize
	sessionKeyLength  = exportedKeyLength + crypto.Ed25519SignatureSize
)

// ExportedSessionKey lets a holder decrypt group messages from its index on.
// It is not signed, so sessions built from it are unverified.
type ExportedSessionKey struct {
	ratchet    hashratchet.Ratchet
	signingKey crypto.Ed25519PublicKey
}

// Index returns the first message index the key can decrypt.
func (k *ExportedSessionKey) Index() uint32 { return k.ratchet.Counter }

// ToBase64 returns version ‖ index ‖ ratchet ‖ signing key, base64 encoded.
func (k *ExportedSessionKey) ToBase64() string {
	return crypto.B64(k.bytes(exportedKeyVersion))
}

// Wipe zeroes the ratchet.
func (k *ExportedSessionKey) Wipe() { k.ratchet.Wipe() }

func (k *ExportedSessionKey) bytes(version byte) []byte {
	b := make([]byte, 0, sessionKeyLength)
	b = append(b, version)
	b = binary.BigEndian.AppendUint32(b, k.ratchet.Counter)
	b = append(b, k.ratchet.Data[:]...)
	return append(b, k.signingKey[:]...)
}

// ExportedSessionKeyFromBase64 parses an exported session key.
func ExportedSessionKeyFromBase64(s string) (*ExportedSessionKey, error) {
	b, err := crypto.DecodeB64(s)
	if err != nil {
		return nil, fmt.Errorf("exported session key: %w", domain.ErrDecode)
	}
	if len(b) != exportedKeyLength || b[0] != exportedKeyVersion {
		return nil, fmt.Errorf("exported session key: %w", domain.ErrDecode)
	}
	return parseKeyBody(b)
}

// SessionKey is an exported key signed by the group session's signing key.
type SessionKey struct {
	ExportedSessionKey
	signature crypto.Ed25519Signature
}

// ToBase64 returns the signed encoding.
func (k *SessionKey) ToBase64() string {
	b := k.bytes(sessionKeyVersion)
	return crypto.B64(append(b, k.signature[:]...))
}

// SessionKeyFromBase64 parses a session key and checks its signature.
func SessionKeyFromBase64(s string) (*SessionKey, error) {
	b, err := crypto.DecodeB64(s)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", domain.ErrDecode)
	}
	if len(b) != sessionKeyLength || b[0] != sessionKeyVersion {
		return nil, fmt.Errorf("session key: %w", domain.ErrDecode)
	}
	exported, err := parseKeyBody(b[:exportedKeyLength])
	if err != nil {
		return nil, err
	}
	k := &SessionKey{ExportedSessionKey: *exported}
	copy(k.signature[:], b[exportedKeyLength:])
	if err := k.signingKey.Verify(b[:exportedKeyLength], k.signature); err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	return k, nil
}

func parseKeyBody(b []byte) (*ExportedSessionKey, error) {
	k := &ExportedSessionKey{}
	k.ratchet.Counter = binary.BigEndian.Uint32(b[1:5])
	copy(k.ratchet.Data[:], b[5:5+hashratchet.Length])
	pub, err := crypto.Ed25519PublicKeyFromSlice(b[5+hashratchet.Length : exportedKeyLength])
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	k.signingKey = pub
	return k, nil
}
