package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
)

const (
	megolmIndex      protowire.Number = 1
	megolmCiphertext protowire.Number = 2
)

// MegolmMessage is a group message: version, fields, MAC, then an Ed25519
// signature over everything before it.
type MegolmMessage struct {
	Version    byte
	Index      uint32
	Ciphertext []byte
	MAC        []byte
	Signature  crypto.Ed25519Signature

	body []byte
}

// Body returns the bytes covered by the MAC.
func (m *MegolmMessage) Body() []byte {
	if m.body != nil {
		return m.body
	}
	b := []byte{m.Version}
	b = protowire.AppendTag(b, megolmIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Index))
	b = protowire.AppendTag(b, megolmCiphertext, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Ciphertext)
	return b
}

// Signed returns the bytes covered by the signature.
func (m *MegolmMessage) Signed() []byte {
	body := m.Body()
	out := make([]byte, 0, len(body)+len(m.MAC))
	out = append(out, body...)
	return append(out, m.MAC...)
}

// Encode returns the wire form. MAC and Signature must already be set.
func (m *MegolmMessage) Encode() []byte {
	return append(m.Signed(), m.Signature[:]...)
}

// DecodeMegolmMessage parses a group message.
func DecodeMegolmMessage(b []byte) (*MegolmMessage, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("megolm message: empty: %w", domain.ErrDecode)
	}
	macLen, err := MacLength(b[0])
	if err != nil {
		return nil, fmt.Errorf("megolm message: %w", err)
	}
	if len(b) < 1+macLen+crypto.Ed25519SignatureSize {
		return nil, fmt.Errorf("megolm message: too short: %w", domain.ErrDecode)
	}

	sigStart := len(b) - crypto.Ed25519SignatureSize
	macStart := sigStart - macLen
	fields, err := parseFields(b[1:macStart])
	if err != nil {
		return nil, fmt.Errorf("megolm message: %w", err)
	}

	m := &MegolmMessage{
		Version: b[0],
		MAC:     clone(b[macStart:sigStart]),
		body:    clone(b[:macStart]),
	}
	copy(m.Signature[:], b[sigStart:])

	var haveIndex, haveCiphertext bool
	for _, f := range fields {
		switch f.num {
		case megolmIndex:
			if m.Index, err = indexField(f); err != nil {
				return nil, fmt.Errorf("megolm message: %w", err)
			}
			haveIndex = true
		case megolmCiphertext:
			c, err := bytesField(f)
			if err != nil {
				return nil, fmt.Errorf("megolm message: %w", err)
			}
			m.Ciphertext = clone(c)
			haveCiphertext = true
		}
	}
	if !haveIndex || !haveCiphertext {
		return nil, fmt.Errorf("megolm message: missing field: %w", domain.ErrDecode)
	}
	return m, nil
}
