package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
)

// Olm normal message fields.
const (
	olmRatchetKey protowire.Number = 1
	olmChainIndex protowire.Number = 2
	olmCiphertext protowire.Number = 4
)

// Pre-key message fields.
const (
	preKeyOneTimeKey  protowire.Number = 1
	preKeyBaseKey     protowire.Number = 2
	preKeyIdentityKey protowire.Number = 3
	preKeyMessage     protowire.Number = 4
)

// Message is a normal Olm message. On the wire it is the version byte, the
// protobuf-encoded fields, then the MAC.
type Message struct {
	Version    byte
	RatchetKey crypto.Curve25519PublicKey
	ChainIndex uint32
	Ciphertext []byte
	MAC        []byte

	body []byte
}

// Body returns the bytes covered by the MAC.
func (m *Message) Body() []byte {
	if m.body != nil {
		return m.body
	}
	b := []byte{m.Version}
	b = protowire.AppendTag(b, olmRatchetKey, protowire.BytesType)
	b = protowire.AppendBytes(b, m.RatchetKey[:])
	b = protowire.AppendTag(b, olmChainIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.ChainIndex))
	b = protowire.AppendTag(b, olmCiphertext, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Ciphertext)
	return b
}

// Encode returns the wire form. MAC must already be set.
func (m *Message) Encode() []byte {
	body := m.Body()
	out := make([]byte, 0, len(body)+len(m.MAC))
	out = append(out, body...)
	return append(out, m.MAC...)
}

// DecodeMessage parses a normal Olm message.
func DecodeMessage(b []byte) (*Message, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("olm message: empty: %w", domain.ErrDecode)
	}
	macLen, err := MacLength(b[0])
	if err != nil {
		return nil, fmt.Errorf("olm message: %w", err)
	}
	if len(b) < 1+macLen {
		return nil, fmt.Errorf("olm message: too short: %w", domain.ErrDecode)
	}
	body := b[:len(b)-macLen]
	fields, err := parseFields(body[1:])
	if err != nil {
		return nil, fmt.Errorf("olm message: %w", err)
	}

	m := &Message{Version: b[0], MAC: clone(b[len(b)-macLen:]), body: clone(body)}
	var haveKey, haveIndex, haveCiphertext bool
	for _, f := range fields {
		switch f.num {
		case olmRatchetKey:
			if m.RatchetKey, err = keyField(f); err != nil {
				return nil, fmt.Errorf("olm message: %w", err)
			}
			haveKey = true
		case olmChainIndex:
			if m.ChainIndex, err = indexField(f); err != nil {
				return nil, fmt.Errorf("olm message: %w", err)
			}
			haveIndex = true
		case olmCiphertext:
			c, err := bytesField(f)
			if err != nil {
				return nil, fmt.Errorf("olm message: %w", err)
			}
			m.Ciphertext = clone(c)
			haveCiphertext = true
		}
	}
	if !haveKey || !haveIndex || !haveCiphertext {
		return nil, fmt.Errorf("olm message: missing field: %w", domain.ErrDecode)
	}
	return m, nil
}

// PreKeyMessage wraps the first messages of a session with the keys the
// responder needs to run the handshake.
type PreKeyMessage struct {
	Version     byte
	OneTimeKey  crypto.Curve25519PublicKey
	BaseKey     crypto.Curve25519PublicKey
	IdentityKey crypto.Curve25519PublicKey
	Message     *Message
}

// Encode returns the wire form.
func (p *PreKeyMessage) Encode() []byte {
	b := []byte{p.Version}
	b = protowire.AppendTag(b, preKeyOneTimeKey, protowire.BytesType)
	b = protowire.AppendBytes(b, p.OneTimeKey[:])
	b = protowire.AppendTag(b, preKeyBaseKey, protowire.BytesType)
	b = protowire.AppendBytes(b, p.BaseKey[:])
	b = protowire.AppendTag(b, preKeyIdentityKey, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentityKey[:])
	b = protowire.AppendTag(b, preKeyMessage, protowire.BytesType)
	b = protowire.AppendBytes(b, p.Message.Encode())
	return b
}

// DecodePreKeyMessage parses a pre-key message and its embedded message.
func DecodePreKeyMessage(b []byte) (*PreKeyMessage, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("pre-key message: empty: %w", domain.ErrDecode)
	}
	if _, err := MacLength(b[0]); err != nil {
		return nil, fmt.Errorf("pre-key message: %w", err)
	}
	fields, err := parseFields(b[1:])
	if err != nil {
		return nil, fmt.Errorf("pre-key message: %w", err)
	}

	p := &PreKeyMessage{Version: b[0]}
	var seen [5]bool
	for _, f := range fields {
		switch f.num {
		case preKeyOneTimeKey:
			p.OneTimeKey, err = keyField(f)
		case preKeyBaseKey:
			p.BaseKey, err = keyField(f)
		case preKeyIdentityKey:
			p.IdentityKey, err = keyField(f)
		case preKeyMessage:
			var inner []byte
			if inner, err = bytesField(f); err == nil {
				p.Message, err = DecodeMessage(inner)
			}
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("pre-key message: %w", err)
		}
		seen[f.num] = true
	}
	if !seen[preKeyOneTimeKey] || !seen[preKeyBaseKey] || !seen[preKeyIdentityKey] || !seen[preKeyMessage] {
		return nil, fmt.Errorf("pre-key message: missing field: %w", domain.ErrDecode)
	}
	if p.Message.Version != p.Version {
		return nil, fmt.Errorf("pre-key message: version %d wraps version %d: %w",
			p.Version, p.Message.Version, domain.ErrDecode)
	}
	return p, nil
}
