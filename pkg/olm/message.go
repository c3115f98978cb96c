package olm

import (
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/protocol/message"
)

// MessageType distinguishes the first messages of a session from the rest.
type MessageType int

const (
	MessageTypePreKey MessageType = 0
	MessageTypeNormal MessageType = 1
)

// OlmMessage is an encrypted message as carried by the transport.
type OlmMessage struct {
	Type       MessageType
	Ciphertext string // unpadded base64
}

func (m OlmMessage) decode() (*message.PreKeyMessage, *message.Message, error) {
	raw, err := crypto.DecodeB64(m.Ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("olm message: base64: %w", domain.ErrDecode)
	}
	switch m.Type {
	case MessageTypePreKey:
		p, err := message.DecodePreKeyMessage(raw)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Message, nil
	case MessageTypeNormal:
		n, err := message.DecodeMessage(raw)
		if err != nil {
			return nil, nil, err
		}
		return nil, n, nil
	default:
		return nil, nil, fmt.Errorf("olm message type %d: %w", m.Type, domain.ErrInvalidMessageType)
	}
}
