package message

import (
	"errors"
	"fmt"
	"log/slog"

	"olmcore/internal/domain"
	"olmcore/internal/services/account"
	"olmcore/internal/services/session"
	"olmcore/pkg/olm"
)

// Service encrypts to and decrypts from peer devices.
type Service struct {
	accounts *account.Service
	sessions *session.Service
	log      *slog.Logger
}

// New constructs a message service.
func New(accounts *account.Service, sessions *session.Service, log *slog.Logger) *Service {
	return &Service{accounts: accounts, sessions: sessions, log: log}
}

// EncryptMessage encrypts plaintext with the most recently used session with
// peer.
func (s *Service) EncryptMessage(passphrase, peer string, plaintext []byte) (olm.OlmMessage, error) {
	loaded, err := s.sessions.LoadSessions(passphrase, peer)
	if err != nil {
		return olm.OlmMessage{}, err
	}
	defer wipeAll(loaded)
	if len(loaded) == 0 {
		return olm.OlmMessage{}, domain.ErrNoSession
	}

	l := loaded[0]
	msg, err := l.Session.Encrypt(plaintext)
	if err != nil {
		return olm.OlmMessage{}, err
	}
	// Persist the advanced ratchet before the message leaves this process.
	if _, err := s.sessions.SaveSession(passphrase, l.Record, l.Session); err != nil {
		return olm.OlmMessage{}, err
	}
	s.log.Debug("message encrypted", "peer", peer, "session_id", l.Record.ID, "type", msg.Type)
	return msg, nil
}

// DecryptMessage decrypts msg from peer.
//
// A pre-key message goes to the stored session it was built for, or else
// creates a new inbound session. A normal message is tried against each
// stored session in turn. A failed attempt leaves no state behind.
func (s *Service) DecryptMessage(passphrase, peer string, msg olm.OlmMessage) ([]byte, error) {
	loaded, err := s.sessions.LoadSessions(passphrase, peer)
	if err != nil {
		return nil, err
	}
	defer wipeAll(loaded)

	var lastErr error = domain.ErrNoSession
	for _, l := range loaded {
		if msg.Type == olm.MessageTypePreKey && !l.Session.SessionMatches(msg) {
			continue
		}
		plaintext, err := l.Session.Decrypt(msg)
		if err != nil {
			lastErr = err
			if msg.Type == olm.MessageTypePreKey {
				return nil, err
			}
			continue
		}
		if _, err := s.sessions.SaveSession(passphrase, l.Record, l.Session); err != nil {
			return nil, err
		}
		s.log.Debug("message decrypted", "peer", peer, "session_id", l.Record.ID)
		return plaintext, nil
	}

	if msg.Type != olm.MessageTypePreKey {
		return nil, fmt.Errorf("decrypt from %s: %w", peer, lastErr)
	}
	return s.createInbound(passphrase, peer, msg)
}

func (s *Service) createInbound(passphrase, peer string, msg olm.OlmMessage) ([]byte, error) {
	peerKey, err := olm.Curve25519PublicKeyFromBase64(peer)
	if err != nil {
		return nil, fmt.Errorf("peer identity key: %w", err)
	}
	acc, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return nil, err
	}
	defer acc.Wipe()

	res, err := acc.CreateInboundSession(peerKey, msg)
	if err != nil {
		if errors.Is(err, olm.ErrOneTimeKeyNotFound) {
			s.log.Warn("pre-key message for an unknown one-time key", "peer", peer)
		}
		return nil, err
	}
	defer res.Session.Wipe()

	// The session goes to disk before the account so that a crash in between
	// leaves a usable session rather than a consumed one-time key.
	rec, err := s.sessions.SaveSession(passphrase, domain.StoredSession{Peer: peer}, res.Session)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SaveAccount(passphrase, acc); err != nil {
		return nil, err
	}
	s.log.Info("inbound session created", "peer", peer, "session_id", rec.ID, "one_time_keys_left", acc.StoredOneTimeKeyCount())
	return res.Plaintext, nil
}

func wipeAll(loaded []session.Loaded) {
	for _, l := range loaded {
		l.Session.Wipe()
	}
}
