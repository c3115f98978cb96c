package group

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"olmcore/internal/domain"
	"olmcore/pkg/megolm"
)

// Service creates, imports and uses group sessions.
type Service struct {
	store domain.GroupSessionStore
	log   *slog.Logger
	now   func() time.Time
}

// New constructs a group service.
func New(store domain.GroupSessionStore, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Created describes a new outbound session and the key to share with
// members.
type Created struct {
	SessionID  string
	SessionKey string
}

// CreateSession starts an outbound group session. The local device can
// decrypt its own messages, so a matching inbound session is stored too.
func (s *Service) CreateSession(passphrase string, config megolm.SessionConfig) (Created, error) {
	out, err := megolm.NewGroupSession(config)
	if err != nil {
		return Created{}, err
	}
	defer out.Wipe()
	key := out.SessionKey()
	defer key.Wipe()

	in := megolm.NewInboundGroupSession(key, out.SessionConfig())
	defer in.Wipe()

	if err := s.saveOutbound(passphrase, out); err != nil {
		return Created{}, err
	}
	if err := s.saveInbound(passphrase, in); err != nil {
		return Created{}, err
	}
	s.log.Info("group session created", "session_id", out.SessionID(), "config", out.SessionConfig().Version())
	return Created{SessionID: out.SessionID(), SessionKey: key.ToBase64()}, nil
}

// SessionKey returns the current signed session key of an outbound session,
// for sharing with members who join later.
func (s *Service) SessionKey(passphrase, id string) (string, uint32, error) {
	out, err := s.loadOutbound(passphrase, id)
	if err != nil {
		return "", 0, err
	}
	defer out.Wipe()
	key := out.SessionKey()
	defer key.Wipe()
	return key.ToBase64(), key.Index(), nil
}

// Encrypt encrypts plaintext with the outbound session id.
func (s *Service) Encrypt(passphrase, id string, plaintext []byte) (string, error) {
	out, err := s.loadOutbound(passphrase, id)
	if err != nil {
		return "", err
	}
	defer out.Wipe()

	ciphertext := out.Encrypt(plaintext)
	if err := s.saveOutbound(passphrase, out); err != nil {
		return "", err
	}
	return ciphertext, nil
}

// ImportSessionKey stores an inbound session from a signed session key, or
// from an exported one if exported is set. An existing session with the same
// id is kept if it can decrypt at least as much.
func (s *Service) ImportSessionKey(passphrase, key string, exported bool, config megolm.SessionConfig) (string, error) {
	var in *megolm.InboundGroupSession
	if exported {
		k, err := megolm.ExportedSessionKeyFromBase64(key)
		if err != nil {
			return "", err
		}
		in = megolm.ImportInboundGroupSession(k, config)
	} else {
		k, err := megolm.SessionKeyFromBase64(key)
		if err != nil {
			return "", err
		}
		in = megolm.NewInboundGroupSession(k, config)
	}
	defer in.Wipe()

	existing, err := s.loadInbound(passphrase, in.SessionID())
	switch {
	case err == nil:
		defer existing.Wipe()
		if !replaces(in, existing) {
			s.log.Debug("group session key ignored", "session_id", in.SessionID())
			return in.SessionID(), nil
		}
	case !errors.Is(err, domain.ErrNoGroup):
		return "", err
	}

	if err := s.saveInbound(passphrase, in); err != nil {
		return "", err
	}
	s.log.Info("group session imported", "session_id", in.SessionID(), "first_index", in.FirstKnownIndex(), "verified", in.IsVerified())
	return in.SessionID(), nil
}

// Decrypt decrypts a group message with the inbound session id.
func (s *Service) Decrypt(passphrase, id, ciphertext string) (*megolm.DecryptedMessage, error) {
	in, err := s.loadInbound(passphrase, id)
	if err != nil {
		return nil, err
	}
	defer in.Wipe()

	msg, err := in.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}
	if err := s.saveInbound(passphrase, in); err != nil {
		return nil, err
	}
	return msg, nil
}

// Export exports the inbound session id from index on.
func (s *Service) Export(passphrase, id string, index uint32) (string, error) {
	in, err := s.loadInbound(passphrase, id)
	if err != nil {
		return "", err
	}
	defer in.Wipe()

	key := in.ExportAt(index)
	if key == nil {
		return "", fmt.Errorf("export at %d, first known %d: %w", index, in.FirstKnownIndex(), megolm.ErrUnknownMessageIndex)
	}
	defer key.Wipe()
	return key.ToBase64(), nil
}

// replaces reports whether an imported session should overwrite the stored
// one: it reaches further back, or it is the verified copy of the same
// ratchet.
func replaces(in, existing *megolm.InboundGroupSession) bool {
	switch existing.Compare(in) {
	case megolm.SessionOrderingWorse:
		return true
	case megolm.SessionOrderingEqual:
		return in.IsVerified() && !existing.IsVerified()
	default:
		return false
	}
}

func (s *Service) load(id string, outbound bool) (domain.StoredGroupSession, error) {
	g, ok, err := s.store.LoadGroupSession(id, outbound)
	if err != nil {
		return domain.StoredGroupSession{}, err
	}
	if !ok {
		return domain.StoredGroupSession{}, domain.ErrNoGroup
	}
	return g, nil
}

func (s *Service) loadOutbound(passphrase, id string) (*megolm.GroupSession, error) {
	g, err := s.load(id, true)
	if err != nil {
		return nil, err
	}
	return megolm.GroupSessionFromPickle(g.Pickle, []byte(passphrase))
}

func (s *Service) loadInbound(passphrase, id string) (*megolm.InboundGroupSession, error) {
	g, err := s.load(id, false)
	if err != nil {
		return nil, err
	}
	return megolm.InboundGroupSessionFromPickle(g.Pickle, []byte(passphrase))
}

func (s *Service) saveOutbound(passphrase string, out *megolm.GroupSession) error {
	p, err := out.Pickle([]byte(passphrase))
	if err != nil {
		return err
	}
	return s.save(out.SessionID(), true, p)
}

func (s *Service) saveInbound(passphrase string, in *megolm.InboundGroupSession) error {
	p, err := in.Pickle([]byte(passphrase))
	if err != nil {
		return err
	}
	return s.save(in.SessionID(), false, p)
}

func (s *Service) save(id string, outbound bool, pickle string) error {
	created := s.now().Unix()
	if g, ok, err := s.store.LoadGroupSession(id, outbound); err != nil {
		return err
	} else if ok {
		created = g.CreatedUTC
	}
	return s.store.SaveGroupSession(domain.StoredGroupSession{
		ID:         id,
		Outbound:   outbound,
		Pickle:     pickle,
		CreatedUTC: created,
	})
}
