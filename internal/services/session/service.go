package session

import (
	"fmt"
	"log/slog"
	"time"

	"olmcore/internal/domain"
	"olmcore/internal/services/account"
	"olmcore/pkg/olm"
)

// Service starts outbound sessions and persists sessions for the message
// service.
type Service struct {
	accounts *account.Service
	store    domain.SessionStore
	log      *slog.Logger
	now      func() time.Time
}

// New constructs a session service.
func New(accounts *account.Service, store domain.SessionStore, log *slog.Logger) *Service {
	return &Service{accounts: accounts, store: store, log: log, now: time.Now}
}

// Loaded is an unpickled session and the record it came from.
type Loaded struct {
	Record  domain.StoredSession
	Session *olm.Session
}

// InitiateSession starts a session with the device owning peerIdentity,
// using one of its published one-time or fallback keys.
func (s *Service) InitiateSession(
	passphrase string,
	peerIdentity, peerOneTimeKey string,
	config olm.SessionConfig,
) (domain.StoredSession, error) {
	identity, err := olm.Curve25519PublicKeyFromBase64(peerIdentity)
	if err != nil {
		return domain.StoredSession{}, fmt.Errorf("peer identity key: %w", err)
	}
	oneTime, err := olm.Curve25519PublicKeyFromBase64(peerOneTimeKey)
	if err != nil {
		return domain.StoredSession{}, fmt.Errorf("peer one-time key: %w", err)
	}

	acc, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return domain.StoredSession{}, err
	}
	defer acc.Wipe()

	sess, err := acc.CreateOutboundSession(config, identity, oneTime)
	if err != nil {
		return domain.StoredSession{}, err
	}
	defer sess.Wipe()

	rec, err := s.SaveSession(passphrase, domain.StoredSession{Peer: peerIdentity}, sess)
	if err != nil {
		return domain.StoredSession{}, err
	}
	s.log.Info("session started", "peer", peerIdentity, "session_id", rec.ID, "config", config.Version())
	return rec, nil
}

// SaveSession pickles sess into rec and stores it, stamping it as the most
// recently used session with rec.Peer.
func (s *Service) SaveSession(passphrase string, rec domain.StoredSession, sess *olm.Session) (domain.StoredSession, error) {
	p, err := sess.Pickle([]byte(passphrase))
	if err != nil {
		return domain.StoredSession{}, err
	}
	now := s.now().Unix()
	rec.ID = sess.SessionID()
	rec.Pickle = p
	if rec.CreatedUTC == 0 {
		rec.CreatedUTC = now
	}
	rec.LastUsedUTC = now
	if err := s.store.SaveSession(rec); err != nil {
		return domain.StoredSession{}, err
	}
	return rec, nil
}

// LoadSessions unpickles every session with peer, most recently used first.
// Callers must Wipe the sessions when done.
func (s *Service) LoadSessions(passphrase, peer string) ([]Loaded, error) {
	recs, err := s.store.LoadSessions(peer)
	if err != nil {
		return nil, err
	}
	out := make([]Loaded, 0, len(recs))
	for _, rec := range recs {
		sess, err := olm.SessionFromPickle(rec.Pickle, []byte(passphrase))
		if err != nil {
			for _, l := range out {
				l.Session.Wipe()
			}
			return nil, fmt.Errorf("session %s: %w", rec.ID, err)
		}
		out = append(out, Loaded{Record: rec, Session: sess})
	}
	return out, nil
}

// ListSessions returns the stored session records with peer without
// unpickling them.
func (s *Service) ListSessions(peer string) ([]domain.StoredSession, error) {
	return s.store.LoadSessions(peer)
}
