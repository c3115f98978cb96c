package store

import (
	"path/filepath"
	"slices"

	"olmcore/internal/domain"
)

// SaveSession inserts or replaces a session, keyed by peer and session id.
func (s *FileStore) SaveSession(sess domain.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFile)
	sessions := map[string][]domain.StoredSession{}
	if err := readJSON(path, &sessions); err != nil {
		return err
	}
	list := slices.DeleteFunc(sessions[sess.Peer], func(o domain.StoredSession) bool {
		return o.ID == sess.ID
	})
	sessions[sess.Peer] = append(list, sess)
	return writeJSON(path, sessions, 0o600)
}

// LoadSessions returns the sessions with peer, most recently used first.
func (s *FileStore) LoadSessions(peer string) ([]domain.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := map[string][]domain.StoredSession{}
	if err := readJSON(filepath.Join(s.dir, sessionsFile), &sessions); err != nil {
		return nil, err
	}
	list := sessions[peer]
	slices.SortStableFunc(list, func(a, b domain.StoredSession) int {
		switch {
		case a.LastUsedUTC > b.LastUsedUTC:
			return -1
		case a.LastUsedUTC < b.LastUsedUTC:
			return 1
		default:
			return 0
		}
	})
	return list, nil
}
