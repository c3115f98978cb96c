package store

import (
	"path/filepath"

	"olmcore/internal/domain"
)

func groupKey(id string, outbound bool) string {
	if outbound {
		return "out|" + id
	}
	return "in|" + id
}

// SaveGroupSession inserts or replaces a group session.
func (s *FileStore) SaveGroupSession(g domain.StoredGroupSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, groupsFile)
	groups := map[string]domain.StoredGroupSession{}
	if err := readJSON(path, &groups); err != nil {
		return err
	}
	groups[groupKey(g.ID, g.Outbound)] = g
	return writeJSON(path, groups, 0o600)
}

// LoadGroupSession looks up a group session by id and direction.
func (s *FileStore) LoadGroupSession(id string, outbound bool) (domain.StoredGroupSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := map[string]domain.StoredGroupSession{}
	if err := readJSON(filepath.Join(s.dir, groupsFile), &groups); err != nil {
		return domain.StoredGroupSession{}, false, err
	}
	g, ok := groups[groupKey(id, outbound)]
	return g, ok, nil
}
