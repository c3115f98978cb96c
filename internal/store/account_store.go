package store

import (
	"path/filepath"

	"olmcore/internal/domain"
)

// SaveAccount replaces the stored account pickle and profile.
func (s *FileStore) SaveAccount(pickle string, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFile(filepath.Join(s.dir, accountFile), []byte(pickle), 0o600); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.dir, profileFile), profile, 0o600)
}

// LoadAccount returns the stored account pickle and profile. ok is false
// when no account has been saved.
func (s *FileStore) LoadAccount() (string, domain.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, accountFile))
	if err != nil || b == nil {
		return "", domain.Profile{}, false, err
	}
	var profile domain.Profile
	if err := readJSON(filepath.Join(s.dir, profileFile), &profile); err != nil {
		return "", domain.Profile{}, false, err
	}
	return string(b), profile, true, nil
}
