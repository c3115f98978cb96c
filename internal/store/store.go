package store

import (
	"os"
	"sync"

	"olmcore/internal/domain"
)

const (
	accountFile  = "account.pickle"
	profileFile  = "profile.json"
	sessionsFile = "sessions.json"
	groupsFile   = "groups.json"
)

// FileStore keeps pickles and their metadata under one directory. Pickles
// are already encrypted, so files are written as-is with mode 0600.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Compile-time assertions that FileStore implements the domain stores.
var (
	_ domain.AccountStore      = (*FileStore)(nil)
	_ domain.SessionStore      = (*FileStore)(nil)
	_ domain.GroupSessionStore = (*FileStore)(nil)
)
