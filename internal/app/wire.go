package app

import (
	"log/slog"
	"os"

	"olmcore/internal/services/account"
	"olmcore/internal/services/group"
	"olmcore/internal/services/message"
	"olmcore/internal/services/prekey"
	"olmcore/internal/services/session"
	"olmcore/internal/store"
)

// Wire bundles the store and services for the CLI.
type Wire struct {
	Store    *store.FileStore
	Accounts *account.Service
	Prekeys  *prekey.Service
	Sessions *session.Service
	Messages *message.Service
	Groups   *group.Service
	Log      *slog.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	fs, err := store.NewFileStore(cfg.Home)
	if err != nil {
		return nil, err
	}
	log := NewLogger(os.Stderr, cfg.Verbose).With("home", cfg.Home)

	accounts := account.New(fs, log)
	sessions := session.New(accounts, fs, log)
	return &Wire{
		Store:    fs,
		Accounts: accounts,
		Prekeys:  prekey.New(accounts, log),
		Sessions: sessions,
		Messages: message.New(accounts, sessions, log),
		Groups:   group.New(fs, log),
		Log:      log,
	}, nil
}
