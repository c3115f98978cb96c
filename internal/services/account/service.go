package account

import (
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/pkg/olm"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service creates, loads and saves the local account.
//
// The account pickle is sealed with the passphrase; the profile stored next
// to it holds only public keys.
type Service struct {
	store domain.AccountStore
	log   *slog.Logger
	now   func() time.Time
}

// New returns an account service backed by the given store.
func New(s domain.AccountStore, log *slog.Logger) *Service {
	return &Service{store: s, log: log, now: time.Now}
}

// CreateAccount generates a new account and stores it under passphrase.
// It refuses to replace an existing account.
func (s *Service) CreateAccount(passphrase string) (domain.Profile, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Profile{}, ErrWeakPassphrase
	}
	if err := s.ensureEmpty(); err != nil {
		return domain.Profile{}, err
	}
	acc, err := olm.NewAccount()
	if err != nil {
		return domain.Profile{}, err
	}
	defer acc.Wipe()
	return s.persistNew(passphrase, acc, "created")
}

// ImportLibolm imports an account pickled by libolm with key and stores it
// under passphrase.
func (s *Service) ImportLibolm(passphrase, pickle string, key []byte) (domain.Profile, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Profile{}, ErrWeakPassphrase
	}
	if err := s.ensureEmpty(); err != nil {
		return domain.Profile{}, err
	}
	acc, err := olm.AccountFromLibolmPickle(pickle, key)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("import libolm account: %w", err)
	}
	defer acc.Wipe()
	return s.persistNew(passphrase, acc, "imported")
}

// LoadAccount unpickles the account. Callers must Wipe it when done.
func (s *Service) LoadAccount(passphrase string) (*olm.Account, error) {
	p, _, ok, err := s.store.LoadAccount()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNoAccount
	}
	return olm.AccountFromPickle(p, []byte(passphrase))
}

// SaveAccount re-pickles acc, keeping the stored profile.
func (s *Service) SaveAccount(passphrase string, acc *olm.Account) error {
	_, profile, ok, err := s.store.LoadAccount()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNoAccount
	}
	p, err := acc.Pickle([]byte(passphrase))
	if err != nil {
		return err
	}
	return s.store.SaveAccount(p, profile)
}

// Profile returns the public profile without unlocking the account.
func (s *Service) Profile() (domain.Profile, error) {
	_, profile, ok, err := s.store.LoadAccount()
	if err != nil {
		return domain.Profile{}, err
	}
	if !ok {
		return domain.Profile{}, domain.ErrNoAccount
	}
	return profile, nil
}

// Fingerprint unlocks the account and returns the fingerprint of its
// Curve25519 identity key.
func (s *Service) Fingerprint(passphrase string) (domain.Fingerprint, error) {
	acc, err := s.LoadAccount(passphrase)
	if err != nil {
		return "", err
	}
	defer acc.Wipe()
	return fingerprint(acc), nil
}

// Sign signs message with the account's Ed25519 key and returns the base64
// signature.
func (s *Service) Sign(passphrase string, message []byte) (string, error) {
	acc, err := s.LoadAccount(passphrase)
	if err != nil {
		return "", err
	}
	defer acc.Wipe()
	return acc.Sign(message).ToBase64(), nil
}

func (s *Service) ensureEmpty() error {
	_, _, ok, err := s.store.LoadAccount()
	if err != nil {
		return err
	}
	if ok {
		return domain.ErrAccountExists
	}
	return nil
}

func (s *Service) persistNew(passphrase string, acc *olm.Account, verb string) (domain.Profile, error) {
	p, err := acc.Pickle([]byte(passphrase))
	if err != nil {
		return domain.Profile{}, err
	}
	keys := acc.IdentityKeys()
	profile := domain.Profile{
		IdentityKey: keys.Curve25519.ToBase64(),
		SigningKey:  keys.Ed25519.ToBase64(),
		Fingerprint: fingerprint(acc),
		CreatedUTC:  s.now().Unix(),
	}
	if err := s.store.SaveAccount(p, profile); err != nil {
		return domain.Profile{}, err
	}
	s.log.Info("account "+verb, "fingerprint", profile.Fingerprint, "one_time_keys", acc.StoredOneTimeKeyCount())
	return profile, nil
}

func fingerprint(acc *olm.Account) domain.Fingerprint {
	return domain.Fingerprint(crypto.Fingerprint(acc.Curve25519Key(), acc.Ed25519Key()))
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
