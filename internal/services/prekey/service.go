package prekey

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"olmcore/internal/domain"
	"olmcore/internal/services/account"
	"olmcore/pkg/olm"
)

// Service generates keys on the local account and builds bundles from them.
type Service struct {
	accounts *account.Service
	log      *slog.Logger
}

// New returns a prekey service operating on the accounts service.
func New(accounts *account.Service, log *slog.Logger) *Service {
	return &Service{accounts: accounts, log: log}
}

// GenerateOneTimeKeys adds n one-time keys and, if fallback is set, rotates
// the fallback key. It returns the unpublished keys.
func (s *Service) GenerateOneTimeKeys(passphrase string, n int, fallback bool) (domain.KeyBundle, error) {
	acc, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	defer acc.Wipe()

	if n > 0 {
		if err := acc.GenerateOneTimeKeys(n); err != nil {
			return domain.KeyBundle{}, fmt.Errorf("generate %d one-time keys: %w", n, err)
		}
	}
	if fallback {
		if err := acc.GenerateFallbackKey(); err != nil {
			return domain.KeyBundle{}, err
		}
	}
	if err := s.accounts.SaveAccount(passphrase, acc); err != nil {
		return domain.KeyBundle{}, err
	}
	s.log.Info("keys generated", "one_time_keys", n, "fallback", fallback, "stored", acc.StoredOneTimeKeyCount())
	return bundle(acc)
}

// Bundle returns the signed bundle of keys not yet published.
func (s *Service) Bundle(passphrase string) (domain.KeyBundle, error) {
	acc, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	defer acc.Wipe()
	return bundle(acc)
}

// Publish returns the signed bundle of unpublished keys and marks them as
// published, so the next bundle only holds keys generated afterwards.
func (s *Service) Publish(passphrase string) (domain.KeyBundle, error) {
	acc, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	defer acc.Wipe()

	b, err := bundle(acc)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	acc.MarkKeysAsPublished()
	if err := s.accounts.SaveAccount(passphrase, acc); err != nil {
		return domain.KeyBundle{}, err
	}
	s.log.Info("keys published", "one_time_keys", len(b.OneTimeKeys), "fallback", len(b.FallbackKey))
	return b, nil
}

// VerifyBundle checks a bundle's signature against its signing key.
func VerifyBundle(b domain.KeyBundle) error {
	key, err := olm.Ed25519PublicKeyFromBase64(b.SigningKey)
	if err != nil {
		return err
	}
	sig, err := olm.Ed25519SignatureFromBase64(b.Signature)
	if err != nil {
		return err
	}
	b.Signature = ""
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return key.Verify(payload, sig)
}

func bundle(acc *olm.Account) (domain.KeyBundle, error) {
	keys := acc.IdentityKeys()
	b := domain.KeyBundle{
		IdentityKey: keys.Curve25519.ToBase64(),
		SigningKey:  keys.Ed25519.ToBase64(),
		OneTimeKeys: encodeKeys(acc.OneTimeKeys()),
	}
	if fb := acc.FallbackKey(); len(fb) > 0 {
		b.FallbackKey = encodeKeys(fb)
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	b.Signature = acc.Sign(payload).ToBase64()
	return b, nil
}

func encodeKeys(keys map[olm.KeyID]olm.Curve25519PublicKey) map[string]string {
	out := make(map[string]string, len(keys))
	for id, k := range keys {
		out[id.ToBase64()] = k.ToBase64()
	}
	return out
}
