package prekey_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"olmcore/internal/pickle"
	"olmcore/internal/services/account"
	"olmcore/internal/services/prekey"
	"olmcore/internal/store"
	"olmcore/pkg/olm"
)

const pass = "Correct-Horse-9-Battery"

func TestMain(m *testing.M) {
	pickle.DefaultParams = pickle.Params{Time: 1, Memory: 64, Threads: 1}
	os.Exit(m.Run())
}

func newService(t *testing.T) *prekey.Service {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := account.New(fs, log)
	if _, err := accounts.CreateAccount(pass); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return prekey.New(accounts, log)
}

func TestGenerateAndPublish(t *testing.T) {
	svc := newService(t)

	b, err := svc.GenerateOneTimeKeys(pass, 5, true)
	if err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if len(b.OneTimeKeys) != 5 || len(b.FallbackKey) != 1 {
		t.Fatalf("bundle has %d one-time and %d fallback keys", len(b.OneTimeKeys), len(b.FallbackKey))
	}
	if err := prekey.VerifyBundle(b); err != nil {
		t.Fatalf("VerifyBundle: %v", err)
	}

	published, err := svc.Publish(pass)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(published.OneTimeKeys) != 5 {
		t.Fatalf("published %d keys", len(published.OneTimeKeys))
	}

	after, err := svc.Bundle(pass)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if len(after.OneTimeKeys) != 0 || len(after.FallbackKey) != 0 {
		t.Fatalf("keys still unpublished after Publish: %+v", after)
	}
	if err := prekey.VerifyBundle(after); err != nil {
		t.Fatalf("VerifyBundle on empty bundle: %v", err)
	}
}

func TestGenerateOneTimeKeys_Capacity(t *testing.T) {
	svc := newService(t)
	if _, err := svc.GenerateOneTimeKeys(pass, olm.MaxNumberOfOneTimeKeys+1, false); !errors.Is(err, olm.ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}
	b, err := svc.Bundle(pass)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if len(b.OneTimeKeys) != 0 {
		t.Fatalf("failed generation left %d keys", len(b.OneTimeKeys))
	}
}

func TestVerifyBundle_Tampered(t *testing.T) {
	svc := newService(t)
	b, err := svc.GenerateOneTimeKeys(pass, 2, false)
	if err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	for id := range b.OneTimeKeys {
		b.OneTimeKeys[id] = b.IdentityKey
		break
	}
	if err := prekey.VerifyBundle(b); !errors.Is(err, olm.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}
