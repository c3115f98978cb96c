package olm_test

import (
	"errors"
	"math"
	"os"
	"testing"

	"olmcore/internal/pickle"
	"olmcore/pkg/olm"
)

func TestMain(m *testing.M) {
	pickle.DefaultParams = pickle.Params{Time: 1, Memory: 64, Threads: 1}
	os.Exit(m.Run())
}

var passphrase = []byte("It's a secret to everybody")

func newAccount(t *testing.T) *olm.Account {
	t.Helper()
	a, err := olm.NewAccount()
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	return a
}

func TestGenerateOneTimeKeys(t *testing.T) {
	a := newAccount(t)
	if err := a.GenerateOneTimeKeys(10); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if got := len(a.OneTimeKeys()); got != 10 {
		t.Fatalf("want 10 keys, got %d", got)
	}
	if err := a.GenerateOneTimeKeys(5); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if got := a.StoredOneTimeKeyCount(); got != 15 {
		t.Fatalf("want 15 stored keys, got %d", got)
	}
}

func TestGenerateOneTimeKeysCapacity(t *testing.T) {
	a := newAccount(t)
	if err := a.GenerateOneTimeKeys(a.MaxNumberOfOneTimeKeys() - 1); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	before := a.OneTimeKeys()

	err := a.GenerateOneTimeKeys(2)
	if !errors.Is(err, olm.ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}
	after := a.OneTimeKeys()
	if len(after) != len(before) {
		t.Fatalf("pool changed from %d to %d keys", len(before), len(after))
	}
	for id, k := range before {
		if after[id] != k {
			t.Fatalf("key %s changed", id)
		}
	}
	if err := a.GenerateOneTimeKeys(math.MaxInt); !errors.Is(err, olm.ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded for MaxInt, got %v", err)
	}
	if got := len(a.OneTimeKeys()); got != len(before) {
		t.Fatalf("pool changed from %d to %d keys", len(before), got)
	}
	if err := a.GenerateOneTimeKeys(1); err != nil {
		t.Fatalf("filling the last slot: %v", err)
	}
}

func TestKeyIDsIncrement(t *testing.T) {
	a := newAccount(t)
	if err := a.GenerateOneTimeKeys(3); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	for _, id := range []olm.KeyID{0, 1, 2} {
		if _, ok := a.OneTimeKeys()[id]; !ok {
			t.Fatalf("missing key id %d", id)
		}
	}
	if got := olm.KeyID(1).ToBase64(); got != "AAAAAAAAAAE" {
		t.Fatalf("KeyID(1).ToBase64() = %q", got)
	}
}

func TestMarkKeysAsPublished(t *testing.T) {
	a := newAccount(t)
	if err := a.GenerateOneTimeKeys(2); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if err := a.GenerateFallbackKey(); err != nil {
		t.Fatalf("GenerateFallbackKey: %v", err)
	}
	a.MarkKeysAsPublished()
	if len(a.OneTimeKeys()) != 0 || len(a.FallbackKey()) != 0 {
		t.Fatal("published keys still reported as unpublished")
	}
	if a.StoredOneTimeKeyCount() != 2 {
		t.Fatal("publishing must not remove keys")
	}
}

func TestFallbackKeyRotation(t *testing.T) {
	a := newAccount(t)
	if a.ForgetFallbackKey() {
		t.Fatal("nothing to forget on a fresh account")
	}
	if err := a.GenerateFallbackKey(); err != nil {
		t.Fatalf("GenerateFallbackKey: %v", err)
	}
	first := a.FallbackKey()
	if len(first) != 1 {
		t.Fatalf("want one fallback key, got %d", len(first))
	}
	if err := a.GenerateFallbackKey(); err != nil {
		t.Fatalf("GenerateFallbackKey: %v", err)
	}
	second := a.FallbackKey()
	for id := range first {
		if _, ok := second[id]; ok {
			t.Fatal("rotation must replace the current fallback key")
		}
	}
	if !a.ForgetFallbackKey() {
		t.Fatal("previous fallback key should have been forgotten")
	}
}

func TestSignVerifies(t *testing.T) {
	a := newAccount(t)
	msg := []byte("sign me")
	sig := a.Sign(msg)
	if err := a.Ed25519Key().Verify(msg, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if a.Sign(msg) != sig {
		t.Fatal("signatures must be deterministic")
	}
	parsed, err := olm.Ed25519SignatureFromBase64(sig.ToBase64())
	if err != nil || parsed != sig {
		t.Fatalf("signature base64 round trip failed: %v", err)
	}
}

func TestAccountPickleRoundTrip(t *testing.T) {
	a := newAccount(t)
	if err := a.GenerateOneTimeKeys(5); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if err := a.GenerateFallbackKey(); err != nil {
		t.Fatalf("GenerateFallbackKey: %v", err)
	}

	p, err := a.Pickle(passphrase)
	if err != nil {
		t.Fatalf("Pickle: %v", err)
	}
	b, err := olm.AccountFromPickle(p, passphrase)
	if err != nil {
		t.Fatalf("AccountFromPickle: %v", err)
	}
	if a.IdentityKeys() != b.IdentityKeys() {
		t.Fatal("identity keys differ")
	}
	if len(b.OneTimeKeys()) != 5 || len(b.FallbackKey()) != 1 {
		t.Fatal("key pool not restored")
	}
	if a.Sign([]byte("x")) != b.Sign([]byte("x")) {
		t.Fatal("restored signing key differs")
	}

	if err := b.GenerateOneTimeKeys(1); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if _, ok := b.OneTimeKeys()[6]; !ok {
		t.Fatal("key id counter not restored")
	}
}

func TestAccountPickleWrongPassphrase(t *testing.T) {
	a := newAccount(t)
	p, err := a.Pickle(passphrase)
	if err != nil {
		t.Fatalf("Pickle: %v", err)
	}
	if _, err := olm.AccountFromPickle(p, []byte("wrong")); !errors.Is(err, olm.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}
