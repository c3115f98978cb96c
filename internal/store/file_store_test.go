package store_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"olmcore/internal/domain"
	"olmcore/internal/store"
)

func newStore(t *testing.T) (*store.FileStore, string) {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	fs, err := store.NewFileStore(home)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return fs, home
}

func TestAccount_SaveLoad(t *testing.T) {
	fs, home := newStore(t)
	var accounts domain.AccountStore = fs

	if _, _, ok, err := accounts.LoadAccount(); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	profile := domain.Profile{IdentityKey: "curve", SigningKey: "ed", Fingerprint: "abcd", CreatedUTC: 42}
	if err := accounts.SaveAccount("pickled-account", profile); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	p, got, ok, err := accounts.LoadAccount()
	if err != nil || !ok {
		t.Fatalf("LoadAccount: ok=%v err=%v", ok, err)
	}
	if p != "pickled-account" {
		t.Fatalf("pickle %q", p)
	}
	if diff := cmp.Diff(profile, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(filepath.Join(home, "account.pickle"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode %v", info.Mode().Perm())
	}
}

func TestSessions_OrderAndReplace(t *testing.T) {
	fs, _ := newStore(t)
	var sessions domain.SessionStore = fs

	for _, s := range []domain.StoredSession{
		{ID: "a", Peer: "bob", Pickle: "1", LastUsedUTC: 10},
		{ID: "b", Peer: "bob", Pickle: "2", LastUsedUTC: 30},
		{ID: "c", Peer: "carol", Pickle: "3", LastUsedUTC: 20},
		{ID: "a", Peer: "bob", Pickle: "4", LastUsedUTC: 40},
	} {
		if err := sessions.SaveSession(s); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}

	got, err := sessions.LoadSessions("bob")
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	want := []domain.StoredSession{
		{ID: "a", Peer: "bob", Pickle: "4", LastUsedUTC: 40},
		{ID: "b", Peer: "bob", Pickle: "2", LastUsedUTC: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sessions mismatch (-want +got):\n%s", diff)
	}

	none, err := sessions.LoadSessions("dave")
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown peer: %v %v", none, err)
	}
}

func TestGroups_Direction(t *testing.T) {
	fs, _ := newStore(t)
	var groups domain.GroupSessionStore = fs

	out := domain.StoredGroupSession{ID: "room", Outbound: true, Pickle: "out"}
	in := domain.StoredGroupSession{ID: "room", Outbound: false, Pickle: "in"}
	for _, g := range []domain.StoredGroupSession{out, in} {
		if err := groups.SaveGroupSession(g); err != nil {
			t.Fatalf("SaveGroupSession: %v", err)
		}
	}

	got, ok, err := groups.LoadGroupSession("room", true)
	if err != nil || !ok || got.Pickle != "out" {
		t.Fatalf("outbound: %+v ok=%v err=%v", got, ok, err)
	}
	got, ok, err = groups.LoadGroupSession("room", false)
	if err != nil || !ok || got.Pickle != "in" {
		t.Fatalf("inbound: %+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := groups.LoadGroupSession("other", false); ok {
		t.Fatal("found a group that was never saved")
	}
}

func TestConcurrentWrites(t *testing.T) {
	fs, _ := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := domain.StoredSession{ID: string(rune('a' + i)), Peer: "bob", LastUsedUTC: int64(i)}
			if err := fs.SaveSession(s); err != nil {
				t.Errorf("SaveSession: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := fs.LoadSessions("bob")
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if len(got) != 16 {
		t.Fatalf("want 16 sessions, got %d", len(got))
	}
}

func TestCorruptJSON(t *testing.T) {
	fs, home := newStore(t)
	if err := os.WriteFile(filepath.Join(home, "sessions.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.LoadSessions("bob"); err == nil {
		t.Fatal("expected a decode error")
	}
}
