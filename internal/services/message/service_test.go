package message_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/services/account"
	"olmcore/internal/services/message"
	"olmcore/internal/services/prekey"
	"olmcore/internal/services/session"
	"olmcore/internal/store"
	"olmcore/pkg/olm"
)

const pass = "Correct-Horse-9-Battery"

func TestMain(m *testing.M) {
	pickle.DefaultParams = pickle.Params{Time: 1, Memory: 64, Threads: 1}
	os.Exit(m.Run())
}

type device struct {
	accounts *account.Service
	prekeys  *prekey.Service
	sessions *session.Service
	messages *message.Service
	identity string
}

func newDevice(t *testing.T) *device {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := &device{accounts: account.New(fs, log)}
	d.prekeys = prekey.New(d.accounts, log)
	d.sessions = session.New(d.accounts, fs, log)
	d.messages = message.New(d.accounts, d.sessions, log)

	profile, err := d.accounts.CreateAccount(pass)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	d.identity = profile.IdentityKey
	return d
}

// connect has alice start a session with one of bob's published keys.
func connect(t *testing.T, alice, bob *device) {
	t.Helper()
	b, err := bob.prekeys.GenerateOneTimeKeys(pass, 1, false)
	if err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if _, err := bob.prekeys.Publish(pass); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	var otk string
	for _, k := range b.OneTimeKeys {
		otk = k
	}
	if _, err := alice.sessions.InitiateSession(pass, bob.identity, otk, olm.SessionConfigV2()); err != nil {
		t.Fatalf("InitiateSession: %v", err)
	}
}

func send(t *testing.T, from, to *device, text string) olm.OlmMessage {
	t.Helper()
	msg, err := from.messages.EncryptMessage(pass, to.identity, []byte(text))
	if err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}
	got, err := to.messages.DecryptMessage(pass, from.identity, msg)
	if err != nil {
		t.Fatalf("DecryptMessage: %v", err)
	}
	if string(got) != text {
		t.Fatalf("got %q, want %q", got, text)
	}
	return msg
}

func TestConversation(t *testing.T) {
	alice, bob := newDevice(t), newDevice(t)
	connect(t, alice, bob)

	first := send(t, alice, bob, "Hello there")
	if first.Type != olm.MessageTypePreKey {
		t.Fatalf("first message type %d", first.Type)
	}
	acc, err := bob.accounts.LoadAccount(pass)
	if err != nil {
		t.Fatalf("LoadAccount: %v", err)
	}
	if acc.StoredOneTimeKeyCount() != 0 {
		t.Fatal("one-time key not consumed")
	}

	// A second pre-key message before any reply reuses bob's session.
	second := send(t, alice, bob, "still there?")
	if second.Type != olm.MessageTypePreKey {
		t.Fatalf("second message type %d", second.Type)
	}
	if recs, _ := bob.sessions.ListSessions(alice.identity); len(recs) != 1 {
		t.Fatalf("bob has %d sessions with alice", len(recs))
	}

	reply := send(t, bob, alice, "General Kenobi")
	if reply.Type != olm.MessageTypeNormal {
		t.Fatalf("reply type %d", reply.Type)
	}
	if msg := send(t, alice, bob, "after reply"); msg.Type != olm.MessageTypeNormal {
		t.Fatalf("message after reply type %d", msg.Type)
	}
}

func TestReplayRejected(t *testing.T) {
	alice, bob := newDevice(t), newDevice(t)
	connect(t, alice, bob)
	send(t, alice, bob, "hi")
	send(t, bob, alice, "hi back")
	msg := send(t, alice, bob, "once")

	if _, err := bob.messages.DecryptMessage(pass, alice.identity, msg); !errors.Is(err, olm.ErrMessageKeyExpired) {
		t.Fatalf("want ErrMessageKeyExpired, got %v", err)
	}
}

func TestNoSession(t *testing.T) {
	alice, bob := newDevice(t), newDevice(t)
	if _, err := alice.messages.EncryptMessage(pass, bob.identity, []byte("x")); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
	msg := olm.OlmMessage{Type: olm.MessageTypeNormal, Ciphertext: "AwoK"}
	if _, err := bob.messages.DecryptMessage(pass, alice.identity, msg); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
}

func TestUnknownOneTimeKey(t *testing.T) {
	alice, bob, carol := newDevice(t), newDevice(t), newDevice(t)
	connect(t, alice, bob)
	msg, err := alice.messages.EncryptMessage(pass, bob.identity, []byte("for bob"))
	if err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}
	// carol never published the key the message names.
	if _, err := carol.messages.DecryptMessage(pass, alice.identity, msg); !errors.Is(err, olm.ErrOneTimeKeyNotFound) {
		t.Fatalf("want ErrOneTimeKeyNotFound, got %v", err)
	}
	if recs, _ := carol.sessions.ListSessions(alice.identity); len(recs) != 0 {
		t.Fatal("failed inbound creation stored a session")
	}
}
