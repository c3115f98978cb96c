package megolm

import (
	"errors"
	"testing"

	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/hashratchet"
)

var libolmKey = []byte("DEFAULT_PICKLE_KEY")

func writeRatchet(w *pickle.Writer, r *hashratchet.Ratchet) {
	w.Write(r.Data[:])
	w.Uint32(r.Counter)
}

func libolmGroupSession(s *GroupSession) []byte {
	var w pickle.Writer
	w.Uint32(libolmGroupSessionV1)
	writeRatchet(&w, s.ratchet)
	w.Write(s.signing.Public[:])
	w.Write(s.signing.Expanded[:])
	return w.Bytes()
}

func libolmInboundSession(s *InboundGroupSession, version uint32) []byte {
	var w pickle.Writer
	w.Uint32(version)
	writeRatchet(&w, s.initial)
	writeRatchet(&w, s.latest)
	w.Write(s.signingKey[:])
	if version == libolmInboundSessionV2 {
		w.Bool(s.verified)
	}
	return w.Bytes()
}

func TestGroupSessionFromLibolmPickle(t *testing.T) {
	out, err := NewGroupSession(SessionConfigV1())
	if err != nil {
		t.Fatalf("NewGroupSession: %v", err)
	}
	in := NewInboundGroupSession(out.SessionKey(), SessionConfigV1())
	out.Encrypt([]byte("skip"))

	p := pickle.LibolmEncrypt(libolmKey, libolmGroupSession(out))
	imported, err := GroupSessionFromLibolmPickle(p, libolmKey)
	if err != nil {
		t.Fatalf("GroupSessionFromLibolmPickle: %v", err)
	}
	if imported.SessionID() != out.SessionID() || imported.MessageIndex() != 1 {
		t.Fatal("imported session state differs")
	}
	got, err := in.Decrypt(imported.Encrypt([]byte("after import")))
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(got.Plaintext) != "after import" || got.MessageIndex != 1 {
		t.Fatalf("got %q at %d", got.Plaintext, got.MessageIndex)
	}

	if _, err := GroupSessionFromLibolmPickle(p, []byte("other key")); !errors.Is(err, domain.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}

func TestGroupSessionFromLibolmPickleRejectsMismatchedKey(t *testing.T) {
	out, err := NewGroupSession(SessionConfigV1())
	if err != nil {
		t.Fatalf("NewGroupSession: %v", err)
	}
	raw := libolmGroupSession(out)
	// Corrupt the stored public key so it no longer matches the private key.
	raw[4+hashratchet.Length+4] ^= 0x01
	if _, err := GroupSessionFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, raw), libolmKey); err == nil {
		t.Fatal("expected an error for a mismatched signing key")
	}
}

func TestInboundGroupSessionFromLibolmPickle(t *testing.T) {
	out, err := NewGroupSession(SessionConfigV1())
	if err != nil {
		t.Fatalf("NewGroupSession: %v", err)
	}
	key := &out.SessionKey().ExportedSessionKey
	first := out.Encrypt([]byte("zero"))
	second := out.Encrypt([]byte("one"))

	unverified := ImportInboundGroupSession(key, SessionConfigV1())
	if _, err := unverified.Decrypt(second); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	for _, tc := range []struct {
		version      uint32
		wantVerified bool
	}{
		{libolmInboundSessionV1, true},
		{libolmInboundSessionV2, false},
	} {
		p := pickle.LibolmEncrypt(libolmKey, libolmInboundSession(unverified, tc.version))
		imported, err := InboundGroupSessionFromLibolmPickle(p, libolmKey)
		if err != nil {
			t.Fatalf("v%d: %v", tc.version, err)
		}
		if imported.IsVerified() != tc.wantVerified {
			t.Fatalf("v%d: verified = %v", tc.version, imported.IsVerified())
		}
		if imported.FirstKnownIndex() != 0 || imported.latest.Index() != 1 {
			t.Fatalf("v%d: ratchet indices not restored", tc.version)
		}
		got, err := imported.Decrypt(first)
		if err != nil {
			t.Fatalf("v%d: Decrypt: %v", tc.version, err)
		}
		if string(got.Plaintext) != "zero" {
			t.Fatalf("v%d: got %q", tc.version, got.Plaintext)
		}
	}
}

func TestInboundGroupSessionFromLibolmPickleRejectsBadVersion(t *testing.T) {
	out, err := NewGroupSession(SessionConfigV1())
	if err != nil {
		t.Fatalf("NewGroupSession: %v", err)
	}
	in := NewInboundGroupSession(out.SessionKey(), SessionConfigV1())
	p := pickle.LibolmEncrypt(libolmKey, libolmInboundSession(in, 7))
	if _, err := InboundGroupSessionFromLibolmPickle(p, libolmKey); !errors.Is(err, domain.ErrCorruptPickle) {
		t.Fatalf("want ErrCorruptPickle, got %v", err)
	}

	truncated := libolmInboundSession(in, libolmInboundSessionV2)
	truncated = truncated[:len(truncated)-10]
	if _, err := InboundGroupSessionFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, truncated), libolmKey); err == nil {
		t.Fatal("expected an error for a truncated pickle")
	}
}
