package olm

import (
	"errors"
	"testing"

	"olmcore/internal/crypto"
	"olmcore/internal/pickle"
)

var libolmKey = []byte("DEFAULT_PICKLE_KEY")

func writePair(w *pickle.Writer, kp crypto.Curve25519KeyPair) {
	w.Write(kp.Public[:])
	w.Write(kp.Secret[:])
}

func writeOneTimeKey(w *pickle.Writer, k *oneTimeKey) {
	w.Uint32(uint32(k.ID))
	w.Bool(k.Published)
	writePair(w, k.Key)
}

// libolmAccount renders a in libolm's version 4 account layout.
func libolmAccount(a *Account) []byte {
	var w pickle.Writer
	w.Uint32(libolmAccountV4)
	w.Write(a.signing.Public[:])
	w.Write(a.signing.Expanded[:])
	writePair(&w, a.identity)
	w.Uint32(uint32(len(a.oneTimeKeys)))
	for i := range a.oneTimeKeys {
		writeOneTimeKey(&w, &a.oneTimeKeys[i])
	}
	switch {
	case a.previousFallback != nil:
		w.Uint8(2)
		writeOneTimeKey(&w, a.fallback)
		writeOneTimeKey(&w, a.previousFallback)
	case a.fallback != nil:
		w.Uint8(1)
		writeOneTimeKey(&w, a.fallback)
	default:
		w.Uint8(0)
	}
	w.Uint32(uint32(a.nextKeyID))
	return w.Bytes()
}

// libolmSession renders an active session in libolm's layout.
func libolmSession(s *Session) []byte {
	var w pickle.Writer
	w.Uint32(libolmSessionV1)
	w.Bool(s.HasReceivedMessage())
	w.Write(s.keys.IdentityKey[:])
	w.Write(s.keys.BaseKey[:])
	w.Write(s.keys.OneTimeKey[:])

	active := s.ratchet.Active
	w.Write(active.Root[:])
	w.Uint32(1)
	writePair(&w, active.Key)
	w.Write(active.Chain.Key[:])
	w.Uint32(active.Chain.Index)

	chains := s.chains.Chains
	w.Uint32(uint32(len(chains)))
	skipped := 0
	for i := len(chains) - 1; i >= 0; i-- {
		w.Write(chains[i].RatchetKey[:])
		w.Write(chains[i].Chain.Key[:])
		w.Uint32(chains[i].Chain.Index)
		skipped += len(chains[i].Skipped)
	}
	w.Uint32(uint32(skipped))
	for _, c := range chains {
		for _, mk := range c.Skipped {
			w.Write(mk.RatchetKey[:])
			w.Write(mk.Key[:])
			w.Uint32(mk.Index)
		}
	}
	return w.Bytes()
}

func TestAccountFromLibolmPickle(t *testing.T) {
	a, err := NewAccount()
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	if err := a.GenerateOneTimeKeys(3); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	if err := a.GenerateFallbackKey(); err != nil {
		t.Fatalf("GenerateFallbackKey: %v", err)
	}
	if err := a.GenerateFallbackKey(); err != nil {
		t.Fatalf("GenerateFallbackKey: %v", err)
	}

	p := pickle.LibolmEncrypt(libolmKey, libolmAccount(a))
	b, err := AccountFromLibolmPickle(p, libolmKey)
	if err != nil {
		t.Fatalf("AccountFromLibolmPickle: %v", err)
	}
	if a.IdentityKeys() != b.IdentityKeys() {
		t.Fatal("identity keys differ")
	}
	if a.Sign([]byte("m")) != b.Sign([]byte("m")) {
		t.Fatal("imported signing key signs differently")
	}
	if len(b.OneTimeKeys()) != 3 || b.nextKeyID != a.nextKeyID {
		t.Fatal("one-time keys not imported")
	}
	if b.fallback == nil || b.previousFallback == nil || b.fallback.Key.Public != a.fallback.Key.Public {
		t.Fatal("fallback keys not imported")
	}
}

func TestAccountFromLibolmPickleV3(t *testing.T) {
	a, err := NewAccount()
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	unused, err := crypto.GenerateCurve25519()
	if err != nil {
		t.Fatalf("GenerateCurve25519: %v", err)
	}

	var w pickle.Writer
	w.Uint32(libolmAccountV3)
	w.Write(a.signing.Public[:])
	w.Write(a.signing.Expanded[:])
	writePair(&w, a.identity)
	w.Uint32(0)
	// Unpublished slots mean no fallback key.
	writeOneTimeKey(&w, &oneTimeKey{Key: unused})
	writeOneTimeKey(&w, &oneTimeKey{Key: unused})
	w.Uint32(0)

	b, err := AccountFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, w.Bytes()), libolmKey)
	if err != nil {
		t.Fatalf("AccountFromLibolmPickle: %v", err)
	}
	if b.fallback != nil || b.previousFallback != nil {
		t.Fatal("unpublished v3 fallback slots must be ignored")
	}
}

func TestAccountFromLibolmPickleErrors(t *testing.T) {
	var w pickle.Writer
	w.Uint32(9)
	if _, err := AccountFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, w.Bytes()), libolmKey); !errors.Is(err, ErrCorruptPickle) {
		t.Fatalf("unknown version: want ErrCorruptPickle, got %v", err)
	}

	a, err := NewAccount()
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	raw := libolmAccount(a)
	if _, err := AccountFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, raw[:40]), libolmKey); !errors.Is(err, ErrCorruptPickle) {
		t.Fatalf("truncated: want ErrCorruptPickle, got %v", err)
	}
	if _, err := AccountFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, raw), []byte("other")); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("wrong key: want ErrWrongPassphrase, got %v", err)
	}
}

func TestSessionFromLibolmPickle(t *testing.T) {
	alice, err := NewAccount()
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	bob, err := NewAccount()
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	if err := bob.GenerateOneTimeKeys(1); err != nil {
		t.Fatalf("GenerateOneTimeKeys: %v", err)
	}
	var otk Curve25519PublicKey
	for _, k := range bob.OneTimeKeys() {
		otk = k
	}

	as, err := alice.CreateOutboundSession(SessionConfigV1(), bob.Curve25519Key(), otk)
	if err != nil {
		t.Fatalf("CreateOutboundSession: %v", err)
	}
	first, err := as.Encrypt([]byte("first"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	res, err := bob.CreateInboundSession(alice.Curve25519Key(), first)
	if err != nil {
		t.Fatalf("CreateInboundSession: %v", err)
	}
	bs := res.Session

	// Leave one of Bob's messages undelivered so Alice holds a skipped key.
	late, err := bs.Encrypt([]byte("late"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	onTime, err := bs.Encrypt([]byte("on time"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := as.Decrypt(onTime); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	// Alice replies so her ratchet is active again.
	reply, err := as.Encrypt([]byte("reply"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := bs.Decrypt(reply); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	imported, err := SessionFromLibolmPickle(pickle.LibolmEncrypt(libolmKey, libolmSession(as)), libolmKey)
	if err != nil {
		t.Fatalf("SessionFromLibolmPickle: %v", err)
	}
	if imported.SessionID() != as.SessionID() {
		t.Fatal("session id changed on import")
	}
	got, err := imported.Decrypt(late)
	if err != nil || string(got) != "late" {
		t.Fatalf("skipped key not imported: %q %v", got, err)
	}
	msg, err := imported.Encrypt([]byte("from import"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err = bs.Decrypt(msg)
	if err != nil || string(got) != "from import" {
		t.Fatalf("Bob could not read the imported session: %q %v", got, err)
	}
}
