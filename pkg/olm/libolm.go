package olm

import (
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/ratchet"
)

const (
	libolmAccountV3 = 3
	libolmAccountV4 = 4
	libolmSessionV1 = 1

	libolmMaxSenderChains = 1
	libolmMaxSkippedKeys  = 40
)

func readCurve25519Pair(r *pickle.Reader) crypto.Curve25519KeyPair {
	var pub crypto.Curve25519PublicKey
	var secret [32]byte
	r.Bytes(pub[:])
	r.Bytes(secret[:])
	if r.Err() != nil {
		return crypto.Curve25519KeyPair{}
	}
	kp, err := crypto.Curve25519KeyPairFromSecret(secret[:])
	if err != nil || kp.Public != pub {
		r.Fail(fmt.Errorf("libolm pickle: curve25519 pair mismatch: %w", domain.ErrCorruptPickle))
	}
	return kp
}

func readOneTimeKey(r *pickle.Reader) *oneTimeKey {
	k := &oneTimeKey{ID: KeyID(r.Uint32())}
	k.Published = r.Bool()
	k.Key = readCurve25519Pair(r)
	return k
}

// AccountFromLibolmPickle imports an account pickled by libolm with key.
func AccountFromLibolmPickle(p string, key []byte) (*Account, error) {
	plain, err := pickle.LibolmDecrypt(key, p)
	if err != nil {
		return nil, err
	}
	r := pickle.NewReader(plain)

	version := r.Uint32()
	if r.Err() == nil && version != libolmAccountV3 && version != libolmAccountV4 {
		return nil, fmt.Errorf("libolm account version %d: %w", version, domain.ErrCorruptPickle)
	}

	var edPub crypto.Ed25519PublicKey
	var edExpanded [crypto.Ed25519ExpandedKeySize]byte
	r.Bytes(edPub[:])
	r.Bytes(edExpanded[:])
	identity := readCurve25519Pair(r)

	n := r.Count(MaxNumberOfOneTimeKeys)
	otks := make([]oneTimeKey, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		otks = append(otks, *readOneTimeKey(r))
	}

	var fallback, previous *oneTimeKey
	if version == libolmAccountV3 {
		// Both slots are always present; the published flag marks which
		// ones hold a key.
		fallback, previous = readOneTimeKey(r), readOneTimeKey(r)
		if !fallback.Published {
			fallback, previous = nil, nil
		} else if !previous.Published {
			previous = nil
		}
	} else {
		switch r.Uint8() {
		case 2:
			fallback, previous = readOneTimeKey(r), readOneTimeKey(r)
		case 1:
			fallback = readOneTimeKey(r)
		case 0:
		default:
			r.Fail(fmt.Errorf("libolm account: fallback key count: %w", domain.ErrCorruptPickle))
		}
	}
	next := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}

	signing, err := crypto.Ed25519KeyPairFromExpanded(edExpanded[:])
	if err != nil || signing.Public != edPub {
		return nil, fmt.Errorf("libolm account: ed25519 pair mismatch: %w", domain.ErrCorruptPickle)
	}
	return &Account{
		signing:          signing,
		identity:         identity,
		oneTimeKeys:      otks,
		fallback:         fallback,
		previousFallback: previous,
		nextKeyID:        KeyID(next),
	}, nil
}

// SessionFromLibolmPickle imports a session pickled by libolm with key.
// Imported sessions always use SessionConfigV1.
func SessionFromLibolmPickle(p string, key []byte) (*Session, error) {
	plain, err := pickle.LibolmDecrypt(key, p)
	if err != nil {
		return nil, err
	}
	r := pickle.NewReader(plain)

	version := r.Uint32()
	if r.Err() == nil && version != libolmSessionV1 {
		return nil, fmt.Errorf("libolm session version %d: %w", version, domain.ErrCorruptPickle)
	}
	_ = r.Bool() // received flag; implied by the receiver chains

	var keys SessionKeys
	r.Bytes(keys.IdentityKey[:])
	r.Bytes(keys.BaseKey[:])
	r.Bytes(keys.OneTimeKey[:])

	var root ratchet.RootKey
	r.Bytes(root[:])

	var sender *ratchet.ActiveRatchet
	for i, n := 0, r.Count(libolmMaxSenderChains); i < n; i++ {
		sender = &ratchet.ActiveRatchet{Root: root}
		sender.Key = readCurve25519Pair(r)
		r.Bytes(sender.Chain.Key[:])
		sender.Chain.Index = r.Uint32()
	}

	// libolm keeps receiver chains newest first.
	var newestFirst []*ratchet.ReceiverChain
	for i, n := 0, r.Count(ratchet.MaxReceiverChains); i < n; i++ {
		c := &ratchet.ReceiverChain{}
		r.Bytes(c.RatchetKey[:])
		r.Bytes(c.Chain.Key[:])
		c.Chain.Index = r.Uint32()
		newestFirst = append(newestFirst, c)
	}

	var chains ratchet.ChainStore
	for i := len(newestFirst) - 1; i >= 0; i-- {
		chains.Insert(newestFirst[i])
	}

	for i, n := 0, r.Count(libolmMaxSkippedKeys); i < n; i++ {
		var mk ratchet.MessageKey
		r.Bytes(mk.RatchetKey[:])
		r.Bytes(mk.Key[:])
		mk.Index = r.Uint32()
		if c := chains.Get(mk.RatchetKey); c != nil && r.Err() == nil {
			c.Skipped = append(c.Skipped, mk)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	s := &Session{keys: keys, chains: chains, config: SessionConfigV1()}
	switch {
	case sender != nil:
		s.ratchet = &ratchet.DoubleRatchet{Active: sender}
	case len(newestFirst) > 0:
		s.ratchet = ratchet.NewInactive(root, newestFirst[0].RatchetKey)
	default:
		return nil, fmt.Errorf("libolm session: no chains: %w", domain.ErrCorruptPickle)
	}
	return s, nil
}
