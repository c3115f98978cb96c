package megolm

import (
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/hashratchet"
)

const (
	libolmGroupSessionV1   = 1
	libolmInboundSessionV1 = 1
	libolmInboundSessionV2 = 2
)

func readRatchet(r *pickle.Reader) hashratchet.Ratchet {
	var h hashratchet.Ratchet
	r.Bytes(h.Data[:])
	h.Counter = r.Uint32()
	return h
}

// GroupSessionFromLibolmPickle imports an outbound group session pickled by
// libolm with key. Imported sessions use SessionConfigV1.
func GroupSessionFromLibolmPickle(p string, key []byte) (*GroupSession, error) {
	plain, err := pickle.LibolmDecrypt(key, p)
	if err != nil {
		return nil, err
	}
	r := pickle.NewReader(plain)
	if v := r.Uint32(); r.Err() == nil && v != libolmGroupSessionV1 {
		return nil, fmt.Errorf("libolm group session version %d: %w", v, domain.ErrCorruptPickle)
	}
	ratchet := readRatchet(r)
	var pub crypto.Ed25519PublicKey
	var expanded [crypto.Ed25519ExpandedKeySize]byte
	r.Bytes(pub[:])
	r.Bytes(expanded[:])
	if err := r.Err(); err != nil {
		return nil, err
	}

	signing, err := crypto.Ed25519KeyPairFromExpanded(expanded[:])
	if err != nil || signing.Public != pub {
		return nil, fmt.Errorf("libolm group session: ed25519 pair mismatch: %w", domain.ErrCorruptPickle)
	}
	return &GroupSession{ratchet: &ratchet, signing: signing, config: SessionConfigV1()}, nil
}

// InboundGroupSessionFromLibolmPickle imports an inbound group session
// pickled by libolm with key. Imported sessions use SessionConfigV1.
func InboundGroupSessionFromLibolmPickle(p string, key []byte) (*InboundGroupSession, error) {
	plain, err := pickle.LibolmDecrypt(key, p)
	if err != nil {
		return nil, err
	}
	r := pickle.NewReader(plain)
	version := r.Uint32()
	if r.Err() == nil && version != libolmInboundSessionV1 && version != libolmInboundSessionV2 {
		return nil, fmt.Errorf("libolm inbound group session version %d: %w", version, domain.ErrCorruptPickle)
	}
	initial := readRatchet(r)
	latest := readRatchet(r)
	var pub [crypto.Ed25519PublicKeySize]byte
	r.Bytes(pub[:])
	// Version 1 only ever held keys that were verified on import.
	verified := true
	if version == libolmInboundSessionV2 {
		verified = r.Bool()
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	signingKey, err := crypto.Ed25519PublicKeyFromSlice(pub[:])
	if err != nil {
		return nil, fmt.Errorf("libolm inbound group session: %w", domain.ErrCorruptPickle)
	}
	if latest.Counter < initial.Counter {
		return nil, fmt.Errorf("libolm inbound group session: latest before initial: %w", domain.ErrCorruptPickle)
	}
	return &InboundGroupSession{
		initial:    &initial,
		latest:     &latest,
		signingKey: signingKey,
		verified:   verified,
		config:     SessionConfigV1(),
	}, nil
}
