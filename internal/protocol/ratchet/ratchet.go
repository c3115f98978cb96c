package ratchet

import (
	"errors"

	"olmcore/internal/crypto"
)

var errNoRatchet = errors.New("ratchet: neither active nor inactive state set")

// ActiveRatchet is the state while we own the current sending ratchet key.
type ActiveRatchet struct {
	Root  RootKey                  `cbor:"root"`
	Key   crypto.Curve25519KeyPair `cbor:"key"`
	Chain ChainKey                 `cbor:"chain"`
}

// InactiveRatchet is the state after the peer moved to a new ratchet key and
// before we have sent anything in reply.
type InactiveRatchet struct {
	Root      RootKey                    `cbor:"root"`
	RemoteKey crypto.Curve25519PublicKey `cbor:"remote_key"`
}

// DoubleRatchet is the sending half of a session. Exactly one of Active and
// Inactive is set.
type DoubleRatchet struct {
	Active   *ActiveRatchet   `cbor:"active,omitempty"`
	Inactive *InactiveRatchet `cbor:"inactive,omitempty"`
}

// NewActive starts the initiator's ratchet from the handshake keys. The first
// sending chain uses the handshake chain key directly under a fresh ratchet key.
func NewActive(root RootKey, chain [32]byte) (*DoubleRatchet, error) {
	key, err := crypto.GenerateCurve25519()
	if err != nil {
		return nil, err
	}
	return &DoubleRatchet{Active: &ActiveRatchet{
		Root:  root,
		Key:   key,
		Chain: NewChainKey(chain),
	}}, nil
}

// NewInactive starts the responder's ratchet. It activates on first send.
func NewInactive(root RootKey, remote crypto.Curve25519PublicKey) *DoubleRatchet {
	return &DoubleRatchet{Inactive: &InactiveRatchet{Root: root, RemoteKey: remote}}
}

// RatchetKey returns our current sending ratchet public key, if active.
func (r *DoubleRatchet) RatchetKey() (crypto.Curve25519PublicKey, bool) {
	if r.Active == nil {
		return crypto.Curve25519PublicKey{}, false
	}
	return r.Active.Key.Public, true
}

// NextMessageKey returns the key for the next outgoing message, activating
// the ratchet first if the peer has moved since we last sent.
func (r *DoubleRatchet) NextMessageKey() (MessageKey, error) {
	if r.Active == nil {
		if r.Inactive == nil {
			return MessageKey{}, errNoRatchet
		}
		active, err := r.Inactive.activate()
		if err != nil {
			return MessageKey{}, err
		}
		r.Inactive.Root.Wipe()
		r.Active, r.Inactive = active, nil
	}
	return r.Active.Chain.Next(r.Active.Key.Public), nil
}

// Advance handles a new peer ratchet key. It returns the ratchet and receiver
// chain that replace the current ones once the message is authenticated; r
// itself is left untouched.
func (r *DoubleRatchet) Advance(remote crypto.Curve25519PublicKey) (*DoubleRatchet, *ReceiverChain, error) {
	active := r.Active
	if active == nil {
		if r.Inactive == nil {
			return nil, nil, errNoRatchet
		}
		var err error
		if active, err = r.Inactive.activate(); err != nil {
			return nil, nil, err
		}
		defer active.wipe()
	}

	root, chain, err := active.Root.Advance(&active.Key.Secret, remote)
	if err != nil {
		return nil, nil, err
	}
	next := NewInactive(root, remote)
	return next, NewReceiverChain(remote, chain), nil
}

// Wipe zeroes all secrets held by the ratchet.
func (r *DoubleRatchet) Wipe() {
	if r.Active != nil {
		r.Active.wipe()
	}
	if r.Inactive != nil {
		r.Inactive.Root.Wipe()
	}
}

func (i *InactiveRatchet) activate() (*ActiveRatchet, error) {
	key, err := crypto.GenerateCurve25519()
	if err != nil {
		return nil, err
	}
	root, chain, err := i.Root.Advance(&key.Secret, i.RemoteKey)
	if err != nil {
		key.Wipe()
		return nil, err
	}
	return &ActiveRatchet{Root: root, Key: key, Chain: chain}, nil
}

func (a *ActiveRatchet) wipe() {
	a.Root.Wipe()
	a.Key.Wipe()
	a.Chain.Wipe()
}
