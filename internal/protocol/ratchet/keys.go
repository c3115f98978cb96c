package ratchet

import (
	"olmcore/internal/crypto"
	"olmcore/internal/util/memzero"
)

var (
	messageKeySeed = []byte{0x01}
	chainKeySeed   = []byte{0x02}
)

// RootKey seeds each new chain when a ratchet key changes.
type RootKey [32]byte

// Advance mixes DH(ours, theirs) into the root key and returns the next root
// key together with a fresh chain key at index zero. r is not modified.
func (r *RootKey) Advance(ours *crypto.Curve25519SecretKey, theirs crypto.Curve25519PublicKey) (RootKey, ChainKey, error) {
	var (
		root  RootKey
		chain ChainKey
	)
	shared, err := ours.DiffieHellman(theirs)
	if err != nil {
		return root, chain, err
	}
	okm := crypto.Expand(shared[:], r[:], crypto.InfoRatchet, 64)
	memzero.Zero32(&shared)

	copy(root[:], okm[:32])
	copy(chain.Key[:], okm[32:])
	memzero.Zero(okm)
	return root, chain, nil
}

// Wipe zeroes the key.
func (r *RootKey) Wipe() { memzero.Zero(r[:]) }

// ChainKey is one symmetric chain position. Each step derives a message key
// and replaces the chain key with a one-way successor.
type ChainKey struct {
	Key   [32]byte `cbor:"key"`
	Index uint32   `cbor:"index"`
}

// NewChainKey wraps a freshly derived chain key at index zero.
func NewChainKey(key [32]byte) ChainKey { return ChainKey{Key: key} }

// MessageKey derives the key for the current index. It does not advance.
func (c *ChainKey) MessageKey(ratchetKey crypto.Curve25519PublicKey) MessageKey {
	mk := MessageKey{RatchetKey: ratchetKey, Index: c.Index}
	sum := crypto.HMACSHA256(c.Key[:], messageKeySeed)
	copy(mk.Key[:], sum)
	memzero.Zero(sum)
	return mk
}

// Advance moves the chain forward by one message.
func (c *ChainKey) Advance() {
	sum := crypto.HMACSHA256(c.Key[:], chainKeySeed)
	copy(c.Key[:], sum)
	memzero.Zero(sum)
	c.Index++
}

// Next returns the message key for the current index and advances.
func (c *ChainKey) Next(ratchetKey crypto.Curve25519PublicKey) MessageKey {
	mk := c.MessageKey(ratchetKey)
	c.Advance()
	return mk
}

// Wipe zeroes the chain key.
func (c *ChainKey) Wipe() { memzero.Zero(c.Key[:]) }

// MessageKey is the single-use secret for one message, tagged with the chain
// it belongs to.
type MessageKey struct {
	Key        [32]byte                   `cbor:"key"`
	RatchetKey crypto.Curve25519PublicKey `cbor:"ratchet_key"`
	Index      uint32                     `cbor:"index"`
}

// Cipher expands the message key into its AES, HMAC and IV parts.
func (m *MessageKey) Cipher() *crypto.Cipher {
	return crypto.NewCipher(m.Key[:], crypto.InfoMessageKey)
}

// Wipe zeroes the key.
func (m *MessageKey) Wipe() { memzero.Zero(m.Key[:]) }
