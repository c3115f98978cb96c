package ratchet

import (
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
)

const (
	// MaxReceiverChains bounds how many peer ratchet keys a session keeps
	// receiving chains for.
	MaxReceiverChains = 5
	// MaxMessageKeys bounds the skipped message keys cached per chain.
	MaxMessageKeys = 40
	// MaxMessageGap is the furthest a chain will be walked forward for a
	// single message.
	MaxMessageGap = 2000
)

// OpenFunc authenticates and decrypts a message with the given key. It must
// not retain mk.
type OpenFunc func(mk *MessageKey) ([]byte, error)

// ReceiverChain follows one of the peer's ratchet keys.
type ReceiverChain struct {
	RatchetKey crypto.Curve25519PublicKey `cbor:"ratchet_key"`
	Chain      ChainKey                   `cbor:"chain"`
	Skipped    []MessageKey               `cbor:"skipped"`
}

// NewReceiverChain starts a chain for a peer ratchet key.
func NewReceiverChain(ratchetKey crypto.Curve25519PublicKey, chain ChainKey) *ReceiverChain {
	return &ReceiverChain{RatchetKey: ratchetKey, Chain: chain}
}

// Decrypt finds or derives the message key for index and hands it to open.
// The chain only changes if open succeeds.
func (c *ReceiverChain) Decrypt(index uint32, open OpenFunc) ([]byte, error) {
	if index < c.Chain.Index {
		return c.decryptSkipped(index, open)
	}
	if index-c.Chain.Index > MaxMessageGap {
		return nil, fmt.Errorf("chain at %d, message at %d: %w", c.Chain.Index, index, domain.ErrMessageGapTooLarge)
	}

	chain := c.Chain
	defer chain.Wipe()
	var skipped []MessageKey
	for chain.Index < index {
		if index-chain.Index > MaxMessageKeys {
			chain.Advance()
			continue
		}
		skipped = append(skipped, chain.Next(c.RatchetKey))
	}

	mk := chain.Next(c.RatchetKey)
	defer mk.Wipe()
	plaintext, err := open(&mk)
	if err != nil {
		for i := range skipped {
			skipped[i].Wipe()
		}
		return nil, err
	}

	c.Chain.Wipe()
	c.Chain = chain
	for _, k := range skipped {
		c.storeSkipped(k)
	}
	return plaintext, nil
}

// HasSkipped reports whether a message key for index is cached.
func (c *ReceiverChain) HasSkipped(index uint32) bool {
	for i := range c.Skipped {
		if c.Skipped[i].Index == index {
			return true
		}
	}
	return false
}

// Wipe zeroes the chain key and every cached message key.
func (c *ReceiverChain) Wipe() {
	c.Chain.Wipe()
	for i := range c.Skipped {
		c.Skipped[i].Wipe()
	}
}

func (c *ReceiverChain) decryptSkipped(index uint32, open OpenFunc) ([]byte, error) {
	for i := range c.Skipped {
		if c.Skipped[i].Index != index {
			continue
		}
		plaintext, err := open(&c.Skipped[i])
		if err != nil {
			return nil, err
		}
		c.Skipped[i].Wipe()
		c.Skipped = append(c.Skipped[:i], c.Skipped[i+1:]...)
		return plaintext, nil
	}
	return nil, fmt.Errorf("chain at %d, message at %d: %w", c.Chain.Index, index, domain.ErrMessageKeyExpired)
}

func (c *ReceiverChain) storeSkipped(mk MessageKey) {
	if len(c.Skipped) >= MaxMessageKeys {
		c.Skipped[0].Wipe()
		c.Skipped = append(c.Skipped[:0], c.Skipped[1:]...)
	}
	c.Skipped = append(c.Skipped, mk)
}

// ChainStore holds receiver chains, oldest first.
type ChainStore struct {
	Chains []*ReceiverChain `cbor:"chains"`
}

// Get returns the chain for ratchetKey, or nil.
func (s *ChainStore) Get(ratchetKey crypto.Curve25519PublicKey) *ReceiverChain {
	for _, c := range s.Chains {
		if c.RatchetKey == ratchetKey {
			return c
		}
	}
	return nil
}

// Insert adds a chain, evicting the oldest once MaxReceiverChains is reached.
func (s *ChainStore) Insert(c *ReceiverChain) {
	if len(s.Chains) >= MaxReceiverChains {
		s.Chains[0].Wipe()
		s.Chains = append(s.Chains[:0], s.Chains[1:]...)
	}
	s.Chains = append(s.Chains, c)
}

// Len returns the number of chains held.
func (s *ChainStore) Len() int { return len(s.Chains) }

// Wipe zeroes every chain.
func (s *ChainStore) Wipe() {
	for _, c := range s.Chains {
		c.Wipe()
	}
}
