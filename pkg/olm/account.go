package olm

import (
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/message"
	"olmcore/internal/protocol/ratchet"
	"olmcore/internal/protocol/x3dh"
)

// MaxNumberOfOneTimeKeys is the most one-time keys an account stores.
const MaxNumberOfOneTimeKeys = 50

type oneTimeKey struct {
	ID        KeyID                    `cbor:"id"`
	Key       crypto.Curve25519KeyPair `cbor:"key"`
	Published bool                     `cbor:"published"`
}

// Account holds a device's identity keys and its pool of one-time and
// fallback keys. It is not safe for concurrent use; in particular two
// concurrent CreateInboundSession calls could both consume the same key.
type Account struct {
	signing          *crypto.Ed25519KeyPair
	identity         crypto.Curve25519KeyPair
	oneTimeKeys      []oneTimeKey
	fallback         *oneTimeKey
	previousFallback *oneTimeKey
	nextKeyID        KeyID
}

// InboundCreationResult is the session created from a pre-key message and the
// plaintext of that message.
type InboundCreationResult struct {
	Session   *Session
	Plaintext []byte
}

// NewAccount creates an account with fresh identity keys and no one-time keys.
func NewAccount() (*Account, error) {
	signing, err := crypto.GenerateEd25519()
	if err != nil {
		return nil, err
	}
	identity, err := crypto.GenerateCurve25519()
	if err != nil {
		return nil, err
	}
	return &Account{signing: signing, identity: identity}, nil
}

// IdentityKeys returns both public identity keys.
func (a *Account) IdentityKeys() IdentityKeys {
	return IdentityKeys{Ed25519: a.signing.Public, Curve25519: a.identity.Public}
}

// Ed25519Key returns the signing public key.
func (a *Account) Ed25519Key() Ed25519PublicKey { return a.signing.Public }

// Curve25519Key returns the identity Diffie-Hellman public key.
func (a *Account) Curve25519Key() Curve25519PublicKey { return a.identity.Public }

// Sign signs msg with the account's Ed25519 key.
func (a *Account) Sign(msg []byte) Ed25519Signature { return a.signing.Sign(msg) }

// MaxNumberOfOneTimeKeys returns the capacity of the one-time key pool.
func (a *Account) MaxNumberOfOneTimeKeys() int { return MaxNumberOfOneTimeKeys }

// GenerateOneTimeKeys adds count fresh one-time keys. If that would exceed
// the pool capacity nothing is generated and ErrCapacityExceeded is returned.
func (a *Account) GenerateOneTimeKeys(count int) error {
	if count < 0 || count > MaxNumberOfOneTimeKeys-len(a.oneTimeKeys) {
		return fmt.Errorf("%d stored, %d requested: %w", len(a.oneTimeKeys), count, domain.ErrCapacityExceeded)
	}
	fresh := make([]oneTimeKey, 0, count)
	for i := 0; i < count; i++ {
		kp, err := crypto.GenerateCurve25519()
		if err != nil {
			for j := range fresh {
				fresh[j].Key.Wipe()
			}
			return err
		}
		fresh = append(fresh, oneTimeKey{ID: a.nextKeyID + KeyID(i), Key: kp})
	}
	a.oneTimeKeys = append(a.oneTimeKeys, fresh...)
	a.nextKeyID += KeyID(count)
	return nil
}

// OneTimeKeys returns the unpublished one-time public keys by id.
func (a *Account) OneTimeKeys() map[KeyID]Curve25519PublicKey {
	out := make(map[KeyID]Curve25519PublicKey)
	for _, k := range a.oneTimeKeys {
		if !k.Published {
			out[k.ID] = k.Key.Public
		}
	}
	return out
}

// StoredOneTimeKeyCount returns the number of unused one-time keys,
// published or not.
func (a *Account) StoredOneTimeKeyCount() int { return len(a.oneTimeKeys) }

// GenerateFallbackKey rotates the fallback key. The replaced key stays usable
// until the next rotation or ForgetFallbackKey.
func (a *Account) GenerateFallbackKey() error {
	kp, err := crypto.GenerateCurve25519()
	if err != nil {
		return err
	}
	if a.previousFallback != nil {
		a.previousFallback.Key.Wipe()
	}
	a.previousFallback = a.fallback
	a.fallback = &oneTimeKey{ID: a.nextKeyID, Key: kp}
	a.nextKeyID++
	return nil
}

// FallbackKey returns the current fallback key if it is unpublished.
func (a *Account) FallbackKey() map[KeyID]Curve25519PublicKey {
	out := make(map[KeyID]Curve25519PublicKey)
	if a.fallback != nil && !a.fallback.Published {
		out[a.fallback.ID] = a.fallback.Key.Public
	}
	return out
}

// ForgetFallbackKey drops the previous fallback key. It reports whether there
// was one.
func (a *Account) ForgetFallbackKey() bool {
	if a.previousFallback == nil {
		return false
	}
	a.previousFallback.Key.Wipe()
	a.previousFallback = nil
	return true
}

// MarkKeysAsPublished flags all one-time keys and the current fallback key as
// published so they stop appearing in OneTimeKeys and FallbackKey.
func (a *Account) MarkKeysAsPublished() {
	for i := range a.oneTimeKeys {
		a.oneTimeKeys[i].Published = true
	}
	if a.fallback != nil {
		a.fallback.Published = true
	}
}

// CreateOutboundSession starts a session with the owner of identityKey using
// one of their published one-time (or fallback) keys.
func (a *Account) CreateOutboundSession(config SessionConfig, identityKey, oneTimeKey Curve25519PublicKey) (*Session, error) {
	if config.version == 0 {
		config = DefaultSessionConfig()
	}
	base, err := crypto.GenerateCurve25519()
	if err != nil {
		return nil, err
	}
	defer base.Wipe()

	shared, err := x3dh.Initiator(&a.identity.Secret, &base.Secret, identityKey, oneTimeKey)
	if err != nil {
		return nil, err
	}
	defer shared.Wipe()

	dr, err := ratchet.NewActive(shared.RootKey, shared.ChainKey)
	if err != nil {
		return nil, err
	}
	return &Session{
		keys: SessionKeys{
			IdentityKey: a.identity.Public,
			BaseKey:     base.Public,
			OneTimeKey:  oneTimeKey,
		},
		ratchet: dr,
		config:  config,
	}, nil
}

// CreateInboundSession creates the responder side of a session from the
// first pre-key message sent by the owner of identityKey. The referenced
// one-time key is removed only once the message decrypts.
func (a *Account) CreateInboundSession(identityKey Curve25519PublicKey, msg OlmMessage) (*InboundCreationResult, error) {
	if msg.Type != MessageTypePreKey {
		return nil, fmt.Errorf("inbound session needs a pre-key message: %w", domain.ErrInvalidMessageType)
	}
	p, m, err := msg.decode()
	if err != nil {
		return nil, err
	}
	if p.IdentityKey != identityKey {
		return nil, domain.ErrMismatchedIdentityKey
	}
	return a.createInboundSession(p, m)
}

func (a *Account) createInboundSession(p *message.PreKeyMessage, m *message.Message) (*InboundCreationResult, error) {
	secret, consumable := a.findOneTimeKey(p.OneTimeKey)
	if secret == nil {
		return nil, fmt.Errorf("key %s: %w", p.OneTimeKey, domain.ErrOneTimeKeyNotFound)
	}
	config, err := configFromMessageVersion(m.Version)
	if err != nil {
		return nil, err
	}

	shared, err := x3dh.Responder(&a.identity.Secret, secret, p.IdentityKey, p.BaseKey)
	if err != nil {
		return nil, err
	}
	defer shared.Wipe()

	chain := ratchet.NewReceiverChain(m.RatchetKey, ratchet.NewChainKey(shared.ChainKey))
	plaintext, err := chain.Decrypt(m.ChainIndex, openFunc(m))
	if err != nil {
		chain.Wipe()
		return nil, err
	}

	s := &Session{
		keys: SessionKeys{
			IdentityKey: p.IdentityKey,
			BaseKey:     p.BaseKey,
			OneTimeKey:  p.OneTimeKey,
		},
		ratchet: ratchet.NewInactive(shared.RootKey, m.RatchetKey),
		config:  config,
	}
	s.chains.Insert(chain)

	if consumable {
		a.removeOneTimeKey(p.OneTimeKey)
	}
	return &InboundCreationResult{Session: s, Plaintext: plaintext}, nil
}

// findOneTimeKey returns the secret for pub and whether using it consumes it.
// Fallback keys are never consumed.
func (a *Account) findOneTimeKey(pub Curve25519PublicKey) (*crypto.Curve25519SecretKey, bool) {
	for i := range a.oneTimeKeys {
		if a.oneTimeKeys[i].Key.Public == pub {
			return &a.oneTimeKeys[i].Key.Secret, true
		}
	}
	for _, fb := range []*oneTimeKey{a.fallback, a.previousFallback} {
		if fb != nil && fb.Key.Public == pub {
			return &fb.Key.Secret, false
		}
	}
	return nil, false
}

func (a *Account) removeOneTimeKey(pub Curve25519PublicKey) {
	for i := range a.oneTimeKeys {
		if a.oneTimeKeys[i].Key.Public == pub {
			a.oneTimeKeys[i].Key.Wipe()
			a.oneTimeKeys = append(a.oneTimeKeys[:i], a.oneTimeKeys[i+1:]...)
			return
		}
	}
}

// Wipe zeroes all secret keys. The account is unusable afterwards.
func (a *Account) Wipe() {
	a.signing.Wipe()
	a.identity.Wipe()
	for i := range a.oneTimeKeys {
		a.oneTimeKeys[i].Key.Wipe()
	}
	for _, fb := range []*oneTimeKey{a.fallback, a.previousFallback} {
		if fb != nil {
			fb.Key.Wipe()
		}
	}
}

type accountPickle struct {
	SigningKey       crypto.Ed25519KeyPair    `cbor:"signing_key"`
	IdentityKey      crypto.Curve25519KeyPair `cbor:"identity_key"`
	OneTimeKeys      []oneTimeKey             `cbor:"one_time_keys"`
	Fallback         *oneTimeKey              `cbor:"fallback,omitempty"`
	PreviousFallback *oneTimeKey              `cbor:"previous_fallback,omitempty"`
	NextKeyID        KeyID                    `cbor:"next_key_id"`
}

// Pickle seals the account under passphrase.
func (a *Account) Pickle(passphrase []byte) (string, error) {
	return pickle.Encode(pickle.KindAccount, &accountPickle{
		SigningKey:       *a.signing,
		IdentityKey:      a.identity,
		OneTimeKeys:      a.oneTimeKeys,
		Fallback:         a.fallback,
		PreviousFallback: a.previousFallback,
		NextKeyID:        a.nextKeyID,
	}, passphrase)
}

// AccountFromPickle restores an account sealed by Pickle.
func AccountFromPickle(p string, passphrase []byte) (*Account, error) {
	var st accountPickle
	if err := pickle.Decode(pickle.KindAccount, p, passphrase, &st); err != nil {
		return nil, err
	}
	if len(st.OneTimeKeys) > MaxNumberOfOneTimeKeys {
		return nil, domain.ErrCorruptPickle
	}
	signing, err := crypto.Ed25519KeyPairFromExpanded(st.SigningKey.Expanded[:])
	if err != nil || signing.Public != st.SigningKey.Public {
		return nil, domain.ErrCorruptPickle
	}
	return &Account{
		signing:          signing,
		identity:         st.IdentityKey,
		oneTimeKeys:      st.OneTimeKeys,
		fallback:         st.Fallback,
		previousFallback: st.PreviousFallback,
		nextKeyID:        st.NextKeyID,
	}, nil
}
