package megolm

import (
	"crypto/rand"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/hashratchet"
	"olmcore/internal/protocol/message"
)

// Type aliases for the keys exposed by this package.
type (
	Ed25519PublicKey = crypto.Ed25519PublicKey
	Ed25519Signature = crypto.Ed25519Signature
)

// GroupSession is the sending side of a Megolm session. Every Encrypt
// advances the ratchet by one index. It is not safe for concurrent use.
type GroupSession struct {
	ratchet *hashratchet.Ratchet
	signing *crypto.Ed25519KeyPair
	config  SessionConfig
}

// NewGroupSession creates a session with a random ratchet at index zero and a
// fresh signing key.
func NewGroupSession(config SessionConfig) (*GroupSession, error) {
	var data [hashratchet.Length]byte
	if _, err := rand.Read(data[:]); err != nil {
		return nil, err
	}
	signing, err := crypto.GenerateEd25519()
	if err != nil {
		return nil, err
	}
	return &GroupSession{
		ratchet: hashratchet.New(data, 0),
		signing: signing,
		config:  config.orDefault(),
	}, nil
}

// SessionID is the base64 signing public key.
func (s *GroupSession) SessionID() string { return s.signing.Public.ToBase64() }

// MessageIndex returns the index the next message will use.
func (s *GroupSession) MessageIndex() uint32 { return s.ratchet.Index() }

// SessionConfig returns the config fixed at creation.
func (s *GroupSession) SessionConfig() SessionConfig { return s.config }

// SessionKey exports the current ratchet, signed, for distribution to
// recipients.
func (s *GroupSession) SessionKey() *SessionKey {
	k := &SessionKey{ExportedSessionKey: ExportedSessionKey{
		ratchet:    *s.ratchet.Clone(),
		signingKey: s.signing.Public,
	}}
	k.signature = s.signing.Sign(k.bytes(sessionKeyVersion))
	return k
}

// Encrypt encrypts plaintext at the current index, signs the result and
// advances. The returned message is base64.
func (s *GroupSession) Encrypt(plaintext []byte) string {
	c := s.ratchet.MessageCipher()
	defer c.Wipe()

	m := &message.MegolmMessage{
		Version:    s.config.messageVersion(),
		Index:      s.ratchet.Index(),
		Ciphertext: c.Encrypt(plaintext),
	}
	m.MAC = c.MAC(m.Body())[:s.config.macLength()]
	m.Signature = s.signing.Sign(m.Signed())

	s.ratchet.Advance()
	return crypto.B64(m.Encode())
}

// Wipe zeroes the ratchet and signing key.
func (s *GroupSession) Wipe() {
	s.ratchet.Wipe()
	s.signing.Wipe()
}

type groupSessionPickle struct {
	Ratchet       hashratchet.Ratchet   `cbor:"ratchet"`
	SigningKey    crypto.Ed25519KeyPair `cbor:"signing_key"`
	ConfigVersion uint8                 `cbor:"config_version"`
}

// Pickle seals the session under passphrase.
func (s *GroupSession) Pickle(passphrase []byte) (string, error) {
	return pickle.Encode(pickle.KindGroupSession, &groupSessionPickle{
		Ratchet:       *s.ratchet,
		SigningKey:    *s.signing,
		ConfigVersion: s.config.version,
	}, passphrase)
}

// GroupSessionFromPickle restores a session sealed by Pickle.
func GroupSessionFromPickle(p string, passphrase []byte) (*GroupSession, error) {
	var st groupSessionPickle
	if err := pickle.Decode(pickle.KindGroupSession, p, passphrase, &st); err != nil {
		return nil, err
	}
	config, err := configFromVersion(st.ConfigVersion)
	if err != nil {
		return nil, err
	}
	signing, err := crypto.Ed25519KeyPairFromExpanded(st.SigningKey.Expanded[:])
	if err != nil || signing.Public != st.SigningKey.Public {
		return nil, domain.ErrCorruptPickle
	}
	return &GroupSession{ratchet: &st.Ratchet, signing: signing, config: config}, nil
}
