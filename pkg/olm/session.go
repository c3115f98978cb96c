package olm

import (
	"crypto/sha256"
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/message"
	"olmcore/internal/protocol/ratchet"
)

// SessionKeys are the public keys that went into a session's handshake.
type SessionKeys struct {
	IdentityKey Curve25519PublicKey `cbor:"identity_key"`
	BaseKey     Curve25519PublicKey `cbor:"base_key"`
	OneTimeKey  Curve25519PublicKey `cbor:"one_time_key"`
}

// SessionID returns base64(SHA-256(identity key ‖ base key ‖ one-time key)).
func (k SessionKeys) SessionID() string {
	h := sha256.New()
	h.Write(k.IdentityKey[:])
	h.Write(k.BaseKey[:])
	h.Write(k.OneTimeKey[:])
	return crypto.B64(h.Sum(nil))
}

// Session is one side of an Olm double-ratchet conversation. It is not safe
// for concurrent use.
type Session struct {
	keys    SessionKeys
	ratchet *ratchet.DoubleRatchet
	chains  ratchet.ChainStore
	config  SessionConfig
}

// SessionID identifies the session; both sides compute the same value.
func (s *Session) SessionID() string { return s.keys.SessionID() }

// SessionKeys returns the handshake keys.
func (s *Session) SessionKeys() SessionKeys { return s.keys }

// SessionConfig returns the config fixed at creation.
func (s *Session) SessionConfig() SessionConfig { return s.config }

// HasReceivedMessage reports whether the peer's reply has been decrypted.
// Until then Encrypt produces pre-key messages.
func (s *Session) HasReceivedMessage() bool { return s.chains.Len() > 0 }

// Encrypt encrypts plaintext with the next sending message key.
func (s *Session) Encrypt(plaintext []byte) (OlmMessage, error) {
	mk, err := s.ratchet.NextMessageKey()
	if err != nil {
		return OlmMessage{}, err
	}
	defer mk.Wipe()
	c := mk.Cipher()
	defer c.Wipe()

	m := &message.Message{
		Version:    s.config.messageVersion(),
		RatchetKey: mk.RatchetKey,
		ChainIndex: mk.Index,
		Ciphertext: c.Encrypt(plaintext),
	}
	m.MAC = c.MAC(m.Body())[:s.config.macLength()]

	if s.HasReceivedMessage() {
		return OlmMessage{Type: MessageTypeNormal, Ciphertext: crypto.B64(m.Encode())}, nil
	}
	p := &message.PreKeyMessage{
		Version:     m.Version,
		OneTimeKey:  s.keys.OneTimeKey,
		BaseKey:     s.keys.BaseKey,
		IdentityKey: s.keys.IdentityKey,
		Message:     m,
	}
	return OlmMessage{Type: MessageTypePreKey, Ciphertext: crypto.B64(p.Encode())}, nil
}

// Decrypt authenticates and decrypts msg. On any error the session is left
// exactly as it was.
func (s *Session) Decrypt(msg OlmMessage) ([]byte, error) {
	_, m, err := msg.decode()
	if err != nil {
		return nil, err
	}
	return s.decrypt(m)
}

func (s *Session) decrypt(m *message.Message) ([]byte, error) {
	if m.Version != s.config.messageVersion() {
		return nil, fmt.Errorf("message version %d in a v%d session: %w", m.Version, s.config.version, domain.ErrDecode)
	}
	open := openFunc(m)

	if chain := s.chains.Get(m.RatchetKey); chain != nil {
		return chain.Decrypt(m.ChainIndex, open)
	}

	next, chain, err := s.ratchet.Advance(m.RatchetKey)
	if err != nil {
		return nil, err
	}
	plaintext, err := chain.Decrypt(m.ChainIndex, open)
	if err != nil {
		next.Wipe()
		chain.Wipe()
		return nil, err
	}
	s.ratchet.Wipe()
	s.ratchet = next
	s.chains.Insert(chain)
	return plaintext, nil
}

// SessionMatches reports whether a pre-key message was produced by the other
// side of this session. It never changes state.
func (s *Session) SessionMatches(msg OlmMessage) bool {
	if msg.Type != MessageTypePreKey {
		return false
	}
	p, _, err := msg.decode()
	if err != nil {
		return false
	}
	return p.IdentityKey == s.keys.IdentityKey &&
		p.BaseKey == s.keys.BaseKey &&
		p.OneTimeKey == s.keys.OneTimeKey
}

// Wipe zeroes every secret the session holds. The session is unusable
// afterwards.
func (s *Session) Wipe() {
	s.ratchet.Wipe()
	s.chains.Wipe()
}

type sessionPickle struct {
	Keys          SessionKeys           `cbor:"keys"`
	Ratchet       ratchet.DoubleRatchet `cbor:"ratchet"`
	Chains        ratchet.ChainStore    `cbor:"chains"`
	ConfigVersion uint8                 `cbor:"config_version"`
}

// Pickle seals the session under passphrase.
func (s *Session) Pickle(passphrase []byte) (string, error) {
	return pickle.Encode(pickle.KindSession, &sessionPickle{
		Keys:          s.keys,
		Ratchet:       *s.ratchet,
		Chains:        s.chains,
		ConfigVersion: s.config.version,
	}, passphrase)
}

// SessionFromPickle restores a session sealed by Pickle.
func SessionFromPickle(p string, passphrase []byte) (*Session, error) {
	var st sessionPickle
	if err := pickle.Decode(pickle.KindSession, p, passphrase, &st); err != nil {
		return nil, err
	}
	if (st.Ratchet.Active == nil) == (st.Ratchet.Inactive == nil) {
		return nil, domain.ErrCorruptPickle
	}
	if len(st.Chains.Chains) > ratchet.MaxReceiverChains {
		return nil, domain.ErrCorruptPickle
	}
	config, err := configFromVersion(st.ConfigVersion)
	if err != nil {
		return nil, err
	}
	return &Session{keys: st.Keys, ratchet: &st.Ratchet, chains: st.Chains, config: config}, nil
}

// openFunc authenticates m under a message key before decrypting it.
func openFunc(m *message.Message) ratchet.OpenFunc {
	return func(mk *ratchet.MessageKey) ([]byte, error) {
		c := mk.Cipher()
		defer c.Wipe()
		if err := c.VerifyMAC(m.Body(), m.MAC); err != nil {
			return nil, err
		}
		return c.Decrypt(m.Ciphertext)
	}
}
