package megolm

import (
	"fmt"

	"olmcore/internal/crypto"
	"olmcore/internal/domain"
	"olmcore/internal/pickle"
	"olmcore/internal/protocol/hashratchet"
	"olmcore/internal/protocol/message"
)

// DecryptedMessage is a decrypted group message and its index.
type DecryptedMessage struct {
	Plaintext    []byte
	MessageIndex uint32
}

// SessionOrdering is the result of comparing two inbound sessions.
type SessionOrdering int

const (
	// SessionOrderingEqual means both sessions start at the same index.
	SessionOrderingEqual SessionOrdering = iota
	// SessionOrderingBetter means the receiver can decrypt more messages.
	SessionOrderingBetter
	// SessionOrderingWorse means the other session can decrypt more.
	SessionOrderingWorse
	// SessionOrderingUnconnected means the sessions are unrelated.
	SessionOrderingUnconnected
)

// InboundGroupSession is the receiving side of a Megolm session.
//
// It keeps the ratchet at the first known index and at the highest index
// decrypted so far. Any message at or after the first known index can be
// decrypted, in any order; earlier messages never can.
type InboundGroupSession struct {
	initial    *hashratchet.Ratchet
	latest     *hashratchet.Ratchet
	signingKey crypto.Ed25519PublicKey
	verified   bool
	config     SessionConfig
}

// NewInboundGroupSession builds a verified session from a signed session key.
func NewInboundGroupSession(key *SessionKey, config SessionConfig) *InboundGroupSession {
	s := fromExported(&key.ExportedSessionKey, config)
	s.verified = true
	return s
}

// ImportInboundGroupSession builds an unverified session from an exported key.
func ImportInboundGroupSession(key *ExportedSessionKey, config SessionConfig) *InboundGroupSession {
	return fromExported(key, config)
}

func fromExported(key *ExportedSessionKey, config SessionConfig) *InboundGroupSession {
	return &InboundGroupSession{
		initial:    key.ratchet.Clone(),
		latest:     key.ratchet.Clone(),
		signingKey: key.signingKey,
		config:     config.orDefault(),
	}
}

// SessionID is the base64 signing public key of the sending session.
func (s *InboundGroupSession) SessionID() string { return s.signingKey.ToBase64() }

// FirstKnownIndex is the lowest index this session can decrypt.
func (s *InboundGroupSession) FirstKnownIndex() uint32 { return s.initial.Index() }

// IsVerified reports whether the session came from a signed session key.
func (s *InboundGroupSession) IsVerified() bool { return s.verified }

// SessionConfig returns the config fixed at creation.
func (s *InboundGroupSession) SessionConfig() SessionConfig { return s.config }

// Decrypt verifies and decrypts a base64 group message. A failure leaves the
// session unchanged.
func (s *InboundGroupSession) Decrypt(ciphertext string) (*DecryptedMessage, error) {
	raw, err := crypto.DecodeB64(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("megolm message: base64: %w", domain.ErrDecode)
	}
	m, err := message.DecodeMegolmMessage(raw)
	if err != nil {
		return nil, err
	}
	if m.Version != s.config.messageVersion() {
		return nil, fmt.Errorf("message version %d in a v%d session: %w", m.Version, s.config.version, domain.ErrDecode)
	}
	if err := s.signingKey.Verify(m.Signed(), m.Signature); err != nil {
		return nil, err
	}

	r, fromLatest := s.ratchetAt(m.Index)
	if r == nil {
		return nil, fmt.Errorf("index %d below %d: %w", m.Index, s.FirstKnownIndex(), domain.ErrUnknownMessageIndex)
	}
	c := r.MessageCipher()
	defer c.Wipe()
	if err := c.VerifyMAC(m.Body(), m.MAC); err != nil {
		r.Wipe()
		return nil, err
	}
	plaintext, err := c.Decrypt(m.Ciphertext)
	if err != nil {
		r.Wipe()
		return nil, err
	}

	if fromLatest {
		s.latest.Wipe()
		s.latest = r
	} else {
		r.Wipe()
	}
	return &DecryptedMessage{Plaintext: plaintext, MessageIndex: m.Index}, nil
}

// ExportAt exports the session from index on. It returns nil for an index
// below FirstKnownIndex.
func (s *InboundGroupSession) ExportAt(index uint32) *ExportedSessionKey {
	r, _ := s.ratchetAt(index)
	if r == nil {
		return nil
	}
	return &ExportedSessionKey{ratchet: *r, signingKey: s.signingKey}
}

// ExportAtFirstKnownIndex exports everything this session can decrypt.
func (s *InboundGroupSession) ExportAtFirstKnownIndex() *ExportedSessionKey {
	return s.ExportAt(s.FirstKnownIndex())
}

// Connected reports whether both sessions belong to the same sending session.
func (s *InboundGroupSession) Connected(other *InboundGroupSession) bool {
	if s.signingKey != other.signingKey {
		return false
	}
	index := max(s.FirstKnownIndex(), other.FirstKnownIndex())
	a, _ := s.ratchetAt(index)
	b, _ := other.ratchetAt(index)
	if a == nil || b == nil {
		return false
	}
	defer a.Wipe()
	defer b.Wipe()
	return a.Data == b.Data
}

// Compare orders two sessions by how much they can decrypt.
func (s *InboundGroupSession) Compare(other *InboundGroupSession) SessionOrdering {
	if !s.Connected(other) {
		return SessionOrderingUnconnected
	}
	switch a, b := s.FirstKnownIndex(), other.FirstKnownIndex(); {
	case a < b:
		return SessionOrderingBetter
	case a > b:
		return SessionOrderingWorse
	default:
		return SessionOrderingEqual
	}
}

// Wipe zeroes both ratchets.
func (s *InboundGroupSession) Wipe() {
	s.initial.Wipe()
	s.latest.Wipe()
}

// ratchetAt returns a copy of the ratchet advanced to index and whether it
// was derived from the latest state. It returns nil below the first known
// index.
func (s *InboundGroupSession) ratchetAt(index uint32) (*hashratchet.Ratchet, bool) {
	var r *hashratchet.Ratchet
	fromLatest := false
	switch {
	case index >= s.latest.Index():
		r, fromLatest = s.latest.Clone(), true
	case index >= s.initial.Index():
		r = s.initial.Clone()
	default:
		return nil, false
	}
	r.AdvanceTo(index)
	return r, fromLatest
}

type inboundGroupSessionPickle struct {
	Initial       hashratchet.Ratchet     `cbor:"initial"`
	Latest        hashratchet.Ratchet     `cbor:"latest"`
	SigningKey    crypto.Ed25519PublicKey `cbor:"signing_key"`
	Verified      bool                    `cbor:"verified"`
	ConfigVersion uint8                   `cbor:"config_version"`
}

// Pickle seals the session under passphrase.
func (s *InboundGroupSession) Pickle(passphrase []byte) (string, error) {
	return pickle.Encode(pickle.KindInboundGroupSession, &inboundGroupSessionPickle{
		Initial:       *s.initial,
		Latest:        *s.latest,
		SigningKey:    s.signingKey,
		Verified:      s.verified,
		ConfigVersion: s.config.version,
	}, passphrase)
}

// InboundGroupSessionFromPickle restores a session sealed by Pickle.
func InboundGroupSessionFromPickle(p string, passphrase []byte) (*InboundGroupSession, error) {
	var st inboundGroupSessionPickle
	if err := pickle.Decode(pickle.KindInboundGroupSession, p, passphrase, &st); err != nil {
		return nil, err
	}
	config, err := configFromVersion(st.ConfigVersion)
	if err != nil {
		return nil, err
	}
	if st.Latest.Counter < st.Initial.Counter {
		return nil, domain.ErrCorruptPickle
	}
	return &InboundGroupSession{
		initial:    &st.Initial,
		latest:     &st.Latest,
		signingKey: st.SigningKey,
		verified:   st.Verified,
		config:     config,
	}, nil
}
