// Package olm implements Olm accounts and one-to-one double-ratchet sessions.
//
// # Accounts
//
// An Account owns a device's Ed25519 signing key, its Curve25519 identity key
// and a pool of at most MaxNumberOfOneTimeKeys one-time keys plus a fallback
// key. Public keys are published out of band; the peer uses one of them to
// start a session.
//
// # Sessions
//
// The initiator calls CreateOutboundSession. Its messages are pre-key
// messages until the peer replies. The responder passes the first such
// message to CreateInboundSession, which consumes the one-time key it names.
//
//	s, _ := alice.CreateOutboundSession(olm.SessionConfigV2(), bobIdentity, bobOneTimeKey)
//	msg, _ := s.Encrypt([]byte("Hello there"))
//	res, _ := bob.CreateInboundSession(alice.Curve25519Key(), msg)
//
// # State
//
// Failed decryption never changes a session. Nothing here is safe for
// concurrent use; callers serialize access per Account and per Session.
// Pickle and the FromPickle constructors persist state; the FromLibolmPickle
// constructors import state written by libolm.
package olm
