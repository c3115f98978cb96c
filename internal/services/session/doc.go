// Package session establishes Olm sessions and keeps them pickled in the
// domain.SessionStore, keyed by the peer's Curve25519 identity key.
package session
