// Package x3dh implements the triple Diffie-Hellman handshake that bootstraps
// an Olm session.
//
// # Overview
//
// The initiator knows the responder's identity key and one of its published
// one-time keys. It generates a fresh base key and computes:
//   - DH(initiator identity, responder one-time key)
//   - DH(initiator base key, responder identity)
//   - DH(initiator base key, responder one-time key)
//
// The three secrets are concatenated and expanded with HKDF-SHA-256 (info
// "OLM_ROOT") into a 32-byte root key and the first 32-byte chain key.
//
// The responder learns the base key and one-time key from the pre-key message
// and computes the same three values with the roles swapped.
//
// # Errors
//
// A low-order peer key surfaces as domain.ErrInvalidKey from the underlying
// Diffie-Hellman.
package x3dh
