// Package megolm implements Megolm group sessions.
//
// A GroupSession owns a hash ratchet and an Ed25519 signing key. Each
// Encrypt uses the current ratchet index, signs the message and moves the
// ratchet forward. The sender distributes SessionKey, normally over Olm
// sessions, and each recipient builds an InboundGroupSession from it.
//
// Recipients can only derive keys forward from the index they were given.
// An InboundGroupSession retains the ratchet at its first known index as
// well as the latest one, so late messages at any index from the first
// known one onwards still decrypt. Messages before it report
// ErrUnknownMessageIndex.
//
// Signatures are checked before MACs. Neither failure changes the session.
package megolm
