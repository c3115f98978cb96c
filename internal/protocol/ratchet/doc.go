// Package ratchet implements the Olm double ratchet.
//
// A session holds one DoubleRatchet for sending and a ChainStore of
// ReceiverChains, one per peer ratchet key seen.
//
// Key schedule:
//   - Root step: HKDF-SHA-256(salt = root key, ikm = DH(ours, theirs),
//     info "OLM_RATCHET") gives the next root key and a new chain key.
//   - Chain step: message key = HMAC(chain, 0x01), next chain = HMAC(chain, 0x02).
//   - Message key: HKDF-SHA-256(info "OLM_KEYS") gives AES key, HMAC key, IV.
//
// The sending ratchet alternates between active (we own a ratchet key and a
// sending chain) and inactive (the peer has moved and we have not replied).
//
// Receiver chains walk forward at most MaxMessageGap steps per message and
// cache up to MaxMessageKeys skipped keys. At most MaxReceiverChains chains
// are retained. Decryption commits state only after the caller's open
// function succeeds, so a forged message never moves a chain.
//
// Concurrency: none of the types here are safe for concurrent use.
package ratchet
