// Package message encrypts and decrypts Olm messages with stored sessions.
//
// Decrypting a pre-key message that no stored session matches creates an
// inbound session, which consumes the one-time key it names.
package message
