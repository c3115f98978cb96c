// Package message encodes and decodes the Olm and Megolm wire formats.
//
// Every message starts with a version byte followed by protobuf-encoded
// fields. Version 3 carries an 8-byte truncated MAC, version 4 the full
// 32-byte HMAC-SHA-256. Megolm messages additionally end with a 64-byte
// Ed25519 signature.
//
// Decoders keep the exact bytes the MAC covers, so messages with unknown
// fields still authenticate.
package message
