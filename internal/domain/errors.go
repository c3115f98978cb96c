package domain

import "errors"

// Key and account errors.
var (
	// ErrInvalidKey is returned for malformed, wrong-length or low-order keys.
	ErrInvalidKey = errors.New("invalid key")
	// ErrOneTimeKeyNotFound is returned when a pre-key message references a
	// one-time key that is absent or already consumed.
	ErrOneTimeKeyNotFound = errors.New("one-time key not found")
	// ErrCapacityExceeded is returned when generating one-time keys would
	// overflow the account's key pool.
	ErrCapacityExceeded = errors.New("one-time key capacity exceeded")
	// ErrMismatchedIdentityKey is returned when a pre-key message carries a
	// different identity key than the caller expected.
	ErrMismatchedIdentityKey = errors.New("pre-key message identity key mismatch")
)

// Message errors. None of them leave a session partially advanced.
var (
	ErrDecode               = errors.New("malformed message")
	ErrInvalidMessageType   = errors.New("invalid message type")
	ErrAuthenticationFailed = errors.New("message authentication failed")
	ErrMessageKeyExpired    = errors.New("message key expired or already used")
	ErrMessageGapTooLarge   = errors.New("message gap too large")
	ErrUnknownMessageIndex  = errors.New("unknown message index")
	ErrInvalidSignature     = errors.New("invalid signature")
)

// Verification errors.
var (
	ErrMacMismatch    = errors.New("mac mismatch")
	ErrSasAlreadyUsed = errors.New("sas key already used for a key agreement")
)

// Pickle errors. Wrong passphrase and corruption carry the same text so that
// callers surfacing the message do not reveal which check failed.
var (
	ErrWrongPassphrase = errors.New("pickle: unable to decrypt")
	ErrCorruptPickle   = errors.New("pickle: unable to decrypt")
	ErrEmptyPassphrase = errors.New("pickle: empty passphrase")
)

// Local storage errors.
var (
	ErrNoAccount     = errors.New("no account; run init first")
	ErrAccountExists = errors.New("account already exists")
	ErrNoSession     = errors.New("no session with peer")
	ErrNoGroup       = errors.New("unknown group session")
)
