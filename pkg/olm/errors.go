package olm

import "olmcore/internal/domain"

// Errors returned by this package. Match them with errors.Is.
var (
	ErrInvalidKey            = domain.ErrInvalidKey
	ErrOneTimeKeyNotFound    = domain.ErrOneTimeKeyNotFound
	ErrCapacityExceeded      = domain.ErrCapacityExceeded
	ErrMismatchedIdentityKey = domain.ErrMismatchedIdentityKey
	ErrDecode                = domain.ErrDecode
	ErrInvalidMessageType    = domain.ErrInvalidMessageType
	ErrAuthenticationFailed  = domain.ErrAuthenticationFailed
	ErrMessageKeyExpired     = domain.ErrMessageKeyExpired
	ErrMessageGapTooLarge    = domain.ErrMessageGapTooLarge
	ErrInvalidSignature      = domain.ErrInvalidSignature
	ErrWrongPassphrase       = domain.ErrWrongPassphrase
	ErrCorruptPickle         = domain.ErrCorruptPickle
	ErrEmptyPassphrase       = domain.ErrEmptyPassphrase
)
