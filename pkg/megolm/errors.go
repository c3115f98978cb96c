package megolm

import "olmcore/internal/domain"

// Errors returned by this package. Match them with errors.Is.
var (
	ErrInvalidKey           = domain.ErrInvalidKey
	ErrDecode               = domain.ErrDecode
	ErrAuthenticationFailed = domain.ErrAuthenticationFailed
	ErrInvalidSignature     = domain.ErrInvalidSignature
	ErrUnknownMessageIndex  = domain.ErrUnknownMessageIndex
	ErrWrongPassphrase      = domain.ErrWrongPassphrase
	ErrCorruptPickle        = domain.ErrCorruptPickle
	ErrEmptyPassphrase      = domain.ErrEmptyPassphrase
)
