package sas

import "olmcore/internal/domain"

// Errors returned by this package. Match them with errors.Is.
var (
	ErrInvalidKey     = domain.ErrInvalidKey
	ErrDecode         = domain.ErrDecode
	ErrMacMismatch    = domain.ErrMacMismatch
	ErrSasAlreadyUsed = domain.ErrSasAlreadyUsed
)
