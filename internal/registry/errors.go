package registry

import "errors"

var (
	ErrPairExists   = errors.New("pair already exists")
	ErrUnknownPair  = errors.New("pair not registered")
	ErrUnknownToken = errors.New("token ledger not registered")
	ErrForbidden    = errors.New("forbidden")
	ErrVaultUnset   = errors.New("rental vault not configured")
)
