package token

import "errors"

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNegativeAmount        = errors.New("negative amount")

	// ErrExpired is returned when a permit's deadline has passed.
	ErrExpired = errors.New("permit expired")
	// ErrInvalidSignature is returned when permit signature recovery does
	// not yield the owner.
	ErrInvalidSignature = errors.New("invalid permit signature")
)
