package vault

import "errors"

var (
	// ErrVaultDry is returned when a rental asks for more than the free,
	// un-queued pooled collateral.
	ErrVaultDry = errors.New("vault dry")
	// ErrWrongDuration is returned for a rental duration outside the
	// allowed set.
	ErrWrongDuration = errors.New("wrong rental duration")
	// ErrOutOfRange is returned when an amount or tunable parameter falls
	// outside its permitted bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrForbidden is returned when the caller is not authorized for a
	// privileged path.
	ErrForbidden = errors.New("forbidden")
	// ErrReentrantCall is returned when a mutating entry point is entered
	// while another mutating call is in flight on the vault.
	ErrReentrantCall = errors.New("reentrant call")
	// ErrInsufficientBalance is returned when a withdrawal exceeds the
	// claimable bucket.
	ErrInsufficientBalance = errors.New("insufficient claimable balance")
	// ErrActiveRental is returned when a pair already carries a rental.
	ErrActiveRental = errors.New("pair already under rental")
)
