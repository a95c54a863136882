package pair

import "errors"

var (
	ErrInsufficientLiquidity    = errors.New("insufficient liquidity")
	ErrInsufficientInputAmount  = errors.New("insufficient input amount")
	ErrInsufficientOutputAmount = errors.New("insufficient output amount")
	// ErrOverflow is returned when a synchronized balance exceeds the
	// 112-bit reserve width.
	ErrOverflow = errors.New("reserve overflow")
	// ErrReentrantCall is returned when a mutating entry point is entered
	// while another mutating call is in flight on the same pair.
	ErrReentrantCall = errors.New("reentrant call")
	// ErrForbidden is returned for recipients or callers a policy hook
	// rejects.
	ErrForbidden = errors.New("forbidden")
	// ErrInvariantViolated is returned when a swap would decrease the
	// fee-adjusted constant product.
	ErrInvariantViolated = errors.New("constant product invariant violated")
)
