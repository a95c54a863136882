package swapmath

import "errors"

var (
	ErrInsufficientAmount       = errors.New("insufficient amount")
	ErrInsufficientInputAmount  = errors.New("insufficient input amount")
	ErrInsufficientOutputAmount = errors.New("insufficient output amount")
	ErrInsufficientLiquidity    = errors.New("insufficient liquidity")
	ErrIdenticalTokens          = errors.New("identical token addresses")
	ErrInvalidPath              = errors.New("path must contain at least two tokens")
)
