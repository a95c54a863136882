// Package swapmath contains the stateless constant-product quoting functions
// shared by the pair engine and external routers. All arithmetic is integer
// and rounds in the pool's favor.
package swapmath

import "math/big"

// Fee tiers, expressed in thousandths of the input amount.
const (
	// FeeBase is the standard swap fee, 0.3%.
	FeeBase = 3
	// FeeRental applies while a pair is under an active rental, 1.0%.
	FeeRental = 10

	feeScale = 1000
)

var (
	thousand = big.NewInt(feeScale)
	one      = big.NewInt(1)
)

// Quote returns the amount of the other token equivalent to amountA at the
// current reserve ratio, rounded down. Fees do not apply to quotes.
func Quote(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if amountA.Sign() <= 0 {
		return nil, ErrInsufficientAmount
	}
	if reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	amountB := new(big.Int).Mul(amountA, reserveB)
	return amountB.Div(amountB, reserveA), nil
}

// GetAmountOut returns the maximum output amount obtainable for amountIn
// given the reserves and a fee in thousandths. Division truncates, so the
// pool never pays out more than the fee-adjusted product allows.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, fee int64) (*big.Int, error) {
	if amountIn.Sign() <= 0 {
		return nil, ErrInsufficientInputAmount
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	var num, den big.Int
	return getAmountOut(&num, &den, amountIn, reserveIn, reserveOut, fee), nil
}

// getAmountOut computes into num (the result) reusing num/den as scratch to
// keep the hot path allocation-light.
func getAmountOut(num, den *big.Int, amountIn, reserveIn, reserveOut *big.Int, fee int64) *big.Int {
	// den = amountIn * (1000 - fee)
	den.Mul(amountIn, big.NewInt(feeScale-fee))
	// num = amountInWithFee * reserveOut
	num.Mul(den, reserveOut)
	// den = reserveIn * 1000 + amountInWithFee
	den.Add(den, new(big.Int).Mul(reserveIn, thousand))
	return num.Div(num, den)
}

// GetAmountIn returns the minimum input amount required to receive amountOut
// given the reserves and a fee in thousandths. The division rounds up, so a
// swap sized by this function always satisfies the pair invariant.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int, fee int64) (*big.Int, error) {
	if amountOut.Sign() <= 0 {
		return nil, ErrInsufficientOutputAmount
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, thousand)
	den := new(big.Int).Sub(reserveOut, amountOut)
	den.Mul(den, big.NewInt(feeScale-fee))
	num.Div(num, den)
	return num.Add(num, one), nil
}
