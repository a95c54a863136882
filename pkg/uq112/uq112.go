// Package uq112 implements the binary fixed-point format used by the pair
// price oracle: 112 integer bits and 112 fractional bits (UQ112.112),
// together with the integer helpers shared by the reserve accounting.
package uq112

import "math/big"

var (
	// Q112 is the fixed-point scaling factor, 2^112.
	Q112 = new(big.Int).Lsh(big.NewInt(1), 112)

	// Max is the largest value a reserve may take, 2^112 - 1.
	Max = new(big.Int).Sub(Q112, big.NewInt(1))

	// max256 masks accumulator arithmetic to 256 bits so the cumulative
	// price counters wrap instead of growing without bound.
	max256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Encode converts an integer into UQ112.112 representation.
func Encode(x *big.Int) *big.Int {
	return new(big.Int).Lsh(x, 112)
}

// Div divides a UQ112.112 value by an integer, truncating toward zero.
// The divisor must be non-zero.
func Div(x, y *big.Int) *big.Int {
	return new(big.Int).Div(x, y)
}

// Fits reports whether x can be stored in 112 bits.
func Fits(x *big.Int) bool {
	return x.Sign() >= 0 && x.Cmp(Max) <= 0
}

// Sqrt returns the integer square root of x, rounded down.
func Sqrt(x *big.Int) *big.Int {
	return new(big.Int).Sqrt(x)
}

// Min returns the smaller of x and y.
func Min(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return x
	}
	return y
}

// AddWrapping adds delta to acc modulo 2^256, matching the wrap-around
// semantics the cumulative price counters rely on.
func AddWrapping(acc, delta *big.Int) *big.Int {
	sum := new(big.Int).Add(acc, delta)
	return sum.And(sum, max256)
}
