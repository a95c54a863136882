package swapmath

import (
	"math/big"
	"testing"
)

func BenchmarkGetAmountOut(b *testing.B) {
	rIn := new(big.Int).SetUint64(13_451_234_567_890)
	rOut := new(big.Int).SetUint64(98_765_432_109_876)
	in := new(big.Int).SetUint64(1_000_000)
	num := new(big.Int)
	den := new(big.Int)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = getAmountOut(num, den, in, rIn, rOut, FeeBase)
	}
}
