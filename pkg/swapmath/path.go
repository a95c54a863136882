package swapmath

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ReserveSource yields the current reserves for a token pair, ordered to
// match the (tokenA, tokenB) argument order. Routers back this with live
// pairs; tests back it with fixtures.
type ReserveSource interface {
	Reserves(tokenA, tokenB common.Address) (reserveA, reserveB *big.Int, err error)
}

// FeeSource reports the fee tier (in thousandths) currently charged by the
// pair trading tokenA/tokenB.
type FeeSource interface {
	SwapFee(tokenA, tokenB common.Address) int64
}

// SortTokens orders two token addresses the way pairs store them.
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address, error) {
	if tokenA == tokenB {
		return common.Address{}, common.Address{}, ErrIdenticalTokens
	}
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
		return tokenA, tokenB, nil
	}
	return tokenB, tokenA, nil
}

// PairAddress derives the deterministic address of the pair for tokenA and
// tokenB deployed by the given registry, from the sorted token identifiers
// and the deployment template digest.
func PairAddress(registry common.Address, tokenA, tokenB common.Address, initCodeDigest common.Hash) (common.Address, error) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	salt := crypto.Keccak256(token0.Bytes(), token1.Bytes())
	sum := crypto.Keccak256([]byte{0xff}, registry.Bytes(), salt, initCodeDigest.Bytes())
	return common.BytesToAddress(sum[12:]), nil
}

// GetAmountsOut walks the path forward, quoting each hop against live
// reserves at that hop's fee tier.
func GetAmountsOut(reserves ReserveSource, fees FeeSource, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]*big.Int, len(path))
	amounts[0] = new(big.Int).Set(amountIn)
	for i := 0; i < len(path)-1; i++ {
		reserveIn, reserveOut, err := reserves.Reserves(path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		amounts[i+1], err = GetAmountOut(amounts[i], reserveIn, reserveOut, fees.SwapFee(path[i], path[i+1]))
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// GetAmountsIn walks the path backward, sizing each hop's required input.
func GetAmountsIn(reserves ReserveSource, fees FeeSource, amountOut *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]*big.Int, len(path))
	amounts[len(path)-1] = new(big.Int).Set(amountOut)
	for i := len(path) - 1; i > 0; i-- {
		reserveIn, reserveOut, err := reserves.Reserves(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		amounts[i-1], err = GetAmountIn(amounts[i], reserveIn, reserveOut, fees.SwapFee(path[i-1], path[i]))
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}
