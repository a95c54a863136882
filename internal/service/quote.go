package service

import (
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/registry"
	"github.com/memeswapfi/memeswap-contracts/pkg/swapmath"
)

// QuoteService answers output-amount quotes against live pair reserves,
// charging the fee tier the pair would actually apply.
type QuoteService struct {
	BaseService
	registry *registry.Registry
}

// NewQuoteService constructs a QuoteService over the deployed registry.
func NewQuoteService(logger *slog.Logger, reg *registry.Registry) *QuoteService {
	return &QuoteService{
		BaseService: BaseService{logger: logger},
		registry:    reg,
	}
}

// Quote computes the expected output for swapping amountIn of src to dst in
// the given pool at current reserves.
func (s *QuoteService) Quote(pool, src, dst common.Address, amountIn *big.Int) (*big.Int, error) {
	s.logger.Debug("quoting swap", "pool", pool.Hex(), "src", src.Hex(), "dst", dst.Hex(), "in", amountIn.String())

	if src == dst {
		return nil, ErrSameToken
	}
	p, ok := s.registry.PairByAddress(pool)
	if !ok {
		return nil, ErrUnknownPair
	}

	reserve0, reserve1, _ := p.Reserves()
	var reserveIn, reserveOut *big.Int
	switch {
	case src == p.Token0() && dst == p.Token1():
		reserveIn, reserveOut = reserve0, reserve1
	case src == p.Token1() && dst == p.Token0():
		reserveIn, reserveOut = reserve1, reserve0
	default:
		return nil, ErrPairMismatch
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrEmptyReserves
	}

	out, err := swapmath.GetAmountOut(amountIn, reserveIn, reserveOut, s.swapFee(pool))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("amount out computed", "out", out.String())
	return out, nil
}

// QuotePath quotes a multi-hop route, returning the amount at every hop.
func (s *QuoteService) QuotePath(amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	return swapmath.GetAmountsOut(registryReserves{s.registry}, registryReserves{s.registry}, amountIn, path)
}

func (s *QuoteService) swapFee(pool common.Address) int64 {
	if s.registry.UnderRental(pool) {
		return swapmath.FeeRental
	}
	return swapmath.FeeBase
}

// registryReserves adapts the registry to the routing interfaces.
type registryReserves struct {
	reg *registry.Registry
}

func (r registryReserves) Reserves(tokenA, tokenB common.Address) (*big.Int, *big.Int, error) {
	p, ok := r.reg.GetPair(tokenA, tokenB)
	if !ok {
		return nil, nil, ErrUnknownPair
	}
	reserve0, reserve1, _ := p.Reserves()
	if reserve0.Sign() == 0 || reserve1.Sign() == 0 {
		return nil, nil, ErrEmptyReserves
	}
	if tokenA == p.Token0() {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}

func (r registryReserves) SwapFee(tokenA, tokenB common.Address) int64 {
	p, ok := r.reg.GetPair(tokenA, tokenB)
	if !ok {
		return swapmath.FeeBase
	}
	if r.reg.UnderRental(p.Address()) {
		return swapmath.FeeRental
	}
	return swapmath.FeeBase
}
