package service

import (
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/registry"
)

// PoolInfo is the externally visible state of one pair.
type PoolInfo struct {
	Address            common.Address `json:"address"`
	Token0             common.Address `json:"token0"`
	Token1             common.Address `json:"token1"`
	Reserve0           *big.Int       `json:"reserve0"`
	Reserve1           *big.Int       `json:"reserve1"`
	BlockTimestampLast uint32         `json:"block_timestamp_last"`
	Price0Cumulative   *big.Int       `json:"price0_cumulative"`
	Price1Cumulative   *big.Int       `json:"price1_cumulative"`
	SharesSupply       *big.Int       `json:"shares_supply"`
	UnderRental        bool           `json:"under_rental"`
}

// PoolService reads pair state for the HTTP surface.
type PoolService struct {
	BaseService
	registry *registry.Registry
}

// NewPoolService constructs a PoolService over the deployed registry.
func NewPoolService(logger *slog.Logger, reg *registry.Registry) *PoolService {
	return &PoolService{
		BaseService: BaseService{logger: logger},
		registry:    reg,
	}
}

// Info returns the current state of the pool at addr.
func (s *PoolService) Info(addr common.Address) (*PoolInfo, error) {
	p, ok := s.registry.PairByAddress(addr)
	if !ok {
		return nil, ErrUnknownPair
	}
	reserve0, reserve1, ts := p.Reserves()
	price0, price1 := p.PriceCumulatives()
	return &PoolInfo{
		Address:            p.Address(),
		Token0:             p.Token0(),
		Token1:             p.Token1(),
		Reserve0:           reserve0,
		Reserve1:           reserve1,
		BlockTimestampLast: ts,
		Price0Cumulative:   price0,
		Price1Cumulative:   price1,
		SharesSupply:       p.Shares().TotalSupply(),
		UnderRental:        s.registry.UnderRental(addr),
	}, nil
}

// List returns the state of every deployed pool.
func (s *PoolService) List() ([]*PoolInfo, error) {
	pairs := s.registry.Pairs()
	out := make([]*PoolInfo, 0, len(pairs))
	for _, p := range pairs {
		info, err := s.Info(p.Address())
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}
