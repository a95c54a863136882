package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ShareEscrow is the default escrow: an address that seeded liquidity shares
// are minted to, released in full on withdrawal.
type ShareEscrow struct {
	Addr common.Address
}

// Address is where seeded shares are parked.
func (e *ShareEscrow) Address() common.Address { return e.Addr }

// Withdraw moves every escrowed share for the pool to `to` and returns the
// amount moved.
func (e *ShareEscrow) Withdraw(pool Pool, to common.Address) (*big.Int, error) {
	shares := pool.Shares().BalanceOf(e.Addr)
	if shares.Sign() == 0 {
		return shares, nil
	}
	if err := pool.Shares().Transfer(e.Addr, to, shares); err != nil {
		return nil, err
	}
	return shares, nil
}
