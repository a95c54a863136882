package pair

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/pkg/uq112"
)

// Mint turns tokens already delivered to the pair into liquidity shares for
// `to`. While the pair is under an active rental only the rental-issuing
// registry may receive shares.
func (p *Pair) Mint(to common.Address) (*big.Int, error) {
	if err := p.lock(); err != nil {
		return nil, err
	}
	restore := p.snapshotAll()
	liquidity, err := p.mint(to)
	if err != nil {
		restore()
	}
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p.afterMutate()
	return liquidity, nil
}

func (p *Pair) mint(to common.Address) (*big.Int, error) {
	if p.oversight.UnderRental(p.addr) && to != p.oversight.RentalIssuer() {
		return nil, ErrForbidden
	}

	balance0 := p.ledger0.BalanceOf(p.addr)
	balance1 := p.ledger1.BalanceOf(p.addr)
	amount0 := new(big.Int).Sub(balance0, p.reserve0)
	amount1 := new(big.Int).Sub(balance1, p.reserve1)

	feeOn := p.mintFee()
	totalShares := p.shares.TotalSupply()

	var liquidity *big.Int
	if totalShares.Sign() == 0 {
		liquidity = uq112.Sqrt(new(big.Int).Mul(amount0, amount1))
		liquidity.Sub(liquidity, MinimumLiquidity)
		if liquidity.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}
		// the minimum-liquidity shares are locked with the fee recipient
		// forever
		if err := p.shares.Mint(p.oversight.FeeTo(), MinimumLiquidity); err != nil {
			return nil, err
		}
	} else {
		share0 := new(big.Int).Mul(amount0, totalShares)
		share0.Div(share0, p.reserve0)
		share1 := new(big.Int).Mul(amount1, totalShares)
		share1.Div(share1, p.reserve1)
		liquidity = uq112.Min(share0, share1)
		if liquidity.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}
	}

	if err := p.shares.Mint(to, liquidity); err != nil {
		return nil, err
	}
	if err := p.update(balance0, balance1); err != nil {
		return nil, err
	}
	if feeOn {
		p.kLast.Mul(p.reserve0, p.reserve1)
	}

	p.log.Debug("liquidity minted", "pair", p.addr, "to", to, "amount0", amount0, "amount1", amount1, "liquidity", liquidity)
	return liquidity, nil
}

// Burn redeems the liquidity shares held by the pair itself (the caller must
// have transferred shares to the pair first) for a pro-rata slice of both
// reserves.
func (p *Pair) Burn(to common.Address) (*big.Int, *big.Int, error) {
	if err := p.lock(); err != nil {
		return nil, nil, err
	}
	restore := p.snapshotAll()
	amount0, amount1, err := p.burn(to)
	if err != nil {
		restore()
	}
	p.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	p.afterMutate()
	return amount0, amount1, nil
}

func (p *Pair) burn(to common.Address) (*big.Int, *big.Int, error) {
	balance0 := p.ledger0.BalanceOf(p.addr)
	balance1 := p.ledger1.BalanceOf(p.addr)
	liquidity := p.shares.BalanceOf(p.addr)

	feeOn := p.mintFee()
	totalShares := p.shares.TotalSupply()
	if liquidity.Sign() == 0 || totalShares.Sign() == 0 {
		return nil, nil, ErrInsufficientLiquidity
	}

	// pro-rata distribution, rounded down
	amount0 := new(big.Int).Mul(liquidity, balance0)
	amount0.Div(amount0, totalShares)
	amount1 := new(big.Int).Mul(liquidity, balance1)
	amount1.Div(amount1, totalShares)
	if amount0.Sign() == 0 || amount1.Sign() == 0 {
		return nil, nil, ErrInsufficientLiquidity
	}

	if err := p.shares.Burn(p.addr, liquidity); err != nil {
		return nil, nil, err
	}
	if err := p.ledger0.Transfer(p.addr, to, amount0); err != nil {
		return nil, nil, err
	}
	if err := p.ledger1.Transfer(p.addr, to, amount1); err != nil {
		return nil, nil, err
	}

	balance0 = p.ledger0.BalanceOf(p.addr)
	balance1 = p.ledger1.BalanceOf(p.addr)
	if err := p.update(balance0, balance1); err != nil {
		return nil, nil, err
	}
	if feeOn {
		p.kLast.Mul(p.reserve0, p.reserve1)
	}

	p.log.Debug("liquidity burned", "pair", p.addr, "to", to, "amount0", amount0, "amount1", amount1, "liquidity", liquidity)
	return amount0, amount1, nil
}

// mintFee mints the protocol's 1/6 cut of constant-product growth since the
// last liquidity event to the fee recipient. Returns whether the fee switch
// is on.
func (p *Pair) mintFee() bool {
	feeTo := p.oversight.FeeTo()
	feeOn := feeTo != (common.Address{})
	if !feeOn {
		p.kLast.SetInt64(0)
		return false
	}
	if p.kLast.Sign() == 0 {
		return true
	}

	rootK := uq112.Sqrt(new(big.Int).Mul(p.reserve0, p.reserve1))
	rootKLast := uq112.Sqrt(p.kLast)
	if rootK.Cmp(rootKLast) <= 0 {
		return true
	}

	numerator := new(big.Int).Sub(rootK, rootKLast)
	numerator.Mul(numerator, p.shares.TotalSupply())
	denominator := new(big.Int).Mul(rootK, big.NewInt(5))
	denominator.Add(denominator, rootKLast)
	liquidity := numerator.Div(numerator, denominator)
	if liquidity.Sign() > 0 {
		_ = p.shares.Mint(feeTo, liquidity)
	}
	return true
}
