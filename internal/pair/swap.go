package pair

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/memeswapfi/memeswap-contracts/pkg/swapmath"
	"github.com/memeswapfi/memeswap-contracts/pkg/uq112"
)

var (
	thousand        = big.NewInt(1000)
	thousandSquared = big.NewInt(1000 * 1000)
	hundred         = big.NewInt(100)
)

// Swap sends the requested output amounts to `to` and verifies that enough
// input arrived to keep the fee-adjusted constant product from decreasing.
// Output is transferred optimistically before inputs are measured, so a
// callback may deliver the input only after receiving the output (flash
// settlement); a non-nil callback runs between the optimistic transfer and
// the input measurement, and any error it returns aborts the whole swap.
// data is an opaque referral tag surfaced while the pair is under rental.
func (p *Pair) Swap(amount0Out, amount1Out *big.Int, to common.Address, data []byte, callback func() error) error {
	if err := p.lock(); err != nil {
		return err
	}
	restore := p.snapshotAll()
	err := p.swap(amount0Out, amount1Out, to, data, callback)
	if err != nil {
		restore()
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.afterMutate()
	return nil
}

func (p *Pair) swap(amount0Out, amount1Out *big.Int, to common.Address, data []byte, callback func() error) error {
	if amount0Out.Sign() < 0 || amount1Out.Sign() < 0 {
		return ErrInsufficientOutputAmount
	}
	if amount0Out.Sign() == 0 && amount1Out.Sign() == 0 {
		return ErrInsufficientOutputAmount
	}
	if amount0Out.Cmp(p.reserve0) >= 0 || amount1Out.Cmp(p.reserve1) >= 0 {
		return ErrInsufficientLiquidity
	}
	if to == p.token0 || to == p.token1 {
		return ErrForbidden
	}

	// optimistic output transfer
	if amount0Out.Sign() > 0 {
		if err := p.ledger0.Transfer(p.addr, to, amount0Out); err != nil {
			return err
		}
	}
	if amount1Out.Sign() > 0 {
		if err := p.ledger1.Transfer(p.addr, to, amount1Out); err != nil {
			return err
		}
	}
	if callback != nil {
		if err := callback(); err != nil {
			return err
		}
	}

	balance0 := p.ledger0.BalanceOf(p.addr)
	balance1 := p.ledger1.BalanceOf(p.addr)
	amount0In := inferInput(balance0, p.reserve0, amount0Out)
	amount1In := inferInput(balance1, p.reserve1, amount1Out)
	if amount0In.Sign() == 0 && amount1In.Sign() == 0 {
		return ErrInsufficientInputAmount
	}

	underRental := p.oversight.UnderRental(p.addr)
	fee := int64(swapmath.FeeBase)
	if underRental {
		fee = swapmath.FeeRental
	}

	// (balance0*1000 - in0*fee) * (balance1*1000 - in1*fee) >= r0*r1*1000^2
	adjusted0 := new(big.Int).Mul(balance0, thousand)
	adjusted0.Sub(adjusted0, new(big.Int).Mul(amount0In, big.NewInt(fee)))
	adjusted1 := new(big.Int).Mul(balance1, thousand)
	adjusted1.Sub(adjusted1, new(big.Int).Mul(amount1In, big.NewInt(fee)))

	left := new(big.Int).Mul(adjusted0, adjusted1)
	right := new(big.Int).Mul(p.reserve0, p.reserve1)
	right.Mul(right, thousandSquared)
	if left.Cmp(right) < 0 {
		return ErrInvariantViolated
	}

	if underRental {
		feeTo := p.oversight.FeeTo()
		if p.oversight.IsManaged(p.token0) && amount0In.Sign() > 0 {
			if slice := new(big.Int).Div(amount0In, hundred); slice.Sign() > 0 {
				if err := p.ledger0.Transfer(p.addr, feeTo, slice); err != nil {
					return err
				}
				balance0 = p.ledger0.BalanceOf(p.addr)
			}
		}
		if p.oversight.IsManaged(p.token1) && amount1In.Sign() > 0 {
			if slice := new(big.Int).Div(amount1In, hundred); slice.Sign() > 0 {
				if err := p.ledger1.Transfer(p.addr, feeTo, slice); err != nil {
					return err
				}
				balance1 = p.ledger1.BalanceOf(p.addr)
			}
		}
		if len(data) > 0 {
			p.log.Info("swap referral", "pair", p.addr, "to", to, "tag", hexutil.Encode(data))
		}
	}

	if err := p.update(balance0, balance1); err != nil {
		return err
	}
	p.log.Debug("swap", "pair", p.addr, "to", to,
		"amount0In", amount0In, "amount1In", amount1In,
		"amount0Out", amount0Out, "amount1Out", amount1Out)
	return nil
}

func inferInput(balance, reserve, amountOut *big.Int) *big.Int {
	floor := new(big.Int).Sub(reserve, amountOut)
	if balance.Cmp(floor) > 0 {
		return new(big.Int).Sub(balance, floor)
	}
	return new(big.Int)
}

// Skim transfers any balance in excess of the reserves to `to`, forcing
// balances back down to the stored reserves.
func (p *Pair) Skim(to common.Address) error {
	if err := p.lock(); err != nil {
		return err
	}
	defer p.mu.Unlock()
	restore := p.snapshotAll()

	excess0 := new(big.Int).Sub(p.ledger0.BalanceOf(p.addr), p.reserve0)
	excess1 := new(big.Int).Sub(p.ledger1.BalanceOf(p.addr), p.reserve1)
	if excess0.Sign() > 0 {
		if err := p.ledger0.Transfer(p.addr, to, excess0); err != nil {
			restore()
			return err
		}
	}
	if excess1.Sign() > 0 {
		if err := p.ledger1.Transfer(p.addr, to, excess1); err != nil {
			restore()
			return err
		}
	}
	return nil
}

// Sync forces the reserves to match the current balances, folding any
// untracked delivery into the pool.
func (p *Pair) Sync() error {
	if err := p.lock(); err != nil {
		return err
	}
	restore := p.snapshotAll()
	err := p.update(p.ledger0.BalanceOf(p.addr), p.ledger1.BalanceOf(p.addr))
	if err != nil {
		restore()
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.afterMutate()
	return nil
}

// update advances the price accumulators by the time-weighted instantaneous
// price since the last synchronization, then overwrites the reserves.
// Repeated calls within the same second leave the accumulators untouched.
func (p *Pair) update(balance0, balance1 *big.Int) error {
	if !uq112.Fits(balance0) || !uq112.Fits(balance1) {
		return ErrOverflow
	}

	blockTimestamp := uint32(p.now().Unix())
	timeElapsed := blockTimestamp - p.blockTimestampLast // wraps mod 2^32

	if timeElapsed > 0 && p.reserve0.Sign() != 0 && p.reserve1.Sign() != 0 {
		elapsed := new(big.Int).SetUint64(uint64(timeElapsed))

		delta0 := uq112.Div(uq112.Encode(p.reserve1), p.reserve0)
		delta0.Mul(delta0, elapsed)
		p.price0Cumulative = uq112.AddWrapping(p.price0Cumulative, delta0)

		delta1 := uq112.Div(uq112.Encode(p.reserve0), p.reserve1)
		delta1.Mul(delta1, elapsed)
		p.price1Cumulative = uq112.AddWrapping(p.price1Cumulative, delta1)
	}

	p.reserve0.Set(balance0)
	p.reserve1.Set(balance1)
	p.blockTimestampLast = blockTimestamp
	return nil
}
