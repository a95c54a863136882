package vault

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	bpsDenominator = big.NewInt(10_000)
	secondsPerYear = big.NewInt(365 * 24 * 3600)
)

// yearlyRateBps linearly interpolates the annualized rent rate between the
// configured floor and ceiling as a function of pool utilization.
func (v *Vault) yearlyRateBps() *big.Int {
	minRate := new(big.Int).SetUint64(v.params.MinRateBps)
	if v.totalSupply.Sign() == 0 {
		return minRate
	}
	spread := new(big.Int).SetUint64(v.params.MaxRateBps - v.params.MinRateBps)
	spread.Mul(spread, v.rentedSupply)
	spread.Div(spread, v.totalSupply)
	return minRate.Add(minRate, spread)
}

// rentPrice is amount * duration * yearlyRate / (365d * 10000), rounded
// down.
func (v *Vault) rentPrice(amount *big.Int, duration time.Duration) *big.Int {
	price := new(big.Int).Set(amount)
	price.Mul(price, big.NewInt(int64(duration/time.Second)))
	price.Mul(price, v.yearlyRateBps())
	price.Div(price, secondsPerYear)
	return price.Div(price, bpsDenominator)
}

// RentQuote prices a prospective rental at current utilization.
func (v *Vault) RentQuote(amount *big.Int, duration time.Duration) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rentPrice(amount, duration)
}

// Rent lends amount of pooled collateral to borrower to seed the given pair,
// for one of the allowed durations. Restricted to the rental-issuing
// registry. The rent price is pulled from the borrower up front: the
// protocol cut goes to the fee recipient and the remainder is streamed to
// stakers. pairToResolve optionally names another pair whose rental is
// resolved first.
func (v *Vault) Rent(caller, pool, borrowedToken common.Address, amount *big.Int, duration time.Duration, borrower, pairToResolve common.Address) (*big.Int, error) {
	if err := v.lock(); err != nil {
		return nil, err
	}
	defer v.mu.Unlock()

	if caller != v.issuer {
		return nil, ErrForbidden
	}
	v.maintain(pairToResolve)

	if !v.registry.IsApprovedToken(borrowedToken) {
		return nil, ErrForbidden
	}
	if !v.params.Durations[duration] {
		return nil, ErrWrongDuration
	}
	if v.HasRental(pool) {
		return nil, ErrActiveRental
	}
	if !v.canRent(amount) {
		return nil, ErrVaultDry
	}

	restore := v.snapshot()
	price := v.rentPrice(amount, duration)
	cut := new(big.Int).Set(price)
	cut.Mul(cut, new(big.Int).SetUint64(v.params.ProtocolCutBps))
	cut.Div(cut, bpsDenominator)

	if err := v.collateral.TransferFrom(v.addr, borrower, v.addr, price); err != nil {
		restore()
		return nil, fmt.Errorf("collect rent: %w", err)
	}
	if cut.Sign() > 0 {
		if err := v.collateral.Transfer(v.addr, v.registry.FeeTo(), cut); err != nil {
			restore()
			return nil, fmt.Errorf("protocol cut: %w", err)
		}
	}
	v.notifyRewardAmount(new(big.Int).Sub(price, cut))

	if err := v.collateral.Transfer(v.addr, borrower, amount); err != nil {
		restore()
		return nil, fmt.Errorf("lend principal: %w", err)
	}
	v.rentedSupply.Add(v.rentedSupply, amount)

	v.rentsMu.Lock()
	v.rents[pool] = &Rental{
		Borrower: borrower,
		Token:    borrowedToken,
		Amount:   new(big.Int).Set(amount),
		Duration: duration,
		EndDate:  v.now().Add(duration).Unix(),
	}
	v.rentsMu.Unlock()

	v.log.Info("rental issued", "pair", pool, "borrower", borrower, "amount", amount, "duration", duration, "price", price)
	return price, nil
}

// TryResolve attempts to resolve the pair's rental. It is the pair's
// post-swap hook: best-effort, silently skipped when the vault is already
// mid-operation.
func (v *Vault) TryResolve(pair common.Address) {
	if !v.mu.TryLock() {
		return
	}
	defer v.mu.Unlock()
	v.resolve(pair)
}

// Resolve attempts rental resolution as an explicit entry point.
func (v *Vault) Resolve(pair common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	v.resolve(pair)
	return nil
}

// resolve re-evaluates the pair's rental and settles it into exactly one of
// the two terminal outcomes when its conditions are met: the success path
// once the pool has organically outgrown the seed, or the expiry path once
// the end date has passed.
func (v *Vault) resolve(pairAddr common.Address) {
	v.rentsMu.RLock()
	rent, ok := v.rents[pairAddr]
	v.rentsMu.RUnlock()
	if !ok {
		return
	}
	pool, ok := v.registry.PoolByAddress(pairAddr)
	if !ok {
		v.log.Warn("rental on unknown pair", "pair", pairAddr)
		return
	}

	// classify the two sides before touching anything: burning the wrong
	// side is a silent correctness bug
	var managedToken common.Address
	var collateralReserve, otherReserve *big.Int
	r0, r1, _ := pool.Reserves()
	switch rent.Token {
	case pool.Token0():
		managedToken = pool.Token1()
		collateralReserve, otherReserve = r0, r1
	case pool.Token1():
		managedToken = pool.Token0()
		collateralReserve, otherReserve = r1, r0
	default:
		v.log.Warn("rental token matches neither pair side", "pair", pairAddr, "token", rent.Token)
		return
	}

	threshold := new(big.Int).Mul(rent.Amount, new(big.Int).SetUint64(v.params.SuccessMultiplier))
	switch {
	case otherReserve.Cmp(threshold) > 0:
		v.resolveSuccess(pool, rent, managedToken, collateralReserve)
	case v.now().Unix() >= rent.EndDate:
		v.resolveExpired(pool, rent, managedToken)
	}
}

// resolveSuccess settles a rental whose pool outgrew the seed: the principal
// slice of the escrowed liquidity is burned and returned, the managed side
// is removed from circulation, collateral above principal and fee goes to
// the protocol, and the remaining shares are locked long-term or discarded.
func (v *Vault) resolveSuccess(pool Pool, rent *Rental, managedToken common.Address, collateralReserve *big.Int) {
	shares, err := v.escrow.Withdraw(pool, v.addr)
	if err != nil {
		v.log.Warn("escrow withdrawal failed", "pair", pool.Address(), "err", err)
		return
	}
	if shares.Sign() == 0 || collateralReserve.Sign() == 0 {
		v.log.Warn("nothing escrowed for rental", "pair", pool.Address())
		return
	}

	// the share slice equivalent to the original principal
	principalShares := new(big.Int).Mul(rent.Amount, pool.Shares().TotalSupply())
	principalShares.Div(principalShares, collateralReserve)
	if principalShares.Cmp(shares) > 0 {
		principalShares.Set(shares)
	}

	if err := pool.Shares().Transfer(v.addr, pool.Address(), principalShares); err != nil {
		v.log.Warn("share transfer failed", "pair", pool.Address(), "err", err)
		return
	}
	got0, got1, err := pool.Burn(v.addr)
	if err != nil {
		v.log.Warn("burn failed during resolution", "pair", pool.Address(), "err", err)
		return
	}
	collateralGot, managedGot := orientProceeds(pool, rent.Token, got0, got1)

	feeTo := v.registry.FeeTo()
	fee := new(big.Int).Mul(collateralGot, new(big.Int).SetUint64(v.params.ResolutionFeeBps))
	fee.Div(fee, bpsDenominator)
	if fee.Cmp(collateralGot) > 0 {
		fee.Set(collateralGot)
	}
	if fee.Sign() > 0 {
		_ = v.collateral.Transfer(v.addr, feeTo, fee)
	}
	// collateral beyond principal and fee is the protocol's; a shortfall is
	// absorbed by the pool
	excess := new(big.Int).Sub(collateralGot, fee)
	excess.Sub(excess, rent.Amount)
	if excess.Sign() > 0 {
		_ = v.collateral.Transfer(v.addr, feeTo, excess)
	}

	v.burnManaged(managedToken, managedGot, pool.Address())

	leftover := new(big.Int).Sub(shares, principalShares)
	if leftover.Sign() > 0 {
		v.lockOrDiscard(pool, leftover)
	}

	v.registry.MarkMatured(managedToken, v.now())
	v.closeRental(pool.Address(), rent)
	v.log.Info("rental matured", "pair", pool.Address(), "principal", rent.Amount, "collateralReturned", collateralGot)
}

// resolveExpired settles a rental whose term lapsed without growth: all
// escrowed liquidity is burned, the managed side is removed from
// circulation, and collateral above principal is streamed back to stakers
// as yield.
func (v *Vault) resolveExpired(pool Pool, rent *Rental, managedToken common.Address) {
	shares, err := v.escrow.Withdraw(pool, v.addr)
	if err != nil {
		v.log.Warn("escrow withdrawal failed", "pair", pool.Address(), "err", err)
		return
	}
	if shares.Sign() > 0 {
		if err := pool.Shares().Transfer(v.addr, pool.Address(), shares); err != nil {
			v.log.Warn("share transfer failed", "pair", pool.Address(), "err", err)
			return
		}
		got0, got1, err := pool.Burn(v.addr)
		if err != nil {
			v.log.Warn("burn failed during resolution", "pair", pool.Address(), "err", err)
			return
		}
		collateralGot, managedGot := orientProceeds(pool, rent.Token, got0, got1)

		v.burnManaged(managedToken, managedGot, pool.Address())

		// anything above the principal is yield for the stakers; a
		// shortfall is silently absorbed
		excess := new(big.Int).Sub(collateralGot, rent.Amount)
		if excess.Sign() > 0 {
			v.notifyRewardAmount(excess)
		}
	}

	v.closeRental(pool.Address(), rent)
	v.log.Info("rental expired", "pair", pool.Address(), "principal", rent.Amount)
}

func (v *Vault) closeRental(pairAddr common.Address, rent *Rental) {
	v.rentsMu.Lock()
	delete(v.rents, pairAddr)
	v.rentsMu.Unlock()
	v.rentedSupply.Sub(v.rentedSupply, rent.Amount)
}

func (v *Vault) burnManaged(managedToken common.Address, amount *big.Int, pairAddr common.Address) {
	if amount.Sign() == 0 {
		return
	}
	ledger, ok := v.registry.ManagedLedger(managedToken)
	if !ok {
		v.log.Warn("no ledger for managed token", "token", managedToken, "pair", pairAddr)
		return
	}
	if err := ledger.Burn(v.addr, amount); err != nil {
		v.log.Warn("managed token burn failed", "token", managedToken, "err", err)
	}
}

// lockOrDiscard deposits leftover shares into the long-term lock facility;
// when that fails the shares are sent to the discard address instead.
func (v *Vault) lockOrDiscard(pool Pool, shares *big.Int) {
	if v.locker != nil {
		lockAddr, err := v.locker.CreateLocker(pool.Address(), shares)
		if err == nil {
			err = pool.Shares().Transfer(v.addr, lockAddr, shares)
			if err == nil {
				return
			}
		}
		v.log.Warn("locker deposit failed, discarding shares", "pair", pool.Address(), "shares", shares, "err", err)
	}
	_ = pool.Shares().Transfer(v.addr, discardAddr, shares)
}

// orientProceeds splits burn proceeds into (collateral side, managed side).
func orientProceeds(pool Pool, collateralToken common.Address, got0, got1 *big.Int) (*big.Int, *big.Int) {
	if pool.Token0() == collateralToken {
		return got0, got1
	}
	return got1, got0
}
