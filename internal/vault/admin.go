package vault

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Hard bounds on the owner-tunable parameters.
const (
	maxRateCeilingBps   = 20_000 // 200% APR
	maxProtocolCutBps   = 5_000  // half the rent
	maxResolutionFeeBps = 1_000  // 10% of returned collateral
	maxSuccessMult      = 1_000
)

// SetRates adjusts the annualized rate band.
func (v *Vault) SetRates(caller common.Address, minBps, maxBps uint64) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	if caller != v.owner {
		return ErrForbidden
	}
	if minBps > maxBps || maxBps > maxRateCeilingBps {
		return ErrOutOfRange
	}
	v.params.MinRateBps = minBps
	v.params.MaxRateBps = maxBps
	return nil
}

// SetProtocolCut adjusts the protocol's slice of rent.
func (v *Vault) SetProtocolCut(caller common.Address, bps uint64) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	if caller != v.owner {
		return ErrForbidden
	}
	if bps > maxProtocolCutBps {
		return ErrOutOfRange
	}
	v.params.ProtocolCutBps = bps
	return nil
}

// SetSuccessMultiplier adjusts the reserve-growth multiple that flips a
// rental onto the success path.
func (v *Vault) SetSuccessMultiplier(caller common.Address, mult uint64) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	if caller != v.owner {
		return ErrForbidden
	}
	if mult == 0 || mult > maxSuccessMult {
		return ErrOutOfRange
	}
	v.params.SuccessMultiplier = mult
	return nil
}

// SetResolutionFee adjusts the resolution fee fraction.
func (v *Vault) SetResolutionFee(caller common.Address, bps uint64) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	if caller != v.owner {
		return ErrForbidden
	}
	if bps > maxResolutionFeeBps {
		return ErrOutOfRange
	}
	v.params.ResolutionFeeBps = bps
	return nil
}

// SetMinDeposit adjusts the minimum stake and queue amount.
func (v *Vault) SetMinDeposit(caller common.Address, min *big.Int) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	if caller != v.owner {
		return ErrForbidden
	}
	if min.Sign() <= 0 {
		return ErrOutOfRange
	}
	v.params.MinDeposit = new(big.Int).Set(min)
	return nil
}

// SetDurationAllowed adds or removes a rental duration from the allowed set.
func (v *Vault) SetDurationAllowed(caller common.Address, d time.Duration, allowed bool) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	if caller != v.owner {
		return ErrForbidden
	}
	if d <= 0 {
		return ErrOutOfRange
	}
	if allowed {
		v.params.Durations[d] = true
	} else {
		delete(v.params.Durations, d)
	}
	return nil
}
