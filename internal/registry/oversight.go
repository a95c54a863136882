package registry

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/vault"
)

// FeeTo is the protocol fee recipient consulted by pairs and the vault.
func (r *Registry) FeeTo() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feeTo
}

// SetFeeTo changes the protocol fee recipient. Owner only. The zero
// address disables protocol fee accrual in the pairs.
func (r *Registry) SetFeeTo(caller, feeTo common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrForbidden
	}
	r.feeTo = feeTo
	return nil
}

// UnderRental reports whether the pair at addr backs an active rental.
func (r *Registry) UnderRental(addr common.Address) bool {
	r.mu.RLock()
	v := r.vault
	r.mu.RUnlock()
	if v == nil {
		return false
	}
	return v.HasRental(addr)
}

// IsManaged reports whether a token is under registry supply management.
func (r *Registry) IsManaged(tok common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.managed[tok]
}

// SetManaged flags or unflags a token as managed. Owner only.
func (r *Registry) SetManaged(caller, tok common.Address, managed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrForbidden
	}
	r.managed[tok] = managed
	return nil
}

// RentalIssuer is the only identity pairs admit as a liquidity provider
// while under rental.
func (r *Registry) RentalIssuer() common.Address {
	return r.addr
}

// IsApprovedToken reports whether tok may be borrowed from the vault.
func (r *Registry) IsApprovedToken(tok common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.approved[tok]
}

// ApproveToken adds or removes a token from the rentable whitelist.
// Owner only.
func (r *Registry) ApproveToken(caller, tok common.Address, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrForbidden
	}
	r.approved[tok] = approved
	return nil
}

// PoolByAddress resolves a pair address for the vault.
func (r *Registry) PoolByAddress(addr common.Address) (vault.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pairsByAddr[addr]
	if !ok {
		return nil, false
	}
	return p, true
}

// ManagedLedger returns the burnable ledger for a managed token.
func (r *Registry) ManagedLedger(tok common.Address) (vault.Burner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.managed[tok] {
		return nil, false
	}
	led, ok := r.ledgers[tok]
	if !ok {
		return nil, false
	}
	return led, true
}

// MarkMatured records that a managed token graduated through a successful
// rental resolution.
func (r *Registry) MarkMatured(tok common.Address, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matured[tok] = at.Unix()
	r.log.Info("token matured", "token", tok, "at", at.Unix())
}

// MaturedAt returns the unix time a token matured, if it has.
func (r *Registry) MaturedAt(tok common.Address) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	at, ok := r.matured[tok]
	return at, ok
}

// LaunchRental borrows from the vault on behalf of borrower, with the
// registry acting as issuer. The rental is keyed by the pool backing it.
// pairToResolve optionally names a pair whose pending rental should be
// resolved before pricing.
func (r *Registry) LaunchRental(pool, borrowedToken common.Address, amount *big.Int, duration time.Duration, borrower, pairToResolve common.Address) (*big.Int, error) {
	r.mu.RLock()
	v := r.vault
	r.mu.RUnlock()
	if v == nil {
		return nil, ErrVaultUnset
	}
	return v.Rent(r.addr, pool, borrowedToken, amount, duration, borrower, pairToResolve)
}

// SeedRental mints the tokens already delivered to a rented pair into
// liquidity shares and parks them with the vault's escrow. While a rental is
// live the pair only admits the registry as a mint recipient, so launch
// flows must route seeded shares through here.
func (r *Registry) SeedRental(pairAddr common.Address) (*big.Int, error) {
	r.mu.RLock()
	p, ok := r.pairsByAddr[pairAddr]
	v := r.vault
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownPair
	}
	if v == nil {
		return nil, ErrVaultUnset
	}

	liquidity, err := p.Mint(r.addr)
	if err != nil {
		return nil, err
	}
	if err := p.Shares().Transfer(r.addr, v.EscrowAddress(), liquidity); err != nil {
		return nil, err
	}
	r.log.Info("rental seeded", "pair", pairAddr, "shares", liquidity)
	return liquidity, nil
}
