// Package token implements the fungible balance ledger the pair and vault
// settle against: balances, allowances, mint/burn and signed spending
// authorizations (permit). One Token instance is one token type.
package token

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Token is an in-process fungible ledger. All amounts are non-negative and
// every mutation keeps the sum of balances equal to the total supply.
type Token struct {
	mu sync.RWMutex

	name     string
	symbol   string
	decimals uint8
	addr     common.Address

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	nonces      map[common.Address]uint64

	domainSeparator common.Hash
	now             func() time.Time
}

// New constructs an empty ledger. The address identifies the token in
// registries and pair derivation; now supplies deadline checks for Permit
// and defaults to time.Now.
func New(name, symbol string, decimals uint8, addr common.Address, now func() time.Time) *Token {
	if now == nil {
		now = time.Now
	}
	return &Token{
		name:            name,
		symbol:          symbol,
		decimals:        decimals,
		addr:            addr,
		totalSupply:     new(big.Int),
		balances:        make(map[common.Address]*big.Int),
		allowances:      make(map[common.Address]map[common.Address]*big.Int),
		nonces:          make(map[common.Address]uint64),
		domainSeparator: crypto.Keccak256Hash([]byte(name), addr.Bytes()),
		now:             now,
	}
}

func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }
func (t *Token) Address() common.Address { return t.addr }

// TotalSupply returns a copy of the current supply.
func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf returns a copy of the account's balance.
func (t *Token) BalanceOf(account common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Allowance returns a copy of the amount spender may move on owner's behalf.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// Nonce returns the owner's current permit nonce.
func (t *Token) Nonce(owner common.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nonces[owner]
}

// Mint credits value to account, growing the supply.
func (t *Token) Mint(account common.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(account, value)
	t.totalSupply.Add(t.totalSupply, value)
	return nil
}

// Burn debits value from account, shrinking the supply.
func (t *Token) Burn(account common.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(account, value); err != nil {
		return err
	}
	t.totalSupply.Sub(t.totalSupply, value)
	return nil
}

// Transfer moves value from one account to another. The caller supplies the
// acting account explicitly; authorization of that caller is the embedding
// component's concern.
func (t *Token) Transfer(from, to common.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, value); err != nil {
		return err
	}
	t.credit(to, value)
	return nil
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(owner, spender common.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setAllowance(owner, spender, new(big.Int).Set(value))
	return nil
}

// TransferFrom moves value from owner to recipient on behalf of spender,
// consuming allowance.
func (t *Token) TransferFrom(spender, owner, to common.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := t.allowance(owner, spender)
	if allowed.Cmp(value) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.debit(owner, value); err != nil {
		return err
	}
	t.credit(to, value)
	t.setAllowance(owner, spender, new(big.Int).Sub(allowed, value))
	return nil
}

func (t *Token) credit(account common.Address, value *big.Int) {
	b, ok := t.balances[account]
	if !ok {
		b = new(big.Int)
		t.balances[account] = b
	}
	b.Add(b, value)
}

func (t *Token) debit(account common.Address, value *big.Int) error {
	b, ok := t.balances[account]
	if !ok || b.Cmp(value) < 0 {
		return ErrInsufficientBalance
	}
	b.Sub(b, value)
	return nil
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

func (t *Token) setAllowance(owner, spender common.Address, value *big.Int) {
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		t.allowances[owner] = m
	}
	m[spender] = value
}
