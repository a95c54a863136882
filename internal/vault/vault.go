// Package vault implements the liquidity-rental market: pooled collateral
// staking with streamed yield, a FIFO exit queue, and the lifecycle of
// rentals issued against exchange pairs.
package vault

import (
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/token"
)

// Scale is the fixed-point scale of the streaming reward accounting.
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// discardAddr receives liquidity shares that are dropped irretrievably when
// the long-term lock deposit fails.
var discardAddr = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

// Ledger is the collateral token contract as the vault consumes it.
type Ledger interface {
	BalanceOf(account common.Address) *big.Int
	Transfer(from, to common.Address, value *big.Int) error
	TransferFrom(spender, owner, to common.Address, value *big.Int) error
	Snapshot() func()
}

// Burner is the slice of a managed token the resolution paths need: reading
// and destroying the vault's holdings of it.
type Burner interface {
	BalanceOf(account common.Address) *big.Int
	Burn(account common.Address, value *big.Int) error
}

// Pool is the slice of the exchange pair the vault reads and settles
// against during rental resolution.
type Pool interface {
	Address() common.Address
	Token0() common.Address
	Token1() common.Address
	Reserves() (reserve0, reserve1 *big.Int, blockTimestampLast uint32)
	Burn(to common.Address) (amount0, amount1 *big.Int, err error)
	Shares() *token.Token
}

// Registry answers the vault's classification and lookup questions.
type Registry interface {
	FeeTo() common.Address
	IsApprovedToken(tok common.Address) bool
	PoolByAddress(addr common.Address) (Pool, bool)
	ManagedLedger(tok common.Address) (Burner, bool)
	MarkMatured(tok common.Address, at time.Time)
}

// Escrow holds the liquidity shares seeded with rented collateral and
// releases them to the vault at resolution time.
type Escrow interface {
	Address() common.Address
	Withdraw(pool Pool, to common.Address) (*big.Int, error)
}

// Locker is the best-effort long-term lock facility. A failed deposit
// degrades to direct discard, never an abort.
type Locker interface {
	CreateLocker(pool common.Address, shares *big.Int) (common.Address, error)
}

// Rental is one outstanding loan of pooled collateral against a pair.
type Rental struct {
	Borrower common.Address
	Token    common.Address // the borrowed collateral type
	Amount   *big.Int
	Duration time.Duration
	EndDate  int64 // unix seconds
}

// Params are the owner-tunable vault settings.
type Params struct {
	MinRateBps        uint64 // annualized rate floor
	MaxRateBps        uint64 // annualized rate ceiling
	ProtocolCutBps    uint64 // slice of rent taken for the protocol
	SuccessMultiplier uint64 // reserve growth multiple triggering success
	ResolutionFeeBps  uint64 // slice of returned collateral kept as fee
	RewardWindow      time.Duration
	MinDeposit        *big.Int
	Durations         map[time.Duration]bool
}

// DefaultParams returns the deployment defaults.
func DefaultParams() Params {
	return Params{
		MinRateBps:        500,
		MaxRateBps:        4000,
		ProtocolCutBps:    1000,
		SuccessMultiplier: 10,
		ResolutionFeeBps:  100,
		RewardWindow:      7 * 24 * time.Hour,
		MinDeposit:        big.NewInt(1),
		Durations: map[time.Duration]bool{
			7 * 24 * time.Hour:  true,
			14 * 24 * time.Hour: true,
			28 * 24 * time.Hour: true,
		},
	}
}

// Vault is the pooled-collateral rental market. A single guard serializes
// its mutating surface; reads go through the same mutex.
type Vault struct {
	mu sync.Mutex

	log        *slog.Logger
	addr       common.Address
	owner      common.Address
	issuer     common.Address // the registry allowed to call Rent
	collateral Ledger
	registry   Registry
	escrow     Escrow
	locker     Locker
	now        func() time.Time

	totalSupply  *big.Int
	rentedSupply *big.Int
	totalInQueue *big.Int
	balances     map[common.Address]*big.Int

	rewardRate             *big.Int
	periodFinish           int64
	lastUpdateTime         int64
	rewardPerTokenStored   *big.Int
	userRewardPerTokenPaid map[common.Address]*big.Int
	rewards                map[common.Address]*big.Int

	queue              map[uint64]queueEntry
	queueFirst         uint64
	queueLast          uint64
	userTotalQueue     map[common.Address]*big.Int
	pendingWithdrawals map[common.Address]*big.Int

	rentsMu sync.RWMutex
	rents   map[common.Address]*Rental

	params Params
}

type queueEntry struct {
	account common.Address
	amount  *big.Int
}

// New constructs a vault holding `collateral`, owned by owner, issuing
// rentals only to calls from issuer (the registry).
func New(addr, owner, issuer common.Address, collateral Ledger, reg Registry, escrow Escrow, locker Locker, params Params, log *slog.Logger, now func() time.Time) *Vault {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Vault{
		log:                    log,
		addr:                   addr,
		owner:                  owner,
		issuer:                 issuer,
		collateral:             collateral,
		registry:               reg,
		escrow:                 escrow,
		locker:                 locker,
		now:                    now,
		totalSupply:            new(big.Int),
		rentedSupply:           new(big.Int),
		totalInQueue:           new(big.Int),
		balances:               make(map[common.Address]*big.Int),
		rewardRate:             new(big.Int),
		rewardPerTokenStored:   new(big.Int),
		userRewardPerTokenPaid: make(map[common.Address]*big.Int),
		rewards:                make(map[common.Address]*big.Int),
		queue:                  make(map[uint64]queueEntry),
		userTotalQueue:         make(map[common.Address]*big.Int),
		pendingWithdrawals:     make(map[common.Address]*big.Int),
		rents:                  make(map[common.Address]*Rental),
		params:                 params,
	}
}

func (v *Vault) Address() common.Address { return v.addr }

// EscrowAddress is where seeded liquidity shares must be parked so that
// resolution can later withdraw them.
func (v *Vault) EscrowAddress() common.Address { return v.escrow.Address() }

func (v *Vault) lock() error {
	if !v.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

// snapshot captures the vault's own fields plus the collateral ledger; the
// returned function rolls the operation back. Called after maintenance so a
// failed operation cannot unwind completed background work.
func (v *Vault) snapshot() func() {
	ledger := v.collateral.Snapshot()

	total := new(big.Int).Set(v.totalSupply)
	rented := new(big.Int).Set(v.rentedSupply)
	queued := new(big.Int).Set(v.totalInQueue)
	balances := copyAmounts(v.balances)

	rate := new(big.Int).Set(v.rewardRate)
	finish := v.periodFinish
	updated := v.lastUpdateTime
	perToken := new(big.Int).Set(v.rewardPerTokenStored)
	paid := copyAmounts(v.userRewardPerTokenPaid)
	rewards := copyAmounts(v.rewards)

	queue := make(map[uint64]queueEntry, len(v.queue))
	for i, e := range v.queue {
		queue[i] = queueEntry{account: e.account, amount: new(big.Int).Set(e.amount)}
	}
	first, last := v.queueFirst, v.queueLast
	userQueue := copyAmounts(v.userTotalQueue)
	pending := copyAmounts(v.pendingWithdrawals)

	v.rentsMu.RLock()
	rents := make(map[common.Address]*Rental, len(v.rents))
	for a, r := range v.rents {
		c := *r
		c.Amount = new(big.Int).Set(r.Amount)
		rents[a] = &c
	}
	v.rentsMu.RUnlock()

	return func() {
		ledger()
		v.totalSupply = total
		v.rentedSupply = rented
		v.totalInQueue = queued
		v.balances = balances
		v.rewardRate = rate
		v.periodFinish = finish
		v.lastUpdateTime = updated
		v.rewardPerTokenStored = perToken
		v.userRewardPerTokenPaid = paid
		v.rewards = rewards
		v.queue = queue
		v.queueFirst, v.queueLast = first, last
		v.userTotalQueue = userQueue
		v.pendingWithdrawals = pending
		v.rentsMu.Lock()
		v.rents = rents
		v.rentsMu.Unlock()
	}
}

func copyAmounts(src map[common.Address]*big.Int) map[common.Address]*big.Int {
	dst := make(map[common.Address]*big.Int, len(src))
	for a, x := range src {
		dst[a] = new(big.Int).Set(x)
	}
	return dst
}

func amountOf(m map[common.Address]*big.Int, account common.Address) *big.Int {
	if x, ok := m[account]; ok {
		return x
	}
	x := new(big.Int)
	m[account] = x
	return x
}

// maintain is the amortized background step run at the top of every public
// mutating operation: release at most one queued withdrawal, then attempt to
// resolve the rental on the supplied pair context, if any.
func (v *Vault) maintain(pairCtx common.Address) {
	if v.dequeuePossible() {
		v.dequeue()
	}
	if pairCtx != (common.Address{}) {
		v.resolve(pairCtx)
	}
}

// CanRent reports whether amount of free, un-queued collateral is available.
func (v *Vault) CanRent(amount *big.Int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canRent(amount)
}

func (v *Vault) canRent(amount *big.Int) bool {
	free := new(big.Int).Sub(v.totalSupply, v.rentedSupply)
	free.Sub(free, v.totalInQueue)
	return free.Cmp(amount) >= 0
}

// HasRental reports whether the pair currently carries an active rental.
// Lock-free with respect to the vault guard so the pair may ask mid-call.
func (v *Vault) HasRental(pair common.Address) bool {
	v.rentsMu.RLock()
	defer v.rentsMu.RUnlock()
	_, ok := v.rents[pair]
	return ok
}

// RentalOf returns a copy of the pair's active rental, if any.
func (v *Vault) RentalOf(pair common.Address) (Rental, bool) {
	v.rentsMu.RLock()
	defer v.rentsMu.RUnlock()
	r, ok := v.rents[pair]
	if !ok {
		return Rental{}, false
	}
	c := *r
	c.Amount = new(big.Int).Set(r.Amount)
	return c, true
}

// TotalSupply returns the pooled principal.
func (v *Vault) TotalSupply() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.totalSupply)
}

// RentedSupply returns the principal currently on loan.
func (v *Vault) RentedSupply() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.rentedSupply)
}

// TotalInQueue returns the principal awaiting FIFO release.
func (v *Vault) TotalInQueue() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.totalInQueue)
}

// BalanceOf returns the staker's live principal.
func (v *Vault) BalanceOf(account common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if b, ok := v.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Claimable returns the staker's dequeued, withdrawable principal.
func (v *Vault) Claimable(account common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if b, ok := v.pendingWithdrawals[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Params returns a copy of the current tunables.
func (v *Vault) Params() Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.params
	p.MinDeposit = new(big.Int).Set(v.params.MinDeposit)
	durations := make(map[time.Duration]bool, len(v.params.Durations))
	for d, ok := range v.params.Durations {
		durations[d] = ok
	}
	p.Durations = durations
	return p
}
