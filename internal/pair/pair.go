// Package pair implements the constant-product exchange engine: one Pair per
// unordered token pair, owning reserve state, the liquidity-share ledger,
// the cumulative price oracle and protocol-fee minting.
package pair

import (
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/token"
)

// MinimumLiquidity is the share amount permanently minted to the protocol
// fee recipient on the first deposit, preventing share-price manipulation at
// bootstrap.
var MinimumLiquidity = big.NewInt(1000)

// Ledger is the slice of the fungible-token contract the pair needs from
// each of its two tokens.
type Ledger interface {
	BalanceOf(account common.Address) *big.Int
	Transfer(from, to common.Address, value *big.Int) error
	// Snapshot returns a function restoring the ledger to its state at the
	// time of the call. Used for whole-operation abort.
	Snapshot() func()
}

// Oversight answers the policy questions the pair delegates to the registry
// and vault: who collects protocol fees, whether the pair is under an active
// rental, which tokens are managed, and who may receive minted shares during
// a rental.
type Oversight interface {
	FeeTo() common.Address
	UnderRental(pair common.Address) bool
	IsManaged(tok common.Address) bool
	RentalIssuer() common.Address
}

// RentalHook receives the post-call resolution trigger. Implementations must
// be best-effort and non-blocking with respect to the pair.
type RentalHook interface {
	TryResolve(pair common.Address)
}

// Pair is one constant-product pool. All state-mutating methods are guarded
// against re-entry and abort atomically.
type Pair struct {
	mu sync.Mutex

	log  *slog.Logger
	addr common.Address

	token0, token1   common.Address
	ledger0, ledger1 Ledger

	shares *token.Token

	reserve0, reserve1 *big.Int
	blockTimestampLast uint32

	price0Cumulative *big.Int
	price1Cumulative *big.Int
	kLast            *big.Int

	oversight Oversight
	hook      RentalHook

	now func() time.Time
}

// New constructs a pair at addr trading token0/token1 (already sorted by the
// registry). Reserves start at zero.
func New(addr, token0, token1 common.Address, ledger0, ledger1 Ledger, ov Oversight, log *slog.Logger, now func() time.Time) *Pair {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pair{
		log:              log,
		addr:             addr,
		token0:           token0,
		token1:           token1,
		ledger0:          ledger0,
		ledger1:          ledger1,
		shares:           token.New("Memeswap LP", "MEME-LP", 18, addr, now),
		reserve0:         new(big.Int),
		reserve1:         new(big.Int),
		price0Cumulative: new(big.Int),
		price1Cumulative: new(big.Int),
		kLast:            new(big.Int),
		oversight:        ov,
		now:              now,
	}
}

// SetRentalHook wires the vault's resolution trigger. Called once during
// deployment, before the pair serves traffic.
func (p *Pair) SetRentalHook(h RentalHook) { p.hook = h }

func (p *Pair) Address() common.Address { return p.addr }
func (p *Pair) Token0() common.Address  { return p.token0 }
func (p *Pair) Token1() common.Address  { return p.token1 }

// Shares exposes the pair's liquidity-share ledger (transfer/approve/permit
// on LP shares).
func (p *Pair) Shares() *token.Token { return p.shares }

// Reserves returns copies of the last-synchronized reserves and the
// timestamp of that synchronization.
func (p *Pair) Reserves() (reserve0, reserve1 *big.Int, blockTimestampLast uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.reserve0), new(big.Int).Set(p.reserve1), p.blockTimestampLast
}

// PriceCumulatives returns copies of the two time-weighted price
// accumulators.
func (p *Pair) PriceCumulatives() (price0, price1 *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.price0Cumulative), new(big.Int).Set(p.price1Cumulative)
}

// lock acquires the non-reentrant guard. A mutating call arriving while
// another is in flight on the same pair is a re-entry fault, not a queueing
// situation: output transfers happen before invariants are checked.
func (p *Pair) lock() error {
	if !p.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

// snapshotAll captures both token ledgers, the share ledger and the pair's
// own fields; the returned function rolls everything back.
func (p *Pair) snapshotAll() func() {
	r0 := p.ledger0.Snapshot()
	r1 := p.ledger1.Snapshot()
	rs := p.shares.Snapshot()

	reserve0 := new(big.Int).Set(p.reserve0)
	reserve1 := new(big.Int).Set(p.reserve1)
	ts := p.blockTimestampLast
	p0 := new(big.Int).Set(p.price0Cumulative)
	p1 := new(big.Int).Set(p.price1Cumulative)
	kLast := new(big.Int).Set(p.kLast)

	return func() {
		r0()
		r1()
		rs()
		p.reserve0 = reserve0
		p.reserve1 = reserve1
		p.blockTimestampLast = ts
		p.price0Cumulative = p0
		p.price1Cumulative = p1
		p.kLast = kLast
	}
}

// afterMutate fires the amortized rental-resolution trigger once the guard
// has been released.
func (p *Pair) afterMutate() {
	if p.hook != nil && p.oversight.UnderRental(p.addr) {
		p.hook.TryResolve(p.addr)
	}
}
