// Package registry is the pool-creation registry and token classifier: it
// deploys pairs at deterministic addresses, answers the pair's policy
// questions (fee recipient, rental state, managed tokens) and the vault's
// lookup questions, and brokers rental issuance.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/pair"
	"github.com/memeswapfi/memeswap-contracts/internal/token"
	"github.com/memeswapfi/memeswap-contracts/internal/vault"
	"github.com/memeswapfi/memeswap-contracts/pkg/swapmath"
)

type pairKey [2]common.Address

// Registry tracks deployed pairs and token classifications. Its own address
// doubles as the rental issuer identity the vault trusts.
type Registry struct {
	mu sync.RWMutex

	log   *slog.Logger
	addr  common.Address
	owner common.Address
	feeTo common.Address

	// digest of the pair deployment template, bound into address
	// derivation
	initCodeDigest common.Hash

	pairsByTokens map[pairKey]*pair.Pair
	pairsByAddr   map[common.Address]*pair.Pair
	ledgers       map[common.Address]*token.Token
	managed       map[common.Address]bool
	approved      map[common.Address]bool
	matured       map[common.Address]int64

	vault *vault.Vault
	now   func() time.Time
}

// New constructs an empty registry.
func New(addr, owner, feeTo common.Address, initCodeDigest common.Hash, log *slog.Logger, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:            log,
		addr:           addr,
		owner:          owner,
		feeTo:          feeTo,
		initCodeDigest: initCodeDigest,
		pairsByTokens:  make(map[pairKey]*pair.Pair),
		pairsByAddr:    make(map[common.Address]*pair.Pair),
		ledgers:        make(map[common.Address]*token.Token),
		managed:        make(map[common.Address]bool),
		approved:       make(map[common.Address]bool),
		matured:        make(map[common.Address]int64),
		now:            now,
	}
}

func (r *Registry) Address() common.Address { return r.addr }

// SetVault wires the rental market in and attaches its resolution hook to
// every existing pair. Called once during deployment.
func (r *Registry) SetVault(v *vault.Vault) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vault = v
	for _, p := range r.pairsByAddr {
		p.SetRentalHook(v)
	}
}

// RegisterToken makes a token ledger known to the registry.
func (r *Registry) RegisterToken(tok *token.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[tok.Address()] = tok
}

// TokenLedger returns the ledger registered for a token address.
func (r *Registry) TokenLedger(addr common.Address) (*token.Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.ledgers[addr]
	return tok, ok
}

// CreatePair deploys the pair for tokenA/tokenB at its deterministic
// address. Both tokens must have registered ledgers and the pair must not
// already exist.
func (r *Registry) CreatePair(tokenA, tokenB common.Address) (*pair.Pair, error) {
	token0, token1, err := swapmath.SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{token0, token1}
	if _, ok := r.pairsByTokens[key]; ok {
		return nil, ErrPairExists
	}
	ledger0, ok := r.ledgers[token0]
	if !ok {
		return nil, ErrUnknownToken
	}
	ledger1, ok := r.ledgers[token1]
	if !ok {
		return nil, ErrUnknownToken
	}

	addr, err := swapmath.PairAddress(r.addr, token0, token1, r.initCodeDigest)
	if err != nil {
		return nil, err
	}

	p := pair.New(addr, token0, token1, ledger0, ledger1, r, r.log, r.now)
	if r.vault != nil {
		p.SetRentalHook(r.vault)
	}
	r.pairsByTokens[key] = p
	r.pairsByAddr[addr] = p

	r.log.Info("pair created", "pair", addr, "token0", token0, "token1", token1)
	return p, nil
}

// GetPair returns the pair trading tokenA/tokenB.
func (r *Registry) GetPair(tokenA, tokenB common.Address) (*pair.Pair, bool) {
	token0, token1, err := swapmath.SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pairsByTokens[pairKey{token0, token1}]
	return p, ok
}

// PairByAddress returns the pair deployed at addr.
func (r *Registry) PairByAddress(addr common.Address) (*pair.Pair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pairsByAddr[addr]
	return p, ok
}

// IsRegisteredPair reports whether addr is a pair this registry deployed.
func (r *Registry) IsRegisteredPair(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pairsByAddr[addr]
	return ok
}

// Pairs returns every deployed pair.
func (r *Registry) Pairs() []*pair.Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*pair.Pair, 0, len(r.pairsByAddr))
	for _, p := range r.pairsByAddr {
		out = append(out, p)
	}
	return out
}
