package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot captures the full ledger state and returns a function restoring
// it. Mutating entry points on the pair and vault snapshot every ledger they
// touch and restore on error, so a failed operation leaves no partial state.
func (t *Token) Snapshot() func() {
	t.mu.Lock()
	supply := new(big.Int).Set(t.totalSupply)
	balances := make(map[common.Address]*big.Int, len(t.balances))
	for a, b := range t.balances {
		balances[a] = new(big.Int).Set(b)
	}
	allowances := make(map[common.Address]map[common.Address]*big.Int, len(t.allowances))
	for o, m := range t.allowances {
		inner := make(map[common.Address]*big.Int, len(m))
		for s, v := range m {
			inner[s] = new(big.Int).Set(v)
		}
		allowances[o] = inner
	}
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		t.totalSupply = supply
		t.balances = balances
		t.allowances = allowances
		t.mu.Unlock()
	}
}
