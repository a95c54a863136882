package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Stake deposits principal into the pool. The staker must have approved the
// vault over the collateral token beforehand. pairCtx optionally names a
// pair whose rental is opportunistically resolved first.
func (v *Vault) Stake(account common.Address, amount *big.Int, pairCtx common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	v.maintain(pairCtx)

	if amount.Cmp(v.params.MinDeposit) < 0 {
		return ErrOutOfRange
	}

	restore := v.snapshot()
	v.updateReward(account)
	if err := v.collateral.TransferFrom(v.addr, account, v.addr, amount); err != nil {
		restore()
		return fmt.Errorf("pull deposit: %w", err)
	}
	v.totalSupply.Add(v.totalSupply, amount)
	amountOf(v.balances, account).Add(amountOf(v.balances, account), amount)

	v.log.Debug("staked", "account", account, "amount", amount, "totalSupply", v.totalSupply)
	return nil
}

// Enqueue appends a withdrawal request to the FIFO exit queue. The request
// is capped by the staker's live balance minus what it already has queued;
// the queue as a whole may commit more than the currently unrented capital,
// in which case the head blocks until dequeue-time capacity covers it.
func (v *Vault) Enqueue(account common.Address, amount *big.Int, pairCtx common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	v.maintain(pairCtx)

	if amount.Cmp(v.params.MinDeposit) < 0 {
		return ErrOutOfRange
	}
	free := new(big.Int)
	if b, ok := v.balances[account]; ok {
		free.Set(b)
	}
	if q, ok := v.userTotalQueue[account]; ok {
		free.Sub(free, q)
	}
	if amount.Cmp(free) > 0 {
		return ErrOutOfRange
	}

	v.queue[v.queueLast] = queueEntry{account: account, amount: new(big.Int).Set(amount)}
	v.queueLast++
	amountOf(v.userTotalQueue, account).Add(amountOf(v.userTotalQueue, account), amount)
	v.totalInQueue.Add(v.totalInQueue, amount)

	v.log.Debug("enqueued withdrawal", "account", account, "amount", amount, "position", v.queueLast-1)
	return nil
}

// dequeuePossible reports whether the queue head can be released: entries
// exist and unrented capital covers the head amount. High utilization can
// block the head indefinitely; that backpressure is intended.
func (v *Vault) dequeuePossible() bool {
	if v.queueFirst == v.queueLast {
		return false
	}
	available := new(big.Int).Sub(v.totalSupply, v.rentedSupply)
	return available.Cmp(v.queue[v.queueFirst].amount) >= 0
}

// dequeue releases exactly the queue-head entry into the claimable bucket.
func (v *Vault) dequeue() {
	head := v.queue[v.queueFirst]
	v.updateReward(head.account)

	amountOf(v.balances, head.account).Sub(amountOf(v.balances, head.account), head.amount)
	v.totalSupply.Sub(v.totalSupply, head.amount)
	v.totalInQueue.Sub(v.totalInQueue, head.amount)
	amountOf(v.userTotalQueue, head.account).Sub(amountOf(v.userTotalQueue, head.account), head.amount)
	amountOf(v.pendingWithdrawals, head.account).Add(amountOf(v.pendingWithdrawals, head.account), head.amount)

	delete(v.queue, v.queueFirst)
	v.queueFirst++

	v.log.Debug("dequeued withdrawal", "account", head.account, "amount", head.amount)
}

// DequeuePossible exposes the queue-head release predicate.
func (v *Vault) DequeuePossible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dequeuePossible()
}

// Withdraw pays out previously dequeued, claimable funds.
func (v *Vault) Withdraw(account common.Address, amount *big.Int) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.mu.Unlock()
	v.maintain(common.Address{})

	pending := amountOf(v.pendingWithdrawals, account)
	if pending.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	restore := v.snapshot()
	amountOf(v.pendingWithdrawals, account).Sub(amountOf(v.pendingWithdrawals, account), amount)
	if err := v.collateral.Transfer(v.addr, account, amount); err != nil {
		restore()
		return fmt.Errorf("pay withdrawal: %w", err)
	}

	v.log.Debug("withdrawn", "account", account, "amount", amount)
	return nil
}
