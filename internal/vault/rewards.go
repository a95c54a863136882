package vault

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// lastTimeRewardApplicable clamps the accrual clock to the end of the
// current reward window.
func (v *Vault) lastTimeRewardApplicable() int64 {
	now := v.now().Unix()
	if now < v.periodFinish {
		return now
	}
	return v.periodFinish
}

// rewardPerToken extends the stored per-token accumulator by the reward
// streamed since the last update, pro-rata over the pooled principal.
func (v *Vault) rewardPerToken() *big.Int {
	if v.totalSupply.Sign() == 0 {
		return new(big.Int).Set(v.rewardPerTokenStored)
	}
	elapsed := v.lastTimeRewardApplicable() - v.lastUpdateTime
	if elapsed <= 0 {
		return new(big.Int).Set(v.rewardPerTokenStored)
	}
	delta := new(big.Int).SetInt64(elapsed)
	delta.Mul(delta, v.rewardRate)
	delta.Mul(delta, Scale)
	delta.Div(delta, v.totalSupply)
	return delta.Add(delta, v.rewardPerTokenStored)
}

func (v *Vault) earned(account common.Address) *big.Int {
	paid := new(big.Int)
	if x, ok := v.userRewardPerTokenPaid[account]; ok {
		paid.Set(x)
	}
	owed := v.rewardPerToken()
	owed.Sub(owed, paid)
	if b, ok := v.balances[account]; ok {
		owed.Mul(owed, b)
	} else {
		owed.SetInt64(0)
	}
	owed.Div(owed, Scale)
	if r, ok := v.rewards[account]; ok {
		owed.Add(owed, r)
	}
	return owed
}

// updateReward snapshots the stream and folds the account's accrual into its
// stored rewards. Must run before any balance change on that account.
func (v *Vault) updateReward(account common.Address) {
	v.rewardPerTokenStored = v.rewardPerToken()
	v.lastUpdateTime = v.lastTimeRewardApplicable()
	if account != (common.Address{}) {
		v.rewards[account] = v.earned(account)
		v.userRewardPerTokenPaid[account] = new(big.Int).Set(v.rewardPerTokenStored)
	}
}

// notifyRewardAmount folds reward into the stream: a fresh rate if the
// previous window ended, otherwise the remainder of the old window is rolled
// into a new rate. Either way the window is extended to full length.
func (v *Vault) notifyRewardAmount(reward *big.Int) {
	v.updateReward(common.Address{})

	now := v.now().Unix()
	window := int64(v.params.RewardWindow / time.Second)

	if now >= v.periodFinish {
		v.rewardRate = new(big.Int).Div(reward, big.NewInt(window))
	} else {
		leftover := new(big.Int).SetInt64(v.periodFinish - now)
		leftover.Mul(leftover, v.rewardRate)
		leftover.Add(leftover, reward)
		v.rewardRate = leftover.Div(leftover, big.NewInt(window))
	}
	v.lastUpdateTime = now
	v.periodFinish = now + window

	v.log.Debug("reward stream updated", "reward", reward, "rate", v.rewardRate, "periodFinish", v.periodFinish)
}

// Earned returns the account's accrued, unclaimed streamed yield.
func (v *Vault) Earned(account common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.earned(account)
}

// GetReward pays out the account's accrued streamed yield.
func (v *Vault) GetReward(account common.Address) (*big.Int, error) {
	if err := v.lock(); err != nil {
		return nil, err
	}
	defer v.mu.Unlock()
	v.maintain(common.Address{})

	restore := v.snapshot()
	v.updateReward(account)
	reward := amountOf(v.rewards, account)
	paid := new(big.Int).Set(reward)
	if paid.Sign() > 0 {
		reward.SetInt64(0)
		if err := v.collateral.Transfer(v.addr, account, paid); err != nil {
			restore()
			return nil, err
		}
	}
	v.log.Debug("reward paid", "account", account, "amount", paid)
	return paid, nil
}
