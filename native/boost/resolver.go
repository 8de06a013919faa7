package boost

import (
	"fmt"
	"math/big"
)

// rewardTier maps a cumulative percentile bound to a base reward. A uniform
// roll in [0,100) walks the table: 50% land on 500 points, the next 25% on
// 700, then 15% on 1000, 7% on 2000 and the last 3% on 3000.
type rewardTier struct {
	cumulative uint64
	points     int64
}

var rewardTiers = []rewardTier{
	{cumulative: 50, points: 500},
	{cumulative: 75, points: 700},
	{cumulative: 90, points: 1000},
	{cumulative: 97, points: 2000},
	{cumulative: 100, points: 3000},
}

// BaseRewardForRoll maps a uniform roll in [0,100) through the cumulative
// weight table.
func BaseRewardForRoll(roll uint64) *big.Int {
	for _, tier := range rewardTiers {
		if roll < tier.cumulative {
			return big.NewInt(tier.points)
		}
	}
	return big.NewInt(rewardTiers[len(rewardTiers)-1].points)
}

// Fulfill resolves a pending randomized reward. Only the configured
// coordinator may call it; the pending record keyed by requestID is deleted
// before the credit lands, which makes the operation idempotent per request
// id and not re-enterable for the same id.
//
// The streak multiplier applied is the stored user's multiplier at
// fulfillment time, not at request time: the streak may have moved between
// the two.
func (e *Engine) Fulfill(caller [20]byte, requestID uint64, randomWords []*big.Int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	coordinator := [20]byte{}
	if e.reg != nil {
		coordinator = e.reg.CoordinatorAddress()
	}
	if coordinator == ([20]byte{}) {
		return nil, ErrCoordinatorNotConfigured
	}
	if caller != coordinator {
		return nil, ErrOnlyCoordinator
	}
	pending, ok, err := e.st.PendingRandomReward(requestID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownRequest
	}
	if len(randomWords) == 0 || randomWords[0] == nil {
		return nil, ErrEmptyRandomWords
	}

	roll := new(big.Int).Mod(randomWords[0], big.NewInt(100)).Uint64()
	base := BaseRewardForRoll(roll)

	state, err := e.st.BoostState(pending.User, pending.Totem)
	if err != nil {
		return nil, err
	}
	streak := state.StreakIntervals(e.now(), e.params.BoostIntervalSeconds)
	multiplier := StreakMultiplier(streak)
	total := new(big.Int).Mul(base, new(big.Int).SetUint64(multiplier))
	total.Quo(total, big.NewInt(MultiplierDenominator))
	bonus := new(big.Int).Sub(total, base)

	if err := e.st.DeletePendingRandomReward(requestID); err != nil {
		return nil, err
	}
	if err := e.merit.Credit(pending.User, pending.Totem, total, "boost.random"); err != nil {
		return nil, fmt.Errorf("boost: credit randomized reward: %w", err)
	}
	e.st.AppendEvent(newRandomFulfilledEvent(pending.User, pending.Totem, requestID, base, bonus, total, multiplier))
	if e.telemetry != nil {
		e.telemetry.ObserveFulfillment()
		e.updatePendingGauge()
	}
	return total, nil
}

// PendingRequests lists the request ids still awaiting fulfillment. A request
// the oracle never answers stays here forever; there is no timeout or refund
// path.
func (e *Engine) PendingRequests() ([]uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.PendingRandomRequestIDs()
}

// PendingReward returns the stored (user, totem) pair for a request id.
func (e *Engine) PendingReward(requestID uint64) (*PendingReward, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.PendingRandomReward(requestID)
}
