package merit

import (
	"math/big"
	"time"
)

// PeriodSnapshot summarises the period clock for read-only callers.
type PeriodSnapshot struct {
	Period        uint64
	Start         time.Time
	End           time.Time
	Mythum        bool
	MultiplierBps uint32
}

// CurrentPeriod returns the period index at the engine clock.
func (e *Engine) CurrentPeriod() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.periods.PeriodAt(e.now())
}

// PeriodInfo returns the derived state of the current period.
func (e *Engine) PeriodInfo() PeriodSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	period := e.periods.PeriodAt(now)
	start := e.periods.PeriodStart(now)
	mythum := e.periods.IsMythum(now, e.params.MythumWindowSeconds)
	mult := uint32(MultiplierBpsDenominator)
	if mythum {
		mult = e.params.MythumMultiplierBps
	}
	return PeriodSnapshot{
		Period:        period,
		Start:         start,
		End:           start.Add(time.Duration(e.periods.PeriodSeconds) * time.Second),
		Mythum:        mythum,
		MultiplierBps: mult,
	}
}

// IsMythum reports whether the engine clock is inside the Mythum window.
func (e *Engine) IsMythum() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.periods.IsMythum(e.now(), e.params.MythumWindowSeconds)
}

// CurrentMultiplier returns the point multiplier in basis points: the Mythum
// multiplier inside the window, 100% outside it.
func (e *Engine) CurrentMultiplier() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.periods.IsMythum(e.now(), e.params.MythumWindowSeconds) {
		return e.params.MythumMultiplierBps
	}
	return MultiplierBpsDenominator
}

// PeriodBounds returns the start and end of the given period. Periods that
// predate the last rebase report ok=false rather than an error.
func (e *Engine) PeriodBounds(period uint64) (start, end time.Time, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.periods.Bounds(period)
}

// PendingReward previews the claimable payout for (totem, period) without
// mutating any state. It reports zero while the period is still open or the
// claim has already settled.
func (e *Engine) PendingReward(totem [20]byte, period uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	claimed, err := e.st.Claimed(period, totem)
	if err != nil {
		return nil, err
	}
	if claimed {
		return big.NewInt(0), nil
	}
	points, err := e.st.MeritPoints(period, totem)
	if err != nil {
		return nil, err
	}
	total, err := e.st.PeriodTotal(period)
	if err != nil {
		return nil, err
	}
	released, _, err := e.st.ReleasedEmission(period)
	if err != nil {
		return nil, err
	}
	if points.Sign() <= 0 || total.Sign() <= 0 || released.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	payout := new(big.Int).Mul(released, points)
	return payout.Quo(payout, total), nil
}

// Points returns the merit recorded for (period, totem).
func (e *Engine) Points(totem [20]byte, period uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.MeritPoints(period, totem)
}

// PeriodPoints returns the total points recorded across all totems for the
// period.
func (e *Engine) PeriodPoints(period uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.PeriodTotal(period)
}

// Account returns a copy of the totem's account, or nil when unknown.
func (e *Engine) Account(totem [20]byte) (*TotemAccount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return nil, err
	}
	return acct.Clone(), nil
}

// Totems returns a page of the ordered registration list.
func (e *Engine) Totems(offset, limit int) ([][20]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	list, err := e.st.TotemList()
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return [][20]byte{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([][20]byte, end-offset)
	copy(out, list[offset:end])
	return out, nil
}

// Params returns a copy of the live parameters.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Clone()
}

// HasRole reports whether the address holds the capability.
func (e *Engine) HasRole(role string, addr [20]byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.HasRole(role, addr)
}
