package merit

import (
	"fmt"
	"math/big"
)

// SetBoostFee replaces the native-currency fee charged per paid boost.
func (e *Engine) SetBoostFee(caller [20]byte, fee *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return err
	}
	if fee == nil || fee.Sign() < 0 {
		return ErrZeroAmount
	}
	e.params.BoostFee = copyBigInt(fee)
	if err := e.st.SetMeritParams(e.params); err != nil {
		return err
	}
	e.st.AppendEvent(newParamUpdatedEvent(caller, "boostFee", fee.String()))
	return nil
}

// SetBoostPoints replaces the merit credit granted per paid boost.
func (e *Engine) SetBoostPoints(caller [20]byte, points *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return err
	}
	if points == nil || points.Sign() <= 0 {
		return ErrZeroAmount
	}
	e.params.BoostPoints = copyBigInt(points)
	if err := e.st.SetMeritParams(e.params); err != nil {
		return err
	}
	e.st.AppendEvent(newParamUpdatedEvent(caller, "boostPoints", points.String()))
	return nil
}

// SetMythumMultiplier replaces the point multiplier applied during the
// Mythum window, expressed in basis points.
func (e *Engine) SetMythumMultiplier(caller [20]byte, bps uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return err
	}
	if bps < MultiplierBpsDenominator {
		return fmt.Errorf("merit: multiplier must be at least %d bps", MultiplierBpsDenominator)
	}
	e.params.MythumMultiplierBps = bps
	if err := e.st.SetMeritParams(e.params); err != nil {
		return err
	}
	e.st.AppendEvent(newParamUpdatedEvent(caller, "mythumMultiplierBps", fmt.Sprintf("%d", bps)))
	return nil
}

// SetPeriodDuration changes the period length. The period clock is rebased
// immediately: the current period index is snapshotted and the start time
// resets to now, so boundaries of earlier periods become unreconstructible.
func (e *Engine) SetPeriodDuration(caller [20]byte, seconds uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return err
	}
	if seconds <= e.params.MythumWindowSeconds {
		return fmt.Errorf("merit: period must be longer than the mythum window")
	}
	now := e.now()
	if err := e.settleLocked(now); err != nil {
		return err
	}
	if err := e.periods.Rebase(now, seconds); err != nil {
		return err
	}
	if err := e.st.SetPeriodConfig(e.periods); err != nil {
		return err
	}
	e.params.PeriodSeconds = seconds
	if err := e.st.SetMeritParams(e.params); err != nil {
		return err
	}
	e.st.AppendEvent(newParamUpdatedEvent(caller, "periodSeconds", fmt.Sprintf("%d", seconds)))
	return nil
}

// SetBlacklist flips the revocable access-control tag on a totem. Blacklisted
// totems cannot earn or claim until the tag is lifted.
func (e *Engine) SetBlacklist(caller, totem [20]byte, blacklisted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return err
	}
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return err
	}
	if acct == nil || !acct.Registered {
		return ErrNotRegistered
	}
	acct.Blacklisted = blacklisted
	if err := e.st.PutTotemAccount(totem, acct); err != nil {
		return err
	}
	e.st.AppendEvent(newBlacklistUpdatedEvent(totem, caller, blacklisted))
	return nil
}

// AdjustKarma moves a totem's karma counter by delta, clamping at zero.
func (e *Engine) AdjustKarma(caller, totem [20]byte, delta int64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return 0, err
	}
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return 0, err
	}
	if acct == nil || !acct.Registered {
		return 0, ErrNotRegistered
	}
	if delta >= 0 {
		acct.Karma += uint64(delta)
	} else {
		dec := uint64(-delta)
		if dec > acct.Karma {
			acct.Karma = 0
		} else {
			acct.Karma -= dec
		}
	}
	if err := e.st.PutTotemAccount(totem, acct); err != nil {
		return 0, err
	}
	e.st.AppendEvent(newKarmaAdjustedEvent(totem, caller, delta, acct.Karma))
	return acct.Karma, nil
}

// GrantRole attaches a capability to an address.
func (e *Engine) GrantRole(caller [20]byte, role string, subject [20]byte) error {
	return e.setRole(caller, role, subject, true)
}

// RevokeRole removes a capability from an address.
func (e *Engine) RevokeRole(caller [20]byte, role string, subject [20]byte) error {
	return e.setRole(caller, role, subject, false)
}

func (e *Engine) setRole(caller [20]byte, role string, subject [20]byte, granted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRole(caller, RoleAdmin); err != nil {
		return err
	}
	switch role {
	case RoleAdmin, RoleRegistrar, RoleCrediter:
	default:
		return fmt.Errorf("merit: unknown role %q", role)
	}
	if err := e.st.SetRole(role, subject, granted); err != nil {
		return err
	}
	e.st.AppendEvent(newRoleUpdatedEvent(caller, subject, role, granted))
	return nil
}
