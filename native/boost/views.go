package boost

// StreakSnapshot is the read-only view of a (user, totem) streak.
type StreakSnapshot struct {
	StreakIntervals    uint64
	MultiplierPercent  uint64
	GraceDaysEarned    uint64
	GraceDaysWasted    uint64
	GraceDaysAvailable uint64
	ReleasedBadgeCount uint64
	LastFreeBoost      uint64
	LastPremiumBoost   uint64
}

// Streak returns the current streak snapshot for the pair.
func (e *Engine) Streak(user, totem [20]byte) (StreakSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, err := e.st.BoostState(user, totem)
	if err != nil {
		return StreakSnapshot{}, err
	}
	if state == nil {
		state = &BoostState{}
	}
	streak := state.StreakIntervals(e.now(), e.params.BoostIntervalSeconds)
	return StreakSnapshot{
		StreakIntervals:    streak,
		MultiplierPercent:  StreakMultiplier(streak),
		GraceDaysEarned:    state.GraceDaysEarned,
		GraceDaysWasted:    state.GraceDaysWasted,
		GraceDaysAvailable: state.GraceDaysEarned - state.GraceDaysWasted,
		ReleasedBadgeCount: state.ReleasedBadgeCount,
		LastFreeBoost:      state.LastFreeBoost,
		LastPremiumBoost:   state.LastPremiumBoost,
	}, nil
}

// SignatureUsed reports whether a voucher hash has been consumed.
func (e *Engine) SignatureUsed(hash [32]byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.SignatureUsed(hash)
}

// BadgeCredits returns the unminted badge credits for (user, milestone).
func (e *Engine) BadgeCredits(user [20]byte, milestone uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.BadgeCredits(user, milestone)
}
