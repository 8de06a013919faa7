package boost

import "time"

// StreakTransition names the outcome of a streak-continuation step.
type StreakTransition int

const (
	// StreakStarted means no streak was active and a new one began.
	StreakStarted StreakTransition = iota
	// StreakContinued means the last boost was recent enough.
	StreakContinued
	// StreakGraceConsumed means the streak lapsed but a banked grace day
	// preserved it.
	StreakGraceConsumed
	// StreakReset means the streak lapsed with no grace available and all
	// streak bookkeeping was zeroed.
	StreakReset
)

func (t StreakTransition) String() string {
	switch t {
	case StreakStarted:
		return "started"
	case StreakContinued:
		return "continued"
	case StreakGraceConsumed:
		return "grace_consumed"
	case StreakReset:
		return "reset"
	default:
		return "unknown"
	}
}

// StreakIntervals returns the streak length in boost intervals at the given
// instant. A just-started streak has length one.
func (s *BoostState) StreakIntervals(now time.Time, intervalSeconds uint64) uint64 {
	if s == nil || s.StreakStart == 0 || intervalSeconds == 0 {
		return 0
	}
	ts := uint64(now.Unix())
	if ts < s.StreakStart {
		return 1
	}
	return (ts-s.StreakStart)/intervalSeconds + 1
}

// continueStreak drives the wall-clock state machine for a boost at now and
// returns the transition taken. The caller persists the mutated state.
//
// Grace days accrue whenever the completed streak length crosses another
// multiple of GraceAccrualIntervals; GraceFromStreak tracks the portion of
// GraceDaysEarned that came from streak accrual so premium-boost grants are
// never double counted.
func (s *BoostState) continueStreak(now time.Time, intervalSeconds uint64) StreakTransition {
	ts := uint64(now.Unix())
	if s.StreakStart == 0 {
		s.StreakStart = ts
		return StreakStarted
	}
	last := s.LastBoost()
	if last != 0 && ts >= last && ts-last <= 2*intervalSeconds {
		fromStreak := s.StreakIntervals(now, intervalSeconds) / GraceAccrualIntervals
		if fromStreak > s.GraceFromStreak {
			earned := fromStreak - s.GraceFromStreak
			s.GraceDaysEarned += earned
			s.GraceFromStreak = fromStreak
		}
		return StreakContinued
	}
	if s.GraceDaysEarned > s.GraceDaysWasted {
		s.GraceDaysWasted++
		return StreakGraceConsumed
	}
	s.StreakStart = ts
	s.GraceDaysEarned = 0
	s.GraceDaysWasted = 0
	s.GraceFromStreak = 0
	s.ReleasedBadgeCount = 0
	return StreakReset
}
