package merit

import (
	"errors"
	"time"
)

// PeriodConfig derives the current period index from wall-clock time. The
// configuration is rebased whenever the period duration changes: the current
// period index is snapshotted into AccumulatedPeriods and StartTime resets to
// the rebase instant. Period boundaries before a rebase are therefore not
// reconstructible; Bounds reports ok=false for them.
type PeriodConfig struct {
	AccumulatedPeriods uint64
	StartTime          uint64
	PeriodSeconds      uint64
}

// NewPeriodConfig starts period accounting at the given instant.
func NewPeriodConfig(start time.Time, periodSeconds uint64) (*PeriodConfig, error) {
	if periodSeconds == 0 {
		return nil, errors.New("merit: period duration must be positive")
	}
	return &PeriodConfig{
		StartTime:     uint64(start.Unix()),
		PeriodSeconds: periodSeconds,
	}, nil
}

// PeriodAt returns the period index for the given instant.
func (c *PeriodConfig) PeriodAt(now time.Time) uint64 {
	ts := uint64(now.Unix())
	if ts <= c.StartTime {
		return c.AccumulatedPeriods
	}
	return c.AccumulatedPeriods + (ts-c.StartTime)/c.PeriodSeconds
}

// PeriodStart returns the start instant of the period containing now.
func (c *PeriodConfig) PeriodStart(now time.Time) time.Time {
	ts := uint64(now.Unix())
	if ts <= c.StartTime {
		return time.Unix(int64(c.StartTime), 0).UTC()
	}
	elapsed := (ts - c.StartTime) / c.PeriodSeconds * c.PeriodSeconds
	return time.Unix(int64(c.StartTime+elapsed), 0).UTC()
}

// Bounds returns the start and end instants of the given period. Periods that
// predate the last rebase are not reconstructible and report ok=false.
func (c *PeriodConfig) Bounds(period uint64) (start, end time.Time, ok bool) {
	if period < c.AccumulatedPeriods {
		return time.Time{}, time.Time{}, false
	}
	offset := (period - c.AccumulatedPeriods) * c.PeriodSeconds
	startTS := c.StartTime + offset
	return time.Unix(int64(startTS), 0).UTC(), time.Unix(int64(startTS+c.PeriodSeconds), 0).UTC(), true
}

// Rebase snapshots the current period index and restarts the clock with the
// new duration. Returns an error when the duration is zero.
func (c *PeriodConfig) Rebase(now time.Time, periodSeconds uint64) error {
	if periodSeconds == 0 {
		return errors.New("merit: period duration must be positive")
	}
	c.AccumulatedPeriods = c.PeriodAt(now)
	c.StartTime = uint64(now.Unix())
	c.PeriodSeconds = periodSeconds
	return nil
}

// IsMythum reports whether now falls inside the final sub-window of the
// current period during which point credit earns the boosted multiplier.
func (c *PeriodConfig) IsMythum(now time.Time, windowSeconds uint64) bool {
	if windowSeconds >= c.PeriodSeconds {
		return true
	}
	threshold := c.PeriodStart(now).Add(time.Duration(c.PeriodSeconds-windowSeconds) * time.Second)
	return !now.Before(threshold)
}

// Clone produces a copy of the configuration.
func (c *PeriodConfig) Clone() *PeriodConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
