package merit

import (
	"testing"
	"time"
)

const day = 24 * 60 * 60

func TestPeriodAt(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, err := NewPeriodConfig(base, 30*day)
	if err != nil {
		t.Fatalf("new period config: %v", err)
	}
	cases := []struct {
		offset time.Duration
		want   uint64
	}{
		{0, 0},
		{29 * 24 * time.Hour, 0},
		{30 * 24 * time.Hour, 1},
		{59 * 24 * time.Hour, 1},
		{90 * 24 * time.Hour, 3},
	}
	for _, tc := range cases {
		if got := cfg.PeriodAt(base.Add(tc.offset)); got != tc.want {
			t.Errorf("PeriodAt(+%v) = %d, want %d", tc.offset, got, tc.want)
		}
	}
}

func TestPeriodAtBeforeStart(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, _ := NewPeriodConfig(base, 30*day)
	cfg.AccumulatedPeriods = 7
	if got := cfg.PeriodAt(base.Add(-time.Hour)); got != 7 {
		t.Fatalf("PeriodAt before start = %d, want 7", got)
	}
}

func TestBoundsBeforeRebaseUnknown(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, _ := NewPeriodConfig(base, 30*day)
	if err := cfg.Rebase(base.Add(45*24*time.Hour), 16*day); err != nil {
		t.Fatalf("rebase: %v", err)
	}
	if cfg.AccumulatedPeriods != 1 {
		t.Fatalf("accumulated = %d, want 1", cfg.AccumulatedPeriods)
	}
	if _, _, ok := cfg.Bounds(0); ok {
		t.Fatal("bounds of pre-rebase period should be unknown")
	}
	start, end, ok := cfg.Bounds(2)
	if !ok {
		t.Fatal("bounds of post-rebase period should be known")
	}
	wantStart := base.Add(45 * 24 * time.Hour).Add(16 * 24 * time.Hour)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.Add(16 * 24 * time.Hour)) {
		t.Errorf("end = %v, want %v", end, wantStart.Add(16*24*time.Hour))
	}
}

func TestIsMythum(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, _ := NewPeriodConfig(base, 30*day)
	window := uint64(3 * day)

	if cfg.IsMythum(base.Add(26*24*time.Hour), window) {
		t.Error("26 days in should be outside the window")
	}
	if !cfg.IsMythum(base.Add(27*24*time.Hour), window) {
		t.Error("27 days in should open the window")
	}
	if !cfg.IsMythum(base.Add(29*24*time.Hour+23*time.Hour), window) {
		t.Error("end of period should be inside the window")
	}
	// Next period, window closed again.
	if cfg.IsMythum(base.Add(31*24*time.Hour), window) {
		t.Error("start of the next period should be outside the window")
	}
}

func TestIsMythumAfterRebase(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, _ := NewPeriodConfig(base, 30*day)
	rebaseAt := base.Add(10 * 24 * time.Hour)
	if err := cfg.Rebase(rebaseAt, 16*day); err != nil {
		t.Fatalf("rebase: %v", err)
	}
	window := uint64(3 * day)
	if cfg.IsMythum(rebaseAt.Add(12*24*time.Hour), window) {
		t.Error("12 days into a 16-day period should be outside the window")
	}
	if !cfg.IsMythum(rebaseAt.Add(13*24*time.Hour), window) {
		t.Error("13 days into a 16-day period should be inside the window")
	}
}

func TestIsMythumWindowCoversPeriod(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, _ := NewPeriodConfig(base, 2*day)
	if !cfg.IsMythum(base.Add(time.Hour), 2*day) {
		t.Error("window equal to the period should always be open")
	}
}

func TestRebaseRejectsZeroDuration(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	cfg, _ := NewPeriodConfig(base, 30*day)
	if err := cfg.Rebase(base, 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := NewPeriodConfig(base, 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
}
