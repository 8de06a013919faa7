package merit

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// NumTranches is the number of emission years covered by the vesting plan.
const NumTranches = 4

// vestingYearSeconds is the denominator of the per-period release formula.
// The emission schedule treats a year as 360 days.
const vestingYearSeconds = 360 * 24 * 60 * 60

// Tranches holds the fixed annual emission allocations. Tranche i is the
// source pulled from once periods roll over into emission-year i.
type Tranches [NumTranches]*big.Int

type fileTranches struct {
	Tranche []fileTranche `toml:"tranche"`
}

type fileTranche struct {
	Year       int    `toml:"year"`
	Allocation string `toml:"allocation"`
}

// LoadTranches reads the vesting schedule from a TOML file. Each emission
// year must appear exactly once.
func LoadTranches(path string) (Tranches, error) {
	var out Tranches
	if strings.TrimSpace(path) == "" {
		return out, errors.New("merit: vesting schedule path required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("merit: read vesting schedule: %w", err)
	}
	var parsed fileTranches
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&parsed)
	if err != nil {
		return out, fmt.Errorf("merit: decode vesting schedule: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return out, fmt.Errorf("merit: unknown vesting schedule fields %v", undecoded)
	}
	if len(parsed.Tranche) != NumTranches {
		return out, fmt.Errorf("merit: vesting schedule requires %d tranches, got %d", NumTranches, len(parsed.Tranche))
	}
	for i, entry := range parsed.Tranche {
		if entry.Year < 0 || entry.Year >= NumTranches {
			return out, fmt.Errorf("merit: tranche %d year %d out of range", i, entry.Year)
		}
		if out[entry.Year] != nil {
			return out, fmt.Errorf("merit: duplicate tranche for year %d", entry.Year)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(entry.Allocation), 10)
		if !ok {
			return out, fmt.Errorf("merit: tranche %d allocation invalid", i)
		}
		if amount.Sign() < 0 {
			return out, fmt.Errorf("merit: tranche %d allocation cannot be negative", i)
		}
		out[entry.Year] = amount
	}
	return out, nil
}

// Normalize ensures all allocations are non-nil.
func (t *Tranches) Normalize() *Tranches {
	if t == nil {
		return nil
	}
	for i := range t {
		if t[i] == nil {
			t[i] = big.NewInt(0)
		}
	}
	return t
}

// Allocation returns the total allocation for the emission year.
func (t Tranches) Allocation(year int) *big.Int {
	if year < 0 || year >= NumTranches {
		return big.NewInt(0)
	}
	return copyBigInt(t[year])
}

// YearForPeriod maps a period index to its emission year, clamped to the
// final tranche.
func YearForPeriod(period, periodsPerYear uint64) int {
	if periodsPerYear == 0 {
		return NumTranches - 1
	}
	year := period / periodsPerYear
	if year >= NumTranches {
		return NumTranches - 1
	}
	return int(year)
}

// ReleaseForPeriod computes the emission released for a single period of the
// given duration out of the year's allocation. Division floors; the rounding
// loss is an accepted bounded leak.
func ReleaseForPeriod(allocation *big.Int, periodSeconds uint64) *big.Int {
	if allocation == nil || allocation.Sign() <= 0 || periodSeconds == 0 {
		return big.NewInt(0)
	}
	release := new(big.Int).Mul(allocation, new(big.Int).SetUint64(periodSeconds))
	return release.Quo(release, big.NewInt(vestingYearSeconds))
}
