package merit

import (
	"fmt"
	"math/big"
)

// MultiplierBpsDenominator defines the fixed denominator used for the Mythum
// multiplier.
const MultiplierBpsDenominator = 10_000

// Params controls the merit ledger behaviour. All monetary values are
// expressed in the smallest denomination of the respective currency.
type Params struct {
	// PeriodSeconds is the initial period duration. Runtime changes go
	// through SetPeriodDuration which rebases the period clock.
	PeriodSeconds uint64
	// PeriodsPerYear maps period indexes onto emission-year tranches.
	PeriodsPerYear uint64
	// MythumWindowSeconds is the length of the boosted sub-window at the
	// end of each period.
	MythumWindowSeconds uint64
	// MythumMultiplierBps is the point multiplier applied during the
	// Mythum window. 15_000 means 150%.
	MythumMultiplierBps uint32
	// BoostFee is the native-currency fee for boostTotem.
	BoostFee *big.Int
	// BoostPoints is the fixed merit credit granted per paid boost.
	BoostPoints *big.Int
}

// DefaultParams returns the production defaults: 30-day periods, twelve
// periods per emission year, a 3-day Mythum window at 150%.
func DefaultParams() Params {
	return Params{
		PeriodSeconds:       30 * 24 * 60 * 60,
		PeriodsPerYear:      12,
		MythumWindowSeconds: 3 * 24 * 60 * 60,
		MythumMultiplierBps: 15_000,
		BoostFee:            big.NewInt(1_000_000_000_000_000), // 0.001 native
		BoostPoints:         big.NewInt(10),
	}
}

// Clone produces a deep copy of the parameters.
func (p Params) Clone() Params {
	clone := p
	clone.BoostFee = copyBigInt(p.BoostFee)
	clone.BoostPoints = copyBigInt(p.BoostPoints)
	return clone
}

// Normalize ensures all pointer fields are non-nil. The method returns the
// receiver to allow chaining.
func (p *Params) Normalize() *Params {
	if p == nil {
		return nil
	}
	if p.BoostFee == nil {
		p.BoostFee = big.NewInt(0)
	}
	if p.BoostPoints == nil {
		p.BoostPoints = big.NewInt(0)
	}
	return p
}

// Validate performs static validation of the parameters.
func (p Params) Validate() error {
	if p.PeriodSeconds == 0 {
		return fmt.Errorf("merit: periodSeconds must be positive")
	}
	if p.PeriodsPerYear == 0 {
		return fmt.Errorf("merit: periodsPerYear must be positive")
	}
	if p.MythumWindowSeconds >= p.PeriodSeconds {
		return fmt.Errorf("merit: mythum window must be shorter than the period")
	}
	if p.MythumMultiplierBps < MultiplierBpsDenominator {
		return fmt.Errorf("merit: mythum multiplier must be at least %d bps", MultiplierBpsDenominator)
	}
	if p.BoostFee != nil && p.BoostFee.Sign() < 0 {
		return fmt.Errorf("merit: boost fee cannot be negative")
	}
	if p.BoostPoints == nil || p.BoostPoints.Sign() <= 0 {
		return fmt.Errorf("merit: boost points must be positive")
	}
	return nil
}
