package boost

import (
	"fmt"
	"math/big"
)

const (
	// MultiplierDenominator is the percent denominator of the streak
	// multiplier formula.
	MultiplierDenominator = 100
	// MaxMultiplierStreak caps the streak length feeding the multiplier.
	MaxMultiplierStreak = 30
	// GraceAccrualIntervals is the streak length step that banks one grace
	// day: one day earned per 30 completed intervals.
	GraceAccrualIntervals = 30
)

// Params controls the boost streak engine.
type Params struct {
	// BoostIntervalSeconds is the minimum spacing between free boosts and
	// the unit in which streak length is measured.
	BoostIntervalSeconds uint64
	// BoostWindowSeconds is the premium-boost spacing that earns a grace
	// day.
	BoostWindowSeconds uint64
	// SignatureValiditySeconds bounds the skew between a voucher timestamp
	// and the engine clock, in either direction.
	SignatureValiditySeconds uint64
	// BasePoints is the merit credit for a free boost before the streak
	// multiplier applies.
	BasePoints *big.Int
	// PremiumPrice is the native-currency price of a premium boost.
	PremiumPrice *big.Int
	// Milestones is the ascending list of streak lengths that release
	// badge credits.
	Milestones []uint64
	// MilestoneURIs maps a milestone to the collectible metadata URI
	// passed to the badge minter.
	MilestoneURIs map[uint64]string
}

// DefaultParams returns the production defaults: daily boost interval, a
// 10-minute voucher validity window and the 7/14/30/100/200 milestone ladder.
func DefaultParams() Params {
	return Params{
		BoostIntervalSeconds:     24 * 60 * 60,
		BoostWindowSeconds:       24 * 60 * 60,
		SignatureValiditySeconds: 10 * 60,
		BasePoints:               big.NewInt(10),
		PremiumPrice:             big.NewInt(5_000_000_000_000_000), // 0.005 native
		Milestones:               []uint64{7, 14, 30, 100, 200},
		MilestoneURIs:            map[uint64]string{},
	}
}

// Clone produces a deep copy of the parameters.
func (p Params) Clone() Params {
	clone := p
	clone.BasePoints = copyBigInt(p.BasePoints)
	clone.PremiumPrice = copyBigInt(p.PremiumPrice)
	clone.Milestones = append([]uint64(nil), p.Milestones...)
	clone.MilestoneURIs = make(map[uint64]string, len(p.MilestoneURIs))
	for k, v := range p.MilestoneURIs {
		clone.MilestoneURIs[k] = v
	}
	return clone
}

// Normalize ensures all pointer fields are non-nil. The method returns the
// receiver to allow chaining.
func (p *Params) Normalize() *Params {
	if p == nil {
		return nil
	}
	if p.BasePoints == nil {
		p.BasePoints = big.NewInt(0)
	}
	if p.PremiumPrice == nil {
		p.PremiumPrice = big.NewInt(0)
	}
	if p.Milestones == nil {
		p.Milestones = []uint64{}
	}
	if p.MilestoneURIs == nil {
		p.MilestoneURIs = map[uint64]string{}
	}
	return p
}

// Validate performs static validation of the parameters. The milestone list
// must be strictly ascending: badge crediting walks it by index and relies on
// the ordering.
func (p Params) Validate() error {
	if p.BoostIntervalSeconds == 0 {
		return fmt.Errorf("boost: boost interval must be positive")
	}
	if p.BoostWindowSeconds == 0 {
		return fmt.Errorf("boost: boost window must be positive")
	}
	if p.SignatureValiditySeconds == 0 {
		return fmt.Errorf("boost: signature validity window must be positive")
	}
	if p.BasePoints == nil || p.BasePoints.Sign() <= 0 {
		return fmt.Errorf("boost: base points must be positive")
	}
	if p.PremiumPrice != nil && p.PremiumPrice.Sign() < 0 {
		return fmt.Errorf("boost: premium price cannot be negative")
	}
	for i, milestone := range p.Milestones {
		if milestone == 0 {
			return fmt.Errorf("boost: milestone %d must be positive", i)
		}
		if i > 0 && milestone <= p.Milestones[i-1] {
			return fmt.Errorf("boost: milestones must be strictly ascending")
		}
	}
	return nil
}

// StreakMultiplier returns the percent multiplier for a streak of n
// intervals: 100 + (n-1)*5, clamped at n=30 (245%). A zero-length streak
// earns the base rate.
func StreakMultiplier(n uint64) uint64 {
	if n == 0 {
		return MultiplierDenominator
	}
	if n > MaxMultiplierStreak {
		n = MaxMultiplierStreak
	}
	return MultiplierDenominator + (n-1)*5
}
