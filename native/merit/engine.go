package merit

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"totemic/core/types"
	"totemic/observability/metrics"
	"totemic/registry"
)

// State describes the persistence the merit engine needs from the surrounding
// state implementation. All ledger records are exclusively owned by this
// engine; nothing else writes them.
type State interface {
	PeriodConfig() (*PeriodConfig, error)
	SetPeriodConfig(cfg *PeriodConfig) error
	MeritParams() (*Params, error)
	SetMeritParams(params Params) error

	TotemAccount(totem [20]byte) (*TotemAccount, error)
	PutTotemAccount(totem [20]byte, acct *TotemAccount) error
	TotemList() ([][20]byte, error)
	AppendTotem(totem [20]byte) error

	MeritPoints(period uint64, totem [20]byte) (*big.Int, error)
	SetMeritPoints(period uint64, totem [20]byte, amount *big.Int) error
	PeriodTotal(period uint64) (*big.Int, error)
	SetPeriodTotal(period uint64, amount *big.Int) error

	Claimed(period uint64, totem [20]byte) (bool, error)
	SetClaimed(period uint64, totem [20]byte) error
	ReleasedEmission(period uint64) (*big.Int, bool, error)
	SetReleasedEmission(period uint64, amount *big.Int) error
	LastSettledPeriod() (uint64, bool, error)
	SetLastSettledPeriod(period uint64) error
	TrancheReleased(year int) (*big.Int, error)
	SetTrancheReleased(year int, amount *big.Int) error

	BoostedInPeriod(period uint64, booster, totem [20]byte) (bool, error)
	SetBoostedInPeriod(period uint64, booster, totem [20]byte) error

	HasRole(role string, addr [20]byte) (bool, error)
	SetRole(role string, addr [20]byte, granted bool) error

	AppendEvent(evt *types.Event)
}

// Engine owns the period-indexed merit ledger, the emission/vesting
// synchronization and claim settlement. Public entry points serialize on the
// engine mutex so every operation is atomic against shared state.
type Engine struct {
	mu        sync.Mutex
	st        State
	bank      Bank
	totems    Totems
	reg       registry.Registry
	tranches  Tranches
	params    Params
	periods   *PeriodConfig
	now       func() time.Time
	telemetry *metrics.MeritMetrics
}

// NewEngine constructs a merit engine. Stored parameters and period
// configuration take precedence over the supplied defaults so that admin
// changes survive restarts. The admin address is granted RoleAdmin on first
// start.
func NewEngine(st State, bank Bank, totems Totems, reg registry.Registry, tranches Tranches, defaults Params, admin [20]byte) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("merit: state required")
	}
	if bank == nil {
		return nil, fmt.Errorf("merit: bank required")
	}
	defaults = defaults.Clone()
	defaults.Normalize()
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		st:        st,
		bank:      bank,
		totems:    totems,
		reg:       reg,
		tranches:  tranches,
		now:       func() time.Time { return time.Now().UTC() },
		telemetry: metrics.Merit(),
	}
	e.tranches.Normalize()

	stored, err := st.MeritParams()
	if err != nil {
		return nil, fmt.Errorf("merit: load params: %w", err)
	}
	if stored != nil {
		e.params = stored.Clone()
		e.params.Normalize()
	} else {
		e.params = defaults
		if err := st.SetMeritParams(e.params); err != nil {
			return nil, fmt.Errorf("merit: store params: %w", err)
		}
	}

	periods, err := st.PeriodConfig()
	if err != nil {
		return nil, fmt.Errorf("merit: load period config: %w", err)
	}
	if periods == nil {
		periods, err = NewPeriodConfig(e.now(), e.params.PeriodSeconds)
		if err != nil {
			return nil, err
		}
		if err := st.SetPeriodConfig(periods); err != nil {
			return nil, fmt.Errorf("merit: store period config: %w", err)
		}
	}
	e.periods = periods

	if admin != ([20]byte{}) {
		has, err := st.HasRole(RoleAdmin, admin)
		if err != nil {
			return nil, err
		}
		if !has {
			if err := st.SetRole(RoleAdmin, admin, true); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}

// SetClock overrides the engine clock. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

func (e *Engine) guard() error {
	return registry.Guard(e.reg)
}

func (e *Engine) requireRole(caller [20]byte, roles ...string) error {
	for _, role := range roles {
		has, err := e.st.HasRole(role, caller)
		if err != nil {
			return err
		}
		if has {
			return nil
		}
	}
	return ErrUnauthorized
}

// Register adds the totem to the registry set and the ordered enumeration
// list. The caller must hold the registrar capability.
func (e *Engine) Register(caller, totem [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(caller, RoleRegistrar, RoleAdmin); err != nil {
		return err
	}
	if totem == ([20]byte{}) {
		return ErrInvalidPrincipal
	}
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return err
	}
	if acct != nil && acct.Registered {
		return ErrAlreadyRegistered
	}
	if acct == nil {
		acct = &TotemAccount{}
	}
	acct.Registered = true
	if err := e.st.PutTotemAccount(totem, acct); err != nil {
		return err
	}
	if err := e.st.AppendTotem(totem); err != nil {
		return err
	}
	e.st.AppendEvent(newTotemRegisteredEvent(totem, caller))
	return nil
}

// CreditMerit credits points to a totem for the current period. The caller
// must hold the crediter or admin capability; in-process reward engines use
// Credit instead.
func (e *Engine) CreditMerit(caller, totem [20]byte, amount *big.Int, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(caller, RoleCrediter, RoleAdmin); err != nil {
		return err
	}
	return e.creditLocked(caller, totem, amount, source)
}

// Credit is the internal primitive used by every point-earning path. It is
// exported for the in-process engines that feed the ledger (boost rewards,
// randomized bonuses); external callers go through CreditMerit.
func (e *Engine) Credit(actor, totem [20]byte, amount *big.Int, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	return e.creditLocked(actor, totem, amount, source)
}

func (e *Engine) creditLocked(actor, totem [20]byte, amount *big.Int, source string) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return err
	}
	if acct == nil || !acct.Registered {
		return ErrNotRegistered
	}
	if acct.Blacklisted {
		return ErrBlacklisted
	}
	period := e.periods.PeriodAt(e.now())

	points, err := e.st.MeritPoints(period, totem)
	if err != nil {
		return err
	}
	if err := e.st.SetMeritPoints(period, totem, new(big.Int).Add(points, amount)); err != nil {
		return err
	}
	total, err := e.st.PeriodTotal(period)
	if err != nil {
		return err
	}
	if err := e.st.SetPeriodTotal(period, new(big.Int).Add(total, amount)); err != nil {
		return err
	}
	e.st.AppendEvent(newMeritCreditedEvent(totem, actor, amount, period, source))
	if e.telemetry != nil {
		e.telemetry.ObserveCredit(source)
	}
	return nil
}

// BoostTotem performs a paid boost: the fee is forwarded to the treasury, any
// overpayment is refunded, and a fixed merit credit lands on the totem. Only
// one paid boost per (booster, totem) is accepted per period and only inside
// the Mythum window.
func (e *Engine) BoostTotem(caller, totem [20]byte, payment *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return err
	}
	if acct == nil || !acct.Registered {
		return ErrNotRegistered
	}
	if acct.Blacklisted {
		return ErrBlacklisted
	}
	fee := copyBigInt(e.params.BoostFee)
	if payment == nil || payment.Cmp(fee) < 0 {
		return ErrInsufficientFee
	}
	now := e.now()
	if !e.periods.IsMythum(now, e.params.MythumWindowSeconds) {
		return ErrOutsideMythum
	}
	if e.totems != nil {
		token, err := e.totems.TokenOf(totem)
		if err != nil {
			return fmt.Errorf("merit: resolve totem token: %w", err)
		}
		balance, err := e.bank.TokenBalance(caller, token)
		if err != nil {
			return fmt.Errorf("merit: token balance: %w", err)
		}
		if balance == nil || balance.Sign() <= 0 {
			return ErrNoTokenBalance
		}
	}
	period := e.periods.PeriodAt(now)
	boosted, err := e.st.BoostedInPeriod(period, caller, totem)
	if err != nil {
		return err
	}
	if boosted {
		return ErrAlreadyBoostedInPeriod
	}

	// The fee settles before any ledger write; a failed transfer leaves no
	// state behind and the boost stays retryable.
	if fee.Sign() > 0 {
		treasury := e.reg.TreasuryAddress()
		if err := e.bank.Transfer(caller, treasury, fee); err != nil {
			return fmt.Errorf("merit: forward boost fee: %w", err)
		}
	}
	if err := e.st.SetBoostedInPeriod(period, caller, totem); err != nil {
		return err
	}
	if err := e.creditLocked(caller, totem, copyBigInt(e.params.BoostPoints), SourceBoost); err != nil {
		return err
	}
	refund := new(big.Int).Sub(payment, fee)
	e.st.AppendEvent(newTotemBoostedEvent(caller, totem, fee, refund, period))
	if e.telemetry != nil {
		e.telemetry.ObserveBoost()
	}
	return nil
}

// Claim settles a totem's pro-rata share of a period's released emission.
// Only the totem itself may claim, and each (period, totem) pair settles at
// most once.
func (e *Engine) Claim(caller, totem [20]byte, period uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return nil, err
	}
	if caller != totem {
		return nil, ErrUnauthorized
	}
	acct, err := e.st.TotemAccount(totem)
	if err != nil {
		return nil, err
	}
	if acct == nil || !acct.Registered {
		return nil, ErrNotRegistered
	}
	if acct.Blacklisted {
		return nil, ErrBlacklisted
	}
	now := e.now()
	current := e.periods.PeriodAt(now)
	if period > current {
		return nil, ErrPeriodNotReached
	}
	if err := e.settleLocked(now); err != nil {
		return nil, err
	}
	claimed, err := e.st.Claimed(period, totem)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, ErrAlreadyClaimed
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
		return nil, ErrNothingToClaim
	}
	payout := new(big.Int).Mul(released, points)
	payout.Quo(payout, total)
	if payout.Sign() <= 0 {
		return nil, ErrNothingToClaim
	}

	// The payout moves before the claimed flag flips; a failed payout leaves
	// the claim open for retry.
	if err := e.bank.PayEmission(totem, payout); err != nil {
		return nil, fmt.Errorf("merit: pay emission: %w", err)
	}
	if err := e.st.SetClaimed(period, totem); err != nil {
		return nil, err
	}
	e.st.AppendEvent(newClaimSettledEvent(totem, period, points, total, payout))
	if e.telemetry != nil {
		e.telemetry.ObserveClaim()
	}
	return payout, nil
}

// SettleEmission rolls the emission schedule forward to the current period.
// Claim calls it implicitly; exposing it lets operators close periods early.
func (e *Engine) SettleEmission() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	return e.settleLocked(e.now())
}

// settleLocked stamps the released emission for every period strictly before
// the current one that has not been processed yet, then pulls the released
// tokens from the vesting tranches in one call per touched year.
func (e *Engine) settleLocked(now time.Time) error {
	current := e.periods.PeriodAt(now)
	if current == 0 {
		return nil
	}
	start := uint64(0)
	if last, ok, err := e.st.LastSettledPeriod(); err != nil {
		return err
	} else if ok {
		if last+1 >= current {
			return nil
		}
		start = last + 1
	}
	pulls := make(map[int]*big.Int)
	for p := start; p < current; p++ {
		if _, done, err := e.st.ReleasedEmission(p); err != nil {
			return err
		} else if done {
			continue
		}
		year := YearForPeriod(p, e.params.PeriodsPerYear)
		releasedSoFar, err := e.st.TrancheReleased(year)
		if err != nil {
			return err
		}
		remaining := new(big.Int).Sub(e.tranches.Allocation(year), releasedSoFar)
		if remaining.Sign() < 0 {
			remaining.SetInt64(0)
		}
		release := ReleaseForPeriod(e.tranches.Allocation(year), e.params.PeriodSeconds)
		if release.Cmp(remaining) > 0 {
			release = remaining
		}
		if err := e.st.SetReleasedEmission(p, release); err != nil {
			return err
		}
		if err := e.st.SetTrancheReleased(year, new(big.Int).Add(releasedSoFar, release)); err != nil {
			return err
		}
		if release.Sign() > 0 {
			if pulls[year] == nil {
				pulls[year] = big.NewInt(0)
			}
			pulls[year].Add(pulls[year], release)
		}
		e.st.AppendEvent(newEmissionReleasedEvent(p, year, release))
	}
	if err := e.st.SetLastSettledPeriod(current - 1); err != nil {
		return err
	}
	for year := 0; year < NumTranches; year++ {
		amount := pulls[year]
		if amount == nil || amount.Sign() <= 0 {
			continue
		}
		if err := e.bank.ReleaseVested(year, amount); err != nil {
			return fmt.Errorf("merit: release vested year %d: %w", year, err)
		}
	}
	if e.telemetry != nil {
		e.telemetry.SetCurrentPeriod(float64(current))
	}
	return nil
}
