package boost

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"totemic/observability/metrics"
	"totemic/registry"
)

// Engine owns per-(user, totem) streak state, grace-day bookkeeping,
// milestone-badge issuance and the two boost entry points. Point credits it
// computes land on the merit ledger through the MeritSink.
type Engine struct {
	mu           sync.Mutex
	st           State
	merit        MeritSink
	payments     Payments
	reg          registry.Registry
	coord        Coordinator
	collectibles Collectibles
	params       Params
	signer       [20]byte
	signerSet    bool
	now          func() time.Time
	telemetry    *metrics.BoostMetrics
}

// NewEngine constructs a boost engine.
func NewEngine(st State, merit MeritSink, payments Payments, reg registry.Registry, params Params) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("boost: state required")
	}
	if merit == nil {
		return nil, fmt.Errorf("boost: merit sink required")
	}
	params = params.Clone()
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		st:           st,
		merit:        merit,
		payments:     payments,
		reg:          reg,
		collectibles: NoopCollectibles{},
		params:       params,
		now:          func() time.Time { return time.Now().UTC() },
		telemetry:    metrics.Boost(),
	}, nil
}

// SetSigner configures the off-platform voucher signer.
func (e *Engine) SetSigner(signer [20]byte) {
	e.mu.Lock()
	e.signer = signer
	e.signerSet = signer != ([20]byte{})
	e.mu.Unlock()
}

// SetCoordinator wires the entropy oracle used by premium boosts.
func (e *Engine) SetCoordinator(coord Coordinator) {
	e.mu.Lock()
	e.coord = coord
	e.mu.Unlock()
}

// SetCollectibles wires the badge collectible minter.
func (e *Engine) SetCollectibles(c Collectibles) {
	e.mu.Lock()
	if c == nil {
		c = NoopCollectibles{}
	}
	e.collectibles = c
	e.mu.Unlock()
}

// SetClock overrides the engine clock. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// Params returns a copy of the live parameters.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Clone()
}

func (e *Engine) guard() error {
	return registry.Guard(e.reg)
}

// FreeBoost consumes a signed voucher and runs the streak continuation for
// the (caller, totem) pair. The merit reward scales with the streak
// multiplier. Returns the credited amount.
func (e *Engine) FreeBoost(caller, totem [20]byte, timestamp int64, sig []byte) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return nil, err
	}
	if !e.signerSet {
		return nil, ErrSignerNotConfigured
	}
	now := e.now()
	skew := now.Unix() - timestamp
	if skew < 0 {
		skew = -skew
	}
	if uint64(skew) > e.params.SignatureValiditySeconds {
		e.reject("free", "signature_expired")
		return nil, ErrSignatureExpired
	}
	digest := VoucherDigest(caller, totem, timestamp)
	used, err := e.st.SignatureUsed(digest)
	if err != nil {
		return nil, err
	}
	if used {
		e.reject("free", "signature_used")
		return nil, ErrSignatureAlreadyUsed
	}
	recovered, err := recoverSigner(digest, sig)
	if err != nil || recovered != e.signer {
		e.reject("free", "invalid_signature")
		return nil, ErrInvalidSignature
	}
	state, err := e.st.BoostState(caller, totem)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &BoostState{}
	}
	if state.LastFreeBoost != 0 && uint64(now.Unix())-state.LastFreeBoost < e.params.BoostIntervalSeconds {
		e.reject("free", "too_soon")
		return nil, ErrTooSoon
	}

	transition := state.continueStreak(now, e.params.BoostIntervalSeconds)
	streak := state.StreakIntervals(now, e.params.BoostIntervalSeconds)
	multiplier := StreakMultiplier(streak)
	reward := new(big.Int).Mul(e.params.BasePoints, new(big.Int).SetUint64(multiplier))
	reward.Quo(reward, big.NewInt(MultiplierDenominator))

	// The ledger credit lands before the voucher burns or the streak persists;
	// a rejected credit (unregistered or blacklisted totem) leaves the voucher
	// spendable.
	if err := e.merit.Credit(caller, totem, reward, "boost.free"); err != nil {
		return nil, fmt.Errorf("boost: credit free boost reward: %w", err)
	}
	if err := e.st.MarkSignatureUsed(digest); err != nil {
		return nil, err
	}
	e.emitTransition(caller, totem, state, transition)
	if err := e.releaseBadges(caller, totem, state, streak); err != nil {
		return nil, err
	}
	state.LastFreeBoost = uint64(now.Unix())
	if err := e.st.PutBoostState(caller, totem, state); err != nil {
		return nil, err
	}
	e.st.AppendEvent(newFreeBoostEvent(caller, totem, streak, multiplier, reward, transition))
	if e.telemetry != nil {
		e.telemetry.ObserveBoost("free")
	}
	return reward, nil
}

// PremiumBoost charges the premium price, runs the streak continuation, may
// bank a grace day, and issues a randomness request whose fulfillment later
// credits the randomized reward. Returns the oracle request id.
func (e *Engine) PremiumBoost(caller, totem [20]byte, payment *big.Int) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return 0, err
	}
	treasury := e.reg.TreasuryAddress()
	if treasury == ([20]byte{}) {
		return 0, ErrTreasuryNotConfigured
	}
	if e.coord == nil {
		return 0, ErrCoordinatorNotConfigured
	}
	price := copyBigInt(e.params.PremiumPrice)
	if payment == nil || payment.Cmp(price) < 0 {
		e.reject("premium", "insufficient_payment")
		return 0, ErrInsufficientPayment
	}
	now := e.now()
	state, err := e.st.BoostState(caller, totem)
	if err != nil {
		return 0, err
	}
	if state == nil {
		state = &BoostState{}
	}

	// The randomness request and the price transfer both settle before any
	// ledger write. A failed request charges nobody; a failed transfer leaves
	// the streak untouched and the request id orphaned, and fulfillment of an
	// unknown id is rejected.
	requestID, err := e.coord.RequestRandomness()
	if err != nil {
		return 0, fmt.Errorf("boost: request randomness: %w", err)
	}
	if price.Sign() > 0 && e.payments != nil {
		if err := e.payments.Transfer(caller, treasury, price); err != nil {
			return 0, fmt.Errorf("boost: forward premium price: %w", err)
		}
	}

	transition := state.continueStreak(now, e.params.BoostIntervalSeconds)
	e.emitTransition(caller, totem, state, transition)
	streak := state.StreakIntervals(now, e.params.BoostIntervalSeconds)
	if err := e.releaseBadges(caller, totem, state, streak); err != nil {
		return 0, err
	}
	if state.LastPremiumBoost == 0 || uint64(now.Unix())-state.LastPremiumBoost >= e.params.BoostWindowSeconds {
		state.GraceDaysEarned++
		e.st.AppendEvent(newGraceGrantedEvent(caller, totem, state.GraceDaysEarned, state.GraceDaysWasted))
		if e.telemetry != nil {
			e.telemetry.ObserveGraceDay()
		}
	}
	state.LastPremiumBoost = uint64(now.Unix())
	if err := e.st.PutBoostState(caller, totem, state); err != nil {
		return 0, err
	}
	if err := e.st.PutPendingRandomReward(requestID, &PendingReward{User: caller, Totem: totem}); err != nil {
		return 0, err
	}
	refund := new(big.Int).Sub(payment, price)
	e.st.AppendEvent(newPremiumBoostEvent(caller, totem, price, refund, streak, requestID, transition))
	e.st.AppendEvent(newRandomRequestedEvent(caller, totem, requestID))
	if e.telemetry != nil {
		e.telemetry.ObserveBoost("premium")
		e.updatePendingGauge()
	}
	return requestID, nil
}

func (e *Engine) emitTransition(user, totem [20]byte, state *BoostState, transition StreakTransition) {
	switch transition {
	case StreakGraceConsumed:
		e.st.AppendEvent(newGraceConsumedEvent(user, totem, state.GraceDaysEarned, state.GraceDaysWasted))
	case StreakReset:
		e.st.AppendEvent(newStreakResetEvent(user, totem))
	}
}

func (e *Engine) reject(kind, reason string) {
	if e.telemetry != nil {
		e.telemetry.ObserveRejection(kind, reason)
	}
}

func (e *Engine) updatePendingGauge() {
	ids, err := e.st.PendingRandomRequestIDs()
	if err != nil {
		return
	}
	e.telemetry.SetPendingRandom(float64(len(ids)))
}

// releaseBadges grants one badge credit per milestone newly satisfied by the
// streak, walking the ascending milestone list strictly from the previously
// released count.
func (e *Engine) releaseBadges(user, totem [20]byte, state *BoostState, streak uint64) error {
	satisfied := uint64(0)
	for _, milestone := range e.params.Milestones {
		if streak >= milestone {
			satisfied++
		}
	}
	if satisfied <= state.ReleasedBadgeCount {
		return nil
	}
	released := satisfied - state.ReleasedBadgeCount
	for i := state.ReleasedBadgeCount; i < satisfied; i++ {
		milestone := e.params.Milestones[i]
		credits, err := e.st.BadgeCredits(user, milestone)
		if err != nil {
			return err
		}
		if err := e.st.SetBadgeCredits(user, milestone, credits+1); err != nil {
			return err
		}
		e.st.AppendEvent(newMilestoneAchievedEvent(user, totem, milestone, credits+1))
	}
	state.ReleasedBadgeCount = satisfied
	if e.telemetry != nil {
		e.telemetry.ObserveBadges(released)
	}
	return nil
}

// MintBadge consumes one available badge credit for the milestone and mints
// the collectible. Badge accounting is independent of the reward economics.
func (e *Engine) MintBadge(caller [20]byte, milestone uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	known := false
	for _, m := range e.params.Milestones {
		if m == milestone {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownMilestone
	}
	credits, err := e.st.BadgeCredits(caller, milestone)
	if err != nil {
		return err
	}
	if credits == 0 {
		return ErrNoBadgeCredit
	}
	if err := e.st.SetBadgeCredits(caller, milestone, credits-1); err != nil {
		return err
	}
	uri := e.params.MilestoneURIs[milestone]
	if err := e.collectibles.MintBadge(caller, milestone, uri); err != nil {
		return fmt.Errorf("boost: mint badge: %w", err)
	}
	e.st.AppendEvent(newBadgeMintedEvent(caller, milestone, uri))
	return nil
}
