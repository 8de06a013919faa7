package merit

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"totemic/core/types"
	"totemic/registry"
)

type fakeState struct {
	periodConfig *PeriodConfig
	params       *Params
	accounts     map[[20]byte]*TotemAccount
	totemList    [][20]byte
	points       map[string]*big.Int
	totals       map[uint64]*big.Int
	claimed      map[string]bool
	released     map[uint64]*big.Int
	lastSettled  *uint64
	tranche      map[int]*big.Int
	boosted      map[string]bool
	roles        map[string]bool
	events       []*types.Event
}

func newFakeState() *fakeState {
	return &fakeState{
		accounts: make(map[[20]byte]*TotemAccount),
		points:   make(map[string]*big.Int),
		totals:   make(map[uint64]*big.Int),
		claimed:  make(map[string]bool),
		released: make(map[uint64]*big.Int),
		tranche:  make(map[int]*big.Int),
		boosted:  make(map[string]bool),
		roles:    make(map[string]bool),
	}
}

func pointsKey(period uint64, totem [20]byte) string {
	return fmt.Sprintf("%d/%x", period, totem)
}

func (f *fakeState) PeriodConfig() (*PeriodConfig, error) { return f.periodConfig.Clone(), nil }
func (f *fakeState) SetPeriodConfig(cfg *PeriodConfig) error {
	f.periodConfig = cfg.Clone()
	return nil
}
func (f *fakeState) MeritParams() (*Params, error) {
	if f.params == nil {
		return nil, nil
	}
	clone := f.params.Clone()
	return &clone, nil
}
func (f *fakeState) SetMeritParams(params Params) error {
	clone := params.Clone()
	f.params = &clone
	return nil
}
func (f *fakeState) TotemAccount(totem [20]byte) (*TotemAccount, error) {
	return f.accounts[totem].Clone(), nil
}
func (f *fakeState) PutTotemAccount(totem [20]byte, acct *TotemAccount) error {
	f.accounts[totem] = acct.Clone()
	return nil
}
func (f *fakeState) TotemList() ([][20]byte, error) { return f.totemList, nil }
func (f *fakeState) AppendTotem(totem [20]byte) error {
	f.totemList = append(f.totemList, totem)
	return nil
}
func (f *fakeState) MeritPoints(period uint64, totem [20]byte) (*big.Int, error) {
	if v := f.points[pointsKey(period, totem)]; v != nil {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}
func (f *fakeState) SetMeritPoints(period uint64, totem [20]byte, amount *big.Int) error {
	f.points[pointsKey(period, totem)] = new(big.Int).Set(amount)
	return nil
}
func (f *fakeState) PeriodTotal(period uint64) (*big.Int, error) {
	if v := f.totals[period]; v != nil {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}
func (f *fakeState) SetPeriodTotal(period uint64, amount *big.Int) error {
	f.totals[period] = new(big.Int).Set(amount)
	return nil
}
func (f *fakeState) Claimed(period uint64, totem [20]byte) (bool, error) {
	return f.claimed[pointsKey(period, totem)], nil
}
func (f *fakeState) SetClaimed(period uint64, totem [20]byte) error {
	f.claimed[pointsKey(period, totem)] = true
	return nil
}
func (f *fakeState) ReleasedEmission(period uint64) (*big.Int, bool, error) {
	if v, ok := f.released[period]; ok {
		return new(big.Int).Set(v), true, nil
	}
	return big.NewInt(0), false, nil
}
func (f *fakeState) SetReleasedEmission(period uint64, amount *big.Int) error {
	f.released[period] = new(big.Int).Set(amount)
	return nil
}
func (f *fakeState) LastSettledPeriod() (uint64, bool, error) {
	if f.lastSettled == nil {
		return 0, false, nil
	}
	return *f.lastSettled, true, nil
}
func (f *fakeState) SetLastSettledPeriod(period uint64) error {
	f.lastSettled = &period
	return nil
}
func (f *fakeState) TrancheReleased(year int) (*big.Int, error) {
	if v := f.tranche[year]; v != nil {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}
func (f *fakeState) SetTrancheReleased(year int, amount *big.Int) error {
	f.tranche[year] = new(big.Int).Set(amount)
	return nil
}
func (f *fakeState) BoostedInPeriod(period uint64, booster, totem [20]byte) (bool, error) {
	return f.boosted[fmt.Sprintf("%d/%x/%x", period, booster, totem)], nil
}
func (f *fakeState) SetBoostedInPeriod(period uint64, booster, totem [20]byte) error {
	f.boosted[fmt.Sprintf("%d/%x/%x", period, booster, totem)] = true
	return nil
}
func (f *fakeState) HasRole(role string, addr [20]byte) (bool, error) {
	return f.roles[fmt.Sprintf("%s/%x", role, addr)], nil
}
func (f *fakeState) SetRole(role string, addr [20]byte, granted bool) error {
	key := fmt.Sprintf("%s/%x", role, addr)
	if granted {
		f.roles[key] = true
	} else {
		delete(f.roles, key)
	}
	return nil
}
func (f *fakeState) AppendEvent(evt *types.Event) { f.events = append(f.events, evt) }

func (f *fakeState) lastEvent(t *testing.T, eventType string) *types.Event {
	t.Helper()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Type == eventType {
			return f.events[i]
		}
	}
	t.Fatalf("no %s event emitted", eventType)
	return nil
}

type transfer struct {
	from, to [20]byte
	amount   *big.Int
}

type fakeBank struct {
	tokenBalances map[string]*big.Int
	transfers     []transfer
	vested        map[int]*big.Int
	payouts       map[[20]byte]*big.Int
	transferErr   error
	payoutErr     error
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		tokenBalances: make(map[string]*big.Int),
		vested:        make(map[int]*big.Int),
		payouts:       make(map[[20]byte]*big.Int),
	}
}

func (b *fakeBank) TokenBalance(holder, token [20]byte) (*big.Int, error) {
	if v := b.tokenBalances[fmt.Sprintf("%x/%x", holder, token)]; v != nil {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}
func (b *fakeBank) setTokenBalance(holder, token [20]byte, amount int64) {
	b.tokenBalances[fmt.Sprintf("%x/%x", holder, token)] = big.NewInt(amount)
}
func (b *fakeBank) Transfer(from, to [20]byte, amount *big.Int) error {
	if b.transferErr != nil {
		return b.transferErr
	}
	b.transfers = append(b.transfers, transfer{from: from, to: to, amount: new(big.Int).Set(amount)})
	return nil
}
func (b *fakeBank) ReleaseVested(year int, amount *big.Int) error {
	if b.vested[year] == nil {
		b.vested[year] = big.NewInt(0)
	}
	b.vested[year].Add(b.vested[year], amount)
	return nil
}
func (b *fakeBank) PayEmission(to [20]byte, amount *big.Int) error {
	if b.payoutErr != nil {
		return b.payoutErr
	}
	if b.payouts[to] == nil {
		b.payouts[to] = big.NewInt(0)
	}
	b.payouts[to].Add(b.payouts[to], amount)
	return nil
}

type fakeTotems struct {
	tokens map[[20]byte][20]byte
}

func (f *fakeTotems) TokenOf(totem [20]byte) ([20]byte, error) {
	token, ok := f.tokens[totem]
	if !ok {
		return [20]byte{}, errors.New("no pairing")
	}
	return token, nil
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

var (
	admin    = addr(0xAD)
	treasury = addr(0xEE)
)

type engineFixture struct {
	engine *Engine
	state  *fakeState
	bank   *fakeBank
	totems *fakeTotems
	base   time.Time
	clock  *time.Time
}

func (fx *engineFixture) advanceTo(offset time.Duration) {
	*fx.clock = fx.base.Add(offset)
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	base := time.Unix(1_700_000_000, 0).UTC()
	st := newFakeState()
	st.periodConfig = &PeriodConfig{StartTime: uint64(base.Unix()), PeriodSeconds: 30 * day}
	bank := newFakeBank()
	totems := &fakeTotems{tokens: make(map[[20]byte][20]byte)}
	tranches := Tranches{big.NewInt(1200), big.NewInt(1200), big.NewInt(1200), big.NewInt(1200)}
	reg := registry.Static{Treasury: treasury}

	engine, err := NewEngine(st, bank, totems, reg, tranches, DefaultParams(), admin)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	clock := base
	engine.SetClock(func() time.Time { return clock })
	return &engineFixture{engine: engine, state: st, bank: bank, totems: totems, base: base, clock: &clock}
}

func (fx *engineFixture) register(t *testing.T, totem [20]byte) {
	t.Helper()
	if err := fx.engine.Register(admin, totem); err != nil {
		t.Fatalf("register %x: %v", totem, err)
	}
}

func TestRegister(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)

	if err := fx.engine.Register(addr(9), totem); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized register: %v", err)
	}
	if err := fx.engine.Register(admin, [20]byte{}); !errors.Is(err, ErrInvalidPrincipal) {
		t.Fatalf("zero-address register: %v", err)
	}
	fx.register(t, totem)
	if err := fx.engine.Register(admin, totem); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("duplicate register: %v", err)
	}
	totems, err := fx.engine.Totems(0, 10)
	if err != nil {
		t.Fatalf("totems: %v", err)
	}
	if len(totems) != 1 || totems[0] != totem {
		t.Fatalf("totem list = %v", totems)
	}
}

func TestRegisterViaRegistrarRole(t *testing.T) {
	fx := newEngineFixture(t)
	registrar := addr(0x55)
	if err := fx.engine.GrantRole(admin, RoleRegistrar, registrar); err != nil {
		t.Fatalf("grant role: %v", err)
	}
	if err := fx.engine.Register(registrar, addr(1)); err != nil {
		t.Fatalf("registrar register: %v", err)
	}
	if err := fx.engine.RevokeRole(admin, RoleRegistrar, registrar); err != nil {
		t.Fatalf("revoke role: %v", err)
	}
	if err := fx.engine.Register(registrar, addr(2)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("revoked registrar register: %v", err)
	}
}

func TestCreditMerit(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)

	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(5), SourceAdmin); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("credit unregistered: %v", err)
	}
	fx.register(t, totem)
	if err := fx.engine.CreditMerit(admin, totem, nil, SourceAdmin); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("credit nil amount: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(0), SourceAdmin); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("credit zero: %v", err)
	}
	if err := fx.engine.CreditMerit(addr(9), totem, big.NewInt(5), SourceAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("credit unauthorized: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(5), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(7), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}

	points, err := fx.engine.Points(totem, 0)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if points.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("points = %s, want 12", points)
	}
	total, err := fx.engine.PeriodPoints(0)
	if err != nil {
		t.Fatalf("period points: %v", err)
	}
	if total.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("period total = %s, want 12", total)
	}
}

func TestCreditBlacklisted(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	fx.register(t, totem)
	if err := fx.engine.SetBlacklist(admin, totem, true); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(5), SourceAdmin); !errors.Is(err, ErrBlacklisted) {
		t.Fatalf("credit blacklisted: %v", err)
	}
	if err := fx.engine.SetBlacklist(admin, totem, false); err != nil {
		t.Fatalf("unblacklist: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(5), SourceAdmin); err != nil {
		t.Fatalf("credit after unblacklist: %v", err)
	}
}

func TestCreditLandsInCurrentPeriod(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	fx.register(t, totem)

	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(5), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	fx.advanceTo(31 * 24 * time.Hour)
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(9), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	p0, _ := fx.engine.Points(totem, 0)
	p1, _ := fx.engine.Points(totem, 1)
	if p0.Cmp(big.NewInt(5)) != 0 || p1.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("points split = %s / %s, want 5 / 9", p0, p1)
	}
}

func TestBoostTotem(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	booster := addr(2)
	token := addr(0x10)
	fx.register(t, totem)
	fx.totems.tokens[totem] = token
	fx.bank.setTokenBalance(booster, token, 1)

	fee := big.NewInt(1_000_000_000_000_000)
	payment := big.NewInt(1_500_000_000_000_000)

	// Outside the Mythum window.
	if err := fx.engine.BoostTotem(booster, totem, payment); !errors.Is(err, ErrOutsideMythum) {
		t.Fatalf("boost outside window: %v", err)
	}

	fx.advanceTo(28 * 24 * time.Hour)
	if err := fx.engine.BoostTotem(booster, totem, big.NewInt(1)); !errors.Is(err, ErrInsufficientFee) {
		t.Fatalf("underpaid boost: %v", err)
	}
	if err := fx.engine.BoostTotem(booster, totem, payment); err != nil {
		t.Fatalf("boost: %v", err)
	}

	// The exact fee moves to the treasury, never the full payment.
	if len(fx.bank.transfers) != 1 {
		t.Fatalf("transfers = %d, want 1", len(fx.bank.transfers))
	}
	moved := fx.bank.transfers[0]
	if moved.from != booster || moved.to != treasury || moved.amount.Cmp(fee) != 0 {
		t.Fatalf("transfer = %+v", moved)
	}
	evt := fx.state.lastEvent(t, TypeTotemBoosted)
	if evt.Attributes["refund"] != "500000000000000" {
		t.Fatalf("refund attribute = %q", evt.Attributes["refund"])
	}

	points, _ := fx.engine.Points(totem, 0)
	if points.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("boost points = %s, want 10", points)
	}

	// Second boost by the same pair in the same period is rejected.
	if err := fx.engine.BoostTotem(booster, totem, payment); !errors.Is(err, ErrAlreadyBoostedInPeriod) {
		t.Fatalf("repeat boost: %v", err)
	}

	// A different booster needs token balance.
	other := addr(3)
	if err := fx.engine.BoostTotem(other, totem, payment); !errors.Is(err, ErrNoTokenBalance) {
		t.Fatalf("tokenless boost: %v", err)
	}

	// The next period's window accepts the original pair again.
	fx.advanceTo(58 * 24 * time.Hour)
	if err := fx.engine.BoostTotem(booster, totem, payment); err != nil {
		t.Fatalf("next-period boost: %v", err)
	}
}

func TestBoostTotemFailedTransferLeavesNoState(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	booster := addr(2)
	token := addr(0x10)
	fx.register(t, totem)
	fx.totems.tokens[totem] = token
	fx.bank.setTokenBalance(booster, token, 1)
	fx.advanceTo(28 * 24 * time.Hour)
	payment := big.NewInt(1_500_000_000_000_000)

	fx.bank.transferErr = errors.New("insufficient funds")
	if err := fx.engine.BoostTotem(booster, totem, payment); err == nil {
		t.Fatal("boost with failing fee transfer must error")
	}
	points, _ := fx.engine.Points(totem, 0)
	if points.Sign() != 0 {
		t.Fatalf("points after failed boost = %s, want 0", points)
	}
	if len(fx.state.boosted) != 0 {
		t.Fatal("failed boost set the period dedupe flag")
	}

	// Once the booster is funded the same boost goes through.
	fx.bank.transferErr = nil
	if err := fx.engine.BoostTotem(booster, totem, payment); err != nil {
		t.Fatalf("retry after funding: %v", err)
	}
	points, _ = fx.engine.Points(totem, 0)
	if points.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("points after retry = %s, want 10", points)
	}
}

func TestClaim(t *testing.T) {
	fx := newEngineFixture(t)
	totemA := addr(1)
	totemB := addr(2)
	fx.register(t, totemA)
	fx.register(t, totemB)

	if err := fx.engine.CreditMerit(admin, totemA, big.NewInt(30), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totemB, big.NewInt(10), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}

	// Period 0 is still open.
	if _, err := fx.engine.Claim(totemA, totemA, 1); !errors.Is(err, ErrPeriodNotReached) {
		t.Fatalf("future claim: %v", err)
	}

	fx.advanceTo(31 * 24 * time.Hour)
	if _, err := fx.engine.Claim(addr(9), totemA, 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("third-party claim: %v", err)
	}

	// Tranche 1200 over 30-day periods releases 100 per period; 30/40 of it.
	payout, err := fx.engine.Claim(totemA, totemA, 0)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if payout.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("payout = %s, want 75", payout)
	}
	if _, err := fx.engine.Claim(totemA, totemA, 0); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("double claim: %v", err)
	}

	payout, err = fx.engine.Claim(totemB, totemB, 0)
	if err != nil {
		t.Fatalf("claim B: %v", err)
	}
	if payout.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("payout B = %s, want 25", payout)
	}

	// One vesting pull for year zero covering the whole settled release.
	if fx.bank.vested[0] == nil || fx.bank.vested[0].Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("vested pull = %v, want 100", fx.bank.vested[0])
	}
	if fx.bank.payouts[totemA].Cmp(big.NewInt(75)) != 0 || fx.bank.payouts[totemB].Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("payouts = %v / %v", fx.bank.payouts[totemA], fx.bank.payouts[totemB])
	}
}

func TestClaimFailedPayoutStaysClaimable(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	fx.register(t, totem)
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(10), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	fx.advanceTo(31 * 24 * time.Hour)

	fx.bank.payoutErr = errors.New("emission pool unfunded")
	if _, err := fx.engine.Claim(totem, totem, 0); err == nil {
		t.Fatal("claim with failing payout must error")
	}
	if len(fx.state.claimed) != 0 {
		t.Fatal("failed payout flipped the claimed flag")
	}

	fx.bank.payoutErr = nil
	payout, err := fx.engine.Claim(totem, totem, 0)
	if err != nil {
		t.Fatalf("retry claim: %v", err)
	}
	if payout.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("retry payout = %s, want 100", payout)
	}
}

func TestClaimNothingToClaim(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	idle := addr(2)
	fx.register(t, totem)
	fx.register(t, idle)
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(5), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	fx.advanceTo(31 * 24 * time.Hour)
	if _, err := fx.engine.Claim(idle, idle, 0); !errors.Is(err, ErrNothingToClaim) {
		t.Fatalf("pointless claim: %v", err)
	}
}

func TestSettleEmissionCapsAtTrancheAllocation(t *testing.T) {
	fx := newEngineFixture(t)
	// Thirteen elapsed periods: twelve in year 0 exhaust the 1200 tranche
	// exactly, the thirteenth draws from year 1.
	fx.advanceTo(13 * 30 * 24 * time.Hour)
	if err := fx.engine.SettleEmission(); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if fx.bank.vested[0].Cmp(big.NewInt(1200)) != 0 {
		t.Fatalf("year 0 pull = %v, want 1200", fx.bank.vested[0])
	}
	if fx.bank.vested[1].Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("year 1 pull = %v, want 100", fx.bank.vested[1])
	}

	// Settling again is a no-op.
	if err := fx.engine.SettleEmission(); err != nil {
		t.Fatalf("resettle: %v", err)
	}
	if fx.bank.vested[0].Cmp(big.NewInt(1200)) != 0 {
		t.Fatalf("year 0 pull after resettle = %v", fx.bank.vested[0])
	}
}

func TestSetPeriodDurationRebases(t *testing.T) {
	fx := newEngineFixture(t)
	fx.advanceTo(45 * 24 * time.Hour)
	if err := fx.engine.SetPeriodDuration(addr(9), 16*day); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized duration change: %v", err)
	}
	if err := fx.engine.SetPeriodDuration(admin, 2*day); err == nil {
		t.Fatal("duration shorter than the mythum window must be rejected")
	}
	if err := fx.engine.SetPeriodDuration(admin, 16*day); err != nil {
		t.Fatalf("set duration: %v", err)
	}

	// Rebase snapshots: mid-period-1 becomes the new origin of period 1.
	if got := fx.engine.CurrentPeriod(); got != 1 {
		t.Fatalf("current period = %d, want 1", got)
	}
	fx.advanceTo(45*24*time.Hour + 17*24*time.Hour)
	if got := fx.engine.CurrentPeriod(); got != 2 {
		t.Fatalf("current period = %d, want 2", got)
	}
	if _, _, ok := fx.engine.PeriodBounds(0); ok {
		t.Fatal("pre-rebase bounds must be unknown")
	}
	// The elapsed pre-rebase period was settled during the change.
	if fx.bank.vested[0] == nil || fx.bank.vested[0].Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("settled pull = %v, want 100", fx.bank.vested[0])
	}
}

func TestAdjustKarmaClampsAtZero(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	fx.register(t, totem)

	karma, err := fx.engine.AdjustKarma(admin, totem, 10)
	if err != nil || karma != 10 {
		t.Fatalf("karma = %d, err = %v", karma, err)
	}
	karma, err = fx.engine.AdjustKarma(admin, totem, -25)
	if err != nil || karma != 0 {
		t.Fatalf("karma after clamp = %d, err = %v", karma, err)
	}
}

func TestPausedRegistryBlocksMutations(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	fx.register(t, totem)

	manual := registry.NewManual(registry.Static{Treasury: treasury})
	fx.engine.reg = manual
	manual.SetEcosystemPaused(true)

	if err := fx.engine.Register(admin, addr(2)); !errors.Is(err, registry.ErrEcosystemPaused) {
		t.Fatalf("paused register: %v", err)
	}
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(1), SourceAdmin); !errors.Is(err, registry.ErrEcosystemPaused) {
		t.Fatalf("paused credit: %v", err)
	}
	if _, err := fx.engine.Claim(totem, totem, 0); !errors.Is(err, registry.ErrEcosystemPaused) {
		t.Fatalf("paused claim: %v", err)
	}
}

func TestCurrentMultiplier(t *testing.T) {
	fx := newEngineFixture(t)
	if got := fx.engine.CurrentMultiplier(); got != MultiplierBpsDenominator {
		t.Fatalf("multiplier outside window = %d", got)
	}
	fx.advanceTo(28 * 24 * time.Hour)
	if got := fx.engine.CurrentMultiplier(); got != 15_000 {
		t.Fatalf("multiplier inside window = %d", got)
	}
}

func TestPendingRewardPreview(t *testing.T) {
	fx := newEngineFixture(t)
	totem := addr(1)
	fx.register(t, totem)
	if err := fx.engine.CreditMerit(admin, totem, big.NewInt(40), SourceAdmin); err != nil {
		t.Fatalf("credit: %v", err)
	}
	fx.advanceTo(31 * 24 * time.Hour)
	if err := fx.engine.SettleEmission(); err != nil {
		t.Fatalf("settle: %v", err)
	}
	pending, err := fx.engine.PendingReward(totem, 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("pending = %s, want 100", pending)
	}
	if _, err := fx.engine.Claim(totem, totem, 0); err != nil {
		t.Fatalf("claim: %v", err)
	}
	pending, err = fx.engine.PendingReward(totem, 0)
	if err != nil {
		t.Fatalf("pending after claim: %v", err)
	}
	if pending.Sign() != 0 {
		t.Fatalf("pending after claim = %s, want 0", pending)
	}
}
