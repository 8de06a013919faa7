package boost

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestBaseRewardForRoll(t *testing.T) {
	cases := []struct {
		roll uint64
		want int64
	}{
		{0, 500},
		{49, 500},
		{50, 700},
		{74, 700},
		{75, 1000},
		{89, 1000},
		{90, 2000},
		{96, 2000},
		{97, 3000},
		{99, 3000},
	}
	for _, tc := range cases {
		if got := BaseRewardForRoll(tc.roll); got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Errorf("BaseRewardForRoll(%d) = %s, want %d", tc.roll, got, tc.want)
		}
	}
}

func TestBaseRewardDistribution(t *testing.T) {
	counts := make(map[int64]int)
	for roll := uint64(0); roll < 100; roll++ {
		counts[BaseRewardForRoll(roll).Int64()]++
	}
	want := map[int64]int{500: 50, 700: 25, 1000: 15, 2000: 7, 3000: 3}
	for points, n := range want {
		if counts[points] != n {
			t.Errorf("tier %d hit %d rolls, want %d", points, counts[points], n)
		}
	}
}

func fulfillFixture(t *testing.T) (*boostFixture, uint64) {
	t.Helper()
	fx := newBoostFixture(t)
	price := big.NewInt(5_000_000_000_000_000)
	requestID, err := fx.engine.PremiumBoost(addr(1), addr(2), price)
	if err != nil {
		t.Fatalf("premium: %v", err)
	}
	return fx, requestID
}

func TestFulfill(t *testing.T) {
	fx, requestID := fulfillFixture(t)

	// Word 142 rolls 42: base tier 500 at streak 1 (100%).
	total, err := fx.engine.Fulfill(coordinator, requestID, []*big.Int{big.NewInt(142)})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if total.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("total = %s, want 500", total)
	}
	if len(fx.merit.credits) != 1 {
		t.Fatalf("credits = %d, want 1", len(fx.merit.credits))
	}
	credit := fx.merit.credits[0]
	if credit.source != "boost.random" || credit.totem != addr(2) || credit.amount.Cmp(total) != 0 {
		t.Fatalf("credit = %+v", credit)
	}
	// The pending record is gone.
	if _, ok, _ := fx.engine.PendingReward(requestID); ok {
		t.Fatal("pending record must be deleted")
	}
	ids, err := fx.engine.PendingRequests()
	if err != nil || len(ids) != 0 {
		t.Fatalf("pending ids = %v, err = %v", ids, err)
	}
}

func TestFulfillAppliesCurrentStreakMultiplier(t *testing.T) {
	fx, requestID := fulfillFixture(t)

	// Keep the streak alive with free boosts until it reaches eight
	// intervals, then fulfill the old request.
	for d := 1; d <= 7; d++ {
		fx.advanceTo(time.Duration(d) * 24 * time.Hour)
		fx.freeBoost(t, addr(1), addr(2))
	}
	total, err := fx.engine.Fulfill(coordinator, requestID, []*big.Int{big.NewInt(97)})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	// Roll 97 → base 3000; streak 8 → 135%; floor(3000*135/100) = 4050.
	if total.Cmp(big.NewInt(4050)) != 0 {
		t.Fatalf("total = %s, want 4050", total)
	}
	evt := fx.state.events[len(fx.state.events)-1]
	if evt.Type != TypeRandomFulfilled {
		t.Fatalf("last event = %s", evt.Type)
	}
	if evt.Attributes["base"] != "3000" || evt.Attributes["bonus"] != "1050" {
		t.Fatalf("attributes = %v", evt.Attributes)
	}
}

func TestFulfillAuthorization(t *testing.T) {
	fx, requestID := fulfillFixture(t)
	words := []*big.Int{big.NewInt(7)}

	if _, err := fx.engine.Fulfill(addr(9), requestID, words); !errors.Is(err, ErrOnlyCoordinator) {
		t.Fatalf("stranger fulfill: %v", err)
	}
	if _, err := fx.engine.Fulfill(coordinator, requestID+100, words); !errors.Is(err, ErrUnknownRequest) {
		t.Fatalf("unknown request: %v", err)
	}
	if _, err := fx.engine.Fulfill(coordinator, requestID, nil); !errors.Is(err, ErrEmptyRandomWords) {
		t.Fatalf("empty words: %v", err)
	}

	if _, err := fx.engine.Fulfill(coordinator, requestID, words); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	// A second fulfillment of the same id fails closed.
	if _, err := fx.engine.Fulfill(coordinator, requestID, words); !errors.Is(err, ErrUnknownRequest) {
		t.Fatalf("double fulfill: %v", err)
	}
}

func TestFulfillLargeWordReduced(t *testing.T) {
	fx, requestID := fulfillFixture(t)
	word, ok := new(big.Int).SetString("987654321987654321987654321987654398", 10)
	if !ok {
		t.Fatal("parse word")
	}
	total, err := fx.engine.Fulfill(coordinator, requestID, []*big.Int{word})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	// word mod 100 = 98 → top tier.
	if total.Cmp(big.NewInt(3000)) != 0 {
		t.Fatalf("total = %s, want 3000", total)
	}
}
