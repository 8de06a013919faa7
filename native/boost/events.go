package boost

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"totemic/core/types"
)

const (
	TypeFreeBoost         = "boost.free"
	TypePremiumBoost      = "boost.premium"
	TypeGraceDayGranted   = "boost.grace.granted"
	TypeGraceDayConsumed  = "boost.grace.consumed"
	TypeStreakReset       = "boost.streak.reset"
	TypeMilestoneAchieved = "boost.milestone.achieved"
	TypeBadgeMinted       = "boost.badge.minted"
	TypeRandomRequested   = "boost.random.requested"
	TypeRandomFulfilled   = "boost.random.fulfilled"
)

func addrAttr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func amountAttr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func newFreeBoostEvent(user, totem [20]byte, streak uint64, multiplier uint64, reward *big.Int, transition StreakTransition) *types.Event {
	return &types.Event{
		Type: TypeFreeBoost,
		Attributes: map[string]string{
			"user":       addrAttr(user),
			"totem":      addrAttr(totem),
			"streak":     fmt.Sprintf("%d", streak),
			"multiplier": fmt.Sprintf("%d", multiplier),
			"reward":     amountAttr(reward),
			"transition": transition.String(),
		},
	}
}

func newPremiumBoostEvent(user, totem [20]byte, price, refund *big.Int, streak uint64, requestID uint64, transition StreakTransition) *types.Event {
	return &types.Event{
		Type: TypePremiumBoost,
		Attributes: map[string]string{
			"user":       addrAttr(user),
			"totem":      addrAttr(totem),
			"price":      amountAttr(price),
			"refund":     amountAttr(refund),
			"streak":     fmt.Sprintf("%d", streak),
			"requestId":  fmt.Sprintf("%d", requestID),
			"transition": transition.String(),
		},
	}
}

func newGraceGrantedEvent(user, totem [20]byte, earned, wasted uint64) *types.Event {
	return &types.Event{
		Type: TypeGraceDayGranted,
		Attributes: map[string]string{
			"user":   addrAttr(user),
			"totem":  addrAttr(totem),
			"earned": fmt.Sprintf("%d", earned),
			"wasted": fmt.Sprintf("%d", wasted),
		},
	}
}

func newGraceConsumedEvent(user, totem [20]byte, earned, wasted uint64) *types.Event {
	return &types.Event{
		Type: TypeGraceDayConsumed,
		Attributes: map[string]string{
			"user":   addrAttr(user),
			"totem":  addrAttr(totem),
			"earned": fmt.Sprintf("%d", earned),
			"wasted": fmt.Sprintf("%d", wasted),
		},
	}
}

func newStreakResetEvent(user, totem [20]byte) *types.Event {
	return &types.Event{
		Type: TypeStreakReset,
		Attributes: map[string]string{
			"user":  addrAttr(user),
			"totem": addrAttr(totem),
		},
	}
}

func newMilestoneAchievedEvent(user, totem [20]byte, milestone uint64, credits uint64) *types.Event {
	return &types.Event{
		Type: TypeMilestoneAchieved,
		Attributes: map[string]string{
			"user":      addrAttr(user),
			"totem":     addrAttr(totem),
			"milestone": fmt.Sprintf("%d", milestone),
			"credits":   fmt.Sprintf("%d", credits),
		},
	}
}

func newBadgeMintedEvent(user [20]byte, milestone uint64, uri string) *types.Event {
	return &types.Event{
		Type: TypeBadgeMinted,
		Attributes: map[string]string{
			"user":      addrAttr(user),
			"milestone": fmt.Sprintf("%d", milestone),
			"uri":       uri,
		},
	}
}

func newRandomRequestedEvent(user, totem [20]byte, requestID uint64) *types.Event {
	return &types.Event{
		Type: TypeRandomRequested,
		Attributes: map[string]string{
			"user":      addrAttr(user),
			"totem":     addrAttr(totem),
			"requestId": fmt.Sprintf("%d", requestID),
		},
	}
}

func newRandomFulfilledEvent(user, totem [20]byte, requestID uint64, base, bonus, total *big.Int, multiplier uint64) *types.Event {
	return &types.Event{
		Type: TypeRandomFulfilled,
		Attributes: map[string]string{
			"user":       addrAttr(user),
			"totem":      addrAttr(totem),
			"requestId":  fmt.Sprintf("%d", requestID),
			"base":       amountAttr(base),
			"bonus":      amountAttr(bonus),
			"total":      amountAttr(total),
			"multiplier": fmt.Sprintf("%d", multiplier),
		},
	}
}
