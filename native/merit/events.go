package merit

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"totemic/core/types"
)

const (
	TypeTotemRegistered  = "merit.totem.registered"
	TypeMeritCredited    = "merit.points.credited"
	TypeTotemBoosted     = "merit.totem.boosted"
	TypeEmissionReleased = "merit.emission.released"
	TypeClaimSettled     = "merit.claim.settled"
	TypeKarmaAdjusted    = "merit.karma.adjusted"
	TypeBlacklistUpdated = "merit.blacklist.updated"
	TypeParamUpdated     = "merit.param.updated"
	TypeRoleUpdated      = "merit.role.updated"
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

func newTotemRegisteredEvent(totem, registrar [20]byte) *types.Event {
	return &types.Event{
		Type: TypeTotemRegistered,
		Attributes: map[string]string{
			"totem":     addrAttr(totem),
			"registrar": addrAttr(registrar),
		},
	}
}

func newMeritCreditedEvent(totem, actor [20]byte, amount *big.Int, period uint64, source string) *types.Event {
	return &types.Event{
		Type: TypeMeritCredited,
		Attributes: map[string]string{
			"totem":  addrAttr(totem),
			"actor":  addrAttr(actor),
			"amount": amountAttr(amount),
			"period": fmt.Sprintf("%d", period),
			"source": source,
		},
	}
}

func newTotemBoostedEvent(booster, totem [20]byte, fee, refund *big.Int, period uint64) *types.Event {
	return &types.Event{
		Type: TypeTotemBoosted,
		Attributes: map[string]string{
			"booster": addrAttr(booster),
			"totem":   addrAttr(totem),
			"fee":     amountAttr(fee),
			"refund":  amountAttr(refund),
			"period":  fmt.Sprintf("%d", period),
		},
	}
}

func newEmissionReleasedEvent(period uint64, year int, amount *big.Int) *types.Event {
	return &types.Event{
		Type: TypeEmissionReleased,
		Attributes: map[string]string{
			"period": fmt.Sprintf("%d", period),
			"year":   fmt.Sprintf("%d", year),
			"amount": amountAttr(amount),
		},
	}
}

func newClaimSettledEvent(totem [20]byte, period uint64, points, total, payout *big.Int) *types.Event {
	return &types.Event{
		Type: TypeClaimSettled,
		Attributes: map[string]string{
			"totem":  addrAttr(totem),
			"period": fmt.Sprintf("%d", period),
			"points": amountAttr(points),
			"total":  amountAttr(total),
			"payout": amountAttr(payout),
		},
	}
}

func newKarmaAdjustedEvent(totem, actor [20]byte, delta int64, karma uint64) *types.Event {
	return &types.Event{
		Type: TypeKarmaAdjusted,
		Attributes: map[string]string{
			"totem": addrAttr(totem),
			"actor": addrAttr(actor),
			"delta": fmt.Sprintf("%d", delta),
			"karma": fmt.Sprintf("%d", karma),
		},
	}
}

func newBlacklistUpdatedEvent(totem, actor [20]byte, blacklisted bool) *types.Event {
	return &types.Event{
		Type: TypeBlacklistUpdated,
		Attributes: map[string]string{
			"totem":       addrAttr(totem),
			"actor":       addrAttr(actor),
			"blacklisted": fmt.Sprintf("%t", blacklisted),
		},
	}
}

func newParamUpdatedEvent(actor [20]byte, name, value string) *types.Event {
	return &types.Event{
		Type: TypeParamUpdated,
		Attributes: map[string]string{
			"actor": addrAttr(actor),
			"name":  name,
			"value": value,
		},
	}
}

func newRoleUpdatedEvent(actor, subject [20]byte, role string, granted bool) *types.Event {
	return &types.Event{
		Type: TypeRoleUpdated,
		Attributes: map[string]string{
			"actor":   addrAttr(actor),
			"subject": addrAttr(subject),
			"role":    role,
			"granted": fmt.Sprintf("%t", granted),
		},
	}
}
