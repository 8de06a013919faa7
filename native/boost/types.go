package boost

import (
	"math/big"

	"totemic/core/types"
)

// BoostState captures the streak bookkeeping for one (user, totem) pair. All
// timestamps are unix seconds; a StreakStart of zero means no active streak.
type BoostState struct {
	LastFreeBoost      uint64
	LastPremiumBoost   uint64
	StreakStart        uint64
	GraceDaysEarned    uint64
	GraceDaysWasted    uint64
	GraceFromStreak    uint64
	ReleasedBadgeCount uint64
}

// Clone produces a copy of the state.
func (s *BoostState) Clone() *BoostState {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// LastBoost returns the most recent boost timestamp of either kind.
func (s *BoostState) LastBoost() uint64 {
	if s.LastFreeBoost > s.LastPremiumBoost {
		return s.LastFreeBoost
	}
	return s.LastPremiumBoost
}

// PendingReward is the ephemeral record bridging a premium boost to its
// asynchronous randomness fulfillment. It is keyed by the oracle request id
// and deleted exactly once at fulfillment.
type PendingReward struct {
	User  [20]byte
	Totem [20]byte
}

// State describes the persistence the boost engine needs from the
// surrounding state implementation.
type State interface {
	BoostState(user, totem [20]byte) (*BoostState, error)
	PutBoostState(user, totem [20]byte, state *BoostState) error

	SignatureUsed(hash [32]byte) (bool, error)
	MarkSignatureUsed(hash [32]byte) error

	PendingRandomReward(requestID uint64) (*PendingReward, bool, error)
	PutPendingRandomReward(requestID uint64, reward *PendingReward) error
	DeletePendingRandomReward(requestID uint64) error
	PendingRandomRequestIDs() ([]uint64, error)

	BadgeCredits(user [20]byte, milestone uint64) (uint64, error)
	SetBadgeCredits(user [20]byte, milestone uint64, count uint64) error

	AppendEvent(evt *types.Event)
}

// MeritSink is the point-crediting surface of the merit ledger. Both boost
// rewards and randomized bonuses land through it.
type MeritSink interface {
	Credit(actor, totem [20]byte, amount *big.Int, source string) error
}

// Payments orders native-currency transfers. Custody is out of scope.
type Payments interface {
	Transfer(from, to [20]byte, amount *big.Int) error
}

// Coordinator is the external entropy oracle. RequestRandomness is
// fire-and-forget: the matching fulfillment arrives later through
// Engine.Fulfill, authenticated only by the coordinator identity and the
// request id.
type Coordinator interface {
	RequestRandomness() (uint64, error)
}

// Collectibles mints milestone badge collectibles. The collectible system
// itself is an external collaborator.
type Collectibles interface {
	MintBadge(user [20]byte, milestone uint64, uri string) error
}

// NoopCollectibles satisfies Collectibles while discarding all mints.
type NoopCollectibles struct{}

func (NoopCollectibles) MintBadge([20]byte, uint64, string) error { return nil }

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
