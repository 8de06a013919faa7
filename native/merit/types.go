package merit

import "math/big"

// Role identifiers checked by the authorization predicates. Roles are plain
// capability tags attached to caller addresses; there is no role registry
// beyond the stored set.
const (
	RoleAdmin     = "merit.admin"
	RoleRegistrar = "merit.registrar"
	RoleCrediter  = "merit.crediter"
)

// Source tags attached to point credits for auditability.
const (
	SourceAdmin       = "merit.admin"
	SourceBoost       = "merit.boost"
	SourceFreeBoost   = "boost.free"
	SourceRandomBonus = "boost.random"
)

// TotemAccount tracks the registration status, blacklist tag and karma
// counter for a registered totem. Karma is an admin-adjusted reputation score
// independent of merit points; it never goes below zero.
type TotemAccount struct {
	Registered  bool
	Blacklisted bool
	Karma       uint64
}

// Clone produces a copy of the account.
func (a *TotemAccount) Clone() *TotemAccount {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Bank abstracts the token balance and transfer mechanics the ledger relies
// on. Token custody itself is out of scope; the engine only orders transfers.
type Bank interface {
	// TokenBalance reports the holder's balance of the given token.
	TokenBalance(holder, token [20]byte) (*big.Int, error)
	// Transfer moves native currency between accounts.
	Transfer(from, to [20]byte, amount *big.Int) error
	// ReleaseVested pulls the amount of emission token out of the year's
	// vesting tranche into the ledger's distribution pool.
	ReleaseVested(year int, amount *big.Int) error
	// PayEmission sends emission tokens from the distribution pool to a totem.
	PayEmission(to [20]byte, amount *big.Int) error
}

// Totems resolves per-totem metadata owned by the totem factory collaborator.
type Totems interface {
	// TokenOf returns the address of the token paired with the totem.
	TokenOf(totem [20]byte) ([20]byte, error)
}

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
