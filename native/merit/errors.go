package merit

import "errors"

var (
	ErrUnauthorized           = errors.New("merit: unauthorized")
	ErrInvalidPrincipal       = errors.New("merit: invalid principal")
	ErrAlreadyRegistered      = errors.New("merit: totem already registered")
	ErrNotRegistered          = errors.New("merit: totem not registered")
	ErrBlacklisted            = errors.New("merit: totem blacklisted")
	ErrZeroAmount             = errors.New("merit: amount must be positive")
	ErrInsufficientFee        = errors.New("merit: insufficient boost fee")
	ErrOutsideMythum          = errors.New("merit: outside mythum window")
	ErrNoTokenBalance         = errors.New("merit: caller holds no totem tokens")
	ErrAlreadyBoostedInPeriod = errors.New("merit: already boosted in period")
	ErrPeriodNotReached       = errors.New("merit: period not yet reached")
	ErrAlreadyClaimed         = errors.New("merit: period already claimed")
	ErrNothingToClaim         = errors.New("merit: nothing to claim")
)
