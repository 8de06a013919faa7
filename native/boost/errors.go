package boost

import "errors"

var (
	ErrSignerNotConfigured      = errors.New("boost: voucher signer not configured")
	ErrSignatureExpired         = errors.New("boost: signature outside validity window")
	ErrSignatureAlreadyUsed     = errors.New("boost: signature already used")
	ErrInvalidSignature         = errors.New("boost: invalid signature")
	ErrTooSoon                  = errors.New("boost: boost interval not elapsed")
	ErrInsufficientPayment      = errors.New("boost: insufficient payment")
	ErrTreasuryNotConfigured    = errors.New("boost: treasury not configured")
	ErrCoordinatorNotConfigured = errors.New("boost: coordinator not configured")
	ErrOnlyCoordinator          = errors.New("boost: only coordinator can fulfill")
	ErrUnknownRequest           = errors.New("boost: unknown request id")
	ErrEmptyRandomWords         = errors.New("boost: empty random words")
	ErrUnknownMilestone         = errors.New("boost: unknown milestone")
	ErrNoBadgeCredit            = errors.New("boost: no badge credit available")
)
