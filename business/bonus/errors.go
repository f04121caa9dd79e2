package bonus

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrBonusNotFound  = errors.New("bonus not found")
	ErrClaimNotFound  = errors.New("bonus claim not found")

	// claim rejections: business rule failures, returned as ordinary results
	ErrBonusInactive      = errors.New("bonus is not active")
	ErrAlreadyClaimed     = errors.New("player already holds an open claim for this bonus")
	ErrSegmentNotTargeted = errors.New("bonus does not target the player's segment")
	ErrClaimNotOpen       = errors.New("claim is already completed or expired")
	ErrClaimExpired       = errors.New("claim has expired")
	ErrDepositTooLow      = errors.New("deposit amount below bonus minimum")
	ErrDepositNotExpected = errors.New("claim is not waiting for a deposit")
	ErrNoWageringRequired = errors.New("bonus has no wagering requirement")
	ErrProgressConflict   = errors.New("wagering progress lower than stored value")
	ErrNoBonusAvailable   = errors.New("no appropriate bonus available")
)

// IsRejection reports whether err is a business-rule rejection rather than a
// failure: handlers map these to a negative result, not a 5xx.
func IsRejection(err error) bool {
	for _, rejection := range []error{
		ErrBonusInactive,
		ErrAlreadyClaimed,
		ErrSegmentNotTargeted,
		ErrClaimNotOpen,
		ErrClaimExpired,
		ErrDepositTooLow,
		ErrDepositNotExpected,
		ErrNoWageringRequired,
		ErrProgressConflict,
		ErrNoBonusAvailable,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}
	return false
}
