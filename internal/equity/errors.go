package equity

import "errors"

// Error taxonomy. Configuration and plan-consistency errors abort the
// run; they indicate an invalid plan, not a recoverable condition.
var (
	// ErrInvalidLot marks configuration errors raised at lot
	// construction (missing expiration, exercise metadata, etc).
	ErrInvalidLot = errors.New("invalid share lot")

	// ErrUnknownLot is returned when an action references a lot id
	// absent from the arena.
	ErrUnknownLot = errors.New("unknown lot")

	// ErrInsufficientShares is returned when an action requests more
	// shares than the lot currently holds.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrMissingStrike is returned when exercising a lot that carries
	// no strike price.
	ErrMissingStrike = errors.New("missing strike price")

	// ErrInvalidTransition is returned when an action is applied to a
	// lot in the wrong lifecycle state.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrInvalidPlan marks plan-level validation failures detected
	// before simulation begins.
	ErrInvalidPlan = errors.New("invalid plan")
)
