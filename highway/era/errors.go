package era

import "errors"

// Validation errors returned by Runtime.Validate. These are reported as
// data, never used to crash the caller.
var (
	// ErrUnbondedValidator is returned when the message's signer is not in
	// the era's bonded-validator snapshot.
	ErrUnbondedValidator = errors.New("era: validator not bonded in this era")
	// ErrRoundOutOfBounds is returned when the message's round id falls
	// outside [era.StartTick, era.EndTick).
	ErrRoundOutOfBounds = errors.New("era: round id outside era bounds")
	// ErrWrongEra is returned when the message's era key block hash does
	// not match this runtime's era.
	ErrWrongEra = errors.New("era: message targets a different era")
	// ErrParentNotInEraOrParent is returned when a message's parent hash
	// does not resolve to a message this runtime can trace: neither a
	// message already seen within this era, nor the switch block that
	// opened this era (the anchor for the era's first messages).
	ErrParentNotInEraOrParent = errors.New("era: parent message not in this era or its parent")
	// ErrDoubleRound is returned when the same validator has already
	// produced a message of the same kind in the same round.
	ErrDoubleRound = errors.New("era: validator already acted in this round")
)
