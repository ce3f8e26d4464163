package services

import (
	"errors"
	"fmt"
)

// Error kinds shared across services and the HTTP mapping layer. Specific
// errors wrap one of these so handlers can map by kind with errors.Is.
var (
	ErrNotFound   = errors.New("requested resource not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflicting state")
	ErrCapacity   = errors.New("capacity exceeded")
	ErrState      = errors.New("operation not allowed in current state")
)

var (
	// Validation.
	ErrTournamentNameRequired   = fmt.Errorf("%w: tournament name is required", ErrValidation)
	ErrTournamentDatesRequired  = fmt.Errorf("%w: registration, start and end dates are required", ErrValidation)
	ErrTournamentInvalidRegDate = fmt.Errorf("%w: registration must open before the start date", ErrValidation)
	ErrTournamentInvalidDates   = fmt.Errorf("%w: start date must be before end date", ErrValidation)
	ErrTournamentInvalidFee     = fmt.Errorf("%w: entry fee must be a non-negative integer string", ErrValidation)
	ErrTournamentInvalidSize    = fmt.Errorf("%w: max participants must be at least 2", ErrValidation)
	ErrSwissRoundsRequired      = fmt.Errorf("%w: swiss format requires a positive round count", ErrValidation)
	ErrAddressRequired          = fmt.Errorf("%w: player wallet address is required", ErrValidation)
	ErrBannerInvalidType        = fmt.Errorf("%w: banner must be a jpeg, png or webp image", ErrValidation)

	// Lookups.
	ErrTournamentNotFound  = fmt.Errorf("%w: tournament", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("%w: match", ErrNotFound)
	ErrBracketNotFound     = fmt.Errorf("%w: bracket", ErrNotFound)

	// Conflicts and capacity.
	ErrAlreadyRegistered = fmt.Errorf("%w: player is already registered for this tournament", ErrConflict)
	ErrResultAlreadySet  = fmt.Errorf("%w: match result already recorded", ErrConflict)
	ErrTournamentFull    = fmt.Errorf("%w: tournament registration is full", ErrCapacity)

	// Lifecycle state.
	ErrRegistrationNotOpen = fmt.Errorf("%w: tournament registration is not open", ErrState)
	ErrTournamentNotActive = fmt.Errorf("%w: tournament is not active", ErrState)
	ErrTournamentStarted   = fmt.Errorf("%w: tournament has already started", ErrState)
	ErrTournamentFinished  = fmt.Errorf("%w: tournament has already finished", ErrState)
	ErrNotEnoughPlayers    = fmt.Errorf("%w: not enough participants to start", ErrState)

	// Wallet outcomes.
	ErrEntryFeeNotRefunded = errors.New("entry fee refund failed")
	ErrPayoutFailed        = errors.New("prize payout failed")
)
