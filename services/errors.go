package services

import "errors"

// Errors shared between services and the HTTP error mapping.
var (
	ErrMatchNotFound = errors.New("match not found")
	ErrTeamNotFound  = errors.New("team not found")

	// Validation and business-rule errors. ErrEventValidation wraps the
	// specific model error so handlers can map the whole family to one
	// status while keeping the precise message.
	ErrEventValidation      = errors.New("event validation failed")
	ErrEventIndexOutOfRange = errors.New("invalid event index")
	ErrMatchSameTeam        = errors.New("home and away team must differ")
	ErrMatchInvalidStatus   = errors.New("invalid match status provided")
	ErrSquadPlayerNotInTeam = errors.New("squad contains a player outside the team roster")
)
