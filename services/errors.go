package services

import "errors"

// Shared error values used across services and mapped to HTTP statuses in
// the handlers package.
var (
	// Absent resources
	ErrNotFound       = errors.New("requested resource not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")

	// Validation and business rules
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotEnoughPlayers   = errors.New("a game needs at least 2 distinct players")
	ErrHostNotParticipant = errors.New("the host must be one of the game's players")
	ErrScoresIncomplete   = errors.New("every participant needs a score entry for the round")
	ErrScoreUnknownPlayer = errors.New("score entry references a player not in this game")

	// Lifecycle state
	ErrGameNotActive       = errors.New("game is not active")
	ErrGameAlreadyFinished = errors.New("game is already finished")
	ErrGameHasNoRounds     = errors.New("game has no rounds; discard it instead of finishing")
	ErrRoundConflict       = errors.New("round was submitted concurrently, please retry")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")

	// Uploads
	ErrAvatarUnsupportedType = errors.New("avatar must be a png or jpeg image")
)
