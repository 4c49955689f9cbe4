package model

import "errors"

// Sentinel error kinds raised by the engine. Callers match them with errors.Is.
var (
	ErrInvalidDeviceProfile = errors.New("invalid device profile")
	ErrInvalidPlayerStyle   = errors.New("invalid player style")
	ErrUnknownGame          = errors.New("unknown game")
	ErrUnknownMode          = errors.New("unknown game mode")
	// ErrInvalidGameProfile marks a defect in the game table itself.
	ErrInvalidGameProfile = errors.New("invalid game profile")
	ErrInvalidFeedback    = errors.New("invalid feedback")
	ErrResultNotFound     = errors.New("result not found")
)
