package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("event not found")
	ErrInvalidLimit    = errors.New("invalid ranking limit")
	ErrInvalidKind     = errors.New("unrecognized signal kind")
	ErrMissingUserID   = errors.New("missing user id")
	ErrMissingEventID  = errors.New("missing event id")
	ErrScoreOutOfRange = errors.New("override value out of range")
	ErrDeltaOutOfRange = errors.New("boost delta out of range")
)
