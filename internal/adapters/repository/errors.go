package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidLimit  = errors.New("invalid result limit")
	ErrDuplicate     = errors.New("duplicate record id")
	ErrClosed        = errors.New("store closed")
	ErrUnknownDriver = errors.New("unknown store driver")
)
