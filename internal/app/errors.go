package service

import "errors"

// Service level error kinds. Domain validation errors come from the model
// package and pass through wrapped.
var (
	// ErrBackpressure is returned when the store writer queue is full.
	ErrBackpressure = errors.New("store writer is saturated, retry later")
	// ErrStopped is returned when the service is not running.
	ErrStopped = errors.New("service is not running")
)
