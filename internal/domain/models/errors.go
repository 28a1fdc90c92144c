package models

import "errors"

// Refresh failure classes. Wrapped with symbol/timeframe context at the call
// site; checked with errors.Is.
var (
	ErrFeedUnavailable    = errors.New("feed unavailable")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrComputationInvalid = errors.New("computation invalid")
	ErrWriteConflict      = errors.New("write conflict")
	ErrSignalNotFound     = errors.New("signal not found")
)
