package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidDocument = errors.New("invalid event document")
	ErrUnknownEvent    = errors.New("event not in session corpus")
	ErrNoSession       = errors.New("scoring session is nil")
	ErrNonFinite       = errors.New("non-finite score")
)
