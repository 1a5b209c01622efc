package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidViewer = errors.New("invalid viewer id")
	ErrCatalog       = errors.New("catalog unavailable")
	errScoreFailed   = errors.New("event scoring failed")
)
