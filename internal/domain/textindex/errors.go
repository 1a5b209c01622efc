package textindex

import "errors"

// Sentinel kinds for index errors.
var (
	ErrUnknownDocument = errors.New("unknown document")
)
