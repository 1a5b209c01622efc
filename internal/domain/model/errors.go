package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrInvalidParticipant = errors.New("invalid participant")
)
