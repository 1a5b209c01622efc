package snapshot

import "errors"

// ErrInvalidSnapshot reports a snapshot that cannot be loaded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")
