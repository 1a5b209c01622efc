package repository

import (
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCapacity preallocates room for n events.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.events = make([]model.EventSummary, 0, n)
			s.byID = make(map[string]int, n)
		}
	}
}
