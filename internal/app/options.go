package service

import (
	"time"

	"github.com/okian/gigmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the source of "now" used to select upcoming events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimit caps the number of ranked entries returned; 0 means no cap.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.limit = n
		}
	}
}

// WithEventConcurrency bounds how many events are scored at once.
func WithEventConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventConcurrency = n
		}
	}
}

// WithParticipantConcurrency bounds history lookups in flight per event.
func WithParticipantConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.participantConcurrency = n
		}
	}
}

// WithGenrePenalty sets the weight of genres unique to one side.
func WithGenrePenalty(p float64) Option {
	return func(s *Service) {
		if p >= 0 {
			s.genrePenalty = p
		}
	}
}
