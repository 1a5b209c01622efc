package scoring

import "github.com/okian/gigmatch/pkg/logger"

const defaultParticipantConcurrency = 8

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithGenrePenalty sets the weight of genres unique to one side.
func WithGenrePenalty(penalty float64) Option {
	return func(s *Scorer) {
		if penalty >= 0 {
			s.genrePenalty = penalty
		}
	}
}

// WithParticipantConcurrency bounds the history lookups in flight per event.
func WithParticipantConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.participantConcurrency = n
		}
	}
}

// WithLogger sets a custom logger for the scorer.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}
