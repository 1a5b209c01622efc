// Package scoring ranks candidate events for a viewer by combining text
// similarity with the viewer's past events and genre, instrument and history
// overlap with each event's participants.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/textindex"
	"github.com/okian/gigmatch/internal/domain/types"
	"github.com/okian/gigmatch/pkg/logger"
	"github.com/okian/gigmatch/pkg/metrics"
)

// HistoryLookup returns the ids of every event a user is going to or maybe
// going to, past and upcoming.
type HistoryLookup interface {
	History(ctx context.Context, userID string) ([]string, error)
}

// Viewer is the person recommendations are computed for.
type Viewer struct {
	ID          string
	Events      []string // ids of the viewer's own events
	Genres      []string
	Instruments []string
}

// Scorer computes event scores. It holds no per-run state and is safe for
// concurrent use.
type Scorer struct {
	history                HistoryLookup
	genrePenalty           float64
	participantConcurrency int
	logger                 logger.Logger
}

// NewScorer creates a scorer that resolves participant histories through
// history.
func NewScorer(history HistoryLookup, opts ...Option) *Scorer {
	s := &Scorer{
		history:                history,
		genrePenalty:           DefaultGenrePenalty,
		participantConcurrency: defaultParticipantConcurrency,
		logger:                 logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the event's score. Any failure, including a panic, yields 0.
func (s *Scorer) Score(ctx context.Context, sess *Session, event model.EventSummary, viewer Viewer) float64 {
	b, _ := s.Rate(ctx, sess, event, viewer)
	return b.Total()
}

// Rate is Score with the component breakdown. ok is false when the event
// failed and its breakdown was zeroed.
func (s *Scorer) Rate(ctx context.Context, sess *Session, event model.EventSummary, viewer Viewer) (b types.Breakdown, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "event scoring panicked",
				logger.String("event_id", event.ID),
				logger.Any("panic", r),
			)
			metrics.RecordEventScoreFailure("panic")
			b, ok = types.Breakdown{}, false
		}
	}()

	b, err := s.Evaluate(ctx, sess, event, viewer)
	if err != nil {
		s.logger.Warn(ctx, "event scoring failed",
			logger.String("event_id", event.ID),
			logger.Error(err),
		)
		metrics.RecordEventScoreFailure(failureReason(err))
		return types.Breakdown{}, false
	}
	return b, true
}

// Evaluate computes the score components of event for viewer.
func (s *Scorer) Evaluate(ctx context.Context, sess *Session, event model.EventSummary, viewer Viewer) (types.Breakdown, error) {
	if sess == nil {
		return types.Breakdown{}, ErrNoSession
	}
	start := time.Now()

	var b types.Breakdown
	text, err := s.textSimilarity(ctx, sess, event.ID, viewer.Events)
	if err != nil {
		return types.Breakdown{}, err
	}
	b.Text = text

	participants := event.Participants()
	if len(participants) > 0 {
		b.Genre = GenreOverlap(viewer.Genres, participants, s.genrePenalty)
		b.Instrument = InstrumentOverlap(viewer.Instruments, participants)
		friend, err := s.friendOverlap(ctx, viewer.Events, participants)
		if err != nil {
			return types.Breakdown{}, err
		}
		b.Friend = friend
	}

	if math.IsNaN(b.Total()) || math.IsInf(b.Total(), 0) {
		return types.Breakdown{}, fmt.Errorf("%w: event %s", ErrNonFinite, event.ID)
	}
	metrics.RecordEventScored(float64(time.Since(start).Microseconds()) / 1000)
	return b, nil
}

// textSimilarity averages the cosine similarity between eventID and each of
// the viewer's events, leaving NaN results out. History events missing from
// the corpus are skipped.
func (s *Scorer) textSimilarity(ctx context.Context, sess *Session, eventID string, userEvents []string) (float64, error) {
	target, err := sess.Vector(eventID)
	if err != nil {
		return 0, err
	}

	var sum float64
	n := 0
	for _, id := range userEvents {
		vec, err := sess.Vector(id)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				s.logger.Debug(ctx, "history event not in corpus", logger.String("event_id", id))
				continue
			}
			return 0, err
		}
		sim := textindex.CosineSimilarity(target, vec)
		if math.IsNaN(sim) {
			metrics.RecordSimilarityDiscarded()
			continue
		}
		sum += sim
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

// friendOverlap fetches each participant's history concurrently and averages
// HistoryAffinity over all participants. A participant whose lookup fails
// contributes 0 but still counts. It goes one level deep: participants' own
// co-attendees are not consulted.
func (s *Scorer) friendOverlap(ctx context.Context, userEvents []string, participants []model.Participant) (float64, error) {
	user := newIDSet(userEvents)
	scores := make([]float64, len(participants))

	var g errgroup.Group
	g.SetLimit(s.participantConcurrency)
	for i, p := range participants {
		i, p := i, p
		g.Go(func() error {
			score, err := s.participantAffinity(ctx, user, p)
			if err != nil {
				metrics.RecordParticipantSkipped()
				s.logger.Warn(ctx, "participant skipped",
					logger.String("participant_id", p.ID),
					logger.Error(err),
				)
				return nil
			}
			scores[i] = score
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("friend overlap: %w", err)
	}

	if len(participants) == 0 {
		return 0, nil
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(participants)), nil
}

func (s *Scorer) participantAffinity(ctx context.Context, user map[string]struct{}, p model.Participant) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("history lookup panicked: %v", r)
		}
	}()
	if s.history == nil {
		return 0, errors.New("no history lookup configured")
	}
	history, err := s.history.History(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	return historyAffinity(user, newIDSet(history)), nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNonFinite):
		return "nan"
	case errors.Is(err, ErrUnknownEvent):
		return "unknown_event"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
