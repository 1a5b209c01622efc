// Package service ranks upcoming events for a viewer on top of the event
// catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/adapters/worker"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/scoring"
	"github.com/okian/gigmatch/internal/domain/types"
	"github.com/okian/gigmatch/pkg/logger"
	"github.com/okian/gigmatch/pkg/metrics"
)

// Service computes recommendations. It is safe for concurrent use; every
// call builds its own scoring session.
type Service struct {
	catalog repository.Catalog
	scorer  *scoring.Scorer
	pool    *worker.Pool

	now                    func() time.Time
	limit                  int
	eventConcurrency       int
	participantConcurrency int
	genrePenalty           float64

	logger logger.Logger
}

// New constructs a Service reading from catalog.
func New(catalog repository.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:                catalog,
		now:                    time.Now,
		eventConcurrency:       runtime.NumCPU() * 4,
		participantConcurrency: 8,
		genrePenalty:           scoring.DefaultGenrePenalty,
		logger:                 logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.scorer = scoring.NewScorer(catalog,
		scoring.WithGenrePenalty(s.genrePenalty),
		scoring.WithParticipantConcurrency(s.participantConcurrency),
		scoring.WithLogger(s.logger.Named("scoring")),
	)
	s.pool = worker.NewPool(s.eventConcurrency,
		worker.WithName("event-scoring"),
		worker.WithLogger(s.logger.Named("worker")),
	)
	return s
}

// Recommend ranks every upcoming event for viewerID, best first. An event
// whose scoring fails stays in the list with score 0.
func (s *Service) Recommend(ctx context.Context, viewerID string) ([]types.Entry, error) {
	start := time.Now()
	entries, err := s.recommend(ctx, viewerID)
	ms := float64(time.Since(start).Microseconds()) / 1000

	switch {
	case err == nil:
		metrics.RecordRecommendation("ok", ms)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.RecordRecommendation("cancelled", ms)
	default:
		metrics.RecordRecommendation("error", ms)
	}
	return entries, err
}

func (s *Service) recommend(ctx context.Context, viewerID string) ([]types.Entry, error) {
	if viewerID == "" {
		return nil, ErrInvalidViewer
	}
	log := s.logger.With(
		logger.String("session_id", uuid.NewString()),
		logger.String("viewer_id", viewerID),
	)

	sess, err := s.buildSession(ctx)
	if err != nil {
		return nil, err
	}

	viewer, err := s.loadViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	all, err := s.catalog.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	now := s.now()
	upcoming := make([]model.EventSummary, 0, len(all))
	for _, e := range all {
		if e.IsUpcoming(now) {
			upcoming = append(upcoming, e)
		}
	}

	entries := make([]types.Entry, len(upcoming))
	errs := s.pool.Run(ctx, len(upcoming), func(ctx context.Context, i int) error {
		b, ok := s.scorer.Rate(ctx, sess, upcoming[i], viewer)
		entries[i].Score = b.Total()
		entries[i].Breakdown = b
		if !ok {
			return errScoreFailed
		}
		return nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for i, e := range upcoming {
		entries[i].EventID = e.ID
		entries[i].Title = e.Title
		entries[i].StartTime = e.StartTime
		if errs[i] != nil {
			entries[i].Score = 0
			entries[i].Breakdown = types.Breakdown{}
			entries[i].Failed = true
			failed++
		}
	}

	rank(entries)
	if s.limit > 0 && len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	log.Info(ctx, "recommendations ranked",
		logger.Int("corpus", sess.Len()),
		logger.Int("upcoming", len(upcoming)),
		logger.Int("failed", failed),
		logger.Int("returned", len(entries)),
	)
	return entries, nil
}

func (s *Service) buildSession(ctx context.Context) (*scoring.Session, error) {
	start := time.Now()
	docs, err := s.catalog.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	sess, err := scoring.NewSession(docs)
	if err != nil {
		return nil, err
	}
	metrics.RecordSessionBuilt(
		float64(time.Since(start).Microseconds())/1000,
		sess.Len(),
		sess.Vocabulary().Len(),
	)
	return sess, nil
}

// loadViewer gathers the viewer's tags and events. A viewer without a
// profile gets empty tags.
func (s *Service) loadViewer(ctx context.Context, viewerID string) (scoring.Viewer, error) {
	profile, err := s.catalog.Profile(ctx, viewerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return scoring.Viewer{}, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	history, err := s.catalog.History(ctx, viewerID)
	if err != nil {
		return scoring.Viewer{}, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	return scoring.Viewer{
		ID:          viewerID,
		Events:      history,
		Genres:      profile.Genres,
		Instruments: profile.Instruments,
	}, nil
}

// rank sorts by score descending, keeping catalog order among ties, and
// numbers entries from 1.
func rank(entries []types.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
