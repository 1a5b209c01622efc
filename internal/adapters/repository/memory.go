package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/logger"
)

// MemoryStore is an in-memory Catalog. Events keep their insertion order,
// which is also the corpus order seen by the recommender.
type MemoryStore struct {
	mu sync.RWMutex

	events []model.EventSummary
	byID   map[string]int
	// history maps a user id to the positions of the events they attend.
	history  map[string][]int
	profiles map[string]model.UserProfile

	logger logger.Logger
}

// Compile-time check.
var _ Catalog = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:     make(map[string]int),
		history:  make(map[string][]int),
		profiles: make(map[string]model.UserProfile),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutEvent appends an event. Ids must be non-empty and unique.
func (s *MemoryStore) PutEvent(ctx context.Context, e model.EventSummary) error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEvent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byID[e.ID]; dup {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidEvent, e.ID)
	}
	pos := len(s.events)
	s.events = append(s.events, e)
	s.byID[e.ID] = pos

	seen := make(map[string]struct{})
	for _, p := range e.Participants() {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		s.history[p.ID] = append(s.history[p.ID], pos)
	}
	s.logger.Debug(ctx, "event stored",
		logger.String("event_id", e.ID),
		logger.Int("participants", len(seen)),
	)
	return nil
}

// PutProfile sets or replaces a user's profile.
func (s *MemoryStore) PutProfile(_ context.Context, userID string, p model.UserProfile) error {
	if userID == "" {
		return ErrInvalidUser
	}
	s.mu.Lock()
	s.profiles[userID] = p
	s.mu.Unlock()
	return nil
}

// Documents implements Catalog.
func (s *MemoryStore) Documents(_ context.Context) ([]model.EventDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.EventDocument, len(s.events))
	for i, e := range s.events {
		out[i] = e.Document()
	}
	return out, nil
}

// Events implements Catalog.
func (s *MemoryStore) Events(_ context.Context) ([]model.EventSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.EventSummary, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Event implements Catalog.
func (s *MemoryStore) Event(_ context.Context, id string) (model.EventSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.byID[id]
	if !ok {
		return model.EventSummary{}, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	return s.events[pos], nil
}

// History implements Catalog. Unknown users have an empty history.
func (s *MemoryStore) History(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := s.history[userID]
	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = s.events[pos].ID
	}
	return out, nil
}

// Profile implements Catalog.
func (s *MemoryStore) Profile(_ context.Context, userID string) (model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.UserProfile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	return p, nil
}

// Count implements Catalog.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
