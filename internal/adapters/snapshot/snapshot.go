// Package snapshot loads a JSON catalog snapshot into a repository.
//
// The document shape is:
//
//	{
//	  "events": [{"id", "title", "description", "start_time",
//	              "participants_going": [...], "participants_maybe": [...]}],
//	  "profiles": {"<user id>": {"genres": [...], "instruments": [...]}}
//	}
//
// Roster entries are participant objects or JSON strings holding one.
// Malformed tag fields decode as empty tags. An entry with no id, or of any
// other shape, is dropped from its roster and so does not count toward that
// event's participant averages.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/logger"
)

// Writer receives the decoded catalog.
type Writer interface {
	PutEvent(ctx context.Context, e model.EventSummary) error
	PutProfile(ctx context.Context, userID string, p model.UserProfile) error
}

// Result summarizes one load.
type Result struct {
	Events              int
	Profiles            int
	SkippedParticipants int
	Duration            time.Duration
}

type document struct {
	Events   []rawEvent                   `json:"events"`
	Profiles map[string]model.UserProfile `json:"profiles"`
}

type rawEvent struct {
	ID                string            `json:"id"`
	Title             *string           `json:"title"`
	Description       *string           `json:"description"`
	StartTime         time.Time         `json:"start_time"`
	ParticipantsGoing []json.RawMessage `json:"participants_going"`
	ParticipantsMaybe []json.RawMessage `json:"participants_maybe"`
}

// Loader decodes snapshots into a Writer.
type Loader struct {
	store  Writer
	logger logger.Logger
}

// NewLoader creates a loader that fills store.
func NewLoader(store Writer, opts ...Option) *Loader {
	ld := &Loader{store: store, logger: logger.Nop()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadFile loads the snapshot at path.
func (ld *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			ld.logger.Warn(ctx, "closing snapshot failed", logger.String("path", path), logger.Error(cerr))
		}
	}()
	return ld.Load(ctx, f)
}

// Load decodes a snapshot from r. Events are decoded and checked before any
// is written; the store's own rules, such as unique ids, apply on write.
func (ld *Loader) Load(ctx context.Context, r io.Reader) (*Result, error) {
	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	res := &Result{}
	events := make([]model.EventSummary, 0, len(doc.Events))
	for i, raw := range doc.Events {
		e, skipped, err := ld.decodeEvent(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %w", ErrInvalidSnapshot, i, err)
		}
		res.SkippedParticipants += skipped
		events = append(events, e)
	}

	for _, e := range events {
		if err := ld.store.PutEvent(ctx, e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		res.Events++
	}
	for id, p := range doc.Profiles {
		if err := ld.store.PutProfile(ctx, id, p); err != nil {
			return nil, fmt.Errorf("%w: profile %q: %w", ErrInvalidSnapshot, id, err)
		}
		res.Profiles++
	}

	res.Duration = time.Since(start)
	ld.logger.Info(ctx, "snapshot loaded",
		logger.Int("events", res.Events),
		logger.Int("profiles", res.Profiles),
		logger.Int("skipped_participants", res.SkippedParticipants),
		logger.Duration("duration", res.Duration),
	)
	return res, nil
}

func (ld *Loader) decodeEvent(ctx context.Context, raw rawEvent) (model.EventSummary, int, error) {
	if raw.ID == "" {
		return model.EventSummary{}, 0, fmt.Errorf("missing id")
	}
	if raw.Title == nil {
		return model.EventSummary{}, 0, fmt.Errorf("event %s: missing title", raw.ID)
	}
	if raw.Description == nil {
		return model.EventSummary{}, 0, fmt.Errorf("event %s: missing description", raw.ID)
	}

	going, badGoing := model.ParseParticipants(raw.ParticipantsGoing)
	maybe, badMaybe := model.ParseParticipants(raw.ParticipantsMaybe)
	if skipped := len(badGoing) + len(badMaybe); skipped > 0 {
		ld.logger.Warn(ctx, "participants skipped",
			logger.String("event_id", raw.ID),
			logger.Int("count", skipped),
		)
	}

	return model.EventSummary{
		ID:                raw.ID,
		Title:             *raw.Title,
		Description:       *raw.Description,
		StartTime:         raw.StartTime,
		ParticipantsGoing: going,
		ParticipantsMaybe: maybe,
	}, len(badGoing) + len(badMaybe), nil
}
