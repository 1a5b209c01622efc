// Package repository holds the event catalog and user profiles the
// recommender reads from.
package repository

import (
	"context"

	"github.com/okian/gigmatch/internal/domain/model"
)

// Catalog provides read access to events, attendance history and profiles.
type Catalog interface {
	// Documents returns the corpus documents of every event in catalog order.
	Documents(ctx context.Context) ([]model.EventDocument, error)

	// Events returns every event in catalog order.
	Events(ctx context.Context) ([]model.EventSummary, error)

	// Event returns one event. Returns ErrNotFound if the id is unknown.
	Event(ctx context.Context, id string) (model.EventSummary, error)

	// History returns the ids of events the user is going or maybe going to,
	// past and upcoming, in catalog order without repeats.
	History(ctx context.Context, userID string) ([]string, error)

	// Profile returns the user's music tags.
	// Returns ErrNotFound if the user has no profile.
	Profile(ctx context.Context, userID string) (model.UserProfile, error)

	// Count returns the number of events in the catalog.
	Count(ctx context.Context) int
}
