// Package model contains domain models passed between layers.
package model

import "time"

// EventDocument is the text view of an event used to build the TF-IDF corpus.
type EventDocument struct {
	ID          string
	Title       string
	Description string
}

// Text returns the document body fed to the index: title, a space, description.
func (d EventDocument) Text() string {
	return d.Title + " " + d.Description
}

// EventSummary is the scoring unit: an event with its RSVP rosters.
type EventSummary struct {
	ID                string
	Title             string
	Description       string
	StartTime         time.Time
	ParticipantsGoing []Participant
	ParticipantsMaybe []Participant
}

// Document projects the event onto its corpus document.
func (e EventSummary) Document() EventDocument {
	return EventDocument{ID: e.ID, Title: e.Title, Description: e.Description}
}

// Participants returns going followed by maybe as a fresh slice.
func (e EventSummary) Participants() []Participant {
	out := make([]Participant, 0, len(e.ParticipantsGoing)+len(e.ParticipantsMaybe))
	out = append(out, e.ParticipantsGoing...)
	return append(out, e.ParticipantsMaybe...)
}

// IsUpcoming reports whether the event starts strictly after now.
func (e EventSummary) IsUpcoming(now time.Time) bool {
	return e.StartTime.After(now)
}

// UserProfile holds the viewer's music tags.
type UserProfile struct {
	Genres      Tags `json:"genres"`
	Instruments Tags `json:"instruments"`
}
