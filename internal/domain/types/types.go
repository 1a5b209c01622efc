// Package types contains common types used across the application
package types

import "time"

// Breakdown lists the four additive components of an event score.
type Breakdown struct {
	Text       float64 `json:"text"`
	Genre      float64 `json:"genre"`
	Instrument float64 `json:"instrument"`
	Friend     float64 `json:"friend"`
}

// Total is the event score: the plain sum of the components.
func (b Breakdown) Total() float64 {
	return b.Text + b.Genre + b.Instrument + b.Friend
}

// Entry represents one ranked event recommendation
type Entry struct {
	Rank      int       `json:"rank"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`

	// Failed marks an event whose scoring failed and fell back to 0.
	Failed bool `json:"failed,omitempty"`
}
