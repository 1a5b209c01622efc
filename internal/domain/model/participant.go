package model

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Participant is a user's RSVP record with a snapshot of their profile tags.
// Absent tag arrays are nil and behave as empty.
type Participant struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url"`
	Instruments Tags   `json:"instruments,omitempty"`
	Genres      Tags   `json:"genres,omitempty"`
}

// Tags is a lenient string list. It accepts a JSON array, a JSON string that
// itself encodes an array, or null. Anything else decodes to an empty list
// rather than failing the enclosing record.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(data []byte) error {
	*t = decodeTags(bytes.TrimSpace(data), true)
	return nil
}

func decodeTags(data []byte, allowNested bool) Tags {
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		out := make(Tags, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case '"':
		if !allowNested {
			return nil
		}
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		return decodeTags(bytes.TrimSpace([]byte(inner)), false)
	default:
		return nil
	}
}

// participantKind discriminates the two wire shapes a roster entry can take.
type participantKind int

const (
	kindUnknown participantKind = iota
	kindObject
	kindEncoded
)

func classify(raw []byte) participantKind {
	if len(raw) == 0 {
		return kindUnknown
	}
	switch raw[0] {
	case '{':
		return kindObject
	case '"':
		return kindEncoded
	default:
		return kindUnknown
	}
}

// ParseParticipant normalizes one raw roster entry into a Participant.
// The entry is either a JSON object or a JSON string holding that object.
func ParseParticipant(raw []byte) (Participant, error) {
	raw = bytes.TrimSpace(raw)
	switch classify(raw) {
	case kindEncoded:
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Participant{}, fmt.Errorf("%w: %v", ErrInvalidParticipant, err)
		}
		inner = strings.TrimSpace(inner)
		if classify([]byte(inner)) != kindObject {
			return Participant{}, fmt.Errorf("%w: encoded value is not an object", ErrInvalidParticipant)
		}
		return parseObject([]byte(inner))
	case kindObject:
		return parseObject(raw)
	default:
		return Participant{}, fmt.Errorf("%w: unexpected shape", ErrInvalidParticipant)
	}
}

func parseObject(raw []byte) (Participant, error) {
	var p Participant
	if err := json.Unmarshal(raw, &p); err != nil {
		return Participant{}, fmt.Errorf("%w: %v", ErrInvalidParticipant, err)
	}
	if strings.TrimSpace(p.ID) == "" {
		return Participant{}, fmt.Errorf("%w: missing id", ErrInvalidParticipant)
	}
	return p, nil
}

// ParseParticipants parses a roster, returning the valid entries and the
// positions that were rejected.
func ParseParticipants(raws []json.RawMessage) ([]Participant, []int) {
	out := make([]Participant, 0, len(raws))
	var rejected []int
	for i, raw := range raws {
		p, err := ParseParticipant(raw)
		if err != nil {
			rejected = append(rejected, i)
			continue
		}
		out = append(out, p)
	}
	return out, rejected
}
