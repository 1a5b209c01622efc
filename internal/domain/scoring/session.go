package scoring

import (
	"fmt"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/textindex"
)

// Session is the read-only corpus state shared by every score of one
// recommendation run: the TF-IDF index, its vocabulary and the event id to
// document position map. It is never mutated after NewSession returns.
type Session struct {
	index      *textindex.Index
	vocabulary *textindex.Vocabulary
	positions  map[string]int
}

// NewSession indexes docs in order. Every document needs a unique id.
func NewSession(docs []model.EventDocument) (*Session, error) {
	s := &Session{
		index:     textindex.NewIndex(),
		positions: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidDocument)
		}
		if _, dup := s.positions[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidDocument, d.ID)
		}
		s.positions[d.ID] = s.index.AddDocument(d.Text())
	}
	s.vocabulary = textindex.NewVocabulary(s.index)
	return s, nil
}

// Index returns the session's TF-IDF index.
func (s *Session) Index() *textindex.Index { return s.index }

// Vocabulary returns the session's vocabulary.
func (s *Session) Vocabulary() *textindex.Vocabulary { return s.vocabulary }

// Position returns the document position of eventID.
func (s *Session) Position(eventID string) (int, bool) {
	pos, ok := s.positions[eventID]
	return pos, ok
}

// Len returns the number of indexed documents.
func (s *Session) Len() int { return s.index.Len() }

// Vector builds the TF-IDF vector of eventID over the session vocabulary.
func (s *Session) Vector(eventID string) ([]float64, error) {
	pos, ok := s.positions[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}
	return textindex.BuildVector(pos, s.vocabulary, s.index)
}
