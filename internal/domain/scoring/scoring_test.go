package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/scoring"
	"github.com/okian/gigmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

type fakeHistory struct {
	histories map[string][]string
	failing   map[string]bool
	panicking map[string]bool
}

func (f fakeHistory) History(_ context.Context, userID string) ([]string, error) {
	if f.panicking[userID] {
		panic("lookup exploded")
	}
	if f.failing[userID] {
		return nil, errors.New("lookup failed")
	}
	return f.histories[userID], nil
}

func corpus() []model.EventDocument {
	return []model.EventDocument{
		{ID: "P", Title: "Jazz jam", Description: "session downtown"},
		{ID: "X", Title: "Jazz jam", Description: "session downtown"},
		{ID: "Y", Title: "Rock show", Description: "tonight"},
		{ID: "Z", Title: "Folk songs", Description: "acoustic"},
	}
}

func TestInstrumentAffinity(t *testing.T) {
	Convey("Given instrument lists", t, func() {
		Convey("When the pair is in the table", func() {
			Convey("Then its weight is used in either order", func() {
				So(scoring.InstrumentAffinity([]string{"guitar"}, []string{"drums"}), ShouldAlmostEqual, 0.95, tolerance)
				So(scoring.InstrumentAffinity([]string{"Drums"}, []string{" guitar "}), ShouldAlmostEqual, 0.95, tolerance)
			})
		})

		Convey("When only some pairs are known", func() {
			Convey("Then unknown pairs are left out of the average", func() {
				got := scoring.InstrumentAffinity([]string{"guitar", "kazoo"}, []string{"piano", "vocals"})
				So(got, ShouldAlmostEqual, (0.8+0.9)/2, tolerance)
			})
		})

		Convey("When no pair is known", func() {
			Convey("Then the affinity is 0", func() {
				So(scoring.InstrumentAffinity([]string{"kazoo"}, []string{"theremin"}), ShouldEqual, 0.0)
				So(scoring.InstrumentAffinity(nil, []string{"guitar"}), ShouldEqual, 0.0)
			})
		})

		Convey("When the table is queried directly", func() {
			Convey("Then it is symmetric and lists its instruments", func() {
				for _, a := range scoring.KnownInstruments() {
					for _, b := range scoring.KnownInstruments() {
						ab, ok1 := scoring.Compatibility(a, b)
						ba, ok2 := scoring.Compatibility(b, a)
						So(ok1, ShouldBeTrue)
						So(ok2, ShouldBeTrue)
						So(ab, ShouldEqual, ba)
					}
				}
				So(len(scoring.KnownInstruments()), ShouldEqual, 8)
			})
		})
	})
}

func TestGenreAffinity(t *testing.T) {
	Convey("Given genre lists", t, func() {
		Convey("When they match ignoring case", func() {
			Convey("Then each shared genre counts one", func() {
				got := scoring.GenreAffinity([]string{"rock", "jazz"}, []string{"Rock", "JAZZ"}, scoring.DefaultGenrePenalty)
				So(got, ShouldAlmostEqual, 2.0, tolerance)
			})
		})

		Convey("When they are disjoint", func() {
			Convey("Then every genre on either side is penalized", func() {
				got := scoring.GenreAffinity([]string{"rock"}, []string{"jazz"}, scoring.DefaultGenrePenalty)
				So(got, ShouldAlmostEqual, -0.4, tolerance)
			})
		})

		Convey("When a genre list repeats a genre", func() {
			Convey("Then the repeat counts once on either side", func() {
				got := scoring.GenreAffinity([]string{"rock", "rock", "jazz"}, []string{"Rock ", "rock"}, scoring.DefaultGenrePenalty)
				So(got, ShouldAlmostEqual, 1.0-0.2, tolerance)
				So(scoring.GenreAffinity([]string{"rock", "rock"}, []string{"rock"}, scoring.DefaultGenrePenalty), ShouldAlmostEqual, 1.0, tolerance)
			})
		})

		Convey("When averaging over participants", func() {
			participants := []model.Participant{
				{ID: "a", Genres: model.Tags{"rock"}},
				{ID: "b", Genres: model.Tags{"jazz"}},
			}
			Convey("Then the average uses the participant count", func() {
				got := scoring.GenreOverlap([]string{"rock"}, participants, scoring.DefaultGenrePenalty)
				So(got, ShouldAlmostEqual, (1.0-0.4)/2, tolerance)
				So(scoring.GenreOverlap([]string{"rock"}, nil, scoring.DefaultGenrePenalty), ShouldEqual, 0.0)
			})
		})
	})
}

func TestHistoryAffinity(t *testing.T) {
	Convey("Given two event histories", t, func() {
		Convey("When half of the larger side is shared", func() {
			Convey("Then the affinity is sqrt(1/2)", func() {
				got := scoring.HistoryAffinity([]string{"a", "b"}, []string{"a", "c"})
				So(got, ShouldAlmostEqual, math.Sqrt(0.5), tolerance)
			})
		})

		Convey("When a short participant history is fully shared with a longer viewer history", func() {
			Convey("Then the longer side sets the denominator", func() {
				got := scoring.HistoryAffinity([]string{"a", "b", "c", "d"}, []string{"a", "b"})
				So(got, ShouldAlmostEqual, math.Sqrt(0.5), tolerance)
			})
		})

		Convey("When duplicate ids appear", func() {
			Convey("Then they are counted once", func() {
				got := scoring.HistoryAffinity([]string{"a", "a"}, []string{"a"})
				So(got, ShouldAlmostEqual, 1.0, tolerance)
			})
		})

		Convey("When both sides are empty", func() {
			Convey("Then the affinity is 0", func() {
				So(scoring.HistoryAffinity(nil, nil), ShouldEqual, 0.0)
			})
		})
	})
}

func TestSession(t *testing.T) {
	Convey("Given event documents", t, func() {
		Convey("When ids are unique", func() {
			sess, err := scoring.NewSession(corpus())
			So(err, ShouldBeNil)

			Convey("Then positions follow input order", func() {
				So(sess.Len(), ShouldEqual, 4)
				pos, ok := sess.Position("Y")
				So(ok, ShouldBeTrue)
				So(pos, ShouldEqual, 2)
			})

			Convey("Then unknown events are rejected", func() {
				_, err := sess.Vector("nope")
				So(errors.Is(err, scoring.ErrUnknownEvent), ShouldBeTrue)
			})
		})

		Convey("When an id repeats or is empty", func() {
			Convey("Then the session is rejected", func() {
				docs := append(corpus(), model.EventDocument{ID: "P", Title: "again"})
				_, err := scoring.NewSession(docs)
				So(errors.Is(err, scoring.ErrInvalidDocument), ShouldBeTrue)

				_, err = scoring.NewSession([]model.EventDocument{{Title: "anon"}})
				So(errors.Is(err, scoring.ErrInvalidDocument), ShouldBeTrue)
			})
		})
	})
}

func TestScorer(t *testing.T) {
	Convey("Given a session and a viewer who attended P", t, func() {
		ctx := context.Background()
		sess, err := scoring.NewSession(corpus())
		So(err, ShouldBeNil)
		viewer := scoring.Viewer{ID: "me", Events: []string{"P"}}
		scorer := scoring.NewScorer(fakeHistory{})

		Convey("When candidates have empty rosters", func() {
			x := scorer.Score(ctx, sess, model.EventSummary{ID: "X"}, viewer)
			y := scorer.Score(ctx, sess, model.EventSummary{ID: "Y"}, viewer)
			z := scorer.Score(ctx, sess, model.EventSummary{ID: "Z"}, viewer)

			Convey("Then the textual twin scores highest", func() {
				So(x, ShouldAlmostEqual, 1.0, tolerance)
				So(y, ShouldAlmostEqual, 0.0, tolerance)
				So(z, ShouldAlmostEqual, 0.0, tolerance)
			})
		})

		Convey("When the viewer has no usable history", func() {
			Convey("Then the text component is 0", func() {
				b, err := scorer.Evaluate(ctx, sess, model.EventSummary{ID: "X"}, scoring.Viewer{Events: []string{"gone"}})
				So(err, ShouldBeNil)
				So(b.Text, ShouldEqual, 0.0)
			})
		})

		Convey("When some participant lookups fail or panic", func() {
			history := fakeHistory{
				histories: map[string][]string{"friend": {"P"}},
				failing:   map[string]bool{"broken": true},
				panicking: map[string]bool{"wild": true},
			}
			scorer := scoring.NewScorer(history, scoring.WithParticipantConcurrency(2))
			event := model.EventSummary{
				ID:                "Y",
				ParticipantsGoing: []model.Participant{{ID: "friend"}, {ID: "broken"}},
				ParticipantsMaybe: []model.Participant{{ID: "wild"}},
			}

			Convey("Then they add 0 but still count in the friend average", func() {
				b, err := scorer.Evaluate(ctx, sess, event, viewer)
				So(err, ShouldBeNil)
				So(b.Friend, ShouldAlmostEqual, 1.0/3, tolerance)
				So(b.Genre, ShouldEqual, 0.0)
				So(b.Instrument, ShouldEqual, 0.0)
			})
		})

		Convey("When one of two participant lookups fails", func() {
			history := fakeHistory{
				histories: map[string][]string{"friend": {"P"}},
				failing:   map[string]bool{"broken": true},
			}
			scorer := scoring.NewScorer(history)
			event := model.EventSummary{
				ID:                "Y",
				ParticipantsGoing: []model.Participant{{ID: "friend"}, {ID: "broken"}},
			}

			Convey("Then the friend average divides by the whole roster", func() {
				b, err := scorer.Evaluate(ctx, sess, event, viewer)
				So(err, ShouldBeNil)
				So(b.Friend, ShouldAlmostEqual, 0.5, tolerance)
			})
		})

		Convey("When participants share tags with the viewer", func() {
			viewer := scoring.Viewer{
				ID:          "me",
				Events:      []string{"P"},
				Genres:      []string{"jazz"},
				Instruments: []string{"guitar"},
			}
			event := model.EventSummary{
				ID: "Z",
				ParticipantsGoing: []model.Participant{
					{ID: "a", Genres: model.Tags{"jazz"}, Instruments: model.Tags{"drums"}},
				},
			}

			Convey("Then every component adds into the total", func() {
				b, err := scorer.Evaluate(ctx, sess, event, viewer)
				So(err, ShouldBeNil)
				So(b.Genre, ShouldAlmostEqual, 1.0, tolerance)
				So(b.Instrument, ShouldAlmostEqual, 0.95, tolerance)
				So(b.Total(), ShouldAlmostEqual, b.Text+b.Genre+b.Instrument+b.Friend, tolerance)
			})
		})

		Convey("When a custom genre penalty is set", func() {
			scorer := scoring.NewScorer(fakeHistory{}, scoring.WithGenrePenalty(0.5))
			event := model.EventSummary{
				ID:                "Z",
				ParticipantsGoing: []model.Participant{{ID: "a", Genres: model.Tags{"folk"}}},
			}

			Convey("Then it weighs unique genres", func() {
				b, err := scorer.Evaluate(ctx, sess, event, scoring.Viewer{Genres: []string{"rock"}})
				So(err, ShouldBeNil)
				So(b.Genre, ShouldAlmostEqual, -1.0, tolerance)
			})
		})

		Convey("When the event is not in the session", func() {
			Convey("Then evaluation fails and the score degrades to 0", func() {
				_, err := scorer.Evaluate(ctx, sess, model.EventSummary{ID: "missing"}, viewer)
				So(errors.Is(err, scoring.ErrUnknownEvent), ShouldBeTrue)
				So(scorer.Score(ctx, sess, model.EventSummary{ID: "missing"}, viewer), ShouldEqual, 0.0)

				b, ok := scorer.Rate(ctx, sess, model.EventSummary{ID: "missing"}, viewer)
				So(ok, ShouldBeFalse)
				So(b, ShouldResemble, types.Breakdown{})
			})
		})

		Convey("When there is no session", func() {
			Convey("Then evaluation reports it", func() {
				_, err := scorer.Evaluate(ctx, nil, model.EventSummary{ID: "X"}, viewer)
				So(errors.Is(err, scoring.ErrNoSession), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled during the friend lookups", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			event := model.EventSummary{ID: "X", ParticipantsGoing: []model.Participant{{ID: "friend"}}}

			Convey("Then the event scores 0", func() {
				_, err := scorer.Evaluate(cctx, sess, event, viewer)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(scorer.Score(cctx, sess, event, viewer), ShouldEqual, 0.0)
			})
		})
	})
}
