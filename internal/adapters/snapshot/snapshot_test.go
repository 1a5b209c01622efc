package snapshot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/adapters/snapshot"
	"github.com/okian/gigmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const validSnapshot = `{
  "events": [
    {
      "id": "e1",
      "title": "Jazz jam",
      "description": "session downtown",
      "start_time": "2026-01-10T20:00:00Z",
      "participants_going": [
        {"id": "ana", "full_name": "Ana", "genres": ["jazz"], "instruments": "[\"sax\"]"},
        "{\"id\": \"bo\", \"genres\": null}",
        42,
        {"full_name": "no id"}
      ],
      "participants_maybe": ["{\"id\": \"cy\", \"instruments\": 7}"]
    },
    {
      "id": "e2",
      "title": "Rock show",
      "description": "",
      "start_time": "2026-02-01T21:00:00Z"
    }
  ],
  "profiles": {
    "ana": {"genres": ["jazz", "funk"], "instruments": ["saxophone"]}
  }
}`

func TestLoader(t *testing.T) {
	Convey("Given a loader over a memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		loader := snapshot.NewLoader(store)

		Convey("When a valid snapshot is loaded", func() {
			res, err := loader.Load(ctx, strings.NewReader(validSnapshot))
			So(err, ShouldBeNil)

			Convey("Then events and profiles reach the store", func() {
				So(res.Events, ShouldEqual, 2)
				So(res.Profiles, ShouldEqual, 1)
				So(res.SkippedParticipants, ShouldEqual, 2)
				So(store.Count(ctx), ShouldEqual, 2)

				p, err := store.Profile(ctx, "ana")
				So(err, ShouldBeNil)
				So(p.Instruments, ShouldResemble, model.Tags{"saxophone"})
			})

			Convey("Then rosters are normalized", func() {
				e, err := store.Event(ctx, "e1")
				So(err, ShouldBeNil)
				So(len(e.ParticipantsGoing), ShouldEqual, 2)
				So(e.ParticipantsGoing[0].Instruments, ShouldResemble, model.Tags{"sax"})
				So(e.ParticipantsGoing[1].ID, ShouldEqual, "bo")
				So(e.ParticipantsGoing[1].Genres, ShouldBeEmpty)
				So(len(e.ParticipantsMaybe), ShouldEqual, 1)
				So(e.ParticipantsMaybe[0].Instruments, ShouldBeEmpty)

				h, err := store.History(ctx, "cy")
				So(err, ShouldBeNil)
				So(h, ShouldResemble, []string{"e1"})
			})

			Convey("Then an empty description is kept", func() {
				e, err := store.Event(ctx, "e2")
				So(err, ShouldBeNil)
				So(e.Description, ShouldEqual, "")
				So(e.StartTime.Year(), ShouldEqual, 2026)
			})
		})

		Convey("When an event has no title", func() {
			_, err := loader.Load(ctx, strings.NewReader(`{"events":[{"id":"e1","description":"x"}]}`))

			Convey("Then the snapshot is rejected and nothing is stored", func() {
				So(errors.Is(err, snapshot.ErrInvalidSnapshot), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When an event has no description", func() {
			_, err := loader.Load(ctx, strings.NewReader(`{"events":[{"id":"e1","title":"x"}]}`))

			Convey("Then the snapshot is rejected", func() {
				So(errors.Is(err, snapshot.ErrInvalidSnapshot), ShouldBeTrue)
			})
		})

		Convey("When event ids repeat", func() {
			_, err := loader.Load(ctx, strings.NewReader(`{"events":[
				{"id":"e1","title":"a","description":"b"},
				{"id":"e1","title":"c","description":"d"}]}`))

			Convey("Then the snapshot is rejected", func() {
				So(errors.Is(err, snapshot.ErrInvalidSnapshot), ShouldBeTrue)
				So(errors.Is(err, repository.ErrInvalidEvent), ShouldBeTrue)
			})
		})

		Convey("When the input is not JSON", func() {
			_, err := loader.Load(ctx, strings.NewReader(`{"events": [`))

			Convey("Then the snapshot is rejected", func() {
				So(errors.Is(err, snapshot.ErrInvalidSnapshot), ShouldBeTrue)
			})
		})

		Convey("When loading from a file", func() {
			path := filepath.Join(t.TempDir(), "catalog.json")
			So(os.WriteFile(path, []byte(validSnapshot), 0o600), ShouldBeNil)

			res, err := loader.LoadFile(ctx, path)

			Convey("Then it behaves like Load", func() {
				So(err, ShouldBeNil)
				So(res.Events, ShouldEqual, 2)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := loader.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.json"))

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}
