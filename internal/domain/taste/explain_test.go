package taste

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/feedrank/internal/domain/model"
)

type stubTitles struct {
	byID map[string]model.Event
}

func (s *stubTitles) Get(ctx context.Context, id string) (model.Event, error) {
	return s.byID[id], nil
}

func TestResolverNearestLiked(t *testing.T) {
	Convey("Given an explanation resolver", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

		embeddings := &stubEmbeddings{byID: map[string][]float64{
			"liked-close": {1, 0},
			"liked-far":   {0, 1},
		}}
		titles := &stubTitles{byID: map[string]model.Event{
			"liked-close": {ID: "liked-close", Title: "Meteor shower"},
			"liked-far":   {ID: "liked-far", Title: "Jazz night"},
		}}
		resolver := NewResolver(embeddings, titles)

		liked := []model.Signal{
			{EventID: "liked-close", Kind: model.KindFavorite, Active: true, CreatedAt: now},
			{EventID: "liked-far", Kind: model.KindFavorite, Active: true, CreatedAt: now},
		}

		Convey("When resolving against a nearby embedding", func() {
			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{0.9, 0.1}, liked)

			Convey("Then the most similar liked event wins", func() {
				So(err, ShouldBeNil)
				So(explanation, ShouldNotBeNil)
				So(explanation.EventID, ShouldEqual, "liked-close")
				So(explanation.Title, ShouldEqual, "Meteor shower")
			})
		})

		Convey("When two liked events are equally similar", func() {
			embeddings.byID["liked-far"] = []float64{1, 0}
			recent := []model.Signal{
				{EventID: "liked-close", Kind: model.KindFavorite, Active: true, CreatedAt: now},
				{EventID: "liked-far", Kind: model.KindFavorite, Active: true, CreatedAt: now.Add(time.Hour)},
			}

			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{1, 0}, recent)

			Convey("Then the tie breaks toward the most recent signal", func() {
				So(err, ShouldBeNil)
				So(explanation, ShouldNotBeNil)
				So(explanation.EventID, ShouldEqual, "liked-far")
			})
		})

		Convey("When a liked event has no embedding", func() {
			withGhost := append(liked, model.Signal{
				EventID: "ghost", Kind: model.KindFavorite, Active: true, CreatedAt: now.Add(time.Hour),
			})

			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{0.9, 0.1}, withGhost)

			Convey("Then it is skipped rather than breaking resolution", func() {
				So(err, ShouldBeNil)
				So(explanation, ShouldNotBeNil)
				So(explanation.EventID, ShouldEqual, "liked-close")
			})
		})

		Convey("When no liked event has an embedding", func() {
			bare := &stubEmbeddings{byID: map[string][]float64{}}
			resolver = NewResolver(bare, titles)

			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{1, 0}, liked)

			Convey("Then there is no explanation and no error", func() {
				So(err, ShouldBeNil)
				So(explanation, ShouldBeNil)
			})
		})

		Convey("When the candidate itself is among the liked events", func() {
			withSelf := append([]model.Signal{
				{EventID: "candidate", Kind: model.KindFavorite, Active: true, CreatedAt: now.Add(time.Hour)},
			}, liked...)
			embeddings.byID["candidate"] = []float64{1, 0}

			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{1, 0}, withSelf)

			Convey("Then it never explains itself", func() {
				So(err, ShouldBeNil)
				So(explanation, ShouldNotBeNil)
				So(explanation.EventID, ShouldEqual, "liked-close")
			})
		})

		Convey("When the candidate is the only liked event", func() {
			self := []model.Signal{
				{EventID: "candidate", Kind: model.KindFavorite, Active: true, CreatedAt: now},
			}
			embeddings.byID["candidate"] = []float64{1, 0}

			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{1, 0}, self)

			Convey("Then there is no explanation and no error", func() {
				So(err, ShouldBeNil)
				So(explanation, ShouldBeNil)
			})
		})

		Convey("When the signal set is empty", func() {
			explanation, err := resolver.NearestLiked(ctx, "candidate", []float64{1, 0}, nil)

			So(err, ShouldBeNil)
			So(explanation, ShouldBeNil)
		})

		Convey("When the target embedding is empty", func() {
			explanation, err := resolver.NearestLiked(ctx, "candidate", nil, liked)

			So(err, ShouldBeNil)
			So(explanation, ShouldBeNil)
		})
	})
}
