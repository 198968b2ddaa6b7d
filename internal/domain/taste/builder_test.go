package taste

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/feedrank/internal/domain/model"
)

type stubSignals struct {
	signals []model.Signal
	profile model.TasteProfile

	stored    *model.TasteProfile
	gotCutoff time.Time
}

func (s *stubSignals) ActiveSince(ctx context.Context, userID string, cutoff time.Time) ([]model.Signal, error) {
	s.gotCutoff = cutoff
	return s.signals, nil
}

func (s *stubSignals) Profile(ctx context.Context, userID string) (model.TasteProfile, error) {
	return s.profile, nil
}

func (s *stubSignals) StoreProfile(ctx context.Context, userID string, p model.TasteProfile) error {
	s.stored = &p
	return nil
}

type stubEmbeddings struct {
	byID  map[string][]float64
	calls int
}

func (s *stubEmbeddings) BulkEmbeddings(ctx context.Context, ids []string) (map[string][]float64, error) {
	s.calls++
	out := make(map[string][]float64, len(ids))
	for _, id := range ids {
		if emb, ok := s.byID[id]; ok {
			out[id] = emb
		}
	}
	return out, nil
}

func TestBuilderCentroids(t *testing.T) {
	Convey("Given a centroid builder over stubbed sources", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

		signals := &stubSignals{
			signals: []model.Signal{
				{EventID: "e1", Kind: model.KindFavorite, Active: true, CreatedAt: now},
				{EventID: "e2", Kind: model.KindCalendarAdd, Active: true, CreatedAt: now},
				{EventID: "e3", Kind: model.KindHide, Active: true, CreatedAt: now},
			},
		}
		embeddings := &stubEmbeddings{byID: map[string][]float64{
			"e1": {1, 0},
			"e2": {0, 1},
			"e3": {1, 1},
		}}
		builder := NewBuilder(signals, embeddings,
			WithClock(func() time.Time { return now }),
		)

		Convey("When the cache is stale", func() {
			profile, err := builder.Centroids(ctx, "user-1")

			Convey("Then both centroids are rebuilt as partition means", func() {
				So(err, ShouldBeNil)
				So(profile.Positive, ShouldResemble, []float64{0.5, 0.5})
				So(profile.Negative, ShouldResemble, []float64{1, 1})
				So(profile.ComputedAt, ShouldNotBeNil)
				So(profile.ComputedAt.Equal(now), ShouldBeTrue)
			})

			Convey("Then the rebuilt profile is written back to the cache", func() {
				So(err, ShouldBeNil)
				So(signals.stored, ShouldNotBeNil)
				So(signals.stored.Positive, ShouldResemble, []float64{0.5, 0.5})
			})
		})

		Convey("When the cache is fresh", func() {
			computedAt := now.Add(-time.Hour)
			signals.profile = model.TasteProfile{
				Positive:   []float64{1, 0},
				ComputedAt: &computedAt,
			}

			profile, err := builder.Centroids(ctx, "user-1")

			Convey("Then the cached profile is served without a rebuild", func() {
				So(err, ShouldBeNil)
				So(profile.Positive, ShouldResemble, []float64{1, 0})
				So(embeddings.calls, ShouldEqual, 0)
			})
		})

		Convey("When signals fall outside the rolling window", func() {
			builder = NewBuilder(signals, embeddings,
				WithClock(func() time.Time { return now }),
				WithSignalWindow(30*24*time.Hour),
			)

			_, err := builder.Centroids(ctx, "user-1")

			Convey("Then the cutoff handed to the store matches the window", func() {
				So(err, ShouldBeNil)
				So(signals.gotCutoff.Equal(now.Add(-30*24*time.Hour)), ShouldBeTrue)
			})
		})
	})
}

func TestBuilderPartitioning(t *testing.T) {
	Convey("Given signals with repeated and unresolvable events", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

		Convey("When one event carries several positive sub-types", func() {
			signals := &stubSignals{
				signals: []model.Signal{
					{EventID: "e1", Kind: model.KindFavorite, Active: true, CreatedAt: now},
					{EventID: "e1", Kind: model.KindShare, Active: true, CreatedAt: now},
					{EventID: "e2", Kind: model.KindFavorite, Active: true, CreatedAt: now},
				},
			}
			embeddings := &stubEmbeddings{byID: map[string][]float64{
				"e1": {1, 0},
				"e2": {0, 1},
			}}
			builder := NewBuilder(signals, embeddings, WithClock(func() time.Time { return now }))

			profile, err := builder.Centroids(ctx, "user-1")

			Convey("Then the event contributes a single vector to the mean", func() {
				So(err, ShouldBeNil)
				So(profile.Positive, ShouldResemble, []float64{0.5, 0.5})
			})
		})

		Convey("When a referenced event has no embedding", func() {
			signals := &stubSignals{
				signals: []model.Signal{
					{EventID: "e1", Kind: model.KindFavorite, Active: true, CreatedAt: now},
					{EventID: "ghost", Kind: model.KindFavorite, Active: true, CreatedAt: now},
				},
			}
			embeddings := &stubEmbeddings{byID: map[string][]float64{"e1": {1, 0}}}
			builder := NewBuilder(signals, embeddings, WithClock(func() time.Time { return now }))

			profile, err := builder.Centroids(ctx, "user-1")

			Convey("Then the missing event is skipped", func() {
				So(err, ShouldBeNil)
				So(profile.Positive, ShouldResemble, []float64{1, 0})
			})
		})

		Convey("When a partition has no contributing events", func() {
			signals := &stubSignals{
				signals: []model.Signal{
					{EventID: "e3", Kind: model.KindHide, Active: true, CreatedAt: now},
				},
			}
			embeddings := &stubEmbeddings{byID: map[string][]float64{"e3": {1, 1}}}
			builder := NewBuilder(signals, embeddings, WithClock(func() time.Time { return now }))

			profile, err := builder.Centroids(ctx, "user-1")

			Convey("Then its centroid is nil while ComputedAt is still set", func() {
				So(err, ShouldBeNil)
				So(profile.Positive, ShouldBeNil)
				So(profile.Negative, ShouldResemble, []float64{1, 1})
				So(profile.Fresh(), ShouldBeTrue)
			})
		})

		Convey("When embeddings disagree on dimensionality", func() {
			signals := &stubSignals{
				signals: []model.Signal{
					{EventID: "a-short", Kind: model.KindFavorite, Active: true, CreatedAt: now},
					{EventID: "b-long", Kind: model.KindFavorite, Active: true, CreatedAt: now},
					{EventID: "c-short", Kind: model.KindFavorite, Active: true, CreatedAt: now},
				},
			}
			embeddings := &stubEmbeddings{byID: map[string][]float64{
				"a-short": {1, 0},
				"b-long":  {0, 1, 0},
				"c-short": {0, 1},
			}}
			builder := NewBuilder(signals, embeddings, WithClock(func() time.Time { return now }))

			Convey("Then the first id in sorted order pins the dimension on every rebuild", func() {
				for i := 0; i < 20; i++ {
					signals.profile = model.TasteProfile{}
					profile, err := builder.Centroids(ctx, "user-1")
					So(err, ShouldBeNil)
					So(profile.Positive, ShouldResemble, []float64{0.5, 0.5})
				}
			})
		})

		Convey("When the user has no signals at all", func() {
			signals := &stubSignals{}
			embeddings := &stubEmbeddings{}
			builder := NewBuilder(signals, embeddings, WithClock(func() time.Time { return now }))

			profile, err := builder.Centroids(ctx, "user-1")

			Convey("Then both centroids are nil in a computed profile", func() {
				So(err, ShouldBeNil)
				So(profile.Positive, ShouldBeNil)
				So(profile.Negative, ShouldBeNil)
				So(profile.Fresh(), ShouldBeTrue)
			})
		})
	})
}
