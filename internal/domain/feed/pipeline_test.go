package feed

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/internal/domain/scoring"
	"github.com/okian/feedrank/internal/domain/types"
)

type stubEvents struct {
	events []model.Event
}

func (s *stubEvents) Upcoming(ctx context.Context, from, until time.Time) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		if !e.StartTime.Before(from) && e.StartTime.Before(until) {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubCentroids struct {
	profile model.TasteProfile
}

func (s *stubCentroids) Centroids(ctx context.Context, userID string) (model.TasteProfile, error) {
	return s.profile, nil
}

type stubPositives struct {
	signals []model.Signal
}

func (s *stubPositives) ActivePositive(ctx context.Context, userID string) ([]model.Signal, error) {
	return s.signals, nil
}

type stubExplainer struct {
	calls       int
	explanation *types.Explanation
}

func (s *stubExplainer) NearestLiked(ctx context.Context, eventID string, embedding []float64, signals []model.Signal) (*types.Explanation, error) {
	s.calls++
	return s.explanation, nil
}

func freshProfile(positive, negative []float64, at time.Time) model.TasteProfile {
	return model.TasteProfile{Positive: positive, Negative: negative, ComputedAt: &at}
}

func TestPipelineBuild(t *testing.T) {
	Convey("Given a feed pipeline with a liked-similar taste profile", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

		events := &stubEvents{events: []model.Event{
			{ID: "ev-today", Title: "Today strong", StartTime: now.Add(2 * time.Hour), Embedding: []float64{1, 0}},
			{ID: "ev-today-mid", Title: "Today middling", StartTime: now.Add(3 * time.Hour), Embedding: []float64{0, 1}},
			{ID: "ev-today-low", Title: "Today weak", StartTime: now.Add(4 * time.Hour), Embedding: []float64{-0.2, 0.9797958971132712}},
			{ID: "ev-tomorrow", Title: "Tomorrow", StartTime: now.Add(24 * time.Hour), Embedding: []float64{1, 0}},
			{ID: "ev-week", Title: "Later this week", StartTime: now.Add(3 * 24 * time.Hour), Embedding: []float64{0.6, 0.8}},
			{ID: "ev-later", Title: "Next month", StartTime: now.Add(10 * 24 * time.Hour), Embedding: []float64{1, 0}},
			{ID: "ev-opposed", Title: "Opposed", StartTime: now.Add(5 * time.Hour), Embedding: []float64{-1, 0}},
			{ID: "ev-unembedded", Title: "No embedding", StartTime: now.Add(6 * time.Hour)},
			{ID: "ev-horizon", Title: "Beyond horizon", StartTime: now.Add(100 * 24 * time.Hour), Embedding: []float64{1, 0}},
		}}
		centroids := &stubCentroids{profile: freshProfile([]float64{1, 0}, nil, now)}
		explainer := &stubExplainer{explanation: &types.Explanation{EventID: "liked-1", Title: "Meteor shower"}}
		pipeline := NewPipeline(events, centroids, &stubPositives{}, explainer, scoring.NewPersonalizer())

		Convey("When building the feed", func() {
			feed, err := pipeline.Build(ctx, "user-1", now)
			So(err, ShouldBeNil)

			Convey("Then buckets appear in horizon order", func() {
				So(len(feed.Buckets), ShouldEqual, 4)
				So(feed.Buckets[0].Bucket, ShouldEqual, types.BucketToday)
				So(feed.Buckets[1].Bucket, ShouldEqual, types.BucketTomorrow)
				So(feed.Buckets[2].Bucket, ShouldEqual, types.BucketThisWeek)
				So(feed.Buckets[3].Bucket, ShouldEqual, types.BucketLater)
			})

			Convey("Then entries within a bucket sort by score descending", func() {
				today := feed.Buckets[0].Entries
				So(len(today), ShouldEqual, 3)
				So(today[0].EventID, ShouldEqual, "ev-today")
				So(today[1].EventID, ShouldEqual, "ev-today-mid")
				So(today[2].EventID, ShouldEqual, "ev-today-low")
			})

			Convey("Then tiers follow the score thresholds", func() {
				today := feed.Buckets[0].Entries
				So(today[0].Score, ShouldAlmostEqual, 1.0, 1e-9)
				So(today[0].Tier, ShouldEqual, types.TierGreat)
				So(today[1].Score, ShouldAlmostEqual, 0.5, 1e-9)
				So(today[1].Tier, ShouldEqual, types.TierGood)
				So(today[2].Score, ShouldAlmostEqual, 0.4, 1e-9)
				So(today[2].Tier, ShouldEqual, types.TierNone)
			})

			Convey("Then only tiered entries carry explanations", func() {
				today := feed.Buckets[0].Entries
				So(today[0].Explanation, ShouldNotBeNil)
				So(today[0].Explanation.EventID, ShouldEqual, "liked-1")
				So(today[2].Explanation, ShouldBeNil)
				So(explainer.calls, ShouldEqual, 5)
			})

			Convey("Then excluded and unembedded events never appear", func() {
				for _, bucket := range feed.Buckets {
					for _, entry := range bucket.Entries {
						So(entry.EventID, ShouldNotEqual, "ev-opposed")
						So(entry.EventID, ShouldNotEqual, "ev-unembedded")
						So(entry.EventID, ShouldNotEqual, "ev-horizon")
					}
				}
			})
		})

		Convey("When the user has no positive centroid", func() {
			centroids.profile = freshProfile(nil, nil, now)

			_, err := pipeline.Build(ctx, "user-1", now)

			Convey("Then the explicit no-taste-signal state is returned", func() {
				So(err, ShouldEqual, ErrNoTasteSignal)
			})
		})

		Convey("When every candidate falls below the cutoff", func() {
			events.events = []model.Event{
				{ID: "ev-opposed", StartTime: now.Add(2 * time.Hour), Embedding: []float64{-1, 0}},
			}

			feed, err := pipeline.Build(ctx, "user-1", now)

			Convey("Then the feed is empty but not an error", func() {
				So(err, ShouldBeNil)
				So(feed.Buckets, ShouldBeEmpty)
			})
		})
	})
}

func TestPipelineBuckets(t *testing.T) {
	Convey("Given a pipeline bucketing in a non-UTC timezone", t, func() {
		loc, err := time.LoadLocation("America/New_York")
		So(err, ShouldBeNil)
		pipeline := NewPipeline(nil, nil, nil, nil, scoring.NewPersonalizer(), WithLocation(loc))

		// Late evening local time: most of the next wall-clock day is
		// less than 24 hours away.
		now := time.Date(2026, 8, 25, 23, 30, 0, 0, loc)

		Convey("When an event starts later the same local day", func() {
			So(pipeline.bucketFor(now.Add(15*time.Minute), now), ShouldEqual, types.BucketToday)
		})

		Convey("When an event starts one hour later across local midnight", func() {
			So(pipeline.bucketFor(now.Add(time.Hour), now), ShouldEqual, types.BucketTomorrow)
		})

		Convey("When an event starts within the next seven local days", func() {
			So(pipeline.bucketFor(now.Add(3*24*time.Hour), now), ShouldEqual, types.BucketThisWeek)
			So(pipeline.bucketFor(now.Add(6*24*time.Hour), now), ShouldEqual, types.BucketThisWeek)
		})

		Convey("When an event starts seven or more local days out", func() {
			So(pipeline.bucketFor(now.Add(7*24*time.Hour), now), ShouldEqual, types.BucketLater)
			So(pipeline.bucketFor(now.Add(30*24*time.Hour), now), ShouldEqual, types.BucketLater)
		})

		Convey("When the event time is expressed in a different zone", func() {
			// Same instant as one local hour ahead, rendered in UTC.
			So(pipeline.bucketFor(now.Add(time.Hour).UTC(), now), ShouldEqual, types.BucketTomorrow)
		})
	})
}

func TestPipelineBucketsAcrossDST(t *testing.T) {
	Convey("Given bucketing across daylight-saving transitions", t, func() {
		loc, err := time.LoadLocation("America/New_York")
		So(err, ShouldBeNil)
		pipeline := NewPipeline(nil, nil, nil, nil, scoring.NewPersonalizer(), WithLocation(loc))

		Convey("When the clock springs forward (23-hour day)", func() {
			// DST begins 2026-03-08 02:00 in this zone.
			now := time.Date(2026, 3, 8, 10, 0, 0, 0, loc)

			Convey("Then noon the next local day is still tomorrow", func() {
				So(pipeline.bucketFor(time.Date(2026, 3, 9, 12, 0, 0, 0, loc), now), ShouldEqual, types.BucketTomorrow)
			})

			Convey("Then the seven-day boundary does not shift", func() {
				So(pipeline.bucketFor(time.Date(2026, 3, 14, 12, 0, 0, 0, loc), now), ShouldEqual, types.BucketThisWeek)
				So(pipeline.bucketFor(time.Date(2026, 3, 15, 12, 0, 0, 0, loc), now), ShouldEqual, types.BucketLater)
			})
		})

		Convey("When the clock falls back (25-hour day)", func() {
			// DST ends 2026-11-01 02:00 in this zone.
			now := time.Date(2026, 10, 31, 10, 0, 0, 0, loc)

			Convey("Then the next local day is tomorrow, not this-week", func() {
				So(pipeline.bucketFor(time.Date(2026, 11, 1, 12, 0, 0, 0, loc), now), ShouldEqual, types.BucketTomorrow)
			})

			Convey("Then the seven-day boundary does not shift", func() {
				So(pipeline.bucketFor(time.Date(2026, 11, 6, 12, 0, 0, 0, loc), now), ShouldEqual, types.BucketThisWeek)
				So(pipeline.bucketFor(time.Date(2026, 11, 7, 12, 0, 0, 0, loc), now), ShouldEqual, types.BucketLater)
			})
		})
	})
}
