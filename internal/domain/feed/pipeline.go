// Package feed builds the personalized, time-bucketed ranking delivered to
// users.
package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/internal/domain/scoring"
	"github.com/okian/feedrank/internal/domain/types"
	"github.com/okian/feedrank/pkg/metrics"
)

// Default pipeline configuration constants.
const (
	defaultHorizon     = 60 * 24 * time.Hour
	daysInThisWeekSpan = 7
	hoursPerDay        = 24
)

// CandidateSource supplies the future events eligible for ranking. Events
// arrive fully materialized (embedding included) in one read, so the
// scoring loop performs no store access.
type CandidateSource interface {
	Upcoming(ctx context.Context, from, until time.Time) ([]model.Event, error)
}

// Centroids resolves a user's taste profile.
type Centroids interface {
	Centroids(ctx context.Context, userID string) (model.TasteProfile, error)
}

// PositiveSignals supplies the bounded active positive signal set used for
// explanations.
type PositiveSignals interface {
	ActivePositive(ctx context.Context, userID string) ([]model.Signal, error)
}

// Explainer finds the liked event nearest to a scored candidate. The
// candidate's own ID is passed so a liked candidate is never explained by
// itself.
type Explainer interface {
	NearestLiked(ctx context.Context, eventID string, embedding []float64, signals []model.Signal) (*types.Explanation, error)
}

// Pipeline assembles the personalized feed: score, filter, tier, explain,
// bucket, order.
type Pipeline struct {
	events       CandidateSource
	centroids    Centroids
	signals      PositiveSignals
	explainer    Explainer
	personalizer *scoring.Personalizer

	horizon  time.Duration
	location *time.Location
}

// NewPipeline creates a feed pipeline with configuration options.
func NewPipeline(events CandidateSource, centroids Centroids, signals PositiveSignals, explainer Explainer, personalizer *scoring.Personalizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		events:       events,
		centroids:    centroids,
		signals:      signals,
		explainer:    explainer,
		personalizer: personalizer,
		horizon:      defaultHorizon,
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build produces the ranked, bucketed feed for a user at the given instant.
// It returns ErrNoTasteSignal when the user has no positive centroid, which
// callers surface as an explicit personalization-unavailable state rather
// than an empty feed.
func (p *Pipeline) Build(ctx context.Context, userID string, now time.Time) (types.Feed, error) {
	start := time.Now()

	profile, err := p.centroids.Centroids(ctx, userID)
	if err != nil {
		return types.Feed{}, fmt.Errorf("resolve centroids: %w", err)
	}
	if profile.Positive == nil {
		metrics.RecordFeedNoTasteSignal()
		return types.Feed{}, ErrNoTasteSignal
	}

	candidates, err := p.events.Upcoming(ctx, now, now.Add(p.horizon))
	if err != nil {
		return types.Feed{}, fmt.Errorf("gather candidates: %w", err)
	}

	liked, err := p.signals.ActivePositive(ctx, userID)
	if err != nil {
		return types.Feed{}, fmt.Errorf("gather positive signals: %w", err)
	}

	type scored struct {
		entry  types.FeedEntry
		bucket types.Bucket
	}
	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		e := &candidates[i]
		if len(e.Embedding) == 0 {
			// No embedding: excluded here, still eligible on the
			// non-personalized surface.
			continue
		}

		score, err := p.personalizer.Score(e.Embedding, profile.Positive, profile.Negative)
		if err != nil {
			return types.Feed{}, fmt.Errorf("score event %s: %w", e.ID, err)
		}
		if !p.personalizer.Include(score) {
			continue
		}

		entry := types.FeedEntry{
			EventID:   e.ID,
			Title:     e.Title,
			StartTime: e.StartTime,
			Score:     score,
			Tier:      p.personalizer.Tier(score),
		}
		if entry.Tier != types.TierNone {
			explanation, err := p.explainer.NearestLiked(ctx, e.ID, e.Embedding, liked)
			if err != nil {
				return types.Feed{}, fmt.Errorf("explain event %s: %w", e.ID, err)
			}
			entry.Explanation = explanation
		}

		ranked = append(ranked, scored{
			entry:  entry,
			bucket: p.bucketFor(e.StartTime, now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].bucket != ranked[j].bucket {
			return ranked[i].bucket.Order() < ranked[j].bucket.Order()
		}
		if ranked[i].entry.Score != ranked[j].entry.Score {
			return ranked[i].entry.Score > ranked[j].entry.Score
		}
		return ranked[i].entry.StartTime.Before(ranked[j].entry.StartTime)
	})

	var out types.Feed
	for _, s := range ranked {
		n := len(out.Buckets)
		if n == 0 || out.Buckets[n-1].Bucket != s.bucket {
			out.Buckets = append(out.Buckets, types.FeedBucket{Bucket: s.bucket})
			n++
		}
		out.Buckets[n-1].Entries = append(out.Buckets[n-1].Entries, s.entry)
	}

	metrics.RecordFeedBuild(float64(time.Since(start).Milliseconds()), len(ranked))
	return out, nil
}

// bucketFor assigns a time horizon using day boundaries in the configured
// local timezone, not raw UTC midnights: users reason in wall-clock days.
func (p *Pipeline) bucketFor(startTime, now time.Time) types.Bucket {
	days := daysBetween(now.In(p.location), startTime.In(p.location))
	switch {
	case days <= 0:
		return types.BucketToday
	case days == 1:
		return types.BucketTomorrow
	case days < daysInThisWeekSpan:
		return types.BucketThisWeek
	default:
		return types.BucketLater
	}
}

// daysBetween counts local-midnight crossings between a and b. The local
// calendar dates are re-anchored in UTC before subtracting: a DST
// transition makes a local day 23 or 25 hours long, which would otherwise
// skew the truncated quotient by one.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	aMidnight := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bMidnight := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bMidnight.Sub(aMidnight).Hours() / hoursPerDay)
}
