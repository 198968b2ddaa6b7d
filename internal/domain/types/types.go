// Package types contains common types used across the application
package types

import "time"

// Tier is the qualitative badge derived from a personalization score.
// The empty value means the event is included in the feed without a badge.
type Tier string

// Tier labels, best first.
const (
	TierGreat Tier = "great"
	TierGood  Tier = "good"
	TierNone  Tier = ""
)

// Bucket is the time horizon a feed entry falls into, computed against
// local wall-clock day boundaries.
type Bucket string

// Buckets in delivery order.
const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketThisWeek Bucket = "this-week"
	BucketLater    Bucket = "later"
)

// Order returns the sort position of the bucket, earlier horizons first.
func (b Bucket) Order() int {
	switch b {
	case BucketToday:
		return 0
	case BucketTomorrow:
		return 1
	case BucketThisWeek:
		return 2
	default:
		return 3
	}
}

// Explanation points at the liked event that best justifies a
// recommendation.
type Explanation struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
}

// FeedEntry is one scored, tiered event in the personalized feed.
type FeedEntry struct {
	EventID     string       `json:"event_id"`
	Title       string       `json:"title"`
	StartTime   time.Time    `json:"start_time"`
	Score       float64      `json:"score"`
	Tier        Tier         `json:"tier,omitempty"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// FeedBucket groups feed entries sharing a time horizon.
type FeedBucket struct {
	Bucket  Bucket      `json:"bucket"`
	Entries []FeedEntry `json:"entries"`
}

// Feed is the full personalized ranking for one user.
type Feed struct {
	Buckets []FeedBucket `json:"buckets"`
}

// RankedEvent is one row of the non-personalized top-N surface, ordered by
// the persisted moderated total.
type RankedEvent struct {
	Rank      int       `json:"rank"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Total     int       `json:"total"`
}
