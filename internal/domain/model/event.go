// Package model contains domain models passed between layers.
package model

import "time"

// Event represents a ranked item produced by the ingestion pipeline.
// Fields mirror the schema for PUT /v1/events/{id}.
type Event struct {
	ID        string
	Title     string
	StartTime time.Time

	// Embedding is the AI-generated vector for the event, or nil when the
	// tagging pipeline has not produced one. Events without an embedding
	// are excluded from personalization but still rank on the
	// non-personalized surface.
	Embedding []float64

	// AIScores holds the automated sub-scores. A nil category means the
	// tagger has not scored it yet and contributes 0.
	AIScores SubScores

	// Override carries manual moderation state applied on top of AIScores.
	Override ScoreOverride

	// Score is the persisted final total in [0,30], recomputed whenever
	// AIScores or Override change.
	Score int
}

// SubScores holds the three automated quality categories, each 0-10.
type SubScores struct {
	Rarity    *int
	Unique    *int
	Magnitude *int
}

// ScoreOverride is the moderation state owned by an event. Admin and Boosts
// are independent: clearing the admin override leaves boosts intact.
type ScoreOverride struct {
	Admin  *AdminOverride
	Boosts []CuratorBoost
}

// AdminOverride replaces sub-score categories outright. Only the non-nil
// categories are overridden; values are validated 0-10 at the boundary.
type AdminOverride struct {
	Rarity    *int
	Unique    *int
	Magnitude *int
	Reason    string
	SetBy     string
	SetAt     time.Time
}

// CuratorBoost is one curator's bounded adjustment for an event. Each delta
// is in [-2,+2]; a curator resubmitting replaces their prior boost.
type CuratorBoost struct {
	CuratorID string
	Rarity    *int
	Unique    *int
	Magnitude *int
	CreatedAt time.Time
}
