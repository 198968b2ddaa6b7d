// Package repository defines the event and signal store interfaces and
// their in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/feedrank/internal/domain/model"
)

// EventStore provides read/write access to event records and their
// moderation state. Writes that touch scores recompute and persist the
// final total before returning.
type EventStore interface {
	// Upsert inserts or replaces an event from the ingestion pipeline.
	// Moderation state already held for the event survives the upsert.
	Upsert(ctx context.Context, e model.Event) (model.Event, error)

	// Get returns the event with the given id.
	// Returns ErrNotFound if the event is unknown.
	Get(ctx context.Context, id string) (model.Event, error)

	// BulkEmbeddings returns the embeddings for the requested ids in a
	// single read. Unknown ids and events without embeddings are absent
	// from the result.
	BulkEmbeddings(ctx context.Context, ids []string) (map[string][]float64, error)

	// Upcoming returns events with StartTime in [from, until).
	Upcoming(ctx context.Context, from, until time.Time) ([]model.Event, error)

	// TopN returns the top-N events ordered by persisted total desc,
	// ties by StartTime asc then id asc.
	TopN(ctx context.Context, n int) ([]model.Event, error)

	// SetAdminOverride replaces the event's admin override. Curator
	// boosts are untouched. Values outside [0,10] are rejected with
	// ErrScoreOutOfRange and leave the event unchanged.
	SetAdminOverride(ctx context.Context, eventID string, o model.AdminOverride) (model.Event, error)

	// ClearAdminOverride removes only the admin override, leaving
	// curator boosts intact.
	ClearAdminOverride(ctx context.Context, eventID string) (model.Event, error)

	// UpsertCuratorBoost records a curator's boost, replacing (never
	// summing) any prior boost from the same curator. Deltas outside
	// [-2,+2] are rejected with ErrDeltaOutOfRange.
	UpsertCuratorBoost(ctx context.Context, eventID string, b model.CuratorBoost) (model.Event, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) int
}

// SignalStore records per-user behavioral signals and caches the derived
// taste profile. Signal writes and profile invalidation for a user happen
// under one lock.
type SignalStore interface {
	// Record appends a signal iff no active signal with the same
	// (user, event, kind) identity exists, as one atomic step that also
	// invalidates the user's cached centroids. The bool is true when a
	// new signal was recorded and false on a duplicate no-op.
	Record(ctx context.Context, userID, eventID string, kind model.SignalKind) (model.Signal, bool, error)

	// Remove marks the matching active signal inactive and invalidates
	// the cached centroids. Removing an absent signal is a no-op.
	Remove(ctx context.Context, userID, eventID string, kind model.SignalKind) error

	// ActiveSince returns the user's active signals recorded at or after
	// cutoff, for centroid computation.
	ActiveSince(ctx context.Context, userID string, cutoff time.Time) ([]model.Signal, error)

	// ActivePositive returns the user's active positive signals, newest
	// first, capped at the configured limit. Used by the explanation
	// path, which scans pairwise.
	ActivePositive(ctx context.Context, userID string) ([]model.Signal, error)

	// Profile returns the user's cached taste profile; a stale profile
	// has no ComputedAt.
	Profile(ctx context.Context, userID string) (model.TasteProfile, error)

	// StoreProfile overwrites the cached profile. Last writer wins;
	// concurrent recomputation converges because the computation is a
	// pure function of the active-signal set.
	StoreProfile(ctx context.Context, userID string, p model.TasteProfile) error

	// Users returns the number of users with at least one signal.
	Users(ctx context.Context) int

	// ActiveCount returns the number of active signals across all users.
	ActiveCount(ctx context.Context) int
}
