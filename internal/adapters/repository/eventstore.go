package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/internal/domain/scoring"
	"github.com/okian/feedrank/pkg/metrics"
)

// InMemoryEventStore implements EventStore with a single RWMutex. Writes
// are moderation-rate, reads dominate; the candidate sets are small enough
// that the top-N surface sorts on read.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string]*model.Event

	now func() time.Time
}

// NewInMemoryEventStore creates an event store with configuration options.
func NewInMemoryEventStore(opts ...EventStoreOption) *InMemoryEventStore {
	s := &InMemoryEventStore{
		events: make(map[string]*model.Event),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert inserts or replaces an event from the ingestion pipeline. The
// moderation state already held for the event survives: ingestion owns
// title, start time, embedding, and AI sub-scores; curators and admins own
// the override structure.
func (s *InMemoryEventStore) Upsert(ctx context.Context, e model.Event) (model.Event, error) {
	if e.ID == "" {
		return model.Event{}, ErrMissingEventID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[e.ID]
	if ok {
		e.Override = stored.Override
	}
	e.Score = scoring.CalculateFinalScores(e.AIScores, e.Override).Total

	cp := copyEvent(&e)
	s.events[e.ID] = cp

	metrics.RecordEventUpserted()
	metrics.UpdateTotalEvents(len(s.events))
	return *copyEvent(cp), nil
}

// Get returns the event with the given id.
func (s *InMemoryEventStore) Get(ctx context.Context, id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return *copyEvent(e), nil
}

// BulkEmbeddings returns embeddings for the requested ids in one read
// under one lock acquisition. Ids without a stored embedding are absent
// from the result, which is how "no embedding" propagates to scoring.
func (s *InMemoryEventStore) BulkEmbeddings(ctx context.Context, ids []string) (map[string][]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]float64, len(ids))
	for _, id := range ids {
		e, ok := s.events[id]
		if !ok || len(e.Embedding) == 0 {
			continue
		}
		emb := make([]float64, len(e.Embedding))
		copy(emb, e.Embedding)
		out[id] = emb
	}
	return out, nil
}

// Upcoming returns events with StartTime in [from, until).
func (s *InMemoryEventStore) Upcoming(ctx context.Context, from, until time.Time) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Event
	for _, e := range s.events {
		if !e.StartTime.Before(from) && e.StartTime.Before(until) {
			out = append(out, *copyEvent(e))
		}
	}
	return out, nil
}

// TopN returns the top-N events by persisted total desc, ties by StartTime
// asc then id asc for a deterministic order.
func (s *InMemoryEventStore) TopN(ctx context.Context, n int) ([]model.Event, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	all := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		all = append(all, *copyEvent(e))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if !all[i].StartTime.Equal(all[j].StartTime) {
			return all[i].StartTime.Before(all[j].StartTime)
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// SetAdminOverride replaces the admin override after range-checking every
// supplied value. On rejection the stored event is untouched.
func (s *InMemoryEventStore) SetAdminOverride(ctx context.Context, eventID string, o model.AdminOverride) (model.Event, error) {
	for _, v := range []*int{o.Rarity, o.Unique, o.Magnitude} {
		if v != nil && (*v < 0 || *v > scoring.CategoryMax) {
			return model.Event{}, ErrScoreOutOfRange
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return model.Event{}, ErrNotFound
	}

	if o.SetAt.IsZero() {
		o.SetAt = s.now()
	}
	e.Override.Admin = &o
	e.Score = scoring.CalculateFinalScores(e.AIScores, e.Override).Total

	metrics.RecordModerationUpdate("override_set")
	return *copyEvent(e), nil
}

// ClearAdminOverride removes only the admin override; curator boosts are
// independently owned and stay put.
func (s *InMemoryEventStore) ClearAdminOverride(ctx context.Context, eventID string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return model.Event{}, ErrNotFound
	}

	e.Override.Admin = nil
	e.Score = scoring.CalculateFinalScores(e.AIScores, e.Override).Total

	metrics.RecordModerationUpdate("override_clear")
	return *copyEvent(e), nil
}

// UpsertCuratorBoost records a curator's boost for an event, replacing the
// same curator's prior entry rather than summing with it.
func (s *InMemoryEventStore) UpsertCuratorBoost(ctx context.Context, eventID string, b model.CuratorBoost) (model.Event, error) {
	if b.CuratorID == "" {
		return model.Event{}, ErrMissingUserID
	}
	for _, v := range []*int{b.Rarity, b.Unique, b.Magnitude} {
		if v != nil && (*v < -2 || *v > 2) {
			return model.Event{}, ErrDeltaOutOfRange
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return model.Event{}, ErrNotFound
	}

	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	replaced := false
	for i := range e.Override.Boosts {
		if e.Override.Boosts[i].CuratorID == b.CuratorID {
			e.Override.Boosts[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		e.Override.Boosts = append(e.Override.Boosts, b)
	}
	e.Score = scoring.CalculateFinalScores(e.AIScores, e.Override).Total

	metrics.RecordModerationUpdate("boost")
	return *copyEvent(e), nil
}

// Count returns the number of stored events.
func (s *InMemoryEventStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// copyEvent deep-copies the slice-valued fields so callers cannot mutate
// stored state through returned values.
func copyEvent(e *model.Event) *model.Event {
	cp := *e
	if e.Embedding != nil {
		cp.Embedding = make([]float64, len(e.Embedding))
		copy(cp.Embedding, e.Embedding)
	}
	if e.Override.Boosts != nil {
		cp.Override.Boosts = make([]model.CuratorBoost, len(e.Override.Boosts))
		copy(cp.Override.Boosts, e.Override.Boosts)
	}
	if e.Override.Admin != nil {
		admin := *e.Override.Admin
		cp.Override.Admin = &admin
	}
	return &cp
}
