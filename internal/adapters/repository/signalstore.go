package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/pkg/metrics"
)

// Default signal store configuration constants.
const (
	defaultPositiveSignalCap = 200
)

// userRecord holds one user's append-only signal log and cached taste
// profile. The mutex guards both so a signal mutation and the profile
// invalidation happen as one atomic step.
type userRecord struct {
	mu      sync.Mutex
	signals []model.Signal
	profile model.TasteProfile
}

// InMemorySignalStore implements SignalStore with per-user locking.
type InMemorySignalStore struct {
	mu    sync.RWMutex
	users map[string]*userRecord

	positiveCap int
	now         func() time.Time
	active      atomic.Int64
}

// NewInMemorySignalStore creates a signal store with configuration options.
func NewInMemorySignalStore(opts ...SignalStoreOption) *InMemorySignalStore {
	s := &InMemorySignalStore{
		users:       make(map[string]*userRecord),
		positiveCap: defaultPositiveSignalCap,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record returns the user's record, creating it on first use.
func (s *InMemorySignalStore) record(userID string) *userRecord {
	s.mu.RLock()
	r, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.users[userID]; ok {
		return r
	}
	r = &userRecord{}
	s.users[userID] = r
	metrics.UpdateTotalUsers(len(s.users))
	return r
}

func validateIdentity(userID, eventID string, kind model.SignalKind) error {
	switch {
	case userID == "":
		return ErrMissingUserID
	case eventID == "":
		return ErrMissingEventID
	case !kind.Valid():
		return ErrInvalidKind
	}
	return nil
}

// Record appends a signal iff no active signal with the same identity
// exists. The check-and-append runs under the user's lock, so two racing
// duplicate submissions collapse into one active signal. The cached
// centroids are invalidated in the same critical section.
func (s *InMemorySignalStore) Record(ctx context.Context, userID, eventID string, kind model.SignalKind) (model.Signal, bool, error) {
	if err := validateIdentity(userID, eventID, kind); err != nil {
		return model.Signal{}, false, err
	}

	r := s.record(userID)
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.signals {
		sig := r.signals[i]
		if sig.Active && sig.EventID == eventID && sig.Kind == kind {
			metrics.RecordSignalDuplicate()
			return sig, false, nil
		}
	}

	sig := model.Signal{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Kind:      kind,
		CreatedAt: s.now(),
		Active:    true,
	}
	r.signals = append(r.signals, sig)
	r.profile = model.TasteProfile{}

	metrics.UpdateActiveSignals(int(s.active.Add(1)))
	metrics.RecordSignalRecorded()

	return sig, true, nil
}

// Remove marks the matching active signal inactive and invalidates the
// cached centroids. The signal row is retained for history.
func (s *InMemorySignalStore) Remove(ctx context.Context, userID, eventID string, kind model.SignalKind) error {
	if err := validateIdentity(userID, eventID, kind); err != nil {
		return err
	}

	r := s.record(userID)
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := make([]model.Signal, 0, len(r.signals))
	removed := false
	for i := range r.signals {
		sig := r.signals[i]
		if sig.Active && sig.EventID == eventID && sig.Kind == kind {
			sig.Active = false
			removed = true
		}
		replaced = append(replaced, sig)
	}
	if !removed {
		return nil
	}

	r.signals = replaced
	r.profile = model.TasteProfile{}

	metrics.UpdateActiveSignals(int(s.active.Add(-1)))
	metrics.RecordSignalRemoved()

	return nil
}

// ActiveSince returns the user's active signals recorded at or after cutoff.
func (s *InMemorySignalStore) ActiveSince(ctx context.Context, userID string, cutoff time.Time) ([]model.Signal, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	r := s.record(userID)
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Signal
	for i := range r.signals {
		sig := r.signals[i]
		if sig.Active && !sig.CreatedAt.Before(cutoff) {
			out = append(out, sig)
		}
	}
	return out, nil
}

// ActivePositive returns the user's active positive signals newest first,
// capped at the configured limit.
func (s *InMemorySignalStore) ActivePositive(ctx context.Context, userID string) ([]model.Signal, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	r := s.record(userID)
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Signal
	for i := range r.signals {
		sig := r.signals[i]
		if sig.Active && sig.Kind.Positive() {
			out = append(out, sig)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > s.positiveCap {
		out = out[:s.positiveCap]
	}
	return out, nil
}

// Profile returns the cached taste profile for a user.
func (s *InMemorySignalStore) Profile(ctx context.Context, userID string) (model.TasteProfile, error) {
	if userID == "" {
		return model.TasteProfile{}, ErrMissingUserID
	}

	r := s.record(userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile, nil
}

// StoreProfile overwrites the cached taste profile. Last writer wins.
func (s *InMemorySignalStore) StoreProfile(ctx context.Context, userID string, p model.TasteProfile) error {
	if userID == "" {
		return ErrMissingUserID
	}

	r := s.record(userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = p
	return nil
}

// Users returns the number of users with at least one signal.
func (s *InMemorySignalStore) Users(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// ActiveCount returns the number of active signals across all users.
func (s *InMemorySignalStore) ActiveCount(ctx context.Context) int {
	return int(s.active.Load())
}
