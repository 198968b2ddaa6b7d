// Package taste derives per-user taste centroids from behavioral signals
// and resolves nearest-liked-event explanations.
package taste

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/pkg/metrics"
)

// Default builder configuration constants.
const (
	// defaultSignalWindow is the rolling window of signals that shape a
	// user's centroids.
	defaultSignalWindow = 365 * 24 * time.Hour
)

// SignalSource is the slice of the signal store the builder needs.
type SignalSource interface {
	ActiveSince(ctx context.Context, userID string, cutoff time.Time) ([]model.Signal, error)
	Profile(ctx context.Context, userID string) (model.TasteProfile, error)
	StoreProfile(ctx context.Context, userID string, p model.TasteProfile) error
}

// EmbeddingSource resolves event embeddings in bulk.
type EmbeddingSource interface {
	BulkEmbeddings(ctx context.Context, ids []string) (map[string][]float64, error)
}

// Builder computes and caches a user's positive/negative taste centroids.
// Recomputation is lazy: a signal mutation nulls the cached profile and the
// next read rebuilds it. The computation is a pure function of the current
// active-signal set, so concurrent rebuilds converge and the cache write is
// last-writer-wins.
type Builder struct {
	signals    SignalSource
	embeddings EmbeddingSource
	window     time.Duration
	now        func() time.Time
}

// NewBuilder creates a centroid builder with configuration options.
func NewBuilder(signals SignalSource, embeddings EmbeddingSource, opts ...Option) *Builder {
	b := &Builder{
		signals:    signals,
		embeddings: embeddings,
		window:     defaultSignalWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Centroids returns the user's taste profile, rebuilding it when the cache
// is stale. A partition with no contributing events yields a nil centroid
// in a profile whose ComputedAt is still set; that is "no history", not
// "stale".
func (b *Builder) Centroids(ctx context.Context, userID string) (model.TasteProfile, error) {
	cached, err := b.signals.Profile(ctx, userID)
	if err != nil {
		return model.TasteProfile{}, fmt.Errorf("read cached profile: %w", err)
	}
	if cached.Fresh() {
		return cached, nil
	}

	start := time.Now()
	profile, err := b.rebuild(ctx, userID)
	if err != nil {
		return model.TasteProfile{}, err
	}

	if err := b.signals.StoreProfile(ctx, userID, profile); err != nil {
		return model.TasteProfile{}, fmt.Errorf("store profile: %w", err)
	}
	metrics.RecordCentroidRecompute(float64(time.Since(start).Milliseconds()))

	return profile, nil
}

// rebuild derives both centroids from the active signals inside the
// rolling window.
func (b *Builder) rebuild(ctx context.Context, userID string) (model.TasteProfile, error) {
	now := b.now()
	cutoff := now.Add(-b.window)

	sigs, err := b.signals.ActiveSince(ctx, userID, cutoff)
	if err != nil {
		return model.TasteProfile{}, fmt.Errorf("gather signals: %w", err)
	}

	// Partition by referenced event; an event liked through several
	// positive sub-types still contributes one vector to the mean.
	positiveIDs := make(map[string]struct{})
	negativeIDs := make(map[string]struct{})
	ids := make([]string, 0, len(sigs))
	for i := range sigs {
		sig := sigs[i]
		set := negativeIDs
		if sig.Kind.Positive() {
			set = positiveIDs
		}
		if _, seen := set[sig.EventID]; !seen {
			set[sig.EventID] = struct{}{}
			ids = append(ids, sig.EventID)
		}
	}

	embeddings, err := b.embeddings.BulkEmbeddings(ctx, ids)
	if err != nil {
		return model.TasteProfile{}, fmt.Errorf("fetch embeddings: %w", err)
	}

	computedAt := now
	return model.TasteProfile{
		Positive:   meanVector(positiveIDs, embeddings),
		Negative:   meanVector(negativeIDs, embeddings),
		ComputedAt: &computedAt,
	}, nil
}

// meanVector computes the unweighted mean of the embeddings referenced by
// ids. Events without an embedding are skipped; zero contributing vectors
// yield nil, which is explicitly distinct from an all-zeros centroid.
// Iteration runs in sorted id order so the centroid dimension pins to the
// lexicographically first embedded event, not to map iteration order.
func meanVector(ids map[string]struct{}, embeddings map[string][]float64) []float64 {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var sum []float64
	count := 0
	for _, id := range sorted {
		emb, ok := embeddings[id]
		if !ok {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(emb))
		}
		if len(emb) != len(sum) {
			continue
		}
		for i := range emb {
			sum[i] += emb[i]
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}
