package taste

import (
	"context"
	"fmt"

	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/internal/domain/scoring"
	"github.com/okian/feedrank/internal/domain/types"
)

// TitleSource resolves event titles for explanations.
type TitleSource interface {
	Get(ctx context.Context, id string) (model.Event, error)
}

// Resolver finds the liked event that best justifies a recommendation.
// The pairwise scan is O(candidates x positive signals); callers keep the
// signal list bounded and only invoke the resolver for tiered events.
type Resolver struct {
	embeddings EmbeddingSource
	titles     TitleSource
}

// NewResolver creates an explanation resolver.
func NewResolver(embeddings EmbeddingSource, titles TitleSource) *Resolver {
	return &Resolver{embeddings: embeddings, titles: titles}
}

// NearestLiked returns the event among the active positive signals whose
// embedding is most similar to the target, ties broken by the most recent
// signal. The target event itself is skipped even when liked, so an event
// is never explained by itself. It returns nil when the signal set is
// empty or none of its events have embeddings.
func (r *Resolver) NearestLiked(ctx context.Context, eventID string, embedding []float64, signals []model.Signal) (*types.Explanation, error) {
	if len(embedding) == 0 || len(signals) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(signals))
	for i := range signals {
		if signals[i].EventID == eventID {
			continue
		}
		ids = append(ids, signals[i].EventID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	embeddings, err := r.embeddings.BulkEmbeddings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch liked embeddings: %w", err)
	}

	var best *model.Signal
	bestSim := 0.0
	for i := range signals {
		sig := &signals[i]
		if sig.EventID == eventID {
			continue
		}
		emb, ok := embeddings[sig.EventID]
		if !ok {
			continue
		}
		sim := scoring.CosineSimilarity(embedding, emb)
		switch {
		case best == nil, sim > bestSim:
			best, bestSim = sig, sim
		case sim == bestSim && sig.CreatedAt.After(best.CreatedAt):
			best = sig
		}
	}
	if best == nil {
		return nil, nil
	}

	liked, err := r.titles.Get(ctx, best.EventID)
	if err != nil {
		return nil, fmt.Errorf("resolve liked event: %w", err)
	}
	return &types.Explanation{EventID: liked.ID, Title: liked.Title}, nil
}
