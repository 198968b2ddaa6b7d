package scoring

import (
	"math"

	"github.com/okian/feedrank/internal/domain/types"
)

// Default personalization thresholds. These are tunable configuration, but
// the ordering greatThreshold > goodThreshold > inclusionCutoff must hold.
const (
	defaultInclusionCutoff = 0.3
	defaultGoodThreshold   = 0.5
	defaultGreatThreshold  = 0.75
)

// Option applies a configuration option to the Personalizer.
type Option func(*Personalizer)

// WithInclusionCutoff sets the score at or below which events are excluded
// from the personalized feed entirely.
func WithInclusionCutoff(cutoff float64) Option {
	return func(p *Personalizer) {
		if cutoff > 0 && cutoff < 1 {
			p.inclusionCutoff = cutoff
		}
	}
}

// WithTierThresholds sets the good/great badge thresholds.
func WithTierThresholds(good, great float64) Option {
	return func(p *Personalizer) {
		if great > good {
			p.goodThreshold = good
			p.greatThreshold = great
		}
	}
}

// Personalizer maps an event embedding plus a user's taste centroids to a
// bounded score and a tier label. It holds only thresholds and is safe for
// concurrent use.
type Personalizer struct {
	inclusionCutoff float64
	goodThreshold   float64
	greatThreshold  float64
}

// NewPersonalizer creates a Personalizer with configuration options.
func NewPersonalizer(opts ...Option) *Personalizer {
	p := &Personalizer{
		inclusionCutoff: defaultInclusionCutoff,
		goodThreshold:   defaultGoodThreshold,
		greatThreshold:  defaultGreatThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Score maps an event embedding to [0,1] given the user's centroids. The
// embedding and positive centroid must be non-nil; a missing negative
// centroid is treated as zero opposition. The mapping is monotonically
// non-decreasing in cos(embedding, positive) and non-increasing in
// cos(embedding, negative).
func (p *Personalizer) Score(embedding, positive, negative []float64) (float64, error) {
	if len(embedding) == 0 {
		return 0, ErrNoEmbedding
	}
	if len(positive) == 0 {
		return 0, ErrNoPositiveCentroid
	}

	cosPos := CosineSimilarity(embedding, positive)
	var cosNeg float64
	if len(negative) > 0 {
		cosNeg = CosineSimilarity(embedding, negative)
	}

	return clamp01(0.5 + 0.5*(cosPos-cosNeg)), nil
}

// Include reports whether a score clears the feed inclusion cutoff. Scores
// at or below the cutoff mean "not relevant", not "low priority".
func (p *Personalizer) Include(score float64) bool {
	return score > p.inclusionCutoff
}

// Tier classifies an already-included score into a badge. Scores below the
// good threshold stay in the feed without a badge.
func (p *Personalizer) Tier(score float64) types.Tier {
	switch {
	case score >= p.greatThreshold:
		return types.TierGreat
	case score >= p.goodThreshold:
		return types.TierGood
	default:
		return types.TierNone
	}
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or a zero vector yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
