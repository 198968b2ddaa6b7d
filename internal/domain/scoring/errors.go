package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrNoEmbedding        = errors.New("event has no embedding")
	ErrNoPositiveCentroid = errors.New("no positive centroid")
)
