package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	// ErrNoTasteSignal means the user has no active positive signals (or
	// none with embeddings) and personalization is unavailable. It is
	// deliberately distinct from an empty feed caused by filtering.
	ErrNoTasteSignal = errors.New("not enough taste signal")
)
