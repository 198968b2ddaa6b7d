package taste

import "time"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithSignalWindow sets the rolling window of signals considered when
// computing centroids.
func WithSignalWindow(window time.Duration) Option {
	return func(b *Builder) {
		if window > 0 {
			b.window = window
		}
	}
}

// WithClock overrides the clock used for window cutoffs and ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}
