// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PositiveSignalCap bounds the active positive signals scanned when
	// resolving explanations.
	PositiveSignalCap int `koanf:"positive_signal_cap"`

	// SignalWindowDays is the rolling window of signals shaping taste
	// centroids.
	SignalWindowDays int `koanf:"signal_window_days"`

	// FeedHorizonDays bounds how far ahead the personalized feed looks.
	FeedHorizonDays int `koanf:"feed_horizon_days"`

	// Timezone is the IANA zone whose wall-clock day boundaries drive
	// feed bucket assignment.
	Timezone string `koanf:"timezone"`

	// InclusionCutoff excludes events scoring at or below it from the
	// personalized feed.
	InclusionCutoff float64 `koanf:"inclusion_cutoff"`

	// GoodThreshold and GreatThreshold are the tier badge cutoffs. The
	// ordering great > good > inclusion_cutoff is enforced at load time.
	GoodThreshold  float64 `koanf:"good_threshold"`
	GreatThreshold float64 `koanf:"great_threshold"`

	// MaxTopLimit caps GET /v1/events/top?limit.
	MaxTopLimit int `koanf:"max_top_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		PositiveSignalCap: 200,
		SignalWindowDays:  365,
		FeedHorizonDays:   60,
		Timezone:          "UTC",
		InclusionCutoff:   0.3,
		GoodThreshold:     0.5,
		GreatThreshold:    0.75,
		MaxTopLimit:       100,
	}
}
