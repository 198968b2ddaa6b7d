package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FEEDRANK_CONFIG is set
//  3. env (prefix FEEDRANK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FEEDRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FEEDRANK_ADDR, FEEDRANK_TIMEZONE, ...
	// Map env keys like FEEDRANK_GOOD_THRESHOLD -> good_threshold (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FEEDRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "feedrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the invariants the engine assumes.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.InclusionCutoff <= 0 || c.InclusionCutoff >= 1 {
		return fmt.Errorf("%w: inclusion_cutoff must be in (0,1)", ErrInvalidConfig)
	}
	// Tier thresholds must stay ordered above the inclusion cutoff.
	if !(c.GreatThreshold > c.GoodThreshold && c.GoodThreshold > c.InclusionCutoff) {
		return fmt.Errorf("%w: thresholds must satisfy great > good > inclusion_cutoff", ErrInvalidConfig)
	}
	if c.SignalWindowDays <= 0 || c.FeedHorizonDays <= 0 {
		return fmt.Errorf("%w: signal_window_days and feed_horizon_days must be positive", ErrInvalidConfig)
	}
	if c.MaxTopLimit <= 0 {
		return fmt.Errorf("%w: max_top_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
