// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	repository "github.com/okian/feedrank/internal/adapters/repository"
	"github.com/okian/feedrank/internal/domain/feed"
	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/internal/domain/scoring"
	"github.com/okian/feedrank/internal/domain/taste"
	"github.com/okian/feedrank/internal/domain/types"
	"github.com/okian/feedrank/pkg/logger"
	"github.com/okian/feedrank/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultPositiveSignalCap = 200
	defaultSignalWindow      = 365 * 24 * time.Hour
	defaultFeedHorizon       = 60 * 24 * time.Hour
)

// Service wires the stores and scoring engines behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	events       *repository.InMemoryEventStore
	signals      *repository.InMemorySignalStore
	builder      *taste.Builder
	resolver     *taste.Resolver
	personalizer *scoring.Personalizer
	pipeline     *feed.Pipeline

	// Configuration
	positiveSignalCap int
	signalWindow      time.Duration
	feedHorizon       time.Duration
	location          *time.Location
	inclusionCutoff   float64
	goodThreshold     float64
	greatThreshold    float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPositiveSignalCap bounds the positive-signal set scanned per
// explanation.
func WithPositiveSignalCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.positiveSignalCap = n
		}
	}
}

// WithSignalWindow sets the rolling window of signals shaping centroids.
func WithSignalWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.signalWindow = window
		}
	}
}

// WithFeedHorizon bounds how far ahead the feed looks for candidates.
func WithFeedHorizon(horizon time.Duration) Option {
	return func(s *Service) {
		if horizon > 0 {
			s.feedHorizon = horizon
		}
	}
}

// WithLocation sets the timezone whose wall-clock days drive feed buckets.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithPersonalizationThresholds sets the inclusion cutoff and tier
// thresholds. Callers validate the ordering great > good > cutoff.
func WithPersonalizationThresholds(cutoff, good, great float64) Option {
	return func(s *Service) {
		if great > good && good > cutoff && cutoff > 0 {
			s.inclusionCutoff = cutoff
			s.goodThreshold = good
			s.greatThreshold = great
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		positiveSignalCap: defaultPositiveSignalCap,
		signalWindow:      defaultSignalWindow,
		feedHorizon:       defaultFeedHorizon,
		location:          time.UTC,
		inclusionCutoff:   0.3,
		goodThreshold:     0.5,
		greatThreshold:    0.75,
		logger:            nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting feedrank service...")

	s.events = repository.NewInMemoryEventStore()
	s.signals = repository.NewInMemorySignalStore(
		repository.WithPositiveSignalCap(s.positiveSignalCap),
	)
	s.builder = taste.NewBuilder(s.signals, s.events,
		taste.WithSignalWindow(s.signalWindow),
	)
	s.resolver = taste.NewResolver(s.events, s.events)
	s.personalizer = scoring.NewPersonalizer(
		scoring.WithInclusionCutoff(s.inclusionCutoff),
		scoring.WithTierThresholds(s.goodThreshold, s.greatThreshold),
	)
	s.pipeline = feed.NewPipeline(s.events, s.builder, s.signals, s.resolver, s.personalizer,
		feed.WithHorizon(s.feedHorizon),
		feed.WithLocation(s.location),
	)

	s.started = true
	s.logger.Info(ctx, "feedrank service started",
		logger.Int("positiveSignalCap", s.positiveSignalCap),
		logger.String("timezone", s.location.String()),
		logger.Float64("inclusionCutoff", s.inclusionCutoff),
	)

	return nil
}

// Stop shuts the service down. All operations are request-scoped, so there
// is nothing to drain; this exists for lifecycle symmetry.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "feedrank service stopped")
}

// RecordSignal records a behavioral signal. Duplicate submissions are
// absorbed as successful no-ops; the bool reports whether a new signal was
// written.
func (s *Service) RecordSignal(ctx context.Context, userID, eventID string, kind model.SignalKind) (bool, error) {
	_, created, err := s.signals.Record(ctx, userID, eventID, kind)
	if err != nil {
		return false, err
	}
	s.logger.Debug(ctx, "signal recorded",
		logger.String("userID", userID),
		logger.String("eventID", eventID),
		logger.String("kind", string(kind)),
		logger.Any("created", created),
	)
	return created, nil
}

// RemoveSignal retracts a signal; removing an absent signal is a no-op.
func (s *Service) RemoveSignal(ctx context.Context, userID, eventID string, kind model.SignalKind) error {
	return s.signals.Remove(ctx, userID, eventID, kind)
}

// Feed builds the personalized feed for a user. Returns
// feed.ErrNoTasteSignal when personalization is unavailable.
func (s *Service) Feed(ctx context.Context, userID string) (types.Feed, error) {
	return s.pipeline.Build(ctx, userID, time.Now())
}

// TopEvents returns the non-personalized top-N surface ranked by the
// persisted moderated total.
func (s *Service) TopEvents(ctx context.Context, n int) ([]types.RankedEvent, error) {
	events, err := s.events.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	ranked := make([]types.RankedEvent, len(events))
	for i := range events {
		ranked[i] = types.RankedEvent{
			Rank:      i + 1,
			EventID:   events[i].ID,
			Title:     events[i].Title,
			StartTime: events[i].StartTime,
			Total:     events[i].Score,
		}
	}
	return ranked, nil
}

// UpsertEvent ingests an event record from the tagging pipeline.
func (s *Service) UpsertEvent(ctx context.Context, e model.Event) (model.Event, error) {
	return s.events.Upsert(ctx, e)
}

// EventScores returns the final per-category scores, the total, and the
// current override structure for the moderation surface.
func (s *Service) EventScores(ctx context.Context, eventID string) (scoring.FinalScores, model.Event, error) {
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return scoring.FinalScores{}, model.Event{}, err
	}
	return scoring.CalculateFinalScores(e.AIScores, e.Override), e, nil
}

// SetAdminOverride applies an absolute admin override to an event.
func (s *Service) SetAdminOverride(ctx context.Context, eventID string, o model.AdminOverride) (model.Event, error) {
	return s.events.SetAdminOverride(ctx, eventID, o)
}

// ClearAdminOverride removes only the admin override.
func (s *Service) ClearAdminOverride(ctx context.Context, eventID string) (model.Event, error) {
	return s.events.ClearAdminOverride(ctx, eventID)
}

// UpsertCuratorBoost applies a curator's bounded boost to an event.
func (s *Service) UpsertCuratorBoost(ctx context.Context, eventID string, b model.CuratorBoost) (model.Event, error) {
	return s.events.UpsertCuratorBoost(ctx, eventID, b)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"positiveSignalCap": s.positiveSignalCap,
		"timezone":          s.location.String(),
	}

	if s.started {
		totalEvents := s.events.Count(ctx)
		totalUsers := s.signals.Users(ctx)
		activeSignals := s.signals.ActiveCount(ctx)

		stats["totalEvents"] = totalEvents
		stats["totalUsers"] = totalUsers
		stats["activeSignals"] = activeSignals

		metrics.UpdateTotalEvents(totalEvents)
		metrics.UpdateTotalUsers(totalUsers)
		metrics.UpdateActiveSignals(activeSignals)
	}

	return stats
}
