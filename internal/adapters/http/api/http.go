// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/feedrank/internal/adapters/repository"
	"github.com/okian/feedrank/internal/domain/model"
	"github.com/okian/feedrank/internal/domain/scoring"
	"github.com/okian/feedrank/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Signal operations.
	RecordSignal(ctx context.Context, userID, eventID string, kind model.SignalKind) (bool, error)
	RemoveSignal(ctx context.Context, userID, eventID string, kind model.SignalKind) error

	// Read surfaces.
	Feed(ctx context.Context, userID string) (types.Feed, error)
	TopEvents(ctx context.Context, n int) ([]types.RankedEvent, error)
	EventScores(ctx context.Context, eventID string) (scoring.FinalScores, model.Event, error)

	// Ingestion and moderation.
	UpsertEvent(ctx context.Context, e model.Event) (model.Event, error)
	SetAdminOverride(ctx context.Context, eventID string, o model.AdminOverride) (model.Event, error)
	ClearAdminOverride(ctx context.Context, eventID string) (model.Event, error)
	UpsertCuratorBoost(ctx context.Context, eventID string, b model.CuratorBoost) (model.Event, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	signalsHandler    *SignalsHandler
	feedHandler       *FeedHandler
	eventsHandler     *EventsHandler
	moderationHandler *ModerationHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxTopLimit int) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		signalsHandler:    NewSignalsHandler(deps),
		feedHandler:       NewFeedHandler(deps),
		eventsHandler:     NewEventsHandler(deps, maxTopLimit),
		moderationHandler: NewModerationHandler(deps),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/signals", MetricsMiddleware(s.signalsHandler.HandleRecord, "signals"))
		r.Delete("/signals", MetricsMiddleware(s.signalsHandler.HandleRemove, "signals"))

		r.Get("/feed", MetricsMiddleware(s.feedHandler.HandleGetFeed, "feed"))

		r.Get("/events/top", MetricsMiddleware(s.eventsHandler.HandleTop, "events_top"))
		r.Put("/events/{id}", MetricsMiddleware(s.eventsHandler.HandleUpsert, "events"))
		r.Get("/events/{id}/scores", MetricsMiddleware(s.eventsHandler.HandleScores, "event_scores"))

		r.Put("/events/{id}/override", MetricsMiddleware(s.moderationHandler.HandleSetOverride, "override"))
		r.Delete("/events/{id}/override", MetricsMiddleware(s.moderationHandler.HandleClearOverride, "override"))
		r.Put("/events/{id}/boost", MetricsMiddleware(s.moderationHandler.HandleBoost, "boost"))
	})
}

// validate is the shared request validator. Struct tags describe the
// boundary schema; handlers receive typed, validated values only.
var validate = validator.New() //nolint:gochecknoglobals // validator instances are designed to be shared

// decodeValid decodes the body into v and runs struct validation.
func decodeValid(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errWrap("decode", ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return errWrap("validate", ErrBadRequest, err)
	}
	return nil
}

// userID extracts the authenticated subject supplied by the auth boundary.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError translates repository sentinels into HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidKind),
		errors.Is(err, repository.ErrMissingUserID),
		errors.Is(err, repository.ErrMissingEventID),
		errors.Is(err, repository.ErrScoreOutOfRange),
		errors.Is(err, repository.ErrDeltaOutOfRange),
		errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
