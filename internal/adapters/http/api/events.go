package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/feedrank/internal/domain/model"
)

// EventsHandler handles event ingestion and read surfaces.
type EventsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies, maxLimit int) *EventsHandler {
	return &EventsHandler{deps: deps, maxLimit: maxLimit}
}

// eventUpsertRequest mirrors the schema for PUT /v1/events/{id}, the
// boundary the ingestion/tagging pipeline writes through.
type eventUpsertRequest struct {
	Title     string    `json:"title"      validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	Embedding []float64 `json:"embedding"`
	Rarity    *int      `json:"rarity"     validate:"omitempty,min=0,max=10"`
	Unique    *int      `json:"unique"     validate:"omitempty,min=0,max=10"`
	Magnitude *int      `json:"magnitude"  validate:"omitempty,min=0,max=10"`
}

// HandleUpsert handles PUT /v1/events/{id} requests.
func (h *EventsHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req eventUpsertRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	e, err := h.deps.UpsertEvent(r.Context(), model.Event{
		ID:        id,
		Title:     req.Title,
		StartTime: req.StartTime,
		Embedding: req.Embedding,
		AIScores: model.SubScores{
			Rarity:    req.Rarity,
			Unique:    req.Unique,
			Magnitude: req.Magnitude,
		},
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event_id": e.ID,
		"total":    e.Score,
	})
}

// HandleScores handles GET /v1/events/{id}/scores requests for the
// moderation surface.
func (h *EventsHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	finals, e, err := h.deps.EventScores(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoresResponse{
		EventID:   e.ID,
		Rarity:    finals.Rarity,
		Unique:    finals.Unique,
		Magnitude: finals.Magnitude,
		Total:     finals.Total,
		Override:  newOverrideView(e.Override),
	})
}

// HandleTop handles GET /v1/events/top?limit=N requests, the
// non-personalized ranking surface over persisted totals.
func (h *EventsHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}

	ranked, err := h.deps.TopEvents(r.Context(), n)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

// scoresResponse is the moderation read shape: final per-category scores
// plus the current override structure.
type scoresResponse struct {
	EventID   string       `json:"event_id"`
	Rarity    int          `json:"rarity"`
	Unique    int          `json:"unique"`
	Magnitude int          `json:"magnitude"`
	Total     int          `json:"total"`
	Override  overrideView `json:"score_override"`
}

type overrideView struct {
	Admin  *adminOverrideView `json:"admin,omitempty"`
	Boosts []curatorBoostView `json:"boosts"`
}

type adminOverrideView struct {
	Rarity    *int      `json:"rarity,omitempty"`
	Unique    *int      `json:"unique,omitempty"`
	Magnitude *int      `json:"magnitude,omitempty"`
	Reason    string    `json:"reason"`
	SetBy     string    `json:"set_by"`
	SetAt     time.Time `json:"set_at"`
}

type curatorBoostView struct {
	CuratorID string    `json:"curator_id"`
	Rarity    *int      `json:"rarity,omitempty"`
	Unique    *int      `json:"unique,omitempty"`
	Magnitude *int      `json:"magnitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newOverrideView(o model.ScoreOverride) overrideView {
	view := overrideView{Boosts: make([]curatorBoostView, 0, len(o.Boosts))}
	if o.Admin != nil {
		view.Admin = &adminOverrideView{
			Rarity:    o.Admin.Rarity,
			Unique:    o.Admin.Unique,
			Magnitude: o.Admin.Magnitude,
			Reason:    o.Admin.Reason,
			SetBy:     o.Admin.SetBy,
			SetAt:     o.Admin.SetAt,
		}
	}
	for i := range o.Boosts {
		b := o.Boosts[i]
		view.Boosts = append(view.Boosts, curatorBoostView{
			CuratorID: b.CuratorID,
			Rarity:    b.Rarity,
			Unique:    b.Unique,
			Magnitude: b.Magnitude,
			CreatedAt: b.CreatedAt,
		})
	}
	return view
}
