package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/feedrank/internal/domain/model"
)

// ModerationHandler handles the privileged override and boost endpoints.
type ModerationHandler struct {
	deps Dependencies
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(deps Dependencies) *ModerationHandler {
	return &ModerationHandler{deps: deps}
}

// overrideRequest mirrors the schema for PUT /v1/events/{id}/override.
// Values are absolute replacements; any subset of categories may be set.
type overrideRequest struct {
	Rarity    *int   `json:"rarity"    validate:"omitempty,min=0,max=10"`
	Unique    *int   `json:"unique"    validate:"omitempty,min=0,max=10"`
	Magnitude *int   `json:"magnitude" validate:"omitempty,min=0,max=10"`
	Reason    string `json:"reason"    validate:"required"`
}

// boostRequest mirrors the schema for PUT /v1/events/{id}/boost. Deltas
// are bounded per curator; aggregation clamps the combined influence.
type boostRequest struct {
	Rarity    *int `json:"rarity"    validate:"omitempty,min=-2,max=2"`
	Unique    *int `json:"unique"    validate:"omitempty,min=-2,max=2"`
	Magnitude *int `json:"magnitude" validate:"omitempty,min=-2,max=2"`
}

// HandleSetOverride handles PUT /v1/events/{id}/override requests.
func (h *ModerationHandler) HandleSetOverride(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req overrideRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Rarity == nil && req.Unique == nil && req.Magnitude == nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	e, err := h.deps.SetAdminOverride(r.Context(), chi.URLParam(r, "id"), model.AdminOverride{
		Rarity:    req.Rarity,
		Unique:    req.Unique,
		Magnitude: req.Magnitude,
		Reason:    req.Reason,
		SetBy:     uid,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": e.ID, "total": e.Score})
}

// HandleClearOverride handles DELETE /v1/events/{id}/override requests.
// Only the admin override is removed; curator boosts stay.
func (h *ModerationHandler) HandleClearOverride(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	e, err := h.deps.ClearAdminOverride(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": e.ID, "total": e.Score})
}

// HandleBoost handles PUT /v1/events/{id}/boost requests. The same
// curator resubmitting replaces their prior boost rather than stacking it.
func (h *ModerationHandler) HandleBoost(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req boostRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Rarity == nil && req.Unique == nil && req.Magnitude == nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	e, err := h.deps.UpsertCuratorBoost(r.Context(), chi.URLParam(r, "id"), model.CuratorBoost{
		CuratorID: uid,
		Rarity:    req.Rarity,
		Unique:    req.Unique,
		Magnitude: req.Magnitude,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": e.ID, "total": e.Score})
}
