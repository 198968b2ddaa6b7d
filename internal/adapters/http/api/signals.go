package api

import (
	"net/http"

	"github.com/okian/feedrank/internal/domain/model"
)

// SignalsHandler handles behavioral signal requests.
type SignalsHandler struct {
	deps Dependencies
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(deps Dependencies) *SignalsHandler {
	return &SignalsHandler{deps: deps}
}

// signalRequest mirrors the schema for POST and DELETE /v1/signals.
type signalRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Kind    string `json:"kind"     validate:"required,oneof=favorite calendar-add share view-source hide"`
}

type signalResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandleRecord handles POST /v1/signals requests. A duplicate submission,
// racing or sequential, is reported as success without a second write.
func (h *SignalsHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req signalRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	created, err := h.deps.RecordSignal(r.Context(), uid, req.EventID, model.SignalKind(req.Kind))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, signalResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusCreated, signalResponse{Status: "recorded", Duplicate: false})
}

// HandleRemove handles DELETE /v1/signals requests. Removing an absent
// signal still succeeds.
func (h *SignalsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req signalRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.deps.RemoveSignal(r.Context(), uid, req.EventID, model.SignalKind(req.Kind)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
