package api

import (
	"errors"
	"net/http"

	"github.com/okian/feedrank/internal/domain/feed"
	"github.com/okian/feedrank/internal/domain/types"
)

// FeedHandler handles personalized feed requests.
type FeedHandler struct {
	deps Dependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

// feedResponse distinguishes a populated feed from the explicit
// personalization-unavailable state. Both are HTTP 200: the request
// succeeded, the user just has nothing to personalize with yet.
type feedResponse struct {
	Status  string             `json:"status"`
	Buckets []types.FeedBucket `json:"buckets,omitempty"`
}

// HandleGetFeed handles GET /v1/feed requests.
func (h *FeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	f, err := h.deps.Feed(r.Context(), uid)
	if err != nil {
		if errors.Is(err, feed.ErrNoTasteSignal) {
			writeJSON(w, http.StatusOK, feedResponse{Status: "no_taste_signal"})
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{Status: "ok", Buckets: f.Buckets})
}
