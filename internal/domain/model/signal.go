package model

import "time"

// SignalKind identifies the kind of behavioral signal a user recorded
// against an event.
type SignalKind string

// Recognized signal kinds. The positive sub-types each carry their own
// identity slot per (user, event); hide is the single negative kind.
const (
	KindFavorite    SignalKind = "favorite"
	KindCalendarAdd SignalKind = "calendar-add"
	KindShare       SignalKind = "share"
	KindViewSource  SignalKind = "view-source"
	KindHide        SignalKind = "hide"
)

// Valid reports whether k is a recognized signal kind.
func (k SignalKind) Valid() bool {
	switch k {
	case KindFavorite, KindCalendarAdd, KindShare, KindViewSource, KindHide:
		return true
	}
	return false
}

// Positive reports whether k contributes to the positive taste centroid.
func (k SignalKind) Positive() bool {
	return k.Valid() && k != KindHide
}

// Signal is a timestamped, user-attributed action on an event. Signals are
// soft-deleted: Active=false retains the row for history but excludes it
// from scoring.
type Signal struct {
	ID        string
	UserID    string
	EventID   string
	Kind      SignalKind
	CreatedAt time.Time
	Active    bool
}

// TasteProfile caches a user's derived centroids. A nil centroid field
// means "stale, recompute on next read", which is distinct from a computed
// profile whose partition had no contributing events (ComputedAt set,
// centroid still nil).
type TasteProfile struct {
	Positive   []float64
	Negative   []float64
	ComputedAt *time.Time
}

// Fresh reports whether the cached centroids can be served without
// recomputation.
func (p TasteProfile) Fresh() bool {
	return p.ComputedAt != nil
}
