package routes

import (
	"github.com/paulmach/orb"

	"route-collection-service/internal/domain"
)

// LayerState is the interaction lifecycle of a route layer.
//
// Hidden -> Edit -> ReadOnly -> Hidden ...: Edit is reachable only through
// selection and ReadOnly only by demotion when another layer is selected.
type LayerState int

const (
	LayerHidden LayerState = iota
	LayerReadOnly
	LayerEdit
)

func (s LayerState) String() string {
	switch s {
	case LayerHidden:
		return "hidden"
	case LayerReadOnly:
		return "readonly"
	case LayerEdit:
		return "edit"
	}
	return "unknown"
}

// EditMode is the transient editing sub-mode active while a layer is in the
// Edit state. It survives a Hidden -> Edit round trip so that temporarily
// hiding a route (e.g. to merge markers in) can restore the prior sub-mode.
type EditMode string

const (
	EditModeNone  EditMode = "None"
	EditModeRoute EditMode = "Route"
	EditModePOI   EditMode = "POI"
)

// RouteLayer wraps one route together with its interaction state.
//
// State transitions are unconditional; the collection manager is
// responsible for invariant enforcement (at most one layer in Edit).
type RouteLayer struct {
	route    *domain.Route
	state    LayerState
	editMode EditMode

	// onDataChanged is the change-notification hook wired by the manager.
	onDataChanged func()
}

// Name returns the wrapped route's name.
func (l *RouteLayer) Name() string { return l.route.Name }

// State returns the current lifecycle state.
func (l *RouteLayer) State() LayerState { return l.state }

// Snapshot returns a deep copy of the wrapped route for read-only
// collaborators.
func (l *RouteLayer) Snapshot() *domain.Route { return l.route.Copy() }

// SetHiddenState hides the layer and drops its editing sub-mode.
func (l *RouteLayer) SetHiddenState() {
	l.state = LayerHidden
	l.route.IsVisible = false
	l.editMode = EditModeNone
}

// SetReadOnlyState makes the layer visible but not editable.
func (l *RouteLayer) SetReadOnlyState() {
	l.state = LayerReadOnly
	l.route.IsVisible = true
	l.editMode = EditModeNone
}

// SetEditRouteState makes the layer the editable one, defaulting to route
// editing.
func (l *RouteLayer) SetEditRouteState() {
	l.state = LayerEdit
	l.route.IsVisible = true
	l.editMode = EditModeRoute
}

func (l *RouteLayer) EditMode() EditMode { return l.editMode }

// SetEditMode restores a previously captured editing sub-mode.
func (l *RouteLayer) SetEditMode(mode EditMode) { l.editMode = mode }

// LastLatLng returns the last point of the last segment. ok is false for a
// route without segment geometry; callers must guard.
func (l *RouteLayer) LastLatLng() (orb.Point, bool) { return l.route.LastLatLng() }

// Reverse replaces the wrapped route with its reversed form. Merge
// pre-step only.
func (l *RouteLayer) Reverse() {
	l.route = l.route.Reversed()
}

// RaiseDataChanged notifies external collaborators that the route's
// geometry changed.
func (l *RouteLayer) RaiseDataChanged() {
	if l.onDataChanged != nil {
		l.onDataChanged()
	}
}
