package ports

import (
	"context"
	"time"
)

// Change event kinds published by the collection manager.
const (
	EventRouteAdded       = "route_added"
	EventRouteRemoved     = "route_removed"
	EventSelectionChanged = "selection_changed"
	EventDataChanged      = "data_changed"
)

// ChangeEvent describes a single mutation of the route collection.
type ChangeEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	RouteName string    `json:"route_name,omitempty"`
	At        time.Time `json:"at"`
}

// ChangeNotifier is the publish point the manager signals on every
// selection change and data change. Consumers redraw or update side panels.
type ChangeNotifier interface {
	Notify(ctx context.Context, ev ChangeEvent) error
}
