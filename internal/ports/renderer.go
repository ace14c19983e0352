package ports

import "route-collection-service/internal/domain"

// MapLayer is the read-only view of a managed route layer that the map
// surface consumes. Snapshot returns a deep copy; renderers must not reach
// into live route data, all mutation is manager-mediated.
type MapLayer interface {
	Name() string
	Snapshot() *domain.Route
}

// MapRenderer keeps the visual surface synchronized with collection
// membership and visibility. The manager adds a layer when it becomes
// visible and removes it when it is hidden or destroyed.
type MapRenderer interface {
	AddLayer(layer MapLayer)
	RemoveLayer(layer MapLayer)
}
