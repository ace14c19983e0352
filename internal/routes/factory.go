package routes

import "route-collection-service/internal/domain"

// RouteLayerFactory constructs route layers for the collection manager.
type RouteLayerFactory struct{}

// CreateRouteLayer wraps an existing route. The layer starts hidden; the
// manager transitions it when it is added to the collection.
func (f *RouteLayerFactory) CreateRouteLayer(route *domain.Route) *RouteLayer {
	return &RouteLayer{
		route:    route,
		state:    LayerHidden,
		editMode: EditModeNone,
	}
}

// CreateRouteLayerFromData wraps a deep copy of an imported route
// descriptor. Imported routes default to visible.
func (f *RouteLayerFactory) CreateRouteLayerFromData(data *domain.Route) *RouteLayer {
	r := data.Copy()
	r.IsVisible = true
	return f.CreateRouteLayer(r)
}
