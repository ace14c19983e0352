package render

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"route-collection-service/internal/ports"
)

// GeoJSONRenderer implements the MapRenderer port by keeping the set of
// attached layers and materializing them into a GeoJSON feature collection
// on demand. It is the server-side stand-in for the map surface: clients
// poll the feature collection and draw it.
//
// Layers are read lazily through their Snapshot accessor, so the rendered
// geometry is always current without the manager having to push updates.
type GeoJSONRenderer struct {
	mu     sync.Mutex
	layers map[string]ports.MapLayer
	order  []string
}

func NewGeoJSONRenderer() *GeoJSONRenderer {
	return &GeoJSONRenderer{layers: map[string]ports.MapLayer{}}
}

// AddLayer attaches a layer. Re-attaching an already attached layer is a
// no-op, keeping attach idempotent for the manager's hide/show cycles.
func (r *GeoJSONRenderer) AddLayer(layer ports.MapLayer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := layer.Name()
	if _, ok := r.layers[name]; ok {
		r.layers[name] = layer
		return
	}
	r.layers[name] = layer
	r.order = append(r.order, name)
}

// RemoveLayer detaches a layer; unknown layers are ignored.
func (r *GeoJSONRenderer) RemoveLayer(layer ports.MapLayer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := layer.Name()
	if _, ok := r.layers[name]; !ok {
		return
	}
	delete(r.layers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// LayerCount returns the number of attached layers.
func (r *GeoJSONRenderer) LayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.layers)
}

// FeatureCollection renders all attached, visible layers in attach order:
// one MultiLineString feature per route plus one Point feature per marker.
func (r *GeoJSONRenderer) FeatureCollection() *geojson.FeatureCollection {
	r.mu.Lock()
	defer r.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, name := range r.order {
		route := r.layers[name].Snapshot()
		if !route.IsVisible {
			continue
		}

		lines := make(orb.MultiLineString, 0, len(route.Segments))
		routingTypes := make([]string, 0, len(route.Segments))
		for _, s := range route.Segments {
			if len(s.Latlngs) == 0 {
				continue
			}
			lines = append(lines, s.Latlngs)
			routingTypes = append(routingTypes, string(s.RoutingType))
		}

		f := geojson.NewFeature(lines)
		f.Properties["name"] = route.Name
		f.Properties["routingTypes"] = routingTypes
		fc.Append(f)

		for _, mk := range route.Markers {
			mf := geojson.NewFeature(mk.Latlng)
			mf.Properties["route"] = route.Name
			mf.Properties["title"] = mk.Title
			mf.Properties["type"] = mk.Type
			fc.Append(mf)
		}
	}
	return fc
}
