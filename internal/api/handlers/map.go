package handlers

import (
	"net/http"

	"github.com/paulmach/orb/geojson"
)

// FeatureSource supplies the rendered map surface.
type FeatureSource interface {
	FeatureCollection() *geojson.FeatureCollection
}

// MapHandler serves the rendered route collection as GeoJSON for map
// clients.
type MapHandler struct {
	Source FeatureSource
}

func (h *MapHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, h.Source.FeatureCollection())
}
