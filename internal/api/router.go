package api

import (
	"net/http"

	"route-collection-service/internal/api/handlers"
	"route-collection-service/internal/ports"
	"route-collection-service/internal/routes"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(manager *routes.CollectionManager, source handlers.FeatureSource, snapshots ports.SnapshotRepository) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Manager: manager}
	mapHandler := &handlers.MapHandler{Source: source}
	snapshotHandler := &handlers.SnapshotHandler{Repo: snapshots, Manager: manager}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes", routeHandler.Collection)
	mux.HandleFunc("/routes/select", routeHandler.Select)
	mux.HandleFunc("/routes/split", routeHandler.Split)
	mux.HandleFunc("/routes/merge", routeHandler.Merge)
	mux.HandleFunc("/routes/import", routeHandler.Import)
	mux.HandleFunc("/routes/export", routeHandler.Export)
	mux.HandleFunc("/map.geojson", mapHandler.Get)
	mux.HandleFunc("/snapshots", snapshotHandler.Collection)
	mux.HandleFunc("/snapshots/load", snapshotHandler.Load)

	return requestIDMiddleware(loggingMiddleware(mux))
}
