package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"route-collection-service/internal/api/dto"
	"route-collection-service/internal/domain"
	"route-collection-service/internal/routes"
)

// RouteHandler exposes the collection manager's operations over HTTP. It
// performs the caller-side pre-validation the manager's contract expects
// (e.g. checking for a merge candidate before mutating).
type RouteHandler struct {
	Manager *routes.CollectionManager
}

// Collection serves the /routes endpoint: list, create, remove.
func (h *RouteHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *RouteHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.summaries())
}

func (h *RouteHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload dto.RoutePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	layer := h.Manager.AddRoute(r.Context(), payload.ToDomain())
	if layer == nil {
		writeError(w, r, http.StatusBadRequest, "invalid route")
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.RouteSummary{
		Name:         layer.Name(),
		Visible:      true,
		State:        layer.State().String(),
		Selected:     true,
		SegmentCount: len(payload.Segments),
		MarkerCount:  len(payload.Markers),
	})
}

func (h *RouteHandler) remove(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	// Removing an unknown route is a no-op, not an error.
	h.Manager.RemoveRoute(r.Context(), name)
	w.WriteHeader(http.StatusNoContent)
}

// Select serves POST /routes/select: the click-to-activate toggle.
func (h *RouteHandler) Select(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SelectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	layer := h.Manager.LayerByName(req.Name)
	if layer == nil {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	h.Manager.ChangeRouteState(r.Context(), layer)
	writeJSON(w, r, http.StatusOK, h.summaries())
}

// Split serves POST /routes/split.
func (h *RouteHandler) Split(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SplitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.Manager.SplitSelectedRouteAtIndex(r.Context(), req.SegmentIndex)
	switch {
	case errors.Is(err, routes.ErrSelectionEmpty):
		writeError(w, r, http.StatusConflict, "no route selected")
	case errors.Is(err, routes.ErrSegmentNotFound):
		writeError(w, r, http.StatusBadRequest, "segment index out of range")
	case errors.Is(err, routes.ErrRouteEmpty):
		writeError(w, r, http.StatusConflict, "selected route has no geometry")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, r, http.StatusOK, h.summaries())
	}
}

// Merge serves POST /routes/merge. The candidate check runs first so the
// user gets a "cannot merge" answer without any mutation.
func (h *RouteHandler) Merge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.MergeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if h.Manager.GetClosestRoute(req.IsFirst) == nil {
		writeError(w, r, http.StatusConflict, "cannot merge: no route within merge distance")
		return
	}

	err := h.Manager.MergeSelectedRouteToClosest(r.Context(), req.IsFirst)
	switch {
	case errors.Is(err, routes.ErrSelectionEmpty):
		writeError(w, r, http.StatusConflict, "no route selected")
	case errors.Is(err, routes.ErrNoCandidateFound):
		writeError(w, r, http.StatusConflict, "cannot merge: no route within merge distance")
	case errors.Is(err, routes.ErrRouteEmpty):
		writeError(w, r, http.StatusConflict, "selected route has no geometry")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, r, http.StatusOK, h.summaries())
	}
}

// Import serves POST /routes/import with an export-shaped payload.
func (h *RouteHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	data := make([]*domain.Route, 0, len(req.Routes))
	for _, p := range req.Routes {
		data = append(data, p.ToDomain())
	}

	h.Manager.SetData(r.Context(), data)
	writeJSON(w, r, http.StatusOK, h.summaries())
}

// Export serves GET /routes/export: all visible routes.
func (h *RouteHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data := h.Manager.GetData()
	res := dto.ExportResponse{Routes: make([]dto.RoutePayload, 0, len(data))}
	for _, route := range data {
		res.Routes = append(res.Routes, dto.FromDomain(route))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) summaries() dto.ListRoutesResponse {
	selected := h.Manager.Selected()
	layers := h.Manager.Layers()

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteSummary, 0, len(layers))}
	for _, l := range layers {
		snap := l.Snapshot()
		res.Routes = append(res.Routes, dto.RouteSummary{
			Name:         snap.Name,
			Visible:      snap.IsVisible,
			State:        l.State().String(),
			Selected:     l == selected,
			SegmentCount: len(snap.Segments),
			MarkerCount:  len(snap.Markers),
		})
	}
	return res
}

// decodeBody decodes a single JSON object request body, rejecting unknown
// fields and trailing content. It writes the error response itself and
// reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
