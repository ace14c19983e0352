package handlers

import (
	"errors"
	"log"
	"net/http"

	"route-collection-service/internal/api/dto"
	"route-collection-service/internal/ports"
	"route-collection-service/internal/routes"
)

// SnapshotHandler persists and restores route collection exports.
type SnapshotHandler struct {
	Repo    ports.SnapshotRepository
	Manager *routes.CollectionManager
}

// Collection serves the /snapshots endpoint: list and save.
func (h *SnapshotHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *SnapshotHandler) list(w http.ResponseWriter, r *http.Request) {
	names, err := h.Repo.List(r.Context())
	if err != nil {
		log.Printf("list snapshots failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ListSnapshotsResponse{Snapshots: names})
}

func (h *SnapshotHandler) save(w http.ResponseWriter, r *http.Request) {
	var req dto.SnapshotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.Repo.Save(r.Context(), req.Name, h.Manager.GetData()); err != nil {
		log.Printf("save snapshot failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]string{"name": req.Name})
}

// Load serves POST /snapshots/load: imports a stored snapshot into the
// collection through the manager's usual import path.
func (h *SnapshotHandler) Load(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SnapshotRequest
	if !decodeBody(w, r, &req) {
		return
	}

	data, err := h.Repo.Load(r.Context(), req.Name)
	if errors.Is(err, ports.ErrSnapshotNotFound) {
		writeError(w, r, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		log.Printf("load snapshot failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.Manager.SetData(r.Context(), data)
	writeJSON(w, r, http.StatusOK, map[string]int{"imported": len(data)})
}
