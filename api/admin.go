package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/jobpulse/internal/collectors"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

// AdminHandler holds the mutating operations kept behind authentication.
type AdminHandler struct {
	store   repository.JobStore
	index   repository.VectorIndex
	manager *collectors.Manager
}

func NewAdminHandler(store repository.JobStore, index repository.VectorIndex, manager *collectors.Manager) *AdminHandler {
	return &AdminHandler{store: store, index: index, manager: manager}
}

type refreshRequest struct {
	Clear bool `json:"clear"`
}

// Refresh runs one synchronous collection cycle and reports its outcome.
// An optional body {"clear": true} wipes both stores first.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		http.Error(w, "no collectors configured", http.StatusServiceUnavailable)
		return
	}

	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if req.Clear {
		if err := h.store.Clear(r.Context()); err != nil {
			http.Error(w, "clear failed", http.StatusInternalServerError)
			return
		}
		if err := h.index.Clear(r.Context()); err != nil {
			http.Error(w, "clear failed", http.StatusInternalServerError)
			return
		}
	}

	stats, err := h.manager.Refresh(r.Context())
	if err != nil {
		logger.Error("refresh failed", "error", err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats, http.StatusOK)
}

// Clear wipes both stores.
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		http.Error(w, "clear failed", http.StatusInternalServerError)
		return
	}
	if err := h.index.Clear(r.Context()); err != nil {
		http.Error(w, "clear failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "cleared"}, http.StatusOK)
}
