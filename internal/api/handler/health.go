package handler

import (
	"net/http"

	"github.com/mcoot/registrar/internal/api/response"
	"github.com/mcoot/registrar/internal/storage"
)

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	storage storage.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage storage.Storage) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.storage.CountRegistrants(r.Context())
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Registrants: count})
}
