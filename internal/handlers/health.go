package handlers

import (
	"net/http"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *common.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadyHandler reports whether any tools are registered.
type ReadyHandler struct {
	tools SnapshotSource
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(tools SnapshotSource) *ReadyHandler {
	return &ReadyHandler{tools: tools}
}

// ServeHTTP handles GET /api/ready.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	n := h.tools.Current().Len()
	if n == 0 {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "empty", "tools": 0})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "tools": n})
}

// SnapshotSource exposes the currently published registry snapshot.
// *registry.Registry implements it.
type SnapshotSource interface {
	Current() *registry.Snapshot
}
