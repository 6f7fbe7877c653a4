package handlers

import (
	"context"
	"net/http"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/openapi"
)

// SourceReporter returns the outcome of the most recent load.
type SourceReporter interface {
	Sources() []openapi.SourceReport
}

// Reloader recompiles every source and publishes a new registry.
type Reloader interface {
	Reload(ctx context.Context) error
}

// SourcesResponse is the body of GET /sources and POST /reload.
type SourcesResponse struct {
	Tools   int                    `json:"tools"`
	Sources []openapi.SourceReport `json:"sources"`
}

// SourcesHandler reports per-source load results.
type SourcesHandler struct {
	tools   SnapshotSource
	sources SourceReporter
}

// NewSourcesHandler creates a new sources handler.
func NewSourcesHandler(tools SnapshotSource, sources SourceReporter) *SourcesHandler {
	return &SourcesHandler{tools: tools, sources: sources}
}

// ServeHTTP handles GET /sources.
func (h *SourcesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, sourcesResponse(h.tools, h.sources))
}

// ReloadHandler triggers a reload of all sources.
type ReloadHandler struct {
	reloader Reloader
	tools    SnapshotSource
	sources  SourceReporter
	logger   *common.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(reloader Reloader, tools SnapshotSource, sources SourceReporter, logger *common.Logger) *ReloadHandler {
	return &ReloadHandler{reloader: reloader, tools: tools, sources: sources, logger: logger}
}

// ServeHTTP handles POST /reload.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.reloader.Reload(r.Context()); err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("reload failed")
		WriteError(w, http.StatusInternalServerError, KindInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, sourcesResponse(h.tools, h.sources))
}

func sourcesResponse(tools SnapshotSource, sources SourceReporter) SourcesResponse {
	reports := sources.Sources()
	if reports == nil {
		reports = []openapi.SourceReport{}
	}
	return SourcesResponse{Tools: tools.Current().Len(), Sources: reports}
}
