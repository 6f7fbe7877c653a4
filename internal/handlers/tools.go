package handlers

import (
	"net/http"
	"strconv"

	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// ToolsResponse is the body of GET /tools.
type ToolsResponse struct {
	Tools   []string              `json:"tools"`
	Records []registry.ToolRecord `json:"records,omitempty"`
}

// ToolsHandler lists registered tool names.
type ToolsHandler struct {
	tools SnapshotSource
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(tools SnapshotSource) *ToolsHandler {
	return &ToolsHandler{tools: tools}
}

// ServeHTTP handles GET /tools. With ?detail=true the full records are
// included as well.
func (h *ToolsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snap := h.tools.Current()
	resp := ToolsResponse{Tools: snap.Names()}
	if detail, _ := strconv.ParseBool(r.URL.Query().Get("detail")); detail {
		resp.Records = snap.Records()
	}
	WriteJSON(w, http.StatusOK, resp)
}
