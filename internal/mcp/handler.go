// Package mcp exposes the tool registry over the Model Context Protocol.
package mcp

import (
	"net/http"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/config"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	invoker    Invoker
	logger     *common.Logger

	mu    sync.Mutex
	tools int
}

// NewHandler creates an MCP handler with no tools registered. Call Refresh
// after each registry publish.
func NewHandler(invoker Invoker, logger *common.Logger) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"openapi-toolproxy",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	return &Handler{
		server:     mcpSrv,
		streamable: streamable,
		invoker:    invoker,
		logger:     logger,
	}
}

// Refresh replaces the registered tools with those in snap.
func (h *Handler) Refresh(snap *registry.Snapshot) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tools = RegisterToolsFromSnapshot(h.server, h.invoker, snap)
	h.logger.Info().Int("tools", h.tools).Msg("MCP tools refreshed")
	return h.tools
}

// ToolCount returns the number of record tools from the last refresh.
func (h *Handler) ToolCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tools
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
