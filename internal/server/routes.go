package server

import (
	"net/http"

	"github.com/bobmcallan/openapi-toolproxy/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Tool surface
	mux.Handle("/invoke", s.app.InvokeHandler)
	mux.Handle("/tools", s.app.ToolsHandler)
	mux.Handle("/sources", s.app.SourcesHandler)
	if s.app.ReloadHandler != nil {
		mux.Handle("/reload", s.app.ReloadHandler)
	}

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Operational routes
	mux.Handle("/api/health", s.app.HealthHandler)
	mux.Handle("/api/ready", s.app.ReadyHandler)
	mux.Handle("/api/version", s.app.VersionHandler)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// JSON 404 for everything else
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// knownRoutes bounds the path label of HTTP metrics.
var knownRoutes = map[string]bool{
	"/invoke": true, "/tools": true, "/sources": true, "/reload": true, "/mcp": true,
	"/api/health": true, "/api/ready": true, "/api/version": true, "/metrics": true,
}

// routeLabel returns the metric label for a request path.
func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// handleNotFound returns a JSON 404 for unmatched routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "not_found", "The requested endpoint does not exist")
}
