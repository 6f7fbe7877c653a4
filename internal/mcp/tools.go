package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// RegisterToolsFromSnapshot replaces the server's tools with one tool per
// record plus get_version. It returns the number of record tools.
func RegisterToolsFromSnapshot(s *server.MCPServer, inv Invoker, snap *registry.Snapshot) int {
	records := snap.Records()
	tools := make([]server.ServerTool, 0, len(records)+1)
	for _, rec := range records {
		tools = append(tools, server.ServerTool{
			Tool:    BuildMCPTool(rec),
			Handler: GenericToolHandler(inv, rec.Name),
		})
	}
	tools = append(tools, server.ServerTool{Tool: VersionTool(), Handler: VersionToolHandler(snap)})
	s.SetTools(tools...)
	return len(records)
}
