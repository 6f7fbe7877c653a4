package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/openapi-toolproxy/internal/config"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// versionToolName is reserved; a compiled tool with this name is shadowed.
const versionToolName = "get_version"

// versionResponse is the get_version payload.
type versionResponse struct {
	config.VersionInfo
	Tools    int    `json:"tools"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool(versionToolName,
		mcp.WithDescription("Get tool proxy version and registry size. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports build info and the size of the snapshot the
// tools were registered from.
func VersionToolHandler(snap *registry.Snapshot) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := versionResponse{VersionInfo: config.GetVersionInfo(), Tools: snap.Len()}
		if at := snap.LoadedAt(); !at.IsZero() {
			resp.LoadedAt = at.UTC().Format("2006-01-02T15:04:05Z")
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
