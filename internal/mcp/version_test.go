package mcp

import (
	"encoding/json"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/openapi-toolproxy/internal/config"
)

func TestVersionToolHandler_ReportsRegistry(t *testing.T) {
	snap := testSnapshot(t, cosRecord("ListBuckets", "GET", "/"), cosRecord("GetBucket", "GET", "/{bucket}"))
	handler := VersionToolHandler(snap)

	result, err := handler(t.Context(), mcpgo.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	var resp versionResponse
	text := result.Content[0].(mcpgo.TextContent).Text
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Version != config.GetVersion() {
		t.Errorf("expected version %s, got %s", config.GetVersion(), resp.Version)
	}
	if resp.Tools != 2 {
		t.Errorf("expected 2 tools, got %d", resp.Tools)
	}
	if resp.LoadedAt == "" {
		t.Error("expected loaded_at to be set")
	}
}

func TestVersionTool_Definition(t *testing.T) {
	tool := VersionTool()
	if tool.Name != "get_version" {
		t.Errorf("expected get_version, got %s", tool.Name)
	}
	if tool.Description == "" {
		t.Error("expected description")
	}
}
