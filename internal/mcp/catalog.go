package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/openapi-toolproxy/internal/dispatch"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// invocationSchema is the input schema shared by every compiled tool. It
// mirrors the input object of POST /invoke.
var invocationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"region": {"type": "string", "description": "Region substituted into region-templated base URLs"},
		"headers": {"type": "object", "additionalProperties": {"type": "string"}, "description": "Headers sent verbatim with the call"},
		"path_params": {"type": "object", "description": "Values for {name} placeholders in the path"},
		"query_params": {"type": "object", "description": "Query string parameters; arrays become repeated keys"},
		"body": {"description": "JSON request body"}
	}
}`)

// Invoker runs a named tool. *dispatch.Dispatcher implements it.
type Invoker interface {
	Invoke(ctx context.Context, name string, req dispatch.Request) (*dispatch.Result, error)
}

// BuildMCPTool converts a ToolRecord into an mcp.Tool.
func BuildMCPTool(rec registry.ToolRecord) mcp.Tool {
	return mcp.NewToolWithRawSchema(rec.Name, toolDescription(rec), invocationSchema)
}

func toolDescription(rec registry.ToolRecord) string {
	var parts []string
	if rec.Summary != "" {
		parts = append(parts, rec.Summary)
	}
	if rec.Description != "" && rec.Description != rec.Summary {
		parts = append(parts, rec.Description)
	}
	parts = append(parts, fmt.Sprintf("%s %s", rec.Method, rec.PathTemplate))
	return strings.Join(parts, "\n\n")
}

// GenericToolHandler routes an MCP tool call through the dispatcher. The
// upstream status and body are returned as JSON text whatever the status.
func GenericToolHandler(inv Invoker, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := requestFromArguments(r.GetArguments())
		if err != nil {
			return errorResult(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
		}

		result, err := inv.Invoke(ctx, name, req)
		if err != nil {
			var notFound *dispatch.ToolNotFoundError
			if errors.As(err, &notFound) {
				return errorResult(fmt.Sprintf("Error: tool %s is no longer registered", name)), nil
			}
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		out, err := json.Marshal(result)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// requestFromArguments decodes MCP arguments into a dispatch request using
// the same JSON field names as POST /invoke.
func requestFromArguments(args map[string]any) (dispatch.Request, error) {
	var req dispatch.Request
	if len(args) == 0 {
		return req, nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, err
	}
	return req, nil
}
