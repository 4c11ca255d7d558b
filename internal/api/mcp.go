package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nutrichat/nutrichat/internal/tools"
)

// NewMCPServer exposes every registered tool over MCP. The registry is the
// single source of truth: tools are added in registration order and each
// call runs through the same crash-isolating wrapper as the HTTP surface,
// so MCP clients always receive a serialized result envelope.
func NewMCPServer(reg *tools.Registry) *server.MCPServer {
	s := server.NewMCPServer(
		"nutrichat",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("nutrichat — grounded recipe search, nutrition analysis, and meal planning over a local dataset. Only recipes returned by these tools may be presented to the user."),
		server.WithRecovery(),
	)

	for _, name := range reg.Names() {
		spec, ok := reg.Get(name)
		if !ok {
			continue
		}
		s.AddTool(
			mcp.NewTool(spec.Name,
				mcp.WithDescription(spec.Description),
			),
			mcpInvoke(spec),
		)
	}

	return s
}

func mcpInvoke(spec tools.Spec) server.ToolHandlerFunc {
	invoke := tools.Wrap(spec.Name, spec.Handler)
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		result := invoke(ctx, args)

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
