package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
)

// SystemInput is the input type for sysscope_system.
type SystemInput struct{}

// RegisterSystem registers the sysscope_system tool.
func RegisterSystem(srv *mcp.Server, client gateway.Client) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sysscope_system",
		Description: "Show host metadata detected by the diagnostics backend (platform, CPU, memory, hostname).",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Show system info",
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ SystemInput) (*mcp.CallToolResult, any, error) {
		info, err := ops.GetSystemInfo(ctx, client)
		if err != nil {
			return convertError(err), nil, nil
		}
		return jsonResult(info), nil, nil
	})
}
