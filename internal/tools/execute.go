package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
)

// ExecuteInput is the input type for sysscope_execute.
type ExecuteInput struct {
	Action string `json:"action"`
}

// RegisterExecute registers the sysscope_execute tool.
func RegisterExecute(srv *mcp.Server, orch *ops.Orchestrator) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sysscope_execute",
		Description: "Run the test plan: start submits the enabled items and begins progress polling, status reports the live aggregate, cancel stops polling.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Execute test plan",
			DestructiveHint: boolPtr(false),
		},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExecuteInput) (*mcp.CallToolResult, any, error) {
		switch input.Action {
		case "start":
			if err := orch.Submit(ctx); err != nil {
				return convertError(err), nil, nil
			}
			return jsonResult(orch.View()), nil, nil
		case "status", "":
			return jsonResult(orch.View()), nil, nil
		case "cancel":
			orch.Stop()
			return jsonResult(orch.View()), nil, nil
		default:
			return convertError(gateway.NewGatewayError(
				gateway.ErrInvalidParameter, "Invalid action '"+input.Action+"'",
				"Use start, status, or cancel")), nil, nil
		}
	})
}
