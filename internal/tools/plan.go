package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
)

// PlanInput is the input type for sysscope_plan.
type PlanInput struct {
	Action  string `json:"action"`
	TestID  string `json:"testId,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// RegisterPlan registers the sysscope_plan tool.
func RegisterPlan(srv *mcp.Server, client gateway.Client, orch *ops.Orchestrator) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sysscope_plan",
		Description: "Manage the diagnostic test plan: generate a new plan, show the current one, or toggle a test item on/off.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Manage test plan",
			IdempotentHint: true,
		},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PlanInput) (*mcp.CallToolResult, any, error) {
		switch input.Action {
		case "generate":
			p, err := ops.GenerateTestPlan(ctx, client)
			if err != nil {
				return convertError(err), nil, nil
			}
			orch.LoadPlan(p)
			return jsonResult(orch.View()), nil, nil
		case "show", "":
			return jsonResult(orch.View()), nil, nil
		case "toggle":
			if input.TestID == "" {
				return convertError(gateway.NewGatewayError(
					gateway.ErrInvalidParameter, "testId is required for toggle",
					"Provide the id of the test item to toggle")), nil, nil
			}
			if input.Enabled == nil {
				return convertError(gateway.NewGatewayError(
					gateway.ErrInvalidParameter, "enabled is required for toggle",
					"Provide enabled: true or false")), nil, nil
			}
			if err := orch.Toggle(input.TestID, *input.Enabled); err != nil {
				return convertError(err), nil, nil
			}
			return jsonResult(orch.View()), nil, nil
		default:
			return convertError(gateway.NewGatewayError(
				gateway.ErrInvalidParameter, "Invalid action '"+input.Action+"'",
				"Use generate, show, or toggle")), nil, nil
		}
	})
}
