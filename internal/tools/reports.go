package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/report"
)

// ReportsInput is the input type for sysscope_reports.
type ReportsInput struct {
	Action   string `json:"action"`
	ReportID string `json:"reportId,omitempty"`
	Query    string `json:"query,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// RegisterReports registers the sysscope_reports tool.
func RegisterReports(srv *mcp.Server, store *report.Store) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sysscope_reports",
		Description: "Browse generated diagnostic reports: list them, get one as Markdown, or full-text search their content.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Browse reports",
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ReportsInput) (*mcp.CallToolResult, any, error) {
		switch input.Action {
		case "list", "":
			reports, err := store.List(ctx)
			if err != nil {
				return convertError(err), nil, nil
			}
			return jsonResult(map[string]any{"reports": reports}), nil, nil
		case "get":
			if input.ReportID == "" {
				return convertError(gateway.NewGatewayError(
					gateway.ErrInvalidParameter, "reportId is required for get",
					"List reports first to find an id")), nil, nil
			}
			r, err := store.Get(ctx, input.ReportID)
			if err != nil {
				return convertError(err), nil, nil
			}
			return textResult(r.Content), nil, nil
		case "search":
			if input.Query == "" {
				return convertError(gateway.NewGatewayError(
					gateway.ErrInvalidParameter, "query is required for search",
					"Provide a search query")), nil, nil
			}
			results, err := store.Search(ctx, input.Query, input.Limit)
			if err != nil {
				return convertError(err), nil, nil
			}
			return jsonResult(map[string]any{"results": results}), nil, nil
		default:
			return convertError(gateway.NewGatewayError(
				gateway.ErrInvalidParameter, "Invalid action '"+input.Action+"'",
				"Use list, get, or search")), nil, nil
		}
	})
}
