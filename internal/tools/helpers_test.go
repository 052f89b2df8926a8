package tools

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
	"github.com/sysscope/sysscope/internal/plan"
	"github.com/sysscope/sysscope/internal/report"
)

// testServer builds an MCP server with every console tool registered
// against the given mock client.
func testServer(t *testing.T, client gateway.Client) (*mcp.Server, *ops.Orchestrator) {
	t.Helper()

	srv := mcp.NewServer(&mcp.Implementation{Name: "sysscope-test", Version: "0.0.0"}, nil)
	orch := ops.NewOrchestrator(client, ops.OrchestratorConfig{
		PollInterval:    time.Millisecond,
		MaxPollFailures: 3,
	}, log.New(io.Discard, "", 0))
	t.Cleanup(orch.Stop)

	store, err := report.NewStore(client)
	if err != nil {
		t.Fatal(err)
	}

	RegisterSystem(srv, client)
	RegisterReports(srv, store)
	RegisterPlan(srv, client, orch)
	RegisterExecute(srv, orch)
	return srv, orch
}

// callTool connects to a test server over in-memory transports and calls
// a named tool.
func callTool(t *testing.T, srv *mcp.Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	st, ct := mcp.NewInMemoryTransports()

	ss, err := srv.Connect(ctx, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.1"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatal(err)
	}
	return result
}

// getTextContent extracts the text string from the first content item of a CallToolResult.
func getTextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *mcp.TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

// decodeJSON unmarshals a tool result's text content into out.
func decodeJSON(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	text := getTextContent(t, result)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("unmarshal tool output %q: %v", text, err)
	}
}

// errorCode extracts the structured error code from an IsError result.
func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatalf("expected error result, got %s", getTextContent(t, result))
	}
	var payload struct {
		Code string `json:"code"`
	}
	decodeJSON(t, result, &payload)
	return payload.Code
}

func fixturePlan() *plan.TestPlan {
	p := &plan.TestPlan{
		ID:   "plan-1",
		Name: "Baseline diagnostics",
		Items: []plan.TestItem{
			{ID: "cpu_info", Name: "CPU info", Category: plan.CategoryHardware, Enabled: true, Status: plan.StatusPending},
			{ID: "disk_usage", Name: "Disk usage", Category: plan.CategoryStorage, Enabled: true, Status: plan.StatusPending},
		},
	}
	p.Reindex()
	return p
}
