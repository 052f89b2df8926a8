//go:build e2e

// Tests for: e2e — lifecycle tests against a real diagnostics backend.

package e2e_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
	"github.com/sysscope/sysscope/internal/plan"
)

// e2eHarness provides a real gateway client and orchestrator for E2E tests.
type e2eHarness struct {
	t      *testing.T
	client *gateway.HTTPClient
	orch   *ops.Orchestrator
}

// newHarness creates an E2E harness. Skips if SYSSCOPE_E2E_URL is not set.
func newHarness(t *testing.T) *e2eHarness {
	t.Helper()

	url := os.Getenv("SYSSCOPE_E2E_URL")
	if url == "" {
		t.Skip("SYSSCOPE_E2E_URL not set — skipping E2E test")
	}

	client, err := gateway.NewHTTPClient(url, os.Getenv("SYSSCOPE_E2E_TOKEN"))
	if err != nil {
		t.Fatalf("gateway client: %v", err)
	}

	return &e2eHarness{
		t:      t,
		client: client,
		orch: ops.NewOrchestrator(client, ops.OrchestratorConfig{
			PollInterval:    time.Second,
			MaxPollFailures: 5,
		}, nil),
	}
}

// generatePlan fetches a fresh plan from the backend and loads it.
func (h *e2eHarness) generatePlan(ctx context.Context) *plan.TestPlan {
	h.t.Helper()
	p, err := ops.GenerateTestPlan(ctx, h.client)
	if err != nil {
		h.t.Fatalf("generate plan: %v", err)
	}
	if p.TotalCount() == 0 {
		h.t.Fatal("backend returned an empty plan")
	}
	h.orch.LoadPlan(p)
	return p
}

// waitSettled polls the orchestrator view until settlement or timeout.
func (h *e2eHarness) waitSettled(timeout time.Duration) ops.ExecutionView {
	h.t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		view := h.orch.View()
		if view.Settled {
			return view
		}
		time.Sleep(500 * time.Millisecond)
	}
	h.t.Fatalf("run did not settle within %v: %+v", timeout, h.orch.View())
	return ops.ExecutionView{}
}
