package ops

import (
	"context"
	"fmt"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/plan"
)

// GenerateTestPlan requests a fresh plan from the backend generator.
// Generation is opaque to the console — the plan arrives complete.
func GenerateTestPlan(ctx context.Context, client gateway.Client) (*plan.TestPlan, error) {
	p, err := client.GenerateTestPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate test plan: %w", err)
	}
	p.Reindex()
	return p, nil
}

// GetSystemInfo fetches the host metadata snapshot.
func GetSystemInfo(ctx context.Context, client gateway.Client) (*gateway.SystemInfo, error) {
	info, err := client.GetSystemInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("get system info: %w", err)
	}
	return info, nil
}
