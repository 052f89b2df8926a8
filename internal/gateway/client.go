// Package gateway defines the contract with the remote diagnostics
// backend: plan generation, execution submission, progress snapshots,
// host metadata, and report retrieval. The backend is a black box; this
// package only models its wire surface.
package gateway

import (
	"context"

	"github.com/sysscope/sysscope/internal/plan"
)

// Client is the interface for diagnostics backend operations.
// Mocked in tests, real implementation speaks the backend's JSON/HTTP API.
type Client interface {
	// Plan generation (opaque — the backend owns generation logic).
	GenerateTestPlan(ctx context.Context) (*plan.TestPlan, error)

	// Execution (async — progress is observed via GetProgress).
	ExecuteTests(ctx context.Context, req ExecutionRequest) (*ExecutionAck, error)
	GetProgress(ctx context.Context) (*ProgressSnapshot, error)

	// Host metadata.
	GetSystemInfo(ctx context.Context) (*SystemInfo, error)

	// Reports.
	ListReports(ctx context.Context) ([]ReportInfo, error)
	GetReport(ctx context.Context, reportID string) (*Report, error)
}
