package gateway

import (
	"time"

	"github.com/sysscope/sysscope/internal/plan"
)

// DefaultAPITimeout is the global timeout for each gateway call.
const DefaultAPITimeout = 30 * time.Second

// ProgressRecord is one entry in a progress snapshot. The backend keys
// records by test name and includes the item id once it has resolved it;
// reconciliation matches by id first, then by name.
type ProgressRecord struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Status   plan.Status `json:"status"`
	Progress int         `json:"progress"`
	Result   string      `json:"result,omitempty"`
}

// ProgressSnapshot is the full point-in-time progress report returned by
// the backend. No pagination; each poll returns the complete snapshot.
type ProgressSnapshot struct {
	Records []ProgressRecord
}

// ExecutionRequest carries the enabled items submitted for execution.
// Disabled items are never sent; they stay visible locally for reference.
type ExecutionRequest struct {
	PlanID      string          `json:"plan_id"`
	PlanName    string          `json:"plan_name"`
	Items       []plan.TestItem `json:"test_items"`
	SubmittedAt string          `json:"submitted_at,omitempty"`
}

// ExecutionAck is the backend's response to an execution request. The
// console does not interpret anything beyond acceptance and identity.
type ExecutionAck struct {
	Accepted    bool   `json:"accepted"`
	ExecutionID string `json:"execution_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

// SystemInfo is the host metadata snapshot from the diagnostics backend.
type SystemInfo struct {
	Platform        string `json:"platform"`
	System          string `json:"system"`
	Release         string `json:"release"`
	Version         string `json:"version"`
	Machine         string `json:"machine"`
	Processor       string `json:"processor"`
	CPUCount        int    `json:"cpu_count"`
	MemoryTotal     int64  `json:"memory_total"`
	MemoryAvailable int64  `json:"memory_available"`
	Hostname        string `json:"hostname"`
	Username        string `json:"username"`
	DetectedAt      string `json:"detected_at,omitempty"`
}

// ReportInfo identifies one generated Markdown report.
type ReportInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Report is a generated Markdown report with its content.
type Report struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}
