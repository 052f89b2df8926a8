package gateway

import (
	"context"
	"sync"

	"github.com/sysscope/sysscope/internal/plan"
)

// Compile-time interface check.
var _ Client = (*Mock)(nil)

// Mock is a configurable mock for the gateway Client interface.
type Mock struct {
	mu sync.RWMutex

	testPlan   *plan.TestPlan
	ack        *ExecutionAck
	snapshot   *ProgressSnapshot
	systemInfo *SystemInfo
	reports    []ReportInfo
	contents   map[string]*Report

	// Submissions captured by ExecuteTests, in call order.
	submissions []ExecutionRequest

	// Error overrides: method name -> error
	errors map[string]error
}

// NewMock creates a new configurable mock.
func NewMock() *Mock {
	return &Mock{
		contents: make(map[string]*Report),
		errors:   make(map[string]error),
	}
}

// WithTestPlan sets the plan returned by GenerateTestPlan.
func (m *Mock) WithTestPlan(p *plan.TestPlan) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.testPlan = p
	return m
}

// WithAck sets the acknowledgement returned by ExecuteTests.
func (m *Mock) WithAck(ack *ExecutionAck) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ack = ack
	return m
}

// WithSnapshot sets the snapshot returned by GetProgress.
func (m *Mock) WithSnapshot(snapshot *ProgressSnapshot) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	return m
}

// WithSystemInfo sets the host metadata returned by GetSystemInfo.
func (m *Mock) WithSystemInfo(info *SystemInfo) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systemInfo = info
	return m
}

// WithReports sets the listing returned by ListReports.
func (m *Mock) WithReports(reports []ReportInfo) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = reports
	return m
}

// WithReport adds a report retrievable by GetReport.
func (m *Mock) WithReport(report *Report) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[report.ID] = report
	return m
}

// WithError sets an error for a specific method.
func (m *Mock) WithError(method string, err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method] = err
	return m
}

// ClearError removes the error override for a method.
func (m *Mock) ClearError(method string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errors, method)
	return m
}

// Submissions returns a copy of the execution requests seen so far.
func (m *Mock) Submissions() []ExecutionRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ExecutionRequest, len(m.submissions))
	copy(out, m.submissions)
	return out
}

func (m *Mock) getError(method string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errors[method]
}

func (m *Mock) GenerateTestPlan(_ context.Context) (*plan.TestPlan, error) {
	if err := m.getError("GenerateTestPlan"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.testPlan == nil {
		return nil, NewGatewayError(ErrAPIError, "no plan configured", "")
	}
	return m.testPlan.Clone(), nil
}

func (m *Mock) ExecuteTests(_ context.Context, req ExecutionRequest) (*ExecutionAck, error) {
	if err := m.getError("ExecuteTests"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.submissions = append(m.submissions, req)
	ack := m.ack
	m.mu.Unlock()
	if ack == nil {
		ack = &ExecutionAck{Accepted: true, ExecutionID: "exec-1"}
	}
	return ack, nil
}

func (m *Mock) GetProgress(_ context.Context) (*ProgressSnapshot, error) {
	if err := m.getError("GetProgress"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return &ProgressSnapshot{}, nil
	}
	return m.snapshot, nil
}

func (m *Mock) GetSystemInfo(_ context.Context) (*SystemInfo, error) {
	if err := m.getError("GetSystemInfo"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.systemInfo == nil {
		return nil, NewGatewayError(ErrAPIError, "no system info configured", "")
	}
	return m.systemInfo, nil
}

func (m *Mock) ListReports(_ context.Context) ([]ReportInfo, error) {
	if err := m.getError("ListReports"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reports, nil
}

func (m *Mock) GetReport(_ context.Context, reportID string) (*Report, error) {
	if err := m.getError("GetReport"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.contents[reportID]
	if !ok {
		return nil, NewGatewayError(ErrReportNotFound,
			"Report '"+reportID+"' not found", "List available reports first")
	}
	return report, nil
}
