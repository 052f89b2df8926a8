package ops

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/plan"
)

// ExecState is the orchestrator's lifecycle state for the current plan.
type ExecState string

const (
	StateIdle       ExecState = "idle"
	StateSubmitting ExecState = "submitting"
	StatePolling    ExecState = "polling"
	StateSettled    ExecState = "settled"
)

// Outcome classifies how a settled run ended.
type Outcome string

const (
	// OutcomeComplete: every enabled item reached a terminal status.
	OutcomeComplete Outcome = "complete"
	// OutcomeIncomplete: the progress channel died before settlement
	// (consecutive poll failures exceeded the configured bound).
	OutcomeIncomplete Outcome = "incomplete"
)

// OrchestratorConfig tunes the polling loop.
type OrchestratorConfig struct {
	// PollInterval between progress fetches.
	PollInterval time.Duration
	// MaxPollFailures is the number of consecutive failed fetches after
	// which the run settles as incomplete instead of polling forever.
	MaxPollFailures int
}

// DefaultOrchestratorConfig mirrors the console's 2s progress poll.
var DefaultOrchestratorConfig = OrchestratorConfig{
	PollInterval:    2 * time.Second,
	MaxPollFailures: 30,
}

// ExecutionView is the read-only aggregate exposed to consumers. Plan is
// a deep copy so the view cannot race with reconciliation.
type ExecutionView struct {
	Plan        *plan.TestPlan `json:"plan,omitempty"`
	State       ExecState      `json:"state"`
	ExecutionID string         `json:"execution_id,omitempty"`
	Settled     bool           `json:"settled"`
	Outcome     Outcome        `json:"outcome,omitempty"`
	Summary     plan.Summary   `json:"summary"`
}

// Orchestrator owns the plan's execution lifecycle: it accepts a
// generated plan, submits the enabled items, runs the poll loop that
// reconciles remote snapshots into the plan, and detects settlement.
// It guarantees at most one active poll loop at any time.
type Orchestrator struct {
	client gateway.Client
	cfg    OrchestratorConfig
	logger *log.Logger

	mu          sync.Mutex
	plan        *plan.TestPlan
	state       ExecState
	frozen      bool
	executionID string
	outcome     Outcome
	failures    int

	// Poll loop handle: cancel stops the loop, done closes when it exits.
	cancel context.CancelFunc
	done   chan struct{}
}

// NewOrchestrator creates an orchestrator in the Idle state.
// logger may be nil (log.Default is used).
func NewOrchestrator(client gateway.Client, cfg OrchestratorConfig, logger *log.Logger) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultOrchestratorConfig.PollInterval
	}
	if cfg.MaxPollFailures <= 0 {
		cfg.MaxPollFailures = DefaultOrchestratorConfig.MaxPollFailures
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		client: client,
		cfg:    cfg,
		logger: logger,
		state:  StateIdle,
	}
}

// LoadPlan installs a freshly generated plan, discarding any previous
// plan and stopping an active poll loop.
func (o *Orchestrator) LoadPlan(p *plan.TestPlan) {
	o.Stop()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.plan = p
	o.state = StateIdle
	o.frozen = false
	o.executionID = ""
	o.outcome = ""
	o.failures = 0
}

// Toggle sets the enable flag on a plan item. A missing plan or unknown
// id is a silent no-op; toggling a submitted (frozen) plan is rejected
// because a live plan's composition must not change.
func (o *Orchestrator) Toggle(id string, enabled bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.frozen {
		return gateway.NewGatewayError(gateway.ErrPlanFrozen,
			"Plan is frozen while execution is in progress",
			"Wait for settlement or cancel the run first")
	}
	o.plan.Toggle(id, enabled)
	return nil
}

// Submit forwards the enabled items to the gateway and starts the poll
// loop. Any previous poll loop is cancelled first, so exactly one loop is
// active afterwards. Runtime state from a prior run is reset before the
// request goes out.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.plan == nil {
		o.mu.Unlock()
		return gateway.NewGatewayError(gateway.ErrPlanRequired,
			"No test plan loaded", "Generate a test plan first")
	}
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return gateway.NewGatewayError(gateway.ErrExecutionActive,
			"A submission is already in flight", "Wait for it to be acknowledged")
	}
	if o.plan.EnabledCount() == 0 {
		o.mu.Unlock()
		return gateway.NewGatewayError(gateway.ErrPlanEmpty,
			"No test items are enabled", "Enable at least one test item")
	}

	cancel, done := o.cancel, o.done
	o.cancel, o.done = nil, nil
	o.state = StateSubmitting
	o.frozen = true
	o.outcome = ""
	o.executionID = ""
	o.failures = 0
	o.plan.ResetRuns()

	req := gateway.ExecutionRequest{
		PlanID:      o.plan.ID,
		PlanName:    o.plan.Name,
		Items:       o.plan.EnabledItems(),
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	o.mu.Unlock()

	// Tear down a previous loop before the new request goes out, so two
	// loops never race to mutate the same plan.
	if cancel != nil {
		cancel()
		<-done
	}

	ack, err := o.client.ExecuteTests(ctx, req)
	if err != nil {
		o.toIdle()
		return fmt.Errorf("submit test plan: %w", err)
	}
	if !ack.Accepted {
		o.toIdle()
		msg := ack.Message
		if msg == "" {
			msg = "execution request rejected"
		}
		return gateway.NewGatewayError(gateway.ErrExecutionRejected,
			"Gateway rejected the execution request: "+msg,
			"Check the backend logs")
	}

	// The poll loop outlives the submitting request's context; it is
	// stopped by Stop, a new Submit, or settlement.
	pollCtx, pollCancel := context.WithCancel(context.Background())
	pollDone := make(chan struct{})

	o.mu.Lock()
	o.state = StatePolling
	o.executionID = ack.ExecutionID
	o.cancel = pollCancel
	o.done = pollDone
	o.mu.Unlock()

	go o.pollLoop(pollCtx, pollDone)
	return nil
}

// Stop cancels the active poll loop, if any, and returns once it has
// fully exited. The plan keeps its last reconciled state and becomes
// editable again.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.cancel, o.done = nil, nil
	if o.state == StatePolling {
		o.state = StateIdle
	}
	o.frozen = false
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// View returns the current aggregate, recomputed from live item statuses.
func (o *Orchestrator) View() ExecutionView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return ExecutionView{
		Plan:        o.plan.Clone(),
		State:       o.state,
		ExecutionID: o.executionID,
		Settled:     o.state == StateSettled,
		Outcome:     o.outcome,
		Summary:     o.plan.Summarize(),
	}
}

// pollLoop fetches and reconciles progress snapshots until settlement,
// cancellation, or too many consecutive failures. Ticks are serialized:
// the next fetch is not issued before the previous reconciliation has
// completed, so snapshots are never applied out of order.
func (o *Orchestrator) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		snapshot, err := o.client.GetProgress(ctx)
		if ctx.Err() != nil {
			// Cancelled mid-fetch; a fresh loop may already be running,
			// so this response must not be applied.
			return
		}
		if err != nil {
			if o.recordPollFailure(done, err) {
				return
			}
		} else if o.applySnapshot(done, snapshot) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(o.cfg.PollInterval):
		}
	}
}

// recordPollFailure counts a transient fetch error. Returns true when the
// consecutive-failure bound is exceeded and the run settles incomplete.
func (o *Orchestrator) recordPollFailure(done chan struct{}, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done != done {
		// Superseded by a newer loop; stop without touching state.
		return true
	}
	o.failures++
	if o.failures < o.cfg.MaxPollFailures {
		return false
	}
	o.state = StateSettled
	o.outcome = OutcomeIncomplete
	o.frozen = false
	o.logger.Printf("progress polling abandoned after %d consecutive failures: %v",
		o.failures, err)
	return true
}

// applySnapshot reconciles one snapshot into the plan. Returns true when
// the plan settled and polling should stop.
func (o *Orchestrator) applySnapshot(done chan struct{}, snapshot *gateway.ProgressSnapshot) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done != done {
		// Superseded by a newer loop; stop without touching state.
		return true
	}
	o.failures = 0

	report := Reconcile(o.plan, snapshot)
	if len(report.Unknown) > 0 {
		o.logger.Printf("progress snapshot references unknown tests: %s",
			strings.Join(report.Unknown, ", "))
	}
	if len(report.Regressions) > 0 {
		o.logger.Printf("progress snapshot tried to regress terminal tests: %s",
			strings.Join(report.Regressions, ", "))
	}

	if !report.Settled {
		return false
	}
	o.state = StateSettled
	o.outcome = OutcomeComplete
	o.frozen = false
	return true
}

func (o *Orchestrator) toIdle() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.frozen = false
}
