// Tests for: ops/orchestrator.go — execution lifecycle and poll loop.
package ops

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/plan"
)

// progressStep is one scripted GetProgress response.
type progressStep struct {
	snapshot *gateway.ProgressSnapshot
	err      error
}

// progressSequencer wraps gateway.Mock and overrides GetProgress to
// return a scripted sequence of snapshots. The last step repeats.
type progressSequencer struct {
	*gateway.Mock
	mu    sync.Mutex
	steps []progressStep
	idx   int
	calls int
}

func newSequencer(steps ...progressStep) *progressSequencer {
	return &progressSequencer{
		Mock:  gateway.NewMock(),
		steps: steps,
	}
}

func (s *progressSequencer) GetProgress(_ context.Context) (*gateway.ProgressSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	step := s.steps[len(s.steps)-1]
	if s.idx < len(s.steps) {
		step = s.steps[s.idx]
		s.idx++
	}
	return step.snapshot, step.err
}

func (s *progressSequencer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func runningSnap() *gateway.ProgressSnapshot {
	return &gateway.ProgressSnapshot{Records: []gateway.ProgressRecord{
		{ID: "a", Name: "CPU info", Status: plan.StatusRunning, Progress: 50},
		{ID: "b", Name: "Disk usage", Status: plan.StatusPending, Progress: 0},
	}}
}

func terminalSnap() *gateway.ProgressSnapshot {
	return &gateway.ProgressSnapshot{Records: []gateway.ProgressRecord{
		{ID: "a", Name: "CPU info", Status: plan.StatusCompleted, Progress: 100, Result: "OK"},
		{ID: "b", Name: "Disk usage", Status: plan.StatusFailed, Progress: 100, Result: "timeout"},
		{ID: "c", Name: "Firewall status", Status: plan.StatusSkipped, Progress: 0},
	}}
}

func testOrchestrator(client gateway.Client) *Orchestrator {
	return NewOrchestrator(client, OrchestratorConfig{
		PollInterval:    time.Millisecond,
		MaxPollFailures: 3,
	}, log.New(io.Discard, "", 0))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSubmitWithoutPlan(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(newSequencer())
	err := o.Submit(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var ge *gateway.GatewayError
	if !errors.As(err, &ge) || ge.Code != gateway.ErrPlanRequired {
		t.Errorf("error = %v, want code %s", err, gateway.ErrPlanRequired)
	}
}

func TestSubmitWithZeroEnabledItems(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(newSequencer())
	p := threeItemPlan()
	for _, id := range p.ItemIDs() {
		p.Toggle(id, false)
	}
	o.LoadPlan(p)

	err := o.Submit(context.Background())
	var ge *gateway.GatewayError
	if !errors.As(err, &ge) || ge.Code != gateway.ErrPlanEmpty {
		t.Errorf("error = %v, want code %s", err, gateway.ErrPlanEmpty)
	}
	if got := o.View().State; got != StateIdle {
		t.Errorf("state = %s, want idle", got)
	}
}

func TestSubmitForwardsOnlyEnabledItems(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: terminalSnap()})
	o := testOrchestrator(seq)
	p := threeItemPlan()
	p.Toggle("b", false)
	o.LoadPlan(p)

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	defer o.Stop()

	subs := seq.Submissions()
	if len(subs) != 1 {
		t.Fatalf("submissions = %d, want 1", len(subs))
	}
	got := make([]string, len(subs[0].Items))
	for i, item := range subs[0].Items {
		got[i] = item.ID
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("submitted items = %v, want [a c]", got)
	}
}

func TestSubmitErrorReturnsToIdle(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: terminalSnap()})
	seq.WithError("ExecuteTests", errors.New("connection refused"))
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	view := o.View()
	if view.State != StateIdle {
		t.Errorf("state = %s, want idle", view.State)
	}
	// Nothing to poll after a failed submission.
	time.Sleep(10 * time.Millisecond)
	if seq.Calls() != 0 {
		t.Errorf("GetProgress called %d times after failed submit", seq.Calls())
	}
}

func TestSubmitRejectedAck(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: terminalSnap()})
	seq.WithAck(&gateway.ExecutionAck{Accepted: false, Message: "backend busy"})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	err := o.Submit(context.Background())
	var ge *gateway.GatewayError
	if !errors.As(err, &ge) || ge.Code != gateway.ErrExecutionRejected {
		t.Errorf("error = %v, want code %s", err, gateway.ErrExecutionRejected)
	}
	if got := o.View().State; got != StateIdle {
		t.Errorf("state = %s, want idle", got)
	}
}

func TestPollUntilSettled(t *testing.T) {
	t.Parallel()

	seq := newSequencer(
		progressStep{snapshot: runningSnap()},
		progressStep{snapshot: terminalSnap()},
	)
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitFor(t, "settlement", func() bool { return o.View().Settled })

	view := o.View()
	if view.State != StateSettled || view.Outcome != OutcomeComplete {
		t.Errorf("state/outcome = %s/%s, want settled/complete", view.State, view.Outcome)
	}
	want := plan.Summary{TotalTests: 3, PassedTests: 1, FailedTests: 1, SkippedTests: 1}
	if view.Summary != want {
		t.Errorf("summary = %+v, want %+v", view.Summary, want)
	}
	if item := view.Plan.Find("b"); item.Status != plan.StatusFailed || item.Result != "timeout" {
		t.Errorf("b = %s/%q, want failed/timeout", item.Status, item.Result)
	}
}

func TestTransientPollErrorIsRetried(t *testing.T) {
	t.Parallel()

	seq := newSequencer(
		progressStep{err: errors.New("i/o timeout")},
		progressStep{snapshot: runningSnap()},
		progressStep{err: errors.New("i/o timeout")},
		progressStep{snapshot: terminalSnap()},
	)
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitFor(t, "settlement", func() bool { return o.View().Settled })
	if got := o.View().Outcome; got != OutcomeComplete {
		t.Errorf("outcome = %s, want complete", got)
	}
}

func TestConsecutiveFailuresSettleIncomplete(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{err: errors.New("connection refused")})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitFor(t, "incomplete settlement", func() bool { return o.View().Settled })

	view := o.View()
	if view.Outcome != OutcomeIncomplete {
		t.Errorf("outcome = %s, want incomplete", view.Outcome)
	}
	// Polling stopped at the bound.
	calls := seq.Calls()
	time.Sleep(20 * time.Millisecond)
	if seq.Calls() != calls {
		t.Error("polling continued after incomplete settlement")
	}
}

func TestResubmitResetsRuntimeState(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: terminalSnap()})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	waitFor(t, "first settlement", func() bool { return o.View().Settled })

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	defer o.Stop()

	subs := seq.Submissions()
	if len(subs) != 2 {
		t.Fatalf("submissions = %d, want 2", len(subs))
	}
	// Stale results from the first run were cleared before resubmission.
	for _, item := range subs[1].Items {
		if item.Status != plan.StatusPending || item.Progress != 0 || item.Result != "" {
			t.Errorf("item %s submitted with stale state %s/%d/%q",
				item.ID, item.Status, item.Progress, item.Result)
		}
	}
}

func TestResubmitCancelsPreviousLoop(t *testing.T) {
	t.Parallel()

	// First run never settles on its own.
	seq := newSequencer(progressStep{snapshot: runningSnap()})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	waitFor(t, "first poll", func() bool { return seq.Calls() > 0 })

	// Second run settles immediately; the first loop must be gone.
	seq.mu.Lock()
	seq.steps = []progressStep{{snapshot: terminalSnap()}}
	seq.idx = 0
	seq.mu.Unlock()

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	waitFor(t, "second settlement", func() bool { return o.View().Settled })

	calls := seq.Calls()
	time.Sleep(20 * time.Millisecond)
	if seq.Calls() != calls {
		t.Error("a poll loop is still running after settlement")
	}
}

func TestToggleRejectedWhileFrozen(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: runningSnap()})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	err := o.Toggle("a", false)
	var ge *gateway.GatewayError
	if !errors.As(err, &ge) || ge.Code != gateway.ErrPlanFrozen {
		t.Errorf("error = %v, want code %s", err, gateway.ErrPlanFrozen)
	}

	o.Stop()
	if err := o.Toggle("a", false); err != nil {
		t.Errorf("toggle after stop: %v", err)
	}
	if o.View().Plan.Find("a").Enabled {
		t.Error("toggle after stop did not apply")
	}
}

func TestStopCancelsPolling(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: runningSnap()})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, "first snapshot applied", func() bool {
		return o.View().Plan.Find("a").Status == plan.StatusRunning
	})

	o.Stop()

	view := o.View()
	if view.State != StateIdle {
		t.Errorf("state = %s, want idle", view.State)
	}
	calls := seq.Calls()
	time.Sleep(20 * time.Millisecond)
	if seq.Calls() != calls {
		t.Error("polling continued after Stop")
	}
	// Partial progress from before the cancel is preserved.
	if item := view.Plan.Find("a"); item.Status != plan.StatusRunning {
		t.Errorf("a = %s, want running (last reconciled state)", item.Status)
	}
}

func TestLoadPlanStopsActiveLoop(t *testing.T) {
	t.Parallel()

	seq := newSequencer(progressStep{snapshot: runningSnap()})
	o := testOrchestrator(seq)
	o.LoadPlan(threeItemPlan())

	if err := o.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, "first poll", func() bool { return seq.Calls() > 0 })

	o.LoadPlan(threeItemPlan())

	calls := seq.Calls()
	time.Sleep(20 * time.Millisecond)
	if seq.Calls() != calls {
		t.Error("polling continued after LoadPlan")
	}
	if got := o.View().State; got != StateIdle {
		t.Errorf("state = %s, want idle", got)
	}
}

func TestViewWithoutPlan(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(newSequencer())
	view := o.View()
	if view.Plan != nil {
		t.Error("view plan should be nil before generation")
	}
	if view.State != StateIdle || view.Settled {
		t.Errorf("view = %+v, want idle/unsettled", view)
	}
	if view.Summary.TotalTests != 0 {
		t.Errorf("summary total = %d, want 0", view.Summary.TotalTests)
	}
}
