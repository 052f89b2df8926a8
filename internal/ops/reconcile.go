// Package ops implements the console's execution engine: snapshot
// reconciliation and the plan execution orchestrator, plus thin
// operations over the gateway used by the tool layer.
package ops

import (
	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/plan"
)

// ReconcileReport describes what applying one snapshot did. Anomalies
// (unknown records, attempted terminal regressions) are reported here and
// logged by the caller; they never abort the polling loop.
type ReconcileReport struct {
	Applied     int      // records matched and applied
	Unknown     []string // record keys with no matching plan item
	Regressions []string // item ids where a terminal status was defended
	Settled     bool     // every enabled item terminal after the merge
}

// Reconcile folds an authoritative progress snapshot into the plan.
//
// Each record is matched to a plan item by id first, then by name. Matched
// items take the snapshot's status/progress/result wholesale — local
// optimistic state is always superseded. Items absent from the snapshot
// keep their current state: a late-starting check must not regress to
// pending nor be treated as missing. The one exception to snapshot
// authority is terminal monotonicity: once an item is terminal, a record
// that would move it back to pending or running is ignored and reported.
//
// The merge is idempotent and never reorders items.
func Reconcile(p *plan.TestPlan, snapshot *gateway.ProgressSnapshot) ReconcileReport {
	var report ReconcileReport
	if p == nil {
		return report
	}
	if snapshot != nil {
		for _, rec := range snapshot.Records {
			item := p.Find(rec.ID)
			if item == nil {
				item = p.FindByName(rec.Name)
			}
			if item == nil {
				key := rec.ID
				if key == "" {
					key = rec.Name
				}
				report.Unknown = append(report.Unknown, key)
				continue
			}
			if item.Status.Terminal() && !rec.Status.Terminal() {
				report.Regressions = append(report.Regressions, item.ID)
				continue
			}
			item.Status = rec.Status
			item.Progress = clampProgress(rec.Progress)
			item.Result = rec.Result
			report.Applied++
		}
	}
	report.Settled = p.Settled()
	return report
}

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
