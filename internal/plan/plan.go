// Package plan models a diagnostic test plan: an ordered collection of
// test items with user-controlled enable flags and per-item runtime state.
// Plans are created wholesale by the remote generator and never gain or
// lose items afterwards; only enable flags and runtime fields change.
package plan

// Status represents the execution status of a test item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// Known reports whether the status is one of the defined states.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// Category classifies a test item for grouping and display.
type Category string

const (
	CategorySystemInfo  Category = "system_info"
	CategoryPerformance Category = "performance"
	CategorySecurity    Category = "security"
	CategoryNetwork     Category = "network"
	CategoryStorage     Category = "storage"
	CategorySoftware    Category = "software"
	CategoryHardware    Category = "hardware"
	CategoryCustom      Category = "custom"
)

// categoryColors maps known categories to display colors.
var categoryColors = map[Category]string{
	CategorySystemInfo:  "blue",
	CategoryPerformance: "green",
	CategorySecurity:    "red",
	CategoryNetwork:     "cyan",
	CategoryStorage:     "orange",
	CategorySoftware:    "purple",
	CategoryHardware:    "geekblue",
	CategoryCustom:      "default",
}

// Known reports whether the category is one of the defined categories.
func (c Category) Known() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the display color for the category.
// Unknown categories fall back to "default" rather than fail.
func (c Category) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return "default"
}

// TestItem is one diagnostic check. Identity and descriptive fields are
// assigned at generation time and never reassigned; Status, Progress and
// Result are owned by reconciliation once the plan is submitted.
type TestItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       Category `json:"category"`
	Command        string   `json:"command,omitempty"`
	ExpectedOutput string   `json:"expected_output,omitempty"`
	Timeout        int      `json:"timeout"`
	Priority       int      `json:"priority"`
	Enabled        bool     `json:"enabled"`
	Dependencies   []string `json:"dependencies,omitempty"`

	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Result   string `json:"result,omitempty"`
}

// TestPlan is an ordered, uniquely-keyed collection of test items plus
// plan-level metadata. Item order is display-significant and preserved
// across reconciliation.
type TestPlan struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Items       []TestItem `json:"test_items"`
	CreatedAt   string     `json:"created_at,omitempty"`

	byID   map[string]int
	byName map[string]int
}

// Reindex rebuilds the id and name lookup indexes. Must be called after
// decoding a plan from the wire; lookups stay O(1) for large plans.
func (p *TestPlan) Reindex() {
	p.byID = make(map[string]int, len(p.Items))
	p.byName = make(map[string]int, len(p.Items))
	for i := range p.Items {
		p.byID[p.Items[i].ID] = i
		p.byName[p.Items[i].Name] = i
	}
}

// Find returns the item with the given id, or nil if absent.
func (p *TestPlan) Find(id string) *TestItem {
	if p == nil {
		return nil
	}
	if p.byID == nil {
		p.Reindex()
	}
	i, ok := p.byID[id]
	if !ok {
		return nil
	}
	return &p.Items[i]
}

// FindByName returns the item with the given name, or nil if absent.
func (p *TestPlan) FindByName(name string) *TestItem {
	if p == nil {
		return nil
	}
	if p.byName == nil {
		p.Reindex()
	}
	i, ok := p.byName[name]
	if !ok {
		return nil
	}
	return &p.Items[i]
}

// Toggle sets the enable flag on the item with the given id.
// A nil plan or absent id is a silent no-op; returns whether a change applied.
func (p *TestPlan) Toggle(id string, enabled bool) bool {
	item := p.Find(id)
	if item == nil {
		return false
	}
	item.Enabled = enabled
	return true
}

// EnabledItems returns the items with Enabled set, preserving plan order.
func (p *TestPlan) EnabledItems() []TestItem {
	if p == nil {
		return nil
	}
	var items []TestItem
	for _, item := range p.Items {
		if item.Enabled {
			items = append(items, item)
		}
	}
	return items
}

// EnabledCount returns the number of enabled items.
func (p *TestPlan) EnabledCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for i := range p.Items {
		if p.Items[i].Enabled {
			n++
		}
	}
	return n
}

// TotalCount returns the total number of items.
func (p *TestPlan) TotalCount() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// ItemIDs returns the ids of all items in plan order.
func (p *TestPlan) ItemIDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, len(p.Items))
	for i := range p.Items {
		ids[i] = p.Items[i].ID
	}
	return ids
}

// ResetRuns clears all per-item runtime state back to pending.
// Called before resubmission so stale results are never shown as current.
func (p *TestPlan) ResetRuns() {
	if p == nil {
		return
	}
	for i := range p.Items {
		p.Items[i].Status = StatusPending
		p.Items[i].Progress = 0
		p.Items[i].Result = ""
	}
}

// Settled reports whether every enabled item has reached a terminal
// status. A plan with no enabled items is never settled — there is
// nothing to execute, so settlement would be a false positive.
func (p *TestPlan) Settled() bool {
	if p == nil {
		return false
	}
	enabled := 0
	for i := range p.Items {
		if !p.Items[i].Enabled {
			continue
		}
		enabled++
		if !p.Items[i].Status.Terminal() {
			return false
		}
	}
	return enabled > 0
}

// Summary holds aggregate counts over the enabled items, recomputed from
// live item statuses so it is always consistent with the per-item view.
type Summary struct {
	TotalTests   int `json:"total_tests"`
	PassedTests  int `json:"passed_tests"`
	FailedTests  int `json:"failed_tests"`
	SkippedTests int `json:"skipped_tests"`
}

// Summarize recomputes aggregate counts from the enabled items.
func (p *TestPlan) Summarize() Summary {
	var s Summary
	if p == nil {
		return s
	}
	for i := range p.Items {
		if !p.Items[i].Enabled {
			continue
		}
		s.TotalTests++
		switch p.Items[i].Status {
		case StatusCompleted:
			s.PassedTests++
		case StatusFailed:
			s.FailedTests++
		case StatusSkipped:
			s.SkippedTests++
		}
	}
	return s
}

// Clone returns a deep copy of the plan with fresh indexes.
// The orchestrator hands clones to consumers so view snapshots cannot
// race with reconciliation.
func (p *TestPlan) Clone() *TestPlan {
	if p == nil {
		return nil
	}
	out := &TestPlan{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		Items:       make([]TestItem, len(p.Items)),
	}
	copy(out.Items, p.Items)
	for i := range out.Items {
		if deps := p.Items[i].Dependencies; deps != nil {
			out.Items[i].Dependencies = append([]string(nil), deps...)
		}
	}
	out.Reindex()
	return out
}
