package domain

import "time"

// ProgressType classifies a ProgressSnapshot.
type ProgressType string

const (
	ProgressAnalysis      ProgressType = "analysis"
	ProgressDesign        ProgressType = "design"
	ProgressImplementation ProgressType = "implementation"
	ProgressTesting       ProgressType = "testing"
	ProgressDocumentation ProgressType = "documentation"
	ProgressReview        ProgressType = "review"
	ProgressDeployment    ProgressType = "deployment"
	ProgressGeneral       ProgressType = "general"
)

// ProgressMetadata carries the optional detail fields of a snapshot.
type ProgressMetadata struct {
	Blockers     []string `json:"blockers,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"` // [0,1]
	Notes        string   `json:"notes,omitempty"`
	IsCorrection bool     `json:"is_correction,omitempty"` // allows a same-type percentage to decrease without being rejected as non-monotonic
}

// ProgressSnapshot is an immutable point-in-time progress record.
type ProgressSnapshot struct {
	ID          string           `json:"id"`
	TaskID      string           `json:"task_id"`
	Type        ProgressType     `json:"progress_type"`
	Percentage  *int             `json:"percentage,omitempty"` // nil permitted only with metadata explaining why
	Description string           `json:"description"`
	Metadata    ProgressMetadata `json:"metadata,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	AgentID     string           `json:"agent_id,omitempty"`
}

// ProgressTimeline is the append-only list of snapshots for one Task.
type ProgressTimeline struct {
	TaskID    string             `json:"task_id"`
	Snapshots []ProgressSnapshot `json:"snapshots,omitempty"`
}

// Clone returns a deep-enough copy for in-memory mutation.
func (p *ProgressTimeline) Clone() *ProgressTimeline {
	cp := *p
	cp.Snapshots = append([]ProgressSnapshot(nil), p.Snapshots...)
	return &cp
}

// LastByType returns the most recent snapshot of the given type, if any.
func (p *ProgressTimeline) LastByType(t ProgressType) (ProgressSnapshot, bool) {
	for i := len(p.Snapshots) - 1; i >= 0; i-- {
		if p.Snapshots[i].Type == t {
			return p.Snapshots[i], true
		}
	}
	return ProgressSnapshot{}, false
}

// TypesPresent returns the distinct progress types with at least one snapshot.
func (p *ProgressTimeline) TypesPresent() []ProgressType {
	seen := make(map[ProgressType]bool)
	var out []ProgressType
	for _, s := range p.Snapshots {
		if !seen[s.Type] {
			seen[s.Type] = true
			out = append(out, s.Type)
		}
	}
	return out
}

// Milestone is a named percentage threshold attached to a Task.
type Milestone struct {
	TaskID    string     `json:"task_id"`
	Name      string     `json:"name"`
	Threshold int        `json:"threshold"` // [0,100]
	FiredAt   *time.Time `json:"fired_at,omitempty"`
}

// Key identifies a (task, milestone) pair for idempotent firing.
func (m Milestone) Key() string {
	return m.TaskID + "|" + m.Name
}
