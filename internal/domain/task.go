// Package domain holds the core aggregates of the orchestration engine:
// Task, Context, ProgressTimeline, Milestone, VisionObjective,
// VisionAlignment, Agent, Assignment, Handoff, and WorkflowHint.
//
// None of these types know how to persist themselves — see internal/store
// for the repository ports. They carry only the invariants called out in
// the data model.
package domain

import "time"

// Status is a Task's lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether the status is one of the two terminal states.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Priority is a Task's relative urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

// priorityRank orders priorities for comparisons (used by vision alignment's
// priority-compatibility factor).
var priorityRank = map[Priority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityUrgent:   4,
	PriorityCritical: 5,
}

// Rank returns a numeric rank for the priority, higher is more urgent.
// Unknown priorities rank as medium.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[PriorityMedium]
}

// Task is the central aggregate. Subtask is a Task with ParentID set.
type Task struct {
	ID              string    `json:"id"`
	BranchID        string    `json:"branch_id"`
	ParentID        string    `json:"parent_id,omitempty"` // empty for a top-level task
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Status          Status    `json:"status"`
	Priority        Priority  `json:"priority"`
	OverallProgress int       `json:"overall_progress"` // [0,100]
	Assignee        string    `json:"assignee,omitempty"`
	SubtaskIDs      []string  `json:"subtask_ids,omitempty"` // ordered by creation; order is not semantic
	Version         int64     `json:"version"`               // optimistic-lock token, incremented on every mutation
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsSubtask reports whether this Task has a parent.
func (t *Task) IsSubtask() bool { return t.ParentID != "" }

// Clone returns a deep-enough copy for use-cases to mutate in memory before
// handing the result back to the repository (copy-on-write discipline).
func (t *Task) Clone() *Task {
	cp := *t
	cp.SubtaskIDs = append([]string(nil), t.SubtaskIDs...)
	return &cp
}

// Touch advances UpdatedAt and the version token.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
	t.Version++
}
