// Package hints implements the Hint Enhancer: a fixed, ordered,
// deterministic rule engine that decorates every dispatcher response with a
// workflow_guidance object. Rules are pure functions of state — no model
// calls, no randomness — so identical state always produces byte-equal
// output.
package hints

import (
	"fmt"
	"sort"
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// KnownPhases enumerates every value CurrentState.Phase can take.
var KnownPhases = []string{
	"not_started", "in_progress", "blocked", "review",
	"near_completion", "completed", "cancelled",
}

// DerivePhase maps a Task's status and progress onto the closed phase set.
func DerivePhase(status domain.Status, progress int) string {
	switch status {
	case domain.StatusTodo:
		return "not_started"
	case domain.StatusBlocked:
		return "blocked"
	case domain.StatusReview:
		return "review"
	case domain.StatusDone:
		return "completed"
	case domain.StatusCancelled:
		return "cancelled"
	case domain.StatusInProgress:
		if progress >= 80 {
			return "near_completion"
		}
		return "in_progress"
	default:
		return "in_progress"
	}
}

// State is everything a rule may read. It is built fresh per request by the
// use-case orchestrator; rules never reach back into a repository.
type State struct {
	TaskID      string
	Status      domain.Status
	Progress    int
	HasContext  bool
	CanComplete bool
	LastUpdated time.Time
	Now         time.Time

	StalenessThreshold time.Duration

	CompletionAttempted      bool
	CompletionSummaryEmpty   bool
	IncompleteSubtaskIDs     []string
	TopAlignmentScore        float64
	HasAlignment             bool
}

// TimeSinceUpdate is State.Now - State.LastUpdated.
func (s State) TimeSinceUpdate() time.Duration { return s.Now.Sub(s.LastUpdated) }

// CurrentState is the current_state block of workflow_guidance.
type CurrentState struct {
	Phase           string        `json:"phase"`
	Status          string        `json:"status"`
	Progress        int           `json:"progress"`
	HasContext      bool          `json:"has_context"`
	CanComplete     bool          `json:"can_complete"`
	TimeSinceUpdate time.Duration `json:"time_since_update"`
}

// NextAction is a single ready-to-paste corrective or follow-up call.
type NextAction struct {
	Priority string         `json:"priority"`
	Action   string         `json:"action"`
	Tool     string         `json:"tool"`
	Params   map[string]any `json:"params"`
	Reason   string         `json:"reason"`
}

// Guidance is the full workflow_guidance object attached to every response.
type Guidance struct {
	CurrentState CurrentState      `json:"current_state"`
	Rules        []string          `json:"rules"`
	NextActions  []NextAction      `json:"next_actions"`
	Hints        []string          `json:"hints"`
	Warnings     []string          `json:"warnings"`
	Examples     map[string]string `json:"examples"`
}

// output is what a single rule contributes when it fires.
type output struct {
	rule        string
	nextActions []NextAction
	hints       []string
	warnings    []string
	examples    map[string]string
}

// rule is one entry in the fixed ordered rule list. priority controls the
// sort of accumulated next_actions (desc, then insertion order).
type rule struct {
	name     string
	priority int
	eval     func(State) *output
}

// rules is the fixed ordered list; its order is itself the tie-break for
// equal-priority outputs (stable sort preserves it).
var rules = []rule{
	{
		name:     "NOT_STARTED",
		priority: 2,
		eval: func(s State) *output {
			if s.Status != domain.StatusTodo {
				return nil
			}
			return &output{
				rule: "Tasks in todo should move to in_progress before work is reported against them.",
				nextActions: []NextAction{{
					Priority: "medium",
					Action:   "start work",
					Tool:     "manage_task",
					Params:   map[string]any{"action": "update", "task_id": s.TaskID, "status": "in_progress"},
					Reason:   "status is todo",
				}},
			}
		},
	},
	{
		name:     "STALE",
		priority: 4,
		eval: func(s State) *output {
			if s.Status != domain.StatusInProgress || s.TimeSinceUpdate() <= s.StalenessThreshold {
				return nil
			}
			since := s.TimeSinceUpdate().Round(time.Minute)
			return &output{
				rule: fmt.Sprintf("No progress update in %s; report_progress or quick_task_update to refresh the Context.", since),
				warnings: []string{
					fmt.Sprintf("Task has had no progress update in %s.", since),
				},
				nextActions: []NextAction{{
					Priority: "critical",
					Action:   "report progress",
					Tool:     "quick_task_update",
					Params:   map[string]any{"task_id": s.TaskID, "what_i_did": "...", "progress_percentage": s.Progress},
					Reason:   fmt.Sprintf("last update was %s ago", since),
				}},
			}
		},
	},
	{
		name:     "COMPLETION_BLOCKED_NO_SUMMARY",
		priority: 5,
		eval: func(s State) *output {
			if !s.CompletionAttempted || !s.CompletionSummaryEmpty {
				return nil
			}
			return &output{
				rule: "Completing a task requires a non-empty completion_summary.",
				nextActions: []NextAction{{
					Priority: "critical",
					Action:   "provide a completion summary",
					Tool:     "manage_task",
					Params: map[string]any{
						"action":             "complete",
						"task_id":            s.TaskID,
						"completion_summary": "<describe what was done>",
					},
					Reason: "completion_summary is required to complete a task",
				}},
				examples: map[string]string{
					"complete_with_summary": fmt.Sprintf(`manage_task(action=complete, task_id=%q, completion_summary="...")`, s.TaskID),
				},
			}
		},
	},
	{
		name:     "COMPLETION_BLOCKED_SUBTASKS",
		priority: 5,
		eval: func(s State) *output {
			if !s.CompletionAttempted || len(s.IncompleteSubtaskIDs) == 0 {
				return nil
			}
			actions := make([]NextAction, 0, len(s.IncompleteSubtaskIDs))
			for _, id := range s.IncompleteSubtaskIDs {
				actions = append(actions, NextAction{
					Priority: "critical",
					Action:   "complete open subtask",
					Tool:     "complete_subtask_with_update",
					Params:   map[string]any{"task_id": s.TaskID, "subtask_id": id, "completion_summary": "<describe what was done>"},
					Reason:   "subtask " + id + " is not done",
				})
			}
			return &output{
				rule:        fmt.Sprintf("%d subtask(s) are still open: %v", len(s.IncompleteSubtaskIDs), s.IncompleteSubtaskIDs),
				nextActions: actions,
			}
		},
	},
	{
		name:     "NEAR_COMPLETION",
		priority: 1,
		eval: func(s State) *output {
			if s.Progress < 80 || s.Status == domain.StatusDone {
				return nil
			}
			return &output{
				rule: "Task is near completion; prepare a completion summary and any next recommendations.",
				hints: []string{
					"This task is near completion — consider drafting the completion_summary now.",
				},
			}
		},
	},
	{
		name:     "HIGH_STRATEGIC_IMPORTANCE",
		priority: 3,
		eval: func(s State) *output {
			if !s.HasAlignment || s.TopAlignmentScore < 0.8 {
				return nil
			}
			return &output{
				rule: "This task strongly advances a vision objective.",
				hints: []string{
					fmt.Sprintf("★ high strategic alignment (score %.2f) — prioritize accordingly.", s.TopAlignmentScore),
				},
			}
		},
	},
}

// DefaultMaxHints is the default cap on hints attached to a response.
const DefaultMaxHints = 6

// Evaluate runs every rule against state in the fixed order, accumulates
// their outputs, sorts next_actions by priority desc (ties keep rule order),
// and caps hints at maxHints. maxHints <= 0 uses DefaultMaxHints.
func Evaluate(state State, maxHints int) Guidance {
	if maxHints <= 0 {
		maxHints = DefaultMaxHints
	}

	g := Guidance{
		CurrentState: CurrentState{
			Phase:           DerivePhase(state.Status, state.Progress),
			Status:          string(state.Status),
			Progress:        state.Progress,
			HasContext:      state.HasContext,
			CanComplete:     state.CanComplete,
			TimeSinceUpdate: state.TimeSinceUpdate(),
		},
		Examples: map[string]string{},
	}

	type rankedAction struct {
		action   NextAction
		priority int
		order    int
	}
	var ranked []rankedAction

	for i, r := range rules {
		out := r.eval(state)
		if out == nil {
			continue
		}
		g.Rules = append(g.Rules, out.rule)
		g.Hints = append(g.Hints, out.hints...)
		g.Warnings = append(g.Warnings, out.warnings...)
		for k, v := range out.examples {
			g.Examples[k] = v
		}
		for _, a := range out.nextActions {
			ranked = append(ranked, rankedAction{action: a, priority: r.priority, order: i})
		}
	}

	// Outputs are sorted by priority desc, then insertion order — priority
	// here is the firing rule's declared priority, not the action's
	// own urgency label.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority > ranked[j].priority
		}
		return ranked[i].order < ranked[j].order
	})
	for _, ra := range ranked {
		g.NextActions = append(g.NextActions, ra.action)
	}

	if len(g.Hints) > maxHints {
		g.Hints = g.Hints[:maxHints]
	}
	return g
}
