package domain

import "time"

// HintType classifies a WorkflowHint.
type HintType string

const (
	HintNextAction         HintType = "next_action"
	HintBlockerResolution  HintType = "blocker_resolution"
	HintOptimization       HintType = "optimization"
	HintCompletion         HintType = "completion"
	HintCollaboration      HintType = "collaboration"
)

// HintPriority orders a WorkflowHint for display.
type HintPriority string

const (
	HintPriorityLow      HintPriority = "low"
	HintPriorityMedium   HintPriority = "medium"
	HintPriorityHigh     HintPriority = "high"
	HintPriorityCritical HintPriority = "critical"
)

// hintPriorityRank gives HintPriority a total order for the Hint Enhancer's
// sorted-by-priority-desc-then-insertion-order rule.
var hintPriorityRank = map[HintPriority]int{
	HintPriorityCritical: 4,
	HintPriorityHigh:     3,
	HintPriorityMedium:   2,
	HintPriorityLow:      1,
}

// Rank returns a numeric rank, higher sorts first.
func (p HintPriority) Rank() int { return hintPriorityRank[p] }

// WorkflowHint is a persisted, analytics-eligible hint. The live
// workflow_guidance attached to every response is built fresh per request;
// WorkflowHint is what get_workflow_hints/provide_hint_feedback operate on
// when a hint is asked for on demand or scored afterwards.
type WorkflowHint struct {
	ID              string         `json:"id"`
	TaskID          string         `json:"task_id"`
	Type            HintType       `json:"type"`
	Priority        HintPriority   `json:"priority"`
	Message         string         `json:"message"`
	SuggestedTool   string         `json:"suggested_tool,omitempty"`
	SuggestedParams map[string]any `json:"suggested_params,omitempty"`
	Rationale       string         `json:"rationale,omitempty"`
	Confidence      float64        `json:"confidence"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
	WasHelpful      *bool          `json:"was_helpful,omitempty"`
	FeedbackComment string         `json:"feedback_comment,omitempty"`
}

// Expired reports whether the hint's expiry has passed relative to now.
func (h *WorkflowHint) Expired(now time.Time) bool {
	return h.ExpiresAt != nil && now.After(*h.ExpiresAt)
}
