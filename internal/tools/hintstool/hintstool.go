// Package hintstool implements get_workflow_hints and provide_hint_feedback,
// the on-demand surface over the Hint Enhancer.
package hintstool

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// GetWorkflowHints wires get_workflow_hints(task_id, hint_types?, max_hints?).
type GetWorkflowHints struct {
	orch *usecase.Orchestrator
}

func NewGetWorkflowHints(orch *usecase.Orchestrator) *GetWorkflowHints {
	return &GetWorkflowHints{orch: orch}
}

func (t *GetWorkflowHints) Name() string { return "get_workflow_hints" }

func (t *GetWorkflowHints) Description() string {
	return "Returns the on-demand workflow_guidance for a task, persisting each surfaced hint for later feedback."
}

func (t *GetWorkflowHints) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "hint_types": {"type": "array", "items": {"type": "string", "enum": ["next_action", "blocker_resolution", "optimization", "completion", "collaboration"]}},
    "max_hints": {"type": "integer", "minimum": 1}
  },
  "required": ["task_id"]
}`)
}

type getWorkflowHintsParams struct {
	TaskID    string            `json:"task_id" validate:"required"`
	HintTypes []domain.HintType `json:"hint_types"`
	MaxHints  int               `json:"max_hints"`
}

func (t *GetWorkflowHints) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[getWorkflowHintsParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.GetWorkflowHints(ctx, usecase.GetWorkflowHintsParams{
		TaskID: p.TaskID, HintTypes: p.HintTypes, MaxHints: p.MaxHints,
	})
	return dispatcher.Render(resp)
}

// ProvideHintFeedback wires provide_hint_feedback(hint_id, task_id, was_helpful, comment?).
type ProvideHintFeedback struct {
	orch *usecase.Orchestrator
}

func NewProvideHintFeedback(orch *usecase.Orchestrator) *ProvideHintFeedback {
	return &ProvideHintFeedback{orch: orch}
}

func (t *ProvideHintFeedback) Name() string { return "provide_hint_feedback" }

func (t *ProvideHintFeedback) Description() string {
	return "Records whether a previously surfaced hint was helpful."
}

func (t *ProvideHintFeedback) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "hint_id": {"type": "string"},
    "task_id": {"type": "string"},
    "was_helpful": {"type": "boolean"},
    "comment": {"type": "string"}
  },
  "required": ["hint_id", "task_id", "was_helpful"]
}`)
}

type provideHintFeedbackParams struct {
	HintID     string `json:"hint_id" validate:"required"`
	TaskID     string `json:"task_id" validate:"required"`
	WasHelpful bool   `json:"was_helpful"`
	Comment    string `json:"comment"`
}

func (t *ProvideHintFeedback) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[provideHintFeedbackParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.ProvideHintFeedback(ctx, usecase.ProvideHintFeedbackParams{
		HintID: p.HintID, TaskID: p.TaskID, WasHelpful: p.WasHelpful, Comment: p.Comment,
	})
	return dispatcher.Render(resp)
}
