package subtask

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// CompleteSubtaskWithUpdate wires complete_subtask_with_update(task_id,
// subtask_id, completion_summary, ...): completes a subtask and propagates
// the resulting overall_progress to the parent in one call.
type CompleteSubtaskWithUpdate struct {
	orch *usecase.Orchestrator
}

func NewCompleteSubtaskWithUpdate(orch *usecase.Orchestrator) *CompleteSubtaskWithUpdate {
	return &CompleteSubtaskWithUpdate{orch: orch}
}

func (t *CompleteSubtaskWithUpdate) Name() string { return "complete_subtask_with_update" }

func (t *CompleteSubtaskWithUpdate) Description() string {
	return "Completes a subtask and propagates its progress to the parent task's overall_progress."
}

func (t *CompleteSubtaskWithUpdate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string", "description": "parent task id"},
    "subtask_id": {"type": "string"},
    "completion_summary": {"type": "string"},
    "note": {"type": "string", "description": "optional note appended to the parent's auto-generated propagation note"},
    "force": {"type": "boolean"}
  },
  "required": ["task_id", "subtask_id", "completion_summary"]
}`)
}

type completeSubtaskParams struct {
	TaskID            string `json:"task_id" validate:"required"`
	SubtaskID         string `json:"subtask_id" validate:"required"`
	CompletionSummary string `json:"completion_summary" validate:"required"`
	Note              string `json:"note"`
	Force             bool   `json:"force"`
}

func (t *CompleteSubtaskWithUpdate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[completeSubtaskParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.CompleteSubtaskWithUpdate(ctx, usecase.CompleteSubtaskWithUpdateParams{
		TaskID: p.TaskID, SubtaskID: p.SubtaskID, CompletionSummary: p.CompletionSummary,
		Note: p.Note, Force: p.Force,
	})
	return dispatcher.Render(resp)
}
