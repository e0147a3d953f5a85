package task

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// CompleteTaskWithUpdate wires complete_task_with_update(...): an atomic
// Context write plus completion in one call, for callers that already have
// the full write ready rather than composing report_progress + manage_task.
type CompleteTaskWithUpdate struct {
	orch *usecase.Orchestrator
}

func NewCompleteTaskWithUpdate(orch *usecase.Orchestrator) *CompleteTaskWithUpdate {
	return &CompleteTaskWithUpdate{orch: orch}
}

func (t *CompleteTaskWithUpdate) Name() string { return "complete_task_with_update" }

func (t *CompleteTaskWithUpdate) Description() string {
	return "Completes a task and writes its Context in one call: task_id and completion_summary are required."
}

func (t *CompleteTaskWithUpdate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "completion_summary": {"type": "string"},
    "testing_notes": {"type": "string"},
    "next_steps": {"type": "array", "items": {"type": "string"}},
    "force": {"type": "boolean"}
  },
  "required": ["task_id", "completion_summary"]
}`)
}

type completeTaskWithUpdateParams struct {
	TaskID            string   `json:"task_id" validate:"required"`
	CompletionSummary string   `json:"completion_summary" validate:"required"`
	TestingNotes      string   `json:"testing_notes"`
	NextSteps         []string `json:"next_steps"`
	Force             bool     `json:"force"`
}

func (t *CompleteTaskWithUpdate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[completeTaskWithUpdateParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.CompleteTask(ctx, usecase.CompleteTaskParams{
		TaskID: p.TaskID, CompletionSummary: p.CompletionSummary,
		TestingNotes: p.TestingNotes, NextSteps: p.NextSteps, Force: p.Force,
	})
	return dispatcher.Render(resp)
}
