// Package subtask implements manage_subtask and complete_subtask_with_update:
// Task CRUD scoped to a parent, with automatic parent progress propagation.
package subtask

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// ManageSubtask wires manage_subtask(action=create|update|complete|delete|list, task_id, subtask_id?, ...).
type ManageSubtask struct {
	orch *usecase.Orchestrator
}

func NewManageSubtask(orch *usecase.Orchestrator) *ManageSubtask {
	return &ManageSubtask{orch: orch}
}

func (t *ManageSubtask) Name() string { return "manage_subtask" }

func (t *ManageSubtask) Description() string {
	return "Task CRUD scoped to a parent. action=create|update|complete|delete|list, task_id is the parent, " +
		"subtask_id selects the child for update/complete/delete. Completing a subtask recomputes the parent's overall_progress."
}

func (t *ManageSubtask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["create", "update", "complete", "delete", "list"]},
    "task_id": {"type": "string", "description": "parent task id"},
    "subtask_id": {"type": "string"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "status": {"type": "string", "enum": ["todo", "in_progress", "blocked", "review", "done", "cancelled"]},
    "priority": {"type": "string", "enum": ["low", "medium", "high", "urgent", "critical"]},
    "assignee": {"type": "string"},
    "completion_summary": {"type": "string"},
    "note": {"type": "string"},
    "force": {"type": "boolean"}
  },
  "required": ["action", "task_id"]
}`)
}

type manageSubtaskParams struct {
	Action            string          `json:"action" validate:"required,oneof=create update complete delete list"`
	TaskID            string          `json:"task_id" validate:"required"`
	SubtaskID         string          `json:"subtask_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Status            domain.Status   `json:"status"`
	Priority          domain.Priority `json:"priority"`
	Assignee          string          `json:"assignee"`
	CompletionSummary string          `json:"completion_summary"`
	Note              string          `json:"note"`
	Force             bool            `json:"force"`
}

func (t *ManageSubtask) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[manageSubtaskParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}

	switch p.Action {
	case "create":
		resp := t.orch.CreateSubtask(ctx, p.TaskID, usecase.CreateTaskParams{
			Title: p.Title, Description: p.Description, Priority: p.Priority, Assignee: p.Assignee,
		})
		return dispatcher.Render(resp)
	case "update":
		if p.SubtaskID == "" {
			return dispatcher.Invalid(missingField("subtask_id"))
		}
		up := usecase.UpdateTaskParams{TaskID: p.SubtaskID}
		if p.Title != "" {
			up.Title = &p.Title
		}
		if p.Description != "" {
			up.Description = &p.Description
		}
		if p.Status != "" {
			up.Status = &p.Status
		}
		if p.Priority != "" {
			up.Priority = &p.Priority
		}
		if p.Assignee != "" {
			up.Assignee = &p.Assignee
		}
		return dispatcher.Render(t.orch.UpdateSubtask(ctx, p.TaskID, up))
	case "complete":
		if p.SubtaskID == "" {
			return dispatcher.Invalid(missingField("subtask_id"))
		}
		resp := t.orch.CompleteSubtaskWithUpdate(ctx, usecase.CompleteSubtaskWithUpdateParams{
			TaskID: p.TaskID, SubtaskID: p.SubtaskID, CompletionSummary: p.CompletionSummary,
			Note: p.Note, Force: p.Force,
		})
		return dispatcher.Render(resp)
	case "delete":
		if p.SubtaskID == "" {
			return dispatcher.Invalid(missingField("subtask_id"))
		}
		return dispatcher.Render(t.orch.DeleteSubtask(ctx, p.TaskID, p.SubtaskID))
	case "list":
		return dispatcher.Render(t.orch.ListSubtasks(ctx, p.TaskID))
	default:
		return dispatcher.Invalid(apperrors.New(apperrors.InvalidParameters, "unknown action: "+p.Action))
	}
}

func missingField(name string) error {
	return apperrors.New(apperrors.InvalidParameters, name+" is required for this action").WithFields(name)
}
