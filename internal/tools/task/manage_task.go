// Package task implements the manage_task and complete_task_with_update
// tools: Task CRUD, completion, search, and next-task recommendation.
package task

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// ManageTask wires manage_task(action=create|get|update|complete|next|list|search|delete, ...).
type ManageTask struct {
	orch *usecase.Orchestrator
}

// NewManageTask builds the manage_task tool over orch.
func NewManageTask(orch *usecase.Orchestrator) *ManageTask {
	return &ManageTask{orch: orch}
}

func (t *ManageTask) Name() string { return "manage_task" }

func (t *ManageTask) Description() string {
	return "Primary Task CRUD and completion. action=create|get|update|complete|next|list|search|delete. " +
		"action=complete requires completion_summary and fails with MISSING_COMPLETION_SUMMARY or " +
		"INCOMPLETE_SUBTASKS if the task isn't ready."
}

func (t *ManageTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["create", "get", "update", "complete", "next", "list", "search", "delete"]},
    "task_id": {"type": "string"},
    "branch_id": {"type": "string"},
    "parent_id": {"type": "string"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "status": {"type": "string", "enum": ["todo", "in_progress", "blocked", "review", "done", "cancelled"]},
    "priority": {"type": "string", "enum": ["low", "medium", "high", "urgent", "critical"]},
    "assignee": {"type": "string"},
    "completion_summary": {"type": "string"},
    "testing_notes": {"type": "string"},
    "next_steps": {"type": "array", "items": {"type": "string"}},
    "force": {"type": "boolean"},
    "query": {"type": "string"}
  },
  "required": ["action"]
}`)
}

// manageTaskParams covers the union of every action's fields; only the ones
// relevant to the selected action are read.
type manageTaskParams struct {
	Action            string          `json:"action" validate:"required,oneof=create get update complete next list search delete"`
	TaskID            string          `json:"task_id"`
	BranchID          string          `json:"branch_id"`
	ParentID          string          `json:"parent_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Status            domain.Status   `json:"status"`
	Priority          domain.Priority `json:"priority"`
	Assignee          string          `json:"assignee"`
	CompletionSummary string          `json:"completion_summary"`
	TestingNotes      string          `json:"testing_notes"`
	NextSteps         []string        `json:"next_steps"`
	Force             bool            `json:"force"`
	Query             string          `json:"query"`
}

func (t *ManageTask) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[manageTaskParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}

	switch p.Action {
	case "create":
		resp := t.orch.CreateTask(ctx, usecase.CreateTaskParams{
			BranchID: p.BranchID, ParentID: p.ParentID, Title: p.Title,
			Description: p.Description, Priority: p.Priority, Assignee: p.Assignee,
		})
		return dispatcher.Render(resp)
	case "get":
		if p.TaskID == "" {
			return dispatcher.Invalid(missingField("task_id"))
		}
		return dispatcher.Render(t.orch.GetTask(ctx, p.TaskID))
	case "update":
		if p.TaskID == "" {
			return dispatcher.Invalid(missingField("task_id"))
		}
		up := usecase.UpdateTaskParams{TaskID: p.TaskID}
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
		return dispatcher.Render(t.orch.UpdateTask(ctx, up))
	case "complete":
		if p.TaskID == "" {
			return dispatcher.Invalid(missingField("task_id"))
		}
		resp := t.orch.CompleteTask(ctx, usecase.CompleteTaskParams{
			TaskID: p.TaskID, CompletionSummary: p.CompletionSummary,
			TestingNotes: p.TestingNotes, NextSteps: p.NextSteps, Force: p.Force,
		})
		return dispatcher.Render(resp)
	case "next":
		return dispatcher.Render(t.orch.NextTask(ctx, p.BranchID))
	case "list":
		var status *domain.Status
		if p.Status != "" {
			status = &p.Status
		}
		return dispatcher.Render(t.orch.ListTasks(ctx, usecase.ListTasksParams{BranchID: p.BranchID, Status: status}))
	case "search":
		return dispatcher.Render(t.orch.SearchTasks(ctx, p.Query))
	case "delete":
		if p.TaskID == "" {
			return dispatcher.Invalid(missingField("task_id"))
		}
		return dispatcher.Render(t.orch.DeleteTask(ctx, p.TaskID))
	default:
		return dispatcher.Invalid(apperrors.New(apperrors.InvalidParameters, "unknown action: "+p.Action))
	}
}

func missingField(name string) error {
	return apperrors.New(apperrors.InvalidParameters, name+" is required for this action").WithFields(name)
}
