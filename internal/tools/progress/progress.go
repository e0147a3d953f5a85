// Package progress implements report_progress, quick_task_update, and
// checkpoint_work: the three ways an agent records work against a Task.
package progress

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// ReportProgress wires report_progress(task_id, progress_type, description,
// percentage?, metadata?).
type ReportProgress struct {
	orch *usecase.Orchestrator
}

func NewReportProgress(orch *usecase.Orchestrator) *ReportProgress {
	return &ReportProgress{orch: orch}
}

func (t *ReportProgress) Name() string { return "report_progress" }

func (t *ReportProgress) Description() string {
	return "Appends a progress snapshot. Requires progress_type and description, plus either a percentage or " +
		"metadata explaining why none is known (blockers, notes). Percentage must not decrease within the same " +
		"progress_type unless metadata.is_correction is set."
}

func (t *ReportProgress) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "progress_type": {"type": "string", "enum": ["analysis", "design", "implementation", "testing", "documentation", "review", "deployment", "general"]},
    "description": {"type": "string"},
    "percentage": {"type": "integer", "minimum": 0, "maximum": 100},
    "metadata": {
      "type": "object",
      "properties": {
        "blockers": {"type": "array", "items": {"type": "string"}},
        "dependencies": {"type": "array", "items": {"type": "string"}},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1},
        "notes": {"type": "string"},
        "is_correction": {"type": "boolean"}
      }
    },
    "agent_id": {"type": "string"}
  },
  "required": ["task_id", "progress_type", "description"]
}`)
}

type reportProgressParams struct {
	TaskID      string                  `json:"task_id" validate:"required"`
	Type        domain.ProgressType     `json:"progress_type" validate:"required"`
	Description string                  `json:"description" validate:"required"`
	Percentage  *int                    `json:"percentage"`
	Metadata    domain.ProgressMetadata `json:"metadata"`
	AgentID     string                  `json:"agent_id"`
}

func (t *ReportProgress) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[reportProgressParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.ReportProgress(ctx, usecase.ReportProgressParams{
		TaskID: p.TaskID, Type: p.Type, Description: p.Description,
		Percentage: p.Percentage, Metadata: p.Metadata, AgentID: p.AgentID,
	})
	return dispatcher.Render(resp)
}

// QuickTaskUpdate wires quick_task_update(task_id, what_i_did, progress_percentage).
type QuickTaskUpdate struct {
	orch *usecase.Orchestrator
}

func NewQuickTaskUpdate(orch *usecase.Orchestrator) *QuickTaskUpdate {
	return &QuickTaskUpdate{orch: orch}
}

func (t *QuickTaskUpdate) Name() string { return "quick_task_update" }

func (t *QuickTaskUpdate) Description() string {
	return "Shorthand for report_progress with progress_type=general: records what was done and a progress percentage in one call."
}

func (t *QuickTaskUpdate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "what_i_did": {"type": "string"},
    "progress_percentage": {"type": "integer", "minimum": 0, "maximum": 100},
    "agent_id": {"type": "string"}
  },
  "required": ["task_id", "what_i_did", "progress_percentage"]
}`)
}

type quickTaskUpdateParams struct {
	TaskID             string `json:"task_id" validate:"required"`
	WhatIDid           string `json:"what_i_did" validate:"required"`
	ProgressPercentage int    `json:"progress_percentage" validate:"min=0,max=100"`
	AgentID            string `json:"agent_id"`
}

func (t *QuickTaskUpdate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[quickTaskUpdateParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.QuickTaskUpdate(ctx, usecase.QuickTaskUpdateParams{
		TaskID: p.TaskID, WhatIDid: p.WhatIDid, ProgressPercentage: p.ProgressPercentage, AgentID: p.AgentID,
	})
	return dispatcher.Render(resp)
}

// CheckpointWork wires checkpoint_work(task_id, current_state, next_steps[]).
type CheckpointWork struct {
	orch *usecase.Orchestrator
}

func NewCheckpointWork(orch *usecase.Orchestrator) *CheckpointWork {
	return &CheckpointWork{orch: orch}
}

func (t *CheckpointWork) Name() string { return "checkpoint_work" }

func (t *CheckpointWork) Description() string {
	return "Persists a snapshot of current_state and a list of next_steps without requiring a percentage — " +
		"for mid-flight handoffs or interruptions."
}

func (t *CheckpointWork) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "current_state": {"type": "string"},
    "next_steps": {"type": "array", "items": {"type": "string"}},
    "agent_id": {"type": "string"}
  },
  "required": ["task_id", "current_state"]
}`)
}

type checkpointWorkParams struct {
	TaskID       string   `json:"task_id" validate:"required"`
	CurrentState string   `json:"current_state" validate:"required"`
	NextSteps    []string `json:"next_steps"`
	AgentID      string   `json:"agent_id"`
}

func (t *CheckpointWork) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[checkpointWorkParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.CheckpointWork(ctx, usecase.CheckpointWorkParams{
		TaskID: p.TaskID, CurrentState: p.CurrentState, NextSteps: p.NextSteps, AgentID: p.AgentID,
	})
	return dispatcher.Render(resp)
}
