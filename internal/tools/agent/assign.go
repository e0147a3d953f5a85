// Package agent implements the agent-coordination tool surface: assignment,
// handoffs, workload, conflict resolution, and status broadcast.
package agent

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// AssignAgentToTask wires assign_agent_to_task(task_id, agent_id, role, ...).
type AssignAgentToTask struct {
	orch *usecase.Orchestrator
}

func NewAssignAgentToTask(orch *usecase.Orchestrator) *AssignAgentToTask {
	return &AssignAgentToTask{orch: orch}
}

func (t *AssignAgentToTask) Name() string { return "assign_agent_to_task" }

func (t *AssignAgentToTask) Description() string {
	return "Creates or replaces the primary Assignment on a task. Reassignment emits AgentUnassigned then AgentAssigned."
}

func (t *AssignAgentToTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "agent_id": {"type": "string"},
    "role": {"type": "string"},
    "responsibilities": {"type": "array", "items": {"type": "string"}},
    "assigned_by": {"type": "string"}
  },
  "required": ["task_id", "agent_id"]
}`)
}

type assignAgentToTaskParams struct {
	TaskID           string   `json:"task_id" validate:"required"`
	AgentID          string   `json:"agent_id" validate:"required"`
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
	AssignedBy       string   `json:"assigned_by"`
}

func (t *AssignAgentToTask) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[assignAgentToTaskParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.AssignAgentToTask(ctx, usecase.AssignAgentToTaskParams{
		TaskID: p.TaskID, AgentID: p.AgentID, Role: p.Role,
		Responsibilities: p.Responsibilities, AssignedBy: p.AssignedBy,
	})
	return dispatcher.Render(resp)
}
