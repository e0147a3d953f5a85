package agent

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// RequestWorkHandoff wires request_work_handoff(from_agent_id, to_agent_id, task_id, work_summary, ...).
type RequestWorkHandoff struct {
	orch *usecase.Orchestrator
}

func NewRequestWorkHandoff(orch *usecase.Orchestrator) *RequestWorkHandoff {
	return &RequestWorkHandoff{orch: orch}
}

func (t *RequestWorkHandoff) Name() string { return "request_work_handoff" }

func (t *RequestWorkHandoff) Description() string {
	return "Creates a Handoff in the requested state, the entry point to the handoff state machine."
}

func (t *RequestWorkHandoff) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "from_agent_id": {"type": "string"},
    "to_agent_id": {"type": "string"},
    "task_id": {"type": "string"},
    "work_summary": {"type": "string"}
  },
  "required": ["from_agent_id", "to_agent_id", "task_id"]
}`)
}

type requestWorkHandoffParams struct {
	FromAgentID string `json:"from_agent_id" validate:"required"`
	ToAgentID   string `json:"to_agent_id" validate:"required"`
	TaskID      string `json:"task_id" validate:"required"`
	WorkSummary string `json:"work_summary"`
}

func (t *RequestWorkHandoff) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[requestWorkHandoffParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.RequestWorkHandoff(ctx, usecase.RequestWorkHandoffParams{
		FromAgentID: p.FromAgentID, ToAgentID: p.ToAgentID, TaskID: p.TaskID, WorkSummary: p.WorkSummary,
	})
	return dispatcher.Render(resp)
}

// AcceptHandoff wires accept_handoff(handoff_id).
type AcceptHandoff struct {
	orch *usecase.Orchestrator
}

func NewAcceptHandoff(orch *usecase.Orchestrator) *AcceptHandoff {
	return &AcceptHandoff{orch: orch}
}

func (t *AcceptHandoff) Name() string        { return "accept_handoff" }
func (t *AcceptHandoff) Description() string { return "Accepts a requested Handoff and transfers the Assignment atomically." }

func (t *AcceptHandoff) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {"handoff_id": {"type": "string"}}, "required": ["handoff_id"]}`)
}

type handoffIDParams struct {
	HandoffID string `json:"handoff_id" validate:"required"`
}

func (t *AcceptHandoff) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[handoffIDParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	return dispatcher.Render(t.orch.AcceptHandoff(ctx, p.HandoffID))
}

// RejectHandoff wires reject_handoff(handoff_id, reason?).
type RejectHandoff struct {
	orch *usecase.Orchestrator
}

func NewRejectHandoff(orch *usecase.Orchestrator) *RejectHandoff {
	return &RejectHandoff{orch: orch}
}

func (t *RejectHandoff) Name() string        { return "reject_handoff" }
func (t *RejectHandoff) Description() string { return "Rejects a requested Handoff; the original Assignment is left untouched." }

func (t *RejectHandoff) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"handoff_id": {"type": "string"}, "reason": {"type": "string"}},
  "required": ["handoff_id"]
}`)
}

type rejectHandoffParams struct {
	HandoffID string `json:"handoff_id" validate:"required"`
	Reason    string `json:"reason"`
}

func (t *RejectHandoff) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[rejectHandoffParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.RejectHandoff(ctx, usecase.RejectHandoffParams{HandoffID: p.HandoffID, Reason: p.Reason})
	return dispatcher.Render(resp)
}

// CompleteHandoff wires complete_handoff(handoff_id, work_summary?, completed_items?, remaining_items?).
type CompleteHandoff struct {
	orch *usecase.Orchestrator
}

func NewCompleteHandoff(orch *usecase.Orchestrator) *CompleteHandoff {
	return &CompleteHandoff{orch: orch}
}

func (t *CompleteHandoff) Name() string { return "complete_handoff" }
func (t *CompleteHandoff) Description() string {
	return "Completes an accepted Handoff and merges its work_summary into the task's Context."
}

func (t *CompleteHandoff) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "handoff_id": {"type": "string"},
    "work_summary": {"type": "string"},
    "completed_items": {"type": "array", "items": {"type": "string"}},
    "remaining_items": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["handoff_id"]
}`)
}

type completeHandoffParams struct {
	HandoffID      string   `json:"handoff_id" validate:"required"`
	WorkSummary    string   `json:"work_summary"`
	CompletedItems []string `json:"completed_items"`
	RemainingItems []string `json:"remaining_items"`
}

func (t *CompleteHandoff) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[completeHandoffParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.CompleteHandoff(ctx, usecase.CompleteHandoffParams{
		HandoffID: p.HandoffID, WorkSummary: p.WorkSummary,
		CompletedItems: p.CompletedItems, RemainingItems: p.RemainingItems,
	})
	return dispatcher.Render(resp)
}
