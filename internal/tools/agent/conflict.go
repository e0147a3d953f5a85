package agent

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// ResolveConflict wires resolve_conflict(conflict_id, strategy, resolved_by, details).
type ResolveConflict struct {
	orch *usecase.Orchestrator
}

func NewResolveConflict(orch *usecase.Orchestrator) *ResolveConflict {
	return &ResolveConflict{orch: orch}
}

func (t *ResolveConflict) Name() string { return "resolve_conflict" }
func (t *ResolveConflict) Description() string {
	return "Applies a resolution strategy (first_writer_wins, last_writer_wins, merge, manual) to a recorded Conflict."
}

func (t *ResolveConflict) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "conflict_id": {"type": "string"},
    "strategy": {"type": "string", "enum": ["first_writer_wins", "last_writer_wins", "merge", "manual"]},
    "resolved_by": {"type": "string"},
    "details": {"type": "string"}
  },
  "required": ["conflict_id", "strategy", "resolved_by"]
}`)
}

type resolveConflictParams struct {
	ConflictID string                  `json:"conflict_id" validate:"required"`
	Strategy   domain.ConflictStrategy `json:"strategy" validate:"required,oneof=first_writer_wins last_writer_wins merge manual"`
	ResolvedBy string                  `json:"resolved_by" validate:"required"`
	Details    string                  `json:"details"`
}

func (t *ResolveConflict) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[resolveConflictParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.ResolveConflict(ctx, usecase.ResolveConflictParams{
		ConflictID: p.ConflictID, Strategy: p.Strategy, ResolvedBy: p.ResolvedBy, Details: p.Details,
	})
	return dispatcher.Render(resp)
}

// BroadcastStatus wires broadcast_status(agent_id, status, message?).
type BroadcastStatus struct {
	orch *usecase.Orchestrator
}

func NewBroadcastStatus(orch *usecase.Orchestrator) *BroadcastStatus {
	return &BroadcastStatus{orch: orch}
}

func (t *BroadcastStatus) Name() string        { return "broadcast_status" }
func (t *BroadcastStatus) Description() string { return "Updates an Agent's availability status." }

func (t *BroadcastStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "agent_id": {"type": "string"},
    "status": {"type": "string", "enum": ["available", "busy", "offline"]},
    "message": {"type": "string"}
  },
  "required": ["agent_id", "status"]
}`)
}

type broadcastStatusParams struct {
	AgentID string             `json:"agent_id" validate:"required"`
	Status  domain.AgentStatus `json:"status" validate:"required,oneof=available busy offline"`
	Message string             `json:"message"`
}

func (t *BroadcastStatus) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[broadcastStatusParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.BroadcastStatus(ctx, usecase.BroadcastStatusParams{
		AgentID: p.AgentID, Status: p.Status, Message: p.Message,
	})
	return dispatcher.Render(resp)
}
