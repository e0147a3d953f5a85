package agent

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// GetAgentWorkload wires get_agent_workload(agent_id).
type GetAgentWorkload struct {
	orch *usecase.Orchestrator
}

func NewGetAgentWorkload(orch *usecase.Orchestrator) *GetAgentWorkload {
	return &GetAgentWorkload{orch: orch}
}

func (t *GetAgentWorkload) Name() string        { return "get_agent_workload" }
func (t *GetAgentWorkload) Description() string { return "Reports an Agent's current assignment load and status." }

func (t *GetAgentWorkload) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {"agent_id": {"type": "string"}}, "required": ["agent_id"]}`)
}

type agentIDParams struct {
	AgentID string `json:"agent_id" validate:"required"`
}

func (t *GetAgentWorkload) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[agentIDParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	return dispatcher.Render(t.orch.GetAgentWorkload(ctx, p.AgentID))
}
