// Package vision implements get_vision_alignment, the on-demand read over
// the Vision Enricher's ranked alignments for a task.
package vision

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// GetVisionAlignment wires get_vision_alignment(task_id, top_n?, refresh?).
type GetVisionAlignment struct {
	orch *usecase.Orchestrator
}

func NewGetVisionAlignment(orch *usecase.Orchestrator) *GetVisionAlignment {
	return &GetVisionAlignment{orch: orch}
}

func (t *GetVisionAlignment) Name() string { return "get_vision_alignment" }

func (t *GetVisionAlignment) Description() string {
	return "Ranks a task against the vision objective hierarchy and returns its top alignments."
}

func (t *GetVisionAlignment) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string"},
    "top_n": {"type": "integer", "minimum": 1},
    "refresh": {"type": "boolean", "description": "bypass the alignment cache and recompute"}
  },
  "required": ["task_id"]
}`)
}

type getVisionAlignmentParams struct {
	TaskID  string `json:"task_id" validate:"required"`
	TopN    int    `json:"top_n"`
	Refresh bool   `json:"refresh"`
}

func (t *GetVisionAlignment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, err := dispatcher.Decode[getVisionAlignmentParams](params)
	if err != nil {
		return dispatcher.Invalid(err)
	}
	resp := t.orch.GetVisionAlignment(ctx, usecase.GetVisionAlignmentParams{
		TaskID: p.TaskID, TopN: p.TopN, Refresh: p.Refresh,
	})
	return dispatcher.Render(resp)
}
