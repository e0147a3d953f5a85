package vision

import (
	"context"
	"encoding/json"

	"github.com/emergent-company/taskvision-mcp/internal/dispatcher"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// GetVisionInsights wires get_vision_insights(): at-risk-objective and
// new-alignment-opportunity signals across the whole hierarchy. Not part of
// the original per-task tool surface — added because the hierarchy-wide
// view the Vision Enricher computes had nowhere else to surface.
type GetVisionInsights struct {
	orch *usecase.Orchestrator
}

func NewGetVisionInsights(orch *usecase.Orchestrator) *GetVisionInsights {
	return &GetVisionInsights{orch: orch}
}

func (t *GetVisionInsights) Name() string { return "get_vision_insights" }

func (t *GetVisionInsights) Description() string {
	return "Surfaces at-risk objectives (approaching deadline or a large metric gap) and under-served objectives (no aligned assignments but an open metric gap) across the hierarchy."
}

func (t *GetVisionInsights) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *GetVisionInsights) Execute(ctx context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	return dispatcher.Render(t.orch.GetVisionInsights(ctx))
}
