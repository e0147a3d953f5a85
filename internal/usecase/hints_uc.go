package usecase

import (
	"context"
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
)

// hintFeedbackWindow sets the ExpiresAt stamped on each hint GetWorkflowHints
// persists. ProvideHintFeedback does not check it: feedback on an expired
// hint is still recorded.
const hintFeedbackWindow = 24 * time.Hour

// GetWorkflowHintsParams is get_workflow_hints(...).
type GetWorkflowHintsParams struct {
	TaskID    string
	HintTypes []domain.HintType
	MaxHints  int
}

// GetWorkflowHints returns the on-demand workflow_guidance for a Task and
// persists each surfaced hint for later feedback via provide_hint_feedback.
func (o *Orchestrator) GetWorkflowHints(ctx context.Context, p GetWorkflowHintsParams) Response {
	task, err := o.Repos.Tasks.Get(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	maxHints := p.MaxHints
	if maxHints <= 0 {
		maxHints = o.Config.MaxHints
	}

	taskCtx := o.loadContextOrNil(ctx, task.ID)
	guidance := o.buildGuidanceWithMax(ctx, task, taskCtx, completionAttempt{}, maxHints)

	now := o.Now()
	expiresAt := now.Add(hintFeedbackWindow)
	for _, h := range guidance.Hints {
		record := &domain.WorkflowHint{
			ID: domain.NewID("hint"), TaskID: task.ID,
			Type: domain.HintNextAction, Priority: domain.HintPriorityMedium,
			Message: h, Confidence: 1, ExpiresAt: &expiresAt,
		}
		_ = o.Repos.Hints.Save(ctx, record)
	}
	return success(guidance, guidance)
}

// ProvideHintFeedbackParams is provide_hint_feedback(...).
type ProvideHintFeedbackParams struct {
	HintID     string
	TaskID     string
	WasHelpful bool
	Comment    string
}

// ProvideHintFeedback records whether a previously surfaced hint helped.
func (o *Orchestrator) ProvideHintFeedback(ctx context.Context, p ProvideHintFeedbackParams) Response {
	if err := o.Repos.Hints.MarkFeedback(ctx, p.HintID, p.WasHelpful, p.Comment); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(map[string]any{"hint_id": p.HintID, "recorded": true}, hints.Guidance{})
}
