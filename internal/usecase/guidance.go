package usecase

import (
	"context"
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
	"github.com/emergent-company/taskvision-mcp/internal/vision"
)

// completionAttempt describes an action=complete call that a completion
// guard blocked, so the guidance builder can fire the COMPLETION_BLOCKED_*
// rules; every other call, a successful completion included, passes the
// zero value.
type completionAttempt struct {
	attempted    bool
	summaryEmpty bool
}

// buildGuidance assembles the hints.State for task (and its Context and
// subtasks) and runs it through the Hint Enhancer rule engine, capping
// output at the configured default.
func (o *Orchestrator) buildGuidance(ctx context.Context, task *domain.Task, taskCtx *domain.Context, attempt completionAttempt) hints.Guidance {
	return o.buildGuidanceWithMax(ctx, task, taskCtx, attempt, o.Config.MaxHints)
}

// buildGuidanceWithMax is buildGuidance with an explicit hint cap, used by
// get_workflow_hints when the caller requests fewer or more than the default.
func (o *Orchestrator) buildGuidanceWithMax(ctx context.Context, task *domain.Task, taskCtx *domain.Context, attempt completionAttempt, maxHints int) hints.Guidance {
	now := o.Now()

	subtasks, _ := o.Repos.Tasks.FindChildren(ctx, task.ID)
	var incomplete []string
	for _, s := range subtasks {
		if s.Status != domain.StatusDone {
			incomplete = append(incomplete, s.ID)
		}
	}

	hasContext := taskCtx != nil
	lastUpdated := task.UpdatedAt
	if hasContext {
		lastUpdated = taskCtx.LastUpdated
	}

	topScore, hasAlignment := o.topAlignmentScore(ctx, task, now)

	state := hints.State{
		TaskID:                 task.ID,
		Status:                 task.Status,
		Progress:               task.OverallProgress,
		HasContext:             hasContext,
		CanComplete:            len(incomplete) == 0,
		LastUpdated:            lastUpdated,
		Now:                    now,
		StalenessThreshold:     o.Config.StalenessThreshold,
		CompletionAttempted:    attempt.attempted,
		CompletionSummaryEmpty: attempt.summaryEmpty,
		IncompleteSubtaskIDs:   incomplete,
		TopAlignmentScore:      topScore,
		HasAlignment:           hasAlignment,
	}

	return hints.Evaluate(state, maxHints)
}

// topAlignmentScore returns the highest alignment Score for task (Confidence
// is not factored in), using the alignment cache when fresh.
func (o *Orchestrator) topAlignmentScore(ctx context.Context, task *domain.Task, now time.Time) (float64, bool) {
	alignments, ok := o.computeAlignments(ctx, task, now)
	if !ok || len(alignments) == 0 {
		return 0, false
	}
	best := alignments[0].Score
	for _, a := range alignments[1:] {
		if a.Score > best {
			best = a.Score
		}
	}
	return best, true
}

// computeAlignments returns ranked alignments for task, consulting the
// cache first and falling back to a fresh vision.Rank over the hierarchy.
func (o *Orchestrator) computeAlignments(ctx context.Context, task *domain.Task, now time.Time) ([]domain.Alignment, bool) {
	ranked, err := o.alignmentCache.GetOrCompute(task.ID, now, func() ([]domain.Alignment, error) {
		objectives, err := o.Repos.Vision.GetHierarchy(ctx)
		if err != nil || len(objectives) == 0 {
			return nil, err
		}
		idx := vision.NewHierarchyIndex(objectives)
		return vision.Rank(idx, task, objectives, 0), nil
	})
	if err != nil || len(ranked) == 0 {
		return nil, false
	}
	return ranked, true
}

// loadContextOrNil fetches a Task's Context, treating NOT_FOUND as "no
// Context yet" rather than an error — a Context is created lazily.
func (o *Orchestrator) loadContextOrNil(ctx context.Context, taskID string) *domain.Context {
	c, err := o.Repos.Contexts.GetByTask(ctx, taskID)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.NotFound {
			return nil
		}
		return nil
	}
	return c
}
