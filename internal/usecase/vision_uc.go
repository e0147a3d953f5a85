package usecase

import (
	"context"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
	"github.com/emergent-company/taskvision-mcp/internal/vision"
)

// GetVisionAlignmentParams is get_vision_alignment(...).
type GetVisionAlignmentParams struct {
	TaskID  string
	TopN    int
	Refresh bool
}

// GetVisionAlignment ranks a Task against the objective hierarchy and
// persists the materialised VisionAlignment for later reads. Refresh bypasses
// the alignment cache, forcing a fresh Rank even if a cached entry is still
// within TTL.
func (o *Orchestrator) GetVisionAlignment(ctx context.Context, p GetVisionAlignmentParams) Response {
	task, err := o.Repos.Tasks.Get(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	now := o.Now()
	if p.Refresh {
		o.alignmentCache.Invalidate(task.ID)
	}

	objectives, err := o.Repos.Vision.GetHierarchy(ctx)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	if len(objectives) == 0 {
		guidance := o.buildGuidance(ctx, task, o.loadContextOrNil(ctx, task.ID), completionAttempt{})
		return success(domain.VisionAlignment{TaskID: task.ID, ComputedAt: now}, guidance)
	}

	topN := p.TopN
	if topN <= 0 {
		topN = vision.DefaultTopN
	}
	alignments, err := o.alignmentCache.GetOrCompute(task.ID, now, func() ([]domain.Alignment, error) {
		idx := vision.NewHierarchyIndex(objectives)
		return vision.Rank(idx, task, objectives, topN), nil
	})
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	materialised := domain.VisionAlignment{TaskID: task.ID, Alignments: alignments, ComputedAt: now}
	if err := o.Repos.Vision.SaveAlignment(ctx, &materialised); err != nil {
		return failure(err, hints.Guidance{})
	}

	guidance := o.buildGuidance(ctx, task, o.loadContextOrNil(ctx, task.ID), completionAttempt{})
	return success(materialised, guidance)
}

// GetVisionInsights surfaces at-risk-objective and new-alignment-opportunity
// signals across the whole objective hierarchy.
func (o *Orchestrator) GetVisionInsights(ctx context.Context) Response {
	objectives, err := o.Repos.Vision.GetHierarchy(ctx)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	assignmentCounts, err := o.assignmentCountsByObjective(ctx, objectives)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	insights := vision.DetectInsights(o.Now(), objectives, assignmentCounts, vision.Options{})
	return success(insights, hints.Guidance{})
}

// assignmentCountsByObjective approximates "work assigned" for DetectInsights
// by counting, over every task, the objective ranked first in its alignments
// (cached or freshly computed). It is a best-effort signal, not an audited
// metric.
func (o *Orchestrator) assignmentCountsByObjective(ctx context.Context, objectives []*domain.VisionObjective) (map[string]int, error) {
	counts := make(map[string]int, len(objectives))
	for _, obj := range objectives {
		counts[obj.ID] = 0
	}
	tasks, err := o.Repos.Tasks.Search(ctx, "")
	if err != nil {
		return counts, nil
	}
	for _, t := range tasks {
		alignments, ok := o.computeAlignments(ctx, t, o.Now())
		if !ok || len(alignments) == 0 {
			continue
		}
		counts[alignments[0].ObjectiveID]++
	}
	return counts, nil
}
