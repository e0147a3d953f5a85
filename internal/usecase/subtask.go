package usecase

import (
	"context"
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/aggregator"
	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/events"
	"github.com/emergent-company/taskvision-mcp/internal/guards"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
)

// CreateSubtask is manage_subtask(action=create, ...) — a Task creation with
// ParentID required: a Subtask is a Task with ParentID set.
func (o *Orchestrator) CreateSubtask(ctx context.Context, parentID string, p CreateTaskParams) Response {
	p.ParentID = parentID
	if p.BranchID == "" {
		if parent, err := o.Repos.Tasks.Get(ctx, parentID); err == nil {
			p.BranchID = parent.BranchID
		}
	}
	return o.CreateTask(ctx, p)
}

// UpdateSubtask applies a partial update to a subtask and, when its status
// or progress changed, re-propagates to the parent.
func (o *Orchestrator) UpdateSubtask(ctx context.Context, parentID string, p UpdateTaskParams) Response {
	resp := o.UpdateTask(ctx, p)
	if !resp.Success {
		return resp
	}
	subtask := resp.Data.(*domain.Task)
	parent, err := o.propagateToParent(ctx, parentID, subtask, "", o.Now())
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	guidance := o.buildGuidance(ctx, parent, o.loadContextOrNil(ctx, parent.ID), completionAttempt{})
	return success(map[string]any{"subtask": subtask, "parent": parent}, guidance)
}

// DeleteSubtask removes a subtask (cascading to its own subtasks, if any)
// from its parent's SubtaskIDs and recomputes the parent's overall_progress
// over the remaining children.
func (o *Orchestrator) DeleteSubtask(ctx context.Context, parentID, subtaskID string) Response {
	if _, err := o.deleteTaskCascade(ctx, subtaskID); err != nil {
		return failure(err, hints.Guidance{})
	}

	parent, err := o.mutateTask(ctx, parentID, func(t *domain.Task) error {
		kept := t.SubtaskIDs[:0]
		for _, id := range t.SubtaskIDs {
			if id != subtaskID {
				kept = append(kept, id)
			}
		}
		t.SubtaskIDs = kept
		siblings, err := o.Repos.Tasks.FindChildren(ctx, parentID)
		if err != nil {
			return err
		}
		t.OverallProgress = aggregator.ParentOverall(siblings)
		return nil
	})
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	o.alignmentCache.Invalidate(parentID)
	guidance := o.buildGuidance(ctx, parent, o.loadContextOrNil(ctx, parent.ID), completionAttempt{})
	return success(parent, guidance)
}

// ListSubtasks returns every subtask of a parent Task.
func (o *Orchestrator) ListSubtasks(ctx context.Context, parentID string) Response {
	subtasks, err := o.Repos.Tasks.FindChildren(ctx, parentID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(subtasks, hints.Guidance{})
}

// CompleteSubtaskWithUpdateParams is complete_subtask_with_update(...) /
// manage_subtask(action=complete, ...).
type CompleteSubtaskWithUpdateParams struct {
	TaskID            string // parent id
	SubtaskID         string
	CompletionSummary string
	Note              string
	Force             bool
}

// CompleteSubtaskWithUpdate runs the same completion-summary and
// subtasks-done guards CompleteTask runs, then completes a subtask,
// recomputes the parent's overall_progress, appends the auto-generated
// propagation note to the parent's Context, and fires
// ProgressMilestoneReached/SubtaskProgressAggregated events.
func (o *Orchestrator) CompleteSubtaskWithUpdate(ctx context.Context, p CompleteSubtaskWithUpdateParams) Response {
	now := o.Now()

	subtask, err := o.Repos.Tasks.Get(ctx, p.SubtaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	gctx, incomplete := o.completionGuardContext(ctx, subtask, p.CompletionSummary, p.Force, nil)
	outcome := guards.NewRunner().Run(ctx, gctx, guards.CompletionGuards())
	if outcome.Blocked {
		return o.completionGuardFailure(ctx, subtask, outcome, incomplete)
	}

	subtask, err = o.mutateTask(ctx, p.SubtaskID, func(t *domain.Task) error {
		t.Status = domain.StatusDone
		t.OverallProgress = 100
		return nil
	})
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	subtaskCtx := o.loadContextOrNil(ctx, subtask.ID)
	if subtaskCtx == nil {
		subtaskCtx = domain.NewContext(subtask.ID, now)
	}
	subtaskCtx.SetCompletionSummary(p.CompletionSummary, now)
	if err := o.Repos.Contexts.Save(ctx, subtaskCtx); err != nil {
		return failure(err, hints.Guidance{})
	}
	o.alignmentCache.Invalidate(subtask.ID)

	parent, err := o.propagateToParent(ctx, p.TaskID, subtask, p.Note, now)
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	guidance := o.buildGuidance(ctx, parent, o.loadContextOrNil(ctx, parent.ID), completionAttempt{})
	return success(map[string]any{"subtask": subtask, "parent": parent}, guidance)
}

// propagateToParent recomputes a parent's overall_progress from its current
// subtasks, writes the auto-generated Context note, and runs milestone
// crossing detection — the event cascade that links progress aggregation
// to the event bus.
func (o *Orchestrator) propagateToParent(ctx context.Context, parentID string, subtask *domain.Task, note string, now time.Time) (*domain.Task, error) {
	bus := events.New(o.Config.CascadeDepthLimit)

	bus.On(events.ProgressMilestoneReached, func(_ context.Context, _ *events.Bus, evt events.Event) error {
		if o.Metrics != nil {
			if payload, ok := evt.Payload.(aggregator.MilestoneCrossing); ok {
				o.Metrics.RecordMilestone(payload.Milestone.Name)
			}
		}
		return nil
	})

	previousParent, err := o.Repos.Tasks.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}
	previousOverall := previousParent.OverallProgress

	parent, err := o.mutateTask(ctx, parentID, func(t *domain.Task) error {
		siblings, err := o.Repos.Tasks.FindChildren(ctx, parentID)
		if err != nil {
			return err
		}
		t.OverallProgress = aggregator.ParentOverall(siblings)
		return nil
	})
	if err != nil {
		return nil, err
	}

	parentCtx := o.loadContextOrNil(ctx, parentID)
	if parentCtx == nil {
		parentCtx = domain.NewContext(parentID, now)
	}
	parentCtx.AppendNote(domain.ProgressNote{
		Timestamp: now,
		Text:      aggregator.FormatPropagationNote(subtask.Title, subtask.OverallProgress, note),
	})
	if err := o.Repos.Contexts.Save(ctx, parentCtx); err != nil {
		return nil, err
	}
	o.alignmentCache.Invalidate(parentID)

	bus.Emit(events.Event{Kind: events.SubtaskProgressAggregated, Payload: map[string]any{
		"parent_id": parentID, "subtask_id": subtask.ID, "overall_progress": parent.OverallProgress,
	}})

	milestones, err := o.Repos.Progress.GetMilestones(ctx, parentID)
	if err == nil {
		crossings := aggregator.DetectCrossings(previousOverall, parent.OverallProgress, milestones, now)
		for _, c := range crossings {
			_ = o.Repos.Progress.SaveMilestone(ctx, c.Milestone)
			bus.Emit(events.Event{Kind: events.ProgressMilestoneReached, Payload: c})
		}
	}

	if err := bus.Dispatch(ctx); err != nil {
		return nil, err
	}
	if o.Metrics != nil {
		o.Metrics.ObserveCascadeDepth(bus.Depth())
	}
	return parent, nil
}

// ReportProgressParams is report_progress(...).
type ReportProgressParams struct {
	TaskID      string
	Type        domain.ProgressType
	Description string
	Percentage  *int
	Metadata    domain.ProgressMetadata
	AgentID     string
}

// ReportProgress runs the progress-report shape guard, appends a ProgressSnapshot, and
// recomputes the task's overall_progress for a leaf task.
func (o *Orchestrator) ReportProgress(ctx context.Context, p ReportProgressParams) Response {
	task, err := o.Repos.Tasks.Get(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	hasReason := p.Metadata.Notes != "" || len(p.Metadata.Blockers) > 0
	if p.Type == "" || p.Description == "" || (p.Percentage == nil && !hasReason) {
		return failure(invalidProgressShape(), hints.Guidance{})
	}

	now := o.Now()
	timeline, err := o.Repos.Progress.GetTimeline(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	snap := domain.ProgressSnapshot{
		ID:          domain.NewID("snap"),
		TaskID:      p.TaskID,
		Type:        p.Type,
		Percentage:  p.Percentage,
		Description: p.Description,
		Metadata:    p.Metadata,
		Timestamp:   now,
		AgentID:     p.AgentID,
	}
	if err := aggregator.RecordSnapshot(timeline, snap); err != nil {
		return failure(progressMonotonicityError(err), hints.Guidance{})
	}
	if err := o.Repos.Progress.SaveTimeline(ctx, timeline); err != nil {
		return failure(err, hints.Guidance{})
	}

	updated := task
	if len(task.SubtaskIDs) == 0 {
		updated, err = o.mutateTask(ctx, p.TaskID, func(t *domain.Task) error {
			t.OverallProgress = aggregator.LeafOverall(timeline, nil)
			return nil
		})
		if err != nil {
			return failure(err, hints.Guidance{})
		}
	}

	taskCtx := o.loadContextOrNil(ctx, p.TaskID)
	if taskCtx == nil {
		taskCtx = domain.NewContext(p.TaskID, now)
	}
	taskCtx.AppendNote(domain.ProgressNote{
		Timestamp: now, AgentID: p.AgentID, Text: p.Description,
		ProgressType: p.Type, Percentage: p.Percentage,
	})
	if err := o.Repos.Contexts.Save(ctx, taskCtx); err != nil {
		return failure(err, hints.Guidance{})
	}
	o.alignmentCache.Invalidate(p.TaskID)

	guidance := o.buildGuidance(ctx, updated, taskCtx, completionAttempt{})
	return success(map[string]any{"task": updated, "snapshot": snap}, guidance)
}

// QuickTaskUpdateParams is quick_task_update(...): a shorthand that reports
// a general-type progress snapshot and appends a Context note in one call.
type QuickTaskUpdateParams struct {
	TaskID             string
	WhatIDid           string
	ProgressPercentage int
	AgentID            string
}

// QuickTaskUpdate is sugar over ReportProgress with Type=general.
func (o *Orchestrator) QuickTaskUpdate(ctx context.Context, p QuickTaskUpdateParams) Response {
	pct := p.ProgressPercentage
	return o.ReportProgress(ctx, ReportProgressParams{
		TaskID:      p.TaskID,
		Type:        domain.ProgressGeneral,
		Description: p.WhatIDid,
		Percentage:  &pct,
		AgentID:     p.AgentID,
	})
}

// CheckpointWorkParams is checkpoint_work(...).
type CheckpointWorkParams struct {
	TaskID       string
	CurrentState string
	NextSteps    []string
	AgentID      string
}

// CheckpointWork persists a snapshot of current_state plus next_steps
// without forcing a percentage, for mid-flight handoffs or interruptions.
func (o *Orchestrator) CheckpointWork(ctx context.Context, p CheckpointWorkParams) Response {
	now := o.Now()
	task, err := o.Repos.Tasks.Get(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	timeline, err := o.Repos.Progress.GetTimeline(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	snap := domain.ProgressSnapshot{
		ID: domain.NewID("snap"), TaskID: p.TaskID, Type: domain.ProgressGeneral,
		Description: p.CurrentState,
		Metadata:    domain.ProgressMetadata{Notes: p.CurrentState},
		Timestamp:   now, AgentID: p.AgentID,
	}
	if err := aggregator.RecordSnapshot(timeline, snap); err != nil {
		return failure(progressMonotonicityError(err), hints.Guidance{})
	}
	if err := o.Repos.Progress.SaveTimeline(ctx, timeline); err != nil {
		return failure(err, hints.Guidance{})
	}

	taskCtx := o.loadContextOrNil(ctx, p.TaskID)
	if taskCtx == nil {
		taskCtx = domain.NewContext(p.TaskID, now)
	}
	taskCtx.AppendNote(domain.ProgressNote{Timestamp: now, AgentID: p.AgentID, Text: p.CurrentState, ProgressType: domain.ProgressGeneral})
	taskCtx.NextRecommendations = p.NextSteps
	if err := o.Repos.Contexts.Save(ctx, taskCtx); err != nil {
		return failure(err, hints.Guidance{})
	}

	guidance := o.buildGuidance(ctx, task, taskCtx, completionAttempt{})
	return success(map[string]any{"task": task, "next_steps": p.NextSteps}, guidance)
}

// invalidProgressShape is the progress-report shape guard's
// INVALID_PARAMETERS mapping: progress_type, description, and a percentage
// (or a stated reason for omitting one) are all required.
func invalidProgressShape() error {
	return apperrors.New(apperrors.InvalidParameters,
		"report_progress requires progress_type, description, and either percentage or metadata explaining why it is omitted").
		WithFields("progress_type", "description", "percentage")
}

// progressMonotonicityError maps an aggregator.ErrNonMonotonic into the
// closed taxonomy as INVALID_PARAMETERS — the caller passed a percentage
// that decreases progress without marking it a correction.
func progressMonotonicityError(err error) error {
	return apperrors.New(apperrors.InvalidParameters, err.Error()).
		WithHint("set metadata.is_correction=true if this percentage is an intentional correction").
		WithFields("percentage")
}
