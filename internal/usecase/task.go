package usecase

import (
	"context"
	"sort"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/guards"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
)

// CreateTaskParams is manage_task(action=create, ...).
type CreateTaskParams struct {
	BranchID    string
	ParentID    string
	Title       string
	Description string
	Priority    domain.Priority
	Assignee    string
}

// CreateTask creates a Task (and its companion Context) and, if ParentID is
// set, attaches it to the parent's SubtaskIDs.
func (o *Orchestrator) CreateTask(ctx context.Context, p CreateTaskParams) Response {
	now := o.Now()
	priority := p.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	task := &domain.Task{
		ID:          domain.NewID("task"),
		BranchID:    p.BranchID,
		ParentID:    p.ParentID,
		Title:       p.Title,
		Description: p.Description,
		Status:      domain.StatusTodo,
		Priority:    priority,
		Assignee:    p.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	if err := o.Repos.Tasks.Save(ctx, task); err != nil {
		return failure(err, hints.Guidance{})
	}
	if err := o.Repos.Contexts.Save(ctx, domain.NewContext(task.ID, now)); err != nil {
		return failure(err, hints.Guidance{})
	}

	if p.ParentID != "" {
		if _, err := o.mutateTask(ctx, p.ParentID, func(parent *domain.Task) error {
			parent.SubtaskIDs = append(parent.SubtaskIDs, task.ID)
			return nil
		}); err != nil {
			return failure(err, hints.Guidance{})
		}
	}

	guidance := o.buildGuidance(ctx, task, o.loadContextOrNil(ctx, task.ID), completionAttempt{})
	return success(task, guidance)
}

// GetTask returns a Task by id with its Context, plus vision_context when
// alignments can be computed. ListTasks, SearchTasks and NextTask return
// tasks without vision_context.
func (o *Orchestrator) GetTask(ctx context.Context, taskID string) Response {
	task, err := o.Repos.Tasks.Get(ctx, taskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	taskCtx := o.loadContextOrNil(ctx, task.ID)
	guidance := o.buildGuidance(ctx, task, taskCtx, completionAttempt{})

	data := map[string]any{"task": task}
	if taskCtx != nil {
		data["context"] = taskCtx
	}
	if alignments, ok := o.computeAlignments(ctx, task, o.Now()); ok {
		data["vision_context"] = map[string]any{"alignments": alignments}
	}
	return success(data, guidance)
}

// UpdateTaskParams is manage_task(action=update, ...). Pointer fields are
// optional partial updates; nil means "leave unchanged".
type UpdateTaskParams struct {
	TaskID      string
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	Assignee    *string
}

// UpdateTask applies a partial update to a Task under the optimistic lock.
func (o *Orchestrator) UpdateTask(ctx context.Context, p UpdateTaskParams) Response {
	task, err := o.mutateTask(ctx, p.TaskID, func(t *domain.Task) error {
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.Assignee != nil {
			t.Assignee = *p.Assignee
		}
		return nil
	})
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	o.alignmentCache.Invalidate(task.ID)
	guidance := o.buildGuidance(ctx, task, o.loadContextOrNil(ctx, task.ID), completionAttempt{})
	return success(task, guidance)
}

// CompleteTaskParams is manage_task(action=complete, ...) /
// complete_task_with_update.
type CompleteTaskParams struct {
	TaskID            string
	CompletionSummary string
	TestingNotes      string
	NextSteps         []string
	Force             bool
}

// CompleteTask runs the completion-summary and subtasks-done Context
// Enforcer guards, then marks the Task done and writes its Context.
func (o *Orchestrator) CompleteTask(ctx context.Context, p CompleteTaskParams) Response {
	task, err := o.Repos.Tasks.Get(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	gctx, incomplete := o.completionGuardContext(ctx, task, p.CompletionSummary, p.Force, nil)
	outcome := guards.NewRunner().Run(ctx, gctx, guards.CompletionGuards())
	if outcome.Blocked {
		return o.completionGuardFailure(ctx, task, outcome, incomplete)
	}

	now := o.Now()
	updated, err := o.mutateTask(ctx, p.TaskID, func(t *domain.Task) error {
		t.Status = domain.StatusDone
		t.OverallProgress = 100
		return nil
	})
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	taskCtx := o.loadContextOrNil(ctx, task.ID)
	if taskCtx == nil {
		taskCtx = domain.NewContext(task.ID, now)
	}
	taskCtx.SetCompletionSummary(p.CompletionSummary, now)
	if p.TestingNotes != "" {
		taskCtx.TestingNotes = p.TestingNotes
	}
	if len(p.NextSteps) > 0 {
		taskCtx.NextRecommendations = p.NextSteps
	}
	if err := o.Repos.Contexts.Save(ctx, taskCtx); err != nil {
		return failure(err, hints.Guidance{})
	}

	o.alignmentCache.Invalidate(task.ID)
	guidance := o.buildGuidance(ctx, updated, taskCtx, completionAttempt{})
	return success(updated, guidance)
}

// completionGuardContext builds a guards.GuardContext for a completion
// attempt. A non-nil incompleteOverride (subtask ids) is used as given; the
// callers in this package pass nil, and the list is then computed from the
// task's children.
func (o *Orchestrator) completionGuardContext(ctx context.Context, task *domain.Task, completionSummary string, force bool, incompleteOverride []string) (*guards.GuardContext, []string) {
	incomplete := incompleteOverride
	if incomplete == nil {
		subtasks, _ := o.Repos.Tasks.FindChildren(ctx, task.ID)
		for _, s := range subtasks {
			if s.Status != domain.StatusDone {
				incomplete = append(incomplete, s.ID)
			}
		}
	}
	taskCtx := o.loadContextOrNil(ctx, task.ID)
	lastUpdated := task.UpdatedAt
	if taskCtx != nil {
		lastUpdated = taskCtx.LastUpdated
	}
	return &guards.GuardContext{
		TaskID:             task.ID,
		Force:              force,
		Status:             string(task.Status),
		HasSubtasks:        len(task.SubtaskIDs) > 0,
		IncompleteSubtasks: incomplete,
		CompletionSummary:  completionSummary,
		LastUpdated:        lastUpdated,
		Now:                o.Now(),
		StalenessThreshold: o.Config.StalenessThreshold,
	}, incomplete
}

// completionGuardFailure maps a blocked completion guard outcome onto the
// closed error taxonomy and a corrective workflow_guidance.
func (o *Orchestrator) completionGuardFailure(ctx context.Context, task *domain.Task, outcome *guards.Outcome, incomplete []string) Response {
	var err error
	attempt := completionAttempt{attempted: true}
	for _, r := range outcome.HardBlocks() {
		switch r.GuardName {
		case "completion_summary_required":
			err = apperrors.New(apperrors.MissingCompletionSummary, r.Message).WithHint(r.Remedy).WithFields(r.Fields...)
			attempt.summaryEmpty = true
		case "subtasks_must_be_done":
			err = apperrors.New(apperrors.IncompleteSubtasks, r.Message).WithHint(r.Remedy).
				WithDetails(map[string]any{"incomplete_subtask_ids": incomplete})
		}
		if err != nil {
			break
		}
	}
	guidance := o.buildGuidance(ctx, task, o.loadContextOrNil(ctx, task.ID), attempt)
	return failure(err, guidance)
}

// ListTasksParams filters manage_task(action=list, ...).
type ListTasksParams struct {
	BranchID string
	Status   *domain.Status
}

// ListTasks returns every Task on a branch, optionally filtered by status.
func (o *Orchestrator) ListTasks(ctx context.Context, p ListTasksParams) Response {
	tasks, err := o.Repos.Tasks.FindByBranch(ctx, p.BranchID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	if p.Status != nil {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Status == *p.Status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return success(tasks, hints.Guidance{})
}

// SearchTasks full-text searches title/description across all tasks.
func (o *Orchestrator) SearchTasks(ctx context.Context, query string) Response {
	tasks, err := o.Repos.Tasks.Search(ctx, query)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(tasks, hints.Guidance{})
}

// DeleteTask removes a Task and cascades the delete to every subtask beneath
// it — subtasks cannot outlive their parent. The walk is depth-first and
// recursive since a subtask may itself have subtasks.
func (o *Orchestrator) DeleteTask(ctx context.Context, taskID string) Response {
	if _, err := o.Repos.Tasks.Get(ctx, taskID); err != nil {
		return failure(err, hints.Guidance{})
	}
	deleted, err := o.deleteTaskCascade(ctx, taskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(map[string]any{"deleted": taskID, "cascaded": deleted}, hints.Guidance{})
}

// deleteTaskCascade removes every subtask beneath taskID (depth-first,
// recursive) then taskID itself, returning every id deleted below taskID
// (not including taskID).
func (o *Orchestrator) deleteTaskCascade(ctx context.Context, taskID string) ([]string, error) {
	children, err := o.Repos.Tasks.FindChildren(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, child := range children {
		grandchildren, err := o.deleteTaskCascade(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, grandchildren...)
		deleted = append(deleted, child.ID)
	}

	if err := o.Repos.Tasks.Delete(ctx, taskID); err != nil {
		return nil, err
	}
	o.alignmentCache.Invalidate(taskID)
	return deleted, nil
}

// NextTask returns the highest-priority actionable (non-terminal) Task on a
// branch, ties broken by oldest CreatedAt — a deterministic recommendation
// for "what should I work on next".
func (o *Orchestrator) NextTask(ctx context.Context, branchID string) Response {
	tasks, err := o.Repos.Tasks.FindByBranch(ctx, branchID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	var candidates []*domain.Task
	for _, t := range tasks {
		if !t.Status.IsTerminal() {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return success(nil, hints.Guidance{})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority.Rank() != candidates[j].Priority.Rank() {
			return candidates[i].Priority.Rank() > candidates[j].Priority.Rank()
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	next := candidates[0]
	guidance := o.buildGuidance(ctx, next, o.loadContextOrNil(ctx, next.ID), completionAttempt{})
	return success(next, guidance)
}
