package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/store"
	"github.com/emergent-company/taskvision-mcp/internal/store/memory"
)

func newTestOrchestrator() *Orchestrator {
	repos := &store.Repositories{
		Tasks:    memory.NewTaskRepository(),
		Contexts: memory.NewContextRepository(),
		Progress: memory.NewProgressRepository(),
		Vision:   memory.NewVisionRepository(),
		Agents:   memory.NewAgentRepository(),
		Hints:    memory.NewHintRepository(),
	}
	o := New(repos, DefaultConfig(), nil)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	o.Now = func() time.Time { return fixed }
	return o
}

func TestCreateTask_AttachesToParentSubtaskIDs(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	parentResp := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"})
	require.True(t, parentResp.Success)
	parent := parentResp.Data.(*domain.Task)

	childResp := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"})
	require.True(t, childResp.Success)
	child := childResp.Data.(*domain.Task)

	reloaded, err := o.Repos.Tasks.Get(ctx, parent.ID)
	require.NoError(t, err)
	assert.Contains(t, reloaded.SubtaskIDs, child.ID)
}

func TestCreateTask_DefaultsPriorityToMedium(t *testing.T) {
	o := newTestOrchestrator()
	resp := o.CreateTask(context.Background(), CreateTaskParams{BranchID: "b1", Title: "t"})
	require.True(t, resp.Success)
	task := resp.Data.(*domain.Task)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
}

func TestCompleteTask_BlockedWithoutCompletionSummary(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	created := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "t"}).Data.(*domain.Task)

	resp := o.CompleteTask(ctx, CompleteTaskParams{TaskID: created.ID})
	require.False(t, resp.Success)
	assert.Equal(t, "MISSING_COMPLETION_SUMMARY", resp.Error.Code)

	reloaded, err := o.Repos.Tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusDone, reloaded.Status)
}

func TestCompleteTask_BlockedWithIncompleteSubtasks(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"})

	resp := o.CompleteTask(ctx, CompleteTaskParams{TaskID: parent.ID, CompletionSummary: "done"})
	require.False(t, resp.Success)
	assert.Equal(t, "INCOMPLETE_SUBTASKS", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details["incomplete_subtask_ids"])
}

func TestCompleteTask_ForceBypassesIncompleteSubtasksGuard(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"})

	resp := o.CompleteTask(ctx, CompleteTaskParams{TaskID: parent.ID, CompletionSummary: "shipped anyway", Force: true})
	require.True(t, resp.Success)
	task := resp.Data.(*domain.Task)
	assert.Equal(t, domain.StatusDone, task.Status)
	assert.Equal(t, 100, task.OverallProgress)
}

func TestCompleteTask_SucceedsAndPersistsContext(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	created := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "t"}).Data.(*domain.Task)

	resp := o.CompleteTask(ctx, CompleteTaskParams{
		TaskID:            created.ID,
		CompletionSummary: "Implemented and tested.",
		TestingNotes:      "covered by unit tests",
		NextSteps:         []string{"monitor rollout"},
	})
	require.True(t, resp.Success)

	taskCtx, err := o.Repos.Contexts.GetByTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Implemented and tested.", taskCtx.CompletionSummary)
	assert.Equal(t, "covered by unit tests", taskCtx.TestingNotes)
	assert.Equal(t, []string{"monitor rollout"}, taskCtx.NextRecommendations)
}

func TestUpdateTask_PartialUpdateLeavesOtherFieldsUnchanged(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	created := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "original", Description: "desc"}).Data.(*domain.Task)

	newTitle := "renamed"
	resp := o.UpdateTask(ctx, UpdateTaskParams{TaskID: created.ID, Title: &newTitle})
	require.True(t, resp.Success)
	updated := resp.Data.(*domain.Task)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "desc", updated.Description)
}

func TestUpdateTask_SucceedsAfterAnotherWriterBumpedVersion(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	created := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "t"}).Data.(*domain.Task)

	// Simulate another writer having committed first by bumping the stored
	// version directly; mutateTask loads that version before its CAS, so the
	// update commits against it.
	stored, err := o.Repos.Tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	stored.Version++
	require.NoError(t, o.Repos.Tasks.Save(ctx, stored))

	newTitle := "updated under contention"
	resp := o.UpdateTask(ctx, UpdateTaskParams{TaskID: created.ID, Title: &newTitle})
	require.True(t, resp.Success)
	assert.Equal(t, "updated under contention", resp.Data.(*domain.Task).Title)
}

func TestListTasks_FiltersByStatus(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "todo task"})
	inProgress := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "doing"}).Data.(*domain.Task)
	status := domain.StatusInProgress
	o.UpdateTask(ctx, UpdateTaskParams{TaskID: inProgress.ID, Status: &status})

	resp := o.ListTasks(ctx, ListTasksParams{BranchID: "b1", Status: &status})
	require.True(t, resp.Success)
	tasks := resp.Data.([]*domain.Task)
	require.Len(t, tasks, 1)
	assert.Equal(t, inProgress.ID, tasks[0].ID)
}

func TestNextTask_PicksHighestPriorityThenOldest(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "low", Priority: domain.PriorityLow})
	urgent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "urgent", Priority: domain.PriorityUrgent}).Data.(*domain.Task)

	resp := o.NextTask(ctx, "b1")
	require.True(t, resp.Success)
	assert.Equal(t, urgent.ID, resp.Data.(*domain.Task).ID)
}

func TestNextTask_SkipsTerminalTasks(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	done := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "finished", Priority: domain.PriorityCritical}).Data.(*domain.Task)
	o.CompleteTask(ctx, CompleteTaskParams{TaskID: done.ID, CompletionSummary: "done"})
	todo := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "remaining", Priority: domain.PriorityLow}).Data.(*domain.Task)

	resp := o.NextTask(ctx, "b1")
	require.True(t, resp.Success)
	assert.Equal(t, todo.ID, resp.Data.(*domain.Task).ID)
}

func TestDeleteTask_InvalidatesAlignmentCacheAndRemoves(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	created := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "t"}).Data.(*domain.Task)

	resp := o.DeleteTask(ctx, created.ID)
	require.True(t, resp.Success)

	_, err := o.Repos.Tasks.Get(ctx, created.ID)
	require.Error(t, err)
}

func TestDeleteTask_CascadesToSubtasksAndGrandchildren(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	child := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"}).Data.(*domain.Task)
	grandchild := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: child.ID, Title: "grandchild"}).Data.(*domain.Task)

	resp := o.DeleteTask(ctx, parent.ID)
	require.True(t, resp.Success)
	cascaded := resp.Data.(map[string]any)["cascaded"].([]string)
	assert.ElementsMatch(t, []string{child.ID, grandchild.ID}, cascaded)

	for _, id := range []string{parent.ID, child.ID, grandchild.ID} {
		_, err := o.Repos.Tasks.Get(ctx, id)
		assert.Error(t, err, "expected %s to be deleted", id)
	}
}
