package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

func TestCompleteSubtaskWithUpdate_BlockedWithoutCompletionSummary(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	child := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"}).Data.(*domain.Task)

	resp := o.CompleteSubtaskWithUpdate(ctx, CompleteSubtaskWithUpdateParams{TaskID: parent.ID, SubtaskID: child.ID})
	require.False(t, resp.Success)
	assert.Equal(t, "MISSING_COMPLETION_SUMMARY", resp.Error.Code)

	reloaded, err := o.Repos.Tasks.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusDone, reloaded.Status)
}

func TestCompleteSubtaskWithUpdate_BlockedWithIncompleteGrandchildren(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	child := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"}).Data.(*domain.Task)
	o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: child.ID, Title: "grandchild"})

	resp := o.CompleteSubtaskWithUpdate(ctx, CompleteSubtaskWithUpdateParams{
		TaskID: parent.ID, SubtaskID: child.ID, CompletionSummary: "done",
	})
	require.False(t, resp.Success)
	assert.Equal(t, "INCOMPLETE_SUBTASKS", resp.Error.Code)
}

func TestCompleteSubtaskWithUpdate_SucceedsAndPropagatesToParent(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	child := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"}).Data.(*domain.Task)

	resp := o.CompleteSubtaskWithUpdate(ctx, CompleteSubtaskWithUpdateParams{
		TaskID: parent.ID, SubtaskID: child.ID, CompletionSummary: "Implemented and tested.",
	})
	require.True(t, resp.Success)

	reloadedChild, err := o.Repos.Tasks.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, reloadedChild.Status)

	reloadedParent, err := o.Repos.Tasks.Get(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, reloadedParent.OverallProgress)
}

func TestDeleteSubtask_CascadesToItsOwnSubtasks(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	child := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"}).Data.(*domain.Task)
	grandchild := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: child.ID, Title: "grandchild"}).Data.(*domain.Task)

	resp := o.DeleteSubtask(ctx, parent.ID, child.ID)
	require.True(t, resp.Success)

	_, err := o.Repos.Tasks.Get(ctx, child.ID)
	assert.Error(t, err)
	_, err = o.Repos.Tasks.Get(ctx, grandchild.ID)
	assert.Error(t, err)

	reloadedParent, err := o.Repos.Tasks.Get(ctx, parent.ID)
	require.NoError(t, err)
	assert.NotContains(t, reloadedParent.SubtaskIDs, child.ID)
}

func TestCompleteSubtaskWithUpdate_ForceBypassesIncompleteSubtasksGuard(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	parent := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)
	child := o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: parent.ID, Title: "child"}).Data.(*domain.Task)
	o.CreateTask(ctx, CreateTaskParams{BranchID: "b1", ParentID: child.ID, Title: "grandchild"})

	resp := o.CompleteSubtaskWithUpdate(ctx, CompleteSubtaskWithUpdateParams{
		TaskID: parent.ID, SubtaskID: child.ID, CompletionSummary: "shipped anyway", Force: true,
	})
	require.True(t, resp.Success)
}
