package subtask

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/store"
	"github.com/emergent-company/taskvision-mcp/internal/store/memory"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

func newTestTool() (*ManageSubtask, *usecase.Orchestrator) {
	repos := &store.Repositories{
		Tasks:    memory.NewTaskRepository(),
		Contexts: memory.NewContextRepository(),
		Progress: memory.NewProgressRepository(),
		Vision:   memory.NewVisionRepository(),
		Agents:   memory.NewAgentRepository(),
		Hints:    memory.NewHintRepository(),
	}
	orch := usecase.New(repos, usecase.DefaultConfig(), nil)
	return NewManageSubtask(orch), orch
}

type createdTask struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func TestManageSubtask_CompleteWithoutSummaryIsBlocked(t *testing.T) {
	tool, orch := newTestTool()
	ctx := context.Background()
	parent := orch.CreateTask(ctx, usecase.CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)

	childResult, err := tool.Execute(ctx, json.RawMessage(`{"action":"create","task_id":"`+parent.ID+`","title":"child"}`))
	require.NoError(t, err)
	var child createdTask
	require.NoError(t, json.Unmarshal([]byte(childResult.Content[0].Text), &child))

	completeResult, err := tool.Execute(ctx, json.RawMessage(
		`{"action":"complete","task_id":"`+parent.ID+`","subtask_id":"`+child.Data.ID+`"}`,
	))
	require.NoError(t, err)
	assert.True(t, completeResult.IsError)
}

func TestManageSubtask_CompleteWithSummarySucceeds(t *testing.T) {
	tool, orch := newTestTool()
	ctx := context.Background()
	parent := orch.CreateTask(ctx, usecase.CreateTaskParams{BranchID: "b1", Title: "parent"}).Data.(*domain.Task)

	childResult, err := tool.Execute(ctx, json.RawMessage(`{"action":"create","task_id":"`+parent.ID+`","title":"child"}`))
	require.NoError(t, err)
	var child createdTask
	require.NoError(t, json.Unmarshal([]byte(childResult.Content[0].Text), &child))

	completeResult, err := tool.Execute(ctx, json.RawMessage(
		`{"action":"complete","task_id":"`+parent.ID+`","subtask_id":"`+child.Data.ID+`","completion_summary":"done"}`,
	))
	require.NoError(t, err)
	assert.False(t, completeResult.IsError)
}
