package task

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/store"
	"github.com/emergent-company/taskvision-mcp/internal/store/memory"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

func newTestTool() *ManageTask {
	repos := &store.Repositories{
		Tasks:    memory.NewTaskRepository(),
		Contexts: memory.NewContextRepository(),
		Progress: memory.NewProgressRepository(),
		Vision:   memory.NewVisionRepository(),
		Agents:   memory.NewAgentRepository(),
		Hints:    memory.NewHintRepository(),
	}
	orch := usecase.New(repos, usecase.DefaultConfig(), nil)
	return NewManageTask(orch)
}

func TestManageTask_CreateThenGetRoundTrips(t *testing.T) {
	tool := newTestTool()
	ctx := context.Background()

	createResult, err := tool.Execute(ctx, json.RawMessage(`{"action":"create","branch_id":"b1","title":"ship it"}`))
	require.NoError(t, err)
	require.False(t, createResult.IsError)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &created))
	require.NotEmpty(t, created.Data.ID)

	getResult, err := tool.Execute(ctx, json.RawMessage(`{"action":"get","task_id":"`+created.Data.ID+`"}`))
	require.NoError(t, err)
	assert.False(t, getResult.IsError)
}

func TestManageTask_GetWithoutTaskIDIsInvalid(t *testing.T) {
	tool := newTestTool()
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"action":"get"}`))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestManageTask_UnknownActionIsInvalid(t *testing.T) {
	tool := newTestTool()
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"action":"teleport"}`))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestManageTask_CompleteWithoutSummaryIsBlocked(t *testing.T) {
	tool := newTestTool()
	ctx := context.Background()

	createResult, err := tool.Execute(ctx, json.RawMessage(`{"action":"create","branch_id":"b1","title":"t"}`))
	require.NoError(t, err)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &created))

	completeResult, err := tool.Execute(ctx, json.RawMessage(`{"action":"complete","task_id":"`+created.Data.ID+`"}`))
	require.NoError(t, err)
	assert.True(t, completeResult.IsError)
}
