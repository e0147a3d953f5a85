package hints

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestDerivePhase_KnownPhasesOnly(t *testing.T) {
	cases := []struct {
		status   domain.Status
		progress int
	}{
		{domain.StatusTodo, 0},
		{domain.StatusInProgress, 10},
		{domain.StatusInProgress, 85},
		{domain.StatusBlocked, 0},
		{domain.StatusReview, 0},
		{domain.StatusDone, 100},
		{domain.StatusCancelled, 0},
	}
	known := make(map[string]bool, len(KnownPhases))
	for _, p := range KnownPhases {
		known[p] = true
	}
	for _, c := range cases {
		phase := DerivePhase(c.status, c.progress)
		assert.True(t, known[phase], "phase %q not in KnownPhases", phase)
	}
}

func TestEvaluate_NotStartedSuggestsStatusUpdate(t *testing.T) {
	state := State{
		TaskID:             "task_1",
		Status:             domain.StatusTodo,
		Now:                fixedNow,
		LastUpdated:        fixedNow,
		StalenessThreshold: 30 * time.Minute,
	}
	g := Evaluate(state, 0)
	require.NotEmpty(t, g.NextActions)
	assert.Equal(t, "manage_task", g.NextActions[0].Tool)
	assert.Equal(t, "in_progress", g.NextActions[0].Params["status"])
}

func TestEvaluate_StaleProducesWarningAndCriticalAction(t *testing.T) {
	state := State{
		TaskID:             "task_1",
		Status:             domain.StatusInProgress,
		Progress:           20,
		Now:                fixedNow,
		LastUpdated:        fixedNow.Add(-45 * time.Minute),
		StalenessThreshold: 30 * time.Minute,
	}
	g := Evaluate(state, 0)
	require.NotEmpty(t, g.Warnings)
	require.NotEmpty(t, g.NextActions)
	assert.Equal(t, "quick_task_update", g.NextActions[0].Tool)
	assert.Equal(t, "critical", g.NextActions[0].Priority)
}

func TestEvaluate_CompletionBlockedNoSummary(t *testing.T) {
	state := State{
		TaskID:                 "task_1",
		Status:                 domain.StatusInProgress,
		Now:                    fixedNow,
		LastUpdated:            fixedNow,
		StalenessThreshold:     30 * time.Minute,
		CompletionAttempted:    true,
		CompletionSummaryEmpty: true,
	}
	g := Evaluate(state, 0)
	require.NotEmpty(t, g.NextActions)
	assert.Equal(t, "manage_task", g.NextActions[0].Tool)
	assert.Contains(t, g.NextActions[0].Params, "completion_summary")
	assert.NotEmpty(t, g.Examples)
}

func TestEvaluate_CompletionBlockedSubtasksListsEachOne(t *testing.T) {
	state := State{
		TaskID:               "task_parent",
		Status:               domain.StatusInProgress,
		Now:                  fixedNow,
		LastUpdated:          fixedNow,
		StalenessThreshold:   30 * time.Minute,
		CompletionAttempted:  true,
		IncompleteSubtaskIDs: []string{"task_c2", "task_c3"},
	}
	g := Evaluate(state, 0)
	require.Len(t, g.NextActions, 2)
	assert.Equal(t, "complete_subtask_with_update", g.NextActions[0].Tool)
	assert.Equal(t, "task_c2", g.NextActions[0].Params["subtask_id"])
	assert.Equal(t, "task_c3", g.NextActions[1].Params["subtask_id"])
}

func TestEvaluate_NearCompletionHintsSummary(t *testing.T) {
	state := State{
		TaskID:             "task_1",
		Status:             domain.StatusInProgress,
		Progress:           90,
		Now:                fixedNow,
		LastUpdated:        fixedNow,
		StalenessThreshold: 30 * time.Minute,
	}
	g := Evaluate(state, 0)
	assert.NotEmpty(t, g.Hints)
	assert.Equal(t, "near_completion", g.CurrentState.Phase)
}

func TestEvaluate_HighStrategicImportanceStarsHint(t *testing.T) {
	state := State{
		TaskID:             "task_1",
		Status:             domain.StatusInProgress,
		Progress:           30,
		Now:                fixedNow,
		LastUpdated:        fixedNow,
		StalenessThreshold: 30 * time.Minute,
		HasAlignment:       true,
		TopAlignmentScore:  0.85,
	}
	g := Evaluate(state, 0)
	found := false
	for _, h := range g.Hints {
		if len(h) > 0 && h[0] == '★' {
			found = true
		}
	}
	assert.True(t, found, "expected a star-prefixed hint, got %v", g.Hints)
}

func TestEvaluate_HintsCappedAtMaxHints(t *testing.T) {
	state := State{
		TaskID:             "task_1",
		Status:             domain.StatusInProgress,
		Progress:           90,
		Now:                fixedNow,
		LastUpdated:        fixedNow,
		StalenessThreshold: 30 * time.Minute,
		HasAlignment:       true,
		TopAlignmentScore:  0.95,
	}
	g := Evaluate(state, 1)
	assert.LessOrEqual(t, len(g.Hints), 1)
}

func TestEvaluate_Deterministic(t *testing.T) {
	state := State{
		TaskID:               "task_1",
		Status:               domain.StatusInProgress,
		Progress:             85,
		Now:                  fixedNow,
		LastUpdated:          fixedNow.Add(-40 * time.Minute),
		StalenessThreshold:   30 * time.Minute,
		CompletionAttempted:  true,
		IncompleteSubtaskIDs: []string{"task_c2"},
		HasAlignment:         true,
		TopAlignmentScore:    0.9,
	}
	first := Evaluate(state, 0)
	second := Evaluate(state, 0)
	assert.Equal(t, first, second)
}

func TestEvaluate_CriticalActionsOutrankMediumOnes(t *testing.T) {
	state := State{
		TaskID:                 "task_1",
		Status:                 domain.StatusTodo,
		Now:                    fixedNow,
		LastUpdated:            fixedNow,
		StalenessThreshold:     30 * time.Minute,
		CompletionAttempted:    true,
		CompletionSummaryEmpty: true,
	}
	g := Evaluate(state, 0)
	require.Len(t, g.NextActions, 2)
	assert.Equal(t, "critical", g.NextActions[0].Priority)
}
