package coordinator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

func TestSuitabilityScore_PrefersLowLoadAndExpertiseMatch(t *testing.T) {
	idle := &domain.Agent{ID: "agent_idle", Role: "engineer", CurrentLoad: 0, Expertise: []string{"go", "postgres"}}
	busy := &domain.Agent{ID: "agent_busy", Role: "engineer", CurrentLoad: 0.9, Expertise: []string{"go", "postgres"}}

	scoreIdle := SuitabilityScore(idle, "engineer", []string{"go"})
	scoreBusy := SuitabilityScore(busy, "engineer", []string{"go"})
	assert.Greater(t, scoreIdle, scoreBusy)
}

func TestSelectAgent_TiesBrokenByLoadThenID(t *testing.T) {
	a := &domain.Agent{ID: "agent_b", Role: "engineer", CurrentLoad: 0.2}
	b := &domain.Agent{ID: "agent_a", Role: "engineer", CurrentLoad: 0.2}
	chosen, _, ok := SelectAgent([]*domain.Agent{a, b}, "engineer", nil)
	require.True(t, ok)
	assert.Equal(t, "agent_a", chosen.ID)
}

func TestSelectAgent_EmptyCandidatesIsNotOK(t *testing.T) {
	_, _, ok := SelectAgent(nil, "engineer", nil)
	assert.False(t, ok)
}

func TestHandoffLifecycle_AcceptThenComplete(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RequestHandoff("handoff_1", "task_1", "agent_a", "agent_b", now)
	assert.Equal(t, domain.HandoffRequested, h.State)

	later := now.Add(time.Hour)
	require.NoError(t, AcceptHandoff(h, later))
	assert.Equal(t, domain.HandoffAccepted, h.State)

	completedAt := later.Add(time.Hour)
	require.NoError(t, CompleteHandoff(h, "wrapped up auth wiring", []string{"wire login"}, []string{"add tests"}, completedAt))
	assert.Equal(t, domain.HandoffCompleted, h.State)
	assert.Equal(t, "wrapped up auth wiring", h.WorkSummary)
}

func TestHandoffLifecycle_RejectIsTerminal(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RequestHandoff("handoff_2", "task_1", "agent_a", "agent_b", now)
	require.NoError(t, RejectHandoff(h, "overloaded this sprint", now))
	assert.Equal(t, domain.HandoffRejected, h.State)

	err := AcceptHandoff(h, now)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidHandoffState, appErr.Code)
}

func TestHandoffLifecycle_UnknownTransitionRejected(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RequestHandoff("handoff_3", "task_1", "agent_a", "agent_b", now)
	err := CompleteHandoff(h, "summary", nil, nil, now)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidHandoffState, appErr.Code)
}

func TestResolveConflict_FirstWriterWins(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	conflict := &domain.Conflict{
		TaskID: "task_1",
		Candidates: []domain.Assignment{
			{AgentID: "agent_a", AssignedAt: now},
			{AgentID: "agent_b", AssignedAt: now.Add(time.Minute)},
		},
	}
	winner, err := ResolveConflict(conflict, domain.StrategyFirstWriterWins, "resolver_1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "agent_a", winner.AgentID)
	assert.True(t, conflict.Resolved)
}

func TestResolveConflict_LastWriterWins(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	conflict := &domain.Conflict{
		TaskID: "task_1",
		Candidates: []domain.Assignment{
			{AgentID: "agent_a", AssignedAt: now},
			{AgentID: "agent_b", AssignedAt: now.Add(time.Minute)},
		},
	}
	winner, err := ResolveConflict(conflict, domain.StrategyLastWriterWins, "resolver_1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "agent_b", winner.AgentID)
}

func TestResolveConflict_MergeUnionsResponsibilities(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	conflict := &domain.Conflict{
		TaskID: "task_1",
		Candidates: []domain.Assignment{
			{AgentID: "agent_a", AssignedAt: now, Responsibilities: []string{"backend"}},
			{AgentID: "agent_b", AssignedAt: now.Add(time.Minute), Responsibilities: []string{"frontend", "backend"}},
		},
	}
	winner, err := ResolveConflict(conflict, domain.StrategyMerge, "resolver_1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "agent_b", winner.AgentID)
	assert.ElementsMatch(t, []string{"backend", "frontend"}, winner.Responsibilities)
}

func TestResolveConflict_ManualNeverResolves(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	conflict := &domain.Conflict{
		TaskID:     "task_1",
		Candidates: []domain.Assignment{{AgentID: "agent_a", AssignedAt: now}},
	}
	_, err := ResolveConflict(conflict, domain.StrategyManual, "resolver_1", now)
	require.Error(t, err)
	assert.False(t, conflict.Resolved)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.AssignmentConflict, appErr.Code)
}
