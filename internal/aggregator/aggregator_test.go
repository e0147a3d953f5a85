package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

func pct(v int) *int { return &v }

func TestRecordSnapshot_RejectsDecreaseWithoutCorrection(t *testing.T) {
	timeline := &domain.ProgressTimeline{TaskID: "task_1"}
	require.NoError(t, RecordSnapshot(timeline, domain.ProgressSnapshot{
		Type: domain.ProgressImplementation, Percentage: pct(60),
	}))

	err := RecordSnapshot(timeline, domain.ProgressSnapshot{
		Type: domain.ProgressImplementation, Percentage: pct(40),
	})
	require.Error(t, err)
	var nonMono *ErrNonMonotonic
	require.ErrorAs(t, err, &nonMono)
	assert.Equal(t, 60, nonMono.Previous)
	assert.Equal(t, 40, nonMono.Attempted)
}

func TestRecordSnapshot_AllowsDecreaseAsCorrection(t *testing.T) {
	timeline := &domain.ProgressTimeline{TaskID: "task_1"}
	require.NoError(t, RecordSnapshot(timeline, domain.ProgressSnapshot{
		Type: domain.ProgressImplementation, Percentage: pct(60),
	}))
	err := RecordSnapshot(timeline, domain.ProgressSnapshot{
		Type: domain.ProgressImplementation, Percentage: pct(40),
		Metadata: domain.ProgressMetadata{IsCorrection: true},
	})
	require.NoError(t, err)
	last, ok := timeline.LastByType(domain.ProgressImplementation)
	require.True(t, ok)
	assert.Equal(t, 40, *last.Percentage)
}

func TestRecordSnapshot_GeneralMayDecreaseFreely(t *testing.T) {
	timeline := &domain.ProgressTimeline{TaskID: "task_1"}
	require.NoError(t, RecordSnapshot(timeline, domain.ProgressSnapshot{
		Type: domain.ProgressGeneral, Percentage: pct(80),
	}))
	err := RecordSnapshot(timeline, domain.ProgressSnapshot{
		Type: domain.ProgressGeneral, Percentage: pct(30),
	})
	require.NoError(t, err)
}

func TestLeafOverall_GeneralOverridesEverything(t *testing.T) {
	timeline := &domain.ProgressTimeline{TaskID: "task_1", Snapshots: []domain.ProgressSnapshot{
		{Type: domain.ProgressImplementation, Percentage: pct(90)},
		{Type: domain.ProgressGeneral, Percentage: pct(25)},
	}}
	assert.Equal(t, 25, LeafOverall(timeline, nil))
}

func TestLeafOverall_EqualWeightMeanAcrossTypes(t *testing.T) {
	timeline := &domain.ProgressTimeline{TaskID: "task_1", Snapshots: []domain.ProgressSnapshot{
		{Type: domain.ProgressImplementation, Percentage: pct(100)},
		{Type: domain.ProgressTesting, Percentage: pct(0)},
	}}
	assert.Equal(t, 50, LeafOverall(timeline, nil))
}

func TestLeafOverall_NoSnapshotsIsZero(t *testing.T) {
	timeline := &domain.ProgressTimeline{TaskID: "task_1"}
	assert.Equal(t, 0, LeafOverall(timeline, nil))
}

func TestParentOverall_DoneCountsAsHundred(t *testing.T) {
	subtasks := []*domain.Task{
		{Status: domain.StatusDone, OverallProgress: 0},
		{Status: domain.StatusTodo, OverallProgress: 0},
	}
	assert.Equal(t, 50, ParentOverall(subtasks))
}

func TestParentOverall_InProgressWithUnknownPercentageIsFifty(t *testing.T) {
	subtasks := []*domain.Task{
		{Status: domain.StatusInProgress, OverallProgress: 0},
	}
	assert.Equal(t, 50, ParentOverall(subtasks))
}

func TestParentOverall_InProgressWithKnownPercentage(t *testing.T) {
	subtasks := []*domain.Task{
		{Status: domain.StatusInProgress, OverallProgress: 70},
	}
	assert.Equal(t, 70, ParentOverall(subtasks))
}

func TestParentOverall_HalfToEvenRoundingTieBreak(t *testing.T) {
	// mean = 50.5 -> half-to-even rounds to 50 (nearest even integer).
	subtasks := []*domain.Task{
		{Status: domain.StatusDone, OverallProgress: 100},
		{Status: domain.StatusBlocked, OverallProgress: 1},
	}
	assert.Equal(t, 50, ParentOverall(subtasks))

	// mean = 51.5 -> half-to-even rounds up to 52 (nearest even integer).
	subtasks2 := []*domain.Task{
		{Status: domain.StatusDone, OverallProgress: 100},
		{Status: domain.StatusBlocked, OverallProgress: 3},
	}
	assert.Equal(t, 52, ParentOverall(subtasks2))
}

func TestParentOverall_NoSubtasksIsZero(t *testing.T) {
	assert.Equal(t, 0, ParentOverall(nil))
}

func TestDetectCrossings_FiresOnceOnUpwardCrossing(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	milestones := []*domain.Milestone{
		{TaskID: "task_1", Name: "halfway", Threshold: 50},
	}
	crossings := DetectCrossings(30, 60, milestones, now)
	require.Len(t, crossings, 1)
	assert.Equal(t, "halfway", crossings[0].Milestone.Name)

	milestones[0].FiredAt = &now
	crossingsAgain := DetectCrossings(60, 70, milestones, now)
	assert.Empty(t, crossingsAgain, "already-fired milestone must not re-fire without dropping below threshold first")
}

func TestDetectCrossings_ReFiresAfterDroppingBelowThreshold(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	milestones := []*domain.Milestone{
		{TaskID: "task_1", Name: "halfway", Threshold: 50, FiredAt: &now},
	}
	// Drop back below threshold clears the marker.
	DetectCrossings(60, 40, milestones, now)
	assert.Nil(t, milestones[0].FiredAt)

	crossings := DetectCrossings(40, 55, milestones, now)
	require.Len(t, crossings, 1)
}

func TestFormatPropagationNote(t *testing.T) {
	assert.Equal(t, "Subtask Wire up auth: 40%", FormatPropagationNote("Wire up auth", 40, ""))
	assert.Equal(t, "Subtask Wire up auth: 40% — blocked on review", FormatPropagationNote("Wire up auth", 40, "blocked on review"))
}
