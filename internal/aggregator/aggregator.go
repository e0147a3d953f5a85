// Package aggregator implements the Progress Aggregator: it records
// ProgressSnapshots, computes overall_progress for leaf and parent tasks,
// and detects milestone crossings.
package aggregator

import (
	"fmt"
	"math"
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// ErrNonMonotonic is returned by RecordSnapshot when a same-type percentage
// would decrease without being marked as a correction.
type ErrNonMonotonic struct {
	Type       domain.ProgressType
	Previous   int
	Attempted  int
}

func (e *ErrNonMonotonic) Error() string {
	return fmt.Sprintf("progress type %s must be non-decreasing: %d -> %d (mark metadata.is_correction=true to override)", e.Type, e.Previous, e.Attempted)
}

// RecordSnapshot appends snap to timeline, enforcing that percentages are
// non-decreasing per type unless explicitly marked a correction. type=general
// may decrease freely — it is a self-report, not an aggregate.
func RecordSnapshot(timeline *domain.ProgressTimeline, snap domain.ProgressSnapshot) error {
	if snap.Type != domain.ProgressGeneral && snap.Percentage != nil && !snap.Metadata.IsCorrection {
		if last, ok := timeline.LastByType(snap.Type); ok && last.Percentage != nil {
			if *snap.Percentage < *last.Percentage {
				return &ErrNonMonotonic{Type: snap.Type, Previous: *last.Percentage, Attempted: *snap.Percentage}
			}
		}
	}
	timeline.Snapshots = append(timeline.Snapshots, snap)
	return nil
}

// LeafOverall computes overall_progress for a task with no subtasks.
// If the latest snapshot is type=general with a percentage, that value wins
// outright. Otherwise it is the weighted mean over types that have at least
// one snapshot, defaulting to equal weights when weights is nil or a type is
// unweighted.
func LeafOverall(timeline *domain.ProgressTimeline, weights map[domain.ProgressType]float64) int {
	if general, ok := timeline.LastByType(domain.ProgressGeneral); ok && general.Percentage != nil {
		return clamp(*general.Percentage)
	}

	types := timeline.TypesPresent()
	var nonGeneral []domain.ProgressType
	for _, t := range types {
		if t != domain.ProgressGeneral {
			nonGeneral = append(nonGeneral, t)
		}
	}
	if len(nonGeneral) == 0 {
		return 0
	}

	defaultWeight := 1.0 / float64(len(nonGeneral))
	var weightedSum, weightTotal float64
	for _, t := range nonGeneral {
		snap, _ := timeline.LastByType(t)
		pct := 0
		if snap.Percentage != nil {
			pct = *snap.Percentage
		}
		w := defaultWeight
		if weights != nil {
			if custom, ok := weights[t]; ok {
				w = custom
			}
		}
		weightedSum += w * float64(pct)
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	return clamp(int(roundHalfToEven(weightedSum / weightTotal)))
}

// subtaskContribution is f(s): 100 if done, 50 if in_progress with
// unknown percentage, else the subtask's own overall_progress.
func subtaskContribution(s *domain.Task) float64 {
	switch s.Status {
	case domain.StatusDone:
		return 100
	case domain.StatusInProgress:
		if s.OverallProgress == 0 {
			return 50
		}
		return float64(s.OverallProgress)
	default:
		return float64(s.OverallProgress)
	}
}

// ParentOverall computes overall_progress for a task from its subtasks
// clamp(round(sum f(s)) / n, 0, 100) with half-to-even rounding.
func ParentOverall(subtasks []*domain.Task) int {
	if len(subtasks) == 0 {
		return 0
	}
	var sum float64
	for _, s := range subtasks {
		sum += subtaskContribution(s)
	}
	mean := sum / float64(len(subtasks))
	return clamp(int(roundHalfToEven(mean)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// roundHalfToEven implements the standard half-to-even rounding tie-break,
// i.e. banker's rounding.
func roundHalfToEven(v float64) float64 {
	return math.RoundToEven(v)
}

// MilestoneCrossing describes a single (task, milestone) threshold crossing
// detected by DetectCrossings.
type MilestoneCrossing struct {
	Milestone *domain.Milestone
	FiredAt   time.Time
}

// DetectCrossings compares prevProgress to currProgress against a set of
// milestones and returns the ones that should fire a ProgressMilestoneReached
// event. Firing is idempotent per crossing (P5): a milestone already fired
// (FiredAt set) does not re-fire unless progress first drops back below its
// threshold and crosses again — callers are expected to clear FiredAt
// themselves when they observe such a drop, this function only detects the
// upward crossing.
func DetectCrossings(prevProgress, currProgress int, milestones []*domain.Milestone, now time.Time) []MilestoneCrossing {
	var crossings []MilestoneCrossing
	for _, m := range milestones {
		crossed := prevProgress < m.Threshold && currProgress >= m.Threshold
		if crossed && m.FiredAt == nil {
			crossings = append(crossings, MilestoneCrossing{Milestone: m, FiredAt: now})
		}
		// Dropping back below the threshold clears the fired marker so a
		// future crossing can fire again (P5's "idempotence per crossing").
		if currProgress < m.Threshold && m.FiredAt != nil {
			m.FiredAt = nil
		}
	}
	return crossings
}

// FormatPropagationNote renders the auto-generated Context note written to a
// parent when a subtask's progress changes, e.g. "Subtask X: Y% — note".
func FormatPropagationNote(subtaskTitle string, percentage int, note string) string {
	if note == "" {
		return fmt.Sprintf("Subtask %s: %d%%", subtaskTitle, percentage)
	}
	return fmt.Sprintf("Subtask %s: %d%% — %s", subtaskTitle, percentage, note)
}
