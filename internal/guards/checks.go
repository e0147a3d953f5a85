package guards

import (
	"context"
	"fmt"
	"time"
)

// GuardContext carries everything a guard needs to decide, so individual
// guards never reach back into a repository themselves. Every guard checks
// at mutation time; none are deferred.
type GuardContext struct {
	TaskID string
	Force  bool

	Status              string // domain.Status as string, to keep this package free of a domain import cycle
	HasSubtasks         bool
	IncompleteSubtasks  []string // subtask ids not in status=done
	CompletionSummary   string   // the *parameter* passed to the completion call, not the stored Context
	ProgressType        string
	ProgressDescription string
	HasPercentage       bool
	HasMetadataReason   bool // percentage omitted but metadata explains why

	LastUpdated      time.Time
	Now              time.Time
	StalenessThreshold time.Duration
}

// Stale reports whether the Task is in_progress and past the staleness
// threshold. It never blocks — only the Hint Enhancer reads it.
func (g *GuardContext) Stale() bool {
	if g.Status != "in_progress" {
		return false
	}
	return g.Now.Sub(g.LastUpdated) > g.StalenessThreshold
}

// CompletionSummaryRequired guards that completing a Task carries a
// non-empty completion_summary parameter on the call itself.
var CompletionSummaryRequired = NewGuardFunc("completion_summary_required", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.CompletionSummary != "" {
		return Pass("completion_summary_required")
	}
	return Fail("completion_summary_required", HardBlock,
		"Completing a task requires a non-empty completion_summary describing what was done.",
		"Call manage_task(action=complete, task_id=..., completion_summary=\"...\") or complete_task_with_update with a non-empty summary.",
		"completion_summary",
	)
})

// SubtasksMustBeDone blocks completing a task with open subtasks, listing
// the offending ids.
var SubtasksMustBeDone = NewGuardFunc("subtasks_must_be_done", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.HasSubtasks || len(gctx.IncompleteSubtasks) == 0 {
		return Pass("subtasks_must_be_done")
	}
	return Fail("subtasks_must_be_done", HardBlock,
		fmt.Sprintf("Task has %d incomplete subtask(s): %v", len(gctx.IncompleteSubtasks), gctx.IncompleteSubtasks),
		"Complete each subtask with complete_subtask_with_update before completing the parent.",
	)
})

// ProgressReportShape guards that a progress report carries progress_type,
// description, and either a percentage or an explicit reason for omitting one.
var ProgressReportShape = NewGuardFunc("progress_report_shape", func(_ context.Context, gctx *GuardContext) Result {
	var missing []string
	if gctx.ProgressType == "" {
		missing = append(missing, "progress_type")
	}
	if gctx.ProgressDescription == "" {
		missing = append(missing, "description")
	}
	if !gctx.HasPercentage && !gctx.HasMetadataReason {
		missing = append(missing, "percentage (or metadata explaining why none is known)")
	}
	if len(missing) == 0 {
		return Pass("progress_report_shape")
	}
	return Fail("progress_report_shape", HardBlock,
		fmt.Sprintf("report_progress is missing required fields: %v", missing),
		"Provide progress_type, description, and either percentage or percentage=null with metadata.notes explaining why.",
		missing...,
	)
})

// StalenessAdvisory never blocks; it only produces a warning that the
// Hint Enhancer attaches to the next response.
var StalenessAdvisory = NewGuardFunc("staleness_advisory", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.Stale() {
		return Pass("staleness_advisory")
	}
	since := gctx.Now.Sub(gctx.LastUpdated)
	return Fail("staleness_advisory", Warning,
		fmt.Sprintf("No progress update in %s; the last report_progress/quick_task_update may be stale.", since.Round(time.Minute)),
		"Call quick_task_update or report_progress to refresh Context.last_updated.",
	)
})

// CompletionGuards returns the guards run before completing a task (action=complete).
func CompletionGuards() []Guard {
	return []Guard{CompletionSummaryRequired, SubtasksMustBeDone}
}

// ProgressGuards returns the guards run before recording a progress report.
func ProgressGuards() []Guard {
	return []Guard{ProgressReportShape}
}

// ReadGuards returns the advisory-only guards run on read paths (get/next/list).
func ReadGuards() []Guard {
	return []Guard{StalenessAdvisory}
}
