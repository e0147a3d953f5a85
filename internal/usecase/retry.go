package usecase

import (
	"context"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// mutateTask implements the per-task optimistic-concurrency mutation cycle:
// it loads the current Task, applies fn to a clone, and persists via
// compare-and-swap, making up to maxOptimisticRetries attempts in total on
// CONCURRENT_MODIFICATION before giving up. Under contention exactly one
// attempt commits; the rest retry against the winner's new version.
func (o *Orchestrator) mutateTask(ctx context.Context, taskID string, fn func(t *domain.Task) error) (*domain.Task, error) {
	var lastErr error
	for attempt := 0; attempt < maxOptimisticRetries; attempt++ {
		current, err := o.Repos.Tasks.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		working := current.Clone()
		if err := fn(working); err != nil {
			return nil, err
		}
		working.Touch(o.Now())

		err = o.Repos.Tasks.UpdateWithVersion(ctx, working, current.Version)
		if err == nil {
			return working, nil
		}
		if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.ConcurrentModification {
			return nil, err
		}
		lastErr = err
	}
	if o.Metrics != nil {
		o.Metrics.RecordConcurrentModification(taskID)
	}
	return nil, lastErr
}
