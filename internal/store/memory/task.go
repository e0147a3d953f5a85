// Package memory provides in-process reference implementations of the
// internal/store ports. It is the only storage substrate this repository
// owns — a PostgreSQL/Redis substrate is explicitly out of scope, so these
// implementations exist to make every use-case runnable and testable
// without a network dependency.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// TaskRepository is a thread-safe in-memory implementation of
// store.TaskRepository with optimistic-lock semantics on UpdateWithVersion.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// NewTaskRepository creates an empty repository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *TaskRepository) Get(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "task not found: "+id)
	}
	return t.Clone(), nil
}

func (r *TaskRepository) Save(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t.Clone()
	return nil
}

// UpdateWithVersion performs the compare-and-swap described in the port
// doc comment. Concurrent callers racing on the same task id will see
// exactly one succeed (P7); the other observes ConcurrentModification.
func (r *TaskRepository) UpdateWithVersion(_ context.Context, t *domain.Task, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[t.ID]
	if !ok {
		return apperrors.New(apperrors.NotFound, "task not found: "+t.ID)
	}
	if current.Version != expectedVersion {
		return apperrors.New(apperrors.ConcurrentModification,
			"task was modified concurrently; reload and retry").
			WithHint("Call manage_task(action=get, task_id=" + t.ID + ") and retry the mutation with the refreshed state.")
	}
	r.tasks[t.ID] = t.Clone()
	return nil
}

func (r *TaskRepository) FindByBranch(_ context.Context, branchID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.BranchID == branchID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *TaskRepository) FindChildren(_ context.Context, parentID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.ParentID == parentID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) Search(_ context.Context, query string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(query)
	var out []*domain.Task
	for _, t := range r.tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}
