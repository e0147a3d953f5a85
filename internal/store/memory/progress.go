package memory

import (
	"context"
	"sync"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// ProgressRepository is an in-memory implementation of store.ProgressRepository.
type ProgressRepository struct {
	mu         sync.RWMutex
	timelines  map[string]*domain.ProgressTimeline
	milestones map[string]*domain.Milestone // keyed by Milestone.Key()
}

// NewProgressRepository creates an empty repository.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{
		timelines:  make(map[string]*domain.ProgressTimeline),
		milestones: make(map[string]*domain.Milestone),
	}
}

func (r *ProgressRepository) GetTimeline(_ context.Context, taskID string) (*domain.ProgressTimeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.timelines[taskID]
	if !ok {
		return &domain.ProgressTimeline{TaskID: taskID}, nil
	}
	return t.Clone(), nil
}

func (r *ProgressRepository) SaveTimeline(_ context.Context, t *domain.ProgressTimeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timelines[t.TaskID] = t.Clone()
	return nil
}

func (r *ProgressRepository) GetMilestones(_ context.Context, taskID string) ([]*domain.Milestone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Milestone
	for _, m := range r.milestones {
		if m.TaskID == taskID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ProgressRepository) SaveMilestone(_ context.Context, m *domain.Milestone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.milestones[m.Key()] = &cp
	return nil
}
