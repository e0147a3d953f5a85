package memory

import (
	"context"
	"sync"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// VisionRepository is an in-memory implementation of store.VisionRepository.
type VisionRepository struct {
	mu         sync.RWMutex
	objectives map[string]*domain.VisionObjective
	alignments map[string]*domain.VisionAlignment // keyed by task id
}

// NewVisionRepository creates a repository seeded with the given objectives.
func NewVisionRepository(objectives ...*domain.VisionObjective) *VisionRepository {
	r := &VisionRepository{
		objectives: make(map[string]*domain.VisionObjective),
		alignments: make(map[string]*domain.VisionAlignment),
	}
	for _, o := range objectives {
		r.objectives[o.ID] = o
	}
	return r
}

func (r *VisionRepository) GetHierarchy(_ context.Context) ([]*domain.VisionObjective, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.VisionObjective, 0, len(r.objectives))
	for _, o := range r.objectives {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *VisionRepository) GetObjective(_ context.Context, id string) (*domain.VisionObjective, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.objectives[id]
	if !ok {
		return nil, apperrors.New(apperrors.VisionNodeMissing, "vision objective not found: "+id)
	}
	cp := *o
	return &cp, nil
}

func (r *VisionRepository) SaveAlignment(_ context.Context, a *domain.VisionAlignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	cp.Alignments = append([]domain.Alignment(nil), a.Alignments...)
	r.alignments[a.TaskID] = &cp
	return nil
}

func (r *VisionRepository) GetAlignment(_ context.Context, taskID string) (*domain.VisionAlignment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.alignments[taskID]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	cp.Alignments = append([]domain.Alignment(nil), a.Alignments...)
	return &cp, true, nil
}

// SaveObjective is a test/seeding helper beyond the port interface.
func (r *VisionRepository) SaveObjective(o *domain.VisionObjective) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.objectives[o.ID] = &cp
}
