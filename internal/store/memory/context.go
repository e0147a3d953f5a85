package memory

import (
	"context"
	"sync"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// ContextRepository is an in-memory implementation of store.ContextRepository.
type ContextRepository struct {
	mu       sync.RWMutex
	contexts map[string]*domain.Context
}

// NewContextRepository creates an empty repository.
func NewContextRepository() *ContextRepository {
	return &ContextRepository{contexts: make(map[string]*domain.Context)}
}

func (r *ContextRepository) GetByTask(_ context.Context, taskID string) (*domain.Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contexts[taskID]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "context not found for task: "+taskID)
	}
	return c.Clone(), nil
}

func (r *ContextRepository) Save(_ context.Context, c *domain.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[c.TaskID] = c.Clone()
	return nil
}
