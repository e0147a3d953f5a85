package memory

import (
	"context"
	"sync"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// HintRepository is an in-memory implementation of store.HintRepository,
// used for the optional analytics persistence of provide_hint_feedback.
type HintRepository struct {
	mu    sync.RWMutex
	hints map[string]*domain.WorkflowHint
}

// NewHintRepository creates an empty repository.
func NewHintRepository() *HintRepository {
	return &HintRepository{hints: make(map[string]*domain.WorkflowHint)}
}

func (r *HintRepository) Save(_ context.Context, h *domain.WorkflowHint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	r.hints[h.ID] = &cp
	return nil
}

func (r *HintRepository) Get(_ context.Context, id string) (*domain.WorkflowHint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hints[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "hint not found: "+id)
	}
	cp := *h
	return &cp, nil
}

func (r *HintRepository) MarkFeedback(_ context.Context, id string, wasHelpful bool, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hints[id]
	if !ok {
		return apperrors.New(apperrors.NotFound, "hint not found: "+id)
	}
	h.WasHelpful = &wasHelpful
	h.FeedbackComment = comment
	return nil
}

func (r *HintRepository) ListByTask(_ context.Context, taskID string) ([]*domain.WorkflowHint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.WorkflowHint
	for _, h := range r.hints {
		if h.TaskID == taskID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}
