package memory

import (
	"context"
	"sync"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// AgentRepository is an in-memory implementation of store.AgentRepository.
type AgentRepository struct {
	mu          sync.RWMutex
	agents      map[string]*domain.Agent
	assignments map[string]*domain.Assignment // keyed by task id
	handoffs    map[string]*domain.Handoff
	conflicts   map[string]*domain.Conflict
}

// NewAgentRepository creates an empty repository.
func NewAgentRepository() *AgentRepository {
	return &AgentRepository{
		agents:      make(map[string]*domain.Agent),
		assignments: make(map[string]*domain.Assignment),
		handoffs:    make(map[string]*domain.Handoff),
		conflicts:   make(map[string]*domain.Conflict),
	}
}

func (r *AgentRepository) Get(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "agent not found: "+id)
	}
	cp := *a
	return &cp, nil
}

func (r *AgentRepository) FindAvailable(_ context.Context) ([]*domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Agent
	for _, a := range r.agents {
		if a.Status == domain.AgentAvailable {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AgentRepository) SaveAgent(_ context.Context, a *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.agents[a.ID] = &cp
	return nil
}

func (r *AgentRepository) GetAssignment(_ context.Context, taskID string) (*domain.Assignment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[taskID]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

func (r *AgentRepository) SaveAssignment(_ context.Context, a *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.assignments[a.TaskID] = &cp
	return nil
}

func (r *AgentRepository) DeleteAssignment(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, taskID)
	return nil
}

func (r *AgentRepository) GetHandoff(_ context.Context, id string) (*domain.Handoff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handoffs[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "handoff not found: "+id)
	}
	cp := *h
	return &cp, nil
}

func (r *AgentRepository) SaveHandoff(_ context.Context, h *domain.Handoff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	r.handoffs[h.ID] = &cp
	return nil
}

func (r *AgentRepository) SaveConflict(_ context.Context, c *domain.Conflict) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Candidates = append([]domain.Assignment(nil), c.Candidates...)
	r.conflicts[c.ID] = &cp
	return nil
}

func (r *AgentRepository) GetConflict(_ context.Context, id string) (*domain.Conflict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conflicts[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "conflict not found: "+id)
	}
	cp := *c
	cp.Candidates = append([]domain.Assignment(nil), c.Candidates...)
	return &cp, nil
}
