// Package store defines the repository ports. These are implementation-free
// contracts: a PostgreSQL/Redis substrate would satisfy them over the
// network; internal/store/memory provides an in-process reference
// implementation used by every use-case in this repository and by its tests.
package store

import (
	"context"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// TaskRepository is the port for Task persistence.
type TaskRepository interface {
	Get(ctx context.Context, id string) (*domain.Task, error)
	Save(ctx context.Context, t *domain.Task) error
	// UpdateWithVersion performs an optimistic-lock compare-and-swap: it
	// succeeds only if the stored task's Version equals expectedVersion,
	// otherwise it returns an apperrors.ConcurrentModification error.
	UpdateWithVersion(ctx context.Context, t *domain.Task, expectedVersion int64) error
	FindByBranch(ctx context.Context, branchID string) ([]*domain.Task, error)
	FindChildren(ctx context.Context, parentID string) ([]*domain.Task, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*domain.Task, error)
}

// ContextRepository is the port for Context persistence.
type ContextRepository interface {
	GetByTask(ctx context.Context, taskID string) (*domain.Context, error)
	Save(ctx context.Context, c *domain.Context) error
}

// ProgressRepository is the port for ProgressTimeline and Milestone
// persistence. The Progress Aggregator owns the logic; this is still a
// repository concern like the others.
type ProgressRepository interface {
	GetTimeline(ctx context.Context, taskID string) (*domain.ProgressTimeline, error)
	SaveTimeline(ctx context.Context, t *domain.ProgressTimeline) error
	GetMilestones(ctx context.Context, taskID string) ([]*domain.Milestone, error)
	SaveMilestone(ctx context.Context, m *domain.Milestone) error
}

// VisionRepository is the port for VisionObjective and VisionAlignment
// persistence.
type VisionRepository interface {
	GetHierarchy(ctx context.Context) ([]*domain.VisionObjective, error)
	GetObjective(ctx context.Context, id string) (*domain.VisionObjective, error)
	SaveAlignment(ctx context.Context, a *domain.VisionAlignment) error
	GetAlignment(ctx context.Context, taskID string) (*domain.VisionAlignment, bool, error)
}

// AgentRepository is the port for Agent, Assignment, Handoff, and Conflict
// persistence.
type AgentRepository interface {
	Get(ctx context.Context, id string) (*domain.Agent, error)
	FindAvailable(ctx context.Context) ([]*domain.Agent, error)
	SaveAgent(ctx context.Context, a *domain.Agent) error
	GetAssignment(ctx context.Context, taskID string) (*domain.Assignment, bool, error)
	SaveAssignment(ctx context.Context, a *domain.Assignment) error
	DeleteAssignment(ctx context.Context, taskID string) error
	GetHandoff(ctx context.Context, id string) (*domain.Handoff, error)
	SaveHandoff(ctx context.Context, h *domain.Handoff) error
	SaveConflict(ctx context.Context, c *domain.Conflict) error
	GetConflict(ctx context.Context, id string) (*domain.Conflict, error)
}

// HintRepository is the optional persistence port for analytics.
type HintRepository interface {
	Save(ctx context.Context, h *domain.WorkflowHint) error
	Get(ctx context.Context, id string) (*domain.WorkflowHint, error)
	MarkFeedback(ctx context.Context, id string, wasHelpful bool, comment string) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.WorkflowHint, error)
}

// Repositories bundles all six ports for convenient injection into
// use-cases, which load their required aggregates through them.
type Repositories struct {
	Tasks    TaskRepository
	Contexts ContextRepository
	Progress ProgressRepository
	Vision   VisionRepository
	Agents   AgentRepository
	Hints    HintRepository
}
