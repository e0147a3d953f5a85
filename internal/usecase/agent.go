package usecase

import (
	"context"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/coordinator"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
	"github.com/emergent-company/taskvision-mcp/internal/events"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
)

// AssignAgentToTaskParams is assign_agent_to_task(...).
type AssignAgentToTaskParams struct {
	TaskID           string
	AgentID          string
	Role             string
	Responsibilities []string
	AssignedBy       string
}

// AssignAgentToTask creates or replaces the primary Assignment on a Task,
// emitting AgentUnassigned then AgentAssigned on reassignment.
func (o *Orchestrator) AssignAgentToTask(ctx context.Context, p AssignAgentToTaskParams) Response {
	if _, err := o.Repos.Agents.Get(ctx, p.AgentID); err != nil {
		return failure(err, hints.Guidance{})
	}
	if _, err := o.Repos.Tasks.Get(ctx, p.TaskID); err != nil {
		return failure(err, hints.Guidance{})
	}

	now := o.Now()
	bus := events.New(o.Config.CascadeDepthLimit)

	previous, hadPrevious, err := o.Repos.Agents.GetAssignment(ctx, p.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	if hadPrevious {
		bus.Emit(events.Event{Kind: events.AgentUnassigned, Payload: previous})
	}

	assignment := coordinator.NewAssignment(p.TaskID, p.AgentID, p.Role, p.AssignedBy, p.Responsibilities, now)
	if err := o.Repos.Agents.SaveAssignment(ctx, &assignment); err != nil {
		return failure(err, hints.Guidance{})
	}
	bus.Emit(events.Event{Kind: events.AgentAssigned, Payload: assignment})

	updated, err := o.mutateTask(ctx, p.TaskID, func(t *domain.Task) error {
		t.Assignee = p.AgentID
		return nil
	})
	if err != nil {
		return failure(err, hints.Guidance{})
	}

	if err := bus.Dispatch(ctx); err != nil {
		return failure(err, hints.Guidance{})
	}
	guidance := o.buildGuidance(ctx, updated, o.loadContextOrNil(ctx, updated.ID), completionAttempt{})
	return success(assignment, guidance)
}

// RequestWorkHandoffParams is request_work_handoff(...).
type RequestWorkHandoffParams struct {
	FromAgentID string
	ToAgentID   string
	TaskID      string
	WorkSummary string
}

// RequestWorkHandoff creates a Handoff in the requested state.
func (o *Orchestrator) RequestWorkHandoff(ctx context.Context, p RequestWorkHandoffParams) Response {
	if _, err := o.Repos.Tasks.Get(ctx, p.TaskID); err != nil {
		return failure(err, hints.Guidance{})
	}
	now := o.Now()
	h := coordinator.RequestHandoff(domain.NewID("handoff"), p.TaskID, p.FromAgentID, p.ToAgentID, now)
	h.WorkSummary = p.WorkSummary
	if err := o.Repos.Agents.SaveHandoff(ctx, h); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(h, hints.Guidance{})
}

// AcceptHandoff applies R->A and transfers the Assignment atomically.
func (o *Orchestrator) AcceptHandoff(ctx context.Context, handoffID string) Response {
	h, err := o.Repos.Agents.GetHandoff(ctx, handoffID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	now := o.Now()
	if err := coordinator.AcceptHandoff(h, now); err != nil {
		return failure(err, hints.Guidance{})
	}

	bus := events.New(o.Config.CascadeDepthLimit)
	previous, hadPrevious, err := o.Repos.Agents.GetAssignment(ctx, h.TaskID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	if hadPrevious {
		bus.Emit(events.Event{Kind: events.AgentUnassigned, Payload: previous})
	}
	var responsibilities []string
	if previous != nil {
		responsibilities = previous.Responsibilities
	}
	assignment := coordinator.NewAssignment(h.TaskID, h.ToAgentID, "", h.FromAgentID, responsibilities, now)
	if err := o.Repos.Agents.SaveAssignment(ctx, &assignment); err != nil {
		return failure(err, hints.Guidance{})
	}
	bus.Emit(events.Event{Kind: events.AgentAssigned, Payload: assignment})
	bus.Emit(events.Event{Kind: events.HandoffAccepted, Payload: h})

	if _, err := o.mutateTask(ctx, h.TaskID, func(t *domain.Task) error {
		t.Assignee = h.ToAgentID
		return nil
	}); err != nil {
		return failure(err, hints.Guidance{})
	}
	if err := o.Repos.Agents.SaveHandoff(ctx, h); err != nil {
		return failure(err, hints.Guidance{})
	}
	if err := bus.Dispatch(ctx); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(h, hints.Guidance{})
}

// RejectHandoffParams is reject_handoff(...).
type RejectHandoffParams struct {
	HandoffID string
	Reason    string
}

// RejectHandoff applies R->X; the original Assignment is left untouched.
func (o *Orchestrator) RejectHandoff(ctx context.Context, p RejectHandoffParams) Response {
	h, err := o.Repos.Agents.GetHandoff(ctx, p.HandoffID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	now := o.Now()
	if err := coordinator.RejectHandoff(h, p.Reason, now); err != nil {
		return failure(err, hints.Guidance{})
	}
	if err := o.Repos.Agents.SaveHandoff(ctx, h); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(h, hints.Guidance{})
}

// CompleteHandoffParams is complete_handoff(...).
type CompleteHandoffParams struct {
	HandoffID      string
	WorkSummary    string
	CompletedItems []string
	RemainingItems []string
}

// CompleteHandoff applies A->C and merges work_summary into the Task's
// Context.
func (o *Orchestrator) CompleteHandoff(ctx context.Context, p CompleteHandoffParams) Response {
	h, err := o.Repos.Agents.GetHandoff(ctx, p.HandoffID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	now := o.Now()
	if err := coordinator.CompleteHandoff(h, p.WorkSummary, p.CompletedItems, p.RemainingItems, now); err != nil {
		return failure(err, hints.Guidance{})
	}
	if err := o.Repos.Agents.SaveHandoff(ctx, h); err != nil {
		return failure(err, hints.Guidance{})
	}

	taskCtx := o.loadContextOrNil(ctx, h.TaskID)
	if taskCtx == nil {
		taskCtx = domain.NewContext(h.TaskID, now)
	}
	taskCtx.AppendNote(domain.ProgressNote{Timestamp: now, AgentID: h.FromAgentID, Text: "handoff complete: " + p.WorkSummary})
	if err := o.Repos.Contexts.Save(ctx, taskCtx); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(h, hints.Guidance{})
}

// GetAgentWorkload reports an Agent's current assignment load.
func (o *Orchestrator) GetAgentWorkload(ctx context.Context, agentID string) Response {
	agent, err := o.Repos.Agents.Get(ctx, agentID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(agent, hints.Guidance{})
}

// ResolveConflictParams is resolve_conflict(...).
type ResolveConflictParams struct {
	ConflictID string
	Strategy   domain.ConflictStrategy
	ResolvedBy string
	Details    string
}

// ResolveConflict applies a resolution strategy to a recorded Conflict.
func (o *Orchestrator) ResolveConflict(ctx context.Context, p ResolveConflictParams) Response {
	conflict, err := o.Repos.Agents.GetConflict(ctx, p.ConflictID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	now := o.Now()
	winner, err := coordinator.ResolveConflict(conflict, p.Strategy, p.ResolvedBy, now)
	if err != nil {
		appErr, _ := apperrors.As(err)
		if appErr != nil && appErr.Details == nil {
			appErr.Details = map[string]any{"conflict_id": p.ConflictID}
		}
		return failure(err, hints.Guidance{})
	}
	conflict.Details = p.Details
	if err := o.Repos.Agents.SaveConflict(ctx, conflict); err != nil {
		return failure(err, hints.Guidance{})
	}
	if err := o.Repos.Agents.SaveAssignment(ctx, winner); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(map[string]any{"conflict": conflict, "assignment": winner}, hints.Guidance{})
}

// BroadcastStatusParams is broadcast_status(...).
type BroadcastStatusParams struct {
	AgentID string
	Status  domain.AgentStatus
	Message string
}

// BroadcastStatus updates an Agent's availability status.
func (o *Orchestrator) BroadcastStatus(ctx context.Context, p BroadcastStatusParams) Response {
	agent, err := o.Repos.Agents.Get(ctx, p.AgentID)
	if err != nil {
		return failure(err, hints.Guidance{})
	}
	agent.Status = p.Status
	if err := o.Repos.Agents.SaveAgent(ctx, agent); err != nil {
		return failure(err, hints.Guidance{})
	}
	return success(agent, hints.Guidance{})
}
