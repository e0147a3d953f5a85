// Package coordinator implements the Agent Coordinator: agent suitability
// scoring, the handoff state machine, and conflict resolution for
// simultaneous primary-assignment mutations.
package coordinator

import (
	"sort"
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// SuitabilityScore is the work-distribution formula:
// 0.4·(1−current_load) + 0.4·expertise_match + 0.2·role_match.
func SuitabilityScore(agent *domain.Agent, role string, requiredExpertise []string) float64 {
	return 0.4*(1-agent.CurrentLoad) + 0.4*expertiseMatch(agent, requiredExpertise) + 0.2*roleMatch(agent, role)
}

// expertiseMatch is the fraction of requiredExpertise the agent covers.
// An empty requirement list matches fully — there is nothing to fail.
func expertiseMatch(agent *domain.Agent, required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	have := make(map[string]bool, len(agent.Expertise))
	for _, e := range agent.Expertise {
		have[e] = true
	}
	matched := 0
	for _, r := range required {
		if have[r] {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

func roleMatch(agent *domain.Agent, role string) float64 {
	if role == "" || agent.Role == role {
		return 1
	}
	return 0
}

// SelectAgent picks the agent maximising SuitabilityScore among available
// candidates, breaking ties by lower current_load then lexicographic agent
// id. It returns (nil, 0, false) if candidates is empty.
func SelectAgent(candidates []*domain.Agent, role string, requiredExpertise []string) (*domain.Agent, float64, bool) {
	if len(candidates) == 0 {
		return nil, 0, false
	}
	ranked := append([]*domain.Agent(nil), candidates...)
	scores := make(map[string]float64, len(ranked))
	for _, a := range ranked {
		scores[a.ID] = SuitabilityScore(a, role, requiredExpertise)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].ID], scores[ranked[j].ID]
		if si != sj {
			return si > sj
		}
		if ranked[i].CurrentLoad != ranked[j].CurrentLoad {
			return ranked[i].CurrentLoad < ranked[j].CurrentLoad
		}
		return ranked[i].ID < ranked[j].ID
	})
	best := ranked[0]
	return best, scores[best.ID], true
}

// RequestHandoff creates a new Handoff in the requested state.
func RequestHandoff(id, taskID, fromAgentID, toAgentID string, now time.Time) *domain.Handoff {
	return &domain.Handoff{
		ID:          id,
		TaskID:      taskID,
		FromAgentID: fromAgentID,
		ToAgentID:   toAgentID,
		State:       domain.HandoffRequested,
		RequestedAt: now,
		UpdatedAt:   now,
	}
}

// transition validates and applies a single FSM edge, returning
// INVALID_HANDOFF_STATE when the edge is not legal.
func transition(h *domain.Handoff, to domain.HandoffState, now time.Time) error {
	if !domain.CanTransition(h.State, to) {
		return apperrors.New(apperrors.InvalidHandoffState,
			"cannot transition handoff from "+string(h.State)+" to "+string(to)).
			WithHint("valid transitions: requested->accepted, requested->rejected, accepted->completed")
	}
	h.State = to
	h.UpdatedAt = now
	return nil
}

// AcceptHandoff applies R->A: the recipient confirms, and the caller is
// expected to transfer the Assignment atomically alongside this call.
func AcceptHandoff(h *domain.Handoff, now time.Time) error {
	return transition(h, domain.HandoffAccepted, now)
}

// RejectHandoff applies R->X, recording why. The original Assignment is left
// untouched by the caller.
func RejectHandoff(h *domain.Handoff, reason string, now time.Time) error {
	if err := transition(h, domain.HandoffRejected, now); err != nil {
		return err
	}
	h.RejectReason = reason
	return nil
}

// CompleteHandoff applies A->C: the originator confirms the handoff closed
// and workSummary is merged into the task's Context by the caller.
func CompleteHandoff(h *domain.Handoff, workSummary string, completedItems, remainingItems []string, now time.Time) error {
	if err := transition(h, domain.HandoffCompleted, now); err != nil {
		return err
	}
	h.WorkSummary = workSummary
	h.CompletedItems = completedItems
	h.RemainingItems = remainingItems
	return nil
}

// NewAssignment builds an Assignment record for a primary ownership change.
func NewAssignment(taskID, agentID, role, assignedBy string, responsibilities []string, now time.Time) domain.Assignment {
	return domain.Assignment{
		TaskID:           taskID,
		AgentID:          agentID,
		Role:             role,
		Responsibilities: responsibilities,
		AssignedAt:       now,
		AssignedBy:       assignedBy,
	}
}

// ResolveConflict applies strategy to conflict.Candidates and returns the
// winning Assignment. manual never resolves — it returns an
// AssignmentConflict error so the orchestrator surfaces the conflict in
// hints instead of silently picking a winner.
func ResolveConflict(conflict *domain.Conflict, strategy domain.ConflictStrategy, resolvedBy string, now time.Time) (*domain.Assignment, error) {
	if len(conflict.Candidates) == 0 {
		return nil, apperrors.New(apperrors.AssignmentConflict, "conflict has no candidate assignments to resolve")
	}

	var winner domain.Assignment
	switch strategy {
	case domain.StrategyFirstWriterWins:
		winner = earliestAssignment(conflict.Candidates)
	case domain.StrategyLastWriterWins:
		winner = latestAssignment(conflict.Candidates)
	case domain.StrategyMerge:
		winner = mergeAssignments(conflict.Candidates)
	case domain.StrategyManual:
		return nil, apperrors.New(apperrors.AssignmentConflict,
			"conflict requires manual resolution").
			WithHint("escalate via workflow_guidance; resolve_conflict with a non-manual strategy once a decision is made")
	default:
		return nil, apperrors.New(apperrors.InvalidParameters, "unknown conflict strategy: "+string(strategy)).
			WithFields("strategy")
	}

	conflict.Resolved = true
	conflict.Strategy = strategy
	conflict.ResolvedBy = resolvedBy
	conflict.ResolvedAt = &now
	return &winner, nil
}

func earliestAssignment(candidates []domain.Assignment) domain.Assignment {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.AssignedAt.Before(best.AssignedAt) {
			best = c
		}
	}
	return best
}

func latestAssignment(candidates []domain.Assignment) domain.Assignment {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.AssignedAt.After(best.AssignedAt) {
			best = c
		}
	}
	return best
}

// mergeAssignments keeps the last writer as the primary agent but unions
// every candidate's responsibilities onto it ("merge (union of
// responsibilities)").
func mergeAssignments(candidates []domain.Assignment) domain.Assignment {
	winner := latestAssignment(candidates)
	seen := make(map[string]bool)
	var merged []string
	for _, c := range candidates {
		for _, r := range c.Responsibilities {
			if !seen[r] {
				seen[r] = true
				merged = append(merged, r)
			}
		}
	}
	winner.Responsibilities = merged
	return winner
}
