package domain

import "time"

// AgentStatus is an Agent's availability state.
type AgentStatus string

const (
	AgentAvailable AgentStatus = "available"
	AgentBusy      AgentStatus = "busy"
	AgentOffline   AgentStatus = "offline"
)

// Agent is a worker that can be assigned Tasks.
type Agent struct {
	ID           string      `json:"id"`
	Role         string      `json:"role,omitempty"`
	Expertise    []string    `json:"expertise,omitempty"`
	CurrentLoad  float64     `json:"current_load"` // [0,1]
	Status       AgentStatus `json:"status"`
	Capabilities []string    `json:"capabilities,omitempty"`
}

// Assignment records primary ownership of a Task by an Agent.
type Assignment struct {
	TaskID           string    `json:"task_id"`
	AgentID          string    `json:"agent_id"`
	Role             string    `json:"role,omitempty"`
	Responsibilities []string  `json:"responsibilities,omitempty"`
	AssignedAt       time.Time `json:"assigned_at"`
	AssignedBy       string    `json:"assigned_by,omitempty"`
}

// HandoffState is a position in the handoff state machine.
type HandoffState string

const (
	HandoffRequested HandoffState = "requested"
	HandoffAccepted  HandoffState = "accepted"
	HandoffCompleted HandoffState = "completed"
	HandoffRejected  HandoffState = "rejected"
)

// handoffTransitions enumerates the only legal edges of the handoff FSM.
var handoffTransitions = map[HandoffState][]HandoffState{
	HandoffRequested: {HandoffAccepted, HandoffRejected},
	HandoffAccepted:  {HandoffCompleted},
	HandoffCompleted: {},
	HandoffRejected:  {},
}

// CanTransition reports whether from->to is a legal handoff edge.
func CanTransition(from, to HandoffState) bool {
	for _, allowed := range handoffTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Handoff is a state-machine-governed transfer of primary ownership.
type Handoff struct {
	ID             string       `json:"id"`
	TaskID         string       `json:"task_id"`
	FromAgentID    string       `json:"from_agent_id"`
	ToAgentID      string       `json:"to_agent_id"`
	State          HandoffState `json:"state"`
	WorkSummary    string       `json:"work_summary,omitempty"`
	CompletedItems []string     `json:"completed_items,omitempty"`
	RemainingItems []string     `json:"remaining_items,omitempty"`
	RejectReason   string       `json:"reject_reason,omitempty"`
	RequestedAt    time.Time    `json:"requested_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ConflictStrategy is how a simultaneous-assignment conflict is resolved.
type ConflictStrategy string

const (
	StrategyFirstWriterWins ConflictStrategy = "first_writer_wins"
	StrategyLastWriterWins  ConflictStrategy = "last_writer_wins"
	StrategyMerge           ConflictStrategy = "merge"
	StrategyManual          ConflictStrategy = "manual"
)

// Conflict records a simultaneous primary-assignment mutation on one Task.
type Conflict struct {
	ID         string           `json:"id"`
	TaskID     string           `json:"task_id"`
	Candidates []Assignment     `json:"candidates,omitempty"` // competing assignments, in arrival order
	Resolved   bool             `json:"resolved"`
	Strategy   ConflictStrategy `json:"strategy,omitempty"`
	ResolvedBy string           `json:"resolved_by,omitempty"`
	Details    string           `json:"details,omitempty"`
	DetectedAt time.Time        `json:"detected_at"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
}
