// Package apperrors defines the closed error taxonomy. Every failure the
// orchestrator can produce is one of these codes; the Tool Dispatcher never
// lets a raw Go error or panic reach the caller (see internal/dispatcher).
package apperrors

import "fmt"

// Code is one member of the closed error taxonomy.
type Code string

const (
	UnknownTool            Code = "UNKNOWN_TOOL"
	InvalidParameters      Code = "INVALID_PARAMETERS"
	NotFound               Code = "NOT_FOUND"
	ConcurrentModification Code = "CONCURRENT_MODIFICATION"
	Timeout                Code = "TIMEOUT"

	MissingCompletionSummary Code = "MISSING_COMPLETION_SUMMARY"
	IncompleteSubtasks       Code = "INCOMPLETE_SUBTASKS"
	InvalidStateTransition   Code = "INVALID_STATE_TRANSITION"
	StaleContext             Code = "STALE_CONTEXT" // advisory only, never raised as an error

	InvalidHandoffState Code = "INVALID_HANDOFF_STATE"
	AssignmentConflict  Code = "ASSIGNMENT_CONFLICT"
	AgentUnavailable    Code = "AGENT_UNAVAILABLE"

	VisionNodeMissing   Code = "VISION_NODE_MISSING"
	AlignmentUnavailable Code = "ALIGNMENT_UNAVAILABLE"

	StorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Error is a typed, recoverable application error. It never escapes the
// dispatcher as a bare Go error — the dispatcher always turns it into the
// {code, message, resolution_hint} envelope field of a Response.
type Error struct {
	Code           Code
	Message        string
	ResolutionHint string
	Fields         []string // offending parameter names, for INVALID_PARAMETERS
	Details        map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithHint attaches a resolution hint and returns the receiver for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.ResolutionHint = hint
	return e
}

// WithFields attaches offending parameter names and returns the receiver.
func (e *Error) WithFields(fields ...string) *Error {
	e.Fields = fields
	return e
}

// WithDetails attaches structured detail and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As extracts an *Error from err, returning nil, false if err is not one.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// Recoverable reports whether the caller should expect workflow_guidance to
// contain at least one next_actions item. Every failed reply always includes
// at least one next_actions item when the error is recoverable. Every code
// in this taxonomy is recoverable except STORAGE_UNAVAILABLE and
// TIMEOUT, which carry only a retry suggestion rather than a corrective call.
func (e *Error) Recoverable() bool {
	switch e.Code {
	case StorageUnavailable, Timeout:
		return false
	default:
		return true
	}
}
