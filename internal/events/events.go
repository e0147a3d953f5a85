// Package events implements the per-request synchronous event bus. Events
// are a tagged union (a Kind string plus a typed Payload); handlers are
// plain functions keyed by Kind. The bus itself is constructed fresh for
// every use-case invocation: a short-lived per-request object, never a
// long-lived pub/sub.
package events

import (
	"context"
	"fmt"
)

// Kind tags the variant of an Event.
type Kind string

const (
	SubtaskProgressAggregated Kind = "SubtaskProgressAggregated"
	ProgressMilestoneReached  Kind = "ProgressMilestoneReached"
	AgentAssigned             Kind = "AgentAssigned"
	AgentUnassigned           Kind = "AgentUnassigned"
	HandoffRequested          Kind = "HandoffRequested"
	HandoffAccepted           Kind = "HandoffAccepted"
	HandoffRejected           Kind = "HandoffRejected"
	HandoffCompleted          Kind = "HandoffCompleted"
	ConflictDetected          Kind = "ConflictDetected"
)

// Event is one emitted domain event. Payload is a Kind-specific struct
// defined alongside the component that emits it (e.g. aggregator.MilestonePayload).
type Event struct {
	Kind    Kind
	Payload any
}

// Handler reacts to an Event. It may emit further events via Bus.Emit,
// which are appended to the same queue and processed before the use-case
// returns; handlers always run before the reply is returned.
type Handler func(ctx context.Context, bus *Bus, evt Event) error

// ErrCycleLimit is returned when a use-case's event cascade exceeds the
// configured depth limit (depth-limited to avoid cycles; default 4).
type ErrCycleLimit struct{ Limit int }

func (e *ErrCycleLimit) Error() string {
	return fmt.Sprintf("event cascade exceeded depth limit of %d", e.Limit)
}

// Bus is a short-lived, per-request synchronous event dispatcher.
type Bus struct {
	handlers   map[Kind][]Handler
	depth      int // cascade depth of the event whose handlers are running; 0 outside them
	deepest    int
	maxDepth   int
	queue      []Event
	queueDepth []int   // cascade depth of each queued event, parallel to queue
	emitted    []Event // full history, for tests/observability
}

// New creates a Bus with the given cycle-depth limit (default 4).
func New(maxDepth int) *Bus {
	if maxDepth <= 0 {
		maxDepth = 4
	}
	return &Bus{handlers: make(map[Kind][]Handler), maxDepth: maxDepth}
}

// On registers a handler for the given event kind. Handlers for the same
// kind run in registration order.
func (b *Bus) On(kind Kind, h Handler) {
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Emit enqueues an event. If called from within Dispatch's processing loop
// (i.e. from a handler), the event is appended to the same queue and the
// loop picks it up next, so events emitted inside one use-case are
// observed in emission order by all handlers.
func (b *Bus) Emit(evt Event) {
	b.queue = append(b.queue, evt)
	b.queueDepth = append(b.queueDepth, b.depth+1)
}

// Dispatch drains the queue, invoking every registered handler for each
// event in emission order. A handler error stops the drain and is returned,
// aborting the enclosing use-case. Dispatch does not undo writes: anything
// the caller persisted before calling it stays persisted when it fails.
func (b *Bus) Dispatch(ctx context.Context) error {
	for len(b.queue) > 0 {
		evt, depth := b.queue[0], b.queueDepth[0]
		b.queue, b.queueDepth = b.queue[1:], b.queueDepth[1:]
		b.emitted = append(b.emitted, evt)

		if depth > b.maxDepth {
			return &ErrCycleLimit{Limit: b.maxDepth}
		}
		if depth > b.deepest {
			b.deepest = depth
		}

		b.depth = depth
		for _, h := range b.handlers[evt.Kind] {
			if err := h(ctx, b, evt); err != nil {
				return fmt.Errorf("handling %s: %w", evt.Kind, err)
			}
		}
		b.depth = 0
	}
	return nil
}

// Depth returns the deepest cascade level dispatched so far: 1 when only
// events emitted by the use-case itself ran, 0 when nothing was dispatched.
func (b *Bus) Depth() int {
	return b.deepest
}

// Emitted returns every event processed so far, in emission order.
func (b *Bus) Emitted() []Event {
	return append([]Event(nil), b.emitted...)
}
