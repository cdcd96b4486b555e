// Package engine drives one turn of the supervisor graph: supervisor
// visit, agent dispatch, back to the supervisor, until FINISH or the
// round ceiling.
package engine

import (
	"log"
	"sync/atomic"
	"time"
)

// EventType represents the kind of engine event.
type EventType string

const (
	// EventTurnStarted indicates a turn has begun.
	EventTurnStarted EventType = "turn_started"
	// EventRouteDecided indicates the supervisor picked the next step.
	EventRouteDecided EventType = "route_decided"
	// EventAgentStarted indicates an agent began executing its instruction.
	EventAgentStarted EventType = "agent_started"
	// EventAgentCompleted indicates an agent finished, successfully or not.
	EventAgentCompleted EventType = "agent_completed"
	// EventToolInvoked indicates an agent called a tool.
	EventToolInvoked EventType = "tool_invoked"
	// EventToolCompleted indicates a tool call returned.
	EventToolCompleted EventType = "tool_completed"
	// EventTurnFinished indicates the turn ended and a summary is available.
	EventTurnFinished EventType = "turn_finished"
)

// Event is emitted by the engine as a turn progresses. The watch TUI and
// the CLI printer both consume these.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TurnID identifies the turn this event belongs to.
	TurnID string
	// Agent is the agent involved, if applicable.
	Agent string
	// Tool is the tool name for tool events.
	Tool string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Round is the supervisor round the event occurred in.
	Round int
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emitter provides thread-safe event emission to subscribers.
type Emitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEmitter creates an Emitter with the given buffer size.
func NewEmitter(bufferSize int) *Emitter {
	return &Emitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends an event to the channel. If the channel is full it retries
// briefly, then drops the event rather than stall the turn.
func (e *Emitter) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // log every 10th drop to avoid spam
			log.Printf("[engine] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events dropped so far.
func (e *Emitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events for subscribers.
func (e *Emitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Call once the turn is finished.
func (e *Emitter) Close() {
	close(e.events)
}
