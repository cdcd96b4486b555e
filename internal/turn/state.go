// Package turn holds the mutable state threaded through one orchestration
// turn. A State instance is owned by the engine for the turn's duration and
// is never shared across turns.
package turn

import (
	"fmt"
	"time"

	"github.com/adperf/steward/pkg/models"
)

// State is the single mutable record for one user turn.
//
// Invariants:
//   - Conversation and Responses are append-only and never reordered.
//   - Instruction is non-empty only between a supervisor decision and the
//     completion of the agent node it addressed. At most one instruction is
//     live at any time; agent nodes read it instead of OriginalRequest.
//   - Next is always a roster role, the supervisor hub, or the FINISH
//     sentinel.
type State struct {
	// TurnID uniquely identifies this turn.
	TurnID string
	// ContextID is an opaque handle to the session/knowledge context.
	// Passed through to collaborators, never interpreted here.
	ContextID string
	// OriginalRequest is the user's raw input. Retained for the supervisor
	// and synthesis only; agent nodes must not read it.
	OriginalRequest string
	// Conversation is the ordered message log for the turn.
	Conversation []models.Message
	// Next names the node to execute next.
	Next string
	// Instruction is the live translated instruction for the node about
	// to run, or empty.
	Instruction string
	// Responses records one entry per completed agent-node execution.
	Responses []models.AgentResponse
}

// New creates the state for a fresh turn. Control starts at the supervisor
// with no live instruction.
func New(turnID, contextID, request string) *State {
	return &State{
		TurnID:          turnID,
		ContextID:       contextID,
		OriginalRequest: request,
		Next:            models.NodeSupervisor,
		Conversation: []models.Message{
			{Role: models.MessageRoleUser, Text: request},
		},
	}
}

// Validate checks structural validity. It is called after every mutation;
// a failure here indicates an orchestration bug, not bad user input.
func (s *State) Validate() error {
	if s.Next != models.NodeSupervisor && !models.ValidNext(s.Next) {
		return fmt.Errorf("state has unknown next node %q", s.Next)
	}
	return nil
}

// SetRoute records a supervisor decision: the next node and its instruction.
// Only the supervisor calls this.
func (s *State) SetRoute(next, instruction string) error {
	s.Next = next
	s.Instruction = instruction
	return s.Validate()
}

// AppendMessage appends one entry to the conversation log.
func (s *State) AppendMessage(msg models.Message) {
	s.Conversation = append(s.Conversation, msg)
}

// RecordResponse appends an execution record and clears the live
// instruction. Only agent nodes call this; the clear is what lets the
// supervisor's precondition hold on re-entry.
func (s *State) RecordResponse(resp models.AgentResponse) {
	if resp.CompletedAt.IsZero() {
		resp.CompletedAt = time.Now()
	}
	s.Responses = append(s.Responses, resp)
	s.Instruction = ""
}

// HasLiveInstruction returns true if an instruction is pending execution.
func (s *State) HasLiveInstruction() bool {
	return s.Instruction != ""
}
