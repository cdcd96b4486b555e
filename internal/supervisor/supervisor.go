// Package supervisor implements the routing hub of a turn. The supervisor
// is the only component that talks to every agent; agents never talk to
// each other. Each visit consumes the conversation so far and produces a
// single routing decision: one agent plus a translated instruction, or
// FINISH.
package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/adperf/steward/internal/turn"
	"github.com/adperf/steward/pkg/models"
)

// Decider produces a routing decision from the turn so far. The production
// implementation lives in internal/api; tests substitute scripted deciders.
type Decider interface {
	Decide(ctx context.Context, request string, conversation []models.Message, responses []models.AgentResponse) (models.RouteDecision, error)
}

// RoutingError marks a decision the engine must treat as fatal for the
// turn: no agent runs after one of these.
type RoutingError struct {
	Reason string
	Err    error
}

func (e *RoutingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("routing: %s", e.Reason)
}

func (e *RoutingError) Unwrap() error { return e.Err }

// Supervisor wraps a Decider with the structural rules a raw decision
// must pass before it reaches the graph.
type Supervisor struct {
	decider Decider
}

func New(decider Decider) *Supervisor {
	return &Supervisor{decider: decider}
}

// Decide runs one supervisor visit against the state. On success the
// state's Next and Instruction are set; on failure the state is left
// untouched and a *RoutingError is returned.
//
// A live instruction on entry means the previous agent node failed to
// clear it, which would let a stale command leak into the next dispatch.
func (s *Supervisor) Decide(ctx context.Context, state *turn.State) (models.RouteDecision, error) {
	if state.HasLiveInstruction() {
		return models.RouteDecision{}, &RoutingError{
			Reason: fmt.Sprintf("stale instruction %q still live on supervisor entry", state.Instruction),
		}
	}

	decision, err := s.decider.Decide(ctx, state.OriginalRequest, state.Conversation, state.Responses)
	if err != nil {
		return models.RouteDecision{}, &RoutingError{Reason: "decision engine failed", Err: err}
	}

	if err := validate(decision); err != nil {
		return models.RouteDecision{}, &RoutingError{Reason: err.Error()}
	}

	if decision.Terminal() {
		decision.Instruction = ""
	}
	if err := state.SetRoute(decision.Next, decision.Instruction); err != nil {
		return models.RouteDecision{}, &RoutingError{Reason: "applying decision", Err: err}
	}
	return decision, nil
}

// validate enforces the structural rules on a raw decision. Anything the
// model emits outside these bounds is rejected rather than coerced.
func validate(d models.RouteDecision) error {
	if !models.ValidNext(d.Next) {
		return fmt.Errorf("unknown destination %q", d.Next)
	}
	if d.Terminal() {
		return nil
	}
	if strings.TrimSpace(d.Instruction) == "" {
		return fmt.Errorf("empty instruction for agent %q", d.Next)
	}
	if looksRecursive(d.Instruction) {
		return fmt.Errorf("instruction for %q still contains coordination language: %q", d.Next, d.Instruction)
	}
	return nil
}

// looksRecursive flags instructions that read as commands to orchestrate
// other agents instead of commands to a single agent. It is a guard rail
// behind the prompt-level translation, not a substitute for it.
func looksRecursive(instruction string) bool {
	lower := strings.ToLower(instruction)
	for _, phrase := range []string{
		"your agents",
		"each agent",
		"all agents",
		"the agents",
		"have the team",
		"tell the team",
		"delegate to",
	} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
