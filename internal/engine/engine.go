package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adperf/steward/internal/roster"
	"github.com/adperf/steward/internal/supervisor"
	"github.com/adperf/steward/internal/turn"
	"github.com/adperf/steward/pkg/models"
)

// DefaultMaxRounds bounds supervisor visits per turn when no limit is
// configured.
const DefaultMaxRounds = 8

// Archiver persists completed turns. The production implementation lives
// in internal/archive.
type Archiver interface {
	SaveTurn(ctx context.Context, state *turn.State, outcome string, summary string) error
}

// Engine executes one turn of the supervisor graph. A turn alternates
// supervisor visits with agent dispatches until the supervisor emits
// FINISH, routing fails, an operator stops it, or the round ceiling hits.
type Engine struct {
	supervisor *supervisor.Supervisor
	nodes      map[models.Role]*roster.Node
	maxRounds  int
	emitter    *Emitter
	logger     *DebugLogger
	signals    *SignalWatcher
	archive    Archiver
}

// Config wires an Engine. Supervisor and Nodes are required; everything
// else has a working zero value.
type Config struct {
	Supervisor *supervisor.Supervisor
	Nodes      map[models.Role]*roster.Node
	MaxRounds  int
	Emitter    *Emitter
	Logger     *DebugLogger
	Signals    *SignalWatcher
	Archive    Archiver
}

func New(cfg Config) (*Engine, error) {
	if cfg.Supervisor == nil {
		return nil, errors.New("engine: supervisor is required")
	}
	if len(cfg.Nodes) == 0 {
		return nil, errors.New("engine: roster is required")
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Engine{
		supervisor: cfg.Supervisor,
		nodes:      cfg.Nodes,
		maxRounds:  maxRounds,
		emitter:    cfg.Emitter,
		logger:     cfg.Logger,
		signals:    cfg.Signals,
		archive:    cfg.Archive,
	}, nil
}

// Result is the outcome of one executed turn.
type Result struct {
	State   *turn.State
	Summary string
	Outcome Outcome
	Rounds  int
}

// Run executes a full turn for the given request. The returned Result is
// always usable, including on routing failure and round exhaustion; the
// error is reserved for protocol violations that indicate a bug.
func (e *Engine) Run(ctx context.Context, contextID, request string) (*Result, error) {
	state := turn.New(uuid.New().String(), contextID, request)
	e.logger.Log("turn %s started: context=%s request=%q", state.TurnID, contextID, request)
	e.emit(Event{Type: EventTurnStarted, TurnID: state.TurnID, Message: request})

	outcome, detail, rounds := e.runLoop(ctx, state)

	summary := Synthesize(state, outcome, detail, rounds)
	state.AppendMessage(models.Message{Role: models.MessageRoleAssistant, Text: summary})
	e.logger.Log("turn %s finished: outcome=%s rounds=%d", state.TurnID, outcome, rounds)
	e.emit(Event{Type: EventTurnFinished, TurnID: state.TurnID, Round: rounds, Message: summary})

	if e.archive != nil {
		if err := e.archive.SaveTurn(ctx, state, string(outcome), summary); err != nil {
			e.logger.Log("turn %s archive failed: %v", state.TurnID, err)
		}
	}

	return &Result{State: state, Summary: summary, Outcome: outcome, Rounds: rounds}, nil
}

// runLoop alternates supervisor and agent steps until a terminal
// condition. It returns the outcome, an optional detail string, and the
// number of supervisor rounds consumed.
func (e *Engine) runLoop(ctx context.Context, state *turn.State) (Outcome, string, int) {
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return OutcomeStopped, err.Error(), round - 1
		}
		if e.signals.ShouldStop() {
			e.logger.Log("turn %s: operator stop before round %d", state.TurnID, round)
			return OutcomeStopped, "operator stop signal", round - 1
		}
		if round > e.maxRounds {
			e.logger.Log("turn %s: round ceiling %d reached", state.TurnID, e.maxRounds)
			return OutcomeRoundsExhausted, "", e.maxRounds
		}

		decision, err := e.supervisor.Decide(ctx, state)
		if err != nil {
			var routeErr *supervisor.RoutingError
			if errors.As(err, &routeErr) {
				e.logger.Log("turn %s round %d: routing error: %v", state.TurnID, round, err)
				e.emit(Event{Type: EventRouteDecided, TurnID: state.TurnID, Round: round, Error: err})
				return OutcomeRoutingFailed, routeErr.Reason, round
			}
			return OutcomeRoutingFailed, err.Error(), round
		}

		e.logger.Log("turn %s round %d: route=%s reasoning=%q", state.TurnID, round, decision.Next, decision.Reasoning)
		e.emit(Event{
			Type:    EventRouteDecided,
			TurnID:  state.TurnID,
			Agent:   decision.Next,
			Round:   round,
			Message: decision.Reasoning,
		})

		if decision.Terminal() {
			return OutcomeFinished, "", round
		}

		node, ok := e.nodes[models.Role(decision.Next)]
		if !ok {
			// Validated upstream; reaching here means the roster map is
			// incomplete.
			return OutcomeRoutingFailed, fmt.Sprintf("no node for %q", decision.Next), round
		}

		e.emit(Event{Type: EventAgentStarted, TurnID: state.TurnID, Agent: decision.Next, Round: round, Message: decision.Instruction})
		resp, err := node.Run(ctx, state)
		if err != nil {
			e.logger.Log("turn %s round %d: dispatch protocol violation: %v", state.TurnID, round, err)
			return OutcomeRoutingFailed, err.Error(), round
		}

		completed := Event{Type: EventAgentCompleted, TurnID: state.TurnID, Agent: string(resp.Agent), Round: round}
		if resp.Failed() {
			completed.Error = errors.New(resp.Err)
			e.logger.Log("turn %s round %d: agent %s failed: %s", state.TurnID, round, resp.Agent, resp.Err)
		} else {
			completed.Message = resp.Response
		}
		e.emit(completed)
	}
}

func (e *Engine) emit(event Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}
