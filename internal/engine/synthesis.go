package engine

import (
	"fmt"
	"strings"

	"github.com/adperf/steward/internal/turn"
)

// Outcome classifies how a turn ended.
type Outcome string

const (
	// OutcomeFinished means the supervisor emitted FINISH.
	OutcomeFinished Outcome = "finished"
	// OutcomeRoundsExhausted means the round ceiling forced termination.
	OutcomeRoundsExhausted Outcome = "rounds_exhausted"
	// OutcomeRoutingFailed means a routing decision was rejected or the
	// decision engine failed.
	OutcomeRoutingFailed Outcome = "routing_failed"
	// OutcomeStopped means an operator stop signal ended the turn.
	OutcomeStopped Outcome = "stopped"
)

// Synthesize folds the collected agent responses into the final answer.
// The output is a pure function of its inputs: same state and outcome,
// same bytes. Non-finished outcomes get a notice ahead of the partial
// results so the caller cannot mistake them for a complete answer.
func Synthesize(state *turn.State, outcome Outcome, detail string, rounds int) string {
	var b strings.Builder

	switch outcome {
	case OutcomeRoundsExhausted:
		fmt.Fprintf(&b, "⚠ Stopped after %d rounds without a final answer; partial results below.\n\n", rounds)
	case OutcomeRoutingFailed:
		fmt.Fprintf(&b, "⚠ Routing failed (%s); partial results below.\n\n", detail)
	case OutcomeStopped:
		b.WriteString("⚠ Stopped by operator; partial results below.\n\n")
	}

	if len(state.Responses) == 0 {
		b.WriteString("No agent responses were collected.")
		return b.String()
	}

	for i, r := range state.Responses {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n\n", r.Agent)
		if r.Failed() {
			fmt.Fprintf(&b, "(failed: %s)\n", r.Err)
		} else {
			b.WriteString(strings.TrimRight(r.Response, "\n"))
			b.WriteString("\n")
		}
	}
	return b.String()
}
