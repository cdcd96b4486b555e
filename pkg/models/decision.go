package models

// RouteDecision is the supervisor's output for one routing cycle: which
// node runs next and the literal instruction it must execute.
//
// Instruction carries the translated, single-agent imperative form of the
// user's request. Coordination-flavored phrasing ("have your agents ...")
// must already be rewritten by the time it lands here; agent nodes execute
// the instruction verbatim and never see the raw request.
type RouteDecision struct {
	// Next is a roster role or NodeFinish.
	Next string `json:"next"`
	// Instruction is the direct command for the chosen agent.
	// Empty when Next is NodeFinish.
	Instruction string `json:"instruction"`
	// Reasoning is the supervisor's stated rationale, kept for logs and
	// the event stream. Never fed back into an agent node.
	Reasoning string `json:"reasoning,omitempty"`
}

// Terminal returns true if the decision ends the turn.
func (d RouteDecision) Terminal() bool {
	return d.Next == NodeFinish
}
