// Package roster defines the specialist agents and their execution nodes.
// Every agent is a spoke: it receives one translated instruction from the
// supervisor, runs its tool loop, and reports back. Agents never see each
// other's instructions and never route.
package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/adperf/steward/internal/sanitize"
	"github.com/adperf/steward/internal/turn"
	"github.com/adperf/steward/pkg/models"
)

// Worker runs a single instruction to completion. The production
// implementation is api.AgentLoop; tests substitute stubs.
type Worker interface {
	Run(ctx context.Context, systemPrompt, instruction string, allowed []string) (string, error)
}

// Node is one executable agent in the graph. Construction fixes its role,
// prompt, and holstered tool set; Run only ever reads the live instruction.
type Node struct {
	role    models.Role
	prompt  string
	allowed []string
	worker  Worker
}

// NewNode builds the node for a role, holstering its tool set from the
// policy. Unknown roles are a programming error surfaced at wiring time.
func NewNode(role models.Role, policy sanitize.ToolPolicy, worker Worker) (*Node, error) {
	prompt, ok := rolePrompts[role]
	if !ok {
		return nil, fmt.Errorf("no prompt defined for role %q", role)
	}
	return &Node{
		role:    role,
		prompt:  prompt,
		allowed: sanitize.CapabilitiesFor(role, policy),
		worker:  worker,
	}, nil
}

func (n *Node) Role() models.Role { return n.role }

// AllowedTools returns the holstered tool names for this node.
func (n *Node) AllowedTools() []string {
	out := make([]string, len(n.allowed))
	copy(out, n.allowed)
	return out
}

// Run executes the node against the state's live instruction. Successful
// output lands in the conversation as an assistant message in addition to
// the execution record. Execution failures are absorbed into the recorded
// response rather than returned: one broken agent must not sink the turn.
// The returned error covers only state-protocol violations (no live
// instruction to consume).
func (n *Node) Run(ctx context.Context, state *turn.State) (models.AgentResponse, error) {
	if !state.HasLiveInstruction() {
		return models.AgentResponse{}, fmt.Errorf("agent %s dispatched without an instruction", n.role)
	}
	if state.Next != string(n.role) {
		return models.AgentResponse{}, fmt.Errorf("agent %s dispatched while state routes to %q", n.role, state.Next)
	}

	instruction := state.Instruction
	output, err := n.worker.Run(ctx, n.prompt, instruction, n.allowed)

	resp := models.AgentResponse{
		Agent:       n.role,
		Response:    output,
		CompletedAt: time.Now(),
	}
	if err != nil {
		resp.Err = err.Error()
		resp.Response = ""
	} else {
		state.AppendMessage(models.Message{
			Role:  models.MessageRoleAssistant,
			Agent: n.role,
			Text:  output,
		})
	}
	state.RecordResponse(resp)
	return resp, nil
}

// rolePrompts are the per-agent system prompts. Each one pins the agent to
// its specialty and forbids it from acting as a coordinator, the prompt-level
// backstop to instruction translation.
var rolePrompts = map[models.Role]string{
	models.RoleMonitor: `You are the delivery monitor for an ad-operations team.
You watch campaign metrics: impressions, clicks, spend. You report what the
numbers show right now and flag anything unusual. Use your tools to read real
data; never estimate figures you can look up.
You are a specialist, not a coordinator. Answer the instruction you were given
and nothing else. If asked to introduce yourself, state your name (monitor) and
what you watch, in two sentences.`,

	models.RoleDiagnostician: `You are the diagnostician for an ad-operations team.
When delivery looks wrong, you find out why: tracking gaps, feed problems,
misconfigured campaigns. You reason from the metrics you can query and say
clearly what you can and cannot conclude from them.
You are a specialist, not a coordinator. Answer the instruction you were given
and nothing else. If asked to introduce yourself, state your name (diagnostician)
and what you investigate, in two sentences.`,

	models.RoleOptimizer: `You are the optimizer for an ad-operations team.
You turn pacing and performance data into concrete budget and bid
recommendations. Every recommendation names the campaign, the change, and the
metric that justifies it.
You are a specialist, not a coordinator. Answer the instruction you were given
and nothing else. If asked to introduce yourself, state your name (optimizer)
and what you adjust, in two sentences.`,

	models.RoleForecaster: `You are the forecaster for an ad-operations team.
You project spend and delivery forward from recent history and compare the
projection against budgets. State the horizon and the assumption behind every
number you give.
You are a specialist, not a coordinator. Answer the instruction you were given
and nothing else. If asked to introduce yourself, state your name (forecaster)
and what you project, in two sentences.`,
}

// Build constructs the full roster in canonical order.
func Build(policy sanitize.ToolPolicy, workerFor func(models.Role) Worker) (map[models.Role]*Node, error) {
	nodes := make(map[models.Role]*Node, len(models.AllRoles()))
	for _, role := range models.AllRoles() {
		node, err := NewNode(role, policy, workerFor(role))
		if err != nil {
			return nil, err
		}
		nodes[role] = node
	}
	return nodes, nil
}
