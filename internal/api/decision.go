package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/adperf/steward/pkg/models"
)

// routingSystemPrompt instructs the model to act as the routing hub. The
// translation rules are the core of the recursive-intent defense: the
// instruction field must read as a command to one agent, with all
// coordination language stripped.
const routingSystemPrompt = `You are the routing supervisor for a campaign-operations assistant.

Your roster (the ONLY valid values for "next", besides FINISH):
- monitor: watches delivery metrics, flags anomalies
- diagnostician: investigates technical issues (tracking, feeds, integrations)
- optimizer: recommends bid and budget adjustments
- forecaster: projects pacing and spend

Each cycle you pick exactly ONE next step. Respond with a single JSON object:
{"next": "<agent or FINISH>", "instruction": "<direct command>", "reasoning": "<one sentence>"}

Rules for "instruction":
- Write it as a direct, imperative command addressed to that one agent.
- TRANSLATE coordination phrasing. If the user says "have your agents introduce
  themselves", the instruction is "Introduce yourself and describe your role" —
  never "have your agents introduce themselves". An agent receiving coordination
  language will wrongly try to orchestrate other agents itself.
- Never mention other agents, the roster, or routing in the instruction.
- For multi-agent requests, route to one agent now; you will be called again
  after it finishes and can route to the next one.

Emit {"next": "FINISH", "instruction": "", "reasoning": "..."} when the collected
responses answer the user's request. Output only the JSON object.`

// RouteDecider produces routing decisions by querying the model. It holds
// no state; the full conversation is supplied on every call.
type RouteDecider struct {
	client *Client
}

// NewRouteDecider creates a Decider backed by the given client.
func NewRouteDecider(client *Client) *RouteDecider {
	return &RouteDecider{client: client}
}

// Decide asks the model for the next routing step. The returned decision
// is parsed for shape only; structural validation belongs to the
// supervisor.
func (d *RouteDecider) Decide(ctx context.Context, request string, conversation []models.Message, responses []models.AgentResponse) (models.RouteDecision, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "User request: %s\n", request)

	if len(responses) > 0 {
		b.WriteString("\nCompleted agent executions so far, in order:\n")
		for i, r := range responses {
			if r.Failed() {
				fmt.Fprintf(&b, "%d. %s FAILED: %s\n", i+1, r.Agent, r.Err)
			} else {
				fmt.Fprintf(&b, "%d. %s: %s\n", i+1, r.Agent, r.Response)
			}
		}
	} else {
		b.WriteString("\nNo agents have run yet this turn.\n")
	}
	b.WriteString("\nDecide the next step.")

	resp, err := d.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     d.client.Model(),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: routingSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(b.String())),
		},
	})
	if err != nil {
		return models.RouteDecision{}, fmt.Errorf("routing call failed: %w", err)
	}
	d.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}

	return parseRouteDecision(text)
}

// parseRouteDecision extracts the JSON decision object from model output,
// tolerating surrounding prose or code fences.
func parseRouteDecision(text string) (models.RouteDecision, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return models.RouteDecision{}, fmt.Errorf("no JSON object in routing output: %q", truncate(text, 200))
	}

	var decision models.RouteDecision
	if err := json.Unmarshal([]byte(text[start:end+1]), &decision); err != nil {
		return models.RouteDecision{}, fmt.Errorf("malformed routing JSON: %w", err)
	}
	return decision, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
