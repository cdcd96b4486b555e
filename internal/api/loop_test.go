package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/adperf/steward/internal/tools"
)

type fakeTool struct {
	name string
}

func (t *fakeTool) Name() string        { return t.name }
func (t *fakeTool) Description() string { return "fake tool for tests" }
func (t *fakeTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"campaign": map[string]interface{}{"type": "string"},
	}
}
func (t *fakeTool) Call(_ context.Context, _ json.RawMessage) tools.Result {
	return tools.Result{Content: "ok"}
}

func TestToolParamsExposesOnlyAllowedTools(t *testing.T) {
	registry := tools.NewRegistry(
		&fakeTool{name: "metrics_lookup"},
		&fakeTool{name: "pacing_report"},
		&fakeTool{name: "spend_forecast"},
	)
	loop := NewAgentLoop(AgentLoopConfig{Registry: registry})

	params := loop.toolParams([]string{"metrics_lookup", "spend_forecast"})
	if len(params) != 2 {
		t.Fatalf("params = %d", len(params))
	}
	got := map[string]bool{}
	for _, p := range params {
		got[p.OfTool.Name] = true
	}
	if !got["metrics_lookup"] || !got["spend_forecast"] {
		t.Errorf("exposed tools: %v", got)
	}
	if got["pacing_report"] {
		t.Error("pacing_report exposed despite holster")
	}
}

func TestToolParamsSkipsUnknownNames(t *testing.T) {
	registry := tools.NewRegistry(&fakeTool{name: "metrics_lookup"})
	loop := NewAgentLoop(AgentLoopConfig{Registry: registry})

	params := loop.toolParams([]string{"metrics_lookup", "no_such_tool"})
	if len(params) != 1 {
		t.Fatalf("params = %d", len(params))
	}
}

func TestNewAgentLoopDefaultIterations(t *testing.T) {
	loop := NewAgentLoop(AgentLoopConfig{})
	if loop.maxIterations != 10 {
		t.Errorf("maxIterations = %d", loop.maxIterations)
	}
	loop = NewAgentLoop(AgentLoopConfig{MaxIterations: 3})
	if loop.maxIterations != 3 {
		t.Errorf("maxIterations = %d", loop.maxIterations)
	}
}
