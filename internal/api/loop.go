package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/adperf/steward/internal/sanitize"
	"github.com/adperf/steward/internal/tools"
)

// AgentLoop manages the API call and tool execution cycle for one roster
// agent. Tool access is restricted per invocation to the holstered allowed
// set, and every outgoing tool call passes the coercion middleware before
// it reaches typed decoding or tool logic.
type AgentLoop struct {
	client        *Client
	registry      *tools.Registry
	onToolCall    func(name string, input json.RawMessage)
	onToolResult  func(name string, result tools.Result)
	maxIterations int
}

// AgentLoopConfig contains configuration for the agent loop.
type AgentLoopConfig struct {
	Client   *Client
	Registry *tools.Registry
	// MaxIterations caps API calls per agent execution (0 = default 10).
	MaxIterations int
}

// NewAgentLoop creates a new agent loop with the given configuration.
func NewAgentLoop(cfg AgentLoopConfig) *AgentLoop {
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = 10
	}
	return &AgentLoop{
		client:        cfg.Client,
		registry:      cfg.Registry,
		maxIterations: maxIter,
	}
}

// SetToolHandlers sets callbacks observed on each tool invocation and
// completion. Used by the engine to feed the event stream.
func (l *AgentLoop) SetToolHandlers(onCall func(string, json.RawMessage), onResult func(string, tools.Result)) {
	l.onToolCall = onCall
	l.onToolResult = onResult
}

// toolParams builds the tool schemas for the allowed set only. Tools the
// holster removed are not merely refused at dispatch; the model never
// sees them.
func (l *AgentLoop) toolParams(allowed []string) []anthropic.ToolUnionParam {
	var params []anthropic.ToolUnionParam
	for _, name := range allowed {
		tool := l.registry.Get(name)
		if tool == nil {
			continue
		}
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.Schema(),
				},
			},
		})
	}
	return params
}

// Run executes the agent loop: instruction in, final text out. The loop
// ends when the model stops requesting tools or the iteration cap hits.
func (l *AgentLoop) Run(ctx context.Context, systemPrompt, instruction string, allowed []string) (string, error) {
	toolDefs := l.toolParams(allowed)

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(instruction)),
	}

	for iter := 0; iter < l.maxIterations; iter++ {
		params := anthropic.MessageNewParams{
			Model:     l.client.Model(),
			MaxTokens: 4096,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
		}
		if len(toolDefs) > 0 {
			params.Tools = toolDefs
		}

		resp, err := l.client.sdk().Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("API call failed: %w", err)
		}
		l.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion
		var textOutput string

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				textOutput += variant.Text
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))

				// Pre-validation middleware: normalize the raw bundle
				// before any typed decoding can see it.
				input := sanitize.CoerceArgs(json.RawMessage(variant.Input))

				if l.onToolCall != nil {
					l.onToolCall(variant.Name, input)
				}
				result := l.registry.Execute(ctx, variant.Name, input, allowed)
				if l.onToolResult != nil {
					l.onToolResult(variant.Name, result)
				}

				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, result.Content, result.IsError))
			}
		}

		if resp.StopReason == anthropic.StopReasonEndTurn {
			return textOutput, nil
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return "", fmt.Errorf("agent loop reached max iterations (%d)", l.maxIterations)
}
