package models

import "time"

// MessageRole identifies the author of a conversation entry.
type MessageRole string

const (
	// MessageRoleUser is the end user's input.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is output produced by an agent node.
	MessageRoleAssistant MessageRole = "assistant"
	// MessageRoleSystem is orchestration-level annotation (routing notes).
	MessageRoleSystem MessageRole = "system"
)

// Valid returns true if the role is a known value.
func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return true
	default:
		return false
	}
}

// Message is one entry in a turn's conversation log.
type Message struct {
	// Role is the author of the entry.
	Role MessageRole `json:"role"`
	// Agent is the roster role that produced the entry, for assistant messages.
	Agent Role `json:"agent,omitempty"`
	// Text is the message content.
	Text string `json:"text"`
}

// AgentResponse is the record of one completed agent-node execution.
type AgentResponse struct {
	// Agent is the roster role that executed.
	Agent Role `json:"agent"`
	// Response is the agent's textual output on success.
	Response string `json:"response,omitempty"`
	// Err holds the failure message when the agent's work failed.
	// Exactly one of Response and Err is populated.
	Err string `json:"error,omitempty"`
	// CompletedAt is when the node finished.
	CompletedAt time.Time `json:"completed_at"`
}

// Failed returns true if this execution recorded an error.
func (r AgentResponse) Failed() bool {
	return r.Err != ""
}
