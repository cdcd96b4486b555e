package turn

import (
	"testing"

	"github.com/adperf/steward/pkg/models"
)

func TestNew_InitialState(t *testing.T) {
	s := New("turn-1", "ctx-1", "What is portfolio pacing?")

	if s.Next != models.NodeSupervisor {
		t.Errorf("fresh state Next = %q, want supervisor", s.Next)
	}
	if s.Instruction != "" {
		t.Errorf("fresh state has live instruction %q", s.Instruction)
	}
	if len(s.Responses) != 0 {
		t.Errorf("fresh state has %d responses, want 0", len(s.Responses))
	}
	if len(s.Conversation) != 1 || s.Conversation[0].Role != models.MessageRoleUser {
		t.Fatalf("fresh state conversation should hold the user request, got %+v", s.Conversation)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("fresh state should validate: %v", err)
	}
}

func TestSetRoute_Valid(t *testing.T) {
	s := New("turn-1", "ctx-1", "check pacing")

	if err := s.SetRoute("monitor", "Check campaign pacing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Next != "monitor" {
		t.Errorf("Next = %q, want monitor", s.Next)
	}
	if !s.HasLiveInstruction() {
		t.Error("expected live instruction after SetRoute")
	}
}

func TestSetRoute_UnknownNode(t *testing.T) {
	s := New("turn-1", "ctx-1", "check pacing")

	err := s.SetRoute("nonexistent_agent", "do something")
	if err == nil {
		t.Fatal("expected validation error for unknown node")
	}
}

func TestSetRoute_Finish(t *testing.T) {
	s := New("turn-1", "ctx-1", "check pacing")

	if err := s.SetRoute(models.NodeFinish, ""); err != nil {
		t.Fatalf("FINISH should be a valid route: %v", err)
	}
}

func TestRecordResponse_ClearsInstruction(t *testing.T) {
	s := New("turn-1", "ctx-1", "check pacing")
	if err := s.SetRoute("monitor", "Check campaign pacing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.RecordResponse(models.AgentResponse{Agent: models.RoleMonitor, Response: "pacing is on track"})

	if s.HasLiveInstruction() {
		t.Error("instruction should be cleared after RecordResponse")
	}
	if len(s.Responses) != 1 {
		t.Fatalf("expected 1 response record, got %d", len(s.Responses))
	}
	if s.Responses[0].CompletedAt.IsZero() {
		t.Error("CompletedAt should be stamped")
	}
}

func TestRecordResponse_ClearsInstructionOnError(t *testing.T) {
	s := New("turn-1", "ctx-1", "check pacing")
	if err := s.SetRoute("monitor", "Check campaign pacing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.RecordResponse(models.AgentResponse{Agent: models.RoleMonitor, Err: "metrics store unavailable"})

	if s.HasLiveInstruction() {
		t.Error("instruction must clear even when the agent failed")
	}
	if !s.Responses[0].Failed() {
		t.Error("record should carry the error")
	}
}

func TestAppendOnly_Growth(t *testing.T) {
	s := New("turn-1", "ctx-1", "check pacing")

	convLen, respLen := len(s.Conversation), len(s.Responses)
	for i := 0; i < 3; i++ {
		s.AppendMessage(models.Message{Role: models.MessageRoleAssistant, Agent: models.RoleMonitor, Text: "update"})
		s.RecordResponse(models.AgentResponse{Agent: models.RoleMonitor, Response: "update"})

		if len(s.Conversation) <= convLen {
			t.Fatalf("conversation length did not grow: %d -> %d", convLen, len(s.Conversation))
		}
		if len(s.Responses) <= respLen {
			t.Fatalf("responses length did not grow: %d -> %d", respLen, len(s.Responses))
		}
		convLen, respLen = len(s.Conversation), len(s.Responses)
	}
}
