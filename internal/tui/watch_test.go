package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adperf/steward/internal/engine"
)

func applyEvents(w *Watch, events ...engine.Event) {
	for _, ev := range events {
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		}
		w.apply(ev)
	}
}

func TestWatchTracksAgentLifecycle(t *testing.T) {
	w := NewWatch("introduce yourselves", nil)

	applyEvents(w,
		engine.Event{Type: engine.EventAgentStarted, Agent: "monitor", Message: "Introduce yourself"},
	)
	if w.statuses["monitor"] != statusRunning {
		t.Errorf("monitor status = %d", w.statuses["monitor"])
	}

	applyEvents(w,
		engine.Event{Type: engine.EventAgentCompleted, Agent: "monitor", Message: "I am the monitor"},
	)
	if w.statuses["monitor"] != statusDone {
		t.Errorf("monitor status = %d", w.statuses["monitor"])
	}
	if w.notes["monitor"] != "I am the monitor" {
		t.Errorf("note = %q", w.notes["monitor"])
	}
}

func TestWatchMarksFailures(t *testing.T) {
	w := NewWatch("request", nil)

	applyEvents(w,
		engine.Event{Type: engine.EventAgentStarted, Agent: "diagnostician"},
		engine.Event{Type: engine.EventAgentCompleted, Agent: "diagnostician", Error: errors.New("api timeout")},
	)
	if w.statuses["diagnostician"] != statusFailed {
		t.Errorf("status = %d", w.statuses["diagnostician"])
	}
	view := w.View()
	if !strings.Contains(view, "✗") {
		t.Error("view missing failure marker")
	}
}

func TestWatchFinishesOnTurnFinished(t *testing.T) {
	w := NewWatch("request", nil)

	applyEvents(w, engine.Event{Type: engine.EventTurnFinished, Message: "final summary"})
	if !w.done {
		t.Error("not done after turn_finished")
	}
	if !strings.Contains(w.View(), "final summary") {
		t.Error("summary not rendered")
	}
}

func TestWatchQuitsOnClosedStream(t *testing.T) {
	events := make(chan engine.Event)
	close(events)
	w := NewWatch("request", events)

	msg := w.waitForEvent()()
	if _, ok := msg.(StreamClosedMsg); !ok {
		t.Fatalf("msg = %T", msg)
	}

	model, cmd := w.Update(msg)
	if !model.(*Watch).done {
		t.Error("not done after stream close")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestWatchViewListsAllAgents(t *testing.T) {
	w := NewWatch("request", nil)
	view := w.View()
	for _, name := range []string{"monitor", "diagnostician", "optimizer", "forecaster"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing %s", name)
		}
	}
}

func TestWatchKeyQuit(t *testing.T) {
	w := NewWatch("request", nil)
	model, cmd := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !model.(*Watch).quitting {
		t.Error("q did not quit")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}
