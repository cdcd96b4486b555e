// Package tui provides the terminal user interface for watching a turn
// execute: one row per agent, a routing log, and the final summary.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adperf/steward/internal/engine"
	"github.com/adperf/steward/pkg/models"
)

// agentStatus tracks one roster agent's progress through the turn.
type agentStatus int

const (
	statusIdle agentStatus = iota
	statusRunning
	statusDone
	statusFailed
)

// EventMsg wraps an engine event for the bubbletea loop.
type EventMsg struct {
	Event engine.Event
}

// StreamClosedMsg signals the engine closed its event channel.
type StreamClosedMsg struct{}

// logLine is one rendered entry in the routing log.
type logLine struct {
	at   time.Time
	text string
}

// Watch is the bubbletea model for `steward ask --tui`.
type Watch struct {
	// request is the user request driving the turn.
	request string
	// events is the engine's event stream.
	events <-chan engine.Event
	// statuses tracks per-agent progress, keyed by role.
	statuses map[string]agentStatus
	// notes holds each agent's latest output snippet.
	notes map[string]string
	// log is the chronological routing log.
	log []logLine
	// summary is the final answer, set on turn_finished.
	summary string
	// done indicates the turn has ended.
	done bool
	// quitting indicates the user asked to exit.
	quitting bool
	// width is the terminal width.
	width int
	// spin animates while the turn is in flight.
	spin spinner.Model

	titleStyle   lipgloss.Style
	agentStyle   lipgloss.Style
	runningStyle lipgloss.Style
	doneStyle    lipgloss.Style
	failedStyle  lipgloss.Style
	idleStyle    lipgloss.Style
	logStyle     lipgloss.Style
	summaryStyle lipgloss.Style
}

// NewWatch creates the watch model over an engine event stream.
func NewWatch(request string, events <-chan engine.Event) *Watch {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	statuses := make(map[string]agentStatus)
	for _, role := range models.AllRoles() {
		statuses[string(role)] = statusIdle
	}

	return &Watch{
		request:  request,
		events:   events,
		statuses: statuses,
		notes:    make(map[string]string),
		width:    80,
		spin:     sp,

		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		agentStyle:   lipgloss.NewStyle().Bold(true),
		runningStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		failedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		idleStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		logStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		summaryStyle: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (w *Watch) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-w.events
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg{Event: event}
	}
}

// Init implements tea.Model.
func (w *Watch) Init() tea.Cmd {
	return tea.Batch(w.spin.Tick, w.waitForEvent())
}

// Update implements tea.Model.
func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			w.quitting = true
			return w, tea.Quit
		}

	case tea.WindowSizeMsg:
		w.width = msg.Width

	case EventMsg:
		w.apply(msg.Event)
		if w.done {
			return w, tea.Quit
		}
		return w, w.waitForEvent()

	case StreamClosedMsg:
		w.done = true
		return w, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spin, cmd = w.spin.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *Watch) apply(event engine.Event) {
	switch event.Type {
	case engine.EventRouteDecided:
		if event.Error != nil {
			w.logf(event.Timestamp, "routing failed: %v", event.Error)
			return
		}
		if event.Agent == models.NodeFinish {
			w.logf(event.Timestamp, "supervisor: finishing")
			return
		}
		w.logf(event.Timestamp, "supervisor → %s", event.Agent)

	case engine.EventAgentStarted:
		w.statuses[event.Agent] = statusRunning
		w.notes[event.Agent] = event.Message

	case engine.EventAgentCompleted:
		if event.Error != nil {
			w.statuses[event.Agent] = statusFailed
			w.notes[event.Agent] = event.Error.Error()
			w.logf(event.Timestamp, "%s failed", event.Agent)
		} else {
			w.statuses[event.Agent] = statusDone
			w.notes[event.Agent] = event.Message
			w.logf(event.Timestamp, "%s completed", event.Agent)
		}

	case engine.EventToolInvoked:
		w.logf(event.Timestamp, "%s → tool %s", event.Agent, event.Tool)

	case engine.EventTurnFinished:
		w.summary = event.Message
		w.done = true
	}
}

func (w *Watch) logf(at time.Time, format string, args ...interface{}) {
	w.log = append(w.log, logLine{at: at, text: fmt.Sprintf(format, args...)})
	if len(w.log) > 50 {
		w.log = w.log[len(w.log)-50:]
	}
}

// View implements tea.Model.
func (w *Watch) View() string {
	if w.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(w.titleStyle.Render("steward"))
	b.WriteString("  ")
	b.WriteString(truncateLine(w.request, w.width-10))
	b.WriteString("\n\n")

	for _, role := range models.AllRoles() {
		name := string(role)
		var marker string
		switch w.statuses[name] {
		case statusRunning:
			marker = w.runningStyle.Render(w.spin.View())
		case statusDone:
			marker = w.doneStyle.Render("✓")
		case statusFailed:
			marker = w.failedStyle.Render("✗")
		default:
			marker = w.idleStyle.Render("·")
		}
		fmt.Fprintf(&b, " %s %s", marker, w.agentStyle.Render(padRight(name, 14)))
		if note := w.notes[name]; note != "" {
			b.WriteString(w.logStyle.Render(truncateLine(note, w.width-20)))
		}
		b.WriteString("\n")
	}

	if len(w.log) > 0 {
		b.WriteString("\n")
		start := 0
		if len(w.log) > 8 {
			start = len(w.log) - 8
		}
		for _, line := range w.log[start:] {
			fmt.Fprintf(&b, " %s %s\n",
				w.logStyle.Render(line.at.Format("15:04:05")),
				truncateLine(line.text, w.width-12))
		}
	}

	if w.done && w.summary != "" {
		b.WriteString("\n")
		b.WriteString(w.summaryStyle.Width(min(w.width-2, 100)).Render(w.summary))
		b.WriteString("\n")
	} else if !w.done {
		b.WriteString("\n " + w.idleStyle.Render("q to quit") + "\n")
	}
	return b.String()
}

func truncateLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
