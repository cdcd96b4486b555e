package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/adperf/steward/internal/engine"
	"github.com/adperf/steward/pkg/models"
)

// eventPrinter renders engine events as a compact progress feed for the
// non-TUI path.
type eventPrinter struct {
	out io.Writer

	route *color.Color
	ok    *color.Color
	fail  *color.Color
	dim   *color.Color
}

func newEventPrinter(out io.Writer) *eventPrinter {
	return &eventPrinter{
		out:   out,
		route: color.New(color.FgCyan),
		ok:    color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		dim:   color.New(color.Faint),
	}
}

func (p *eventPrinter) print(event engine.Event) {
	switch event.Type {
	case engine.EventRouteDecided:
		if event.Error != nil {
			p.fail.Fprintf(p.out, "✗ routing failed: %v\n", event.Error)
			return
		}
		if event.Agent == models.NodeFinish {
			p.route.Fprintln(p.out, "supervisor: finishing")
			return
		}
		p.route.Fprintf(p.out, "supervisor → %s", event.Agent)
		if event.Message != "" {
			p.dim.Fprintf(p.out, "  (%s)", event.Message)
		}
		fmt.Fprintln(p.out)

	case engine.EventAgentStarted:
		p.dim.Fprintf(p.out, "  %s working...\n", event.Agent)

	case engine.EventAgentCompleted:
		if event.Error != nil {
			p.fail.Fprintf(p.out, "  ✗ %s: %v\n", event.Agent, event.Error)
		} else {
			p.ok.Fprintf(p.out, "  ✓ %s\n", event.Agent)
		}

	case engine.EventToolInvoked:
		p.dim.Fprintf(p.out, "    %s → %s\n", event.Agent, event.Tool)

	case engine.EventToolCompleted:
		if event.Message != "" {
			p.dim.Fprintf(p.out, "    %s ← %s (error)\n", event.Agent, event.Tool)
		}
	}
}
