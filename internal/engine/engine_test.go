package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/adperf/steward/internal/config"
	"github.com/adperf/steward/internal/roster"
	"github.com/adperf/steward/internal/supervisor"
	"github.com/adperf/steward/internal/turn"
	"github.com/adperf/steward/pkg/models"
)

type scriptedDecider struct {
	decisions []models.RouteDecision
	errs      []error
	calls     int
}

func (d *scriptedDecider) Decide(_ context.Context, _ string, _ []models.Message, _ []models.AgentResponse) (models.RouteDecision, error) {
	i := d.calls
	d.calls++
	if i < len(d.errs) && d.errs[i] != nil {
		return models.RouteDecision{}, d.errs[i]
	}
	if i < len(d.decisions) {
		return d.decisions[i], nil
	}
	return models.RouteDecision{Next: models.NodeFinish}, nil
}

type echoWorker struct {
	role models.Role
	err  error
}

func (w *echoWorker) Run(_ context.Context, _, instruction string, _ []string) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	return fmt.Sprintf("%s handled: %s", w.role, instruction), nil
}

func newTestEngine(t *testing.T, decider supervisor.Decider, workerErrs map[models.Role]error, maxRounds int) *Engine {
	t.Helper()
	nodes, err := roster.Build(config.DefaultToolPolicy(), func(role models.Role) roster.Worker {
		return &echoWorker{role: role, err: workerErrs[role]}
	})
	if err != nil {
		t.Fatal(err)
	}
	eng, err := New(Config{
		Supervisor: supervisor.New(decider),
		Nodes:      nodes,
		MaxRounds:  maxRounds,
	})
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func route(role models.Role, instruction string) models.RouteDecision {
	return models.RouteDecision{Next: string(role), Instruction: instruction}
}

func TestRunVisitsEveryAgentOnceForIntroductions(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{
		route(models.RoleMonitor, "Introduce yourself and describe your role"),
		route(models.RoleDiagnostician, "Introduce yourself and describe your role"),
		route(models.RoleOptimizer, "Introduce yourself and describe your role"),
		route(models.RoleForecaster, "Introduce yourself and describe your role"),
		{Next: models.NodeFinish, Reasoning: "all introduced"},
	}}
	eng := newTestEngine(t, decider, nil, 0)

	result, err := eng.Run(context.Background(), "ctx-1", "Have your agents introduce themselves")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeFinished {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if result.Rounds != 5 {
		t.Errorf("rounds = %d", result.Rounds)
	}
	if len(result.State.Responses) != 4 {
		t.Fatalf("responses = %d", len(result.State.Responses))
	}
	wantOrder := models.AllRoles()
	for i, want := range wantOrder {
		if result.State.Responses[i].Agent != want {
			t.Errorf("response[%d].Agent = %q, want %q", i, result.State.Responses[i].Agent, want)
		}
		if !strings.Contains(result.Summary, "### "+string(want)) {
			t.Errorf("summary missing section for %s", want)
		}
	}
	if strings.Contains(result.Summary, "⚠") {
		t.Error("complete turn must not carry a partial-results notice")
	}
	if result.State.HasLiveInstruction() {
		t.Error("instruction live after finished turn")
	}
}

func TestRunRoutingFailureRunsNoAgents(t *testing.T) {
	decider := &scriptedDecider{errs: []error{errors.New("model returned garbage")}}
	eng := newTestEngine(t, decider, nil, 0)

	result, err := eng.Run(context.Background(), "ctx-1", "anything")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeRoutingFailed {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if len(result.State.Responses) != 0 {
		t.Errorf("agents ran after routing failure: %d", len(result.State.Responses))
	}
	if !strings.Contains(result.Summary, "Routing failed") {
		t.Errorf("summary = %q", result.Summary)
	}
	if !strings.Contains(result.Summary, "No agent responses were collected.") {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestRunInvalidDestinationIsRoutingFailure(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{
		{Next: "accountant", Instruction: "balance the books"},
	}}
	eng := newTestEngine(t, decider, nil, 0)

	result, err := eng.Run(context.Background(), "ctx-1", "anything")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeRoutingFailed {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if len(result.State.Responses) != 0 {
		t.Errorf("agents ran: %d", len(result.State.Responses))
	}
}

func TestRunRoundCeilingForcesTermination(t *testing.T) {
	loop := make([]models.RouteDecision, 20)
	for i := range loop {
		loop[i] = route(models.RoleMonitor, "Report current delivery status")
	}
	decider := &scriptedDecider{decisions: loop}
	eng := newTestEngine(t, decider, nil, 3)

	result, err := eng.Run(context.Background(), "ctx-1", "keep checking")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeRoundsExhausted {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if result.Rounds != 3 {
		t.Errorf("rounds = %d", result.Rounds)
	}
	if len(result.State.Responses) != 3 {
		t.Errorf("responses = %d", len(result.State.Responses))
	}
	if !strings.Contains(result.Summary, "Stopped after 3 rounds without a final answer") {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestRunSingleAgentTurn(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{
		route(models.RoleForecaster, "Project spend for next week"),
		{Next: models.NodeFinish},
	}}
	eng := newTestEngine(t, decider, nil, 0)

	result, err := eng.Run(context.Background(), "ctx-1", "will we stay on budget?")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeFinished {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if len(result.State.Responses) != 1 {
		t.Fatalf("responses = %d", len(result.State.Responses))
	}
	if got := result.State.Responses[0].Agent; got != "forecaster" {
		t.Errorf("agent = %q", got)
	}
}

func TestRunAgentFailureDoesNotSinkTurn(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{
		route(models.RoleMonitor, "Report current delivery status"),
		route(models.RoleOptimizer, "Recommend adjustments"),
		{Next: models.NodeFinish},
	}}
	eng := newTestEngine(t, decider, map[models.Role]error{
		models.RoleMonitor: errors.New("api timeout"),
	}, 0)

	result, err := eng.Run(context.Background(), "ctx-1", "check and fix pacing")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeFinished {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if len(result.State.Responses) != 2 {
		t.Fatalf("responses = %d", len(result.State.Responses))
	}
	if !result.State.Responses[0].Failed() {
		t.Error("monitor failure not recorded")
	}
	if result.State.Responses[1].Failed() {
		t.Error("optimizer should have succeeded")
	}
	if !strings.Contains(result.Summary, "(failed: api timeout)") {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestRunEmitsEventStream(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{
		route(models.RoleMonitor, "Report current delivery status"),
		{Next: models.NodeFinish},
	}}
	nodes, err := roster.Build(config.DefaultToolPolicy(), func(role models.Role) roster.Worker {
		return &echoWorker{role: role}
	})
	if err != nil {
		t.Fatal(err)
	}
	emitter := NewEmitter(64)
	eng, err := New(Config{
		Supervisor: supervisor.New(decider),
		Nodes:      nodes,
		Emitter:    emitter,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Run(context.Background(), "ctx-1", "status"); err != nil {
		t.Fatal(err)
	}
	emitter.Close()

	var types []EventType
	for ev := range emitter.Events() {
		types = append(types, ev.Type)
	}
	want := []EventType{
		EventTurnStarted,
		EventRouteDecided,
		EventAgentStarted,
		EventAgentCompleted,
		EventRouteDecided,
		EventTurnFinished,
	}
	if len(types) != len(want) {
		t.Fatalf("event types = %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, types[i], want[i])
		}
	}
	if emitter.DroppedCount() != 0 {
		t.Errorf("dropped = %d", emitter.DroppedCount())
	}
}

func TestRunCancelledContextStops(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{
		route(models.RoleMonitor, "Report current delivery status"),
	}}
	eng := newTestEngine(t, decider, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := eng.Run(ctx, "ctx-1", "status")
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != OutcomeStopped {
		t.Errorf("outcome = %s", result.Outcome)
	}
	if len(result.State.Responses) != 0 {
		t.Errorf("responses = %d", len(result.State.Responses))
	}
}

func TestRunReplayYieldsIdenticalSummary(t *testing.T) {
	script := func() *scriptedDecider {
		return &scriptedDecider{decisions: []models.RouteDecision{
			route(models.RoleMonitor, "Report current delivery status"),
			route(models.RoleForecaster, "Project spend for next week"),
			{Next: models.NodeFinish},
		}}
	}
	workerErrs := map[models.Role]error{models.RoleForecaster: errors.New("api timeout")}

	first, err := newTestEngine(t, script(), workerErrs, 0).Run(context.Background(), "ctx-1", "check and project")
	if err != nil {
		t.Fatal(err)
	}
	second, err := newTestEngine(t, script(), workerErrs, 0).Run(context.Background(), "ctx-1", "check and project")
	if err != nil {
		t.Fatal(err)
	}

	if first.Summary != second.Summary {
		t.Errorf("replay diverged:\nfirst:  %q\nsecond: %q", first.Summary, second.Summary)
	}
	if first.Outcome != second.Outcome || first.Rounds != second.Rounds {
		t.Errorf("replay outcome/rounds diverged: %s/%d vs %s/%d",
			first.Outcome, first.Rounds, second.Outcome, second.Rounds)
	}
}

type recordingArchive struct {
	saved   int
	outcome string
}

func (a *recordingArchive) SaveTurn(_ context.Context, _ *turn.State, outcome string, _ string) error {
	a.saved++
	a.outcome = outcome
	return nil
}

func TestRunArchivesCompletedTurn(t *testing.T) {
	decider := &scriptedDecider{decisions: []models.RouteDecision{{Next: models.NodeFinish}}}
	nodes, err := roster.Build(config.DefaultToolPolicy(), func(role models.Role) roster.Worker {
		return &echoWorker{role: role}
	})
	if err != nil {
		t.Fatal(err)
	}
	archive := &recordingArchive{}
	eng, err := New(Config{
		Supervisor: supervisor.New(decider),
		Nodes:      nodes,
		Archive:    archive,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Run(context.Background(), "ctx-1", "nothing to do"); err != nil {
		t.Fatal(err)
	}
	if archive.saved != 1 {
		t.Errorf("saved = %d", archive.saved)
	}
	if archive.outcome != string(OutcomeFinished) {
		t.Errorf("outcome = %q", archive.outcome)
	}
}
