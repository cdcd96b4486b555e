package main

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/adperf/steward/internal/api"
	"github.com/adperf/steward/internal/archive"
	"github.com/adperf/steward/internal/config"
	"github.com/adperf/steward/internal/engine"
	"github.com/adperf/steward/internal/roster"
	"github.com/adperf/steward/internal/supervisor"
	"github.com/adperf/steward/internal/tools"
	"github.com/adperf/steward/pkg/models"
)

// runtime holds everything a turn needs, plus the handles that must be
// closed when the command exits.
type runtime struct {
	engine  *engine.Engine
	emitter *engine.Emitter
	client  *api.Client
	closers []func()
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime wires the full engine from configuration: API client,
// metrics store, tool registry, roster, supervisor, archive, signals.
func buildRuntime(cfg *config.Config, maxRounds int, debugLogPath string) (*runtime, error) {
	rt := &runtime{}

	apiKey, _ := config.GetAPIKey(cfg)
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Bedrock.Enabled,
		AWSRegion:     cfg.Bedrock.Region,
		AWSProfile:    cfg.Bedrock.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	rt.client = client

	store, err := tools.OpenMetricsStore(cfg.Data.MetricsDB)
	if err != nil {
		return nil, fmt.Errorf("open metrics store: %w", err)
	}
	rt.closers = append(rt.closers, func() { store.Close() })

	registry := tools.NewRegistry(
		tools.NewMetricsLookup(store),
		tools.NewPacingReport(store),
		tools.NewAnomalyScan(store),
		tools.NewSpendForecast(store),
	)

	policy, err := config.LoadToolPolicy(cfg.Engine.PolicyPath)
	if err != nil {
		return nil, err
	}

	emitter := engine.NewEmitter(256)
	rt.emitter = emitter

	nodes, err := roster.Build(policy, func(role models.Role) roster.Worker {
		loop := api.NewAgentLoop(api.AgentLoopConfig{
			Client:        client,
			Registry:      registry,
			MaxIterations: cfg.Engine.MaxToolCalls,
		})
		agent := string(role)
		loop.SetToolHandlers(
			func(name string, _ json.RawMessage) {
				emitter.Emit(engine.Event{Type: engine.EventToolInvoked, Agent: agent, Tool: name})
			},
			func(name string, result tools.Result) {
				ev := engine.Event{Type: engine.EventToolCompleted, Agent: agent, Tool: name}
				if result.IsError {
					ev.Message = result.Content
				}
				emitter.Emit(ev)
			},
		)
		return loop
	})
	if err != nil {
		return nil, err
	}

	signals, err := engine.NewSignalWatcher(cfg.Engine.SignalsDir)
	if err != nil {
		return nil, fmt.Errorf("start signal watcher: %w", err)
	}
	rt.closers = append(rt.closers, signals.Close)

	logger, err := engine.NewDebugLogger(debugLogPath)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, func() { logger.Close() })

	turnArchive, err := archive.Open(cfg.Data.ArchiveDB)
	if err != nil {
		return nil, fmt.Errorf("open turn archive: %w", err)
	}
	rt.closers = append(rt.closers, func() { turnArchive.Close() })

	if maxRounds <= 0 {
		maxRounds = cfg.Engine.MaxRounds
	}
	eng, err := engine.New(engine.Config{
		Supervisor: supervisor.New(api.NewRouteDecider(client)),
		Nodes:      nodes,
		MaxRounds:  maxRounds,
		Emitter:    emitter,
		Logger:     logger,
		Signals:    signals,
		Archive:    turnArchive,
	})
	if err != nil {
		return nil, err
	}
	rt.engine = eng
	return rt, nil
}
