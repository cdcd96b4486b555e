package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adperf/steward/internal/tui"
)

var (
	askTUI       bool
	askMaxRounds int
	askContext   string
	askDebugLog  string
)

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Ask the roster a campaign-operations question",
	Long: `Ask routes a request through the supervisor: it picks the specialists
to involve, runs them one at a time, and prints the combined answer.

Examples:
  steward ask "how are my campaigns pacing?"
  steward ask --context weekly-review "anything unusual since yesterday?"
  steward ask --tui "have your agents introduce themselves"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askTUI, "tui", false, "Watch the turn execute in a live view")
	askCmd.Flags().IntVar(&askMaxRounds, "max-rounds", 0, "Override the supervisor round ceiling for this turn")
	askCmd.Flags().StringVar(&askContext, "context", "default", "Conversation context to run the turn in")
	askCmd.Flags().StringVar(&askDebugLog, "debug-log", "", "Write an engine debug log to this path")
}

func runAsk(cmd *cobra.Command, args []string) error {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" {
		return fmt.Errorf("empty request")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := buildRuntime(cfg, askMaxRounds, askDebugLog)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if askTUI {
		return runAskTUI(ctx, rt, request)
	}
	return runAskPlain(ctx, rt, request)
}

func runAskPlain(ctx context.Context, rt *runtime, request string) error {
	printer := newEventPrinter(os.Stderr)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range rt.emitter.Events() {
			printer.print(event)
		}
	}()

	result, err := rt.engine.Run(ctx, askContext, request)
	rt.emitter.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	fmt.Println(result.Summary)

	input, output := rt.client.Tracker().Total()
	fmt.Fprintf(os.Stderr, "\n%d rounds, %d API calls, %d in / %d out tokens\n",
		result.Rounds, rt.client.Tracker().Calls(), input, output)
	return nil
}

func runAskTUI(ctx context.Context, rt *runtime, request string) error {
	program := tea.NewProgram(tui.NewWatch(request, rt.emitter.Events()))

	var (
		runErr  error
		summary string
		wg      sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := rt.engine.Run(ctx, askContext, request)
		if err != nil {
			runErr = err
		} else {
			summary = result.Summary
		}
		rt.emitter.Close()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("watch view: %w", err)
	}
	wg.Wait()
	if runErr != nil {
		return runErr
	}

	// The watch view is gone once the program exits; repeat the answer on
	// stdout so it survives in the scrollback.
	fmt.Println(summary)
	return nil
}
