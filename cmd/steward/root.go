package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adperf/steward/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "steward",
	Short: "Campaign operations copilot",
	Long: `Steward answers campaign-operations questions by routing them through
a roster of specialist agents: a monitor, a diagnostician, an optimizer,
and a forecaster. A supervisor decides which specialist handles each step
and folds their findings into one answer.

Examples:
  steward ask "how are my campaigns pacing this week?"
  steward ask --tui "have your agents introduce themselves"
  steward policy`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search XDG config and ./.steward.yaml)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(cfgCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(seedDemoCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration from --config or the search path.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		return cfg, nil
	}
	return config.Load()
}
