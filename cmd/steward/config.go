package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adperf/steward/internal/config"
)

var cfgCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Config prints the resolved configuration: API credentials (masked),
backend selection, engine limits, and data paths.

Configuration is read from ~/.config/steward/config.yaml, a project-local
.steward.yaml, and STEWARD_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		key, _ := config.GetAPIKey(cfg)
		fmt.Printf("anthropic.api_key: %s (%s)\n", config.MaskAPIKey(key), config.GetAPIKeySource(cfg))
		if key != "" {
			if err := config.ValidateAPIKey(key); err != nil {
				fmt.Printf("anthropic.api_key warning: %v\n", err)
			}
		}
		fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
		fmt.Printf("bedrock.enabled: %t\n", cfg.Bedrock.Enabled)
		if cfg.Bedrock.Enabled {
			fmt.Printf("bedrock.region: %s\n", cfg.Bedrock.Region)
			fmt.Printf("bedrock.profile: %s\n", cfg.Bedrock.Profile)
		}
		fmt.Printf("engine.max_rounds: %d\n", cfg.Engine.MaxRounds)
		fmt.Printf("engine.max_tool_calls: %d\n", cfg.Engine.MaxToolCalls)
		fmt.Printf("engine.policy_path: %s\n", orDefault(cfg.Engine.PolicyPath, "(built-in)"))
		fmt.Printf("engine.signals_dir: %s\n", cfg.Engine.SignalsDir)
		fmt.Printf("data.metrics_db: %s\n", cfg.Data.MetricsDB)
		fmt.Printf("data.archive_db: %s\n", cfg.Data.ArchiveDB)
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
