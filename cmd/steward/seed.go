package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adperf/steward/internal/tools"
)

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Load demo campaigns into the metrics database",
	Long: `Seed-demo fills the metrics database with a small set of example
campaigns and two weeks of daily metrics, including one campaign that
overspends near the end. Useful for trying steward without connecting
real campaign data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := tools.OpenMetricsStore(cfg.Data.MetricsDB)
		if err != nil {
			return fmt.Errorf("open metrics store: %w", err)
		}
		defer store.Close()

		if err := store.SeedDemo(); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}

		campaigns, err := store.Campaigns()
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d campaigns into %s\n", len(campaigns), cfg.Data.MetricsDB)
		return nil
	},
}
