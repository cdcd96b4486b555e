package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adperf/steward/internal/config"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the effective tool policy",
	Long: `Policy prints which tools each roster agent may call, after applying
the configured policy file (engine.policy_path) and the deny list.

The output is valid policy-file YAML, so it can seed a custom policy:
  steward policy > tools.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		policy, err := config.LoadToolPolicy(cfg.Engine.PolicyPath)
		if err != nil {
			return err
		}

		out := struct {
			Roster map[string][]string `yaml:"roster"`
			Deny   []string            `yaml:"deny,omitempty"`
		}{
			Roster: make(map[string][]string, len(policy.Allow)),
			Deny:   policy.Deny,
		}
		for role, allowed := range policy.Allow {
			out.Roster[string(role)] = allowed
		}

		encoded, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("encode policy: %w", err)
		}
		os.Stdout.Write(encoded)
		return nil
	},
}
