package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/adperf/steward/internal/sanitize"
	"github.com/adperf/steward/pkg/models"
)

// policyFile is the on-disk shape of a roster tool-policy YAML.
type policyFile struct {
	Roster map[string][]string `yaml:"roster"`
	Deny   []string            `yaml:"deny"`
}

// DefaultToolPolicy returns the built-in role-to-tool mapping used when no
// policy file is configured.
func DefaultToolPolicy() sanitize.ToolPolicy {
	return sanitize.ToolPolicy{
		Allow: map[models.Role][]string{
			models.RoleMonitor:       {"metrics_lookup", "anomaly_scan"},
			models.RoleDiagnostician: {"metrics_lookup"},
			models.RoleOptimizer:     {"metrics_lookup", "pacing_report"},
			models.RoleForecaster:    {"metrics_lookup", "pacing_report", "spend_forecast"},
		},
	}
}

// LoadToolPolicy reads a roster tool policy from a YAML file. An empty
// path returns the embedded default policy.
//
// File shape:
//
//	roster:
//	  monitor: [metrics_lookup, anomaly_scan]
//	  forecaster: [metrics_lookup, spend_forecast]
//	deny: [anomaly_scan]
func LoadToolPolicy(path string) (sanitize.ToolPolicy, error) {
	if path == "" {
		return DefaultToolPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sanitize.ToolPolicy{}, fmt.Errorf("read tool policy: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return sanitize.ToolPolicy{}, fmt.Errorf("parse tool policy: %w", err)
	}

	policy := sanitize.ToolPolicy{
		Allow: make(map[models.Role][]string, len(file.Roster)),
		Deny:  file.Deny,
	}
	for name, tools := range file.Roster {
		role := models.Role(name)
		if !role.Valid() {
			return sanitize.ToolPolicy{}, fmt.Errorf("tool policy names unknown role %q", name)
		}
		policy.Allow[role] = tools
	}
	return policy, nil
}
