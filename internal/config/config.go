// Package config handles configuration loading for steward.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for steward.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Bedrock   BedrockConfig   `mapstructure:"bedrock"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Data      DataConfig      `mapstructure:"data"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// BedrockConfig holds AWS Bedrock settings for the alternate backend.
type BedrockConfig struct {
	// Enabled switches the client from the direct API to AWS Bedrock.
	Enabled bool `mapstructure:"enabled"`
	// Region is the AWS region for Bedrock (e.g., "us-west-2").
	Region string `mapstructure:"region"`
	// Profile is the optional AWS shared-config profile name.
	Profile string `mapstructure:"profile"`
}

// EngineConfig holds orchestration engine settings.
type EngineConfig struct {
	// MaxRounds is the hard ceiling on supervisor-agent round trips per
	// turn. Exceeding it forces termination with a partial-result notice.
	MaxRounds int `mapstructure:"max_rounds"`
	// MaxToolCalls bounds the tool-use iterations inside one agent node.
	MaxToolCalls int `mapstructure:"max_tool_calls"`
	// PolicyPath points at the roster tool-policy YAML. Empty means the
	// embedded default policy.
	PolicyPath string `mapstructure:"policy_path"`
	// SignalsDir is where the stop-signal watcher looks for abort files.
	// Empty disables the watcher.
	SignalsDir string `mapstructure:"signals_dir"`
}

// DataConfig holds data file locations.
type DataConfig struct {
	// MetricsDB is the path to the campaign metrics SQLite database.
	MetricsDB string `mapstructure:"metrics_db"`
	// ArchiveDB is the path to the turn archive SQLite database.
	ArchiveDB string `mapstructure:"archive_db"`
}

// Load reads configuration with the following precedence (highest first):
// 1. Environment variables (STEWARD_*, ANTHROPIC_API_KEY)
// 2. Project config (.steward.yaml in cwd or parents)
// 3. User config ($XDG_CONFIG_HOME/steward/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("STEWARD")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")

	v.SetDefault("bedrock.enabled", false)
	v.SetDefault("bedrock.region", "")
	v.SetDefault("bedrock.profile", "")

	v.SetDefault("engine.max_rounds", 8)
	v.SetDefault("engine.max_tool_calls", 10)
	v.SetDefault("engine.policy_path", "")
	v.SetDefault("engine.signals_dir", "")

	v.SetDefault("data.metrics_db", filepath.Join(dataDir(), "metrics.db"))
	v.SetDefault("data.archive_db", filepath.Join(dataDir(), "archive.db"))
}

// userConfigDir returns the XDG config directory for steward.
func userConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "steward")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "steward")
	}
	return filepath.Join(home, ".config", "steward")
}

// dataDir returns the XDG data directory for steward.
func dataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "steward")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "steward")
	}
	return filepath.Join(home, ".local", "share", "steward")
}

// findProjectConfig searches for .steward.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir := cwd
	for {
		candidate := filepath.Join(dir, ".steward.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
