// Package config loads engine-wide configuration: default micro-agent
// timeout and concurrency, discovery roots, and model/generation knobs
// the Micro-Agent Builder stamps onto every ephemeral agent it creates.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ModelConfig carries the generation knobs spec.md §4.5 says the
// Micro-Agent Builder pulls "from the global configuration".
type ModelConfig struct {
	PrimaryModel string  `mapstructure:"primary_model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
}

// Config is the engine's process-wide configuration snapshot.
type Config struct {
	MicroAgentTimeout  time.Duration `mapstructure:"micro_agent_timeout"`
	DefaultMaxParallel int           `mapstructure:"default_max_parallel"`
	DiscoveryRoots     []string      `mapstructure:"discovery_roots"`
	Model              ModelConfig   `mapstructure:"model"`
}

// Default returns the engine's built-in defaults, used when no file or
// environment override is present.
func Default() *Config {
	return &Config{
		MicroAgentTimeout:  90 * time.Second,
		DefaultMaxParallel: 3,
		DiscoveryRoots:     []string{"flows/core", "flows/contrib"},
		Model: ModelConfig{
			PrimaryModel: "gemini-2.0-flash",
			Temperature:  0.2,
			MaxTokens:    4096,
		},
	}
}

// Load builds a Config by layering defaults, an optional config file at
// path (JSON or YAML, empty path skips this layer), and environment
// variables prefixed FLOWENGINE_ (e.g. FLOWENGINE_MICRO_AGENT_TIMEOUT).
// Later layers override earlier ones.
func Load(path string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("micro_agent_timeout", def.MicroAgentTimeout)
	v.SetDefault("default_max_parallel", def.DefaultMaxParallel)
	v.SetDefault("discovery_roots", def.DiscoveryRoots)
	v.SetDefault("model.primary_model", def.Model.PrimaryModel)
	v.SetDefault("model.temperature", def.Model.Temperature)
	v.SetDefault("model.max_tokens", def.Model.MaxTokens)

	v.SetEnvPrefix("FLOWENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
