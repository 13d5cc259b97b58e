// Package config loads agentforge.yml and applies environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/agentforge/internal/llm"
	"github.com/dusk-indust/agentforge/internal/orchestrator"
)

// Defaults for settings that have no orchestrator or llm counterpart.
const (
	DefaultJournalPath = ".agentforge/runs.db"
	DefaultBasePort    = 41240
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider     = "AGENTFORGE_PROVIDER"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
)

// AgentsConfig controls the specialist A2A agents.
type AgentsConfig struct {
	// Remote routes generator calls through the A2A specialist agents
	// instead of calling the model directly.
	Remote   bool `yaml:"remote,omitempty"`
	BasePort int  `yaml:"basePort,omitempty"`
}

// ProjectConfig holds settings loaded from agentforge.yml.
type ProjectConfig struct {
	LLM llm.Config `yaml:"llm,omitempty"`

	OutputDir           string `yaml:"outputDir,omitempty"`
	MaxSteps            int    `yaml:"maxSteps,omitempty"`
	Parallelism         int    `yaml:"parallelism,omitempty"`
	ProjectContextLimit int    `yaml:"projectContextLimit,omitempty"`
	DefaultModel        string `yaml:"defaultModel,omitempty"`

	Git         bool   `yaml:"git,omitempty"`
	DisableLint bool   `yaml:"disableLint,omitempty"`
	JournalPath string `yaml:"journalPath,omitempty"`
	NoJournal   bool   `yaml:"noJournal,omitempty"`

	Agents  AgentsConfig `yaml:"agents,omitempty"`
	Verbose bool         `yaml:"verbose,omitempty"`
}

// Load attempts to read agentforge.yml or agentforge.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"agentforge.yml", "agentforge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// ApplyEnv overrides the provider and API keys from the environment. The
// key of the selected provider is taken from its own variable.
func (c *ProjectConfig) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if p := getenv(EnvProvider); p != "" {
		c.LLM.Provider = llm.ProviderType(p)
	}
	provider := c.LLM.Provider
	if provider == "" {
		provider = llm.Config{}.WithDefaults().Provider
	}
	var key string
	switch provider {
	case llm.ProviderOpenAI:
		key = getenv(EnvOpenAIKey)
	case llm.ProviderAnthropic:
		key = getenv(EnvAnthropicKey)
	}
	if key != "" {
		c.LLM.APIKey = key
	}
}

// WithDefaults fills unset fields.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	c.LLM = c.LLM.WithDefaults()
	if c.OutputDir == "" {
		c.OutputDir = orchestrator.DefaultOutputDir
	}
	if c.JournalPath == "" {
		c.JournalPath = DefaultJournalPath
	}
	if c.Agents.BasePort == 0 {
		c.Agents.BasePort = DefaultBasePort
	}
	return c
}

// Orchestrator returns the controller settings carried by c.
func (c ProjectConfig) Orchestrator(logger *slog.Logger) orchestrator.Config {
	return orchestrator.Config{
		MaxSteps:            c.MaxSteps,
		OutputDir:           c.OutputDir,
		Parallelism:         c.Parallelism,
		ProjectContextLimit: c.ProjectContextLimit,
		DefaultModel:        c.DefaultModel,
		Logger:              logger,
	}.WithDefaults()
}
