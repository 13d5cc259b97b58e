package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dusk-indust/agentforge/internal/a2a"
	"github.com/dusk-indust/agentforge/internal/agent"
	"github.com/dusk-indust/agentforge/internal/config"
	"github.com/dusk-indust/agentforge/internal/generator"
	"github.com/dusk-indust/agentforge/internal/journal"
	"github.com/dusk-indust/agentforge/internal/llm"
	"github.com/dusk-indust/agentforge/internal/project"
)

// loadSettings reads agentforge.yml, applies environment overrides and
// fills defaults.
func loadSettings(flags *globalFlags) (config.ProjectConfig, error) {
	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return config.ProjectConfig{}, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if flags.Verbose {
		cfg.Verbose = true
	}
	return cfg.WithDefaults(), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newModelGenerator calls the configured model directly.
func newModelGenerator(settings config.ProjectConfig) (generator.Generator, error) {
	provider, err := llm.New(settings.LLM)
	if err != nil {
		return nil, err
	}
	return generator.NewLLMGenerator(provider, settings.LLM.MaxTokens), nil
}

// newGenerator returns the generator a run uses: the specialist agents over
// A2A when remote mode is on, otherwise the model itself.
func newGenerator(settings config.ProjectConfig) (generator.Generator, error) {
	if settings.Agents.Remote {
		client := a2a.NewHTTPClient(a2a.WithTimeout(settings.LLM.Timeout * 2))
		return generator.NewRemoteGenerator(client, agent.Endpoints(settings.Agents.BasePort)), nil
	}
	return newModelGenerator(settings)
}

// openJournal opens the run journal, or returns nil when it is disabled.
func openJournal(settings config.ProjectConfig) (*journal.Journal, error) {
	if settings.NoJournal {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(settings.JournalPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	return journal.Open(settings.JournalPath)
}

func readConfigFile(path string) (*project.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return project.Load(data)
}
