package orchestrator

import "log/slog"

// DefaultMaxSteps bounds the number of Generator and Stage calls in one run.
const DefaultMaxSteps = 25

// DefaultOutputDir is where projects are written when none is configured.
const DefaultOutputDir = "generated"

// Config holds runtime configuration shared by all runs of a Controller.
type Config struct {
	// MaxSteps is the step budget. Zero means DefaultMaxSteps.
	MaxSteps int

	// OutputDir is the directory projects are materialized under.
	OutputDir string

	// Parallelism is the number of concurrent tool or agent builds. Zero
	// or one builds sequentially.
	Parallelism int

	// ProjectContextLimit caps the bytes of an existing configuration
	// embedded in the planning prompt. Zero means no cap.
	ProjectContextLimit int

	// DefaultModel is used for placeholder agents.
	DefaultModel string

	// Logger receives structured run logs. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultAgentModel is the model selector given to placeholder agents.
const DefaultAgentModel = "openai/gpt-4o-mini"

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	if c.DefaultModel == "" {
		c.DefaultModel = DefaultAgentModel
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
