package orchestrator

import (
	"context"

	"github.com/dusk-indust/agentforge/internal/project"
)

// MaterializeResult reports the outcome of writing a project tree.
type MaterializeResult struct {
	Success     bool     `json:"success"`
	ProjectPath string   `json:"projectPath"`
	Message     string   `json:"message"`
	Logs        []string `json:"logs"`
}

// Materializer writes a valid configuration out as a project tree. It never
// returns an error; failures are reported with Success false.
type Materializer interface {
	Materialize(ctx context.Context, cfg *project.Configuration, outputPath string) MaterializeResult
}

// MaterializerFunc adapts an ordinary function to the Materializer interface.
type MaterializerFunc func(ctx context.Context, cfg *project.Configuration, outputPath string) MaterializeResult

// Materialize calls f(ctx, cfg, outputPath).
func (f MaterializerFunc) Materialize(ctx context.Context, cfg *project.Configuration, outputPath string) MaterializeResult {
	return f(ctx, cfg, outputPath)
}
