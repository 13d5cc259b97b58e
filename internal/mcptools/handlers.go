package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/agentforge/internal/journal"
	"github.com/dusk-indust/agentforge/internal/orchestrator"
	"github.com/dusk-indust/agentforge/internal/project"
	"github.com/dusk-indust/agentforge/internal/status"
)

// defaultRunLimit is used by list_runs when no limit is given.
const defaultRunLimit = 20

// RunJournal records finished runs and lists past ones.
type RunJournal interface {
	Record(ctx context.Context, request string, env orchestrator.Envelope) (string, error)
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

// ForgeService handles MCP tool calls for serve-mcp. It wraps a Runner to
// generate projects and inspects their trees on disk.
type ForgeService struct {
	runner    orchestrator.Runner
	outputDir string
	journal   RunJournal
}

// NewForgeService creates a ForgeService. A nil journal disables run
// recording and list_runs.
func NewForgeService(runner orchestrator.Runner, outputDir string, j RunJournal) *ForgeService {
	if outputDir == "" {
		outputDir = orchestrator.DefaultOutputDir
	}
	return &ForgeService{runner: runner, outputDir: outputDir, journal: j}
}

// GenerateProject runs the pipeline for one request and returns its
// envelope. Pipeline failures are reported in the envelope, not as tool
// errors.
func (s *ForgeService) GenerateProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateProjectInput,
) (*mcp.CallToolResult, GenerateProjectOutput, error) {
	if input.Request == "" {
		return nil, GenerateProjectOutput{}, errors.New("request is required")
	}

	req := orchestrator.RunRequest{Request: input.Request, OutputDir: input.OutputDir}
	if req.OutputDir == "" {
		req.OutputDir = s.outputDir
	}
	if input.ConfigPath != "" {
		existing, err := loadConfigFile(input.ConfigPath)
		if err != nil {
			return nil, GenerateProjectOutput{}, err
		}
		req.Existing = existing
	}

	env := s.runner.Run(ctx, req)
	if s.journal != nil {
		if _, err := s.journal.Record(ctx, input.Request, env); err != nil {
			env.Logs = append(env.Logs, "warning: journal: "+err.Error())
		}
	}
	return nil, envelopeOutput(env), nil
}

// ValidateConfig parses and validates a serialized configuration.
func (s *ForgeService) ValidateConfig(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateConfigInput,
) (*mcp.CallToolResult, ValidateConfigOutput, error) {
	cfg, err := project.Load([]byte(input.ConfigJSON))
	if err != nil {
		return nil, ValidateConfigOutput{IsValid: false, Errors: []string{err.Error()}}, nil
	}
	res := project.Validate(cfg)
	out := ValidateConfigOutput{IsValid: res.IsValid, Errors: res.Errors, ProjectName: cfg.ProjectName}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return nil, out, nil
}

// CheckProjectStatus reports whether a generated project tree is complete.
func (s *ForgeService) CheckProjectStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CheckProjectStatusInput,
) (*mcp.CallToolResult, CheckProjectStatusOutput, error) {
	if input.ProjectName == "" {
		return nil, CheckProjectStatusOutput{}, errors.New("projectName is required")
	}
	dir := input.OutputDir
	if dir == "" {
		dir = s.outputDir
	}
	st := status.Check(input.ProjectName, dir)
	return nil, CheckProjectStatusOutput{
		Exists:  st.Exists,
		IsValid: st.IsValid,
		Path:    st.Path,
		Files:   st.Files,
		Missing: st.Missing,
		Message: st.Message,
	}, nil
}

// ListRuns returns journaled runs, newest first.
func (s *ForgeService) ListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	if s.journal == nil {
		return nil, ListRunsOutput{}, errors.New("run journal is disabled")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	entries, err := s.journal.List(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]RunSummary, 0, len(entries))
	for _, e := range entries {
		runs = append(runs, RunSummary{
			ID:           e.ID,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
			Request:      e.Request,
			ResponseType: e.ResponseType,
			Status:       e.Status,
			Message:      e.Message,
			ProjectPath:  e.ProjectPath,
			Steps:        e.Steps,
		})
	}
	return nil, ListRunsOutput{Runs: runs}, nil
}

func loadConfigFile(path string) (*project.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return project.Load(data)
}

func envelopeOutput(env orchestrator.Envelope) GenerateProjectOutput {
	out := GenerateProjectOutput{
		RunID:        env.RunID,
		ResponseType: string(env.ResponseType),
		Status:       string(env.Status),
		Message:      env.Message,
		ProjectPath:  env.ProjectPath,
		Errors:       env.Errors,
		Logs:         env.Logs,
		Steps:        env.Steps,
	}
	if env.FinalConfig != nil {
		out.FinalConfig = env.FinalConfig
	}
	return out
}
