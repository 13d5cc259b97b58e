package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dusk-indust/agentforge/internal/generator"
	"github.com/dusk-indust/agentforge/internal/project"
)

// Compile-time interface check.
var _ Runner = (*Controller)(nil)

// Controller sequences the pipeline stages for each run. Runs share no
// mutable state, so one Controller may serve concurrent runs.
type Controller struct {
	gen      generator.Generator
	mat      Materializer
	cfg      Config
	progress *ProgressReporter
}

// NewController creates a Controller. A nil Materializer skips writing the
// project; the run then ends after validation.
func NewController(gen generator.Generator, mat Materializer, cfg Config) *Controller {
	return &Controller{
		gen:      gen,
		mat:      mat,
		cfg:      cfg.WithDefaults(),
		progress: NewProgressReporter(),
	}
}

// Progress returns a channel that emits progress events of every run.
func (c *Controller) Progress() <-chan ProgressEvent {
	return c.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when the
// controller is no longer needed.
func (c *Controller) Close() {
	c.progress.Close()
}

// Run executes one pipeline run and always returns an Envelope.
func (c *Controller) Run(ctx context.Context, req RunRequest) (env Envelope) {
	r := c.newRun()
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("run panicked", "panic", p, "state", r.currentState().String())
			r.setState(StateFailed)
			env = r.failure(fmt.Sprintf("internal error: %v", p), nil)
		}
	}()

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = c.cfg.OutputDir
	}
	return r.execute(ctx, req, outputDir)
}

// run is the state of one pipeline run.
type run struct {
	c      *Controller
	id     string
	budget *stepBudget
	log    *slog.Logger

	mu    sync.Mutex
	state State
	logs  []string
}

func (c *Controller) newRun() *run {
	id := uuid.NewString()
	return &run{
		c:      c,
		id:     id,
		budget: newStepBudget(c.cfg.MaxSteps),
		log:    c.cfg.Logger.With("run", id),
	}
}

func (r *run) execute(ctx context.Context, req RunRequest, outputDir string) Envelope {
	r.enter(StatePlanning, "")
	if err := r.budget.spend(); err != nil {
		return r.abort(ctx, err)
	}
	plan, err := generator.RequestPlan(ctx, r.c.gen, generator.PlanInput{
		Request:      req.Request,
		Existing:     req.Existing,
		ContextLimit: r.c.cfg.ProjectContextLimit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return r.abort(ctx, ctx.Err())
		}
		return r.fail("planning failed: "+err.Error(), nil)
	}
	r.note("plan ready", "project", plan.ProjectName, "tools", len(plan.RequiredTools), "agents", len(plan.RequiredAgents))

	if plan.IsQuery() {
		return r.answer(plan)
	}

	r.enter(StateInitializing, plan.ProjectName)
	cfg, err := r.initialize(plan, req.Existing)
	if err != nil {
		return r.abort(ctx, err)
	}

	r.enter(StateBuildingTools, fmt.Sprintf("%d tools", len(plan.RequiredTools)))
	cfg, err = r.buildTools(ctx, cfg, plan)
	if err != nil {
		return r.abort(ctx, err)
	}

	r.enter(StateBuildingAgents, fmt.Sprintf("%d agents", len(plan.RequiredAgents)))
	cfg, err = r.buildAgents(ctx, cfg, plan)
	if err != nil {
		return r.abort(ctx, err)
	}

	r.enter(StateFinalizing, "")
	return r.finalize(ctx, cfg, plan, req.Existing != nil, outputDir)
}

// initialize runs init, or load when an existing configuration is given,
// then merges the plan's dependencies.
func (r *run) initialize(plan *generator.Plan, existing *project.Configuration) (*project.Configuration, error) {
	if err := r.budget.spend(); err != nil {
		return nil, err
	}

	var cfg *project.Configuration
	if existing != nil {
		cfg = existing.Clone()
		r.note("extending existing configuration", "project", cfg.ProjectName,
			"tools", len(cfg.Tools), "agents", len(cfg.Agents))
	} else {
		name := plan.ProjectName
		if name == "" {
			name = "agent-project"
		}
		var err error
		cfg, err = project.Init(project.InitParams{
			ProjectName:    name,
			Description:    plan.ProjectOverview,
			EntryPointKind: plan.EntryPoint,
		})
		if err != nil {
			return nil, err
		}
	}

	project.MergeDependencies(cfg, plan.Dependencies...)
	return cfg, nil
}

func (r *run) buildTools(ctx context.Context, cfg *project.Configuration, plan *generator.Plan) (*project.Configuration, error) {
	reqs := plan.RequiredTools
	built := cfg.ToolNames()

	if r.c.cfg.Parallelism <= 1 {
		for _, req := range reqs {
			spec, err := r.generateTool(ctx, req, plan.ProjectOverview, built)
			if err != nil {
				return nil, err
			}
			if cfg, err = r.addTool(cfg, spec); err != nil {
				return nil, err
			}
			built = append(built, spec.Name)
		}
		return cfg, nil
	}

	specs, err := fanOut(ctx, len(reqs), r.c.cfg.Parallelism, func(ctx context.Context, i int) (project.ToolSpec, error) {
		return r.generateTool(ctx, reqs[i], plan.ProjectOverview, plannedBefore(built, reqs, i))
	})
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if cfg, err = r.addTool(cfg, spec); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// plannedBefore lists existing tool names plus the planned names preceding
// index i. Parallel builders use it in place of the names built so far.
func plannedBefore(existing []string, reqs []generator.ToolRequirement, i int) []string {
	names := append(make([]string, 0, len(existing)+i), existing...)
	for _, req := range reqs[:i] {
		names = append(names, req.Name)
	}
	return names
}

// generateTool asks the tool builder for one tool, substituting a
// placeholder when generation fails for any reason but cancellation.
func (r *run) generateTool(ctx context.Context, req generator.ToolRequirement, overview string, built []string) (project.ToolSpec, error) {
	if err := ctx.Err(); err != nil {
		return project.ToolSpec{}, err
	}
	if err := r.budget.spend(); err != nil {
		return project.ToolSpec{}, err
	}

	r.emit(StateBuildingTools, req.Name, ProgressWorking, "")
	draft, err := generator.RequestTool(ctx, r.c.gen, generator.ToolInput{
		Requirement: req,
		Overview:    overview,
		BuiltTools:  built,
	})
	if err != nil {
		if ctx.Err() != nil {
			return project.ToolSpec{}, ctx.Err()
		}
		r.warn("tool generation failed, using placeholder", "tool", req.Name, "err", err)
		r.emit(StateBuildingTools, req.Name, ProgressComplete, "placeholder")
		return placeholderTool(req), nil
	}

	r.emit(StateBuildingTools, req.Name, ProgressComplete, "")
	return draft.Spec(), nil
}

func (r *run) addTool(cfg *project.Configuration, spec project.ToolSpec) (*project.Configuration, error) {
	if err := r.budget.spend(); err != nil {
		return nil, err
	}
	r.note("tool added", "tool", spec.Name)
	return project.AddTool(cfg, spec), nil
}

func (r *run) buildAgents(ctx context.Context, cfg *project.Configuration, plan *generator.Plan) (*project.Configuration, error) {
	reqs := plan.RequiredAgents
	tools := cfg.Clone().Tools

	if r.c.cfg.Parallelism <= 1 {
		for _, req := range reqs {
			spec, err := r.generateAgent(ctx, req, plan.ProjectOverview, tools)
			if err != nil {
				return nil, err
			}
			if cfg, err = r.addAgent(cfg, spec); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	}

	specs, err := fanOut(ctx, len(reqs), r.c.cfg.Parallelism, func(ctx context.Context, i int) (project.AgentSpec, error) {
		return r.generateAgent(ctx, reqs[i], plan.ProjectOverview, tools)
	})
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if cfg, err = r.addAgent(cfg, spec); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// generateAgent asks the agent builder for one agent, substituting a
// placeholder when generation fails for any reason but cancellation.
func (r *run) generateAgent(ctx context.Context, req generator.AgentRequirement, overview string, tools []project.ToolSpec) (project.AgentSpec, error) {
	if err := ctx.Err(); err != nil {
		return project.AgentSpec{}, err
	}
	if err := r.budget.spend(); err != nil {
		return project.AgentSpec{}, err
	}

	r.emit(StateBuildingAgents, req.Name, ProgressWorking, "")
	draft, err := generator.RequestAgent(ctx, r.c.gen, generator.AgentInput{
		Requirement: req,
		Overview:    overview,
		Tools:       tools,
	})
	if err != nil {
		if ctx.Err() != nil {
			return project.AgentSpec{}, ctx.Err()
		}
		r.warn("agent generation failed, using placeholder", "agent", req.Name, "err", err)
		r.emit(StateBuildingAgents, req.Name, ProgressComplete, "placeholder")

		names := make([]string, 0, len(tools))
		for _, t := range tools {
			names = append(names, t.Name)
		}
		return placeholderAgent(req, names, r.c.cfg.DefaultModel), nil
	}

	spec := draft.Spec()
	if spec.Model == "" {
		spec.Model = r.c.cfg.DefaultModel
	}
	r.emit(StateBuildingAgents, req.Name, ProgressComplete, "")
	return spec, nil
}

func (r *run) addAgent(cfg *project.Configuration, spec project.AgentSpec) (*project.Configuration, error) {
	if err := r.budget.spend(); err != nil {
		return nil, err
	}
	r.note("agent added", "agent", spec.Name)
	return project.AddAgent(cfg, spec), nil
}

// finalize sets the entry point, validates, and materializes.
func (r *run) finalize(ctx context.Context, cfg *project.Configuration, plan *generator.Plan, edit bool, outputDir string) Envelope {
	kind := plan.EntryPoint
	if kind == project.EntryWorkflow && len(cfg.Workflows) == 0 {
		if err := r.budget.spend(); err != nil {
			return r.abort(ctx, err)
		}
		wf := sequentialWorkflow(cfg)
		cfg = project.AddWorkflow(cfg, wf)
		r.note("workflow synthesized", "workflow", wf.Name, "steps", len(wf.Steps))
	}

	if err := r.budget.spend(); err != nil {
		return r.abort(ctx, err)
	}
	ep := chooseEntryPoint(cfg, kind, plan.EntryPointName)
	cfg = project.SetEntryPoint(cfg, ep)
	r.note("entry point set", "kind", string(ep.Kind), "name", ep.Name)

	if err := r.budget.spend(); err != nil {
		return r.abort(ctx, err)
	}
	result := project.Validate(cfg)
	if !result.IsValid {
		return r.fail("validation failed: "+strings.Join(result.Errors, "; "), result.Errors)
	}

	for _, rec := range plan.Recommendations {
		r.appendLog("recommendation: " + rec)
	}

	var projectPath string
	if r.c.mat != nil {
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, err)
		}
		r.emit(StateFinalizing, cfg.ProjectName, ProgressWorking, "materializing")
		out := r.c.mat.Materialize(ctx, cfg, outputDir)
		for _, line := range out.Logs {
			r.appendLog(line)
		}
		if !out.Success {
			r.emit(StateFinalizing, cfg.ProjectName, ProgressFailed, out.Message)
			return r.fail("materialization failed: "+out.Message, nil)
		}
		r.emit(StateFinalizing, cfg.ProjectName, ProgressComplete, out.ProjectPath)
		projectPath = out.ProjectPath
	}

	verb := "generated"
	if edit {
		verb = "updated"
	}
	msg := fmt.Sprintf("project '%s' %s: %d tools, %d agents", cfg.ProjectName, verb, len(cfg.Tools), len(cfg.Agents))
	if len(cfg.Workflows) > 0 {
		msg += fmt.Sprintf(", %d workflows", len(cfg.Workflows))
	}
	return r.succeed(msg, cfg, projectPath)
}

// --- terminal transitions ---

func (r *run) answer(plan *generator.Plan) Envelope {
	r.setState(StateSucceeded)
	r.emit(StateSucceeded, "", ProgressComplete, "answered")
	r.log.Info("query answered")
	return Envelope{
		RunID:        r.id,
		ResponseType: ResponseQuery,
		Status:       StatusSuccess,
		Message:      plan.Answer,
		Logs:         r.snapshotLogs(),
		Steps:        r.budget.steps(),
	}
}

func (r *run) succeed(msg string, cfg *project.Configuration, projectPath string) Envelope {
	r.setState(StateSucceeded)
	r.emit(StateSucceeded, "", ProgressComplete, msg)
	r.log.Info("run succeeded", "project", cfg.ProjectName, "path", projectPath, "steps", r.budget.steps())
	return Envelope{
		RunID:        r.id,
		ResponseType: ResponseFinalConfig,
		Status:       StatusSuccess,
		Message:      msg,
		FinalConfig:  cfg,
		ProjectPath:  projectPath,
		Logs:         r.snapshotLogs(),
		Steps:        r.budget.steps(),
	}
}

func (r *run) fail(reason string, errs []string) Envelope {
	at := r.currentState()
	r.setState(StateFailed)
	r.emit(StateFailed, "", ProgressFailed, reason)
	r.log.Error("run failed", "reason", reason, "state", at.String(), "steps", r.budget.steps())
	return r.failure(reason, errs)
}

// failure builds a failed envelope without emitting progress.
func (r *run) failure(reason string, errs []string) Envelope {
	return Envelope{
		RunID:        r.id,
		ResponseType: ResponseFinalConfig,
		Status:       StatusFailure,
		Message:      reason,
		Errors:       errs,
		Logs:         r.snapshotLogs(),
		Steps:        r.budget.steps(),
	}
}

// abort maps an error that stops the run to its failure reason.
func (r *run) abort(ctx context.Context, err error) Envelope {
	switch {
	case errors.Is(err, ErrStepBudgetExceeded):
		return r.fail(ErrStepBudgetExceeded.Error(), nil)
	case ctx.Err() != nil:
		return r.fail("run cancelled: "+ctx.Err().Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return r.fail("run cancelled: "+err.Error(), nil)
	default:
		return r.fail(err.Error(), nil)
	}
}

// --- bookkeeping ---

func (r *run) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *run) currentState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *run) enter(s State, msg string) {
	r.setState(s)
	r.log.Debug("state", "state", s.String())
	r.emit(s, "", ProgressWorking, msg)
}

func (r *run) emit(s State, item string, status ProgressStatus, msg string) {
	r.c.progress.Emit(ProgressEvent{RunID: r.id, State: s, Item: item, Status: status, Message: msg})
}

func (r *run) note(msg string, args ...any) {
	r.log.Info(msg, args...)
	r.appendLog(formatLog(msg, args))
}

func (r *run) warn(msg string, args ...any) {
	r.log.Warn(msg, args...)
	r.appendLog("warning: " + formatLog(msg, args))
}

func (r *run) appendLog(line string) {
	r.mu.Lock()
	r.logs = append(r.logs, line)
	r.mu.Unlock()
}

func (r *run) snapshotLogs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logs...)
}

// formatLog renders a message and its key/value pairs as one line.
func formatLog(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	return b.String()
}
