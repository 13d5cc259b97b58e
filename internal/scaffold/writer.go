// Package scaffold writes a validated configuration out as a runnable
// TypeScript agent project.
package scaffold

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dusk-indust/agentforge/internal/orchestrator"
	"github.com/dusk-indust/agentforge/internal/project"
)

// ConfigFileName is the serialized configuration written at the project
// root. It is what "generate --edit" reads back.
const ConfigFileName = "agentforge.json"

// Project layout, relative to the project root.
const (
	srcDir       = "src/mastra"
	toolsDir     = srcDir + "/tools"
	agentsDir    = srcDir + "/agents"
	workflowsDir = srcDir + "/workflows"
	indexFile    = srcDir + "/index.ts"
)

// baseDependencies are present in every generated package.json unless the
// configuration pins another version.
var baseDependencies = map[string]string{
	"@mastra/core": "latest",
	"zod":          "^3.23.8",
}

var devDependencies = map[string]string{
	"@types/node": "^22.0.0",
	"mastra":      "latest",
	"typescript":  "^5.6.0",
}

// Option configures a Writer.
type Option func(*Writer)

// WithGit commits the written tree to a git repository in the project
// directory.
func WithGit(enabled bool) Option {
	return func(w *Writer) { w.git = enabled }
}

// WithLint controls the TypeScript syntax check of generated sources.
func WithLint(enabled bool) Option {
	return func(w *Writer) { w.lint = enabled }
}

// WithLogger sets the logger for write progress and lint findings.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// Writer implements orchestrator.Materializer on the local filesystem.
type Writer struct {
	git    bool
	lint   bool
	logger *slog.Logger
	now    func() time.Time
}

var _ orchestrator.Materializer = (*Writer)(nil)

// NewWriter returns a Writer with linting on and git off.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{lint: true, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// file is one rendered output, path relative to the project root.
type file struct {
	path string
	data []byte
}

// Materialize writes cfg to <outputPath>/<projectName>. Every failure,
// including a panic while rendering, is reported in the result.
func (w *Writer) Materialize(ctx context.Context, cfg *project.Configuration, outputPath string) (res orchestrator.MaterializeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = orchestrator.MaterializeResult{
				Success: false,
				Message: fmt.Sprintf("internal error: %v", r),
				Logs:    res.Logs,
			}
		}
	}()

	if cfg == nil {
		return orchestrator.MaterializeResult{Message: "no configuration to write"}
	}
	if err := ctx.Err(); err != nil {
		return orchestrator.MaterializeResult{Message: "cancelled: " + err.Error()}
	}
	if err := checkNames(cfg); err != nil {
		return orchestrator.MaterializeResult{Message: err.Error()}
	}
	if outputPath == "" {
		outputPath = "."
	}
	root := filepath.Join(outputPath, cfg.ProjectName)

	var logs []string
	logf := func(level slog.Level, format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		if level >= slog.LevelWarn {
			line = "warning: " + line
		}
		logs = append(logs, line)
		w.logger.Log(ctx, level, line, "project", cfg.ProjectName)
	}

	files, err := render(cfg)
	if err != nil {
		return orchestrator.MaterializeResult{ProjectPath: root, Message: err.Error(), Logs: logs}
	}

	_, statErr := os.Stat(root)
	existed := statErr == nil
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return orchestrator.MaterializeResult{ProjectPath: root, Message: "cancelled: " + err.Error(), Logs: logs}
		}
		if err := writeFile(root, f); err != nil {
			return orchestrator.MaterializeResult{ProjectPath: root, Message: err.Error(), Logs: logs}
		}
	}
	logf(slog.LevelInfo, "wrote %d files to %s", len(files), root)

	if w.lint {
		for _, f := range files {
			if filepath.Ext(f.path) != ".ts" {
				continue
			}
			findings, err := LintTypeScript(f.path, f.data)
			if err != nil {
				logf(slog.LevelWarn, "lint %s: %v", f.path, err)
				continue
			}
			for _, fd := range findings {
				logf(slog.LevelWarn, "%s", fd)
			}
		}
	}

	if w.git {
		verb := "Create"
		if existed {
			verb = "Update"
		}
		hash, err := commitTree(root, fmt.Sprintf("%s %s", verb, cfg.ProjectName), w.now())
		switch {
		case err != nil:
			logf(slog.LevelWarn, "git: %v", err)
		case hash == "":
			logf(slog.LevelInfo, "git: nothing to commit")
		default:
			logf(slog.LevelInfo, "git: committed %s", hash[:7])
		}
	}

	action := "created"
	if existed {
		action = "updated"
	}
	return orchestrator.MaterializeResult{
		Success:     true,
		ProjectPath: root,
		Message:     fmt.Sprintf("project %s at %s", action, root),
		Logs:        logs,
	}
}

func writeFile(root string, f file) error {
	path := filepath.Join(root, filepath.FromSlash(f.path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.path, err)
	}
	if err := os.WriteFile(path, f.data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// checkNames rejects names that cannot be used as a directory or as
// TypeScript identifiers and module file names.
func checkNames(cfg *project.Configuration) error {
	name := cfg.ProjectName
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid project name %q", name)
	}
	for _, t := range cfg.Tools {
		if !isIdentifier(t.Name) {
			return fmt.Errorf("tool name %q is not a valid identifier", t.Name)
		}
	}
	for _, a := range cfg.Agents {
		if !isIdentifier(a.Name) {
			return fmt.Errorf("agent name %q is not a valid identifier", a.Name)
		}
	}
	for _, wf := range cfg.Workflows {
		if !isIdentifier(wf.Name) {
			return fmt.Errorf("workflow name %q is not a valid identifier", wf.Name)
		}
	}
	return nil
}

// render produces every project file in a fixed order.
func render(cfg *project.Configuration) ([]file, error) {
	var files []file
	add := func(path, tmpl string, data any) error {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
		files = append(files, file{path: path, data: buf.Bytes()})
		return nil
	}

	providers := providersOf(cfg)

	pkg, err := packageJSON(cfg, providers)
	if err != nil {
		return nil, err
	}
	files = append(files, file{path: "package.json", data: pkg})

	if err := add("tsconfig.json", "tsconfig.json.tmpl", nil); err != nil {
		return nil, err
	}
	if err := add(".env.example", "env.example.tmpl", envKeys(providers)); err != nil {
		return nil, err
	}

	for _, t := range cfg.Tools {
		if err := add(toolsDir+"/"+t.Name+".ts", "tool.ts.tmpl", t); err != nil {
			return nil, err
		}
	}
	for _, a := range cfg.Agents {
		provider, id := splitModel(a.Model)
		view := agentView{
			Agent: agentSpecView{
				Name:         a.Name,
				Description:  a.Description,
				Instructions: a.Instructions,
				Tools:        a.Tools,
			},
			Provider: provider,
			ModelID:  id,
		}
		if err := add(agentsDir+"/"+a.Name+".ts", "agent.ts.tmpl", view); err != nil {
			return nil, err
		}
	}
	for _, wf := range cfg.Workflows {
		if err := add(workflowsDir+"/"+wf.Name+".ts", "workflow.ts.tmpl", workflowViewOf(wf)); err != nil {
			return nil, err
		}
	}

	index := indexView{
		ProjectName: cfg.ProjectName,
		EntryKind:   string(cfg.EntryPoint.Kind),
		EntryName:   cfg.EntryPoint.Name,
		Agents:      cfg.AgentNames(),
	}
	for _, wf := range cfg.Workflows {
		index.Workflows = append(index.Workflows, wf.Name)
	}
	if err := add(indexFile, "index.ts.tmpl", index); err != nil {
		return nil, err
	}

	serialized, err := cfg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("serialize configuration: %w", err)
	}
	files = append(files, file{path: ConfigFileName, data: serialized})
	return files, nil
}

// workflowViewOf resolves each step to a statement variable and, for agent
// steps, the agent it calls.
func workflowViewOf(wf project.WorkflowSpec) workflowView {
	view := workflowView{Workflow: workflowSpecView{
		Name:         wf.Name,
		Description:  wf.Description,
		InputSchema:  wf.InputSchema,
		OutputSchema: wf.OutputSchema,
	}}
	seen := map[string]bool{}
	for i, s := range wf.Steps {
		step := stepView{ID: s.ID, Var: fmt.Sprintf("step%d", i+1)}
		if agent := s.Config["agent"]; s.Type == "agent" && isIdentifier(agent) {
			step.Agent = agent
			if !seen[agent] {
				seen[agent] = true
				view.Agents = append(view.Agents, agent)
			}
		}
		view.Steps = append(view.Steps, step)
	}
	return view
}

// providersOf returns the sorted AI SDK providers the agents use.
func providersOf(cfg *project.Configuration) []string {
	set := map[string]bool{}
	for _, a := range cfg.Agents {
		p, _ := splitModel(a.Model)
		set[p] = true
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// envKeys names the API key variable of each provider.
func envKeys(providers []string) []string {
	keys := make([]string, 0, len(providers))
	for _, p := range providers {
		switch p {
		case "google":
			keys = append(keys, "GOOGLE_GENERATIVE_AI_API_KEY")
		default:
			keys = append(keys, strings.ToUpper(p)+"_API_KEY")
		}
	}
	return keys
}

type packageManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description,omitempty"`
	Private         bool              `json:"private"`
	Type            string            `json:"type"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// packageJSON renders package.json. Maps marshal with sorted keys, so the
// dependency lists come out sorted.
func packageJSON(cfg *project.Configuration, providers []string) ([]byte, error) {
	deps := make(map[string]string, len(baseDependencies)+len(cfg.Dependencies)+len(providers))
	for k, v := range baseDependencies {
		deps[k] = v
	}
	for _, p := range providers {
		deps["@ai-sdk/"+p] = "latest"
	}
	for k, v := range cfg.Dependencies {
		deps[k] = v
	}
	manifest := packageManifest{
		Name:        strings.ToLower(cfg.ProjectName),
		Version:     "0.1.0",
		Description: cfg.Description,
		Private:     true,
		Type:        "module",
		Scripts: map[string]string{
			"build": "mastra build",
			"dev":   "mastra dev",
		},
		Dependencies:    deps,
		DevDependencies: devDependencies,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render package.json: %w", err)
	}
	return append(data, '\n'), nil
}
