package scaffold

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/agentforge/internal/project"
)

func weatherConfig(t *testing.T) *project.Configuration {
	t.Helper()
	cfg, err := project.Init(project.InitParams{
		ProjectName:    "weather-agent",
		Description:    "Answers weather questions",
		EntryPointKind: project.EntryAgent,
	})
	require.NoError(t, err)

	cfg = project.AddTool(cfg, project.ToolSpec{
		Name:         "getWeather",
		Description:  "Fetch the forecast for a city",
		InputSchema:  "z.object({ city: z.string() })",
		OutputSchema: "z.object({ summary: z.string() })",
		Code:         "const city = context.city;\nreturn { summary: `sunny in ${city}` };",
		Dependencies: []string{"node-fetch"},
	})
	cfg = project.AddAgent(cfg, project.AgentSpec{
		Name:         "weatherAgent",
		Instructions: "Answer \"weather\" questions.",
		Model:        "openai/gpt-4o-mini",
		Tools:        []string{"getWeather"},
	})
	cfg = project.SetEntryPoint(cfg, project.EntryPoint{Kind: project.EntryAgent, Name: "weatherAgent"})
	require.True(t, project.Validate(cfg).IsValid)
	return cfg
}

func readFile(t *testing.T, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(parts...))
	require.NoError(t, err)
	return string(data)
}

func TestMaterialize_WritesProjectTree(t *testing.T) {
	out := t.TempDir()
	cfg := weatherConfig(t)

	res := NewWriter().Materialize(context.Background(), cfg, out)
	require.True(t, res.Success, res.Message)

	root := filepath.Join(out, "weather-agent")
	assert.Equal(t, root, res.ProjectPath)
	assert.Contains(t, res.Message, "created")

	for _, rel := range []string{
		"package.json",
		"tsconfig.json",
		".env.example",
		"agentforge.json",
		"src/mastra/index.ts",
		"src/mastra/tools/getWeather.ts",
		"src/mastra/agents/weatherAgent.ts",
	} {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(rel)))
	}

	tool := readFile(t, root, "src/mastra/tools/getWeather.ts")
	assert.Contains(t, tool, `export const getWeather = createTool({`)
	assert.Contains(t, tool, `inputSchema: z.object({ city: z.string() }),`)
	assert.Contains(t, tool, "    return { summary: `sunny in ${city}` };")

	agent := readFile(t, root, "src/mastra/agents/weatherAgent.ts")
	assert.Contains(t, agent, `import { getWeather } from "../tools/getWeather";`)
	assert.Contains(t, agent, `import { openai } from "@ai-sdk/openai";`)
	assert.Contains(t, agent, `model: openai("gpt-4o-mini"),`)
	assert.Contains(t, agent, `instructions: "Answer \"weather\" questions.",`)

	index := readFile(t, root, "src/mastra/index.ts")
	assert.Contains(t, index, `import { weatherAgent } from "./agents/weatherAgent";`)
	assert.Contains(t, index, "export const entryPoint = weatherAgent;")

	assert.Equal(t, "OPENAI_API_KEY=\n", readFile(t, root, ".env.example"))

	serialized := readFile(t, root, ConfigFileName)
	assert.True(t, strings.HasSuffix(serialized, "}\n"), "agentforge.json must end with a single newline")
	assert.False(t, strings.HasSuffix(serialized, "\n\n"))
	loaded, err := project.Load([]byte(serialized))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMaterialize_PackageJSONDependenciesSorted(t *testing.T) {
	out := t.TempDir()
	res := NewWriter().Materialize(context.Background(), weatherConfig(t), out)
	require.True(t, res.Success, res.Message)

	raw := readFile(t, out, "weather-agent", "package.json")
	var manifest packageManifest
	require.NoError(t, json.Unmarshal([]byte(raw), &manifest))
	assert.Equal(t, "weather-agent", manifest.Name)
	assert.Equal(t, "latest", manifest.Dependencies["node-fetch"])
	assert.Contains(t, manifest.Dependencies, "@ai-sdk/openai")

	// Dependencies appear in lexical order in the file.
	var last int
	for _, name := range []string{`"@ai-sdk/openai"`, `"@mastra/core"`, `"node-fetch"`, `"zod"`} {
		i := strings.Index(raw, name)
		require.Greater(t, i, last, name)
		last = i
	}
}

func TestMaterialize_Workflow(t *testing.T) {
	cfg := weatherConfig(t)
	cfg = project.AddWorkflow(cfg, project.WorkflowSpec{
		Name:         "mainWorkflow",
		Description:  "Runs weatherAgent",
		InputSchema:  "z.object({ input: z.string() })",
		OutputSchema: "z.object({ output: z.string() })",
		Steps: []project.WorkflowStep{
			{ID: "weatherAgentStep", Type: "agent", Config: map[string]string{"agent": "weatherAgent"}},
			{ID: "passthrough", Type: "map"},
		},
	})
	cfg = project.SetEntryPoint(cfg, project.EntryPoint{Kind: project.EntryWorkflow, Name: "mainWorkflow"})

	out := t.TempDir()
	res := NewWriter().Materialize(context.Background(), cfg, out)
	require.True(t, res.Success, res.Message)

	root := filepath.Join(out, "weather-agent")
	wf := readFile(t, root, "src/mastra/workflows/mainWorkflow.ts")
	assert.Contains(t, wf, `import { weatherAgent } from "../agents/weatherAgent";`)
	assert.Contains(t, wf, `id: "weatherAgentStep",`)
	assert.Contains(t, wf, "await weatherAgent.generate(asText(inputData));")
	assert.Contains(t, wf, "  .then(step1)\n  .then(step2)\n  .commit();")

	index := readFile(t, root, "src/mastra/index.ts")
	assert.Contains(t, index, "workflows: { mainWorkflow },")
	assert.Contains(t, index, "export const entryPoint = mainWorkflow;")
}

func TestMaterialize_GeneratedSourcesParse(t *testing.T) {
	out := t.TempDir()
	var buf bytes.Buffer
	w := NewWriter(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	res := w.Materialize(context.Background(), weatherConfig(t), out)
	require.True(t, res.Success, res.Message)
	for _, line := range res.Logs {
		assert.False(t, strings.HasPrefix(line, "warning:"), line)
	}
	assert.Contains(t, buf.String(), "wrote")
}

func TestMaterialize_LintWarningsAreNonFatal(t *testing.T) {
	cfg := weatherConfig(t)
	cfg.Tools[0].Code = "return { broken: ;"

	res := NewWriter().Materialize(context.Background(), cfg, t.TempDir())
	require.True(t, res.Success, res.Message)

	var warned bool
	for _, line := range res.Logs {
		if strings.HasPrefix(line, "warning: src/mastra/tools/getWeather.ts:") {
			warned = true
		}
	}
	assert.True(t, warned, "logs: %v", res.Logs)
}

func TestMaterialize_LintDisabled(t *testing.T) {
	cfg := weatherConfig(t)
	cfg.Tools[0].Code = "return { broken: ;"

	res := NewWriter(WithLint(false)).Materialize(context.Background(), cfg, t.TempDir())
	require.True(t, res.Success, res.Message)
	assert.Len(t, res.Logs, 1)
}

func TestMaterialize_UpdateExisting(t *testing.T) {
	out := t.TempDir()
	w := NewWriter()
	cfg := weatherConfig(t)
	require.True(t, w.Materialize(context.Background(), cfg, out).Success)

	cfg = project.AddTool(cfg, project.ToolSpec{Name: "getTime", Description: "now", InputSchema: "z.object({})", Code: "return Date.now();"})
	res := w.Materialize(context.Background(), cfg, out)
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, "updated")
	assert.FileExists(t, filepath.Join(out, "weather-agent", "src", "mastra", "tools", "getTime.ts"))
}

func TestMaterialize_Git(t *testing.T) {
	out := t.TempDir()
	w := NewWriter(WithGit(true))
	w.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	res := w.Materialize(context.Background(), weatherConfig(t), out)
	require.True(t, res.Success, res.Message)
	assert.Contains(t, strings.Join(res.Logs, "\n"), "git: committed")

	repo, err := gogit.PlainOpen(res.ProjectPath)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Create weather-agent", commit.Message)
	assert.Equal(t, "agentforge", commit.Author.Name)

	// Rewriting identical content leaves nothing to commit.
	res = w.Materialize(context.Background(), weatherConfig(t), out)
	require.True(t, res.Success, res.Message)
	assert.Contains(t, strings.Join(res.Logs, "\n"), "git: nothing to commit")
}

func TestMaterialize_Failures(t *testing.T) {
	valid := weatherConfig(t)

	badProject := valid.Clone()
	badProject.ProjectName = "../escape"

	badTool := valid.Clone()
	badTool.Tools[0].Name = "get-weather"

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	blocked := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(blocked, "weather-agent"), []byte("file"), 0o644))

	tests := []struct {
		name    string
		ctx     context.Context
		cfg     *project.Configuration
		out     string
		message string
	}{
		{"nil config", context.Background(), nil, t.TempDir(), "no configuration"},
		{"bad project name", context.Background(), badProject, t.TempDir(), "invalid project name"},
		{"bad tool name", context.Background(), badTool, t.TempDir(), "not a valid identifier"},
		{"cancelled", cancelled, valid, t.TempDir(), "cancelled"},
		{"path is a file", context.Background(), valid, blocked, "create directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewWriter().Materialize(tt.ctx, tt.cfg, tt.out)
			assert.False(t, res.Success)
			assert.Contains(t, res.Message, tt.message)
		})
	}
}

func TestSplitModel(t *testing.T) {
	tests := []struct {
		model, provider, id string
	}{
		{"openai/gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"Anthropic/claude-sonnet-4", "anthropic", "claude-sonnet-4"},
		{"gpt-4o", "openai", "gpt-4o"},
		{"bad-provider/x", "openai", "x"},
	}
	for _, tt := range tests {
		p, id := splitModel(tt.model)
		assert.Equal(t, tt.provider, p, tt.model)
		assert.Equal(t, tt.id, id, tt.model)
	}
}

func TestLintTypeScript(t *testing.T) {
	findings, err := LintTypeScript("ok.ts", []byte("export const x: number = 1;\n"))
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = LintTypeScript("bad.ts", []byte("const a = 1;\nconst b = (;\n"))
	require.NoError(t, err)
	require.NotEmpty(t, findings)
	assert.Equal(t, "bad.ts", findings[0].File)
	assert.Equal(t, 2, findings[0].Line)
	assert.Contains(t, findings[0].String(), "bad.ts:2:")
}
