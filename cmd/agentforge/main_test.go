package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/agentforge/internal/journal"
	"github.com/dusk-indust/agentforge/internal/orchestrator"
	"github.com/dusk-indust/agentforge/internal/project"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, cfg *project.Configuration) string {
	t.Helper()
	data, err := cfg.Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "agentforge.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func validConfig(t *testing.T) *project.Configuration {
	t.Helper()
	cfg, err := project.Init(project.InitParams{ProjectName: "p", EntryPointKind: project.EntryAgent})
	require.NoError(t, err)
	cfg = project.AddTool(cfg, project.ToolSpec{Name: "search", Description: "d", InputSchema: "z.object({})", Code: "return 1;"})
	cfg = project.AddAgent(cfg, project.AgentSpec{Name: "helper", Model: "openai/gpt-4o-mini", Tools: []string{"search"}})
	return project.SetEntryPoint(cfg, project.EntryPoint{Kind: project.EntryAgent, Name: "helper"})
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", writeConfig(t, validConfig(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "p is valid")

	broken := validConfig(t)
	broken.Agents[0].Tools = []string{"ghost"}
	out, err = execute(t, "validate", writeConfig(t, broken))
	assert.ErrorIs(t, err, errRunFailed)
	assert.Contains(t, out, "ghost")

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDiagramCommand(t *testing.T) {
	path := writeConfig(t, validConfig(t))

	out, err := execute(t, "diagram", path)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD\n")

	out, err = execute(t, "diagram", "--summary", path)
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "p", summary["projectName"])
}

func TestStatusCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "status", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found")

	for _, rel := range []string{"package.json", "tsconfig.json", "src/mastra/index.ts"} {
		path := filepath.Join(dir, "p", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	out, err = execute(t, "status", "--output", dir, "p")
	require.NoError(t, err)
	assert.Contains(t, out, "[valid]")
	assert.Contains(t, out, "src/mastra/index.ts")
}

func TestRunsCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agentforge.yml"), []byte("journalPath: "+dbPath+"\n"), 0o644))

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	_, err = j.Record(context.Background(), "build a weather agent", orchestrator.Envelope{
		RunID:        "run-0001",
		ResponseType: orchestrator.ResponseFinalConfig,
		Status:       orchestrator.StatusFailure,
		Message:      "validation failed: x",
		Errors:       []string{"x"},
		Steps:        4,
	})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	out, err := execute(t, "--config-dir", dir, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "run-0001")
	assert.Contains(t, out, "build a weather agent")

	out, err = execute(t, "--config-dir", dir, "runs", "run-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "validation failed: x")
	assert.Contains(t, out, "failure (FinalConfig, 4 steps)")
	assert.Contains(t, out, "  - x")

	_, err = execute(t, "--config-dir", dir, "runs", "missing")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestInit_MergesMCPConfig(t *testing.T) {
	dir := t.TempDir()
	existing := `{"mcpServers":{"other":{"type":"stdio","command":"other"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(existing), 0o644))

	var out bytes.Buffer
	require.NoError(t, runInit(&out, dir, false))
	assert.Contains(t, out.String(), "created ./agentforge.yml")
	assert.Contains(t, out.String(), "updated .mcp.json")

	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	var cfg mcpConfig
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Contains(t, cfg.MCPServers, "other")
	assert.Contains(t, cfg.MCPServers, "agentforge")

	out.Reset()
	require.NoError(t, runInit(&out, dir, false))
	assert.Contains(t, out.String(), "skipped ./agentforge.yml")
	assert.Contains(t, out.String(), "skipped .mcp.json agentforge entry")
}

func TestStyleProgress(t *testing.T) {
	line := styleProgress(orchestrator.ProgressEvent{State: orchestrator.StateBuildingTools, Item: "search", Status: orchestrator.ProgressComplete})
	assert.Contains(t, line, "search complete")

	header := styleProgress(orchestrator.ProgressEvent{State: orchestrator.StatePlanning})
	assert.Contains(t, header, "[")
}

func TestPrintEnvelope(t *testing.T) {
	var out bytes.Buffer
	printEnvelope(&out, orchestrator.Envelope{
		RunID:        "r1",
		ResponseType: orchestrator.ResponseFinalConfig,
		Status:       orchestrator.StatusFailure,
		Message:      "validation failed: x",
		Errors:       []string{"x"},
		Logs:         []string{"warning: tool t failed", "plan ready"},
		Steps:        3,
	}, false)

	s := out.String()
	assert.Contains(t, s, "validation failed: x")
	assert.Contains(t, s, "  - x")
	assert.Contains(t, s, "warning: tool t failed")
	assert.NotContains(t, s, "plan ready")
	assert.Contains(t, s, "run r1, 3 steps")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a \n b", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
