package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/agentforge/internal/generator"
	"github.com/dusk-indust/agentforge/internal/project"
)

func TestPlaceholderTool_Deterministic(t *testing.T) {
	req := generator.ToolRequirement{Name: "search", Purpose: "search the web"}
	a, b := placeholderTool(req), placeholderTool(req)
	assert.Equal(t, a, b)
	assert.Equal(t, "search", a.Name)
	assert.Equal(t, "search the web", a.Description)
	assert.Contains(t, a.Code, "return { ok: true, input: context };")
	assert.NotEmpty(t, a.InputSchema)

	blank := placeholderTool(generator.ToolRequirement{Name: "x"})
	assert.Equal(t, "Placeholder for x", blank.Description)
}

func TestPlaceholderAgent(t *testing.T) {
	tools := []string{"a", "b"}
	agent := placeholderAgent(generator.AgentRequirement{Name: "helper", Role: "summarise"}, tools, "m")
	assert.Equal(t, "helper", agent.Name)
	assert.Equal(t, "m", agent.Model)
	assert.Equal(t, tools, agent.Tools)
	assert.Contains(t, agent.Instructions, "summarise")

	tools[0] = "changed"
	assert.Equal(t, "a", agent.Tools[0], "placeholder must own its tool list")

	empty := placeholderAgent(generator.AgentRequirement{Name: "solo"}, nil, "m")
	assert.NotNil(t, empty.Tools)
	assert.Contains(t, empty.Instructions, "Your role: solo")
}

func TestChooseEntryPoint(t *testing.T) {
	cfg, err := project.Init(project.InitParams{ProjectName: "p", EntryPointKind: project.EntryAgent})
	require.NoError(t, err)

	assert.Equal(t, project.EntryPoint{Kind: project.EntryAgent, Name: "mainAgent"}, chooseEntryPoint(cfg, project.EntryAgent, "x"))

	cfg = project.AddAgent(cfg, project.AgentSpec{Name: "one"})
	cfg = project.AddAgent(cfg, project.AgentSpec{Name: "two"})
	assert.Equal(t, "two", chooseEntryPoint(cfg, project.EntryAgent, "two").Name)
	assert.Equal(t, "one", chooseEntryPoint(cfg, project.EntryAgent, "").Name)

	// A declared agent name does not satisfy a workflow entry point.
	ep := chooseEntryPoint(cfg, project.EntryWorkflow, "two")
	assert.Equal(t, project.EntryWorkflow, ep.Kind)
	assert.NotEqual(t, "two", ep.Name)

	cfg = project.AddWorkflow(cfg, sequentialWorkflow(cfg))
	assert.Equal(t, "mainWorkflow", chooseEntryPoint(cfg, project.EntryWorkflow, "").Name)
}

func TestSequentialWorkflow(t *testing.T) {
	cfg, err := project.Init(project.InitParams{ProjectName: "p", EntryPointKind: project.EntryWorkflow})
	require.NoError(t, err)
	cfg = project.AddAgent(cfg, project.AgentSpec{Name: "a"})
	cfg = project.AddAgent(cfg, project.AgentSpec{Name: "b"})

	wf := sequentialWorkflow(cfg)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, "aStep", wf.Steps[0].ID)
	assert.Equal(t, "agent", wf.Steps[0].Type)
	assert.Equal(t, "b", wf.Steps[1].Config["agent"])

	cfg = project.AddWorkflow(cfg, wf)
	cfg = project.SetEntryPoint(cfg, project.EntryPoint{Kind: project.EntryWorkflow, Name: wf.Name})
	assert.True(t, project.Validate(cfg).IsValid)
}

func TestFanOut_PreservesOrder(t *testing.T) {
	delays := []time.Duration{40 * time.Millisecond, 0, 20 * time.Millisecond, 5 * time.Millisecond}
	var inFlight, peak atomic.Int32

	got, err := fanOut(context.Background(), len(delays), 2, func(ctx context.Context, i int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(delays[i])
		inFlight.Add(-1)
		return i * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30}, got)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestFanOut_FirstErrorCancelsRest(t *testing.T) {
	boom := errors.New("boom")
	var cancelled atomic.Int32

	_, err := fanOut(context.Background(), 3, 3, func(ctx context.Context, i int) (string, error) {
		if i == 0 {
			return "", boom
		}
		select {
		case <-ctx.Done():
			cancelled.Add(1)
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
			return "late", nil
		}
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), cancelled.Load())
}

func TestStepBudget(t *testing.T) {
	b := newStepBudget(2)
	require.NoError(t, b.spend())
	require.NoError(t, b.spend())
	assert.ErrorIs(t, b.spend(), ErrStepBudgetExceeded)
	assert.Equal(t, 2, b.steps())
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, DefaultMaxSteps, cfg.MaxSteps)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, DefaultAgentModel, cfg.DefaultModel)
	assert.NotNil(t, cfg.Logger)

	cfg = Config{MaxSteps: 7, Parallelism: 3}.WithDefaults()
	assert.Equal(t, 7, cfg.MaxSteps)
	assert.Equal(t, 3, cfg.Parallelism)
}
