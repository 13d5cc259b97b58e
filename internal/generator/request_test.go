package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/agentforge/internal/project"
)

const weatherPlan = `{
  "projectName": "weather-bot",
  "projectOverview": "Answers weather questions.",
  "requiredTools": [{"name": "getWeather", "purpose": "fetch forecast", "reasoning": "core"}],
  "requiredAgents": [{"name": "weatherAgent", "role": "answer weather questions", "reasoning": "core"}],
  "dependencies": ["axios"],
  "entryPoint": "agent",
  "entryPointName": "weatherAgent",
  "recommendations": []
}`

func staticGenerator(t *testing.T, wantRole Role, body string) Generator {
	t.Helper()
	return Func(func(_ context.Context, req Request) (json.RawMessage, error) {
		assert.Equal(t, wantRole, req.Role)
		assert.NotNil(t, req.Schema)
		assert.NotEmpty(t, req.Prompt)
		return json.RawMessage(body), nil
	})
}

func TestRequestPlan_Valid(t *testing.T) {
	plan, err := RequestPlan(context.Background(), staticGenerator(t, RolePlanner, weatherPlan), PlanInput{Request: "weather bot"})
	require.NoError(t, err)

	assert.Equal(t, "weather-bot", plan.ProjectName)
	assert.Equal(t, project.EntryAgent, plan.EntryPoint)
	assert.Equal(t, "weatherAgent", plan.EntryPointName)
	require.Len(t, plan.RequiredTools, 1)
	assert.Equal(t, "getWeather", plan.RequiredTools[0].Name)
	assert.False(t, plan.IsQuery())
}

func TestRequestPlan_EntryKindAnyCase(t *testing.T) {
	for _, kind := range []string{"Agent", " WORKFLOW "} {
		body := strings.Replace(weatherPlan, `"entryPoint": "agent"`, `"entryPoint": "`+kind+`"`, 1)
		plan, err := RequestPlan(context.Background(), staticGenerator(t, RolePlanner, body), PlanInput{Request: "weather bot"})
		require.NoError(t, err, kind)
		assert.Equal(t, project.EntryKind(strings.ToLower(strings.TrimSpace(kind))), plan.EntryPoint)
	}
}

func TestRequestPlan_Query(t *testing.T) {
	body := `{"projectName":"","projectOverview":"","requiredTools":[],"requiredAgents":[],
		"dependencies":[],"entryPoint":"agent","recommendations":[],"answer":"Use a workflow."}`
	plan, err := RequestPlan(context.Background(), staticGenerator(t, RolePlanner, body), PlanInput{Request: "what should I use?"})
	require.NoError(t, err)
	assert.True(t, plan.IsQuery())
	assert.Equal(t, "Use a workflow.", plan.Answer)
}

func TestRequestPlan_Failures(t *testing.T) {
	transportErr := errors.New("connection refused")

	tests := []struct {
		name string
		gen  Generator
	}{
		{"transport", Func(func(context.Context, Request) (json.RawMessage, error) { return nil, transportErr })},
		{"empty", staticGenerator(t, RolePlanner, "")},
		{"not json", staticGenerator(t, RolePlanner, "sure, here is a plan")},
		{"missing field", staticGenerator(t, RolePlanner, `{"projectName":"x"}`)},
		{"bad entry kind", staticGenerator(t, RolePlanner, `{"projectName":"x","projectOverview":"","requiredTools":[],
			"requiredAgents":[],"dependencies":[],"entryPoint":"service","recommendations":[]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequestPlan(context.Background(), tt.gen, PlanInput{Request: "anything"})
			require.Error(t, err)

			var gf *GenerationFailure
			require.True(t, errors.As(err, &gf))
			assert.Equal(t, RolePlanner, gf.Role)
			assert.Error(t, gf.Cause)
		})
	}

	_, err := RequestPlan(context.Background(), tests[0].gen, PlanInput{Request: "x"})
	assert.ErrorIs(t, err, transportErr)
}

func TestRequestTool(t *testing.T) {
	body := `{"name":"getWeather","description":"fetch","inputSchema":"z.object({ city: z.string() })",
		"code":"return { temp: 1 };","dependencies":["axios"]}`
	draft, err := RequestTool(context.Background(), staticGenerator(t, RoleToolBuilder, body), ToolInput{
		Requirement: ToolRequirement{Name: "getWeather", Purpose: "fetch"},
	})
	require.NoError(t, err)
	assert.Equal(t, "getWeather", draft.Name)
	assert.Equal(t, []string{"axios"}, draft.Spec().Dependencies)

	_, err = RequestTool(context.Background(), staticGenerator(t, RoleToolBuilder, `{"name":"x"}`), ToolInput{})
	var gf *GenerationFailure
	require.True(t, errors.As(err, &gf))
	assert.Equal(t, RoleToolBuilder, gf.Role)
}

func TestRequestTool_EmptyNameTakesRequirement(t *testing.T) {
	body := `{"name":"","description":"d","inputSchema":"z.object({})","code":"return {};"}`
	draft, err := RequestTool(context.Background(), staticGenerator(t, RoleToolBuilder, body), ToolInput{
		Requirement: ToolRequirement{Name: "lookup"},
	})
	require.NoError(t, err)
	assert.Equal(t, "lookup", draft.Name)
}

func TestRequestAgent(t *testing.T) {
	body := `{"name":"weatherAgent","instructions":"You answer weather questions.","model":"openai/gpt-4o-mini","tools":[]}`
	draft, err := RequestAgent(context.Background(), staticGenerator(t, RoleAgentBuilder, body), AgentInput{
		Requirement: AgentRequirement{Name: "weatherAgent", Role: "answer"},
		Tools:       []project.ToolSpec{{Name: "getWeather", Description: "fetch"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "weatherAgent", draft.Name)
	assert.NotNil(t, draft.Tools)
	assert.Empty(t, draft.Spec().Tools)
}

func TestRequestAgent_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := Func(func(ctx context.Context, _ Request) (json.RawMessage, error) {
		return nil, ctx.Err()
	})
	_, err := RequestAgent(ctx, gen, AgentInput{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrompts(t *testing.T) {
	existing, err := project.Init(project.InitParams{ProjectName: "weather-bot", EntryPointKind: project.EntryAgent})
	require.NoError(t, err)

	p := planPrompt(PlanInput{Request: "add a forecast tool", Existing: existing, ContextLimit: 20})
	assert.Contains(t, p, "add a forecast tool")
	assert.Contains(t, p, "already exists")
	assert.Contains(t, p, "(truncated)")

	tp := toolPrompt(ToolInput{Requirement: ToolRequirement{Name: "b", Purpose: "p"}, BuiltTools: []string{"a"}})
	assert.Contains(t, tp, `"b"`)
	assert.Contains(t, tp, "already built")

	ap := agentPrompt(AgentInput{Requirement: AgentRequirement{Name: "x", Role: "r"}})
	assert.Contains(t, ap, "No tools are available")

	schema, err := PlanSchema()
	require.NoError(t, err)
	sp := systemPrompt(RolePlanner, schema)
	assert.Contains(t, sp, "planning specialist")
	assert.Contains(t, sp, "requiredTools")
}
