package generator

import (
	"context"

	"github.com/dusk-indust/agentforge/internal/project"
)

// RequestPlan asks the planner to decompose a request. The returned plan has
// a canonical entry point kind and non-nil lists.
func RequestPlan(ctx context.Context, g Generator, in PlanInput) (*Plan, error) {
	rs, err := planSchema()
	if err != nil {
		return nil, fail(RolePlanner, "plan schema: %w", err)
	}

	raw, err := g.Generate(ctx, Request{Role: RolePlanner, Prompt: planPrompt(in), Schema: rs.schema})
	if err != nil {
		return nil, &GenerationFailure{Role: RolePlanner, Cause: err}
	}

	var plan Plan
	if err := decodeRecord(rs, raw, &plan); err != nil {
		return nil, &GenerationFailure{Role: RolePlanner, Cause: err}
	}

	kind, err := project.ParseEntryKind(string(plan.EntryPoint))
	if err != nil {
		return nil, &GenerationFailure{Role: RolePlanner, Cause: err}
	}
	plan.EntryPoint = kind

	if plan.RequiredTools == nil {
		plan.RequiredTools = []ToolRequirement{}
	}
	if plan.RequiredAgents == nil {
		plan.RequiredAgents = []AgentRequirement{}
	}
	return &plan, nil
}

// RequestTool asks the tool builder for one tool. A draft without a name
// takes the requirement's name.
func RequestTool(ctx context.Context, g Generator, in ToolInput) (*ToolDraft, error) {
	rs, err := toolSchema()
	if err != nil {
		return nil, fail(RoleToolBuilder, "tool schema: %w", err)
	}

	raw, err := g.Generate(ctx, Request{Role: RoleToolBuilder, Prompt: toolPrompt(in), Schema: rs.schema})
	if err != nil {
		return nil, &GenerationFailure{Role: RoleToolBuilder, Cause: err}
	}

	var draft ToolDraft
	if err := decodeRecord(rs, raw, &draft); err != nil {
		return nil, &GenerationFailure{Role: RoleToolBuilder, Cause: err}
	}
	if draft.Name == "" {
		draft.Name = in.Requirement.Name
	}
	return &draft, nil
}

// RequestAgent asks the agent builder for one agent.
func RequestAgent(ctx context.Context, g Generator, in AgentInput) (*AgentDraft, error) {
	rs, err := agentSchema()
	if err != nil {
		return nil, fail(RoleAgentBuilder, "agent schema: %w", err)
	}

	raw, err := g.Generate(ctx, Request{Role: RoleAgentBuilder, Prompt: agentPrompt(in), Schema: rs.schema})
	if err != nil {
		return nil, &GenerationFailure{Role: RoleAgentBuilder, Cause: err}
	}

	var draft AgentDraft
	if err := decodeRecord(rs, raw, &draft); err != nil {
		return nil, &GenerationFailure{Role: RoleAgentBuilder, Cause: err}
	}
	if draft.Name == "" {
		draft.Name = in.Requirement.Name
	}
	if draft.Tools == nil {
		draft.Tools = []string{}
	}
	return &draft, nil
}
