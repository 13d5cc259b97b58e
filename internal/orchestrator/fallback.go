package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/agentforge/internal/generator"
	"github.com/dusk-indust/agentforge/internal/project"
)

// placeholderTool synthesizes a deterministic tool for a requirement whose
// generation failed. The stub logs its input and echoes it back.
func placeholderTool(req generator.ToolRequirement) project.ToolSpec {
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		purpose = "Placeholder for " + req.Name
	}
	return project.ToolSpec{
		Name:         req.Name,
		Description:  purpose,
		InputSchema:  "z.object({}).passthrough()",
		OutputSchema: "z.object({ ok: z.boolean(), input: z.any() })",
		Code: fmt.Sprintf(`console.log(%q, context);
return { ok: true, input: context };`, req.Name+" called with"),
	}
}

// placeholderAgent synthesizes a deterministic agent for a requirement whose
// generation failed. It may call every tool built so far.
func placeholderAgent(req generator.AgentRequirement, tools []string, model string) project.AgentSpec {
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = req.Name
	}
	return project.AgentSpec{
		Name: req.Name,
		Instructions: fmt.Sprintf("You are %s. Your role: %s. Use the available tools when they help you fulfil this role.",
			req.Name, role),
		Model:       model,
		Tools:       append(make([]string, 0, len(tools)), tools...),
		Description: role,
	}
}

// mainWorkflowName is the name of the workflow synthesized for workflow
// entry points.
const mainWorkflowName = "mainWorkflow"

// sequentialWorkflow builds a workflow that runs each agent in order.
func sequentialWorkflow(cfg *project.Configuration) project.WorkflowSpec {
	steps := make([]project.WorkflowStep, 0, len(cfg.Agents))
	for _, a := range cfg.Agents {
		steps = append(steps, project.WorkflowStep{
			ID:     a.Name + "Step",
			Type:   "agent",
			Config: map[string]string{"agent": a.Name},
		})
	}
	desc := cfg.Description
	if desc == "" {
		desc = "Runs every agent in sequence"
	}
	return project.WorkflowSpec{
		Name:         mainWorkflowName,
		Description:  desc,
		InputSchema:  "z.object({ input: z.string() })",
		OutputSchema: "z.object({ output: z.string() })",
		Steps:        steps,
	}
}

// chooseEntryPoint picks the plan-declared name when it names an entry of
// the right kind, else the first one built. With nothing to point at the
// provisional name stays so validation reports it.
func chooseEntryPoint(cfg *project.Configuration, kind project.EntryKind, declared string) project.EntryPoint {
	ep := project.EntryPoint{Kind: kind, Name: cfg.EntryPoint.Name}

	switch kind {
	case project.EntryWorkflow:
		if declared != "" && cfg.HasWorkflow(declared) {
			ep.Name = declared
		} else if len(cfg.Workflows) > 0 {
			ep.Name = cfg.Workflows[0].Name
		}
	default:
		if declared != "" && cfg.HasAgent(declared) {
			ep.Name = declared
		} else if len(cfg.Agents) > 0 {
			ep.Name = cfg.Agents[0].Name
		}
	}
	if ep.Name == "" {
		ep.Name = kind.ProvisionalName()
	}
	return ep
}
