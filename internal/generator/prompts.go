package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/dusk-indust/agentforge/internal/project"
)

// systemPrompts holds the role instructions given to model-backed
// generators. The record schema is appended by systemPrompt.
var systemPrompts = map[Role]string{
	RolePlanner: `You are the planning specialist of an agent project generator.
Decompose the user's request into the tools and agents of a TypeScript agent
project built on @mastra/core.

Rules:
- Tool and agent names are camelCase and unique.
- List tools before the agents that use them; keep each list in build order.
- Choose entryPoint "workflow" only when the request describes a multi-step
  process; otherwise use "agent".
- Set entryPointName to the agent or workflow that should be the project's
  entry point.
- When the request is a question that needs no project, put the reply in
  "answer" and leave requiredTools and requiredAgents empty.`,

	RoleToolBuilder: `You are the tool-building specialist of an agent project generator.
Write one tool for a TypeScript @mastra/core project.

Rules:
- inputSchema and outputSchema are zod expressions such as
  z.object({ city: z.string() }).
- code is the body of an async execute({ context }) function. It reads its
  input from context and returns a value matching outputSchema.
- List every npm package the code imports in dependencies.
- Do not import other generated tools.`,

	RoleAgentBuilder: `You are the agent-building specialist of an agent project generator.
Write one agent for a TypeScript @mastra/core project.

Rules:
- instructions are the agent's system prompt, written in the second person.
- tools may only name tools from the provided list of built tools.
- model is a provider/model selector such as openai/gpt-4o-mini.`,
}

// systemPrompt returns the role instructions followed by the schema the
// reply must satisfy.
func systemPrompt(role Role, schema *jsonschema.Schema) string {
	var b strings.Builder
	b.WriteString(systemPrompts[role])
	if schema != nil {
		if data, err := json.MarshalIndent(schema, "", "  "); err == nil {
			b.WriteString("\n\nReply with a single JSON object that conforms to this JSON Schema and nothing else:\n")
			b.Write(data)
		}
	}
	return b.String()
}

// PlanInput is the context for a planning call.
type PlanInput struct {
	Request string

	// Existing is the configuration being extended, if any.
	Existing *project.Configuration

	// ContextLimit caps the bytes of Existing embedded in the prompt. Zero
	// means no cap.
	ContextLimit int
}

func planPrompt(in PlanInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request:\n%s\n", strings.TrimSpace(in.Request))

	if in.Existing != nil {
		data, err := in.Existing.Marshal()
		if err == nil {
			text := string(data)
			if in.ContextLimit > 0 && len(text) > in.ContextLimit {
				text = text[:in.ContextLimit] + "\n... (truncated)"
			}
			b.WriteString("\nThe project already exists. Plan only the additions the request needs; ")
			b.WriteString("do not list tools or agents that are already built.\n")
			fmt.Fprintf(&b, "Existing configuration:\n%s\n", text)
		}
	}
	return b.String()
}

// ToolInput is the context for a tool-building call.
type ToolInput struct {
	Requirement ToolRequirement
	Overview    string
	BuiltTools  []string
}

func toolPrompt(in ToolInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project overview:\n%s\n\n", in.Overview)
	fmt.Fprintf(&b, "Build the tool %q.\nPurpose: %s\n", in.Requirement.Name, in.Requirement.Purpose)
	if in.Requirement.Reasoning != "" {
		fmt.Fprintf(&b, "Why it is needed: %s\n", in.Requirement.Reasoning)
	}
	if len(in.BuiltTools) > 0 {
		fmt.Fprintf(&b, "\nTools already built (do not duplicate): %s\n", strings.Join(in.BuiltTools, ", "))
	}
	return b.String()
}

// AgentInput is the context for an agent-building call.
type AgentInput struct {
	Requirement AgentRequirement
	Overview    string
	Tools       []project.ToolSpec
}

func agentPrompt(in AgentInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project overview:\n%s\n\n", in.Overview)
	fmt.Fprintf(&b, "Build the agent %q.\nRole: %s\n", in.Requirement.Name, in.Requirement.Role)
	if in.Requirement.Reasoning != "" {
		fmt.Fprintf(&b, "Why it is needed: %s\n", in.Requirement.Reasoning)
	}
	if len(in.Tools) == 0 {
		b.WriteString("\nNo tools are available; leave tools empty.\n")
		return b.String()
	}
	b.WriteString("\nBuilt tools:\n")
	for _, t := range in.Tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	return b.String()
}
