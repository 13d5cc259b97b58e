// Package project holds the configuration model threaded through every
// pipeline stage, and the pure stage operations that grow it.
package project

import (
	"fmt"
	"strings"
)

// EntryKind selects whether the generated project's entry point is an agent
// or a workflow.
type EntryKind string

const (
	EntryAgent    EntryKind = "agent"
	EntryWorkflow EntryKind = "workflow"
)

// ParseEntryKind accepts "agent" or "workflow" in any letter case and returns
// the canonical kind.
func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(strings.ToLower(strings.TrimSpace(s))) {
	case EntryAgent:
		return EntryAgent, nil
	case EntryWorkflow:
		return EntryWorkflow, nil
	default:
		return "", fmt.Errorf("invalid entry point kind %q: want %q or %q", s, EntryAgent, EntryWorkflow)
	}
}

// FoldEntryKind lowercases and trims v when it is a string so that a raw
// JSON value can be checked against the lowercase kind enum. Other values are
// returned unchanged.
func FoldEntryKind(v any) any {
	if s, ok := v.(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return v
}

// Valid reports whether k is one of the two known kinds.
func (k EntryKind) Valid() bool {
	return k == EntryAgent || k == EntryWorkflow
}

// ProvisionalName is the placeholder entry name set by Init and later
// overwritten by SetEntryPoint.
func (k EntryKind) ProvisionalName() string {
	if k == EntryWorkflow {
		return "mainWorkflow"
	}
	return "mainAgent"
}

// EntryPoint names the agent or workflow that is the generated project's
// main executable unit.
type EntryPoint struct {
	Kind EntryKind `json:"kind" jsonschema:"agent or workflow"`
	Name string    `json:"name" jsonschema:"name of an agent or workflow in this configuration"`
}

// AgentSpec describes one generated agent.
type AgentSpec struct {
	Name         string   `json:"name" jsonschema:"unique agent name (camelCase)"`
	Instructions string   `json:"instructions" jsonschema:"behavioural instructions handed to the model"`
	Model        string   `json:"model" jsonschema:"model selector, e.g. openai/gpt-4o-mini"`
	Tools        []string `json:"tools" jsonschema:"names of tools this agent may call"`
	Description  string   `json:"description,omitempty" jsonschema:"short human readable summary"`
}

// ToolSpec describes one generated tool. InputSchema, OutputSchema and Code
// are opaque text carried through to the scaffold.
type ToolSpec struct {
	Name         string `json:"name" jsonschema:"unique tool name (camelCase)"`
	Description  string `json:"description" jsonschema:"what the tool does"`
	InputSchema  string `json:"inputSchema" jsonschema:"zod schema source for the tool input"`
	OutputSchema string `json:"outputSchema,omitempty" jsonschema:"zod schema source for the tool output"`
	Code         string `json:"code" jsonschema:"TypeScript body of the execute function"`

	// Dependencies are package names the tool needs. They are merged into
	// Configuration.Dependencies by AddTool and are not kept on the stored
	// tool.
	Dependencies []string `json:"dependencies,omitempty" jsonschema:"npm packages the tool code imports"`
}

// WorkflowStep is one step of a workflow.
type WorkflowStep struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Config map[string]string `json:"config,omitempty"`
}

// WorkflowSpec describes one generated workflow.
type WorkflowSpec struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  string         `json:"inputSchema"`
	OutputSchema string         `json:"outputSchema"`
	Steps        []WorkflowStep `json:"steps"`
}

// Configuration is the accumulating description of the project being
// generated. Stage operations never mutate their input; they return a new
// value built from a Clone.
type Configuration struct {
	ProjectName  string            `json:"projectName"`
	Description  string            `json:"description"`
	Dependencies map[string]string `json:"dependencies"`
	EntryPoint   EntryPoint        `json:"entryPoint"`
	Agents       []AgentSpec       `json:"agents"`
	Tools        []ToolSpec        `json:"tools"`
	Workflows    []WorkflowSpec    `json:"workflows,omitempty"`
}

// Clone returns a deep copy of c.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := &Configuration{
		ProjectName:  c.ProjectName,
		Description:  c.Description,
		Dependencies: make(map[string]string, len(c.Dependencies)),
		EntryPoint:   c.EntryPoint,
		Agents:       make([]AgentSpec, 0, len(c.Agents)),
		Tools:        make([]ToolSpec, 0, len(c.Tools)),
		Workflows:    make([]WorkflowSpec, 0, len(c.Workflows)),
	}
	for k, v := range c.Dependencies {
		out.Dependencies[k] = v
	}
	for _, a := range c.Agents {
		a.Tools = append(make([]string, 0, len(a.Tools)), a.Tools...)
		out.Agents = append(out.Agents, a)
	}
	for _, t := range c.Tools {
		t.Dependencies = append([]string(nil), t.Dependencies...)
		out.Tools = append(out.Tools, t)
	}
	for _, w := range c.Workflows {
		out.Workflows = append(out.Workflows, cloneWorkflow(w))
	}
	return out
}

// cloneWorkflow copies w including its step configs.
func cloneWorkflow(w WorkflowSpec) WorkflowSpec {
	steps := make([]WorkflowStep, 0, len(w.Steps))
	for _, s := range w.Steps {
		if s.Config != nil {
			cfg := make(map[string]string, len(s.Config))
			for k, v := range s.Config {
				cfg[k] = v
			}
			s.Config = cfg
		}
		steps = append(steps, s)
	}
	w.Steps = steps
	return w
}

// ToolNames returns tool names in configuration order.
func (c *Configuration) ToolNames() []string {
	names := make([]string, 0, len(c.Tools))
	for _, t := range c.Tools {
		names = append(names, t.Name)
	}
	return names
}

// AgentNames returns agent names in configuration order.
func (c *Configuration) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for _, a := range c.Agents {
		names = append(names, a.Name)
	}
	return names
}

// HasAgent reports whether an agent with the given name exists.
func (c *Configuration) HasAgent(name string) bool {
	for _, a := range c.Agents {
		if a.Name == name {
			return true
		}
	}
	return false
}

// HasTool reports whether a tool with the given name exists.
func (c *Configuration) HasTool(name string) bool {
	for _, t := range c.Tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// HasWorkflow reports whether a workflow with the given name exists.
func (c *Configuration) HasWorkflow(name string) bool {
	for _, w := range c.Workflows {
		if w.Name == name {
			return true
		}
	}
	return false
}
