package project

import "fmt"

// PlaceholderVersion is the version constraint used for every dependency the
// pipeline adds on its own. Versions are left unpinned.
const PlaceholderVersion = "latest"

// DefaultDependencies is the base package set of a freshly initialised
// project.
var DefaultDependencies = []string{"@mastra/core", "@ai-sdk/openai", "zod"}

// InitParams are the plan-derived inputs of the init stage.
type InitParams struct {
	ProjectName    string
	Description    string
	EntryPointKind EntryKind

	// Dependencies overrides DefaultDependencies when non-empty.
	Dependencies map[string]string
}

// Init creates an empty configuration. The entry point gets a provisional
// name that SetEntryPoint later replaces.
func Init(p InitParams) (*Configuration, error) {
	if !p.EntryPointKind.Valid() {
		return nil, fmt.Errorf("init: invalid entry point kind %q", p.EntryPointKind)
	}

	deps := make(map[string]string)
	if len(p.Dependencies) > 0 {
		for k, v := range p.Dependencies {
			deps[k] = v
		}
	} else {
		for _, name := range DefaultDependencies {
			deps[name] = PlaceholderVersion
		}
	}

	return &Configuration{
		ProjectName:  p.ProjectName,
		Description:  p.Description,
		Dependencies: deps,
		EntryPoint: EntryPoint{
			Kind: p.EntryPointKind,
			Name: p.EntryPointKind.ProvisionalName(),
		},
		Agents:    []AgentSpec{},
		Tools:     []ToolSpec{},
		Workflows: []WorkflowSpec{},
	}, nil
}

// AddTool appends t and merges its dependencies plus any extra names. A
// dependency already present keeps its version. Name collisions are left
// for Validate to report.
func AddTool(c *Configuration, t ToolSpec, extraDeps ...string) *Configuration {
	out := c.Clone()
	names := append(append([]string(nil), t.Dependencies...), extraDeps...)
	t.Dependencies = nil
	out.Tools = append(out.Tools, t)
	MergeDependencies(out, names...)
	return out
}

// MergeDependencies inserts each name not already present with the
// placeholder version. It mutates c and is only called on fresh clones.
func MergeDependencies(c *Configuration, names ...string) {
	if c.Dependencies == nil {
		c.Dependencies = make(map[string]string)
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := c.Dependencies[name]; ok {
			continue
		}
		c.Dependencies[name] = PlaceholderVersion
	}
}

// AddAgent appends a. Tool references are checked by Validate.
func AddAgent(c *Configuration, a AgentSpec) *Configuration {
	out := c.Clone()
	a.Tools = append(make([]string, 0, len(a.Tools)), a.Tools...)
	out.Agents = append(out.Agents, a)
	return out
}

// AddWorkflow appends w.
func AddWorkflow(c *Configuration, w WorkflowSpec) *Configuration {
	out := c.Clone()
	out.Workflows = append(out.Workflows, cloneWorkflow(w))
	return out
}

// SetEntryPoint replaces the entry point wholesale. Existence is checked by
// Validate.
func SetEntryPoint(c *Configuration, ep EntryPoint) *Configuration {
	out := c.Clone()
	out.EntryPoint = ep
	return out
}
