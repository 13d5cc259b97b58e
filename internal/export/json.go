package export

import (
	"encoding/json"
	"sort"

	"github.com/dusk-indust/agentforge/internal/project"
)

// ConfigSummary is the top-level JSON summary structure.
type ConfigSummary struct {
	ProjectName  string             `json:"projectName"`
	Description  string             `json:"description,omitempty"`
	EntryPoint   project.EntryPoint `json:"entryPoint"`
	Counts       Counts             `json:"counts"`
	Tools        []string           `json:"tools"`
	Agents       []AgentSummary     `json:"agents"`
	Workflows    []WorkflowSummary  `json:"workflows,omitempty"`
	Dependencies []string           `json:"dependencies"`
}

// Counts totals each kind of entity.
type Counts struct {
	Tools        int `json:"tools"`
	Agents       int `json:"agents"`
	Workflows    int `json:"workflows"`
	Dependencies int `json:"dependencies"`
}

// AgentSummary describes one agent without its instructions.
type AgentSummary struct {
	Name  string   `json:"name"`
	Model string   `json:"model"`
	Tools []string `json:"tools"`
}

// WorkflowSummary lists a workflow's step IDs in order.
type WorkflowSummary struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

// Summarize builds a ConfigSummary from cfg. Dependencies are rendered as
// sorted "name@version" strings.
func Summarize(cfg *project.Configuration) ConfigSummary {
	s := ConfigSummary{
		ProjectName:  cfg.ProjectName,
		Description:  cfg.Description,
		EntryPoint:   cfg.EntryPoint,
		Tools:        cfg.ToolNames(),
		Agents:       make([]AgentSummary, 0, len(cfg.Agents)),
		Dependencies: make([]string, 0, len(cfg.Dependencies)),
		Counts: Counts{
			Tools:        len(cfg.Tools),
			Agents:       len(cfg.Agents),
			Workflows:    len(cfg.Workflows),
			Dependencies: len(cfg.Dependencies),
		},
	}
	for _, a := range cfg.Agents {
		tools := append(make([]string, 0, len(a.Tools)), a.Tools...)
		s.Agents = append(s.Agents, AgentSummary{Name: a.Name, Model: a.Model, Tools: tools})
	}
	for _, w := range cfg.Workflows {
		steps := make([]string, 0, len(w.Steps))
		for _, st := range w.Steps {
			steps = append(steps, st.ID)
		}
		s.Workflows = append(s.Workflows, WorkflowSummary{Name: w.Name, Steps: steps})
	}
	for name, version := range cfg.Dependencies {
		s.Dependencies = append(s.Dependencies, name+"@"+version)
	}
	sort.Strings(s.Dependencies)
	return s
}

// Summary renders Summarize(cfg) as indented JSON.
func Summary(cfg *project.Configuration) ([]byte, error) {
	return json.MarshalIndent(Summarize(cfg), "", "  ")
}
