// Package export renders a configuration in forms meant for people and
// other tools.
package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/agentforge/internal/project"
)

// Mermaid produces a Mermaid flowchart of cfg. The entry point points at its
// agent or workflow, agents point at their tools and workflows at their
// steps. References to tools or agents that do not exist are drawn dashed.
func Mermaid(cfg *project.Configuration) string {
	// Node IDs are alphanumeric only.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := getID("entry")
	fmt.Fprintf(&sb, "  %s([\"%s\"])\n", entry, label(cfg.ProjectName))

	if len(cfg.Agents) > 0 {
		fmt.Fprintf(&sb, "  subgraph %s[\"agents\"]\n", getID("agents_cluster"))
		for _, a := range cfg.Agents {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID("agent:"+a.Name), label(a.Name))
		}
		sb.WriteString("  end\n")
	}
	if len(cfg.Tools) > 0 {
		fmt.Fprintf(&sb, "  subgraph %s[\"tools\"]\n", getID("tools_cluster"))
		for _, t := range cfg.Tools {
			fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", getID("tool:"+t.Name), label(t.Name))
		}
		sb.WriteString("  end\n")
	}
	for _, w := range cfg.Workflows {
		fmt.Fprintf(&sb, "  subgraph %s[\"%s\"]\n", getID("workflow:"+w.Name), label(w.Name))
		for _, s := range w.Steps {
			fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", getID("step:"+w.Name+"/"+s.ID), label(s.ID))
		}
		sb.WriteString("  end\n")
	}

	switch cfg.EntryPoint.Kind {
	case project.EntryWorkflow:
		edge(&sb, entry, getID("workflow:"+cfg.EntryPoint.Name), cfg.EntryPoint.Name, cfg.HasWorkflow(cfg.EntryPoint.Name))
	default:
		edge(&sb, entry, getID("agent:"+cfg.EntryPoint.Name), cfg.EntryPoint.Name, cfg.HasAgent(cfg.EntryPoint.Name))
	}

	for _, a := range cfg.Agents {
		for _, t := range a.Tools {
			edge(&sb, getID("agent:"+a.Name), getID("tool:"+t), t, cfg.HasTool(t))
		}
	}

	for _, w := range cfg.Workflows {
		var prev string
		for _, s := range w.Steps {
			id := getID("step:" + w.Name + "/" + s.ID)
			if prev != "" {
				fmt.Fprintf(&sb, "  %s --> %s\n", prev, id)
			}
			prev = id
			if agent := s.Config["agent"]; agent != "" {
				edge(&sb, id, getID("agent:"+agent), agent, cfg.HasAgent(agent))
			}
		}
	}

	return sb.String()
}

// edge writes a solid arrow, or a dashed one to an inline "(missing)" node
// when the target does not exist.
func edge(sb *strings.Builder, from, to, name string, resolved bool) {
	if resolved {
		fmt.Fprintf(sb, "  %s --> %s\n", from, to)
		return
	}
	fmt.Fprintf(sb, "  %s -.-> %s[\"%s (missing)\"]\n", from, to, label(name))
}

// label escapes characters Mermaid treats specially inside quoted labels.
func label(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
