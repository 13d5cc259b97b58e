package project

import "fmt"

// ValidationResult is the outcome of Validate. A non-empty Errors list is a
// normal return value, not a failure of Validate itself.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks the configuration invariants and reports every defect it
// finds. It never mutates c and always returns the same result for the same
// input.
//
// Errors are ordered: entry point, dangling tool references (agent order,
// then reference order), duplicate tool/agent/workflow names, duplicate
// workflow step ids.
func Validate(c *Configuration) ValidationResult {
	errs := []string{}

	switch c.EntryPoint.Kind {
	case EntryAgent:
		if !c.HasAgent(c.EntryPoint.Name) {
			errs = append(errs, fmt.Sprintf("entry point agent '%s' not found", c.EntryPoint.Name))
		}
	case EntryWorkflow:
		if !c.HasWorkflow(c.EntryPoint.Name) {
			errs = append(errs, fmt.Sprintf("entry point workflow '%s' not found", c.EntryPoint.Name))
		}
	default:
		errs = append(errs, fmt.Sprintf("entry point kind '%s' is not agent or workflow", c.EntryPoint.Kind))
	}

	tools := make(map[string]bool, len(c.Tools))
	for _, t := range c.Tools {
		tools[t.Name] = true
	}
	for _, a := range c.Agents {
		for _, name := range a.Tools {
			if !tools[name] {
				errs = append(errs, fmt.Sprintf("tool '%s' used by agent '%s' not found in tools list", name, a.Name))
			}
		}
	}

	errs = append(errs, duplicates("tool", c.ToolNames())...)
	errs = append(errs, duplicates("agent", c.AgentNames())...)

	workflowNames := make([]string, 0, len(c.Workflows))
	for _, w := range c.Workflows {
		workflowNames = append(workflowNames, w.Name)
	}
	errs = append(errs, duplicates("workflow", workflowNames)...)

	for _, w := range c.Workflows {
		ids := make([]string, 0, len(w.Steps))
		for _, s := range w.Steps {
			ids = append(ids, s.ID)
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				errs = append(errs, fmt.Sprintf("duplicate step id '%s' in workflow '%s'", id, w.Name))
				continue
			}
			seen[id] = true
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// duplicates reports one error per repeated occurrence of a name.
func duplicates(kind string, names []string) []string {
	var errs []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			errs = append(errs, fmt.Sprintf("duplicate %s name '%s'", kind, name))
			continue
		}
		seen[name] = true
	}
	return errs
}
