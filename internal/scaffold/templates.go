package scaffold

import (
	"embed"
	"encoding/json"
	"strings"
	"text/template"
)

// templateFS holds the TypeScript and config templates for generated
// projects.
//
//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("scaffold").Funcs(template.FuncMap{
	"quote":  quote,
	"indent": indent,
	"join":   strings.Join,
}).ParseFS(templateFS, "templates/*.tmpl"))

// quote renders s as a double-quoted string literal valid in TypeScript.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// indent prefixes every non-empty line of s with n spaces.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

type agentView struct {
	Agent    agentSpecView
	Provider string
	ModelID  string
}

type agentSpecView struct {
	Name         string
	Description  string
	Instructions string
	Tools        []string
}

type stepView struct {
	ID    string
	Var   string
	Agent string
}

type workflowView struct {
	Workflow workflowSpecView
	Agents   []string
	Steps    []stepView
}

type workflowSpecView struct {
	Name         string
	Description  string
	InputSchema  string
	OutputSchema string
}

type indexView struct {
	ProjectName string
	EntryKind   string
	EntryName   string
	Agents      []string
	Workflows   []string
}

// splitModel turns a "provider/model" selector into the AI SDK provider
// import and model id. A bare model id is served by openai.
func splitModel(model string) (provider, id string) {
	provider, id, ok := strings.Cut(strings.TrimSpace(model), "/")
	if !ok {
		return "openai", provider
	}
	provider = strings.ToLower(provider)
	if !isIdentifier(provider) {
		return "openai", id
	}
	return provider, id
}

// isIdentifier reports whether s is a plain TypeScript identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
