package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/dusk-indust/agentforge/internal/project"
)

// ToolRequirement is one tool the planner decided the project needs.
type ToolRequirement struct {
	Name      string `json:"name" jsonschema:"camelCase tool name"`
	Purpose   string `json:"purpose" jsonschema:"what the tool does"`
	Reasoning string `json:"reasoning" jsonschema:"why the project needs it"`
}

// AgentRequirement is one agent the planner decided the project needs.
type AgentRequirement struct {
	Name      string `json:"name" jsonschema:"camelCase agent name"`
	Role      string `json:"role" jsonschema:"the agent's responsibility"`
	Reasoning string `json:"reasoning" jsonschema:"why the project needs it"`
}

// Plan is the planner's structured decomposition of a request.
type Plan struct {
	ProjectName     string             `json:"projectName" jsonschema:"kebab-case project name"`
	ProjectOverview string             `json:"projectOverview" jsonschema:"one paragraph description of the project"`
	RequiredTools   []ToolRequirement  `json:"requiredTools" jsonschema:"tools to build, in build order"`
	RequiredAgents  []AgentRequirement `json:"requiredAgents" jsonschema:"agents to build, in build order"`
	Dependencies    []string           `json:"dependencies" jsonschema:"npm packages the project needs"`
	EntryPoint      project.EntryKind  `json:"entryPoint" jsonschema:"agent or workflow"`
	EntryPointName  string             `json:"entryPointName,omitempty" jsonschema:"name of the agent or workflow to expose as the entry point"`
	Recommendations []string           `json:"recommendations" jsonschema:"free-form advice for the user"`

	// Answer is set when the request is a question rather than a build
	// request. A plan with an answer and no tools or agents is a query.
	Answer string `json:"answer,omitempty" jsonschema:"direct answer when the request is a question and nothing should be built"`
}

// IsQuery reports whether the plan answers a question instead of describing
// a project.
func (p *Plan) IsQuery() bool {
	return p.Answer != "" && len(p.RequiredTools) == 0 && len(p.RequiredAgents) == 0
}

// ToolDraft is the tool builder's output.
type ToolDraft struct {
	Name         string   `json:"name" jsonschema:"camelCase tool name"`
	Description  string   `json:"description" jsonschema:"what the tool does"`
	InputSchema  string   `json:"inputSchema" jsonschema:"zod schema source for the input, e.g. z.object({ city: z.string() })"`
	OutputSchema string   `json:"outputSchema,omitempty" jsonschema:"zod schema source for the output"`
	Code         string   `json:"code" jsonschema:"TypeScript body of the execute function; receives { context } and returns the output"`
	Dependencies []string `json:"dependencies,omitempty" jsonschema:"npm packages imported by the code"`
}

// Spec converts the draft into a configuration tool.
func (d ToolDraft) Spec() project.ToolSpec {
	return project.ToolSpec{
		Name:         d.Name,
		Description:  d.Description,
		InputSchema:  d.InputSchema,
		OutputSchema: d.OutputSchema,
		Code:         d.Code,
		Dependencies: append([]string(nil), d.Dependencies...),
	}
}

// AgentDraft is the agent builder's output.
type AgentDraft struct {
	Name         string   `json:"name" jsonschema:"camelCase agent name"`
	Instructions string   `json:"instructions" jsonschema:"system instructions for the agent"`
	Model        string   `json:"model" jsonschema:"model selector, e.g. openai/gpt-4o-mini"`
	Tools        []string `json:"tools" jsonschema:"names of already built tools the agent may call"`
	Description  string   `json:"description,omitempty" jsonschema:"short summary"`
}

// Spec converts the draft into a configuration agent.
func (d AgentDraft) Spec() project.AgentSpec {
	return project.AgentSpec{
		Name:         d.Name,
		Instructions: d.Instructions,
		Model:        d.Model,
		Tools:        append(make([]string, 0, len(d.Tools)), d.Tools...),
		Description:  d.Description,
	}
}

// recordSchema pairs the published schema of a record type with its
// resolved form used for validation.
type recordSchema struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	// fold rewrites the decoded instance before it is validated.
	fold func(map[string]any)
}

func newRecordSchema[T any](tweak func(*jsonschema.Schema), fold func(map[string]any)) func() (recordSchema, error) {
	return sync.OnceValues(func() (recordSchema, error) {
		s, err := jsonschema.For[T](nil)
		if err != nil {
			return recordSchema{}, err
		}
		// Models often add commentary keys; tolerate them at the top level.
		s.AdditionalProperties = nil
		if tweak != nil {
			tweak(s)
		}
		r, err := s.Resolve(nil)
		if err != nil {
			return recordSchema{}, err
		}
		return recordSchema{schema: s, resolved: r, fold: fold}, nil
	})
}

var (
	planSchema = newRecordSchema[Plan](func(s *jsonschema.Schema) {
		if ep := s.Properties["entryPoint"]; ep != nil {
			ep.Enum = []any{string(project.EntryAgent), string(project.EntryWorkflow)}
		}
	}, func(m map[string]any) {
		if ep, ok := m["entryPoint"]; ok {
			m["entryPoint"] = project.FoldEntryKind(ep)
		}
	})
	toolSchema  = newRecordSchema[ToolDraft](nil, nil)
	agentSchema = newRecordSchema[AgentDraft](nil, nil)
)

// PlanSchema returns the JSON Schema of the planner record.
func PlanSchema() (*jsonschema.Schema, error) {
	rs, err := planSchema()
	return rs.schema, err
}

// ToolSchema returns the JSON Schema of the tool builder record.
func ToolSchema() (*jsonschema.Schema, error) {
	rs, err := toolSchema()
	return rs.schema, err
}

// AgentSchema returns the JSON Schema of the agent builder record.
func AgentSchema() (*jsonschema.Schema, error) {
	rs, err := agentSchema()
	return rs.schema, err
}

// decodeRecord checks raw against the schema and decodes it into out.
func decodeRecord(rs recordSchema, raw json.RawMessage, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("empty record")
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("unparsable record: %w", err)
	}
	if m, ok := instance.(map[string]any); ok && rs.fold != nil {
		rs.fold(m)
	}
	if err := rs.resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema mismatch: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
