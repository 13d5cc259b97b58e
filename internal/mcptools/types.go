package mcptools

// --- MCP tool types for serve-mcp ---
// These let an MCP client drive generation through structured tools instead
// of shelling out to the CLI.

// GenerateProjectInput is the input for the generate_project MCP tool.
type GenerateProjectInput struct {
	Request    string `json:"request" jsonschema:"free-text description of the agent project to build, or a question about an existing one"`
	ConfigPath string `json:"configPath,omitempty" jsonschema:"path to an existing agentforge.json to extend"`
	OutputDir  string `json:"outputDir,omitempty" jsonschema:"directory projects are written under (default: generated)"`
}

// GenerateProjectOutput is the run envelope returned by generate_project.
type GenerateProjectOutput struct {
	RunID        string   `json:"runId"`
	ResponseType string   `json:"responseType"`
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	FinalConfig  any      `json:"finalConfig"`
	ProjectPath  string   `json:"projectPath,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	Logs         []string `json:"logs,omitempty"`
	Steps        int      `json:"steps"`
}

// ValidateConfigInput is the input for the validate_config MCP tool.
type ValidateConfigInput struct {
	ConfigJSON string `json:"configJson" jsonschema:"serialized configuration (contents of agentforge.json)"`
}

// ValidateConfigOutput is the result of the validate_config MCP tool.
type ValidateConfigOutput struct {
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	ProjectName string   `json:"projectName,omitempty"`
}

// CheckProjectStatusInput is the input for the check_project_status MCP tool.
type CheckProjectStatusInput struct {
	ProjectName string `json:"projectName" jsonschema:"name of the generated project directory"`
	OutputDir   string `json:"outputDir,omitempty" jsonschema:"directory projects are written under (default: generated)"`
}

// CheckProjectStatusOutput is the result of the check_project_status MCP tool.
type CheckProjectStatusOutput struct {
	Exists  bool     `json:"exists"`
	IsValid bool     `json:"isValid"`
	Path    string   `json:"path"`
	Files   []string `json:"files"`
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message"`
}

// ListRunsInput is the input for the list_runs MCP tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return, newest first (default: 20)"`
}

// ListRunsOutput is the result of the list_runs MCP tool.
type ListRunsOutput struct {
	Runs []RunSummary `json:"runs"`
}

// RunSummary is a brief overview of one journaled run.
type RunSummary struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"createdAt"`
	Request      string `json:"request"`
	ResponseType string `json:"responseType"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	ProjectPath  string `json:"projectPath,omitempty"`
	Steps        int    `json:"steps"`
}
