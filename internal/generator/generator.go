// Package generator defines the content-generation capability the pipeline
// depends on: one interface configured for three roles, the structured
// records each role returns, and the backends that implement it.
package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Role selects which kind of record a Generator produces.
type Role string

const (
	RolePlanner      Role = "planner"
	RoleToolBuilder  Role = "tool-builder"
	RoleAgentBuilder Role = "agent-builder"
)

// AllRoles returns every role in pipeline order.
func AllRoles() []Role {
	return []Role{RolePlanner, RoleToolBuilder, RoleAgentBuilder}
}

func (r Role) String() string { return string(r) }

// Request is one generation call. Schema describes the record the caller
// expects back; backends may use it to constrain or prompt the model.
type Request struct {
	Role   Role               `json:"role"`
	Prompt string             `json:"prompt"`
	Schema *jsonschema.Schema `json:"schema,omitempty"`
}

// Generator produces one structured JSON record per call. Implementations
// must honour ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, req Request) (json.RawMessage, error)

// Generate calls f(ctx, req).
func (f Func) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	return f(ctx, req)
}

// GenerationFailure reports that a role could not produce a usable record:
// transport error, timeout, unparsable output or schema mismatch.
type GenerationFailure struct {
	Role  Role
	Cause error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Role, e.Cause)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Cause
}

func fail(role Role, format string, args ...any) *GenerationFailure {
	return &GenerationFailure{Role: role, Cause: fmt.Errorf(format, args...)}
}
