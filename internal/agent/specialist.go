package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/agentforge/internal/a2a"
	"github.com/dusk-indust/agentforge/internal/generator"
)

// SpecialistAgent serves one generator role over A2A by delegating to a
// local Generator.
type SpecialistAgent struct {
	*BaseAgent
	role generator.Role
	gen  generator.Generator
}

// NewSpecialistAgent creates the agent for role backed by gen.
func NewSpecialistAgent(role generator.Role, gen generator.Generator) *SpecialistAgent {
	sa := &SpecialistAgent{role: role, gen: gen}
	sa.BaseAgent = NewBaseAgent(specialistCard(role), sa.process)
	return sa
}

// Role returns the generator role this agent serves.
func (sa *SpecialistAgent) Role() generator.Role {
	return sa.role
}

func (sa *SpecialistAgent) process(ctx context.Context, _ *a2a.Task, msg a2a.Message) ([]a2a.Artifact, error) {
	data, err := msg.FirstData()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sa.role, err)
	}

	var req generator.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%s: decode request: %w", sa.role, err)
	}
	if req.Role == "" {
		req.Role = sa.role
	}
	if req.Role != sa.role {
		return nil, fmt.Errorf("%s agent cannot serve role %q", sa.role, req.Role)
	}

	record, err := sa.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	return []a2a.Artifact{{
		ArtifactID: a2a.NewID(),
		Name:       string(sa.role) + "-record",
		Parts:      []a2a.Part{{Data: record, MediaType: "application/json"}},
	}}, nil
}

var roleDescriptions = map[generator.Role]string{
	generator.RolePlanner:      "Decomposes a project request into required tools and agents",
	generator.RoleToolBuilder:  "Writes one tool definition for a generated project",
	generator.RoleAgentBuilder: "Writes one agent definition for a generated project",
}

func specialistCard(role generator.Role) a2a.AgentCard {
	return a2a.AgentCard{
		Name:        string(role) + "-agent",
		Description: roleDescriptions[role],
		Version:     "dev",
		Skills: []a2a.AgentSkill{
			{
				ID:          string(role),
				Name:        string(role),
				Description: roleDescriptions[role],
				Tags:        []string{"generation", string(role)},
			},
		},
		DefaultInputModes:  []string{"application/json"},
		DefaultOutputModes: []string{"application/json"},
	}
}
