package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/dusk-indust/agentforge/internal/generator"
)

// AgentFactory is a constructor that creates an Agent.
type AgentFactory func() Agent

// Registry maps generator roles to their factory constructors and manages
// the lifecycle of spawned agents.
type Registry struct {
	mu        sync.Mutex
	factories map[generator.Role]AgentFactory
	spawned   []Agent
}

// NewRegistry creates a Registry with a specialist for every role, all
// backed by gen.
func NewRegistry(gen generator.Generator) *Registry {
	r := &Registry{
		factories: make(map[generator.Role]AgentFactory),
	}
	for _, role := range generator.AllRoles() {
		role := role
		r.factories[role] = func() Agent { return NewSpecialistAgent(role, gen) }
	}
	return r
}

// Register replaces the factory for role.
func (r *Registry) Register(role generator.Role, f AgentFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[role] = f
}

// Spawn creates a single agent by role using the registered factory.
func (r *Registry) Spawn(role generator.Role) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory, ok := r.factories[role]
	if !ok {
		return nil, fmt.Errorf("no factory registered for role %q", role)
	}
	ag := factory()
	r.spawned = append(r.spawned, ag)
	return ag, nil
}

// Endpoints returns the URL each role listens on after SpawnAll(basePort).
func Endpoints(basePort int) map[generator.Role]string {
	eps := make(map[generator.Role]string)
	for i, role := range generator.AllRoles() {
		eps[role] = fmt.Sprintf("http://127.0.0.1:%d", basePort+i)
	}
	return eps
}

// SpawnAll creates all registered agents, assigns sequential ports starting
// from basePort in role order, and starts each agent's HTTP server.
func (r *Registry) SpawnAll(ctx context.Context, basePort int) ([]Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var agents []Agent
	for i, role := range generator.AllRoles() {
		factory, ok := r.factories[role]
		if !ok {
			stopReverse(ctx, agents)
			return nil, fmt.Errorf("no factory registered for role %q", role)
		}

		ag := factory()
		addr := fmt.Sprintf("127.0.0.1:%d", basePort+i)
		if err := ag.Start(ctx, addr); err != nil {
			stopReverse(ctx, agents)
			return nil, fmt.Errorf("start agent %q on %s: %w", role, addr, err)
		}

		agents = append(agents, ag)
	}

	r.spawned = append(r.spawned, agents...)
	return agents, nil
}

// StopAll gracefully stops all spawned agents in reverse order.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for i := len(r.spawned) - 1; i >= 0; i-- {
		if err := r.spawned[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.spawned = nil
	return firstErr
}

func stopReverse(ctx context.Context, agents []Agent) {
	for j := len(agents) - 1; j >= 0; j-- {
		_ = agents[j].Stop(ctx)
	}
}
