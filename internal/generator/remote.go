package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/agentforge/internal/a2a"
)

// RemoteGenerator sends each request to a specialist agent over A2A. The
// request travels as a JSON data part; the record comes back as the first
// data part of the task's artifacts.
type RemoteGenerator struct {
	client    a2a.Client
	endpoints map[Role]string
	contextID string
}

// Compile-time interface check.
var _ Generator = (*RemoteGenerator)(nil)

// NewRemoteGenerator creates a generator that routes each role to its
// endpoint. All calls share one A2A context id.
func NewRemoteGenerator(client a2a.Client, endpoints map[Role]string) *RemoteGenerator {
	eps := make(map[Role]string, len(endpoints))
	for r, url := range endpoints {
		eps[r] = url
	}
	return &RemoteGenerator{client: client, endpoints: eps, contextID: a2a.NewID()}
}

// Generate implements Generator.
func (g *RemoteGenerator) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	endpoint, ok := g.endpoints[req.Role]
	if !ok {
		return nil, fmt.Errorf("no endpoint for role %q", req.Role)
	}

	part, err := a2a.DataPart(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	task, err := g.client.SendMessage(ctx, endpoint, a2a.SendMessageRequest{
		Message: a2a.Message{
			MessageID: a2a.NewID(),
			ContextID: g.contextID,
			Role:      a2a.RoleUser,
			Parts:     []a2a.Part{part},
		},
	})
	if err != nil {
		return nil, err
	}

	if task.Status.State != a2a.TaskStateCompleted {
		reason := string(task.Status.State)
		if task.Status.Message != nil {
			if text := task.Status.Message.Text(); text != "" {
				reason = text
			}
		}
		return nil, fmt.Errorf("%s agent: task %s: %s", req.Role, task.ID, reason)
	}

	return task.FirstData()
}
