package agent

import (
	"context"
	"time"

	"github.com/dusk-indust/agentforge/internal/a2a"
)

// Compile-time interface checks.
var (
	_ Agent       = (*BaseAgent)(nil)
	_ a2a.Handler = (*BaseAgent)(nil)
)

// ProcessFunc is the function that specialist agents implement to handle
// incoming messages. It receives the task (in WORKING state) and the message,
// and returns artifacts to attach to the completed task.
type ProcessFunc func(ctx context.Context, task *a2a.Task, msg a2a.Message) ([]a2a.Artifact, error)

// BaseAgent provides shared boilerplate for specialist agents. Every message
// is handled synchronously, so tasks are never stored: the reply carries the
// terminal state.
type BaseAgent struct {
	server  *a2a.Server
	card    a2a.AgentCard
	process ProcessFunc
}

// NewBaseAgent creates a BaseAgent with the given card and process function.
func NewBaseAgent(card a2a.AgentCard, process ProcessFunc) *BaseAgent {
	b := &BaseAgent{
		card:    card,
		process: process,
	}
	b.server = a2a.NewServer(card, b)
	return b
}

// Card returns the agent's A2A Agent Card.
func (b *BaseAgent) Card() a2a.AgentCard {
	return b.card
}

// HandleTask runs the process function and returns the task in COMPLETED or
// FAILED state. On failure the task is returned along with the error.
func (b *BaseAgent) HandleTask(ctx context.Context, task a2a.Task, msg a2a.Message) (*a2a.Task, error) {
	task.Status = a2a.TaskStatus{
		State:     a2a.TaskStateWorking,
		Timestamp: time.Now(),
	}

	artifacts, err := b.process(ctx, &task, msg)
	if err != nil {
		task.Status = a2a.TaskStatus{
			State:     a2a.TaskStateFailed,
			Timestamp: time.Now(),
			Message:   &a2a.Message{MessageID: a2a.NewID(), Role: a2a.RoleAgent, Parts: []a2a.Part{a2a.TextPart(err.Error())}},
		}
		return &task, err
	}

	task.Status = a2a.TaskStatus{
		State:     a2a.TaskStateCompleted,
		Timestamp: time.Now(),
	}
	task.Artifacts = artifacts
	return &task, nil
}

// Start launches the agent's HTTP server on the given address.
func (b *BaseAgent) Start(ctx context.Context, addr string) error {
	return b.server.Start(ctx, addr)
}

// Stop gracefully shuts down the agent.
func (b *BaseAgent) Stop(ctx context.Context) error {
	return b.server.Stop(ctx)
}

// HandleSendMessage creates a task from the incoming message and processes
// it. A failed task is returned to the caller rather than an RPC error so the
// reason travels in the task status.
func (b *BaseAgent) HandleSendMessage(ctx context.Context, req a2a.SendMessageRequest) (*a2a.Task, error) {
	task := a2a.Task{
		ID:        a2a.NewID(),
		ContextID: req.Message.ContextID,
	}
	result, err := b.HandleTask(ctx, task, req.Message)
	if result != nil {
		return result, nil
	}
	return nil, err
}
