// Package orchestrator runs one generation pipeline: plan, initialise,
// build tools, build agents, finalise. The Controller owns the step budget
// and always answers with an Envelope.
package orchestrator

import (
	"context"

	"github.com/dusk-indust/agentforge/internal/project"
)

// State is a position in the pipeline state machine.
type State int

const (
	StatePlanning State = iota
	StateInitializing
	StateBuildingTools
	StateBuildingAgents
	StateFinalizing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	names := [...]string{
		"planning",
		"initializing",
		"building-tools",
		"building-agents",
		"finalizing",
		"succeeded",
		"failed",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// IsTerminal reports whether no further transition can happen from s.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ResponseType distinguishes a generated project from a direct answer.
type ResponseType string

const (
	ResponseFinalConfig ResponseType = "FinalConfig"
	ResponseQuery       ResponseType = "QueryResponse"
)

// Status is the overall outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Envelope is the result of a run. FinalConfig is nil whenever Status is
// failure or the run answered a query.
type Envelope struct {
	RunID        string                 `json:"runId"`
	ResponseType ResponseType           `json:"responseType"`
	Status       Status                 `json:"status"`
	Message      string                 `json:"message"`
	FinalConfig  *project.Configuration `json:"finalConfig"`
	ProjectPath  string                 `json:"projectPath,omitempty"`
	Errors       []string               `json:"errors,omitempty"`
	Logs         []string               `json:"logs,omitempty"`
	Steps        int                    `json:"steps"`
}

// Succeeded reports whether the run finished with status success.
func (e Envelope) Succeeded() bool {
	return e.Status == StatusSuccess
}

// RunRequest is the input of one run.
type RunRequest struct {
	// Request is the user's free-text request.
	Request string

	// Existing, when set, is the configuration to extend. It replaces the
	// init stage.
	Existing *project.Configuration

	// OutputDir overrides Config.OutputDir for this run.
	OutputDir string
}

// ProgressEvent is emitted during a run.
type ProgressEvent struct {
	RunID   string
	State   State
	Item    string
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of one item within a pipeline state.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Runner executes pipeline runs.
type Runner interface {
	// Run executes one pipeline run. It never returns an error; failures are
	// reported in the Envelope.
	Run(ctx context.Context, req RunRequest) Envelope

	// Progress returns a channel that emits progress events.
	Progress() <-chan ProgressEvent
}
