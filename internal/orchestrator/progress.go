package orchestrator

import (
	"fmt"
	"sync"
)

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	mu     sync.Mutex
	ch     chan ProgressEvent
	closed bool
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full or the reporter is closed, the event is silently
// dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.closed {
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Later calls are no-ops.
func (pr *ProgressReporter) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.closed {
		return
	}
	pr.closed = true
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
// Events without an item describe the state itself.
func FormatProgress(event ProgressEvent) string {
	if event.Item == "" {
		return FormatStateHeader(event)
	}
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  \u25cb %s (pending)", event.Item)
	case ProgressWorking:
		return fmt.Sprintf("  \u25cf %s...", event.Item)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  \u2713 %s complete (%s)", event.Item, event.Message)
		}
		return fmt.Sprintf("  \u2713 %s complete", event.Item)
	case ProgressFailed:
		return fmt.Sprintf("  \u2717 %s failed: %s", event.Item, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Item)
	}
}

// FormatStateHeader formats a state transition for display:
// "[{state}] {message}".
func FormatStateHeader(event ProgressEvent) string {
	if event.Message == "" {
		return fmt.Sprintf("[%s]", event.State)
	}
	return fmt.Sprintf("[%s] %s", event.State, event.Message)
}
