package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/agentforge/internal/orchestrator"
)

var (
	stateStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	workingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// styleProgress renders one progress line.
func styleProgress(ev orchestrator.ProgressEvent) string {
	line := orchestrator.FormatProgress(ev)
	if ev.Item == "" {
		return stateStyle.Render(line)
	}
	switch ev.Status {
	case orchestrator.ProgressWorking:
		return workingStyle.Render(line)
	case orchestrator.ProgressComplete:
		return completeStyle.Render(line)
	case orchestrator.ProgressFailed:
		return failedStyle.Render(line)
	default:
		return dimStyle.Render(line)
	}
}

// printEnvelope writes the human-readable outcome of a run.
func printEnvelope(w io.Writer, env orchestrator.Envelope, verbose bool) {
	fmt.Fprintln(w)
	switch {
	case env.ResponseType == orchestrator.ResponseQuery:
		fmt.Fprintln(w, env.Message)
	case env.Succeeded():
		fmt.Fprintln(w, completeStyle.Render("✓ "+env.Message))
		if env.ProjectPath != "" {
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("path:"), env.ProjectPath)
		}
	default:
		fmt.Fprintln(w, failedStyle.Render("✗ "+env.Message))
		for _, e := range env.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	for _, line := range env.Logs {
		if strings.HasPrefix(line, "warning: ") {
			fmt.Fprintln(w, warnStyle.Render("  "+line))
		} else if verbose {
			fmt.Fprintln(w, dimStyle.Render("  "+line))
		}
	}
	fmt.Fprintf(w, "%s\n", dimStyle.Render(fmt.Sprintf("run %s, %d steps", env.RunID, env.Steps)))
}
