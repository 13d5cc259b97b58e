package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/agentforge/internal/export"
	"github.com/dusk-indust/agentforge/internal/project"
	"github.com/dusk-indust/agentforge/internal/status"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <agentforge.json>",
		Short: "Validate a serialized configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := readConfigFile(args[0])
			if err != nil {
				return err
			}
			res := project.Validate(cfg)
			if res.IsValid {
				fmt.Fprintln(out, completeStyle.Render(fmt.Sprintf("✓ %s is valid", cfg.ProjectName)))
				return nil
			}
			fmt.Fprintln(out, failedStyle.Render(fmt.Sprintf("✗ %s is invalid", cfg.ProjectName)))
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			return errRunFailed
		},
	}
}

func newStatusCommand(flags *globalFlags) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show generated projects and whether each tree is complete",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				settings, err := loadSettings(flags)
				if err != nil {
					return err
				}
				outputDir = settings.OutputDir
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				printProjectStatus(cmd, status.Check(args[0], outputDir), true)
				return nil
			}

			projects, ok := status.List(outputDir)
			if !ok || len(projects) == 0 {
				fmt.Fprintf(out, "No projects found in %s.\n", outputDir)
				fmt.Fprintln(out, "Run 'agentforge generate <request>' to create one.")
				return nil
			}
			for _, st := range projects {
				printProjectStatus(cmd, st, false)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory projects are written under (default: generated)")
	return cmd
}

func printProjectStatus(cmd *cobra.Command, st status.ProjectStatus, detail bool) {
	out := cmd.OutOrStdout()
	label := completeStyle.Render("[valid]")
	if !st.IsValid {
		label = failedStyle.Render("[incomplete]")
	}
	if !st.Exists {
		label = dimStyle.Render("[missing]")
	}
	fmt.Fprintf(out, "%-30s %s  %s\n", st.Name, label, dimStyle.Render(st.Message))
	if detail {
		for _, f := range st.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}
}

func newDiagramCommand() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "diagram <agentforge.json>",
		Short: "Print a Mermaid flowchart of a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfigFile(args[0])
			if err != nil {
				return err
			}
			if summary {
				data, err := export.Summary(cfg)
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), export.Mermaid(cfg))
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print a JSON summary instead of a diagram")
	return cmd
}

func newRunsCommand(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List journaled runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}
			if settings.NoJournal {
				return fmt.Errorf("run journal is disabled")
			}
			j, err := openJournal(settings)
			if err != nil {
				return err
			}
			defer j.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				e, err := j.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "run:      %s\n", e.ID)
				fmt.Fprintf(out, "created:  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "request:  %s\n", e.Request)
				fmt.Fprintf(out, "status:   %s (%s, %d steps)\n", e.Status, e.ResponseType, e.Steps)
				fmt.Fprintf(out, "message:  %s\n", e.Message)
				if e.ProjectPath != "" {
					fmt.Fprintf(out, "path:     %s\n", e.ProjectPath)
				}
				for _, msg := range e.Errors {
					fmt.Fprintf(out, "  - %s\n", msg)
				}
				return nil
			}

			entries, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, e := range entries {
				st := completeStyle.Render(e.Status)
				if e.Status != "success" {
					st = failedStyle.Render(e.Status)
				}
				fmt.Fprintf(out, "%s  %s  %-7s  %s\n",
					dimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
					e.ID[:min(8, len(e.ID))], st, truncate(e.Request, 60))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	return cmd
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
