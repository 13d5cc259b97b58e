package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/agentforge/internal/orchestrator"
	"github.com/dusk-indust/agentforge/internal/scaffold"
)

func newGenerateCommand(flags *globalFlags) *cobra.Command {
	var (
		editPath  string
		outputDir string
		maxSteps  int
		parallel  int
		git       bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "generate <request...>",
		Short: "Plan, build and write an agent project",
		Long:  "Generate turns a free-text request into a validated agent project. With --edit it extends an existing agentforge.json instead, and questions about that project are answered without writing anything.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				settings.OutputDir = outputDir
			}
			if cmd.Flags().Changed("max-steps") {
				settings.MaxSteps = maxSteps
			}
			if cmd.Flags().Changed("parallel") {
				settings.Parallelism = parallel
			}
			if cmd.Flags().Changed("git") {
				settings.Git = git
			}

			req := orchestrator.RunRequest{Request: strings.Join(args, " ")}
			if editPath != "" {
				existing, err := readConfigFile(editPath)
				if err != nil {
					return err
				}
				req.Existing = existing
			}

			gen, err := newGenerator(settings)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), settings.Verbose)
			writer := scaffold.NewWriter(
				scaffold.WithGit(settings.Git),
				scaffold.WithLint(!settings.DisableLint),
				scaffold.WithLogger(logger),
			)
			ctrl := orchestrator.NewController(gen, writer, settings.Orchestrator(logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			done := make(chan struct{})
			go func() {
				defer close(done)
				for ev := range ctrl.Progress() {
					if !asJSON {
						fmt.Fprintln(out, styleProgress(ev))
					}
				}
			}()

			env := ctrl.Run(ctx, req)
			ctrl.Close()
			<-done

			j, err := openJournal(settings)
			if err != nil {
				logger.Warn("journal unavailable", "err", err)
			} else if j != nil {
				if _, err := j.Record(context.WithoutCancel(ctx), req.Request, env); err != nil {
					logger.Warn("journal record failed", "err", err)
				}
				j.Close()
			}

			if asJSON {
				data, err := json.MarshalIndent(env, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				printEnvelope(out, env, settings.Verbose)
			}

			if !env.Succeeded() {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&editPath, "edit", "", "extend the project described by this agentforge.json")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory projects are written under (default: generated)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget for the run (default: 25)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "number of tools or agents built concurrently")
	cmd.Flags().BoolVar(&git, "git", false, "commit the generated tree to a git repository")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run envelope as JSON")
	return cmd
}
