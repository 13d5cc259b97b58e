package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/agentforge/internal/agent"
	"github.com/dusk-indust/agentforge/internal/generator"
	"github.com/dusk-indust/agentforge/internal/mcptools"
	"github.com/dusk-indust/agentforge/internal/orchestrator"
	"github.com/dusk-indust/agentforge/internal/scaffold"
)

func newServeMCPCommand(flags *globalFlags) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server on stdio",
		Long:  "serve-mcp exposes generate_project, validate_config, check_project_status and list_runs as MCP tools. Use --http to serve streamable HTTP instead of stdio.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}
			gen, err := newGenerator(settings)
			if err != nil {
				return err
			}

			// stdout carries the MCP transport, so logs go to stderr.
			logger := newLogger(os.Stderr, settings.Verbose)
			writer := scaffold.NewWriter(
				scaffold.WithGit(settings.Git),
				scaffold.WithLint(!settings.DisableLint),
				scaffold.WithLogger(logger),
			)
			ctrl := orchestrator.NewController(gen, writer, settings.Orchestrator(logger))
			defer ctrl.Close()

			var runs mcptools.RunJournal
			j, err := openJournal(settings)
			if err != nil {
				logger.Warn("journal unavailable", "err", err)
			} else if j != nil {
				defer j.Close()
				runs = j
			}

			server := mcptools.NewForgeMCPServer(mcptools.NewForgeService(ctrl, settings.OutputDir, runs))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if httpAddr != "" {
				logger.Info("serving MCP over HTTP", "addr", httpAddr)
				return mcptools.RunHTTP(ctx, server, httpAddr)
			}
			return mcptools.RunStdio(ctx, server)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}

func newAgentsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage the specialist A2A agents",
	}
	cmd.AddCommand(newAgentsServeCommand(flags))
	return cmd
}

func newAgentsServeCommand(flags *globalFlags) *cobra.Command {
	var basePort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner, tool-builder and agent-builder agents over A2A",
		Long:  "serve starts one A2A server per generator role on consecutive ports from --base-port. Set agents.remote in agentforge.yml to route generate through them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("base-port") {
				settings.Agents.BasePort = basePort
			}
			// The agents themselves always call the model.
			gen, err := newModelGenerator(settings)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry := agent.NewRegistry(gen)
			agents, err := registry.SpawnAll(ctx, settings.Agents.BasePort)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			endpoints := agent.Endpoints(settings.Agents.BasePort)
			for _, ag := range agents {
				card := ag.Card()
				fmt.Fprintf(out, "%s %s\n", stateStyle.Render(card.Name), endpoints[roleOf(ag)])
			}
			fmt.Fprintln(out, dimStyle.Render("press Ctrl+C to stop"))

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return registry.StopAll(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&basePort, "base-port", 0, "first port; roles take consecutive ports (default: 41240)")
	return cmd
}

// roleOf returns the generator role a spawned specialist serves.
func roleOf(ag agent.Agent) generator.Role {
	if sp, ok := ag.(*agent.SpecialistAgent); ok {
		return sp.Role()
	}
	return ""
}
