package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

// errRunFailed is returned when a run ends with a failure envelope. The
// envelope has already been printed.
var errRunFailed = errors.New("run failed")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	ConfigDir string
	Verbose   bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "agentforge",
		Short:         "Generate multi-agent TypeScript projects from a request",
		Long:          "agentforge plans, builds and writes agent projects: tools, agents and an entry point, produced by a language model and checked before anything is written.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.ConfigDir, "config-dir", ".", "directory holding agentforge.yml")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCommand(&flags))
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newStatusCommand(&flags))
	rootCmd.AddCommand(newDiagramCommand())
	rootCmd.AddCommand(newRunsCommand(&flags))
	rootCmd.AddCommand(newServeMCPCommand(&flags))
	rootCmd.AddCommand(newAgentsCommand(&flags))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
