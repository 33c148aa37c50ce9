// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for lfqrun.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lfqrun/lfqrun/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lfqrun",
		Short: "Launch the nf-core/proteomicslfq pipeline on shared storage",
		Long: TitleStyle.Render("lfqrun") + SubtitleStyle.Render(" - launch nf-core/proteomicslfq on shared storage") + `

lfqrun validates the pipeline parameters, provisions a shared volume for the
execution, copies the pipeline sources onto it and runs Nextflow there. The
Nextflow log is stored after the run, whatever its outcome.

` + SubtitleStyle.Render("Examples:") + `
  lfqrun run --input sample.sdrf --database proteins.fasta
  lfqrun run --params-file params.yaml --dry-run
  lfqrun params list            List every pipeline parameter
  lfqrun params show enzyme     Describe one parameter
  lfqrun config show            Show the effective configuration`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.installLogger()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().BoolVar(&app.logJSON, "log-json", false, "write diagnostic logs as JSON lines")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/lfqrun/config.cue)")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newParamsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process. Pipeline failures exit with
// the pipeline's own code.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
