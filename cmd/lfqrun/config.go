// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/internal/issue"

	"github.com/spf13/cobra"
)

const redacted = "********"

// newConfigCommand creates the `lfqrun config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage lfqrun configuration",
		Long: `Manage lfqrun configuration.

Configuration is stored in:
  - Linux: ~/.config/lfqrun/config.cue
  - macOS: ~/Library/Application Support/lfqrun/config.cue
  - Windows: %APPDATA%\lfqrun\config.cue

Every setting can be overridden with an LFQRUN_ variable named after its
key, for example LFQRUN_PROVISION_STORAGE_GIB=200.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath()
		},
	})

	return cfgCmd
}

func (a *App) showConfig(cmd *cobra.Command) error {
	cfg, src, err := a.loadConfig(cmd.Context())
	if err != nil {
		return a.fail(cmd, err)
	}

	if src != "" {
		fmt.Fprintf(a.stderr, "%s %s\n\n", CmdStyle.Render("Config file:"), src)
	} else {
		fmt.Fprintf(a.stderr, "%s %s\n\n", CmdStyle.Render("Config file:"), SubtitleStyle.Render("(using defaults)"))
	}

	shown := *cfg
	if shown.ObjectStore.SecretKey != "" {
		shown.ObjectStore.SecretKey = redacted
	}
	fmt.Fprint(a.stdout, config.GenerateCUE(&shown))
	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("create config").
			WithResource(path).
			WithSuggestion("Check that the config directory is writable").
			Wrap(err).
			BuildError()
	}

	if created {
		fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	} else {
		fmt.Fprintf(a.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("•"), path)
	}
	return nil
}

func (a *App) showConfigPath() error {
	if a.configPath != "" {
		fmt.Fprintf(a.stdout, "Config file: %s\n", a.configPath)
		return nil
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(a.stdout, "Config file: %s\n", cfgPath)
	return nil
}
