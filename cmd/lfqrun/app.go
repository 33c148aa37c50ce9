// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lfqrun/lfqrun/internal/artifact"
	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/internal/execute"
	"github.com/lfqrun/lfqrun/internal/logging"
	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/runtime"
	"github.com/lfqrun/lfqrun/pkg/params"
)

const (
	// ExecutionNameEnv names the execution in uploaded log locations.
	ExecutionNameEnv = "LFQRUN_EXECUTION_NAME"
	// PlatformExecutionNameEnv is the platform-provided fallback for ExecutionNameEnv.
	PlatformExecutionNameEnv = "FLYTE_INTERNAL_EXECUTION_NAME"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: command handlers receive an App and build their
	// collaborators through it.
	App struct {
		Config   ConfigProvider
		Registry *params.Registry

		provisioner provision.Provisioner
		runner      runtime.Runner
		uploader    artifact.Uploader
		getenv      func(string) string
		stdout      io.Writer
		stderr      io.Writer
		logger      *slog.Logger

		// processLogger makes installLogger replace slog's default logger.
		// Only set when the app writes to the process stderr.
		processLogger bool

		// colorScheme selects the glamour style for Markdown output.
		colorScheme config.ColorScheme

		// Set from persistent flags.
		configPath string
		verbose    bool
		logJSON    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults, and the provisioner,
	// runner and uploader are then built from the loaded configuration.
	Dependencies struct {
		Config      ConfigProvider
		Registry    *params.Registry
		Provisioner provision.Provisioner
		Runner      runtime.Runner
		Uploader    artifact.Uploader
		Getenv      func(string) string
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	processLogger := deps.Stderr == nil
	if processLogger {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Registry == nil {
		deps.Registry = params.Default()
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}

	return &App{
		Config:        deps.Config,
		Registry:      deps.Registry,
		provisioner:   deps.Provisioner,
		runner:        deps.Runner,
		uploader:      deps.Uploader,
		getenv:        deps.Getenv,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
		logger:        slog.Default(),
		processLogger: processLogger,
		colorScheme:   config.ColorSchemeAuto,
	}
}

// loadConfig loads configuration honoring --config. A verbose config turns
// on debug logging when --verbose was not given, and the configured color
// scheme applies to all Markdown output from then on.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	cfg, src, err := a.Config.LoadWithSource(ctx, config.LoadOptions{
		ConfigFilePath: a.configPath,
		Getenv:         a.getenv,
	})
	if err != nil {
		return nil, "", err
	}
	if cfg.UI.ColorScheme != "" {
		a.colorScheme = cfg.UI.ColorScheme
	}
	if cfg.UI.Verbose && !a.verbose {
		a.verbose = true
		a.installLogger()
	}
	return cfg, src, nil
}

func (a *App) installLogger() {
	opts := logging.Options{Verbose: a.verbose, JSON: a.logJSON}
	if a.processLogger {
		a.logger = logging.Install(a.stderr, opts)
		return
	}
	a.logger = logging.New(a.stderr, opts)
}

// executionName resolves the execution name for the log location: the
// explicit value, then LFQRUN_EXECUTION_NAME, then the platform variable.
func (a *App) executionName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if name := a.getenv(ExecutionNameEnv); name != "" {
		return name
	}
	return a.getenv(PlatformExecutionNameEnv)
}

// newBuilder assembles an execution builder from cfg. Injected collaborators
// take precedence over the ones derived from configuration.
func (a *App) newBuilder(cfg *config.Config, executionName string, logger *slog.Logger) (*execute.Builder, error) {
	provisioner := a.provisioner
	if provisioner == nil {
		pc := cfg.ProvisionConfig(provision.WithGetenv(a.getenv))
		if err := pc.Validate(); err != nil {
			return nil, err
		}
		provisioner = provision.NewClient(pc).WithLogger(logger)
	}

	runner := a.runner
	if runner == nil {
		runner = runtime.NewNativeRunner(logger)
	}

	uploader := a.uploader
	if uploader == nil {
		var err error
		if uploader, err = newUploader(cfg, logger); err != nil {
			return nil, err
		}
	}

	return execute.NewBuilder(execute.Options{
		Config:        cfg.LaunchConfig(),
		Registry:      a.Registry,
		Provisioner:   provisioner,
		Runner:        runner,
		Uploader:      uploader,
		ExecutionName: executionName,
		Stdout:        a.stdout,
		Stderr:        a.stderr,
		Logger:        logger,
	})
}

// newUploader returns the object store uploader when one is enabled and a
// local directory uploader otherwise.
func newUploader(cfg *config.Config, logger *slog.Logger) (artifact.Uploader, error) {
	if !cfg.ObjectStore.Enabled {
		return artifact.NewDirUploader(cfg.Logs.DestinationDir, logger), nil
	}
	u, err := artifact.NewMinIOUploader(cfg.ArtifactConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("configuring log object store: %w", err)
	}
	return u, nil
}
