// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"

	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/internal/execute"
	"github.com/lfqrun/lfqrun/internal/issue"
	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/runtime"
	"github.com/lfqrun/lfqrun/internal/workspace"
	"github.com/lfqrun/lfqrun/pkg/params"

	"github.com/spf13/cobra"
)

// volumePlaceholder stands in for the volume name in dry-run output.
const volumePlaceholder = "<provisioned at run time>"

type runOptions struct {
	paramsFile    string
	executionName string
	dryRun        bool
}

func newRunCommand(app *App) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Provision storage and run the pipeline",
		Long: `Run nf-core/proteomicslfq with the given parameters.

Every pipeline parameter is a flag of this command. Values from --params-file
are applied first and flags given on the command line override them. Missing
optional parameters fall back to their defaults; the pipeline never sees an
absent value.

The command exits with the pipeline's own exit code when the pipeline fails,
and with 1 for every other failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd, opts)
		},
	}

	runCmd.Flags().StringVar(&opts.paramsFile, "params-file", "", "YAML, JSON or TOML file with parameter values")
	runCmd.Flags().StringVar(&opts.executionName, "execution-name", "", "execution name used in the log location (default $"+ExecutionNameEnv+")")
	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the resolved command without provisioning or running anything")
	addParamFlags(runCmd, app.Registry)

	return runCmd
}

// addParamFlags registers one typed flag per parameter. Flags are only read
// back when changed, so flag defaults are informational.
func addParamFlags(cmd *cobra.Command, reg *params.Registry) {
	fs := cmd.Flags()
	for _, spec := range reg.Specs() {
		usage := spec.Summary()
		if spec.Required {
			usage += " (required)"
		}
		switch spec.Kind {
		case params.KindBool:
			def, _ := spec.Default.Interface().(bool)
			fs.Bool(spec.Name, def, usage)
		case params.KindInt:
			def, _ := spec.Default.Interface().(int64)
			fs.Int64(spec.Name, def, usage)
		case params.KindFloat:
			def, _ := spec.Default.Interface().(float64)
			fs.Float64(spec.Name, def, usage)
		default:
			fs.String(spec.Name, spec.Default.Token(), usage)
		}
	}
}

// collectValues reads the params file, if any, and layers the changed
// parameter flags over it.
func collectValues(cmd *cobra.Command, reg *params.Registry, paramsFile string) (params.Values, error) {
	values := params.Values{}
	if paramsFile != "" {
		fromFile, err := reg.LoadFile(paramsFile)
		if err != nil {
			return nil, err
		}
		values = fromFile
	}

	var errs []error
	fromFlags := params.Values{}
	for _, spec := range reg.Specs() {
		f := cmd.Flags().Lookup(spec.Name)
		if f == nil || !f.Changed {
			continue
		}
		v, err := spec.ParseValue(f.Value.String())
		if err != nil {
			errs = append(errs, &execute.ConfigurationError{Param: spec.Name, Err: err})
			continue
		}
		fromFlags.Set(spec.Name, v)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values.Merge(fromFlags), nil
}

func (a *App) runPipeline(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()

	cfg, src, err := a.loadConfig(ctx)
	if err != nil {
		return a.fail(cmd, err)
	}
	logger := a.logger
	if src != "" {
		logger.Debug("loaded configuration", "path", src)
	}

	values, err := collectValues(cmd, a.Registry, opts.paramsFile)
	if err != nil {
		return a.fail(cmd, describeRunError(err, cfg, opts.paramsFile))
	}

	builder, err := a.newBuilder(cfg, a.executionName(opts.executionName), logger)
	if err != nil {
		return a.fail(cmd, describeRunError(err, cfg, opts.paramsFile))
	}

	if opts.dryRun {
		plan, err := builder.Plan(values)
		if err != nil {
			return a.fail(cmd, describeRunError(err, cfg, opts.paramsFile))
		}
		printPlan(a.stdout, plan)
		return nil
	}

	out, err := builder.Execute(ctx, values)
	if err != nil {
		return a.fail(cmd, describeRunError(err, cfg, opts.paramsFile))
	}

	fmt.Fprintf(a.stderr, "\n%s pipeline finished (execution %s)\n", SuccessStyle.Render("✓"), out.ExecutionID)
	if out.LogLocation != "" {
		fmt.Fprintf(a.stderr, "  %s %s\n", VerboseStyle.Render("log:"), out.LogLocation)
	}
	if out.LogUploadErr != nil {
		styled := fmt.Sprintf("  %s %v\n", WarningStyle.Render("log upload failed:"), out.LogUploadErr)
		warn := newServiceError(out.LogUploadErr, issue.LogUploadFailedId, styled)
		renderServiceError(a.stderr, warn, a.verbose, a.colorScheme, a.logger)
	}
	return nil
}

// fail renders err with its issue entry and converts it to an ExitError
// carrying the process exit code.
func (a *App) fail(cmd *cobra.Command, err error) error {
	issueID, styled := classifyExecutionError(err, a.verbose)
	svcErr := newServiceError(err, issueID, styled)
	renderServiceError(a.stderr, svcErr, a.verbose, a.colorScheme, a.logger)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: exitCodeFor(err), Err: svcErr}
}

// describeRunError attaches the failed step and remediation hints to err.
// Errors that already carry that context are returned unchanged.
func describeRunError(err error, cfg *config.Config, paramsFile string) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().Wrap(err)
	switch {
	case errors.Is(err, params.ErrParamsFile):
		ec.WithOperation("load params file").
			WithResource(paramsFile).
			WithSuggestion("Use a YAML, JSON or TOML mapping of parameter names to values").
			WithSuggestion("Run 'lfqrun params list' to see the declared parameters")
	case errors.Is(err, execute.ErrMissingParameter),
		errors.Is(err, execute.ErrUnknownParameter),
		errors.Is(err, params.ErrInvalidValue):
		ec.WithOperation("resolve parameters").
			WithSuggestion("Run 'lfqrun params list' to see types and required parameters")
	case errors.Is(err, provision.ErrMissingToken):
		ec.WithOperation("provision storage").
			WithResource(cfg.Provision.Endpoint).
			WithSuggestion(fmt.Sprintf("Set %s to the execution token issued by the platform", cfg.Provision.TokenEnv))
	case errors.Is(err, provision.ErrProvisioning), errors.Is(err, provision.ErrInvalidConfig):
		ec.WithOperation("provision storage").
			WithResource(cfg.Provision.Endpoint).
			WithSuggestion("Check that the storage dispatcher is reachable from this host")
	case errors.Is(err, workspace.ErrMaterialization):
		ec.WithOperation("materialize workspace").
			WithResource(cfg.Workspace.SharedDir).
			WithSuggestion("Check that the shared volume is mounted and writable")
	case errors.Is(err, execute.ErrSubprocessFailure):
		ec.WithOperation("run pipeline").
			WithResource(cfg.Pipeline.Binary).
			WithSuggestion("Inspect the pipeline output above and " + filepath.Join(cfg.Workspace.SharedDir, cfg.Logs.File))
	case errors.Is(err, execute.ErrConfiguration):
		ec.WithOperation("prepare execution").
			WithSuggestion("Run 'lfqrun config show' to review the effective configuration")
	default:
		return err
	}
	return ec.BuildError()
}

// printPlan writes the resolved launch of a dry run. The volume entry is a
// placeholder since nothing was provisioned.
func printPlan(w io.Writer, plan *execute.Plan) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("WorkDir:"), plan.WorkDir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, CmdStyle.Render("  Command:"))
	fmt.Fprintf(w, "    %s\n", plan.CommandLine())

	flags := plan.Flags()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d set\n", CmdStyle.Render("  Parameters:"), len(flags)/2)
	for i := 0; i+1 < len(flags); i += 2 {
		fmt.Fprintf(w, "    %s\n", execute.QuoteCommand(flags[i:i+2]))
	}

	env := maps.Clone(plan.Env)
	env[execute.VolumeEnv] = volumePlaceholder
	fmt.Fprintln(w)
	fmt.Fprintln(w, CmdStyle.Render("  Environment:"))
	for _, entry := range runtime.EnvToSlice(env) {
		fmt.Fprintf(w, "    %s\n", entry)
	}
	fmt.Fprintln(w)
}
