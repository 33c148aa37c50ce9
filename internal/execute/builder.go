// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/google/uuid"
	"mvdan.cc/sh/v3/syntax"

	"github.com/lfqrun/lfqrun/internal/artifact"
	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/runtime"
	"github.com/lfqrun/lfqrun/internal/workspace"
	"github.com/lfqrun/lfqrun/pkg/params"
)

type (
	// Materializer prepares the workspace directory of an execution.
	Materializer interface {
		Materialize(ctx context.Context) (*workspace.Stats, error)
	}

	// Options wires the collaborators of a Builder.
	//
	// Registry, Provisioner, Runner and Uploader are required. Config defaults
	// to DefaultConfig, Materializer to a workspace.Materializer built from
	// Config and Logger to slog.Default.
	Options struct {
		Config       *Config
		Registry     *params.Registry
		Provisioner  provision.Provisioner
		Materializer Materializer
		Runner       runtime.Runner
		Uploader     artifact.Uploader

		// ExecutionName names the execution in the log location. When empty
		// the log upload is skipped.
		ExecutionName string

		Stdout io.Writer
		Stderr io.Writer
		Logger *slog.Logger
	}

	// Builder runs executions of one pipeline. It holds no per-execution
	// state and may run several executions in sequence.
	Builder struct {
		cfg           *Config
		registry      *params.Registry
		provisioner   provision.Provisioner
		materializer  Materializer
		runner        runtime.Runner
		uploader      artifact.Uploader
		executionName string
		stdout        io.Writer
		stderr        io.Writer
		logger        *slog.Logger
	}

	// Plan is a fully resolved launch that has not touched anything yet.
	Plan struct {
		// Values holds every parameter after defaults were applied.
		Values params.Values
		// Command is the complete argument vector.
		Command []string
		WorkDir string
		// Env is the launch environment without the volume entry, which is
		// only known after provisioning.
		Env map[string]string
	}

	// Outcome records what one execution did. Fields are filled in as the
	// steps complete, so a failed execution carries a partial Outcome.
	Outcome struct {
		// ExecutionID correlates the log records of one execution.
		ExecutionID string
		Plan        *Plan
		Volume      *provision.Volume
		Workspace   *workspace.Stats
		ExitCode    runtime.ExitCode
		// LogLocation is where the pipeline log was uploaded, or "".
		LogLocation string
		// LogUploadErr is the non-fatal upload failure, if any.
		LogUploadErr error
	}
)

// NewBuilder validates opts and returns a Builder.
func NewBuilder(opts Options) (*Builder, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var missing []string
	if opts.Registry == nil {
		missing = append(missing, "registry")
	}
	if opts.Provisioner == nil {
		missing = append(missing, "provisioner")
	}
	if opts.Runner == nil {
		missing = append(missing, "runner")
	}
	if opts.Uploader == nil {
		missing = append(missing, "uploader")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Err: fmt.Errorf("builder is missing %s", strings.Join(missing, ", "))}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mat := opts.Materializer
	if mat == nil {
		m := workspace.New(cfg.SourceDir, cfg.SharedDir)
		m.Excludes = cfg.Excludes
		m.Logger = logger
		if err := m.Validate(); err != nil {
			return nil, &ConfigurationError{Err: err}
		}
		mat = m
	}

	return &Builder{
		cfg:           cfg,
		registry:      opts.Registry,
		provisioner:   opts.Provisioner,
		materializer:  mat,
		runner:        opts.Runner,
		uploader:      opts.Uploader,
		executionName: opts.ExecutionName,
		stdout:        opts.Stdout,
		stderr:        opts.Stderr,
		logger:        logger,
	}, nil
}

// Plan resolves values and assembles the command line without any side
// effect. It fails with *ConfigurationError entries when values are invalid.
func (b *Builder) Plan(values params.Values) (*Plan, error) {
	resolved, err := ResolveValues(b.registry, values)
	if err != nil {
		return nil, err
	}
	cmd := b.cfg.CommandPrefix()
	for _, spec := range b.registry.Specs() {
		cmd = append(cmd, Translate(spec, resolved.Get(spec.Name))...)
	}
	env := make(map[string]string, len(b.cfg.Env)+1)
	maps.Copy(env, b.cfg.Env)
	return &Plan{
		Values:  resolved,
		Command: cmd,
		WorkDir: b.cfg.SharedDir,
		Env:     env,
	}, nil
}

// Execute runs one execution: plan, provision, materialize, run and upload
// the log. Any failure before the subprocess exits is fatal and returned
// together with the partial Outcome. The log upload runs whenever a volume
// was provisioned and never changes the result.
func (b *Builder) Execute(ctx context.Context, values params.Values) (*Outcome, error) {
	out := &Outcome{ExecutionID: uuid.NewString()}
	logger := b.logger.With("execution", out.ExecutionID)

	plan, err := b.Plan(values)
	if err != nil {
		return out, err
	}
	out.Plan = plan

	logger.Info("provisioning shared storage volume", "storage_gib", b.cfg.StorageGiB)
	vol, err := b.provisioner.Provision(ctx, b.cfg.StorageGiB)
	if err != nil {
		if !errors.Is(err, provision.ErrProvisioning) {
			err = &provision.ProvisioningError{Err: err}
		}
		return out, err
	}
	if vol == nil || vol.Name == "" {
		return out, &provision.ProvisioningError{Err: provision.ErrMissingVolumeName}
	}
	out.Volume = vol
	logger.Info("provisioned shared storage volume", "volume", vol.Name)

	defer b.finalize(ctx, logger, out)

	stats, err := b.materializer.Materialize(ctx)
	if err != nil {
		if !errors.Is(err, workspace.ErrMaterialization) {
			err = &workspace.MaterializationError{Err: err}
		}
		return out, err
	}
	out.Workspace = stats
	logger.Debug("materialized workspace", "dest", b.cfg.SharedDir, "files", stats.Files, "bytes", stats.Bytes)

	inv := plan.Invocation(vol.Name, b.stdout, b.stderr)
	logger.Info("launching pipeline runtime", "command", plan.CommandLine())
	res := b.runner.Run(ctx, inv)
	if res == nil {
		res = runtime.NewErrorResult(1, errors.New("runner returned no result"))
	}
	out.ExitCode = res.ExitCode
	if !res.Success() {
		// A process that never ran still fails the execution.
		if out.ExitCode.IsSuccess() {
			out.ExitCode = 1
		}
		logger.Error("pipeline runtime failed", "exit_code", out.ExitCode, "reason", out.ExitCode.Reason(), "error", res.Error)
		return out, &SubprocessFailure{Command: plan.Command, ExitCode: out.ExitCode, Err: res.Error}
	}
	logger.Info("pipeline runtime finished", "exit_code", res.ExitCode)
	return out, nil
}

// finalize uploads the pipeline log if one was written. Problems are logged
// and recorded on the Outcome only.
func (b *Builder) finalize(ctx context.Context, logger *slog.Logger, out *Outcome) {
	local := b.cfg.LogPath()
	if _, err := os.Stat(local); err != nil {
		logger.Info("no pipeline log to upload", "path", local)
		return
	}
	if b.executionName == "" {
		logger.Warn("skipping log upload, execution name is unknown")
		return
	}

	// The execution may have been interrupted; the upload still gets a
	// chance to run.
	ctx = context.WithoutCancel(ctx)
	location := artifact.RemoteKey(b.cfg.LogPrefix, b.cfg.PipelineName, b.executionName, b.cfg.logName())
	logger.Info("uploading pipeline log", "path", local, "location", location)
	if err := b.uploader.Upload(ctx, local, location); err != nil {
		out.LogUploadErr = &LogUploadError{Path: local, Location: location, Err: err}
		logger.Warn("pipeline log upload failed", "error", out.LogUploadErr)
		return
	}
	out.LogLocation = location
}

// Invocation returns the launch for the given volume.
func (p *Plan) Invocation(volume string, stdout, stderr io.Writer) *runtime.Invocation {
	env := make(map[string]string, len(p.Env)+1)
	maps.Copy(env, p.Env)
	env[VolumeEnv] = volume
	return &runtime.Invocation{
		Command: append([]string(nil), p.Command...),
		WorkDir: p.WorkDir,
		Env:     env,
		Stdout:  stdout,
		Stderr:  stderr,
	}
}

// Flags returns the parameter flags of the command line, as name and value
// token pairs.
func (p *Plan) Flags() []string {
	for i, tok := range p.Command {
		if strings.HasPrefix(tok, FlagPrefix) {
			return p.Command[i:]
		}
	}
	return nil
}

// CommandLine renders the command as one shell-quoted line.
func (p *Plan) CommandLine() string {
	return QuoteCommand(p.Command)
}

// QuoteCommand joins args into a line bash parses back into the same
// argument vector.
func QuoteCommand(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			// Only NUL bytes cannot be quoted.
			q = fmt.Sprintf("%q", arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
