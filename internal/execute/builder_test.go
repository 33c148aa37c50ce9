// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/runtime"
	"github.com/lfqrun/lfqrun/internal/workspace"
	"github.com/lfqrun/lfqrun/pkg/params"
)

type (
	// fakeProvisioner returns a fixed volume or error and records calls.
	fakeProvisioner struct {
		volume *provision.Volume
		err    error
		calls  []int
	}

	// fakeRunner records the invocation and optionally writes the pipeline
	// log before returning result.
	fakeRunner struct {
		result   *runtime.Result
		writeLog string
		invs     []*runtime.Invocation
	}

	// fakeUploader records uploads and fails with err when set.
	fakeUploader struct {
		err     error
		uploads map[string]string
	}
)

func (p *fakeProvisioner) Provision(_ context.Context, gib int) (*provision.Volume, error) {
	p.calls = append(p.calls, gib)
	if p.err != nil {
		return nil, p.err
	}
	return p.volume, nil
}

func (r *fakeRunner) Run(_ context.Context, inv *runtime.Invocation) *runtime.Result {
	r.invs = append(r.invs, inv)
	if r.writeLog != "" {
		if err := os.WriteFile(filepath.Join(inv.WorkDir, DefaultLogFile), []byte(r.writeLog), 0o644); err != nil {
			return runtime.NewErrorResult(1, err)
		}
	}
	if r.result == nil {
		return runtime.NewSuccessResult()
	}
	return r.result
}

func (u *fakeUploader) Upload(_ context.Context, localPath, location string) error {
	if u.err != nil {
		return u.err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	if u.uploads == nil {
		u.uploads = make(map[string]string)
	}
	u.uploads[location] = string(data)
	return nil
}

type builderFixture struct {
	source      string
	shared      string
	provisioner *fakeProvisioner
	runner      *fakeRunner
	uploader    *fakeUploader
	logs        *bytes.Buffer
	opts        Options
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()

	root := t.TempDir()
	f := &builderFixture{
		source:      filepath.Join(root, "root"),
		shared:      filepath.Join(root, "nf-workdir"),
		provisioner: &fakeProvisioner{volume: &provision.Volume{Name: "pvc-1234", CapacityGiB: 100}},
		runner:      &fakeRunner{},
		uploader:    &fakeUploader{},
		logs:        &bytes.Buffer{},
	}
	if err := os.MkdirAll(filepath.Join(f.source, ".nextflow"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.source, "main.nf"), []byte("workflow {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Apply(WithSourceDir(f.source), WithSharedDir(f.shared))
	f.opts = Options{
		Config:        cfg,
		Registry:      params.Default(),
		Provisioner:   f.provisioner,
		Runner:        f.runner,
		Uploader:      f.uploader,
		ExecutionName: "exec-42",
		Logger:        slog.New(slog.NewTextHandler(f.logs, nil)),
	}
	return f
}

func (f *builderFixture) builder(t *testing.T) *Builder {
	t.Helper()

	b, err := NewBuilder(f.opts)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func TestExecute_Success(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	f.runner.writeLog = "pipeline completed\n"
	b := f.builder(t)

	out, err := b.Execute(context.Background(), mandatoryValues())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !slices.Equal(f.provisioner.calls, []int{provision.DefaultStorageGiB}) {
		t.Errorf("provision calls = %v, want [%d]", f.provisioner.calls, provision.DefaultStorageGiB)
	}
	if out.Volume == nil || out.Volume.Name != "pvc-1234" {
		t.Errorf("Outcome.Volume = %+v", out.Volume)
	}
	if out.ExecutionID == "" {
		t.Error("Outcome.ExecutionID is empty")
	}

	if _, err := os.Stat(filepath.Join(f.shared, "main.nf")); err != nil {
		t.Errorf("workspace not materialized: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.shared, ".nextflow")); !os.IsNotExist(err) {
		t.Errorf("excluded .nextflow copied into workspace: %v", err)
	}

	if len(f.runner.invs) != 1 {
		t.Fatalf("runner called %d times, want 1", len(f.runner.invs))
	}
	inv := f.runner.invs[0]
	wantPrefix := []string{
		DefaultBinary, "run", filepath.Join(f.shared, "main.nf"),
		"-work-dir", f.shared, "-profile", "docker", "-c", "latch.config",
	}
	if !slices.Equal(inv.Command[:len(wantPrefix)], wantPrefix) {
		t.Errorf("command prefix = %q, want %q", inv.Command[:len(wantPrefix)], wantPrefix)
	}
	if inv.WorkDir != f.shared {
		t.Errorf("WorkDir = %q, want %q", inv.WorkDir, f.shared)
	}
	wantEnv := map[string]string{
		"NXF_HOME":                 "/root/.nextflow",
		"NXF_OPTS":                 "-Xms2048M -Xmx8G -XX:ActiveProcessorCount=4",
		"NXF_DISABLE_CHECK_LATEST": "true",
		VolumeEnv:                  "pvc-1234",
	}
	for k, v := range wantEnv {
		if inv.Env[k] != v {
			t.Errorf("env %s = %q, want %q", k, inv.Env[k], v)
		}
	}

	wantLocation := "latch:///your_log_dir/nf_nf_core_proteomicslfq/exec-42/nextflow.log"
	if out.LogLocation != wantLocation {
		t.Errorf("LogLocation = %q, want %q", out.LogLocation, wantLocation)
	}
	if f.uploader.uploads[wantLocation] != "pipeline completed\n" {
		t.Errorf("uploads = %v", f.uploader.uploads)
	}
}

func TestExecute_MissingMandatoryParameter(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	b := f.builder(t)

	_, err := b.Execute(context.Background(), params.Values{"input": params.String("sample.sdrf")})
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("Execute() error = %v, want missing parameter configuration error", err)
	}
	if len(f.provisioner.calls) != 0 {
		t.Errorf("provisioner called %d times before parameters were valid", len(f.provisioner.calls))
	}
	if len(f.runner.invs) != 0 {
		t.Error("runner called despite configuration error")
	}
}

func TestExecute_MissingTokenStopsBeforeWorkspace(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	f.opts.Provisioner = provision.NewClient(nil, provision.WithGetenv(func(string) string { return "" }))
	b := f.builder(t)

	out, err := b.Execute(context.Background(), mandatoryValues())
	if !errors.Is(err, provision.ErrProvisioning) {
		t.Fatalf("Execute() error = %v, want ErrProvisioning", err)
	}
	if !errors.Is(err, provision.ErrMissingToken) {
		t.Errorf("Execute() error = %v, want ErrMissingToken", err)
	}
	var provErr *provision.ProvisioningError
	if !errors.As(err, &provErr) {
		t.Errorf("error %T is not a *provision.ProvisioningError", err)
	}
	if _, statErr := os.Stat(f.shared); !os.IsNotExist(statErr) {
		t.Errorf("workspace created before provisioning succeeded: %v", statErr)
	}
	if len(f.runner.invs) != 0 {
		t.Error("runner called despite provisioning failure")
	}
	if out.Volume != nil {
		t.Errorf("Outcome.Volume = %+v, want nil", out.Volume)
	}
}

func TestExecute_ProvisioningErrorIsWrapped(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	cause := errors.New("dispatcher unavailable")
	f.provisioner.err = cause
	b := f.builder(t)

	_, err := b.Execute(context.Background(), mandatoryValues())
	if !errors.Is(err, provision.ErrProvisioning) || !errors.Is(err, cause) {
		t.Fatalf("Execute() error = %v, want ProvisioningError wrapping cause", err)
	}
	if len(f.runner.invs) != 0 {
		t.Error("runner called despite provisioning failure")
	}
}

func TestExecute_ProvisionerWithoutVolume(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	f.provisioner.volume = nil
	b := f.builder(t)

	_, err := b.Execute(context.Background(), mandatoryValues())
	if !errors.Is(err, provision.ErrMissingVolumeName) {
		t.Fatalf("Execute() error = %v, want ErrMissingVolumeName", err)
	}
}

func TestExecute_MaterializationFailure(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	f.opts.Config.SourceDir = filepath.Join(t.TempDir(), "missing")
	f.runner.writeLog = "never written"
	b := f.builder(t)

	_, err := b.Execute(context.Background(), mandatoryValues())
	if !errors.Is(err, workspace.ErrMaterialization) {
		t.Fatalf("Execute() error = %v, want ErrMaterialization", err)
	}
	if len(f.runner.invs) != 0 {
		t.Error("runner called despite materialization failure")
	}
}

func TestExecute_SubprocessOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		result      *runtime.Result
		writeLog    string
		uploadErr   error
		wantErr     bool
		wantCode    runtime.ExitCode
		wantUpload  bool
		wantLogFail bool
	}{
		{
			name:     "exit 0 without log",
			result:   runtime.NewSuccessResult(),
			wantCode: 0,
		},
		{
			name:       "exit 0 with log",
			result:     runtime.NewSuccessResult(),
			writeLog:   "ok",
			wantCode:   0,
			wantUpload: true,
		},
		{
			name:        "exit 0 with failing upload",
			result:      runtime.NewSuccessResult(),
			writeLog:    "ok",
			uploadErr:   errors.New("bucket unavailable"),
			wantCode:    0,
			wantLogFail: true,
		},
		{
			name:       "non-zero exit with successful upload",
			result:     runtime.NewExitCodeResult(1),
			writeLog:   "ERROR ~ Process failed",
			wantErr:    true,
			wantCode:   1,
			wantUpload: true,
		},
		{
			name:     "non-zero exit without log",
			result:   runtime.NewExitCodeResult(137),
			wantErr:  true,
			wantCode: 137,
		},
		{
			name:     "runtime could not start",
			result:   runtime.NewErrorResult(0, os.ErrNotExist),
			wantErr:  true,
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newBuilderFixture(t)
			f.runner.result = tt.result
			f.runner.writeLog = tt.writeLog
			f.uploader.err = tt.uploadErr
			b := f.builder(t)

			out, err := b.Execute(context.Background(), mandatoryValues())
			if tt.wantErr {
				var failure *SubprocessFailure
				if !errors.As(err, &failure) {
					t.Fatalf("Execute() error = %v, want *SubprocessFailure", err)
				}
				if !errors.Is(err, ErrSubprocessFailure) {
					t.Errorf("error %v does not wrap ErrSubprocessFailure", err)
				}
				if failure.ExitCode != tt.wantCode {
					t.Errorf("SubprocessFailure.ExitCode = %d, want %d", failure.ExitCode, tt.wantCode)
				}
			} else if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			if out.ExitCode != tt.wantCode {
				t.Errorf("Outcome.ExitCode = %d, want %d", out.ExitCode, tt.wantCode)
			}
			if got := out.LogLocation != ""; got != tt.wantUpload {
				t.Errorf("uploaded = %v, want %v", got, tt.wantUpload)
			}
			if tt.wantLogFail {
				if !errors.Is(out.LogUploadErr, ErrLogUpload) {
					t.Errorf("LogUploadErr = %v, want ErrLogUpload", out.LogUploadErr)
				}
			} else if out.LogUploadErr != nil {
				t.Errorf("LogUploadErr = %v, want nil", out.LogUploadErr)
			}
		})
	}
}

func TestExecute_SkipsUploadWithoutExecutionName(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	f.opts.ExecutionName = ""
	f.runner.writeLog = "ok"
	b := f.builder(t)

	out, err := b.Execute(context.Background(), mandatoryValues())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.LogLocation != "" || len(f.uploader.uploads) != 0 {
		t.Errorf("log uploaded without execution name: %v", f.uploader.uploads)
	}
	if !strings.Contains(f.logs.String(), "skipping log upload") {
		t.Errorf("missing skip record in logs:\n%s", f.logs.String())
	}
}

func TestExecute_Idempotent(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	b := f.builder(t)

	for i := range 2 {
		if _, err := b.Execute(context.Background(), mandatoryValues()); err != nil {
			t.Fatalf("Execute() run %d error = %v", i, err)
		}
	}
	if len(f.runner.invs) != 2 {
		t.Errorf("runner called %d times, want 2", len(f.runner.invs))
	}
	if !slices.Equal(f.runner.invs[0].Command, f.runner.invs[1].Command) {
		t.Error("command differs between executions with identical values")
	}
}

func TestNewBuilder_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"missing registry", func(o *Options) { o.Registry = nil }},
		{"missing provisioner", func(o *Options) { o.Provisioner = nil }},
		{"missing runner", func(o *Options) { o.Runner = nil }},
		{"missing uploader", func(o *Options) { o.Uploader = nil }},
		{"empty binary", func(o *Options) { o.Config.Binary = "" }},
		{"zero storage", func(o *Options) { o.Config.StorageGiB = 0 }},
		{"volume env configured", func(o *Options) { o.Config.Env[VolumeEnv] = "static" }},
		{"bad exclude pattern", func(o *Options) { o.Config.Excludes = []string{"[unclosed"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newBuilderFixture(t)
			tt.mutate(&f.opts)
			if _, err := NewBuilder(f.opts); !errors.Is(err, ErrConfiguration) {
				t.Errorf("NewBuilder() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	f := newBuilderFixture(t)
	b := f.builder(t)

	plan, err := b.Plan(mandatoryValues())
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(f.provisioner.calls) != 0 {
		t.Error("Plan() provisioned storage")
	}
	if _, err := os.Stat(f.shared); !os.IsNotExist(err) {
		t.Error("Plan() materialized the workspace")
	}
	if _, ok := plan.Env[VolumeEnv]; ok {
		t.Errorf("Plan().Env contains %s before provisioning", VolumeEnv)
	}

	flags := plan.Flags()
	if len(flags) == 0 || flags[0] != "--input" {
		t.Errorf("Flags() = %q, want to start with --input", flags)
	}

	inv := plan.Invocation("pvc-9", nil, nil)
	if inv.Env[VolumeEnv] != "pvc-9" {
		t.Errorf("Invocation env %s = %q", VolumeEnv, inv.Env[VolumeEnv])
	}
	if _, ok := plan.Env[VolumeEnv]; ok {
		t.Error("Invocation() mutated the plan environment")
	}

	line := plan.CommandLine()
	if !strings.Contains(line, "--fixed_mods 'Carbamidomethyl (C)'") {
		t.Errorf("CommandLine() = %q, want quoted fixed_mods", line)
	}
}

func TestQuoteCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"nextflow", "run", "main.nf"}, "nextflow run main.nf"},
		{[]string{"--variable_mods", "Oxidation (M)"}, "--variable_mods 'Oxidation (M)'"},
		{[]string{"--decoy_affix", ""}, "--decoy_affix ''"},
		{[]string{"--email", "a'b"}, `--email "a'b"`},
	}
	for _, tt := range tests {
		if got := QuoteCommand(tt.args); got != tt.want {
			t.Errorf("QuoteCommand(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
