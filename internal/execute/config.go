// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/workspace"
	"github.com/lfqrun/lfqrun/pkg/params"
)

const (
	// DefaultBinary is the pipeline runtime launched for every execution.
	DefaultBinary = "/root/nextflow"
	// DefaultEntrypoint is the pipeline script, relative to the shared directory.
	DefaultEntrypoint = "main.nf"
	// DefaultProfile is the runtime profile passed with -profile.
	DefaultProfile = "docker"
	// DefaultConfigFile is the runtime config file passed with -c.
	DefaultConfigFile = "latch.config"
	// DefaultLogFile is the pipeline log, relative to the shared directory.
	DefaultLogFile = ".nextflow.log"
	// DefaultLogName is the file name the log is uploaded under.
	DefaultLogName = "nextflow.log"
	// DefaultLogPrefix is the remote location logs are uploaded below.
	DefaultLogPrefix = "latch:///your_log_dir"

	// VolumeEnv names the variable carrying the provisioned volume to the runtime.
	VolumeEnv = "K8S_STORAGE_CLAIM_NAME"
)

type (
	// Config holds the fixed settings of the pipeline launch.
	Config struct {
		// PipelineName namespaces uploaded logs.
		PipelineName string
		Binary       string
		Entrypoint   string
		Profile      string
		ConfigFile   string

		// SourceDir is copied into SharedDir before launch.
		SourceDir string
		// SharedDir is the workspace on the provisioned volume. It is the
		// runtime's working directory and -work-dir.
		SharedDir string
		Excludes  []string

		// StorageGiB is the capacity requested from the provisioner.
		StorageGiB int
		// Env is layered over the host environment of the subprocess.
		Env map[string]string

		LogFile   string
		LogName   string
		LogPrefix string
	}

	// Option configures a Config.
	Option func(*Config)
)

// DefaultEnv returns the runtime environment set for every launch.
func DefaultEnv() map[string]string {
	return map[string]string{
		"NXF_HOME":                 "/root/.nextflow",
		"NXF_OPTS":                 "-Xms2048M -Xmx8G -XX:ActiveProcessorCount=4",
		"NXF_DISABLE_CHECK_LATEST": "true",
	}
}

// DefaultConfig returns the launch settings of the proteomicslfq deployment.
func DefaultConfig() *Config {
	return &Config{
		PipelineName: params.PipelineName,
		Binary:       DefaultBinary,
		Entrypoint:   DefaultEntrypoint,
		Profile:      DefaultProfile,
		ConfigFile:   DefaultConfigFile,
		SourceDir:    workspace.DefaultSourceDir,
		SharedDir:    workspace.DefaultDestDir,
		Excludes:     workspace.DefaultExcludes(),
		StorageGiB:   provision.DefaultStorageGiB,
		Env:          DefaultEnv(),
		LogFile:      DefaultLogFile,
		LogName:      DefaultLogName,
		LogPrefix:    DefaultLogPrefix,
	}
}

// WithPipelineName sets the pipeline name used in log locations.
func WithPipelineName(name string) Option {
	return func(c *Config) { c.PipelineName = name }
}

// WithBinary sets the pipeline runtime executable.
func WithBinary(binary string) Option {
	return func(c *Config) { c.Binary = binary }
}

// WithEntrypoint sets the pipeline script relative to the shared directory.
func WithEntrypoint(entrypoint string) Option {
	return func(c *Config) { c.Entrypoint = entrypoint }
}

// WithProfile sets the runtime profile.
func WithProfile(profile string) Option {
	return func(c *Config) { c.Profile = profile }
}

// WithConfigFile sets the runtime config file.
func WithConfigFile(file string) Option {
	return func(c *Config) { c.ConfigFile = file }
}

// WithSourceDir sets the directory copied into the workspace.
func WithSourceDir(dir string) Option {
	return func(c *Config) { c.SourceDir = dir }
}

// WithSharedDir sets the workspace directory.
func WithSharedDir(dir string) Option {
	return func(c *Config) { c.SharedDir = dir }
}

// WithExcludes replaces the workspace exclude patterns.
func WithExcludes(patterns ...string) Option {
	return func(c *Config) { c.Excludes = patterns }
}

// WithStorageGiB sets the requested volume capacity.
func WithStorageGiB(gib int) Option {
	return func(c *Config) { c.StorageGiB = gib }
}

// WithEnv adds entries to the subprocess environment, replacing existing names.
func WithEnv(env map[string]string) Option {
	return func(c *Config) {
		if c.Env == nil {
			c.Env = make(map[string]string, len(env))
		}
		maps.Copy(c.Env, env)
	}
}

// WithLogPrefix sets the remote location logs are uploaded below.
func WithLogPrefix(prefix string) Option {
	return func(c *Config) { c.LogPrefix = prefix }
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that the launch settings are complete.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Binary) == "" {
		errs = append(errs, errors.New("pipeline binary is empty"))
	}
	if strings.TrimSpace(c.Entrypoint) == "" {
		errs = append(errs, errors.New("pipeline entrypoint is empty"))
	}
	if strings.TrimSpace(c.SharedDir) == "" {
		errs = append(errs, errors.New("shared directory is empty"))
	}
	if strings.TrimSpace(c.SourceDir) == "" {
		errs = append(errs, errors.New("source directory is empty"))
	}
	if c.StorageGiB <= 0 {
		errs = append(errs, fmt.Errorf("storage capacity must be positive, got %d", c.StorageGiB))
	}
	if _, ok := c.Env[VolumeEnv]; ok {
		errs = append(errs, fmt.Errorf("%s is set from the provisioned volume and cannot be configured", VolumeEnv))
	}
	if len(errs) > 0 {
		return &ConfigurationError{Err: errors.Join(errs...)}
	}
	return nil
}

// EntrypointPath returns the pipeline script path inside the shared directory.
func (c *Config) EntrypointPath() string {
	if filepath.IsAbs(c.Entrypoint) {
		return c.Entrypoint
	}
	return filepath.Join(c.SharedDir, c.Entrypoint)
}

// LogPath returns the local path of the pipeline log.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.SharedDir, c.LogFile)
}

// CommandPrefix returns the fixed part of the command line, before any
// parameter flags.
func (c *Config) CommandPrefix() []string {
	cmd := []string{c.Binary, "run", c.EntrypointPath(), "-work-dir", c.SharedDir}
	if c.Profile != "" {
		cmd = append(cmd, "-profile", c.Profile)
	}
	if c.ConfigFile != "" {
		cmd = append(cmd, "-c", c.ConfigFile)
	}
	return cmd
}

func (c *Config) logName() string {
	if c.LogName != "" {
		return c.LogName
	}
	return path.Base(filepath.ToSlash(c.LogFile))
}
