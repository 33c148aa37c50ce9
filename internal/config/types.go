// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/lfqrun/lfqrun/internal/execute"
	"github.com/lfqrun/lfqrun/internal/provision"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultLogDestinationDir receives pipeline logs when no object store
	// is enabled.
	DefaultLogDestinationDir = "/var/lib/lfqrun/logs"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Pipeline    PipelineConfig    `json:"pipeline" mapstructure:"pipeline"`
		Provision   ProvisionConfig   `json:"provision" mapstructure:"provision"`
		Workspace   WorkspaceConfig   `json:"workspace" mapstructure:"workspace"`
		Runtime     RuntimeConfig     `json:"runtime" mapstructure:"runtime"`
		Logs        LogsConfig        `json:"logs" mapstructure:"logs"`
		ObjectStore ObjectStoreConfig `json:"object_store" mapstructure:"object_store"`
		UI          UIConfig          `json:"ui" mapstructure:"ui"`
	}

	// PipelineConfig describes the wrapped pipeline and how it is launched.
	PipelineConfig struct {
		// Name namespaces uploaded logs.
		Name string `json:"name" mapstructure:"name"`
		// Binary is the pipeline runtime executable.
		Binary string `json:"binary" mapstructure:"binary"`
		// Entrypoint is the pipeline script, relative to the shared directory.
		Entrypoint string `json:"entrypoint" mapstructure:"entrypoint"`
		Profile    string `json:"profile" mapstructure:"profile"`
		ConfigFile string `json:"config_file" mapstructure:"config_file"`
	}

	// ProvisionConfig configures the shared storage request.
	ProvisionConfig struct {
		Endpoint   string `json:"endpoint" mapstructure:"endpoint"`
		StorageGiB int    `json:"storage_gib" mapstructure:"storage_gib"`
		// TokenEnv names the variable holding the execution token.
		TokenEnv string        `json:"token_env" mapstructure:"token_env"`
		Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// WorkspaceConfig configures the copy of the pipeline sources.
	WorkspaceConfig struct {
		SourceDir string `json:"source_dir" mapstructure:"source_dir"`
		SharedDir string `json:"shared_dir" mapstructure:"shared_dir"`
		// Excludes are glob patterns matched against entry base names.
		Excludes []string `json:"excludes" mapstructure:"excludes"`
	}

	// RuntimeConfig configures the pipeline subprocess.
	RuntimeConfig struct {
		// Env is layered over the built-in NXF_* entries, which are in turn
		// layered over the host environment. A list keeps names
		// case-sensitive through viper.
		Env []EnvVar `json:"env" mapstructure:"env"`
	}

	// EnvVar is one environment entry.
	EnvVar struct {
		Name  string `json:"name" mapstructure:"name"`
		Value string `json:"value" mapstructure:"value"`
	}

	// LogsConfig configures the pipeline log upload.
	LogsConfig struct {
		// File is the pipeline log, relative to the shared directory.
		File string `json:"file" mapstructure:"file"`
		// Prefix is the remote location logs are uploaded below.
		Prefix string `json:"prefix" mapstructure:"prefix"`
		// DestinationDir receives logs when the object store is disabled.
		DestinationDir string `json:"destination_dir" mapstructure:"destination_dir"`
	}

	// ObjectStoreConfig configures S3-compatible log storage.
	ObjectStoreConfig struct {
		Enabled   bool   `json:"enabled" mapstructure:"enabled"`
		Endpoint  string `json:"endpoint" mapstructure:"endpoint"`
		AccessKey string `json:"access_key" mapstructure:"access_key"`
		SecretKey string `json:"secret_key" mapstructure:"secret_key"`
		Region    string `json:"region" mapstructure:"region"`
		UseSSL    bool   `json:"use_ssl" mapstructure:"use_ssl"`
		Bucket    string `json:"bucket" mapstructure:"bucket"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and full error chains
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// EnvMap returns the entries as a map. Later entries win.
func (c RuntimeConfig) EnvMap() map[string]string {
	env := make(map[string]string, len(c.Env))
	for _, e := range c.Env {
		env[e.Name] = e.Value
	}
	return env
}

// IsValid returns whether the Config has valid fields, and the field errors
// wrapped in an InvalidConfigError if it does not.
func (c Config) IsValid() (bool, []error) {
	var errs []error

	if strings.TrimSpace(c.Pipeline.Name) == "" {
		errs = append(errs, errors.New("pipeline.name must not be empty"))
	}
	if strings.TrimSpace(c.Pipeline.Binary) == "" {
		errs = append(errs, errors.New("pipeline.binary must not be empty"))
	}
	if strings.TrimSpace(c.Pipeline.Entrypoint) == "" {
		errs = append(errs, errors.New("pipeline.entrypoint must not be empty"))
	}

	if u, err := url.Parse(c.Provision.Endpoint); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("provision.endpoint %q must be an http(s) URL", c.Provision.Endpoint))
	}
	if c.Provision.StorageGiB <= 0 {
		errs = append(errs, fmt.Errorf("provision.storage_gib must be positive, got %d", c.Provision.StorageGiB))
	}
	if !envNamePattern.MatchString(c.Provision.TokenEnv) {
		errs = append(errs, fmt.Errorf("provision.token_env %q is not a valid variable name", c.Provision.TokenEnv))
	}
	if c.Provision.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("provision.timeout must be positive, got %s", c.Provision.Timeout))
	}

	if strings.TrimSpace(c.Workspace.SourceDir) == "" {
		errs = append(errs, errors.New("workspace.source_dir must not be empty"))
	}
	if strings.TrimSpace(c.Workspace.SharedDir) == "" {
		errs = append(errs, errors.New("workspace.shared_dir must not be empty"))
	} else if filepath.Clean(c.Workspace.SharedDir) == filepath.Clean(c.Workspace.SourceDir) {
		errs = append(errs, fmt.Errorf("workspace.shared_dir %q must differ from workspace.source_dir", c.Workspace.SharedDir))
	}

	for i, e := range c.Runtime.Env {
		if !envNamePattern.MatchString(e.Name) {
			errs = append(errs, fmt.Errorf("runtime.env[%d]: %q is not a valid variable name", i, e.Name))
		}
	}

	if strings.TrimSpace(c.Logs.File) == "" {
		errs = append(errs, errors.New("logs.file must not be empty"))
	}
	if c.ObjectStore.Enabled {
		if strings.TrimSpace(c.ObjectStore.Endpoint) == "" {
			errs = append(errs, errors.New("object_store.endpoint must be set when the object store is enabled"))
		}
		if strings.TrimSpace(c.ObjectStore.Bucket) == "" {
			errs = append(errs, errors.New("object_store.bucket must be set when the object store is enabled"))
		}
	} else if strings.TrimSpace(c.Logs.DestinationDir) == "" {
		errs = append(errs, errors.New("logs.destination_dir must be set when the object store is disabled"))
	}

	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration. Launch settings come from
// the execute, provision and workspace defaults so each value has one source.
func DefaultConfig() *Config {
	launch := execute.DefaultConfig()

	env := make([]EnvVar, 0, len(launch.Env))
	for _, name := range slices.Sorted(maps.Keys(launch.Env)) {
		env = append(env, EnvVar{Name: name, Value: launch.Env[name]})
	}

	return &Config{
		Pipeline: PipelineConfig{
			Name:       launch.PipelineName,
			Binary:     launch.Binary,
			Entrypoint: launch.Entrypoint,
			Profile:    launch.Profile,
			ConfigFile: launch.ConfigFile,
		},
		Provision: ProvisionConfig{
			Endpoint:   provision.DefaultEndpoint,
			StorageGiB: launch.StorageGiB,
			TokenEnv:   provision.DefaultTokenEnv,
			Timeout:    provision.DefaultTimeout,
		},
		Workspace: WorkspaceConfig{
			SourceDir: launch.SourceDir,
			SharedDir: launch.SharedDir,
			Excludes:  launch.Excludes,
		},
		Runtime: RuntimeConfig{Env: env},
		Logs: LogsConfig{
			File:           launch.LogFile,
			Prefix:         launch.LogPrefix,
			DestinationDir: DefaultLogDestinationDir,
		},
		ObjectStore: ObjectStoreConfig{
			Region: "us-east-1",
			UseSSL: true,
			Bucket: "lfqrun-logs",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
