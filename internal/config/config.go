// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lfqrun/lfqrun/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "lfqrun"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variables that override config keys.
	EnvPrefix = "LFQRUN"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir is the per-user lfqrun directory under os.UserConfigDir, which
// honours XDG_CONFIG_HOME on Linux.
//
//nolint:revive // config.Dir reads poorly at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// ConfigFilePath returns the default config file location.
func ConfigFilePath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// newViper returns a viper instance seeded with every default key.
func newViper() *viper.Viper {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("pipeline.name", d.Pipeline.Name)
	v.SetDefault("pipeline.binary", d.Pipeline.Binary)
	v.SetDefault("pipeline.entrypoint", d.Pipeline.Entrypoint)
	v.SetDefault("pipeline.profile", d.Pipeline.Profile)
	v.SetDefault("pipeline.config_file", d.Pipeline.ConfigFile)
	v.SetDefault("provision.endpoint", d.Provision.Endpoint)
	v.SetDefault("provision.storage_gib", d.Provision.StorageGiB)
	v.SetDefault("provision.token_env", d.Provision.TokenEnv)
	v.SetDefault("provision.timeout", d.Provision.Timeout)
	v.SetDefault("workspace.source_dir", d.Workspace.SourceDir)
	v.SetDefault("workspace.shared_dir", d.Workspace.SharedDir)
	v.SetDefault("workspace.excludes", d.Workspace.Excludes)
	v.SetDefault("runtime.env", envDefaults(d.Runtime.Env))
	v.SetDefault("logs.file", d.Logs.File)
	v.SetDefault("logs.prefix", d.Logs.Prefix)
	v.SetDefault("logs.destination_dir", d.Logs.DestinationDir)
	v.SetDefault("object_store.enabled", d.ObjectStore.Enabled)
	v.SetDefault("object_store.endpoint", d.ObjectStore.Endpoint)
	v.SetDefault("object_store.access_key", d.ObjectStore.AccessKey)
	v.SetDefault("object_store.secret_key", d.ObjectStore.SecretKey)
	v.SetDefault("object_store.region", d.ObjectStore.Region)
	v.SetDefault("object_store.use_ssl", d.ObjectStore.UseSSL)
	v.SetDefault("object_store.bucket", d.ObjectStore.Bucket)
	v.SetDefault("ui.color_scheme", d.UI.ColorScheme)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	return v
}

// EnvVarName returns the environment variable overriding a config key.
func EnvVarName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// applyEnvOverrides sets every scalar or string-list key that has a
// non-empty LFQRUN_ variable. runtime.env is a list of records and cannot be
// expressed as a single variable.
func applyEnvOverrides(v *viper.Viper, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range v.AllKeys() {
		if key == "runtime.env" {
			continue
		}
		if val := getenv(EnvVarName(key)); val != "" {
			v.Set(key, val)
		}
	}
}

func envDefaults(env []EnvVar) []any {
	out := make([]any, 0, len(env))
	for _, e := range env {
		out = append(out, map[string]any{"name": e.Name, "value": e.Value})
	}
	return out
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the loaded config and the file it came from,
// which is empty when only defaults and environment were used.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'lfqrun config path' to see where lfqrun looks by default").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		} {
			if fileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'lfqrun config init' to write a default file for comparison").
				Wrap(err).
				BuildError()
		}
	}

	applyEnvOverrides(v, opts.Getenv)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		ctxErr := issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Run 'lfqrun config show' to see the effective values")
		if resolvedPath != "" {
			ctxErr = ctxErr.WithResource(resolvedPath)
		}
		return nil, "", ctxErr.Wrap(errs[0]).BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Concrete(false) is used because every config field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := checkFileSize(data, maxConfigFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merging keeps defaults for omitted keys and lets env override the file.
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file if it doesn't exist and
// returns its path together with whether it was created.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := writeConfig(cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg to the default config file, replacing it.
func Save(cfg *Config) error {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return err
	}
	return writeConfig(cfgPath, cfg)
}

func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// The file may carry object store credentials.
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// lfqrun configuration file\n")
	sb.WriteString("// Any key can be overridden with an LFQRUN_ environment variable,\n")
	sb.WriteString("// e.g. LFQRUN_PROVISION_STORAGE_GIB=200.\n\n")

	sb.WriteString("pipeline: {\n")
	fmt.Fprintf(&sb, "\tname:        %q\n", cfg.Pipeline.Name)
	fmt.Fprintf(&sb, "\tbinary:      %q\n", cfg.Pipeline.Binary)
	fmt.Fprintf(&sb, "\tentrypoint:  %q\n", cfg.Pipeline.Entrypoint)
	fmt.Fprintf(&sb, "\tprofile:     %q\n", cfg.Pipeline.Profile)
	fmt.Fprintf(&sb, "\tconfig_file: %q\n", cfg.Pipeline.ConfigFile)
	sb.WriteString("}\n\n")

	sb.WriteString("provision: {\n")
	fmt.Fprintf(&sb, "\tendpoint:    %q\n", cfg.Provision.Endpoint)
	fmt.Fprintf(&sb, "\tstorage_gib: %d\n", cfg.Provision.StorageGiB)
	fmt.Fprintf(&sb, "\ttoken_env:   %q\n", cfg.Provision.TokenEnv)
	fmt.Fprintf(&sb, "\ttimeout:     %q\n", cfg.Provision.Timeout.String())
	sb.WriteString("}\n\n")

	sb.WriteString("workspace: {\n")
	fmt.Fprintf(&sb, "\tsource_dir: %q\n", cfg.Workspace.SourceDir)
	fmt.Fprintf(&sb, "\tshared_dir: %q\n", cfg.Workspace.SharedDir)
	writeStringList(&sb, "excludes", cfg.Workspace.Excludes)
	sb.WriteString("}\n\n")

	sb.WriteString("runtime: {\n")
	if len(cfg.Runtime.Env) == 0 {
		sb.WriteString("\tenv: []\n")
	} else {
		sb.WriteString("\tenv: [\n")
		for _, e := range cfg.Runtime.Env {
			fmt.Fprintf(&sb, "\t\t{name: %q, value: %q},\n", e.Name, e.Value)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("logs: {\n")
	fmt.Fprintf(&sb, "\tfile:            %q\n", cfg.Logs.File)
	fmt.Fprintf(&sb, "\tprefix:          %q\n", cfg.Logs.Prefix)
	fmt.Fprintf(&sb, "\tdestination_dir: %q\n", cfg.Logs.DestinationDir)
	sb.WriteString("}\n\n")

	sb.WriteString("object_store: {\n")
	fmt.Fprintf(&sb, "\tenabled:    %t\n", cfg.ObjectStore.Enabled)
	fmt.Fprintf(&sb, "\tendpoint:   %q\n", cfg.ObjectStore.Endpoint)
	fmt.Fprintf(&sb, "\taccess_key: %q\n", cfg.ObjectStore.AccessKey)
	fmt.Fprintf(&sb, "\tsecret_key: %q\n", cfg.ObjectStore.SecretKey)
	fmt.Fprintf(&sb, "\tregion:     %q\n", cfg.ObjectStore.Region)
	fmt.Fprintf(&sb, "\tuse_ssl:    %t\n", cfg.ObjectStore.UseSSL)
	fmt.Fprintf(&sb, "\tbucket:     %q\n", cfg.ObjectStore.Bucket)
	sb.WriteString("}\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %t\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeStringList(sb *strings.Builder, key string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(sb, "\t%s: []\n", key)
		return
	}
	fmt.Fprintf(sb, "\t%s: [\n", key)
	for _, item := range items {
		fmt.Fprintf(sb, "\t\t%q,\n", item)
	}
	sb.WriteString("\t]\n")
}
