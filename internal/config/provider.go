// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where lfqrun configuration comes from. The zero
	// value searches the working directory then ConfigDir, and reads
	// LFQRUN_ overrides from the process environment.
	LoadOptions struct {
		// ConfigFilePath is the --config flag. A missing file is an error.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir in the search.
		ConfigDirPath string
		// Getenv resolves LFQRUN_ overrides. Nil means os.Getenv.
		Getenv func(string) string
	}

	// Provider resolves a validated Config.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
		// LoadWithSource also reports the file read, or "" when the result
		// is built from defaults and environment alone.
		LoadWithSource(ctx context.Context, opts LoadOptions) (*Config, string, error)
	}

	fileProvider struct{}
)

// NewProvider returns the viper-backed Provider used by the CLI.
func NewProvider() Provider { return fileProvider{} }

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

func (fileProvider) LoadWithSource(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
