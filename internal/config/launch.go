// SPDX-License-Identifier: MPL-2.0

package config

import (
	"github.com/lfqrun/lfqrun/internal/artifact"
	"github.com/lfqrun/lfqrun/internal/execute"
	"github.com/lfqrun/lfqrun/internal/provision"
)

// LaunchConfig returns the execute settings described by c. runtime.env
// entries are layered over the built-in NXF_* environment, so a file that
// adds one variable keeps the others.
func (c *Config) LaunchConfig() *execute.Config {
	cfg := execute.DefaultConfig()
	cfg.Apply(
		execute.WithPipelineName(c.Pipeline.Name),
		execute.WithBinary(c.Pipeline.Binary),
		execute.WithEntrypoint(c.Pipeline.Entrypoint),
		execute.WithProfile(c.Pipeline.Profile),
		execute.WithConfigFile(c.Pipeline.ConfigFile),
		execute.WithSourceDir(c.Workspace.SourceDir),
		execute.WithSharedDir(c.Workspace.SharedDir),
		execute.WithExcludes(c.Workspace.Excludes...),
		execute.WithStorageGiB(c.Provision.StorageGiB),
		execute.WithEnv(c.Runtime.EnvMap()),
		execute.WithLogPrefix(c.Logs.Prefix),
	)
	cfg.LogFile = c.Logs.File
	return cfg
}

// ProvisionConfig returns the provisioning client settings described by c.
func (c *Config) ProvisionConfig(opts ...provision.Option) *provision.Config {
	cfg := provision.DefaultConfig()
	cfg.Apply(
		provision.WithEndpoint(c.Provision.Endpoint),
		provision.WithTokenEnv(c.Provision.TokenEnv),
		provision.WithTimeout(c.Provision.Timeout),
	)
	cfg.Apply(opts...)
	return cfg
}

// ArtifactConfig returns the object store settings described by c.
func (c *Config) ArtifactConfig() artifact.Config {
	return artifact.Config{
		Endpoint:  c.ObjectStore.Endpoint,
		AccessKey: c.ObjectStore.AccessKey,
		SecretKey: c.ObjectStore.SecretKey,
		Region:    c.ObjectStore.Region,
		UseSSL:    c.ObjectStore.UseSSL,
		Bucket:    c.ObjectStore.Bucket,
	}
}
