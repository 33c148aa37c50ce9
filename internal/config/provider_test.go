// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestProvider_ExplicitFileWinsOverDir(t *testing.T) {
	t.Parallel()

	dirA := t.TempDir()
	writeConfigFile(t, dirA, `pipeline: profile: "from-dir"`)
	dirB := t.TempDir()
	explicit := writeConfigFile(t, dirB, `pipeline: profile: "from-file"`)

	cfg, src, err := NewProvider().LoadWithSource(context.Background(), LoadOptions{
		ConfigFilePath: explicit,
		ConfigDirPath:  dirA,
		Getenv:         noEnv,
	})
	if err != nil {
		t.Fatalf("LoadWithSource() error = %v", err)
	}
	if cfg.Pipeline.Profile != "from-file" {
		t.Errorf("Profile = %q, want from-file", cfg.Pipeline.Profile)
	}
	if src != explicit {
		t.Errorf("source = %q, want %q", src, explicit)
	}
}

func TestProvider_LoadsAreIndependent(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	dir := t.TempDir()
	writeConfigFile(t, dir, `provision: storage_gib: 7`)

	first, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: dir, Getenv: noEnv})
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Load(context.Background(), LoadOptions{
		ConfigDirPath: filepath.Join(dir, "nothing-here"),
		Getenv:        noEnv,
	})
	if err != nil {
		t.Fatal(err)
	}

	if first.Provision.StorageGiB != 7 {
		t.Errorf("first StorageGiB = %d, want 7", first.Provision.StorageGiB)
	}
	if second.Provision.StorageGiB != DefaultConfig().Provision.StorageGiB {
		t.Errorf("second load leaked state: StorageGiB = %d", second.Provision.StorageGiB)
	}
}
