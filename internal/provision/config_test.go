// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.TokenEnv != "FLYTE_INTERNAL_EXECUTION_ID" {
		t.Errorf("TokenEnv = %q", cfg.TokenEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigApply(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Apply(
		WithEndpoint("http://localhost:9999/provision"),
		WithTokenEnv("MY_TOKEN"),
		WithTimeout(time.Second),
	)
	if cfg.Endpoint != "http://localhost:9999/provision" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.TokenEnv != "MY_TOKEN" {
		t.Errorf("TokenEnv = %q", cfg.TokenEnv)
	}
	if cfg.Timeout != time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative endpoint", func(c *Config) { c.Endpoint = "/provision-storage" }, true},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"empty token env", func(c *Config) { c.TokenEnv = "" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"zero timeout means none", func(c *Config) { c.Timeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error does not wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}
