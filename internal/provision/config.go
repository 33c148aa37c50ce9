// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	// DefaultEndpoint is the in-cluster dispatcher URL.
	DefaultEndpoint = "http://nf-dispatcher-service.flyte.svc.cluster.local/provision-storage"
	// DefaultStorageGiB is the volume capacity requested per execution.
	DefaultStorageGiB = 100
	// DefaultTokenEnv names the environment variable holding the execution token.
	DefaultTokenEnv = "FLYTE_INTERNAL_EXECUTION_ID"
	// DefaultTimeout bounds the provisioning request.
	DefaultTimeout = 5 * time.Minute
	// TokenType is the authorization scheme expected by the dispatcher.
	TokenType = "Latch-Execution-Token"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid provisioning config")

type (
	// Config holds the settings of the provisioning client.
	Config struct {
		// Endpoint is the dispatcher URL receiving the provisioning request.
		Endpoint string
		// TokenEnv names the environment variable carrying the execution token.
		TokenEnv string
		// Timeout bounds the whole request, including reading the response.
		Timeout time.Duration
		// Transport is the base HTTP transport. Nil uses http.DefaultTransport.
		Transport http.RoundTripper
		// Getenv looks up environment variables. Defaults to os.Getenv.
		Getenv func(string) string
	}

	// Option is a functional option for configuring a Config.
	Option func(*Config)
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		TokenEnv: DefaultTokenEnv,
		Timeout:  DefaultTimeout,
		Getenv:   os.Getenv,
	}
}

// WithEndpoint returns an Option that sets Endpoint on the config.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithTokenEnv returns an Option that sets TokenEnv on the config.
func WithTokenEnv(name string) Option {
	return func(c *Config) {
		c.TokenEnv = name
	}
}

// WithTimeout returns an Option that sets Timeout on the config.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithTransport returns an Option that sets the base HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Config) {
		c.Transport = rt
	}
}

// WithGetenv returns an Option that replaces the environment lookup.
// Tests use it to supply a token without touching the process environment.
func WithGetenv(getenv func(string) string) Option {
	return func(c *Config) {
		c.Getenv = getenv
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks the endpoint URL, token variable and timeout.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("endpoint %q must be an absolute URL", c.Endpoint))
	}
	if c.TokenEnv == "" {
		errs = append(errs, errors.New("token_env must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) getenv(name string) string {
	if c.Getenv == nil {
		return os.Getenv(name)
	}
	return c.Getenv(name)
}
