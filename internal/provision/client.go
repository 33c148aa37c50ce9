// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

type (
	// Client provisions volumes through the dispatcher HTTP API.
	Client struct {
		cfg    *Config
		logger *slog.Logger
	}

	provisionRequest struct {
		StorageGiB int `json:"storage_gib"`
	}

	provisionResponse struct {
		Name string `json:"name"`
	}
)

// NewClient creates a client from cfg. A nil cfg uses DefaultConfig.
func NewClient(cfg *Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Apply(opts...)
	return &Client{cfg: cfg, logger: slog.Default()}
}

// WithLogger sets the logger used for request records.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() *Config { return c.cfg }

// Provision requests a gib GiB volume. The token is read from the configured
// environment variable at call time; when it is absent no request is sent.
func (c *Client) Provision(ctx context.Context, gib int) (*Volume, error) {
	endpoint := c.cfg.Endpoint
	token := strings.TrimSpace(c.cfg.getenv(c.cfg.TokenEnv))
	if token == "" {
		return nil, &ProvisioningError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("%w: %s", ErrMissingToken, c.cfg.TokenEnv),
		}
	}

	body, err := json.Marshal(provisionRequest{StorageGiB: gib})
	if err != nil {
		return nil, &ProvisioningError{Endpoint: endpoint, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProvisioningError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting storage volume", "endpoint", endpoint, "storage_gib", gib)

	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		return nil, &ProvisioningError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProvisioningError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var out provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProvisioningError{Endpoint: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if out.Name == "" {
		return nil, &ProvisioningError{Endpoint: endpoint, Err: ErrMissingVolumeName}
	}

	c.logger.Info("provisioned shared storage", "volume", out.Name, "storage_gib", gib)
	return &Volume{Name: out.Name, CapacityGiB: gib}, nil
}

// httpClient returns a client whose transport stamps every request with
// "Authorization: Latch-Execution-Token <token>".
func (c *Client) httpClient(token string) *http.Client {
	base := c.cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout: c.cfg.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token,
				TokenType:   TokenType,
			}),
			Base: base,
		},
	}
}
