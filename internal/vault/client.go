package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	vault "github.com/hashicorp/vault/api"
)

const (
	approleSecretIDPath = "auth/approle/role/%s/secret-id"
	approleLoginPath    = "auth/approle/login"
)

// ErrClientInit indicates failure to initialize the Vault API client.
var ErrClientInit = errors.New("vault client initialization failed")

// ErrSecretNotFound is returned when a path or field holds no value.
var ErrSecretNotFound = errors.New("vault secret not found")

type Option func(*clientConfig)

type clientConfig struct {
	address    string
	token      string
	roleID     string
	roleName   string
	httpClient *http.Client
}

type Client struct {
	// The Vault Client
	api    *vault.Client
	config *clientConfig
}

func WithAddress(address string) Option {
	return func(c *clientConfig) {
		if address != "" {
			c.address = address
		}
	}
}

func WithToken(token string) Option {
	return func(c *clientConfig) {
		if token != "" {
			c.token = token
		}
	}
}

// WithHTTPClient replaces the HTTP client used to reach Vault.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.httpClient = c
	}
}

func WithAppRole(roleID, roleName string) Option {
	return func(c *clientConfig) {
		c.roleID = roleID
		c.roleName = roleName
	}
}

// NewClient creates and initializes a Vault Client using provided options.
// It will perform AppRole login if roleID and roleName are both set, otherwise
// a static token (from env or WithToken) is used.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		address: os.Getenv("VAULT_ADDR"),
		token:   os.Getenv("VAULT_TOKEN"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiCfg := vault.DefaultConfig()
	if apiCfg.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientInit, apiCfg.Error)
	}
	if cfg.address != "" {
		apiCfg.Address = cfg.address
	}
	if cfg.httpClient != nil {
		apiCfg.HttpClient = cfg.httpClient
	}

	api, err := vault.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientInit, err)
	}

	client := &Client{api: api, config: cfg}

	if cfg.token != "" {
		client.api.SetToken(cfg.token)
	}

	if cfg.roleID != "" && cfg.roleName != "" {
		if err := client.loginAppRole(ctx); err != nil {
			return nil, fmt.Errorf("AppRole login failed: %w", err)
		}
	}

	return client, nil
}

// loginAppRole performs AppRole login using the configured roleID and roleName.
func (c *Client) loginAppRole(ctx context.Context) error {
	path := fmt.Sprintf(approleSecretIDPath, c.config.roleName)
	resp, err := c.api.Logical().WriteWithContext(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("generate secret_id: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("no response from %s", path)
	}
	sid, ok := resp.Data["secret_id"].(string)
	if !ok || sid == "" {
		return fmt.Errorf("no secret_id returned from %s", path)
	}

	loginData := map[string]any{
		"role_id":   c.config.roleID,
		"secret_id": sid,
	}
	loginResp, err := c.api.Logical().WriteWithContext(ctx, approleLoginPath, loginData)
	if err != nil {
		return fmt.Errorf("approle login request: %w", err)
	}
	if loginResp == nil || loginResp.Auth == nil || loginResp.Auth.ClientToken == "" {
		return fmt.Errorf("no token in login response")
	}
	c.api.SetToken(loginResp.Auth.ClientToken)
	return nil
}

// ReadField reads a single string field from the secret at path. Both KV v1
// and KV v2 layouts are understood; for v2 the path must include "data/".
func (c *Client) ReadField(ctx context.Context, path, field string) (string, error) {
	secret, err := c.api.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: no data at path %s", ErrSecretNotFound, path)
	}
	return fieldFromData(secret.Data, path, field)
}

func fieldFromData(data map[string]any, path, field string) (string, error) {
	// KV v2 nests the payload under "data".
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}
	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: field %q at path %s", ErrSecretNotFound, field, path)
	}
	return value, nil
}
