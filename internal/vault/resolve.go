package vault

import (
	"context"
	"fmt"

	"github.com/kebairia/backupwatch/internal/config"
)

// ResolveDeliveryToken fills an empty delivery token from Vault when a
// lookup is configured. A token already present in cfg is left untouched.
func ResolveDeliveryToken(ctx context.Context, cfg *config.Config, opts ...Option) error {
	if cfg.DeliveryToken() != "" || !cfg.Vault.Enabled() {
		return nil
	}

	vaultOpts := []Option{
		WithAddress(cfg.Vault.Address),
		WithToken(cfg.Vault.Token),
		WithAppRole(cfg.Vault.RoleID, cfg.Vault.ApproleName),
	}
	client, err := NewClient(ctx, append(vaultOpts, opts...)...)
	if err != nil {
		return fmt.Errorf("vault client init: %w", err)
	}

	key := cfg.Vault.TokenKey
	if key == "" {
		key = "token"
	}
	token, err := client.ReadField(ctx, cfg.Vault.TokenPath, key)
	if err != nil {
		return fmt.Errorf("resolve delivery token: %w", err)
	}
	cfg.SetDeliveryToken(token)
	return nil
}
