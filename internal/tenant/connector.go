// Package tenant opens and operates on per-tenant databases. Which tenant
// database a request may open is decided upstream by identity resolution;
// nothing in this package accepts a database name from request payloads.
package tenant

import (
	"context"

	"github.com/openfleet/fleetgate/internal/common/config"
	"github.com/openfleet/fleetgate/internal/common/errorx"
	"github.com/openfleet/fleetgate/internal/vault"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// OpenFunc turns a DSN into a gorm dialector. Production uses the MySQL
// driver; tests substitute SQLite.
type OpenFunc func(dsn string) gorm.Dialector

// Connector resolves a tenant's credentials through the vault and opens a
// database handle for the duration of one logical action. Connections are
// not pooled across actions: every action pays full connect and teardown
// cost, which is acceptable at administrative click volume.
type Connector struct {
	vault  *vault.Vault
	cfg    config.TenantConfig
	open   OpenFunc
	logger *zap.Logger
}

// NewConnector creates a connector using the MySQL driver.
func NewConnector(v *vault.Vault, cfg config.TenantConfig, logger *zap.Logger) *Connector {
	return &Connector{
		vault:  v,
		cfg:    cfg,
		open:   func(dsn string) gorm.Dialector { return mysql.Open(dsn) },
		logger: logger,
	}
}

// NewConnectorWithOpener creates a connector with a custom dialector
// opener. The opener receives the DSN built from the vault secret.
func NewConnectorWithOpener(v *vault.Vault, cfg config.TenantConfig, open OpenFunc, logger *zap.Logger) *Connector {
	return &Connector{vault: v, cfg: cfg, open: open, logger: logger}
}

// With resolves the tenant's credentials, opens its database, runs fn and
// closes the handle. The handle is released on every exit path, including
// when fn fails or panics; any vault or connection failure aborts before
// fn runs, so no mutation can happen without a valid connection.
func (c *Connector) With(ctx context.Context, tenantAccountID uint, fn func(db *gorm.DB) error) error {
	secret, err := c.vault.ResolveTenantSecret(ctx, tenantAccountID)
	if err != nil {
		return err
	}

	dsn := c.cfg.TenantDSN(secret.DatabaseName, secret.DatabaseUser, secret.Password)
	gormDB, err := gorm.Open(c.open(dsn), &gorm.Config{})
	if err != nil {
		return errorx.Connection("tenant database unreachable", err)
	}
	defer func() {
		if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				c.logger.Warn("failed to close tenant connection",
					zap.Uint("tenant", tenantAccountID),
					zap.Error(closeErr))
			}
		}
	}()

	return fn(gormDB.WithContext(ctx))
}

// Migrate creates the tenant schema. Used when provisioning a tenant and
// by tests running against throwaway databases.
func (c *Connector) Migrate(ctx context.Context, tenantAccountID uint) error {
	return c.With(ctx, tenantAccountID, AutoMigrate)
}
