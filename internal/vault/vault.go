// Package vault resolves tenant database credentials. It is the only code
// that sees decrypted tenant passwords; secrets it returns flow straight
// into the tenant connector and are never logged or echoed to a caller.
package vault

import (
	"context"

	"github.com/openfleet/fleetgate/internal/apiserver/database"
	"github.com/openfleet/fleetgate/internal/common/errorx"
)

// TenantSecret is a decrypted set of tenant database coordinates.
type TenantSecret struct {
	DatabaseName string
	DatabaseUser string
	Password     string
}

// Vault looks up tenant accounts in the control database and decrypts
// their stored database passwords on demand. Pure lookup + decrypt; no
// side effects.
type Vault struct {
	db     database.Database
	cipher *Cipher
}

// New creates a vault over the control database.
func New(db database.Database, cipher *Cipher) *Vault {
	return &Vault{db: db, cipher: cipher}
}

// Cipher exposes the system cipher for credential storage at the manager
// and driver tiers, which reuse the same fixed key.
func (v *Vault) Cipher() *Cipher {
	return v.cipher
}

// ResolveTenantSecret returns the decrypted database coordinates for a
// tenant account. Fails with a not-found error when no account exists for
// the id.
func (v *Vault) ResolveTenantSecret(ctx context.Context, tenantAccountID uint) (*TenantSecret, error) {
	account, err := v.db.GetTenantAccount(ctx, tenantAccountID)
	if err != nil {
		return nil, errorx.NotFound("tenant account not found")
	}

	password, err := v.cipher.Decrypt(account.EncryptedPassword)
	if err != nil {
		return nil, errorx.Internal(err)
	}

	return &TenantSecret{
		DatabaseName: account.DatabaseName,
		DatabaseUser: account.DatabaseUser,
		Password:     password,
	}, nil
}

// StorageFolder returns the per-tenant blob folder name.
func (v *Vault) StorageFolder(ctx context.Context, tenantAccountID uint) (string, error) {
	account, err := v.db.GetTenantAccount(ctx, tenantAccountID)
	if err != nil {
		return "", errorx.NotFound("tenant account not found")
	}
	return account.StorageFolder, nil
}
