package database

import (
	"context"
)

// Database defines the operations the gateway performs against the shared
// control database. The control database is read-mostly: tenant accounts
// are created on signup and looked up on every tenant-scoped action.
type Database interface {
	// Close closes the database connection.
	Close() error

	// CreateTenantAccount creates a new tenant account.
	CreateTenantAccount(ctx context.Context, account *TenantAccount) error

	// GetTenantAccount gets a tenant account by id.
	GetTenantAccount(ctx context.Context, id uint) (*TenantAccount, error)

	// GetTenantAccountByUser gets a tenant account by its database user name.
	GetTenantAccountByUser(ctx context.Context, dbUser string) (*TenantAccount, error)

	// ListTenantAccounts lists all tenant accounts.
	ListTenantAccounts(ctx context.Context) ([]*TenantAccount, error)

	// Transaction executes fn inside a control database transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
