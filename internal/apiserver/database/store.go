package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfleet/fleetgate/internal/common/cnst"

	"gorm.io/gorm"
)

// store implements Database on top of a gorm handle. The driver-specific
// constructors in mysql.go, postgres.go and sqlite.go only differ in how
// they open the handle.
type store struct {
	db *gorm.DB
}

func newStore(db *gorm.DB) (Database, error) {
	if err := db.AutoMigrate(&TenantAccount{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &store{db: db}, nil
}

// Close closes the database connection
func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *store) CreateTenantAccount(ctx context.Context, account *TenantAccount) error {
	db := getDBFromContext(ctx, s.db)
	var count int64
	if err := db.Model(&TenantAccount{}).Where("db_user = ?", account.DatabaseUser).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return cnst.ErrDuplicateTenantUser
	}
	return db.Create(account).Error
}

func (s *store) GetTenantAccount(ctx context.Context, id uint) (*TenantAccount, error) {
	var account TenantAccount
	err := getDBFromContext(ctx, s.db).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cnst.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) GetTenantAccountByUser(ctx context.Context, dbUser string) (*TenantAccount, error) {
	var account TenantAccount
	err := getDBFromContext(ctx, s.db).Where("db_user = ?", dbUser).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cnst.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) ListTenantAccounts(ctx context.Context) ([]*TenantAccount, error) {
	var accounts []*TenantAccount
	if err := getDBFromContext(ctx, s.db).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}
