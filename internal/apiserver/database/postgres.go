package database

import (
	"fmt"

	"github.com/openfleet/fleetgate/internal/common/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgres opens the control database over PostgreSQL.
func NewPostgres(cfg *config.DatabaseConfig) (Database, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStore(gormDB)
}
