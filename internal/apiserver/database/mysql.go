package database

import (
	"fmt"

	"github.com/openfleet/fleetgate/internal/common/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQL opens the control database over MySQL.
func NewMySQL(cfg *config.DatabaseConfig) (Database, error) {
	gormDB, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStore(gormDB)
}
