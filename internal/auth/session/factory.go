package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openfleet/fleetgate/internal/common/config"
)

// NewStore creates a new session store based on configuration
func NewStore(logger *zap.Logger, cfg *config.SessionConfig) (Store, error) {
	logger.Info("Initializing session storage", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported session storage type: %s", cfg.Type)
	}
}
