package config

import (
	"fmt"
	"time"
)

type (
	// APIServerConfig is the root configuration for the fleet gateway.
	APIServerConfig struct {
		Port     int            `yaml:"port"`
		Control  DatabaseConfig `yaml:"control"`
		Tenant   TenantConfig   `yaml:"tenant"`
		Cipher   CipherConfig   `yaml:"cipher"`
		JWT      JWTConfig      `yaml:"jwt"`
		Session  SessionConfig  `yaml:"session"`
		Blob     BlobConfig     `yaml:"blob"`
		Logger   LoggerConfig   `yaml:"logger"`
		Metrics  MetricsConfig  `yaml:"metrics"`
	}

	// DatabaseConfig describes a database the gateway connects to.
	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (mysql), 5432 (postgres)
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"` // disable (postgres)
	}

	// TenantConfig describes how per-tenant databases are reached. Tenant
	// databases always live on one MySQL host; the database name and user
	// stored in the control database are prefixed before connecting.
	TenantConfig struct {
		Host   string `yaml:"host"`
		Port   int    `yaml:"port"`
		Prefix string `yaml:"prefix"` // prepended to db name and db user

		// BootstrapSecret gates the unauthenticated first-tenant signup
		// endpoint. Empty disables the endpoint entirely.
		BootstrapSecret string `yaml:"bootstrap_secret"`

		// PanelAccountID is the tenant account the driver panel endpoints
		// resolve against. The deployment model assumes a single active
		// tenant for those endpoints; this makes that assumption explicit
		// instead of hardcoding account id 1.
		PanelAccountID uint `yaml:"panel_account_id"`
	}

	// CipherConfig holds the system-wide symmetric key material used for
	// tenant database passwords and manager/driver credentials. Key and IV
	// are base64 encoded and process-wide constants; legacy ciphertexts
	// depend on them staying fixed.
	CipherConfig struct {
		Key string `yaml:"key"`
		IV  string `yaml:"iv"`
	}

	// JWTConfig configures the signed session tokens.
	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// SessionConfig selects the server-side session store backend.
	SessionConfig struct {
		Type  string             `yaml:"type"` // "memory" or "redis"
		TTL   time.Duration      `yaml:"ttl"`
		Redis SessionRedisConfig `yaml:"redis"`
	}

	// SessionRedisConfig is the Redis configuration for session storage.
	SessionRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// BlobConfig configures the local blob store for uploaded photos.
	BlobConfig struct {
		Dir string `yaml:"dir"`
	}

	// MetricsConfig configures the Prometheus registry.
	MetricsConfig struct {
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}
)

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		// DBName is the file path; the opener creates its directory.
		return c.DBName
	default:
		return ""
	}
}

// TenantDSN returns the MySQL connection string for a tenant database,
// applying the configured prefix to the stored name and user.
func (c *TenantConfig) TenantDSN(dbName, dbUser, password string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Prefix+dbUser, password, c.Host, c.Port, c.Prefix+dbName)
}
