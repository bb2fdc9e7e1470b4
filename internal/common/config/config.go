package config

import (
	"os"
	"regexp"
	"time"

	"github.com/openfleet/fleetgate/pkg/helper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads the API server configuration from a YAML file with
// environment variable support.
func LoadConfig(filename string) (*APIServerConfig, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = resolveEnv(data)
	var cfg APIServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	setDefaults(&cfg)

	return &cfg, cfgPath, nil
}

// setDefaults fills in values the YAML file may omit.
func setDefaults(cfg *APIServerConfig) {
	if cfg.JWT.Duration <= 0 {
		cfg.JWT.Duration = 24 * time.Hour
	}
	if cfg.Session.Type == "" {
		cfg.Session.Type = "memory"
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 12 * time.Hour
	}
	if cfg.Tenant.PanelAccountID == 0 {
		cfg.Tenant.PanelAccountID = 1
	}
	if cfg.Blob.Dir == "" {
		cfg.Blob.Dir = "files"
	}
}

// resolveEnv replaces environment variable placeholders in YAML content
func resolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
