// Package config loads fleetctl's runtime configuration from environment
// variables. Grounded on wisbric-nightowl/internal/config/config.go's
// struct-tag approach using caarlos0/env.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting fleetctl reads from its environment. Most
// components also read their own narrower env vars directly (see
// pkg/transport, pkg/playbook) for settings that are
// purely internal to one subsystem; this struct covers the settings
// cmd/fleetctl needs to wire the server up at startup.
type Config struct {
	// Server
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"true"`

	// Storage
	DataDir string `env:"DATA_DIR" envDefault:"/var/lib/fleetctl"`

	// Role catalog seed file, re-read on startup only; see pkg/registry.SeedRoleCatalog.
	RolesFile string `env:"ROLES_FILE"`

	// Credential vault
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	// Code cache
	CacheRoot        string `env:"CACHE_ROOT" envDefault:"/var/lib/fleetctl/cache"`
	RetentionMaxAge  string `env:"RETENTION_MAX_AGE" envDefault:"168h"`
	RetentionMinKeep int    `env:"RETENTION_MIN_KEEP" envDefault:"3"`

	// Transport
	SSHKeyPath       string `env:"SSH_KEY_PATH"`
	MaxConcurrentSSH int    `env:"MAX_CONCURRENT_SSH" envDefault:"16"`

	// Playbook runner
	AnsibleDir    string `env:"ANSIBLE_DIR"`
	InventoryPath string `env:"INVENTORY_PATH"`

	// Optional cross-process progress relay; unset disables it entirely.
	RedisURL string `env:"REDIS_URL"`
}

// Load parses environment variables into a Config, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
</content>
