// Package config loads service configuration from environment
// variables via envconfig.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the service.
type Config struct {
	// --- HTTP ---
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// --- Database ---
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"auction"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"auction"`
	DBName     string `envconfig:"DB_NAME" default:"auction_house"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// --- Fan-out ---
	RedisAddr        string   `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaInboxBuffer int      `envconfig:"KAFKA_INBOX_BUFFER" default:"1024"`

	// --- Auction core ---
	// HoldDays is how long escrow holds funds before auto-release.
	HoldDays int `envconfig:"HOLD_DAYS" default:"7"`
	// ExtendWindow is how close to the deadline a bid must land to
	// trigger an auto-extension.
	ExtendWindow time.Duration `envconfig:"EXTEND_WINDOW" default:"5m"`

	// --- Sweeps (robfig/cron specs) ---
	AuctionSweepSpec  string `envconfig:"AUCTION_SWEEP_SPEC" default:"@every 30s"`
	ActivateSweepSpec string `envconfig:"ACTIVATE_SWEEP_SPEC" default:"@every 30s"`
	EscrowSweepSpec   string `envconfig:"ESCROW_SWEEP_SPEC" default:"@every 10m"`

	// --- Application ---
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// HoldPeriod returns HoldDays as a duration.
func (c *Config) HoldPeriod() time.Duration {
	return time.Duration(c.HoldDays) * 24 * time.Hour
}

func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.HoldDays <= 0 {
		return fmt.Errorf("HOLD_DAYS must be > 0")
	}
	if c.ExtendWindow <= 0 {
		return fmt.Errorf("EXTEND_WINDOW must be > 0")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	return nil
}

// Load reads environment variables into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
