package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting the service reads from the
// environment. Values with defaults are safe for local development.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PGHost           string `env:"PG_HOST" envDefault:"localhost"`
	PGPort           string `env:"PG_PORT" envDefault:"5432"`
	PGDatabase       string `env:"PG_DATABASE" envDefault:"stealgame"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Shared secret for the inbound Neynar webhook HMAC.
	WebhookSecret    string `env:"NEYNAR_WEBHOOK_SECRET,required"`
	NeynarAPIKey     string `env:"NEYNAR_API_KEY"`
	NeynarSignerUUID string `env:"NEYNAR_SIGNER_UUID"`

	// Daily round cutoff, expressed as civil wall-clock time in CutoffZone.
	CutoffHour   int    `env:"ROUND_CUTOFF_HOUR" envDefault:"16"`
	CutoffMinute int    `env:"ROUND_CUTOFF_MINUTE" envDefault:"0"`
	CutoffZone   string `env:"ROUND_CUTOFF_ZONE" envDefault:"America/Los_Angeles"`

	StartingPoints int64 `env:"STARTING_POINTS" envDefault:"100"`

	JWTPublicKeyPath string `env:"JWT_PUBLIC_KEY_PATH"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// PostgresURL assembles the pgx connection string the same way the
// individual PG_* variables describe it.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.PostgresUser, c.PostgresPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// CutoffLocation resolves the configured timezone name.
func (c *Config) CutoffLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.CutoffZone)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUND_CUTOFF_ZONE %q: %w", c.CutoffZone, err)
	}
	return loc, nil
}
