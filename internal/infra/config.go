package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const insecureSessionSecret = "change-me-in-production"

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Server
	Port int `env:"PORT" envDefault:"5000"`

	// Credential store
	UsersFile     string `env:"USERS_FILE" envDefault:"users.json"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	// Risk evaluation
	Strategy   string `env:"STRATEGY" envDefault:"rules"`
	ModelPath  string `env:"MODEL_PATH" envDefault:"model.json"`
	StrictForm bool   `env:"STRICT_FORM_VALIDATION" envDefault:"false"`

	// Sessions
	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"change-me-in-production"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionDBPath  string        `env:"SESSION_DB_PATH"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Login attempts per client IP per minute, 0 disables limiting.
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" envDefault:"0"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	AuditTopic   string `env:"AUDIT_TOPIC" envDefault:"strokecheck.audit"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig reads an optional .env file and parses environment variables
// into a Config struct. Variables already set in the environment win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for invalid or insecure configuration.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	switch c.Strategy {
	case "rules", "forest":
	default:
		return fmt.Errorf("STRATEGY must be rules or forest, got %q", c.Strategy)
	}
	switch c.SessionBackend {
	case "memory", "badger":
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory or badger, got %q", c.SessionBackend)
	}
	if c.SessionBackend == "badger" && c.SessionDBPath == "" {
		return fmt.Errorf("SESSION_DB_PATH is required when SESSION_BACKEND=badger")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.LoginRateLimit < 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must not be negative, got %d", c.LoginRateLimit)
	}

	if c.AllowInsecureDefaults {
		return nil
	}
	if c.SessionSecret == insecureSessionSecret {
		return fmt.Errorf("SESSION_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET is too short (%d chars); minimum 32 characters required", len(c.SessionSecret))
	}
	return nil
}

// UsePostgres reports whether credentials live in PostgreSQL.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
