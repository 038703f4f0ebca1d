package config

import (
	"fmt"

	pkgconfig "github.com/akanakis/AgroMarket/pkg/config"
)

// Config holds all configuration for the marketplace API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"agromarket"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"agromarket_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"agromarket"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Rate limiting. RPS 0 disables the limiter.
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Tracing. An empty endpoint disables the OTLP exporter.
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load agromarket config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("invalid rate limit rps: %d", c.RateLimitRPS)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required")
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
