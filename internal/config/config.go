// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	API      APIConfig
	Planner  PlannerConfig
	Metrics  MetricsConfig
}

// AppConfig holds base settings.
type AppConfig struct {
	Name     string `env:"APP_NAME" envDefault:"blocplan"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     int    `env:"APP_PORT" envDefault:"7040"`
	LogLevel string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	Name            string        `env:"DB_NAME" envDefault:"blocplan"`
	User            string        `env:"DB_USER" envDefault:"blocplan"`
	Password        string        `env:"DB_PASSWORD" envDefault:"blocplan123"`
	SSLMode         string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN returns the connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig holds HTTP settings.
type APIConfig struct {
	RateLimit   int           `env:"API_RATE_LIMIT" envDefault:"100"`
	Timeout     time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	CORSEnabled bool          `env:"API_CORS_ENABLED" envDefault:"true"`
}

// PlannerConfig holds planning engine settings.
type PlannerConfig struct {
	GenerationTimeout     time.Duration `env:"PLANNER_GENERATION_TIMEOUT" envDefault:"30s"`
	MaxRoomsPerSupervisor int           `env:"PLANNER_MAX_ROOMS_PER_SUPERVISOR" envDefault:"3"`
	HistoryWindowDays     int           `env:"PLANNER_HISTORY_WINDOW_DAYS" envDefault:"30"`
}

// MetricsConfig holds monitoring settings.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Planner.MaxRoomsPerSupervisor < 1 {
		return nil, fmt.Errorf("PLANNER_MAX_ROOMS_PER_SUPERVISOR must be at least 1")
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in development.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
