// Package config loads runtime startup configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when --config is not provided.
const DefaultConfigPath = "config.yml"

// AppConfig holds runtime startup configuration.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
}

// DatabaseConfig describes the MySQL connection.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// MySQLDSN returns the configured DSN, assembling one from parts when the
// dsn field is absent.
func (c *AppConfig) MySQLDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	charset := c.Database.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password,
		c.Database.Host, c.Database.Port, c.Database.Name, charset)
}

// Load reads and validates the YAML config file, applying defaults and
// environment overrides for secrets.
func Load(configPath string) (*AppConfig, error) {
	path := configPath
	if path == "" {
		path = DefaultConfigPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 2333
	}
	if cfg.Env == "" {
		cfg.Env = envOr("APP_ENV", "development")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = envOr("REDIS_URL", "redis://localhost:6379/0")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		cfg.Database.DSN = os.Getenv("DATABASE_DSN")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("config: database connection is not configured")
	}

	return &cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
