package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Pesokrava/coffee_catalog/internal/pkg/validator"
)

// Config holds all configuration for the application
type Config struct {
	Env      string `validate:"required,oneof=development test production"`
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Cache    CacheConfig
	Import   ImportConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            string `validate:"required,numeric"`
	User            string `validate:"required"`
	Password        string
	Name            string `validate:"required"`
	SSLMode         string `validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `validate:"gte=1"`
	MaxIdleConns    int    `validate:"gte=0"`
	ConnMaxLifetime time.Duration
	MigrationsDir   string `validate:"required"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	Password string
	DB       int `validate:"gte=0"`
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL     string `validate:"required,url"`
	Subject string `validate:"required"`
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	ProductTTL time.Duration `validate:"gt=0"`
}

// ImportConfig holds settings for the catalog importer
type ImportConfig struct {
	File string
}

// Load reads configuration from environment variables and returns a Config struct
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "coffee_catalog")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_MIGRATIONS_DIR", "migrations")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT", "products.events")

	v.SetDefault("CACHE_TTL_PRODUCT", "300s")

	v.SetDefault("IMPORT_FILE", "catalog.yaml")

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	productTTL, err := time.ParseDuration(v.GetString("CACHE_TTL_PRODUCT"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_PRODUCT: %w", err)
	}

	config := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			MigrationsDir:   v.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
		},
		Cache: CacheConfig{
			ProductTTL: productTTL,
		},
		Import: ImportConfig{
			File: v.GetString("IMPORT_FILE"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded values against their constraints
func (c *Config) Validate() error {
	if err := validator.Get().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
