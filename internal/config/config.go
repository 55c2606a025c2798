// Package config provides configuration management for the valuation service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Sources   SourcesConfig
	Forecast  ForecastConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// URL returns the connection URL used by the migration tooling.
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// SourcesConfig holds external data provider configuration. Base URLs are
// overridable so tests and staging can point at stubs.
type SourcesConfig struct {
	CensusBaseURL      string
	CensusAPIKey       string
	FuelEconomyBaseURL string
	RecallsBaseURL     string
	TheftCheckBaseURL  string
	GeocodeBaseURL     string
	ZipBaseURL         string
	RequestTimeout     time.Duration
	RequestsPerSecond  float64
}

// ForecastConfig holds forecast engine configuration
type ForecastConfig struct {
	ResultCacheTTL time.Duration
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "valuation"),
				User:           getEnv("POSTGRES_USER", "valuation"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Sources: SourcesConfig{
			CensusBaseURL:      getEnv("CENSUS_BASE_URL", "https://api.census.gov/data"),
			CensusAPIKey:       getEnv("CENSUS_API_KEY", ""),
			FuelEconomyBaseURL: getEnv("FUELECONOMY_BASE_URL", "https://www.fueleconomy.gov/ws/rest"),
			RecallsBaseURL:     getEnv("RECALLS_BASE_URL", "https://api.nhtsa.gov"),
			TheftCheckBaseURL:  getEnv("THEFTCHECK_BASE_URL", "https://vincheck.nicb.org/api"),
			GeocodeBaseURL:     getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
			ZipBaseURL:         getEnv("ZIP_BASE_URL", "https://api.zippopotam.us"),
			RequestTimeout:     getEnvAsDuration("SOURCE_REQUEST_TIMEOUT", 5*time.Second),
			RequestsPerSecond:  getEnvAsFloat("SOURCE_REQUESTS_PER_SECOND", 2.0),
		},
		Forecast: ForecastConfig{
			ResultCacheTTL: getEnvAsDuration("FORECAST_CACHE_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
