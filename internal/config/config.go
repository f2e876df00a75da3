package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	// Reddit API configuration
	Reddit RedditConfig

	// Database configuration
	Database DatabaseConfig

	// HTTP server configuration (read-only API)
	Server ServerConfig

	// Ingestion configuration
	Ingest IngestConfig
}

// RedditConfig holds Reddit API credentials and client settings
type RedditConfig struct {
	ClientID       string
	ClientSecret   string
	UserAgent      string
	RequestTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// IngestConfig holds ingestion run settings
type IngestConfig struct {
	PageSize     int
	CommentLimit int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present, so local runs do not need
// exported variables.
func Load() (*Config, error) {
	_ = gotenv.Load()

	cfg := &Config{
		Reddit: RedditConfig{
			ClientID:       getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret:   getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:      getEnv("REDDIT_USER_AGENT", "subreddit-scraper/1.0"),
			RequestTimeout: getDurationEnv("REDDIT_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "subreddit_scraper"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Ingest: IngestConfig{
			PageSize:     getIntEnv("INGEST_PAGE_SIZE", 100),
			CommentLimit: getIntEnv("INGEST_COMMENT_LIMIT", 500),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	return nil
}

// ValidateCredentials checks that Reddit API credentials are present.
// Only the ingest command needs them; the read API server does not.
func (c *RedditConfig) ValidateCredentials() error {
	if c.ClientID == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_SECRET is required")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
