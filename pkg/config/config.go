package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Scheduler SchedulerConfig
	Redis     RedisConfig
	Geo       GeoConfig
	Notify    NotifyConfig
	Poll      PollConfig
	Snapshot  SnapshotConfig
}

// SchedulerConfig holds remote scheduler configuration
type SchedulerConfig struct {
	BaseURL       string
	Origin        string
	ServiceTypeID int
	Timeout       time.Duration
}

// RedisConfig holds Redis configuration. An empty host disables Redis and
// falls back to the in-memory cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// GeoConfig holds geolocation provider configuration
type GeoConfig struct {
	Provider string
	BaseURL  string
}

// NotifyConfig holds notification channel credentials. A channel with
// missing credentials is simply not wired.
type NotifyConfig struct {
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	SendGridAPIKey    string
	SendGridFromEmail string
}

// PollConfig holds poll loop configuration
type PollConfig struct {
	Interval             time.Duration
	MaxConcurrentFetches int
}

// SnapshotConfig holds snapshot store configuration
type SnapshotConfig struct {
	Path string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Env: getEnv("ENV", "development"),
		Scheduler: SchedulerConfig{
			BaseURL:       getEnv("SCHEDULER_BASE_URL", "https://publicapi.txdpsscheduler.com/api"),
			Origin:        getEnv("SCHEDULER_ORIGIN", "https://public.txdpsscheduler.com"),
			ServiceTypeID: getEnvAsInt("SCHEDULER_SERVICE_TYPE_ID", 71),
			Timeout:       getEnvAsDuration("SCHEDULER_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Geo: GeoConfig{
			Provider: getEnv("GEO_PROVIDER", "zippopotam"),
			BaseURL:  getEnv("GEO_BASE_URL", "https://api.zippopotam.us/us"),
		},
		Notify: NotifyConfig{
			TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber:  getEnv("TWILIO_PHONE_NUMBER", ""),
			SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
			SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		},
		Poll: PollConfig{
			Interval:             getEnvAsDuration("POLL_INTERVAL", 5*time.Minute),
			MaxConcurrentFetches: getEnvAsInt("MAX_CONCURRENT_FETCHES", 10),
		},
		Snapshot: SnapshotConfig{
			Path: getEnv("SNAPSHOT_PATH", "locations.csv"),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
