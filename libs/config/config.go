// Package config provides configuration for the CourseHub processes
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends supported by the media uploader
const (
	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
	Reminder  ReminderConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port pair of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
	// UploadTimeout bounds a single media upload; other requests keep the server timeouts
	UploadTimeout time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AuthConfig holds password hashing settings
type AuthConfig struct {
	BcryptCost int
}

// RateLimitConfig holds the per-IP request budget
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// StorageConfig holds media storage settings
type StorageConfig struct {
	Backend            string
	BasePath           string
	BaseURL            string
	GCSBucket          string
	GCSCredentialsFile string
}

// ReminderConfig holds progress reminder scheduler settings
type ReminderConfig struct {
	Cron       string
	StaleAfter time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	godotenv.Load()

	cfg := &Config{}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	serverPort, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	uploadTimeout, err := durationFromEnv("UPLOAD_TIMEOUT", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.Server.UploadTimeout = uploadTimeout

	cfg.Logging.Level = stringFromEnv("LOG_LEVEL", "info")
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	// Tokens live for 30 days unless configured otherwise
	accessExpiry, err := durationFromEnv("JWT_ACCESS_TOKEN_EXPIRY", 720*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	bcryptCost, err := intFromEnv("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	if bcryptCost < 4 || bcryptCost > 31 {
		return nil, fmt.Errorf("invalid BCRYPT_COST: must be between 4 and 31")
	}
	cfg.Auth.BcryptCost = bcryptCost

	rateRequests, err := intFromEnv("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.Requests = rateRequests

	rateWindow, err := durationFromEnv("RATE_LIMIT_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.Window = rateWindow

	cfg.Redis.Host = stringFromEnv("REDIS_HOST", "localhost")
	redisPort, err := intFromEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := intFromEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	cfg.SMTP.Host = stringFromEnv("SMTP_HOST", "localhost")
	smtpPort, err := intFromEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTP.Port = smtpPort
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = stringFromEnv("SMTP_FROM", "noreply@coursehub.dev")

	cfg.Storage.Backend = strings.ToLower(stringFromEnv("STORAGE_BACKEND", StorageBackendLocal))
	cfg.Storage.BasePath = stringFromEnv("MEDIA_BASE_PATH", "./uploads")
	cfg.Storage.BaseURL = strings.TrimRight(
		stringFromEnv("MEDIA_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)), "/")
	cfg.Storage.GCSBucket = os.Getenv("GCS_BUCKET")
	cfg.Storage.GCSCredentialsFile = os.Getenv("GCS_CREDENTIALS_FILE")
	switch cfg.Storage.Backend {
	case StorageBackendLocal:
	case StorageBackendGCS:
		if cfg.Storage.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required when STORAGE_BACKEND is gcs")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %s", cfg.Storage.Backend)
	}

	cfg.Reminder.Cron = stringFromEnv("REMINDER_CRON", "0 9 * * *")
	staleAfter, err := durationFromEnv("REMINDER_STALE_AFTER", 168*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Reminder.StaleAfter = staleAfter

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// parseOrigins splits a comma-separated origin list, falling back to "*"
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
