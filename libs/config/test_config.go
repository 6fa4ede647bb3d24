package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from TEST_* variables
//
// When the database variables are missing an empty Config is returned, so DSN() is empty
// and callers can skip or fall back.
func LoadTestConfig() (*Config, error) {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	cfg.Database.User = os.Getenv("TEST_DB_USER")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")
	dbPortStr := os.Getenv("TEST_DB_PORT")
	if cfg.Database.Host == "" || dbPortStr == "" || cfg.Database.User == "" || cfg.Database.DBName == "" {
		return &Config{}, nil
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	cfg.JWT.Secret = os.Getenv("TEST_JWT_SECRET")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "integration-secret"
	}
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.Auth.BcryptCost = 4
	cfg.Storage.Backend = StorageBackendLocal
	cfg.Storage.BasePath = os.TempDir()
	cfg.Storage.BaseURL = "http://localhost:8080"

	return cfg, nil
}
