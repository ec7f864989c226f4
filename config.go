package main

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	HTTPAddr              string        `yaml:"http_addr"`
	DatabaseURL           string        `yaml:"database_url"`
	DBMaxOpenConns        int           `yaml:"db_max_open_conns"`
	TenantID              string        `yaml:"tenant_id"`
	CatalogPath           string        `yaml:"catalog_path"`
	CatalogReloadInterval time.Duration `yaml:"catalog_reload_interval"`
	JWTSecret             string        `yaml:"jwt_secret"`
	Currency              string        `yaml:"currency"`
	LogLevel              string        `yaml:"log_level"`
}

// loadConfig reads BILLING_CONFIG when set, then applies env overrides.
func loadConfig() (config, error) {
	cfg := config{
		HTTPAddr:              ":8080",
		TenantID:              "tenant-demo",
		DBMaxOpenConns:        10,
		CatalogReloadInterval: 30 * time.Second,
		Currency:              "USD",
		LogLevel:              "info",
	}

	if path := os.Getenv("BILLING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.DatabaseURL))
	cfg.DBMaxOpenConns = getenvIntDefault("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.TenantID = getenvDefault("TENANT_ID", cfg.TenantID)
	cfg.CatalogPath = getenvDefault("CATALOG_PATH", cfg.CatalogPath)
	cfg.CatalogReloadInterval = getenvDuration("CATALOG_RELOAD_INTERVAL", cfg.CatalogReloadInterval)
	cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", cfg.JWTSecret))
	cfg.Currency = getenvDefault("CURRENCY", cfg.Currency)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)

	if cfg.CatalogPath == "" {
		return cfg, errors.New("CATALOG_PATH is required")
	}
	if cfg.TenantID == "" {
		return cfg, errors.New("TENANT_ID is required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
