package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BILLING_CONFIG", "HTTP_ADDR", "DATABASE_URL", "PG_DSN", "DB_MAX_OPEN_CONNS", "TENANT_ID",
		"CATALOG_PATH", "CATALOG_RELOAD_INTERVAL", "AUTH_JWT_SECRET", "JWT_SECRET", "CURRENCY", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_RequiresCatalogPath(t *testing.T) {
	clearConfigEnv(t)
	if _, err := loadConfig(); err == nil {
		t.Fatalf("expected error without CATALOG_PATH")
	}
}

func TestLoadConfig_EnvDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CATALOG_PATH", "testdata/plays.json")
	t.Setenv("PG_DSN", "postgres://localhost/billing")
	t.Setenv("CATALOG_RELOAD_INTERVAL", "not-a-duration")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.TenantID != "tenant-demo" || cfg.Currency != "USD" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/billing" {
		t.Fatalf("PG_DSN fallback not applied: %q", cfg.DatabaseURL)
	}
	if cfg.CatalogReloadInterval != 30*time.Second {
		t.Fatalf("invalid duration should keep default, got %s", cfg.CatalogReloadInterval)
	}
}

func TestLoadConfig_FileWithEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "billing.yaml")
	content := `
http_addr: ":9090"
tenant_id: tenant-file
catalog_path: /etc/billing/plays.yaml
catalog_reload_interval: 1m
db_max_open_conns: 4
currency: EUR
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BILLING_CONFIG", path)
	t.Setenv("TENANT_ID", "tenant-env")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.CatalogPath != "/etc/billing/plays.yaml" || cfg.Currency != "EUR" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.TenantID != "tenant-env" {
		t.Fatalf("env should override file, got %q", cfg.TenantID)
	}
	if cfg.CatalogReloadInterval != time.Minute || cfg.DBMaxOpenConns != 4 {
		t.Fatalf("unexpected interval/conns: %s %d", cfg.CatalogReloadInterval, cfg.DBMaxOpenConns)
	}
}
