package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults should not error, got: %v", err)
	}

	if cfg.Address() != "localhost:8084" {
		t.Errorf("Address() = %q, want %q", cfg.Address(), "localhost:8084")
	}
	if cfg.Dataset.File != "dataset.xlsx" {
		t.Errorf("Dataset.File = %q, want dataset.xlsx", cfg.Dataset.File)
	}
	if cfg.Dataset.Columns["DS_REGIAO"] != "region" {
		t.Errorf("expected DS_REGIAO to map to region, got %q", cfg.Dataset.Columns["DS_REGIAO"])
	}
	if len(cfg.Dataset.Columns) != 4 {
		t.Errorf("expected 4 column mappings, got %d", len(cfg.Dataset.Columns))
	}
	if cfg.Dataset.TopN != 10 {
		t.Errorf("Dataset.TopN = %d, want 10", cfg.Dataset.TopN)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Errorf("cache should be disabled by default, got addr %q", cfg.Cache.RedisAddr)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATASET_FILE", "orders.csv")
	t.Setenv("DATASET_COLUMNS", "Data:date,Valor:amount,Regiao:region,Produto:product")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CACHE_REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Dataset.File != "orders.csv" {
		t.Errorf("Dataset.File = %q", cfg.Dataset.File)
	}
	if cfg.Dataset.Columns["Valor"] != "amount" {
		t.Errorf("expected Valor to map to amount, got %v", cfg.Dataset.Columns)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %v", cfg.Security.AllowedOrigins)
	}
	if cfg.Cache.RedisAddr != "127.0.0.1:6379" {
		t.Errorf("Cache.RedisAddr = %q", cfg.Cache.RedisAddr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"unparseable port", "SERVER_PORT", "http"},
		{"zero read timeout", "SERVER_READ_TIMEOUT", "0s"},
		{"unsupported extension", "DATASET_FILE", "orders.json"},
		{"unknown column target", "DATASET_COLUMNS", "DT_PEDIDO:when"},
		{"non-positive top n", "DATASET_TOP_N", "0"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"zero rate", "SECURITY_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should error", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_DatasetOverride(t *testing.T) {
	t.Setenv("DATASET_FILE", "from-env.xlsx")

	cfg, err := Load(WithDatasetFile("orders.csv"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dataset.File != "orders.csv" {
		t.Errorf("Dataset.File = %q, want orders.csv", cfg.Dataset.File)
	}

	cfg, err = Load(WithDatasetFile(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dataset.File != "from-env.xlsx" {
		t.Errorf("empty override should keep env value, got %q", cfg.Dataset.File)
	}

	if _, err := Load(WithDatasetFile("orders.txt")); err == nil {
		t.Error("override should still be validated")
	}
}
