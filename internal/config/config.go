package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Logger   LoggerConfig   `envconfig:"LOG"`
	Security SecurityConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"8084"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatasetConfig describes the order spreadsheet and how its headers map onto
// the canonical date/amount/region/product columns.
type DatasetConfig struct {
	File    string            `envconfig:"FILE" default:"dataset.xlsx"`
	Sheet   string            `envconfig:"SHEET"`
	Columns map[string]string `envconfig:"COLUMNS" default:"DT_PEDIDO:date,NO_VALOR_TOTAL:amount,DS_REGIAO:region,DS_PRODUTO:product"`
	TopN    int               `envconfig:"TOP_N" default:"10"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
	Production      bool     `envconfig:"PRODUCTION" default:"false"`
}

// CacheConfig enables the Redis result cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	TTL       time.Duration `envconfig:"TTL" default:"5m"`
}

// Override adjusts the environment-derived configuration before it is
// validated, e.g. from command-line flags.
type Override func(*Config)

func WithDatasetFile(path string) Override {
	return func(c *Config) {
		if path != "" {
			c.Dataset.File = path
		}
	}
}

func Load(overrides ...Override) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

var canonicalColumns = []string{"date", "amount", "region", "product"}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.File == "" {
		return fmt.Errorf("dataset file path cannot be empty")
	}

	switch strings.ToLower(filepath.Ext(c.Dataset.File)) {
	case ".xlsx", ".csv":
	default:
		return fmt.Errorf("dataset file must be .xlsx or .csv, got %q", c.Dataset.File)
	}

	for source, target := range c.Dataset.Columns {
		if !slices.Contains(canonicalColumns, target) {
			return fmt.Errorf("column %q maps to unknown field %q, must be one of: %s", source, target, strings.Join(canonicalColumns, ", "))
		}
	}

	if c.Dataset.TopN <= 0 {
		return fmt.Errorf("top N must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when redis is configured")
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
