package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TEMPLATEHUB_"

// Config captures the runtime configuration for the templatehub backend service.
type Config struct {
	Port                 int               `koanf:"port"`
	CORSOrigin           string            `koanf:"cors_origin"`
	DatabaseURL          string            `koanf:"database_url"`
	LogLevel             string            `koanf:"log_level"`
	SessionTTL           time.Duration     `koanf:"session_ttl"`
	SessionSweepInterval time.Duration     `koanf:"session_sweep_interval"`
	CatalogSeed          string            `koanf:"catalog_seed"`
	CatalogCacheTTL      time.Duration     `koanf:"catalog_cache_ttl"`
	ObjectStore          ObjectStoreConfig `koanf:"object_store"`
}

// ObjectStoreConfig locates the S3-compatible service used for remote seed documents.
type ObjectStoreConfig struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// UsesDatabase reports whether persistent storage is configured.
func (c Config) UsesDatabase() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

var defaults = map[string]any{
	"port":                   3000,
	"cors_origin":            "*",
	"database_url":           "",
	"log_level":              "info",
	"session_ttl":            "2h",
	"session_sweep_interval": "10m",
	"catalog_seed":           "",
	"catalog_cache_ttl":      "1m",
	"object_store.region":    "us-east-1",
	"object_store.endpoint":  "",
}

// env maps environment variables onto config keys. Later entries win.
var env = []struct {
	name string
	key  string
}{
	{"PORT", "port"},
	{"CORS_ORIGIN", "cors_origin"},
	{EnvPrefix + "PORT", "port"},
	{EnvPrefix + "CORS_ORIGIN", "cors_origin"},
	{EnvPrefix + "DATABASE_URL", "database_url"},
	{EnvPrefix + "LOG_LEVEL", "log_level"},
	{EnvPrefix + "SESSION_TTL", "session_ttl"},
	{EnvPrefix + "SESSION_SWEEP_INTERVAL", "session_sweep_interval"},
	{EnvPrefix + "CATALOG_SEED", "catalog_seed"},
	{EnvPrefix + "CATALOG_CACHE_TTL", "catalog_cache_ttl"},
	{EnvPrefix + "S3_REGION", "object_store.region"},
	{EnvPrefix + "S3_ENDPOINT", "object_store.endpoint"},
}

// RegisterFlags adds the command line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 3000, "HTTP listen port")
	fs.String("cors-origin", "*", "value of Access-Control-Allow-Origin")
	fs.String("database-url", "", "PostgreSQL connection string; empty keeps everything in memory")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Duration("session-ttl", 2*time.Hour, "lifetime of issued bearer tokens")
	fs.String("catalog-seed", "", "catalog seed source: builtin, a JSON file path or s3://bucket/key")
}

// Load resolves configuration from defaults, the optional YAML file at path,
// environment variables and finally flags that were explicitly set.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	for _, e := range env {
		if value, ok := os.LookupEnv(e.name); ok && value != "" {
			if err := k.Set(e.key, value); err != nil {
				return Config{}, fmt.Errorf("apply %s: %w", e.name, err)
			}
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.SessionSweepInterval <= 0 {
		errs = append(errs, errors.New("session_sweep_interval must be positive"))
	}
	if c.CatalogCacheTTL < 0 {
		errs = append(errs, errors.New("catalog_cache_ttl must not be negative"))
	}
	if strings.TrimSpace(c.CORSOrigin) == "" {
		errs = append(errs, errors.New("cors_origin must not be empty"))
	}
	return errors.Join(errs...)
}
