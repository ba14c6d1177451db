// Package config loads layered service configuration with koanf: defaults,
// YAML files, .env and APP_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults referenced by tests and by defaults().
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
	DefaultTransportIdleConnTimeout     = 90 * time.Second

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultQuoteCacheTTL is how long a scraped listing counts as fresh.
	DefaultQuoteCacheTTL = 24 * time.Hour

	// DefaultUserAgent is sent on scrape requests; the listing sites block
	// the Go default.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultOpenAIMaxTokens   = 150
	DefaultOpenAITemperature = 0.8
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Quotes    QuotesConfig    `koanf:"quotes"    validate:"required"`
	Cache     CacheConfig     `koanf:"cache"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Zen           ServiceEndpointConfig `koanf:"zen"           validate:"required"`
	Bible         ServiceEndpointConfig `koanf:"bible"         validate:"required"`
	Goodreads     ServiceEndpointConfig `koanf:"goodreads"     validate:"required"`
	HighExistence ServiceEndpointConfig `koanf:"highexistence" validate:"required"`
	OpenAI        OpenAIConfig          `koanf:"openai"        validate:"required"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
type ServiceEndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
	Path    string `koanf:"path"`
}

// OpenAIConfig contains settings for the chat completion API.
// An empty APIKey disables rewriting; quotes are then returned unchanged.
type OpenAIConfig struct {
	BaseURL     string  `koanf:"base_url"    validate:"required,url"`
	Name        string  `koanf:"name"        validate:"required"`
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"       validate:"required"`
	MaxTokens   int     `koanf:"max_tokens"  validate:"required,min=1,max=4096"`
	Temperature float64 `koanf:"temperature" validate:"min=0,max=2"`
}

// QuotesConfig contains quote acquisition settings.
type QuotesConfig struct {
	CacheTTL        time.Duration   `koanf:"cache_ttl"        validate:"required,min=1s"`
	UserAgent       string          `koanf:"user_agent"       validate:"required"`
	WarmOnStart     bool            `koanf:"warm_on_start"`
	WarmConcurrency int             `koanf:"warm_concurrency" validate:"omitempty,min=1,max=10"`
	RefreshTimeout  time.Duration   `koanf:"refresh_timeout"  validate:"required,min=1s"`
	LDS             TagScrapeConfig `koanf:"lds"              validate:"required"`
	Software        TagScrapeConfig `koanf:"software"         validate:"required"`
}

// TagScrapeConfig contains settings for a paginated tag scrape.
type TagScrapeConfig struct {
	Tag       string        `koanf:"tag"        validate:"required"`
	MaxPages  int           `koanf:"max_pages"  validate:"required,min=1,max=50"`
	PageDelay time.Duration `koanf:"page_delay" validate:"min=0"`
}

// CacheConfig contains optional cache persistence settings.
type CacheConfig struct {
	Redis RedisConfig `koanf:"redis"`
}

// RedisConfig contains Redis connection settings for cache snapshots.
type RedisConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Addr        string        `koanf:"addr"         validate:"required_if=Enabled true"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"           validate:"min=0,max=15"`
	TLS         bool          `koanf:"tls"`
	SnapshotTTL time.Duration `koanf:"snapshot_ttl" validate:"min=0"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-dialects",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-dialects",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.zen.base_url":           "https://zenquotes.io",
		"services.zen.name":               "zenquotes",
		"services.bible.base_url":         "https://bible-api.com",
		"services.bible.name":             "bible-api",
		"services.goodreads.base_url":     "https://www.goodreads.com",
		"services.goodreads.name":         "goodreads",
		"services.highexistence.base_url": "https://www.highexistence.com",
		"services.highexistence.name":     "highexistence",
		"services.highexistence.path":     "/150-profound-philosophical-quotes-about-life-death-everything-in-between/",
		"services.openai.base_url":        "https://api.openai.com",
		"services.openai.name":            "openai",
		"services.openai.api_key":         "",
		"services.openai.model":           "gpt-3.5-turbo",
		"services.openai.max_tokens":      DefaultOpenAIMaxTokens,
		"services.openai.temperature":     DefaultOpenAITemperature,

		"quotes.cache_ttl":           "24h",
		"quotes.user_agent":          DefaultUserAgent,
		"quotes.warm_on_start":       true,
		"quotes.warm_concurrency":    2,
		"quotes.refresh_timeout":     "2m",
		"quotes.lds.tag":             "lds",
		"quotes.lds.max_pages":       6,
		"quotes.lds.page_delay":      "0s",
		"quotes.software.tag":        "programming",
		"quotes.software.max_pages":  10,
		"quotes.software.page_delay": "250ms",

		"cache.redis.enabled":      false,
		"cache.redis.addr":         "localhost:6379",
		"cache.redis.password":     "",
		"cache.redis.db":           0,
		"cache.redis.tls":          false,
		"cache.redis.snapshot_ttl": "0s",
	}
}

// compatEnv maps bare environment variables onto config keys.
var compatEnv = map[string]string{
	"OPENAI_API_KEY": "services.openai.api_key",
	"PORT":           "server.port",
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Compatibility variables (OPENAI_API_KEY, PORT)
//  2. Environment variables (APP_ prefix), including those from .env
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. .env never overrides variables already set in the process
	err = loadDotEnv(".env")
	if err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	// 5. Load environment variables with APP_ prefix
	keys := envKeyIndex(k)

	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		return envToKey(keys, s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// 6. Compatibility variables
	err = k.Load(confmap.Provider(compatOverrides(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading compatibility env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyIndex maps the underscore form of every known key to the key itself,
// so APP_SERVER_READ_TIMEOUT resolves to server.read_timeout.
func envKeyIndex(k *koanf.Koanf) map[string]string {
	index := make(map[string]string, len(k.Keys()))
	for _, key := range k.Keys() {
		index[strings.ReplaceAll(key, ".", "_")] = key
	}

	return index
}

// envToKey converts an APP_ variable name to a config key. Unknown names
// fall back to replacing every underscore with a dot.
func envToKey(index map[string]string, name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, "APP_"))
	if key, ok := index[s]; ok {
		return key
	}

	return strings.ReplaceAll(s, "_", ".")
}

// compatOverrides collects the non-empty compatibility variables.
func compatOverrides() map[string]any {
	out := make(map[string]any)

	for name, key := range compatEnv {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			out[key] = v
		}
	}

	return out
}

// loadDotEnv loads a dotenv file into the process environment if it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
