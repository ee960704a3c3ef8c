// Package config loads demandscope configuration from an optional YAML file
// merged over defaults, then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all demandscope configuration.
type Config struct {
	DataForSEO DataForSEOConfig `yaml:"dataforseo"`
	Run        RunConfig        `yaml:"run"`
	Cost       CostConfig       `yaml:"cost"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	NATS       NATSConfig       `yaml:"nats"`
	Neo4j      Neo4jConfig      `yaml:"neo4j"`
	Redis      RedisConfig      `yaml:"redis"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type DataForSEOConfig struct {
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Sandbox  bool          `yaml:"sandbox"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RunConfig struct {
	Delay        time.Duration `yaml:"delay"`
	MaxPerBatch  int           `yaml:"max_per_batch"`
	CostPerBatch float64       `yaml:"cost_per_batch"`
	LanguageCode string        `yaml:"language_code"`
	Retries      int           `yaml:"retries"`
	// BreakerThreshold consecutive provider failures stop the remaining
	// batches of a run. Zero disables the breaker.
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

type CostConfig struct {
	AllowRealMoney bool    `yaml:"allow_real_money"`
	MaxAllowedCost float64 `yaml:"max_allowed_cost"`
}

type ScoringConfig struct {
	VolumeNorm            float64 `yaml:"volume_norm"`
	MaxMarkets            int     `yaml:"max_markets"`
	SignificanceThreshold int64   `yaml:"significance_threshold"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type ServerConfig struct {
	Port              string `yaml:"port"`
	CORSOrigin        string `yaml:"cors_origin"`
	DashboardPassword string `yaml:"dashboard_password"`
	SecureCookies     bool   `yaml:"secure_cookies"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type Neo4jConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Pass     string `yaml:"pass"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataForSEO: DataForSEOConfig{
			Sandbox: true,
			Timeout: 60 * time.Second,
		},
		Run: RunConfig{
			Delay:        5 * time.Second,
			MaxPerBatch:  1000,
			CostPerBatch: 0.05,
			LanguageCode: "en",

			BreakerThreshold: 5,
			BreakerCooldown:  2 * time.Minute,
		},
		Cost: CostConfig{
			MaxAllowedCost: 1.00,
		},
		Scoring: ScoringConfig{
			VolumeNorm: 10000,
			MaxMarkets: 5,
		},
		Storage: StorageConfig{
			DataDir: "data/api-results",
		},
		Server: ServerConfig{
			Port:       "8080",
			CORSOrigin: "*",
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "demandscope",
			SampleRatio: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	env := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	str := func(key string, dst *string) {
		if v, ok := env(key); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := env(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err))
				return
			}
			*dst = b
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := env(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err))
				return
			}
			*dst = f
		}
	}

	str("DATAFORSEO_USERNAME", &c.DataForSEO.Username)
	str("DATAFORSEO_PASSWORD", &c.DataForSEO.Password)
	boolean("DATAFORSEO_USE_SANDBOX", &c.DataForSEO.Sandbox)
	str("DASHBOARD_PASSWORD", &c.Server.DashboardPassword)
	str("DEMANDSCOPE_DATA_DIR", &c.Storage.DataDir)
	boolean("ALLOW_REAL_MONEY", &c.Cost.AllowRealMoney)
	float("MAX_ALLOWED_COST", &c.Cost.MaxAllowedCost)
	str("NATS_URL", &c.NATS.URL)
	str("NEO4J_URL", &c.Neo4j.URL)
	str("NEO4J_USER", &c.Neo4j.User)
	str("NEO4J_PASS", &c.Neo4j.Pass)
	str("REDIS_URL", &c.Redis.URL)
	str("PORT", &c.Server.Port)
	str("CORS_ORIGIN", &c.Server.CORSOrigin)
	str("LOG_LEVEL", &c.Logging.Level)
	boolean("OTEL_ENABLED", &c.Telemetry.Enabled)
	return errors.Join(errs...)
}

// Validate checks ranges that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, reason string) {
		errs = append(errs, fmt.Errorf("%w: %s %s", ErrInvalid, field, reason))
	}
	if c.Run.MaxPerBatch <= 0 || c.Run.MaxPerBatch > 1000 {
		bad("run.max_per_batch", "must be between 1 and 1000")
	}
	if c.Run.Delay < 0 {
		bad("run.delay", "must not be negative")
	}
	if c.Run.CostPerBatch < 0 {
		bad("run.cost_per_batch", "must not be negative")
	}
	if c.Run.Retries < 0 {
		bad("run.retries", "must not be negative")
	}
	if c.Run.BreakerThreshold < 0 {
		bad("run.breaker_threshold", "must not be negative")
	}
	if c.Cost.MaxAllowedCost < 0 {
		bad("cost.max_allowed_cost", "must not be negative")
	}
	if c.Scoring.VolumeNorm <= 0 {
		bad("scoring.volume_norm", "must be positive")
	}
	if c.Scoring.MaxMarkets <= 0 {
		bad("scoring.max_markets", "must be positive")
	}
	if c.Scoring.SignificanceThreshold < 0 {
		bad("scoring.significance_threshold", "must not be negative")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		bad("storage.data_dir", "must not be empty")
	}
	return errors.Join(errs...)
}

// HasCredentials reports whether DataForSEO credentials are configured.
func (c *Config) HasCredentials() bool {
	return c.DataForSEO.Username != "" && c.DataForSEO.Password != ""
}
