package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the relbench configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Keyword  KeywordConfig  `yaml:"keyword"`
	Hybrid   HybridConfig   `yaml:"hybrid"`
	Judgment JudgmentConfig `yaml:"judgment"`
	Harness  HarnessConfig  `yaml:"harness"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty = auth disabled
}

// Database drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis, valkey (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix      string `yaml:"key_prefix"`
	ReportTTLHours int    `yaml:"report_ttl_hours"`
}

// ScoringConfig holds tokenizer and TF-IDF vocabulary settings.
type ScoringConfig struct {
	MinDF          int     `yaml:"min_df"`
	MaxDF          float64 `yaml:"max_df"`
	CaseSensitive  bool    `yaml:"case_sensitive"`
	MinTokenLength int     `yaml:"min_token_length"`
	Stem           bool    `yaml:"stem"`
}

// KeywordConfig holds keyword-overlap scorer settings. Nil weights take defaults.
type KeywordConfig struct {
	ExactMatchWeight   *float64 `yaml:"exact_match_weight"`
	PartialMatchWeight *float64 `yaml:"partial_match_weight"`
	TokenCacheSize     int      `yaml:"token_cache_size"` // 0 = default, < 0 disables
}

// HybridConfig toggles the RRF fusion of TF-IDF and keyword rankings.
type HybridConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// JudgmentConfig holds ground-truth synthesis settings.
type JudgmentConfig struct {
	RelevanceThreshold *float64 `yaml:"relevance_threshold"`
}

// HarnessConfig holds comparison run settings.
type HarnessConfig struct {
	WorkerCount         int `yaml:"worker_count"`
	PerQueryResultLimit int `yaml:"per_query_result_limit"`
	SearchLimit         int `yaml:"search_limit"` // 0 = full ranking
	MetricK             int `yaml:"metric_k"`
	RunDeadlineSec      int `yaml:"run_deadline_sec"` // 0 = no deadline
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "relbench:"
	}
	if c.Storage.ReportTTLHours <= 0 {
		c.Storage.ReportTTLHours = 168
	}
	if c.Scoring.MinDF <= 0 {
		c.Scoring.MinDF = 1
	}
	if c.Scoring.MaxDF == 0 {
		c.Scoring.MaxDF = 1.0
	}
	if c.Keyword.ExactMatchWeight == nil {
		c.Keyword.ExactMatchWeight = ptr(1.0)
	}
	if c.Keyword.PartialMatchWeight == nil {
		c.Keyword.PartialMatchWeight = ptr(0.5)
	}
	if c.Keyword.TokenCacheSize == 0 {
		c.Keyword.TokenCacheSize = 4096
	}
	if c.Hybrid.Enabled == nil {
		c.Hybrid.Enabled = ptr(true)
	}
	if c.Judgment.RelevanceThreshold == nil {
		c.Judgment.RelevanceThreshold = ptr(0.5)
	}
	if c.Harness.WorkerCount <= 0 {
		c.Harness.WorkerCount = 4
	}
	if c.Harness.PerQueryResultLimit <= 0 {
		c.Harness.PerQueryResultLimit = 5
	}
	if c.Harness.MetricK <= 0 {
		c.Harness.MetricK = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be memory, redis or valkey, got %q", c.Database.Driver)
	}
	if c.Scoring.MaxDF <= 0 || c.Scoring.MaxDF > 1 {
		return fmt.Errorf("scoring.max_df must be in (0, 1], got %g", c.Scoring.MaxDF)
	}
	if c.Scoring.MinTokenLength < 0 {
		return fmt.Errorf("scoring.min_token_length must be >= 0, got %d", c.Scoring.MinTokenLength)
	}
	if w := c.ExactMatchWeight(); w < 0 {
		return fmt.Errorf("keyword.exact_match_weight must be >= 0, got %g", w)
	}
	if w := c.PartialMatchWeight(); w < 0 {
		return fmt.Errorf("keyword.partial_match_weight must be >= 0, got %g", w)
	}
	if th := c.RelevanceThreshold(); th < 0 || th > 1 {
		return fmt.Errorf("judgment.relevance_threshold must be in [0, 1], got %g", th)
	}
	if c.Harness.SearchLimit < 0 {
		return fmt.Errorf("harness.search_limit must be >= 0, got %d", c.Harness.SearchLimit)
	}
	if c.Harness.RunDeadlineSec < 0 {
		return fmt.Errorf("harness.run_deadline_sec must be >= 0, got %d", c.Harness.RunDeadlineSec)
	}
	return nil
}

// ExactMatchWeight returns the keyword exact-match weight (default 1.0).
func (c *Config) ExactMatchWeight() float64 { return deref(c.Keyword.ExactMatchWeight, 1.0) }

// PartialMatchWeight returns the keyword partial-match weight (default 0.5).
func (c *Config) PartialMatchWeight() float64 { return deref(c.Keyword.PartialMatchWeight, 0.5) }

// HybridEnabled reports whether the hybrid RRF algorithm is registered (default true).
func (c *Config) HybridEnabled() bool { return deref(c.Hybrid.Enabled, true) }

// RelevanceThreshold returns the judgment relevance cut-off (default 0.5).
func (c *Config) RelevanceThreshold() float64 { return deref(c.Judgment.RelevanceThreshold, 0.5) }

// RunDeadline returns the harness deadline; 0 means none.
func (c *Config) RunDeadline() time.Duration {
	return time.Duration(c.Harness.RunDeadlineSec) * time.Second
}

// ReportTTL returns how long stored reports are kept.
func (c *Config) ReportTTL() time.Duration {
	return time.Duration(c.Storage.ReportTTLHours) * time.Hour
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
