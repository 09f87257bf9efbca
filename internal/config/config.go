package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/resumatch/internal/domain/score"
)

// Embedding providers.
const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderHashing = "hashing"
)

// Cache drivers. An empty driver disables the cache.
const (
	DriverNone   = ""
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Config holds the resumatch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port               int      `yaml:"port"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	ShutdownSec        int      `yaml:"shutdown_timeout_sec"`
	MaxUploadMB        int      `yaml:"max_upload_mb"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"` // 0 = unlimited
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // openai, gemini, hashing
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	Instruction    string `yaml:"instruction"`
	MaxInputTokens int    `yaml:"max_input_tokens"` // 0 = no truncation
	Preload        bool   `yaml:"preload"`
}

// CacheConfig holds the optional embedding cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // "" (disabled), redis, valkey
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether an embedding cache is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != DriverNone }

// ScoringConfig holds fusion weights and verdict thresholds.
// Pointers distinguish "unset" from an explicit zero weight.
type ScoringConfig struct {
	LexicalWeight  *float64 `yaml:"lexical_weight"`
	SemanticWeight *float64 `yaml:"semantic_weight"`
	LowThreshold   *float64 `yaml:"low_threshold"`
	HighThreshold  *float64 `yaml:"high_threshold"`
}

// Policy converts the section into a score.Policy. Call after ApplyDefaults.
func (s ScoringConfig) Policy() score.Policy {
	p := score.DefaultPolicy()
	if s.LexicalWeight != nil {
		p.LexicalWeight = *s.LexicalWeight
	}
	if s.SemanticWeight != nil {
		p.SemanticWeight = *s.SemanticWeight
	}
	if s.LowThreshold != nil {
		p.LowThreshold = *s.LowThreshold
	}
	if s.HighThreshold != nil {
		p.HighThreshold = *s.HighThreshold
	}
	return p
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.Model == "" {
		switch c.Embedding.Provider {
		case ProviderOpenAI:
			c.Embedding.Model = "text-embedding-3-small"
		case ProviderGemini:
			c.Embedding.Model = "gemini-embedding-001"
		case ProviderHashing:
			c.Embedding.Model = "feature-hashing"
		}
	}
	if c.Cache.Enabled() {
		if c.Cache.TTLSec <= 0 {
			c.Cache.TTLSec = 7 * 24 * 3600
		}
		if c.Cache.ReadinessTimeout <= 0 {
			c.Cache.ReadinessTimeout = 10
		}
	}

	def := score.DefaultPolicy()
	if c.Scoring.LexicalWeight == nil {
		c.Scoring.LexicalWeight = &def.LexicalWeight
	}
	if c.Scoring.SemanticWeight == nil {
		c.Scoring.SemanticWeight = &def.SemanticWeight
	}
	if c.Scoring.LowThreshold == nil {
		c.Scoring.LowThreshold = &def.LowThreshold
	}
	if c.Scoring.HighThreshold == nil {
		c.Scoring.HighThreshold = &def.HighThreshold
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitPerMinute < 0 {
		return fmt.Errorf("http.rate_limit_per_minute must not be negative, got %d", c.HTTP.RateLimitPerMinute)
	}

	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderGemini:
		if c.Embedding.APIKey == "" && c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", c.Embedding.Provider)
		}
	case ProviderHashing:
	default:
		return fmt.Errorf("embedding.provider must be one of openai, gemini, hashing, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.MaxInputTokens < 0 {
		return fmt.Errorf("embedding.max_input_tokens must not be negative, got %d", c.Embedding.MaxInputTokens)
	}

	switch c.Cache.Driver {
	case DriverNone:
	case DriverRedis, DriverValkey:
		if len(c.Cache.Addrs) == 0 {
			return errors.New("cache.addrs is required when cache.driver is set")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("cache.db must not be negative, got %d", c.Cache.DB)
		}
	default:
		return fmt.Errorf("cache.driver must be empty, redis or valkey, got %q", c.Cache.Driver)
	}

	if err := c.Scoring.Policy().Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
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
