package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridchat/internal/domain"
)

// Knowledge sources.
const (
	SourceFiles = "files"
	SourceRedis = "redis"
	SourceNone  = "none"
)

// Grounded completion providers.
const (
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds the hybridchat configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Grounding GroundingConfig `yaml:"grounding"`
	Chat      ChatConfig      `yaml:"chat"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings. The database is optional:
// with no addrs the service runs without a run cache or Redis knowledge.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis (default)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// KnowledgeConfig selects and configures the internal knowledge source.
type KnowledgeConfig struct {
	Source         string `yaml:"source"` // files (default), redis, none
	Dir            string `yaml:"dir"`
	KeyPrefix      string `yaml:"key_prefix"`
	VocabularyPath string `yaml:"vocabulary_path"` // optional override of the built-in word lists
}

// GroundingConfig configures the grounded completion service.
type GroundingConfig struct {
	Provider       string `yaml:"provider"` // openai, none (default)
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	AssistantID    string `yaml:"assistant_id"`
	Model          string `yaml:"model"`
	Instructions   string `yaml:"instructions"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	PollBudgetMs   int    `yaml:"poll_budget_ms"`
	RunCacheTTLSec int    `yaml:"run_cache_ttl_sec"` // 0 disables the run cache
}

// PollInterval returns the delay between status polls.
func (g GroundingConfig) PollInterval() time.Duration {
	return time.Duration(g.PollIntervalMs) * time.Millisecond
}

// PollBudget returns the total time a run may take.
func (g GroundingConfig) PollBudget() time.Duration {
	return time.Duration(g.PollBudgetMs) * time.Millisecond
}

// RunCacheTTL returns how long extracted answers are cached.
func (g GroundingConfig) RunCacheTTL() time.Duration {
	return time.Duration(g.RunCacheTTLSec) * time.Second
}

// ChatConfig tunes reply composition.
type ChatConfig struct {
	MergeInternal bool `yaml:"merge_internal"`
}

// Load reads configuration by environment name (local, dev, prod, test).
// A .env file in the working directory is applied first when present.
func Load(env string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates a YAML config file.
func LoadFile(configPath string) (Config, error) {
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

// LoadDotEnv loads variables from path without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
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
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Knowledge.Source == "" {
		c.Knowledge.Source = SourceFiles
	}
	if c.Knowledge.Dir == "" {
		c.Knowledge.Dir = "data"
	}
	if c.Knowledge.KeyPrefix == "" {
		c.Knowledge.KeyPrefix = domain.KeyPrefix
	}
	if c.Grounding.Provider == "" {
		c.Grounding.Provider = ProviderNone
	}
	if c.Grounding.PollIntervalMs <= 0 {
		c.Grounding.PollIntervalMs = 2000
	}
	if c.Grounding.PollBudgetMs <= 0 {
		c.Grounding.PollBudgetMs = 30000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "redis" {
		return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
	}

	switch c.Knowledge.Source {
	case SourceFiles, SourceNone:
	case SourceRedis:
		if !c.Database.Enabled() {
			return fmt.Errorf("knowledge.source %q requires database.addrs", SourceRedis)
		}
	default:
		return fmt.Errorf("knowledge.source must be one of files, redis, none, got %q", c.Knowledge.Source)
	}

	switch c.Grounding.Provider {
	case ProviderNone:
	case ProviderOpenAI:
		if c.Grounding.AssistantID == "" {
			return fmt.Errorf("grounding.assistant_id is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("grounding.provider must be one of openai, none, got %q", c.Grounding.Provider)
	}

	if c.Grounding.PollIntervalMs >= c.Grounding.PollBudgetMs {
		return fmt.Errorf("grounding.poll_interval_ms (%d) must be less than poll_budget_ms (%d)",
			c.Grounding.PollIntervalMs, c.Grounding.PollBudgetMs)
	}
	if c.Grounding.RunCacheTTLSec < 0 {
		return fmt.Errorf("grounding.run_cache_ttl_sec must not be negative")
	}
	if c.Grounding.RunCacheTTLSec > 0 && !c.Database.Enabled() {
		return fmt.Errorf("grounding.run_cache_ttl_sec requires database.addrs")
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
