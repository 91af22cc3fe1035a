package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/query"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Knowledge.Source != SourceFiles || cfg.Knowledge.Dir != "data" {
		t.Errorf("unexpected knowledge defaults %+v", cfg.Knowledge)
	}
	if cfg.Knowledge.KeyPrefix != domain.KeyPrefix {
		t.Errorf("expected key prefix %q, got %q", domain.KeyPrefix, cfg.Knowledge.KeyPrefix)
	}
	if cfg.Grounding.Provider != ProviderNone {
		t.Errorf("expected provider none, got %q", cfg.Grounding.Provider)
	}
	if cfg.Grounding.PollInterval().Milliseconds() != 2000 || cfg.Grounding.PollBudget().Milliseconds() != 30000 {
		t.Errorf("unexpected poll defaults %v / %v", cfg.Grounding.PollInterval(), cfg.Grounding.PollBudget())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver"},
		{"bad source", func(c *Config) { c.Knowledge.Source = "s3" }, "knowledge.source must be"},
		{"redis source without db", func(c *Config) { c.Knowledge.Source = SourceRedis }, "requires database.addrs"},
		{"bad provider", func(c *Config) { c.Grounding.Provider = "bing" }, "grounding.provider"},
		{"openai without assistant", func(c *Config) { c.Grounding.Provider = ProviderOpenAI }, "assistant_id"},
		{"interval not below budget", func(c *Config) {
			c.Grounding.PollIntervalMs = 5000
			c.Grounding.PollBudgetMs = 5000
		}, "poll_interval_ms"},
		{"cache without db", func(c *Config) { c.Grounding.RunCacheTTLSec = 60 }, "run_cache_ttl_sec requires"},
		{"negative cache ttl", func(c *Config) { c.Grounding.RunCacheTTLSec = -1 }, "must not be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidate_RedisSourceWithDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Knowledge.Source = SourceRedis
	cfg.Database.Addrs = []string{"localhost:6379"}
	cfg.Grounding.RunCacheTTLSec = 300

	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("HC_TEST_KEY", "sk-123")
	t.Setenv("HC_TEST_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"key: ${HC_TEST_KEY}", "key: sk-123"},
		{"key: ${HC_TEST_EMPTY:-fallback}", "key: fallback"},
		{"key: ${HC_TEST_MISSING}", "key: "},
		{"key: ${HC_TEST_KEY:-unused}", "key: sk-123"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HC_TEST_ASSISTANT", "asst_42")
	path := writeTemp(t, "test.yaml", `
http:
  port: 9090
knowledge:
  source: none
grounding:
  provider: openai
  assistant_id: ${HC_TEST_ASSISTANT}
  poll_interval_ms: 500
chat:
  merge_internal: true
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Knowledge.Source != SourceNone {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Grounding.AssistantID != "asst_42" || cfg.Grounding.PollIntervalMs != 500 {
		t.Errorf("unexpected grounding %+v", cfg.Grounding)
	}
	if cfg.Grounding.PollBudgetMs != 30000 {
		t.Errorf("expected default budget, got %d", cfg.Grounding.PollBudgetMs)
	}
	if !cfg.Chat.MergeInternal {
		t.Error("expected merge_internal")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := writeTemp(t, "bad.yaml", "http:\n  port: 0\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected invalid config error, got %v", err)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("HC_TEST_DOTENV", "")
	os.Unsetenv("HC_TEST_DOTENV")
	t.Setenv("HC_TEST_PRESET", "keep")

	path := writeTemp(t, ".env", "HC_TEST_DOTENV=from-file\nHC_TEST_PRESET=overridden\n")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("HC_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}
	if got := os.Getenv("HC_TEST_PRESET"); got != "keep" {
		t.Errorf("existing variables must win, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}

func TestLoadVocabulary(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		v, err := LoadVocabulary("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(v.Categories) != len(query.DefaultVocabulary().Categories) {
			t.Errorf("expected built-in categories")
		}
	})

	t.Run("override merges", func(t *testing.T) {
		path := writeTemp(t, "vocab.yaml", `
categories:
  - name: kayak
    triggers: [kayak, kayaks, paddle]
realtime_triggers: [weather]
`)
		v, err := LoadVocabulary(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(v.Categories) != 1 || v.Categories[0].Name != "kayak" {
			t.Errorf("unexpected categories %+v", v.Categories)
		}
		if len(v.RealtimeTriggers) != 1 {
			t.Errorf("unexpected realtime triggers %v", v.RealtimeTriggers)
		}
		if len(v.Stopwords) == 0 || v.MinKeywordLength != query.DefaultMinKeywordLength {
			t.Error("unset lists should come from the built-in vocabulary")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		path := writeTemp(t, "vocab.yaml", "categories:\n  - name: kayak\n")
		if _, err := LoadVocabulary(path); !errors.Is(err, domain.ErrInvalidVocabulary) {
			t.Errorf("expected ErrInvalidVocabulary, got %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeTemp(t, "vocab.yaml", "categories: [")
		if _, err := LoadVocabulary(path); !errors.Is(err, domain.ErrInvalidVocabulary) {
			t.Errorf("expected ErrInvalidVocabulary, got %v", err)
		}
	})
}
