package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/internal/graph"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Router.MaxHops != 3 {
		t.Errorf("expected max hops 3, got %d", cfg.Router.MaxHops)
	}
	if cfg.Router.PathStrategy() != graph.StrategyVaultSequence {
		t.Errorf("expected vault-sequence strategy, got %s", cfg.Router.Strategy)
	}
	if cfg.Router.QuoteTimeout != 5*time.Second {
		t.Errorf("expected 5s quote timeout, got %s", cfg.Router.QuoteTimeout)
	}
	if cfg.Router.QuoteCacheTTL != 30*time.Second {
		t.Errorf("expected 30s quote cache ttl, got %s", cfg.Router.QuoteCacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "dexterity.yaml")
	content := `
router:
  max_hops: 2
  strategy: asset-sequence
  quote_timeout: 750ms
log:
  level: debug
  format: json
database:
  enabled: true
  type: postgres
  postgres:
    host: db.internal
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("DEXTERITY_ROUTER_MAX_CONCURRENCY", "4")
	t.Setenv("DEXTERITY_LEDGER_RATE_LIMIT", "2.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Router.MaxHops != 2 {
		t.Errorf("expected max hops 2, got %d", cfg.Router.MaxHops)
	}
	if cfg.Router.PathStrategy() != graph.StrategyAssetSequence {
		t.Errorf("expected asset-sequence, got %s", cfg.Router.Strategy)
	}
	if cfg.Router.QuoteTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %s", cfg.Router.QuoteTimeout)
	}
	if cfg.Router.MaxConcurrency != 4 {
		t.Errorf("expected max concurrency 4 from env, got %d", cfg.Router.MaxConcurrency)
	}
	if cfg.Ledger.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5 from env, got %v", cfg.Ledger.RateLimit)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "debug" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Database.Postgres.Host != "db.internal" || cfg.Database.Postgres.Port != 5432 {
		t.Errorf("unexpected postgres config %+v", cfg.Database.Postgres)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "dexterity.yaml")
	if err := os.WriteFile(path, []byte("router:\n  max_hops: 12\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := Load(path)
	if !routererrors.Is(err, routererrors.ErrConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero hops", func(c *Config) { c.Router.MaxHops = 0 }},
		{"too many hops", func(c *Config) { c.Router.MaxHops = 10 }},
		{"unknown strategy", func(c *Config) { c.Router.Strategy = "greedy" }},
		{"negative timeout", func(c *Config) { c.Router.QuoteTimeout = -time.Second }},
		{"negative concurrency", func(c *Config) { c.Router.MaxConcurrency = -1 }},
		{"unknown metrics backend", func(c *Config) { c.Metrics.Backend = "statsd" }},
		{"unknown database", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "redis"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !routererrors.Is(err, routererrors.ErrConfigInvalid) {
				t.Errorf("expected CONFIG_INVALID, got %v", err)
			}
		})
	}
}
