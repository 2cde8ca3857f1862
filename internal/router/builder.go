package router

import (
	"fmt"
	"log/slog"
	"time"

	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/metrics"
	"github.com/lugondev/go-dexterity/internal/vault"
)

// Builder provides a fluent API for constructing a Router.
type Builder struct {
	cfg     Config
	vaults  []vault.Vault
	metrics []metrics.Metrics
	logger  *slog.Logger
}

// NewBuilder creates a Builder with the router defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// Config replaces the whole router configuration.
func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// MaxHops sets the hop budget.
func (b *Builder) MaxHops(n int) *Builder {
	b.cfg.MaxHops = n
	return b
}

// Strategy sets the path strategy.
func (b *Builder) Strategy(s graph.Strategy) *Builder {
	b.cfg.Strategy = s
	return b
}

// QuoteTimeout sets the deadline of each vault quote call.
func (b *Builder) QuoteTimeout(d time.Duration) *Builder {
	b.cfg.QuoteTimeout = d
	return b
}

// MaxConcurrency bounds concurrent path evaluations.
func (b *Builder) MaxConcurrency(n int) *Builder {
	b.cfg.MaxConcurrency = n
	return b
}

// QuoteCacheTTL enables the quote cache.
func (b *Builder) QuoteCacheTTL(ttl time.Duration) *Builder {
	b.cfg.QuoteCacheTTL = ttl
	return b
}

// RouteCacheTTL enables the route cache.
func (b *Builder) RouteCacheTTL(ttl time.Duration) *Builder {
	b.cfg.RouteCacheTTL = ttl
	return b
}

// Vaults adds vaults to load when the router is built.
func (b *Builder) Vaults(vaults ...vault.Vault) *Builder {
	b.vaults = append(b.vaults, vaults...)
	return b
}

// Metrics adds metrics sinks.
func (b *Builder) Metrics(m ...metrics.Metrics) *Builder {
	b.metrics = append(b.metrics, m...)
	return b
}

// Logger sets a custom logger for the router.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns the router with its vaults
// loaded.
func (b *Builder) Build() (*Router, error) {
	if b.cfg.MaxHops < 1 || b.cfg.MaxHops > MaxMaxHops {
		return nil, routererrors.ConfigInvalid(fmt.Sprintf("max hops must be between 1 and %d, got %d", MaxMaxHops, b.cfg.MaxHops))
	}
	strategy, err := graph.ParseStrategy(string(b.cfg.Strategy))
	if err != nil {
		return nil, routererrors.ConfigInvalid(err.Error())
	}
	if b.cfg.QuoteTimeout < 0 || b.cfg.MaxConcurrency < 0 {
		return nil, routererrors.ConfigInvalid("quote timeout and max concurrency must not be negative")
	}

	cfg := b.cfg
	cfg.Strategy = strategy
	r := New(cfg)
	r.SetLogger(b.logger)
	for _, m := range b.metrics {
		r.Metrics.Add(m)
	}
	if len(b.vaults) > 0 {
		r.LoadVaults(b.vaults)
	}
	return r, nil
}
