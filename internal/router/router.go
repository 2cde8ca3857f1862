// Package router finds and prices swap routes across a network of two-asset
// vaults.
//
// A Router owns one token graph. FindBestRoute enumerates every path between
// two tokens within the hop budget, prices all of them concurrently by
// chaining vault quotes hop by hop, and returns the route paying the most.
//
// # Failure handling
//
// A vault that errors, panics, times out or quotes zero only removes itself
// from the candidates of one hop. A path fails when a hop has no candidate
// left, and the query fails only when every path failed (NO_VALID_ROUTE) or
// no path existed at all (INVALID_PATH).
//
// # Concurrency
//
// LoadVaults builds a new graph and swaps it in. Queries work on the graph
// that was current when they started, so a reload never changes the data an
// in-flight query reads.
package router

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lugondev/go-dexterity/internal/cache"
	"github.com/lugondev/go-dexterity/internal/common"
	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/metrics"
	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// Defaults used when a Config field is left zero.
const (
	DefaultMaxHops      = 3
	DefaultQuoteTimeout = 5 * time.Second
	MaxMaxHops          = 9
)

// Config controls path search and evaluation.
type Config struct {
	// MaxHops bounds the number of vaults a route may pass through.
	MaxHops int

	// Strategy selects how parallel vaults become candidate paths.
	Strategy graph.Strategy

	// QuoteTimeout bounds every single vault quote call. Zero disables it.
	QuoteTimeout time.Duration

	// MaxConcurrency bounds concurrent path evaluations. Zero is unbounded.
	MaxConcurrency int

	// QuoteCacheTTL memoizes vault quotes. Zero disables the quote cache.
	QuoteCacheTTL time.Duration

	// RouteCacheTTL memoizes best routes. Zero disables the route cache.
	RouteCacheTTL time.Duration
}

// DefaultConfig returns the router defaults.
func DefaultConfig() Config {
	return Config{
		MaxHops:      DefaultMaxHops,
		Strategy:     graph.StrategyVaultSequence,
		QuoteTimeout: DefaultQuoteTimeout,
	}
}

// ConfigFrom converts the router section of the application config.
func ConfigFrom(c config.RouterConfig) Config {
	return Config{
		MaxHops:        c.MaxHops,
		Strategy:       c.PathStrategy(),
		QuoteTimeout:   c.QuoteTimeout,
		MaxConcurrency: c.MaxConcurrency,
		QuoteCacheTTL:  c.QuoteCacheTTL,
		RouteCacheTTL:  c.RouteCacheTTL,
	}
}

// Diagnostics is a snapshot of the router's in-process counters.
type Diagnostics struct {
	PathsExplored   uint64 `json:"pathsExplored"`
	PathsFound      uint64 `json:"pathsFound"`
	QuotesRequested uint64 `json:"quotesRequested"`
	QuotesFailed    uint64 `json:"quotesFailed"`
	RoutesEvaluated uint64 `json:"routesEvaluated"`
	RoutesFailed    uint64 `json:"routesFailed"`
	RouteQueries    uint64 `json:"routeQueries"`
	GraphReloads    uint64 `json:"graphReloads"`
}

type counters struct {
	pathsExplored   atomic.Uint64
	pathsFound      atomic.Uint64
	quotesRequested atomic.Uint64
	quotesFailed    atomic.Uint64
	routesEvaluated atomic.Uint64
	routesFailed    atomic.Uint64
	routeQueries    atomic.Uint64
	graphReloads    atomic.Uint64
}

// Router is a routing engine instance. Several routers may coexist, each
// with its own graph.
type Router struct {
	common.LoggerMixin

	// Metrics receives instrumentation. Sink errors are logged and ignored.
	Metrics *metrics.Collection

	cfg  Config
	mu   sync.RWMutex
	view *view
	diag counters
}

// view is the graph of one load together with the cache filled from it. A
// reload swaps both at once, so results priced against an older graph can
// only land in a cache nobody reads any more.
type view struct {
	graph *graph.Graph
	cache *cache.Cache
}

func (r *Router) newView(g *graph.Graph) *view {
	v := &view{graph: g}
	if r.cfg.QuoteCacheTTL > 0 || r.cfg.RouteCacheTTL > 0 {
		v.cache = cache.New()
	}
	return v
}

// New creates a router with an empty graph. Zero config fields take the
// defaults, except QuoteTimeout and the cache TTLs where zero disables.
func New(cfg Config) *Router {
	if cfg.MaxHops == 0 {
		cfg.MaxHops = DefaultMaxHops
	}
	if cfg.Strategy == "" {
		cfg.Strategy = graph.StrategyVaultSequence
	}
	r := &Router{
		LoggerMixin: common.NewLoggerMixin(),
		Metrics:     metrics.NewCollection(),
		cfg:         cfg,
	}
	r.view = r.newView(graph.New())
	return r
}

// WithLogger sets the logger and returns the router.
func (r *Router) WithLogger(logger *slog.Logger) *Router {
	r.SetLogger(logger)
	return r
}

// Config returns the router configuration.
func (r *Router) Config() Config {
	return r.cfg
}

// LoadVaults replaces the graph with one built from vaults and returns its
// stats. Cached quotes and routes start empty for the new graph.
func (r *Router) LoadVaults(vaults []vault.Vault) graph.Stats {
	g := graph.Build(vaults)
	next := r.newView(g)

	r.mu.Lock()
	r.view = next
	r.mu.Unlock()

	stats := g.Stats()
	r.diag.graphReloads.Add(1)

	ctx := context.Background()
	r.count(ctx, metrics.MetricGraphReloads, 1)
	r.gauge(ctx, metrics.MetricGraphNodes, float64(stats.NodeCount))
	r.gauge(ctx, metrics.MetricGraphEdges, float64(stats.EdgeCount))

	r.GetLogger().Info("graph loaded",
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"vaults", stats.VaultCount,
	)
	return stats
}

// snapshot returns the current view. Its graph is never mutated.
func (r *Router) snapshot() *view {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

// Graph returns the current graph for read-only use.
func (r *Router) Graph() *graph.Graph {
	return r.snapshot().graph
}

// Stats returns the current graph stats.
func (r *Router) Stats() graph.Stats {
	return r.snapshot().graph.Stats()
}

// VaultsForToken returns the vaults that trade id.
func (r *Router) VaultsForToken(id string) []vault.Vault {
	return r.snapshot().graph.VaultsForToken(id)
}

// Vault returns a loaded vault by id.
func (r *Router) Vault(id string) (vault.Vault, bool) {
	return r.snapshot().graph.Vault(id)
}

// Token returns a known token by id.
func (r *Router) Token(id string) (types.Token, bool) {
	return r.snapshot().graph.Token(id)
}

// Tokens returns every known token.
func (r *Router) Tokens() []types.Token {
	return r.snapshot().graph.Tokens()
}

// FindAllPaths enumerates candidate paths with the router's hop budget and
// strategy.
func (r *Router) FindAllPaths(fromID, toID string) []graph.Path {
	return r.findPaths(context.Background(), r.snapshot().graph, fromID, toID)
}

func (r *Router) findPaths(ctx context.Context, g *graph.Graph, fromID, toID string) []graph.Path {
	var explored uint64
	paths := g.FindAllPaths(fromID, toID, r.cfg.MaxHops,
		graph.WithStrategy(r.cfg.Strategy),
		graph.WithVisitor(func(int) { explored++ }),
	)

	r.diag.pathsExplored.Add(explored)
	r.diag.pathsFound.Add(uint64(len(paths)))
	r.count(ctx, metrics.MetricPathsExplored, explored)
	r.count(ctx, metrics.MetricPathsFound, uint64(len(paths)))
	return paths
}

// Diagnostics returns the in-process counters.
func (r *Router) Diagnostics() Diagnostics {
	return Diagnostics{
		PathsExplored:   r.diag.pathsExplored.Load(),
		PathsFound:      r.diag.pathsFound.Load(),
		QuotesRequested: r.diag.quotesRequested.Load(),
		QuotesFailed:    r.diag.quotesFailed.Load(),
		RoutesEvaluated: r.diag.routesEvaluated.Load(),
		RoutesFailed:    r.diag.routesFailed.Load(),
		RouteQueries:    r.diag.routeQueries.Load(),
		GraphReloads:    r.diag.graphReloads.Load(),
	}
}

// ResetDiagnostics zeroes the in-process counters.
func (r *Router) ResetDiagnostics() {
	r.diag.pathsExplored.Store(0)
	r.diag.pathsFound.Store(0)
	r.diag.quotesRequested.Store(0)
	r.diag.quotesFailed.Store(0)
	r.diag.routesEvaluated.Store(0)
	r.diag.routesFailed.Store(0)
	r.diag.routeQueries.Store(0)
	r.diag.graphReloads.Store(0)
}

func (r *Router) count(ctx context.Context, name string, value uint64) {
	if r.Metrics == nil || value == 0 {
		return
	}
	if err := r.Metrics.IncrementCounter(ctx, name, value); err != nil {
		r.GetLogger().Debug("failed to increment counter", "name", name, "error", err)
	}
}

func (r *Router) gauge(ctx context.Context, name string, value float64) {
	if r.Metrics == nil {
		return
	}
	if err := r.Metrics.UpdateGauge(ctx, name, value); err != nil {
		r.GetLogger().Debug("failed to update gauge", "name", name, "error", err)
	}
}

func (r *Router) observe(ctx context.Context, name string, value float64) {
	if r.Metrics == nil {
		return
	}
	if err := r.Metrics.RecordHistogram(ctx, name, value); err != nil {
		r.GetLogger().Debug("failed to record histogram", "name", name, "error", err)
	}
}
