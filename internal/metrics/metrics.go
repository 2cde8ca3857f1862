// Package metrics provides the instrumentation sinks of the router.
//
// The Metrics interface covers gauges, counters and histograms. The router
// reports path exploration, quote requests and route evaluations through it;
// a failing sink is logged and never changes a routing result.
package metrics

import (
	"context"
	"log/slog"
	"sync"
)

// Metrics is a metrics sink. Implementations must be safe for concurrent use.
type Metrics interface {
	// Initialize prepares the metrics system for data collection.
	Initialize(ctx context.Context) error

	// Flush sends any buffered metrics data to ensure all metrics are reported.
	Flush(ctx context.Context) error

	// Shutdown gracefully shuts down the metrics system, performing cleanup.
	Shutdown(ctx context.Context) error

	// UpdateGauge sets a gauge, such as the current graph node count.
	UpdateGauge(ctx context.Context, name string, value float64) error

	// IncrementCounter adds value to a monotonic counter.
	IncrementCounter(ctx context.Context, name string, value uint64) error

	// RecordHistogram records one observation, such as a query latency.
	RecordHistogram(ctx context.Context, name string, value float64) error
}

// Collection manages multiple Metrics implementations and delegates calls to all of them.
type Collection struct {
	metrics []Metrics
	mu      sync.RWMutex
}

// NewCollection creates a new Collection with the given metrics implementations.
func NewCollection(metrics ...Metrics) *Collection {
	return &Collection{
		metrics: metrics,
	}
}

// Add adds a new Metrics implementation to the collection.
func (c *Collection) Add(m Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

// Initialize initializes all metrics in the collection.
func (c *Collection) Initialize(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.Initialize(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes all metrics in the collection.
func (c *Collection) Flush(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown shuts down all metrics in the collection.
func (c *Collection) Shutdown(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// UpdateGauge updates a gauge metric across all implementations.
func (c *Collection) UpdateGauge(ctx context.Context, name string, value float64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.UpdateGauge(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// IncrementCounter increments a counter across all implementations.
func (c *Collection) IncrementCounter(ctx context.Context, name string, value uint64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.IncrementCounter(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// RecordHistogram records a histogram value across all implementations.
func (c *Collection) RecordHistogram(ctx context.Context, name string, value float64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.RecordHistogram(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of metrics implementations in the collection.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.metrics)
}

// NoopMetrics is a Metrics implementation that does nothing.
// Useful for testing or when metrics are disabled.
type NoopMetrics struct{}

// NewNoopMetrics creates a new NoopMetrics.
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) Initialize(context.Context) error                       { return nil }
func (n *NoopMetrics) Flush(context.Context) error                            { return nil }
func (n *NoopMetrics) Shutdown(context.Context) error                         { return nil }
func (n *NoopMetrics) UpdateGauge(context.Context, string, float64) error     { return nil }
func (n *NoopMetrics) IncrementCounter(context.Context, string, uint64) error { return nil }
func (n *NoopMetrics) RecordHistogram(context.Context, string, float64) error { return nil }

// LogMetrics is a Metrics implementation that logs all metrics using slog.
type LogMetrics struct {
	logger       *slog.Logger
	mu           sync.RWMutex
	gauges       map[string]float64
	counters     map[string]uint64
	observations map[string]uint64
}

// NewLogMetrics creates a new LogMetrics with the given logger.
// If logger is nil, the default logger is used.
func NewLogMetrics(logger *slog.Logger) *LogMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMetrics{
		logger:       logger,
		gauges:       make(map[string]float64),
		counters:     make(map[string]uint64),
		observations: make(map[string]uint64),
	}
}

// Initialize initializes the log metrics.
func (l *LogMetrics) Initialize(ctx context.Context) error {
	l.logger.Info("metrics initialized")
	return nil
}

// Flush logs all current metric values.
func (l *LogMetrics) Flush(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.logger.Info("metrics flush",
		"gauges", l.gauges,
		"counters", l.counters,
	)
	return nil
}

// Shutdown shuts down the log metrics.
func (l *LogMetrics) Shutdown(ctx context.Context) error {
	l.logger.Info("metrics shutdown")
	return nil
}

// UpdateGauge logs the gauge update.
func (l *LogMetrics) UpdateGauge(ctx context.Context, name string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.gauges[name] = value
	l.logger.Debug("gauge updated", "name", name, "value", value)
	return nil
}

// IncrementCounter logs the counter increment.
func (l *LogMetrics) IncrementCounter(ctx context.Context, name string, value uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters[name] += value
	l.logger.Debug("counter incremented", "name", name, "value", value, "total", l.counters[name])
	return nil
}

// RecordHistogram logs the histogram record.
func (l *LogMetrics) RecordHistogram(ctx context.Context, name string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.observations[name]++
	l.logger.Debug("histogram recorded", "name", name, "value", value)
	return nil
}

// Counter returns the current total of a counter.
func (l *LogMetrics) Counter(name string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counters[name]
}

// Gauge returns the last value of a gauge.
func (l *LogMetrics) Gauge(name string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gauges[name]
}

// Observations returns how many values a histogram has recorded.
func (l *LogMetrics) Observations(name string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.observations[name]
}

// Metric names reported by the router.
const (
	MetricPathsExplored        = "paths_explored"
	MetricPathsFound           = "paths_found"
	MetricQuotesRequested      = "quotes_requested"
	MetricQuotesFailed         = "quotes_failed"
	MetricQuoteCacheHits       = "quote_cache_hits"
	MetricRoutesEvaluated      = "routes_evaluated"
	MetricRoutesFailed         = "routes_failed"
	MetricRouteQueries         = "route_queries"
	MetricRouteCacheHits       = "route_cache_hits"
	MetricGraphReloads         = "graph_reloads"
	MetricGraphNodes           = "graph_nodes"
	MetricGraphEdges           = "graph_edges"
	MetricRouteQueryDurationMs = "route_query_duration_ms"
	MetricRoutesJournaled      = "routes_journaled"
	MetricJournalErrors        = "journal_errors"
)

// Counters, Gauges and Histograms list the metric names by kind.
var (
	Counters = []string{
		MetricPathsExplored,
		MetricPathsFound,
		MetricQuotesRequested,
		MetricQuotesFailed,
		MetricQuoteCacheHits,
		MetricRoutesEvaluated,
		MetricRoutesFailed,
		MetricRouteQueries,
		MetricRouteCacheHits,
		MetricGraphReloads,
		MetricRoutesJournaled,
		MetricJournalErrors,
	}
	Gauges     = []string{MetricGraphNodes, MetricGraphEdges}
	Histograms = []string{MetricRouteQueryDurationMs}
)
