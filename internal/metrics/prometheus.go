package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every Prometheus metric name.
const Namespace = "dexterity"

// PrometheusMetrics exports the router metrics through a private Prometheus
// registry. When an address is set, Initialize serves /metrics on it.
type PrometheusMetrics struct {
	registry   *prometheus.Registry
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
	addr       string
	server     *http.Server
	logger     *slog.Logger
}

// NewPrometheusMetrics registers every router metric on a new registry. addr
// may be empty to skip the HTTP listener.
func NewPrometheusMetrics(addr string, logger *slog.Logger) *PrometheusMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	p := &PrometheusMetrics{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]prometheus.Counter, len(Counters)),
		gauges:     make(map[string]prometheus.Gauge, len(Gauges)),
		histograms: make(map[string]prometheus.Histogram, len(Histograms)),
		addr:       addr,
		logger:     logger,
	}

	for _, name := range Counters {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: Namespace, Name: name + "_total"})
		p.counters[name] = c
		p.registry.MustRegister(c)
	}
	for _, name := range Gauges {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: Namespace, Name: name})
		p.gauges[name] = g
		p.registry.MustRegister(g)
	}
	for _, name := range Histograms {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      name,
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		})
		p.histograms[name] = h
		p.registry.MustRegister(h)
	}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry returns the underlying registry.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the /metrics handler for the registry.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Initialize starts the HTTP listener when an address is configured.
func (p *PrometheusMetrics) Initialize(ctx context.Context) error {
	if p.addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	p.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("metrics server stopped", "error", err)
		}
	}()
	p.logger.Info("prometheus metrics listening", "addr", ln.Addr().String())
	return nil
}

// Flush is a no-op; Prometheus pulls.
func (p *PrometheusMetrics) Flush(context.Context) error {
	return nil
}

// Shutdown stops the HTTP listener.
func (p *PrometheusMetrics) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}

// UpdateGauge sets a registered gauge.
func (p *PrometheusMetrics) UpdateGauge(_ context.Context, name string, value float64) error {
	g, ok := p.gauges[name]
	if !ok {
		return fmt.Errorf("unknown gauge %q", name)
	}
	g.Set(value)
	return nil
}

// IncrementCounter adds to a registered counter.
func (p *PrometheusMetrics) IncrementCounter(_ context.Context, name string, value uint64) error {
	c, ok := p.counters[name]
	if !ok {
		return fmt.Errorf("unknown counter %q", name)
	}
	c.Add(float64(value))
	return nil
}

// RecordHistogram observes a value on a registered histogram.
func (p *PrometheusMetrics) RecordHistogram(_ context.Context, name string, value float64) error {
	h, ok := p.histograms[name]
	if !ok {
		return fmt.Errorf("unknown histogram %q", name)
	}
	h.Observe(value)
	return nil
}
