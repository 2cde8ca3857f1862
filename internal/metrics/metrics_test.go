package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

type failingMetrics struct {
	NoopMetrics
}

func (failingMetrics) IncrementCounter(context.Context, string, uint64) error {
	return errors.New("sink down")
}

func TestCollectionFansOut(t *testing.T) {
	ctx := context.Background()
	a := NewLogMetrics(nil)
	b := NewLogMetrics(nil)
	c := NewCollection(a)
	c.Add(b)

	if c.Len() != 2 {
		t.Fatalf("expected 2 sinks, got %d", c.Len())
	}
	if err := c.IncrementCounter(ctx, MetricQuotesRequested, 3); err != nil {
		t.Fatalf("IncrementCounter failed: %v", err)
	}
	if err := c.UpdateGauge(ctx, MetricGraphNodes, 12); err != nil {
		t.Fatalf("UpdateGauge failed: %v", err)
	}
	if err := c.RecordHistogram(ctx, MetricRouteQueryDurationMs, 4.5); err != nil {
		t.Fatalf("RecordHistogram failed: %v", err)
	}

	for i, m := range []*LogMetrics{a, b} {
		if got := m.Counter(MetricQuotesRequested); got != 3 {
			t.Errorf("sink %d: expected counter 3, got %d", i, got)
		}
		if got := m.Gauge(MetricGraphNodes); got != 12 {
			t.Errorf("sink %d: expected gauge 12, got %v", i, got)
		}
		if got := m.Observations(MetricRouteQueryDurationMs); got != 1 {
			t.Errorf("sink %d: expected 1 observation, got %d", i, got)
		}
	}
}

func TestCollectionReturnsSinkError(t *testing.T) {
	c := NewCollection(NewNoopMetrics(), &failingMetrics{})
	if err := c.IncrementCounter(context.Background(), MetricPathsFound, 1); err == nil {
		t.Fatal("expected sink error")
	}
}

func TestPrometheusMetrics(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheusMetrics("", nil)

	if err := p.IncrementCounter(ctx, MetricRoutesEvaluated, 2); err != nil {
		t.Fatalf("IncrementCounter failed: %v", err)
	}
	if err := p.UpdateGauge(ctx, MetricGraphEdges, 8); err != nil {
		t.Fatalf("UpdateGauge failed: %v", err)
	}
	if err := p.RecordHistogram(ctx, MetricRouteQueryDurationMs, 12); err != nil {
		t.Fatalf("RecordHistogram failed: %v", err)
	}

	if err := p.IncrementCounter(ctx, "unknown", 1); err == nil {
		t.Error("expected error for unknown counter")
	}
	if err := p.UpdateGauge(ctx, "unknown", 1); err == nil {
		t.Error("expected error for unknown gauge")
	}

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		"dexterity_routes_evaluated_total 2",
		"dexterity_graph_edges 8",
		"dexterity_route_query_duration_ms_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestPrometheusServeAndShutdown(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheusMetrics("127.0.0.1:0", nil)
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
