package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/metrics"
	"github.com/lugondev/go-dexterity/internal/router"
	"github.com/lugondev/go-dexterity/internal/storage"
)

// Result is one answered route query.
type Result struct {
	QueryID     string
	Route       *router.Route
	Strategy    graph.Strategy
	SlippageBps uint32
	At          time.Time
}

// NewResult stamps route with a fresh query id and the current time.
func NewResult(route *router.Route, strategy graph.Strategy, slippageBps uint32) *Result {
	return &Result{
		QueryID:     uuid.NewString(),
		Route:       route,
		Strategy:    strategy,
		SlippageBps: slippageBps,
		At:          time.Now().UTC(),
	}
}

// NewRouteModel converts res to a route journal entry.
func NewRouteModel(res *Result) *storage.RouteModel {
	rt := res.Route
	return &storage.RouteModel{
		ID:              uuid.NewString(),
		QueryID:         res.QueryID,
		TokenIn:         rt.TokenIn().ID,
		TokenOut:        rt.TokenOut().ID,
		AmountIn:        rt.AmountIn,
		AmountOut:       rt.AmountOut,
		MinimumReceived: rt.MinimumReceived(res.SlippageBps),
		Hops:            len(rt.Hops),
		VaultIDs:        rt.VaultIDs(),
		Opcodes:         rt.Opcodes(),
		Path:            rt.String(),
		Strategy:        string(res.Strategy),
		CreatedAt:       res.At,
	}
}

// JournalProcessor records every result in the route journal.
type JournalProcessor struct {
	repo   storage.RouteRepository
	logger *slog.Logger
}

func NewJournalProcessor(repo storage.RouteRepository, logger *slog.Logger) *JournalProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalProcessor{
		repo:   repo,
		logger: logger,
	}
}

func (p *JournalProcessor) Process(ctx context.Context, res *Result, m *metrics.Collection) error {
	model := NewRouteModel(res)

	if err := p.repo.Save(ctx, model); err != nil {
		p.logger.Error("failed to save route",
			"query_id", res.QueryID,
			"error", err,
		)
		count(ctx, m, metrics.MetricJournalErrors)
		return fmt.Errorf("failed to save route: %w", err)
	}

	count(ctx, m, metrics.MetricRoutesJournaled)
	p.logger.Debug("route saved to journal",
		"id", model.ID,
		"query_id", res.QueryID,
		"path", model.Path,
	)
	return nil
}

// LogProcessor writes every result to the logger.
type LogProcessor struct {
	logger *slog.Logger
}

func NewLogProcessor(logger *slog.Logger) *LogProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProcessor{logger: logger}
}

func (p *LogProcessor) Process(ctx context.Context, res *Result, _ *metrics.Collection) error {
	rt := res.Route
	p.logger.Info("route selected",
		"query_id", res.QueryID,
		"from", rt.TokenIn().ID,
		"to", rt.TokenOut().ID,
		"amount_in", rt.AmountIn,
		"amount_out", rt.AmountOut,
		"minimum_received", rt.MinimumReceived(res.SlippageBps),
		"hops", len(rt.Hops),
		"route", rt.String(),
	)
	return nil
}

// MinAmountIn returns a condition that holds for routes converting at least
// min units.
func MinAmountIn(min uint64) func(*Result) bool {
	return func(res *Result) bool {
		return res.Route.AmountIn >= min
	}
}

func count(ctx context.Context, m *metrics.Collection, name string) {
	if m != nil {
		_ = m.IncrementCounter(ctx, name, 1)
	}
}
