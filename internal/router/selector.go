package router

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/internal/metrics"
)

// FindBestRoute returns the route converting amount of inID into the most
// outID. It fails with INVALID_PATH when no path exists within the hop
// budget, NO_VALID_ROUTE when every path failed to price, INVALID_AMOUNT for
// a zero amount and CONTEXT_CANCELED when ctx ends first.
func (r *Router) FindBestRoute(ctx context.Context, inID, outID string, amount uint64) (*Route, error) {
	start := time.Now()
	queryID := uuid.NewString()
	logger := r.GetLogger().With("query_id", queryID, "from", inID, "to", outID, "amount_in", amount)

	r.diag.routeQueries.Add(1)
	r.count(ctx, metrics.MetricRouteQueries, 1)
	defer func() {
		r.observe(ctx, metrics.MetricRouteQueryDurationMs, float64(time.Since(start).Microseconds())/1000)
	}()

	if amount == 0 {
		return nil, routererrors.InvalidAmount("amount must be greater than zero")
	}
	if err := ctx.Err(); err != nil {
		return nil, routererrors.ContextCanceled(err)
	}

	v := r.snapshot()
	key := routeKey(inID, outID, amount)
	if v.cache != nil && r.cfg.RouteCacheTTL > 0 {
		if cached, ok := v.cache.Get(key); ok {
			r.count(ctx, metrics.MetricRouteCacheHits, 1)
			logger.Debug("route cache hit")
			return cached.(*Route), nil
		}
	}

	paths := r.findPaths(ctx, v.graph, inID, outID)
	if len(paths) == 0 {
		logger.Debug("no path found", "max_hops", r.cfg.MaxHops)
		return nil, routererrors.InvalidPath(inID, outID, r.cfg.MaxHops)
	}
	logger.Debug("evaluating paths", "paths", len(paths), "strategy", r.cfg.Strategy)

	routes := make([]*Route, len(paths))
	errs := make([]error, len(paths))

	var eg errgroup.Group
	if r.cfg.MaxConcurrency > 0 {
		eg.SetLimit(r.cfg.MaxConcurrency)
	}
	for i, p := range paths {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			routes[i], errs[i] = r.evaluate(ctx, v, p, amount)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, routererrors.ContextCanceled(err)
	}

	best, ok := selectBest(routes)
	if !ok {
		var causes []error
		for i, err := range errs {
			if err != nil {
				causes = append(causes, fmt.Errorf("path %s: %w", paths[i], err))
			}
		}
		logger.Warn("no valid route", "paths", len(paths), "error", errors.Join(causes...))
		return nil, routererrors.NoValidRoute(inID, outID, len(paths), errors.Join(causes...))
	}

	if v.cache != nil && r.cfg.RouteCacheTTL > 0 {
		v.cache.Set(key, best, r.cfg.RouteCacheTTL)
	}

	logger.Info("route found",
		"paths", len(paths),
		"hops", len(best.Hops),
		"amount_out", best.AmountOut,
		"route", best.String(),
		"duration", time.Since(start),
	)
	return best, nil
}

// rank orders the successful routes best first: greatest output, then fewer
// hops, then the path discovered first. routes is indexed by discovery order
// and holds nil for failed paths.
func rank(routes []*Route) []*Route {
	type ranked struct {
		route *Route
		index int
	}
	var ok []ranked
	for i, rt := range routes {
		if rt != nil {
			ok = append(ok, ranked{route: rt, index: i})
		}
	}

	slices.SortFunc(ok, func(a, b ranked) int {
		if c := cmp.Compare(b.route.AmountOut, a.route.AmountOut); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a.route.Hops), len(b.route.Hops)); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]*Route, len(ok))
	for i, rk := range ok {
		out[i] = rk.route
	}
	return out
}

func selectBest(routes []*Route) (*Route, bool) {
	ranked := rank(routes)
	if len(ranked) == 0 {
		return nil, false
	}
	return ranked[0], true
}

// RankRoutes evaluates every candidate path and returns the priced routes in
// selection order. Failed paths are skipped.
func (r *Router) RankRoutes(ctx context.Context, inID, outID string, amount uint64) ([]*Route, error) {
	if amount == 0 {
		return nil, routererrors.InvalidAmount("amount must be greater than zero")
	}
	v := r.snapshot()
	paths := r.findPaths(ctx, v.graph, inID, outID)
	if len(paths) == 0 {
		return nil, routererrors.InvalidPath(inID, outID, r.cfg.MaxHops)
	}

	routes := make([]*Route, len(paths))
	var eg errgroup.Group
	if r.cfg.MaxConcurrency > 0 {
		eg.SetLimit(r.cfg.MaxConcurrency)
	}
	for i, p := range paths {
		i, p := i, p
		eg.Go(func() error {
			routes[i], _ = r.evaluate(ctx, v, p, amount)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, routererrors.ContextCanceled(err)
	}

	out := rank(routes)
	if len(out) == 0 {
		return nil, routererrors.NoValidRoute(inID, outID, len(paths), nil)
	}
	return out, nil
}

func routeKey(inID, outID string, amount uint64) string {
	return fmt.Sprintf("route|%s|%s|%d", inID, outID, amount)
}
