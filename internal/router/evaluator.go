package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lugondev/go-dexterity/internal/cache"
	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/metrics"
	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

var errZeroOutput = errors.New("quote returned zero output")

// ErrAmountInMismatch is the failure of a candidate whose quote consumes an
// amount other than the one it was asked to price.
var ErrAmountInMismatch = errors.New("quote amount in does not match the hop input")

// EvaluateRoute prices path for amountIn against the current graph. It fails
// with QUOTE_FAILED when some hop has no vault able to quote it.
func (r *Router) EvaluateRoute(ctx context.Context, path graph.Path, amountIn uint64) (*Route, error) {
	if amountIn == 0 {
		return nil, routererrors.InvalidAmount("amount must be greater than zero")
	}
	return r.evaluate(ctx, r.snapshot(), path, amountIn)
}

func (r *Router) evaluate(ctx context.Context, v *view, path graph.Path, amountIn uint64) (*Route, error) {
	r.diag.routesEvaluated.Add(1)
	r.count(ctx, metrics.MetricRoutesEvaluated, 1)

	route, err := r.priceHops(ctx, v, path, amountIn)
	if err != nil {
		r.diag.routesFailed.Add(1)
		r.count(ctx, metrics.MetricRoutesFailed, 1)
		return nil, err
	}
	return route, nil
}

func (r *Router) priceHops(ctx context.Context, v *view, path graph.Path, amountIn uint64) (*Route, error) {
	if len(path.Tokens) < 2 {
		return nil, routererrors.InvalidPath("", "", r.cfg.MaxHops)
	}

	route := &Route{
		Path:     path,
		Hops:     make([]Hop, 0, path.Hops()),
		AmountIn: amountIn,
	}
	used := make(map[string]struct{}, path.Hops())
	amount := amountIn

	for i := 0; i < path.Hops(); i++ {
		in, out := path.Tokens[i], path.Tokens[i+1]

		candidates, err := hopCandidates(v.graph, path, i, used)
		if err != nil {
			return nil, routererrors.QuoteFailed(i, in.ID, out.ID, err)
		}

		hop, err := r.bestHop(ctx, v.cache, in, out, candidates, amount)
		if err != nil {
			return nil, routererrors.QuoteFailed(i, in.ID, out.ID, err)
		}

		used[hop.Vault.ID()] = struct{}{}
		route.Hops = append(route.Hops, hop)
		amount = hop.Quote.AmountOut
	}

	route.AmountOut = amount
	return route, nil
}

// hopCandidates returns the vaults that may price hop i. A path with fixed
// vaults yields exactly one; otherwise every parallel vault between the two
// tokens is a candidate, minus vaults already used earlier in the route.
func hopCandidates(g *graph.Graph, path graph.Path, i int, used map[string]struct{}) ([]vault.Vault, error) {
	in, out := path.Tokens[i], path.Tokens[i+1]

	if len(path.VaultIDs) == path.Hops() {
		id := path.VaultIDs[i]
		v, ok := g.Vault(id)
		if !ok {
			return nil, routererrors.VaultNotFound(id)
		}
		legs := v.Legs()
		if !(legs[0].ID == in.ID && legs[1].ID == out.ID) && !(legs[1].ID == in.ID && legs[0].ID == out.ID) {
			return nil, fmt.Errorf("vault %s does not trade %s for %s", id, in.ID, out.ID)
		}
		return []vault.Vault{v}, nil
	}

	var vaults []vault.Vault
	for _, e := range g.EdgesBetween(in.ID, out.ID) {
		if _, ok := used[e.Vault.ID()]; ok {
			continue
		}
		vaults = append(vaults, e.Vault)
	}
	if len(vaults) == 0 {
		return nil, fmt.Errorf("no unused vault trades %s for %s", in.ID, out.ID)
	}
	return vaults, nil
}

// bestHop quotes every candidate concurrently and keeps the greatest output.
// Ties go to the candidate discovered first.
func (r *Router) bestHop(ctx context.Context, c *cache.Cache, in, out types.Token, candidates []vault.Vault, amount uint64) (Hop, error) {
	type result struct {
		hop Hop
		err error
	}
	results := make([]result, len(candidates))

	var wg sync.WaitGroup
	for i, v := range candidates {
		wg.Add(1)
		go func(i int, v vault.Vault) {
			defer wg.Done()
			op, ok := vault.Direction(v, in.ID)
			if !ok {
				results[i].err = fmt.Errorf("vault %s does not trade %s", v.ID(), in.ID)
				return
			}
			q, err := r.quote(ctx, c, v, amount, op)
			if err != nil {
				results[i].err = fmt.Errorf("vault %s: %w", v.ID(), err)
				return
			}
			results[i].hop = Hop{Vault: v, Opcode: op, TokenIn: in, TokenOut: out, Quote: q}
		}(i, v)
	}
	wg.Wait()

	best := -1
	var errs []error
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
			continue
		}
		if best < 0 || res.hop.Quote.AmountOut > results[best].hop.Quote.AmountOut {
			best = i
		}
	}
	if best < 0 {
		return Hop{}, errors.Join(errs...)
	}
	return results[best].hop, nil
}

// quote performs one vault quote call under the per-quote deadline, going
// through the quote cache c when enabled. A cached fill shared by several
// queries carries its own deadline, so one query giving up never fails the
// others waiting on it.
func (r *Router) quote(ctx context.Context, c *cache.Cache, v vault.Vault, amount uint64, op opcode.Opcode) (types.Quote, error) {
	r.diag.quotesRequested.Add(1)
	r.count(ctx, metrics.MetricQuotesRequested, 1)

	call := func(ctx context.Context) (types.Quote, error) {
		if r.cfg.QuoteTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.cfg.QuoteTimeout)
			defer cancel()
		}
		return callVault(ctx, v, amount, op)
	}

	var (
		q   types.Quote
		err error
	)
	if c != nil && r.cfg.QuoteCacheTTL > 0 {
		var hit bool
		q, hit, err = cache.GetOrSet(ctx, c, quoteKey(v.ID(), op, amount), r.cfg.QuoteCacheTTL, call)
		if hit {
			r.count(ctx, metrics.MetricQuoteCacheHits, 1)
		}
	} else {
		q, err = call(ctx)
	}

	if err != nil {
		r.diag.quotesFailed.Add(1)
		r.count(ctx, metrics.MetricQuotesFailed, 1)
		r.GetLogger().Debug("quote failed", "vault_id", v.ID(), "amount_in", amount, "error", err)
		return types.Quote{}, err
	}
	return q, nil
}

func quoteKey(vaultID string, op opcode.Opcode, amount uint64) string {
	return fmt.Sprintf("quote|%s|%s|%d", vaultID, op.Hex(), amount)
}

// callVault runs v.Quote in its own goroutine so that a vault ignoring its
// context still cannot hold the hop past the deadline. Panics become errors.
func callVault(ctx context.Context, v vault.Vault, amount uint64, op opcode.Opcode) (types.Quote, error) {
	type result struct {
		q   types.Quote
		err error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- result{err: fmt.Errorf("vault panicked: %v", p)}
			}
		}()
		q, err := v.Quote(ctx, amount, op)
		ch <- result{q: q, err: err}
	}()

	select {
	case <-ctx.Done():
		return types.Quote{}, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return types.Quote{}, res.err
		}
		if res.q.AmountOut == 0 {
			return types.Quote{}, errZeroOutput
		}
		// Zero means the vault left the input unreported.
		if res.q.AmountIn == 0 {
			res.q.AmountIn = amount
		}
		if res.q.AmountIn != amount {
			return types.Quote{}, fmt.Errorf("%w: asked %d, quoted %d", ErrAmountInMismatch, amount, res.q.AmountIn)
		}
		return res.q, nil
	}
}
