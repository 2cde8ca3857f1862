package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/metrics"
	"github.com/lugondev/go-dexterity/internal/router"
	"github.com/lugondev/go-dexterity/internal/storage"
	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/types"
)

var (
	stx   = types.Token{ID: types.NativeTokenID, Symbol: "STX", Decimals: 6}
	cha   = types.Token{ID: "SP1.charisma-token", Symbol: "CHA", Decimals: 6}
	welsh = types.Token{ID: "SP1.welsh", Symbol: "WELSH", Decimals: 6}
)

func bestRoute(t testing.TB) *router.Route {
	t.Helper()
	r := router.New(router.DefaultConfig())
	r.LoadVaults([]vault.Vault{
		vault.NewConstantProductVault("SP1.stx-welsh", "", stx, welsh, 1_000_000_000, 1_000_000_000, 3000),
		vault.NewConstantProductVault("SP1.welsh-cha", "", welsh, cha, 1_000_000_000, 1_000_000_000, 3000),
	})
	rt, err := r.FindBestRoute(context.Background(), stx.ID, cha.ID, 1_000_000)
	if err != nil {
		t.Fatalf("FindBestRoute() error = %v", err)
	}
	return rt
}

type memRoutes struct {
	mu     sync.Mutex
	saved  []*storage.RouteModel
	failOn int
}

func (m *memRoutes) Save(ctx context.Context, route *storage.RouteModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn > 0 && len(m.saved)+1 == m.failOn {
		m.failOn = 0
		return errors.New("disk full")
	}
	m.saved = append(m.saved, route)
	return nil
}

func (m *memRoutes) FindByID(ctx context.Context, id string) (*storage.RouteModel, error) {
	return nil, nil
}

func (m *memRoutes) FindByPair(ctx context.Context, tokenIn, tokenOut string, limit int, offset int) ([]*storage.RouteModel, error) {
	return nil, nil
}

func (m *memRoutes) FindRecent(ctx context.Context, limit int) ([]*storage.RouteModel, error) {
	return nil, nil
}

func TestNewRouteModel(t *testing.T) {
	res := NewResult(bestRoute(t), graph.StrategyVaultSequence, 50)
	m := NewRouteModel(res)

	if m.ID == "" || m.QueryID != res.QueryID {
		t.Errorf("ids = %q / %q", m.ID, m.QueryID)
	}
	if m.TokenIn != stx.ID || m.TokenOut != cha.ID || m.Hops != 2 {
		t.Errorf("model = %+v", m)
	}
	if len(m.VaultIDs) != 2 || m.VaultIDs[0] != "SP1.stx-welsh" || m.VaultIDs[1] != "SP1.welsh-cha" {
		t.Errorf("VaultIDs = %v", m.VaultIDs)
	}
	if len(m.Opcodes) != 2 || !strings.HasPrefix(m.Opcodes[0], "0x00") {
		t.Errorf("Opcodes = %v", m.Opcodes)
	}
	if m.MinimumReceived != res.Route.AmountOut*9950/10000 {
		t.Errorf("MinimumReceived = %d for AmountOut %d", m.MinimumReceived, res.Route.AmountOut)
	}
	if m.Path != "STX -[SP1.stx-welsh]-> WELSH -[SP1.welsh-cha]-> CHA" {
		t.Errorf("Path = %q", m.Path)
	}
	if m.Strategy != "vault-sequence" || !m.CreatedAt.Equal(res.At) {
		t.Errorf("Strategy/CreatedAt = %q / %v", m.Strategy, m.CreatedAt)
	}
}

func TestJournalProcessor(t *testing.T) {
	repo := &memRoutes{failOn: 2}
	lm := metrics.NewLogMetrics(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	m := metrics.NewCollection(lm)
	p := NewJournalProcessor(repo, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx := context.Background()
	rt := bestRoute(t)

	if err := p.Process(ctx, NewResult(rt, graph.StrategyVaultSequence, 0), m); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if err := p.Process(ctx, NewResult(rt, graph.StrategyVaultSequence, 0), m); err == nil {
		t.Fatal("expected the save error")
	}
	if err := p.Process(ctx, NewResult(rt, graph.StrategyVaultSequence, 0), nil); err != nil {
		t.Fatalf("Process() with nil metrics error = %v", err)
	}

	if len(repo.saved) != 2 {
		t.Errorf("saved %d routes, want 2", len(repo.saved))
	}
	if got := lm.Counter(metrics.MetricRoutesJournaled); got != 1 {
		t.Errorf("%s = %d, want 1", metrics.MetricRoutesJournaled, got)
	}
	if got := lm.Counter(metrics.MetricJournalErrors); got != 1 {
		t.Errorf("%s = %d, want 1", metrics.MetricJournalErrors, got)
	}
}

func TestLogProcessor(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogProcessor(slog.New(slog.NewTextHandler(&buf, nil)))
	res := NewResult(bestRoute(t), graph.StrategyAssetSequence, 100)

	if err := p.Process(context.Background(), res, nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"route selected", "query_id=" + res.QueryID, "hops=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestChainedProcessor(t *testing.T) {
	var calls []string
	record := func(name string, err error) Processor[int] {
		return ProcessorFunc[int](func(ctx context.Context, d int, m *metrics.Collection) error {
			calls = append(calls, fmt.Sprintf("%s:%d", name, d))
			return err
		})
	}

	chain := NewChainedProcessor(record("a", nil))
	chain.Add(record("b", errors.New("stop")))
	chain.Add(record("c", nil))
	if chain.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", chain.Len())
	}

	if err := chain.Process(context.Background(), 7, nil); err == nil || err.Error() != "stop" {
		t.Fatalf("Process() error = %v, want stop", err)
	}
	if strings.Join(calls, ",") != "a:7,b:7" {
		t.Errorf("calls = %v, want a then b", calls)
	}
}

func TestConditionalAndErrorHandling(t *testing.T) {
	repo := &memRoutes{failOn: 1}
	ctx := context.Background()
	rt := bestRoute(t)

	var handled error
	p := NewErrorHandlingProcessor[*Result](
		NewConditionalProcessor[*Result](NewJournalProcessor(repo, nil), MinAmountIn(500_000)),
		func(err error) error {
			handled = err
			return nil
		},
	)

	small := *rt
	small.AmountIn = 10
	if err := p.Process(ctx, NewResult(&small, graph.StrategyVaultSequence, 0), nil); err != nil {
		t.Fatalf("Process(small) error = %v", err)
	}
	if len(repo.saved) != 0 || handled != nil {
		t.Fatal("a route below the threshold must be skipped")
	}

	if err := p.Process(ctx, NewResult(rt, graph.StrategyVaultSequence, 0), nil); err != nil {
		t.Fatalf("handler should swallow the error, got %v", err)
	}
	if handled == nil {
		t.Fatal("handler was not called")
	}

	if err := p.Process(ctx, NewResult(rt, graph.StrategyVaultSequence, 0), nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(repo.saved) != 1 {
		t.Errorf("saved %d routes, want 1", len(repo.saved))
	}
}

func BenchmarkChainedProcessor(b *testing.B) {
	ctx := context.Background()
	m := metrics.NewCollection()
	res := NewResult(bestRoute(b), graph.StrategyVaultSequence, 50)

	for _, count := range []int{1, 5, 10} {
		processors := make([]Processor[*Result], count)
		for i := range processors {
			processors[i] = ProcessorFunc[*Result](func(ctx context.Context, r *Result, m *metrics.Collection) error {
				_ = NewRouteModel(r)
				return nil
			})
		}
		chained := NewChainedProcessor(processors...)

		b.Run(fmt.Sprintf("Processors_%d", count), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = chained.Process(ctx, res, m)
			}
		})
	}
}
