package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/storage/sqlite"
	"github.com/lugondev/go-dexterity/internal/vault"
)

const manifestYAML = `
tokens:
  - id: .stx
    symbol: STX
    decimals: 6
  - id: SP1.charisma-token
    symbol: CHA
    decimals: 6
  - id: SP1.welsh
    symbol: WELSH
    decimals: 6
vaults:
  - id: SP1.stx-cha
    name: STX/CHA
    kind: constant-product
    token_a: .stx
    token_b: SP1.charisma-token
    reserve_a: 1000000000
    reserve_b: 950000000
    fee: 3000
  - id: SP1.cha-welsh
    kind: constant-product
    token_a: SP1.charisma-token
    token_b: SP1.welsh
    reserve_a: 500000000
    reserve_b: 800000000
    fee: 2500
`

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "vaults.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

type recordingLoader struct {
	mu    sync.Mutex
	loads [][]vault.Vault
}

func (l *recordingLoader) LoadVaults(vaults []vault.Vault) graph.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, vaults)
	return graph.Build(vaults).Stats()
}

func (l *recordingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.loads)
}

func TestManifestSource(t *testing.T) {
	path := writeManifest(t, t.TempDir(), manifestYAML)
	src := NewManifestSource(path, nil).WithLimiter(vault.NewLimiter(100, 1))

	vaults, err := src.Vaults(context.Background())
	if err != nil {
		t.Fatalf("Vaults() error = %v", err)
	}
	if len(vaults) != 2 {
		t.Fatalf("got %d vaults, want 2", len(vaults))
	}
	if _, ok := vaults[0].(*vault.RateLimited); !ok {
		t.Errorf("vault is %T, want *vault.RateLimited", vaults[0])
	}
	if d := vault.Describe(vaults[0]); d.ID != "SP1.stx-cha" || d.ReserveB != 950_000_000 {
		t.Errorf("Describe() = %+v", d)
	}

	missing := NewManifestSource(filepath.Join(t.TempDir(), "none.yaml"), nil)
	if _, err := missing.Vaults(context.Background()); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}

func TestRefresherReloadsOnlyOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, manifestYAML)
	loader := &recordingLoader{}
	r := NewRefresher(NewManifestSource(path, nil), loader, time.Minute)
	ctx := context.Background()

	changed, err := r.Refresh(ctx)
	if err != nil || !changed {
		t.Fatalf("first Refresh() = %v, %v, want true, nil", changed, err)
	}
	changed, err = r.Refresh(ctx)
	if err != nil || changed {
		t.Fatalf("unchanged Refresh() = %v, %v, want false, nil", changed, err)
	}

	writeManifest(t, dir, manifestYAML[:len(manifestYAML)-len("    fee: 2500\n")]+"    fee: 2000\n")
	changed, err = r.Refresh(ctx)
	if err != nil || !changed {
		t.Fatalf("Refresh() after edit = %v, %v, want true, nil", changed, err)
	}

	writeManifest(t, dir, "vaults: [")
	if _, err := r.Refresh(ctx); err == nil {
		t.Fatal("expected a parse error")
	}
	if got := loader.count(); got != 2 {
		t.Errorf("loader called %d times, want 2", got)
	}
}

type flakySource struct {
	calls  atomic.Int32
	vaults []vault.Vault
}

func (s *flakySource) Name() string { return "flaky" }

func (s *flakySource) Vaults(ctx context.Context) ([]vault.Vault, error) {
	if s.calls.Add(1)%2 == 0 {
		return nil, errors.New("ledger unavailable")
	}
	return s.vaults, nil
}

func TestRefresherRunKeepsLastGoodSet(t *testing.T) {
	m, err := vault.ParseManifest([]byte(manifestYAML))
	if err != nil {
		t.Fatal(err)
	}
	vaults, err := m.Build(nil)
	if err != nil {
		t.Fatal(err)
	}

	src := &flakySource{vaults: vaults}
	loader := &recordingLoader{}
	r := NewRefresher(src, loader, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := r.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
	if src.calls.Load() < 3 {
		t.Errorf("source polled %d times, want several", src.calls.Load())
	}
	if got := loader.count(); got != 1 {
		t.Errorf("loader called %d times, want 1", got)
	}
}

func TestRefresherRunFailsOnInitialError(t *testing.T) {
	src := &flakySource{}
	src.calls.Store(1)
	r := NewRefresher(src, &recordingLoader{}, time.Millisecond)
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected the initial refresh error")
	}
}

func TestSnapshotAndRepositorySource(t *testing.T) {
	ctx := context.Background()
	repo, err := sqlite.NewSQLiteRepository(ctx, &config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "snap.db")})
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	m, err := vault.ParseManifest([]byte(manifestYAML))
	if err != nil {
		t.Fatal(err)
	}
	vaults, err := m.Build(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := Snapshot(ctx, repo, vaults); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	// A second snapshot updates in place.
	if err := Snapshot(ctx, repo, vaults); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	tokens, err := repo.Tokens().FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 3 {
		t.Errorf("stored %d tokens, want 3", len(tokens))
	}

	restored, err := NewRepositorySource(repo, nil).Vaults(ctx)
	if err != nil {
		t.Fatalf("RepositorySource.Vaults() error = %v", err)
	}
	if len(restored) != len(vaults) {
		t.Fatalf("restored %d vaults, want %d", len(restored), len(vaults))
	}

	want := map[string]vault.Descriptor{}
	for _, v := range vaults {
		want[v.ID()] = vault.Describe(v)
	}
	for _, v := range restored {
		if got := vault.Describe(v); got != want[v.ID()] {
			t.Errorf("restored %+v, want %+v", got, want[v.ID()])
		}
		if v.Legs()[0].Symbol == "" {
			t.Errorf("vault %s lost its token metadata", v.ID())
		}
	}
}
