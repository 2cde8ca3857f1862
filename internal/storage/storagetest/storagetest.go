// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lugondev/go-dexterity/internal/storage"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Run exercises repo against an empty database.
func Run(t *testing.T, repo storage.Repository) {
	t.Helper()

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(context.Background()); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
	})
	t.Run("Tokens", func(t *testing.T) { testTokens(t, repo.Tokens()) })
	t.Run("Vaults", func(t *testing.T) { testVaults(t, repo.Vaults()) })
	t.Run("Routes", func(t *testing.T) { testRoutes(t, repo.Routes()) })
}

func testTokens(t *testing.T, tokens storage.TokenRepository) {
	ctx := context.Background()

	err := tokens.SaveBatch(ctx, []*storage.TokenModel{
		{ID: "SP2.wrapped-stx", Symbol: "wSTX", Name: "Wrapped STX", Decimals: 6, UpdatedAt: epoch},
		{ID: ".stx", Symbol: "STX", Name: "Stacks", Decimals: 6, UpdatedAt: epoch},
	})
	if err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}

	all, err := tokens.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != ".stx" || all[1].ID != "SP2.wrapped-stx" {
		t.Fatalf("FindAll() = %v, want .stx then SP2.wrapped-stx", all)
	}

	if err := tokens.Save(ctx, &storage.TokenModel{ID: ".stx", Symbol: "STX", Name: "Stacks Token", Decimals: 6, UpdatedAt: epoch.Add(time.Hour)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := tokens.FindByID(ctx, ".stx")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got == nil || got.Name != "Stacks Token" || got.Decimals != 6 {
		t.Errorf("FindByID() = %+v, want updated name", got)
	}

	missing, err := tokens.FindByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("FindByID(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func testVaults(t *testing.T, vaults storage.VaultRepository) {
	ctx := context.Background()

	v1 := &storage.VaultModel{
		ID: "pool-1", Name: "STX/CHA", Kind: "constant-product",
		TokenA: ".stx", TokenB: "SP.cha", ReserveA: 1_000_000, ReserveB: 2_000_000, Fee: 3000,
		UpdatedAt: epoch, CreatedAt: epoch,
	}
	v2 := &storage.VaultModel{
		ID: "pool-2", Name: "CHA/WELSH", Kind: "remote", ContractID: "SP.pool-2",
		TokenA: "SP.cha", TokenB: "SP.welsh", ReserveA: 5, ReserveB: 7, Fee: 0,
		UpdatedAt: epoch, CreatedAt: epoch.Add(time.Second),
	}
	if err := vaults.SaveBatch(ctx, []*storage.VaultModel{v1, v2}); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}

	all, err := vaults.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if ids := vaultIDs(all); !slices.Equal(ids, []string{"pool-1", "pool-2"}) {
		t.Fatalf("FindAll() ids = %v", ids)
	}

	byToken, err := vaults.FindByToken(ctx, "SP.cha")
	if err != nil {
		t.Fatalf("FindByToken() error = %v", err)
	}
	if len(byToken) != 2 {
		t.Errorf("FindByToken(SP.cha) returned %d vaults, want 2", len(byToken))
	}
	byToken, err = vaults.FindByToken(ctx, "SP.welsh")
	if err != nil {
		t.Fatalf("FindByToken() error = %v", err)
	}
	if ids := vaultIDs(byToken); !slices.Equal(ids, []string{"pool-2"}) {
		t.Errorf("FindByToken(SP.welsh) ids = %v", ids)
	}

	updated := *v1
	updated.ReserveA = 1_500_000
	updated.UpdatedAt = epoch.Add(time.Hour)
	updated.CreatedAt = epoch.Add(time.Hour)
	if err := vaults.Save(ctx, &updated); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := vaults.FindByID(ctx, "pool-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("FindByID(pool-1) = nil")
	}
	if got.ReserveA != 1_500_000 || got.ReserveB != 2_000_000 || got.Fee != 3000 {
		t.Errorf("FindByID() = %+v, want updated reserves", got)
	}
	if !got.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v to survive the update", got.CreatedAt, epoch)
	}

	remote, err := vaults.FindByID(ctx, "pool-2")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if d := remote.Descriptor(); d.Kind != "remote" || d.ContractID != "SP.pool-2" {
		t.Errorf("Descriptor() = %+v", d)
	}

	if err := vaults.Delete(ctx, "pool-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	gone, err := vaults.FindByID(ctx, "pool-1")
	if err != nil || gone != nil {
		t.Errorf("FindByID(deleted) = %v, %v, want nil, nil", gone, err)
	}
}

func testRoutes(t *testing.T, routes storage.RouteRepository) {
	ctx := context.Background()

	saved := make([]*storage.RouteModel, 3)
	for i := range saved {
		saved[i] = &storage.RouteModel{
			ID:              uuid.NewString(),
			QueryID:         uuid.NewString(),
			TokenIn:         ".stx",
			TokenOut:        "SP.cha",
			AmountIn:        1000,
			AmountOut:       uint64(900 + i),
			MinimumReceived: 890,
			Hops:            2,
			VaultIDs:        []string{"pool-1", "pool-2"},
			Opcodes:         []string{"0x00000000000000000000000000000000", "0x01000000000000000000000000000000"},
			Path:            "STX -[pool-1]-> WELSH -[pool-2]-> CHA",
			Strategy:        "vault-sequence",
			CreatedAt:       epoch.Add(time.Duration(i) * time.Minute),
		}
	}
	saved[2].TokenOut = "SP.welsh"

	for _, r := range saved {
		if err := routes.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := routes.FindByID(ctx, saved[0].ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("FindByID() = nil")
	}
	if got.AmountOut != 900 || got.Hops != 2 || got.QueryID != saved[0].QueryID {
		t.Errorf("FindByID() = %+v", got)
	}
	if !slices.Equal(got.VaultIDs, saved[0].VaultIDs) || !slices.Equal(got.Opcodes, saved[0].Opcodes) {
		t.Errorf("FindByID() lists = %v %v", got.VaultIDs, got.Opcodes)
	}

	recent, err := routes.FindRecent(ctx, 2)
	if err != nil {
		t.Fatalf("FindRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != saved[2].ID || recent[1].ID != saved[1].ID {
		t.Errorf("FindRecent(2) returned %d routes in the wrong order", len(recent))
	}

	pair, err := routes.FindByPair(ctx, ".stx", "SP.cha", 10, 0)
	if err != nil {
		t.Fatalf("FindByPair() error = %v", err)
	}
	if len(pair) != 2 || pair[0].ID != saved[1].ID {
		t.Errorf("FindByPair() returned %d routes, want 2 newest first", len(pair))
	}

	page, err := routes.FindByPair(ctx, ".stx", "SP.cha", 10, 1)
	if err != nil {
		t.Fatalf("FindByPair() error = %v", err)
	}
	if len(page) != 1 || page[0].ID != saved[0].ID {
		t.Errorf("FindByPair(offset 1) returned %d routes", len(page))
	}

	missing, err := routes.FindByID(ctx, uuid.NewString())
	if err != nil || missing != nil {
		t.Errorf("FindByID(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func vaultIDs(vaults []*storage.VaultModel) []string {
	ids := make([]string, len(vaults))
	for i, v := range vaults {
		ids[i] = v.ID
	}
	return ids
}
