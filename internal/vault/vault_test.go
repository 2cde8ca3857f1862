package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

var (
	stx = types.Token{ID: types.NativeTokenID, Symbol: "STX", Decimals: 6}
	cha = types.Token{ID: "SP1.charisma-token", Symbol: "CHA", Decimals: 6}
)

func TestConstantProductQuote(t *testing.T) {
	v := NewConstantProductVault("SP1.stx-cha", "", stx, cha, 1_000_000_000, 1_000_000_000, 3_000)
	ctx := context.Background()

	q, err := v.Quote(ctx, 1_000_000, opcode.Encode(opcode.SwapAToB))
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	// in after fee = 997000; out = 997000*1e9/(1e9+997000) = 996006
	if q.AmountOut != 996_006 {
		t.Errorf("expected 996006 out, got %d", q.AmountOut)
	}
	if q.Fee != 3_000 {
		t.Errorf("expected fee 3000, got %d", q.Fee)
	}
	if q.AmountIn != 1_000_000 {
		t.Errorf("expected amount in 1000000, got %d", q.AmountIn)
	}

	rev, err := v.Quote(ctx, 1_000_000, opcode.Encode(opcode.SwapBToA))
	if err != nil {
		t.Fatalf("reverse Quote failed: %v", err)
	}
	if rev.AmountOut != q.AmountOut {
		t.Errorf("symmetric pool should quote both ways equally: %d vs %d", rev.AmountOut, q.AmountOut)
	}

	res, err := v.Quote(ctx, 0, opcode.Encode(opcode.LookupReserves))
	if err != nil {
		t.Fatalf("lookup reserves failed: %v", err)
	}
	if res.AmountIn != 1_000_000_000 || res.AmountOut != 1_000_000_000 {
		t.Errorf("unexpected reserves %d/%d", res.AmountIn, res.AmountOut)
	}

	if _, err := v.Quote(ctx, 1, opcode.Encode(opcode.AddLiquidity)); err == nil {
		t.Error("expected add liquidity to be unsupported")
	}
}

func TestConstantProductEmptyPool(t *testing.T) {
	v := NewConstantProductVault("SP1.empty", "", stx, cha, 0, 0, 3_000)
	if _, err := v.Quote(context.Background(), 1_000, opcode.Swap(true)); err == nil {
		t.Fatal("expected error quoting an empty pool")
	}
}

func TestRemoteVaultDelegatesToCaller(t *testing.T) {
	var gotContract string
	var gotOp opcode.Opcode
	caller := CallerFunc(func(ctx context.Context, contractID string, amount uint64, op opcode.Opcode) (Delta, error) {
		gotContract = contractID
		gotOp = op
		return Delta{Dx: amount, Dy: 950_000}, nil
	})

	v := NewRemoteVault("v1", "", "SP1.pool-v1", stx, cha, 0, 0, 5_000, caller)
	q, err := v.Quote(context.Background(), 1_000_000, opcode.Swap(false))
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if gotContract != "SP1.pool-v1" {
		t.Errorf("expected contract SP1.pool-v1, got %s", gotContract)
	}
	if gotOp.Operation() != opcode.SwapBToA {
		t.Errorf("expected SWAP_B_TO_A, got %s", gotOp.Operation())
	}
	if q.AmountOut != 950_000 || q.Fee != 5_000 {
		t.Errorf("unexpected quote %+v", q)
	}

	failing := NewRemoteVault("v2", "", "SP1.pool-v2", stx, cha, 0, 0, 0,
		CallerFunc(func(context.Context, string, uint64, opcode.Opcode) (Delta, error) {
			return Delta{}, errors.New("rpc down")
		}))
	if _, err := failing.Quote(context.Background(), 1, opcode.Swap(true)); err == nil {
		t.Fatal("expected caller error to propagate")
	}
}

func TestRateLimitedWaitsAndUnwraps(t *testing.T) {
	base := NewConstantProductVault("v1", "", stx, cha, 1_000, 1_000, 0)
	limited := WithRateLimit(base, NewLimiter(1, 1))

	ctx := context.Background()
	if _, err := limited.Quote(ctx, 10, opcode.Swap(true)); err != nil {
		t.Fatalf("first quote should pass: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, err := limited.Quote(short, 10, opcode.Swap(true)); err == nil {
		t.Fatal("expected second quote to fail waiting for the limiter")
	}

	if WithRateLimit(base, nil) != Vault(base) {
		t.Error("nil limiter should return the vault unchanged")
	}
	if d := Describe(limited); d.ID != "v1" || d.Kind != KindConstantProduct {
		t.Errorf("unexpected descriptor %+v", d)
	}
}

func TestDirection(t *testing.T) {
	v := NewConstantProductVault("v1", "", stx, cha, 1, 1, 0)
	if op, ok := Direction(v, stx.ID); !ok || op.Operation() != opcode.SwapAToB {
		t.Errorf("expected A->B for first leg, got %v %v", op, ok)
	}
	if op, ok := Direction(v, cha.ID); !ok || op.Operation() != opcode.SwapBToA {
		t.Errorf("expected B->A for second leg, got %v %v", op, ok)
	}
	if _, ok := Direction(v, "SP1.other"); ok {
		t.Error("expected unknown token to have no direction")
	}
}

const testManifest = `
tokens:
  - id: .stx
    symbol: STX
    decimals: 6
  - id: SP1.charisma-token
    symbol: CHA
    decimals: 6
vaults:
  - id: SP1.stx-cha
    kind: constant-product
    token_a: .stx
    token_b: SP1.charisma-token
    reserve_a: 1000000
    reserve_b: 2000000
    fee: 3000
  - id: SP1.stx-cha-remote
    kind: remote
    contract_id: SP1.dexterity-pool
    token_a: .stx
    token_b: SP1.charisma-token
`

func TestManifestBuild(t *testing.T) {
	m, err := ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if len(m.Tokens) != 2 || len(m.Vaults) != 2 {
		t.Fatalf("unexpected manifest sizes: %d tokens, %d vaults", len(m.Tokens), len(m.Vaults))
	}

	if _, err := m.Build(nil); err == nil {
		t.Fatal("expected remote vault without caller to fail")
	}

	caller := CallerFunc(func(context.Context, string, uint64, opcode.Opcode) (Delta, error) {
		return Delta{}, nil
	})
	vaults, err := m.Build(caller)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if vaults[0].Reserves() != [2]uint64{1_000_000, 2_000_000} {
		t.Errorf("unexpected reserves %v", vaults[0].Reserves())
	}

	d := Describe(vaults[1])
	if d.Kind != KindRemote || d.ContractID != "SP1.dexterity-pool" {
		t.Errorf("unexpected remote descriptor %+v", d)
	}
}

func TestNewRejectsBadDescriptors(t *testing.T) {
	tokens := map[string]types.Token{stx.ID: stx, cha.ID: cha}
	bad := []Descriptor{
		{TokenA: stx.ID, TokenB: cha.ID},
		{ID: "v", TokenA: stx.ID, TokenB: "missing"},
		{ID: "v", TokenA: stx.ID, TokenB: stx.ID},
		{ID: "v", TokenA: stx.ID, TokenB: cha.ID, Fee: FeeDenominator},
		{ID: "v", TokenA: stx.ID, TokenB: cha.ID, Kind: "orderbook"},
	}
	for i, d := range bad {
		if _, err := New(d, tokens, nil); err == nil {
			t.Errorf("descriptor %d: expected error", i)
		}
	}
}
