package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sugawarayuuta/sonnet"

	"github.com/lugondev/go-dexterity/pkg/types"
)

const testManifest = `
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

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTestManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaults.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestOpcodeEncodeDecode(t *testing.T) {
	out, err := execute(t, "opcode", "encode", "swap-b-to-a", "--fee-type", "2")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	hex := strings.TrimSpace(out)
	if hex != "0x01000200000000000000000000000000" {
		t.Errorf("unexpected opcode %s", hex)
	}

	out, err = execute(t, "opcode", "decode", hex)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !strings.Contains(out, "SWAP_B_TO_A") || !strings.Contains(out, "Fee type:       2") {
		t.Errorf("unexpected decode output:\n%s", out)
	}

	if _, err := execute(t, "opcode", "decode", "0x0100"); err == nil {
		t.Error("expected an error for a short opcode")
	}
	if _, err := execute(t, "opcode", "encode", "flash-loan"); err == nil {
		t.Error("expected an error for an unknown operation")
	}
}

func TestRouteCommand(t *testing.T) {
	manifest := writeTestManifest(t)

	out, err := execute(t, "route", ".stx", "SP1.welsh", "1", "--units", "--json",
		"--manifest", manifest, "--log-level", "error")
	if err != nil {
		t.Fatalf("route failed: %v\n%s", err, out)
	}

	var view struct {
		From      types.Token `json:"from"`
		AmountIn  uint64      `json:"amountIn"`
		AmountOut uint64      `json:"amountOut"`
		Route     string      `json:"route"`
		Hops      []hopView   `json:"hops"`
	}
	if err := sonnet.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if view.AmountIn != 1_000_000 {
		t.Errorf("expected amount in 1000000, got %d", view.AmountIn)
	}
	if len(view.Hops) != 2 || view.AmountOut == 0 {
		t.Fatalf("expected a priced 2-hop route, got %+v", view)
	}
	if view.Hops[1].AmountIn != view.Hops[0].AmountOut {
		t.Errorf("hops do not chain: %d != %d", view.Hops[1].AmountIn, view.Hops[0].AmountOut)
	}
	if view.From.Symbol != "STX" {
		t.Errorf("expected STX, got %s", view.From.Symbol)
	}

	if _, err := execute(t, "route", ".stx", "SP1.unknown", "100", "--json=false", "--units=false",
		"--manifest", manifest, "--log-level", "error"); err == nil {
		t.Error("expected an error for an unreachable token")
	}
}

func TestPathsCommand(t *testing.T) {
	manifest := writeTestManifest(t)

	out, err := execute(t, "paths", ".stx", "SP1.welsh", "--manifest", manifest, "--log-level", "error")
	if err != nil {
		t.Fatalf("paths failed: %v", err)
	}
	if !strings.HasPrefix(out, "1 path(s)") {
		t.Errorf("unexpected paths output:\n%s", out)
	}
}

func TestParseAmount(t *testing.T) {
	stx := types.Token{ID: ".stx", Symbol: "STX", Decimals: 6}

	tests := []struct {
		in      string
		units   bool
		want    uint64
		wantErr bool
	}{
		{in: "1000", want: 1000},
		{in: "1.5", units: true, want: 1_500_000},
		{in: "0.0000001", units: true, wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "18446744073709551616", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in, stx, tt.units)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q, %v): expected error", tt.in, tt.units)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmount(%q, %v): %v", tt.in, tt.units, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q, %v) = %d, want %d", tt.in, tt.units, got, tt.want)
		}
	}
}
