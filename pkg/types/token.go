// Package types holds the value types shared by the router and its collaborators.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeTokenID identifies the chain-native asset, which has no contract principal.
const NativeTokenID = ".stx"

// Token is a fungible asset known to the router. Identity is ID; the other
// fields are display metadata and never take part in comparisons.
type Token struct {
	ID       string `json:"id" yaml:"id"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name" yaml:"name"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty"`
}

// String returns the symbol when set, otherwise the id.
func (t Token) String() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.ID
}

// IsNative reports whether the token is the chain-native asset.
func (t Token) IsNative() bool {
	return t.ID == NativeTokenID
}

// FormatAmount renders a raw integer amount in whole units using the token's decimals.
func (t Token) FormatAmount(amount uint64) string {
	return ToDecimal(amount, t.Decimals).String()
}

// ParseAmount converts a human-readable amount ("1.5") into raw units.
func (t Token) ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	raw := d.Shift(int32(t.Decimals))
	if raw.IsNegative() {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	if !raw.Equal(raw.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d decimals", s, t.Decimals)
	}
	if raw.GreaterThan(decimal.NewFromUint64(^uint64(0))) {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	return raw.BigInt().Uint64(), nil
}

// ToDecimal shifts a raw amount right by decimals.
func ToDecimal(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(amount).Shift(-int32(decimals))
}

// Quote is the priced result of one conversion through one vault.
type Quote struct {
	AmountIn        uint64          `json:"amountIn"`
	AmountOut       uint64          `json:"amountOut"`
	ExpectedPrice   decimal.Decimal `json:"expectedPrice"`
	MinimumReceived uint64          `json:"minimumReceived"`
	Fee             uint64          `json:"fee"`
}

// NewQuote builds a quote and derives the expected price as out/in in whole
// units of the respective tokens.
func NewQuote(in, out Token, amountIn, amountOut, fee uint64) Quote {
	return Quote{
		AmountIn:        amountIn,
		AmountOut:       amountOut,
		ExpectedPrice:   Price(amountIn, in.Decimals, amountOut, out.Decimals),
		MinimumReceived: amountOut,
		Fee:             fee,
	}
}

// Price returns amountOut/amountIn adjusted for decimals. Zero input yields zero.
func Price(amountIn uint64, decIn uint8, amountOut uint64, decOut uint8) decimal.Decimal {
	if amountIn == 0 {
		return decimal.Zero
	}
	return ToDecimal(amountOut, decOut).DivRound(ToDecimal(amountIn, decIn), 18)
}

// ApplySlippage returns amount reduced by bps basis points, rounded down.
func ApplySlippage(amount uint64, bps uint32) uint64 {
	if bps >= 10_000 {
		return 0
	}
	return decimal.NewFromUint64(amount).
		Mul(decimal.NewFromInt(int64(10_000 - bps))).
		Div(decimal.NewFromInt(10_000)).
		Floor().
		BigInt().
		Uint64()
}
