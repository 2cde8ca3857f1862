package types

import "testing"

func TestTokenFormatAndParseAmount(t *testing.T) {
	stx := Token{ID: NativeTokenID, Symbol: "STX", Decimals: 6}

	if got := stx.FormatAmount(1_500_000); got != "1.5" {
		t.Errorf("expected 1.5, got %s", got)
	}

	raw, err := stx.ParseAmount("2.25")
	if err != nil {
		t.Fatalf("ParseAmount failed: %v", err)
	}
	if raw != 2_250_000 {
		t.Errorf("expected 2250000, got %d", raw)
	}

	if _, err := stx.ParseAmount("0.0000001"); err == nil {
		t.Error("expected error for too many decimals")
	}
	if _, err := stx.ParseAmount("-1"); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := stx.ParseAmount("abc"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestTokenString(t *testing.T) {
	if s := (Token{ID: "SP1.cha"}).String(); s != "SP1.cha" {
		t.Errorf("expected id fallback, got %s", s)
	}
	if s := (Token{ID: "SP1.cha", Symbol: "CHA"}).String(); s != "CHA" {
		t.Errorf("expected symbol, got %s", s)
	}
}

func TestNewQuotePrice(t *testing.T) {
	stx := Token{ID: NativeTokenID, Symbol: "STX", Decimals: 6}
	cha := Token{ID: "SP1.cha", Symbol: "CHA", Decimals: 6}

	q := NewQuote(stx, cha, 1_000_000, 950_000, 3_000)
	if q.ExpectedPrice.String() != "0.95" {
		t.Errorf("expected price 0.95, got %s", q.ExpectedPrice)
	}
	if q.MinimumReceived != 950_000 {
		t.Errorf("expected minimum received 950000, got %d", q.MinimumReceived)
	}

	if !Price(0, 6, 10, 6).IsZero() {
		t.Error("expected zero price for zero input")
	}
}

func TestApplySlippage(t *testing.T) {
	tests := []struct {
		amount uint64
		bps    uint32
		want   uint64
	}{
		{1_000_000, 0, 1_000_000},
		{1_000_000, 50, 995_000},
		{999, 100, 989},
		{1_000, 10_000, 0},
	}
	for _, tt := range tests {
		if got := ApplySlippage(tt.amount, tt.bps); got != tt.want {
			t.Errorf("ApplySlippage(%d, %d) = %d, want %d", tt.amount, tt.bps, got, tt.want)
		}
	}
}
