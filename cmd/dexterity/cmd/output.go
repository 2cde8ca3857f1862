package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sugawarayuuta/sonnet"

	"github.com/lugondev/go-dexterity/internal/processor"
	"github.com/lugondev/go-dexterity/internal/router"
	"github.com/lugondev/go-dexterity/pkg/types"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := sonnet.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAmount reads a raw integer amount, or whole units of token when
// units is set.
func parseAmount(s string, token types.Token, units bool) (uint64, error) {
	if !units {
		// Raw amounts have no decimals.
		token = types.Token{ID: token.ID}
	}
	return token.ParseAmount(s)
}

type hopView struct {
	Vault     string `json:"vault"`
	Opcode    string `json:"opcode"`
	Operation string `json:"operation"`
	TokenIn   string `json:"tokenIn"`
	TokenOut  string `json:"tokenOut"`
	AmountIn  uint64 `json:"amountIn"`
	AmountOut uint64 `json:"amountOut"`
	Fee       uint64 `json:"fee"`
}

type routeView struct {
	QueryID         string          `json:"queryId,omitempty"`
	From            types.Token     `json:"from"`
	To              types.Token     `json:"to"`
	AmountIn        uint64          `json:"amountIn"`
	AmountOut       uint64          `json:"amountOut"`
	MinimumReceived uint64          `json:"minimumReceived"`
	Price           decimal.Decimal `json:"price"`
	TotalFee        uint64          `json:"totalFee"`
	Route           string          `json:"route"`
	Hops            []hopView       `json:"hops"`
}

func newRouteView(res *processor.Result) routeView {
	rt := res.Route
	v := routeView{
		QueryID:         res.QueryID,
		From:            rt.TokenIn(),
		To:              rt.TokenOut(),
		AmountIn:        rt.AmountIn,
		AmountOut:       rt.AmountOut,
		MinimumReceived: rt.MinimumReceived(res.SlippageBps),
		Price:           price(rt),
		TotalFee:        rt.TotalFee(),
		Route:           rt.String(),
		Hops:            make([]hopView, len(rt.Hops)),
	}
	for i, h := range rt.Hops {
		v.Hops[i] = hopView{
			Vault:     h.Vault.ID(),
			Opcode:    h.Opcode.Hex(),
			Operation: h.Opcode.Operation().String(),
			TokenIn:   h.TokenIn.ID,
			TokenOut:  h.TokenOut.ID,
			AmountIn:  h.Quote.AmountIn,
			AmountOut: h.Quote.AmountOut,
			Fee:       h.Quote.Fee,
		}
	}
	return v
}

// price is the realised rate in whole units of the output token per whole
// unit of the input token.
func price(rt *router.Route) decimal.Decimal {
	in := types.ToDecimal(rt.AmountIn, rt.TokenIn().Decimals)
	if in.IsZero() {
		return decimal.Zero
	}
	return types.ToDecimal(rt.AmountOut, rt.TokenOut().Decimals).DivRound(in, 8)
}

func printRoute(w io.Writer, res *processor.Result) {
	rt := res.Route
	from, to := rt.TokenIn(), rt.TokenOut()

	fmt.Fprintf(w, "Route: %s\n", rt)
	fmt.Fprintf(w, "  Amount In:        %s %s\n", from.FormatAmount(rt.AmountIn), from)
	fmt.Fprintf(w, "  Amount Out:       %s %s\n", to.FormatAmount(rt.AmountOut), to)
	fmt.Fprintf(w, "  Minimum Received: %s %s (%d bps slippage)\n", to.FormatAmount(rt.MinimumReceived(res.SlippageBps)), to, res.SlippageBps)
	fmt.Fprintf(w, "  Price:            %s %s per %s\n", price(rt), to, from)
	fmt.Fprintf(w, "  Hops:\n")
	for i, h := range rt.Hops {
		fmt.Fprintf(w, "    %d. %s %s -> %s via %s (%s)\n",
			i+1,
			h.TokenIn.FormatAmount(h.Quote.AmountIn), h.TokenIn,
			h.TokenOut,
			h.Vault.ID(),
			h.Opcode.Operation(),
		)
	}
}
