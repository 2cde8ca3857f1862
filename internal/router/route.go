package router

import (
	"fmt"
	"strings"

	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// Hop is one priced conversion through a single vault.
type Hop struct {
	Vault    vault.Vault
	Opcode   opcode.Opcode
	TokenIn  types.Token
	TokenOut types.Token
	Quote    types.Quote
}

// Route is a priced path. Hops chain strictly: the first hop takes AmountIn
// and every later hop takes the output of the one before it.
type Route struct {
	Path      graph.Path
	Hops      []Hop
	AmountIn  uint64
	AmountOut uint64
}

// VaultIDs returns the vault used at each hop.
func (r *Route) VaultIDs() []string {
	ids := make([]string, len(r.Hops))
	for i, h := range r.Hops {
		ids[i] = h.Vault.ID()
	}
	return ids
}

// Opcodes returns the hex opcode of each hop.
func (r *Route) Opcodes() []string {
	ops := make([]string, len(r.Hops))
	for i, h := range r.Hops {
		ops[i] = h.Opcode.Hex()
	}
	return ops
}

// TokenIn returns the source token.
func (r *Route) TokenIn() types.Token {
	if len(r.Path.Tokens) == 0 {
		return types.Token{}
	}
	return r.Path.Tokens[0]
}

// TokenOut returns the target token.
func (r *Route) TokenOut() types.Token {
	if len(r.Path.Tokens) == 0 {
		return types.Token{}
	}
	return r.Path.Tokens[len(r.Path.Tokens)-1]
}

// TotalFee sums the fees charged by every hop, each in its own input token.
func (r *Route) TotalFee() uint64 {
	var total uint64
	for _, h := range r.Hops {
		total += h.Quote.Fee
	}
	return total
}

// MinimumReceived applies a slippage tolerance in basis points to AmountOut.
func (r *Route) MinimumReceived(slippageBps uint32) uint64 {
	return types.ApplySlippage(r.AmountOut, slippageBps)
}

// String renders the route as "STX -[vault]-> CHA".
func (r *Route) String() string {
	if len(r.Hops) == 0 {
		return r.Path.String()
	}
	var sb strings.Builder
	sb.WriteString(r.Hops[0].TokenIn.String())
	for _, h := range r.Hops {
		fmt.Fprintf(&sb, " -[%s]-> %s", h.Vault.ID(), h.TokenOut)
	}
	return sb.String()
}

// Validate checks the chaining invariant.
func (r *Route) Validate() error {
	if len(r.Hops) != r.Path.Hops() {
		return fmt.Errorf("route has %d hops for a %d hop path", len(r.Hops), r.Path.Hops())
	}
	amount := r.AmountIn
	for i, h := range r.Hops {
		if h.Quote.AmountIn != amount {
			return fmt.Errorf("hop %d takes %d, expected %d", i, h.Quote.AmountIn, amount)
		}
		amount = h.Quote.AmountOut
	}
	if amount != r.AmountOut {
		return fmt.Errorf("route pays %d, last hop pays %d", r.AmountOut, amount)
	}
	return nil
}
