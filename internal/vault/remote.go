package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// Delta is the raw result of a vault contract's quote call: the amount taken
// in (Dx), the amount paid out (Dy) and the liquidity delta (Dk).
type Delta struct {
	Dx uint64
	Dy uint64
	Dk uint64
}

// Caller performs read-only quote calls against pool contracts on the ledger.
// Implementations own transport, retries and endpoint failover.
type Caller interface {
	Quote(ctx context.Context, contractID string, amount uint64, op opcode.Opcode) (Delta, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, contractID string, amount uint64, op opcode.Opcode) (Delta, error)

// Quote implements Caller.
func (f CallerFunc) Quote(ctx context.Context, contractID string, amount uint64, op opcode.Opcode) (Delta, error) {
	return f(ctx, contractID, amount, op)
}

// RemoteVault delegates quoting to the on-chain pool contract.
type RemoteVault struct {
	id         string
	name       string
	contractID string
	legs       [2]types.Token
	reserves   [2]uint64
	fee        uint32
	caller     Caller
}

// NewRemoteVault creates a vault backed by contractID. Reserves are the last
// known snapshot and only used for display and liquidity stats.
func NewRemoteVault(id, name, contractID string, a, b types.Token, reserveA, reserveB uint64, fee uint32, caller Caller) *RemoteVault {
	if name == "" {
		name = contractID
	}
	return &RemoteVault{
		id:         id,
		name:       name,
		contractID: contractID,
		legs:       [2]types.Token{a, b},
		reserves:   [2]uint64{reserveA, reserveB},
		fee:        fee,
		caller:     caller,
	}
}

func (v *RemoteVault) ID() string           { return v.id }
func (v *RemoteVault) Name() string         { return v.name }
func (v *RemoteVault) ContractID() string   { return v.contractID }
func (v *RemoteVault) Legs() [2]types.Token { return v.legs }
func (v *RemoteVault) Reserves() [2]uint64  { return v.reserves }
func (v *RemoteVault) Fee() uint32          { return v.fee }

// Quote implements Vault.
func (v *RemoteVault) Quote(ctx context.Context, amountIn uint64, op opcode.Opcode) (types.Quote, error) {
	delta, err := v.caller.Quote(ctx, v.contractID, amountIn, op)
	if err != nil {
		return types.Quote{}, fmt.Errorf("vault %s: %w", v.id, err)
	}

	if !op.Operation().IsSwap() {
		return types.Quote{AmountIn: delta.Dx, AmountOut: delta.Dy, MinimumReceived: delta.Dy}, nil
	}

	in, out, _, _ := sides(v, op)
	fee := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), big.NewInt(int64(v.fee)))
	fee.Quo(fee, big.NewInt(FeeDenominator))
	return types.NewQuote(in, out, amountIn, delta.Dy, fee.Uint64()), nil
}
