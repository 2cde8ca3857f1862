package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// ConstantProductVault quotes against a fixed reserve snapshot using the x*y=k
// invariant. It stands in for off-chain or simulated pools.
type ConstantProductVault struct {
	id       string
	name     string
	legs     [2]types.Token
	reserves [2]uint64
	fee      uint32
}

// NewConstantProductVault creates a vault with reserves for a and b and a fee
// in parts per million.
func NewConstantProductVault(id, name string, a, b types.Token, reserveA, reserveB uint64, fee uint32) *ConstantProductVault {
	if name == "" {
		name = a.String() + "-" + b.String()
	}
	return &ConstantProductVault{
		id:       id,
		name:     name,
		legs:     [2]types.Token{a, b},
		reserves: [2]uint64{reserveA, reserveB},
		fee:      fee,
	}
}

func (v *ConstantProductVault) ID() string           { return v.id }
func (v *ConstantProductVault) Name() string         { return v.name }
func (v *ConstantProductVault) Legs() [2]types.Token { return v.legs }
func (v *ConstantProductVault) Reserves() [2]uint64  { return v.reserves }
func (v *ConstantProductVault) Fee() uint32          { return v.fee }

// Quote implements Vault.
func (v *ConstantProductVault) Quote(ctx context.Context, amountIn uint64, op opcode.Opcode) (types.Quote, error) {
	if err := ctx.Err(); err != nil {
		return types.Quote{}, err
	}

	switch op.Operation() {
	case opcode.SwapAToB, opcode.SwapBToA:
		in, out, reserveIn, reserveOut := sides(v, op)
		amountOut, fee := constantProductOut(amountIn, reserveIn, reserveOut, v.fee)
		if amountOut == 0 {
			return types.Quote{}, fmt.Errorf("vault %s: insufficient liquidity for %d %s", v.id, amountIn, in)
		}
		return types.NewQuote(in, out, amountIn, amountOut, fee), nil

	case opcode.LookupReserves:
		return types.Quote{
			AmountIn:        v.reserves[0],
			AmountOut:       v.reserves[1],
			ExpectedPrice:   types.Price(v.reserves[0], v.legs[0].Decimals, v.reserves[1], v.legs[1].Decimals),
			MinimumReceived: v.reserves[1],
		}, nil

	default:
		return types.Quote{}, fmt.Errorf("vault %s: operation %s not supported", v.id, op.Operation())
	}
}

// constantProductOut returns the output of swapping amountIn into a pool with
// the given reserves, and the fee charged on the input.
func constantProductOut(amountIn, reserveIn, reserveOut uint64, feePPM uint32) (out, fee uint64) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, 0
	}
	in := new(big.Int).SetUint64(amountIn)
	feeAmt := new(big.Int).Mul(in, big.NewInt(int64(feePPM)))
	feeAmt.Quo(feeAmt, big.NewInt(FeeDenominator))
	inAfterFee := new(big.Int).Sub(in, feeAmt)

	num := new(big.Int).Mul(inAfterFee, new(big.Int).SetUint64(reserveOut))
	den := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), inAfterFee)
	num.Quo(num, den)
	return num.Uint64(), feeAmt.Uint64()
}
