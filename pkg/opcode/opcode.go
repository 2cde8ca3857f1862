// Package opcode encodes the fixed 16-byte instruction buffer a vault consumes
// to know which operation is being priced or executed.
//
// Layout:
//
//	byte 0      operation
//	byte 1      swap type
//	byte 2      fee type
//	byte 3      liquidity type
//	bytes 4-15  reserved, zero
package opcode

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	rerrors "github.com/lugondev/go-dexterity/internal/errors"
)

// Size is the length of an encoded opcode.
const Size = 16

const (
	offsetOperation     = 0
	offsetSwapType      = 1
	offsetFeeType       = 2
	offsetLiquidityType = 3
)

// Operation is the value of byte 0.
type Operation byte

const (
	SwapAToB        Operation = 0x00
	SwapBToA        Operation = 0x01
	AddLiquidity    Operation = 0x02
	RemoveLiquidity Operation = 0x03
	LookupReserves  Operation = 0x04
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case SwapAToB:
		return "SWAP_A_TO_B"
	case SwapBToA:
		return "SWAP_B_TO_A"
	case AddLiquidity:
		return "ADD_LIQUIDITY"
	case RemoveLiquidity:
		return "REMOVE_LIQUIDITY"
	case LookupReserves:
		return "LOOKUP_RESERVES"
	default:
		return "UNKNOWN"
	}
}

// IsSwap reports whether the operation is one of the two swap directions.
func (o Operation) IsSwap() bool {
	return o == SwapAToB || o == SwapBToA
}

// ParseOperation resolves an operation by name (case-insensitive, with or
// without underscores).
func ParseOperation(name string) (Operation, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(name, "-", "_"), " ", "_"))
	for _, op := range []Operation{SwapAToB, SwapBToA, AddLiquidity, RemoveLiquidity, LookupReserves} {
		if op.String() == key || strings.ReplaceAll(op.String(), "_", "") == key {
			return op, true
		}
	}
	return 0, false
}

// Params are the sub-parameters stored after the operation byte. Zero means default.
type Params struct {
	SwapType      byte
	FeeType       byte
	LiquidityType byte
}

// Opcode is the encoded instruction buffer. The zero value is SWAP_A_TO_B with
// default parameters.
type Opcode [Size]byte

// Encode builds an opcode for op. At most one Params value is used.
func Encode(op Operation, params ...Params) Opcode {
	var o Opcode
	o[offsetOperation] = byte(op)
	if len(params) > 0 {
		p := params[0]
		o[offsetSwapType] = p.SwapType
		o[offsetFeeType] = p.FeeType
		o[offsetLiquidityType] = p.LiquidityType
	}
	return o
}

// Swap returns the swap opcode for the given direction.
func Swap(aToB bool) Opcode {
	if aToB {
		return Encode(SwapAToB)
	}
	return Encode(SwapBToA)
}

// Decode copies buf into an Opcode. buf must be exactly Size bytes.
func Decode(buf []byte) (Opcode, error) {
	var o Opcode
	if len(buf) != Size {
		return o, rerrors.InvalidOpcode("opcode must be 16 bytes", nil).
			WithDetails(map[string]any{"length": len(buf)})
	}
	copy(o[:], buf)
	return o, nil
}

// FromHex decodes a hex string with or without the 0x prefix.
func FromHex(s string) (Opcode, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	buf, err := hexutil.Decode(strings.ToLower(s[:2]) + s[2:])
	if err != nil {
		return Opcode{}, rerrors.InvalidOpcode("invalid opcode hex", err)
	}
	return Decode(buf)
}

// Operation returns byte 0.
func (o Opcode) Operation() Operation {
	return Operation(o[offsetOperation])
}

// Params returns the sub-parameters.
func (o Opcode) Params() Params {
	return Params{
		SwapType:      o[offsetSwapType],
		FeeType:       o[offsetFeeType],
		LiquidityType: o[offsetLiquidityType],
	}
}

// Bytes returns a copy of the buffer.
func (o Opcode) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, o[:])
	return b
}

// Hex returns the 0x-prefixed lowercase hex encoding, the form a Clarity
// (buff 16) literal takes.
func (o Opcode) Hex() string {
	return hexutil.Encode(o[:])
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	return o.Operation().String() + "(" + o.Hex() + ")"
}
