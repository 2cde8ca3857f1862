// Package vault defines the Vault capability the router prices routes through,
// together with the vault kinds the router ships with.
//
// A vault is a two-asset liquidity source. The router never computes pricing
// curves itself; it asks each vault to quote an amount for an opcode. Vault
// kinds differ only in where that quote comes from:
//
//   - ConstantProductVault computes an x*y=k quote from a reserve snapshot.
//   - RemoteVault asks the on-chain pool contract through a Caller.
//   - RateLimited wraps any vault and throttles its quote calls.
package vault

import (
	"context"
	"fmt"

	"github.com/lugondev/go-dexterity/pkg/opcode"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// FeeDenominator is the fixed-point base of Vault.Fee (parts per million).
const FeeDenominator = 1_000_000

// Kind names a vault implementation.
type Kind string

const (
	KindConstantProduct Kind = "constant-product"
	KindRemote          Kind = "remote"
)

// Vault is a two-asset pool that can price conversions between its legs.
// Quote must be a side-effect free read and safe for concurrent use.
type Vault interface {
	// ID is the unique vault identifier, usually its contract principal.
	ID() string

	// Name is a display name.
	Name() string

	// Legs returns the two assets in contract order (A, B).
	Legs() [2]types.Token

	// Reserves returns the reserve of each leg in the same order as Legs.
	Reserves() [2]uint64

	// Fee returns the swap fee in parts per million.
	Fee() uint32

	// Quote prices amountIn for the given opcode.
	Quote(ctx context.Context, amountIn uint64, op opcode.Opcode) (types.Quote, error)
}

// Descriptor is the serializable description of a vault, shared by the YAML
// manifest and the storage layer.
type Descriptor struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Kind       Kind   `yaml:"kind" json:"kind"`
	ContractID string `yaml:"contract_id,omitempty" json:"contractId,omitempty"`
	TokenA     string `yaml:"token_a" json:"tokenA"`
	TokenB     string `yaml:"token_b" json:"tokenB"`
	ReserveA   uint64 `yaml:"reserve_a" json:"reserveA"`
	ReserveB   uint64 `yaml:"reserve_b" json:"reserveB"`
	Fee        uint32 `yaml:"fee" json:"fee"`
}

// Describe returns the descriptor of v. Wrappers are unwrapped first.
func Describe(v Vault) Descriptor {
	legs := v.Legs()
	reserves := v.Reserves()
	d := Descriptor{
		ID:       v.ID(),
		Name:     v.Name(),
		Kind:     KindConstantProduct,
		TokenA:   legs[0].ID,
		TokenB:   legs[1].ID,
		ReserveA: reserves[0],
		ReserveB: reserves[1],
		Fee:      v.Fee(),
	}
	for {
		u, ok := v.(interface{ Unwrap() Vault })
		if !ok {
			break
		}
		v = u.Unwrap()
	}
	if r, ok := v.(*RemoteVault); ok {
		d.Kind = KindRemote
		d.ContractID = r.contractID
	}
	return d
}

// New builds a vault from a descriptor. tokens resolves token ids; caller is
// required for remote vaults only.
func New(d Descriptor, tokens map[string]types.Token, caller Caller) (Vault, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("vault descriptor missing id")
	}
	a, ok := tokens[d.TokenA]
	if !ok {
		return nil, fmt.Errorf("vault %s: unknown token %q", d.ID, d.TokenA)
	}
	b, ok := tokens[d.TokenB]
	if !ok {
		return nil, fmt.Errorf("vault %s: unknown token %q", d.ID, d.TokenB)
	}
	if a.ID == b.ID {
		return nil, fmt.Errorf("vault %s: both legs are %s", d.ID, a.ID)
	}
	if d.Fee >= FeeDenominator {
		return nil, fmt.Errorf("vault %s: fee %d out of range", d.ID, d.Fee)
	}

	switch d.Kind {
	case KindConstantProduct, "":
		return NewConstantProductVault(d.ID, d.Name, a, b, d.ReserveA, d.ReserveB, d.Fee), nil
	case KindRemote:
		if caller == nil {
			return nil, fmt.Errorf("vault %s: remote vault requires a caller", d.ID)
		}
		contractID := d.ContractID
		if contractID == "" {
			contractID = d.ID
		}
		return NewRemoteVault(d.ID, d.Name, contractID, a, b, d.ReserveA, d.ReserveB, d.Fee, caller), nil
	default:
		return nil, fmt.Errorf("vault %s: unknown kind %q", d.ID, d.Kind)
	}
}

// Direction resolves the swap opcode that converts tokenIn through v, and
// whether tokenIn is a leg of v at all.
func Direction(v Vault, tokenInID string) (opcode.Opcode, bool) {
	legs := v.Legs()
	switch tokenInID {
	case legs[0].ID:
		return opcode.Swap(true), true
	case legs[1].ID:
		return opcode.Swap(false), true
	default:
		return opcode.Opcode{}, false
	}
}

// sides returns the (in, out) tokens and reserves for a swap opcode.
func sides(v Vault, op opcode.Opcode) (in, out types.Token, reserveIn, reserveOut uint64) {
	legs := v.Legs()
	reserves := v.Reserves()
	if op.Operation() == opcode.SwapBToA {
		return legs[1], legs[0], reserves[1], reserves[0]
	}
	return legs[0], legs[1], reserves[0], reserves[1]
}
