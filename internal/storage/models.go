package storage

import (
	"time"

	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/types"
)

type TokenModel struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	Symbol    string    `json:"symbol" bson:"symbol" db:"symbol"`
	Name      string    `json:"name" bson:"name" db:"name"`
	Decimals  uint8     `json:"decimals" bson:"decimals" db:"decimals"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty" db:"image"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

type VaultModel struct {
	ID         string    `json:"id" bson:"_id" db:"id"`
	Name       string    `json:"name" bson:"name" db:"name"`
	Kind       string    `json:"kind" bson:"kind" db:"kind"`
	ContractID string    `json:"contract_id,omitempty" bson:"contract_id,omitempty" db:"contract_id"`
	TokenA     string    `json:"token_a" bson:"token_a" db:"token_a"`
	TokenB     string    `json:"token_b" bson:"token_b" db:"token_b"`
	ReserveA   uint64    `json:"reserve_a" bson:"reserve_a" db:"reserve_a"`
	ReserveB   uint64    `json:"reserve_b" bson:"reserve_b" db:"reserve_b"`
	Fee        uint32    `json:"fee" bson:"fee" db:"fee"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// RouteModel is one entry of the route journal.
type RouteModel struct {
	ID              string    `json:"id" bson:"_id" db:"id"`
	QueryID         string    `json:"query_id,omitempty" bson:"query_id,omitempty" db:"query_id"`
	TokenIn         string    `json:"token_in" bson:"token_in" db:"token_in"`
	TokenOut        string    `json:"token_out" bson:"token_out" db:"token_out"`
	AmountIn        uint64    `json:"amount_in" bson:"amount_in" db:"amount_in"`
	AmountOut       uint64    `json:"amount_out" bson:"amount_out" db:"amount_out"`
	MinimumReceived uint64    `json:"minimum_received" bson:"minimum_received" db:"minimum_received"`
	Hops            int       `json:"hops" bson:"hops" db:"hops"`
	VaultIDs        []string  `json:"vault_ids" bson:"vault_ids" db:"vault_ids"`
	Opcodes         []string  `json:"opcodes" bson:"opcodes" db:"opcodes"`
	Path            string    `json:"path" bson:"path" db:"path"`
	Strategy        string    `json:"strategy" bson:"strategy" db:"strategy"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

func NewTokenModel(t types.Token) *TokenModel {
	return &TokenModel{
		ID:        t.ID,
		Symbol:    t.Symbol,
		Name:      t.Name,
		Decimals:  t.Decimals,
		Image:     t.Image,
		UpdatedAt: time.Now().UTC(),
	}
}

func (m *TokenModel) Token() types.Token {
	return types.Token{
		ID:       m.ID,
		Symbol:   m.Symbol,
		Name:     m.Name,
		Decimals: m.Decimals,
		Image:    m.Image,
	}
}

// NewVaultModel snapshots a vault descriptor.
func NewVaultModel(d vault.Descriptor) *VaultModel {
	now := time.Now().UTC()
	return &VaultModel{
		ID:         d.ID,
		Name:       d.Name,
		Kind:       string(d.Kind),
		ContractID: d.ContractID,
		TokenA:     d.TokenA,
		TokenB:     d.TokenB,
		ReserveA:   d.ReserveA,
		ReserveB:   d.ReserveB,
		Fee:        d.Fee,
		UpdatedAt:  now,
		CreatedAt:  now,
	}
}

func (m *VaultModel) Descriptor() vault.Descriptor {
	return vault.Descriptor{
		ID:         m.ID,
		Name:       m.Name,
		Kind:       vault.Kind(m.Kind),
		ContractID: m.ContractID,
		TokenA:     m.TokenA,
		TokenB:     m.TokenB,
		ReserveA:   m.ReserveA,
		ReserveB:   m.ReserveB,
		Fee:        m.Fee,
	}
}
