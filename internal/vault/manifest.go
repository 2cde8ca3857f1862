package vault

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lugondev/go-dexterity/pkg/types"
)

// Manifest is a static description of tokens and vaults, usually read from a
// YAML file.
//
//	tokens:
//	  - id: .stx
//	    symbol: STX
//	    decimals: 6
//	vaults:
//	  - id: SP2ZNGJ85ENDY6QRHQ5P2D4FXKGZWCKTB2T0Z55KS.stx-cha
//	    kind: constant-product
//	    token_a: .stx
//	    token_b: SP2ZNGJ85ENDY6QRHQ5P2D4FXKGZWCKTB2T0Z55KS.charisma-token
//	    reserve_a: 1000000000
//	    reserve_b: 950000000
//	    fee: 3000
type Manifest struct {
	Tokens []types.Token `yaml:"tokens"`
	Vaults []Descriptor  `yaml:"vaults"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(b)
}

// ParseManifest parses manifest YAML.
func ParseManifest(b []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// TokenMap indexes the manifest tokens by id.
func (m *Manifest) TokenMap() map[string]types.Token {
	out := make(map[string]types.Token, len(m.Tokens))
	for _, t := range m.Tokens {
		out[t.ID] = t
	}
	return out
}

// Build instantiates every vault in manifest order. caller may be nil when
// the manifest has no remote vaults.
func (m *Manifest) Build(caller Caller) ([]Vault, error) {
	tokens := m.TokenMap()
	out := make([]Vault, 0, len(m.Vaults))
	for _, d := range m.Vaults {
		v, err := New(d, tokens, caller)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
