package graph

import (
	"fmt"
	"strings"

	"github.com/lugondev/go-dexterity/pkg/types"
)

// Strategy selects how parallel vaults are turned into candidate paths.
type Strategy string

const (
	// StrategyVaultSequence emits every distinct vault sequence as its own
	// path. Each path is evaluated end to end through exactly those vaults.
	StrategyVaultSequence Strategy = "vault-sequence"

	// StrategyAssetSequence emits each distinct token sequence once. The
	// evaluator then picks the best of the parallel vaults at every hop.
	StrategyAssetSequence Strategy = "asset-sequence"
)

// ParseStrategy parses a strategy name. The empty string selects the default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyVaultSequence:
		return StrategyVaultSequence, nil
	case StrategyAssetSequence:
		return StrategyAssetSequence, nil
	default:
		return "", fmt.Errorf("unknown path strategy %q", s)
	}
}

// Path is an ordered token sequence from source to target. Under
// StrategyVaultSequence VaultIDs names the vault of each hop; under
// StrategyAssetSequence it is nil.
type Path struct {
	Tokens   []types.Token `json:"tokens"`
	VaultIDs []string      `json:"vaultIds,omitempty"`
}

// Hops returns the number of edges in the path.
func (p Path) Hops() int {
	if len(p.Tokens) == 0 {
		return 0
	}
	return len(p.Tokens) - 1
}

// TokenIDs returns the token ids of the path.
func (p Path) TokenIDs() []string {
	ids := make([]string, len(p.Tokens))
	for i, t := range p.Tokens {
		ids[i] = t.ID
	}
	return ids
}

// Key identifies the path by its token sequence and, when fixed, its vaults.
func (p Path) Key() string {
	key := strings.Join(p.TokenIDs(), ">")
	if len(p.VaultIDs) > 0 {
		key += "|" + strings.Join(p.VaultIDs, ",")
	}
	return key
}

func (p Path) String() string {
	var sb strings.Builder
	for i, t := range p.Tokens {
		if i > 0 {
			if i-1 < len(p.VaultIDs) {
				fmt.Fprintf(&sb, " -[%s]-> ", p.VaultIDs[i-1])
			} else {
				sb.WriteString(" -> ")
			}
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}
