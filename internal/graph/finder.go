package graph

import (
	"github.com/lugondev/go-dexterity/pkg/types"
)

// Visitor is called once for every edge the path finder follows.
type Visitor func(depth int)

type findOptions struct {
	strategy Strategy
	visit    Visitor
}

// FindOption configures FindAllPaths.
type FindOption func(*findOptions)

// WithStrategy selects the path strategy. The default is StrategyVaultSequence.
func WithStrategy(s Strategy) FindOption {
	return func(o *findOptions) {
		o.strategy = s
	}
}

// WithVisitor registers a callback for explored edges.
func WithVisitor(v Visitor) FindOption {
	return func(o *findOptions) {
		o.visit = v
	}
}

// FindAllPaths enumerates the paths from fromID to toID with at most maxHops
// edges. A vault is never used twice in one path, but a token may be revisited
// (A -> B -> A through two different vaults). A path ends as soon as it
// reaches toID. Results are returned in discovery order; an unknown source
// or maxHops < 1 yields no paths.
func (g *Graph) FindAllPaths(fromID, toID string, maxHops int, opts ...FindOption) []Path {
	o := findOptions{strategy: StrategyVaultSequence}
	for _, opt := range opts {
		opt(&o)
	}

	start, ok := g.nodes[fromID]
	if !ok || maxHops < 1 {
		return []Path{}
	}

	paths := []Path{}
	s := &search{
		g:       g,
		toID:    toID,
		maxHops: maxHops,
		visit:   o.visit,
		emit: func(p Path) {
			paths = append(paths, p)
		},
	}
	s.walk(start, []types.Token{start.Token}, nil, map[string]struct{}{})

	if o.strategy == StrategyAssetSequence {
		return dedupByTokens(paths)
	}
	return paths
}

type search struct {
	g       *Graph
	toID    string
	maxHops int
	visit   Visitor
	emit    func(Path)
}

func (s *search) walk(cur *Node, tokens []types.Token, vaultIDs []string, used map[string]struct{}) {
	if cur.Token.ID == s.toID && len(tokens) >= 2 {
		s.emit(Path{Tokens: tokens, VaultIDs: vaultIDs})
		return
	}
	if len(tokens)-1 >= s.maxHops {
		return
	}

	for _, key := range cur.order {
		if _, seen := used[key.VaultID]; seen {
			continue
		}
		next, ok := s.g.nodes[key.TargetID]
		if !ok {
			continue
		}
		if s.visit != nil {
			s.visit(len(tokens))
		}

		nextUsed := make(map[string]struct{}, len(used)+1)
		for id := range used {
			nextUsed[id] = struct{}{}
		}
		nextUsed[key.VaultID] = struct{}{}

		nextTokens := make([]types.Token, len(tokens), len(tokens)+1)
		copy(nextTokens, tokens)
		nextVaults := make([]string, len(vaultIDs), len(vaultIDs)+1)
		copy(nextVaults, vaultIDs)

		s.walk(next, append(nextTokens, next.Token), append(nextVaults, key.VaultID), nextUsed)
	}
}

// dedupByTokens keeps the first path of every token sequence and drops the
// fixed vault assignment.
func dedupByTokens(paths []Path) []Path {
	seen := make(map[string]struct{}, len(paths))
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		p.VaultIDs = nil
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
