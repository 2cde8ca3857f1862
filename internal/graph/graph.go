// Package graph holds the token graph the router searches: one node per
// token, two directed edges per vault.
package graph

import (
	"github.com/lugondev/go-dexterity/internal/vault"
	"github.com/lugondev/go-dexterity/pkg/types"
)

// EdgeKey identifies an edge within a node. Several vaults may connect the
// same two tokens, so the vault id is part of the key.
type EdgeKey struct {
	TargetID string
	VaultID  string
}

// Edge is one direction through a vault.
type Edge struct {
	Vault  vault.Vault
	Target types.Token
	// Liquidity is the reserve of the target leg. It is only a hint for
	// stats and display; pricing always goes through Vault.Quote.
	Liquidity uint64
}

// Node is a token and its outgoing edges.
type Node struct {
	Token types.Token
	Edges map[EdgeKey]*Edge
	order []EdgeKey
}

func newNode(t types.Token) *Node {
	return &Node{Token: t, Edges: make(map[EdgeKey]*Edge)}
}

func (n *Node) put(e *Edge) {
	key := EdgeKey{TargetID: e.Target.ID, VaultID: e.Vault.ID()}
	if _, ok := n.Edges[key]; !ok {
		n.order = append(n.order, key)
	}
	n.Edges[key] = e
}

// OrderedEdges returns the outgoing edges in the order they were added.
func (n *Node) OrderedEdges() []*Edge {
	out := make([]*Edge, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.Edges[k])
	}
	return out
}

// Stats summarizes a graph.
type Stats struct {
	NodeCount  int `json:"nodeCount"`
	EdgeCount  int `json:"edgeCount"`
	VaultCount int `json:"vaultCount"`
}

// Graph is the token graph. It is not safe for concurrent mutation; the
// router builds a fresh Graph per reload and only reads it afterwards.
type Graph struct {
	nodes         map[string]*Node
	tokenOrder    []string
	vaults        map[string]vault.Vault
	vaultOrder    []string
	vaultsByToken map[string][]vault.Vault
	edgeCount     int
}

// New returns an empty graph.
func New() *Graph {
	g := &Graph{}
	g.reset()
	return g
}

// Build returns a graph loaded with vaults.
func Build(vaults []vault.Vault) *Graph {
	g := New()
	g.LoadVaults(vaults)
	return g
}

func (g *Graph) reset() {
	g.nodes = make(map[string]*Node)
	g.tokenOrder = nil
	g.vaults = make(map[string]vault.Vault)
	g.vaultOrder = nil
	g.vaultsByToken = make(map[string][]vault.Vault)
	g.edgeCount = 0
}

// LoadVaults replaces the whole graph with the given vault set. Nothing from
// a previous load survives. When the same vault id appears more than once the
// last occurrence wins.
func (g *Graph) LoadVaults(vaults []vault.Vault) {
	g.reset()

	last := make(map[string]int, len(vaults))
	for i, v := range vaults {
		last[v.ID()] = i
	}

	for i, v := range vaults {
		if last[v.ID()] != i {
			continue
		}
		legs := v.Legs()
		reserves := v.Reserves()
		a := g.ensureNode(legs[0])
		b := g.ensureNode(legs[1])

		a.put(&Edge{Vault: v, Target: legs[1], Liquidity: reserves[1]})
		b.put(&Edge{Vault: v, Target: legs[0], Liquidity: reserves[0]})
		g.edgeCount += 2

		g.vaults[v.ID()] = v
		g.vaultOrder = append(g.vaultOrder, v.ID())
		g.vaultsByToken[legs[0].ID] = append(g.vaultsByToken[legs[0].ID], v)
		g.vaultsByToken[legs[1].ID] = append(g.vaultsByToken[legs[1].ID], v)
	}
}

func (g *Graph) ensureNode(t types.Token) *Node {
	if n, ok := g.nodes[t.ID]; ok {
		return n
	}
	n := newNode(t)
	g.nodes[t.ID] = n
	g.tokenOrder = append(g.tokenOrder, t.ID)
	return n
}

// Stats returns node, edge and vault counts.
func (g *Graph) Stats() Stats {
	return Stats{
		NodeCount:  len(g.nodes),
		EdgeCount:  g.edgeCount,
		VaultCount: len(g.vaults),
	}
}

// Node returns the node for a token id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Token returns a token by id.
func (g *Graph) Token(id string) (types.Token, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return types.Token{}, false
	}
	return n.Token, true
}

// Tokens returns every token in load order.
func (g *Graph) Tokens() []types.Token {
	out := make([]types.Token, 0, len(g.tokenOrder))
	for _, id := range g.tokenOrder {
		out = append(out, g.nodes[id].Token)
	}
	return out
}

// Vault returns a vault by id.
func (g *Graph) Vault(id string) (vault.Vault, bool) {
	v, ok := g.vaults[id]
	return v, ok
}

// Vaults returns every vault in load order.
func (g *Graph) Vaults() []vault.Vault {
	out := make([]vault.Vault, 0, len(g.vaultOrder))
	for _, id := range g.vaultOrder {
		out = append(out, g.vaults[id])
	}
	return out
}

// VaultsForToken returns the vaults that have id as one of their legs.
func (g *Graph) VaultsForToken(id string) []vault.Vault {
	vs := g.vaultsByToken[id]
	out := make([]vault.Vault, len(vs))
	copy(out, vs)
	return out
}

// EdgesBetween returns every edge from fromID to toID in discovery order.
func (g *Graph) EdgesBetween(fromID, toID string) []*Edge {
	n, ok := g.nodes[fromID]
	if !ok {
		return nil
	}
	var out []*Edge
	for _, k := range n.order {
		if k.TargetID == toID {
			out = append(out, n.Edges[k])
		}
	}
	return out
}
