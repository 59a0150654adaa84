package graph

import (
	"fmt"
	"sort"
)

// ModelGraph holds every node built by one evaluation. Roots lists the
// model nodes in the order they were declared. A graph is treated as
// read-only once evaluation returns it.
type ModelGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"names"`
}

// New returns an empty graph.
func New() *ModelGraph {
	return &ModelGraph{
		Nodes:     map[NodeID]*Node{},
		NameIndex: map[string]NodeID{},
	}
}

// AddNode stores n, replacing any node with the same ID. Named nodes are
// indexed by name; duplicate names are left for ValidateAll to report.
func (g *ModelGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot appends id to the root list.
func (g *ModelGraph) AddRoot(id NodeID) { g.Roots = append(g.Roots, id) }

// Get returns the node with the given ID, or nil.
func (g *ModelGraph) Get(id NodeID) *Node { return g.Nodes[id] }

// Lookup returns the node registered under name, or nil.
func (g *ModelGraph) Lookup(name string) *Node {
	if id, ok := g.NameIndex[name]; ok {
		return g.Nodes[id]
	}
	return nil
}

// MustLookup is Lookup for names known to exist.
func (g *ModelGraph) MustLookup(name string) *Node {
	if n := g.Lookup(name); n != nil {
		return n
	}
	panic(fmt.Sprintf("graph: no node named %q", name))
}

// Models returns the model roots in declaration order. Roots that are
// missing or not models are skipped.
func (g *ModelGraph) Models() []*Node {
	out := make([]*Node, 0, len(g.Roots))
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil && n.Kind == NodeModel {
			out = append(out, n)
		}
	}
	return out
}

// OfKind returns every node of the given kind ordered by ID.
func (g *ModelGraph) OfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Children resolves n's child IDs in order, dropping dangling ones.
func (g *ModelGraph) Children(n *Node) []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		if c := g.Nodes[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *ModelGraph) NodeCount() int { return len(g.Nodes) }
