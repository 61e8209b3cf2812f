package tree

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/phylonet/pkg/errors"
)

// RecombEdge is a reticulation pair. Source is the internal node where the
// reticulate lineage joins; Dest is the leaf placed below the other parent.
type RecombEdge struct {
	Source int
	Dest   int
}

// RecombEdgeMap returns the reticulation pairs keyed by hybrid ID. Each ID
// must be shared by exactly two nodes. When both are leaves, the first in
// preorder is the source. Two internal nodes sharing an ID is an error.
func (t *Tree) RecombEdgeMap() (map[string]RecombEdge, error) {
	if !t.recombValid {
		t.recomb, t.recombErr = t.buildRecombEdgeMap()
		t.recombValid = true
	}
	return t.recomb, t.recombErr
}

// HybridIDs returns the reticulation pair IDs in sorted order. It is empty
// when the pairs are invalid.
func (t *Tree) HybridIDs() []string {
	m, err := t.RecombEdgeMap()
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}

// IsRecombDest reports whether id is the destination leaf of a pair.
func (t *Tree) IsRecombDest(id int) bool {
	return t.destSet()[id]
}

// IsRecombSource reports whether id is the source node of a pair.
func (t *Tree) IsRecombSource(id int) bool {
	n := t.Node(id)
	if n == nil || !n.IsHybrid() {
		return false
	}
	m, err := t.RecombEdgeMap()
	if err != nil {
		return false
	}
	return m[n.HybridID].Source == id
}

func (t *Tree) destSet() map[int]bool {
	m, err := t.RecombEdgeMap()
	if err != nil || len(m) == 0 {
		return nil
	}
	dest := make(map[int]bool, len(m))
	for _, e := range m {
		dest[e.Dest] = true
	}
	return dest
}

func (t *Tree) buildRecombEdgeMap() (map[string]RecombEdge, error) {
	groups := make(map[string][]int)
	var ids []string
	for _, id := range t.preorderIDs() {
		n := t.nodes[id]
		if !n.IsHybrid() {
			continue
		}
		if _, ok := groups[n.HybridID]; !ok {
			ids = append(ids, n.HybridID)
		}
		groups[n.HybridID] = append(groups[n.HybridID], id)
	}

	m := make(map[string]RecombEdge, len(groups))
	for _, hid := range ids {
		g := groups[hid]
		if len(g) != 2 {
			return nil, errors.New(errors.ErrCodeSemantic,
				"hybrid nodes must come in pairs: #%s appears %d times", hid, len(g))
		}
		a, b := t.nodes[g[0]], t.nodes[g[1]]
		switch {
		case !a.IsLeaf() && !b.IsLeaf():
			return nil, errors.New(errors.ErrCodeSemantic,
				"hybrid pair #%s has no leaf node", hid)
		case a.IsLeaf() && !b.IsLeaf():
			a, b = b, a
		}
		m[hid] = RecombEdge{Source: a.ID, Dest: b.ID}
	}
	return m, nil
}

// checkAcyclic verifies that tree edges plus reticulate edges (destination
// parent to source) still form a DAG.
func (t *Tree) checkAcyclic() error {
	m, err := t.RecombEdgeMap()
	if err != nil || len(m) == 0 {
		return err
	}

	g := simple.NewDirectedGraph()
	for _, n := range t.nodes {
		g.AddNode(simple.Node(n.ID))
	}
	for _, n := range t.nodes {
		for _, c := range n.Children {
			g.SetEdge(g.NewEdge(simple.Node(n.ID), simple.Node(c)))
		}
	}
	for _, hid := range slices.Sorted(maps.Keys(m)) {
		e := m[hid]
		pd := t.nodes[e.Dest].Parent
		if pd == NoParent {
			continue
		}
		if pd == e.Source {
			return errors.New(errors.ErrCodeSemantic, "hybrid pair #%s joins a node to itself", hid)
		}
		g.SetEdge(g.NewEdge(simple.Node(pd), simple.Node(e.Source)))
	}
	if _, err := topo.Sort(g); err != nil {
		return errors.Wrap(errors.ErrCodeSemantic, err, "reticulate edges form a cycle")
	}
	return nil
}
