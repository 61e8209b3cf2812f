package tree

import (
	"cmp"
	"slices"
)

// SortNodes reorders every child list by subtree leaf count, ascending or
// descending. The sort is stable, so ties keep their input order.
func (t *Tree) SortNodes(descending bool) {
	counts := t.leafCounts()
	for _, n := range t.nodes {
		slices.SortStableFunc(n.Children, func(a, b int) int {
			if descending {
				return cmp.Compare(counts[b], counts[a])
			}
			return cmp.Compare(counts[a], counts[b])
		})
	}
	t.invalidate()
}

// IsLeftOf reports whether a is drawn to the left of b: their root paths
// diverge at some node and a's branch comes first in its child list. It is
// false when either node is an ancestor of the other.
func (t *Tree) IsLeftOf(a, b int) bool {
	pa, pb := t.ancestry(a), t.ancestry(b)
	for i := 1; i < len(pa) && i < len(pb); i++ {
		if pa[i] == pb[i] {
			continue
		}
		ch := t.nodes[pa[i-1]].Children
		return slices.Index(ch, pa[i]) < slices.Index(ch, pb[i])
	}
	return false
}

// MinimizeHybridSeparation moves each destination leaf to the end of its
// parent's child list that faces the matching source node.
func (t *Tree) MinimizeHybridSeparation() error {
	m, err := t.RecombEdgeMap()
	if err != nil {
		return err
	}
	for _, hid := range t.HybridIDs() {
		e := m[hid]
		parent := t.nodes[t.nodes[e.Dest].Parent]
		parent.Children = slices.DeleteFunc(parent.Children, func(c int) bool { return c == e.Dest })
		if t.facesLeft(e.Source, parent.ID) {
			parent.Children = slices.Insert(parent.Children, 0, e.Dest)
		} else {
			parent.Children = append(parent.Children, e.Dest)
		}
		t.invalidate()
	}
	return nil
}

// facesLeft reports whether source lies towards the left edge of the subtree
// below destParent. When destParent is an ancestor of source, the branch
// leading to source decides by its position among the children.
func (t *Tree) facesLeft(source, destParent int) bool {
	ps, pd := t.ancestry(source), t.ancestry(destParent)
	if len(ps) > len(pd) && ps[len(pd)-1] == destParent {
		ch := t.nodes[destParent].Children
		return slices.Index(ch, ps[len(pd)]) < len(ch)/2
	}
	return t.IsLeftOf(source, destParent)
}
