package tree

import (
	"math"
	"slices"
)

// StripZeroLengthBranches removes non-hybrid leaves sitting at the same height
// as their parent. The parent takes the leaf's label when it has none and
// gains any annotation keys it does not already carry. A leaf is kept when
// both it and its parent are labelled. It returns the number of leaves
// removed.
func (t *Tree) StripZeroLengthBranches() int {
	removed := 0
	for _, id := range slices.Clone(t.preorderIDs()) {
		n := t.nodes[id]
		if n.IsRoot() || !n.IsLeaf() || n.IsHybrid() || !sameHeight(n, t.nodes[n.Parent]) {
			continue
		}
		p := t.nodes[n.Parent]
		if n.Label != "" {
			if p.Label != "" {
				continue
			}
			p.Label = n.Label
		}
		for k, v := range n.Annotation {
			if _, ok := p.Annotation[k]; !ok {
				p.Annotate(k, v)
			}
		}
		t.detach(n)
		removed++
	}
	if removed > 0 {
		t.renumber()
		t.ComputeHeights()
	}
	return removed
}

// CollapseZeroLengthEdges splices out internal, non-root, non-hybrid nodes
// sitting at the same height as their parent, merging their children into
// the parent in place. Collapsed display hints are left untouched. It returns
// the number of nodes removed.
func (t *Tree) CollapseZeroLengthEdges() int {
	removed := 0
	for _, id := range slices.Clone(t.preorderIDs()) {
		n := t.nodes[id]
		if n.IsRoot() || n.IsLeaf() || n.IsHybrid() || n.Collapsed {
			continue
		}
		p := t.nodes[n.Parent]
		if !sameHeight(n, p) {
			continue
		}
		i := slices.Index(p.Children, n.ID)
		p.Children = slices.Replace(p.Children, i, i+1, n.Children...)
		for _, c := range n.Children {
			t.nodes[c].Parent = p.ID
		}
		n.Children = nil
		n.Parent = NoParent
		removed++
	}
	if removed > 0 {
		t.renumber()
		t.ComputeHeights()
	}
	return removed
}

func sameHeight(n, parent *Node) bool {
	return !math.IsNaN(n.Height) && n.Height == parent.Height
}
