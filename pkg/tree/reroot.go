package tree

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/phylonet/pkg/errors"
)

// Reroot places a new root halfway along the edge above edgeBase. The path
// from edgeBase to the old root is reversed, a single-child old root is
// spliced out, heights are recomputed and IDs are reassigned in the new
// preorder.
//
// Reticulation pairs are re-oriented afterwards: when a source ends up older
// than its destination's parent, the destination leaf moves below the source
// and the two swap roles.
//
// Rerooting above the root or above a destination leaf is an
// INVALID_OPERATION error, as is a swap whose new source already carries
// another pair's hybrid ID. On error the tree is left unchanged.
func (t *Tree) Reroot(edgeBase int) error {
	base := t.Node(edgeBase)
	if base == nil {
		return errors.New(errors.ErrCodeNotFound, "node %d does not exist", edgeBase)
	}
	if base.IsRoot() {
		return errors.New(errors.ErrCodeInvalidOperation, "cannot reroot above the root node")
	}
	m, err := t.RecombEdgeMap()
	if err != nil {
		return err
	}
	if t.IsRecombDest(edgeBase) {
		return errors.New(errors.ErrCodeInvalidOperation, "cannot reroot on a reticulate edge (#%s)", base.HybridID)
	}

	work := t.Copy()
	if err := work.reroot(edgeBase, m); err != nil {
		return err
	}
	if _, err := work.RecombEdgeMap(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "reroot at node %d left inconsistent reticulations", edgeBase)
	}
	*t = *work
	return nil
}

func (t *Tree) reroot(edgeBase int, m map[string]RecombEdge) error {
	base := t.nodes[edgeBase]

	// Node pointers survive renumbering; IDs do not.
	type pair struct{ src, dst *Node }
	pairs := make(map[string]pair, len(m))
	for hid, e := range m {
		pairs[hid] = pair{t.nodes[e.Source], t.nodes[e.Dest]}
	}

	oldRoot := t.Root()
	newRoot := newNode(len(t.nodes), NoParent)
	t.nodes = append(t.nodes, newRoot)

	next := base.Parent
	t.detach(base)
	t.attach(newRoot, base)
	if base.HasBranchLength() {
		base.BranchLength /= 2
	}
	bl := base.BranchLength
	prev := newRoot
	for id := next; id != NoParent; {
		n := t.nodes[id]
		id = n.Parent
		t.detach(n)
		t.attach(prev, n)
		n.BranchLength, bl = bl, n.BranchLength
		prev = n
	}
	t.root = newRoot.ID

	if !oldRoot.IsHybrid() {
		switch len(oldRoot.Children) {
		case 0:
			t.detach(oldRoot)
		case 1:
			t.splice(oldRoot)
		}
	}

	t.renumber()
	t.ComputeHeights()

	swapped := false
	for _, hid := range slices.Sorted(maps.Keys(pairs)) {
		p := pairs[hid]
		destParent := t.nodes[p.dst.Parent]
		if math.IsNaN(p.src.Height) || math.IsNaN(destParent.Height) {
			continue
		}
		if p.src.Height > destParent.Height {
			if destParent.IsHybrid() {
				return errors.New(errors.ErrCodeInvalidOperation,
					"rerooting at node %d would move #%s onto a node already carrying #%s", edgeBase, hid, destParent.HybridID)
			}
			t.detach(p.dst)
			t.attach(p.src, p.dst)
			destParent.HybridID, p.src.HybridID = hid, ""
			p.dst.Height = destParent.Height
			p.dst.BranchLength = p.src.Height - destParent.Height
			swapped = true
			continue
		}
		p.dst.Height = p.src.Height
		p.dst.BranchLength = destParent.Height - p.src.Height
	}
	if swapped {
		t.renumber()
	}
	t.invalidate()
	return nil
}

// splice replaces a single-child node by its child, summing the two edges.
func (t *Tree) splice(n *Node) {
	child := t.nodes[n.Children[0]]
	parent := t.nodes[n.Parent]
	parent.Children[slices.Index(parent.Children, n.ID)] = child.ID
	child.Parent = parent.ID
	switch {
	case !child.HasBranchLength():
		child.BranchLength = n.BranchLength
	case n.HasBranchLength():
		child.BranchLength += n.BranchLength
	}
	n.Children = nil
	n.Parent = NoParent
}
