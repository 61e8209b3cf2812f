package layout

import (
	"github.com/matzehuels/phylonet/pkg/tree"
)

// slot is a leaf group before normalization.
type slot struct {
	node      int
	width     float64
	collapsed bool
}

// leafSlots walks the visible tree left to right and returns one slot per
// ordinary leaf and per collapsed clade. Destination leaves that escaped a
// collapsed clade are placed beside it, on the side facing their source.
// In inline mode destination leaves take no slot at all.
func (b *builder) leafSlots() []slot {
	var slots []slot
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		switch {
		case n.Collapsed && !n.IsLeaf():
			var before, after []slot
			if !b.style.InlineRecomb {
				for _, d := range b.escaped[n.ID] {
					s := slot{node: d, width: 1}
					if b.t.IsLeftOf(b.source[d], n.ID) {
						before = append(before, s)
					} else {
						after = append(after, s)
					}
				}
			}
			slots = append(slots, before...)
			slots = append(slots, slot{node: n.ID, width: b.cladeWidth(n), collapsed: true})
			slots = append(slots, after...)
		case n.IsLeaf():
			if b.style.InlineRecomb && b.isDest(n.ID) {
				return
			}
			slots = append(slots, slot{node: n.ID, width: 1})
		default:
			for _, c := range n.Children {
				walk(b.t.Node(c))
			}
		}
	}
	walk(b.t.Root())
	return slots
}

// cladeWidth is 1 for a cartoon clade, otherwise the number of leaves it
// bundles.
func (b *builder) cladeWidth(n *tree.Node) float64 {
	if n.Cartoon {
		return 1
	}
	count := 0
	for _, l := range b.t.Leaves() {
		if b.rep[l.ID] == n.ID && b.hidden[l.ID] && !b.isDest(l.ID) {
			count++
		}
	}
	return float64(max(count, 1))
}

// placeHorizontal spaces the leaf groups evenly, normalizes them into [0,1]
// and then places internal nodes bottom-up with h.
func (b *builder) placeHorizontal(h horizontal) {
	slots := b.leafSlots()

	var total float64
	starts := make([]float64, len(slots))
	for i, s := range slots {
		starts[i] = total
		total += s.width
	}
	span := total - 1
	norm := func(v float64) float64 {
		if span <= 0 {
			return 0.5
		}
		return v / span
	}

	b.groups = make([]Group, len(slots))
	for i, s := range slots {
		left, right := starts[i], starts[i]+s.width-1
		b.x[s.node] = norm((left + right) / 2)
		b.groups[i] = Group{Node: s.node, Left: norm(left), Right: norm(right), Collapsed: s.collapsed}
		if s.collapsed {
			b.wedges[s.node] = &Wedge{LeftX: norm(left), RightX: norm(right)}
		}
	}

	nodes := b.t.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.IsLeaf() || n.Collapsed || !b.visible(n.ID) {
			continue
		}
		b.x[n.ID] = h.x(b, n)
	}

	if b.style.InlineRecomb {
		for d, src := range b.source {
			b.x[d] = b.x[b.rep[src]]
		}
	}
}

// placed reports whether child c counts towards its parent's position.
func (b *builder) placed(c int) bool {
	return !(b.style.InlineRecomb && b.isDest(c))
}
