package layout

import (
	"math"

	"github.com/matzehuels/phylonet/pkg/tree"
)

// horizontal places an internal node from its already placed children.
type horizontal interface {
	x(b *builder, n *tree.Node) float64
}

// vertical maps a node to its y coordinate.
type vertical interface {
	y(n *tree.Node) float64
}

func horizontalFor(m Mode) horizontal {
	if m == ModeTransmission {
		return firstChild{}
	}
	return meanOfChildren{}
}

// verticalFor scales by time unless the mode is a cladogram or branch
// lengths are incomplete.
func verticalFor(t *tree.Tree, s Style, recomb map[string]tree.RecombEdge) vertical {
	if s.Mode == ModeCladogram || !t.IsTimeTree() {
		return newRankScale(t, recomb)
	}
	return newTimeScale(t, s)
}

type meanOfChildren struct{}

func (meanOfChildren) x(b *builder, n *tree.Node) float64 {
	var sum float64
	k := 0
	for _, c := range n.Children {
		if b.placed(c) {
			sum += b.x[c]
			k++
		}
	}
	if k == 0 {
		return b.x[n.Children[0]]
	}
	return sum / float64(k)
}

// firstChild draws a transmission chain: each node sits above the first
// lineage leaving it.
type firstChild struct{}

func (firstChild) x(b *builder, n *tree.Node) float64 {
	for _, c := range n.Children {
		if b.placed(c) {
			return b.x[c]
		}
	}
	return b.x[n.Children[0]]
}

// timeScale maps heights linearly or logarithmically onto [0,1]. The top of
// the range is the root plus its branch, or a stub of 1% of the root height.
type timeScale struct {
	total float64
	lso   float64
	log   bool
}

const rootStubFraction = 0.01

func newTimeScale(t *tree.Tree, s Style) timeScale {
	root := t.Root()
	total := root.Height
	if root.HasBranchLength() {
		total += root.BranchLength
	} else {
		total += rootStubFraction * root.Height
	}
	if !(total > 0) {
		total = 1
	}
	return timeScale{total: total, lso: s.LogScaleRelOffset * total, log: s.LogScale}
}

func (s timeScale) y(n *tree.Node) float64 {
	if !s.log {
		return n.Height / s.total
	}
	return (math.Log(n.Height+s.lso) - math.Log(s.lso)) /
		(math.Log(s.total+s.lso) - math.Log(s.lso))
}

// rankScale places leaves at rank 0 and every internal node one above its
// highest child. A destination leaf is ranked with its source, so its parent
// always sits above the source. Reticulation sources sharing a rank are then
// spread by fractional nudges so they never coincide.
type rankScale struct {
	ranks []float64
	max   float64
}

func newRankScale(t *tree.Tree, recomb map[string]tree.RecombEdge) rankScale {
	source := make(map[int]int, len(recomb))
	for _, e := range recomb {
		source[e.Dest] = e.Source
	}
	ranks := make([]float64, t.Len())
	ranked := make([]bool, t.Len())
	// Terminates because parent and reticulation edges form a DAG.
	var rank func(id int) float64
	rank = func(id int) float64 {
		if ranked[id] {
			return ranks[id]
		}
		var r float64
		if src, ok := source[id]; ok {
			r = rank(src)
		} else if n := t.Node(id); !n.IsLeaf() {
			var top float64
			for _, c := range n.Children {
				top = math.Max(top, rank(c))
			}
			r = 1 + top
		}
		ranks[id], ranked[id] = r, true
		return r
	}
	nodes := t.Nodes()
	for _, n := range nodes {
		rank(n.ID)
	}

	var shared []float64
	sources := make(map[float64][]int)
	for _, n := range nodes {
		if n.IsRoot() || !t.IsRecombSource(n.ID) {
			continue
		}
		r := ranks[n.ID]
		if _, ok := sources[r]; !ok {
			shared = append(shared, r)
		}
		sources[r] = append(sources[r], n.ID)
	}
	for _, r := range shared {
		ids := sources[r]
		for i, id := range ids {
			ranks[id] = r + float64(i+1)/float64(len(ids)+1)
		}
	}
	for _, e := range recomb {
		ranks[e.Dest] = ranks[e.Source]
	}

	var top float64
	for _, r := range ranks {
		top = math.Max(top, r)
	}
	if top == 0 {
		top = 1
	}
	return rankScale{ranks: ranks, max: top}
}

func (s rankScale) y(n *tree.Node) float64 { return s.ranks[n.ID] / s.max }
