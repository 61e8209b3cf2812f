package layout

import (
	"math"

	"github.com/matzehuels/phylonet/pkg/tree"
)

// Layout is the result of [Compute]. Node IDs refer to Tree, the prepared
// working copy, which may differ from the input after collapsing or sorting.
type Layout struct {
	Tree        *tree.Tree
	Mode        Mode
	Style       Style
	Positions   map[int]Position
	Groups      []Group
	RecombEdges []RecombEdge
}

// Position is a node coordinate in the unit square. X runs left to right;
// Y is 0 at the present and grows towards the root.
type Position struct {
	X, Y  float64
	Wedge *Wedge
}

// Wedge is the triangle drawn for a collapsed clade: it spans LeftX to RightX
// at the height of the youngest descendant.
type Wedge struct {
	LeftX   float64
	RightX  float64
	BottomY float64
}

// Tuple returns (x, y), or (x, y, leftX, bottomY, rightX, bottomY) for a
// collapsed clade.
func (p Position) Tuple() []float64 {
	if p.Wedge == nil {
		return []float64{p.X, p.Y}
	}
	w := p.Wedge
	return []float64{p.X, p.Y, w.LeftX, w.BottomY, w.RightX, w.BottomY}
}

// Group is one horizontal slot: an ordinary leaf, a collapsed clade, or a
// destination leaf pulled out of a collapsed clade. Left and Right are
// normalized like X.
type Group struct {
	Node      int
	Left      float64
	Right     float64
	Collapsed bool
}

// RecombEdge is a reticulate edge to draw. Source is the visible node that
// stands for the pair's source, which is the enclosing collapsed clade when
// the source itself is hidden.
type RecombEdge struct {
	HybridID string
	Source   int
	Dest     int
}

// Compute lays out a copy of t. The copy is prepared per style: zero-length
// edges collapsed, children sorted and destination leaves moved towards
// their sources. t itself is not modified.
//
// Trees without complete branch lengths are always placed by rank.
func Compute(t *tree.Tree, style Style) (*Layout, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}

	work := t.Copy()
	if style.CollapseZeroLengthEdges {
		work.CollapseZeroLengthEdges()
	}
	if style.SortNodes {
		work.SortNodes(style.SortNodesDescending)
	}
	if style.MinimizeHybridSeparation {
		if err := work.MinimizeHybridSeparation(); err != nil {
			return nil, err
		}
	}

	b, err := newBuilder(work, style)
	if err != nil {
		return nil, err
	}
	b.placeHorizontal(horizontalFor(style.Mode))
	b.placeVertical(verticalFor(work, style, b.recomb))

	return &Layout{
		Tree:        work,
		Mode:        style.Mode,
		Style:       style,
		Positions:   b.positions(),
		Groups:      b.groups,
		RecombEdges: b.recombEdges(),
	}, nil
}

type builder struct {
	t      *tree.Tree
	style  Style
	recomb map[string]tree.RecombEdge
	source map[int]int // dest leaf -> source node

	hidden  []bool
	rep     []int // visible node standing for each node
	escaped map[int][]int

	groups []Group
	wedges map[int]*Wedge
	x, y   []float64
}

func newBuilder(t *tree.Tree, style Style) (*builder, error) {
	recomb, err := t.RecombEdgeMap()
	if err != nil {
		return nil, err
	}
	b := &builder{
		t:       t,
		style:   style,
		recomb:  recomb,
		source:  make(map[int]int, len(recomb)),
		hidden:  make([]bool, t.Len()),
		rep:     make([]int, t.Len()),
		escaped: make(map[int][]int),
		wedges:  make(map[int]*Wedge),
		x:       make([]float64, t.Len()),
		y:       make([]float64, t.Len()),
	}
	for _, e := range recomb {
		b.source[e.Dest] = e.Source
	}
	b.markHidden()
	return b, nil
}

func (b *builder) isDest(id int) bool {
	_, ok := b.source[id]
	return ok
}

// markHidden hides everything below a collapsed clade. Destination leaves
// whose source lies outside the clade stay visible.
func (b *builder) markHidden() {
	for _, n := range b.t.Nodes() {
		b.rep[n.ID] = n.ID
		if n.IsRoot() {
			continue
		}
		p := b.t.Node(n.Parent)
		switch {
		case b.hidden[p.ID]:
			b.hidden[n.ID] = true
			b.rep[n.ID] = b.rep[p.ID]
		case p.Collapsed && !p.IsLeaf():
			b.hidden[n.ID] = true
			b.rep[n.ID] = p.ID
		}
	}
	for _, n := range b.t.Nodes() {
		src, ok := b.source[n.ID]
		if !ok || !b.hidden[n.ID] || b.rep[src] == b.rep[n.ID] {
			continue
		}
		clade := b.rep[n.ID]
		b.hidden[n.ID] = false
		b.escaped[clade] = append(b.escaped[clade], n.ID)
	}
}

func (b *builder) visible(id int) bool {
	return !b.hidden[id]
}

func (b *builder) positions() map[int]Position {
	out := make(map[int]Position)
	for _, n := range b.t.Nodes() {
		if !b.visible(n.ID) {
			continue
		}
		out[n.ID] = Position{X: b.x[n.ID], Y: b.y[n.ID], Wedge: b.wedges[n.ID]}
	}
	return out
}

// recombEdges lists the visible reticulate edges in hybrid ID order. Pairs
// hidden inside one collapsed clade are dropped.
func (b *builder) recombEdges() []RecombEdge {
	var edges []RecombEdge
	for _, hid := range b.t.HybridIDs() {
		e := b.recomb[hid]
		if !b.visible(e.Dest) {
			continue
		}
		edges = append(edges, RecombEdge{HybridID: hid, Source: b.rep[e.Source], Dest: e.Dest})
	}
	return edges
}

// placeVertical assigns y to every node, keeps detached destination leaves
// below their parents and sets the wedge floors.
func (b *builder) placeVertical(v vertical) {
	for _, n := range b.t.Nodes() {
		b.y[n.ID] = v.y(n)
	}
	if !b.style.InlineRecomb {
		for d := range b.source {
			parent := b.rep[b.t.Node(d).Parent]
			limit := b.y[parent] - b.style.MinRecombEdgeLength
			b.y[d] = math.Max(0, math.Min(b.y[d], limit))
		}
	}
	for id, w := range b.wedges {
		w.BottomY = math.Inf(1)
		for _, n := range b.t.Nodes() {
			if n.IsLeaf() && b.hidden[n.ID] && b.rep[n.ID] == id && !b.isDest(n.ID) {
				w.BottomY = math.Min(w.BottomY, b.y[n.ID])
			}
		}
		if math.IsInf(w.BottomY, 1) {
			w.BottomY = b.y[id]
		}
	}
}
