package tree

import (
	"math"
	"slices"
)

// NoParent is the Parent value of the root node.
const NoParent = -1

// Node is a single vertex of a [Tree]. Children and Parent hold arena indices
// owned by the tree.
type Node struct {
	ID           int
	Parent       int
	Children     []int
	BranchLength float64 // NaN when the input gave none
	Height       float64 // derived; NaN when an ancestor edge is undefined
	Label        string
	Annotation   Annotation
	HybridID     string

	// Display hints. Collapsed subtrees are drawn as a single leaf group;
	// Cartoon additionally requests a triangular wedge.
	Collapsed bool
	Cartoon   bool
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.Parent == NoParent }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsHybrid reports whether n takes part in a reticulation pair.
func (n *Node) IsHybrid() bool { return n.HybridID != "" }

// HasBranchLength reports whether the edge above n has a defined length.
func (n *Node) HasBranchLength() bool { return !math.IsNaN(n.BranchLength) }

func newNode(id, parent int) *Node {
	return &Node{
		ID:           id,
		Parent:       parent,
		BranchLength: math.NaN(),
		Height:       math.NaN(),
	}
}

// Tree is a rooted phylogenetic tree, possibly carrying reticulation pairs.
type Tree struct {
	Name string

	nodes []*Node
	root  int

	// cached views, reset by invalidate
	preorder    []int
	leaves      []int
	recomb      map[string]RecombEdge
	recombErr   error
	recombValid bool
}

// New returns a tree holding a single root node.
func New() *Tree {
	return &Tree{nodes: []*Node{newNode(0, NoParent)}}
}

// AddChild appends a new child below parent and returns it. Nodes added in
// the order a parser encounters them receive IDs in preorder.
func (t *Tree) AddChild(parent int) *Node {
	n := newNode(len(t.nodes), parent)
	t.nodes = append(t.nodes, n)
	p := t.nodes[parent]
	p.Children = append(p.Children, n.ID)
	t.invalidate()
	return n
}

// Init finishes construction: it computes heights and validates reticulation
// pairs. Parsers call it once the node structure is complete.
func (t *Tree) Init() error {
	t.invalidate()
	t.ComputeHeights()
	if _, err := t.RecombEdgeMap(); err != nil {
		return err
	}
	return t.checkAcyclic()
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Node returns the node with the given ID, or nil if it does not exist.
func (t *Tree) Node(id int) *Node {
	if id < 0 || id >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Nodes returns all nodes in preorder.
func (t *Tree) Nodes() []*Node {
	order := t.preorderIDs()
	out := make([]*Node, len(order))
	for i, id := range order {
		out[i] = t.nodes[id]
	}
	return out
}

// Leaves returns the leaf nodes in preorder.
func (t *Tree) Leaves() []*Node {
	if t.leaves == nil {
		for _, id := range t.preorderIDs() {
			if t.nodes[id].IsLeaf() {
				t.leaves = append(t.leaves, id)
			}
		}
	}
	out := make([]*Node, len(t.leaves))
	for i, id := range t.leaves {
		out[i] = t.nodes[id]
	}
	return out
}

// LeafCount returns the number of leaves in the subtree rooted at id.
func (t *Tree) LeafCount(id int) int {
	return t.leafCounts()[id]
}

func (t *Tree) leafCounts() []int {
	order := t.preorderIDs()
	counts := make([]int, len(t.nodes))
	for i := len(order) - 1; i >= 0; i-- {
		n := t.nodes[order[i]]
		if n.IsLeaf() {
			counts[n.ID] = 1
			continue
		}
		for _, c := range n.Children {
			counts[n.ID] += counts[c]
		}
	}
	return counts
}

// RootHeight returns the height of the root node.
func (t *Tree) RootHeight() float64 { return t.Root().Height }

// IsTimeTree reports whether every node height is defined. A single-node tree
// is a time tree only when its root carries a branch length.
func (t *Tree) IsTimeTree() bool {
	for _, n := range t.nodes {
		if math.IsNaN(n.Height) {
			return false
		}
	}
	return len(t.nodes) > 1 || t.Root().HasBranchLength()
}

// Length returns the sum of all defined branch lengths below the root.
func (t *Tree) Length() float64 {
	var total float64
	for _, n := range t.nodes {
		if n.IsRoot() || !n.HasBranchLength() {
			continue
		}
		total += n.BranchLength
	}
	return total
}

// ComputeHeights derives node heights from branch lengths. Destination leaves
// of reticulation pairs do not take part in choosing the height origin.
func (t *Tree) ComputeHeights() {
	order := t.preorderIDs()
	for _, id := range order {
		n := t.nodes[id]
		if n.IsRoot() {
			n.Height = 0
			continue
		}
		n.Height = t.nodes[n.Parent].Height - n.BranchLength
	}

	dest := t.destSet()
	minLeaf := math.Inf(1)
	for _, id := range order {
		n := t.nodes[id]
		if !n.IsLeaf() || dest[id] || math.IsNaN(n.Height) {
			continue
		}
		minLeaf = math.Min(minLeaf, n.Height)
	}
	if math.IsInf(minLeaf, 1) {
		return
	}
	for _, id := range order {
		t.nodes[id].Height -= minLeaf
	}
}

// FindByLabel returns the first node in preorder carrying label.
func (t *Tree) FindByLabel(label string) (*Node, bool) {
	for _, id := range t.preorderIDs() {
		if t.nodes[id].Label == label {
			return t.nodes[id], true
		}
	}
	return nil, false
}

// Copy returns a deep copy of the tree.
func (t *Tree) Copy() *Tree {
	c := &Tree{Name: t.Name, root: t.root, nodes: make([]*Node, len(t.nodes))}
	for i, n := range t.nodes {
		cp := *n
		cp.Children = slices.Clone(n.Children)
		cp.Annotation = n.Annotation.Clone()
		c.nodes[i] = &cp
	}
	return c
}

// SetCollapsed marks the subtree at id as collapsed, optionally drawn as a
// cartoon wedge.
func (t *Tree) SetCollapsed(id int, cartoon bool) {
	n := t.nodes[id]
	n.Collapsed = true
	n.Cartoon = cartoon
}

// ClearCollapsed removes all collapse hints.
func (t *Tree) ClearCollapsed() {
	for _, n := range t.nodes {
		n.Collapsed = false
		n.Cartoon = false
	}
}

func (t *Tree) invalidate() {
	t.preorder = nil
	t.leaves = nil
	t.recomb = nil
	t.recombErr = nil
	t.recombValid = false
}

func (t *Tree) preorderIDs() []int {
	if t.preorder != nil {
		return t.preorder
	}
	order := make([]int, 0, len(t.nodes))
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)
		ch := t.nodes[id].Children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}
	t.preorder = order
	return order
}

// renumber rebuilds the arena so IDs follow the current preorder. Nodes no
// longer reachable from the root are dropped.
func (t *Tree) renumber() {
	t.invalidate()
	order := t.preorderIDs()
	remap := make([]int, len(t.nodes))
	for i, old := range order {
		remap[old] = i
	}
	nodes := make([]*Node, len(order))
	for i, old := range order {
		n := t.nodes[old]
		n.ID = i
		if n.Parent != NoParent {
			n.Parent = remap[n.Parent]
		}
		for j, c := range n.Children {
			n.Children[j] = remap[c]
		}
		nodes[i] = n
	}
	t.nodes = nodes
	t.root = 0
	t.invalidate()
}

// detach removes n from its parent's child list.
func (t *Tree) detach(n *Node) {
	if n.Parent == NoParent {
		return
	}
	p := t.nodes[n.Parent]
	p.Children = slices.DeleteFunc(p.Children, func(c int) bool { return c == n.ID })
	n.Parent = NoParent
}

// attach appends child to parent's child list.
func (t *Tree) attach(parent, child *Node) {
	parent.Children = append(parent.Children, child.ID)
	child.Parent = parent.ID
}

// ancestry returns the path from the root to id, inclusive.
func (t *Tree) ancestry(id int) []int {
	var path []int
	for cur := id; cur != NoParent; cur = t.nodes[cur].Parent {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
