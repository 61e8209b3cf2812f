package sink

import (
	"github.com/matzehuels/phylonet/pkg/layout"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Option configures [JSON] and [YAML].
type Option func(*renderer)

type renderer struct {
	indent string
	labels bool
}

// WithIndent sets the JSON indentation. An empty string produces compact
// output. The default is two spaces.
func WithIndent(indent string) Option { return func(r *renderer) { r.indent = indent } }

// WithLabels includes node labels and annotations in the output.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

func newRenderer(opts []Option) renderer {
	r := renderer{indent: "  "}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

type document struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Mode        layout.Mode  `json:"mode" yaml:"mode"`
	Style       layout.Style `json:"style" yaml:"style"`
	Nodes       []node       `json:"nodes" yaml:"nodes"`
	Groups      []group      `json:"groups" yaml:"groups"`
	RecombEdges []recombEdge `json:"recomb_edges,omitempty" yaml:"recomb_edges,omitempty"`
}

type node struct {
	ID         int               `json:"id" yaml:"id"`
	Parent     *int              `json:"parent,omitempty" yaml:"parent,omitempty"`
	Coords     []float64         `json:"coords" yaml:"coords,flow"`
	Label      string            `json:"label,omitempty" yaml:"label,omitempty"`
	HybridID   string            `json:"hybrid_id,omitempty" yaml:"hybrid_id,omitempty"`
	Collapsed  bool              `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Annotation map[string]string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

type group struct {
	Node      int     `json:"node" yaml:"node"`
	Left      float64 `json:"left" yaml:"left"`
	Right     float64 `json:"right" yaml:"right"`
	Collapsed bool    `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
}

type recombEdge struct {
	HybridID string `json:"hybrid_id" yaml:"hybrid_id"`
	Source   int    `json:"source" yaml:"source"`
	Dest     int    `json:"dest" yaml:"dest"`
}

func (r renderer) build(l *layout.Layout) document {
	doc := document{
		Name:   l.Tree.Name,
		Mode:   l.Mode,
		Style:  l.Style,
		Nodes:  buildNodes(l, r.labels),
		Groups: make([]group, len(l.Groups)),
	}
	for i, g := range l.Groups {
		doc.Groups[i] = group{Node: g.Node, Left: g.Left, Right: g.Right, Collapsed: g.Collapsed}
	}
	for _, e := range l.RecombEdges {
		doc.RecombEdges = append(doc.RecombEdges, recombEdge{HybridID: e.HybridID, Source: e.Source, Dest: e.Dest})
	}
	return doc
}

func buildNodes(l *layout.Layout, labels bool) []node {
	nodes := make([]node, 0, len(l.Positions))
	for _, n := range l.Tree.Nodes() {
		p, ok := l.Positions[n.ID]
		if !ok {
			continue
		}
		out := node{
			ID:        n.ID,
			Parent:    visibleParent(l, n),
			Coords:    p.Tuple(),
			HybridID:  n.HybridID,
			Collapsed: p.Wedge != nil,
		}
		if labels {
			out.Label = n.Label
			out.Annotation = annotationStrings(n.Annotation)
		}
		nodes = append(nodes, out)
	}
	return nodes
}

// visibleParent returns the closest ancestor that has a position. Only
// destination leaves lifted out of a collapsed clade skip levels.
func visibleParent(l *layout.Layout, n *tree.Node) *int {
	for id := n.Parent; id != tree.NoParent; id = l.Tree.Node(id).Parent {
		if _, ok := l.Positions[id]; ok {
			return &id
		}
	}
	return nil
}

func annotationStrings(a tree.Annotation) map[string]string {
	if len(a) == 0 {
		return nil
	}
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v.String()
	}
	return out
}
