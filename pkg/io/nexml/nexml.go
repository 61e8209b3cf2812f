// Package nexml reads and writes NeXML documents.
//
// Nodes of each <tree> are collected by ID first and wired afterwards from
// the <edge> elements. Exactly one node must be marked root="true"; a tree
// without one is skipped and a tree with several is an error. A node
// targeted by two edges is a reticulation: the first edge is kept as the tree
// edge and the second becomes a hybrid destination leaf below its source.
package nexml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/internal/xmltree"
	"github.com/matzehuels/phylonet/pkg/io/outcome"
	"github.com/matzehuels/phylonet/pkg/tree"
)

type edge struct {
	index          int
	source, target string
	length         float64
}

type treeReader struct {
	otus     map[string]string
	nodes    map[string]*xmltree.Element
	order    []string
	out      map[string][]edge
	incoming map[string][]edge
	hybrids  map[string]string
	visited  map[string]bool
	t        *tree.Tree
}

// Parse reads every tree of a NeXML document.
func Parse(input string) ([]outcome.Outcome, error) {
	root, err := xmltree.Decode(input)
	if err != nil {
		return nil, err
	}
	if root.Name() != "nexml" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected <nexml> root, found <%s>", root.Name())
	}

	otus := make(map[string]string)
	for _, block := range root.ChildrenNamed("otus") {
		for _, otu := range block.ChildrenNamed("otu") {
			id, _ := otu.Attr("id")
			label, _ := otu.Attr("label")
			otus[id] = label
		}
	}

	var outcomes []outcome.Outcome
	for _, block := range root.ChildrenNamed("trees") {
		for _, el := range block.ChildrenNamed("tree") {
			o, err := readTree(el, otus)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, o)
		}
	}
	return outcomes, nil
}

func readTree(el *xmltree.Element, otus map[string]string) (outcome.Outcome, error) {
	id, _ := el.Attr("id")
	r := &treeReader{
		otus:     otus,
		nodes:    make(map[string]*xmltree.Element),
		out:      make(map[string][]edge),
		incoming: make(map[string][]edge),
		hybrids:  make(map[string]string),
		visited:  make(map[string]bool),
		t:        tree.New(),
	}

	var roots []string
	for _, n := range el.ChildrenNamed("node") {
		nid, _ := n.Attr("id")
		r.nodes[nid] = n
		r.order = append(r.order, nid)
		if v, _ := n.Attr("root"); strings.EqualFold(v, "true") {
			roots = append(roots, nid)
		}
	}
	switch len(roots) {
	case 0:
		return outcome.Skip("tree %s has no root node", id), nil
	case 1:
	default:
		return outcome.Outcome{}, errors.New(errors.ErrCodeSemantic, "tree %s has %d root nodes", id, len(roots))
	}

	for i, e := range el.ChildrenNamed("edge") {
		ed, err := readEdge(i, e)
		if err != nil {
			return outcome.Outcome{}, err
		}
		if _, ok := r.nodes[ed.source]; !ok {
			return outcome.Outcome{}, errors.New(errors.ErrCodeSemantic, "edge references unknown node %q", ed.source)
		}
		if _, ok := r.nodes[ed.target]; !ok {
			return outcome.Outcome{}, errors.New(errors.ErrCodeSemantic, "edge references unknown node %q", ed.target)
		}
		r.out[ed.source] = append(r.out[ed.source], ed)
		r.incoming[ed.target] = append(r.incoming[ed.target], ed)
	}
	for _, nid := range r.order {
		switch in := len(r.incoming[nid]); {
		case in > 2:
			return outcome.Outcome{}, errors.New(errors.ErrCodeSemantic, "node %s has %d parents", nid, in)
		case in == 2:
			r.hybrids[nid] = fmt.Sprintf("H%d", len(r.hybrids)+1)
		}
	}

	if re := el.Child("rootedge"); re != nil {
		if raw, ok := re.Attr("length"); ok {
			bl, err := parseLength(raw)
			if err != nil {
				return outcome.Outcome{}, err
			}
			r.t.Root().BranchLength = bl
		}
	}
	if err := r.build(r.t.Root(), roots[0]); err != nil {
		return outcome.Outcome{}, err
	}
	r.t.Name, _ = el.Attr("label")
	if err := r.t.Init(); err != nil {
		return outcome.Outcome{}, err
	}
	return outcome.Parsed(r.t), nil
}

func (r *treeReader) build(n *tree.Node, nid string) error {
	if r.visited[nid] {
		return errors.New(errors.ErrCodeSemantic, "node %s is reachable twice through tree edges", nid)
	}
	r.visited[nid] = true

	el := r.nodes[nid]
	if otu, ok := el.Attr("otu"); ok && r.otus[otu] != "" {
		n.Label = r.otus[otu]
	} else {
		n.Label, _ = el.Attr("label")
	}
	n.HybridID = r.hybrids[nid]
	readMeta(n, el)

	for _, e := range r.out[nid] {
		child := r.t.AddChild(n.ID)
		child.BranchLength = e.length
		if first := r.incoming[e.target][0]; r.hybrids[e.target] != "" && first.index != e.index {
			child.HybridID = r.hybrids[e.target]
			continue
		}
		if err := r.build(child, e.target); err != nil {
			return err
		}
	}
	return nil
}

func readEdge(index int, el *xmltree.Element) (edge, error) {
	e := edge{index: index, length: math.NaN()}
	e.source, _ = el.Attr("source")
	e.target, _ = el.Attr("target")
	if raw, ok := el.Attr("length"); ok {
		bl, err := parseLength(raw)
		if err != nil {
			return edge{}, err
		}
		e.length = bl
	}
	return e, nil
}

func readMeta(n *tree.Node, el *xmltree.Element) {
	for _, m := range el.ChildrenNamed("meta") {
		key, _ := m.Attr("property")
		if i := strings.IndexByte(key, ':'); i >= 0 {
			key = key[i+1:]
		}
		if key == "" {
			continue
		}
		value, ok := m.Attr("content")
		if !ok {
			value = m.Content()
		}
		n.Annotate(key, tree.Classify(value, false))
	}
}

func parseLength(raw string) (float64, error) {
	bl, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeSemantic, "invalid edge length %q", raw)
	}
	return bl, nil
}
