// Package phyloxml reads and writes PhyloXML documents.
//
// Every <phylogeny> becomes one tree; phylogenies marked rooted="false" are
// reported as skipped. Clade metadata maps onto annotations:
//
//	<taxonomy><code>X</code></taxonomy>       taxonomy_code = X
//	<sequence><symbol>Y</symbol></sequence>   sequence_symbol = Y
//	<confidence type="bootstrap">90</...>     confidence_bootstrap = 90
//	<property ref="k">v</property>            k = v
//
// A property with ref "hybrid_id" restores the node's hybrid tag.
package phyloxml

import (
	"strconv"
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/internal/xmltree"
	"github.com/matzehuels/phylonet/pkg/io/outcome"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// HybridRef is the property ref used to carry hybrid tags.
const HybridRef = "hybrid_id"

// Parse reads every phylogeny of a PhyloXML document.
func Parse(input string) ([]outcome.Outcome, error) {
	root, err := xmltree.Decode(input)
	if err != nil {
		return nil, err
	}
	if root.Name() != "phyloxml" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected <phyloxml> root, found <%s>", root.Name())
	}

	var outcomes []outcome.Outcome
	for i, ph := range root.ChildrenNamed("phylogeny") {
		if rooted, ok := ph.Attr("rooted"); ok && strings.EqualFold(strings.TrimSpace(rooted), "false") {
			outcomes = append(outcomes, outcome.Skip("phylogeny %d is unrooted", i+1))
			continue
		}
		clade := ph.Child("clade")
		if clade == nil {
			outcomes = append(outcomes, outcome.Skip("phylogeny %d has no clade", i+1))
			continue
		}
		t := tree.New()
		t.Name = ph.Child("name").Content()
		if err := readClade(t, t.Root(), clade); err != nil {
			return nil, err
		}
		if err := t.Init(); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome.Parsed(t))
	}
	return outcomes, nil
}

func readClade(t *tree.Tree, n *tree.Node, el *xmltree.Element) error {
	if raw, ok := el.Attr("branch_length"); ok {
		if err := setLength(n, raw); err != nil {
			return err
		}
	}
	for i := range el.Children {
		c := &el.Children[i]
		switch c.Name() {
		case "clade":
			if err := readClade(t, t.AddChild(n.ID), c); err != nil {
				return err
			}
		case "name":
			n.Label = c.Content()
		case "branch_length":
			if err := setLength(n, c.Content()); err != nil {
				return err
			}
		case "taxonomy", "sequence":
			for j := range c.Children {
				sub := &c.Children[j]
				if text := sub.Content(); text != "" {
					n.Annotate(c.Name()+"_"+sub.Name(), tree.Classify(text, false))
				}
			}
		case "confidence":
			typ, ok := c.Attr("type")
			if !ok || typ == "" {
				typ = "unknown"
			}
			n.Annotate("confidence_"+typ, tree.Classify(c.Content(), false))
		case "property":
			readProperty(n, c)
		}
	}
	return nil
}

func readProperty(n *tree.Node, el *xmltree.Element) {
	ref, ok := el.Attr("ref")
	if !ok || ref == "" {
		return
	}
	text := el.Content()
	if ref == HybridRef {
		n.HybridID = text
		return
	}
	datatype, _ := el.Attr("datatype")
	n.Annotate(ref, tree.Classify(text, datatype == "xsd:string"))
}

func setLength(n *tree.Node, raw string) error {
	bl, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return errors.New(errors.ErrCodeSemantic, "invalid branch length %q", raw)
	}
	n.BranchLength = bl
	return nil
}
