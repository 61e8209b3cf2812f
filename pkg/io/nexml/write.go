package nexml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/phylonet/pkg/tree"
)

const (
	nexNamespace = "http://www.nexml.org/2009"
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
	xsdNamespace = "http://www.w3.org/2001/XMLSchema#"
)

type document struct {
	XMLName xml.Name  `xml:"nex:nexml"`
	Nex     string    `xml:"xmlns:nex,attr"`
	Xsi     string    `xml:"xmlns:xsi,attr"`
	Xsd     string    `xml:"xmlns:xsd,attr"`
	Version string    `xml:"version,attr"`
	Otus    otusBlock `xml:"otus"`
	Trees   trees     `xml:"trees"`
}

type otusBlock struct {
	ID   string `xml:"id,attr"`
	Otus []otu  `xml:"otu"`
}

type otu struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr,omitempty"`
}

type trees struct {
	ID    string    `xml:"id,attr"`
	Otus  string    `xml:"otus,attr"`
	Trees []xmlTree `xml:"tree"`
}

type xmlTree struct {
	ID       string    `xml:"id,attr"`
	Label    string    `xml:"label,attr,omitempty"`
	Type     string    `xml:"xsi:type,attr"`
	Nodes    []node    `xml:"node"`
	RootEdge *rootEdge `xml:"rootedge"`
	Edges    []xmlEdge `xml:"edge"`
}

type node struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr,omitempty"`
	Otu   string `xml:"otu,attr,omitempty"`
	Root  string `xml:"root,attr,omitempty"`
	Meta  []meta `xml:"meta"`
}

type meta struct {
	ID       string `xml:"id,attr"`
	Type     string `xml:"xsi:type,attr"`
	Datatype string `xml:"datatype,attr"`
	Property string `xml:"property,attr"`
	Content  string `xml:"content,attr"`
}

type rootEdge struct {
	ID     string `xml:"id,attr"`
	Target string `xml:"target,attr"`
	Length string `xml:"length,attr"`
}

type xmlEdge struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Length string `xml:"length,attr,omitempty"`
}

// Write writes trees as a NeXML document with one shared <otus> block. A
// reticulation is written as a second edge into its source node, after all
// tree edges; the destination leaf itself is not written.
func Write(w io.Writer, trees []*tree.Tree) error {
	doc := document{
		Nex:     nexNamespace,
		Xsi:     xsiNamespace,
		Xsd:     xsdNamespace,
		Version: "0.9",
		Otus:    otusBlock{ID: "otus1"},
	}
	doc.Trees.ID = "trees1"
	doc.Trees.Otus = "otus1"
	for i, t := range trees {
		doc.Trees.Trees = append(doc.Trees.Trees, buildTree(&doc.Otus, t, i+1))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func buildTree(otus *otusBlock, t *tree.Tree, index int) xmlTree {
	prefix := fmt.Sprintf("t%d", index)
	nodeID := func(id int) string { return fmt.Sprintf("%sn%d", prefix, id) }
	m, _ := t.RecombEdgeMap()

	xt := xmlTree{ID: fmt.Sprintf("tree%d", index), Label: t.Name, Type: "nex:FloatTree"}
	var reticulate []xmlEdge
	for _, n := range t.Nodes() {
		if t.IsRecombDest(n.ID) {
			reticulate = append(reticulate, xmlEdge{
				ID:     fmt.Sprintf("%se%d", prefix, n.ID),
				Source: nodeID(n.Parent),
				Target: nodeID(m[n.HybridID].Source),
				Length: formatLength(n),
			})
			continue
		}

		xn := node{ID: nodeID(n.ID), Label: n.Label}
		if n.IsRoot() {
			xn.Root = "true"
		}
		if n.IsLeaf() {
			xn.Otu = fmt.Sprintf("otu%d", len(otus.Otus)+1)
			otus.Otus = append(otus.Otus, otu{ID: xn.Otu, Label: n.Label})
		}
		for j, k := range n.Annotation.Keys() {
			xn.Meta = append(xn.Meta, meta{
				ID:       fmt.Sprintf("%sm%d_%d", prefix, n.ID, j),
				Type:     "nex:LiteralMeta",
				Datatype: "xsd:string",
				Property: k,
				Content:  n.Annotation[k].String(),
			})
		}
		xt.Nodes = append(xt.Nodes, xn)

		if n.IsRoot() {
			if n.HasBranchLength() {
				xt.RootEdge = &rootEdge{ID: prefix + "re", Target: xn.ID, Length: formatLength(n)}
			}
			continue
		}
		xt.Edges = append(xt.Edges, xmlEdge{
			ID:     fmt.Sprintf("%se%d", prefix, n.ID),
			Source: nodeID(n.Parent),
			Target: xn.ID,
			Length: formatLength(n),
		})
	}
	xt.Edges = append(xt.Edges, reticulate...)
	return xt
}

func formatLength(n *tree.Node) string {
	if !n.HasBranchLength() {
		return ""
	}
	return strconv.FormatFloat(n.BranchLength, 'g', -1, 64)
}
