package phyloxml

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/matzehuels/phylonet/pkg/tree"
)

const namespace = "http://www.phyloxml.org"

type document struct {
	XMLName     xml.Name    `xml:"phyloxml"`
	Xmlns       string      `xml:"xmlns,attr"`
	Phylogenies []phylogeny `xml:"phylogeny"`
}

type phylogeny struct {
	Rooted bool   `xml:"rooted,attr"`
	Name   string `xml:"name,omitempty"`
	Clade  clade  `xml:"clade"`
}

type clade struct {
	BranchLength string     `xml:"branch_length,attr,omitempty"`
	Name         string     `xml:"name,omitempty"`
	Properties   []property `xml:"property"`
	Clades       []clade    `xml:"clade"`
}

type property struct {
	Ref       string `xml:"ref,attr"`
	Datatype  string `xml:"datatype,attr"`
	AppliesTo string `xml:"applies_to,attr"`
	Value     string `xml:",chardata"`
}

// Write writes trees as a PhyloXML document with one rooted phylogeny each.
// Annotations become <property> elements; numbers are typed xsd:double.
func Write(w io.Writer, trees []*tree.Tree) error {
	doc := document{Xmlns: namespace}
	for _, t := range trees {
		doc.Phylogenies = append(doc.Phylogenies, phylogeny{
			Rooted: true,
			Name:   t.Name,
			Clade:  buildClade(t, t.Root()),
		})
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

func buildClade(t *tree.Tree, n *tree.Node) clade {
	c := clade{Name: n.Label}
	if n.HasBranchLength() {
		c.BranchLength = strconv.FormatFloat(n.BranchLength, 'g', -1, 64)
	}
	for _, k := range n.Annotation.Keys() {
		v := n.Annotation[k]
		datatype := "xsd:string"
		if v.Kind == tree.KindNumber {
			datatype = "xsd:double"
		}
		c.Properties = append(c.Properties, property{Ref: k, Datatype: datatype, AppliesTo: "clade", Value: v.String()})
	}
	if n.IsHybrid() {
		c.Properties = append(c.Properties, property{Ref: HybridRef, Datatype: "xsd:string", AppliesTo: "clade", Value: n.HybridID})
	}
	for _, id := range n.Children {
		c.Clades = append(c.Clades, buildClade(t, t.Node(id)))
	}
	return c
}
