// Package xmltree decodes XML documents into a generic element tree that the
// PhyloXML and NeXML readers walk directly.
package xmltree

import (
	"encoding/xml"
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
)

// Element is one decoded XML element. Names are matched by local name only,
// so namespace prefixes do not matter to callers.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

// Decode parses input into its root element.
func Decode(input string) (*Element, error) {
	var root Element
	if err := xml.NewDecoder(strings.NewReader(input)).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed XML")
	}
	return &root, nil
}

// RootName returns the local name of the first element in input without
// decoding the rest of the document.
func RootName(input string) (string, bool) {
	d := xml.NewDecoder(strings.NewReader(input))
	for {
		tok, err := d.Token()
		if err != nil {
			return "", false
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, true
		}
	}
}

// Name returns the element's local name.
func (e *Element) Name() string { return e.XMLName.Local }

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child element with the given local name, or nil.
func (e *Element) Child(name string) *Element {
	for i := range e.Children {
		if e.Children[i].Name() == name {
			return &e.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns the child elements with the given local name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for i := range e.Children {
		if e.Children[i].Name() == name {
			out = append(out, &e.Children[i])
		}
	}
	return out
}

// Content returns the element's character data, trimmed. It is empty for a
// nil element.
func (e *Element) Content() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text)
}
