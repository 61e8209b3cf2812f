package io

import (
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/internal/xmltree"
	"github.com/matzehuels/phylonet/pkg/io/nexus"
)

// Format identifies a tree document format.
type Format string

const (
	FormatNewick   Format = "newick"
	FormatNexus    Format = "nexus"
	FormatPhyloXML Format = "phyloxml"
	FormatNeXML    Format = "nexml"
)

// Formats lists the supported formats in their canonical order.
var Formats = []Format{FormatNewick, FormatNexus, FormatPhyloXML, FormatNeXML}

var formatAliases = map[string]Format{
	"newick":   FormatNewick,
	"nwk":      FormatNewick,
	"tree":     FormatNewick,
	"nexus":    FormatNexus,
	"nex":      FormatNexus,
	"phyloxml": FormatPhyloXML,
	"nexml":    FormatNeXML,
}

var extensions = map[Format]string{
	FormatNewick:   ".nwk",
	FormatNexus:    ".nex",
	FormatPhyloXML: ".phyloxml",
	FormatNeXML:    ".nexml",
}

// ParseFormat resolves a format name or common alias, ignoring case.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (supported: newick, nexus, phyloxml, nexml)", name)
}

// Extension returns the file extension used when writing f.
func (f Format) Extension() string { return extensions[f] }

// Detect guesses the format of input from its first bytes: a leading #NEXUS
// token, or an XML document whose root element is phyloxml or nexml.
// Anything else is treated as Newick.
func Detect(input string) Format {
	if nexus.HasHeader(input) {
		return FormatNexus
	}
	if strings.HasPrefix(strings.TrimSpace(input), "<") {
		switch name, _ := xmltree.RootName(input); name {
		case "phyloxml":
			return FormatPhyloXML
		case "nexml":
			return FormatNeXML
		}
	}
	return FormatNewick
}
