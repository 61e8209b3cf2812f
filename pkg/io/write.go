package io

import (
	"fmt"
	stdio "io"
	"os"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/io/nexml"
	"github.com/matzehuels/phylonet/pkg/io/nexus"
	"github.com/matzehuels/phylonet/pkg/io/phyloxml"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Write serializes trees to w in format f. Newick output holds one tree per
// line.
func Write(w stdio.Writer, trees []*tree.Tree, f Format) error {
	switch f {
	case FormatNewick:
		for _, t := range trees {
			if err := newick.Write(w, t); err != nil {
				return err
			}
		}
		return nil
	case FormatNexus:
		return nexus.Write(w, trees)
	case FormatPhyloXML:
		return phyloxml.Write(w, trees)
	case FormatNeXML:
		return nexml.Write(w, trees)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}

// WriteFile writes trees to a file at path.
// This is a convenience wrapper around [Write] for file-based output.
func WriteFile(path string, trees []*tree.Tree, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, trees, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
