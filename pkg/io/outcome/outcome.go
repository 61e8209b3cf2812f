// Package outcome defines the per-tree result reported by the format readers.
//
// A reader yields one Outcome for every tree it finds in a document. A tree
// that is well formed but unsupported (an unrooted PhyloXML phylogeny, a NeXML
// tree without a root) is reported as skipped together with the reason; the
// batch dispatcher in package io logs and omits it. Fatal problems are returned
// as errors instead and abort the whole document.
package outcome

import (
	"fmt"

	"github.com/matzehuels/phylonet/pkg/tree"
)

// Outcome is the result of reading one tree.
type Outcome struct {
	Tree    *tree.Tree
	Skipped bool
	Reason  string
}

// Parsed returns the outcome for a successfully built tree.
func Parsed(t *tree.Tree) Outcome {
	return Outcome{Tree: t}
}

// Skip returns a skipped outcome with a formatted reason.
func Skip(format string, args ...any) Outcome {
	return Outcome{Skipped: true, Reason: fmt.Sprintf(format, args...)}
}
