// Package stats computes summary statistics of phylogenetic trees and
// networks.
//
// Destination leaves of reticulation pairs are not taxa: they are excluded
// from leaf counts and balance indices, and in lineages-through-time they
// end the reticulate lineage at its source.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/phylonet/pkg/tree"
)

// LeafCount returns the number of taxa in t.
func LeafCount(t *tree.Tree) int {
	count := 0
	for _, n := range t.Leaves() {
		if !t.IsRecombDest(n.ID) {
			count++
		}
	}
	return count
}

// Colless returns the Colless imbalance index: the sum of |L-R| over every
// bifurcating internal node, where L and R are the taxon counts below its
// two children.
func Colless(t *tree.Tree) int {
	counts := taxonCounts(t)
	total := 0
	for _, n := range t.Nodes() {
		var sides []int
		for _, c := range n.Children {
			if !t.IsRecombDest(c) {
				sides = append(sides, counts[c])
			}
		}
		if len(sides) == 2 {
			total += abs(sides[0] - sides[1])
		}
	}
	return total
}

func taxonCounts(t *tree.Tree) []int {
	counts := make([]int, t.Len())
	nodes := t.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.IsLeaf() {
			if !t.IsRecombDest(n.ID) {
				counts[n.ID] = 1
			}
			continue
		}
		for _, c := range n.Children {
			counts[n.ID] += counts[c]
		}
	}
	return counts
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Summary collects the headline numbers of a tree.
type Summary struct {
	Name             string  `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes            int     `json:"nodes" yaml:"nodes"`
	Leaves           int     `json:"leaves" yaml:"leaves"`
	Reticulations    int     `json:"reticulations" yaml:"reticulations"`
	TimeTree         bool    `json:"time_tree" yaml:"time_tree"`
	Length           float64 `json:"length" yaml:"length"`
	RootHeight       float64 `json:"root_height" yaml:"root_height"`
	MeanBranchLength float64 `json:"mean_branch_length" yaml:"mean_branch_length"`
	Colless          int     `json:"colless" yaml:"colless"`
}

// Summarize computes a [Summary]. RootHeight and MeanBranchLength are NaN
// when t has no defined branch lengths.
func Summarize(t *tree.Tree) Summary {
	var lengths []float64
	for _, n := range t.Nodes() {
		if !n.IsRoot() && n.HasBranchLength() {
			lengths = append(lengths, n.BranchLength)
		}
	}
	mean := math.NaN()
	if len(lengths) > 0 {
		mean = stat.Mean(lengths, nil)
	}
	return Summary{
		Name:             t.Name,
		Nodes:            t.Len(),
		Leaves:           LeafCount(t),
		Reticulations:    len(t.HybridIDs()),
		TimeTree:         t.IsTimeTree(),
		Length:           t.Length(),
		RootHeight:       t.RootHeight(),
		MeanBranchLength: mean,
		Colless:          Colless(t),
	}
}
