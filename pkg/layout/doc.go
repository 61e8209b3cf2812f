// Package layout computes 2D coordinates for drawing phylogenetic trees and
// reticulate networks.
//
// # Overview
//
// [Compute] takes a [tree.Tree] and a [Style] and returns a [Layout]: a
// position in the unit square for every visible node, the leaf groups that
// fix the horizontal order, and the reticulate edges the renderer must draw.
// Pixel, SVG and canvas concerns belong to the renderer.
//
// # Strategies
//
// A layout combines one horizontal and one vertical strategy:
//
//   - [ModeStandard]: internal nodes sit at the mean of their children; y is
//     the node height scaled linearly or logarithmically
//   - [ModeTransmission]: internal nodes sit above their first child
//   - [ModeCladogram]: y is an integer rank (leaves 0, parents one above their
//     highest child)
//
// Trees with missing branch lengths are always placed by rank.
//
// # Collapsed clades
//
// Nodes marked with [tree.Tree.SetCollapsed] become a single leaf group.
// Their [Position] carries a [Wedge] spanning the bundled leaves at the
// height of the youngest one; cartoon clades take one slot only.
//
// # Style presets
//
// Named styles can be kept in a TOML file and loaded with [LoadStyleFile]:
//
//	[styles.dated]
//	log_scale = true
//	log_scale_rel_offset = 0.01
//
//	[styles.clado]
//	mode = "cladogram"
//	inline_recomb = false
//
// # Serialization
//
// See the sink subpackage for JSON and YAML output.
package layout
