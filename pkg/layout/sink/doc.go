// Package sink serializes computed layouts for external renderers.
//
// # Overview
//
// A "sink" transforms a [layout.Layout] into a data document. Two encodings
// share one document shape:
//
//   - JSON ([JSON]), encoded with goccy/go-json
//   - YAML ([YAML]), encoded with yaml.v3
//
// Basic usage:
//
//	l, err := layout.Compute(t, layout.DefaultStyle())
//	if err != nil {
//	    return err
//	}
//	return sink.JSON(os.Stdout, l, sink.WithLabels())
//
// # Document
//
// Each visible node is listed in preorder with its ID, its visible parent
// and its coordinates: (x, y) for ordinary nodes, or the 6-tuple
// (x, y, leftX, bottomY, rightX, bottomY) for collapsed clades. Leaf groups,
// reticulate edges and the style used are included so a render can be
// reproduced.
//
// # Options
//
//   - [WithIndent]: indentation string (JSON only; YAML always uses two spaces)
//   - [WithLabels]: include node labels and annotations
package sink
