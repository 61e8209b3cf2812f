// Package pkg provides the core libraries for phylonet.
//
// # Overview
//
// Phylonet reads phylogenetic trees and reticulate networks, transforms them
// and computes 2D layouts that an external renderer draws. The pkg directory
// is organized into four main areas:
//
//  1. [tree] - The node/network model and its structural algorithms
//  2. [io] - Format detection, parsers and writers
//  3. [layout] - Coordinate computation and layout exporters
//  4. [pipeline] - Orchestration (parse → prepare → layout → export)
//
// # Architecture
//
// The typical data flow through phylonet:
//
//	Newick / NEXUS / PhyloXML / NeXML document
//	         ↓
//	    [io] package (detect format, parse every tree)
//	         ↓
//	    [tree] package (reroot, collapse, sort, strip zero-length branches)
//	         ↓
//	    [layout] package (standard, cladogram or transmission layout)
//	         ↓
//	    [layout/sink] package (JSON or YAML for a renderer)
//
// # Quick Start
//
// Parse a document and lay out its first tree:
//
//	trees, err := io.ReadFile(ctx, "primates.nex")
//	if err != nil {
//	    return err
//	}
//	l, err := layout.Compute(trees[0], layout.DefaultStyle())
//	if err != nil {
//	    return err
//	}
//	return sink.JSON(os.Stdout, l)
//
// # Main Packages
//
// ## Model
//
// [tree] - Trees are arenas of nodes indexed by integer ID. Reticulation
// events are pairs of nodes sharing a hybrid ID: an internal source and a
// destination leaf. Heights are derived from branch lengths and recomputed
// after every structural edit.
//
// ## Formats
//
// [io] - Detects the format of a document and returns every tree it holds.
// Trees a format cannot represent (unrooted, empty) are logged and skipped.
//
//   - [io/newick]: Extended-Newick lexer, parser and writer
//   - [io/nexus]: NEXUS TREES blocks with TRANSLATE tables
//   - [io/phyloxml]: PhyloXML phylogenies
//   - [io/nexml]: NeXML tree blocks
//
// ## Layout
//
// [layout] - Computes node positions, leaf groups and reticulate edges.
// Styles are plain values and can be loaded as named presets from TOML.
//
// [layout/sink] - Serializes a layout for renderers.
//
// ## Analysis
//
// [stats] - Leaf count, Colless imbalance, lineages through time and the
// classic skyline plot.
//
// ## Infrastructure
//
// [pipeline] - The parse → prepare → layout → export runner used by the CLI.
//
// [session] - Caller-owned document state: loaded trees, the current tree and
// deferred loads guarded by generation tokens.
//
// [observability] - Optional hooks around parsing, layout and export.
//
// [errors] - Coded errors with source offsets.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/tree/...            # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/tree
// [io]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/io
// [io/newick]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/io/newick
// [io/nexus]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/io/nexus
// [io/phyloxml]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/io/phyloxml
// [io/nexml]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/io/nexml
// [layout]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/layout
// [layout/sink]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/layout/sink
// [stats]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/stats
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/session
// [observability]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/phylonet/pkg/errors
package pkg
