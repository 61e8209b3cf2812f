// Package io reads and writes phylogenetic tree documents.
//
// # Overview
//
// Four formats are supported, each implemented in its own subpackage:
//
//   - Newick / Extended-Newick ([newick]): hybrid tags and [&...] annotations
//   - NEXUS ([nexus]): TREES block with translate tables
//   - PhyloXML ([phyloxml]): clades, taxonomy, confidence and properties
//   - NeXML ([nexml]): nodes and edges with literal metadata
//
// This package ties them together: it detects the format of a document,
// runs the matching reader and applies the batch rules shared by all formats.
//
// # Reading
//
// Use [Parse] for in-memory text, [Read] for any io.Reader and [ReadFile]
// for a path:
//
//	trees, err := io.ReadFile(ctx, "primates.nex", io.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Each reader reports one [Outcome] per tree. A tree that is well formed but
// unsupported (an unrooted PhyloXML phylogeny, a NeXML tree without a root) is
// skipped: it is logged at warn level and left out of the result. Lexical,
// grammar and semantic errors abort the whole document. A document that
// yields no trees at all is an EMPTY_DOCUMENT error.
//
// Newick documents are split at top-level ';'. Text without any ';' is read
// as one tree per non-blank line.
//
// # Writing
//
// [Write] and [WriteFile] serialize trees in any [Format]. Newick output holds
// one tree per line; the other formats wrap all trees in one document.
//
// # Concurrency
//
// All functions are safe to call concurrently. Returned trees are independent
// of each other and of the input.
package io
