package io

import (
	"context"
	"fmt"
	stdio "io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/io/nexml"
	"github.com/matzehuels/phylonet/pkg/io/nexus"
	"github.com/matzehuels/phylonet/pkg/io/outcome"
	"github.com/matzehuels/phylonet/pkg/io/phyloxml"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Outcome is the result of reading one tree of a document.
type Outcome = outcome.Outcome

// Option configures Parse.
type Option func(*options)

type options struct {
	logger *log.Logger
	format Format
}

// WithLogger reports skipped trees to logger. By default nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithFormat disables detection and reads input as f.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// Parse reads every tree in input. Skipped trees are logged and omitted; the
// first fatal error aborts the batch. A document yielding no trees is an
// EMPTY_DOCUMENT error.
func Parse(ctx context.Context, input string, opts ...Option) ([]*tree.Tree, error) {
	o := options{logger: log.New(stdio.Discard)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.format == "" {
		o.format = Detect(input)
	}

	outcomes, err := Outcomes(ctx, input, o.format)
	if err != nil {
		return nil, err
	}
	var trees []*tree.Tree
	for i, oc := range outcomes {
		if oc.Skipped {
			o.logger.Warn("skipping tree", "index", i+1, "reason", oc.Reason)
			continue
		}
		o.logger.Debug("parsed tree", "index", i+1, "name", oc.Tree.Name, "nodes", oc.Tree.Len())
		trees = append(trees, oc.Tree)
	}
	if len(trees) == 0 {
		return nil, errors.New(errors.ErrCodeEmpty, "no trees found in %s document", o.format)
	}
	return trees, nil
}

// Outcomes reads input as format f and returns one outcome per tree found,
// including skipped ones.
func Outcomes(ctx context.Context, input string, f Format) ([]Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch f {
	case FormatNewick:
		return newickOutcomes(ctx, input)
	case FormatNexus:
		return nexus.Parse(input)
	case FormatPhyloXML:
		return phyloxml.Parse(input)
	case FormatNeXML:
		return nexml.Parse(input)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}

// newickOutcomes splits a Newick document into trees at top-level ';'. A
// document without any ';' holds one tree per non-blank line.
func newickOutcomes(ctx context.Context, input string) ([]Outcome, error) {
	var statements []string
	if strings.Contains(input, ";") {
		statements = newick.SplitStatements(input)
	} else {
		for _, line := range strings.Split(input, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				statements = append(statements, line)
			}
		}
	}

	outcomes := make([]Outcome, 0, len(statements))
	for i, s := range statements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := newick.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i+1, err)
		}
		outcomes = append(outcomes, outcome.Parsed(t))
	}
	return outcomes, nil
}

// Read reads every tree from r. See [Parse].
func Read(ctx context.Context, r stdio.Reader, opts ...Option) ([]*tree.Tree, error) {
	data, err := stdio.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input")
	}
	return Parse(ctx, string(data), opts...)
}

// ReadFile reads every tree from the file at path. See [Parse].
func ReadFile(ctx context.Context, path string, opts ...Option) ([]*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(ctx, f, opts...)
}
