// Package session holds the state of an open tree document.
//
// A [Document] owns the trees parsed from one input and the index of the
// tree currently shown. Core packages stay stateless; callers that need a
// "current tree" keep a Document and pass trees from it explicitly.
//
// # Loading
//
// [Document.Load] parses synchronously. [Document.LoadDeferred] parses small
// inputs synchronously and large ones in a single goroutine, so a caller
// driving a UI is not blocked:
//
//	doc := session.New(session.WithLogger(logger))
//	done := doc.LoadDeferred(ctx, input)
//	// ... keep handling events ...
//	if err := <-done; err != nil && !errors.Is(err, session.ErrSuperseded) {
//	    return err
//	}
//
// Every load takes a generation token. When a newer load has started before
// an older one completes, the older result is dropped and its channel
// reports [ErrSuperseded]; the newest load always wins.
//
// # Concurrency
//
// All methods are safe for concurrent use. The mutex guards the document
// fields only; parsing runs outside it. Trees returned by the document are
// shared and must not be mutated concurrently.
package session

import (
	"context"
	"errors"
	stdio "io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	perrors "github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// ErrSuperseded is reported by a load whose result was dropped because a
// newer load started first.
var ErrSuperseded = errors.New("superseded by a newer load")

// DefaultDeferThreshold is the input size in bytes from which
// [Document.LoadDeferred] parses in the background.
const DefaultDeferThreshold = 1 << 20

// Document is the caller-owned state of one open tree document.
type Document struct {
	// ID identifies the document for logging.
	ID string

	logger         *log.Logger
	deferThreshold int
	parseOpts      []phyloio.Option

	mu      sync.Mutex
	trees   []*tree.Tree
	current int
	gen     uint64
}

// Option configures a [Document].
type Option func(*Document)

// WithLogger sets the logger used for load events and skipped trees.
func WithLogger(logger *log.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// WithDeferThreshold sets the size in bytes from which LoadDeferred parses in
// the background. Zero or negative values always defer.
func WithDeferThreshold(n int) Option {
	return func(d *Document) { d.deferThreshold = n }
}

// WithParseOptions passes options through to [phyloio.Parse].
func WithParseOptions(opts ...phyloio.Option) Option {
	return func(d *Document) { d.parseOpts = append(d.parseOpts, opts...) }
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		ID:             uuid.NewString(),
		logger:         log.New(stdio.Discard),
		deferThreshold: DefaultDeferThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load parses input and replaces the document's trees. On error the
// document keeps its previous trees.
func (d *Document) Load(ctx context.Context, input string) error {
	return d.load(ctx, d.begin(), input)
}

// LoadDeferred is like Load but returns at once for inputs of at least the
// defer threshold, parsing them in one goroutine. The returned channel
// receives the result and is then closed.
func (d *Document) LoadDeferred(ctx context.Context, input string) <-chan error {
	done := make(chan error, 1)
	gen := d.begin()
	if d.deferThreshold > 0 && len(input) < d.deferThreshold {
		done <- d.load(ctx, gen, input)
		close(done)
		return done
	}

	d.logger.Debug("deferring parse", "document", d.ID, "generation", gen, "bytes", len(input))
	go func() {
		defer close(done)
		done <- d.load(ctx, gen, input)
	}()
	return done
}

func (d *Document) begin() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	return d.gen
}

func (d *Document) load(ctx context.Context, gen uint64, input string) error {
	opts := append([]phyloio.Option{phyloio.WithLogger(d.logger)}, d.parseOpts...)
	trees, err := phyloio.Parse(ctx, input, opts...)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		d.logger.Debug("dropping stale load", "document", d.ID, "generation", gen, "latest", d.gen)
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	d.trees = trees
	d.current = 0
	d.logger.Info("loaded document", "document", d.ID, "generation", gen, "trees", len(trees))
	return nil
}

// Generation returns the token of the most recent load.
func (d *Document) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Len returns the number of trees in the document.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.trees)
}

// Trees returns the document's trees in input order.
func (d *Document) Trees() []*tree.Tree {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*tree.Tree, len(d.trees))
	copy(out, d.trees)
	return out
}

// Current returns the current tree and its index, or nil and -1 for an
// empty document.
func (d *Document) Current() (*tree.Tree, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.trees) == 0 {
		return nil, -1
	}
	return d.trees[d.current], d.current
}

// SetCurrent selects the tree at index i.
func (d *Document) SetCurrent(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.trees) {
		return perrors.New(perrors.ErrCodeNotFound, "tree %d out of range (document has %d)", i, len(d.trees))
	}
	d.current = i
	return nil
}

// Next advances to the following tree. It reports false at the last tree.
func (d *Document) Next() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current+1 >= len(d.trees) {
		return false
	}
	d.current++
	return true
}

// Prev moves back to the preceding tree. It reports false at the first tree.
func (d *Document) Prev() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == 0 {
		return false
	}
	d.current--
	return true
}

// Replace swaps the tree at index i, for example after rerooting a copy.
func (d *Document) Replace(i int, t *tree.Tree) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.trees) {
		return perrors.New(perrors.ErrCodeNotFound, "tree %d out of range (document has %d)", i, len(d.trees))
	}
	d.trees[i] = t
	return nil
}
