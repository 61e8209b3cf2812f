package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/layout"
	"github.com/matzehuels/phylonet/pkg/layout/sink"
	"github.com/matzehuels/phylonet/pkg/observability"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Runner executes pipeline stages and logs their progress.
//
// The Runner is stateless except for the logger; multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete parse → prepare → layout → export pipeline.
func (r *Runner) Execute(ctx context.Context, input string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	trees, err := r.Parse(ctx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Trees = trees
	result.Stats.TreeCount = len(trees)
	result.Stats.ParseTime = time.Since(parseStart)

	opts.Logger.Info("parsed trees",
		"trees", len(trees),
		"duration", result.Stats.ParseTime)

	// Stage 2: Prepare
	prepareStart := time.Now()
	if opts.TreeIndex >= len(trees) {
		return nil, errors.New(errors.ErrCodeNotFound, "tree %d requested, document has %d", opts.TreeIndex+1, len(trees))
	}
	t, err := r.Prepare(trees[opts.TreeIndex], opts)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	result.Tree = t
	result.Stats.NodeCount = t.Len()
	result.Stats.PrepareTime = time.Since(prepareStart)

	// Stage 3: Layout
	layoutStart := time.Now()
	l, err := r.ComputeLayout(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("computed layout",
		"mode", l.Mode,
		"positions", len(l.Positions),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Export
	exportStart := time.Now()
	artifact, err := r.Export(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifact = artifact
	result.Stats.ExportTime = time.Since(exportStart)

	opts.Logger.Info("exported layout",
		"output", opts.Output,
		"bytes", len(artifact),
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Parse reads every tree in input.
func (r *Runner) Parse(ctx context.Context, input string, opts Options) ([]*tree.Tree, error) {
	r.applyLogger(&opts)
	format := opts.Format
	if format == "" {
		format = phyloio.Detect(input)
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnParseStart(ctx, string(format), "")
	trees, err := phyloio.Parse(ctx, input, phyloio.WithFormat(format), phyloio.WithLogger(opts.Logger))
	hooks.OnParseComplete(ctx, string(format), "", len(trees), time.Since(start), err)
	return trees, err
}

// Prepare returns a copy of t with the structural edits of opts applied.
// Unknown labels are NOT_FOUND errors.
func (r *Runner) Prepare(t *tree.Tree, opts Options) (*tree.Tree, error) {
	r.applyLogger(&opts)
	work := t.Copy()

	if opts.StripZeroLength {
		if n := work.StripZeroLengthBranches(); n > 0 {
			opts.Logger.Debug("stripped zero-length branches", "removed", n)
		}
		if kept := keptZeroLengthLeaves(work); len(kept) > 0 {
			opts.Logger.Debug("kept zero-length leaves under labelled parents", "leaves", kept)
		}
	}
	if opts.Reroot != "" {
		n, ok := work.FindByLabel(opts.Reroot)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no node labelled %q", opts.Reroot)
		}
		if err := work.Reroot(n.ID); err != nil {
			return nil, err
		}
		opts.Logger.Debug("rerooted tree", "label", opts.Reroot)
	}
	for _, label := range opts.Collapse {
		n, ok := work.FindByLabel(label)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no clade labelled %q", label)
		}
		work.SetCollapsed(n.ID, opts.Cartoon)
	}
	return work, nil
}

// ComputeLayout lays out t with opts.Style.
func (r *Runner) ComputeLayout(ctx context.Context, t *tree.Tree, opts Options) (*layout.Layout, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, string(opts.Style.Mode), t.Len())
	l, err := layout.Compute(t, opts.Style)
	hooks.OnLayoutComplete(ctx, string(opts.Style.Mode), time.Since(start), err)
	return l, err
}

// Export serializes l in opts.Output.
func (r *Runner) Export(ctx context.Context, l *layout.Layout, opts Options) ([]byte, error) {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if err := ValidateOutput(opts.Output); err != nil {
		return nil, err
	}

	var sinkOpts []sink.Option
	if opts.Labels {
		sinkOpts = append(sinkOpts, sink.WithLabels())
	}
	if opts.Indent != "" {
		sinkOpts = append(sinkOpts, sink.WithIndent(opts.Indent))
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnExportStart(ctx, opts.Output)

	var buf bytes.Buffer
	var err error
	switch opts.Output {
	case OutputYAML:
		err = sink.YAML(&buf, l, sinkOpts...)
	default:
		err = sink.JSON(&buf, l, sinkOpts...)
	}
	hooks.OnExportComplete(ctx, opts.Output, buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// keptZeroLengthLeaves lists the labelled zero-length leaves that stripping
// leaves in place because their parent is labelled too.
func keptZeroLengthLeaves(t *tree.Tree) []string {
	var kept []string
	for _, n := range t.Leaves() {
		if n.IsRoot() || n.IsHybrid() || n.Label == "" || n.BranchLength != 0 {
			continue
		}
		if t.Node(n.Parent).Label != "" {
			kept = append(kept, n.Label)
		}
	}
	return kept
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
