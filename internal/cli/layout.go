package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/phylonet/pkg/layout"
	"github.com/matzehuels/phylonet/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	inputFormat  string
	style        string // preset name from style_file
	mode         string
	logScale     bool
	inlineRecomb bool
	noSort       bool
	tree         int // 1-based
	output       string
	pipeline     pipeline.Options
}

// layoutCommand creates the layout command for computing node coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{tree: 1}
	opts.pipeline.Output = pipeline.DefaultOutput

	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Compute a 2D layout of a tree or network",
		Long: `Compute a 2D layout of one tree of FILE and write it as JSON or YAML.

The style starts from the layout section of the config file, or from the
named preset in style_file when --style is given. Explicit flags override both.

Examples:
  phylonet layout primates.nwk
  phylonet layout --mode cladogram --collapse Hominidae primates.nwk
  phylonet layout --style dated --format yaml -o flu.layout.yaml flu.nex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.inputFormat, "input-format", "", "input format (default: detect)")
	f.StringVar(&opts.style, "style", "", "named style preset from style_file")
	f.StringVar(&opts.mode, "mode", "", "layout mode: standard, cladogram, transmission")
	f.BoolVar(&opts.logScale, "log-scale", false, "scale heights logarithmically")
	f.BoolVar(&opts.inlineRecomb, "inline-recomb", true, "draw reticulation destinations inline with their source")
	f.BoolVar(&opts.noSort, "no-sort", false, "keep the input child order")
	f.IntVar(&opts.tree, "tree", opts.tree, "1-based index of the tree to lay out")
	f.StringVar(&opts.pipeline.Reroot, "reroot", "", "reroot above the node with this label")
	f.StringSliceVar(&opts.pipeline.Collapse, "collapse", nil, "collapse the clade with this label (repeatable)")
	f.BoolVar(&opts.pipeline.Cartoon, "cartoon", false, "draw collapsed clades as a single slot")
	f.BoolVar(&opts.pipeline.StripZeroLength, "strip-zero-length", false, "remove zero-length pendant branches first")
	f.BoolVar(&opts.pipeline.Labels, "labels", false, "include labels and annotations in the output")
	f.StringVar(&opts.pipeline.Output, "format", opts.pipeline.Output, "output format: json, yaml")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// resolveStyle combines the configured style, an optional preset and the
// flags explicitly set on cmd.
func (c *CLI) resolveStyle(cmd *cobra.Command, opts layoutOpts) (layout.Style, error) {
	s, err := c.Config.Style(opts.style)
	if err != nil {
		return layout.Style{}, err
	}
	f := cmd.Flags()
	if f.Changed("mode") {
		m, err := layout.ParseMode(opts.mode)
		if err != nil {
			return layout.Style{}, err
		}
		s.Mode = m
	}
	if f.Changed("log-scale") {
		s.LogScale = opts.logScale
	}
	if f.Changed("inline-recomb") {
		s.InlineRecomb = opts.inlineRecomb
	}
	if f.Changed("no-sort") {
		s.SortNodes = !opts.noSort
	}
	return s, s.Validate()
}

// runLayout parses the input, computes the layout and writes the artifact.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, path string, opts layoutOpts) error {
	style, err := c.resolveStyle(cmd, opts)
	if err != nil {
		return err
	}
	trees, err := c.parseInput(ctx, cmd, path, opts.inputFormat)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	idx, err := treeIndex(opts.tree, len(trees))
	if err != nil {
		return err
	}

	p := opts.pipeline
	p.Style = style
	p.Logger = c.Logger
	if err := p.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner()
	prepared, err := runner.Prepare(trees[idx], p)
	if err != nil {
		return err
	}
	l, err := runner.ComputeLayout(ctx, prepared, p)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	artifact, err := runner.Export(ctx, l, p)
	if err != nil {
		return fmt.Errorf("export layout: %w", err)
	}
	c.Logger.Debug("computed layout", "mode", l.Mode, "positions", len(l.Positions), "groups", len(l.Groups))

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(artifact)
		return err
	}
	if err := os.WriteFile(opts.output, artifact, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	w := cmd.ErrOrStderr()
	printSuccess(w, "Layout complete")
	printFile(w, opts.output)
	return nil
}
