package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/pipeline"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// rerootOpts holds the command-line flags for the reroot command.
type rerootOpts struct {
	label       string
	format      string
	inputFormat string
	tree        int // 1-based, 0 = all trees
	output      string
}

// rerootCommand creates the reroot command.
func (c *CLI) rerootCommand() *cobra.Command {
	var opts rerootOpts

	cmd := &cobra.Command{
		Use:   "reroot FILE --label LABEL",
		Short: "Reroot trees above a labelled node",
		Long: `Place a new root halfway along the branch above the node labelled LABEL and
write the result. Every tree of FILE is rerooted unless --tree selects one.

Examples:
  phylonet reroot --label Outgroup primates.nwk
  phylonet reroot --label Gallus -f nexus -o rooted.nex birds.phyloxml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReroot(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.label, "label", "l", "", "label of the node above which to root")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (default: config default_format)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format (default: detect)")
	cmd.Flags().IntVar(&opts.tree, "tree", 0, "1-based index of the only tree to reroot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func (c *CLI) runReroot(ctx context.Context, cmd *cobra.Command, path string, opts rerootOpts) error {
	format, err := c.outputFormat(opts.format)
	if err != nil {
		return err
	}
	trees, err := c.parseInput(ctx, cmd, path, opts.inputFormat)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if opts.tree != 0 {
		idx, err := treeIndex(opts.tree, len(trees))
		if err != nil {
			return err
		}
		trees = trees[idx : idx+1]
	}

	rooted, err := c.rerootAll(trees, opts.label)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := phyloio.Write(&buf, rooted, format); err != nil {
		return err
	}
	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	w := cmd.ErrOrStderr()
	printSuccess(w, "Rerooted %d trees above %s", len(rooted), opts.label)
	printFile(w, opts.output)
	return nil
}

// rerootAll reroots every tree above label. A tree without the label fails
// the whole batch.
func (c *CLI) rerootAll(trees []*tree.Tree, label string) ([]*tree.Tree, error) {
	runner := c.newRunner()
	out := make([]*tree.Tree, len(trees))
	for i, t := range trees {
		r, err := runner.Prepare(t, pipeline.Options{Reroot: label})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", treeName(t, i), err)
		}
		out[i] = r
	}
	return out, nil
}
