package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/phylonet/pkg/stats"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		format  string
		treeN   int
		ltt     bool
		skyline bool
	)

	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print statistics of a tree",
		Long: `Print the leaf count, Colless imbalance, total length and root height of one
tree of FILE. Time trees can also report lineages-through-time (--ltt) and the
classic skyline plot (--skyline).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), cmd, args[0], format, treeN, ltt, skyline)
		},
	}

	cmd.Flags().StringVar(&format, "input-format", "", "input format (default: detect)")
	cmd.Flags().IntVar(&treeN, "tree", 1, "1-based index of the tree")
	cmd.Flags().BoolVar(&ltt, "ltt", false, "print lineages through time")
	cmd.Flags().BoolVar(&skyline, "skyline", false, "print the classic skyline plot")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, cmd *cobra.Command, path, format string, treeN int, ltt, skyline bool) error {
	trees, err := c.parseInput(ctx, cmd, path, format)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	idx, err := treeIndex(treeN, len(trees))
	if err != nil {
		return err
	}
	t := trees[idx]

	w := cmd.OutOrStdout()
	printSummary(w, treeName(t, idx), stats.Summarize(t))

	if ltt {
		if err := printLTT(w, t); err != nil {
			return err
		}
	}
	if skyline {
		if err := printSkyline(w, t); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, name string, s stats.Summary) {
	printTitle(w, name)
	printKeyValue(w, "leaves", strconv.Itoa(s.Leaves))
	printKeyValue(w, "nodes", strconv.Itoa(s.Nodes))
	printKeyValue(w, "reticulations", strconv.Itoa(s.Reticulations))
	printKeyValue(w, "time tree", strconv.FormatBool(s.TimeTree))
	printKeyValue(w, "length", formatFloat(s.Length))
	printKeyValue(w, "root height", formatFloat(s.RootHeight))
	printKeyValue(w, "mean branch length", formatFloat(s.MeanBranchLength))
	printKeyValue(w, "colless", strconv.Itoa(s.Colless))
}

func printLTT(w io.Writer, t *tree.Tree) error {
	series, err := stats.LTT(t)
	if err != nil {
		return err
	}
	rows := make([][]string, len(series.Ages))
	for i := range series.Ages {
		rows[i] = []string{formatFloat(series.Ages[i]), strconv.Itoa(series.Lineages[i])}
	}
	printNewline(w)
	printTitle(w, "Lineages through time")
	fmt.Fprintln(w, renderTable([]string{"age", "lineages"}, rows))
	return nil
}

func printSkyline(w io.Writer, t *tree.Tree) error {
	plot, err := stats.Skyline(t)
	if err != nil {
		return err
	}
	rows := make([][]string, len(plot.Theta))
	for i := range plot.Theta {
		rows[i] = []string{
			formatFloat(plot.Start[i]),
			formatFloat(plot.End[i]),
			strconv.Itoa(plot.Lineages[i]),
			formatFloat(plot.Theta[i]),
		}
	}
	printNewline(w)
	printTitle(w, "Skyline")
	fmt.Fprintln(w, renderTable([]string{"start", "end", "lineages", "theta"}, rows))
	return nil
}
