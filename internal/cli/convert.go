package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	format      string // output format
	inputFormat string // forced input format (detect if empty)
	outDir      string // output directory (next to each input if empty)
	jobs        int    // maximum files converted at once
}

// convertCommand creates the convert command for rewriting tree files in
// another format.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert tree files to another format",
		Long: `Convert one or more tree files to Newick, NEXUS, PhyloXML or NeXML.

Each input is written next to itself (or into --output-dir) with the target
format's extension. Files are converted concurrently.

Examples:
  phylonet convert -f nexus *.nwk
  phylonet convert -f phyloxml -o out/ primates.nex flu.nexml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: newick, nexus, phyloxml, nexml (default: config default_format)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format (default: detect)")
	cmd.Flags().StringVarP(&opts.outDir, "output-dir", "o", "", "output directory (default: next to each input)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "maximum files converted at once")

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, paths []string, opts convertOpts) error {
	format, err := c.outputFormat(opts.format)
	if err != nil {
		return err
	}
	var readOpts []phyloio.Option
	readOpts = append(readOpts, phyloio.WithLogger(c.Logger))
	if opts.inputFormat != "" {
		in, err := phyloio.ParseFormat(opts.inputFormat)
		if err != nil {
			return err
		}
		readOpts = append(readOpts, phyloio.WithFormat(in))
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	outputs := make([]string, len(paths))
	for i, p := range paths {
		outputs[i] = convertedPath(p, opts.outDir, format)
		if filepath.Clean(outputs[i]) == filepath.Clean(p) {
			return errors.New(errors.ErrCodeInvalidOperation, "%s is already %s; refusing to overwrite it", p, format)
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Converting %d files to %s...", len(paths), format))
	spinner.Start()

	counts, err := convertFiles(cmd.Context(), paths, outputs, format, opts.jobs, readOpts)
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return err
	}
	spinner.Stop()
	prog.done("converted files", "files", len(paths), "format", format)

	w := cmd.OutOrStdout()
	printSuccess(w, "Converted %d files to %s", len(paths), format)
	for i, out := range outputs {
		printFile(w, fmt.Sprintf("%s (%d trees)", out, counts[i]))
	}
	return nil
}

// convertFiles converts paths[i] to outputs[i] concurrently, at most jobs at
// a time. It returns the number of trees written per file.
func convertFiles(ctx context.Context, paths, outputs []string, format phyloio.Format, jobs int, readOpts []phyloio.Option) ([]int, error) {
	counts := make([]int, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := range paths {
		g.Go(func() error {
			trees, err := phyloio.ReadFile(ctx, paths[i], readOpts...)
			if err != nil {
				return fmt.Errorf("%s: %w", paths[i], err)
			}
			if err := phyloio.WriteFile(outputs[i], trees, format); err != nil {
				return fmt.Errorf("%s: %w", paths[i], err)
			}
			counts[i] = len(trees)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// convertedPath returns the output path for input converted to format.
func convertedPath(input, outDir string, format phyloio.Format) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + format.Extension()
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}
