package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/phylonet/internal/config"
	"github.com/matzehuels/phylonet/pkg/buildinfo"
	"github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/pipeline"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and config lookup.
const appName = "phylonet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// stdinPath is the FILE argument that reads from standard input.
const stdinPath = "-"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configFile string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Phylonet parses, transforms and lays out phylogenetic trees and networks",
		Long: `Phylonet reads phylogenetic trees and reticulate networks from Newick,
Extended-Newick, NEXUS, PhyloXML and NeXML documents, converts between those
formats, computes tree statistics and produces 2D layouts for external renderers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default .phylonet.yaml)")

	// Register all subcommands
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.rerootCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// loadConfig reads configuration from file and environment into c.Config.
func (c *CLI) loadConfig() error {
	v, err := config.New(c.configFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// parseInput reads and parses every tree of path.
func (c *CLI) parseInput(ctx context.Context, cmd *cobra.Command, path, format string) ([]*tree.Tree, error) {
	input, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{}
	if format != "" {
		f, err := phyloio.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		opts.Format = f
	}
	return c.newRunner().Parse(ctx, input, opts)
}

// outputFormat resolves a -f flag value, falling back to the configured
// default format.
func (c *CLI) outputFormat(name string) (phyloio.Format, error) {
	if name == "" {
		return c.Config.Format(), nil
	}
	return phyloio.ParseFormat(name)
}

// treeIndex converts a 1-based --tree flag into a slice index.
func treeIndex(n, count int) (int, error) {
	if n < 1 || n > count {
		return 0, errors.New(errors.ErrCodeNotFound, "tree %d requested, document has %d", n, count)
	}
	return n - 1, nil
}

// treeName returns a display name for the i-th tree.
func treeName(t *tree.Tree, i int) string {
	if t.Name != "" {
		return t.Name
	}
	return "tree " + strconv.Itoa(i+1)
}
