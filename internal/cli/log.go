// Package cli implements the phylonet command-line interface.
//
// This package provides commands for parsing phylogenetic documents,
// converting between tree formats, computing layouts and statistics, and
// watching a file for changes. The CLI is built using cobra, reads its
// configuration through viper, and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - parse: Summarize every tree of a Newick, NEXUS, PhyloXML or NeXML file
//   - convert: Convert one or more files to another format concurrently
//   - layout: Compute node coordinates as JSON or YAML
//   - stats: Print tree statistics, lineages-through-time and skyline plots
//   - reroot: Reroot trees above a labelled node
//   - watch: Reload a file whenever it changes
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Setting
// verbose: true in the config file has the same effect.
//
// # Example
//
//	import "github.com/matzehuels/phylonet/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with an elapsed key holding the time since
// start, rounded to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
