package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/phylonet/pkg/observability"
	"github.com/matzehuels/phylonet/pkg/session"
)

// defaultDebounce is how long a file must stay quiet before it is reloaded.
const defaultDebounce = 200 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Reload a tree file whenever it changes",
		Long: `Parse FILE and re-parse it every time it is written. A reload that fails keeps
the previously loaded trees. Large files are parsed in the background; when a
newer change arrives first, the older result is discarded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before reloading")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, w io.Writer, path string, debounce time.Duration) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	doc := session.New(
		session.WithLogger(c.Logger),
		session.WithDeferThreshold(c.Config.DeferThreshold),
	)
	r := newReloader(abs, doc, c.Logger, w)
	if err := r.initial(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	// Watch the directory: editors often replace files by rename.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	printInfo(w, "Watching %s (Ctrl-C to stop)", path)
	return watchLoop(ctx, fsw.Events, fsw.Errors, filepath.Base(abs), debounce, c.Logger, func() { r.reload(ctx) })
}

// watchLoop calls onChange once target has seen no write, create or rename
// event for debounce. It returns nil when ctx is done or the event channel
// closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, target string, debounce time.Duration, logger *log.Logger, onChange func()) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Remove) {
				logger.Warn("watched file removed", "path", event.Name)
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				fire = time.After(debounce)
			}

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// reloader feeds a file into a session document.
type reloader struct {
	path   string
	doc    *session.Document
	logger *log.Logger

	mu  sync.Mutex // serializes output
	out io.Writer

	// report is called with the result of every completed reload.
	report func(gen uint64, err error)
}

func newReloader(path string, doc *session.Document, logger *log.Logger, out io.Writer) *reloader {
	r := &reloader{path: path, doc: doc, logger: logger, out: out}
	r.report = r.print
	return r
}

// initial loads the file synchronously.
func (r *reloader) initial(ctx context.Context) error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", r.path, err)
	}
	if err := r.doc.Load(ctx, string(data)); err != nil {
		return fmt.Errorf("parse %s: %w", r.path, err)
	}
	r.print(r.doc.Generation(), nil)
	return nil
}

// reload starts a deferred load of the file and reports its result when
// it completes. Superseded loads are not reported.
func (r *reloader) reload(ctx context.Context) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.finish(ctx, r.doc.Generation(), fmt.Errorf("read %s: %w", r.path, err))
		return
	}
	done := r.doc.LoadDeferred(ctx, string(data))
	gen := r.doc.Generation()
	go func() {
		err := <-done
		if stderrors.Is(err, session.ErrSuperseded) {
			r.logger.Debug("reload superseded", "path", r.path, "generation", gen)
			return
		}
		r.finish(ctx, gen, err)
	}()
}

func (r *reloader) finish(ctx context.Context, gen uint64, err error) {
	observability.Watch().OnReload(ctx, r.path, gen, err)
	if err != nil {
		r.logger.Warn("reload failed, keeping previous trees", "path", r.path, "err", err)
	}
	r.report(gen, err)
}

func (r *reloader) print(gen uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		printWarning(r.out, "Reload %d failed: %v", gen, err)
		return
	}
	printSuccess(r.out, "Loaded %s: %d trees (generation %d)", filepath.Base(r.path), r.doc.Len(), gen)
}
