// Package observability provides optional hooks for instrumenting the
// pipeline.
//
// Hooks let a binary attach metrics or tracing without the library depending
// on any backend. The defaults are no-ops; main registers real hooks once at
// startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&promHooks{})
//	    // ... run application
//	}
//
// Library code emits events around each stage:
//
//	observability.Pipeline().OnParseStart(ctx, "nexus", path)
//	trees, err := io.ReadFile(ctx, path)
//	observability.Pipeline().OnParseComplete(ctx, "nexus", path, len(trees), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the parse, layout and export stages.
type PipelineHooks interface {
	OnParseStart(ctx context.Context, format, source string)
	OnParseComplete(ctx context.Context, format, source string, trees int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, mode string, nodes int)
	OnLayoutComplete(ctx context.Context, mode string, duration time.Duration, err error)

	OnExportStart(ctx context.Context, format string)
	OnExportComplete(ctx context.Context, format string, bytes int, duration time.Duration, err error)
}

// WatchHooks receives events from file watching.
type WatchHooks interface {
	OnReload(ctx context.Context, path string, generation uint64, err error)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnExportStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {
}

// NoopWatchHooks ignores every event.
type NoopWatchHooks struct{}

func (NoopWatchHooks) OnReload(context.Context, string, uint64, error) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	watchHooks    WatchHooks    = NoopWatchHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. A nil value is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetWatchHooks registers watch hooks. A nil value is ignored.
func SetWatchHooks(h WatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		watchHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Watch returns the registered watch hooks.
func Watch() WatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return watchHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	watchHooks = NoopWatchHooks{}
}
