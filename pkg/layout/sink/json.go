package sink

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/phylonet/pkg/layout"
)

// JSON writes l to w as a JSON document followed by a newline.
//
// JSON returns an error only if writing fails. It does not modify l and is
// safe to call concurrently.
func JSON(w io.Writer, l *layout.Layout, opts ...Option) error {
	r := newRenderer(opts)
	enc := json.NewEncoder(w)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	return enc.Encode(r.build(l))
}
