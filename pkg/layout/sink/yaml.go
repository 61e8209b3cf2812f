package sink

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/phylonet/pkg/layout"
)

// YAML writes l to w as a YAML document. It shares the document shape of
// [JSON]; [WithIndent] is ignored.
func YAML(w io.Writer, l *layout.Layout, opts ...Option) error {
	r := newRenderer(opts)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.build(l)); err != nil {
		return err
	}
	return enc.Close()
}
