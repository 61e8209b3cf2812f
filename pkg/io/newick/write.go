package newick

import (
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/phylonet/pkg/tree"
)

// Option configures Newick output.
type Option func(*writer)

// WithoutAnnotations omits [&...] annotation blocks.
func WithoutAnnotations() Option {
	return func(w *writer) { w.skipAnnotations = true }
}

// WithLabeller overrides the label written for each node. NEXUS output uses
// it to substitute translate-table keys.
func WithLabeller(fn func(*tree.Node) string) Option {
	return func(w *writer) { w.label = fn }
}

type writer struct {
	b               strings.Builder
	t               *tree.Tree
	skipAnnotations bool
	label           func(*tree.Node) string
}

// Format returns the Extended-Newick serialization of t, terminated by ';'.
func Format(t *tree.Tree, opts ...Option) string {
	w := &writer{t: t, label: func(n *tree.Node) string { return n.Label }}
	for _, opt := range opts {
		opt(w)
	}
	w.node(t.Root())
	w.b.WriteByte(';')
	return w.b.String()
}

// Write writes the serialization of t followed by a newline.
func Write(out io.Writer, t *tree.Tree, opts ...Option) error {
	_, err := io.WriteString(out, Format(t, opts...)+"\n")
	return err
}

func (w *writer) node(n *tree.Node) {
	if !n.IsLeaf() {
		w.b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				w.b.WriteByte(',')
			}
			w.node(w.t.Node(c))
		}
		w.b.WriteByte(')')
	}
	w.b.WriteString(quoteLabel(w.label(n)))
	if n.IsHybrid() {
		w.b.WriteByte('#')
		w.b.WriteString(quoteLabel(n.HybridID))
	}
	if !w.skipAnnotations && len(n.Annotation) > 0 {
		w.b.WriteString(FormatAnnotation(n.Annotation))
	}
	if n.HasBranchLength() {
		w.b.WriteByte(':')
		w.b.WriteString(strconv.FormatFloat(n.BranchLength, 'g', -1, 64))
	}
}

// FormatAnnotation renders a as a [&key=value,...] block with keys in sorted
// order. String values are double quoted.
func FormatAnnotation(a tree.Annotation) string {
	var b strings.Builder
	b.WriteString("[&")
	for i, k := range a.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteKey(k))
		b.WriteByte('=')
		writeValue(&b, a[k])
	}
	b.WriteByte(']')
	return b.String()
}

func writeValue(b *strings.Builder, v tree.Value) {
	switch v.Kind {
	case tree.KindNumber:
		b.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
	case tree.KindList:
		b.WriteByte('{')
		for i, e := range v.List {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, e)
		}
		b.WriteByte('}')
	default:
		b.WriteString(quote(v.Str, '"'))
	}
}

func quoteLabel(s string) string {
	if s == "" || !strings.ContainsFunc(s, needsQuote) {
		return s
	}
	return quote(s, '\'')
}

func quoteKey(s string) string {
	if s != "" && !strings.ContainsAny(s, ",[]{}=\"' \t\n") {
		return s
	}
	return quote(s, '"')
}

func needsQuote(r rune) bool {
	return strings.ContainsRune("(),:;[]#'\"", r) || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func quote(s string, q byte) string {
	qs := string(q)
	return qs + strings.ReplaceAll(s, qs, qs+qs) + qs
}
