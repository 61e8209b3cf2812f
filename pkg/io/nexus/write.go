package nexus

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Write writes trees as a NEXUS TREES block. Trees without a name are called
// tree_1, tree_2, ... by position.
func Write(w io.Writer, trees []*tree.Tree) error {
	var b strings.Builder
	b.WriteString("#NEXUS\n\nbegin trees;\n")
	for i, t := range trees {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("tree_%d", i+1)
		}
		fmt.Fprintf(&b, "\ttree %s = [&R] %s\n", quoteName(name), newick.Format(t))
	}
	b.WriteString("end;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func quoteName(s string) string {
	if !strings.ContainsAny(s, " \t\n'=[];,()") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
