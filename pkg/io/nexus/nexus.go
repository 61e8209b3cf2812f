// Package nexus reads and writes the TREES block of NEXUS documents.
//
// Reading strips bracket comments (annotation blocks starting with "[&" are
// kept), splits the text into ';'-terminated statements and interprets the
// translate table and tree statements found inside "begin trees;". Each tree
// body is handed to the Newick parser, and leaf labels found in the translate
// table are replaced by their display labels. Other blocks are ignored.
package nexus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/io/outcome"
	"github.com/matzehuels/phylonet/pkg/tree"
)

const header = "#nexus"

// treeStatement matches "tree <name> [..] = [..] <body>". Bracket blocks
// before and after '=' carry rooting or likelihood annotations and are
// dropped.
var treeStatement = regexp.MustCompile(`(?is)^tree\s+(?:\*\s*)?('(?:[^']|'')*'|[^\s=\[]+)\s*(?:\[[^\]]*\]\s*)*=\s*(?:\[[^\]]*\]\s*)*(.*)$`)

// HasHeader reports whether input starts with the #NEXUS token, ignoring case
// and leading whitespace.
func HasHeader(input string) bool {
	s := strings.TrimSpace(input)
	return len(s) >= len(header) && strings.EqualFold(s[:len(header)], header)
}

// Parse reads every tree statement of a NEXUS document.
func Parse(input string) ([]outcome.Outcome, error) {
	if !HasHeader(input) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing #NEXUS header")
	}
	body := strings.TrimSpace(input)[len(header):]

	var (
		outcomes  []outcome.Outcome
		block     string
		translate map[string]string
	)
	for _, stmt := range newick.SplitStatements(stripComments(body)) {
		fields := strings.Fields(stmt)
		switch keyword := strings.ToLower(fields[0]); {
		case keyword == "begin" && len(fields) > 1:
			block = strings.ToLower(fields[1])
			translate = nil
		case keyword == "end" || keyword == "endblock":
			block = ""
		case block != "trees":
		case keyword == "translate":
			translate = parseTranslate(strings.TrimSpace(stmt[len(fields[0]):]))
		case keyword == "tree":
			t, err := parseTree(stmt, translate)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, outcome.Parsed(t))
		}
	}
	return outcomes, nil
}

func parseTree(stmt string, translate map[string]string) (*tree.Tree, error) {
	m := treeStatement.FindStringSubmatch(stmt)
	if m == nil {
		return nil, errors.New(errors.ErrCodeGrammar, "malformed tree statement %q", abbreviate(stmt))
	}
	name := unquote(m[1])
	t, err := newick.Parse(m[2])
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", name, err)
	}
	t.Name = name
	for _, n := range t.Leaves() {
		if label, ok := translate[n.Label]; ok {
			n.Label = label
		}
	}
	return t, nil
}

// parseTranslate reads comma separated "key label" pairs.
func parseTranslate(s string) map[string]string {
	table := make(map[string]string)
	for _, entry := range splitUnquoted(s, ',') {
		entry = strings.TrimSpace(entry)
		i := strings.IndexFunc(entry, isSpace)
		if i < 0 {
			continue
		}
		table[entry[:i]] = unquote(strings.TrimSpace(entry[i:]))
	}
	return table
}

// stripComments removes bracket comments, honouring nesting and single
// quotes. Blocks opened by "[&" are kept verbatim.
func stripComments(s string) string {
	var (
		b     strings.Builder
		depth int
		keep  bool
		quote bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case depth == 0 && quote:
			b.WriteByte(c)
			quote = c != '\''
		case depth == 0 && c == '\'':
			quote = true
			b.WriteByte(c)
		case c == '[':
			if depth == 0 {
				keep = i+1 < len(s) && s[i+1] == '&'
			}
			depth++
			if keep {
				b.WriteByte(c)
			}
		case c == ']' && depth > 0:
			depth--
			if keep {
				b.WriteByte(c)
			}
		default:
			if depth == 0 || keep {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func splitUnquoted(s string, sep byte) []string {
	var (
		out   []string
		quote bool
		start int
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'':
			quote = !quote
		case s[i] == sep && !quote:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func abbreviate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
