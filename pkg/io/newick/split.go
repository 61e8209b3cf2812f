package newick

import "strings"

// SplitStatements splits input at every ';' that is outside quotes and
// bracket blocks. Statements are returned trimmed and without their
// terminator; blank statements are dropped.
func SplitStatements(input string) []string {
	var (
		out   []string
		quote byte
		depth int
		start int
	)
	flush := func(end int) {
		if s := strings.TrimSpace(input[start:end]); s != "" {
			out = append(out, s)
		}
	}
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0:
			switch c {
			case '[':
				depth++
			case ']':
				depth--
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ';':
			flush(i)
			start = i + 1
		}
	}
	flush(len(input))
	return out
}
