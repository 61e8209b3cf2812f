package newick

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/phylonet/pkg/errors"
)

type tokenType int

const (
	tokOpen tokenType = iota
	tokClose
	tokComma
	tokSemicolon
	tokColon
	tokAnnotationStart
	tokAnnotationEnd
	tokListStart
	tokListEnd
	tokEquals
	tokHash
	tokString
	tokEOF
)

var tokenNames = map[tokenType]string{
	tokOpen:            "'('",
	tokClose:           "')'",
	tokComma:           "','",
	tokSemicolon:       "';'",
	tokColon:           "':'",
	tokAnnotationStart: "'[&'",
	tokAnnotationEnd:   "']'",
	tokListStart:       "'{'",
	tokListEnd:         "'}'",
	tokEquals:          "'='",
	tokHash:            "'#'",
	tokString:          "STRING",
	tokEOF:             "end of input",
}

func (typ tokenType) String() string {
	if name, ok := tokenNames[typ]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(typ))
}

type token struct {
	typ    tokenType
	val    string
	quoted bool
	pos    int
}

func (tok token) String() string {
	if tok.typ == tokString {
		return fmt.Sprintf("STRING %q", tok.val)
	}
	return tok.typ.String()
}

type lexMode int

const (
	modeDefault lexMode = iota
	modeAnnotation
)

// rule is one token pattern. Patterns are anchored and tried in order; the
// first match wins.
type rule struct {
	re     *regexp.Regexp
	typ    tokenType
	skip   bool
	quoted bool
	enter  *lexMode
}

func pattern(expr string, typ tokenType) rule {
	return rule{re: regexp.MustCompile(`^(?:` + expr + `)`), typ: typ}
}

func (r rule) skipped() rule {
	r.skip = true
	return r
}

func (r rule) quotedString() rule {
	r.quoted = true
	return r
}

func (r rule) switchTo(m lexMode) rule {
	r.enter = &m
	return r
}

const (
	doubleQuoted = `"(?:[^"]|"")*"`
	singleQuoted = `'(?:[^']|'')*'`
)

var rules = map[lexMode][]rule{
	modeDefault: {
		pattern(`\s+`, tokString).skipped(),
		pattern(`\(`, tokOpen),
		pattern(`\)`, tokClose),
		pattern(`,`, tokComma),
		pattern(`;`, tokSemicolon),
		pattern(`:`, tokColon),
		pattern(`\[&`, tokAnnotationStart).switchTo(modeAnnotation),
		pattern(`\[[^\]]*\]`, tokString).skipped(),
		pattern(`#`, tokHash),
		pattern(doubleQuoted, tokString).quotedString(),
		pattern(singleQuoted, tokString).quotedString(),
		pattern(`[^,():;\[\]#\s][^,():;\[\]#]*`, tokString),
	},
	modeAnnotation: {
		pattern(`\s+`, tokString).skipped(),
		pattern(`\]`, tokAnnotationEnd).switchTo(modeDefault),
		pattern(`\{`, tokListStart),
		pattern(`\}`, tokListEnd),
		pattern(`,`, tokComma),
		pattern(`=`, tokEquals),
		pattern(doubleQuoted, tokString).quotedString(),
		pattern(singleQuoted, tokString).quotedString(),
		pattern(`[^,\[\]{}=]+`, tokString),
	},
}

// lex splits input into tokens, ending with a tokEOF positioned at the end of
// the input.
func lex(input string) ([]token, error) {
	var tokens []token
	mode := modeDefault
	pos := 0
	for pos < len(input) {
		rest := input[pos:]
		matched := false
		for _, r := range rules[mode] {
			loc := r.re.FindStringIndex(rest)
			if loc == nil {
				continue
			}
			matched = true
			text := rest[:loc[1]]
			if !r.skip {
				tok := token{typ: r.typ, pos: pos}
				switch {
				case r.quoted:
					tok.val, tok.quoted = unquote(text), true
				case r.typ == tokString:
					tok.val = strings.TrimSpace(text)
				default:
					tok.val = text
				}
				tokens = append(tokens, tok)
			}
			if r.enter != nil {
				mode = *r.enter
			}
			pos += loc[1]
			break
		}
		if !matched {
			c, _ := utf8.DecodeRuneInString(rest)
			return nil, errors.At(errors.ErrCodeLex, pos, "unexpected character %q", c)
		}
	}
	return append(tokens, token{typ: tokEOF, pos: len(input)}), nil
}

// unquote strips the surrounding quote characters and collapses doubled
// quotes.
func unquote(s string) string {
	q := s[:1]
	return strings.ReplaceAll(s[1:len(s)-1], q+q, q)
}
