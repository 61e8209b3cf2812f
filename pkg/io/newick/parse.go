package newick

import (
	"strconv"
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Parse reads a single Extended-Newick tree. The trailing ';' is optional.
//
// Lexing failures return LEX_ERROR, unexpected tokens GRAMMAR_ERROR, and
// non-numeric branch lengths or unpaired hybrid tags SEMANTIC_ERROR. All
// three carry the byte offset where the problem was found when one applies.
func Parse(input string) (*tree.Tree, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, t: tree.New()}
	if err := p.node(p.t.Root()); err != nil {
		return nil, err
	}
	if p.peek().typ == tokSemicolon {
		p.advance()
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	if err := p.t.Init(); err != nil {
		return nil, err
	}
	return p.t, nil
}

type parser struct {
	tokens []token
	pos    int
	t      *tree.Tree
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ tokenType) (token, error) {
	tok := p.advance()
	if tok.typ != typ {
		return tok, unexpected(tok, typ)
	}
	return tok, nil
}

func unexpected(found token, want ...tokenType) error {
	names := make([]string, len(want))
	for i, w := range want {
		names[i] = w.String()
	}
	return errors.At(errors.ErrCodeGrammar, found.pos,
		"expected %s but found %s", strings.Join(names, " or "), found)
}

// node parses one Node production into n. Children are allocated before
// recursing so IDs follow preorder.
func (p *parser) node(n *tree.Node) error {
	if p.peek().typ == tokOpen {
		p.advance()
	children:
		for {
			if err := p.node(p.t.AddChild(n.ID)); err != nil {
				return err
			}
			switch tok := p.advance(); tok.typ {
			case tokComma:
			case tokClose:
				break children
			default:
				return unexpected(tok, tokComma, tokClose)
			}
		}
	}

	if tok := p.peek(); tok.typ == tokString {
		n.Label = tok.val
		p.advance()
	}
	if p.peek().typ == tokHash {
		p.advance()
		tok, err := p.expect(tokString)
		if err != nil {
			return err
		}
		n.HybridID = tok.val
	}
	if p.peek().typ == tokAnnotationStart {
		if err := p.annotation(n); err != nil {
			return err
		}
	}
	if p.peek().typ == tokColon {
		p.advance()
		tok, err := p.expect(tokString)
		if err != nil {
			return err
		}
		bl, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return errors.At(errors.ErrCodeSemantic, tok.pos, "invalid branch length %q", tok.val)
		}
		n.BranchLength = bl
		if p.peek().typ == tokAnnotationStart {
			if err := p.annotation(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) annotation(n *tree.Node) error {
	p.advance()
	if p.peek().typ == tokAnnotationEnd {
		p.advance()
		return nil
	}
	for {
		key, err := p.expect(tokString)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokEquals); err != nil {
			return err
		}
		v, err := p.value()
		if err != nil {
			return err
		}
		n.Annotate(key.val, v)

		switch tok := p.advance(); tok.typ {
		case tokComma:
		case tokAnnotationEnd:
			return nil
		default:
			return unexpected(tok, tokComma, tokAnnotationEnd)
		}
	}
}

func (p *parser) value() (tree.Value, error) {
	if p.peek().typ != tokListStart {
		tok, err := p.expect(tokString)
		if err != nil {
			return tree.Value{}, err
		}
		return tree.Classify(tok.val, tok.quoted), nil
	}

	p.advance()
	list := tree.ListValue()
	if p.peek().typ == tokListEnd {
		p.advance()
		return list, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return tree.Value{}, err
		}
		list.List = append(list.List, v)

		switch tok := p.advance(); tok.typ {
		case tokComma:
		case tokListEnd:
			return list, nil
		default:
			return tree.Value{}, unexpected(tok, tokComma, tokListEnd)
		}
	}
}
