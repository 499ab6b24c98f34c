package parser

import (
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/token"
)

// parseCharClass parses a `[...]` construct. The ClassOpen token's text is
// "[" or "[^"; negation is read from it.
func (p *Parser) parseCharClass() ast.Node {
	open := p.advance()
	negated := strings.HasSuffix(open.Text, "^")

	var children []ast.Node
	for p.cur().Kind != token.ClassClose && p.cur().Kind != token.EOF {
		before := p.pos
		children = append(children, p.parseClassMember())
		if p.pos == before {
			p.advance()
		}
	}
	close := p.expect(token.ClassClose, "']'")
	return ast.NewCharClass(token.Span{Start: open.Span.Start, End: close.Span.End}, children, negated)
}

// parseClassMember parses one member of a character class: a bare atom, a
// range (atom - atom), or an intersection/subtraction of two sub-members.
func (p *Parser) parseClassMember() ast.Node {
	left := p.parseClassAtom()
	if p.cur().Kind == token.RangeHyphen {
		p.advance()
		right := p.parseClassAtom()
		left = ast.NewRange(token.Span{Start: left.Span().Start, End: right.Span().End}, left, right)
	}
	if p.cur().Kind == token.ClassIntersect || p.cur().Kind == token.ClassSubtract {
		op := ast.ClassIntersection
		if p.cur().Kind == token.ClassSubtract {
			op = ast.ClassSubtraction
		}
		p.advance()
		right := p.parseClassMember()
		left = ast.NewClassOperation(token.Span{Start: left.Span().Start, End: right.Span().End}, op, left, right)
	}
	return left
}

func (p *Parser) parseClassAtom() ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.Literal:
		p.advance()
		return ast.NewLiteral(t.Span, t.Text)
	case token.CharType:
		p.advance()
		return ast.NewCharType(t.Span, t.Text[len(t.Text)-1])
	case token.PosixClass:
		p.advance()
		return parsePosixClass(t)
	case token.UnicodeProperty:
		p.advance()
		return parseUnicodeProp(t)
	case token.UnicodeEscape:
		p.advance()
		return parseUnicodeEscape(t)
	case token.Octal:
		p.advance()
		return parseOctalEscape(t)
	case token.Control:
		p.advance()
		return parseControlEscape(t)
	default:
		p.fail(t.Span.Start, "unexpected token %s in character class", t.Kind)
		p.advance()
		return ast.NewLiteral(t.Span, t.Text)
	}
}

// parsePosixClass decodes "[:name:]" or "[:^name:]".
func parsePosixClass(t token.Token) ast.Node {
	inner := extractBetween(t.Text, "[:", ":]")
	negated := strings.HasPrefix(inner, "^")
	name := strings.TrimPrefix(inner, "^")
	return ast.NewPosixClass(t.Span, name, negated)
}
