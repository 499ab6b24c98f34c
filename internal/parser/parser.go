// Package parser turns a lexed token stream into a Regex AST using
// recursive descent: alternation > concatenation > quantifier > atom, with
// concatenation implicit between adjacent atoms.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/lexer"
	"github.com/0x4d5352/rescope/internal/token"
)

// Options configures parsing.
type Options struct {
	// MaxLength bounds the pattern body length in bytes; 0 means no limit.
	MaxLength int
	// Tolerant enables best-effort recovery: Parse returns a partial AST
	// alongside an aggregated *ParseError instead of aborting on the
	// first error.
	Tolerant bool
}

// Parse lexes and parses a full pattern (delimiters and flags included)
// into a Regex AST.
func Parse(pattern string, opts Options) (*ast.Regex, error) {
	lexed, err := lexer.Lex(pattern)
	if err != nil {
		return nil, err
	}
	if opts.MaxLength > 0 && len(lexed.Body) > opts.MaxLength {
		return nil, newError(0, "pattern body exceeds maximum length of %d bytes", opts.MaxLength)
	}

	p := &Parser{
		tokens:   lexed.Tokens,
		body:     lexed.Body,
		state:    newGroupState(),
		tolerant: opts.Tolerant,
	}
	body := p.parseTop()

	root := ast.NewRegex(token.Span{Start: 0, End: len(lexed.Body)}, body, lexed.Flags, lexed.Delimiter)

	if len(p.errs) > 0 {
		if opts.Tolerant {
			return root, &ParseError{Errors: p.errs}
		}
		return nil, &ParseError{Errors: p.errs[:1]}
	}
	return root, nil
}

// MustParse is Parse without tolerance, panicking on error. Intended for
// tests and callers that have already validated the pattern.
func MustParse(pattern string) *ast.Regex {
	r, err := Parse(pattern, Options{})
	if err != nil {
		panic(err)
	}
	return r
}

// Parser holds recursive-descent state over one token stream.
type Parser struct {
	tokens   []token.Token
	pos      int
	body     string
	state    *groupState
	tolerant bool
	errs     []*SyntaxError
}

// recoverSignal is panicked by fail in non-tolerant mode and caught by
// parseTop, short-circuiting the recursive descent the way go/parser's
// bailout does.
type recoverSignal struct{ err *SyntaxError }

func (p *Parser) parseTop() (result ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(recoverSignal)
			if !ok {
				panic(r)
			}
			p.errs = append(p.errs, sig.err)
			result = ast.NewLiteral(token.Span{Start: sig.err.Offset, End: sig.err.Offset}, "")
		}
	}()
	body := p.parseAlternation()
	if p.cur().Kind != token.EOF {
		p.fail(p.cur().Span.Start, "unexpected trailing input %q", p.cur().Text)
	}
	return body
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// fail records a syntax error. In strict mode it aborts the whole parse via
// panic/recover; in tolerant mode it records the error and returns so the
// caller can attempt recovery (typically by skipping a token and emitting
// a placeholder node).
func (p *Parser) fail(offset int, format string, args ...any) {
	err := &SyntaxError{Offset: offset, Expectation: fmt.Sprintf(format, args...)}
	if !p.tolerant {
		panic(recoverSignal{err: err})
	}
	p.errs = append(p.errs, err)
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.cur().Kind != k {
		p.fail(p.cur().Span.Start, "expected %s, found %s", what, p.cur().Kind)
		if p.tolerant {
			return p.cur()
		}
	}
	return p.advance()
}

func (p *Parser) atSequenceEnd() bool {
	switch p.cur().Kind {
	case token.EOF, token.Alternation, token.GroupClose:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAlternation() ast.Node {
	start := p.cur().Span.Start
	first := p.parseSequence()
	if p.cur().Kind != token.Alternation {
		return first
	}
	branches := []ast.Node{first}
	for p.cur().Kind == token.Alternation {
		p.advance()
		branches = append(branches, p.parseSequence())
	}
	end := p.prevEnd()
	return ast.NewAlternation(token.Span{Start: start, End: end}, branches)
}

func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].Span.End
}

func (p *Parser) parseSequence() ast.Node {
	start := p.cur().Span.Start
	var children []ast.Node
	for !p.atSequenceEnd() {
		before := p.pos
		children = append(children, p.parseQuantified())
		if p.pos == before {
			// defensive: guarantee forward progress in tolerant mode
			p.advance()
		}
	}
	end := start
	if len(children) > 0 {
		end = children[len(children)-1].Span().End
	}
	switch len(children) {
	case 0:
		return ast.NewSequence(token.Span{Start: start, End: start}, nil)
	case 1:
		return children[0]
	default:
		return ast.NewSequence(token.Span{Start: start, End: end}, children)
	}
}

// quantifiable reports whether n may be wrapped in a Quantifier per the
// parser invariant: never directly on another Quantifier, an anchor, an
// assertion, Keep, or a verb.
func quantifiable(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindQuantifier, ast.KindAnchor, ast.KindAssertion, ast.KindKeep, ast.KindPcreVerb:
		return false
	default:
		return true
	}
}

func (p *Parser) parseQuantified() ast.Node {
	start := p.cur().Span.Start
	atom := p.parseAtom()
	if p.cur().Kind != token.Quantifier {
		return atom
	}
	qtok := p.cur()
	if !quantifiable(atom) {
		p.fail(qtok.Span.Start, "quantifier cannot apply to %s", atom.Kind())
		return atom
	}
	p.advance()
	typ, min, max := parseQuantifierText(qtok.Text)
	return ast.NewQuantifier(token.Span{Start: start, End: qtok.Span.End}, atom, qtok.Text, typ, min, max)
}

// parseQuantifierText decodes a lexed quantifier lexeme ("*", "+?", "{2,5}",
// "{3,}+", ...) into its type and bounds.
func parseQuantifierText(text string) (ast.QuantifierType, int, int) {
	body := text
	typ := ast.Greedy
	if strings.HasSuffix(body, "?") && body != "?" {
		typ = ast.Lazy
		body = body[:len(body)-1]
	} else if strings.HasSuffix(body, "+") && body != "+" {
		typ = ast.Possessive
		body = body[:len(body)-1]
	}
	switch body {
	case "*":
		return typ, 0, ast.Unbounded
	case "+":
		return typ, 1, ast.Unbounded
	case "?":
		return typ, 0, 1
	}
	// {m} {m,} {m,n}
	inner := strings.TrimSuffix(strings.TrimPrefix(body, "{"), "}")
	if idx := strings.IndexByte(inner, ','); idx >= 0 {
		minStr, maxStr := inner[:idx], inner[idx+1:]
		min := atoiOr(minStr, 0)
		if maxStr == "" {
			return typ, min, ast.Unbounded
		}
		return typ, min, atoiOr(maxStr, min)
	}
	n := atoiOr(inner, 0)
	return typ, n, n
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func (p *Parser) parseAtom() ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.Literal:
		p.advance()
		return ast.NewLiteral(t.Span, t.Text)
	case token.Dot:
		p.advance()
		return ast.NewDot(t.Span)
	case token.Anchor:
		p.advance()
		return ast.NewAnchor(t.Span, t.Text)
	case token.Assertion:
		p.advance()
		return ast.NewAssertion(t.Span, t.Text)
	case token.Keep:
		p.advance()
		return ast.NewKeep(t.Span)
	case token.Comment:
		p.advance()
		return ast.NewComment(t.Span, extractBetween(t.Text, "(?#", ")"))
	case token.Callout:
		p.advance()
		return parseCallout(t)
	case token.CharType:
		p.advance()
		return ast.NewCharType(t.Span, t.Text[len(t.Text)-1])
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
	case token.Backref:
		p.advance()
		return parseBackref(t)
	case token.Subroutine:
		p.advance()
		return p.parseSubroutineAtom(t)
	case token.PcreVerb:
		p.advance()
		return parsePcreVerb(t)
	case token.LimitMatch:
		p.advance()
		return parseLimitMatch(t)
	case token.ScriptRun:
		p.advance()
		return parseScriptRun(t)
	case token.ClassOpen:
		return p.parseCharClass()
	case token.GroupOpen, token.GroupOpenNonCap, token.GroupOpenAtomic,
		token.GroupOpenBranch, token.GroupOpenLookahead, token.GroupOpenLookbehind,
		token.GroupOpenNamed, token.GroupOpenFlags:
		return p.parseGroup()
	case token.GroupOpenCond:
		return p.parseConditionalOrDefine()
	default:
		p.fail(t.Span.Start, "unexpected token %s", t.Kind)
		p.advance()
		return ast.NewLiteral(t.Span, t.Text)
	}
}

func extractBetween(text, prefix, suffix string) string {
	s := strings.TrimPrefix(text, prefix)
	s = strings.TrimSuffix(s, suffix)
	return s
}
