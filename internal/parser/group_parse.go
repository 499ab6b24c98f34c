package parser

import (
	"strconv"
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/token"
)

// readLiteralsUntil concatenates consecutive Literal-token text, stopping
// (without consuming) at the first token whose text equals stop or whose
// kind is not Literal. Used to recover text the lexer left unconsumed
// inside a group-open lexeme (group names, inline-flag letters).
func (p *Parser) readLiteralsUntil(stop string) string {
	var sb strings.Builder
	for p.cur().Kind == token.Literal && p.cur().Text != stop {
		sb.WriteString(p.cur().Text)
		p.advance()
	}
	return sb.String()
}

// parseSubroutineAtom decodes a Subroutine token. "\g<name>" is fully
// self-contained in t.Text; the "(...)"-based forms ("(?R)", "(?&name)",
// "(?P>name)", "(?N)", "(?-N)") only have their distinguishing prefix
// lexed, so the name/number and closing ')' are read as trailing tokens.
func (p *Parser) parseSubroutineAtom(t token.Token) ast.Node {
	switch {
	case strings.HasPrefix(t.Text, `\g<`):
		return ast.NewSubroutine(t.Span, extractBetween(t.Text, `\g<`, ">"), "g")
	case t.Text == "(?R":
		p.expect(token.GroupClose, "')'")
		return ast.NewSubroutine(t.Span, "0", "R")
	case t.Text == "(?&":
		ref := p.readLiteralsUntil(")")
		p.expect(token.GroupClose, "')'")
		return ast.NewSubroutine(t.Span, ref, "&")
	case t.Text == "(?P>":
		ref := p.readLiteralsUntil(")")
		p.expect(token.GroupClose, "')'")
		return ast.NewSubroutine(t.Span, ref, "P>")
	default:
		// "(?" followed by a group number or relative "-N" reference.
		ref := p.readLiteralsUntil(")")
		p.expect(token.GroupClose, "')'")
		return ast.NewSubroutine(t.Span, ref, "")
	}
}

func (p *Parser) parseGroup() ast.Node {
	open := p.advance()
	switch open.Kind {
	case token.GroupOpen:
		number := p.state.next()
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		g := ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, ast.GroupCapturing)
		g.Number = number
		return g

	case token.GroupOpenNonCap:
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		return ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, ast.GroupNonCapturing)

	case token.GroupOpenAtomic:
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		return ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, ast.GroupAtomic)

	case token.GroupOpenBranch:
		return p.parseBranchReset(open)

	case token.GroupOpenLookahead:
		typ := ast.GroupLookaheadPos
		if strings.HasSuffix(open.Text, "!") {
			typ = ast.GroupLookaheadNeg
		}
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		return ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, typ)

	case token.GroupOpenLookbehind:
		typ := ast.GroupLookbehindPos
		if strings.HasSuffix(open.Text, "!") {
			typ = ast.GroupLookbehindNeg
		}
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		return ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, typ)

	case token.GroupOpenNamed:
		name := ""
		if closer := namedGroupCloser(open.Text); closer != "" {
			name = p.readLiteralsUntil(closer)
			p.advance() // consume the closing quote/bracket literal
		}
		number := p.state.next()
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		g := ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, ast.GroupNamed)
		g.Number = number
		g.Name = name
		return g

	case token.GroupOpenFlags:
		return p.parseInlineFlags(open)

	default:
		p.fail(open.Span.Start, "unexpected group-open token %s", open.Kind)
		return ast.NewLiteral(open.Span, open.Text)
	}
}

// namedGroupCloser returns the closing delimiter for a GroupOpenNamed
// token's already-consumed prefix ("(?<", "(?'", "(?P<", "(?P'", "(?P\"").
func namedGroupCloser(openText string) string {
	switch {
	case strings.HasSuffix(openText, "<"):
		return ">"
	case strings.HasSuffix(openText, "'"):
		return "'"
	case strings.HasSuffix(openText, "\""):
		return "\""
	default:
		return ""
	}
}

func (p *Parser) parseInlineFlags(open token.Token) ast.Node {
	flags := p.readLiteralsUntil(":")
	if p.cur().Kind == token.Literal && p.cur().Text == ":" {
		p.advance()
		child := p.parseAlternation()
		close := p.expect(token.GroupClose, "')'")
		g := ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, child, ast.GroupInlineFlags)
		g.Flags = flags
		return g
	}
	close := p.expect(token.GroupClose, "')'")
	g := ast.NewGroup(token.Span{Start: open.Span.Start, End: close.Span.End}, nil, ast.GroupInlineFlags)
	g.Flags = flags
	return g
}

// parseBranchReset parses "(?|branch1|branch2|...)", where capture numbers
// reset to the group's base at the start of every branch.
func (p *Parser) parseBranchReset(open token.Token) ast.Node {
	base := p.state.counter
	maxUsed := base
	var branches []ast.Node
	for {
		p.state.reset(base)
		branches = append(branches, p.parseSequence())
		if p.state.counter > maxUsed {
			maxUsed = p.state.counter
		}
		if p.cur().Kind != token.Alternation {
			break
		}
		p.advance()
	}
	p.state.counter = maxUsed
	close := p.expect(token.GroupClose, "')'")
	span := token.Span{Start: open.Span.Start, End: close.Span.End}
	var child ast.Node
	if len(branches) == 1 {
		child = branches[0]
	} else {
		child = ast.NewAlternation(span, branches)
	}
	return ast.NewGroup(span, child, ast.GroupBranchReset)
}

// parseConditionalOrDefine parses "(?(cond)yes|no)" or "(?(DEFINE)...)". For
// a text condition the GroupOpenCond token already consumed "(?(" including
// the condition's own opening paren; for a parenthesized assertion
// condition it consumed only "(?", and the assertion's '(' is its own
// group-open token.
func (p *Parser) parseConditionalOrDefine() ast.Node {
	open := p.advance()

	if p.isDefineKeyword() {
		p.readLiteralsUntil(")")
		p.expect(token.GroupClose, "')'") // closes "(DEFINE)"
		body := p.parseSequence()
		close := p.expect(token.GroupClose, "')'")
		span := token.Span{Start: open.Span.Start, End: close.Span.End}
		children := body
		if seq, ok := children.(*ast.Sequence); ok {
			return ast.NewDefine(span, seq.Children)
		}
		return ast.NewDefine(span, []ast.Node{children})
	}

	cond, assertion := p.parseCondition()
	if !assertion {
		// A parenthesized assertion condition owns its own closing ')';
		// a text condition (number, name, "R", "VERSION...") does not.
		p.expect(token.GroupClose, "')'")
	}

	yes := p.parseSequence()
	var no ast.Node
	if p.cur().Kind == token.Alternation {
		p.advance()
		no = p.parseAlternation()
	}
	close := p.expect(token.GroupClose, "')'")
	span := token.Span{Start: open.Span.Start, End: close.Span.End}
	return ast.NewConditional(span, cond, yes, no)
}

func (p *Parser) isDefineKeyword() bool {
	if p.cur().Kind != token.Literal {
		return false
	}
	save := p.pos
	text := p.readLiteralsUntil(")")
	isDefine := text == "DEFINE"
	p.pos = save
	return isDefine
}

// parseCondition parses the content between the conditional's own
// parentheses: a parenthesized lookaround assertion, a VERSION comparison,
// or a group reference (number, relative number, name, or "R"/"R&name").
// The second return reports whether the condition was a parenthesized
// assertion, which (unlike the text forms) consumes its own closing ')'.
func (p *Parser) parseCondition() (ast.Node, bool) {
	switch p.cur().Kind {
	case token.GroupOpenLookahead, token.GroupOpenLookbehind:
		return p.parseGroup(), true
	}
	start := p.cur().Span.Start
	text := p.readLiteralsUntil(")")
	end := p.prevEnd()
	span := token.Span{Start: start, End: end}
	if strings.HasPrefix(text, "VERSION") {
		rest := strings.TrimPrefix(text, "VERSION")
		op := ">="
		version := rest
		for _, candidate := range []string{">=", "=", ">"} {
			if strings.HasPrefix(rest, candidate) {
				op = candidate
				version = strings.TrimPrefix(rest, candidate)
				break
			}
		}
		return ast.NewVersionCondition(span, op, version), false
	}
	if text == "R" || strings.HasPrefix(text, "R&") || strings.HasPrefix(text, "R-") {
		return ast.NewBackref(span, text, strings.HasPrefix(text, "R&")), false
	}
	if _, err := strconv.Atoi(text); err == nil || strings.HasPrefix(text, "-") {
		return ast.NewBackref(span, text, false), false
	}
	return ast.NewBackref(span, text, true), false
}
