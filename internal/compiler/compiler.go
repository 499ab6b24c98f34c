// Package compiler renders an AST back into a pattern string. A compiled
// pattern, re-parsed, yields a structurally identical AST (the round-trip
// law): it is how the optimizer's safety gate verifies a rewrite didn't
// change behavior, and how a caller can print a tree it built or modified.
package compiler

import (
	"fmt"
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
)

// outsideClassEscapes lists the metacharacters that must be backslash-
// escaped when they appear as literal text outside a character class.
const outsideClassEscapes = `^$.|?*+()[]{}\`

// Compile renders a full Regex node (delimiter + flags + body) back into a
// pattern string equivalent to what the lexer would have consumed.
func Compile(r *ast.Regex) string {
	var sb strings.Builder
	closer := closingDelimiter(r.Delimiter)
	sb.WriteByte(r.Delimiter)
	c := &compiler{sb: &sb, delimiter: r.Delimiter, closer: closer}
	c.write(r.Body)
	sb.WriteByte(closer)
	sb.WriteString(r.Flags)
	return sb.String()
}

func closingDelimiter(opener byte) byte {
	switch opener {
	case '(':
		return ')'
	case '{':
		return '}'
	case '[':
		return ']'
	case '<':
		return '>'
	default:
		return opener
	}
}

type compiler struct {
	sb        *strings.Builder
	delimiter byte
	closer    byte
	inClass   bool
}

func (c *compiler) write(n ast.Node) {
	switch v := n.(type) {
	case *ast.Sequence:
		for _, child := range v.Children {
			c.write(child)
		}
	case *ast.Alternation:
		for i, branch := range v.Branches {
			if i > 0 {
				c.sb.WriteByte('|')
			}
			c.write(branch)
		}
	case *ast.Group:
		c.writeGroup(v)
	case *ast.Quantifier:
		c.write(v.Child)
		c.writeQuantifier(v)
	case *ast.Literal:
		c.writeLiteral(v.Value)
	case *ast.CharLiteral:
		c.sb.WriteString(v.Original)
	case *ast.CharType:
		c.sb.WriteByte('\\')
		c.sb.WriteByte(v.Class)
	case *ast.Dot:
		c.sb.WriteByte('.')
	case *ast.Anchor:
		c.sb.WriteString(v.Form)
	case *ast.Assertion:
		c.sb.WriteString(v.Form)
	case *ast.Keep:
		c.sb.WriteString(`\K`)
	case *ast.Comment:
		fmt.Fprintf(c.sb, "(?#%s)", v.Text)
	case *ast.CharClass:
		c.writeCharClass(v)
	case *ast.Range:
		c.write(v.Start)
		c.sb.WriteByte('-')
		c.write(v.End)
	case *ast.PosixClass:
		c.sb.WriteString("[:")
		if v.Negated {
			c.sb.WriteByte('^')
		}
		c.sb.WriteString(v.Name)
		c.sb.WriteString(":]")
	case *ast.UnicodeProp:
		c.writeUnicodeProp(v)
	case *ast.ClassOperation:
		c.write(v.Left)
		if v.Op == ast.ClassIntersection {
			c.sb.WriteString("&&")
		} else {
			c.sb.WriteString("--")
		}
		c.write(v.Right)
	case *ast.Backref:
		c.writeBackref(v)
	case *ast.Subroutine:
		c.writeSubroutine(v)
	case *ast.Conditional:
		c.writeConditional(v)
	case *ast.Define:
		c.sb.WriteString("(?(DEFINE)")
		for _, d := range v.Children {
			c.write(d)
		}
		c.sb.WriteByte(')')
	case *ast.Callout:
		c.writeCallout(v)
	case *ast.PcreVerb:
		c.sb.WriteString("(*")
		c.sb.WriteString(v.Name)
		if v.Arg != "" {
			c.sb.WriteByte(':')
			c.sb.WriteString(v.Arg)
		}
		c.sb.WriteByte(')')
	case *ast.LimitMatch:
		fmt.Fprintf(c.sb, "(*LIMIT_MATCH=%d)", v.Limit)
	case *ast.VersionCondition:
		c.sb.WriteString("VERSION")
		c.sb.WriteString(v.Op)
		c.sb.WriteString(v.Version)
	case *ast.ScriptRun:
		c.sb.WriteString("(*")
		if v.Atomic {
			c.sb.WriteString("atomic_")
		}
		c.sb.WriteString("script_run:")
		c.sb.WriteString(v.Name)
		c.sb.WriteByte(')')
	case nil:
		// unscoped inline-flags group: no child to render
	default:
		panic(fmt.Sprintf("compiler: unhandled node type %T", n))
	}
}

func (c *compiler) writeGroup(g *ast.Group) {
	switch g.Type {
	case ast.GroupCapturing:
		c.sb.WriteByte('(')
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupNonCapturing:
		c.sb.WriteString("(?:")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupAtomic:
		c.sb.WriteString("(?>")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupBranchReset:
		c.sb.WriteString("(?|")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupLookaheadPos:
		c.sb.WriteString("(?=")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupLookaheadNeg:
		c.sb.WriteString("(?!")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupLookbehindPos:
		c.sb.WriteString("(?<=")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupLookbehindNeg:
		c.sb.WriteString("(?<!")
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupNamed:
		c.sb.WriteString("(?<")
		c.sb.WriteString(g.Name)
		c.sb.WriteByte('>')
		c.write(g.Child)
		c.sb.WriteByte(')')
	case ast.GroupInlineFlags:
		c.sb.WriteString("(?")
		c.sb.WriteString(g.Flags)
		if g.Child == nil {
			c.sb.WriteByte(')')
			return
		}
		c.sb.WriteByte(':')
		c.write(g.Child)
		c.sb.WriteByte(')')
	}
}

func (c *compiler) writeLiteral(s string) {
	escapes := outsideClassEscapes
	if c.inClass {
		escapes = `]\^-`
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			// Literal text keeps its source escapes ("\.", "\/"): copy the
			// pair unchanged.
			c.sb.WriteByte(ch)
			c.sb.WriteByte(s[i+1])
			i++
			continue
		}
		if ch == c.delimiter || strings.IndexByte(escapes, ch) >= 0 {
			c.sb.WriteByte('\\')
		}
		c.sb.WriteByte(ch)
	}
}

func (c *compiler) writeQuantifier(q *ast.Quantifier) {
	c.sb.WriteString(quantifierText(q))
}

// quantifierText renders a Quantifier's bounds to canonical PCRE2 syntax
// when Raw is empty (as it is for synthesized nodes from the optimizer);
// otherwise Raw is preserved verbatim to round-trip unusual spellings.
func quantifierText(q *ast.Quantifier) string {
	base := q.Raw
	if base == "" {
		switch {
		case q.Min == 0 && q.Max == ast.Unbounded:
			base = "*"
		case q.Min == 1 && q.Max == ast.Unbounded:
			base = "+"
		case q.Min == 0 && q.Max == 1:
			base = "?"
		case q.Min == q.Max:
			base = fmt.Sprintf("{%d}", q.Min)
		case q.Max == ast.Unbounded:
			base = fmt.Sprintf("{%d,}", q.Min)
		default:
			base = fmt.Sprintf("{%d,%d}", q.Min, q.Max)
		}
		switch q.Type {
		case ast.Lazy:
			base += "?"
		case ast.Possessive:
			base += "+"
		}
	}
	return base
}

func (c *compiler) writeCharClass(cc *ast.CharClass) {
	c.sb.WriteByte('[')
	if cc.Negated {
		c.sb.WriteByte('^')
	}
	wasInClass := c.inClass
	c.inClass = true
	for _, child := range cc.Children {
		c.write(child)
	}
	c.inClass = wasInClass
	c.sb.WriteByte(']')
}

func (c *compiler) writeUnicodeProp(u *ast.UnicodeProp) {
	c.sb.WriteByte('\\')
	if u.Negated {
		c.sb.WriteByte('P')
	} else {
		c.sb.WriteByte('p')
	}
	if u.Braces {
		c.sb.WriteByte('{')
		c.sb.WriteString(u.Name)
		c.sb.WriteByte('}')
	} else {
		c.sb.WriteString(u.Name)
	}
}

func (c *compiler) writeBackref(b *ast.Backref) {
	if b.Named {
		c.sb.WriteString(`\k<`)
		c.sb.WriteString(b.Ref)
		c.sb.WriteByte('>')
		return
	}
	c.sb.WriteByte('\\')
	c.sb.WriteString(b.Ref)
}

func (c *compiler) writeSubroutine(s *ast.Subroutine) {
	switch s.Origin {
	case "g":
		c.sb.WriteString(`\g<`)
		c.sb.WriteString(s.Ref)
		c.sb.WriteByte('>')
	case "R":
		c.sb.WriteString("(?R)")
	case "&":
		c.sb.WriteString("(?&")
		c.sb.WriteString(s.Ref)
		c.sb.WriteByte(')')
	case "P>":
		c.sb.WriteString("(?P>")
		c.sb.WriteString(s.Ref)
		c.sb.WriteByte(')')
	default:
		c.sb.WriteString("(?")
		c.sb.WriteString(s.Ref)
		c.sb.WriteByte(')')
	}
}

func (c *compiler) writeConditional(cond *ast.Conditional) {
	switch inner := cond.Condition.(type) {
	case *ast.Group:
		// a parenthesized assertion owns its own '(': "(?" + "(?=on)"
		// spells "(?(?=on)", not "(?((?=on)".
		c.sb.WriteString("(?")
		c.write(inner)
	case *ast.VersionCondition:
		c.sb.WriteString("(?(")
		c.write(inner)
		c.sb.WriteByte(')')
	case *ast.Backref:
		c.sb.WriteString("(?(")
		c.sb.WriteString(inner.Ref)
		c.sb.WriteByte(')')
	default:
		c.sb.WriteString("(?(")
		c.write(inner)
		c.sb.WriteByte(')')
	}
	c.write(cond.Yes)
	if cond.No != nil {
		c.sb.WriteByte('|')
		c.write(cond.No)
	}
	c.sb.WriteByte(')')
}

func (c *compiler) writeCallout(co *ast.Callout) {
	c.sb.WriteString("(?C")
	switch {
	case co.HasNumber:
		fmt.Fprintf(c.sb, "%d", co.Number)
	case co.Text != "":
		fmt.Fprintf(c.sb, "%q", co.Text)
	}
	c.sb.WriteByte(')')
}
