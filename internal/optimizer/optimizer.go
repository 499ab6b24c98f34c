// Package optimizer rewrites a regex AST into an equivalent, smaller or
// more efficient tree. Unlike the compiler (which renders a fixed AST back
// to text) this visitor produces a *new* AST; the facade compiles it to
// render the optimized pattern text, after Verify has re-parsed that text
// as a safety check.
package optimizer

import (
	"sort"
	"strings"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/charset"
	"github.com/0x4d5352/rescope/internal/compiler"
	"github.com/0x4d5352/rescope/internal/parser"
	"github.com/0x4d5352/rescope/internal/token"
)

// Options controls which rewrites run. The structural simplifications
// (literal merging, alternation flattening, trivial-group collapsing,
// quantifier-bound simplification) are not gated by a flag, and
// single-character alternation fusing is bounded only by
// MinQuantifierCount; the rest mirror spec §6's "Optimizer" option map.
type Options struct {
	// Digits enables [0-9] -> \d (and negation) replacement.
	Digits bool
	// Word enables [a-zA-Z0-9_] -> \w (and negation) replacement.
	Word bool
	// Ranges enables [\t\n\r\f\v ] -> \s (and negation) replacement.
	Ranges bool
	// CanonicalizeCharClasses dedupes/sorts/merges character class members.
	CanonicalizeCharClasses bool
	// AutoPossessify converts `a*` into `a*+` when the next atom's
	// first-set is disjoint from a's first-set.
	AutoPossessify bool
	// AllowAlternationFactorization factors common prefixes/suffixes out
	// of an alternation, e.g. "foo|foot" -> "foo(?:|t)".
	AllowAlternationFactorization bool
	// MinQuantifierCount is the minimum number of single-character
	// alternation branches required before they are fused into a
	// character class (rule 5); 0 means "always fuse when >= 2".
	MinQuantifierCount int
	// VerifyWithAutomata makes Verify check automata-level equivalence
	// instead of the structural round-trip; a tree outside the regular
	// subset then fails verification.
	VerifyWithAutomata bool
}

// DefaultOptions returns the conservative default: only canonicalization
// and digit/word/space replacement, no factoring or possessification.
func DefaultOptions() Options {
	return Options{
		Digits:                  true,
		Word:                    true,
		Ranges:                  true,
		CanonicalizeCharClasses: true,
		MinQuantifierCount:      2,
	}
}

// Change describes one rewrite applied during Optimize, for reporting to
// callers (spec §6 optimize() -> {original, optimized, changes[]}).
type Change struct {
	Rule string
	Span token.Span
}

// Optimize rewrites r.Body bottom-up and returns the new Regex alongside a
// log of every rule that fired.
func Optimize(r *ast.Regex, opts Options) (*ast.Regex, []Change) {
	o := &optimizer{opts: opts, flags: r.Flags}
	body := o.rewrite(r.Body)
	return ast.NewRegex(body.Span(), body, r.Flags, r.Delimiter), o.changes
}

type optimizer struct {
	opts    Options
	flags   string
	changes []Change
}

func (o *optimizer) log(rule string, span token.Span) {
	o.changes = append(o.changes, Change{Rule: rule, Span: span})
}

func (o *optimizer) unicodeFlag() bool {
	return containsByte(o.flags, 'u')
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

// rewrite recurses into n's children first (post-order), then applies
// node-local rewrites to the reconstructed node.
func (o *optimizer) rewrite(n ast.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch x := n.(type) {
	case *ast.Sequence:
		return o.rewriteSequence(x)
	case *ast.Alternation:
		return o.rewriteAlternation(x)
	case *ast.Group:
		return o.rewriteGroup(x)
	case *ast.Quantifier:
		return o.rewriteQuantifier(x)
	case *ast.CharClass:
		return o.rewriteCharClass(x)
	case *ast.Conditional:
		yes := o.rewrite(x.Yes)
		var no ast.Node
		if x.No != nil {
			no = o.rewrite(x.No)
		}
		return ast.NewConditional(x.Span(), o.rewrite(x.Condition), yes, no)
	case *ast.Define:
		children := make([]ast.Node, len(x.Children))
		for i, c := range x.Children {
			children[i] = o.rewrite(c)
		}
		return ast.NewDefine(x.Span(), children)
	default:
		return n
	}
}

// rewriteSequence applies rule 1: merge adjacent Literal siblings.
func (o *optimizer) rewriteSequence(s *ast.Sequence) ast.Node {
	children := make([]ast.Node, 0, len(s.Children))
	for _, c := range s.Children {
		children = append(children, o.rewrite(c))
	}
	merged := make([]ast.Node, 0, len(children))
	for _, c := range children {
		if lit, ok := c.(*ast.Literal); ok && len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(*ast.Literal); ok {
				span := token.Combine(prev.Span(), lit.Span())
				merged[len(merged)-1] = ast.NewLiteral(span, prev.Value+lit.Value)
				o.log("merge-adjacent-literals", span)
				continue
			}
		}
		merged = append(merged, c)
	}
	o.applyAutoPossessify(merged)

	switch len(merged) {
	case 0:
		return ast.NewSequence(s.Span(), nil)
	case 1:
		return merged[0]
	default:
		return ast.NewSequence(s.Span(), merged)
	}
}

// applyAutoPossessify implements rule 9: a greedy, unbounded quantifier
// followed by an atom whose first-set is disjoint from the quantifier's
// own first-set never needs to backtrack into that atom, so it is safe to
// make it possessive. Skipped whenever either first-set is Unknown, since
// disjointness can't be established conservatively.
func (o *optimizer) applyAutoPossessify(nodes []ast.Node) {
	if !o.opts.AutoPossessify {
		return
	}
	uf := o.unicodeFlag()
	for i := 0; i+1 < len(nodes); i++ {
		q, ok := nodes[i].(*ast.Quantifier)
		if !ok || q.Type != ast.Greedy || q.Max != ast.Unbounded {
			continue
		}
		childSet := charset.FirstSet(q.Child, uf)
		nextSet := charset.FirstSet(nodes[i+1], uf)
		if childSet.Unknown || nextSet.Unknown || childSet.Intersects(nextSet) {
			continue
		}
		nodes[i] = ast.NewQuantifier(q.Span(), q.Child, q.Raw+"+", ast.Possessive, q.Min, q.Max)
		o.log("auto-possessify", q.Span())
	}
}

// rewriteAlternation applies rule 2 (flatten nested Alternation), rule 5
// (fuse single-char branches into a character class), and, when enabled,
// rule 8 (factor common prefix/suffix).
func (o *optimizer) rewriteAlternation(a *ast.Alternation) ast.Node {
	var flat []ast.Node
	for _, b := range a.Branches {
		rb := o.rewrite(b)
		if inner := nestedAlternation(rb); inner != nil {
			flat = append(flat, inner.Branches...)
			o.log("flatten-alternation", a.Span())
			continue
		}
		flat = append(flat, rb)
	}

	if fused, ok := o.fuseSingleCharBranches(flat, a.Span()); ok {
		return fused
	}

	if o.opts.AllowAlternationFactorization {
		if factored, ok := o.factorAlternation(flat, a.Span()); ok {
			return factored
		}
	}

	if len(flat) == 1 {
		return flat[0]
	}
	return ast.NewAlternation(a.Span(), flat)
}

// nestedAlternation reports n as an *ast.Alternation when n either IS one,
// or is a non-capturing group directly wrapping one. As a branch of a
// surrounding alternation, such a group adds no precedence value:
// alternation is associative, so "a|(?:b|c)" and "a|b|c" accept the same
// language.
func nestedAlternation(n ast.Node) *ast.Alternation {
	switch x := n.(type) {
	case *ast.Alternation:
		return x
	case *ast.Group:
		if x.Type == ast.GroupNonCapturing {
			if inner, ok := x.Child.(*ast.Alternation); ok {
				return inner
			}
		}
	}
	return nil
}

// fuseSingleCharBranches implements rule 5: "a|b|c" -> "[abc]" when every
// branch is exactly one literal character (and there are at least
// MinQuantifierCount of them, or 2 when unset).
func (o *optimizer) fuseSingleCharBranches(branches []ast.Node, span token.Span) (ast.Node, bool) {
	min := o.opts.MinQuantifierCount
	if min == 0 {
		min = 2
	}
	if len(branches) < min {
		return nil, false
	}
	members := make([]ast.Node, 0, len(branches))
	for _, b := range branches {
		r, ok := singleRune(b)
		if !ok {
			return nil, false
		}
		members = append(members, ast.NewLiteral(b.Span(), string(r)))
	}
	o.log("fuse-alternation-into-charclass", span)
	return ast.NewCharClass(span, members, false), true
}

func singleRune(n ast.Node) (rune, bool) {
	switch x := n.(type) {
	case *ast.Literal:
		rs := []rune(x.Value)
		if len(rs) == 1 {
			return rs[0], true
		}
	case *ast.CharLiteral:
		return x.Rune, true
	}
	return 0, false
}

// factorAlternation implements rule 8 for the common case of a shared
// literal prefix: "foo|foot" -> "foo(?:|t)". Suffix factoring is
// symmetric and attempted when no prefix is found. Only applies when every
// branch is a bare Literal with no backslash escape in its text:
// affix-splitting anything else risks cutting an escape or a quantified
// atom in half.
func (o *optimizer) factorAlternation(branches []ast.Node, span token.Span) (ast.Node, bool) {
	if len(branches) < 2 {
		return nil, false
	}
	texts := make([]string, len(branches))
	for i, b := range branches {
		lit, ok := b.(*ast.Literal)
		if !ok || strings.IndexByte(lit.Value, '\\') >= 0 {
			return nil, false
		}
		texts[i] = lit.Value
	}
	prefix := commonAffix(texts, true)
	if len(prefix) > 0 {
		rest, ok := stripAffix(branches, len(prefix), true)
		if ok {
			o.log("factor-alternation-prefix", span)
			tail := ast.NewGroup(span, ast.NewAlternation(span, rest), ast.GroupNonCapturing)
			return ast.NewSequence(span, []ast.Node{literalPrefixNode(branches[0], len(prefix)), tail}), true
		}
	}
	suffix := commonAffix(texts, false)
	if len(suffix) > 0 {
		rest, ok := stripAffix(branches, len(suffix), false)
		if ok {
			o.log("factor-alternation-suffix", span)
			head := ast.NewGroup(span, ast.NewAlternation(span, rest), ast.GroupNonCapturing)
			return ast.NewSequence(span, []ast.Node{head, literalSuffixNode(branches[0], len(suffix))}), true
		}
	}
	return nil, false
}

// commonAffix returns the longest prefix (or suffix) shared by all texts,
// compared byte by byte. factorAlternation only passes it escape-free
// Literal values, so the cut never falls inside an escape.
func commonAffix(texts []string, prefix bool) string {
	if len(texts) == 0 {
		return ""
	}
	affix := texts[0]
	for _, t := range texts[1:] {
		affix = sharedAffix(affix, t, prefix)
		if affix == "" {
			return ""
		}
	}
	return affix
}

func sharedAffix(a, b string, prefix bool) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if prefix {
		i := 0
		for i < n && a[i] == b[i] {
			i++
		}
		return a[:i]
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return a[len(a)-i:]
}

func stripAffix(branches []ast.Node, n int, prefix bool) ([]ast.Node, bool) {
	out := make([]ast.Node, len(branches))
	for i, b := range branches {
		lit, ok := b.(*ast.Literal)
		if !ok || len(lit.Value) < n {
			return nil, false
		}
		var rest string
		if prefix {
			rest = lit.Value[n:]
		} else {
			rest = lit.Value[:len(lit.Value)-n]
		}
		out[i] = ast.NewLiteral(lit.Span(), rest)
	}
	return out, true
}

func literalPrefixNode(n ast.Node, length int) ast.Node {
	lit := n.(*ast.Literal)
	return ast.NewLiteral(lit.Span(), lit.Value[:length])
}

func literalSuffixNode(n ast.Node, length int) ast.Node {
	lit := n.(*ast.Literal)
	return ast.NewLiteral(lit.Span(), lit.Value[len(lit.Value)-length:])
}

// rewriteGroup implements rule 3: collapse a non-capturing group whose
// child is a single atom into the child directly.
func (o *optimizer) rewriteGroup(g *ast.Group) ast.Node {
	var child ast.Node
	if g.Child != nil {
		child = o.rewrite(g.Child)
	}
	if g.Type == ast.GroupNonCapturing && isSingleAtom(child) {
		o.log("collapse-trivial-group", g.Span())
		if child == nil {
			return ast.NewSequence(g.Span(), nil)
		}
		return child
	}
	out := ast.NewGroup(g.Span(), child, g.Type)
	out.Name = g.Name
	out.Flags = g.Flags
	out.Number = g.Number
	return out
}

func isSingleAtom(n ast.Node) bool {
	if n == nil {
		return true
	}
	switch x := n.(type) {
	case *ast.Alternation:
		return false
	case *ast.Sequence:
		return len(x.Children) <= 1
	default:
		return true
	}
}

// rewriteQuantifier implements rule 6 (drop/simplify bounds). Rule 9
// (auto-possessification) is applied one level up, by applyAutoPossessify
// from rewriteSequence; here we just normalize the bounds/type of this
// node.
func (o *optimizer) rewriteQuantifier(q *ast.Quantifier) ast.Node {
	child := o.rewrite(q.Child)
	if q.Min == 1 && q.Max == 1 {
		o.log("drop-quantifier-one", q.Span())
		return child
	}
	raw := q.Raw
	if q.Min == 0 && q.Max == 1 {
		raw = quantifierGlyph("?", q.Type)
	} else if q.Min == 0 && q.Max == ast.Unbounded {
		raw = quantifierGlyph("*", q.Type)
	} else if q.Min == 1 && q.Max == ast.Unbounded {
		raw = quantifierGlyph("+", q.Type)
	}
	if raw != q.Raw {
		o.log("simplify-quantifier-bounds", q.Span())
	}
	return ast.NewQuantifier(q.Span(), child, raw, q.Type, q.Min, q.Max)
}

func quantifierGlyph(base string, typ ast.QuantifierType) string {
	switch typ {
	case ast.Lazy:
		return base + "?"
	case ast.Possessive:
		return base + "+"
	default:
		return base
	}
}

// rewriteCharClass implements rule 4 (digit/word/space replacement,
// configurable) and rule 7 (canonicalize: dedupe, sort, merge overlapping
// ranges).
func (o *optimizer) rewriteCharClass(c *ast.CharClass) ast.Node {
	children := make([]ast.Node, len(c.Children))
	for i, m := range c.Children {
		children[i] = o.rewrite(m)
	}
	cc := ast.NewCharClass(c.Span(), children, c.Negated)

	if shorthand, ok := o.replaceWithShorthand(cc); ok {
		o.log("replace-charclass-with-shorthand", c.Span())
		return shorthand
	}
	if o.opts.CanonicalizeCharClasses {
		if canon, changed := canonicalizeCharClass(cc); changed {
			o.log("canonicalize-charclass", c.Span())
			return canon
		}
	}
	return cc
}

// replaceWithShorthand implements rule 4: detects whether cc's member set
// matches exactly one of the canonical digit/word/space sets (or its
// complement) and, if enabled by Options, replaces it with \d \w \s (or
// negated form).
func (o *optimizer) replaceWithShorthand(cc *ast.CharClass) (ast.Node, bool) {
	// compare the members; negation is applied through negIf below
	set := charset.FirstSet(ast.NewCharClass(cc.Span(), cc.Children, false), false)
	if set.Unknown {
		return nil, false
	}
	digits := charset.New(charset.Range{Lo: '0', Hi: '9'})
	word := charset.New(charset.Range{Lo: '0', Hi: '9'}, charset.Range{Lo: 'A', Hi: 'Z'}, charset.Range{Lo: 'a', Hi: 'z'}, charset.Range{Lo: '_', Hi: '_'})
	space := charset.New(charset.Range{Lo: '\t', Hi: '\n'}, charset.Range{Lo: '\f', Hi: '\r'}, charset.Range{Lo: ' ', Hi: ' '})

	try := func(want charset.CharSet, enabled bool, class byte) (ast.Node, bool) {
		if !enabled {
			return nil, false
		}
		if setsEqual(set, want) {
			return ast.NewCharType(cc.Span(), class), true
		}
		return nil, false
	}

	if n, ok := try(digits, o.opts.Digits, negIf('d', cc.Negated)); ok {
		return n, true
	}
	if n, ok := try(word, o.opts.Word, negIf('w', cc.Negated)); ok {
		return n, true
	}
	if n, ok := try(space, o.opts.Ranges, negIf('s', cc.Negated)); ok {
		return n, true
	}
	return nil, false
}

func negIf(class byte, negated bool) byte {
	if !negated {
		return class
	}
	switch class {
	case 'd':
		return 'D'
	case 'w':
		return 'W'
	case 's':
		return 'S'
	}
	return class
}

func setsEqual(a, b charset.CharSet) bool {
	if a.Unknown != b.Unknown {
		return false
	}
	if len(a.Ranges) != len(b.Ranges) {
		return false
	}
	for i := range a.Ranges {
		if a.Ranges[i] != b.Ranges[i] {
			return false
		}
	}
	return true
}

// canonicalizeCharClass dedupes identical single-char members and sorts
// Range members by lower bound, merging ranges that touch or overlap. It
// is conservative: any member it doesn't understand (PosixClass,
// UnicodeProp, ClassOperation, nested classes) is preserved verbatim and
// excluded from merging.
func canonicalizeCharClass(cc *ast.CharClass) (ast.Node, bool) {
	type rangeMember struct {
		lo, hi rune
		node   *ast.Range
	}
	var ranges []rangeMember
	var literals []rune
	seenLiteral := map[rune]bool{}
	var other []ast.Node
	changed := false

	for _, m := range cc.Children {
		switch x := m.(type) {
		case *ast.Range:
			lo, loOK := singleRune(x.Start)
			hi, hiOK := singleRune(x.End)
			if loOK && hiOK {
				ranges = append(ranges, rangeMember{lo: lo, hi: hi, node: x})
				continue
			}
			other = append(other, m)
		case *ast.Literal:
			rs := []rune(x.Value)
			if len(rs) == 1 {
				if seenLiteral[rs[0]] {
					changed = true
					continue
				}
				seenLiteral[rs[0]] = true
				literals = append(literals, rs[0])
				continue
			}
			other = append(other, m)
		default:
			other = append(other, m)
		}
	}

	if len(ranges) > 1 {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].lo < ranges[j].lo })
		merged := ranges[:1]
		for _, r := range ranges[1:] {
			last := &merged[len(merged)-1]
			if r.lo <= last.hi+1 {
				if r.hi > last.hi {
					last.hi = r.hi
				}
				changed = true
				continue
			}
			merged = append(merged, r)
		}
		ranges = merged
	}
	if len(literals) > 1 {
		sort.Slice(literals, func(i, j int) bool { return literals[i] < literals[j] })
	}

	if !changed {
		return cc, false
	}

	members := make([]ast.Node, 0, len(ranges)+len(literals)+len(other))
	for _, r := range ranges {
		if r.lo == r.hi {
			members = append(members, ast.NewLiteral(r.node.Span(), string(r.lo)))
			continue
		}
		members = append(members, ast.NewRange(r.node.Span(), ast.NewLiteral(r.node.Start.Span(), string(r.lo)), ast.NewLiteral(r.node.End.Span(), string(r.hi))))
	}
	for _, c := range literals {
		members = append(members, ast.NewLiteral(cc.Span(), string(c)))
	}
	members = append(members, other...)
	return ast.NewCharClass(cc.Span(), members, cc.Negated), true
}

// Verify compiles optimized, re-parses that text and, depending on opts,
// either checks that the re-parsed tree compiles back to the same text (a
// structural round-trip) or, when VerifyWithAutomata is set and
// automataEquivalent is non-nil, checks language equivalence of original
// and the re-parsed tree; an error from automataEquivalent (e.g. a tree
// outside the automata pipeline's regular subset) counts as a failure.
// Per spec §4.6's safety gate: any failure discards the optimization.
// automataEquivalent is supplied by the facade to avoid an import cycle
// with internal/automata.
func Verify(original, optimized *ast.Regex, opts Options, automataEquivalent func(a, b *ast.Regex) (bool, error)) bool {
	text := compiler.Compile(optimized)
	reparsed, err := parser.Parse(text, parser.Options{})
	if err != nil {
		return false
	}
	if !opts.VerifyWithAutomata || automataEquivalent == nil {
		return compiler.Compile(reparsed) == compiler.Compile(optimized)
	}
	ok, err := automataEquivalent(original, reparsed)
	return err == nil && ok
}
