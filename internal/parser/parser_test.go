package parser

import (
	"testing"

	"github.com/0x4d5352/rescope/internal/ast"
)

func mustParse(t *testing.T, pattern string) *ast.Regex {
	t.Helper()
	r, err := Parse(pattern, Options{})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	return r
}

func TestParseLiteralSequence(t *testing.T) {
	r := mustParse(t, "/abc/")
	seq, ok := r.Body.(*ast.Sequence)
	if !ok {
		t.Fatalf("Body = %T, want *ast.Sequence", r.Body)
	}
	if len(seq.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(seq.Children))
	}
	for i, want := range []string{"a", "b", "c"} {
		lit, ok := seq.Children[i].(*ast.Literal)
		if !ok || lit.Value != want {
			t.Errorf("Children[%d] = %#v, want Literal(%q)", i, seq.Children[i], want)
		}
	}
}

func TestParseAlternation(t *testing.T) {
	r := mustParse(t, "/a|b|c/")
	alt, ok := r.Body.(*ast.Alternation)
	if !ok {
		t.Fatalf("Body = %T, want *ast.Alternation", r.Body)
	}
	if len(alt.Branches) != 3 {
		t.Fatalf("len(Branches) = %d, want 3", len(alt.Branches))
	}
}

func TestParseQuantifier(t *testing.T) {
	r := mustParse(t, "/a*/")
	q, ok := r.Body.(*ast.Quantifier)
	if !ok {
		t.Fatalf("Body = %T, want *ast.Quantifier", r.Body)
	}
	if q.Min != 0 || q.Max != ast.Unbounded || q.Type != ast.Greedy {
		t.Errorf("Quantifier = %+v, want min=0 max=unbounded greedy", q)
	}
}

func TestParseQuantifierLazyAndPossessive(t *testing.T) {
	cases := map[string]ast.QuantifierType{
		"/a*?/": ast.Lazy,
		"/a*+/": ast.Possessive,
		"/a+?/": ast.Lazy,
	}
	for pattern, want := range cases {
		r := mustParse(t, pattern)
		q := r.Body.(*ast.Quantifier)
		if q.Type != want {
			t.Errorf("Parse(%q).Type = %v, want %v", pattern, q.Type, want)
		}
	}
}

func TestParseBraceQuantifier(t *testing.T) {
	cases := map[string][2]int{
		"/a{2}/":   {2, 2},
		"/a{2,5}/": {2, 5},
		"/a{2,}/":  {2, ast.Unbounded},
	}
	for pattern, want := range cases {
		r := mustParse(t, pattern)
		q := r.Body.(*ast.Quantifier)
		if q.Min != want[0] || q.Max != want[1] {
			t.Errorf("Parse(%q) = min=%d max=%d, want min=%d max=%d", pattern, q.Min, q.Max, want[0], want[1])
		}
	}
}

func TestParseQuantifierOnQuantifierIsError(t *testing.T) {
	_, err := Parse("/a**/", Options{})
	if err == nil {
		t.Fatal("expected parse error for a double quantifier")
	}
}

func TestParseQuantifierOnAnchorIsError(t *testing.T) {
	_, err := Parse("/^*/", Options{})
	if err == nil {
		t.Fatal("expected parse error for a quantified anchor")
	}
}

func TestParseCapturingGroupNumbering(t *testing.T) {
	r := mustParse(t, "/(a)(b(c))/")
	seq := r.Body.(*ast.Sequence)
	g1 := seq.Children[0].(*ast.Group)
	g2 := seq.Children[1].(*ast.Group)
	if g1.Number != 1 {
		t.Errorf("g1.Number = %d, want 1", g1.Number)
	}
	if g2.Number != 2 {
		t.Errorf("g2.Number = %d, want 2", g2.Number)
	}
	inner := g2.Child.(*ast.Sequence).Children[1].(*ast.Group)
	if inner.Number != 3 {
		t.Errorf("inner.Number = %d, want 3", inner.Number)
	}
}

func TestParseNonCapturingAndAtomicGroups(t *testing.T) {
	r := mustParse(t, "/(?:a)(?>b)/")
	seq := r.Body.(*ast.Sequence)
	g1 := seq.Children[0].(*ast.Group)
	g2 := seq.Children[1].(*ast.Group)
	if g1.Type != ast.GroupNonCapturing {
		t.Errorf("g1.Type = %v, want GroupNonCapturing", g1.Type)
	}
	if g2.Type != ast.GroupAtomic {
		t.Errorf("g2.Type = %v, want GroupAtomic", g2.Type)
	}
}

func TestParseLookaroundGroups(t *testing.T) {
	cases := map[string]ast.GroupType{
		"/(?=a)/":  ast.GroupLookaheadPos,
		"/(?!a)/":  ast.GroupLookaheadNeg,
		"/(?<=a)/": ast.GroupLookbehindPos,
		"/(?<!a)/": ast.GroupLookbehindNeg,
	}
	for pattern, want := range cases {
		r := mustParse(t, pattern)
		g := r.Body.(*ast.Group)
		if g.Type != want {
			t.Errorf("Parse(%q).Type = %v, want %v", pattern, g.Type, want)
		}
	}
}

func TestParseNamedGroupVariants(t *testing.T) {
	for _, pattern := range []string{"/(?<foo>a)/", "/(?'foo'a)/", "/(?P<foo>a)/"} {
		r := mustParse(t, pattern)
		g := r.Body.(*ast.Group)
		if g.Type != ast.GroupNamed {
			t.Fatalf("Parse(%q).Type = %v, want GroupNamed", pattern, g.Type)
		}
		if g.Name != "foo" {
			t.Errorf("Parse(%q).Name = %q, want %q", pattern, g.Name, "foo")
		}
		if g.Number != 1 {
			t.Errorf("Parse(%q).Number = %d, want 1", pattern, g.Number)
		}
	}
}

func TestParseInlineFlagsScopedAndUnscoped(t *testing.T) {
	r := mustParse(t, "/(?i:a)/")
	g := r.Body.(*ast.Group)
	if g.Type != ast.GroupInlineFlags || g.Flags != "i" {
		t.Fatalf("scoped: Type=%v Flags=%q", g.Type, g.Flags)
	}
	if g.Child == nil {
		t.Error("scoped inline-flags group should have a child")
	}

	r2 := mustParse(t, "/(?i)a/")
	seq := r2.Body.(*ast.Sequence)
	g2 := seq.Children[0].(*ast.Group)
	if g2.Type != ast.GroupInlineFlags || g2.Flags != "i" {
		t.Fatalf("unscoped: Type=%v Flags=%q", g2.Type, g2.Flags)
	}
	if g2.Child != nil {
		t.Error("unscoped inline-flags group should have a nil child")
	}
}

func TestParseBranchResetNumbering(t *testing.T) {
	r := mustParse(t, "/(?|(a)|(b)(c))(d)/")
	seq := r.Body.(*ast.Sequence)
	br := seq.Children[0].(*ast.Group)
	if br.Type != ast.GroupBranchReset {
		t.Fatalf("Type = %v, want GroupBranchReset", br.Type)
	}
	alt := br.Child.(*ast.Alternation)
	branch1 := alt.Branches[0].(*ast.Group)
	if branch1.Number != 1 {
		t.Errorf("branch1.Number = %d, want 1", branch1.Number)
	}
	branch2Seq := alt.Branches[1].(*ast.Sequence)
	b2g1 := branch2Seq.Children[0].(*ast.Group)
	b2g2 := branch2Seq.Children[1].(*ast.Group)
	if b2g1.Number != 1 || b2g2.Number != 2 {
		t.Errorf("branch2 numbers = %d,%d want 1,2", b2g1.Number, b2g2.Number)
	}
	trailing := seq.Children[1].(*ast.Group)
	if trailing.Number != 3 {
		t.Errorf("trailing.Number = %d, want 3 (max(2)+1)", trailing.Number)
	}
}

func TestParseCharClassRangeAndNegation(t *testing.T) {
	r := mustParse(t, "/[^a-z0-9]/")
	cc := r.Body.(*ast.CharClass)
	if !cc.Negated {
		t.Error("expected negated class")
	}
	rng, ok := cc.Children[0].(*ast.Range)
	if !ok {
		t.Fatalf("Children[0] = %T, want *ast.Range", cc.Children[0])
	}
	if rng.Start.(*ast.Literal).Value != "a" || rng.End.(*ast.Literal).Value != "z" {
		t.Errorf("range = %v-%v, want a-z", rng.Start, rng.End)
	}
}

func TestParseCharClassOperation(t *testing.T) {
	r := mustParse(t, "/[a-z&&[^aeiou]]/")
	cc := r.Body.(*ast.CharClass)
	op, ok := cc.Children[0].(*ast.ClassOperation)
	if !ok {
		t.Fatalf("Children[0] = %T, want *ast.ClassOperation", cc.Children[0])
	}
	if op.Op != ast.ClassIntersection {
		t.Errorf("Op = %v, want ClassIntersection", op.Op)
	}
}

func TestParsePosixClass(t *testing.T) {
	r := mustParse(t, "/[[:alpha:]]/")
	cc := r.Body.(*ast.CharClass)
	pc, ok := cc.Children[0].(*ast.PosixClass)
	if !ok {
		t.Fatalf("Children[0] = %T, want *ast.PosixClass", cc.Children[0])
	}
	if pc.Name != "alpha" {
		t.Errorf("Name = %q, want %q", pc.Name, "alpha")
	}
}

func TestParseBackreferences(t *testing.T) {
	r := mustParse(t, `/(a)\1/`)
	seq := r.Body.(*ast.Sequence)
	br := seq.Children[1].(*ast.Backref)
	if br.Ref != "1" || br.Named {
		t.Errorf("Backref = %+v, want Ref=1 Named=false", br)
	}
}

func TestParseNamedBackreference(t *testing.T) {
	r := mustParse(t, `/(?<foo>a)\k<foo>/`)
	seq := r.Body.(*ast.Sequence)
	br := seq.Children[1].(*ast.Backref)
	if br.Ref != "foo" || !br.Named {
		t.Errorf("Backref = %+v, want Ref=foo Named=true", br)
	}
}

func TestParsePythonBackrefRejected(t *testing.T) {
	_, err := Parse("/(?<foo>a)(?P=foo)/", Options{})
	if err == nil {
		t.Fatal("expected error for (?P=name)")
	}
}

func TestParseConditional(t *testing.T) {
	r := mustParse(t, "/(?(1)a|b)/")
	cond := r.Body.(*ast.Conditional)
	br := cond.Condition.(*ast.Backref)
	if br.Ref != "1" {
		t.Errorf("Condition.Ref = %q, want %q", br.Ref, "1")
	}
	if cond.Yes.(*ast.Literal).Value != "a" {
		t.Errorf("Yes = %v, want Literal(a)", cond.Yes)
	}
	if cond.No.(*ast.Literal).Value != "b" {
		t.Errorf("No = %v, want Literal(b)", cond.No)
	}
}

func TestParseConditionalWithLookaroundCondition(t *testing.T) {
	r := mustParse(t, "/(?(?=a)b|c)/")
	cond := r.Body.(*ast.Conditional)
	g, ok := cond.Condition.(*ast.Group)
	if !ok || g.Type != ast.GroupLookaheadPos {
		t.Fatalf("Condition = %#v, want a positive lookahead group", cond.Condition)
	}
}

func TestParseDefineBlock(t *testing.T) {
	r := mustParse(t, "/(?(DEFINE)(?<foo>a))/")
	def, ok := r.Body.(*ast.Define)
	if !ok {
		t.Fatalf("Body = %T, want *ast.Define", r.Body)
	}
	if len(def.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(def.Children))
	}
	g := def.Children[0].(*ast.Group)
	if g.Name != "foo" {
		t.Errorf("Name = %q, want foo", g.Name)
	}
}

func TestParsePcreVerbAndLimitMatch(t *testing.T) {
	r := mustParse(t, "/(*FAIL)(*LIMIT_MATCH=100)/")
	seq := r.Body.(*ast.Sequence)
	v := seq.Children[0].(*ast.PcreVerb)
	if v.Name != "FAIL" {
		t.Errorf("Name = %q, want FAIL", v.Name)
	}
	lm := seq.Children[1].(*ast.LimitMatch)
	if lm.Limit != 100 {
		t.Errorf("Limit = %d, want 100", lm.Limit)
	}
}

func TestParseComment(t *testing.T) {
	r := mustParse(t, "/(?#hello)a/")
	seq := r.Body.(*ast.Sequence)
	c := seq.Children[0].(*ast.Comment)
	if c.Text != "hello" {
		t.Errorf("Text = %q, want %q", c.Text, "hello")
	}
}

func TestParseTolerantModeCollectsErrors(t *testing.T) {
	r, err := Parse("/a**/", Options{Tolerant: true})
	if err == nil {
		t.Fatal("expected an aggregated ParseError")
	}
	if r == nil {
		t.Fatal("tolerant mode should still return a partial AST")
	}
	pe, ok := err.(*ParseError)
	if !ok || len(pe.Errors) == 0 {
		t.Fatalf("err = %#v, want non-empty *ParseError", err)
	}
}

func TestParseMaxLength(t *testing.T) {
	_, err := Parse("/aaaaaaaaaa/", Options{MaxLength: 3})
	if err == nil {
		t.Fatal("expected error for pattern exceeding MaxLength")
	}
}
