package lexer

import (
	"testing"

	"github.com/0x4d5352/rescope/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func mustLex(t *testing.T, pattern string) *Result {
	t.Helper()
	r, err := Lex(pattern)
	if err != nil {
		t.Fatalf("Lex(%q) error: %v", pattern, err)
	}
	return r
}

func TestLexDelimiterAndFlags(t *testing.T) {
	r := mustLex(t, "/abc/im")
	if r.Delimiter != '/' {
		t.Errorf("Delimiter = %q, want '/'", r.Delimiter)
	}
	if r.Flags != "im" {
		t.Errorf("Flags = %q, want %q", r.Flags, "im")
	}
	if r.Body != "abc" {
		t.Errorf("Body = %q, want %q", r.Body, "abc")
	}
}

func TestLexPairedDelimiters(t *testing.T) {
	r := mustLex(t, "{a.b}x")
	if r.Delimiter != '{' || r.Flags != "x" || r.Body != "a.b" {
		t.Fatalf("got delimiter=%q flags=%q body=%q", r.Delimiter, r.Flags, r.Body)
	}
}

func TestLexUnknownFlagError(t *testing.T) {
	_, err := Lex("/a/q")
	if err == nil {
		t.Fatal("expected error for unknown flag 'q'")
	}
}

func TestLexTooShort(t *testing.T) {
	_, err := Lex("/")
	if err == nil {
		t.Fatal("expected error for too-short pattern")
	}
}

func TestLexNoClosingDelimiter(t *testing.T) {
	_, err := Lex("/abc")
	if err == nil {
		t.Fatal("expected error for missing closing delimiter")
	}
}

func TestLexEscapedDelimiterIsLiteral(t *testing.T) {
	r := mustLex(t, `/a\/b/`)
	if r.Body != `a\/b` {
		t.Fatalf("Body = %q, want %q", r.Body, `a\/b`)
	}
}

func TestLexBasicTokens(t *testing.T) {
	r := mustLex(t, "/a.^$|/")
	got := kinds(r.Tokens)
	want := []token.Kind{
		token.Literal, token.Dot, token.Anchor, token.Anchor,
		token.Alternation, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexCharTypes(t *testing.T) {
	r := mustLex(t, `/\d\D\w\W\s\S/`)
	for _, tok := range r.Tokens[:6] {
		if tok.Kind != token.CharType {
			t.Errorf("token %v: kind = %v, want CharType", tok, tok.Kind)
		}
	}
}

func TestLexQuantifiers(t *testing.T) {
	r := mustLex(t, `/a*b+c?d*?e+?f{2,3}g{4}h{5,}/`)
	var qCount int
	for _, tok := range r.Tokens {
		if tok.Kind == token.Quantifier {
			qCount++
		}
	}
	if qCount != 8 {
		t.Errorf("quantifier count = %d, want 8", qCount)
	}
}

func TestLexBraceNonQuantifierIsLiteral(t *testing.T) {
	r := mustLex(t, "/a{foo}/")
	for _, tok := range r.Tokens {
		if tok.Kind == token.Quantifier {
			t.Errorf("unexpected quantifier token in %q", "a{foo}")
		}
	}
}

func TestLexGroupOpenVariants(t *testing.T) {
	cases := map[string]token.Kind{
		"/(a)/":        token.GroupOpen,
		"/(?:a)/":      token.GroupOpenNonCap,
		"/(?>a)/":      token.GroupOpenAtomic,
		"/(?|a)/":      token.GroupOpenBranch,
		"/(?=a)/":      token.GroupOpenLookahead,
		"/(?!a)/":      token.GroupOpenLookahead,
		"/(?<=a)/":     token.GroupOpenLookbehind,
		"/(?<!a)/":     token.GroupOpenLookbehind,
		"/(?<name>a)/": token.GroupOpenNamed,
		"/(?'name'a)/": token.GroupOpenNamed,
		"/(?P<name>a)/": token.GroupOpenNamed,
		"/(?i:a)/":     token.GroupOpenFlags,
		"/(?(1)a)/":    token.GroupOpenCond,
	}
	for pattern, want := range cases {
		r := mustLex(t, pattern)
		if r.Tokens[0].Kind != want {
			t.Errorf("Lex(%q) first token kind = %v, want %v", pattern, r.Tokens[0].Kind, want)
		}
	}
}

func TestLexPythonBackrefRejected(t *testing.T) {
	_, err := Lex("/(?P=name)/")
	if err == nil {
		t.Fatal("expected error for (?P=name)")
	}
}

func TestLexCommentAndCallout(t *testing.T) {
	r := mustLex(t, "/(?#a comment)(?C1)/")
	if r.Tokens[0].Kind != token.Comment {
		t.Errorf("first token kind = %v, want Comment", r.Tokens[0].Kind)
	}
	if r.Tokens[1].Kind != token.Callout {
		t.Errorf("second token kind = %v, want Callout", r.Tokens[1].Kind)
	}
}

func TestLexVerbsAndLimitMatch(t *testing.T) {
	r := mustLex(t, "/(*FAIL)(*LIMIT_MATCH=100)/")
	if r.Tokens[0].Kind != token.PcreVerb {
		t.Errorf("first token kind = %v, want PcreVerb", r.Tokens[0].Kind)
	}
	if r.Tokens[1].Kind != token.LimitMatch {
		t.Errorf("second token kind = %v, want LimitMatch", r.Tokens[1].Kind)
	}
}

func TestLexUnicodeAndOctalEscapes(t *testing.T) {
	r := mustLex(t, `/\p{L}\pL\x41\x{1F600}\101\o{101}\cA/`)
	want := []token.Kind{
		token.UnicodeProperty, token.UnicodeProperty, token.UnicodeEscape,
		token.UnicodeEscape, token.Octal, token.Octal, token.Control, token.EOF,
	}
	got := kinds(r.Tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexBackreferencesAndSubroutines(t *testing.T) {
	r := mustLex(t, `/\1\g{1}\g<name>\k<name>\k'name'/`)
	want := []token.Kind{
		token.Backref, token.Backref, token.Subroutine, token.Backref, token.Backref, token.EOF,
	}
	got := kinds(r.Tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexCharClassBasics(t *testing.T) {
	r := mustLex(t, "/[a-z0-9_]/")
	want := []token.Kind{
		token.ClassOpen, token.Literal, token.RangeHyphen, token.Literal,
		token.Literal, token.RangeHyphen, token.Literal, token.Literal,
		token.ClassClose, token.EOF,
	}
	got := kinds(r.Tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexCharClassLeadingBracketIsLiteral(t *testing.T) {
	r := mustLex(t, "/[]a]/")
	if r.Tokens[0].Kind != token.ClassOpen {
		t.Fatalf("token[0] = %v, want ClassOpen", r.Tokens[0].Kind)
	}
	if r.Tokens[1].Kind != token.Literal || r.Tokens[1].Text != "]" {
		t.Fatalf("token[1] = %v %q, want Literal %q", r.Tokens[1].Kind, r.Tokens[1].Text, "]")
	}
}

func TestLexCharClassNegated(t *testing.T) {
	r := mustLex(t, "/[^abc]/")
	if r.Tokens[0].Kind != token.ClassOpen {
		t.Fatalf("token[0] = %v, want ClassOpen", r.Tokens[0].Kind)
	}
	if r.Tokens[0].Text != "[^" {
		t.Errorf("ClassOpen text = %q, want %q", r.Tokens[0].Text, "[^")
	}
}

func TestLexCharClassOperators(t *testing.T) {
	r := mustLex(t, "/[a-z&&[^aeiou]]/")
	var hasIntersect bool
	for _, tok := range r.Tokens {
		if tok.Kind == token.ClassIntersect {
			hasIntersect = true
		}
	}
	if !hasIntersect {
		t.Errorf("expected a ClassIntersect token in %v", kinds(r.Tokens))
	}
}

func TestLexPosixClass(t *testing.T) {
	r := mustLex(t, "/[[:alpha:]]/")
	if r.Tokens[1].Kind != token.PosixClass {
		t.Fatalf("token[1] = %v, want PosixClass", r.Tokens[1].Kind)
	}
	if r.Tokens[1].Text != "[:alpha:]" {
		t.Errorf("PosixClass text = %q, want %q", r.Tokens[1].Text, "[:alpha:]")
	}
}

func TestLexTokenOffsetsAreBodyRelative(t *testing.T) {
	r := mustLex(t, "/ab.c/")
	dotTok := r.Tokens[2]
	if dotTok.Kind != token.Dot {
		t.Fatalf("expected Dot token, got %v", dotTok.Kind)
	}
	if dotTok.Span.Start != 2 {
		t.Errorf("Dot span.Start = %d, want 2 (body-relative, not pattern-relative)", dotTok.Span.Start)
	}
}
