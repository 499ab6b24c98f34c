package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/0x4d5352/rescope/internal/parser"
)

// roundTrip parses, compiles, re-parses, and compiles again: the two
// compiled strings must match exactly (the round-trip law does not
// require byte-identity with the original source, only a stable fixpoint).
func roundTrip(t *testing.T, pattern string) string {
	t.Helper()
	r1, err := parser.Parse(pattern, parser.Options{})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	out1 := Compile(r1)
	r2, err := parser.Parse(out1, parser.Options{})
	if err != nil {
		t.Fatalf("Parse(Compile(%q)) = %q, error: %v", pattern, out1, err)
	}
	out2 := Compile(r2)
	if out1 != out2 {
		t.Fatalf("not a fixpoint: Compile(%q)=%q but Compile(reparse)=%q", pattern, out1, out2)
	}
	return out1
}

func TestCompileLiteralsAndEscaping(t *testing.T) {
	roundTrip(t, `/a\.b\*c/`)
}

func TestCompileAlternation(t *testing.T) {
	roundTrip(t, "/a|b|c/")
}

func TestCompileGroups(t *testing.T) {
	for _, p := range []string{
		"/(a)/", "/(?:a)/", "/(?>a)/", "/(?=a)/", "/(?!a)/",
		"/(?<=a)/", "/(?<!a)/", "/(?<foo>a)/", "/(?|(a)|(b))/",
	} {
		roundTrip(t, p)
	}
}

func TestCompileInlineFlags(t *testing.T) {
	roundTrip(t, "/(?i:a)/")
	roundTrip(t, "/(?i)a/")
}

func TestCompileQuantifiers(t *testing.T) {
	for _, p := range []string{"/a*/", "/a+/", "/a?/", "/a{2,5}/", "/a*?/", "/a*+/"} {
		roundTrip(t, p)
	}
}

func TestCompileCharClass(t *testing.T) {
	roundTrip(t, "/[a-z0-9_]/")
	roundTrip(t, "/[^a-z]/")
	roundTrip(t, "/[[:alpha:]]/")
}

func TestCompileBackrefAndSubroutine(t *testing.T) {
	roundTrip(t, `/(a)\1/`)
	roundTrip(t, `/(?<foo>a)\k<foo>/`)
	roundTrip(t, "/(?<foo>a)(?&foo)/")
}

func TestCompileConditional(t *testing.T) {
	roundTrip(t, "/(?(1)a|b)/")
	roundTrip(t, "/(?(?=a)b|c)/")
}

func TestCompileVerbsAndLimitMatch(t *testing.T) {
	roundTrip(t, "/(*FAIL)/")
	roundTrip(t, "/(*LIMIT_MATCH=100)/")
}

func TestCompileEscapesDelimiter(t *testing.T) {
	out := roundTrip(t, `/a\/b/`)
	if out != `/a\/b/` {
		t.Errorf("Compile = %q, want %q", out, `/a\/b/`)
	}
}

func TestCompileIsIdempotentAcrossPatterns(t *testing.T) {
	patterns := []string{
		`/ab*c/`,
		`/(a|b)+/i`,
		`/[^a-z]{2,4}/`,
		`/(?<name>\w+)/`,
	}
	for _, p := range patterns {
		got := roundTrip(t, p)
		r, err := parser.Parse(got, parser.Options{})
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", got, err)
		}
		want := Compile(r)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Compile(%q) not stable (-want +got):\n%s", p, diff)
		}
	}
}
