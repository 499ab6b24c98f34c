package charset

import (
	"testing"

	"github.com/0x4d5352/rescope/internal/parser"
)

func firstSetOf(t *testing.T, pattern string, unicodeFlag bool) CharSet {
	t.Helper()
	r, err := parser.Parse(pattern, parser.Options{})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	return FirstSet(r.Body, unicodeFlag)
}

func TestFirstSetLiteral(t *testing.T) {
	fs := firstSetOf(t, "/abc/", false)
	if !fs.Contains('a') || fs.Contains('b') {
		t.Fatalf("expected only 'a', got %v", fs.Ranges)
	}
}

func TestFirstSetDigitClass(t *testing.T) {
	fs := firstSetOf(t, `/\d+/`, false)
	if !fs.Contains('5') || fs.Contains('a') {
		t.Fatalf("got %v", fs.Ranges)
	}
}

func TestFirstSetUnicodeFlagMakesDigitUnknown(t *testing.T) {
	fs := firstSetOf(t, `/\d/`, true)
	if !fs.Unknown {
		t.Fatalf("expected unknown set under u flag, got %v", fs.Ranges)
	}
}

func TestFirstSetAlternationUnion(t *testing.T) {
	fs := firstSetOf(t, "/a|b/", false)
	if !fs.Contains('a') || !fs.Contains('b') || fs.Contains('c') {
		t.Fatalf("got %v", fs.Ranges)
	}
}

func TestFirstSetSequenceSkipsNullablePrefix(t *testing.T) {
	fs := firstSetOf(t, "/a*b/", false)
	if !fs.Contains('a') || !fs.Contains('b') {
		t.Fatalf("expected both a and b in first-set, got %v", fs.Ranges)
	}
}

func TestFirstSetNegatedClass(t *testing.T) {
	fs := firstSetOf(t, "/[^a-z]/", false)
	if fs.Contains('m') || !fs.Contains('0') {
		t.Fatalf("got %v", fs.Ranges)
	}
}

func TestFirstSetLookaheadIsEmpty(t *testing.T) {
	fs := firstSetOf(t, "/(?=a)b/", false)
	if fs.Contains('a') || !fs.Contains('b') {
		t.Fatalf("lookahead should not contribute to first-set, got %v", fs.Ranges)
	}
}

func TestCanBeEmpty(t *testing.T) {
	r, err := parser.Parse("/a*/", parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !CanBeEmpty(r.Body) {
		t.Fatal("a* should be nullable")
	}
	r2, _ := parser.Parse("/a+/", parser.Options{})
	if CanBeEmpty(r2.Body) {
		t.Fatal("a+ should not be nullable")
	}
}
