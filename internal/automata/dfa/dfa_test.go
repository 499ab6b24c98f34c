package dfa

import (
	"errors"
	"testing"

	"github.com/0x4d5352/rescope/internal/automata"
	"github.com/0x4d5352/rescope/internal/automata/nfa"
	"github.com/0x4d5352/rescope/internal/parser"
)

func build(t *testing.T, pattern string, opts Options) *DFA {
	t.Helper()
	r, err := parser.Parse(pattern, parser.Options{})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	n, err := nfa.Build(r.Body, false, nfa.DefaultOptions())
	if err != nil {
		t.Fatalf("nfa.Build(%q) error: %v", pattern, err)
	}
	d, err := Build(n, opts)
	if err != nil {
		t.Fatalf("dfa.Build(%q) error: %v", pattern, err)
	}
	return d
}

func symbolOf(d *DFA, b byte) int {
	for i, r := range d.Alphabet {
		if b >= r.Lo && b <= r.Hi {
			return i
		}
	}
	return -1
}

func accepts(d *DFA, s string) bool {
	cur := d.Start
	for i := 0; i < len(s); i++ {
		sym := symbolOf(d, s[i])
		if sym < 0 {
			return false
		}
		cur = d.States[cur].Trans[sym]
	}
	return d.States[cur].Accept
}

func TestBuildLiteralAcceptsExactString(t *testing.T) {
	d := build(t, "/abc/", DefaultOptions())
	for s, want := range map[string]bool{"abc": true, "ab": false, "abcd": false, "xbc": false, "": false} {
		if got := accepts(d, s); got != want {
			t.Errorf("accepts(abc, %q) = %v, want %v", s, got, want)
		}
	}
}

func TestBuildStarAcceptsZeroOrMore(t *testing.T) {
	d := build(t, "/a*/", DefaultOptions())
	for s, want := range map[string]bool{"": true, "a": true, "aaaa": true, "b": false, "aab": false} {
		if got := accepts(d, s); got != want {
			t.Errorf("accepts(a*, %q) = %v, want %v", s, got, want)
		}
	}
}

func TestBuildAlternation(t *testing.T) {
	d := build(t, "/cat|dog/", DefaultOptions())
	for s, want := range map[string]bool{"cat": true, "dog": true, "cow": false, "do": false} {
		if got := accepts(d, s); got != want {
			t.Errorf("accepts(cat|dog, %q) = %v, want %v", s, got, want)
		}
	}
}

func TestBuildIsTotal(t *testing.T) {
	d := build(t, "/abc/", DefaultOptions())
	for _, s := range d.States {
		if len(s.Trans) != len(d.Alphabet) {
			t.Fatalf("state has %d transitions, want %d (one per alphabet range)", len(s.Trans), len(d.Alphabet))
		}
	}
	// the dead state (0) always loops to itself
	for _, t2 := range d.States[0].Trans {
		if t2 != 0 {
			t.Fatalf("dead state transition = %d, want 0", t2)
		}
	}
	if d.States[0].Accept {
		t.Fatal("dead state must not be accepting")
	}
}

func TestEffectiveAlphabetCollapsesUnreferencedBytes(t *testing.T) {
	d := build(t, "/[a-z]/", DefaultOptions())
	// only boundaries at 'a' and 'z'+1 (plus 0 and 256) are relevant, so
	// the alphabet should be far smaller than 256 singleton ranges.
	if len(d.Alphabet) > 8 {
		t.Errorf("Alphabet has %d ranges, want a small number for a single contiguous class", len(d.Alphabet))
	}
	if !accepts(d, "m") || accepts(d, "M") || accepts(d, "") {
		t.Error("unexpected [a-z] acceptance")
	}
}

func TestBuildRespectsStateCeiling(t *testing.T) {
	_, err := build2(t, "/(a|b)(a|b)(a|b)(a|b)/", Options{MaxStates: 1, MaxTransitions: 1_000_000})
	if err == nil {
		t.Fatal("expected a ComplexityError")
	}
	var ce *automata.ComplexityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *automata.ComplexityError, got %T: %v", err, err)
	}
}

func build2(t *testing.T, pattern string, opts Options) (*DFA, error) {
	t.Helper()
	r, err := parser.Parse(pattern, parser.Options{})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	n, err := nfa.Build(r.Body, false, nfa.DefaultOptions())
	if err != nil {
		t.Fatalf("nfa.Build(%q) error: %v", pattern, err)
	}
	return Build(n, opts)
}

func TestMinimizeHopcroftPreservesLanguage(t *testing.T) {
	d := build(t, "/a{0,3}/", DefaultOptions())
	m := Minimize(d, Hopcroft)
	for s, want := range map[string]bool{"": true, "a": true, "aaa": true, "aaaa": false, "b": false} {
		if got := accepts(m, s); got != want {
			t.Errorf("accepts(minimized a{0,3}, %q) = %v, want %v", s, got, want)
		}
	}
	if len(m.States) > len(d.States) {
		t.Errorf("minimized state count %d exceeds original %d", len(m.States), len(d.States))
	}
}

func TestMinimizeMoorePreservesLanguage(t *testing.T) {
	d := build(t, "/a{0,3}/", DefaultOptions())
	m := Minimize(d, Moore)
	for s, want := range map[string]bool{"": true, "a": true, "aaa": true, "aaaa": false, "b": false} {
		if got := accepts(m, s); got != want {
			t.Errorf("accepts(minimized a{0,3}, %q) = %v, want %v", s, got, want)
		}
	}
}

func TestMinimizeKeepsSingleDeadState(t *testing.T) {
	d := build(t, "/cat|dog/", DefaultOptions())
	for _, algo := range []Minimization{Hopcroft, Moore} {
		m := Minimize(d, algo)
		deadCount := 0
		for i, s := range m.States {
			allSelf := true
			for _, t2 := range s.Trans {
				if int(t2) != i {
					allSelf = false
					break
				}
			}
			if allSelf && !s.Accept {
				deadCount++
			}
		}
		if deadCount != 1 {
			t.Errorf("algo %v: found %d dead-looking states, want exactly 1", algo, deadCount)
		}
	}
}

func TestCacheGetOrBuildRunsOnce(t *testing.T) {
	c := NewCache(4)
	calls := 0
	build := func() (*DFA, error) {
		calls++
		return &DFA{States: []State{{}}, Alphabet: nil}, nil
	}
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrBuild("k", build); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("build called %d times, want 1", calls)
	}
	if c.Len() != 1 {
		t.Errorf("cache len = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	mk := func(key string) func() (*DFA, error) {
		return func() (*DFA, error) { return &DFA{States: []State{{}}}, nil }
	}
	c.GetOrBuild("a", mk("a"))
	c.GetOrBuild("b", mk("b"))
	c.GetOrBuild("c", mk("c")) // evicts "a" (least recently used)
	if _, ok := c.Get("a"); ok {
		t.Error("expected \"a\" to have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected \"b\" to still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected \"c\" to still be cached")
	}
}
