package charset

import "testing"

func TestNewMergesAdjacentAndOverlapping(t *testing.T) {
	cs := New(Range{Lo: 'a', Hi: 'c'}, Range{Lo: 'd', Hi: 'f'}, Range{Lo: 'b', Hi: 'e'})
	if len(cs.Ranges) != 1 || cs.Ranges[0] != (Range{Lo: 'a', Hi: 'f'}) {
		t.Fatalf("got %v", cs.Ranges)
	}
}

func TestContains(t *testing.T) {
	cs := New(Range{Lo: '0', Hi: '9'}, Range{Lo: 'a', Hi: 'f'})
	for _, r := range []rune{'0', '5', '9', 'a', 'f'} {
		if !cs.Contains(r) {
			t.Errorf("expected Contains(%q)", r)
		}
	}
	for _, r := range []rune{'/', ':', 'g'} {
		if cs.Contains(r) {
			t.Errorf("unexpected Contains(%q)", r)
		}
	}
}

func TestUnionIntersectSubtract(t *testing.T) {
	digits := New(Range{Lo: '0', Hi: '9'})
	hex := New(Range{Lo: '0', Hi: '9'}, Range{Lo: 'a', Hi: 'f'})
	union := digits.Union(New(Range{Lo: 'a', Hi: 'f'}))
	if !union.Contains('0') || !union.Contains('f') {
		t.Fatalf("union missing members: %v", union.Ranges)
	}
	inter := digits.Intersect(hex)
	if len(inter.Ranges) != 1 || inter.Ranges[0] != (Range{Lo: '0', Hi: '9'}) {
		t.Fatalf("intersect = %v", inter.Ranges)
	}
	sub := hex.Subtract(digits)
	if sub.Contains('5') || !sub.Contains('a') {
		t.Fatalf("subtract = %v", sub.Ranges)
	}
}

func TestIntersectsDisjoint(t *testing.T) {
	a := New(Range{Lo: 'a', Hi: 'c'})
	b := New(Range{Lo: 'x', Hi: 'z'})
	if a.Intersects(b) {
		t.Fatal("expected no intersection")
	}
	if !a.Intersects(New(Range{Lo: 'c', Hi: 'd'})) {
		t.Fatal("expected intersection at boundary")
	}
}

func TestUnknownPropagates(t *testing.T) {
	u := UnknownSet()
	known := Single('a')
	if !u.Contains('z') {
		t.Fatal("unknown set should contain everything")
	}
	if u.Union(known).Unknown != true {
		t.Fatal("union with unknown should stay unknown")
	}
	if got := u.Intersect(known); got.Unknown {
		t.Fatal("intersect of unknown with known should resolve to the known set")
	}
	if !u.Intersects(known) {
		t.Fatal("unknown should conservatively intersect anything")
	}
}

func TestComplement(t *testing.T) {
	cs := New(Range{Lo: 'b', Hi: 'b'})
	comp := cs.Complement('d')
	if comp.Contains('b') {
		t.Fatal("complement should not contain 'b'")
	}
	for _, r := range []rune{'a', 'c', 'd'} {
		if !comp.Contains(r) {
			t.Errorf("complement should contain %q", r)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !(CharSet{}).IsEmpty() {
		t.Fatal("zero value should be empty")
	}
	if UnknownSet().IsEmpty() {
		t.Fatal("unknown set should never be empty")
	}
	if Single('a').IsEmpty() {
		t.Fatal("single-member set should not be empty")
	}
}

func TestSample(t *testing.T) {
	if _, ok := (CharSet{}).Sample(); ok {
		t.Fatal("expected no sample from empty set")
	}
	if _, ok := UnknownSet().Sample(); ok {
		t.Fatal("expected no sample from unknown set")
	}
	r, ok := New(Range{Lo: 'x', Hi: 'z'}).Sample()
	if !ok || r != 'x' {
		t.Fatalf("Sample() = %q, %v", r, ok)
	}
}
