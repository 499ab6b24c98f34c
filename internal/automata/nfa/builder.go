package nfa

import (
	"unicode/utf8"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/automata"
	"github.com/0x4d5352/rescope/internal/charset"
)

// Options configures Thompson construction.
type Options struct {
	// MaxUnroll caps how many copies a bounded {m,n} quantifier may
	// unroll into before Build aborts with *automata.ComplexityError.
	MaxUnroll int
}

// DefaultOptions returns the spec's default unroll ceiling.
func DefaultOptions() Options { return Options{MaxUnroll: 1024} }

type patchField uint8

const (
	patchNext patchField = iota
	patchLeft
	patchRight
	patchTransition
)

type patchPoint struct {
	id    StateID
	field patchField
	idx   int
}

// frag is a partially-built NFA fragment: a single entry state and the
// list of as-yet-unpatched outgoing edges (its "accept"). Concatenating
// two fragments patches the first's out-list to the second's start;
// nothing else about either fragment changes. This is the classic
// Thompson-construction-via-patch-lists technique, avoiding the need for
// a mutable placeholder accept state per fragment.
type frag struct {
	start StateID
	out   []patchPoint
}

type builder struct {
	states      []State
	unicodeFlag bool
	opts        Options
}

// Build compiles body (already passed through automata.Validate — the
// regular subset only) into a Thompson NFA. State 0 is always the
// single StateMatch accept state; every fragment's dangling out-edges
// are patched to it once the whole tree has been compiled.
func Build(body ast.Node, unicodeFlag bool, opts Options) (*NFA, error) {
	if opts.MaxUnroll <= 0 {
		opts = DefaultOptions()
	}
	b := &builder{states: []State{{Kind: StateMatch}}, unicodeFlag: unicodeFlag, opts: opts}
	f, err := b.compile(body)
	if err != nil {
		return nil, err
	}
	b.patch(f.out, 0)
	return &NFA{States: b.states, Start: f.start}, nil
}

func (b *builder) newState(s State) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, s)
	return id
}

func (b *builder) patch(points []patchPoint, target StateID) {
	for _, p := range points {
		switch p.field {
		case patchNext:
			b.states[p.id].Next = target
		case patchLeft:
			b.states[p.id].Left = target
		case patchRight:
			b.states[p.id].Right = target
		case patchTransition:
			b.states[p.id].Transitions[p.idx].Next = target
		}
	}
}

func (b *builder) emptyFrag() frag {
	id := b.newState(State{Kind: StateEpsilon, Next: InvalidState})
	return frag{start: id, out: []patchPoint{{id: id, field: patchNext}}}
}

func (b *builder) byteFrag(lo, hi byte) frag {
	id := b.newState(State{Kind: StateByteRange, Lo: lo, Hi: hi, Next: InvalidState})
	return frag{start: id, out: []patchPoint{{id: id, field: patchNext}}}
}

type byteRange struct{ lo, hi byte }

// clampToByteRanges narrows a rune-level CharSet to the byte alphabet
// (spec §4.8.2: "Symbols are byte values (0-255)"). Ranges entirely
// above 0xFF are dropped; ranges straddling it are clamped. An Unknown
// set (an unresolved \p{...} property, say) conservatively becomes the
// full byte range: the automata layer would rather over-accept than
// silently misjudge a language relationship.
func clampToByteRanges(cs charset.CharSet) []byteRange {
	if cs.Unknown {
		return []byteRange{{0x00, 0xFF}}
	}
	var out []byteRange
	for _, r := range cs.Ranges {
		if r.Lo > 0xFF {
			continue
		}
		hi := r.Hi
		if hi > 0xFF {
			hi = 0xFF
		}
		out = append(out, byteRange{lo: byte(r.Lo), hi: byte(hi)})
	}
	return out
}

func (b *builder) sparseFrag(ranges []byteRange) frag {
	switch len(ranges) {
	case 0:
		// No representable byte satisfies this atom: model it as a
		// byte range no byte can fall in (lo > hi), so it is a dead
		// end rather than a builder panic.
		return b.byteFrag(1, 0)
	case 1:
		return b.byteFrag(ranges[0].lo, ranges[0].hi)
	}
	id := b.newState(State{Kind: StateSparse})
	trs := make([]Transition, len(ranges))
	out := make([]patchPoint, len(ranges))
	for i, r := range ranges {
		trs[i] = Transition{Lo: r.lo, Hi: r.hi, Next: InvalidState}
		out[i] = patchPoint{id: id, field: patchTransition, idx: i}
	}
	b.states[id].Transitions = trs
	return frag{start: id, out: out}
}

func (b *builder) charSetFrag(n ast.Node) frag {
	return b.sparseFrag(clampToByteRanges(charset.FirstSet(n, b.unicodeFlag)))
}

func (b *builder) literalBytes(bs []byte) frag {
	if len(bs) == 0 {
		return b.emptyFrag()
	}
	f := b.byteFrag(bs[0], bs[0])
	for _, c := range bs[1:] {
		next := b.byteFrag(c, c)
		b.patch(f.out, next.start)
		f = frag{start: f.start, out: next.out}
	}
	return f
}

// compile assumes body has already passed automata.Validate: it does
// not itself reject backreferences, lookarounds, subroutines,
// conditionals, verbs, or \K.
func (b *builder) compile(n ast.Node) (frag, error) {
	switch x := n.(type) {
	case nil:
		return b.emptyFrag(), nil
	case *ast.Sequence:
		return b.compileSequence(x.Children)
	case *ast.Alternation:
		return b.compileAlternation(x.Branches)
	case *ast.Group:
		if x.Type == ast.GroupInlineFlags && x.Child == nil {
			return b.emptyFrag(), nil
		}
		return b.compile(x.Child)
	case *ast.Quantifier:
		return b.compileQuantifier(x)
	case *ast.Literal:
		return b.literalBytes([]byte(x.Value)), nil
	case *ast.CharLiteral:
		buf := make([]byte, utf8.UTFMax)
		n := utf8.EncodeRune(buf, x.Rune)
		return b.literalBytes(buf[:n]), nil
	case *ast.Dot, *ast.CharType, *ast.CharClass:
		return b.charSetFrag(n), nil
	case *ast.Anchor, *ast.Assertion, *ast.Comment, *ast.Callout, *ast.LimitMatch:
		// Zero-width or no-op: contributes no consumed byte. Anchors and
		// word-boundary assertions are positional tests the automata
		// pipeline does not model; treating them as epsilon is a
		// conservative over-approximation (the built automaton accepts
		// a superset of the truly anchored language).
		return b.emptyFrag(), nil
	default:
		return b.emptyFrag(), nil
	}
}

func (b *builder) compileSequence(children []ast.Node) (frag, error) {
	if len(children) == 0 {
		return b.emptyFrag(), nil
	}
	result, err := b.compile(children[0])
	if err != nil {
		return frag{}, err
	}
	for _, c := range children[1:] {
		next, err := b.compile(c)
		if err != nil {
			return frag{}, err
		}
		b.patch(result.out, next.start)
		result = frag{start: result.start, out: next.out}
	}
	return result, nil
}

func (b *builder) compileAlternation(branches []ast.Node) (frag, error) {
	if len(branches) == 0 {
		return b.emptyFrag(), nil
	}
	if len(branches) == 1 {
		return b.compile(branches[0])
	}
	fs := make([]frag, len(branches))
	for i, br := range branches {
		f, err := b.compile(br)
		if err != nil {
			return frag{}, err
		}
		fs[i] = f
	}
	result := fs[len(fs)-1]
	for i := len(fs) - 2; i >= 0; i-- {
		id := b.newState(State{Kind: StateSplit, Left: fs[i].start, Right: result.start})
		out := append(append([]patchPoint{}, fs[i].out...), result.out...)
		result = frag{start: id, out: out}
	}
	return result, nil
}

func (b *builder) star(child ast.Node) (frag, error) {
	r, err := b.compile(child)
	if err != nil {
		return frag{}, err
	}
	entry := b.newState(State{Kind: StateSplit, Left: r.start, Right: InvalidState})
	b.patch(r.out, entry)
	return frag{start: entry, out: []patchPoint{{id: entry, field: patchRight}}}, nil
}

func (b *builder) plus(child ast.Node) (frag, error) {
	r, err := b.compile(child)
	if err != nil {
		return frag{}, err
	}
	entry := b.newState(State{Kind: StateSplit, Left: r.start, Right: InvalidState})
	b.patch(r.out, entry)
	return frag{start: r.start, out: []patchPoint{{id: entry, field: patchRight}}}, nil
}

func (b *builder) optional(child ast.Node) (frag, error) {
	r, err := b.compile(child)
	if err != nil {
		return frag{}, err
	}
	entry := b.newState(State{Kind: StateSplit, Left: r.start, Right: InvalidState})
	out := append(append([]patchPoint{}, r.out...), patchPoint{id: entry, field: patchRight})
	return frag{start: entry, out: out}, nil
}

// compileQuantifier dispatches *, +, ? to their direct fragments and
// everything else to unrollBounded. Possessive and lazy quantifiers
// collapse to their greedy equivalents here: Type is never consulted,
// since none of the three change the accepted language, only how a
// backtracking engine searches it.
func (b *builder) compileQuantifier(q *ast.Quantifier) (frag, error) {
	switch {
	case q.Min == 0 && q.Max == ast.Unbounded:
		return b.star(q.Child)
	case q.Min == 1 && q.Max == ast.Unbounded:
		return b.plus(q.Child)
	case q.Min == 0 && q.Max == 1:
		return b.optional(q.Child)
	default:
		return b.unrollBounded(q)
	}
}

// unrollBounded expands {m,n} into m mandatory copies followed by
// either (n-m) chained optional copies, or — when n is unbounded — a
// trailing R*. Concatenating independent optional copies accepts
// exactly the same language as the nested a(a(a...)?)? form real
// engines build: each skip/take choice is still available, just with
// redundant paths a DFA minimizer collapses away.
func (b *builder) unrollBounded(q *ast.Quantifier) (frag, error) {
	min, max := q.Min, q.Max
	if max != ast.Unbounded && max > b.opts.MaxUnroll {
		return frag{}, &automata.ComplexityError{Ceiling: "quantifier unroll", Limit: b.opts.MaxUnroll, Got: max}
	}
	if min > b.opts.MaxUnroll {
		return frag{}, &automata.ComplexityError{Ceiling: "quantifier unroll", Limit: b.opts.MaxUnroll, Got: min}
	}

	var result frag
	have := false
	for i := 0; i < min; i++ {
		f, err := b.compile(q.Child)
		if err != nil {
			return frag{}, err
		}
		if !have {
			result, have = f, true
			continue
		}
		b.patch(result.out, f.start)
		result = frag{start: result.start, out: f.out}
	}

	if max == ast.Unbounded {
		star, err := b.star(q.Child)
		if err != nil {
			return frag{}, err
		}
		if !have {
			return star, nil
		}
		b.patch(result.out, star.start)
		return frag{start: result.start, out: star.out}, nil
	}

	for i := 0; i < max-min; i++ {
		opt, err := b.optional(q.Child)
		if err != nil {
			return frag{}, err
		}
		if !have {
			result, have = opt, true
			continue
		}
		b.patch(result.out, opt.start)
		result = frag{start: result.start, out: opt.out}
	}
	if !have {
		return b.emptyFrag(), nil
	}
	return result, nil
}
