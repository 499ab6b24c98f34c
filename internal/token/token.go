// Package token defines the lexical tokens produced by the regex lexer.
package token

import "fmt"

// Span is a half-open byte range [Start, End) into the pattern body.
type Span struct {
	Start int
	End   int
}

// Combine returns the smallest span that contains both a and b.
func Combine(a, b Span) Span {
	s := Span{Start: a.Start, End: a.End}
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// Len returns the width of the span in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Kind discriminates the lexical category of a Token.
type Kind uint8

const (
	EOF Kind = iota

	Literal         // any ordinary character
	CharType        // \d \D \w \W \s \S
	Dot             // .
	Anchor          // ^ $ \A \z \Z
	Assertion       // \b \B
	Keep            // \K
	Comment         // (?#...)
	Callout         // (?C...)
	PcreVerb        // (*VERB) or (*VERB:arg)
	Alternation     // |
	Quantifier      // ? * + {m} {m,} {m,n} plus trailing lazy/possessive marker
	ClassOpen       // [ or [^
	ClassClose      // ]
	RangeHyphen     // - inside a class, between two atoms
	ClassIntersect  // && inside a class
	ClassSubtract   // -- inside a class
	PosixClass      // [:name:] inside a class
	UnicodeProperty // \p{Name} or \pN or \P{Name} or \PN
	UnicodeEscape   // \x{HH..}, \xHH, \uHHHH, \u{HH..}
	Octal           // \NNN or \o{NNN}
	Control         // \cX
	Backref         // \1, \g{1}, \g1, \g-1, \k<name>, \k'name', \k{name}
	Subroutine      // \g<name>, (?1), (?&name), (?P>name), (?R)
	ScriptRun       // (*script_run:...) / (*atomic_script_run:...)
	LimitMatch      // (*LIMIT_MATCH=n)

	GroupOpen           // (
	GroupOpenNonCap     // (?:
	GroupOpenAtomic     // (?>
	GroupOpenBranch     // (?|
	GroupOpenLookahead  // (?= or (?!
	GroupOpenLookbehind // (?<= or (?<!
	GroupOpenNamed      // (?<name> (?'name' (?P<name>
	GroupOpenFlags      // (?flags: or (?flags)
	// GroupOpenCond covers both "(?(cond)yes|no)" conditionals and
	// "(?(DEFINE)...)" define blocks; the parser distinguishes them by
	// reading the condition text. The lexeme is "(?(" for a text
	// condition and only "(?" when the condition is a parenthesized
	// assertion.
	GroupOpenCond
	GroupClose // )
)

var kindNames = map[Kind]string{
	EOF:                  "eof",
	Literal:              "literal",
	CharType:              "char-type",
	Dot:                   "dot",
	Anchor:                "anchor",
	Assertion:             "assertion",
	Keep:                  "keep",
	Comment:               "comment",
	Callout:               "callout",
	PcreVerb:              "verb",
	Alternation:           "alternation",
	Quantifier:            "quantifier",
	ClassOpen:             "class-open",
	ClassClose:            "class-close",
	RangeHyphen:           "range-hyphen",
	ClassIntersect:        "class-intersect",
	ClassSubtract:         "class-subtract",
	PosixClass:            "posix-class",
	UnicodeProperty:       "unicode-property",
	UnicodeEscape:         "unicode-escape",
	Octal:                 "octal",
	Control:               "control",
	Backref:               "backref",
	Subroutine:            "subroutine",
	ScriptRun:             "script-run",
	LimitMatch:            "limit-match",
	GroupOpen:             "group-open",
	GroupOpenNonCap:       "group-open-noncap",
	GroupOpenAtomic:       "group-open-atomic",
	GroupOpenBranch:       "group-open-branch-reset",
	GroupOpenLookahead:    "group-open-lookahead",
	GroupOpenLookbehind:   "group-open-lookbehind",
	GroupOpenNamed:        "group-open-named",
	GroupOpenFlags:        "group-open-flags",
	GroupOpenCond:         "group-open-conditional",
	GroupClose:            "group-close",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Token is one lexical element with its source span.
type Token struct {
	Kind Kind
	Text string
	Span Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@[%d,%d)", t.Kind, t.Text, t.Span.Start, t.Span.End)
}
