package charset

import "github.com/0x4d5352/rescope/internal/ast"

// FirstSet computes the set of code points an AST node can start a match
// with, per spec: literals and single-char escapes become singletons; Dot
// becomes the full ASCII set; \d \w \s map to canonical byte ranges;
// negated classes complement; under the u flag, \d \w conservatively
// resolve to Unknown outside plain ASCII reasoning. A Sequence's first-set
// unions in each leading child's first-set for as long as that child can
// match the empty string.
func FirstSet(n ast.Node, unicodeFlag bool) CharSet {
	switch x := n.(type) {
	case nil:
		return CharSet{}
	case *ast.Sequence:
		var out CharSet
		for _, c := range x.Children {
			out = out.Union(FirstSet(c, unicodeFlag))
			if !CanBeEmpty(c) {
				break
			}
		}
		return out
	case *ast.Alternation:
		var out CharSet
		for _, b := range x.Branches {
			out = out.Union(FirstSet(b, unicodeFlag))
		}
		return out
	case *ast.Group:
		switch x.Type {
		case ast.GroupLookaheadPos, ast.GroupLookaheadNeg, ast.GroupLookbehindPos, ast.GroupLookbehindNeg:
			return CharSet{}
		case ast.GroupInlineFlags:
			if x.Child == nil {
				return CharSet{}
			}
			return FirstSet(x.Child, unicodeFlag)
		default:
			return FirstSet(x.Child, unicodeFlag)
		}
	case *ast.Quantifier:
		return FirstSet(x.Child, unicodeFlag)
	case *ast.Literal:
		rs := []rune(x.Value)
		if len(rs) == 0 {
			return CharSet{}
		}
		return Single(rs[0])
	case *ast.CharLiteral:
		return Single(x.Rune)
	case *ast.Dot:
		return New(Range{Lo: 0x00, Hi: 0x7F})
	case *ast.CharType:
		return charTypeSet(x.Class, unicodeFlag)
	case *ast.CharClass:
		var out CharSet
		for _, m := range x.Children {
			out = out.Union(FirstSet(m, unicodeFlag))
		}
		if x.Negated {
			return out.Complement(0x10FFFF)
		}
		return out
	case *ast.Range:
		lo, loOK := runeOf(x.Start)
		hi, hiOK := runeOf(x.End)
		if !loOK || !hiOK || lo > hi {
			return UnknownSet()
		}
		return New(Range{Lo: lo, Hi: hi})
	case *ast.PosixClass:
		cs, ok := posixClassSet(x.Name)
		if !ok {
			return UnknownSet()
		}
		if x.Negated {
			return cs.Complement(0x7F)
		}
		return cs
	case *ast.UnicodeProp:
		return UnknownSet()
	case *ast.ClassOperation:
		left := FirstSet(x.Left, unicodeFlag)
		right := FirstSet(x.Right, unicodeFlag)
		if x.Op == ast.ClassIntersection {
			return left.Intersect(right)
		}
		return left.Subtract(right)
	case *ast.Conditional:
		out := FirstSet(x.Yes, unicodeFlag)
		if x.No != nil {
			out = out.Union(FirstSet(x.No, unicodeFlag))
		}
		return out
	case *ast.Backref, *ast.Subroutine:
		return UnknownSet()
	default:
		return CharSet{}
	}
}

func runeOf(n ast.Node) (rune, bool) {
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

// CanBeEmpty reports whether n can match the empty string, used to decide
// whether a Sequence's first-set continues past a leading child.
func CanBeEmpty(n ast.Node) bool {
	switch x := n.(type) {
	case nil:
		return true
	case *ast.Sequence:
		for _, c := range x.Children {
			if !CanBeEmpty(c) {
				return false
			}
		}
		return true
	case *ast.Alternation:
		for _, b := range x.Branches {
			if CanBeEmpty(b) {
				return true
			}
		}
		return false
	case *ast.Group:
		switch x.Type {
		case ast.GroupLookaheadPos, ast.GroupLookaheadNeg, ast.GroupLookbehindPos, ast.GroupLookbehindNeg:
			return true
		case ast.GroupInlineFlags:
			if x.Child == nil {
				return true
			}
			return CanBeEmpty(x.Child)
		default:
			return CanBeEmpty(x.Child)
		}
	case *ast.Quantifier:
		return x.Min == 0 || CanBeEmpty(x.Child)
	case *ast.Conditional:
		if x.No == nil {
			return true
		}
		return CanBeEmpty(x.Yes) || CanBeEmpty(x.No)
	case *ast.Literal:
		return len(x.Value) == 0
	case *ast.CharLiteral, *ast.CharType, *ast.Dot, *ast.CharClass:
		return false
	case *ast.Backref, *ast.Subroutine:
		return true
	default:
		return true
	}
}

func charTypeSet(class byte, unicodeFlag bool) CharSet {
	if unicodeFlag && (class == 'd' || class == 'D' || class == 'w' || class == 'W') {
		return UnknownSet()
	}
	switch class {
	case 'd':
		return New(Range{Lo: '0', Hi: '9'})
	case 'D':
		return New(Range{Lo: '0', Hi: '9'}).Complement(0x10FFFF)
	case 'w':
		return New(Range{Lo: '0', Hi: '9'}, Range{Lo: 'A', Hi: 'Z'}, Range{Lo: 'a', Hi: 'z'}, Range{Lo: '_', Hi: '_'})
	case 'W':
		return New(Range{Lo: '0', Hi: '9'}, Range{Lo: 'A', Hi: 'Z'}, Range{Lo: 'a', Hi: 'z'}, Range{Lo: '_', Hi: '_'}).Complement(0x10FFFF)
	case 's':
		return New(Range{Lo: '\t', Hi: '\n'}, Range{Lo: '\f', Hi: '\r'}, Range{Lo: ' ', Hi: ' '})
	case 'S':
		return New(Range{Lo: '\t', Hi: '\n'}, Range{Lo: '\f', Hi: '\r'}, Range{Lo: ' ', Hi: ' '}).Complement(0x10FFFF)
	default:
		return UnknownSet()
	}
}

func posixClassSet(name string) (CharSet, bool) {
	switch name {
	case "alpha":
		return New(Range{Lo: 'A', Hi: 'Z'}, Range{Lo: 'a', Hi: 'z'}), true
	case "digit":
		return New(Range{Lo: '0', Hi: '9'}), true
	case "alnum":
		return New(Range{Lo: '0', Hi: '9'}, Range{Lo: 'A', Hi: 'Z'}, Range{Lo: 'a', Hi: 'z'}), true
	case "upper":
		return New(Range{Lo: 'A', Hi: 'Z'}), true
	case "lower":
		return New(Range{Lo: 'a', Hi: 'z'}), true
	case "space":
		return New(Range{Lo: '\t', Hi: '\r'}, Range{Lo: ' ', Hi: ' '}), true
	case "punct":
		return New(Range{Lo: '!', Hi: '/'}, Range{Lo: ':', Hi: '@'}, Range{Lo: '[', Hi: '`'}, Range{Lo: '{', Hi: '~'}), true
	case "xdigit":
		return New(Range{Lo: '0', Hi: '9'}, Range{Lo: 'A', Hi: 'F'}, Range{Lo: 'a', Hi: 'f'}), true
	case "cntrl":
		return New(Range{Lo: 0x00, Hi: 0x1F}, Range{Lo: 0x7F, Hi: 0x7F}), true
	case "print":
		return New(Range{Lo: 0x20, Hi: 0x7E}), true
	case "graph":
		return New(Range{Lo: 0x21, Hi: 0x7E}), true
	case "blank":
		return New(Range{Lo: '\t', Hi: '\t'}, Range{Lo: ' ', Hi: ' '}), true
	default:
		return CharSet{}, false
	}
}
