// Package rescope is a static-analysis toolkit for PCRE2-style regular
// expressions: a lexer and recursive-descent parser build an AST: a
// family of visitors (validator, linter, optimizer, ReDoS analyzer)
// inspect or rewrite it, and — for patterns that stay within the
// regular languages — an automata pipeline (Thompson NFA, subset-
// construction DFA, Hopcroft/Moore minimization, product-BFS solver)
// answers language-level questions like emptiness, subset, and
// equivalence.
//
// rescope never matches a pattern against caller-supplied text. Apart
// from the ReDoS analyzer's confirmed mode, which times a backtracking
// engine on generated probe inputs, every operation here is a function of
// the pattern's syntax alone.
//
// Basic usage:
//
//	r, err := rescope.Parse(`/\d{3}-\d{4}/`, rescope.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	issues := rescope.Issues(r)
//	warnings := rescope.Lint(r)
//
// Comparing two patterns by the language they accept:
//
//	cmp, err := rescope.Compare(`/[a-z]+/`, `/[a-z]\w*/`, rescope.CompareSubset, rescope.DefaultParseOptions(), rescope.DefaultSolverOptions())
package rescope
