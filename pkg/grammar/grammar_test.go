/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar_test.go
Description: Tests for the grammar data model. Covers symbols, rule mutations and
their reference counting, grammar ownership, snapshots and the debug dump.
*/

package grammar_test

import (
	"errors"
	"testing"

	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func term(tok any) grammar.Symbol { return grammar.Terminal(tok) }

// appendAll appends every symbol to r
func appendAll(tb testing.TB, r *grammar.Rule, symbols ...grammar.Symbol) {
	tb.Helper()
	for _, s := range symbols {
		require.NoError(tb, r.Append(s))
	}
}

// digramRule adds a rule holding exactly (a, b) to g
func digramRule(tb testing.TB, g *grammar.Grammar, a, b grammar.Symbol) *grammar.Rule {
	tb.Helper()
	r := g.NewRule()
	appendAll(tb, r, a, b)
	require.NoError(tb, g.AddRule(r))
	return r
}

// TestSymbolEquality tests that symbols compare by content
func TestSymbolEquality(t *testing.T) {
	assert.Equal(t, term("a"), term("a"))
	assert.NotEqual(t, term("a"), term("b"))
	assert.NotEqual(t, term(1), term("1"))
	assert.Equal(t, grammar.NonTerminal(3), grammar.NonTerminal(3))
	assert.NotEqual(t, grammar.NonTerminal(3), grammar.NonTerminal(4))

	s := grammar.NonTerminal(3)
	assert.True(t, s.IsNonTerminal())
	assert.True(t, s.Refers(3))
	assert.False(t, term("a").Refers(grammar.NoRule))
	assert.Equal(t, "#3", s.String())
	assert.Equal(t, "a", term("a").String())
}

// TestValidToken tests which tokens may become terminals
func TestValidToken(t *testing.T) {
	type tag struct{ name string }
	type boxed struct{ v any }

	for _, tok := range []any{"a", 1, 'x', 2.5, tag{"nn"}, boxed{v: "nn"}} {
		assert.NoError(t, grammar.ValidToken(tok), "%#v", tok)
	}
	for _, tok := range []any{nil, []string{"a"}, map[string]int{}, boxed{v: []int{1}}, boxed{v: func() {}}} {
		assert.ErrorIs(t, grammar.ValidToken(tok), grammar.ErrInvalidToken, "%#v", tok)
	}
}

// TestNewGrammar tests the initial state of a grammar
func TestNewGrammar(t *testing.T) {
	g := grammar.New()

	require.Equal(t, 1, g.Len())
	start := g.Start()
	assert.True(t, start.Empty())
	assert.True(t, start.Owned())
	assert.Equal(t, grammar.StartRefCount, start.RefCount())
	assert.Equal(t, 0, g.IndexOf(start.ID()))
	assert.NoError(t, g.CheckInvariants())
}

// TestAppendNonTerminal tests reference counting on append
func TestAppendNonTerminal(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))

	require.NoError(t, g.Start().Append(grammar.NonTerminal(p.ID())))
	assert.Equal(t, 1, p.RefCount())
	require.NoError(t, g.Start().Append(grammar.NonTerminal(p.ID())))
	assert.Equal(t, 2, p.RefCount())
	assert.NoError(t, g.CheckInvariants())

	err := g.Start().Append(grammar.NonTerminal(999))
	assert.ErrorIs(t, err, grammar.ErrUnboundReference)

	err = p.Append(grammar.NonTerminal(p.ID()))
	assert.ErrorIs(t, err, grammar.ErrUnboundReference)

	assert.ErrorIs(t, g.Start().Append(grammar.Symbol{}), grammar.ErrInvalidToken)
	assert.ErrorIs(t, g.AppendToken(nil), grammar.ErrInvalidToken)
	assert.Equal(t, 2, g.Start().Len(), "rejected symbols must not be appended")
}

// TestAddRule tests grammar ownership rules
func TestAddRule(t *testing.T) {
	g := grammar.New()

	loose := g.NewRule()
	appendAll(t, loose, term("x"), term("y"))
	assert.False(t, g.Owns(loose.ID()))

	holder := g.NewRule()
	appendAll(t, holder, grammar.NonTerminal(loose.ID()), term("z"))
	err := g.AddRule(holder)
	require.Error(t, err)
	assert.ErrorIs(t, err, grammar.ErrForeignRule)
	assert.ErrorIs(t, err, grammar.ErrConsistency)

	var ce *grammar.ConsistencyError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "AddRule", ce.Op)
	assert.Contains(t, ce.Dump, "#1 :")

	require.NoError(t, g.AddRule(loose))
	require.NoError(t, g.AddRule(holder))
	assert.ErrorIs(t, g.AddRule(holder), grammar.ErrRuleOwned)

	other := grammar.New()
	assert.ErrorIs(t, other.AddRule(loose), grammar.ErrUnboundReference)
}

// TestPositionsOf tests that digram matches never overlap
func TestPositionsOf(t *testing.T) {
	g := grammar.New()
	start := g.Start()
	appendAll(t, start, term("a"), term("a"), term("a"))
	assert.Equal(t, []int{0}, start.PositionsOf(term("a"), term("a")))

	appendAll(t, start, term("a"))
	assert.Equal(t, []int{0, 2}, start.PositionsOf(term("a"), term("a")))
	assert.Empty(t, start.PositionsOf(term("a"), term("b")))
}

// TestDigrams tests iteration over adjacent pairs
func TestDigrams(t *testing.T) {
	g := grammar.New()
	start := g.Start()
	appendAll(t, start, term("a"), term("b"), term("c"))

	var got []grammar.Digram
	for d := range start.Digrams() {
		got = append(got, d)
	}
	require.Len(t, got, 2)
	assert.Equal(t, grammar.DigramKey{First: term("a"), Second: term("b")}, got[0].Key())
	assert.Equal(t, 1, got[1].Pos)
	assert.Equal(t, start.ID(), got[1].Rule)

	last, ok := start.LastDigram()
	require.True(t, ok)
	assert.Equal(t, got[1], last)
	assert.False(t, last.Repeating())
	assert.True(t, got[0].Overlaps(got[1]))
}

// TestHasRepeatedTrailingDigram tests detection of a repeated last pair
func TestHasRepeatedTrailingDigram(t *testing.T) {
	cases := []struct {
		name   string
		tokens string
		want   bool
	}{
		{"empty", "", false},
		{"single pair", "ab", false},
		{"overlapping run", "aaa", false},
		{"disjoint run", "aaaa", true},
		{"repeat", "abcab", true},
		{"no repeat", "abcd", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := grammar.New()
			for _, c := range tc.tokens {
				require.NoError(t, g.AppendToken(string(c)))
			}
			assert.Equal(t, tc.want, g.Start().HasRepeatedTrailingDigram())
		})
	}
}

// TestReplaceDigram tests substitution of a digram by a rule
func TestReplaceDigram(t *testing.T) {
	g := grammar.New()
	start := g.Start()
	appendAll(t, start, term("a"), term("b"), term("c"), term("a"), term("b"))
	p := digramRule(t, g, term("a"), term("b"))

	n, err := start.ReplaceDigram(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []grammar.Symbol{
		grammar.NonTerminal(p.ID()), term("c"), grammar.NonTerminal(p.ID()),
	}, start.Symbols())
	assert.Equal(t, 2, p.RefCount())
	assert.NoError(t, g.CheckInvariants())

	n, err = start.ReplaceDigram(p)
	require.NoError(t, err)
	assert.Zero(t, n)

	long := g.NewRule()
	appendAll(t, long, term("x"), term("y"), term("z"))
	_, err = start.ReplaceDigram(long)
	assert.ErrorIs(t, err, grammar.ErrNotSingleDigram)
}

// TestReplaceDigramReleasesNonTerminals tests that replaced non-terminals lose a reference
func TestReplaceDigramReleasesNonTerminals(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	start := g.Start()
	appendAll(t, start, grammar.NonTerminal(p.ID()), term("c"), grammar.NonTerminal(p.ID()), term("c"))
	require.Equal(t, 2, p.RefCount())

	q := digramRule(t, g, grammar.NonTerminal(p.ID()), term("c"))
	require.Equal(t, 3, p.RefCount())

	n, err := start.ReplaceDigram(q)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, p.RefCount())
	assert.Equal(t, 2, q.RefCount())
	assert.NoError(t, g.Check())
}

// TestInlineRule tests expansion of a rule in place
func TestInlineRule(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	q := digramRule(t, g, grammar.NonTerminal(p.ID()), term("c"))
	start := g.Start()
	appendAll(t, start, grammar.NonTerminal(q.ID()), term("d"), grammar.NonTerminal(p.ID()))
	require.Equal(t, 2, p.RefCount())
	require.Equal(t, 1, q.RefCount())

	n, err := start.InlineRule(q)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, q.RefCount())
	assert.Equal(t, 3, p.RefCount(), "inlined copy adds a reference to p")
	assert.Equal(t, []grammar.Symbol{
		grammar.NonTerminal(p.ID()), term("c"), term("d"), grammar.NonTerminal(p.ID()),
	}, start.Symbols())

	require.NoError(t, g.RemoveRule(q.ID()))
	assert.Equal(t, 2, p.RefCount())
	assert.False(t, g.Owns(q.ID()))
	assert.NoError(t, g.CheckInvariants())
}

// TestRemoveRule tests rule removal and its error cases
func TestRemoveRule(t *testing.T) {
	g := grammar.New()
	assert.ErrorIs(t, g.RemoveRule(g.Start().ID()), grammar.ErrStartRule)
	assert.ErrorIs(t, g.RemoveRule(42), grammar.ErrUnboundReference)

	p := digramRule(t, g, term("a"), term("b"))
	appendAll(t, g.Start(), grammar.NonTerminal(p.ID()), grammar.NonTerminal(p.ID()))
	require.NoError(t, g.RemoveRule(p.ID()))
	assert.Equal(t, 1, g.Len())

	err := g.Check()
	assert.ErrorIs(t, err, grammar.ErrDanglingReference)
	assert.ErrorIs(t, err, grammar.ErrConsistency)
}

// TestRemoveRuleReleasesTargets tests that a removed rule's references are dropped
func TestRemoveRuleReleasesTargets(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	q := digramRule(t, g, grammar.NonTerminal(p.ID()), grammar.NonTerminal(p.ID()))
	require.Equal(t, 2, p.RefCount())

	require.NoError(t, g.RemoveRule(q.ID()))
	assert.Equal(t, 0, p.RefCount())
}

// TestMergeRule tests redirection of duplicate digram rules
func TestMergeRule(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	q := digramRule(t, g, term("a"), term("b"))
	appendAll(t, g.Start(),
		grammar.NonTerminal(p.ID()), grammar.NonTerminal(q.ID()), term("x"),
		grammar.NonTerminal(q.ID()), grammar.NonTerminal(p.ID()))

	require.NoError(t, g.MergeRule(q, p))
	assert.Equal(t, 4, p.RefCount())
	assert.False(t, g.Owns(q.ID()))
	assert.Equal(t, 2, g.Len())
	assert.NoError(t, g.Check())

	assert.ErrorIs(t, g.MergeRule(g.Start(), p), grammar.ErrStartRule)
	assert.ErrorIs(t, g.MergeRule(p, p), grammar.ErrForeignRule)
}

// TestExpand tests re-expansion down to terminals
func TestExpand(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	q := digramRule(t, g, grammar.NonTerminal(p.ID()), term("c"))
	appendAll(t, g.Start(), grammar.NonTerminal(q.ID()), term(1), grammar.NonTerminal(q.ID()))

	assert.Equal(t, []any{"a", "b", "c", 1, "a", "b", "c"}, g.Expand())
	assert.Equal(t, []any{"a", "b", "c"}, g.ExpandRule(q.ID()))
	assert.Equal(t, g.ExpandRule(q.ID()), q.Expand())
	assert.Nil(t, g.ExpandRule(99))
}

// TestSnapshot tests that a snapshot is a deep, independent copy
func TestSnapshot(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	appendAll(t, g.Start(), grammar.NonTerminal(p.ID()), grammar.NonTerminal(p.ID()))

	snap := g.Snapshot()
	require.NoError(t, snap.Check())
	assert.Equal(t, g.String(), snap.String())

	require.NoError(t, g.AppendToken("z"))
	assert.NotEqual(t, g.String(), snap.String())
	assert.Equal(t, 2, snap.Start().Len())

	sp, ok := snap.Rule(p.ID())
	require.True(t, ok)
	assert.Equal(t, 2, sp.RefCount())
	assert.NotSame(t, p, sp)
}

// TestGrammarString tests the debug dump format
func TestGrammarString(t *testing.T) {
	g := grammar.New()
	p := digramRule(t, g, term("a"), term("b"))
	appendAll(t, g.Start(), grammar.NonTerminal(p.ID()), term("c"), grammar.NonTerminal(p.ID()))

	assert.Equal(t, "#1 : #2 \"c\" #2.\n#2 : \"a\" \"b\".", g.String())
	assert.Equal(t, 5, g.SymbolCount())
}

// TestRuleIDsAreNotReused tests handle allocation
func TestRuleIDsAreNotReused(t *testing.T) {
	g := grammar.New()
	p := g.NewRule()
	require.NoError(t, g.RemoveRule(p.ID()))
	q := g.NewRule()
	assert.Greater(t, q.ID(), p.ID())
}
