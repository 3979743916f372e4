/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: index_test.go
Description: Tests for the incremental digram and reference indexes, the repetition
lookup built on them and the change journals.
*/

package grammar_test

import (
	"testing"

	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(a, b grammar.Symbol) grammar.DigramKey {
	return grammar.DigramKey{First: a, Second: b}
}

// startWith returns a grammar whose start rule holds one terminal per byte of tokens
func startWith(tb testing.TB, tokens string) *grammar.Grammar {
	tb.Helper()
	g := grammar.New()
	for _, c := range tokens {
		require.NoError(tb, g.AppendToken(string(c)))
	}
	return g
}

// TestRepetition tests the first two non-overlapping occurrences of a digram
func TestRepetition(t *testing.T) {
	cases := []struct {
		name   string
		tokens string
		first  string
		second string
		ok     bool
		pos    [2]int
	}{
		{name: "none", tokens: "abcd", first: "a", second: "b"},
		{name: "absent", tokens: "abcd", first: "x", second: "y"},
		{name: "repeat", tokens: "abcab", first: "a", second: "b", ok: true, pos: [2]int{0, 3}},
		{name: "overlapping run", tokens: "aaa", first: "a", second: "a"},
		{name: "disjoint run", tokens: "aaaa", first: "a", second: "a", ok: true, pos: [2]int{0, 2}},
		{name: "two runs", tokens: "aaxaa", first: "a", second: "a", ok: true, pos: [2]int{0, 3}},
		{name: "third occurrence", tokens: "abxabyab", first: "a", second: "b", ok: true, pos: [2]int{0, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := startWith(t, tc.tokens)
			first, second, ok := g.Repetition(key(term(tc.first), term(tc.second)))
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Same(t, g.Start(), first.Rule())
			assert.Same(t, g.Start(), second.Rule())
			assert.Equal(t, tc.pos, [2]int{first.Pos(), second.Pos()})
			assert.True(t, first.Before(second))
			assert.False(t, second.Before(first))
		})
	}
}

// TestRepetitionAcrossRules tests that occurrences are ordered by rule declaration
func TestRepetitionAcrossRules(t *testing.T) {
	g := grammar.New()
	p := g.NewRule()
	appendAll(t, p, term("x"), term("a"), term("b"))
	require.NoError(t, g.AddRule(p))
	appendAll(t, g.Start(), term("c"), term("a"), term("b"))

	first, second, ok := g.Repetition(key(term("a"), term("b")))
	require.True(t, ok)
	assert.Same(t, g.Start(), first.Rule())
	assert.Same(t, p, second.Rule())
	assert.Equal(t, grammar.Digram{First: term("a"), Second: term("b"), Rule: p.ID(), Pos: 1}, second.Digram())
	assert.True(t, first.Before(second))
	assert.Less(t, g.Start().Rank(), p.Rank())

	// a run in the start rule that only overlaps itself pairs with the next rule
	g = startWith(t, "aaa")
	q := g.NewRule()
	appendAll(t, q, term("a"), term("a"))
	require.NoError(t, g.AddRule(q))
	first, second, ok = g.Repetition(key(term("a"), term("a")))
	require.True(t, ok)
	assert.Equal(t, 0, first.Pos())
	assert.Same(t, q, second.Rule())
	assert.Equal(t, 3, g.DigramCount(key(term("a"), term("a"))))
}

// TestRepetitionIgnoresLooseRules tests that rules outside the grammar never repeat a digram
func TestRepetitionIgnoresLooseRules(t *testing.T) {
	g := startWith(t, "ab")
	loose := g.NewRule()
	appendAll(t, loose, term("a"), term("b"))

	_, _, ok := g.Repetition(key(term("a"), term("b")))
	assert.False(t, ok)
	assert.Equal(t, 2, g.DigramCount(key(term("a"), term("b"))))

	require.NoError(t, g.AddRule(loose))
	_, _, ok = g.Repetition(key(term("a"), term("b")))
	assert.True(t, ok)
}

// TestIndexFollowsMutations tests the index through every rule mutation
func TestIndexFollowsMutations(t *testing.T) {
	g := startWith(t, "abcabdab")
	ab := key(term("a"), term("b"))
	require.Equal(t, 3, g.DigramCount(ab))

	p := digramRule(t, g, term("a"), term("b"))
	_, err := g.Start().ReplaceDigram(p)
	require.NoError(t, err)
	assert.Equal(t, 1, g.DigramCount(ab), "only the rule body holds the pair")
	assert.Equal(t, 1, g.DigramCount(key(grammar.NonTerminal(p.ID()), term("c"))))
	assert.Equal(t, []grammar.RuleID{g.Start().ID()}, g.Users(p.ID()))
	require.NoError(t, g.Check())

	q := digramRule(t, g, term("a"), term("b"))
	holder := digramRule(t, g, grammar.NonTerminal(q.ID()), grammar.NonTerminal(q.ID()))
	assert.Equal(t, []grammar.RuleID{holder.ID()}, g.Users(q.ID()))
	require.NoError(t, g.MergeRule(q, p))
	assert.ElementsMatch(t, []grammar.RuleID{g.Start().ID(), holder.ID()}, g.Users(p.ID()))
	assert.Empty(t, g.Users(q.ID()))
	assert.Equal(t, 1, g.DigramCount(key(grammar.NonTerminal(p.ID()), grammar.NonTerminal(p.ID()))))
	require.NoError(t, g.Check())

	_, err = g.Start().InlineRule(p)
	require.NoError(t, err)
	assert.Equal(t, 4, g.DigramCount(ab))
	assert.Equal(t, []grammar.RuleID{holder.ID()}, g.Users(p.ID()))
	assert.Equal(t, []any{"a", "b", "c", "a", "b", "d", "a", "b"}, g.Expand())
	require.NoError(t, g.Check())

	require.NoError(t, g.RemoveRule(holder.ID()))
	assert.Empty(t, g.Users(p.ID()))
	assert.Equal(t, 3, g.DigramCount(ab))
	assert.Zero(t, p.RefCount())
	assert.NoError(t, g.Check())
}

// TestJournals tests that changes are reported once
func TestJournals(t *testing.T) {
	g := startWith(t, "abab")
	assert.ElementsMatch(t, []grammar.DigramKey{
		key(term("a"), term("b")),
		key(term("b"), term("a")),
	}, g.TakeAddedDigrams())
	assert.Empty(t, g.TakeAddedDigrams())
	assert.Empty(t, g.TakeWeakenedRules())

	p := digramRule(t, g, term("a"), term("b"))
	assert.Equal(t, []grammar.RuleID{p.ID()}, g.TakeWeakenedRules(), "a new rule may be useless")
	assert.Equal(t, []grammar.DigramKey{key(term("a"), term("b"))}, g.TakeAddedDigrams())

	_, err := g.Start().ReplaceDigram(p)
	require.NoError(t, err)
	assert.Contains(t, g.TakeAddedDigrams(), key(grammar.NonTerminal(p.ID()), grammar.NonTerminal(p.ID())))
	assert.Empty(t, g.TakeWeakenedRules())

	require.NoError(t, g.AppendToken("c"))
	_, err = g.Start().InlineRule(p)
	require.NoError(t, err)
	assert.Equal(t, []grammar.RuleID{p.ID()}, g.TakeWeakenedRules())
	assert.Contains(t, g.TakeAddedDigrams(), key(term("b"), term("c")))
}

// TestRemovedRulesKeepOrder tests declaration order across many removals
func TestRemovedRulesKeepOrder(t *testing.T) {
	g := grammar.New()
	var kept []*grammar.Rule
	for i := 0; i < 20; i++ {
		r := digramRule(t, g, term(i), term(i+1))
		if i%3 == 0 {
			kept = append(kept, r)
			continue
		}
		require.NoError(t, g.RemoveRule(r.ID()))
	}

	rules := g.Rules()
	require.Len(t, rules, len(kept)+1)
	assert.Equal(t, g.Len(), len(rules))
	for i, r := range kept {
		assert.Same(t, r, rules[i+1])
		assert.Equal(t, i+1, g.IndexOf(r.ID()))
		if i > 0 {
			assert.Less(t, kept[i-1].Rank(), r.Rank())
		}
	}
	assert.Equal(t, 2*len(kept), g.SymbolCount())
	assert.NoError(t, g.Check())
}
