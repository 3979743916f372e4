/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: restore_test.go
Description: Tests for restore branches that token by token induction does not
reach: two rules standing for the same digram, and a rule nothing refers to.
Grammars are assembled by hand on the engine's own grammar.
*/

package inference

import (
	"testing"

	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addRule adds a rule holding symbols to g
func addRule(t *testing.T, g *grammar.Grammar, symbols ...grammar.Symbol) *grammar.Rule {
	t.Helper()
	r := g.NewRule()
	for _, s := range symbols {
		require.NoError(t, r.Append(s))
	}
	require.NoError(t, g.AddRule(r))
	return r
}

// TestRestoreMergesDuplicateRules tests that two digram rules with one body become one
func TestRestoreMergesDuplicateRules(t *testing.T) {
	e := NewEngine()
	g := e.grammar
	a, b := grammar.Terminal("a"), grammar.Terminal("b")
	p := addRule(t, g, a, b)
	q := addRule(t, g, a, b)
	for _, s := range []grammar.Symbol{
		grammar.NonTerminal(p.ID()), grammar.Terminal("x"),
		grammar.NonTerminal(q.ID()), grammar.Terminal("y"),
		grammar.NonTerminal(p.ID()), grammar.Terminal("z"),
		grammar.NonTerminal(q.ID()),
	} {
		require.NoError(t, g.Start().Append(s))
	}

	require.NoError(t, e.restore())
	assert.Equal(t, 1, e.Stats().RulesMerged)
	assert.Zero(t, e.Stats().RulesCreated)
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Owns(p.ID()))
	assert.False(t, g.Owns(q.ID()))
	assert.Equal(t, 4, p.RefCount())
	assert.Equal(t, []any{"a", "b", "x", "a", "b", "y", "a", "b", "z", "a", "b"}, g.Expand())
	assert.NoError(t, g.CheckInvariants())
}

// TestRestoreDropsUnreferencedRule tests removal of a rule with no reference
func TestRestoreDropsUnreferencedRule(t *testing.T) {
	e := NewEngine()
	g := e.grammar
	require.NoError(t, g.AppendToken("x"))
	require.NoError(t, g.AppendToken("y"))
	d := addRule(t, g, grammar.Terminal("c"), grammar.Terminal("d"))

	require.NoError(t, e.restore())
	assert.Equal(t, 1, e.Stats().RulesDropped)
	assert.Zero(t, e.Stats().RulesInlined)
	assert.False(t, g.Owns(d.ID()))
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, []any{"x", "y"}, g.Expand())
	assert.NoError(t, g.CheckInvariants())
}
