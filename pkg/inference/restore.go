/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: restore.go
Description: Invariant restoration of the Sequitur engine. A fixed-point loop
alternates the digram uniqueness fix (reduction) and the rule utility fix
(inlining) until no violation is left. Only digrams and rules the grammar
journaled as changed are re-checked; the choice among violations is the one a
full scan in declaration order would make.
*/

package inference

import (
	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/sirupsen/logrus"
)

// collision is a pair of occurrences of the same digram.
type collision struct {
	key    grammar.DigramKey
	first  grammar.Occurrence
	second grammar.Occurrence
}

// restore runs the fixed-point loop for the token just appended.
func (e *Engine) restore() error {
	limit := e.config.passLimit(e.grammar.SymbolCount())
	for pass := 1; ; pass++ {
		if pass > limit {
			return grammar.NewConsistencyError(e.grammar, "restore", grammar.ErrRestoreDiverged,
				"no fixed point after %d passes", limit)
		}

		changed := false
		if c, found := e.detectCollision(); found {
			if err := e.restoreUniqueness(c); err != nil {
				return err
			}
			changed = true
		}
		if useless := e.detectUselessRule(); useless != nil {
			if err := e.restoreUtility(useless); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return nil
		}
		e.record(EventRestorePass)
	}
}

// detectCollision returns, among the digrams added since the grammar was last
// sound, the repetition met first when scanning the rules in declaration
// order, left to right. Overlapping occurrences inside one rule ("a a a") are
// not a repetition.
func (e *Engine) detectCollision() (collision, bool) {
	for _, key := range e.grammar.TakeAddedDigrams() {
		e.pendingDigrams[key] = struct{}{}
	}

	var best collision
	found := false
	for key := range e.pendingDigrams {
		first, second, ok := e.grammar.Repetition(key)
		if !ok {
			delete(e.pendingDigrams, key)
			continue
		}
		if !found || second.Before(best.second) {
			best = collision{key: key, first: first, second: second}
			found = true
		}
	}
	return best, found
}

// restoreUniqueness makes a repeated digram occur once, through a rule that
// stands for it.
func (e *Engine) restoreUniqueness(c collision) error {
	g := e.grammar
	ra, rb := c.first.Rule(), c.second.Rule()
	if !ra.Owned() || !rb.Owned() {
		return grammar.NewConsistencyError(g, "restoreUniqueness", grammar.ErrForeignRule,
			"digram %s found in unknown rule", c.key)
	}
	log := e.logger.WithField("digram", c.key.String())

	simpleA := ra != g.Start() && ra.IsSingleDigram()
	simpleB := rb != g.Start() && rb.IsSingleDigram()
	switch {
	case simpleA && simpleB:
		if err := g.MergeRule(rb, ra); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"rule_id": ra.ID(), "merged": rb.ID()}).Debug("Rules merged")
		e.record(EventRuleMerged)
		return nil

	case simpleA, simpleB:
		digramRule, other := ra, rb
		if simpleB {
			digramRule, other = rb, ra
		}
		if _, err := other.ReplaceDigram(digramRule); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"rule_id": digramRule.ID(), "in": other.ID()}).Debug("Rule reused")
		e.record(EventRuleReused)
		return nil
	}

	nr := g.NewRule()
	if err := nr.Append(c.key.First); err != nil {
		return err
	}
	if err := nr.Append(c.key.Second); err != nil {
		return err
	}
	if err := g.AddRule(nr); err != nil {
		return err
	}
	if _, err := ra.ReplaceDigram(nr); err != nil {
		return err
	}
	if rb != ra {
		if _, err := rb.ReplaceDigram(nr); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"rule_id": nr.ID(), "refs": nr.RefCount()}).Debug("Rule created")
	e.record(EventRuleCreated)
	return nil
}

// detectUselessRule returns the first non-start rule, in declaration order,
// used fewer than two times. Only rules that lost a reference or just joined
// the grammar can be useless.
func (e *Engine) detectUselessRule() *grammar.Rule {
	g := e.grammar
	for _, id := range g.TakeWeakenedRules() {
		e.pendingRules[id] = struct{}{}
	}

	var useless *grammar.Rule
	for id := range e.pendingRules {
		r, ok := g.Rule(id)
		if !ok || r == g.Start() || r.RefCount() >= 2 {
			delete(e.pendingRules, id)
			continue
		}
		if useless == nil || r.Rank() < useless.Rank() {
			useless = r
		}
	}
	return useless
}

// restoreUtility inlines a rule used once into the rule that uses it and
// removes it from the grammar.
func (e *Engine) restoreUtility(useless *grammar.Rule) error {
	g := e.grammar
	id := useless.ID()
	log := e.logger.WithField("rule_id", id)

	if useless.RefCount() <= 0 {
		if err := g.RemoveRule(id); err != nil {
			return err
		}
		log.Debug("Unreferenced rule dropped")
		e.record(EventRuleDropped)
		return nil
	}

	var referencing *grammar.Rule
	for _, user := range g.Users(id) {
		if r, ok := g.Rule(user); ok && r != useless {
			referencing = r
			break
		}
	}
	if referencing == nil {
		return grammar.NewConsistencyError(g, "restoreUtility", grammar.ErrRefCountMismatch,
			"rule %s has reference count %d but no rule refers to it", id, useless.RefCount())
	}

	if _, err := referencing.InlineRule(useless); err != nil {
		return err
	}
	if err := g.RemoveRule(id); err != nil {
		return err
	}
	log.WithField("into", referencing.ID()).Debug("Rule inlined")
	e.record(EventRuleInlined)
	return nil
}
