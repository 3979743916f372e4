/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar.go
Description: Grammar container for Sequitur induction. The grammar is an arena of
rules addressed by stable handles, plus the ordered list of rules it owns with the
start rule first. Non-terminal symbols are plain handles into the arena.
*/

package grammar

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// StartRefCount is the artificial reference count of the start rule. It keeps
// the start rule clear of the utility check, so it is never inlined or removed.
const StartRefCount = 2

// ErrRuleOwned indicates a rule added twice to the grammar.
var ErrRuleOwned = errors.New("rule already owned by grammar")

// Grammar owns every rule of an induced grammar.
//
// A Grammar is not safe for concurrent use. Readers that must run alongside
// induction should work on a Snapshot.
type Grammar struct {
	start    *Rule
	rules    []*Rule // declaration order, start first; removed rules stay until compacted
	live     int     // owned rules in rules
	arena    map[RuleID]*Rule
	nextID   RuleID
	nextRank uint64
	symbols  int // across owned rules

	idx      index
	added    map[DigramKey]struct{}
	weakened map[RuleID]struct{}
}

func newGrammar() *Grammar {
	return &Grammar{
		arena:    make(map[RuleID]*Rule),
		idx:      newIndex(),
		added:    make(map[DigramKey]struct{}),
		weakened: make(map[RuleID]struct{}),
	}
}

// New creates a grammar holding one empty start rule.
func New() *Grammar {
	g := newGrammar()
	g.start = g.NewRule()
	g.start.refCount = StartRefCount
	g.own(g.start)
	return g
}

// NewRule allocates an empty rule in the arena. The rule is not part of the
// grammar until AddRule is called, but it may already be referenced.
func (g *Grammar) NewRule() *Rule {
	g.nextID++
	r := &Rule{id: g.nextID, g: g}
	g.arena[r.id] = r
	return r
}

// AddRule appends an allocated rule to the owned list. Every non-terminal in
// its right-hand side must reference a rule the grammar already owns.
func (g *Grammar) AddRule(r *Rule) error {
	if r == nil || r.g != g || g.arena[r.id] != r {
		return fmt.Errorf("%w: rule was not allocated by this grammar", ErrUnboundReference)
	}
	if r.owned {
		return fmt.Errorf("%w: %s", ErrRuleOwned, r.id)
	}
	for _, id := range r.References() {
		if !g.Owns(id) {
			return NewConsistencyError(g, "AddRule", ErrForeignRule,
				"rule %s refers to rule %s that is not part of the grammar", r.id, id)
		}
	}
	g.own(r)
	g.weakened[r.id] = struct{}{}
	return nil
}

func (g *Grammar) own(r *Rule) {
	r.owned = true
	r.rank = g.nextRank
	g.nextRank++
	g.rules = append(g.rules, r)
	g.live++
	g.symbols += r.size
}

// RemoveRule detaches a rule from the grammar, clears its right-hand side and
// frees its handle. The caller is responsible for the rule no longer being
// referenced; Check reports it otherwise.
func (g *Grammar) RemoveRule(id RuleID) error {
	r, ok := g.arena[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnboundReference, id)
	}
	if r == g.start {
		return ErrStartRule
	}
	r.Clear()
	if r.owned {
		r.owned = false
		g.live--
		if len(g.rules) > 2*g.live {
			g.rules = slices.DeleteFunc(g.rules, func(r *Rule) bool { return !r.owned })
		}
	}
	delete(g.arena, id)
	delete(g.idx.users, id)
	delete(g.weakened, id)
	return nil
}

// AppendToken appends a terminal to the start rule.
func (g *Grammar) AppendToken(token any) error {
	return g.start.Append(Terminal(token))
}

// MergeRule redirects every reference to dup onto keep and removes dup. Both
// rules must be owned, distinct, and expand to the same right-hand side.
func (g *Grammar) MergeRule(dup, keep *Rule) error {
	if dup == g.start || keep == g.start {
		return ErrStartRule
	}
	if dup == keep || !g.Owns(dup.id) || !g.Owns(keep.id) {
		return NewConsistencyError(g, "MergeRule", ErrForeignRule,
			"cannot merge %s into %s", dup.id, keep.id)
	}
	for _, n := range slices.Clone(g.idx.users[dup.id]) {
		if n.prev != nil {
			n.prev.untrack()
		}
		n.untrack()
		n.unrefer()
		n.sym = NonTerminal(keep.id)
		n.refer(keep)
		if n.prev != nil {
			n.prev.track()
		}
		n.track()
	}
	return g.RemoveRule(dup.id)
}

// Start returns the start rule
func (g *Grammar) Start() *Rule {
	return g.start
}

// owned yields the owned rules with their position, in declaration order.
func (g *Grammar) owned() iter.Seq2[int, *Rule] {
	return func(yield func(int, *Rule) bool) {
		i := 0
		for _, r := range g.rules {
			if !r.owned {
				continue
			}
			if !yield(i, r) {
				return
			}
			i++
		}
	}
}

// Rules returns the owned rules in declaration order, start rule first.
func (g *Grammar) Rules() []*Rule {
	out := make([]*Rule, 0, g.live)
	for _, r := range g.owned() {
		out = append(out, r)
	}
	return out
}

// Len returns the number of owned rules
func (g *Grammar) Len() int {
	return g.live
}

// Rule looks up an owned rule by handle.
func (g *Grammar) Rule(id RuleID) (*Rule, bool) {
	r, ok := g.arena[id]
	if !ok || !r.owned {
		return nil, false
	}
	return r, true
}

// Owns reports whether id is the handle of an owned rule
func (g *Grammar) Owns(id RuleID) bool {
	_, ok := g.Rule(id)
	return ok
}

// IndexOf returns the position of an owned rule, or -1.
func (g *Grammar) IndexOf(id RuleID) int {
	for i, r := range g.owned() {
		if r.id == id {
			return i
		}
	}
	return -1
}

// SymbolCount returns the total number of symbols across all owned rules.
func (g *Grammar) SymbolCount() int {
	return g.symbols
}

// Expand re-expands the start rule down to terminals.
func (g *Grammar) Expand() []any {
	return g.ExpandRule(g.start.id)
}

// ExpandRule re-expands one rule down to terminals. Unknown handles yield nil.
func (g *Grammar) ExpandRule(id RuleID) []any {
	r, ok := g.arena[id]
	if !ok {
		return nil
	}
	var out []any
	var walk func(r *Rule)
	walk = func(r *Rule) {
		for n := r.head; n != nil; n = n.next {
			if n.sym.IsTerminal() {
				out = append(out, n.sym.token)
				continue
			}
			if inner, ok := g.arena[n.sym.rule]; ok {
				walk(inner)
			}
		}
	}
	walk(r)
	return out
}

// Snapshot returns a deep copy of the owned rules. Handles and declaration
// order are preserved, so symbols of the copy resolve the same way as in the
// original.
func (g *Grammar) Snapshot() *Grammar {
	cp := newGrammar()
	cp.nextID = g.nextID
	cp.nextRank = g.nextRank
	cp.rules = make([]*Rule, 0, g.live)
	for _, r := range g.owned() {
		dup := &Rule{id: r.id, rank: r.rank, owned: true, g: cp}
		cp.arena[dup.id] = dup
		cp.rules = append(cp.rules, dup)
	}
	cp.live = len(cp.rules)
	cp.start = cp.rules[0]
	cp.start.refCount = StartRefCount

	for i, r := range g.owned() {
		dup := cp.rules[i]
		for n := r.head; n != nil; n = n.next {
			dup.push(n.sym)
		}
	}
	clear(cp.added)
	clear(cp.weakened)
	return cp
}

// String dumps the owned rules, one per line.
func (g *Grammar) String() string {
	lines := make([]string, 0, g.live)
	for _, r := range g.owned() {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}
