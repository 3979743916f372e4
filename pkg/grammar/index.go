/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: index.go
Description: Incremental indexes of a grammar. Every right-hand side mutation
updates the digram occurrences and the referencing nodes of each rule, and
journals what it added or weakened so an engine only re-checks what changed.
*/

package grammar

import (
	"cmp"
	"slices"
)

// index maps every digram to the nodes it starts at, and every rule to the
// non-terminal nodes referring to it. Arena rules are indexed whether owned
// or not. Entries are unordered; nodes remember their slot.
type index struct {
	digrams map[DigramKey][]*node
	users   map[RuleID][]*node
}

func newIndex() index {
	return index{
		digrams: make(map[DigramKey][]*node),
		users:   make(map[RuleID][]*node),
	}
}

// track registers the digram starting at n, if n has a successor.
func (n *node) track() {
	g := n.rule.g
	if g == nil || n.next == nil || n.dslot >= 0 {
		return
	}
	key := DigramKey{First: n.sym, Second: n.next.sym}
	entry := g.idx.digrams[key]
	n.dslot = len(entry)
	g.idx.digrams[key] = append(entry, n)
	g.added[key] = struct{}{}
}

// untrack drops the digram starting at n. It must run before n.next changes.
func (n *node) untrack() {
	g := n.rule.g
	if g == nil || n.dslot < 0 {
		return
	}
	slot := n.dslot
	n.dslot = -1
	if n.next == nil {
		return
	}
	key := DigramKey{First: n.sym, Second: n.next.sym}
	g.idx.digrams[key] = drop(g.idx.digrams[key], slot, func(m *node, i int) { m.dslot = i })
	if len(g.idx.digrams[key]) == 0 {
		delete(g.idx.digrams, key)
	}
}

// refer counts n as a reference to target.
func (n *node) refer(target *Rule) {
	g := n.rule.g
	target.refCount++
	entry := g.idx.users[target.id]
	n.uslot = len(entry)
	g.idx.users[target.id] = append(entry, n)
}

// unrefer releases the reference n holds, if its target is still allocated.
func (n *node) unrefer() {
	g := n.rule.g
	if g == nil || n.uslot < 0 {
		return
	}
	slot := n.uslot
	n.uslot = -1
	target, ok := g.arena[n.sym.rule]
	if !ok {
		return
	}
	target.refCount--
	g.weakened[target.id] = struct{}{}
	g.idx.users[target.id] = drop(g.idx.users[target.id], slot, func(m *node, i int) { m.uslot = i })
	if len(g.idx.users[target.id]) == 0 {
		delete(g.idx.users, target.id)
	}
}

// drop removes entry[slot] by moving the last node into its place.
func drop(entry []*node, slot int, moved func(*node, int)) []*node {
	if slot >= len(entry) {
		return entry
	}
	last := len(entry) - 1
	entry[slot] = entry[last]
	moved(entry[slot], slot)
	entry[last] = nil
	return entry[:last]
}

// Occurrence locates the nth non-overlapping occurrence of a digram in a rule,
// counting left to right from zero.
type Occurrence struct {
	rule *Rule
	key  DigramKey
	nth  int
}

// Rule returns the rule holding the occurrence
func (o Occurrence) Rule() *Rule {
	return o.rule
}

// Key returns the digram that occurs
func (o Occurrence) Key() DigramKey {
	return o.key
}

// Pos returns the index of the occurrence in its rule, or -1. It walks the
// right-hand side.
func (o Occurrence) Pos() int {
	if o.rule == nil {
		return -1
	}
	positions := o.rule.PositionsOf(o.key.First, o.key.Second)
	if o.nth >= len(positions) {
		return -1
	}
	return positions[o.nth]
}

// Digram returns the occurrence as a located digram.
func (o Occurrence) Digram() Digram {
	d := Digram{First: o.key.First, Second: o.key.Second, Pos: o.Pos()}
	if o.rule != nil {
		d.Rule = o.rule.id
	}
	return d
}

// Before reports whether o is met before other when scanning the rules in
// declaration order, left to right. Positions are only computed for two
// occurrences in the same rule.
func (o Occurrence) Before(other Occurrence) bool {
	if o.rule != other.rule {
		return o.rule.rank < other.rule.rank
	}
	return o.Pos() < other.Pos()
}

// Repetition returns the first two non-overlapping occurrences of key met
// when scanning the owned rules in declaration order, left to right. Runs of
// one symbol, as in "a a a", only repeat once a pair fits without overlap.
func (g *Grammar) Repetition(key DigramKey) (first, second Occurrence, ok bool) {
	entry := g.idx.digrams[key]
	if len(entry) < 2 {
		return Occurrence{}, Occurrence{}, false
	}
	var rules []*Rule
	for _, n := range entry {
		if n.rule.owned && !slices.Contains(rules, n.rule) {
			rules = append(rules, n.rule)
		}
	}
	if len(rules) == 0 {
		return Occurrence{}, Occurrence{}, false
	}
	slices.SortFunc(rules, func(a, b *Rule) int {
		return cmp.Compare(a.rank, b.rank)
	})

	first = Occurrence{rule: rules[0], key: key}
	switch {
	case rules[0].repeats(key):
		return first, Occurrence{rule: rules[0], key: key, nth: 1}, true
	case len(rules) > 1:
		return first, Occurrence{rule: rules[1], key: key}, true
	}
	return Occurrence{}, Occurrence{}, false
}

// repeats reports whether key occurs twice in r without overlap.
func (r *Rule) repeats(key DigramKey) bool {
	sites, runs := 0, 0
	for _, n := range r.g.idx.digrams[key] {
		if n.rule != r {
			continue
		}
		sites++
		if key.First != key.Second || n.prev == nil || n.prev.sym != key.First {
			runs++
		}
	}
	// a single run needs four equal symbols to hold two disjoint pairs
	return runs > 1 || (runs == 1 && sites > 2)
}

// DigramCount returns the number of occurrences of key across the arena,
// overlapping ones included.
func (g *Grammar) DigramCount(key DigramKey) int {
	return len(g.idx.digrams[key])
}

// Users returns the handles of the rules referring to id, in handle order.
func (g *Grammar) Users(id RuleID) []RuleID {
	entry := g.idx.users[id]
	out := make([]RuleID, len(entry))
	for i, n := range entry {
		out[i] = n.rule.id
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// TakeAddedDigrams returns the digrams that gained an occurrence since the
// previous call, in no particular order, and resets the journal.
func (g *Grammar) TakeAddedDigrams() []DigramKey {
	keys := make([]DigramKey, 0, len(g.added))
	for key := range g.added {
		keys = append(keys, key)
	}
	clear(g.added)
	return keys
}

// TakeWeakenedRules returns the rules that lost a reference or joined the
// grammar since the previous call, in no particular order, and resets the
// journal.
func (g *Grammar) TakeWeakenedRules() []RuleID {
	ids := make([]RuleID, 0, len(g.weakened))
	for id := range g.weakened {
		ids = append(ids, id)
	}
	clear(g.weakened)
	return ids
}
