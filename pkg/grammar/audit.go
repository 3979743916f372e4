/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: audit.go
Description: Full-scan audits of a grammar. Reference counts are recomputed from
scratch and compared with the incrementally maintained ones, and the two Sequitur
invariants are checked independently of the engine that maintains them.
*/

package grammar

import "errors"

// Invariant violations reported by CheckInvariants.
var (
	// ErrDigramNotUnique indicates a digram occurring twice without overlap.
	ErrDigramNotUnique = errors.New("digram occurs more than once")

	// ErrUselessRule indicates a non-start rule referenced fewer than two times.
	ErrUselessRule = errors.New("rule referenced fewer than two times")
)

// CountReferences recomputes, for every owned rule, the number of non-terminal
// occurrences targeting it. The start rule's artificial count is not included.
func (g *Grammar) CountReferences() map[RuleID]int {
	counts := make(map[RuleID]int, g.live)
	for _, r := range g.owned() {
		counts[r.id] += 0
		for n := r.head; n != nil; n = n.next {
			if n.sym.IsNonTerminal() {
				counts[n.sym.rule]++
			}
		}
	}
	return counts
}

// Check verifies the bookkeeping of the grammar: every non-terminal resolves
// to an owned rule, and reference counts, the symbol count and the digram
// index match a full scan.
func (g *Grammar) Check() error {
	for _, r := range g.owned() {
		pos := 0
		for n := r.head; n != nil; n, pos = n.next, pos+1 {
			if !n.sym.IsNonTerminal() {
				continue
			}
			target, ok := g.arena[n.sym.rule]
			if !ok {
				return NewConsistencyError(g, "Check", ErrDanglingReference,
					"rule %s refers to removed rule %s at position %d", r.id, n.sym.rule, pos)
			}
			if !target.owned {
				return NewConsistencyError(g, "Check", ErrForeignRule,
					"rule %s refers to rule %s that is not part of the grammar", r.id, n.sym.rule)
			}
		}
	}

	counts := g.CountReferences()
	for _, r := range g.owned() {
		expected := counts[r.id]
		if r == g.start {
			expected += StartRefCount
		}
		if r.refCount != expected {
			return NewConsistencyError(g, "Check", ErrRefCountMismatch,
				"rule %s has reference count %d but %d occurrences", r.id, r.refCount, expected)
		}
	}
	return g.checkIndex()
}

// checkIndex walks every arena rule and verifies that each digram and each
// non-terminal sits in its index slot, and that the index holds nothing else.
func (g *Grammar) checkIndex() error {
	symbols, digrams, users := 0, 0, 0
	for _, r := range g.arena {
		size := 0
		for n := r.head; n != nil; n = n.next {
			size++
			if n.rule != r {
				return NewConsistencyError(g, "Check", ErrIndexMismatch,
					"rule %s holds a node of rule %s", r.id, n.rule.id)
			}
			if n.next != nil {
				digrams++
				key := DigramKey{First: n.sym, Second: n.next.sym}
				entry := g.idx.digrams[key]
				if n.dslot < 0 || n.dslot >= len(entry) || entry[n.dslot] != n {
					return NewConsistencyError(g, "Check", ErrIndexMismatch,
						"digram %s of rule %s is not indexed", key, r.id)
				}
			}
			if _, ok := g.arena[n.sym.rule]; ok && n.sym.IsNonTerminal() {
				users++
				entry := g.idx.users[n.sym.rule]
				if n.uslot < 0 || n.uslot >= len(entry) || entry[n.uslot] != n {
					return NewConsistencyError(g, "Check", ErrIndexMismatch,
						"reference to %s in rule %s is not indexed", n.sym.rule, r.id)
				}
			}
		}
		if size != r.size {
			return NewConsistencyError(g, "Check", ErrIndexMismatch,
				"rule %s has length %d but holds %d symbols", r.id, r.size, size)
		}
		if r.owned {
			symbols += size
		}
	}
	if symbols != g.symbols {
		return NewConsistencyError(g, "Check", ErrIndexMismatch,
			"symbol count is %d but rules hold %d symbols", g.symbols, symbols)
	}

	indexed := 0
	for _, entry := range g.idx.digrams {
		indexed += len(entry)
	}
	if indexed != digrams {
		return NewConsistencyError(g, "Check", ErrIndexMismatch,
			"digram index holds %d occurrences but rules hold %d", indexed, digrams)
	}
	indexed = 0
	for _, entry := range g.idx.users {
		indexed += len(entry)
	}
	if indexed != users {
		return NewConsistencyError(g, "Check", ErrIndexMismatch,
			"%d references indexed but rules hold %d", indexed, users)
	}
	return nil
}

// CheckInvariants verifies digram uniqueness and rule utility on top of Check.
// Overlapping occurrences inside one rule, as in "a a a", do not count as a
// repetition.
func (g *Grammar) CheckInvariants() error {
	if err := g.Check(); err != nil {
		return err
	}

	seen := make(map[DigramKey][]Digram)
	for _, r := range g.owned() {
		for d := range r.Digrams() {
			key := d.Key()
			for _, prev := range seen[key] {
				if !prev.Overlaps(d) {
					return NewConsistencyError(g, "CheckInvariants", ErrDigramNotUnique,
						"digram %s at %s:%d and %s:%d", key, prev.Rule, prev.Pos, d.Rule, d.Pos)
				}
			}
			seen[key] = append(seen[key], d)
		}
	}

	for _, r := range g.owned() {
		if r != g.start && r.refCount < 2 {
			return NewConsistencyError(g, "CheckInvariants", ErrUselessRule,
				"rule %s has reference count %d", r.id, r.refCount)
		}
	}
	return nil
}
