/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rule.go
Description: Rules (productions) of an induced grammar. A rule owns an ordered
right-hand side, held as a doubly linked list of symbol nodes, and a live
reference count. Every mutation keeps the reference counts and the digram index
in step with the symbols it holds.
*/

package grammar

import (
	"fmt"
	"iter"
	"strings"
)

// node holds one symbol of a right-hand side.
type node struct {
	sym        Symbol
	prev, next *node
	rule       *Rule
	dslot      int // slot in the index entry of the digram starting here, -1 if none
	uslot      int // slot in the users entry of the referenced rule, -1 if none
}

// Rule is a production of the grammar: a handle, a right-hand side and the
// number of non-terminal occurrences across the grammar that target it.
//
// Rules are created by Grammar.NewRule and always belong to one grammar arena.
type Rule struct {
	id       RuleID
	head     *node
	tail     *node
	size     int
	refCount int
	rank     uint64 // declaration order, set when the rule joins the grammar
	owned    bool   // in the grammar's ordered rule list
	g        *Grammar
}

// ID returns the stable handle of the rule
func (r *Rule) ID() RuleID {
	return r.id
}

// Len returns the number of symbols in the right-hand side
func (r *Rule) Len() int {
	return r.size
}

// Empty reports whether the right-hand side has no symbol
func (r *Rule) Empty() bool {
	return r.size == 0
}

// At returns the symbol at position i. It walks the right-hand side.
func (r *Rule) At(i int) Symbol {
	if i < 0 || i >= r.size {
		panic(fmt.Sprintf("grammar: index %d out of range [0:%d]", i, r.size))
	}
	n := r.head
	for ; i > 0; i-- {
		n = n.next
	}
	return n.sym
}

// Symbols returns a copy of the right-hand side.
func (r *Rule) Symbols() []Symbol {
	out := make([]Symbol, 0, r.size)
	for n := r.head; n != nil; n = n.next {
		out = append(out, n.sym)
	}
	return out
}

// RefCount returns the live reference count
func (r *Rule) RefCount() int {
	return r.refCount
}

// Rank orders owned rules: the grammar lists them by increasing rank.
func (r *Rule) Rank() uint64 {
	return r.rank
}

// Owned reports whether the rule is part of the grammar's rule list.
func (r *Rule) Owned() bool {
	return r.owned
}

// IsSingleDigram reports whether the right-hand side is exactly two symbols.
func (r *Rule) IsSingleDigram() bool {
	return r.size == 2
}

// Expand re-expands the rule down to terminals.
func (r *Rule) Expand() []any {
	if r.g == nil {
		return nil
	}
	return r.g.ExpandRule(r.id)
}

// ReferencesOf counts the occurrences of a non-terminal for id in the right-hand side.
func (r *Rule) ReferencesOf(id RuleID) int {
	n := 0
	for s := r.head; s != nil; s = s.next {
		if s.sym.Refers(id) {
			n++
		}
	}
	return n
}

// References returns the handles of every non-terminal in the right-hand side,
// in order and with repetitions.
func (r *Rule) References() []RuleID {
	var ids []RuleID
	for n := r.head; n != nil; n = n.next {
		if n.sym.IsNonTerminal() {
			ids = append(ids, n.sym.rule)
		}
	}
	return ids
}

// Append pushes a symbol at the end of the right-hand side. A non-terminal
// increments the reference count of its target.
func (r *Rule) Append(s Symbol) error {
	switch s.kind {
	case KindTerminal:
		if err := ValidToken(s.token); err != nil {
			return err
		}
	case KindNonTerminal:
		if _, err := r.resolve(s.rule); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: zero symbol", ErrInvalidToken)
	}
	r.push(s)
	return nil
}

// push appends s without validation.
func (r *Rule) push(s Symbol) {
	n := &node{sym: s, rule: r, dslot: -1, uslot: -1}
	r.insertAfter(r.tail, n)
	if s.IsNonTerminal() && r.g != nil {
		if target, ok := r.g.arena[s.rule]; ok && target != r {
			n.refer(target)
		}
	}
	if n.prev != nil {
		n.prev.track()
	}
}

// Clear releases every non-terminal of the right-hand side and empties it.
func (r *Rule) Clear() {
	for n := r.head; n != nil; n = n.next {
		n.untrack()
		n.unrefer()
	}
	if r.owned && r.g != nil {
		r.g.symbols -= r.size
	}
	r.head, r.tail, r.size = nil, nil, 0
}

// Digrams yields every pair of adjacent symbols, left to right. The sequence
// reads the right-hand side as it is when iterated, nothing is cached.
func (r *Rule) Digrams() iter.Seq[Digram] {
	return func(yield func(Digram) bool) {
		pos := 0
		for n := r.head; n != nil && n.next != nil; n = n.next {
			d := Digram{First: n.sym, Second: n.next.sym, Rule: r.id, Pos: pos}
			if !yield(d) {
				return
			}
			pos++
		}
	}
}

// LastDigram returns the trailing digram, if any
func (r *Rule) LastDigram() (Digram, bool) {
	if r.size < 2 {
		return Digram{}, false
	}
	return Digram{First: r.tail.prev.sym, Second: r.tail.sym, Rule: r.id, Pos: r.size - 2}, true
}

// PositionsOf returns the start indices of the pair (a, b) in the right-hand
// side. Matches never overlap: after a match at i, scanning resumes at i+2.
func (r *Rule) PositionsOf(a, b Symbol) []int {
	var positions []int
	for n, i := r.head, 0; n != nil && n.next != nil; {
		if n.sym == a && n.next.sym == b {
			positions = append(positions, i)
			n, i = n.next.next, i+2
			continue
		}
		n, i = n.next, i+1
	}
	return positions
}

// HasRepeatedTrailingDigram reports whether the last digram also occurs
// earlier in the right-hand side without sharing a symbol with it.
func (r *Rule) HasRepeatedTrailingDigram() bool {
	last, ok := r.LastDigram()
	if !ok || r.size < 3 {
		return false
	}
	// the digram at n-3 overlaps the last one
	for n, i := r.head, 0; i+3 < r.size; n, i = n.next, i+1 {
		if n.sym == last.First && n.next.sym == last.Second {
			return true
		}
	}
	return false
}

// ReplaceDigram substitutes every non-overlapping occurrence of target's
// two-symbol right-hand side with a non-terminal for target. It returns the
// number of substitutions.
func (r *Rule) ReplaceDigram(target *Rule) (int, error) {
	if target == nil || !target.IsSingleDigram() {
		return 0, ErrNotSingleDigram
	}
	if _, err := r.resolve(target.id); err != nil {
		return 0, err
	}
	sites := r.sites(DigramKey{First: target.head.sym, Second: target.tail.sym})
	for _, x := range sites {
		r.substitute(x, target)
	}
	return len(sites), nil
}

// sites returns the first node of every occurrence of key that a left to
// right scan matches, so that none overlap.
func (r *Rule) sites(key DigramKey) []*node {
	var out []*node
	for _, n := range r.g.idx.digrams[key] {
		if n.rule != r {
			continue
		}
		if key.First != key.Second {
			out = append(out, n)
			continue
		}
		// a run of equal symbols is matched from its first pair, every other pair
		if n.prev != nil && n.prev.sym == key.First {
			continue
		}
		for x := n; x != nil && x.next != nil && x.sym == key.First && x.next.sym == key.First; x = x.next.next {
			out = append(out, x)
		}
	}
	return out
}

// substitute replaces the pair starting at x with a non-terminal for target.
func (r *Rule) substitute(x *node, target *Rule) {
	y := x.next
	if x.prev != nil {
		x.prev.untrack()
	}
	x.untrack()
	y.untrack()

	n := &node{sym: NonTerminal(target.id), rule: r, dslot: -1, uslot: -1}
	r.insertAfter(y, n)
	x.unrefer()
	y.unrefer()
	r.unlink(x)
	r.unlink(y)
	n.refer(target)

	if n.prev != nil {
		n.prev.track()
	}
	n.track()
}

// InlineRule replaces every non-terminal for target with a copy of target's
// right-hand side. It returns the number of occurrences replaced.
func (r *Rule) InlineRule(target *Rule) (int, error) {
	if target == nil {
		return 0, ErrUnboundReference
	}
	if _, err := r.resolve(target.id); err != nil {
		return 0, err
	}
	var sites []*node
	for _, n := range r.g.idx.users[target.id] {
		if n.rule == r {
			sites = append(sites, n)
		}
	}
	for _, o := range sites {
		r.expand(o, target)
	}
	return len(sites), nil
}

// expand replaces the non-terminal o with a copy of target's right-hand side.
func (r *Rule) expand(o *node, target *Rule) {
	prev, next := o.prev, o.next
	if prev != nil {
		prev.untrack()
	}
	o.untrack()
	o.unrefer()
	r.unlink(o)

	at := prev
	for t := target.head; t != nil; t = t.next {
		n := &node{sym: t.sym, rule: r, dslot: -1, uslot: -1}
		r.insertAfter(at, n)
		if t.sym.IsNonTerminal() {
			if ref, ok := r.g.arena[t.sym.rule]; ok {
				n.refer(ref)
			}
		}
		at = n
	}

	from := prev
	if from == nil {
		from = r.head
	}
	for n := from; n != nil && n != next; n = n.next {
		n.track()
	}
}

// String renders the rule as "#id : rhs."
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.id.String())
	b.WriteString(" :")
	for n := r.head; n != nil; n = n.next {
		b.WriteByte(' ')
		if n.sym.IsTerminal() {
			fmt.Fprintf(&b, "%q", fmt.Sprint(n.sym.token))
		} else {
			b.WriteString(n.sym.String())
		}
	}
	b.WriteByte('.')
	return b.String()
}

// insertAfter links n after at, or first when at is nil.
func (r *Rule) insertAfter(at, n *node) {
	n.prev = at
	if at == nil {
		n.next = r.head
		r.head = n
	} else {
		n.next = at.next
		at.next = n
	}
	if n.next == nil {
		r.tail = n
	} else {
		n.next.prev = n
	}
	r.size++
	if r.owned && r.g != nil {
		r.g.symbols++
	}
}

// unlink detaches n from the right-hand side.
func (r *Rule) unlink(n *node) {
	if n.prev == nil {
		r.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		r.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
	r.size--
	if r.owned && r.g != nil {
		r.g.symbols--
	}
}

// resolve finds the arena rule a non-terminal of r may point at.
func (r *Rule) resolve(id RuleID) (*Rule, error) {
	if r.g == nil {
		return nil, fmt.Errorf("%w: rule %s is detached", ErrUnboundReference, r.id)
	}
	target, ok := r.g.arena[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnboundReference, id)
	}
	if target == r {
		return nil, fmt.Errorf("%w: rule %s cannot reference itself", ErrUnboundReference, id)
	}
	return target, nil
}
