/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: visitor.go
Description: Traversal protocol of an induced grammar. A Visitor walks the rules
depth-first and broadcasts ordered events to every subscribed Listener. This is
how formatters and exporters read the grammar structure.
*/

package grammar

// Listener receives traversal events. Rule indexes are positions in the
// grammar's rule list: index 0 is always the start rule.
//
// Embed NopListener to implement only the events of interest.
type Listener interface {
	BeforeGrammar(g *Grammar)
	BeforeRule(index int, r *Rule)
	BeforeRHS(index int, rhs []Symbol)
	VisitTerminal(token any)
	BeforeNonTerminal(index int, r *Rule)
	AfterNonTerminal(index int, r *Rule)
	AfterRHS(index int, rhs []Symbol)
	AfterRule(index int, r *Rule)
	AfterGrammar(g *Grammar)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) BeforeGrammar(*Grammar) {}
func (NopListener) BeforeRule(int, *Rule) {}
func (NopListener) BeforeRHS(int, []Symbol) {}
func (NopListener) VisitTerminal(any) {}
func (NopListener) BeforeNonTerminal(int, *Rule) {}
func (NopListener) AfterNonTerminal(int, *Rule) {}
func (NopListener) AfterRHS(int, []Symbol) {}
func (NopListener) AfterRule(int, *Rule) {}
func (NopListener) AfterGrammar(*Grammar) {}

// Visitor walks a grammar and notifies its subscribers synchronously, in
// registration order.
type Visitor struct {
	grammar     *Grammar
	subscribers []Listener
}

// NewVisitor creates a visitor for g with no subscriber.
func NewVisitor(g *Grammar) *Visitor {
	return &Visitor{grammar: g}
}

// Visitor returns a new visitor over the grammar
func (g *Grammar) Visitor() *Visitor {
	return NewVisitor(g)
}

// Grammar returns the visited grammar
func (v *Visitor) Grammar() *Grammar {
	return v.grammar
}

// Subscribe adds a listener. Listeners are compared by identity on
// Unsubscribe, so pointer receivers are expected.
func (v *Visitor) Subscribe(l Listener) {
	v.subscribers = append(v.subscribers, l)
}

// Unsubscribe removes every registration of l.
func (v *Visitor) Unsubscribe(l Listener) {
	kept := v.subscribers[:0]
	for _, s := range v.subscribers {
		if s != l {
			kept = append(kept, s)
		}
	}
	v.subscribers = kept
}

// Subscribers returns the current listeners
func (v *Visitor) Subscribers() []Listener {
	out := make([]Listener, len(v.subscribers))
	copy(out, v.subscribers)
	return out
}

// Start runs the traversal.
func (v *Visitor) Start() {
	g := v.grammar
	index := make(map[RuleID]int, g.live)
	for i, r := range g.owned() {
		index[r.id] = i
	}

	v.broadcast(func(l Listener) { l.BeforeGrammar(g) })
	for i, r := range g.owned() {
		rhs := r.Symbols()
		v.broadcast(func(l Listener) { l.BeforeRule(i, r) })
		v.broadcast(func(l Listener) { l.BeforeRHS(i, rhs) })
		for _, s := range rhs {
			if s.IsTerminal() {
				v.broadcast(func(l Listener) { l.VisitTerminal(s.token) })
				continue
			}
			target, ok := g.Rule(s.rule)
			if !ok {
				continue
			}
			ref := index[s.rule]
			v.broadcast(func(l Listener) { l.BeforeNonTerminal(ref, target) })
			v.broadcast(func(l Listener) { l.AfterNonTerminal(ref, target) })
		}
		v.broadcast(func(l Listener) { l.AfterRHS(i, rhs) })
		v.broadcast(func(l Listener) { l.AfterRule(i, r) })
	}
	v.broadcast(func(l Listener) { l.AfterGrammar(g) })
}

func (v *Visitor) broadcast(event func(Listener)) {
	for _, s := range v.subscribers {
		event(s)
	}
}
