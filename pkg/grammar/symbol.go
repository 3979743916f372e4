/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: symbol.go
Description: Grammar symbols for the Sequitur engine. A symbol is either an opaque
terminal token or a non-terminal handle pointing at a rule of the grammar arena.
*/

package grammar

import (
	"fmt"
	"reflect"
)

// RuleID is the stable handle of a rule inside a grammar arena.
// Handles are allocated from a monotonically increasing counter and never reused.
type RuleID uint64

// NoRule is the zero handle. No rule is ever allocated with it.
const NoRule RuleID = 0

// String returns the handle as "#<n>"
func (id RuleID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// SymbolKind tells terminals and non-terminals apart
type SymbolKind uint8

const (
	KindTerminal SymbolKind = iota + 1
	KindNonTerminal
)

// Symbol is one element of a rule's right-hand side.
//
// Symbol is comparable: two terminals are equal when their tokens are equal,
// two non-terminals are equal when they reference the same rule.
type Symbol struct {
	kind  SymbolKind
	token any
	rule  RuleID
}

// Terminal wraps a token. The token must be a non-nil comparable value,
// see ValidToken.
func Terminal(token any) Symbol {
	return Symbol{kind: KindTerminal, token: token}
}

// NonTerminal builds a reference to the rule with the given handle.
func NonTerminal(id RuleID) Symbol {
	return Symbol{kind: KindNonTerminal, rule: id}
}

// Kind returns the symbol kind
func (s Symbol) Kind() SymbolKind {
	return s.kind
}

// IsTerminal reports whether s wraps a token
func (s Symbol) IsTerminal() bool {
	return s.kind == KindTerminal
}

// IsNonTerminal reports whether s references a rule
func (s Symbol) IsNonTerminal() bool {
	return s.kind == KindNonTerminal
}

// Token returns the wrapped token, or nil for a non-terminal.
func (s Symbol) Token() any {
	return s.token
}

// Rule returns the referenced handle, or NoRule for a terminal.
func (s Symbol) Rule() RuleID {
	return s.rule
}

// Refers reports whether s is a non-terminal targeting id.
func (s Symbol) Refers(id RuleID) bool {
	return s.kind == KindNonTerminal && s.rule == id
}

// String renders terminals by value and non-terminals by handle.
func (s Symbol) String() string {
	switch s.kind {
	case KindTerminal:
		return fmt.Sprint(s.token)
	case KindNonTerminal:
		return s.rule.String()
	default:
		return "<invalid>"
	}
}

// ValidToken checks that a token can be used as a terminal: it must be non-nil
// and hashable, since digram keys are used as map keys. A comparable type is
// not enough when an interface field holds a slice, map or func.
func ValidToken(token any) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidToken)
	}
	if !reflect.TypeOf(token).Comparable() {
		return fmt.Errorf("%w: token of type %T is not comparable", ErrInvalidToken, token)
	}
	return hashable(token)
}

func hashable(token any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: token of type %T is not hashable: %v", ErrInvalidToken, token, r)
		}
	}()
	seen := map[any]struct{}{}
	seen[token] = struct{}{}
	return nil
}
