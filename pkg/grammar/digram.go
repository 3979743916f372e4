/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: digram.go
Description: Digrams, the pairs of adjacent symbols tracked by the Sequitur engine.
A digram carries a content key so equal patterns can be found across all rules.
*/

package grammar

import "fmt"

// DigramKey identifies a two-symbol pattern independently of where it occurs.
// It is derived from the content of both symbols and is usable as a map key.
type DigramKey struct {
	First  Symbol
	Second Symbol
}

// String returns "(first second)"
func (k DigramKey) String() string {
	return fmt.Sprintf("(%s %s)", k.First, k.Second)
}

// Digram is one occurrence of a two-symbol pattern in a rule.
type Digram struct {
	First  Symbol
	Second Symbol
	Rule   RuleID // rule whose right-hand side holds the pair
	Pos    int    // index of First in that right-hand side
}

// Key returns the content key of the digram
func (d Digram) Key() DigramKey {
	return DigramKey{First: d.First, Second: d.Second}
}

// Repeating reports whether both symbols are the same, as in "a a".
func (d Digram) Repeating() bool {
	return d.First == d.Second
}

// Overlaps reports whether d and other share a symbol position in the same rule.
func (d Digram) Overlaps(other Digram) bool {
	if d.Rule != other.Rule {
		return false
	}
	diff := d.Pos - other.Pos
	return diff >= -1 && diff <= 1
}

// String returns the digram with its location
func (d Digram) String() string {
	return fmt.Sprintf("%s@%s:%d", d.Key(), d.Rule, d.Pos)
}
