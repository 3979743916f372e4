/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: debug.go
Description: Debug formatter. Writes one line per traversal event, indented by
nesting depth, to show exactly what a visitor broadcasts.
*/

package formatter

import (
	"io"
	"strings"

	"github.com/kleascm/sequitur/pkg/grammar"
)

// Debug traces traversal events
type Debug struct {
	sink
	depth int
}

// NewDebug creates a debug formatter writing to w.
func NewDebug(w io.Writer) *Debug {
	return &Debug{sink: sink{w: w}}
}

func (d *Debug) BeforeGrammar(*grammar.Grammar) {
	d.event("before_grammar")
	d.depth++
}

func (d *Debug) BeforeRule(int, *grammar.Rule) {
	d.event("before_rule")
	d.depth++
}

func (d *Debug) BeforeRHS(int, []grammar.Symbol) {
	d.event("before_rhs")
	d.depth++
}

func (d *Debug) VisitTerminal(any) {
	d.event("visit_terminal")
}

func (d *Debug) BeforeNonTerminal(int, *grammar.Rule) {
	d.event("before_non_terminal")
}

func (d *Debug) AfterNonTerminal(int, *grammar.Rule) {
	d.event("after_non_terminal")
}

func (d *Debug) AfterRHS(int, []grammar.Symbol) {
	d.depth--
	d.event("after_rhs")
}

func (d *Debug) AfterRule(int, *grammar.Rule) {
	d.depth--
	d.event("after_rule")
}

func (d *Debug) AfterGrammar(*grammar.Grammar) {
	d.depth--
	d.event("after_grammar")
}

func (d *Debug) event(name string) {
	d.printf("%s%s\n", strings.Repeat("  ", d.depth), name)
}
