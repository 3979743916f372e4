/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: text.go
Description: Plain text formatter. Each rule is written on its own line as
"name : rhs." with terminals as their literal value.
*/

package formatter

import (
	"fmt"
	"io"

	"github.com/kleascm/sequitur/pkg/grammar"
)

// Text writes the grammar in the conformance text format:
//
//	start : P1 P1.
//	P1 : a b.
type Text struct {
	grammar.NopListener
	sink
}

// NewText creates a text formatter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{sink: sink{w: w}}
}

func (t *Text) BeforeRule(index int, _ *grammar.Rule) {
	t.printf("%s", RuleName(index))
}

func (t *Text) BeforeRHS(int, []grammar.Symbol) {
	t.printf(" :")
}

func (t *Text) VisitTerminal(token any) {
	t.printf(" %s", fmt.Sprint(token))
}

func (t *Text) BeforeNonTerminal(index int, _ *grammar.Rule) {
	t.printf(" %s", RuleName(index))
}

func (t *Text) AfterRule(int, *grammar.Rule) {
	t.printf(".\n")
}
