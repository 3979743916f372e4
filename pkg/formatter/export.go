/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: export.go
Description: Structured export of an induced grammar. The traversal is collected
into a Document which is encoded as JSON or YAML once the walk is over.
*/

package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kleascm/sequitur/pkg/grammar"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of an export
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the exported form of a grammar.
type Document struct {
	RunID   string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Symbols int         `json:"symbols" yaml:"symbols"`
	Rules   []RuleEntry `json:"rules" yaml:"rules"`
}

// RuleEntry describes one rule of the grammar
type RuleEntry struct {
	Name     string        `json:"name" yaml:"name"`
	Index    int           `json:"index" yaml:"index"`
	RefCount int           `json:"ref_count" yaml:"ref_count"`
	RHS      []SymbolEntry `json:"rhs" yaml:"rhs"`
}

// SymbolEntry is a right-hand side symbol. Exactly one of Terminal and Rule is set.
type SymbolEntry struct {
	Terminal string `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Rule     string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Export collects the grammar into a Document and encodes it after the
// traversal ends.
type Export struct {
	grammar.NopListener
	sink
	format Format
	doc    Document
}

// NewExport creates an export formatter writing to w.
func NewExport(w io.Writer, format Format, runID string) *Export {
	return &Export{
		sink:   sink{w: w},
		format: format,
		doc:    Document{RunID: runID},
	}
}

// Collect walks g and returns its Document without encoding it.
func Collect(g *grammar.Grammar, runID string) Document {
	e := &Export{doc: Document{RunID: runID}}
	v := g.Visitor()
	v.Subscribe(e)
	v.Start()
	return e.doc
}

// Document returns the collected document
func (e *Export) Document() Document {
	return e.doc
}

func (e *Export) BeforeGrammar(*grammar.Grammar) {
	e.doc.Rules = nil
	e.doc.Symbols = 0
}

func (e *Export) BeforeRule(index int, r *grammar.Rule) {
	e.doc.Rules = append(e.doc.Rules, RuleEntry{
		Name:     RuleName(index),
		Index:    index,
		RefCount: r.RefCount(),
		RHS:      make([]SymbolEntry, 0, r.Len()),
	})
	e.doc.Symbols += r.Len()
}

func (e *Export) VisitTerminal(token any) {
	e.appendSymbol(SymbolEntry{Terminal: fmt.Sprint(token)})
}

func (e *Export) BeforeNonTerminal(index int, _ *grammar.Rule) {
	e.appendSymbol(SymbolEntry{Rule: RuleName(index)})
}

func (e *Export) AfterGrammar(*grammar.Grammar) {
	if e.err != nil || e.w == nil {
		return
	}
	switch e.format {
	case FormatJSON:
		enc := json.NewEncoder(e.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e.doc); err != nil {
			e.err = fmt.Errorf("failed to encode JSON export: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(e.w)
		enc.SetIndent(2)
		if err := enc.Encode(e.doc); err != nil {
			e.err = fmt.Errorf("failed to encode YAML export: %w", err)
			return
		}
		if err := enc.Close(); err != nil {
			e.err = fmt.Errorf("failed to encode YAML export: %w", err)
		}
	default:
		e.err = fmt.Errorf("%w: %q", ErrUnknownFormat, e.format)
	}
}

func (e *Export) appendSymbol(s SymbolEntry) {
	if n := len(e.doc.Rules); n > 0 {
		e.doc.Rules[n-1].RHS = append(e.doc.Rules[n-1].RHS, s)
	}
}
