/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Grammar formatters. A formatter is a traversal listener that writes
what it sees to an output stream. Render drives one formatter over a visitor.
*/

package formatter

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/kleascm/sequitur/pkg/grammar"
)

// ErrUnknownFormat is returned for a format name no formatter handles.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer is a grammar listener that reports the first write error it hit.
type Renderer interface {
	grammar.Listener
	Err() error
}

// Render subscribes r to the visitor, runs the traversal and unsubscribes r.
// Other subscribers of the visitor receive the same events.
func Render(v *grammar.Visitor, r Renderer) error {
	v.Subscribe(r)
	defer v.Unsubscribe(r)
	v.Start()
	return r.Err()
}

// RenderGrammar renders g with a fresh visitor.
func RenderGrammar(g *grammar.Grammar, r Renderer) error {
	return Render(g.Visitor(), r)
}

// New builds the formatter registered under name. runID is only used by the
// export formats.
func New(name string, w io.Writer, runID string) (Renderer, error) {
	switch name {
	case "text":
		return NewText(w), nil
	case "debug":
		return NewDebug(w), nil
	case "json":
		return NewExport(w, FormatJSON, runID), nil
	case "yaml":
		return NewExport(w, FormatYAML, runID), nil
	}
	return nil, CheckName(name)
}

// CheckName returns ErrUnknownFormat unless name is a registered format.
func CheckName(name string) error {
	if slices.Contains(Names(), name) {
		return nil
	}
	return fmt.Errorf("%w: %q (available: %v)", ErrUnknownFormat, name, Names())
}

// Names lists the registered format names
func Names() []string {
	names := []string{"text", "debug", "json", "yaml"}
	sort.Strings(names)
	return names
}

// RuleName is the display name of the rule at index: "start" for the start
// rule, "P<index>" for the others.
func RuleName(index int) string {
	if index == 0 {
		return "start"
	}
	return fmt.Sprintf("P%d", index)
}

// sink is an output stream that remembers its first write error and ignores
// every write after it.
type sink struct {
	w   io.Writer
	err error
}

func (s *sink) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil {
		s.err = fmt.Errorf("failed to write output: %w", err)
	}
}

// Err returns the first write error
func (s *sink) Err() error {
	return s.err
}
