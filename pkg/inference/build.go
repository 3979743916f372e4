/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: build.go
Description: Construction helpers that drive an engine over a whole token
source: slices, iterators and strings (one token per character).
*/

package inference

import (
	"fmt"
	"iter"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/sirupsen/logrus"
)

// Feed pushes every token of seq into the engine, stopping at the first error.
func Feed[T comparable](e *Engine, seq iter.Seq[T]) error {
	start := time.Now()
	n := 0
	for tok := range seq {
		n++
		if err := e.Push(tok); err != nil {
			return fmt.Errorf("token %d: %w", n, err)
		}
	}
	e.logger.WithFields(logrus.Fields{
		"tokens":   e.stats.Tokens,
		"rules":    e.grammar.Len(),
		"symbols":  e.grammar.SymbolCount(),
		"duration": time.Since(start),
	}).Info("Induction completed")
	return nil
}

// BuildFromSeq induces a grammar from a finite token sequence.
func BuildFromSeq[T comparable](seq iter.Seq[T], opts ...Option) (*grammar.Grammar, error) {
	e := NewEngine(opts...)
	if err := Feed(e, seq); err != nil {
		return nil, err
	}
	return e.Grammar(), nil
}

// BuildFrom induces a grammar from a slice of tokens.
func BuildFrom[T comparable](tokens []T, opts ...Option) (*grammar.Grammar, error) {
	return BuildFromSeq(slices.Values(tokens), opts...)
}

// BuildFromString induces a grammar whose terminals are the characters of s,
// each as a one-rune string.
func BuildFromString(s string, opts ...Option) (*grammar.Grammar, error) {
	return BuildFromSeq(Chars(s), opts...)
}

// Chars yields the characters of s as one-rune strings. Bytes outside valid
// UTF-8 are yielded one by one, unchanged.
func Chars(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for len(s) > 0 {
			_, size := utf8.DecodeRuneInString(s)
			if !yield(s[:size]) {
				return
			}
			s = s[size:]
		}
	}
}
