/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tokenize.go
Description: Token sources for grammar induction. A tokenizer turns raw input
into the ordered terminals fed to the engine. Plain text is split by character,
word or line; HTML documents are handled in html.go.
*/

package tokenize

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"
)

// ErrUnknownTokenizer is returned by ByName for an unregistered name.
var ErrUnknownTokenizer = errors.New("unknown tokenizer")

// maxTokenSize bounds a single word or line
const maxTokenSize = 16 * 1024 * 1024

// Tokenizer splits an input stream into terminals.
type Tokenizer interface {
	Name() string
	Description() string
	Tokenize(r io.Reader) ([]string, error)
}

var registry = map[string]Tokenizer{}

func register(t Tokenizer) {
	registry[t.Name()] = t
}

func init() {
	register(Chars{})
	register(Words{})
	register(Lines{})
	register(HTMLTags{})
	register(HTMLText{})
}

// ByName returns the tokenizer registered under name.
func ByName(name string) (Tokenizer, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTokenizer, name)
	}
	return t, nil
}

// All returns every registered tokenizer sorted by name
func All() []Tokenizer {
	out := make([]Tokenizer, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Chars yields one token per character (Unicode code point). A byte that
// does not start a valid UTF-8 sequence is a token of its own, holding that
// byte unchanged, so the tokens always concatenate back to the input.
type Chars struct{}

func (Chars) Name() string        { return "chars" }
func (Chars) Description() string { return "one token per character" }

func (Chars) Tokenize(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	tokens := make([]string, 0, len(data))
	for len(data) > 0 {
		_, size := utf8.DecodeRune(data)
		tokens = append(tokens, string(data[:size]))
		data = data[size:]
	}
	return tokens, nil
}

// Words yields whitespace separated words
type Words struct{}

func (Words) Name() string        { return "words" }
func (Words) Description() string { return "whitespace separated words" }

func (Words) Tokenize(r io.Reader) ([]string, error) {
	return scan(r, bufio.ScanWords)
}

// Lines yields one token per line, without the line terminator.
type Lines struct{}

func (Lines) Name() string        { return "lines" }
func (Lines) Description() string { return "one token per line" }

func (Lines) Tokenize(r io.Reader) ([]string, error) {
	return scan(r, bufio.ScanLines)
}

func scan(r io.Reader, split bufio.SplitFunc) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxTokenSize)
	scanner.Split(split)
	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	return tokens, nil
}
