/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Built-in self-checks. Grammars are induced for fixed samples and
seeded random sequences, then checked for the grammar invariants, exact
re-expansion and the text rendering contract.
*/

package commands

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"

	"github.com/kleascm/sequitur/pkg/formatter"
	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/kleascm/sequitur/pkg/inference"
	"github.com/kleascm/sequitur/pkg/tokenize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// verifySamples are inputs with known tricky shapes: overlapping runs,
// repeats inside one rule, nested repeats and cascading inlining.
var verifySamples = []string{
	"",
	"a",
	"aaa",
	"aaaa",
	"aaaaaaaa",
	"abab",
	"abcdbc",
	"abcabcabc",
	"aaxaa",
	"abcdbcabcdbc",
	"abbbabcbb",
	"pease porridge hot, pease porridge cold, pease porridge in the pot, nine days old.",
}

const verifyHTML = `<html><body><ul><li>one <b>two</b></li><li>one <b>two</b></li></ul><script>x()</script></body></html>`

// verifyConfig holds the settings of the random checks
type verifyConfig struct {
	samples   int
	seed      int64
	maxLength int
	alphabet  int
}

func loadVerifyConfig() (verifyConfig, error) {
	cfg := verifyConfig{
		samples:   viper.GetInt("verify.samples"),
		seed:      viper.GetInt64("verify.seed"),
		maxLength: viper.GetInt("verify.max_length"),
		alphabet:  viper.GetInt("verify.alphabet"),
	}
	if cfg.samples < 0 {
		return cfg, fmt.Errorf("samples must not be negative")
	}
	if cfg.samples > 0 && cfg.maxLength <= 0 {
		return cfg, fmt.Errorf("max_length must be positive")
	}
	if cfg.alphabet <= 0 || cfg.alphabet > 26 {
		return cfg, fmt.Errorf("alphabet must be between 1 and 26")
	}
	return cfg, nil
}

// PerformSelfCheck runs every check and reports each result
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 Sequitur - Grammar Self-Check")
	fmt.Fprintln(out, "================================")
	fmt.Fprintln(out)

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg, err := loadVerifyConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	checks := []struct {
		name     string
		function func() error
	}{
		{"Sample Grammars", checkSamples},
		{"Text Rendering", checkTextRendering},
		{"Random Sequences", func() error { return checkRandomSequences(cfg) }},
		{"Tokenizers", checkTokenizers},
		{"Invalid Tokens", checkInvalidTokens},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Fprintf(out, "🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
		} else {
			fmt.Fprintln(out, "✅ PASSED")
			passed++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, total)

	if passed != total {
		fmt.Fprintln(out, "⚠️  Some checks failed.")
		return fmt.Errorf("%d/%d checks failed", total-passed, total)
	}
	fmt.Fprintln(out, "✨ All checks passed!")
	return nil
}

// verifyTokens induces a grammar for tokens and checks it.
func verifyTokens(tokens []string) error {
	g, err := inference.BuildFrom(tokens, inference.WithConfig(&inference.Config{Audit: true}))
	if err != nil {
		return err
	}
	if err := g.CheckInvariants(); err != nil {
		return err
	}
	return sameTokens(g.Expand(), tokens)
}

func checkSamples() error {
	for _, sample := range verifySamples {
		tokens, err := tokenize.Chars{}.Tokenize(strings.NewReader(sample))
		if err != nil {
			return err
		}
		if err := verifyTokens(tokens); err != nil {
			return fmt.Errorf("sample %q: %w", sample, err)
		}
	}
	return nil
}

func checkTextRendering() error {
	tokens := strings.Fields("nnp vbz nn nnp vbz nn")
	g, err := inference.BuildFrom(tokens)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := formatter.RenderGrammar(g, formatter.NewText(&buf)); err != nil {
		return err
	}
	want := "start : P1 P1.\nP1 : nnp vbz nn.\n"
	if buf.String() != want {
		return fmt.Errorf("rendered %q, expected %q", buf.String(), want)
	}
	return nil
}

func checkRandomSequences(cfg verifyConfig) error {
	rng := rand.New(rand.NewSource(cfg.seed))
	for i := 0; i < cfg.samples; i++ {
		tokens := make([]string, rng.Intn(cfg.maxLength)+1)
		for j := range tokens {
			tokens[j] = string(rune('a' + rng.Intn(cfg.alphabet)))
		}
		if err := verifyTokens(tokens); err != nil {
			return fmt.Errorf("sequence %d %q: %w", i, strings.Join(tokens, ""), err)
		}
	}
	return nil
}

func checkTokenizers() error {
	for _, t := range tokenize.All() {
		tokens, err := t.Tokenize(strings.NewReader(verifyHTML))
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
		if len(tokens) == 0 {
			return fmt.Errorf("%s: no token", t.Name())
		}
		if err := verifyTokens(tokens); err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	return nil
}

func checkInvalidTokens() error {
	e := inference.NewEngine()
	if err := e.Push(nil); err == nil {
		return fmt.Errorf("nil token accepted")
	}
	if err := e.Push([]string{"x"}); err == nil {
		return fmt.Errorf("slice token accepted")
	}
	if e.Err() != nil || e.Grammar().Start().Len() != 0 {
		return fmt.Errorf("rejected tokens changed the engine state")
	}
	return nil
}

func sameTokens(got []any, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: expansion has %d tokens, input has %d", grammar.ErrConsistency, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: expansion differs at token %d", grammar.ErrConsistency, i)
		}
	}
	return nil
}
