/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Entry point of grammar inference. Defines the engine configuration,
the metrics recorder hook and the statistics reported after induction.
*/

package inference

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Config holds the configuration of an induction engine.
// Can be loaded from CLI flags, config files, or environment variables.
type Config struct {
	// Audit runs a full consistency and invariant check after every token.
	Audit bool `json:"audit" mapstructure:"audit"`

	// MaxRestorePasses bounds the restore loop of a single token.
	// Zero picks a bound from the current grammar size.
	MaxRestorePasses int `json:"max_restore_passes" mapstructure:"max_restore_passes"`
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() *Config {
	return &Config{
		Audit:            false,
		MaxRestorePasses: 0,
	}
}

// Validate checks the Config for invalid values.
func (c *Config) Validate() error {
	if c.MaxRestorePasses < 0 {
		return fmt.Errorf("max_restore_passes must not be negative")
	}
	return nil
}

// passLimit returns the restore pass guard for a grammar of the given size.
func (c *Config) passLimit(symbols int) int {
	if c.MaxRestorePasses > 0 {
		return c.MaxRestorePasses
	}
	return 8*symbols + 64
}

// Event names a step of the induction, as seen by a Recorder.
type Event string

const (
	EventToken       Event = "token"
	EventRuleCreated Event = "rule_created"
	EventRuleReused  Event = "rule_reused"
	EventRuleMerged  Event = "rule_merged"
	EventRuleInlined Event = "rule_inlined"
	EventRuleDropped Event = "rule_dropped"
	EventRestorePass Event = "restore_pass"
	EventFailure     Event = "consistency_failure"
)

// Recorder receives induction events, typically to export them as metrics.
type Recorder interface {
	Record(ev Event)
	ObserveGrammar(rules, symbols int)
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}
func (nopRecorder) ObserveGrammar(int, int) {}

// Stats summarises the work done by an engine
type Stats struct {
	Tokens        int `json:"tokens"`
	RulesCreated  int `json:"rules_created"`
	RulesReused   int `json:"rules_reused"`
	RulesMerged   int `json:"rules_merged"`
	RulesInlined  int `json:"rules_inlined"`
	RulesDropped  int `json:"rules_dropped"`
	RestorePasses int `json:"restore_passes"`
}

// Counters returns the counters keyed by their JSON names
func (s Stats) Counters() map[string]int {
	return map[string]int{
		"tokens":         s.Tokens,
		"rules_created":  s.RulesCreated,
		"rules_reused":   s.RulesReused,
		"rules_merged":   s.RulesMerged,
		"rules_inlined":  s.RulesInlined,
		"rules_dropped":  s.RulesDropped,
		"restore_passes": s.RestorePasses,
	}
}

// count updates the counter matching ev
func (s *Stats) count(ev Event) {
	switch ev {
	case EventToken:
		s.Tokens++
	case EventRuleCreated:
		s.RulesCreated++
	case EventRuleReused:
		s.RulesReused++
	case EventRuleMerged:
		s.RulesMerged++
	case EventRuleInlined:
		s.RulesInlined++
	case EventRuleDropped:
		s.RulesDropped++
	case EventRestorePass:
		s.RestorePasses++
	}
}

// discardLogger is the default engine logger
func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
