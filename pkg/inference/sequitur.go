/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sequitur.go
Description: Sequitur induction engine. Tokens are pushed one at a time into the
start rule, then the digram uniqueness and rule utility invariants are restored
before the next token is accepted.
*/

package inference

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/sirupsen/logrus"
)

// Engine incrementally builds a grammar with the Sequitur algorithm.
//
// An Engine has a single writer: it must not be used from several goroutines.
type Engine struct {
	grammar  *grammar.Grammar
	config   *Config
	logger   logrus.FieldLogger
	recorder Recorder
	runID    string
	stats    Stats
	err      error // sticky consistency failure

	// candidates for the next restore pass, fed from the grammar journals
	pendingDigrams map[grammar.DigramKey]struct{}
	pendingRules   map[grammar.RuleID]struct{}
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig sets the engine configuration
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.config = cfg
		}
	}
}

// WithLogger sets the logger used for restore traces and failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// NewEngine creates an engine over an empty grammar.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		grammar:  grammar.New(),
		config:   DefaultConfig(),
		logger:   discardLogger(),
		recorder: nopRecorder{},
		runID:    uuid.New().String(),

		pendingDigrams: make(map[grammar.DigramKey]struct{}),
		pendingRules:   make(map[grammar.RuleID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("run_id", e.runID)
	return e
}

// Grammar returns the grammar under construction. It satisfies both
// invariants whenever Push has returned.
func (e *Engine) Grammar() *grammar.Grammar {
	return e.grammar
}

// RunID returns the identifier of this induction run
func (e *Engine) RunID() string {
	return e.runID
}

// Stats returns the counters of the run so far
func (e *Engine) Stats() Stats {
	return e.stats
}

// Err returns the consistency failure that stopped the engine, if any.
func (e *Engine) Err() error {
	return e.err
}

// Push ingests one token and restores the grammar invariants.
//
// An invalid token is rejected without touching the grammar. A consistency
// failure stops the engine: every later call returns the same error.
func (e *Engine) Push(token any) error {
	if e.err != nil {
		return e.err
	}
	if err := grammar.ValidToken(token); err != nil {
		return err
	}
	if err := e.grammar.AppendToken(token); err != nil {
		return err
	}
	e.record(EventToken)

	if err := e.restore(); err != nil {
		return e.fail(err)
	}
	if e.config.Audit {
		if err := e.grammar.CheckInvariants(); err != nil {
			return e.fail(err)
		}
	}
	e.recorder.ObserveGrammar(e.grammar.Len(), e.grammar.SymbolCount())
	return nil
}

// fail poisons the engine with a consistency failure
func (e *Engine) fail(err error) error {
	var ce *grammar.ConsistencyError
	if !errors.As(err, &ce) {
		ce = grammar.NewConsistencyError(e.grammar, "Push", grammar.ErrConsistency, "%v", err)
	}
	e.err = ce
	e.record(EventFailure)
	e.logger.WithFields(logrus.Fields{
		"op":     ce.Op,
		"tokens": e.stats.Tokens,
		"rules":  e.grammar.Len(),
	}).Error(ce.Err.Error())
	return ce
}

func (e *Engine) record(ev Event) {
	e.stats.count(ev)
	e.recorder.Record(ev)
}
