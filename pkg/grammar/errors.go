/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy of the grammar package. Invalid input errors are caller
mistakes that leave the grammar untouched; consistency errors reveal an engine bug
and carry a dump of the grammar for diagnosis.
*/

package grammar

import (
	"errors"
	"fmt"
)

// Invalid input errors.
var (
	// ErrInvalidToken indicates a nil or non-comparable token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnboundReference indicates a non-terminal whose handle is not allocated.
	ErrUnboundReference = errors.New("unbound rule reference")

	// ErrNotSingleDigram indicates a digram rule whose right-hand side is not two symbols.
	ErrNotSingleDigram = errors.New("rule is not a single digram")

	// ErrStartRule indicates an operation that is forbidden on the start rule.
	ErrStartRule = errors.New("operation not allowed on start rule")
)

// Consistency errors.
var (
	// ErrConsistency is the parent of every consistency violation.
	ErrConsistency = errors.New("grammar consistency violation")

	// ErrForeignRule indicates a reference to a rule the grammar does not own.
	ErrForeignRule = errors.New("reference to rule not owned by grammar")

	// ErrRefCountMismatch indicates a reference count differing from the actual count.
	ErrRefCountMismatch = errors.New("reference count mismatch")

	// ErrDanglingReference indicates a removed rule that is still referenced.
	ErrDanglingReference = errors.New("removed rule still referenced")

	// ErrIndexMismatch indicates a digram, reference or symbol index out of
	// step with the right-hand sides.
	ErrIndexMismatch = errors.New("index out of date")

	// ErrRestoreDiverged indicates the restore loop exceeded its pass guard.
	ErrRestoreDiverged = errors.New("invariant restoration did not converge")
)

// ConsistencyError reports a broken grammar invariant together with the state
// of the grammar at the time it was detected.
type ConsistencyError struct {
	Op     string // operation that detected the violation
	Detail string
	Dump   string // grammar dump, see Grammar.String
	Err    error  // one of the consistency sentinels
}

func (e *ConsistencyError) Error() string {
	msg := fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
	if e.Dump != "" {
		msg += "\n" + e.Dump
	}
	return msg
}

// Unwrap exposes both the specific sentinel and ErrConsistency.
func (e *ConsistencyError) Unwrap() []error {
	return []error{e.Err, ErrConsistency}
}

// NewConsistencyError builds a ConsistencyError holding a dump of g.
func NewConsistencyError(g *Grammar, op string, err error, format string, args ...any) *ConsistencyError {
	ce := &ConsistencyError{
		Op:     op,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
	if g != nil {
		ce.Dump = g.String()
	}
	return ce
}
