package mcts

import "github.com/pkg/errors"

// ConfigurationError wraps a construction-time failure: invalid FEN (or
// whatever the adapter's position-parsing equivalent is), a negative
// budget, or a model load failure. It is fatal to the search being built.
// Built on github.com/pkg/errors so the original cause's stack is retained,
// matching the teacher's agogo.go Load.
type ConfigurationError struct {
	cause error
}

func (e *ConfigurationError) Error() string {
	return "mcts: configuration error: " + e.cause.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

// NewConfigurationError wraps cause as a ConfigurationError, attaching a
// stack trace at the call site.
func NewConfigurationError(cause error) error {
	return &ConfigurationError{cause: errors.WithStack(cause)}
}

// InvariantViolation marks an internal bug — select_best_child called on a
// childless node, expand called with no untried moves, and similar states
// that a correct caller never produces. Per spec §7 this is always fatal and
// is raised with panic, never returned as an error.
type InvariantViolation struct {
	Msg string
}

func (e InvariantViolation) Error() string { return "mcts: invariant violation: " + e.Msg }

func panicInvariant(msg string) {
	panic(InvariantViolation{Msg: msg})
}
