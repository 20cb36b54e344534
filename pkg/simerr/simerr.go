// Package simerr collects the error kinds a Simulation run can fail with,
// each carrying the context described in the design's error-handling policy:
// enough for a caller to fix the model and re-run.
package simerr

import (
	"fmt"
	"strings"

	"stepcircuit/pkg/expr"
	"stepcircuit/pkg/symbol"
)

// ConfigurationError reports a malformed simulation setup: a total_time that
// isn't a multiple of dt, a step count smaller than the negotiated derivative
// order, or Run called before Initialize. Node Initialize methods do not check
// the derivative order they are given against their MinDerivativeOrder, so
// that case raises no ConfigurationError.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Msg }

// UsageError reports a programming mistake by the caller, such as asking a
// Variable for history relations before it has that much history.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return "usage error: " + e.Msg }

// SolverFailure reports that the algebraic solver did not return exactly one
// value per requested symbol (or never converged). It carries the full
// symbol list, relation list and whatever partial result existed so the
// caller can diagnose the under/over-determined system.
type SolverFailure struct {
	Reason    string
	Symbols   []symbol.Symbol
	Relations []expr.Expr
	Partial   map[symbol.Symbol]float64
}

func (e *SolverFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "solver failure: %s\n", e.Reason)

	fmt.Fprintf(&b, "symbols (%d):\n", len(e.Symbols))
	for _, s := range e.Symbols {
		fmt.Fprintf(&b, "  %s\n", s)
	}

	fmt.Fprintf(&b, "relations (%d):\n", len(e.Relations))
	for _, r := range e.Relations {
		fmt.Fprintf(&b, "  %s = 0\n", r.String())
	}

	fmt.Fprintf(&b, "partial result (%d of %d determined):\n", len(e.Partial), len(e.Symbols))
	for s, v := range e.Partial {
		fmt.Fprintf(&b, "  %s = %g\n", s, v)
	}

	return b.String()
}
