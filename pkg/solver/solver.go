// Package solver drives the per-step Newton-Raphson iteration the core
// relies on to turn a step's relation set into a numeric assignment. It
// plays the role the teacher's pkg/analysis Execute/doNRiter loop plays for
// MNA stamping, generalized from node/branch-indexed matrices to an
// arbitrary symbol-indexed system with an analytically differentiated
// Jacobian, since the battery's relations are nonlinear in current and
// state of charge and a pure linear solve is not sufficient.
package solver

import (
	"fmt"
	"math"

	"stepcircuit/pkg/expr"
	"stepcircuit/pkg/matrix"
	"stepcircuit/pkg/simerr"
	"stepcircuit/pkg/symbol"
)

// Config holds the Newton-Raphson convergence parameters. Defaults mirror
// the teacher's BaseAnalysis convergence defaults.
type Config struct {
	MaxIter int
	AbsTol  float64
	RelTol  float64
}

// DefaultConfig returns the convergence parameters used when a Config zero
// value is passed to Solve.
func DefaultConfig() Config {
	return Config{MaxIter: 100, AbsTol: 1e-12, RelTol: 1e-6}
}

func (c Config) orDefaults() Config {
	d := DefaultConfig()
	if c.MaxIter <= 0 {
		c.MaxIter = d.MaxIter
	}
	if c.AbsTol <= 0 {
		c.AbsTol = d.AbsTol
	}
	if c.RelTol <= 0 {
		c.RelTol = d.RelTol
	}
	return c
}

// Solve drives relations (each implicitly equated to zero) to a fixed point
// over symbols, starting from guess (entries missing from guess start at
// 0), and returns the resulting symbol -> value assignment.
//
// The system must be exactly determined: len(relations) must equal
// len(symbols). A mismatch, or failure to converge within cfg.MaxIter
// iterations, is reported as a *simerr.SolverFailure carrying the full
// symbol list, relation list and the best partial result found.
func Solve(relations []expr.Expr, symbols []symbol.Symbol, guess map[symbol.Symbol]float64, cfg Config) (map[symbol.Symbol]float64, error) {
	cfg = cfg.orDefaults()
	n := len(symbols)

	if len(relations) != n {
		return nil, &simerr.SolverFailure{
			Reason:    relationCountMismatch(len(relations), n),
			Symbols:   symbols,
			Relations: relations,
			Partial:   partialFrom(symbols, guess),
		}
	}

	index := make(map[symbol.Symbol]int, n)
	for i, s := range symbols {
		index[s] = i
	}

	x := make([]float64, n)
	for i, s := range symbols {
		x[i] = guess[s]
	}

	var jac matrix.JacobianMatrix = matrix.NewMatrix(n)
	defer jac.Destroy()

	for iter := 0; iter < cfg.MaxIter; iter++ {
		env := envOf(symbols, x)

		residual := make([]float64, n)
		for i, rel := range relations {
			residual[i] = rel.Eval(env)
		}

		jac.Clear()
		for i, rel := range relations {
			for j, s := range symbols {
				d := rel.Deriv(s).Eval(env)
				if d != 0 {
					jac.AddElement(i+1, j+1, d)
				}
			}
			jac.AddRHS(i+1, -residual[i])
		}

		if err := jac.Solve(); err != nil {
			return nil, &simerr.SolverFailure{
				Reason:    "linear solve failed during Newton iteration: " + err.Error(),
				Symbols:   symbols,
				Relations: relations,
				Partial:   resultFrom(symbols, x),
			}
		}

		delta := jac.Solution()
		next := make([]float64, n)
		for i := range x {
			next[i] = x[i] + delta[i+1]
		}

		if converged(x, next, cfg) {
			return resultFrom(symbols, next), nil
		}
		x = next
	}

	return nil, &simerr.SolverFailure{
		Reason:    "Newton-Raphson did not converge within max iterations",
		Symbols:   symbols,
		Relations: relations,
		Partial:   resultFrom(symbols, x),
	}
}

func converged(oldSol, newSol []float64, cfg Config) bool {
	for i := range oldSol {
		diff := math.Abs(newSol[i] - oldSol[i])
		if !(diff <= cfg.AbsTol || diff <= cfg.RelTol*math.Abs(newSol[i])) {
			return false
		}
	}
	return true
}

func envOf(symbols []symbol.Symbol, x []float64) map[symbol.Symbol]float64 {
	env := make(map[symbol.Symbol]float64, len(symbols))
	for i, s := range symbols {
		env[s] = x[i]
	}
	return env
}

func resultFrom(symbols []symbol.Symbol, x []float64) map[symbol.Symbol]float64 {
	return envOf(symbols, x)
}

func partialFrom(symbols []symbol.Symbol, guess map[symbol.Symbol]float64) map[symbol.Symbol]float64 {
	partial := make(map[symbol.Symbol]float64, len(guess))
	for _, s := range symbols {
		if v, ok := guess[s]; ok {
			partial[s] = v
		}
	}
	return partial
}

func relationCountMismatch(got, want int) string {
	if got < want {
		return fmt.Sprintf("under-determined system: %d relations for %d symbols", got, want)
	}
	return fmt.Sprintf("over-determined system: %d relations for %d symbols", got, want)
}
