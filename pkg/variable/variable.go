// Package variable implements the Variable contract from the data model: a
// named scalar time series plus a sliding window of algebraic symbols
// representing its value at the current step and a bounded number of
// lagged steps.
package variable

import (
	"fmt"
	"sync/atomic"

	"stepcircuit/pkg/expr"
	"stepcircuit/pkg/simerr"
	"stepcircuit/pkg/symbol"
)

// nextID is the process-wide monotonic counter backing Variable ids. It is
// deliberately global rather than threaded through a per-Simulation Namer:
// components are constructed with New before they are ever attached to a
// Simulation (construction is "symbolic only", see the lifecycle note), so
// there is no Simulation instance yet to own the counter at the point a
// Variable reserves its id. A global, never-reused counter still satisfies
// the uniqueness invariant for every Simulation built in the process; the
// only cost is that symbol numbering isn't reproducible run-to-run when
// multiple independent Simulations share a process, which is not something
// any tested property depends on.
var nextID uint64

// Variable is a named scalar with bounded history.
type Variable struct {
	Name            string
	ID              uint64
	derivativeOrder int
	symbols         []symbol.Symbol // symbols[k] is the symbol at lag k: t-k
	values          []float64
}

// New reserves an id for a variable named name. The variable carries no
// history until Initialize is called.
func New(name string) *Variable {
	id := atomic.AddUint64(&nextID, 1) - 1
	return &Variable{Name: name, ID: id}
}

// Initialize fixes the derivative order and allocates the value history and
// the symbol window. If initValue is non-zero, values[0:d] are seeded with
// it (the pre-stepping history a caller would otherwise overwrite through
// SeedHistory).
func (v *Variable) Initialize(d, n int, initValue float64) {
	v.derivativeOrder = d
	v.values = make([]float64, n)
	if initValue != 0 {
		for i := 0; i < d; i++ {
			v.values[i] = initValue
		}
	}
	v.symbols = make([]symbol.Symbol, d+1)
	for k := 0; k <= d; k++ {
		v.symbols[k] = symbol.New(fmt.Sprintf("%s_%d_%d", v.Name, v.ID, k))
	}
}

// DerivativeOrder returns d.
func (v *Variable) DerivativeOrder() int { return v.derivativeOrder }

// Sym returns the symbol at lag k, where k <= 0 (k=0 is the current step,
// k=-1 is one step back, ... k=-d is d steps back), matching the negative
// indexing convention from the spec.
func (v *Variable) Sym(k int) symbol.Symbol {
	if k > 0 || -k > v.derivativeOrder {
		panic(fmt.Sprintf("variable %s: lag %d out of range for derivative order %d", v.Name, k, v.derivativeOrder))
	}
	return v.symbols[-k]
}

// Symbols returns all d+1 symbols, current step first.
func (v *Variable) Symbols() []symbol.Symbol {
	out := make([]symbol.Symbol, len(v.symbols))
	copy(out, v.symbols)
	return out
}

// Values returns the full committed history (length N once the simulation
// has run to completion; entries past the most recently committed step are
// still zero).
func (v *Variable) Values() []float64 { return v.values }

// SeedHistory overwrites values[0:d) before stepping begins, the documented
// way to override a component's initial condition (e.g. pre-loading a
// capacitor's charge) without reaching into the slice directly.
func (v *Variable) SeedHistory(values []float64) {
	n := v.derivativeOrder
	if len(values) < n {
		n = len(values)
	}
	copy(v.values[:n], values[:n])
}

// HistoryRelations emits one equation per historical lag k in [1, d]:
// symbols[-k] - values[t-k] = 0. These pin the lagged symbols to already
// committed numeric history, which is what turns the otherwise
// under-determined current-step relations into an exactly determined
// system. Requires t >= d.
func (v *Variable) HistoryRelations(t int) []expr.Expr {
	if t < v.derivativeOrder {
		panic(&simerr.UsageError{Msg: fmt.Sprintf(
			"variable %s: history_relations(%d) requires t >= derivative order %d", v.Name, t, v.derivativeOrder)})
	}
	rel := make([]expr.Expr, 0, v.derivativeOrder)
	for k := 1; k <= v.derivativeOrder; k++ {
		rel = append(rel, expr.Sub(expr.Sym(v.Sym(-k)), expr.C(v.values[t-k])))
	}
	return rel
}

// Commit writes the step-t value. Called exactly once per step, after the
// solver has produced a value for symbols[0].
func (v *Variable) Commit(t int, value float64) {
	v.values[t] = value
}
