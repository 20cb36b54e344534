// Package circuit implements Electrical_link and Simulation: the
// derivative-order negotiation, initialization, stepping loop, relation
// aggregation, solver invocation and result commit described for the core.
// It plays the orchestration role the teacher's Circuit/Analysis pair plays
// for MNA stamping, generalized from node/branch indexing to the symbol-
// indexed algebraic system the components assemble.
package circuit

import (
	"fmt"
	"math"

	"stepcircuit/pkg/device"
	"stepcircuit/pkg/expr"
	"stepcircuit/pkg/simerr"
	"stepcircuit/pkg/solver"
	"stepcircuit/pkg/symbol"
	"stepcircuit/pkg/variable"
)

// tolerance on total_time being an integer multiple of dt.
const timeTolerance = 1e-4

// Simulation owns every node and link in a circuit and drives the
// time-stepped solve. Node and link order is insertion order; that order,
// plus the solver's unique-assignment contract, is what makes a run
// deterministic.
type Simulation struct {
	nodes      []device.Node
	links      []*Link
	derivOrder int
	dt         float64
	totalSteps int
	initDone   bool

	SolverConfig solver.Config
}

// New constructs an empty Simulation.
func New() *Simulation {
	return &Simulation{}
}

// AddNodes appends nodes and raises the simulation's negotiated derivative
// order to the max of every added node's MinDerivativeOrder.
func (s *Simulation) AddNodes(nodes ...device.Node) {
	for _, n := range nodes {
		s.nodes = append(s.nodes, n)
		if m := n.MinDerivativeOrder(); m > s.derivOrder {
			s.derivOrder = m
		}
	}
}

// AddLinks appends links.
func (s *Simulation) AddLinks(links ...*Link) {
	s.links = append(s.links, links...)
}

// DerivativeOrder returns the currently negotiated derivative order.
func (s *Simulation) DerivativeOrder() int { return s.derivOrder }

// Initialize fixes total_time_steps = n and initializes every node at the
// negotiated derivative order and step dt. Calling Run without first calling
// Initialize is a *simerr.ConfigurationError; Simulate calls Initialize
// itself when it has not been called yet.
func (s *Simulation) Initialize(dt float64, n int) error {
	if n < s.derivOrder {
		return &simerr.ConfigurationError{Msg: fmt.Sprintf(
			"total_time_steps %d is smaller than the negotiated derivative order %d", n, s.derivOrder)}
	}
	s.dt = dt
	s.totalSteps = n
	for _, node := range s.nodes {
		node.Initialize(s.derivOrder, n, dt)
	}
	s.initDone = true
	return nil
}

// Simulate requires total_time to be an integer multiple of dt within
// timeTolerance, computes N = floor(total_time/dt), initializes with dt and N
// (unless Initialize was already called to seed history first), and solves
// every step from t = derivative_order through total_time_steps-1. When
// Initialize was already called, the dt and step count given to it are kept,
// and dt and total_time here are only checked for being a multiple.
func (s *Simulation) Simulate(dt, totalTime float64) error {
	steps := totalTime / dt
	nearest := math.Round(steps)
	if math.Abs(steps-nearest) > timeTolerance {
		nearestTime := nearest * dt
		return &simerr.ConfigurationError{Msg: fmt.Sprintf(
			"total_time %g is not a multiple of dt %g within tolerance %g; nearest valid total_time is %g",
			totalTime, dt, timeTolerance, nearestTime)}
	}
	n := int(math.Floor(totalTime / dt))

	if !s.initDone {
		if err := s.Initialize(dt, n); err != nil {
			return err
		}
	}

	for t := s.derivOrder; t < s.totalSteps; t++ {
		if err := s.solve(t); err != nil {
			return err
		}
	}
	return nil
}

// Run steps a simulation that was already set up with Initialize (the
// pattern used to seed a variable's history before stepping begins, e.g.
// overriding a capacitor's initial charge). Calling Run before Initialize
// is a *simerr.ConfigurationError, since there is no dt or step count to
// run with.
func (s *Simulation) Run() error {
	if !s.initDone {
		return &simerr.ConfigurationError{Msg: "run called before initialize"}
	}
	for t := s.derivOrder; t < s.totalSteps; t++ {
		if err := s.solve(t); err != nil {
			return err
		}
	}
	return nil
}

// solve assembles step t's relation and symbol set, invokes the solver, and
// commits the result into every variable's history.
func (s *Simulation) solve(t int) error {
	if !s.initDone {
		return &simerr.ConfigurationError{Msg: "simulate called before initialize"}
	}

	var relations []expr.Expr
	var vars []*variable.Variable

	for _, node := range s.nodes {
		relations = append(relations, node.Relations(t)...)
		vars = append(vars, node.Variables()...)
	}
	for _, link := range s.links {
		relations = append(relations, link.Relations(t)...)
	}

	var symbols []symbol.Symbol
	for _, v := range vars {
		symbols = append(symbols, v.Symbols()...)
	}

	guess := initialGuess(vars, t)

	result, err := solver.Solve(relations, symbols, guess, s.SolverConfig)
	if err != nil {
		return err
	}

	for _, v := range vars {
		v.Commit(t, result[v.Sym(0)])
	}
	return nil
}

// initialGuess warm-starts Newton's method from each variable's most
// recently committed value (symbols[-k] starts from values[t-k]; the
// current-step symbol starts from the previous step's value, or 0 before
// any step has committed).
func initialGuess(vars []*variable.Variable, t int) map[symbol.Symbol]float64 {
	guess := make(map[symbol.Symbol]float64)
	for _, v := range vars {
		d := v.DerivativeOrder()
		values := v.Values()
		for k := 0; k <= d; k++ {
			src := t - k
			if k == 0 {
				src = t - 1
			}
			if src < 0 {
				src = 0
			}
			if src >= len(values) {
				src = len(values) - 1
			}
			guess[v.Sym(-k)] = values[src]
		}
	}
	return guess
}
