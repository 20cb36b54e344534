// Package device defines the Node contract every circuit component
// implements (the package is named device, after the teacher's Device
// interface, even though the spec calls the concept Node: the two play the
// same role, an interface plus an embeddable base struct that most concrete
// components build on) and the concrete component set: Capacitor,
// Resistance, CurrentSource, VoltageSource, Ground and Battery.
package device

import (
	"fmt"

	"stepcircuit/pkg/expr"
	"stepcircuit/pkg/variable"
)

// Port is one electrical terminal of a component: a current Variable and a
// voltage Variable, always present as a pair.
type Port struct {
	Name string
	I    *variable.Variable
	V    *variable.Variable
}

// NewPort allocates a port's two variables. Initialize must still be called
// (by the owning Node's Initialize) before the port is usable.
func NewPort(name string) *Port {
	return &Port{
		Name: name,
		I:    variable.New(name + "_i"),
		V:    variable.New(name + "_v"),
	}
}

// Node is the contract every circuit component satisfies. A Node is built
// in two phases: construction wires up names and parameters with no
// Variables allocated yet (so links can be formed before anything is
// numeric), and Initialize performs the allocation once the simulation has
// negotiated a global derivative order.
type Node interface {
	// MinDerivativeOrder returns the smallest derivative order this node
	// can run at. A resistor can run at order 0; a capacitor needs at
	// least order 1 to form a backward-difference relation for its
	// current.
	MinDerivativeOrder() int

	// Initialize allocates every Variable owned by this node (its own
	// state plus its ports') at derivative order d and history length n,
	// and is given dt, the fixed simulation step.
	Initialize(d, n int, dt float64)

	// Relations returns this node's constitutive equations at step t,
	// each implicitly equated to zero, followed by the history relations
	// of every Variable the node owns. Called after Initialize.
	Relations(t int) []expr.Expr

	// Variables returns every Variable this node owns, used by the
	// simulation driver to collect the step's symbols and to commit
	// solved values back.
	Variables() []*variable.Variable

	// Ports returns this node's ports, used by Electrical_link to wire
	// Kirchhoff constraints between nodes.
	Ports() []*Port
}

// Base is embedded by every concrete Node. It tracks the node's own named
// state variables (separate from port variables) in both a map, for lookup
// by name, and an ordered slice, so Variables() has a deterministic order
// regardless of map iteration.
type Base struct {
	Name       string
	ports      []*Port
	varNames   []string
	vars       map[string]*variable.Variable
	initValues map[string]float64
	D          int
	Dt         float64
}

// NewBase constructs a Base with the given name and ports. Ports are
// expected to already exist (via NewPort) at construction time.
func NewBase(name string, ports ...*Port) Base {
	return Base{
		Name:       name,
		ports:      ports,
		vars:       make(map[string]*variable.Variable),
		initValues: make(map[string]float64),
	}
}

// Var declares a named state variable owned by this node, with an optional
// initial value (0 if the node has no preference). It must be called
// during construction, before Initialize.
func (b *Base) Var(name string, initValue float64) *variable.Variable {
	v := variable.New(fmt.Sprintf("%s_%s", b.Name, name))
	b.varNames = append(b.varNames, name)
	b.vars[name] = v
	b.initValues[name] = initValue
	return v
}

// Get looks up a previously declared state variable by name.
func (b *Base) Get(name string) *variable.Variable {
	return b.vars[name]
}

// InitBase initializes every declared state variable and every port
// variable at derivative order d and history length n, and records dt. Most
// concrete nodes call this as the first line of their Initialize method.
func (b *Base) InitBase(d, n int, dt float64) {
	b.D = d
	b.Dt = dt
	for _, name := range b.varNames {
		b.vars[name].Initialize(d, n, b.initValues[name])
	}
	for _, p := range b.ports {
		p.I.Initialize(d, n, 0)
		p.V.Initialize(d, n, 0)
	}
}

// Variables returns the node's own state variables followed by its ports'
// i and v variables, in declaration order.
func (b *Base) Variables() []*variable.Variable {
	out := make([]*variable.Variable, 0, len(b.varNames)+2*len(b.ports))
	for _, name := range b.varNames {
		out = append(out, b.vars[name])
	}
	for _, p := range b.ports {
		out = append(out, p.I, p.V)
	}
	return out
}

// Ports returns the node's ports.
func (b *Base) Ports() []*Port { return b.ports }
