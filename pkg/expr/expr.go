// Package expr is the equation-assembly arena described in the design
// notes: component relations are built as small algebraic expression trees
// over symbol.Symbol leaves, rather than pre-substituting numeric history
// values by hand. A relation is an Expr that the solver drives to zero;
// pinning a lagged symbol to its committed history value (see
// variable.Variable.HistoryRelations) folds into the same representation as
// any other relation, and the Newton solver differentiates through it.
package expr

import (
	"fmt"
	"math"

	"stepcircuit/pkg/symbol"
)

// Expr is a node in an algebraic expression tree.
type Expr interface {
	// Eval evaluates the expression given a binding for every symbol it
	// references.
	Eval(env map[symbol.Symbol]float64) float64
	// Deriv returns the symbolic partial derivative with respect to wrt.
	Deriv(wrt symbol.Symbol) Expr
	String() string
}

// C builds a constant expression.
func C(v float64) Expr { return constant(v) }

// Sym builds a reference to a single symbol.
func Sym(s symbol.Symbol) Expr { return ref{s} }

// Add sums zero or more expressions; Add() is the additive identity (0).
func Add(terms ...Expr) Expr {
	out := Expr(constant(0))
	for _, t := range terms {
		out = binary{'+', out, t}
	}
	return out
}

// Sub returns a - b.
func Sub(a, b Expr) Expr { return binary{'-', a, b} }

// Mul multiplies zero or more expressions; Mul() is the multiplicative
// identity (1).
func Mul(factors ...Expr) Expr {
	out := Expr(constant(1))
	for _, f := range factors {
		out = binary{'*', out, f}
	}
	return out
}

// Div returns a / b.
func Div(a, b Expr) Expr { return binary{'/', a, b} }

// Neg returns -a.
func Neg(a Expr) Expr { return binary{'-', constant(0), a} }

// Pow returns a raised to a constant power n.
func Pow(a Expr, n float64) Expr { return pow{a, n} }

// Abs returns |a|. Used where a constant, possibly fractional, power needs a
// magnitude rather than a signed value (Go's math.Pow is undefined for a
// negative base and a non-integer exponent).
func Abs(a Expr) Expr { return absVal{a} }

type constant float64

func (c constant) Eval(map[symbol.Symbol]float64) float64 { return float64(c) }
func (c constant) Deriv(symbol.Symbol) Expr                { return constant(0) }
func (c constant) String() string                          { return fmt.Sprintf("%g", float64(c)) }

type ref struct{ sym symbol.Symbol }

func (r ref) Eval(env map[symbol.Symbol]float64) float64 { return env[r.sym] }
func (r ref) Deriv(wrt symbol.Symbol) Expr {
	if r.sym == wrt {
		return constant(1)
	}
	return constant(0)
}
func (r ref) String() string { return r.sym.Name }

type binary struct {
	op   byte
	a, b Expr
}

func (n binary) Eval(env map[symbol.Symbol]float64) float64 {
	a, b := n.a.Eval(env), n.b.Eval(env)
	switch n.op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	}
	panic("expr: unknown binary op " + string(n.op))
}

func (n binary) Deriv(wrt symbol.Symbol) Expr {
	switch n.op {
	case '+':
		return binary{'+', n.a.Deriv(wrt), n.b.Deriv(wrt)}
	case '-':
		return binary{'-', n.a.Deriv(wrt), n.b.Deriv(wrt)}
	case '*':
		// product rule: a'b + ab'
		return binary{'+',
			binary{'*', n.a.Deriv(wrt), n.b},
			binary{'*', n.a, n.b.Deriv(wrt)},
		}
	case '/':
		// quotient rule: (a'b - ab') / b^2
		num := binary{'-',
			binary{'*', n.a.Deriv(wrt), n.b},
			binary{'*', n.a, n.b.Deriv(wrt)},
		}
		return binary{'/', num, pow{n.b, 2}}
	}
	panic("expr: unknown binary op " + string(n.op))
}

func (n binary) String() string {
	return fmt.Sprintf("(%s %c %s)", n.a.String(), n.op, n.b.String())
}

type pow struct {
	a Expr
	n float64
}

func (p pow) Eval(env map[symbol.Symbol]float64) float64 {
	return math.Pow(p.a.Eval(env), p.n)
}

func (p pow) Deriv(wrt symbol.Symbol) Expr {
	// d/dx a^n = n * a^(n-1) * da/dx
	return binary{'*',
		binary{'*', constant(p.n), pow{p.a, p.n - 1}},
		p.a.Deriv(wrt),
	}
}

func (p pow) String() string {
	return fmt.Sprintf("(%s^%g)", p.a.String(), p.n)
}

type absVal struct{ a Expr }

func (v absVal) Eval(env map[symbol.Symbol]float64) float64 {
	return math.Abs(v.a.Eval(env))
}

func (v absVal) Deriv(wrt symbol.Symbol) Expr {
	// d/dx |a| = sign(a) * da/dx, sign(0) taken as 0 (a measure-zero case
	// that never arises at a converged solution with nonzero current).
	return binary{'*', sign{v.a}, v.a.Deriv(wrt)}
}

func (v absVal) String() string { return fmt.Sprintf("|%s|", v.a.String()) }

type sign struct{ a Expr }

func (s sign) Eval(env map[symbol.Symbol]float64) float64 {
	x := s.a.Eval(env)
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func (s sign) Deriv(symbol.Symbol) Expr { return constant(0) }
func (s sign) String() string           { return fmt.Sprintf("sign(%s)", s.a.String()) }

// Relations is a slice of Expr, each implicitly equated to zero; it is the
// unit of currency passed between Node.Relations, Link.Relations and the
// solver.
type Relations = []Expr
