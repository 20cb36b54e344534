package device

import (
	"stepcircuit/pkg/expr"
)

// Resistance is a purely algebraic two-port component: v1 - v0 = -R*i1.
type Resistance struct {
	Base
	R float64
}

// NewResistance builds a resistor of resistance r ohms with two ports.
func NewResistance(name string, r float64) *Resistance {
	p0, p1 := NewPort(name+"_p0"), NewPort(name+"_p1")
	return &Resistance{
		Base: NewBase(name, p0, p1),
		R:    r,
	}
}

func (r *Resistance) MinDerivativeOrder() int { return 0 }

func (r *Resistance) Initialize(d, n int, dt float64) {
	r.InitBase(d, n, dt)
}

func (r *Resistance) Relations(t int) []expr.Expr {
	ports := r.Ports()
	p0, p1 := ports[0], ports[1]

	v0 := expr.Sym(p0.V.Sym(0))
	v1 := expr.Sym(p1.V.Sym(0))
	i0 := expr.Sym(p0.I.Sym(0))
	i1 := expr.Sym(p1.I.Sym(0))

	rel := []expr.Expr{
		expr.Add(i0, i1),
		expr.Add(expr.Sub(v1, v0), expr.Mul(expr.C(r.R), i1)),
	}
	rel = append(rel, p0.I.HistoryRelations(t)...)
	rel = append(rel, p0.V.HistoryRelations(t)...)
	rel = append(rel, p1.I.HistoryRelations(t)...)
	rel = append(rel, p1.V.HistoryRelations(t)...)
	return rel
}
