package device

import (
	"stepcircuit/pkg/expr"
)

// Capacitor is a two-port component relating current to the rate of change
// of charge via backward Euler: i = dQ/dt ≈ (q0 - q_prev) / dt.
type Capacitor struct {
	Base
	C float64
}

// NewCapacitor builds a capacitor of capacitance c farads, with two ports
// and an optional initial charge q0.
func NewCapacitor(name string, c, q0 float64) *Capacitor {
	p0, p1 := NewPort(name+"_p0"), NewPort(name+"_p1")
	cp := &Capacitor{
		Base: NewBase(name, p0, p1),
		C:    c,
	}
	cp.Var("q", q0)
	return cp
}

func (c *Capacitor) MinDerivativeOrder() int { return 1 }

func (c *Capacitor) Initialize(d, n int, dt float64) {
	c.InitBase(d, n, dt)
}

func (c *Capacitor) Relations(t int) []expr.Expr {
	ports := c.Ports()
	p0, p1 := ports[0], ports[1]
	q := c.Get("q")

	i0 := expr.Sym(p0.I.Sym(0))
	i1 := expr.Sym(p1.I.Sym(0))
	q0 := expr.Sym(q.Sym(0))
	qPrev := expr.Sym(q.Sym(-1))
	v0 := expr.Sym(p0.V.Sym(0))
	v1 := expr.Sym(p1.V.Sym(0))

	rel := []expr.Expr{
		// backward Euler on I = dQ/dt
		expr.Sub(i0, expr.Div(expr.Sub(q0, qPrev), expr.C(c.Dt))),
		// KCL across the device
		expr.Add(i0, i1),
		// constitutive relation Q = C*V
		expr.Sub(q0, expr.Mul(expr.C(c.C), expr.Sub(v1, v0))),
	}
	rel = append(rel, q.HistoryRelations(t)...)
	rel = append(rel, p0.I.HistoryRelations(t)...)
	rel = append(rel, p0.V.HistoryRelations(t)...)
	rel = append(rel, p1.I.HistoryRelations(t)...)
	rel = append(rel, p1.V.HistoryRelations(t)...)
	return rel
}
