package device

import (
	"stepcircuit/pkg/expr"
)

// Ground is a single-port reference node pinning its port voltage to zero.
type Ground struct {
	Base
}

// NewGround builds a ground reference with a single port.
func NewGround(name string) *Ground {
	p0 := NewPort(name + "_p0")
	return &Ground{Base: NewBase(name, p0)}
}

func (g *Ground) MinDerivativeOrder() int { return 0 }

func (g *Ground) Initialize(d, n int, dt float64) {
	g.InitBase(d, n, dt)
}

func (g *Ground) Relations(t int) []expr.Expr {
	p0 := g.Ports()[0]

	rel := []expr.Expr{
		expr.Sym(p0.V.Sym(0)),
	}
	rel = append(rel, p0.I.HistoryRelations(t)...)
	rel = append(rel, p0.V.HistoryRelations(t)...)
	return rel
}
