package device

import (
	"stepcircuit/pkg/expr"
)

// CurrentSource is an ideal two-port current source. Convention: positive
// current enters port 0 and leaves port 1.
type CurrentSource struct {
	Base
	I float64
}

// NewCurrentSource builds an ideal current source of magnitude i amps.
func NewCurrentSource(name string, i float64) *CurrentSource {
	p0, p1 := NewPort(name+"_p0"), NewPort(name+"_p1")
	return &CurrentSource{
		Base: NewBase(name, p0, p1),
		I:    i,
	}
}

func (s *CurrentSource) MinDerivativeOrder() int { return 0 }

func (s *CurrentSource) Initialize(d, n int, dt float64) {
	s.InitBase(d, n, dt)
}

func (s *CurrentSource) Relations(t int) []expr.Expr {
	ports := s.Ports()
	p0, p1 := ports[0], ports[1]

	i0 := expr.Sym(p0.I.Sym(0))
	i1 := expr.Sym(p1.I.Sym(0))

	rel := []expr.Expr{
		expr.Add(i0, i1),
		expr.Sub(i0, expr.C(s.I)),
	}
	rel = append(rel, p0.I.HistoryRelations(t)...)
	rel = append(rel, p0.V.HistoryRelations(t)...)
	rel = append(rel, p1.I.HistoryRelations(t)...)
	rel = append(rel, p1.V.HistoryRelations(t)...)
	return rel
}
