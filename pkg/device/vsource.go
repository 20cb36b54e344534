package device

import (
	"stepcircuit/pkg/expr"
)

// VoltageSource is an ideal two-port voltage source: (v1 - v0) - V = 0.
// Standardized on two ports per the two-terminal convention every other
// component uses.
type VoltageSource struct {
	Base
	V float64
}

// NewVoltageSource builds an ideal voltage source of magnitude v volts.
func NewVoltageSource(name string, v float64) *VoltageSource {
	p0, p1 := NewPort(name+"_p0"), NewPort(name+"_p1")
	return &VoltageSource{
		Base: NewBase(name, p0, p1),
		V:    v,
	}
}

func (s *VoltageSource) MinDerivativeOrder() int { return 0 }

func (s *VoltageSource) Initialize(d, n int, dt float64) {
	s.InitBase(d, n, dt)
}

func (s *VoltageSource) Relations(t int) []expr.Expr {
	ports := s.Ports()
	p0, p1 := ports[0], ports[1]

	v0 := expr.Sym(p0.V.Sym(0))
	v1 := expr.Sym(p1.V.Sym(0))
	i0 := expr.Sym(p0.I.Sym(0))
	i1 := expr.Sym(p1.I.Sym(0))

	rel := []expr.Expr{
		expr.Sub(expr.Sub(v1, v0), expr.C(s.V)),
		expr.Add(i0, i1),
	}
	rel = append(rel, p0.I.HistoryRelations(t)...)
	rel = append(rel, p0.V.HistoryRelations(t)...)
	rel = append(rel, p1.I.HistoryRelations(t)...)
	rel = append(rel, p1.V.HistoryRelations(t)...)
	return rel
}
