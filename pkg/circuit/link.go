package circuit

import (
	"stepcircuit/pkg/device"
	"stepcircuit/pkg/expr"
)

// Link is an electrical (Kirchhoff) node: it holds non-owning references to
// the ports that meet at it and contributes equal-voltage and sum-of-
// current constraints. A link owns no variables of its own.
type Link struct {
	Name  string
	ports []*device.Port
}

// NewLink builds a link over an ordered list of ports. Order only matters
// for which port's voltage the others are equated to; the resulting
// constraint set is the same regardless.
func NewLink(name string, ports ...*device.Port) *Link {
	return &Link{Name: name, ports: ports}
}

// Relations returns, for step t: one equal-potential equation per port
// after the first, plus one sum-of-currents equation over all ports.
func (l *Link) Relations(t int) []expr.Expr {
	if len(l.ports) == 0 {
		return nil
	}
	rel := make([]expr.Expr, 0, len(l.ports))
	ref := expr.Sym(l.ports[0].V.Sym(0))
	for _, p := range l.ports[1:] {
		rel = append(rel, expr.Sub(ref, expr.Sym(p.V.Sym(0))))
	}
	currents := make([]expr.Expr, len(l.ports))
	for i, p := range l.ports {
		currents[i] = expr.Sym(p.I.Sym(0))
	}
	rel = append(rel, expr.Add(currents...))
	return rel
}
