package device

import (
	"testing"

	"stepcircuit/pkg/symbol"
)

func TestGroundPinsPortVoltageToZero(t *testing.T) {
	g := NewGround("gnd")
	g.Initialize(0, 1, 0.1)

	p0 := g.Ports()[0]
	env := map[symbol.Symbol]float64{p0.V.Sym(0): 0}

	for _, rel := range g.Relations(0) {
		if got := rel.Eval(env); got != 0 {
			t.Errorf("relation %s evaluated to %g, want 0", rel.String(), got)
		}
	}
}

func TestGroundRelationIsViolatedByNonzeroVoltage(t *testing.T) {
	g := NewGround("gnd")
	g.Initialize(0, 1, 0.1)

	p0 := g.Ports()[0]
	env := map[symbol.Symbol]float64{p0.V.Sym(0): 3}

	rel := g.Relations(0)
	if rel[0].Eval(env) == 0 {
		t.Fatal("ground relation should not be satisfied by a nonzero port voltage")
	}
}
