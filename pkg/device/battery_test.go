package device

import (
	"math"
	"testing"

	"stepcircuit/pkg/symbol"
)

func testBattery() *Battery {
	return NewBattery("bat", 20, 1100, 1.2, 0.34, 2.15, 24, 1, 1)
}

func TestBatteryMinDerivativeOrderIsOne(t *testing.T) {
	b := testBattery()
	if got := b.MinDerivativeOrder(); got != 1 {
		t.Errorf("MinDerivativeOrder() = %d, want 1", got)
	}
}

func TestBatteryFirstStepRelationsSatisfiedAtConsistentPoint(t *testing.T) {
	b := testBattery()
	b.Initialize(1, 3, 1e-4)

	ports := b.Ports()
	p0, p1 := ports[0], ports[1]
	soc := b.Get("soc")

	i0 := 0.1
	q100 := i0 * (b.Tref / math.Pow(i0, b.K)) * math.Pow(b.BatParallel*b.QnomTref/b.Tref, b.K)
	soc0 := 1 - (i0*b.Dt)/q100
	u0 := b.voc100 - b.ri*i0 - b.ki/(1-(i0*b.Dt)/q100)

	env := map[symbol.Symbol]float64{
		soc.Sym(0):  soc0,
		soc.Sym(-1): 1, // soc_init, seeded history
		p0.I.Sym(0): i0,
		p0.V.Sym(0): 0,
		p1.V.Sym(0): u0,
		p1.I.Sym(0): -i0,
	}

	for _, rel := range b.Relations(1) { // t == b.D == 1: first step
		if got := rel.Eval(env); got > 1e-6 || got < -1e-6 {
			t.Errorf("relation %s evaluated to %g, want ~0", rel.String(), got)
		}
	}
}

func TestBatterySubsequentStepUsesQPrevFromIPrev(t *testing.T) {
	b := testBattery()
	b.Initialize(1, 4, 1e-4)

	ports := b.Ports()
	p0, p1 := ports[0], ports[1]
	soc := b.Get("soc")

	iPrev := 0.1
	socPrev := 0.95
	p0.I.Commit(1, iPrev)
	soc.Commit(1, socPrev)
	q100IPrev := iPrev * (b.Tref / math.Pow(iPrev, b.K)) * math.Pow(b.BatParallel*b.QnomTref/b.Tref, b.K)
	qPrev := socPrev * q100IPrev

	i0 := 0.1
	soc0 := socPrev - (i0*b.Dt)/qPrev
	u0 := b.voc100 - b.ri*i0 - b.ki/(1-(i0*b.Dt)/qPrev)

	env := map[symbol.Symbol]float64{
		soc.Sym(0):  soc0,
		soc.Sym(-1): socPrev,
		p0.I.Sym(0): i0,
		p0.I.Sym(-1): iPrev,
		p0.V.Sym(0): 0,
		p1.V.Sym(0): u0,
		p1.I.Sym(0): -i0,
	}

	for _, rel := range b.Relations(2) { // t=2 > b.D=1: not the first step
		if got := rel.Eval(env); got > 1e-6 || got < -1e-6 {
			t.Errorf("relation %s evaluated to %g, want ~0", rel.String(), got)
		}
	}
}
