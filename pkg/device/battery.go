package device

import (
	"math"

	"stepcircuit/pkg/expr"
)

// Battery is a Peukert-capacity / Shepherd-voltage battery model (named
// Fabs_battery in the reference it was translated from, after its author).
// It tracks state of charge (soc) and relates terminal voltage and current
// through the Shepherd equation, with Peukert's law governing how fast soc
// depletes as a function of discharge current.
type Battery struct {
	Base

	Tref        float64
	QnomTref    float64
	K           float64
	RiOC        float64
	Voc100Ref   float64
	BatSeries   float64
	BatParallel float64

	ri     float64
	ki     float64
	voc100 float64
}

// NewBattery builds a Fabs-style battery. socInit is the initial state of
// charge, in [0, 1].
func NewBattery(name string, tref, qnomTref, k, riOC, voc100Ref, batSeries, batParallel, socInit float64) *Battery {
	p0, p1 := NewPort(name+"_p0"), NewPort(name+"_p1")
	b := &Battery{
		Base:        NewBase(name, p0, p1),
		Tref:        tref,
		QnomTref:    qnomTref,
		K:           k,
		RiOC:        riOC,
		Voc100Ref:   voc100Ref,
		BatSeries:   batSeries,
		BatParallel: batParallel,
		ri:          riOC * batSeries,
		voc100:      voc100Ref * batSeries,
	}
	b.ki = b.ri / 2
	b.Var("soc", socInit)
	return b
}

func (b *Battery) MinDerivativeOrder() int { return 1 }

func (b *Battery) Initialize(d, n int, dt float64) {
	b.InitBase(d, n, dt)
}

// t100 returns t100(i) = (Tref / |i|^k) * (bat_parallel*QnomTref/Tref)^k as
// an expression in i, which may itself be symbolic (the current-step
// current) or a constant folded from committed history (the previous-step
// current). Peukert capacity depends on discharge current magnitude, not
// sign, and the fractional exponent k is undefined for a negative base, so
// i is rectified with Abs before the power is taken. Q100(i) = i * t100(i)
// keeps i's sign, so in the first-step term i0*dt/Q100(i0) the sign cancels
// and soc decreases for either current direction; in later steps the term is
// i0*dt/(soc_prev*Q100(i_prev)), which decreases soc while i0 keeps the sign
// i_prev had.
func (b *Battery) t100(i expr.Expr) expr.Expr {
	factor := math.Pow(b.BatParallel*b.QnomTref/b.Tref, b.K)
	return expr.Mul(expr.Div(expr.C(b.Tref), expr.Pow(expr.Abs(i), b.K)), expr.C(factor))
}

// q100 returns Q100(i) = i * t100(i).
func (b *Battery) q100(i expr.Expr) expr.Expr {
	return expr.Mul(i, b.t100(i))
}

func (b *Battery) Relations(t int) []expr.Expr {
	ports := b.Ports()
	p0, p1 := ports[0], ports[1]
	soc := b.Get("soc")

	soc0 := expr.Sym(soc.Sym(0))
	socPrev := expr.Sym(soc.Sym(-1))
	i0 := expr.Sym(p0.I.Sym(0))
	iPrev := expr.Sym(p0.I.Sym(-1))
	u0 := expr.Sub(expr.Sym(p1.V.Sym(0)), expr.Sym(p0.V.Sym(0)))

	first := t == b.D

	var socRel, vRel expr.Expr
	if first {
		q100i0 := b.q100(i0)
		socInit := b.initValueOf("soc")
		socRel = expr.Add(expr.Neg(soc0), expr.C(socInit), expr.Neg(expr.Div(expr.Mul(i0, expr.C(b.Dt)), q100i0)))
		vRel = expr.Add(expr.Neg(u0), expr.C(b.voc100), expr.Neg(expr.Mul(expr.C(b.ri), i0)),
			expr.Neg(expr.Div(expr.C(b.ki), expr.Sub(expr.C(1), expr.Div(expr.Mul(i0, expr.C(b.Dt)), q100i0)))))
	} else {
		// Later steps use Q_prev = soc_prev * Q100(i_prev), built from the
		// previous step's current rather than from Q100(i0).
		qPrev := expr.Mul(socPrev, b.q100(iPrev))
		socRel = expr.Add(expr.Neg(soc0), socPrev, expr.Neg(expr.Div(expr.Mul(i0, expr.C(b.Dt)), qPrev)))
		vRel = expr.Add(expr.Neg(u0), expr.C(b.voc100), expr.Neg(expr.Mul(expr.C(b.ri), i0)),
			expr.Neg(expr.Div(expr.C(b.ki), expr.Sub(expr.C(1), expr.Div(expr.Mul(i0, expr.C(b.Dt)), qPrev)))))
	}

	rel := []expr.Expr{
		socRel,
		vRel,
		expr.Add(i0, expr.Sym(p1.I.Sym(0))),
	}
	rel = append(rel, soc.HistoryRelations(t)...)
	rel = append(rel, p0.I.HistoryRelations(t)...)
	rel = append(rel, p0.V.HistoryRelations(t)...)
	rel = append(rel, p1.I.HistoryRelations(t)...)
	rel = append(rel, p1.V.HistoryRelations(t)...)
	return rel
}

// initValueOf returns the initial value registered for a Base-declared
// variable, used by the first-step branch which needs soc_init as a plain
// number rather than a symbol.
func (b *Battery) initValueOf(name string) float64 {
	return b.Base.initValues[name]
}
