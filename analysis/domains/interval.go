package domains

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

var intervalLattice = lattice.Create().Lattice().Interval()

func topInterval() lattice.Interval {
	return lattice.Elements().Interval(lattice.MinusInfinity{}, lattice.PlusInfinity{})
}

func botInterval() lattice.Interval {
	return intervalLattice.Bot().(lattice.Interval)
}

// IntervalDomain abstracts integer variables by intervals. Ascending
// chains are infinite, so the domain relies on the engine's widening.
type IntervalDomain struct {
	environment
}

// NewIntervalDomain returns the empty interval environment.
func NewIntervalDomain() IntervalDomain {
	return IntervalDomain{newEnvironment(intervalLattice)}
}

func (d IntervalDomain) Bot() state.Domain { return NewIntervalDomain() }
func (d IntervalDomain) Top() state.Domain { panic(errEnvTop) }

func (d IntervalDomain) Join(o state.Domain) state.Domain {
	return IntervalDomain{d.join(o.(IntervalDomain).environment)}
}

func (d IntervalDomain) Widen(o state.Domain) state.Domain {
	return IntervalDomain{d.widen(o.(IntervalDomain).environment)}
}

func (d IntervalDomain) Leq(o state.Domain) bool { return d.leq(o.(IntervalDomain).environment) }
func (d IntervalDomain) Eq(o state.Domain) bool  { return d.eq(o.(IntervalDomain).environment) }

func (d IntervalDomain) Assign(v *symbolic.Variable, e symbolic.Expression) (state.Domain, error) {
	val, err := d.Eval(e)
	if err != nil {
		return d, err
	}
	return IntervalDomain{d.bind(v, val)}, nil
}

// Assume refines the intervals of variables compared in the condition.
func (d IntervalDomain) Assume(e symbolic.Expression) (state.Domain, error) {
	cond, ok := e.(*symbolic.BinaryExpr)
	if !ok {
		return d, nil
	}
	if cond.Op == symbolic.LogAnd {
		refined, err := d.Assume(cond.Left)
		if err != nil {
			return d, err
		}
		return refined.Assume(cond.Right)
	}
	if !cond.Op.IsComparison() {
		return d, nil
	}

	env := d.environment
	if v, ok := cond.Left.(*symbolic.Variable); ok {
		env = d.refine(env, v, cond.Op, cond.Right)
	}
	if v, ok := cond.Right.(*symbolic.Variable); ok {
		env = d.refine(env, v, flip(cond.Op), cond.Left)
	}
	return IntervalDomain{env}, nil
}

// refine narrows v's interval under "v op e".
func (d IntervalDomain) refine(env environment, v *symbolic.Variable, op symbolic.BinaryOperator, e symbolic.Expression) environment {
	val, err := d.Eval(e)
	if err != nil {
		return env
	}
	other := val.(lattice.Interval)
	if other.IsBot() {
		return env.bind(v, botInterval())
	}

	one := lattice.FiniteBound(1)
	var constraint lattice.Interval
	switch op {
	case symbolic.CmpEq:
		constraint = other
	case symbolic.CmpLt:
		constraint = lattice.Elements().Interval(lattice.MinusInfinity{}, other.HighBound().Minus(one))
	case symbolic.CmpLe:
		constraint = lattice.Elements().Interval(lattice.MinusInfinity{}, other.HighBound())
	case symbolic.CmpGt:
		constraint = lattice.Elements().Interval(other.LowBound().Plus(one), lattice.PlusInfinity{})
	case symbolic.CmpGe:
		constraint = lattice.Elements().Interval(other.LowBound(), lattice.PlusInfinity{})
	default:
		return env
	}
	cur := env.lookup(v)
	return env.bind(v, cur.Meet(constraint))
}

func (d IntervalDomain) Bind(v *symbolic.Variable, val lattice.Element) (state.Domain, error) {
	return IntervalDomain{d.bind(v, val)}, nil
}

func (d IntervalDomain) Eval(e symbolic.Expression) (lattice.Element, error) {
	switch e := e.(type) {
	case *symbolic.Variable:
		return d.lookup(e), nil
	case *symbolic.Constant:
		if c, ok := intConstant(e); ok {
			return lattice.Elements().IntervalFinite(c, c), nil
		}
	case *symbolic.UnaryExpr:
		if e.Op == symbolic.Neg {
			arg, err := d.Eval(e.Arg)
			if err != nil {
				return nil, err
			}
			return negInterval(arg.(lattice.Interval)), nil
		}
	case *symbolic.BinaryExpr:
		l, err := d.Eval(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := d.Eval(e.Right)
		if err != nil {
			return nil, err
		}
		li, ri := l.(lattice.Interval), r.(lattice.Interval)
		switch e.Op {
		case symbolic.Add:
			return addIntervals(li, ri), nil
		case symbolic.Sub:
			return addIntervals(li, negInterval(ri)), nil
		case symbolic.Mul:
			return mulIntervals(li, ri), nil
		case symbolic.Div:
			return divIntervals(li, ri), nil
		case symbolic.Mod:
			return modIntervals(li, ri), nil
		}
	}
	return topInterval(), nil
}

func (d IntervalDomain) Forget(v *symbolic.Variable) state.Domain {
	return IntervalDomain{d.forget(v)}
}

func (d IntervalDomain) String() string { return d.environment.String() }

func negInterval(i lattice.Interval) lattice.Interval {
	if i.IsBot() {
		return i
	}
	zero := lattice.FiniteBound(0)
	return lattice.Elements().Interval(zero.Minus(i.HighBound()), zero.Minus(i.LowBound()))
}

func addIntervals(a, b lattice.Interval) lattice.Interval {
	if a.IsBot() || b.IsBot() {
		return botInterval()
	}
	return lattice.Elements().Interval(
		a.LowBound().Plus(b.LowBound()),
		a.HighBound().Plus(b.HighBound()),
	)
}

func mulIntervals(a, b lattice.Interval) lattice.Interval {
	if a.IsBot() || b.IsBot() {
		return botInterval()
	}
	products := []lattice.IntervalBound{
		safeMult(a.LowBound(), b.LowBound()),
		safeMult(a.LowBound(), b.HighBound()),
		safeMult(a.HighBound(), b.LowBound()),
		safeMult(a.HighBound(), b.HighBound()),
	}
	low, high := products[0], products[0]
	for _, p := range products[1:] {
		low, high = low.Min(p), high.Max(p)
	}
	return lattice.Elements().Interval(low, high)
}

// safeMult multiplies bounds with the abstract convention 0 · ±∞ = 0.
func safeMult(a, b lattice.IntervalBound) lattice.IntervalBound {
	zero := lattice.FiniteBound(0)
	if a.Eq(zero) || b.Eq(zero) {
		return zero
	}
	return a.Mult(b)
}

func divIntervals(a, b lattice.Interval) lattice.Interval {
	if a.IsBot() || b.IsBot() {
		return botInterval()
	}
	// Dividing by a range containing zero, or by an unbounded range,
	// is not modeled precisely.
	if b.LowBound().IsInfinite() || b.HighBound().IsInfinite() {
		return topInterval()
	}
	lo, hi := b.Low(), b.High()
	if lo <= 0 && hi >= 0 {
		return topInterval()
	}
	quotients := []lattice.IntervalBound{
		a.LowBound().Div(lattice.FiniteBound(lo)),
		a.LowBound().Div(lattice.FiniteBound(hi)),
		a.HighBound().Div(lattice.FiniteBound(lo)),
		a.HighBound().Div(lattice.FiniteBound(hi)),
	}
	low, high := quotients[0], quotients[0]
	for _, q := range quotients[1:] {
		low, high = low.Min(q), high.Max(q)
	}
	return lattice.Elements().Interval(low, high)
}

func modIntervals(a, b lattice.Interval) lattice.Interval {
	if a.IsBot() || b.IsBot() {
		return botInterval()
	}
	// Only the common case of a positive finite divisor is modeled.
	if b.LowBound().IsInfinite() || b.HighBound().IsInfinite() || b.Low() <= 0 {
		return topInterval()
	}
	return lattice.Elements().Interval(lattice.FiniteBound(0), lattice.FiniteBound(b.High()-1))
}
