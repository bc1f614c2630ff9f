package domains

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// The members of the sign lattice.
const (
	Negative = "neg"
	Zero     = "zero"
	Positive = "pos"
)

var (
	signLattice = lattice.Create().Lattice().Flat(Negative, Zero, Positive)
	mkSign      = lattice.Create().Element().Flat(signLattice)
)

// SignDomain abstracts integer variables by their sign.
type SignDomain struct {
	environment
}

// NewSignDomain returns the empty sign environment.
func NewSignDomain() SignDomain {
	return SignDomain{newEnvironment(signLattice)}
}

func (d SignDomain) Bot() state.Domain { return NewSignDomain() }
func (d SignDomain) Top() state.Domain { panic(errEnvTop) }

func (d SignDomain) Join(o state.Domain) state.Domain {
	return SignDomain{d.join(o.(SignDomain).environment)}
}

// Widen joins; the sign lattice has finite height.
func (d SignDomain) Widen(o state.Domain) state.Domain {
	return d.Join(o)
}

func (d SignDomain) Leq(o state.Domain) bool { return d.leq(o.(SignDomain).environment) }
func (d SignDomain) Eq(o state.Domain) bool  { return d.eq(o.(SignDomain).environment) }

func (d SignDomain) Assign(v *symbolic.Variable, e symbolic.Expression) (state.Domain, error) {
	val, err := d.Eval(e)
	if err != nil {
		return d, err
	}
	return SignDomain{d.bind(v, val)}, nil
}

// Assume refines a variable compared against a value of known sign.
func (d SignDomain) Assume(e symbolic.Expression) (state.Domain, error) {
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
	return SignDomain{env}, nil
}

// refine narrows v's sign under "v op e".
func (d SignDomain) refine(env environment, v *symbolic.Variable, op symbolic.BinaryOperator, e symbolic.Expression) environment {
	cur := env.lookup(v)
	switch op {
	case symbolic.CmpEq:
		other, err := d.Eval(e)
		if err != nil {
			return env
		}
		return env.bind(v, cur.Meet(other))
	case symbolic.CmpLt, symbolic.CmpLe, symbolic.CmpGt, symbolic.CmpGe:
		c, ok := intConstant(e)
		if !ok {
			return env
		}
		// A strict comparison against a bound of the right sign pins
		// the variable; anything weaker is not expressible as a single
		// flat member.
		switch {
		case op == symbolic.CmpLt && c <= 0, op == symbolic.CmpLe && c < 0:
			return env.bind(v, cur.Meet(mkSign(Negative)))
		case op == symbolic.CmpGt && c >= 0, op == symbolic.CmpGe && c > 0:
			return env.bind(v, cur.Meet(mkSign(Positive)))
		}
	}
	return env
}

func (d SignDomain) Bind(v *symbolic.Variable, val lattice.Element) (state.Domain, error) {
	return SignDomain{d.bind(v, val)}, nil
}

func (d SignDomain) Eval(e symbolic.Expression) (lattice.Element, error) {
	switch e := e.(type) {
	case *symbolic.Variable:
		return d.lookup(e), nil
	case *symbolic.Constant:
		if c, ok := intConstant(e); ok {
			return signOf(c), nil
		}
	case *symbolic.UnaryExpr:
		if e.Op == symbolic.Neg {
			arg, err := d.Eval(e.Arg)
			if err != nil {
				return nil, err
			}
			return negSign(arg.(lattice.FlatElement)), nil
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
		switch e.Op {
		case symbolic.Add:
			return addSigns(l.(lattice.FlatElement), r.(lattice.FlatElement)), nil
		case symbolic.Sub:
			return addSigns(l.(lattice.FlatElement), negSign(r.(lattice.FlatElement))), nil
		case symbolic.Mul:
			return mulSigns(l.(lattice.FlatElement), r.(lattice.FlatElement)), nil
		}
	}
	return signLattice.Top(), nil
}

func (d SignDomain) Forget(v *symbolic.Variable) state.Domain {
	return SignDomain{d.forget(v)}
}

func (d SignDomain) String() string { return d.environment.String() }

func signOf(c int) lattice.FlatElement {
	switch {
	case c < 0:
		return mkSign(Negative)
	case c == 0:
		return mkSign(Zero)
	default:
		return mkSign(Positive)
	}
}

func negSign(e lattice.FlatElement) lattice.FlatElement {
	switch {
	case e.Is(Negative):
		return mkSign(Positive)
	case e.Is(Positive):
		return mkSign(Negative)
	default:
		return e
	}
}

func addSigns(l, r lattice.FlatElement) lattice.Element {
	switch {
	case l.IsBot() || r.IsBot():
		return signLattice.Bot()
	case l.Is(Zero):
		return r
	case r.Is(Zero):
		return l
	case l.IsTop() || r.IsTop():
		return signLattice.Top()
	case l.Value() == r.Value():
		return l
	default:
		return signLattice.Top()
	}
}

func mulSigns(l, r lattice.FlatElement) lattice.Element {
	switch {
	case l.IsBot() || r.IsBot():
		return signLattice.Bot()
	case l.Is(Zero) || r.Is(Zero):
		return mkSign(Zero)
	case l.IsTop() || r.IsTop():
		return signLattice.Top()
	case l.Value() == r.Value():
		return mkSign(Positive)
	default:
		return mkSign(Negative)
	}
}

// intConstant extracts an integer literal.
func intConstant(e symbolic.Expression) (int, bool) {
	c, ok := e.(*symbolic.Constant)
	if !ok {
		return 0, false
	}
	switch v := c.Value().(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// flip mirrors a comparison so the variable of interest reads on the
// left: "e op v" becomes "v flip(op) e".
func flip(op symbolic.BinaryOperator) symbolic.BinaryOperator {
	switch op {
	case symbolic.CmpLt:
		return symbolic.CmpGt
	case symbolic.CmpLe:
		return symbolic.CmpGe
	case symbolic.CmpGt:
		return symbolic.CmpLt
	case symbolic.CmpGe:
		return symbolic.CmpLe
	default:
		return op
	}
}
