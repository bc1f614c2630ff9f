package domains

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

// TypeDomain tracks the possible runtime types of every variable as a
// subset of the universe's registered types.
type TypeDomain struct {
	environment
	universe *types.Universe

	// additionDefault resolves binary additions whose operands are both
	// untyped: nil keeps the expression's own static typing, a non-nil
	// type pins the result, which lets a frontend default untyped "+"
	// to numeric addition instead of string concatenation.
	additionDefault *types.Type
}

// NewTypeDomain returns the empty type environment over the universe.
func NewTypeDomain(u *types.Universe) TypeDomain {
	return TypeDomain{
		environment: newEnvironment(lattice.Create().Lattice().TypeSet(u)),
		universe:    u,
	}
}

// WithAdditionDefault returns a domain resolving untyped additions to
// the given type.
func (d TypeDomain) WithAdditionDefault(t *types.Type) TypeDomain {
	d.additionDefault = t
	return d
}

func (d TypeDomain) derive(env environment) TypeDomain {
	d.environment = env
	return d
}

func (d TypeDomain) Bot() state.Domain {
	return NewTypeDomain(d.universe).WithAdditionDefault(d.additionDefault)
}

func (d TypeDomain) Top() state.Domain { panic(errEnvTop) }

func (d TypeDomain) Join(o state.Domain) state.Domain {
	return d.derive(d.join(o.(TypeDomain).environment))
}

// Widen joins; the universe is finite once finalized.
func (d TypeDomain) Widen(o state.Domain) state.Domain {
	return d.Join(o)
}

func (d TypeDomain) Leq(o state.Domain) bool { return d.leq(o.(TypeDomain).environment) }
func (d TypeDomain) Eq(o state.Domain) bool  { return d.eq(o.(TypeDomain).environment) }

func (d TypeDomain) Assign(v *symbolic.Variable, e symbolic.Expression) (state.Domain, error) {
	val, err := d.Eval(e)
	if err != nil {
		return d, err
	}
	return d.derive(d.bind(v, val)), nil
}

func (d TypeDomain) Assume(symbolic.Expression) (state.Domain, error) {
	return d, nil
}

func (d TypeDomain) Bind(v *symbolic.Variable, val lattice.Element) (state.Domain, error) {
	return d.derive(d.bind(v, val)), nil
}

func (d TypeDomain) Eval(e symbolic.Expression) (lattice.Element, error) {
	switch e := e.(type) {
	case *symbolic.Variable:
		val, bound := d.mp.Get(e.Name())
		if bound {
			return val, nil
		}
		return lattice.Elements().TypeSetValue(e.RuntimeTypes()), nil
	case *symbolic.BinaryExpr:
		if e.Op == symbolic.Add && d.additionDefault != nil {
			l, err := d.Eval(e.Left)
			if err != nil {
				return nil, err
			}
			r, err := d.Eval(e.Right)
			if err != nil {
				return nil, err
			}
			untyped := d.universe.UntypedSet()
			if l.(lattice.TypeSetValue).Set().Equal(untyped) && r.(lattice.TypeSetValue).Set().Equal(untyped) {
				return lattice.Elements().TypeSetValue(d.universe.MkSet(d.additionDefault)), nil
			}
		}
	}
	return lattice.Elements().TypeSetValue(e.RuntimeTypes()), nil
}

func (d TypeDomain) Forget(v *symbolic.Variable) state.Domain {
	return d.derive(d.forget(v))
}

func (d TypeDomain) String() string { return d.environment.String() }
