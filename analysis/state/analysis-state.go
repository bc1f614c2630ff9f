package state

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/symbolic"

	i "github.com/gala-analyzer/gala/utils/indenter"
)

// AnalysisState pairs an abstract state with the symbolic expressions the
// last evaluated statement left available, and with the synthetic
// variables the interprocedural engine has injected so far.
type AnalysisState struct {
	state AbstractState
	exprs symbolic.ExpressionSet
	metas []*symbolic.Variable
}

// NewAnalysisState wraps an abstract state with no available expressions.
func NewAnalysisState(s AbstractState) AnalysisState {
	return AnalysisState{state: s}
}

// State returns the underlying abstract state.
func (a AnalysisState) State() AbstractState { return a.state }

// Expressions returns the expressions computed by the last statement.
func (a AnalysisState) Expressions() symbolic.ExpressionSet { return a.exprs }

// Metas returns the live synthetic variables.
func (a AnalysisState) Metas() []*symbolic.Variable { return a.metas }

// Bot returns the least analysis state over the same domains.
func (a AnalysisState) Bot() AnalysisState {
	return AnalysisState{state: a.state.Bot()}
}

// Top returns the greatest analysis state over the same domains.
func (a AnalysisState) Top() AnalysisState {
	return AnalysisState{state: a.state.Top()}
}

// WithExpressions replaces the available expressions.
func (a AnalysisState) WithExpressions(exprs symbolic.ExpressionSet) AnalysisState {
	a.exprs = exprs
	return a
}

// WithState replaces the abstract state.
func (a AnalysisState) WithState(s AbstractState) AnalysisState {
	a.state = s
	return a
}

// AddMeta registers a synthetic variable carrying a call result.
func (a AnalysisState) AddMeta(v *symbolic.Variable) AnalysisState {
	metas := make([]*symbolic.Variable, 0, len(a.metas)+1)
	metas = append(metas, a.metas...)
	metas = append(metas, v)
	a.metas = metas
	return a
}

// ForgetMetas purges every synthetic variable from the state. Called
// once a statement has consumed the results of the calls it contains.
func (a AnalysisState) ForgetMetas() AnalysisState {
	s := a.state
	for _, v := range a.metas {
		s = s.Forget(v)
	}
	a.state = s
	a.metas = nil
	return a
}

// MonoJoin computes the least upper bound: states are joined and the
// available expression sets are unioned.
func (a AnalysisState) MonoJoin(o AnalysisState) AnalysisState {
	return AnalysisState{
		state: a.state.MonoJoin(o.state),
		exprs: a.exprs.Union(o.exprs),
		metas: unionMetas(a.metas, o.metas),
	}
}

// MonoWiden widens the state and unions the expression sets. The
// expression sets of a location are drawn from the finite set of program
// expressions, so union suffices for termination.
func (a AnalysisState) MonoWiden(o AnalysisState) AnalysisState {
	return AnalysisState{
		state: a.state.MonoWiden(o.state),
		exprs: a.exprs.Union(o.exprs),
		metas: unionMetas(a.metas, o.metas),
	}
}

// Leq computes the partial order: componentwise on the state, subset on
// the available expressions.
func (a AnalysisState) Leq(o AnalysisState) bool {
	if !a.state.Leq(o.state) {
		return false
	}
	subset := true
	a.exprs.ForEach(func(e symbolic.Expression) {
		if !o.exprs.Contains(e) {
			subset = false
		}
	})
	return subset
}

// Eq computes analysis state equality.
func (a AnalysisState) Eq(o AnalysisState) bool {
	return a.state.Eq(o.state) && a.exprs.Equal(o.exprs)
}

// Assign evaluates e, stores it in v, and leaves v as the only available
// expression.
func (a AnalysisState) Assign(v *symbolic.Variable, e symbolic.Expression) (AnalysisState, error) {
	s, err := a.state.Assign(v, e)
	if err != nil {
		return a, err
	}
	a.state = s
	a.exprs = symbolic.NewExpressionSet(v)
	return a, nil
}

// Assume refines the state under the given condition.
func (a AnalysisState) Assume(e symbolic.Expression) (AnalysisState, error) {
	s, err := a.state.Assume(e)
	if err != nil {
		return a, err
	}
	a.state = s
	return a, nil
}

// Bind stores precomputed abstract values for v and makes v available.
func (a AnalysisState) Bind(v *symbolic.Variable, value lattice.Element, typ lattice.Element) (AnalysisState, error) {
	s, err := a.state.Bind(v, value, typ)
	if err != nil {
		return a, err
	}
	a.state = s
	a.exprs = a.exprs.Add(v)
	return a, nil
}

// EvalValue abstracts the value of e.
func (a AnalysisState) EvalValue(e symbolic.Expression) (lattice.Element, error) {
	return a.state.EvalValue(e)
}

// EvalTypes abstracts the runtime types of e.
func (a AnalysisState) EvalTypes(e symbolic.Expression) (lattice.Element, error) {
	return a.state.EvalTypes(e)
}

func (a AnalysisState) String() string {
	return i.Start("⟨").NestStringsSep(",",
		"state: "+a.state.String(),
		"exprs: "+a.exprs.String(),
	).End("⟩")
}

func unionMetas(a, b []*symbolic.Variable) []*symbolic.Variable {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	seen := make(map[string]bool, len(a))
	res := make([]*symbolic.Variable, 0, len(a)+len(b))
	for _, v := range a {
		seen[v.Name()] = true
		res = append(res, v)
	}
	for _, v := range b {
		if !seen[v.Name()] {
			res = append(res, v)
		}
	}
	return res
}
