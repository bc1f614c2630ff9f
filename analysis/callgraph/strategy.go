// Package callgraph resolves call targets against the analyzed program
// and exposes the resulting call structure.
package callgraph

import (
	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

// FixedOrderResolution matches actuals to formals positionally: the
// arities must agree and each actual must be type-compatible with the
// formal at the same position.
type FixedOrderResolution struct{}

// FixedOrder returns the positional matching strategy.
func FixedOrder() FixedOrderResolution { return FixedOrderResolution{} }

func (FixedOrderResolution) Matches(formals []cfg.Parameter, actuals []symbolic.Expression) bool {
	if len(formals) != len(actuals) {
		return false
	}
	for i, formal := range formals {
		if !compatible(actuals[i], formal.StaticType) {
			return false
		}
	}
	return true
}

func (FixedOrderResolution) String() string { return "fixed-order" }

// ByNameResolution matches actuals to formals by name: every actual must
// be a variable named after a distinct formal parameter, in any order.
type ByNameResolution struct{}

// ByName returns the name-based matching strategy.
func ByName() ByNameResolution { return ByNameResolution{} }

func (ByNameResolution) Matches(formals []cfg.Parameter, actuals []symbolic.Expression) bool {
	if len(formals) != len(actuals) {
		return false
	}
	byName := make(map[string]cfg.Parameter, len(formals))
	for _, f := range formals {
		byName[f.Name] = f
	}
	seen := make(map[string]bool, len(actuals))
	for _, a := range actuals {
		v, ok := a.(*symbolic.Variable)
		if !ok {
			return false
		}
		formal, found := byName[v.Name()]
		if !found || seen[v.Name()] {
			return false
		}
		seen[v.Name()] = true
		if !compatible(a, formal.StaticType) {
			return false
		}
	}
	return true
}

func (ByNameResolution) String() string { return "by-name" }

// compatible checks whether an actual argument may flow into a formal of
// the given static type. An actual is accepted when one of its possible
// runtime types is assignable to the formal; untyped expressions are
// compatible with everything, and the frontend is trusted to have
// rejected genuinely ill-typed programs.
func compatible(actual symbolic.Expression, formal *types.Type) bool {
	if formal.IsUntyped() {
		return true
	}
	static := actual.StaticType()
	if static.IsUntyped() {
		return true
	}
	ok := false
	actual.RuntimeTypes().ForEach(func(t *types.Type) {
		if types.Assignable(t, formal) {
			ok = true
		}
	})
	return ok
}
