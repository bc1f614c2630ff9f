// Package domains provides ready-made abstract domains for the analysis
// engine: a trivial heap, a sign domain, an interval domain with
// widening, and a runtime type domain. The engine itself only depends on
// the state.Domain contract; these exist as reference implementations
// and as the domains the engine's own tests run on.
package domains

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// environment is the shared skeleton of the map-based domains: variable
// names bound to members of a range lattice, with absent names
// implicitly bound to the range's bottom.
type environment struct {
	mp lattice.Map
}

func newEnvironment(rng lattice.Lattice) environment {
	lat := lattice.Create().Lattice().Map(rng, "Var")
	return environment{mp: lattice.Create().Element().Map(lat)(nil)}
}

func (env environment) lookup(v *symbolic.Variable) lattice.Element {
	e, _ := env.mp.Get(v.Name())
	return e
}

func (env environment) bind(v *symbolic.Variable, e lattice.Element) environment {
	env.mp = env.mp.Update(v.Name(), e)
	return env
}

func (env environment) forget(v *symbolic.Variable) environment {
	env.mp = env.mp.Remove(v.Name())
	return env
}

func (env environment) join(o environment) environment {
	env.mp = env.mp.MonoJoin(o.mp)
	return env
}

func (env environment) widen(o environment) environment {
	env.mp = env.mp.MonoWiden(o.mp)
	return env
}

func (env environment) leq(o environment) bool {
	return env.mp.Leq(o.mp)
}

func (env environment) eq(o environment) bool {
	return env.mp.Eq(o.mp)
}

func (env environment) String() string {
	return env.mp.String()
}

// errEnvTop is the panic message of environments asked for their
// greatest member, which does not exist over an unbounded variable set.
const errEnvTop = "an environment over unboundedly many variables has no greatest member"
