// Package state defines the abstract domain contract and the composite
// analysis state threaded through statement semantics.
package state

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// Domain is implemented by every abstract domain participating in an
// analysis. A domain is a lattice whose members also know how to react
// to the statement-level operations the fixpoint engine performs.
//
// Implementations must be immutable: every operation returns a new
// member and never mutates the receiver. The interprocedural engine
// caches states and re-reads them after arbitrary further computation.
type Domain interface {
	// Bot returns the least member of the domain.
	Bot() Domain
	// Top returns the greatest member of the domain.
	Top() Domain

	// Join computes the least upper bound of the receiver and o.
	Join(o Domain) Domain
	// Widen extrapolates from the receiver (the previous iterate) to o
	// (the incoming one). The result must be an upper bound of both, and
	// repeated widening along any ascending chain must stabilize.
	Widen(o Domain) Domain
	// Leq computes the partial order.
	Leq(o Domain) bool
	// Eq computes member equality.
	Eq(o Domain) bool

	// Assign abstracts the effect of storing the value of e in v.
	Assign(v *symbolic.Variable, e symbolic.Expression) (Domain, error)
	// Assume refines the member under the assumption that e holds.
	// Domains that cannot exploit the condition return the receiver.
	Assume(e symbolic.Expression) (Domain, error)
	// Bind stores an abstract value computed elsewhere directly in v,
	// bypassing expression evaluation. Used to transfer call results
	// and canonical entry values across procedure boundaries.
	Bind(v *symbolic.Variable, val lattice.Element) (Domain, error)
	// Eval abstracts the value of e in the current member.
	Eval(e symbolic.Expression) (lattice.Element, error)
	// Forget discards all knowledge about v.
	Forget(v *symbolic.Variable) Domain

	String() string
}
