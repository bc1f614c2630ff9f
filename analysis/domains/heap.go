package domains

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// UnitHeap is the heap abstraction that tracks nothing: every operation
// is the identity and every state is equal. Analyses that only reason
// about local variables plug it into the heap slot of the state triple.
type UnitHeap struct{}

// NewUnitHeap returns the trivial heap domain.
func NewUnitHeap() UnitHeap { return UnitHeap{} }

func (h UnitHeap) Bot() state.Domain { return h }
func (h UnitHeap) Top() state.Domain { return h }

func (h UnitHeap) Join(state.Domain) state.Domain  { return h }
func (h UnitHeap) Widen(state.Domain) state.Domain { return h }
func (h UnitHeap) Leq(state.Domain) bool           { return true }
func (h UnitHeap) Eq(state.Domain) bool            { return true }

func (h UnitHeap) Assign(*symbolic.Variable, symbolic.Expression) (state.Domain, error) {
	return h, nil
}

func (h UnitHeap) Assume(symbolic.Expression) (state.Domain, error) {
	return h, nil
}

func (h UnitHeap) Bind(*symbolic.Variable, lattice.Element) (state.Domain, error) {
	return h, nil
}

func (h UnitHeap) Eval(symbolic.Expression) (lattice.Element, error) {
	return lattice.Elements().OneElement(), nil
}

func (h UnitHeap) Forget(*symbolic.Variable) state.Domain { return h }

func (h UnitHeap) String() string {
	return lattice.Elements().OneElement().String()
}
