package state

import (
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/symbolic"

	i "github.com/gala-analyzer/gala/utils/indenter"
)

// AbstractState is the triple of abstract domains a procedure is analyzed
// with: a heap abstraction, a value abstraction and a runtime type
// abstraction. All operations are componentwise.
type AbstractState struct {
	heap  Domain
	value Domain
	typ   Domain
}

// NewAbstractState assembles an abstract state from its three domains.
func NewAbstractState(heap, value, typ Domain) AbstractState {
	return AbstractState{heap: heap, value: value, typ: typ}
}

// Heap returns the heap component.
func (s AbstractState) Heap() Domain { return s.heap }

// Value returns the value component.
func (s AbstractState) Value() Domain { return s.value }

// Type returns the runtime type component.
func (s AbstractState) Type() Domain { return s.typ }

// Bot returns the componentwise least state.
func (s AbstractState) Bot() AbstractState {
	return AbstractState{s.heap.Bot(), s.value.Bot(), s.typ.Bot()}
}

// Top returns the componentwise greatest state.
func (s AbstractState) Top() AbstractState {
	return AbstractState{s.heap.Top(), s.value.Top(), s.typ.Top()}
}

// MonoJoin computes the componentwise least upper bound.
func (s AbstractState) MonoJoin(o AbstractState) AbstractState {
	return AbstractState{
		heap:  s.heap.Join(o.heap),
		value: s.value.Join(o.value),
		typ:   s.typ.Join(o.typ),
	}
}

// MonoWiden widens componentwise, with the receiver as previous iterate.
func (s AbstractState) MonoWiden(o AbstractState) AbstractState {
	return AbstractState{
		heap:  s.heap.Widen(o.heap),
		value: s.value.Widen(o.value),
		typ:   s.typ.Widen(o.typ),
	}
}

// Leq computes the componentwise partial order.
func (s AbstractState) Leq(o AbstractState) bool {
	return s.heap.Leq(o.heap) && s.value.Leq(o.value) && s.typ.Leq(o.typ)
}

// Eq computes componentwise equality.
func (s AbstractState) Eq(o AbstractState) bool {
	return s.heap.Eq(o.heap) && s.value.Eq(o.value) && s.typ.Eq(o.typ)
}

// Assign applies the assignment to all three components.
func (s AbstractState) Assign(v *symbolic.Variable, e symbolic.Expression) (AbstractState, error) {
	heap, err := s.heap.Assign(v, e)
	if err != nil {
		return s, err
	}
	value, err := s.value.Assign(v, e)
	if err != nil {
		return s, err
	}
	typ, err := s.typ.Assign(v, e)
	if err != nil {
		return s, err
	}
	return AbstractState{heap, value, typ}, nil
}

// Assume refines all three components under the given condition.
func (s AbstractState) Assume(e symbolic.Expression) (AbstractState, error) {
	heap, err := s.heap.Assume(e)
	if err != nil {
		return s, err
	}
	value, err := s.value.Assume(e)
	if err != nil {
		return s, err
	}
	typ, err := s.typ.Assume(e)
	if err != nil {
		return s, err
	}
	return AbstractState{heap, value, typ}, nil
}

// Bind stores precomputed abstract values for v in the value and type
// components. The heap component only observes the variable's existence.
func (s AbstractState) Bind(v *symbolic.Variable, value lattice.Element, typ lattice.Element) (AbstractState, error) {
	valueDom, err := s.value.Bind(v, value)
	if err != nil {
		return s, err
	}
	typDom, err := s.typ.Bind(v, typ)
	if err != nil {
		return s, err
	}
	return AbstractState{s.heap, valueDom, typDom}, nil
}

// EvalValue abstracts the value of e in the value component.
func (s AbstractState) EvalValue(e symbolic.Expression) (lattice.Element, error) {
	return s.value.Eval(e)
}

// EvalTypes abstracts the runtime types of e in the type component.
func (s AbstractState) EvalTypes(e symbolic.Expression) (lattice.Element, error) {
	return s.typ.Eval(e)
}

// Forget discards all knowledge about v in every component.
func (s AbstractState) Forget(v *symbolic.Variable) AbstractState {
	return AbstractState{
		heap:  s.heap.Forget(v),
		value: s.value.Forget(v),
		typ:   s.typ.Forget(v),
	}
}

func (s AbstractState) String() string {
	return i.Start("⟨").NestStringsSep(",",
		"heap: "+s.heap.String(),
		"value: "+s.value.String(),
		"type: "+s.typ.String(),
	).End("⟩")
}
