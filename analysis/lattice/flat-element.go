package lattice

import (
	"fmt"
)

type (
	// flatElementBase is the basis for constructing all members of the flat lattice.
	// Is embedded by ⊥, ⊤ and valued members.
	flatElementBase struct {
		element
	}

	// FlatElement is an interface implemented by all members of any flat lattice.
	// It extends the standard lattice element interface with relevant methods.
	FlatElement interface {
		Element
		// IsBot checks whether the flat lattice member is ⊥.
		IsBot() bool
		// IsTop checks whether the flat lattice member is ⊤.
		IsTop() bool
		// Value retrieves the underlying value of a valued member.
		Value() any
		// Is checks via equality (==) whether the flat element represents the given value.
		// May be overloaded with flat lattice members directly to leverage lattice element equality.
		Is(x any) bool
	}

	// FlatTop is the standard type of the flat ⊤ element.
	FlatTop struct {
		flatElementBase
	}

	// FlatBot is the standard type of the flat ⊥ element.
	FlatBot struct {
		flatElementBase
	}

	// flatElement is a valued member of a flat lattice.
	flatElement struct {
		element
		value any
	}
)

// Value will panic, and must only be invoked for valued flat lattice members.
func (flatElementBase) Value() any {
	panic("Called Value() on a FlatBot/Top element")
}

// Is checks whether two flat lattice members are structurally identical.
func (f1 flatElementBase) Is(f2 any) bool {
	return f1 == f2
}

// Flat converts the flat ⊥ member to a FlatElement.
func (e FlatBot) Flat() FlatElement {
	return e
}

// IsBot is true for flat ⊥.
func (e FlatBot) IsBot() bool {
	return true
}

// IsTop is false for flat ⊥.
func (e FlatBot) IsTop() bool {
	return false
}

func (FlatBot) String() string {
	return colorize.Element("⊥")
}

// Leq computes ⊥ ⊑ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatBot) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes ⊥ ⊑ x, where x is a lattice element.
func (e1 FlatBot) leq(e2 Element) bool {
	return true
}

// Geq computes ⊥ ⊒ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatBot) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes ⊥ ⊒ x, where x is a lattice element.
func (e1 FlatBot) geq(e2 Element) bool {
	switch e2.(type) {
	case FlatBot:
		return true
	default:
		return false
	}
}

// Eq computes ⊥ = x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatBot) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes ⊥ = x, where x is a lattice element.
func (e1 FlatBot) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes ⊥ ⊔ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatBot) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes ⊥ ⊔ x, where x is a lattice element.
func (e1 FlatBot) join(e2 Element) Element {
	return e2
}

// Meet computes ⊥ ⊓ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatBot) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes ⊥ ⊓ x, where x is a lattice element.
func (e1 FlatBot) meet(e2 Element) Element {
	return e1
}

// Widen computes ⊥ ∇ x. Performs lattice type checking.
func (e1 FlatBot) Widen(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen falls back on join; flat lattices have finite height.
func (e1 FlatBot) widen(e2 Element) Element {
	return e1.join(e2)
}

// Flat converts the flat ⊤ member to a FlatElement.
func (e FlatTop) Flat() FlatElement {
	return e
}

// IsBot is false for flat ⊤.
func (e FlatTop) IsBot() bool {
	return false
}

// IsTop is true for flat ⊤.
func (e FlatTop) IsTop() bool {
	return true
}

func (FlatTop) String() string {
	return colorize.Element("T")
}

// Leq computes ⊤ ⊑ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatTop) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes ⊤ ⊑ x, where x is a lattice element.
func (e1 FlatTop) leq(e2 Element) bool {
	switch e2.(type) {
	case FlatTop:
		return true
	default:
		return false
	}
}

// Geq computes ⊤ ⊒ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatTop) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes ⊤ ⊒ x, where x is a lattice element.
func (e1 FlatTop) geq(e2 Element) bool {
	return true
}

// Eq computes ⊤ = x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatTop) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes ⊤ = x, where x is a lattice element.
func (e1 FlatTop) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes ⊤ ⊔ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatTop) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes ⊤ ⊔ x, where x is a lattice element.
func (e1 FlatTop) join(e2 Element) Element {
	return e1
}

// Meet computes ⊤ ⊓ x, where x is a lattice element.
// Performs lattice type checking.
func (e1 FlatTop) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes ⊤ ⊓ x, where x is a lattice element.
func (e1 FlatTop) meet(e2 Element) Element {
	return e2
}

// Widen computes ⊤ ∇ x. Performs lattice type checking.
func (e1 FlatTop) Widen(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen falls back on join; flat lattices have finite height.
func (e1 FlatTop) widen(e2 Element) Element {
	return e1.join(e2)
}

// Flat yields a factory for generating valued members belonging to the
// given flat lattice. Accepted lattices are the constant propagation
// lattice and finite flat lattices.
func (elementFactory) Flat(lat Lattice) func(any) FlatElement {
	switch lat := lat.(type) {
	case *ConstantPropagationLattice:
		return func(v any) FlatElement {
			return flatElement{
				element{lat},
				v,
			}
		}
	case *FlatFiniteLattice:
		return func(v any) FlatElement {
			if el, ok := lat.dom[v]; ok {
				return el.(flatElement)
			}
			panic(fmt.Sprintf("%s is not part of %s", v, lat))
		}
	default:
		panic("Attempted creating a flat element with a non-flat lattice")
	}
}

// Constant produces a member of the constant propagation lattice.
func (elementFactory) Constant(x any) FlatElement {
	return elFact.Flat(constantPropagationLattice)(x)
}

// Value retrieves the underlying value of the element.
func (e flatElement) Value() any {
	return e.value
}

// Is checks for equality with the given value.
// If the value is a another flat element, it leverages lattice member equality.
// Otherwise, it compares the given value with the element's underlying value.
func (e flatElement) Is(x any) bool {
	switch x := x.(type) {
	case FlatElement:
		return e.Eq(x)
	}
	return e.value == x
}

// IsBot is false for non-⊥ elements.
func (e flatElement) IsBot() bool {
	return false
}

// IsTop is false for non-⊤ elements.
func (e flatElement) IsTop() bool {
	return false
}

// Flat safely converts to a flat element.
func (e flatElement) Flat() FlatElement {
	return e
}

func (e flatElement) String() string {
	return colorize.Element(fmt.Sprintf("%v", e.value))
}

// Leq computes m ⊑ o. Performs lattice dynamic type checking.
func (e1 flatElement) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes m ⊑ o.
func (e1 flatElement) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case FlatTop:
		return true
	case FlatBot:
		return false
	case FlatElement:
		return e1.value == e2.Value()
	default:
		return false
	}
}

// Geq computes m ⊒ o. Performs lattice dynamic type checking.
func (e1 flatElement) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes m ⊒ o.
func (e1 flatElement) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case FlatTop:
		return false
	case FlatBot:
		return true
	case FlatElement:
		return e1.value == e2.Value()
	default:
		return true
	}
}

// Eq computes m = o. Performs lattice dynamic type checking.
func (e1 flatElement) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes m = o.
func (e1 flatElement) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Join computes m ⊔ o. Performs lattice dynamic type checking.
func (e1 flatElement) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes m ⊔ o.
func (e1 flatElement) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case flatElement:
		if e1.value == e2.value {
			return e1
		}
		return e1.lattice.Top()
	case FlatTop:
		return e2
	default:
		return e1
	}
}

// Meet computes m ⊓ o. Performs lattice dynamic type checking.
func (e1 flatElement) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes m ⊓ o.
func (e1 flatElement) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case flatElement:
		if e1.value == e2.value {
			return e1
		}
		return e1.lattice.Bot()
	case FlatTop:
		return e1
	default:
		return e2
	}
}

// Widen computes m ∇ o. Performs lattice dynamic type checking.
func (e1 flatElement) Widen(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen falls back on join; flat lattices have finite height.
func (e1 flatElement) widen(e2 Element) Element {
	return e1.join(e2)
}
