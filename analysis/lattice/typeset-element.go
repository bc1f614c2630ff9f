package lattice

import (
	"sync"

	"github.com/gala-analyzer/gala/types"
)

// TypeSetValue is a member of the type set lattice: a set of runtime
// types drawn from a fixed, finalized type universe.
type TypeSetValue struct {
	element
	set types.TypeSet
}

// TypeSetValue creates a type set lattice member from the given set.
func (elementFactory) TypeSetValue(set types.TypeSet) TypeSetValue {
	return TypeSetValue{
		element{typeSetLattice(set.Universe())},
		set,
	}
}

// TypeSetValue safely converts to a type set member.
func (e TypeSetValue) TypeSetValue() TypeSetValue {
	return e
}

// Set unwraps the underlying type set.
func (e TypeSetValue) Set() types.TypeSet {
	return e.set
}

// IsBot is true for the empty type set.
func (e TypeSetValue) IsBot() bool {
	return e.set.IsEmpty()
}

func (e TypeSetValue) String() string {
	return colorize.Element(e.set.String())
}

// Eq computes m = o. Performs lattice dynamic type checking.
func (e1 TypeSetValue) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes m = o.
func (e1 TypeSetValue) eq(e2 Element) bool {
	switch e2 := e2.(type) {
	case TypeSetValue:
		return e1.set.Equal(e2.set)
	default:
		return false
	}
}

// Leq computes m ⊑ o. Performs lattice dynamic type checking.
func (e1 TypeSetValue) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes m ⊑ o.
func (e1 TypeSetValue) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case TypeSetValue:
		return e1.set.SubsetOf(e2.set)
	default:
		panic(errInternal)
	}
}

// Geq computes m ⊒ o. Performs lattice dynamic type checking.
func (e1 TypeSetValue) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes m ⊒ o.
func (e1 TypeSetValue) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case TypeSetValue:
		return e2.set.SubsetOf(e1.set)
	default:
		panic(errInternal)
	}
}

// Join computes m ⊔ o. Performs lattice dynamic type checking.
func (e1 TypeSetValue) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes m ⊔ o.
func (e1 TypeSetValue) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case TypeSetValue:
		return e1.MonoJoin(e2)
	default:
		panic(errInternal)
	}
}

// MonoJoin is a monomorphic variant of m ⊔ o for type sets.
func (e1 TypeSetValue) MonoJoin(e2 TypeSetValue) TypeSetValue {
	e1.set = e1.set.Union(e2.set)
	return e1
}

// Meet computes m ⊓ o. Performs lattice dynamic type checking.
func (e1 TypeSetValue) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes m ⊓ o.
func (e1 TypeSetValue) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case TypeSetValue:
		e1.set = e1.set.Intersect(e2.set)
		return e1
	default:
		panic(errInternal)
	}
}

// Widen computes m ∇ o. Performs lattice dynamic type checking.
func (e1 TypeSetValue) Widen(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen falls back on join; the universe is finalized before analysis
// starts, so the type set lattice has finite height.
func (e1 TypeSetValue) widen(e2 Element) Element {
	return e1.join(e2)
}

// TypeSetLattice is the powerset lattice over the types registered in a
// finalized universe.
type TypeSetLattice struct {
	lattice
	u *types.Universe
}

var (
	typeSetLatticesMu sync.Mutex
	typeSetLattices   = map[*types.Universe]*TypeSetLattice{}
)

// typeSetLattice interns one lattice descriptor per universe, so that
// elements over the same universe compare as members of the same lattice.
// Procedures may be analyzed concurrently, hence the lock.
func typeSetLattice(u *types.Universe) *TypeSetLattice {
	typeSetLatticesMu.Lock()
	defer typeSetLatticesMu.Unlock()
	if lat, ok := typeSetLattices[u]; ok {
		return lat
	}
	lat := &TypeSetLattice{u: u}
	typeSetLattices[u] = lat
	return lat
}

// TypeSet yields the type set lattice over the given universe.
func (latticeFactory) TypeSet(u *types.Universe) *TypeSetLattice {
	return typeSetLattice(u)
}

// Top is the set of every type registered in the universe.
func (l *TypeSetLattice) Top() Element {
	return elFact.TypeSetValue(l.u.AllInstances(l.u.Untyped()))
}

// Bot is the empty type set.
func (l *TypeSetLattice) Bot() Element {
	return elFact.TypeSetValue(l.u.EmptySet())
}

func (l1 *TypeSetLattice) Eq(l2 Lattice) bool {
	switch l2 := l2.(type) {
	case *TypeSetLattice:
		return l1.u == l2.u
	default:
		return false
	}
}

func (l *TypeSetLattice) String() string {
	return colorize.Lattice("𝒫(Types)")
}

func (l *TypeSetLattice) TypeSet() *TypeSetLattice {
	return l
}

// Universe returns the type universe the lattice draws from.
func (l *TypeSetLattice) Universe() *types.Universe {
	return l.u
}
