package lattice

import (
	"log"
)

// Lattice is implemented by all lattice descriptors. A descriptor knows its
// extremal elements and can be checked for compatibility with another
// descriptor before elements of the two are combined.
type Lattice interface {
	Top() Element
	Bot() Element

	String() string
	Eq(Lattice) bool

	// These methods allow for quick type conversions.
	// Suitable, if you know what lattice type to expect.
	OneElement() *OneElementLattice
	TwoElement() *TwoElementLattice
	Flat() *FlatLattice
	Interval() *IntervalLattice
	Map() *MapLattice
	Product() *ProductLattice
	TypeSet() *TypeSetLattice
}

type lattice struct{}

func (*lattice) OneElement() *OneElementLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) TwoElement() *TwoElementLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Flat() *FlatLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Interval() *IntervalLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Map() *MapLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Product() *ProductLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) TypeSet() *TypeSetLattice {
	panic(errUnsupportedTypeConversion)
}

// checkLatticeMatch aborts when elements of incompatible lattices are
// combined. This is a domain-contract violation, not a recoverable error.
func checkLatticeMatch(l1, l2 Lattice, binop string) {
	if !l1.Eq(l2) {
		log.Fatal(
			"Lattice error - Invalid ", binop,
			"\nOperand 1 ∈\n",
			l1.String(),
			"\nOperand 2 ∈\n",
			l2.String(),
		)
	}
}
