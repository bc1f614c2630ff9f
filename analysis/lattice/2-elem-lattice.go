package lattice

// TwoElementLattice is the lattice with only a top and a bottom member.
type TwoElementLattice struct {
	lattice
}

var twoElementLattice = &TwoElementLattice{}

func (latticeFactory) TwoElement() *TwoElementLattice {
	return twoElementLattice
}

func (*TwoElementLattice) Top() Element {
	return twoElemTop
}

func (*TwoElementLattice) Bot() Element {
	return twoElemBot
}

func (l1 *TwoElementLattice) Eq(l2 Lattice) bool {
	switch l2.(type) {
	case *TwoElementLattice:
		return true
	default:
		return false
	}
}

func (*TwoElementLattice) String() string {
	return colorize.Lattice("⌶")
}

func (l *TwoElementLattice) TwoElement() *TwoElementLattice {
	return l
}
