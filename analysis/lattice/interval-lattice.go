package lattice

// IntervalLattice is the lattice of integer intervals with infinite
// bounds.
type IntervalLattice struct {
	lattice
}

var intervalLattice = &IntervalLattice{}

// Interval yields the interval lattice.
func (latticeFactory) Interval() *IntervalLattice {
	return intervalLattice
}

// Top yields [-∞, +∞].
func (*IntervalLattice) Top() Element {
	return Interval{low: MinusInfinity{}, high: PlusInfinity{}}
}

// Bot yields the empty interval, written [+∞, -∞].
func (*IntervalLattice) Bot() Element {
	return Interval{low: PlusInfinity{}, high: MinusInfinity{}}
}

func (*IntervalLattice) String() string {
	z := colorize.Lattice("ℤ")
	return "[" + z + ", " + z + "]"
}

// Eq checks for equality with another lattice.
func (*IntervalLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*IntervalLattice)
	return ok
}

// Interval safely converts to the interval lattice.
func (l *IntervalLattice) Interval() *IntervalLattice {
	return l
}
