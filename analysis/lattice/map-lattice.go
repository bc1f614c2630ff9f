package lattice

// MapLattice is the lattice of maps from an unbounded string domain to
// members of a fixed range lattice. The domain is infinite so it cannot
// be enumerated; it is carried as a name for printing purposes only.
type MapLattice struct {
	lattice
	rng Lattice
	dom string
	bot *Map
}

// Map creates a map lattice with the given range lattice and a name
// describing the domain.
func (latticeFactory) Map(rng Lattice, dom string) *MapLattice {
	m := new(MapLattice)
	m.rng = rng
	m.dom = dom
	return m
}

// Top is not representable for an infinite domain.
func (l *MapLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *MapLattice) Bot() Element {
	if l.bot == nil {
		l.bot = new(Map)
		*l.bot = newMap(l)
	}
	return *l.bot
}

func (l1 *MapLattice) Eq(l2 Lattice) bool {
	if l1 == l2 {
		return true
	}
	switch l2 := l2.(type) {
	case *MapLattice:
		return l1.dom == l2.dom && l1.rng.Eq(l2.rng)
	default:
		return false
	}
}

func (l *MapLattice) String() string {
	return colorize.Lattice(l.dom) + " → " + l.rng.String()
}

// Range returns the range lattice.
func (l *MapLattice) Range() Lattice {
	return l.rng
}

// RngBot returns the bottom member of the range lattice, implicitly
// bound to every key without an explicit binding.
func (l *MapLattice) RngBot() Element {
	return l.rng.Bot()
}

func (l *MapLattice) Map() *MapLattice {
	return l
}
