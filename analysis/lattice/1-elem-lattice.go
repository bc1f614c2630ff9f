package lattice

// OneElementLattice represents the one-element lattice, where ⊤ = ⊥.
type OneElementLattice struct {
	lattice
}

// oneElementLattice is a singleton instantiation of the one-element lattice.
var oneElementLattice = &OneElementLattice{}

// OneElement returns the one-element lattice.
func (latticeFactory) OneElement() *OneElementLattice {
	return oneElementLattice
}

func (*OneElementLattice) Top() Element {
	return oneElem
}

func (*OneElementLattice) Bot() Element {
	return oneElem
}

// OneElement converts the one-element lattice to its concrete type form.
func (*OneElementLattice) OneElement() *OneElementLattice {
	return oneElementLattice
}

// Eq checks that l2 is the one-element lattice.
func (l1 *OneElementLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*OneElementLattice)
	return ok
}

func (*OneElementLattice) String() string {
	return colorize.Lattice("𝕀")
}
