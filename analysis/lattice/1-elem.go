package lattice

// oneElementLatticeElement is the only member of the one-element lattice.
type oneElementLatticeElement struct {
	element
}

var oneElem = oneElementLatticeElement{}

func (elementFactory) OneElement() oneElementLatticeElement {
	return oneElem
}

func (oneElementLatticeElement) Lattice() Lattice {
	return oneElementLattice
}

func (oneElementLatticeElement) String() string {
	return colorize.Element("𝕚")
}

func (e oneElementLatticeElement) OneElement() oneElementLatticeElement {
	return e
}

func (e1 oneElementLatticeElement) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

func (e1 oneElementLatticeElement) eq(e2 Element) bool {
	_, ok := e2.(oneElementLatticeElement)
	return ok
}

func (e1 oneElementLatticeElement) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

func (e1 oneElementLatticeElement) geq(e2 Element) bool {
	return e1.eq(e2)
}

func (e1 oneElementLatticeElement) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

func (e1 oneElementLatticeElement) leq(e2 Element) bool {
	return e1.eq(e2)
}

func (e1 oneElementLatticeElement) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

func (e1 oneElementLatticeElement) join(e2 Element) Element {
	return e1
}

func (e1 oneElementLatticeElement) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

func (e1 oneElementLatticeElement) meet(e2 Element) Element {
	return e1
}

func (e1 oneElementLatticeElement) Widen(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "∇")
	return e1.widen(e2)
}

func (e1 oneElementLatticeElement) widen(e2 Element) Element {
	return e1
}
