package lattice

// twoElementLatticeElement is a member of the two-element lattice:
// true is ⊤ and false is ⊥.
type twoElementLatticeElement bool

var (
	twoElemBot twoElementLatticeElement = false
	twoElemTop twoElementLatticeElement = true
)

func (elementFactory) TwoElement(b bool) twoElementLatticeElement {
	return twoElementLatticeElement(b)
}

func (twoElementLatticeElement) Lattice() Lattice {
	return twoElementLattice
}

// AsBool unwraps the two-element lattice member.
func (b twoElementLatticeElement) AsBool() bool {
	return bool(b)
}

func (b twoElementLatticeElement) String() string {
	if b {
		return colorize.Element("⊤")
	}
	return colorize.Element("⊥")
}

func (b twoElementLatticeElement) TwoElement() twoElementLatticeElement {
	return b
}

func (e1 twoElementLatticeElement) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

func (e1 twoElementLatticeElement) eq(e2 Element) bool {
	return e1 == e2
}

func (e1 twoElementLatticeElement) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

func (e1 twoElementLatticeElement) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case twoElementLatticeElement:
		return (bool)(e1 || !e2)
	default:
		panic(errInternal)
	}
}

func (e1 twoElementLatticeElement) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

func (e1 twoElementLatticeElement) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case twoElementLatticeElement:
		return (bool)(!e1 || e2)
	default:
		panic(errInternal)
	}
}

func (e1 twoElementLatticeElement) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

func (e1 twoElementLatticeElement) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case twoElementLatticeElement:
		return e1 || e2
	default:
		panic(errInternal)
	}
}

func (e1 twoElementLatticeElement) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

func (e1 twoElementLatticeElement) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case twoElementLatticeElement:
		return e1 && e2
	default:
		panic(errInternal)
	}
}

func (e1 twoElementLatticeElement) Widen(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen falls back on join; the two-element lattice has finite height.
func (e1 twoElementLatticeElement) widen(e2 Element) Element {
	return e1.join(e2)
}

// Conversions for the remaining lattice element kinds all fail.

func (twoElementLatticeElement) OneElement() oneElementLatticeElement {
	panic(errUnsupportedTypeConversion)
}

func (twoElementLatticeElement) Flat() FlatElement {
	panic(errUnsupportedTypeConversion)
}

func (twoElementLatticeElement) Interval() Interval {
	panic(errUnsupportedTypeConversion)
}

func (twoElementLatticeElement) Map() Map {
	panic(errUnsupportedTypeConversion)
}

func (twoElementLatticeElement) Product() Product {
	panic(errUnsupportedTypeConversion)
}

func (twoElementLatticeElement) TypeSetValue() TypeSetValue {
	panic(errUnsupportedTypeConversion)
}
