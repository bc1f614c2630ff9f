package lattice

import (
	"fmt"

	i "github.com/gala-analyzer/gala/utils/indenter"
)

// FlatLattice is the common basis of all flat lattices. It owns the
// canonical ⊤ and ⊥ members of the outer lattice that embeds it.
type FlatLattice struct {
	top FlatTop
	bot FlatBot
}

func (l *FlatLattice) init(outer Lattice) {
	inner := flatElementBase{element{outer}}
	l.top = FlatTop{inner}
	l.bot = FlatBot{inner}
}

func (l *FlatLattice) Top() Element {
	return l.top
}

func (l *FlatLattice) Bot() Element {
	return l.bot
}

// ConstantPropagationLattice is the flat lattice over all constant values.
type ConstantPropagationLattice struct {
	lattice
	FlatLattice
}

var constantPropagationLattice = func() *ConstantPropagationLattice {
	lat := &ConstantPropagationLattice{}
	lat.init(lat)
	return lat
}()

func (latticeFactory) ConstantPropagation() *ConstantPropagationLattice {
	return constantPropagationLattice
}

func (l1 *ConstantPropagationLattice) Eq(l2 Lattice) bool {
	switch l2.(type) {
	case *ConstantPropagationLattice:
		return true
	default:
		return false
	}
}

func (ConstantPropagationLattice) String() string {
	return colorize.Lattice("Constant")
}

func (l *ConstantPropagationLattice) Flat() *FlatLattice {
	return &l.FlatLattice
}

// FlatFiniteLattice is a flat lattice over a fixed finite set of values.
type FlatFiniteLattice struct {
	lattice
	FlatLattice
	dom map[any]Element
}

func (latticeFactory) Flat(dom ...any) *FlatFiniteLattice {
	lat := new(FlatFiniteLattice)
	lat.init(lat)
	lat.dom = make(map[any]Element)
	for _, el := range dom {
		lat.dom[el] = flatElement{
			element{lat},
			el,
		}
	}
	return lat
}

func (l *FlatFiniteLattice) Flat() *FlatLattice {
	return &l.FlatLattice
}

func (l *FlatFiniteLattice) String() string {
	strs := []fmt.Stringer{}
	for _, el := range l.dom {
		strs = append(strs, el)
	}
	return i.Start(colorize.Lattice("⊥") + " < {").
		NestSep(",", strs...).
		End("} < " + colorize.Lattice("T"))
}

func (l1 *FlatFiniteLattice) Eq(l2 Lattice) bool {
	if l1 == l2 {
		return true
	}
	switch l2 := l2.(type) {
	case *FlatFiniteLattice:
		if len(l1.dom) != len(l2.dom) {
			return false
		}
		for e1 := range l1.dom {
			if _, included := l2.dom[e1]; !included {
				return false
			}
		}
		return true
	default:
		return false
	}
}
