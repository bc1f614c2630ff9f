package lattice

import (
	"errors"
	"fmt"

	"github.com/gala-analyzer/gala/utils"

	"github.com/fatih/color"
)

// colorize bundles the sprint functions used when pretty-printing
// lattices and their elements.
var colorize = struct {
	Lattice    func(...interface{}) string
	LatticeCon func(...interface{}) string
	Element    func(...interface{}) string
	Const      func(...interface{}) string
	Key        func(...interface{}) string
}{
	Lattice: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	LatticeCon: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgMagenta).SprintFunc())(is...)
	},
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
	Key: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
}

var (
	errUnsupportedTypeConversion = errors.New("UnsupportedTypeConversion")
	errUnsupportedOperation      = errors.New("UnsupportedOperationError")
	errInternal                  = errors.New("internal error")
	errPatternMatch              = func(v interface{}) error {
		return fmt.Errorf("invalid pattern match: %v %T", v, v)
	}
)

// Element is implemented by all members of all lattices. Every operation
// returns a new value; elements are never mutated, so states cached by the
// interprocedural analysis stay valid after further computation elsewhere.
type Element interface {
	// Type conversion API
	OneElement() oneElementLatticeElement
	TwoElement() twoElementLatticeElement
	Flat() FlatElement
	Interval() Interval
	Map() Map
	Product() Product
	TypeSetValue() TypeSetValue

	Lattice() Lattice

	// External API for lattice element operations.
	// They dynamically perform lattice type checking.
	Leq(Element) bool
	Geq(Element) bool
	Eq(Element) bool
	Join(Element) Element
	Meet(Element) Element
	// Widen computes e1 ∇ e2, where e1 is the previous iterate and e2 the
	// incoming one. The result is an upper bound of both, and repeated
	// application along any ascending chain must stabilize.
	Widen(Element) Element

	// Internal lattice element operations, that skip
	// lattice type checking. Only use under the
	// assumption of lattice type safety.
	leq(Element) bool
	geq(Element) bool
	eq(Element) bool
	join(Element) Element
	meet(Element) Element
	widen(Element) Element

	String() string
}

// element is the base for all lattice element implementations.
type element struct {
	lattice Lattice
}

func (e element) Lattice() Lattice {
	return e.lattice
}

func (element) OneElement() oneElementLatticeElement {
	panic(errUnsupportedTypeConversion)
}

func (element) TwoElement() twoElementLatticeElement {
	panic(errUnsupportedTypeConversion)
}

func (element) Flat() FlatElement {
	panic(errUnsupportedTypeConversion)
}

func (element) Interval() Interval {
	panic(errUnsupportedTypeConversion)
}

func (element) Map() Map {
	panic(errUnsupportedTypeConversion)
}

func (element) Product() Product {
	panic(errUnsupportedTypeConversion)
}

func (element) TypeSetValue() TypeSetValue {
	panic(errUnsupportedTypeConversion)
}
