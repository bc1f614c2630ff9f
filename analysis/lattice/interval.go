package lattice

import (
	"fmt"
	"strconv"
)

// Interval is a member of the interval lattice, delimited by a `low` and a
// `high` bound. The empty interval [∞, -∞] is ⊥ and [-∞, ∞] is ⊤.
type Interval struct {
	element
	low  IntervalBound
	high IntervalBound
}

// Interval creates an interval with possibly infinite bounds.
func (elementFactory) Interval(low IntervalBound, high IntervalBound) Interval {
	return Interval{low: low, high: high}
}

// IntervalFinite creates an interval with finite bounds.
func (elementFactory) IntervalFinite(low int, high int) Interval {
	return Interval{
		low:  FiniteBound(low),
		high: FiniteBound(high),
	}
}

// Lattice retrieves the interval lattice for any interval.
func (Interval) Lattice() Lattice {
	return intervalLattice
}

func (e Interval) String() string {
	_, low := e.low.(PlusInfinity)
	_, high := e.high.(MinusInfinity)
	if low && high {
		return colorize.Element("⊥")
	}
	return "[" + e.low.String() + ", " + e.high.String() + "]"
}

// Interval safely converts an interval.
func (e Interval) Interval() Interval {
	return e
}

// IsBot checks that the interval is equal to ⊥ = [∞, -∞].
func (e Interval) IsBot() bool {
	return e == intervalLattice.Bot().Interval()
}

// IsTop checks that the interval is equal to ⊤ = [-∞, ∞].
func (e Interval) IsTop() bool {
	return e == intervalLattice.Top().Interval()
}

// Eq computes m = o. Performs lattice dynamic type checking.
func (e1 Interval) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes m = o.
func (e1 Interval) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Leq computes m ⊑ o. Performs lattice dynamic type checking.
func (e1 Interval) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes m ⊑ o.
func (e1 Interval) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Interval:
		return e1.low.Geq(e2.low) && e1.high.Leq(e2.high)
	}
	panic(errInternal)
}

// Geq computes m ⊒ o. Performs lattice dynamic type checking.
func (e1 Interval) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes m ⊒ o.
func (e1 Interval) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Interval:
		return e1.low.Leq(e2.low) && e1.high.Geq(e2.high)
	}
	panic(errInternal)
}

// Join computes m ⊔ o. Performs lattice dynamic type checking.
func (e1 Interval) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes m ⊔ o.
// The resulting interval takes the lowest of the lower bounds,
// and the highest of the upper bounds.
func (e1 Interval) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case Interval:
		return Interval{
			low:  e1.low.Min(e2.low),
			high: e1.high.Max(e2.high),
		}
	}
	panic(errInternal)
}

// Meet computes m ⊓ o. Performs lattice dynamic type checking.
func (e1 Interval) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes m ⊓ o.
func (e1 Interval) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case Interval:
		if e1.high.Lt(e2.low) || e2.high.Lt(e1.low) {
			return e1.Lattice().Bot()
		}
		return Interval{
			low:  e1.low.Max(e2.low),
			high: e1.high.Min(e2.high),
		}
	}
	panic(errInternal)
}

// Widen computes m ∇ o. Performs lattice dynamic type checking.
func (e1 Interval) Widen(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen computes m ∇ o. Unstable bounds are extrapolated to infinity:
// a lower bound that decreases drops to -∞ and an upper bound that
// grows jumps to ∞, which cuts off infinite ascending chains.
func (e1 Interval) widen(e2 Element) Element {
	switch e2 := e2.(type) {
	case Interval:
		if e1.IsBot() {
			return e2
		}
		if e2.IsBot() {
			return e1
		}
		low, high := e1.low, e1.high
		if e2.low.Lt(e1.low) {
			low = MinusInfinity{}
		}
		if e2.high.Gt(e1.high) {
			high = PlusInfinity{}
		}
		return Interval{low: low, high: high}
	}
	panic(errInternal)
}

// GetFiniteBounds unpacks the interval bounds, if finite, and panics otherwise.
func (i Interval) GetFiniteBounds() (int, int) {
	if i.low.IsInfinite() || i.high.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite bounds", i))
	}
	return (int)(i.low.(FiniteBound)), (int)(i.high.(FiniteBound))
}

// LowBound returns the lower bound of the interval.
func (i Interval) LowBound() IntervalBound {
	return i.low
}

// HighBound returns the upper bound of the interval.
func (i Interval) HighBound() IntervalBound {
	return i.high
}

// Low returns the lower bound as an integer, if finite, and panics otherwise.
func (i Interval) Low() int {
	if i.low.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite lower bound", i))
	}
	return (int)(i.low.(FiniteBound))
}

// High returns the upper bound as an integer, if finite, and panics otherwise.
func (i Interval) High() int {
	if i.high.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite upper bound", i))
	}
	return (int)(i.high.(FiniteBound))
}

// IntervalBound is an interface implemented by all interval lattice bounds
// i.e., any FiniteBound value, PlusInfinity and MinusInfinity.
type IntervalBound interface {
	String() string

	// IsInfinite checks whether the interval bound is infinite.
	IsInfinite() bool

	// Eq checks for interval bound equality.
	Eq(IntervalBound) bool
	// Leq computes b1 ≤ b2, where -∞ ≤ c ≤ ∞ for any c ∈ ℤ.
	Leq(IntervalBound) bool
	// Geq computes b1 ≥ b2, where ∞ ≥ c ≥ -∞ for any c ∈ ℤ.
	Geq(IntervalBound) bool
	// Lt computes b1 < b2, where -∞ < c < ∞ for any c ∈ ℤ.
	Lt(IntervalBound) bool
	// Gt computes b1 > b2, where ∞ > c > -∞ for any c ∈ ℤ.
	Gt(IntervalBound) bool

	// Plus computes b1 + b2. An infinity absorbs any finite addend;
	// ∞ + -∞ panics.
	Plus(IntervalBound) IntervalBound
	// Minus computes b1 - b2. Subtracting an infinity from a finite
	// bound yields the opposite infinity; ∞ - ∞ and -∞ - (-∞) panic.
	Minus(IntervalBound) IntervalBound
	// Mult computes b1 * b2. The sign of a finite factor decides the
	// sign of an infinite product; 0 * ±∞ and ∞ * -∞ panic.
	Mult(IntervalBound) IntervalBound
	// Div computes b1 / b2. A finite bound divided by an infinity is 0,
	// an infinity divided by a finite bound keeps (or flips) its sign;
	// 0 / 0 and ±∞ / ±∞ panic.
	Div(IntervalBound) IntervalBound
	// Max computes max(b1, b2).
	Max(IntervalBound) IntervalBound
	// Min computes min(b1, b2).
	Min(IntervalBound) IntervalBound
}

type (
	// FiniteBound is used to represent finite limits of an interval value.
	FiniteBound int
	// PlusInfinity represents ∞.
	PlusInfinity struct{}
	// MinusInfinity represents -∞.
	MinusInfinity struct{}
)

// IsInfinite is false for the finite bound.
func (FiniteBound) IsInfinite() bool {
	return false
}

func (b FiniteBound) String() string {
	return colorize.Element(strconv.Itoa((int)(b)))
}

// Eq compares for equality with another bound. Two finite bounds
// are equal if their underlying values are equal.
func (b1 FiniteBound) Eq(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 == b2
	}
	return false
}

func (b1 FiniteBound) Leq(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 <= b2
	case PlusInfinity:
		return true
	}
	return false
}

func (b1 FiniteBound) Geq(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 >= b2
	case MinusInfinity:
		return true
	}
	return false
}

func (b1 FiniteBound) Lt(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 < b2
	case PlusInfinity:
		return true
	}
	return false
}

func (b1 FiniteBound) Gt(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 > b2
	case MinusInfinity:
		return true
	}
	return false
}

func (b1 FiniteBound) Plus(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 + b2
	case PlusInfinity:
		return PlusInfinity{}
	case MinusInfinity:
		return MinusInfinity{}
	}
	return nil
}

func (b1 FiniteBound) Minus(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 - b2
	case PlusInfinity:
		return MinusInfinity{}
	case MinusInfinity:
		return PlusInfinity{}
	}
	return nil
}

func (b1 FiniteBound) Mult(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 * b2
	case PlusInfinity:
		switch {
		case b1 > 0:
			return PlusInfinity{}
		case b1 == 0:
			panic("0 * ∞")
		}
		return MinusInfinity{}
	case MinusInfinity:
		switch {
		case b1 > 0:
			return MinusInfinity{}
		case b1 == 0:
			panic("0 * -∞")
		}
		return PlusInfinity{}
	}
	return nil
}

func (b1 FiniteBound) Div(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		switch {
		case b2 == 0 && b1 > 0:
			return PlusInfinity{}
		case b2 == 0 && b1 < 0:
			return MinusInfinity{}
		case b1 == 0 && b2 == 0:
			panic("0 / 0")
		}
		return b1 / b2
	case PlusInfinity, MinusInfinity:
		return FiniteBound(0)
	}
	return nil
}

func (b1 FiniteBound) Max(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if b1 < b2 {
			return b2
		}
		return b1
	case PlusInfinity:
		return b2
	}
	return b1
}

func (b1 FiniteBound) Min(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if b1 < b2 {
			return b1
		}
		return b2
	case MinusInfinity:
		return b2
	}
	return b1
}

// IsInfinite is true for ∞.
func (PlusInfinity) IsInfinite() bool {
	return true
}

func (PlusInfinity) String() string {
	return colorize.Element("∞")
}

func (PlusInfinity) Eq(b2 IntervalBound) bool {
	_, ok := b2.(PlusInfinity)
	return ok
}

func (PlusInfinity) Leq(b2 IntervalBound) bool {
	_, ok := b2.(PlusInfinity)
	return ok
}

// Geq is always true as ∞ is the largest possible bound.
func (PlusInfinity) Geq(IntervalBound) bool {
	return true
}

// Lt is always false as ∞ is the largest possible bound.
func (PlusInfinity) Lt(IntervalBound) bool {
	return false
}

func (PlusInfinity) Gt(b2 IntervalBound) bool {
	_, ok := b2.(PlusInfinity)
	return !ok
}

func (PlusInfinity) Plus(b2 IntervalBound) IntervalBound {
	switch b2.(type) {
	case MinusInfinity:
		panic("∞ + -∞")
	}
	return PlusInfinity{}
}

func (PlusInfinity) Minus(b2 IntervalBound) IntervalBound {
	switch b2.(type) {
	case PlusInfinity:
		panic("∞ - ∞")
	}
	return PlusInfinity{}
}

func (PlusInfinity) Mult(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		switch {
		case b2 < 0:
			return MinusInfinity{}
		case b2 == 0:
			panic("∞ * 0")
		}
	case MinusInfinity:
		panic("∞ * -∞")
	}
	return PlusInfinity{}
}

func (PlusInfinity) Div(b2 IntervalBound) IntervalBound {
	switch b2.(type) {
	case PlusInfinity:
		panic("∞ / ∞")
	case MinusInfinity:
		panic("∞ / -∞")
	}
	return PlusInfinity{}
}

func (PlusInfinity) Max(IntervalBound) IntervalBound {
	return PlusInfinity{}
}

func (PlusInfinity) Min(b2 IntervalBound) IntervalBound {
	return b2
}

// IsInfinite is true for -∞.
func (MinusInfinity) IsInfinite() bool {
	return true
}

func (MinusInfinity) String() string {
	return colorize.Element("-∞")
}

func (MinusInfinity) Eq(b2 IntervalBound) bool {
	_, ok := b2.(MinusInfinity)
	return ok
}

// Leq is always true as -∞ is the smallest possible bound.
func (MinusInfinity) Leq(IntervalBound) bool {
	return true
}

func (MinusInfinity) Geq(b2 IntervalBound) bool {
	_, ok := b2.(MinusInfinity)
	return ok
}

func (MinusInfinity) Lt(b2 IntervalBound) bool {
	_, ok := b2.(MinusInfinity)
	return !ok
}

// Gt is always false as -∞ is the smallest possible bound.
func (MinusInfinity) Gt(IntervalBound) bool {
	return false
}

func (MinusInfinity) Plus(b IntervalBound) IntervalBound {
	switch b.(type) {
	case PlusInfinity:
		panic("-∞ + ∞")
	}
	return MinusInfinity{}
}

func (MinusInfinity) Minus(b IntervalBound) IntervalBound {
	switch b.(type) {
	case MinusInfinity:
		panic("-∞ - (-∞)")
	}
	return MinusInfinity{}
}

func (MinusInfinity) Mult(b IntervalBound) IntervalBound {
	switch b := b.(type) {
	case FiniteBound:
		switch {
		case b == 0:
			panic("-∞ * 0")
		case b < 0:
			return PlusInfinity{}
		}
	case PlusInfinity:
		panic("-∞ * ∞")
	case MinusInfinity:
		return PlusInfinity{}
	}
	return MinusInfinity{}
}

func (MinusInfinity) Div(b IntervalBound) IntervalBound {
	switch b := b.(type) {
	case FiniteBound:
		if b < 0 {
			return PlusInfinity{}
		}
	case PlusInfinity:
		panic("-∞ / ∞")
	case MinusInfinity:
		panic("-∞ / -∞")
	}
	return MinusInfinity{}
}

func (MinusInfinity) Max(b IntervalBound) IntervalBound {
	return b
}

func (MinusInfinity) Min(IntervalBound) IntervalBound {
	return MinusInfinity{}
}
