package lattice

import (
	"fmt"
	"sort"

	"github.com/benbjohnson/immutable"

	i "github.com/gala-analyzer/gala/utils/indenter"
)

// Map is a member of a map lattice with string keys. Keys absent from the
// backing structure are implicitly bound to the bottom member of the range
// lattice, so the empty map is the bottom of its map lattice.
type Map struct {
	element
	mp *immutable.Map[string, Element]
}

// newMap creates an empty map belonging to the given map lattice.
func newMap(lat *MapLattice) Map {
	return Map{
		element{lat},
		immutable.NewMap[string, Element](nil),
	}
}

// Map generates a map factory converting a set of bindings to
// members of the given map lattice.
func (elementFactory) Map(lat Lattice) func(bindings map[string]Element) Map {
	switch lat := lat.(type) {
	case *MapLattice:
		return func(bindings map[string]Element) Map {
			el := newMap(lat)
			for x, y := range bindings {
				if !y.Lattice().Eq(lat.rng) {
					panic(errUnsupportedTypeConversion)
				}
				el.mp = el.mp.Set(x, y)
			}
			return el
		}
	default:
		panic("Attempted creating a map element with a non-map lattice")
	}
}

// Map safely converts to a map element.
func (e Map) Map() Map {
	return e
}

// Size returns the number of explicit bindings in the map.
func (e Map) Size() int {
	return e.mp.Len()
}

// Get retrieves the value bound at the given key. Absent keys are bound
// to the bottom member of the range lattice. The returned boolean
// indicates whether an explicit binding was found.
func (e Map) Get(x string) (Element, bool) {
	if v, found := e.mp.Get(x); found {
		return v, true
	}
	return e.lattice.(*MapLattice).rng.Bot(), false
}

// GetOrDefault retrieves the value bound at the given key, or the
// provided fallback when no explicit binding exists.
func (e Map) GetOrDefault(x string, def Element) Element {
	if v, found := e.mp.Get(x); found {
		return v
	}
	return def
}

// Find locates a binding satisfying the given predicate.
func (e Map) Find(f func(x string, y Element) bool) (string, Element, bool) {
	for itr := e.mp.Iterator(); !itr.Done(); {
		k, v, _ := itr.Next()
		if f(k, v) {
			return k, v, true
		}
	}
	return "", nil, false
}

// Update returns a map with an updated binding for the given key.
// Performs dynamic lattice type checking.
func (e1 Map) Update(x string, e2 Element) Map {
	checkLatticeMatch(e1.lattice.(*MapLattice).rng, e2.Lattice(), "["+x+" ↦ ·]")
	return e1.update(x, e2)
}

// update returns a map with an updated binding for the given key.
func (e1 Map) update(x string, e2 Element) Map {
	e1.mp = e1.mp.Set(x, e2)
	return e1
}

// WeakUpdate returns a map where the given element is joined onto the
// previous binding for the key.
func (e1 Map) WeakUpdate(x string, e2 Element) Map {
	prev, found := e1.Get(x)
	if found {
		return e1.Update(x, prev.Join(e2))
	}
	return e1.Update(x, e2)
}

// Remove returns a map without an explicit binding for the given key,
// implicitly re-binding it to the bottom member of the range lattice.
func (e1 Map) Remove(x string) Map {
	e1.mp = e1.mp.Delete(x)
	return e1
}

// ForEach applies the given procedure to each explicit binding.
func (e Map) ForEach(do func(string, Element)) {
	for itr := e.mp.Iterator(); !itr.Done(); {
		k, v, _ := itr.Next()
		do(k, v)
	}
}

// Keys returns the explicitly bound keys in lexicographic order.
func (e Map) Keys() []string {
	keys := make([]string, 0, e.mp.Len())
	for itr := e.mp.Iterator(); !itr.Done(); {
		k, _, _ := itr.Next()
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e Map) String() string {
	if e.mp.Len() == 0 {
		return "[]"
	}
	strs := []string{}
	e.ForEach(func(x string, y Element) {
		strs = append(strs, fmt.Sprintf("%s ↦ %s", colorize.Key(x), y))
	})
	sort.Strings(strs)
	return i.Start("[").NestStringsSep(",", strs...).End("]")
}

// Eq computes m = o. Performs lattice dynamic type checking.
func (e1 Map) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes m = o.
func (e1 Map) eq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Map:
		if e1.mp == e2.mp {
			return true
		}
		return e1.leq(e2) && e1.geq(e2)
	default:
		return false
	}
}

// Leq computes m ⊑ o. Performs lattice dynamic type checking.
func (e1 Map) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes m ⊑ o.
func (e1 Map) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Map:
		if e1.mp == e2.mp {
			return true
		}
		for itr := e1.mp.Iterator(); !itr.Done(); {
			k, v1, _ := itr.Next()
			v2, _ := e2.Get(k)
			if !v1.leq(v2) {
				return false
			}
		}
		return true
	default:
		panic(errInternal)
	}
}

// Geq computes m ⊒ o. Performs lattice dynamic type checking.
func (e1 Map) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes m ⊒ o.
func (e1 Map) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Map:
		return e2.leq(e1)
	default:
		panic(errInternal)
	}
}

// Join computes m ⊔ o. Performs lattice dynamic type checking.
func (e1 Map) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes m ⊔ o.
func (e1 Map) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case Map:
		return e1.MonoJoin(e2)
	default:
		panic(errInternal)
	}
}

// MonoJoin is a monomorphic variant of m ⊔ o for maps.
func (e1 Map) MonoJoin(e2 Map) Map {
	if e1.mp == e2.mp {
		return e1
	} else if e1.Size() == 0 {
		return e2
	} else if e2.Size() == 0 {
		return e1
	} else if e1.Size() < e2.Size() {
		e1, e2 = e2, e1
	}

	for itr := e2.mp.Iterator(); !itr.Done(); {
		k, v, _ := itr.Next()
		if prev, found := e1.mp.Get(k); found {
			if !v.eq(prev) {
				e1 = e1.update(k, prev.join(v))
			}
		} else {
			e1 = e1.update(k, v)
		}
	}
	return e1
}

// Meet computes m ⊓ o. Performs lattice dynamic type checking.
func (e1 Map) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes m ⊓ o.
func (e1 Map) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case Map:
		return e1.MonoMeet(e2)
	default:
		panic(errInternal)
	}
}

// MonoMeet is a monomorphic variant of m ⊓ o for maps. Keys without an
// explicit binding on either side meet with ⊥ and are left implicit.
func (e1 Map) MonoMeet(e2 Map) Map {
	if e1.mp == e2.mp {
		return e1
	}
	res := newMap(e1.lattice.(*MapLattice))
	for itr := e1.mp.Iterator(); !itr.Done(); {
		k, v1, _ := itr.Next()
		if v2, found := e2.mp.Get(k); found {
			res = res.update(k, v1.meet(v2))
		}
	}
	return res
}

// Widen computes m ∇ o. Performs lattice dynamic type checking.
func (e1 Map) Widen(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "∇")
	return e1.widen(e2)
}

// widen computes m ∇ o pointwise over the explicit bindings of both maps.
func (e1 Map) widen(e2 Element) Element {
	switch e2 := e2.(type) {
	case Map:
		return e1.MonoWiden(e2)
	default:
		panic(errInternal)
	}
}

// MonoWiden is a monomorphic variant of m ∇ o for maps.
func (e1 Map) MonoWiden(e2 Map) Map {
	if e1.mp == e2.mp {
		return e1
	}
	bot := e1.lattice.(*MapLattice).rng.Bot()
	res := e1
	for itr := e2.mp.Iterator(); !itr.Done(); {
		k, v2, _ := itr.Next()
		v1, found := e1.mp.Get(k)
		if !found {
			v1 = bot
		}
		res = res.update(k, v1.widen(v2))
	}
	return res
}
