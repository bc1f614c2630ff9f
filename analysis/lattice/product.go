package lattice

import (
	"fmt"

	"github.com/benbjohnson/immutable"

	i "github.com/gala-analyzer/gala/utils/indenter"
)

// Product is a member of a product lattice, holding one element for each
// component lattice of the product.
type Product struct {
	element
	prod *immutable.List[Element]
}

func (p Product) Product() Product {
	return p
}

func newProduct(lat Lattice) Product {
	e := Product{}
	lat2 := lat.Product()
	lst := immutable.NewListBuilder[Element]()

	for _, lat := range lat2.product {
		lst.Append(lat.Bot())
	}
	e.lattice = lat2
	e.prod = lst.List()
	return e
}

func (elementFactory) Product(lat Lattice) func(members ...Element) Product {
	switch lat := lat.(type) {
	case *ProductLattice:
		return func(members ...Element) Product {
			el := lat.Bot().Product()
			for i, x := range members {
				el = el.Update(i, x)
			}
			return el
		}
	default:
		panic("Attempted creating a product element with a non-product lattice")
	}
}

func (e Product) String() string {
	strs := []fmt.Stringer{}
	for itr := e.prod.Iterator(); !itr.Done(); {
		_, el := itr.Next()
		strs = append(strs, el)
	}
	return i.Start("(").NestSep(",", strs...).End(")")
}

// forall checks the given property for every component of the product.
func (e Product) forall(f func(i int, el Element) bool) bool {
	for itr := e.prod.Iterator(); !itr.Done(); {
		i, el := itr.Next()
		if !f(i, el) {
			return false
		}
	}
	return true
}

func (e1 Product) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "=")
	return e1.eq(e2)
}

func (e1 Product) eq(e2 Element) bool {
	o, ok := e2.(Product)
	if !ok {
		return false
	}
	return e1.forall(func(i int, el Element) bool {
		return el.eq(o.Get(i))
	})
}

func (e1 Product) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊒")
	return e1.geq(e2)
}

func (e1 Product) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Product:
		return e1.forall(func(i int, el Element) bool {
			return el.geq(e2.Get(i))
		})
	default:
		panic(errInternal)
	}
}

func (e1 Product) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊑")
	return e1.leq(e2)
}

func (e1 Product) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Product:
		return e1.forall(func(i int, el Element) bool {
			return el.leq(e2.Get(i))
		})
	default:
		panic(errInternal)
	}
}

func (e1 Product) Join(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊔")
	return e1.join(e2)
}

// MonoJoin is a monomorphic variant of m ⊔ o for products.
func (e1 Product) MonoJoin(e2 Product) Product {
	if e1.prod == e2.prod {
		return e1
	}

	lst := immutable.NewListBuilder[Element]()
	for itr := e2.prod.Iterator(); !itr.Done(); {
		i, el := itr.Next()
		lst.Append(el.join(e1.Get(i)))
	}
	e1.prod = lst.List()
	return e1
}

func (e1 Product) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case Product:
		return e1.MonoJoin(e2)
	default:
		panic(errInternal)
	}
}

func (e1 Product) Meet(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// MonoMeet is a monomorphic variant of m ⊓ o for products.
func (e1 Product) MonoMeet(e2 Product) Product {
	if e1.prod == e2.prod {
		return e1
	}

	lst := immutable.NewListBuilder[Element]()
	for itr := e2.prod.Iterator(); !itr.Done(); {
		i, el := itr.Next()
		lst.Append(el.meet(e1.Get(i)))
	}
	e1.prod = lst.List()
	return e1
}

func (e1 Product) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case Product:
		return e1.MonoMeet(e2)
	default:
		panic(errInternal)
	}
}

func (e1 Product) Widen(e2 Element) Element {
	checkLatticeMatch(e1.lattice, e2.Lattice(), "∇")
	return e1.widen(e2)
}

// MonoWiden is a monomorphic variant of m ∇ o for products, widening
// componentwise.
func (e1 Product) MonoWiden(e2 Product) Product {
	if e1.prod == e2.prod {
		return e1
	}

	lst := immutable.NewListBuilder[Element]()
	for itr := e1.prod.Iterator(); !itr.Done(); {
		i, el := itr.Next()
		lst.Append(el.widen(e2.Get(i)))
	}
	e1.prod = lst.List()
	return e1
}

func (e1 Product) widen(e2 Element) Element {
	switch e2 := e2.(type) {
	case Product:
		return e1.MonoWiden(e2)
	default:
		panic(errInternal)
	}
}

// Update returns a product with the i'th component replaced.
// Performs dynamic lattice type checking.
func (e1 Product) Update(i int, e2 Element) Product {
	prodLat := e1.lattice.Product()
	if i < 0 || len(prodLat.product) <= i {
		panic(fmt.Sprintf("Invalid index %d for product lattice:\n%s", i, prodLat))
	}
	checkLatticeMatch(prodLat.product[i], e2.Lattice(), fmt.Sprintf("(·)(%d) := ·", i))
	return e1.update(i, e2)
}

func (e1 Product) update(i int, e2 Element) Product {
	e1.prod = e1.prod.Set(i, e2)
	return e1
}

// Get retrieves the i'th component of the product.
func (e Product) Get(i int) Element {
	return e.prod.Get(i)
}
