package lattice

import (
	"fmt"

	i "github.com/gala-analyzer/gala/utils/indenter"
)

// ProductLattice is the pointwise product of a fixed list of lattices.
// Top and bottom are cached after first use.
type ProductLattice struct {
	lattice
	top *Product
	bot *Product

	product []Lattice
}

func (latticeFactory) Product(lats ...Lattice) *ProductLattice {
	return &ProductLattice{product: lats}
}

func (p *ProductLattice) Lattices() []Lattice {
	return p.product
}

func (p *ProductLattice) Product() *ProductLattice {
	return p
}

// Size returns the number of component lattices.
func (p *ProductLattice) Size() int {
	return len(p.product)
}

// Get retrieves the i'th component lattice.
func (p *ProductLattice) Get(i int) Lattice {
	return p.product[i]
}

func (l1 *ProductLattice) Eq(l2 Lattice) bool {
	if l1 == l2 {
		return true
	}
	o, ok := l2.(*ProductLattice)
	if !ok || l1.Size() != o.Size() {
		return false
	}
	for i, lat := range l1.product {
		if !lat.Eq(o.product[i]) {
			return false
		}
	}
	return true
}

func (p *ProductLattice) Top() Element {
	if p.top == nil {
		el := newProduct(p)
		for i, lat := range p.product {
			el = el.update(i, lat.Top())
		}
		p.top = &el
	}
	return *p.top
}

func (p *ProductLattice) Bot() Element {
	if p.bot == nil {
		el := newProduct(p)
		p.bot = &el
	}
	return *p.bot
}

func (p *ProductLattice) String() string {
	strs := make([]fmt.Stringer, 0, len(p.product))
	for _, lat := range p.product {
		strs = append(strs, lat)
	}
	return i.Start("(").NestSep(" ×", strs...).End(")")
}
