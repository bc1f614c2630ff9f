package lattice

import "testing"

func productFixture() (*ProductLattice, func(members ...Element) Product) {
	lat := Create().Lattice().Product(
		Create().Lattice().Interval(),
		Create().Lattice().TwoElement(),
	)
	return lat, Create().Element().Product(lat)
}

func TestProductComparison(t *testing.T) {
	lat, prod := productFixture()
	iv := Elements().IntervalFinite
	flag := Elements().TwoElement

	tests := []struct {
		a, b      Element
		predicate func(Element) bool
		symbol    string
		expected  bool
	}{
		{lat.Bot(), lat.Bot(), lat.Bot().Eq, "=", true},
		{lat.Bot(), lat.Top(), lat.Bot().Leq, "⊑", true},
		{lat.Top(), lat.Bot(), lat.Top().Leq, "⊑", false},
		{lat.Top(), lat.Bot(), lat.Top().Geq, "⊒", true},
		{prod(iv(1, 2), flag(false)), prod(iv(0, 3), flag(false)),
			prod(iv(1, 2), flag(false)).Leq, "⊑", true},
		// A single greater component breaks the pointwise order.
		{prod(iv(1, 2), flag(true)), prod(iv(0, 3), flag(false)),
			prod(iv(1, 2), flag(true)).Leq, "⊑", false},
		{prod(iv(1, 2), flag(true)), prod(iv(1, 2), flag(true)),
			prod(iv(1, 2), flag(true)).Eq, "=", true},
	}

	for _, test := range tests {
		if res := test.predicate(test.b); res != test.expected {
			t.Errorf("%s %s %s = %v, expected %v\n", test.a, test.symbol, test.b, res, test.expected)
		} else {
			t.Logf("%s %s %s = %v\n", test.a, test.symbol, test.b, res)
		}
	}
}

func TestProductJoin(t *testing.T) {
	lat, prod := productFixture()
	iv := Elements().IntervalFinite
	flag := Elements().TwoElement

	tests := []struct {
		a, b, expected Element
	}{
		{lat.Bot(), lat.Bot(), lat.Bot()},
		{lat.Bot(), lat.Top(), lat.Top()},
		{prod(iv(1, 2), flag(false)), lat.Bot(), prod(iv(1, 2), flag(false))},
		{prod(iv(1, 2), flag(false)), prod(iv(5, 6), flag(true)), prod(iv(1, 6), flag(true))},
		{prod(iv(0, 1), flag(true)), prod(iv(1, 2), flag(false)), prod(iv(0, 2), flag(true))},
	}

	for _, test := range tests {
		res := test.a.Join(test.b)
		if !res.Eq(test.expected) {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊔ %s = %s\n", test.a, test.b, res)
		}
	}
}

func TestProductWiden(t *testing.T) {
	_, prod := productFixture()
	iv := Elements().IntervalFinite
	flag := Elements().TwoElement

	type P = PlusInfinity
	type b = FiniteBound
	mkiv := Elements().Interval

	tests := []struct {
		prev, next, expected Element
	}{
		// Widening applies componentwise; a stable component stays put.
		{prod(iv(0, 1), flag(false)), prod(iv(0, 2), flag(false)),
			prod(mkiv(b(0), P{}), flag(false))},
		{prod(iv(0, 1), flag(false)), prod(iv(0, 1), flag(true)),
			prod(iv(0, 1), flag(true))},
	}

	for _, test := range tests {
		res := test.prev.Widen(test.next)
		if !res.Eq(test.expected) {
			t.Errorf("%s ∇ %s = %s, expected %s\n", test.prev, test.next, res, test.expected)
		}
		if !test.prev.Leq(res) || !test.next.Leq(res) {
			t.Errorf("%s ∇ %s = %s is not an upper bound of both operands\n",
				test.prev, test.next, res)
		}
	}
}

func TestProductUpdateGet(t *testing.T) {
	lat, prod := productFixture()
	iv := Elements().IntervalFinite
	flag := Elements().TwoElement

	el := prod(iv(3, 4), flag(false))
	if got := el.Get(0); !got.Eq(iv(3, 4)) {
		t.Errorf("component 0 of %s is %s, expected %s", el, got, iv(3, 4))
	}

	upd := el.Update(1, flag(true))
	if got := upd.Get(1); !got.Eq(flag(true)) {
		t.Errorf("component 1 of %s is %s, expected ⊤", upd, got)
	}
	// The receiver is unchanged.
	if got := el.Get(1); !got.Eq(flag(false)) {
		t.Errorf("component 1 of %s is %s, expected ⊥", el, got)
	}

	if lat.Size() != 2 {
		t.Errorf("product has %d components, expected 2", lat.Size())
	}
}
