package domains

import (
	"testing"

	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

var noLoc = symbolic.CodeLocation{}

func testUniverse(t *testing.T) *types.Universe {
	t.Helper()
	u := types.NewUniverse()
	if err := u.Finalize(); err != nil {
		t.Fatal(err)
	}
	return u
}

func intConst(u *types.Universe, c int) *symbolic.Constant {
	return symbolic.NewConstant(c, u.Untyped(), noLoc)
}

func TestSignArithmetic(t *testing.T) {
	u := testUniverse(t)
	d := NewSignDomain()

	tests := []struct {
		op   symbolic.BinaryOperator
		l, r int
		want lattice.Element
	}{
		{symbolic.Add, -2, -3, mkSign(Negative)},
		{symbolic.Add, 2, 3, mkSign(Positive)},
		{symbolic.Add, 0, -3, mkSign(Negative)},
		{symbolic.Add, -2, 3, signLattice.Top()},
		{symbolic.Sub, 2, -3, mkSign(Positive)},
		{symbolic.Sub, -2, 3, mkSign(Negative)},
		{symbolic.Sub, 2, 3, signLattice.Top()},
		{symbolic.Mul, -2, -3, mkSign(Positive)},
		{symbolic.Mul, -2, 3, mkSign(Negative)},
		{symbolic.Mul, 0, 3, mkSign(Zero)},
		{symbolic.Div, 2, 3, signLattice.Top()},
	}
	for _, test := range tests {
		e := symbolic.NewBinary(test.op, intConst(u, test.l), intConst(u, test.r), u.Untyped(), noLoc)
		got, err := d.Eval(e)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Eq(test.want) {
			t.Errorf("%s evaluates to %s, expected %s", e, got, test.want)
		}
	}
}

func TestSignNegation(t *testing.T) {
	u := testUniverse(t)
	d := NewSignDomain()

	tests := []struct {
		arg  int
		want lattice.Element
	}{
		{-2, mkSign(Positive)},
		{0, mkSign(Zero)},
		{2, mkSign(Negative)},
	}
	for _, test := range tests {
		e := symbolic.NewUnary(symbolic.Neg, intConst(u, test.arg), u.Untyped(), noLoc)
		got, err := d.Eval(e)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Eq(test.want) {
			t.Errorf("%s evaluates to %s, expected %s", e, got, test.want)
		}
	}
}

func TestSignAssignAndLookup(t *testing.T) {
	u := testUniverse(t)
	x := symbolic.NewVariable("x", u.Untyped(), noLoc)

	d, err := NewSignDomain().Assign(x, intConst(u, -7))
	if err != nil {
		t.Fatal(err)
	}
	got, err := d.Eval(x)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Eq(mkSign(Negative)) {
		t.Errorf("x = %s, expected %s", got, mkSign(Negative))
	}

	// An unbound variable denotes an unreachable binding.
	y := symbolic.NewVariable("y", u.Untyped(), noLoc)
	got, err = d.Eval(y)
	if err != nil {
		t.Fatal(err)
	}
	if !got.(lattice.FlatElement).IsBot() {
		t.Errorf("unbound y = %s, expected bottom", got)
	}
}

func TestSignAssume(t *testing.T) {
	u := testUniverse(t)
	x := symbolic.NewVariable("x", u.Untyped(), noLoc)
	unknown := symbolic.NewPushAny(u.Untyped(), noLoc)

	tests := []struct {
		cond symbolic.Expression
		want lattice.Element
	}{
		{symbolic.NewBinary(symbolic.CmpGt, x, intConst(u, 0), u.Untyped(), noLoc), mkSign(Positive)},
		{symbolic.NewBinary(symbolic.CmpGe, x, intConst(u, 1), u.Untyped(), noLoc), mkSign(Positive)},
		{symbolic.NewBinary(symbolic.CmpLt, x, intConst(u, 0), u.Untyped(), noLoc), mkSign(Negative)},
		{symbolic.NewBinary(symbolic.CmpLe, x, intConst(u, -1), u.Untyped(), noLoc), mkSign(Negative)},
		{symbolic.NewBinary(symbolic.CmpEq, x, intConst(u, 0), u.Untyped(), noLoc), mkSign(Zero)},
		// Mirrored comparison: 0 < x pins x positive.
		{symbolic.NewBinary(symbolic.CmpLt, intConst(u, 0), x, u.Untyped(), noLoc), mkSign(Positive)},
		// x < 5 admits every sign.
		{symbolic.NewBinary(symbolic.CmpLt, x, intConst(u, 5), u.Untyped(), noLoc), signLattice.Top()},
	}
	for _, test := range tests {
		d, err := NewSignDomain().Assign(x, unknown)
		if err != nil {
			t.Fatal(err)
		}
		refined, err := d.Assume(test.cond)
		if err != nil {
			t.Fatal(err)
		}
		got, err := refined.Eval(x)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Eq(test.want) {
			t.Errorf("assuming %s: x = %s, expected %s", test.cond, got, test.want)
		}
	}
}

func TestSignAssumeConjunction(t *testing.T) {
	u := testUniverse(t)
	x := symbolic.NewVariable("x", u.Untyped(), noLoc)
	y := symbolic.NewVariable("y", u.Untyped(), noLoc)
	unknown := symbolic.NewPushAny(u.Untyped(), noLoc)

	var d state.Domain = NewSignDomain()
	var err error
	for _, v := range []*symbolic.Variable{x, y} {
		d, err = d.Assign(v, unknown)
		if err != nil {
			t.Fatal(err)
		}
	}
	cond := symbolic.NewBinary(symbolic.LogAnd,
		symbolic.NewBinary(symbolic.CmpGt, x, intConst(u, 0), u.Untyped(), noLoc),
		symbolic.NewBinary(symbolic.CmpLt, y, intConst(u, 0), u.Untyped(), noLoc),
		u.Untyped(), noLoc)
	refined, err := d.Assume(cond)
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := refined.Eval(x); !got.Eq(mkSign(Positive)) {
		t.Errorf("x = %s, expected %s", got, mkSign(Positive))
	}
	if got, _ := refined.Eval(y); !got.Eq(mkSign(Negative)) {
		t.Errorf("y = %s, expected %s", got, mkSign(Negative))
	}
}

func TestSignJoin(t *testing.T) {
	u := testUniverse(t)
	x := symbolic.NewVariable("x", u.Untyped(), noLoc)

	bind := func(c int) state.Domain {
		d, err := NewSignDomain().Assign(x, intConst(u, c))
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	joined := bind(1).Join(bind(-1))
	if got, _ := joined.Eval(x); !got.(lattice.FlatElement).IsTop() {
		t.Errorf("joined x = %s, expected top", got)
	}
	same := bind(1).Join(bind(2))
	if got, _ := same.Eval(x); !got.Eq(mkSign(Positive)) {
		t.Errorf("joined x = %s, expected %s", got, mkSign(Positive))
	}
}
