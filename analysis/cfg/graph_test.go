package cfg

import (
	"strings"
	"testing"

	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

func testGraph(t *testing.T, name string, params ...Parameter) *Graph {
	t.Helper()
	u := types.NewUniverse()
	return NewGraph(Descriptor{
		Name:       name,
		Params:     params,
		ReturnType: u.Untyped(),
	})
}

func TestGraphValidate(t *testing.T) {
	g := testGraph(t, "f")
	ret := g.AddNode(NewReturn(nil, symbolic.CodeLocation{}))
	g.AddEdge(g.Entry(), ret, Sequential)

	if err := g.Validate(); err != nil {
		t.Errorf("straight-line graph should validate: %v", err)
	}
}

func TestGraphValidateUnreachable(t *testing.T) {
	g := testGraph(t, "f")
	g.AddNode(NewNoOp(symbolic.CodeLocation{}))

	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Errorf("expected an unreachable statement error, got %v", err)
	}
}

func TestGraphValidateEntryPredecessors(t *testing.T) {
	g := testGraph(t, "f")
	n := g.AddNode(NewNoOp(symbolic.CodeLocation{}))
	g.AddEdge(g.Entry(), n, Sequential)
	g.AddEdge(n, g.Entry(), Sequential)

	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "entry has predecessors") {
		t.Errorf("expected an entry predecessor error, got %v", err)
	}
}

func TestGraphValidateBranches(t *testing.T) {
	u := types.NewUniverse()
	g := testGraph(t, "f")
	x := symbolic.NewVariable("x", u.Untyped(), symbolic.CodeLocation{})
	cond := g.AddNode(NewCondition(x, symbolic.CodeLocation{}))
	thn := g.AddNode(NewNoOp(symbolic.CodeLocation{}))
	els := g.AddNode(NewNoOp(symbolic.CodeLocation{}))
	g.AddEdge(g.Entry(), cond, Sequential)
	g.AddEdge(cond, thn, TrueBranch)

	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "one true and one false") {
		t.Errorf("expected a missing false branch error, got %v", err)
	}

	g.AddEdge(cond, els, FalseBranch)
	if err := g.Validate(); err != nil {
		t.Errorf("diamond should validate, got %v", err)
	}
}

func TestGraphValidateDivergingIsLegal(t *testing.T) {
	// A procedure may provably never return.
	g := testGraph(t, "spin")
	n := g.AddNode(NewNoOp(symbolic.CodeLocation{}))
	g.AddEdge(g.Entry(), n, Sequential)
	g.AddEdge(n, n, Sequential)

	if err := g.Validate(); err != nil {
		t.Errorf("graph without exits should validate: %v", err)
	}
	if len(g.Exits()) != 0 {
		t.Errorf("expected no exits, got %v", g.Exits())
	}
}

func TestCrossGraphEdgePanics(t *testing.T) {
	g1 := testGraph(t, "f")
	g2 := testGraph(t, "g")
	n := g2.AddNode(NewNoOp(symbolic.CodeLocation{}))

	defer func() {
		if recover() == nil {
			t.Error("expected a cross-graph edge to panic")
		}
	}()
	g1.AddEdge(g1.Entry(), n, Sequential)
}

func TestProgramValidateDuplicateNames(t *testing.T) {
	u := types.NewUniverse()
	prog := NewProgram(u)
	mk := func() *Graph {
		g := NewGraph(Descriptor{Name: "f", ReturnType: u.Untyped()})
		ret := g.AddNode(NewReturn(nil, symbolic.CodeLocation{}))
		g.AddEdge(g.Entry(), ret, Sequential)
		return g
	}
	prog.AddProcedure(mk())
	prog.AddProcedure(mk())

	err := prog.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected a duplicate procedure error, got %v", err)
	}
}
