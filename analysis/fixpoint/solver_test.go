package fixpoint

import (
	"testing"

	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/domains"
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/config"
	"github.com/gala-analyzer/gala/types"
)

var noLoc = symbolic.CodeLocation{}

func testOptions() Options {
	return Options{
		WorkingSet:        config.WorkingSetPriority,
		WideningThreshold: 1,
		Logger:            config.NewLogGroup(config.Default()),
	}
}

func emptyState(u *types.Universe) state.AnalysisState {
	return state.NewAnalysisState(state.NewAbstractState(
		domains.NewUnitHeap(),
		domains.NewIntervalDomain(),
		domains.NewTypeDomain(u),
	))
}

func intervalOf(t *testing.T, st state.AnalysisState, v *symbolic.Variable) lattice.Interval {
	t.Helper()
	val, err := st.EvalValue(v)
	if err != nil {
		t.Fatal(err)
	}
	return val.(lattice.Interval)
}

// buildBranch builds:
//
//	f(x) { if x < 10 { y := 1 } else { y := 2 }; return y }
func buildBranch(u *types.Universe) (*cfg.Graph, *symbolic.Variable) {
	g := cfg.NewGraph(cfg.Descriptor{
		Name:       "f",
		Params:     []cfg.Parameter{{Name: "x", StaticType: u.Untyped()}},
		ReturnType: u.Untyped(),
	})
	x := g.ParamVariables()[0]
	y := symbolic.NewVariable("y", u.Untyped(), noLoc)
	ten := symbolic.NewConstant(10, u.Untyped(), noLoc)

	cond := g.AddNode(cfg.NewCondition(
		symbolic.NewBinary(symbolic.CmpLt, x, ten, u.Untyped(), noLoc), noLoc))
	thn := g.AddNode(cfg.NewAssignment(y, symbolic.NewConstant(1, u.Untyped(), noLoc), noLoc))
	els := g.AddNode(cfg.NewAssignment(y, symbolic.NewConstant(2, u.Untyped(), noLoc), noLoc))
	ret := g.AddNode(cfg.NewReturn(y, noLoc))
	g.AddEdge(g.Entry(), cond, cfg.Sequential)
	g.AddEdge(cond, thn, cfg.TrueBranch)
	g.AddEdge(cond, els, cfg.FalseBranch)
	g.AddEdge(thn, ret, cfg.Sequential)
	g.AddEdge(els, ret, cfg.Sequential)
	return g, y
}

func TestSolveJoinsBranches(t *testing.T) {
	u := types.NewUniverse()
	g, y := buildBranch(u)
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}

	res, err := Solve(g, emptyState(u), nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	exit, reached := res.ExitState()
	if !reached {
		t.Fatal("exit not reached")
	}
	got := intervalOf(t, exit, y)
	if got.Low() != 1 || got.High() != 2 {
		t.Errorf("y = %s at exit, expected [1, 2]", got)
	}
}

func TestSolveBranchRefinement(t *testing.T) {
	u := types.NewUniverse()
	g, _ := buildBranch(u)
	x := g.ParamVariables()[0]

	// Drive with an unknown x.
	entry := emptyState(u)
	entry, err := entry.Assign(x, symbolic.NewPushAny(u.Untyped(), noLoc))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Solve(g, entry, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	var thn, els cfg.Node
	for _, n := range g.Nodes() {
		if a, ok := n.(*cfg.Assignment); ok {
			if c, ok := a.Value().(*symbolic.Constant); ok && c.Value() == 1 {
				thn = n
			} else {
				els = n
			}
		}
	}

	pre, ok := res.PreOf(thn)
	if !ok {
		t.Fatal("true branch not reached")
	}
	if got := intervalOf(t, pre, x); got.HighBound().IsInfinite() || got.High() != 9 {
		t.Errorf("x = %s in the true branch, expected high bound 9", got)
	}
	pre, ok = res.PreOf(els)
	if !ok {
		t.Fatal("false branch not reached")
	}
	if got := intervalOf(t, pre, x); got.LowBound().IsInfinite() || got.Low() != 10 {
		t.Errorf("x = %s in the false branch, expected low bound 10", got)
	}
}

func TestSolveWideningTerminates(t *testing.T) {
	// spin() { i := 0; loop: i := i + 1; goto loop }
	u := types.NewUniverse()
	g := cfg.NewGraph(cfg.Descriptor{Name: "spin", ReturnType: u.Untyped()})
	i := symbolic.NewVariable("i", u.Untyped(), noLoc)
	one := symbolic.NewConstant(1, u.Untyped(), noLoc)

	init := g.AddNode(cfg.NewAssignment(i, symbolic.NewConstant(0, u.Untyped(), noLoc), noLoc))
	body := g.AddNode(cfg.NewAssignment(i,
		symbolic.NewBinary(symbolic.Add, i, one, u.Untyped(), noLoc), noLoc))
	g.AddEdge(g.Entry(), init, cfg.Sequential)
	g.AddEdge(init, body, cfg.Sequential)
	g.AddEdge(body, body, cfg.Sequential)

	res, err := Solve(g, emptyState(u), nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Visits[body] > 8 {
		t.Errorf("loop body visited %d times, widening should stabilize faster", res.Visits[body])
	}

	post, ok := res.PostOf(body)
	if !ok {
		t.Fatal("loop body not reached")
	}
	got := intervalOf(t, post, i)
	if got.LowBound().IsInfinite() || got.Low() != 1 || !got.HighBound().IsInfinite() {
		t.Errorf("i = %s after the loop body, expected [1, +∞]", got)
	}

	if _, reached := res.ExitState(); reached {
		t.Error("a loop without exits should not reach an exit state")
	}
}

func TestSolveBoundedLoopStaysPrecise(t *testing.T) {
	// count() { i := 0; while i < 10 { i := i + 1 }; return i }
	u := types.NewUniverse()
	g := cfg.NewGraph(cfg.Descriptor{Name: "count", ReturnType: u.Untyped()})
	i := symbolic.NewVariable("i", u.Untyped(), noLoc)
	one := symbolic.NewConstant(1, u.Untyped(), noLoc)
	ten := symbolic.NewConstant(10, u.Untyped(), noLoc)

	init := g.AddNode(cfg.NewAssignment(i, symbolic.NewConstant(0, u.Untyped(), noLoc), noLoc))
	cond := g.AddNode(cfg.NewCondition(
		symbolic.NewBinary(symbolic.CmpLt, i, ten, u.Untyped(), noLoc), noLoc))
	body := g.AddNode(cfg.NewAssignment(i,
		symbolic.NewBinary(symbolic.Add, i, one, u.Untyped(), noLoc), noLoc))
	ret := g.AddNode(cfg.NewReturn(i, noLoc))
	g.AddEdge(g.Entry(), init, cfg.Sequential)
	g.AddEdge(init, cond, cfg.Sequential)
	g.AddEdge(cond, body, cfg.TrueBranch)
	g.AddEdge(cond, ret, cfg.FalseBranch)
	g.AddEdge(body, cond, cfg.Sequential)

	res, err := Solve(g, emptyState(u), nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	exit, reached := res.ExitState()
	if !reached {
		t.Fatal("exit not reached")
	}
	// Widening pushes the loop counter to [0, +∞], the exit branch
	// narrows it back to i >= 10.
	got := intervalOf(t, exit, g.ReturnVariable())
	if got.LowBound().IsInfinite() || got.Low() != 10 {
		t.Errorf("returned i = %s, expected low bound 10", got)
	}
}

func TestSolveUnchangedVisitsDoNotWiden(t *testing.T) {
	// Two nested branches merging through a shared join statement:
	//
	//	g(p1, p2) {
	//		if p1 < 10 { x := 4; p1 := 0; p2 := 0 }
	//		else if p2 < 10 { ; ; x := 9; p1 := 0; p2 := 0 }
	//		else { x := 4; p1 := 0; p2 := 0 }
	//		return x
	//	}
	//
	// The arms overwrite the branch variables, so the merged states differ
	// in x only. Under FIFO iteration the join statement before the return
	// is re-examined once with an unchanged state before the x := 9 arm
	// arrives. That visit must not consume widening budget: with a
	// threshold of 2 the late arm still merges by an exact join, keeping x
	// bounded at the exit.
	u := types.NewUniverse()
	g := cfg.NewGraph(cfg.Descriptor{
		Name: "g",
		Params: []cfg.Parameter{
			{Name: "p1", StaticType: u.Untyped()},
			{Name: "p2", StaticType: u.Untyped()},
		},
		ReturnType: u.Untyped(),
	})
	p1, p2 := g.ParamVariables()[0], g.ParamVariables()[1]
	x := symbolic.NewVariable("x", u.Untyped(), noLoc)
	ten := symbolic.NewConstant(10, u.Untyped(), noLoc)
	num := func(c int) *symbolic.Constant { return symbolic.NewConstant(c, u.Untyped(), noLoc) }
	arm := func(result int) []cfg.Node {
		return []cfg.Node{
			cfg.NewAssignment(x, num(result), noLoc),
			cfg.NewAssignment(p1, num(0), noLoc),
			cfg.NewAssignment(p2, num(0), noLoc),
		}
	}
	chain := func(from cfg.Node, nodes ...cfg.Node) cfg.Node {
		for _, n := range nodes {
			g.AddNode(n)
			g.AddEdge(from, n, cfg.Sequential)
			from = n
		}
		return from
	}

	d1 := g.AddNode(cfg.NewCondition(
		symbolic.NewBinary(symbolic.CmpLt, p1, ten, u.Untyped(), noLoc), noLoc))
	d2 := g.AddNode(cfg.NewCondition(
		symbolic.NewBinary(symbolic.CmpLt, p2, ten, u.Untyped(), noLoc), noLoc))
	aHead := g.AddNode(cfg.NewAssignment(x, num(4), noLoc))
	cHead := g.AddNode(cfg.NewNoOp(noLoc))
	bHead := g.AddNode(cfg.NewAssignment(x, num(4), noLoc))
	q := g.AddNode(cfg.NewNoOp(noLoc))
	m := g.AddNode(cfg.NewNoOp(noLoc))
	ret := g.AddNode(cfg.NewReturn(x, noLoc))

	g.AddEdge(g.Entry(), d1, cfg.Sequential)
	g.AddEdge(d1, aHead, cfg.TrueBranch)
	g.AddEdge(d1, d2, cfg.FalseBranch)
	g.AddEdge(d2, cHead, cfg.TrueBranch)
	g.AddEdge(d2, bHead, cfg.FalseBranch)
	aTail := chain(aHead,
		cfg.NewAssignment(p1, num(0), noLoc),
		cfg.NewAssignment(p2, num(0), noLoc))
	cTail := chain(cHead, append([]cfg.Node{cfg.NewNoOp(noLoc)}, arm(9)...)...)
	bTail := chain(bHead,
		cfg.NewAssignment(p1, num(0), noLoc),
		cfg.NewAssignment(p2, num(0), noLoc))
	g.AddEdge(aTail, m, cfg.Sequential)
	g.AddEdge(cTail, q, cfg.Sequential)
	g.AddEdge(bTail, q, cfg.Sequential)
	g.AddEdge(q, m, cfg.Sequential)
	g.AddEdge(m, ret, cfg.Sequential)

	entry := emptyState(u)
	for _, p := range []*symbolic.Variable{p1, p2} {
		var err error
		entry, err = entry.Assign(p, symbolic.NewPushAny(u.Untyped(), noLoc))
		if err != nil {
			t.Fatal(err)
		}
	}

	opts := testOptions()
	opts.WorkingSet = config.WorkingSetFIFO
	opts.WideningThreshold = 2
	res, err := Solve(g, entry, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	exit, reached := res.ExitState()
	if !reached {
		t.Fatal("exit not reached")
	}
	got := intervalOf(t, exit, g.ReturnVariable())
	if got.Low() != 4 || got.HighBound().IsInfinite() || got.High() != 9 {
		t.Errorf("returned x = %s, expected [4, 9]", got)
	}
}

func TestSolveWorkingSetOrdersAgree(t *testing.T) {
	u := types.NewUniverse()
	g, y := buildBranch(u)

	var exits []state.AnalysisState
	for _, kind := range []string{config.WorkingSetFIFO, config.WorkingSetLIFO, config.WorkingSetPriority} {
		opts := testOptions()
		opts.WorkingSet = kind
		res, err := Solve(g, emptyState(u), nil, opts)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		exit, reached := res.ExitState()
		if !reached {
			t.Fatalf("%s: exit not reached", kind)
		}
		exits = append(exits, exit)
	}
	for k := 1; k < len(exits); k++ {
		if !exits[0].Eq(exits[k]) {
			t.Errorf("iteration orders disagree on the result:\n%s\nvs\n%s", exits[0], exits[k])
		}
	}
	_ = y
}
