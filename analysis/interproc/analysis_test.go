package interproc

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gala-analyzer/gala/analysis/callgraph"
	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/domains"
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/config"
	"github.com/gala-analyzer/gala/types"
)

var noLoc = symbolic.CodeLocation{}

func testAnalysis(t *testing.T, prog *cfg.Program, conf *config.Config) *Analysis {
	t.Helper()
	if conf == nil {
		conf = config.Default()
	}
	u := prog.Universe()
	a, err := New(prog, conf, config.NewLogGroup(conf), func(*cfg.Graph) state.AnalysisState {
		return state.NewAnalysisState(state.NewAbstractState(
			domains.NewUnitHeap(),
			domains.NewIntervalDomain(),
			domains.NewTypeDomain(u),
		))
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func straightGraph(u *types.Universe, name string, params []cfg.Parameter, nodes ...cfg.Node) *cfg.Graph {
	g := cfg.NewGraph(cfg.Descriptor{Name: name, Params: params, ReturnType: u.Untyped()})
	prev := cfg.Node(g.Entry())
	for _, n := range nodes {
		g.AddNode(n)
		g.AddEdge(prev, n, cfg.Sequential)
		prev = n
	}
	return g
}

func intervalAt(t *testing.T, st state.AnalysisState, v *symbolic.Variable) lattice.Interval {
	t.Helper()
	val, err := st.EvalValue(v)
	if err != nil {
		t.Fatal(err)
	}
	return val.(lattice.Interval)
}

// narrowingProgram builds
//
//	id(x Animal) { return x }
//	main() { r := id(c) }
//
// where c has runtime type {Cat}, and returns the program, main, and the
// call statement in main.
func narrowingProgram(u *types.Universe) (*cfg.Program, *cfg.Graph, cfg.Node) {
	animal := u.MustNewType("Animal")
	cat := u.MustNewType("Cat", animal)
	u.MustNewType("Dog", animal)

	prog := cfg.NewProgram(u)

	id := cfg.NewGraph(cfg.Descriptor{
		Name:       "id",
		Params:     []cfg.Parameter{{Name: "x", StaticType: animal}},
		ReturnType: animal,
	})
	idRet := id.AddNode(cfg.NewReturn(id.ParamVariables()[0], noLoc))
	id.AddEdge(id.Entry(), idRet, cfg.Sequential)
	prog.AddProcedure(id)

	c := symbolic.NewVariable("c", cat, noLoc)
	r := symbolic.NewVariable("r", animal, noLoc)
	call := cfg.NewUnresolvedCall(r, "id", callgraph.FixedOrder(), false, nil,
		[]symbolic.Expression{c}, noLoc)
	main := straightGraph(u, "main", nil, call, cfg.NewReturn(r, noLoc))
	prog.AddProcedure(main)
	return prog, main, call
}

func callResultTypes(t *testing.T, res *ProgramResult, main *cfg.Graph, call cfg.Node) types.TypeSet {
	t.Helper()
	mainRes, ok := res.ResultOf(main)
	if !ok {
		t.Fatal("no result for main")
	}
	post, ok := mainRes.PostOf(call)
	if !ok {
		t.Fatal("call not reached")
	}
	r := call.(*cfg.UnresolvedCall).Target()
	typ, err := post.EvalTypes(r)
	if err != nil {
		t.Fatal(err)
	}
	return typ.(lattice.TypeSetValue).Set()
}

// TestSummaryTypeNarrowing checks that under call-stack sensitivity the
// runtime types of an actual argument flow through a caller-specific
// entry state and back into the caller through the call result.
func TestSummaryTypeNarrowing(t *testing.T) {
	u := types.NewUniverse()
	prog, main, call := narrowingProgram(u)
	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	conf := config.Default()
	conf.ContextSensitivity = config.ContextCallStack
	a := testAnalysis(t, prog, conf)
	res, err := a.AnalyzeProgram()
	if err != nil {
		t.Fatal(err)
	}

	cat, _ := u.Lookup("Cat")
	if got := callResultTypes(t, res, main, call); !got.Equal(u.AllInstances(cat)) {
		t.Errorf("types of the call result = %s, expected {Cat}", got)
	}
}

// TestInsensitiveSummarySharing checks that without context sensitivity
// the call reuses the callee's shared worst-case summary, so the result
// covers every instance of the declared return type.
func TestInsensitiveSummarySharing(t *testing.T) {
	u := types.NewUniverse()
	prog, main, call := narrowingProgram(u)
	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	a := testAnalysis(t, prog, nil)
	res, err := a.AnalyzeProgram()
	if err != nil {
		t.Fatal(err)
	}

	animal, _ := u.Lookup("Animal")
	if got := callResultTypes(t, res, main, call); !got.Equal(u.AllInstances(animal)) {
		t.Errorf("types of the call result = %s, expected every Animal", got)
	}
}

// TestSummaryReuse checks that a procedure's fixpoint runs once even when
// it is called from several places and driven at top level.
func TestSummaryReuse(t *testing.T) {
	u := types.NewUniverse()
	prog := cfg.NewProgram(u)

	inc := cfg.NewGraph(cfg.Descriptor{
		Name:       "inc",
		Params:     []cfg.Parameter{{Name: "x", StaticType: u.Untyped()}},
		ReturnType: u.Untyped(),
	})
	x := inc.ParamVariables()[0]
	incRet := inc.AddNode(cfg.NewReturn(
		symbolic.NewBinary(symbolic.Add, x, symbolic.NewConstant(1, u.Untyped(), noLoc), u.Untyped(), noLoc), noLoc))
	inc.AddEdge(inc.Entry(), incRet, cfg.Sequential)
	prog.AddProcedure(inc)

	mkMain := func(name string) *cfg.Graph {
		r := symbolic.NewVariable("r", u.Untyped(), noLoc)
		arg := symbolic.NewVariable("a", u.Untyped(), noLoc)
		call := cfg.NewUnresolvedCall(r, "inc", callgraph.FixedOrder(), false, nil,
			[]symbolic.Expression{arg}, noLoc)
		return straightGraph(u, name, nil, call, cfg.NewReturn(r, noLoc))
	}
	prog.AddProcedure(mkMain("main1"))
	prog.AddProcedure(mkMain("main2"))

	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	a := testAnalysis(t, prog, nil)
	if _, err := a.AnalyzeProgram(); err != nil {
		t.Fatal(err)
	}

	sum, ok := a.cache[summaryKey{graph: inc}]
	if !ok {
		t.Fatal("no summary for inc")
	}
	if sum.passes != 1 {
		t.Errorf("inc was solved %d times, expected a single pass", sum.passes)
	}
	if !sum.stable {
		t.Error("inc's summary should be stable")
	}
}

// TestVirtualCallJoinsTargets checks that a call dispatching to several
// procedures contributes the least upper bound of their results.
func TestVirtualCallJoinsTargets(t *testing.T) {
	u := types.NewUniverse()
	animal := u.MustNewType("Animal")
	cat := u.MustNewType("Cat", animal)
	dog := u.MustNewType("Dog", animal)

	prog := cfg.NewProgram(u)
	mkSpeak := func(unit *cfg.Unit, result int) {
		g := cfg.NewGraph(cfg.Descriptor{Name: "speak", ReturnType: u.Untyped(), Instance: true})
		ret := g.AddNode(cfg.NewReturn(symbolic.NewConstant(result, u.Untyped(), noLoc), noLoc))
		g.AddEdge(g.Entry(), ret, cfg.Sequential)
		unit.AddProcedure(g)
	}
	mkSpeak(prog.AddUnit(cfg.NewUnit("Cat", cat)), 1)
	mkSpeak(prog.AddUnit(cfg.NewUnit("Dog", dog)), 2)

	// feed(a Animal) { s := a.speak(); return s }
	feed := cfg.NewGraph(cfg.Descriptor{
		Name:       "feed",
		Params:     []cfg.Parameter{{Name: "a", StaticType: animal}},
		ReturnType: u.Untyped(),
	})
	s := symbolic.NewVariable("s", u.Untyped(), noLoc)
	call := cfg.NewUnresolvedCall(s, "speak", callgraph.FixedOrder(), true, animal,
		[]symbolic.Expression{feed.ParamVariables()[0]}, noLoc)
	feed.AddNode(call)
	ret := feed.AddNode(cfg.NewReturn(s, noLoc))
	feed.AddEdge(feed.Entry(), call, cfg.Sequential)
	feed.AddEdge(call, ret, cfg.Sequential)
	prog.AddProcedure(feed)

	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	a := testAnalysis(t, prog, nil)
	res, err := a.AnalyzeProgram()
	if err != nil {
		t.Fatal(err)
	}

	feedRes, _ := res.ResultOf(feed)
	exit, reached := feedRes.ExitState()
	if !reached {
		t.Fatal("feed has no exit state")
	}
	got := intervalAt(t, exit, feed.ReturnVariable())
	if got.Low() != 1 || got.High() != 2 {
		t.Errorf("feed returns %s, expected [1, 2]", got)
	}
}

// recursiveProgram builds
//
//	rec(x) { if x < 0 { return 0 }; r := rec(x - 1); return r }
func recursiveProgram(u *types.Universe) (*cfg.Program, *cfg.Graph) {
	prog := cfg.NewProgram(u)

	rec := cfg.NewGraph(cfg.Descriptor{
		Name:       "rec",
		Params:     []cfg.Parameter{{Name: "x", StaticType: u.Untyped()}},
		ReturnType: u.Untyped(),
	})
	x := rec.ParamVariables()[0]
	r := symbolic.NewVariable("r", u.Untyped(), noLoc)
	zero := symbolic.NewConstant(0, u.Untyped(), noLoc)
	one := symbolic.NewConstant(1, u.Untyped(), noLoc)

	cond := rec.AddNode(cfg.NewCondition(
		symbolic.NewBinary(symbolic.CmpLt, x, zero, u.Untyped(), noLoc), noLoc))
	base := rec.AddNode(cfg.NewReturn(zero, noLoc))
	call := rec.AddNode(cfg.NewUnresolvedCall(r, "rec", callgraph.FixedOrder(), false, nil,
		[]symbolic.Expression{symbolic.NewBinary(symbolic.Sub, x, one, u.Untyped(), noLoc)}, noLoc))
	out := rec.AddNode(cfg.NewReturn(r, noLoc))
	rec.AddEdge(rec.Entry(), cond, cfg.Sequential)
	rec.AddEdge(cond, base, cfg.TrueBranch)
	rec.AddEdge(cond, call, cfg.FalseBranch)
	rec.AddEdge(call, out, cfg.Sequential)
	prog.AddProcedure(rec)
	return prog, rec
}

// TestRecursionTerminates checks that a self-recursive procedure is
// analyzed to a stable summary in a bounded number of passes.
func TestRecursionTerminates(t *testing.T) {
	u := types.NewUniverse()
	prog, rec := recursiveProgram(u)

	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	a := testAnalysis(t, prog, nil)
	res, err := a.AnalyzeProgram()
	if err != nil {
		t.Fatal(err)
	}

	recRes, _ := res.ResultOf(rec)
	exit, reached := recRes.ExitState()
	if !reached {
		t.Fatal("rec has no exit state")
	}
	// The summary must cover the base case.
	got := intervalAt(t, exit, rec.ReturnVariable())
	if !lattice.Elements().IntervalFinite(0, 0).Leq(got) {
		t.Errorf("rec returns %s, which does not cover the base case 0", got)
	}

	sum := a.cache[summaryKey{graph: rec}]
	if sum == nil || !sum.stable {
		t.Fatal("rec's summary should be stable")
	}
	if sum.passes > 4 {
		t.Errorf("rec needed %d passes to stabilize", sum.passes)
	}
}

// TestRecursiveComponentsLogged checks that a debug-level run names the
// recursive components of the call graph before analyzing them.
func TestRecursiveComponentsLogged(t *testing.T) {
	u := types.NewUniverse()
	prog, _ := recursiveProgram(u)
	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}

	conf := config.Default()
	conf.LogLevel = int(config.DebugLevel)
	lg := config.NewLogGroup(conf)
	var buf bytes.Buffer
	lg.SetAllOutput(&buf)

	a, err := New(prog, conf, lg, func(*cfg.Graph) state.AnalysisState {
		return state.NewAnalysisState(state.NewAbstractState(
			domains.NewUnitHeap(),
			domains.NewIntervalDomain(),
			domains.NewTypeDomain(u),
		))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.AnalyzeProgram(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "recursive component: rec") {
		t.Errorf("recursive component missing from the debug log:\n%s", buf.String())
	}
}

// TestTopLevelRequestWaitsForInFlight checks that a request driven from
// outside any analysis run blocks on a summary another goroutine is
// computing instead of settling for a provisional result.
func TestTopLevelRequestWaitsForInFlight(t *testing.T) {
	u := types.NewUniverse()
	animal := u.MustNewType("Animal")
	u.MustNewType("Cat", animal)

	prog := cfg.NewProgram(u)
	id := cfg.NewGraph(cfg.Descriptor{
		Name:       "id",
		Params:     []cfg.Parameter{{Name: "x", StaticType: animal}},
		ReturnType: animal,
	})
	idRet := id.AddNode(cfg.NewReturn(id.ParamVariables()[0], noLoc))
	id.AddEdge(id.Entry(), idRet, cfg.Sequential)
	prog.AddProcedure(id)
	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}

	a := testAnalysis(t, prog, nil)
	entry, err := a.worstCaseEntry(id)
	if err != nil {
		t.Fatal(err)
	}
	key := summaryKey{graph: id}
	a.mu.Lock()
	a.cache[key] = &summary{inFlight: true}
	a.mu.Unlock()

	type outcome struct {
		exit state.AnalysisState
		ok   bool
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		exit, ok, err := a.resultOf(id, entry, nil)
		done <- outcome{exit, ok, err}
	}()

	select {
	case <-done:
		t.Fatal("top-level request returned while the summary was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	a.mu.Lock()
	a.cache[key].inFlight = false
	a.done.Broadcast()
	a.mu.Unlock()

	out := <-done
	if out.err != nil {
		t.Fatal(out.err)
	}
	if !out.ok {
		t.Fatal("id has no exit state")
	}
	typ, err := out.exit.EvalTypes(id.ReturnVariable())
	if err != nil {
		t.Fatal(err)
	}
	got := typ.(lattice.TypeSetValue).Set()
	if !got.Equal(u.AllInstances(animal)) {
		t.Errorf("types of the result = %s, expected every Animal", got)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if sum := a.cache[key]; !sum.stable || sum.inFlight {
		t.Error("the waited-for summary should end up stable")
	}
}

// TestFailPolicyAbortsRun checks that an unresolvable call fails the
// whole run without publishing partial results.
func TestFailPolicyAbortsRun(t *testing.T) {
	u := types.NewUniverse()
	prog := cfg.NewProgram(u)
	call := cfg.NewUnresolvedCall(nil, "missing", callgraph.FixedOrder(), false, nil, nil, noLoc)
	prog.AddProcedure(straightGraph(u, "main", nil, call, cfg.NewReturn(nil, noLoc)))

	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	a := testAnalysis(t, prog, nil)
	res, err := a.AnalyzeProgram()
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	if !callgraph.IsNoMatch(err) {
		t.Errorf("expected a no-match resolution error, got %v", err)
	}
	if res != nil {
		t.Error("partial results must not be published on failure")
	}
}

// TestOpenCallPolicies contrasts the top and havoc policies on
//
//	main() { y := 5; log(y); return y }
//
// where log is not part of the program.
func TestOpenCallPolicies(t *testing.T) {
	build := func() (*cfg.Program, *cfg.Graph) {
		u := types.NewUniverse()
		prog := cfg.NewProgram(u)
		y := symbolic.NewVariable("y", u.Untyped(), noLoc)
		main := straightGraph(u, "main", nil,
			cfg.NewAssignment(y, symbolic.NewConstant(5, u.Untyped(), noLoc), noLoc),
			cfg.NewUnresolvedCall(nil, "log", callgraph.FixedOrder(), false, nil,
				[]symbolic.Expression{y}, noLoc),
			cfg.NewReturn(y, noLoc),
		)
		prog.AddProcedure(main)
		return prog, main
	}

	returned := func(t *testing.T, policy string) lattice.Interval {
		t.Helper()
		prog, main := build()
		if err := prog.Validate(); err != nil {
			t.Fatal(err)
		}
		conf := config.Default()
		conf.OpenCallPolicy = policy
		a := testAnalysis(t, prog, conf)
		res, err := a.AnalyzeProgram()
		if err != nil {
			t.Fatal(err)
		}
		mainRes, _ := res.ResultOf(main)
		exit, reached := mainRes.ExitState()
		if !reached {
			t.Fatal("main has no exit state")
		}
		return intervalAt(t, exit, main.ReturnVariable())
	}

	if got := returned(t, config.OpenCallTop); got.Low() != 5 || got.High() != 5 {
		t.Errorf("top policy: main returns %s, expected [5, 5]", got)
	}
	if got := returned(t, config.OpenCallHavoc); !got.IsTop() {
		t.Errorf("havoc policy: main returns %s, expected the unknown interval", got)
	}
}

// TestModularWorstCase checks that resolvable calls are still treated as
// open in the modular worst case mode.
func TestModularWorstCase(t *testing.T) {
	u := types.NewUniverse()
	prog := cfg.NewProgram(u)

	five := cfg.NewGraph(cfg.Descriptor{Name: "five", ReturnType: u.Untyped()})
	fRet := five.AddNode(cfg.NewReturn(symbolic.NewConstant(5, u.Untyped(), noLoc), noLoc))
	five.AddEdge(five.Entry(), fRet, cfg.Sequential)
	prog.AddProcedure(five)

	r := symbolic.NewVariable("r", u.Untyped(), noLoc)
	main := straightGraph(u, "main", nil,
		cfg.NewUnresolvedCall(r, "five", callgraph.FixedOrder(), false, nil, nil, noLoc),
		cfg.NewReturn(r, noLoc),
	)
	prog.AddProcedure(main)

	if err := prog.Validate(); err != nil {
		t.Fatal(err)
	}
	conf := config.Default()
	conf.ModularWorstCase = true
	conf.OpenCallPolicy = config.OpenCallTop
	a := testAnalysis(t, prog, conf)
	res, err := a.AnalyzeProgram()
	if err != nil {
		t.Fatal(err)
	}

	mainRes, _ := res.ResultOf(main)
	exit, _ := mainRes.ExitState()
	if got := intervalAt(t, exit, main.ReturnVariable()); !got.IsTop() {
		t.Errorf("main returns %s, the callee's summary must not flow in", got)
	}
}
