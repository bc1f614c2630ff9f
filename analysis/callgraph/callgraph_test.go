package callgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

var noLoc = symbolic.CodeLocation{}

func proc(u *types.Universe, name string, params ...cfg.Parameter) *cfg.Graph {
	g := cfg.NewGraph(cfg.Descriptor{Name: name, Params: params, ReturnType: u.Untyped()})
	ret := g.AddNode(cfg.NewReturn(nil, noLoc))
	g.AddEdge(g.Entry(), ret, cfg.Sequential)
	return g
}

func instanceProc(u *types.Universe, name string, params ...cfg.Parameter) *cfg.Graph {
	g := cfg.NewGraph(cfg.Descriptor{
		Name: name, Params: params, ReturnType: u.Untyped(), Instance: true,
	})
	ret := g.AddNode(cfg.NewReturn(nil, noLoc))
	g.AddEdge(g.Entry(), ret, cfg.Sequential)
	return g
}

func TestResolveFixedOrder(t *testing.T) {
	u := types.NewUniverse()
	animal := u.MustNewType("Animal")
	cat := u.MustNewType("Cat", animal)

	prog := cfg.NewProgram(u)
	feed := prog.AddProcedure(proc(u, "feed",
		cfg.Parameter{Name: "who", StaticType: animal},
		cfg.Parameter{Name: "amount", StaticType: u.Untyped()}))
	caller := prog.AddProcedure(proc(u, "main"))

	c := symbolic.NewVariable("c", cat, noLoc)
	amount := symbolic.NewConstant(3, u.Untyped(), noLoc)
	call := cfg.NewUnresolvedCall(nil, "feed", FixedOrder(), false, nil,
		[]symbolic.Expression{c, amount}, noLoc)
	caller.AddNode(call)

	cg := New(prog)
	targets, err := cg.ResolveTargets(call)
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 1 || targets[0] != feed {
		t.Fatalf("resolved to %v, expected [feed]", targets)
	}

	resolved, err := cg.Resolve(call)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := resolved.(*cfg.CFGCall); !ok {
		t.Fatalf("expected a resolved call, got %T", resolved)
	}
	if callees := cg.Callees(caller); len(callees) != 1 || callees[0] != feed {
		t.Errorf("recorded callees = %v", callees)
	}
}

func TestResolveByNamePermutation(t *testing.T) {
	u := types.NewUniverse()
	prog := cfg.NewProgram(u)
	add := prog.AddProcedure(proc(u, "add",
		cfg.Parameter{Name: "x", StaticType: u.Untyped()},
		cfg.Parameter{Name: "y", StaticType: u.Untyped()}))
	caller := prog.AddProcedure(proc(u, "main"))

	x := symbolic.NewVariable("x", u.Untyped(), noLoc)
	y := symbolic.NewVariable("y", u.Untyped(), noLoc)
	call := cfg.NewUnresolvedCall(nil, "add", ByName(), false, nil,
		[]symbolic.Expression{y, x}, noLoc)
	caller.AddNode(call)

	cg := New(prog)
	targets, err := cg.ResolveTargets(call)
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 1 || targets[0] != add {
		t.Fatalf("resolved to %v, expected [add]", targets)
	}

	// A positional call with the same arguments does not match a
	// repeated formal.
	bad := cfg.NewUnresolvedCall(nil, "add", ByName(), false, nil,
		[]symbolic.Expression{x, x}, noLoc)
	caller.AddNode(bad)
	if _, err := cg.ResolveTargets(bad); !IsNoMatch(err) {
		t.Errorf("duplicate actual names should not match, got %v", err)
	}
}

func TestResolveVirtualDispatch(t *testing.T) {
	u := types.NewUniverse()
	animal := u.MustNewType("Animal")
	cat := u.MustNewType("Cat", animal)
	dog := u.MustNewType("Dog", animal)
	u.MustNewType("Stone")

	prog := cfg.NewProgram(u)
	cats := prog.AddUnit(cfg.NewUnit("Cat", cat))
	dogs := prog.AddUnit(cfg.NewUnit("Dog", dog))
	catSpeak := cats.AddProcedure(instanceProc(u, "speak"))
	dogSpeak := dogs.AddProcedure(instanceProc(u, "speak"))
	caller := prog.AddProcedure(proc(u, "main"))

	recv := symbolic.NewVariable("a", animal, noLoc)
	call := cfg.NewUnresolvedCall(nil, "speak", FixedOrder(), true, animal,
		[]symbolic.Expression{recv}, noLoc)
	caller.AddNode(call)

	cg := New(prog)
	targets, err := cg.ResolveTargets(call)
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 2 || targets[0] != catSpeak || targets[1] != dogSpeak {
		t.Fatalf("resolved to %v, expected [Cat.speak Dog.speak]", targets)
	}

	// Narrowing the receiver's runtime types prunes the dispatch.
	narrow := cfg.NewUnresolvedCall(nil, "speak", FixedOrder(), true, animal,
		[]symbolic.Expression{recv.WithRuntimeTypes(u.MkSet(dog))}, noLoc)
	caller.AddNode(narrow)
	targets, err = cg.ResolveTargets(narrow)
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 1 || targets[0] != dogSpeak {
		t.Fatalf("resolved to %v, expected [Dog.speak]", targets)
	}

	// With virtual dispatch disabled the imprecise receiver is an error.
	cg.DisableVirtualDispatch()
	_, err = cg.ResolveTargets(call)
	re, ok := err.(*ResolutionError)
	if !ok || re.Failure != Ambiguous {
		t.Errorf("expected an ambiguity error, got %v", err)
	}
}

func TestResolveFailures(t *testing.T) {
	u := types.NewUniverse()
	prog := cfg.NewProgram(u)
	prog.AddProcedure(proc(u, "f"))
	prog.AddProcedure(proc(u, "f"))
	caller := prog.AddProcedure(proc(u, "main"))
	cg := New(prog)

	missing := cfg.NewUnresolvedCall(nil, "nothing", FixedOrder(), false, nil, nil, noLoc)
	caller.AddNode(missing)
	if _, err := cg.ResolveTargets(missing); !IsNoMatch(err) {
		t.Errorf("expected no match, got %v", err)
	}

	dup := cfg.NewUnresolvedCall(nil, "f", FixedOrder(), false, nil, nil, noLoc)
	caller.AddNode(dup)
	_, err := cg.ResolveTargets(dup)
	re, ok := err.(*ResolutionError)
	if !ok || re.Failure != Ambiguous {
		t.Errorf("expected ambiguity, got %v", err)
	}
	if IsNoMatch(err) {
		t.Error("ambiguity must not read as no-match")
	}
}

func TestRecursiveComponents(t *testing.T) {
	u := types.NewUniverse()
	prog := cfg.NewProgram(u)
	a := prog.AddProcedure(proc(u, "a"))
	b := prog.AddProcedure(proc(u, "b"))
	prog.AddProcedure(proc(u, "lonely"))
	d := prog.AddProcedure(proc(u, "d"))

	// a <-> b mutually recursive, d self-recursive, lonely calls nothing.
	a.AddNode(cfg.NewUnresolvedCall(nil, "b", FixedOrder(), false, nil, nil, noLoc))
	b.AddNode(cfg.NewUnresolvedCall(nil, "a", FixedOrder(), false, nil, nil, noLoc))
	d.AddNode(cfg.NewUnresolvedCall(nil, "d", FixedOrder(), false, nil, nil, noLoc))

	var names [][]string
	for _, comp := range RecursiveComponents(prog) {
		var ns []string
		for _, g := range comp {
			ns = append(ns, g.Name())
		}
		names = append(names, ns)
	}
	expected := [][]string{{"a", "b"}, {"d"}}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Errorf("recursive components mismatch (-want +got):\n%s", diff)
	}

	rec := RecursiveProcedures(prog)
	if !rec[a] || !rec[b] || !rec[d] || len(rec) != 3 {
		t.Errorf("recursive procedure set = %v", rec)
	}
}
