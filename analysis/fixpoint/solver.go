// Package fixpoint computes intraprocedural abstract fixpoints by
// chaotic iteration over a working set, with join-then-widen merging at
// every statement.
package fixpoint

import (
	"fmt"

	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/config"
	"github.com/gala-analyzer/gala/utils/pq"
	"github.com/gala-analyzer/gala/utils/worklist"
)

// Error is returned when statement semantics fail. The whole fixpoint is
// aborted; no partial result is exposed.
type Error struct {
	Graph *cfg.Graph
	Node  cfg.Node
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("semantics of %q in %s: %v", e.Node, e.Graph.Name(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options tune one intraprocedural fixpoint computation.
type Options struct {
	// WorkingSet picks the iteration order, see the config constants.
	WorkingSet string
	// WideningThreshold is the number of exact joins granted to each
	// statement before switching to widening.
	WideningThreshold int
	// Logger receives per-iteration traces. Must not be nil.
	Logger *config.LogGroup
}

// Result maps every reachable statement of a graph to the abstract
// states before and after it.
type Result struct {
	Graph *cfg.Graph
	Pre   map[cfg.Node]state.AnalysisState
	Post  map[cfg.Node]state.AnalysisState
	// Visits counts how often each statement's semantics ran.
	Visits map[cfg.Node]int
	// Iterations is the total number of statement visits.
	Iterations int
}

// PostOf returns the state after the given statement. Statements never
// reached report false.
func (r *Result) PostOf(n cfg.Node) (state.AnalysisState, bool) {
	s, ok := r.Post[n]
	return s, ok
}

// PreOf returns the state before the given statement.
func (r *Result) PreOf(n cfg.Node) (state.AnalysisState, bool) {
	s, ok := r.Pre[n]
	return s, ok
}

// ExitState joins the post states of all exit statements. The second
// result is false when no exit was reached, e.g. for a procedure that
// provably diverges.
func (r *Result) ExitState() (state.AnalysisState, bool) {
	var res state.AnalysisState
	found := false
	for _, n := range r.Graph.Exits() {
		if s, ok := r.Post[n]; ok {
			if !found {
				res, found = s, true
			} else {
				res = res.MonoJoin(s)
			}
		}
	}
	return res, found
}

// newWorkingSet builds the working set for the configured iteration
// order. The priority order is reverse postorder from the entry, which
// stabilizes loop bodies before re-examining their headers.
func newWorkingSet(g *cfg.Graph, kind string) worklist.WorkingSet[cfg.Node] {
	switch kind {
	case config.WorkingSetFIFO:
		return worklist.EmptyFIFO[cfg.Node]()
	case config.WorkingSetLIFO:
		return worklist.EmptyLIFO[cfg.Node]()
	default:
		rpo := reversePostorder(g)
		return pq.Empty(func(a, b cfg.Node) bool {
			return rpo[a] < rpo[b]
		})
	}
}

func reversePostorder(g *cfg.Graph) map[cfg.Node]int {
	visited := make(map[cfg.Node]bool)
	var order []cfg.Node
	var visit func(cfg.Node)
	visit = func(n cfg.Node) {
		visited[n] = true
		for _, e := range n.Successors() {
			if !visited[e.To] {
				visit(e.To)
			}
		}
		order = append(order, n)
	}
	visit(g.Entry())

	rpo := make(map[cfg.Node]int, len(order))
	for i, n := range order {
		rpo[n] = len(order) - i
	}
	return rpo
}

// Solve iterates the graph's statement semantics to a fixpoint, starting
// from the given state at the entry. The state before a statement is the
// join of its predecessors' post states, refined along branch edges by
// assuming the branch condition or its negation.
func Solve(g *cfg.Graph, entry state.AnalysisState, ia cfg.Interprocedural, opts Options) (*Result, error) {
	res := &Result{
		Graph:  g,
		Pre:    make(map[cfg.Node]state.AnalysisState),
		Post:   make(map[cfg.Node]state.AnalysisState),
		Visits: make(map[cfg.Node]int),
	}

	ws := newWorkingSet(g, opts.WorkingSet)
	ws.Add(g.Entry())

	// Merges counts the visits that actually grew a statement's post
	// state. Only those consume widening budget: re-examining a statement
	// with an unchanged result must not push it over the threshold.
	merges := make(map[cfg.Node]int)

	for !ws.IsEmpty() {
		n := ws.GetNext()

		pre, reached, err := preState(g, n, entry, res.Post)
		if err != nil {
			return nil, &Error{Graph: g, Node: n, Err: err}
		}
		if !reached {
			// All predecessors are still at bottom.
			continue
		}
		res.Pre[n] = pre

		post, err := n.Semantics(pre, ia)
		if err != nil {
			return nil, &Error{Graph: g, Node: n, Err: err}
		}

		res.Visits[n]++
		res.Iterations++
		if opts.Logger.LogsTrace() {
			opts.Logger.Tracef("%s: visit %d of %q", g.Name(), res.Visits[n], n)
		}

		old, seen := res.Post[n]
		if seen {
			if post.Leq(old) {
				continue
			}
			if merges[n] < opts.WideningThreshold {
				res.Post[n] = old.MonoJoin(post)
			} else {
				res.Post[n] = old.MonoWiden(post)
			}
			merges[n]++
		} else {
			res.Post[n] = post
		}

		for _, e := range n.Successors() {
			ws.Add(e.To)
		}
	}

	opts.Logger.Debugf("%s: fixpoint reached after %d statement visits", g.Name(), res.Iterations)
	return res, nil
}

// preState joins the contributions of all predecessor edges, or yields
// the entry state for the entry statement.
func preState(
	g *cfg.Graph,
	n cfg.Node,
	entry state.AnalysisState,
	post map[cfg.Node]state.AnalysisState,
) (state.AnalysisState, bool, error) {
	var pre state.AnalysisState
	reached := false
	if n == cfg.Node(g.Entry()) {
		pre, reached = entry, true
	}

	for _, e := range n.Predecessors() {
		p, ok := post[e.From]
		if !ok {
			continue
		}
		refined, err := edgeState(e, p)
		if err != nil {
			return pre, false, err
		}
		if !reached {
			pre, reached = refined, true
		} else {
			pre = pre.MonoJoin(refined)
		}
	}
	return pre, reached, nil
}

// edgeState applies the branch refinement carried by the edge.
func edgeState(e cfg.Edge, st state.AnalysisState) (state.AnalysisState, error) {
	switch e.Kind {
	case cfg.TrueBranch:
		return st.Assume(e.From.(cfg.Conditional).Condition())
	case cfg.FalseBranch:
		return st.Assume(negate(e.From.(cfg.Conditional).Condition()))
	default:
		return st, nil
	}
}

// negate builds the complement of a branch condition, flipping
// comparison operators instead of stacking negations where possible.
func negate(cond symbolic.Expression) symbolic.Expression {
	switch cond := cond.(type) {
	case *symbolic.BinaryExpr:
		if cond.Op.IsComparison() {
			return symbolic.NewBinary(cond.Op.Negate(), cond.Left, cond.Right, cond.StaticType(), cond.Location())
		}
	case *symbolic.UnaryExpr:
		if cond.Op == symbolic.Not {
			return cond.Arg
		}
	}
	return symbolic.NewUnary(symbolic.Not, cond, cond.StaticType(), cond.Location())
}
