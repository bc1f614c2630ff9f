package callgraph

import (
	"sort"

	"github.com/yourbasic/graph"

	"github.com/gala-analyzer/gala/analysis/cfg"
)

// RecursiveComponents computes the strongly connected components of the
// program's call graph and keeps the ones that involve recursion:
// components of two or more procedures, and single procedures that call
// themselves. Calls that are still unresolved contribute edges to every
// procedure sharing the called name, so the result over-approximates
// the recursion actually reachable at analysis time.
//
// Components are returned in qualified-name order, as are the
// procedures within each component.
func RecursiveComponents(prog *cfg.Program) [][]*cfg.Graph {
	procs := prog.Procedures()
	index := make(map[*cfg.Graph]int, len(procs))
	for i, g := range procs {
		index[g] = i
	}

	// Self edges are tracked separately since the component algorithm
	// reports every vertex as its own component regardless of loops.
	dg := graph.New(len(procs))
	selfLoop := make([]bool, len(procs))
	addEdge := func(from, to *cfg.Graph) {
		v, w := index[from], index[to]
		if v == w {
			selfLoop[v] = true
			return
		}
		dg.Add(v, w)
	}

	for _, g := range procs {
		for _, n := range g.Nodes() {
			switch call := n.(type) {
			case *cfg.UnresolvedCall:
				if res, ok := call.Resolved().(*cfg.CFGCall); ok {
					for _, t := range res.Targets() {
						addEdge(g, t)
					}
					continue
				}
				for _, t := range prog.ProceduresNamed(call.Callee()) {
					addEdge(g, t)
				}
			case *cfg.CFGCall:
				for _, t := range call.Targets() {
					addEdge(g, t)
				}
			}
		}
	}

	var res [][]*cfg.Graph
	for _, comp := range graph.StrongComponents(dg) {
		if len(comp) == 1 && !selfLoop[comp[0]] {
			continue
		}
		members := make([]*cfg.Graph, len(comp))
		for i, v := range comp {
			members[i] = procs[v]
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Name() < members[j].Name()
		})
		res = append(res, members)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i][0].Name() < res[j][0].Name()
	})
	return res
}

// RecursiveProcedures flattens RecursiveComponents into a membership set.
func RecursiveProcedures(prog *cfg.Program) map[*cfg.Graph]bool {
	rec := make(map[*cfg.Graph]bool)
	for _, comp := range RecursiveComponents(prog) {
		for _, g := range comp {
			rec[g] = true
		}
	}
	return rec
}
