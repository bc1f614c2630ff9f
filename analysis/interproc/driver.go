package interproc

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/gala-analyzer/gala/analysis/callgraph"
	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/fixpoint"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// ProgramResult maps every analyzed procedure to its fixpoint result:
// the abstract state valid before and after each of its statements.
type ProgramResult struct {
	results map[*cfg.Graph]*fixpoint.Result
}

// ResultOf returns the fixpoint result of the given procedure.
func (r *ProgramResult) ResultOf(g *cfg.Graph) (*fixpoint.Result, bool) {
	res, ok := r.results[g]
	return res, ok
}

// Graphs returns the analyzed procedures in qualified-name order.
func (r *ProgramResult) Graphs() []*cfg.Graph {
	graphs := maps.Keys(r.results)
	slices.SortFunc(graphs, func(a, b *cfg.Graph) bool { return a.Name() < b.Name() })
	return graphs
}

// AnalyzeProgram analyzes every procedure of the program as if called
// from an unknown context, reusing summaries across cross-calls. The
// run either produces a result for every procedure or fails fast with
// the first error; partial results are never published.
func (a *Analysis) AnalyzeProgram() (*ProgramResult, error) {
	procs := a.prog.Procedures()

	// Recursive components need extra stabilization passes; name them up
	// front so their runs can be told apart in the log.
	for _, comp := range callgraph.RecursiveComponents(a.prog) {
		names := make([]string, len(comp))
		for i, g := range comp {
			names[i] = g.Name()
		}
		a.log.Debugf("recursive component: %s", strings.Join(names, ", "))
	}

	var group errgroup.Group
	if a.conf.Parallelism > 1 {
		group.SetLimit(a.conf.Parallelism)
	} else {
		group.SetLimit(1)
	}
	for _, g := range procs {
		g := g
		group.Go(func() error {
			entry, err := a.worstCaseEntry(g)
			if err != nil {
				return err
			}
			_, _, err = a.resultOf(g, entry, nil)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	res := &ProgramResult{results: make(map[*cfg.Graph]*fixpoint.Result, len(procs))}
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, sum := range a.cache {
		if key.ctx == "" && sum.res != nil {
			res.results[key.graph] = sum.res
		}
	}
	return res, nil
}

// worstCaseEntry is the entry state of a procedure driven from outside
// the program: every parameter holds an unknown value of its declared
// type.
func (a *Analysis) worstCaseEntry(g *cfg.Graph) (state.AnalysisState, error) {
	st := a.initial(g)
	for _, p := range g.ParamVariables() {
		unknown := symbolic.NewPushAny(p.StaticType(), g.Descriptor().Location)
		var err error
		st, err = st.Assign(p, unknown)
		if err != nil {
			return st, err
		}
	}
	return st.WithExpressions(symbolic.NewExpressionSet()), nil
}
