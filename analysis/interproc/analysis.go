// Package interproc computes whole-program analysis results by composing
// intraprocedural fixpoints across call sites. Procedure summaries are
// memoized in a shared cache; call graph cycles are broken with a
// conservative placeholder and closed by re-running the affected
// fixpoints until their exit states stabilize.
package interproc

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gala-analyzer/gala/analysis/callgraph"
	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/fixpoint"
	"github.com/gala-analyzer/gala/analysis/lattice"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/config"
)

// StateSupplier builds the analysis state a procedure starts from: the
// empty environment of the configured abstract domains. The engine never
// inspects domains beyond the state.Domain contract, so any domain
// triple can be supplied.
type StateSupplier func(g *cfg.Graph) state.AnalysisState

// summaryKey identifies one memoized summary: a procedure, optionally
// distinguished by a call-context token.
type summaryKey struct {
	graph *cfg.Graph
	ctx   string
}

func (k summaryKey) String() string {
	if k.ctx == "" {
		return k.graph.Name()
	}
	return k.graph.Name() + "@" + k.ctx
}

// summary is one cache entry. All fields are guarded by Analysis.mu.
type summary struct {
	// inFlight marks a computation in progress; observing it is the
	// cycle path, not an error. At most one computation runs per key.
	inFlight bool
	// stable marks summaries computed without depending on provisional
	// data of an enclosing computation; only stable summaries are reused
	// directly.
	stable bool
	// entry is the canonical entry state the summary covers. Requests
	// with a wider entry trigger recomputation on the joined entry.
	entry state.AnalysisState
	// passes counts solver runs for this key; it drives the switch from
	// joining to widening when merging re-stabilization passes.
	passes int

	res    *fixpoint.Result
	exit   state.AnalysisState
	exitOK bool
}

// Analysis resolves calls and computes memoized procedure summaries. It
// implements the callback contract of the intraprocedural solver through
// per-run frames, so independent procedures may be analyzed from
// concurrent goroutines.
type Analysis struct {
	prog    *cfg.Program
	graph   *callgraph.CallGraph
	conf    *config.Config
	log     *config.LogGroup
	policy  OpenCallPolicy
	initial StateSupplier

	mu    sync.Mutex
	done  *sync.Cond
	cache map[summaryKey]*summary
}

// New assembles an analysis over the given program. The supplier
// provides the empty abstract state procedures start from.
func New(prog *cfg.Program, conf *config.Config, log *config.LogGroup, initial StateSupplier) (*Analysis, error) {
	policy, err := PolicyFromConfig(conf.OpenCallPolicy)
	if err != nil {
		return nil, err
	}
	if conf.ModularWorstCase && conf.OpenCallPolicy == config.OpenCallFail {
		return nil, fmt.Errorf("modular worst case analysis cannot use the %s policy", policy)
	}
	cg := callgraph.New(prog)
	if conf.DisableVirtualDispatch {
		cg.DisableVirtualDispatch()
	}
	a := &Analysis{
		prog:    prog,
		graph:   cg,
		conf:    conf,
		log:     log,
		policy:  policy,
		initial: initial,
		cache:   make(map[summaryKey]*summary),
	}
	a.done = sync.NewCond(&a.mu)
	return a, nil
}

// CallGraph exposes the edges recorded while resolving calls.
func (a *Analysis) CallGraph() *callgraph.CallGraph { return a.graph }

// frame threads the analysis through one solver run. Frames form the
// logical call stack: they carry the context token of nested calls and
// record which in-flight summaries were observed, marking results that
// depend on provisional data.
type frame struct {
	a      *Analysis
	parent *frame
	key    summaryKey
	// cycles holds the keys of in-flight summaries observed during this
	// run, up to the frame that owns them.
	cycles map[summaryKey]bool
}

// markCycle records that an in-flight summary was observed, on every
// frame from the observer up to and including the owner of the key. The
// owner's re-stabilization loop resolves the dependency, so frames above
// it are unaffected.
func (f *frame) markCycle(key summaryKey) {
	for fr := f; fr != nil; fr = fr.parent {
		if fr.cycles == nil {
			fr.cycles = make(map[summaryKey]bool)
		}
		fr.cycles[key] = true
		if fr.key == key {
			return
		}
	}
}

// contextOf derives the cache token for calls made from frame f.
func (a *Analysis) contextOf(f *frame) string {
	if a.conf.ContextSensitivity != config.ContextCallStack {
		return ""
	}
	var callers []string
	for fr, depth := f, 0; fr != nil && depth < a.conf.ContextDepth; fr, depth = fr.parent, depth+1 {
		callers = append(callers, fr.key.graph.Name())
	}
	return strings.Join(callers, "<")
}

// Resolve rewrites an unresolved call. In the modular worst case mode
// every call is treated as open; otherwise resolution is delegated to
// the call graph, falling back to an open call when nothing matches and
// the policy tolerates open calls.
func (f *frame) Resolve(call *cfg.UnresolvedCall) (cfg.Call, error) {
	a := f.a
	if a.conf.ModularWorstCase {
		return a.asOpenCall(call), nil
	}
	resolved, err := a.graph.Resolve(call)
	if err == nil {
		return resolved, nil
	}
	if callgraph.IsNoMatch(err) && a.conf.OpenCallPolicy != config.OpenCallFail {
		a.log.Debugf("no target for %q, treating as open call", call)
		return a.asOpenCall(call), nil
	}
	return nil, err
}

func (a *Analysis) asOpenCall(call *cfg.UnresolvedCall) *cfg.OpenCall {
	ret := openReturnType(call, a.prog.Universe())
	return cfg.NewOpenCall(call.Target(), call.Callee(), ret, call.Args(), call.Location())
}

// OpenCallContribution applies the configured open call policy.
func (f *frame) OpenCallContribution(call *cfg.OpenCall, pre state.AnalysisState) (state.AnalysisState, error) {
	return f.a.policy.Apply(call, pre)
}

// CallContribution composes the summaries of all dispatch targets into
// the caller's state. The contribution of a multi-target call is the
// least upper bound over its targets; targets that provably never return
// contribute nothing, and a call none of whose targets can return leaves
// the rest of the caller unreachable.
func (f *frame) CallContribution(call *cfg.CFGCall, pre state.AnalysisState) (state.AnalysisState, error) {
	var val, typ lattice.Element
	contributed := false

	for _, target := range call.Targets() {
		entry, err := f.a.entryState(target, call)
		if err != nil {
			return pre, err
		}
		exit, returns, err := f.a.resultOf(target, entry, f)
		if err != nil {
			return pre, err
		}
		if !returns {
			continue
		}
		ret := target.ReturnVariable()
		v, err := exit.EvalValue(ret)
		if err != nil {
			return pre, err
		}
		t, err := exit.EvalTypes(ret)
		if err != nil {
			return pre, err
		}
		if !contributed {
			val, typ, contributed = v, t, true
		} else {
			val, typ = val.Join(v), typ.Join(t)
		}
	}

	if !contributed {
		return pre.Bot(), nil
	}
	target := call.Target()
	if target == nil {
		return pre, nil
	}
	post, err := pre.Bind(target, val, typ)
	if err != nil {
		return pre, err
	}
	if target.IsMeta() {
		post = post.AddMeta(target)
	}
	return post, nil
}

// entryState builds the canonical entry state of a callee: every formal
// parameter bound to an unknown value of its declared type, narrowed to
// the runtime types the actual argument may carry. Caller values never
// flow in directly, which keeps summaries reusable across call sites.
func (a *Analysis) entryState(target *cfg.Graph, call *cfg.CFGCall) (state.AnalysisState, error) {
	args := call.Args()
	if target.Descriptor().Instance && len(args) > 0 {
		args = args[1:]
	}
	params := target.ParamVariables()
	if len(args) != len(params) {
		return state.AnalysisState{}, fmt.Errorf(
			"call %q passes %d arguments to %s, which declares %d parameters",
			call, len(args), target.Name(), len(params))
	}
	args = actualsFor(params, args)

	st := a.initial(target)
	for i, p := range params {
		static := p.StaticType()
		rt := static.Universe().AllInstances(static).Intersect(args[i].RuntimeTypes())
		unknown := symbolic.NewPushAnyTyped(static, rt, call.Location())
		var err error
		st, err = st.Assign(p, unknown)
		if err != nil {
			return st, err
		}
	}
	return st.WithExpressions(symbolic.NewExpressionSet()), nil
}

// actualsFor aligns actual arguments with the formal parameters. When
// every actual is a distinct variable naming a formal, the call was
// matched by name and the actuals are reordered accordingly; otherwise
// they are taken positionally.
func actualsFor(params []*symbolic.Variable, args []symbolic.Expression) []symbolic.Expression {
	byName := make(map[string]symbolic.Expression, len(args))
	for _, arg := range args {
		v, ok := arg.(*symbolic.Variable)
		if !ok {
			return args
		}
		if _, dup := byName[v.Name()]; dup {
			return args
		}
		byName[v.Name()] = v
	}
	res := make([]symbolic.Expression, len(params))
	for i, p := range params {
		e, ok := byName[p.Name()]
		if !ok {
			return args
		}
		res[i] = e
	}
	return res
}

// resultOf returns the state after target's exit nodes when analyzed
// from entry, computing and memoizing the summary on first use. The
// second result is false when the procedure provably never returns.
//
// A request observing a summary that is currently being computed takes
// one of two paths. A nested request, one reached through an active
// analysis run, yields a conservative placeholder instead of blocking;
// the requesting run is marked as depending on provisional data and will
// be re-stabilized or recomputed. A top-level request has no run to
// re-stabilize, so it waits for the in-flight computation to finish and
// then proceeds against the settled summary.
func (a *Analysis) resultOf(target *cfg.Graph, entry state.AnalysisState, from *frame) (state.AnalysisState, bool, error) {
	key := summaryKey{graph: target, ctx: a.contextOf(from)}

	a.mu.Lock()
	sum, found := a.cache[key]
	if !found {
		sum = &summary{}
		a.cache[key] = sum
	}
	for sum.inFlight {
		if from != nil {
			from.markCycle(key)
			if sum.passes > 0 {
				exit, ok := sum.exit, sum.exitOK
				a.mu.Unlock()
				return exit, ok, nil
			}
			a.mu.Unlock()
			return a.placeholderExit(target, entry)
		}
		a.done.Wait()
	}
	if sum.stable && entry.Leq(sum.entry) {
		exit, ok := sum.exit, sum.exitOK
		a.mu.Unlock()
		return exit, ok, nil
	}
	// Miss, provisional result, or a wider entry: (re)compute. Entries
	// grow monotonically so repeated recomputation converges.
	if sum.passes > 0 {
		entry = sum.entry.MonoJoin(entry)
	}
	sum.inFlight = true
	sum.entry = entry
	a.mu.Unlock()

	a.log.Debugf("analyzing %s", key)
	exit, ok, err := a.stabilize(key, sum, entry, from)
	a.mu.Lock()
	sum.inFlight = false
	a.done.Broadcast()
	a.mu.Unlock()
	return exit, ok, err
}

// stabilize runs the solver over the key's procedure, repeating the run
// while it depends on its own in-flight summary and the exit state still
// grows. Successive exits are merged join-then-widen under the
// configured threshold, so the loop terminates on any domain with a
// proper widening.
func (a *Analysis) stabilize(key summaryKey, sum *summary, entry state.AnalysisState, from *frame) (state.AnalysisState, bool, error) {
	for {
		fr := &frame{a: a, parent: from, key: key}
		res, err := fixpoint.Solve(key.graph, entry, fr, fixpoint.Options{
			WorkingSet:        a.conf.WorkingSet,
			WideningThreshold: a.conf.WideningThreshold,
			Logger:            a.log,
		})
		if err != nil {
			return entry, false, err
		}
		exit, reached := res.ExitState()
		selfCycle := fr.cycles[key]
		delete(fr.cycles, key)
		outerCycle := len(fr.cycles) > 0

		a.mu.Lock()
		sum.passes++
		converged := !selfCycle
		if !converged && sum.passes > 1 {
			switch {
			case reached && sum.exitOK:
				if exit.Leq(sum.exit) {
					exit = sum.exit
					converged = true
				} else if sum.passes <= a.conf.WideningThreshold+1 {
					exit = sum.exit.MonoJoin(exit)
				} else {
					exit = sum.exit.MonoWiden(exit)
				}
			case !reached && sum.exitOK:
				// The previous pass reached an exit through the
				// placeholder; nothing new to add.
				exit, reached = sum.exit, true
				converged = true
			case !reached && !sum.exitOK:
				converged = true
			}
		}
		sum.res = res
		sum.exit, sum.exitOK = exit, reached
		if converged {
			// Results depending on an enclosing in-flight computation
			// stay provisional and are recomputed on the next request.
			sum.stable = !outerCycle
			a.mu.Unlock()
			if selfCycle {
				a.log.Debugf("%s stabilized after %d passes", key, sum.passes)
			}
			return exit, reached, nil
		}
		a.mu.Unlock()
	}
}

// placeholderExit is the cycle placeholder handed to a caller while the
// callee's first pass is still running: the entry state extended with a
// completely unknown return value.
func (a *Analysis) placeholderExit(target *cfg.Graph, entry state.AnalysisState) (state.AnalysisState, bool, error) {
	ret := target.ReturnVariable()
	unknown := symbolic.NewPushAny(ret.StaticType(), target.Descriptor().Location)
	st, err := entry.Assign(ret, unknown)
	if err != nil {
		return entry, false, err
	}
	return st, true, nil
}
