package callgraph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

// ResolutionFailure classifies why a call could not be resolved.
type ResolutionFailure int

const (
	// NoMatch means no known procedure accepts the call.
	NoMatch ResolutionFailure = iota
	// Ambiguous means several procedures accept a call that must have a
	// single target.
	Ambiguous
)

// ResolutionError reports a failed call resolution.
type ResolutionError struct {
	Call    *cfg.UnresolvedCall
	Failure ResolutionFailure
}

func (e *ResolutionError) Error() string {
	switch e.Failure {
	case Ambiguous:
		return fmt.Sprintf("call to %s at %s is ambiguous", e.Call.Callee(), e.Call.Location())
	default:
		return fmt.Sprintf("call to %s at %s matches no known procedure", e.Call.Callee(), e.Call.Location())
	}
}

// IsNoMatch reports whether err is a resolution error for a call without
// any matching procedure.
func IsNoMatch(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Failure == NoMatch
}

// CallGraph resolves calls against a program and records the resolved
// edges. Target sets are deterministic: candidates are considered in
// qualified-name order.
type CallGraph struct {
	prog *cfg.Program
	// noVirtual rejects instance calls with more than one dispatchable
	// target instead of keeping them as multi-target calls.
	noVirtual bool

	mu sync.Mutex
	// edges maps each procedure to the procedures it was resolved to
	// call, deduplicated.
	edges map[*cfg.Graph]map[*cfg.Graph]bool
}

// New creates an empty call graph over the program.
func New(prog *cfg.Program) *CallGraph {
	return &CallGraph{
		prog:  prog,
		edges: make(map[*cfg.Graph]map[*cfg.Graph]bool),
	}
}

// Program returns the program the graph resolves against.
func (cg *CallGraph) Program() *cfg.Program { return cg.prog }

// DisableVirtualDispatch makes multi-target instance calls ambiguous.
func (cg *CallGraph) DisableVirtualDispatch() {
	cg.noVirtual = true
}

// ResolveTargets computes the procedures a call may dispatch to.
//
// Candidates share the called name and satisfy the call's resolution
// strategy. Instance calls additionally dispatch on the receiver: a
// candidate defined on unit U is kept when some possible runtime type of
// the receiver is a subtype of U's type. Zero candidates yield a NoMatch
// error; multiple candidates are only legal for instance calls, where
// they model virtual dispatch over an imprecise receiver.
func (cg *CallGraph) ResolveTargets(call *cfg.UnresolvedCall) ([]*cfg.Graph, error) {
	var targets []*cfg.Graph
	for _, g := range cg.prog.ProceduresNamed(call.Callee()) {
		if g.Descriptor().Instance != call.IsInstance() {
			continue
		}
		if call.IsInstance() && !dispatchable(call, g) {
			continue
		}
		if !call.Strategy().Matches(g.Descriptor().Params, formalActuals(call)) {
			continue
		}
		targets = append(targets, g)
	}

	switch {
	case len(targets) == 0:
		return nil, &ResolutionError{Call: call, Failure: NoMatch}
	case len(targets) > 1 && (!call.IsInstance() || cg.noVirtual):
		return nil, &ResolutionError{Call: call, Failure: Ambiguous}
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Name() < targets[j].Name()
	})
	return targets, nil
}

// Resolve rewrites an unresolved call into a resolved call statement
// and records the edges from the calling procedure.
func (cg *CallGraph) Resolve(call *cfg.UnresolvedCall) (cfg.Call, error) {
	targets, err := cg.ResolveTargets(call)
	if err != nil {
		return nil, err
	}
	cg.record(call.Graph(), targets)
	return cfg.NewCFGCall(call.Target(), call.Callee(), targets, call.Args(), call.Location()), nil
}

func (cg *CallGraph) record(from *cfg.Graph, targets []*cfg.Graph) {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	tos, ok := cg.edges[from]
	if !ok {
		tos = make(map[*cfg.Graph]bool)
		cg.edges[from] = tos
	}
	for _, t := range targets {
		tos[t] = true
	}
}

// Callees returns the recorded targets of the given procedure in
// qualified-name order.
func (cg *CallGraph) Callees(from *cfg.Graph) []*cfg.Graph {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	var res []*cfg.Graph
	for t := range cg.edges[from] {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

// dispatchable checks whether the receiver of an instance call may be an
// instance of the candidate's unit. The hierarchy component check prunes
// candidates from unrelated type hierarchies before the subtype walk.
func dispatchable(call *cfg.UnresolvedCall, g *cfg.Graph) bool {
	unit := g.Descriptor().Unit
	if unit == nil || len(call.Args()) == 0 {
		return false
	}
	recv := call.Args()[0]

	unitType := unit.Type()
	ok := false
	recv.RuntimeTypes().ForEach(func(t *types.Type) {
		if ok {
			return
		}
		if t.IsUntyped() {
			ok = true
			return
		}
		if types.SameHierarchy(t, unitType) && t.IsSubtypeOf(unitType) {
			ok = true
		}
	})
	return ok
}

// formalActuals strips the receiver from the actuals of instance calls,
// aligning them with the candidate's declared parameters.
func formalActuals(call *cfg.UnresolvedCall) []symbolic.Expression {
	if call.IsInstance() && len(call.Args()) > 0 {
		return call.Args()[1:]
	}
	return call.Args()
}
