package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

// ResolutionStrategy decides whether a candidate signature can receive
// the actual arguments of an unresolved call.
type ResolutionStrategy interface {
	// Matches checks the actuals against the formal parameters of one
	// candidate procedure.
	Matches(formals []Parameter, actuals []symbolic.Expression) bool

	fmt.Stringer
}

// Call is implemented by all call statements.
type Call interface {
	Node
	// Args are the actual arguments, receiver included for instance calls.
	Args() []symbolic.Expression
	// Target is the variable receiving the call result, nil when the
	// result is discarded.
	Target() *symbolic.Variable
}

// callNode carries the state shared by all call statements.
type callNode struct {
	baseNode
	args   []symbolic.Expression
	target *symbolic.Variable
}

func (n *callNode) Args() []symbolic.Expression { return n.args }
func (n *callNode) Target() *symbolic.Variable  { return n.target }

func renderCall(target *symbolic.Variable, callee string, args []symbolic.Expression) string {
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = a.String()
	}
	call := fmt.Sprintf("%s(%s)", callee, strings.Join(strs, ", "))
	if target != nil {
		return fmt.Sprintf("%s := %s", target, call)
	}
	return call
}

// UnresolvedCall is a call whose targets are not yet known. The first
// time its semantics run, the interprocedural analysis rewrites it into
// a resolved call; the rewrite is cached, so resolution is idempotent.
type UnresolvedCall struct {
	callNode
	callee   string
	strategy ResolutionStrategy
	instance bool
	recvType *types.Type

	mu       sync.Mutex
	resolved Call
}

// NewUnresolvedCall creates a call to the procedures named callee,
// matched by the given strategy. For instance calls the first argument
// is the receiver and recvType is its static type; recvType is ignored
// otherwise.
func NewUnresolvedCall(
	target *symbolic.Variable,
	callee string,
	strategy ResolutionStrategy,
	instance bool,
	recvType *types.Type,
	args []symbolic.Expression,
	loc symbolic.CodeLocation,
) *UnresolvedCall {
	return &UnresolvedCall{
		callNode: callNode{baseNode{loc: loc}, args, target},
		callee:   callee,
		strategy: strategy,
		instance: instance,
		recvType: recvType,
	}
}

// Callee is the called name.
func (n *UnresolvedCall) Callee() string { return n.callee }

// Strategy is the parameter matching strategy.
func (n *UnresolvedCall) Strategy() ResolutionStrategy { return n.strategy }

// IsInstance marks calls dispatching on a receiver.
func (n *UnresolvedCall) IsInstance() bool { return n.instance }

// ReceiverType is the static type of the receiver for instance calls.
func (n *UnresolvedCall) ReceiverType() *types.Type { return n.recvType }

// Resolved returns the cached resolution, if any.
func (n *UnresolvedCall) Resolved() Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resolved
}

func (n *UnresolvedCall) resolve(ia Interprocedural) (Call, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.resolved != nil {
		return n.resolved, nil
	}
	res, err := ia.Resolve(n)
	if err != nil {
		return nil, err
	}
	n.resolved = res
	return res, nil
}

func (n *UnresolvedCall) Semantics(pre state.AnalysisState, ia Interprocedural) (state.AnalysisState, error) {
	resolved, err := n.resolve(ia)
	if err != nil {
		return pre, err
	}
	return resolved.Semantics(pre, ia)
}

func (n *UnresolvedCall) String() string {
	return renderCall(n.target, n.callee+"?", n.args)
}

// CFGCall is a call with a known set of target graphs. Multiple targets
// arise from virtual dispatch; their contributions are joined.
type CFGCall struct {
	callNode
	callee  string
	targets []*Graph
}

// NewCFGCall creates a resolved call to the given target graphs.
func NewCFGCall(
	target *symbolic.Variable,
	callee string,
	targets []*Graph,
	args []symbolic.Expression,
	loc symbolic.CodeLocation,
) *CFGCall {
	return &CFGCall{
		callNode: callNode{baseNode{loc: loc}, args, target},
		callee:   callee,
		targets:  targets,
	}
}

// Callee is the called name.
func (n *CFGCall) Callee() string { return n.callee }

// Targets are the procedures the call may dispatch to.
func (n *CFGCall) Targets() []*Graph { return n.targets }

func (n *CFGCall) Semantics(pre state.AnalysisState, ia Interprocedural) (state.AnalysisState, error) {
	return ia.CallContribution(n, pre)
}

func (n *CFGCall) String() string {
	names := make([]string, len(n.targets))
	for i, t := range n.targets {
		names[i] = t.Name()
	}
	return renderCall(n.target, strings.Join(names, "|"), n.args)
}

// OpenCall is a call to code outside the analyzed program. Its effect is
// decided by the configured open call policy.
type OpenCall struct {
	callNode
	callee  string
	retType *types.Type
}

// NewOpenCall creates a call with unknown targets returning the given type.
func NewOpenCall(
	target *symbolic.Variable,
	callee string,
	retType *types.Type,
	args []symbolic.Expression,
	loc symbolic.CodeLocation,
) *OpenCall {
	return &OpenCall{
		callNode: callNode{baseNode{loc: loc}, args, target},
		callee:   callee,
		retType:  retType,
	}
}

// Callee is the called name.
func (n *OpenCall) Callee() string { return n.callee }

// ReturnType is the declared type of the unknown result.
func (n *OpenCall) ReturnType() *types.Type { return n.retType }

func (n *OpenCall) Semantics(pre state.AnalysisState, ia Interprocedural) (state.AnalysisState, error) {
	return ia.OpenCallContribution(n, pre)
}

func (n *OpenCall) String() string {
	return renderCall(n.target, n.callee+"!", n.args)
}

// NativeImpl computes the effect of a runtime-provided procedure
// directly on the analysis state.
type NativeImpl func(target *symbolic.Variable, args []symbolic.Expression, pre state.AnalysisState) (state.AnalysisState, error)

// NativeCall is a call to a procedure whose semantics are provided by
// the analysis itself rather than by a graph.
type NativeCall struct {
	callNode
	callee string
	impl   NativeImpl
}

// NewNativeCall creates a call executed by the given implementation.
func NewNativeCall(
	target *symbolic.Variable,
	callee string,
	impl NativeImpl,
	args []symbolic.Expression,
	loc symbolic.CodeLocation,
) *NativeCall {
	return &NativeCall{
		callNode: callNode{baseNode{loc: loc}, args, target},
		callee:   callee,
		impl:     impl,
	}
}

// Callee is the called name.
func (n *NativeCall) Callee() string { return n.callee }

func (n *NativeCall) Semantics(pre state.AnalysisState, _ Interprocedural) (state.AnalysisState, error) {
	post, err := n.impl(n.target, n.args, pre)
	if err != nil {
		return pre, err
	}
	return post.ForgetMetas(), nil
}

func (n *NativeCall) String() string {
	return renderCall(n.target, n.callee+"#", n.args)
}
