// Package cfg models analyzed procedures as control flow graphs of
// statement nodes, and defines the statement semantics the fixpoint
// engine applies to abstract states.
package cfg

import (
	"fmt"

	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// EdgeKind discriminates the control flow edges of a graph.
type EdgeKind int

const (
	// Sequential edges transfer the state unchanged.
	Sequential EdgeKind = iota
	// TrueBranch edges refine the state by assuming the source condition.
	TrueBranch
	// FalseBranch edges refine the state by assuming the negated source
	// condition.
	FalseBranch
)

func (k EdgeKind) String() string {
	switch k {
	case Sequential:
		return "seq"
	case TrueBranch:
		return "true"
	case FalseBranch:
		return "false"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// Edge is a directed control flow edge.
type Edge struct {
	From Node
	To   Node
	Kind EdgeKind
}

// Interprocedural is the callback surface statement semantics use to
// reason about calls. It is implemented by the interprocedural analysis
// and injected into Semantics by the fixpoint engine, which keeps the
// intraprocedural solver oblivious to how call summaries are produced.
type Interprocedural interface {
	// Resolve rewrites an unresolved call into a resolved one.
	Resolve(call *UnresolvedCall) (Call, error)
	// CallContribution computes the post state of a resolved call with
	// known targets, given the state before the call.
	CallContribution(call *CFGCall, pre state.AnalysisState) (state.AnalysisState, error)
	// OpenCallContribution computes the post state of a call whose
	// targets are outside the analyzed program.
	OpenCallContribution(call *OpenCall, pre state.AnalysisState) (state.AnalysisState, error)
}

// Node is a statement of a control flow graph.
type Node interface {
	ID() int
	Graph() *Graph
	Successors() []Edge
	Predecessors() []Edge
	Location() symbolic.CodeLocation

	// Semantics computes the post state of executing the statement on
	// the given pre state.
	Semantics(pre state.AnalysisState, ia Interprocedural) (state.AnalysisState, error)

	fmt.Stringer

	// setOwner wires the node into its graph. Nodes belong to exactly
	// one graph.
	setOwner(g *Graph, id int)
	addSucc(e Edge)
	addPred(e Edge)
}

// baseNode carries the graph bookkeeping shared by all statements.
type baseNode struct {
	id    int
	graph *Graph
	succs []Edge
	preds []Edge
	loc   symbolic.CodeLocation
}

func (n *baseNode) ID() int                         { return n.id }
func (n *baseNode) Graph() *Graph                   { return n.graph }
func (n *baseNode) Successors() []Edge              { return n.succs }
func (n *baseNode) Predecessors() []Edge            { return n.preds }
func (n *baseNode) Location() symbolic.CodeLocation { return n.loc }

func (n *baseNode) setOwner(g *Graph, id int) {
	if n.graph != nil {
		panic(fmt.Sprintf("node %d is already owned by %s", n.id, n.graph.Name()))
	}
	n.graph = g
	n.id = id
}

func (n *baseNode) addSucc(e Edge) { n.succs = append(n.succs, e) }
func (n *baseNode) addPred(e Edge) { n.preds = append(n.preds, e) }
