package cfg

import (
	"fmt"

	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/types"
)

// Parameter is a formal parameter of a procedure.
type Parameter struct {
	Name       string
	StaticType *types.Type
}

func (p Parameter) String() string {
	return p.Name + " " + p.StaticType.Name()
}

// Descriptor carries the signature and provenance of a procedure.
type Descriptor struct {
	// Name is the procedure's declared name, without the unit prefix.
	Name string
	// Params are the formal parameters, receiver excluded.
	Params []Parameter
	// ReturnType is the declared return type; untyped when the
	// procedure returns nothing of interest.
	ReturnType *types.Type
	// Unit is the defining unit, nil for unit-less procedures.
	Unit *Unit
	// Instance marks procedures that dispatch on a receiver.
	Instance bool
	// Location points at the declaration site.
	Location symbolic.CodeLocation
}

// QualifiedName renders the name prefixed by the defining unit.
func (d Descriptor) QualifiedName() string {
	if d.Unit != nil {
		return d.Unit.Name() + "." + d.Name
	}
	return d.Name
}

// Graph is the control flow graph of one procedure.
type Graph struct {
	desc    Descriptor
	entry   *FunctionEntry
	nodes   []Node
	retVar  *symbolic.Variable
	prmVars []*symbolic.Variable
}

// NewGraph creates a graph with a fresh entry node for the given
// signature. The return variable and formal parameter variables are
// synthesized eagerly so they can be shared by all statements.
func NewGraph(desc Descriptor) *Graph {
	g := &Graph{desc: desc}
	g.retVar = symbolic.NewVariable("#ret", desc.ReturnType, desc.Location)
	for _, p := range desc.Params {
		g.prmVars = append(g.prmVars, symbolic.NewVariable(p.Name, p.StaticType, desc.Location))
	}
	g.entry = NewFunctionEntry(desc.Location)
	g.AddNode(g.entry)
	return g
}

// Descriptor returns the procedure's signature.
func (g *Graph) Descriptor() Descriptor { return g.desc }

// Name returns the procedure's qualified name.
func (g *Graph) Name() string { return g.desc.QualifiedName() }

// Entry returns the unique entry node.
func (g *Graph) Entry() *FunctionEntry { return g.entry }

// Nodes returns all statements in insertion order.
func (g *Graph) Nodes() []Node { return g.nodes }

// ReturnVariable is the synthetic variable return statements assign to.
func (g *Graph) ReturnVariable() *symbolic.Variable { return g.retVar }

// ParamVariables are the variables the formal parameters are bound to at
// procedure entry, in declaration order.
func (g *Graph) ParamVariables() []*symbolic.Variable { return g.prmVars }

// AddNode inserts a statement into the graph and returns it.
func (g *Graph) AddNode(n Node) Node {
	n.setOwner(g, len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n
}

// AddEdge wires a control flow edge between two statements of the graph.
func (g *Graph) AddEdge(from, to Node, kind EdgeKind) {
	if from.Graph() != g || to.Graph() != g {
		panic(fmt.Sprintf("edge %s -> %s crosses graphs", from, to))
	}
	e := Edge{From: from, To: to, Kind: kind}
	from.addSucc(e)
	to.addPred(e)
}

// Exits returns the statements without outgoing edges.
func (g *Graph) Exits() []Node {
	var exits []Node
	for _, n := range g.nodes {
		if len(n.Successors()) == 0 {
			exits = append(exits, n)
		}
	}
	return exits
}

// Validate checks the structural invariants the fixpoint engine relies
// on: a single entry without predecessors, every statement reachable
// from it, and branch edges appearing only in true/false pairs on
// conditional statements.
func (g *Graph) Validate() error {
	if g.entry == nil {
		return fmt.Errorf("graph %s has no entry", g.Name())
	}
	if len(g.entry.Predecessors()) > 0 {
		return fmt.Errorf("graph %s: entry has predecessors", g.Name())
	}

	reachable := make(map[Node]bool)
	stack := []Node{g.entry}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[n] {
			continue
		}
		reachable[n] = true
		for _, e := range n.Successors() {
			stack = append(stack, e.To)
		}
	}
	for _, n := range g.nodes {
		if !reachable[n] {
			return fmt.Errorf("graph %s: statement %q is unreachable", g.Name(), n)
		}
	}

	for _, n := range g.nodes {
		var seq, tru, fls int
		for _, e := range n.Successors() {
			switch e.Kind {
			case Sequential:
				seq++
			case TrueBranch:
				tru++
			case FalseBranch:
				fls++
			}
		}
		if _, ok := n.(Conditional); ok {
			if seq > 0 || tru != 1 || fls != 1 {
				return fmt.Errorf("graph %s: conditional %q must have exactly one true and one false successor", g.Name(), n)
			}
		} else if tru > 0 || fls > 0 {
			return fmt.Errorf("graph %s: non-conditional %q has branch successors", g.Name(), n)
		}
	}

	return nil
}

func (g *Graph) String() string {
	return g.Name()
}
