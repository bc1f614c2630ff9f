package cfg

import (
	"fmt"

	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
)

// FunctionEntry marks the single entry point of a graph. Executing it
// leaves the state untouched.
type FunctionEntry struct {
	baseNode
}

// NewFunctionEntry creates an entry marker.
func NewFunctionEntry(loc symbolic.CodeLocation) *FunctionEntry {
	return &FunctionEntry{baseNode{loc: loc}}
}

func (n *FunctionEntry) Semantics(pre state.AnalysisState, _ Interprocedural) (state.AnalysisState, error) {
	return pre, nil
}

func (n *FunctionEntry) String() string {
	if n.graph != nil {
		return "entry:" + n.graph.Name()
	}
	return "entry"
}

// Assignment stores the value of an expression in a variable.
type Assignment struct {
	baseNode
	target *symbolic.Variable
	value  symbolic.Expression
}

// NewAssignment creates the statement `target := value`.
func NewAssignment(target *symbolic.Variable, value symbolic.Expression, loc symbolic.CodeLocation) *Assignment {
	return &Assignment{baseNode{loc: loc}, target, value}
}

// Target is the assigned variable.
func (n *Assignment) Target() *symbolic.Variable { return n.target }

// Value is the assigned expression.
func (n *Assignment) Value() symbolic.Expression { return n.value }

func (n *Assignment) Semantics(pre state.AnalysisState, _ Interprocedural) (state.AnalysisState, error) {
	post, err := pre.Assign(n.target, n.value)
	if err != nil {
		return pre, err
	}
	return post.ForgetMetas(), nil
}

func (n *Assignment) String() string {
	return fmt.Sprintf("%s := %s", n.target, n.value)
}

// Conditional is implemented by statements whose outgoing true/false
// edges refine the state by assuming (the negation of) a condition.
type Conditional interface {
	Node
	Condition() symbolic.Expression
}

// Condition guards a two-way branch. The statement itself only makes the
// condition available; the branch refinement happens on its outgoing
// edges.
type Condition struct {
	baseNode
	cond symbolic.Expression
}

// NewCondition creates a branch guard.
func NewCondition(cond symbolic.Expression, loc symbolic.CodeLocation) *Condition {
	return &Condition{baseNode{loc: loc}, cond}
}

// Condition returns the guarding expression.
func (n *Condition) Condition() symbolic.Expression { return n.cond }

func (n *Condition) Semantics(pre state.AnalysisState, _ Interprocedural) (state.AnalysisState, error) {
	return pre.WithExpressions(symbolic.NewExpressionSet(n.cond)).ForgetMetas(), nil
}

func (n *Condition) String() string {
	return fmt.Sprintf("if %s", n.cond)
}

// Return surrenders a value to the caller by assigning it to the graph's
// return variable. A nil value models a bare return.
type Return struct {
	baseNode
	value symbolic.Expression
}

// NewReturn creates the statement `return value`.
func NewReturn(value symbolic.Expression, loc symbolic.CodeLocation) *Return {
	return &Return{baseNode{loc: loc}, value}
}

// Value is the returned expression, nil for a bare return.
func (n *Return) Value() symbolic.Expression { return n.value }

func (n *Return) Semantics(pre state.AnalysisState, _ Interprocedural) (state.AnalysisState, error) {
	if n.value == nil {
		return pre.ForgetMetas(), nil
	}
	post, err := pre.Assign(n.graph.ReturnVariable(), n.value)
	if err != nil {
		return pre, err
	}
	return post.ForgetMetas(), nil
}

func (n *Return) String() string {
	if n.value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", n.value)
}

// NoOp is a statement without semantic effect, useful as a join point.
type NoOp struct {
	baseNode
}

// NewNoOp creates a skip statement.
func NewNoOp(loc symbolic.CodeLocation) *NoOp {
	return &NoOp{baseNode{loc: loc}}
}

func (n *NoOp) Semantics(pre state.AnalysisState, _ Interprocedural) (state.AnalysisState, error) {
	return pre, nil
}

func (n *NoOp) String() string {
	return "skip"
}
