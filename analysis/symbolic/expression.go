// Package symbolic implements the expression language that statement
// semantics communicate to abstract domains. Expressions are immutable
// trees carrying the static type and the set of runtime types the
// evaluated value may have.
package symbolic

import (
	"fmt"
	"sync/atomic"

	"github.com/gala-analyzer/gala/types"
)

// Expression is implemented by every node of the symbolic expression
// language. Implementations are immutable.
type Expression interface {
	// StaticType is the declared type of the expression, or the untyped
	// type when nothing is known statically.
	StaticType() *types.Type
	// RuntimeTypes is the set of types the expression may evaluate to.
	// It always refines (is a subset of) the instances of the static type.
	RuntimeTypes() types.TypeSet
	// Location points into the analyzed source.
	Location() CodeLocation

	fmt.Stringer
}

// expr carries the typing and location information common to all
// expression nodes.
type expr struct {
	static  *types.Type
	runtime types.TypeSet
	loc     CodeLocation
}

func mkExpr(static *types.Type, runtime types.TypeSet, loc CodeLocation) expr {
	return expr{static: static, runtime: runtime, loc: loc}
}

func (e expr) StaticType() *types.Type     { return e.static }
func (e expr) RuntimeTypes() types.TypeSet { return e.runtime }
func (e expr) Location() CodeLocation      { return e.loc }

// Variable is a named program or synthetic variable.
type Variable struct {
	expr
	name string
	meta bool
}

// NewVariable creates a program variable with the given static type.
// Its runtime types start out as all instances of the static type.
func NewVariable(name string, static *types.Type, loc CodeLocation) *Variable {
	return &Variable{
		expr: mkExpr(static, static.Universe().AllInstances(static), loc),
		name: name,
	}
}

var metaCounter atomic.Int64

// NewMetaVariable creates a fresh synthetic variable, used to carry the
// value returned by a call into the caller's state. Meta variables never
// collide with program variables and are purged once consumed.
func NewMetaVariable(static *types.Type, loc CodeLocation) *Variable {
	n := metaCounter.Add(1)
	v := NewVariable(fmt.Sprintf("$ret%d", n), static, loc)
	v.meta = true
	return v
}

// Name returns the variable's name. Names identify variables within a
// single procedure's state.
func (v *Variable) Name() string { return v.name }

// IsMeta reports whether the variable was synthesized by the analysis.
func (v *Variable) IsMeta() bool { return v.meta }

// WithRuntimeTypes derives a variable whose runtime types are narrowed
// to the given set.
func (v *Variable) WithRuntimeTypes(ts types.TypeSet) *Variable {
	w := *v
	w.runtime = ts
	return &w
}

func (v *Variable) String() string { return v.name }

// Constant is a literal value of a known type.
type Constant struct {
	expr
	value any
}

// NewConstant creates a constant carrying the given value. The runtime
// types of a constant are exactly its static type.
func NewConstant(value any, static *types.Type, loc CodeLocation) *Constant {
	return &Constant{
		expr:  mkExpr(static, static.Universe().MkSet(static), loc),
		value: value,
	}
}

// Value returns the constant's underlying value.
func (c *Constant) Value() any { return c.value }

func (c *Constant) String() string {
	switch v := c.value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", c.value)
	}
}

// PushAny is the expression denoting a completely unknown value of the
// given static type. Domains must evaluate it to their most general
// abstraction of that type's instances.
type PushAny struct {
	expr
}

// NewPushAny creates an unknown value of the given static type.
func NewPushAny(static *types.Type, loc CodeLocation) *PushAny {
	return &PushAny{
		expr: mkExpr(static, static.Universe().AllInstances(static), loc),
	}
}

// NewPushAnyTyped creates an unknown value constrained to the given
// runtime types. Used when binding actual arguments to formal parameters,
// where the caller knows more than the declared type.
func NewPushAnyTyped(static *types.Type, runtime types.TypeSet, loc CodeLocation) *PushAny {
	return &PushAny{
		expr: mkExpr(static, runtime, loc),
	}
}

func (p *PushAny) String() string {
	return "any(" + p.static.Name() + ")"
}
