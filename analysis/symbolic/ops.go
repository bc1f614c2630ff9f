package symbolic

import (
	"fmt"

	"github.com/gala-analyzer/gala/types"
)

// UnaryOperator enumerates the unary operators of the expression language.
type UnaryOperator int

const (
	// Not is boolean negation.
	Not UnaryOperator = iota
	// Neg is numeric negation.
	Neg
)

func (op UnaryOperator) String() string {
	switch op {
	case Not:
		return "!"
	case Neg:
		return "-"
	}
	return fmt.Sprintf("UnaryOperator(%d)", int(op))
}

// BinaryOperator enumerates the binary operators of the expression language.
type BinaryOperator int

const (
	Add BinaryOperator = iota
	Sub
	Mul
	Div
	Mod

	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe

	LogAnd
	LogOr

	StrConcat
)

func (op BinaryOperator) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	case LogAnd:
		return "&&"
	case LogOr:
		return "||"
	case StrConcat:
		return "++"
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

// IsComparison reports whether the operator produces a boolean from two
// ordered operands.
func (op BinaryOperator) IsComparison() bool {
	switch op {
	case CmpEq, CmpNe, CmpLt, CmpLe, CmpGt, CmpGe:
		return true
	}
	return false
}

// Negate returns the operator computing the complement comparison.
// It panics for non-comparison operators.
func (op BinaryOperator) Negate() BinaryOperator {
	switch op {
	case CmpEq:
		return CmpNe
	case CmpNe:
		return CmpEq
	case CmpLt:
		return CmpGe
	case CmpLe:
		return CmpGt
	case CmpGt:
		return CmpLe
	case CmpGe:
		return CmpLt
	}
	panic(fmt.Sprintf("operator %s has no complement", op))
}

// TernaryOperator enumerates the ternary operators of the expression language.
type TernaryOperator int

const (
	// StrSubstring extracts a substring given two index operands.
	StrSubstring TernaryOperator = iota
	// StrReplace replaces occurrences of the second operand with the third.
	StrReplace
)

func (op TernaryOperator) String() string {
	switch op {
	case StrSubstring:
		return "substring"
	case StrReplace:
		return "replace"
	}
	return fmt.Sprintf("TernaryOperator(%d)", int(op))
}

// UnaryExpr applies a unary operator to an operand.
type UnaryExpr struct {
	expr
	Op  UnaryOperator
	Arg Expression
}

// NewUnary creates a unary expression with the given result type.
func NewUnary(op UnaryOperator, arg Expression, static *types.Type, loc CodeLocation) *UnaryExpr {
	return &UnaryExpr{
		expr: mkExpr(static, static.Universe().AllInstances(static), loc),
		Op:   op,
		Arg:  arg,
	}
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Op, e.Arg)
}

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	expr
	Op    BinaryOperator
	Left  Expression
	Right Expression
}

// NewBinary creates a binary expression with the given result type.
func NewBinary(op BinaryOperator, left, right Expression, static *types.Type, loc CodeLocation) *BinaryExpr {
	return &BinaryExpr{
		expr:  mkExpr(static, static.Universe().AllInstances(static), loc),
		Op:    op,
		Left:  left,
		Right: right,
	}
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// TernaryExpr applies a ternary operator to three operands.
type TernaryExpr struct {
	expr
	Op     TernaryOperator
	First  Expression
	Second Expression
	Third  Expression
}

// NewTernary creates a ternary expression with the given result type.
func NewTernary(op TernaryOperator, first, second, third Expression, static *types.Type, loc CodeLocation) *TernaryExpr {
	return &TernaryExpr{
		expr:   mkExpr(static, static.Universe().AllInstances(static), loc),
		Op:     op,
		First:  first,
		Second: second,
		Third:  third,
	}
}

func (e *TernaryExpr) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", e.Op, e.First, e.Second, e.Third)
}
