package symbolic

import (
	"sort"
	"strings"
)

// ExpressionSet is a set of expressions, deduplicated by their rendered
// form and kept in lexicographic order. Analysis states track the
// expressions computed so far with it.
type ExpressionSet struct {
	exprs []Expression
}

// NewExpressionSet builds a set from the given expressions.
func NewExpressionSet(exprs ...Expression) ExpressionSet {
	var s ExpressionSet
	for _, e := range exprs {
		s = s.Add(e)
	}
	return s
}

// Size returns the number of expressions in the set.
func (s ExpressionSet) Size() int { return len(s.exprs) }

// Contains checks membership by rendered form.
func (s ExpressionSet) Contains(e Expression) bool {
	key := e.String()
	i := sort.Search(len(s.exprs), func(i int) bool {
		return s.exprs[i].String() >= key
	})
	return i < len(s.exprs) && s.exprs[i].String() == key
}

// Add returns a set extended with the given expression.
func (s ExpressionSet) Add(e Expression) ExpressionSet {
	key := e.String()
	i := sort.Search(len(s.exprs), func(i int) bool {
		return s.exprs[i].String() >= key
	})
	if i < len(s.exprs) && s.exprs[i].String() == key {
		return s
	}
	exprs := make([]Expression, 0, len(s.exprs)+1)
	exprs = append(exprs, s.exprs[:i]...)
	exprs = append(exprs, e)
	exprs = append(exprs, s.exprs[i:]...)
	return ExpressionSet{exprs}
}

// Union returns the union of both sets.
func (s ExpressionSet) Union(o ExpressionSet) ExpressionSet {
	if len(o.exprs) > len(s.exprs) {
		s, o = o, s
	}
	res := s
	for _, e := range o.exprs {
		res = res.Add(e)
	}
	return res
}

// Filter returns the subset of expressions satisfying the predicate.
func (s ExpressionSet) Filter(keep func(Expression) bool) ExpressionSet {
	var exprs []Expression
	for _, e := range s.exprs {
		if keep(e) {
			exprs = append(exprs, e)
		}
	}
	return ExpressionSet{exprs}
}

// Equal compares two sets by their rendered members.
func (s ExpressionSet) Equal(o ExpressionSet) bool {
	if len(s.exprs) != len(o.exprs) {
		return false
	}
	for i := range s.exprs {
		if s.exprs[i].String() != o.exprs[i].String() {
			return false
		}
	}
	return true
}

// ForEach applies the given procedure to each expression in order.
func (s ExpressionSet) ForEach(do func(Expression)) {
	for _, e := range s.exprs {
		do(e)
	}
}

func (s ExpressionSet) String() string {
	strs := make([]string, len(s.exprs))
	for i, e := range s.exprs {
		strs[i] = e.String()
	}
	return "{" + strings.Join(strs, ", ") + "}"
}
