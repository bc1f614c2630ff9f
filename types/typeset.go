package types

import (
	"strings"

	"github.com/gala-analyzer/gala/utils"

	"golang.org/x/tools/container/intsets"
)

// indexSet is a sparse bitset over type indices.
type indexSet = *intsets.Sparse

func newIndexSet() indexSet { return &intsets.Sparse{} }

// A TypeSet is an interned, immutable set of types from one universe,
// representing the statically possible dynamic types of an expression.
// Interning makes equality a pointer comparison and keeps repeated
// allocation of the same set cheap. The empty set denotes an
// unreachable/bottom computation.
type TypeSet struct {
	data *typeSetData
}

type typeSetData struct {
	u    *Universe
	bits indexSet
	key  string
}

// MkSet builds (or retrieves) the interned set of the given types.
func (u *Universe) MkSet(ts ...*Type) TypeSet {
	bits := newIndexSet()
	for _, t := range ts {
		if t.u != u {
			panic("type set member from a different universe")
		}
		bits.Insert(t.index)
	}
	return u.intern(bits)
}

// AllInstances yields the set of t and all of its subtypes, i.e. the
// possible dynamic types of a value whose static type is t. All instances
// of the untyped type is the set of every registered type.
func (u *Universe) AllInstances(t *Type) TypeSet {
	u.mu.Lock()
	if t.IsUntyped() {
		bits := newIndexSet()
		for _, x := range u.types {
			bits.Insert(x.index)
		}
		u.mu.Unlock()
		return u.intern(bits)
	}
	if u.finalized {
		bits := newIndexSet()
		bits.Copy(u.subtypes[t.index])
		u.mu.Unlock()
		return u.intern(bits)
	}
	types := append([]*Type(nil), u.types...)
	u.mu.Unlock()

	bits := newIndexSet()
	for _, x := range types {
		if x.IsSubtypeOf(t) {
			bits.Insert(x.index)
		}
	}
	return u.intern(bits)
}

// EmptySet yields the interned empty type set.
func (u *Universe) EmptySet() TypeSet { return u.MkSet() }

// UntypedSet yields the singleton set of the untyped type.
func (u *Universe) UntypedSet() TypeSet { return u.MkSet(u.untyped) }

func (u *Universe) intern(bits indexSet) TypeSet {
	key := bits.String()
	u.mu.Lock()
	defer u.mu.Unlock()
	if s, found := u.sets[key]; found {
		return s
	}
	s := TypeSet{&typeSetData{u: u, bits: bits, key: key}}
	u.sets[key] = s
	return s
}

// Universe returns the owning universe.
func (s TypeSet) Universe() *Universe { return s.data.u }

// Contains checks set membership.
func (s TypeSet) Contains(t *Type) bool {
	return t.u == s.data.u && s.data.bits.Has(t.index)
}

// IsEmpty reports whether the set denotes an unreachable computation.
func (s TypeSet) IsEmpty() bool { return s.data.bits.IsEmpty() }

// Len returns the number of member types.
func (s TypeSet) Len() int { return s.data.bits.Len() }

// Equal compares two interned sets.
func (s TypeSet) Equal(o TypeSet) bool { return s.data == o.data }

// Union yields the interned union of the two sets.
func (s TypeSet) Union(o TypeSet) TypeSet {
	if s.data == o.data {
		return s
	}
	bits := newIndexSet()
	bits.Copy(s.data.bits)
	bits.UnionWith(o.data.bits)
	return s.data.u.intern(bits)
}

// Intersect yields the interned intersection of the two sets.
func (s TypeSet) Intersect(o TypeSet) TypeSet {
	if s.data == o.data {
		return s
	}
	bits := newIndexSet()
	bits.Copy(s.data.bits)
	bits.IntersectionWith(o.data.bits)
	return s.data.u.intern(bits)
}

// SubsetOf computes set inclusion.
func (s TypeSet) SubsetOf(o TypeSet) bool {
	return s.data == o.data || s.data.bits.SubsetOf(o.data.bits)
}

// IsUntyped reports whether the set contains only the untyped type.
func (s TypeSet) IsUntyped() bool {
	return s.Len() == 1 && s.Contains(s.data.u.untyped)
}

// Types returns the member types ordered by registration index.
func (s TypeSet) Types() []*Type {
	var idxs []int
	idxs = s.data.bits.AppendTo(idxs)
	res := make([]*Type, 0, len(idxs))
	for _, i := range idxs {
		res = append(res, s.data.u.types[i])
	}
	return res
}

// ForEach applies the given function to every member type, ordered by
// registration index.
func (s TypeSet) ForEach(do func(*Type)) {
	for _, t := range s.Types() {
		do(t)
	}
}

// Hash computes a hash over the member indices.
func (s TypeSet) Hash() uint32 {
	return utils.HashString(s.data.key)
}

func (s TypeSet) String() string {
	names := make([]string, 0, s.Len())
	for _, t := range s.Types() {
		names = append(names, t.Name())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
