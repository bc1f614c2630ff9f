// Package types models the type hierarchy of an analyzed program and the
// runtime type sets attached to symbolic expressions.
//
// All types live in a Universe, an explicit interning cache scoped to one
// analysis run. Components that allocate or compare type sets receive the
// universe by reference; no process-wide state is kept.
package types

import (
	"fmt"
	"sync"

	"github.com/spakin/disjoint"
)

// A Type is a named member of a universe's subtype hierarchy. Types are
// created through Universe.NewType and compared by identity.
type Type struct {
	name   string
	index  int
	supers []*Type
	u      *Universe

	// hierarchy is the disjoint-set element grouping all types that are
	// connected through subtype edges. Two types in different hierarchy
	// components can never be compatible, which lets call resolution prune
	// candidates without walking the supertype chain.
	hierarchy *disjoint.Element
}

// Name returns the declared name of the type.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

// IsUntyped reports whether this is the universe's untyped type, the
// static type of expressions whose type the frontend could not determine.
func (t *Type) IsUntyped() bool { return t == t.u.untyped }

// Supertypes returns the declared direct supertypes.
func (t *Type) Supertypes() []*Type { return t.supers }

// Universe returns the universe the type was registered in.
func (t *Type) Universe() *Universe { return t.u }

// IsSubtypeOf computes the reflexive-transitive subtype relation.
// The untyped type is only a subtype of itself.
func (t *Type) IsSubtypeOf(o *Type) bool {
	if t == o {
		return true
	}
	if t.IsUntyped() || o.IsUntyped() {
		return false
	}
	if t.hierarchy.Find() != o.hierarchy.Find() {
		return false
	}
	if t.u.finalized {
		return t.u.subtypes[o.index].Has(t.index)
	}
	visited := make(map[*Type]bool)
	var walk func(*Type) bool
	walk = func(x *Type) bool {
		if x == o {
			return true
		}
		if visited[x] {
			return false
		}
		visited[x] = true
		for _, s := range x.supers {
			if walk(s) {
				return true
			}
		}
		return false
	}
	return walk(t)
}

// Assignable reports whether an actual of static type `from` may be bound
// to a formal of static type `to`. Untyped is compatible in both
// directions; the frontend is responsible for rejecting genuinely
// ill-typed programs.
func Assignable(from, to *Type) bool {
	if from.IsUntyped() || to.IsUntyped() {
		return true
	}
	return from.IsSubtypeOf(to)
}

// SameHierarchy reports whether two types are connected through subtype
// edges, directly or transitively.
func SameHierarchy(a, b *Type) bool {
	return a.hierarchy.Find() == b.hierarchy.Find()
}

// A Universe owns every type and interned type set of one analysis run.
// It is created at run start and dropped at run end.
type Universe struct {
	mu        sync.Mutex
	types     []*Type
	byName    map[string]*Type
	untyped   *Type
	sets      map[string]TypeSet
	finalized bool

	// subtypes[i] is the index set of all subtypes of types[i], itself
	// included. Populated by Finalize.
	subtypes []indexSet
}

// NewUniverse creates a fresh universe containing only the untyped type.
func NewUniverse() *Universe {
	u := &Universe{
		byName: make(map[string]*Type),
		sets:   make(map[string]TypeSet),
	}
	u.untyped, _ = u.NewType("untyped")
	return u
}

// NewType registers a type with the given declared supertypes. It fails on
// duplicate names, cross-universe supertypes, and finalized universes.
func (u *Universe) NewType(name string, supers ...*Type) (*Type, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.finalized {
		return nil, fmt.Errorf("universe is finalized; cannot register type %q", name)
	}
	if _, found := u.byName[name]; found {
		return nil, fmt.Errorf("duplicate type name %q", name)
	}

	t := &Type{
		name:      name,
		index:     len(u.types),
		supers:    supers,
		u:         u,
		hierarchy: disjoint.NewElement(),
	}
	for _, s := range supers {
		if s.u != u {
			return nil, fmt.Errorf("supertype %s of %s belongs to a different universe", s, name)
		}
		disjoint.Union(t.hierarchy, s.hierarchy)
	}

	u.types = append(u.types, t)
	u.byName[name] = t
	return t, nil
}

// MustNewType is NewType for statically known hierarchies, e.g. in tests.
func (u *Universe) MustNewType(name string, supers ...*Type) *Type {
	t, err := u.NewType(name, supers...)
	if err != nil {
		panic(err)
	}
	return t
}

// Untyped returns the universe's untyped type.
func (u *Universe) Untyped() *Type { return u.untyped }

// Lookup retrieves a registered type by name.
func (u *Universe) Lookup(name string) (*Type, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	t, found := u.byName[name]
	return t, found
}

// Size returns the number of registered types.
func (u *Universe) Size() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.types)
}

// Finalize validates the hierarchy and freezes the universe. Declared
// supertype edges must form a DAG; the walk fails fast when it encounters
// a type it is currently visiting.
func (u *Universe) Finalize() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.finalized {
		return nil
	}

	const (
		unseen = iota
		visiting
		done
	)
	marks := make([]int, len(u.types))

	var visit func(*Type) error
	visit = func(t *Type) error {
		switch marks[t.index] {
		case visiting:
			return fmt.Errorf("type hierarchy cycle through %s", t)
		case done:
			return nil
		}
		marks[t.index] = visiting
		for _, s := range t.supers {
			if err := visit(s); err != nil {
				return err
			}
		}
		marks[t.index] = done
		return nil
	}

	for _, t := range u.types {
		if err := visit(t); err != nil {
			return err
		}
	}

	// Precompute the subtype closure: t is a subtype of each of its
	// reflexive-transitive supertypes.
	u.subtypes = make([]indexSet, len(u.types))
	for i := range u.subtypes {
		u.subtypes[i] = newIndexSet()
	}
	for _, t := range u.types {
		for _, anc := range u.ancestors(t) {
			u.subtypes[anc.index].Insert(t.index)
		}
	}

	u.finalized = true
	return nil
}

// ancestors collects the reflexive-transitive supertypes of t.
func (u *Universe) ancestors(t *Type) (res []*Type) {
	visited := make(map[*Type]bool)
	var walk func(*Type)
	walk = func(x *Type) {
		if visited[x] {
			return
		}
		visited[x] = true
		res = append(res, x)
		for _, s := range x.supers {
			walk(s)
		}
	}
	walk(t)
	return
}
