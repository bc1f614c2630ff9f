package cfg

import (
	"fmt"

	"github.com/gala-analyzer/gala/types"
)

// Unit groups the procedures defined on one type of the analyzed
// program. Instance procedures of a unit dispatch on values of its type.
type Unit struct {
	name  string
	typ   *types.Type
	procs []*Graph
}

// NewUnit creates a unit for the given type.
func NewUnit(name string, typ *types.Type) *Unit {
	return &Unit{name: name, typ: typ}
}

// Name returns the unit's name.
func (u *Unit) Name() string { return u.name }

// Type returns the type the unit's instance procedures dispatch on.
func (u *Unit) Type() *types.Type { return u.typ }

// Procedures returns the unit's procedures in declaration order.
func (u *Unit) Procedures() []*Graph { return u.procs }

// AddProcedure registers a graph in the unit and stamps its descriptor.
func (u *Unit) AddProcedure(g *Graph) *Graph {
	g.desc.Unit = u
	u.procs = append(u.procs, g)
	return g
}

// Program is the whole analyzed artifact: a type universe, the units
// defined over it, and free procedures belonging to no unit.
type Program struct {
	universe *types.Universe
	units    []*Unit
	free     []*Graph
}

// NewProgram creates an empty program over the given universe.
func NewProgram(u *types.Universe) *Program {
	return &Program{universe: u}
}

// Universe returns the program's type universe.
func (p *Program) Universe() *types.Universe { return p.universe }

// Units returns the registered units in declaration order.
func (p *Program) Units() []*Unit { return p.units }

// AddUnit registers a unit.
func (p *Program) AddUnit(u *Unit) *Unit {
	p.units = append(p.units, u)
	return u
}

// AddProcedure registers a unit-less procedure.
func (p *Program) AddProcedure(g *Graph) *Graph {
	p.free = append(p.free, g)
	return g
}

// Procedures returns every procedure of the program: free procedures
// first, then unit procedures in unit declaration order.
func (p *Program) Procedures() []*Graph {
	res := make([]*Graph, 0, len(p.free))
	res = append(res, p.free...)
	for _, u := range p.units {
		res = append(res, u.procs...)
	}
	return res
}

// ProceduresNamed returns every procedure with the given declared name,
// regardless of unit.
func (p *Program) ProceduresNamed(name string) []*Graph {
	var res []*Graph
	for _, g := range p.Procedures() {
		if g.Descriptor().Name == name {
			res = append(res, g)
		}
	}
	return res
}

// Validate checks the universe is finalized and every graph is well
// formed.
func (p *Program) Validate() error {
	if err := p.universe.Finalize(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, g := range p.Procedures() {
		if seen[g.Name()] {
			return fmt.Errorf("duplicate procedure %s", g.Name())
		}
		seen[g.Name()] = true
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}
