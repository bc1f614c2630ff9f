package lattice

type (
	// factory is the entry point to the lattice and element factories.
	factory struct{}

	// latticeFactory creates lattices.
	latticeFactory struct{}

	// elementFactory creates lattice elements.
	elementFactory struct{}
)

var (
	latFact = latticeFactory{}
	elFact  = elementFactory{}
)

// Lattice gives access to the lattice factory.
func (factory) Lattice() latticeFactory { return latFact }

// Element gives access to the element factory.
func (factory) Element() elementFactory { return elFact }

// Create returns a factory whose methods construct lattices and
// lattice elements.
func Create() factory {
	return factory{}
}

// Elements is a shorthand for the lattice element factory.
func Elements() elementFactory {
	return elFact
}
