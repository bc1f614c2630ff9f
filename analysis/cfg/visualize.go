package cfg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
)

// Dot renders the graph in graphviz dot syntax. Statement labels come
// from their String rendering, branch edges carry their kind as label.
func (g *Graph) Dot() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", g.Name())
	buf.WriteString("\tlabeljust=\"l\";\n")
	buf.WriteString("\tnode [shape=\"box\" fontname=\"Verdana\"];\n")

	for _, n := range g.nodes {
		shape := ""
		switch n.(type) {
		case *FunctionEntry:
			shape = " shape=\"circle\""
		case Conditional:
			shape = " shape=\"diamond\""
		}
		fmt.Fprintf(&buf, "\tn%d [label=%q%s];\n", n.ID(), n.String(), shape)
	}
	for _, n := range g.nodes {
		for _, e := range n.Successors() {
			switch e.Kind {
			case Sequential:
				fmt.Fprintf(&buf, "\tn%d -> n%d;\n", e.From.ID(), e.To.ID())
			default:
				fmt.Fprintf(&buf, "\tn%d -> n%d [label=%q];\n", e.From.ID(), e.To.ID(), e.Kind.String())
			}
		}
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

// WriteDot writes the dot rendering to the given writer.
func (g *Graph) WriteDot(w io.Writer) error {
	_, err := w.Write(g.Dot())
	return err
}

// RenderImage renders the graph to an image file in the given format
// (e.g. "svg" or "png").
func (g *Graph) RenderImage(path string, format string) error {
	gv := graphviz.New()
	graph, err := graphviz.ParseBytes(g.Dot())
	if err != nil {
		return err
	}
	defer func() {
		graph.Close()
		gv.Close()
	}()
	return gv.RenderFilename(graph, graphviz.Format(format), path)
}
