package symbolic

import "fmt"

// CodeLocation identifies a point in the analyzed program's source.
// The zero value denotes an unknown location.
type CodeLocation struct {
	File string
	Line int
	Col  int
}

func (l CodeLocation) String() string {
	if l == (CodeLocation{}) {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Before orders locations lexicographically by file, line and column.
func (l CodeLocation) Before(o CodeLocation) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Col < o.Col
}
