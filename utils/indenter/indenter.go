// Package indenter implements a small helper for pretty-printing nested,
// bracketed structures such as lattice elements and abstract states.
package indenter

import (
	"fmt"
	"strings"
)

// Indenter accumulates a string representation of a nested structure.
// Methods return the receiver to allow chained calls.
type Indenter struct {
	buf   strings.Builder
	level int
}

// Start begins a new structure with the given opening delimiter.
func Start(open string) *Indenter {
	i := &Indenter{}
	i.buf.WriteString(open)
	return i
}

func (i *Indenter) indent() string {
	return strings.Repeat("  ", i.level)
}

// Nest renders the given items, each on its own indented line. A single
// item is rendered inline.
func (i *Indenter) Nest(items ...fmt.Stringer) *Indenter {
	return i.NestSep("", items...)
}

// NestSep renders the given items separated by sep, each on its own
// indented line. A single item is rendered inline without indentation.
func (i *Indenter) NestSep(sep string, items ...fmt.Stringer) *Indenter {
	thunks := make([]func() string, len(items))
	for j, item := range items {
		item := item
		thunks[j] = item.String
	}
	return i.NestThunkedSep(sep, thunks...)
}

// NestStrings renders the given pre-rendered lines.
func (i *Indenter) NestStrings(strs ...string) *Indenter {
	return i.NestStringsSep("", strs...)
}

// NestStringsSep renders the given pre-rendered lines separated by sep.
func (i *Indenter) NestStringsSep(sep string, strs ...string) *Indenter {
	thunks := make([]func() string, len(strs))
	for j, s := range strs {
		s := s
		thunks[j] = func() string { return s }
	}
	return i.NestThunkedSep(sep, thunks...)
}

// NestThunked renders the given items lazily, each on its own indented line.
func (i *Indenter) NestThunked(thunks ...func() string) *Indenter {
	return i.NestThunkedSep("", thunks...)
}

// NestThunkedSep renders the given items lazily, separated by sep. The
// thunks are only forced here, so expensive stringification is delayed
// until the structure is actually printed.
func (i *Indenter) NestThunkedSep(sep string, thunks ...func() string) *Indenter {
	if len(thunks) == 1 {
		i.buf.WriteString(thunks[0]())
		return i
	}

	i.level++
	for j, thunk := range thunks {
		i.buf.WriteString("\n" + i.indent() + thunk())
		if j < len(thunks)-1 {
			i.buf.WriteString(sep)
		}
	}
	i.level--
	i.buf.WriteString("\n")
	return i
}

// End closes the structure with the given delimiter and yields the result.
func (i *Indenter) End(close string) string {
	s := i.buf.String()
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s + i.indent() + close
	}
	return s + close
}
