package errors

import (
	"strconv"
	"strings"
)

// Location is one step of an error path: a positional index or a field/variant name.
type Location struct {
	Name   string
	Index  int
	IsName bool
}

// Index returns a positional location
func Index(i int) Location {
	return Location{Index: i}
}

// Name returns a named location
func Name(name string) Location {
	return Location{Name: name, IsName: true}
}

func (l Location) String() string {
	if l.IsName {
		return l.Name
	}
	return "[" + strconv.Itoa(l.Index) + "]"
}

// FormatPath renders a root-first path, e.g. "items[2].name".
// An empty name renders as "<unnamed>".
func FormatPath(path []Location) string {
	var b strings.Builder
	for i, loc := range path {
		if !loc.IsName {
			b.WriteString(loc.String())
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		if loc.Name == "" {
			b.WriteString("<unnamed>")
		} else {
			b.WriteString(loc.Name)
		}
	}
	return b.String()
}
