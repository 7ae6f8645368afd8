package scope

import (
	"strconv"
	"strings"
)

// Kind names the directive that opened a segment.
type Kind string

const (
	KindFor       Kind = "for"
	KindRepeat    Kind = "repeat"
	KindComponent Kind = "component"
)

// Segment is one discrete marker of an ID path.
type Segment struct {
	Kind  Kind
	Name  string
	Site  int
	Index int // -1 indicates no index is present.
}

// ID is an immutable scope path. The zero value is the root scope.
type ID struct {
	path []Segment
	key  string
}

// Root returns the root scope.
func Root() ID { return ID{} }

// Iteration derives the scope of iteration index of a for/repeat directive
// activated at site.
func (id ID) Iteration(kind Kind, name string, site, index int) ID {
	return id.extend(Segment{Kind: kind, Name: name, Site: site, Index: index})
}

// Component derives the scope of a component inclusion activated at site.
func (id ID) Component(name string, site int) ID {
	return id.extend(Segment{Kind: KindComponent, Name: name, Site: site, Index: -1})
}

func (id ID) extend(seg Segment) ID {
	path := make([]Segment, len(id.path), len(id.path)+1)
	copy(path, id.path)
	path = append(path, seg)

	var sb strings.Builder
	sb.WriteString(id.key)
	if len(id.path) > 0 {
		sb.WriteByte('/')
	}
	sb.WriteString(seg.String())
	return ID{path: path, key: sb.String()}
}

// Path returns a copy of the segments from the root.
func (id ID) Path() []Segment {
	return append([]Segment(nil), id.path...)
}

// Depth is the number of segments.
func (id ID) Depth() int { return len(id.path) }

// IsRoot reports whether id is the root scope.
func (id ID) IsRoot() bool { return len(id.path) == 0 }

// Key is the canonical string form used as a cache namespace. The root key is "".
func (id ID) Key() string { return id.key }

// String implements fmt.Stringer.
func (id ID) String() string {
	if id.IsRoot() {
		return "<root>"
	}
	return id.key
}

// String serializes one segment.
func (s Segment) String() string {
	var sb strings.Builder
	sb.WriteString(string(s.Kind))
	sb.WriteByte('(')
	sb.WriteString(strconv.Quote(s.Name))
	sb.WriteString(")@")
	sb.WriteString(strconv.Itoa(s.Site))
	if s.Index != -1 {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(s.Index))
		sb.WriteByte(']')
	}
	return sb.String()
}
