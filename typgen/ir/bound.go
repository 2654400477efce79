package ir

import "strings"

// Path is a possibly global, "::"-separated name.
type Path struct {
	Global   bool
	Segments []string
}

// PathOf returns a relative path of the given segments.
func PathOf(segments ...string) Path {
	return Path{Segments: segments}
}

func (p Path) String() string {
	s := strings.Join(p.Segments, "::")
	if p.Global {
		return "::" + s
	}
	return s
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Bound is a capability reference: a path to a named trait, optionally
// parameterized by type expressions.
type Bound struct {
	Path Path
	Args []TypeExpr
}

// B returns a Bound of a single-segment path.
func B(name string, args ...TypeExpr) Bound {
	return Bound{Path: PathOf(name), Args: args}
}

func (b Bound) String() string {
	if len(b.Args) == 0 {
		return b.Path.String()
	}
	return b.Path.String() + "<" + joinExprs(b.Args) + ">"
}

// Replace returns b with old replaced by repl in its arguments.
func (b Bound) Replace(old, repl TypeExpr) Bound {
	args, changed := replaceAll(b.Args, old, repl)
	if !changed {
		return b
	}
	return Bound{Path: b.Path, Args: args}
}

// BoundSet is an ordered, duplicate-free set of bounds.
// The zero value is an empty set. BoundSets are values: every
// method returns a new set and never modifies the receiver.
type BoundSet struct {
	items []Bound
}

// NewBoundSet returns a set of the given bounds, dropping duplicates.
func NewBoundSet(bounds ...Bound) BoundSet {
	var s BoundSet
	for _, b := range bounds {
		s = s.Insert(b)
	}
	return s
}

// Len returns the number of bounds.
func (s BoundSet) Len() int { return len(s.items) }

// IsEmpty reports whether the set has no bounds.
func (s BoundSet) IsEmpty() bool { return len(s.items) == 0 }

// Items returns a copy of the bounds in insertion order.
func (s BoundSet) Items() []Bound {
	return append([]Bound(nil), s.items...)
}

// Contains reports whether b is in the set.
func (s BoundSet) Contains(b Bound) bool {
	key := b.String()
	for _, it := range s.items {
		if it.String() == key {
			return true
		}
	}
	return false
}

// Insert returns the set with b appended. Inserting an existing bound is a no-op.
func (s BoundSet) Insert(b Bound) BoundSet {
	if s.Contains(b) {
		return s
	}
	items := make([]Bound, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return BoundSet{items: append(items, b)}
}

// Merge returns the union of s and other, keeping the order of first insertion.
func (s BoundSet) Merge(other BoundSet) BoundSet {
	for _, b := range other.items {
		s = s.Insert(b)
	}
	return s
}

// Replace returns the set with old replaced by repl in every bound.
func (s BoundSet) Replace(old, repl TypeExpr) BoundSet {
	var out BoundSet
	for _, b := range s.items {
		out = out.Insert(b.Replace(old, repl))
	}
	return out
}

// String renders the set as "A + B<C>".
func (s BoundSet) String() string {
	parts := make([]string, len(s.items))
	for i, b := range s.items {
		parts[i] = b.String()
	}
	return strings.Join(parts, " + ")
}
