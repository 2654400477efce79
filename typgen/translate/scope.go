package translate

import (
	"go/token"
	"slices"

	"github.com/broady/typ"
	"github.com/broady/typ/typgen/ir"
)

// Scope tracks the quantifiers, substitutions and capability constraints of one
// symbolic execution path through a function body.
//
// Scopes have value semantics: Child returns an independent copy, so a branch
// can never observe or disturb the bindings of its siblings or its parent.
type Scope struct {
	// declared holds the quantifiers declared in this scope itself.
	// Inherited quantifiers may be shadowed.
	declared map[string]bool

	quantifiers []string

	subst map[string]ir.TypeExpr

	constraints []constraint
	index       map[string]int

	// tracked are the function's argument types, rewritten by Rename so that
	// the generated implementation sees each argument's refined shape.
	tracked []ir.TypeExpr
}

type constraint struct {
	typ    ir.TypeExpr
	bounds ir.BoundSet
}

// NewScope returns an empty root scope.
func NewScope() *Scope {
	return &Scope{
		declared: make(map[string]bool),
		subst:    make(map[string]ir.TypeExpr),
		index:    make(map[string]int),
	}
}

// DeclareQuantifier registers a free type variable. Declaring the same name
// twice in one scope fails with CodeDuplicateQuantifier.
func (s *Scope) DeclareQuantifier(name string, pos token.Position) error {
	if s.declared[name] {
		return typ.Errorf(typ.CodeDuplicateQuantifier, pos, "%q is declared more than once", name)
	}
	s.declared[name] = true
	if !slices.Contains(s.quantifiers, name) {
		s.quantifiers = append(s.quantifiers, name)
	}
	return nil
}

// RemoveQuantifier removes a quantifier from the visible set.
func (s *Scope) RemoveQuantifier(name string) {
	s.quantifiers = slices.DeleteFunc(s.quantifiers, func(q string) bool { return q == name })
	delete(s.declared, name)
}

// IsQuantifier reports whether name is a visible quantifier.
func (s *Scope) IsQuantifier(name string) bool {
	return slices.Contains(s.quantifiers, name)
}

// Quantifiers returns the visible quantifiers in declaration order.
func (s *Scope) Quantifiers() []string {
	return slices.Clone(s.quantifiers)
}

// BindSubstitution records or overwrites the substitution for name.
// name need not be a declared quantifier.
func (s *Scope) BindSubstitution(name string, t ir.TypeExpr) {
	s.subst[name] = t
}

// Unbind removes the substitution for name, if any.
func (s *Scope) Unbind(name string) {
	delete(s.subst, name)
}

// Substitution returns the substitution recorded for name.
func (s *Scope) Substitution(name string) (ir.TypeExpr, bool) {
	t, ok := s.subst[name]
	return t, ok
}

// Resolve returns the substitution for name, or the type variable itself.
func (s *Scope) Resolve(name string) ir.TypeExpr {
	if t, ok := s.subst[name]; ok {
		return t
	}
	return ir.V(name)
}

// AddConstraints merges bounds into the entry for t, creating it if absent.
func (s *Scope) AddConstraints(t ir.TypeExpr, bounds ir.BoundSet) {
	key := ir.Key(t)
	if i, ok := s.index[key]; ok {
		s.constraints[i].bounds = s.constraints[i].bounds.Merge(bounds)
		return
	}
	s.index[key] = len(s.constraints)
	s.constraints = append(s.constraints, constraint{typ: t, bounds: bounds})
}

// Constraints returns the bounds recorded for t.
func (s *Scope) Constraints(t ir.TypeExpr) ir.BoundSet {
	if i, ok := s.index[ir.Key(t)]; ok {
		return s.constraints[i].bounds
	}
	return ir.BoundSet{}
}

// Predicates returns every non-empty constraint entry in first-insertion order.
func (s *Scope) Predicates() []ir.Predicate {
	var preds []ir.Predicate
	for _, c := range s.constraints {
		if c.bounds.IsEmpty() {
			continue
		}
		preds = append(preds, ir.Predicate{Type: c.typ, Bounds: c.bounds})
	}
	return preds
}

// Track records the function's argument types.
func (s *Scope) Track(ts ...ir.TypeExpr) {
	s.tracked = append(s.tracked, ts...)
}

// Tracked returns the argument types, refined by every Rename so far.
func (s *Scope) Tracked() []ir.TypeExpr {
	return slices.Clone(s.tracked)
}

// Child returns a copy of s. Mutating the child never affects s.
// Quantifiers of s may be redeclared in the child.
func (s *Scope) Child() *Scope {
	c := &Scope{
		declared:    make(map[string]bool),
		quantifiers: slices.Clone(s.quantifiers),
		subst:       make(map[string]ir.TypeExpr, len(s.subst)),
		constraints: slices.Clone(s.constraints),
		index:       make(map[string]int, len(s.index)),
		tracked:     slices.Clone(s.tracked),
	}
	for k, v := range s.subst {
		c.subst[k] = v
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	return c
}

// Rename replaces old by repl in every substitution, constraint and tracked
// argument. Constraints whose keys collide after renaming are merged.
func (s *Scope) Rename(old, repl ir.TypeExpr) {
	for name, t := range s.subst {
		s.subst[name] = ir.Replace(t, old, repl)
	}
	for i, t := range s.tracked {
		s.tracked[i] = ir.Replace(t, old, repl)
	}

	prev := s.constraints
	s.constraints = nil
	s.index = make(map[string]int, len(prev))
	for _, c := range prev {
		s.AddConstraints(ir.Replace(c.typ, old, repl), c.bounds.Replace(old, repl))
	}
}
