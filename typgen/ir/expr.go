package ir

import "strings"

// Var represents a type variable: a quantifier introduced by a generic
// parameter or pattern binding, or any name left unresolved.
type Var struct {
	Name string
}

// Kind returns KindVar.
func (*Var) Kind() ExprKind { return KindVar }

func (v *Var) String() string { return v.Name }

func (*Var) sealed() {}

// V returns a Var.
func V(name string) *Var {
	return &Var{Name: name}
}

// App represents a named type applied to zero or more arguments.
// Marker types, call results and operator applications are all Apps.
type App struct {
	Path Path
	Args []TypeExpr
}

// Kind returns KindApp.
func (*App) Kind() ExprKind { return KindApp }

func (a *App) String() string {
	if len(a.Args) == 0 {
		return a.Path.String()
	}
	return a.Path.String() + "<" + joinExprs(a.Args) + ">"
}

func (*App) sealed() {}

// Apply returns an App of a single-segment path.
func Apply(name string, args ...TypeExpr) *App {
	return &App{Path: PathOf(name), Args: args}
}

// Tuple represents a tuple type. The empty tuple is the unit type.
type Tuple struct {
	Elems []TypeExpr
}

// Kind returns KindTuple.
func (*Tuple) Kind() ExprKind { return KindTuple }

func (t *Tuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinExprs(t.Elems) + ")"
}

func (*Tuple) sealed() {}

// Unit returns the unit type ().
func Unit() *Tuple {
	return &Tuple{}
}

// TupleOf returns a Tuple of the given elements.
func TupleOf(elems ...TypeExpr) *Tuple {
	return &Tuple{Elems: elems}
}

// Dyn represents an unnamed existential type bounded by a capability set.
type Dyn struct {
	Bounds BoundSet
}

// Kind returns KindDyn.
func (*Dyn) Kind() ExprKind { return KindDyn }

func (d *Dyn) String() string { return "dyn " + d.Bounds.String() }

func (*Dyn) sealed() {}

// Projection represents an associated type of a trait implementation,
// <Self as Trait>::Name.
type Projection struct {
	Self  TypeExpr
	Trait Bound
	Name  string
}

// Kind returns KindProjection.
func (*Projection) Kind() ExprKind { return KindProjection }

func (p *Projection) String() string {
	return "<" + p.Self.String() + " as " + p.Trait.String() + ">::" + p.Name
}

func (*Projection) sealed() {}

// Key returns the structural identity of a type expression.
func Key(t TypeExpr) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b TypeExpr) bool {
	return Key(a) == Key(b)
}

// Replace returns t with every occurrence of old replaced by repl.
// t itself is returned when nothing changed.
func Replace(t, old, repl TypeExpr) TypeExpr {
	if t == nil {
		return nil
	}
	if Equal(t, old) {
		return repl
	}
	switch e := t.(type) {
	case *App:
		args, changed := replaceAll(e.Args, old, repl)
		if !changed {
			return e
		}
		return &App{Path: e.Path, Args: args}
	case *Tuple:
		elems, changed := replaceAll(e.Elems, old, repl)
		if !changed {
			return e
		}
		return &Tuple{Elems: elems}
	case *Dyn:
		return &Dyn{Bounds: e.Bounds.Replace(old, repl)}
	case *Projection:
		return &Projection{Self: Replace(e.Self, old, repl), Trait: e.Trait.Replace(old, repl), Name: e.Name}
	}
	return t
}

func replaceAll(ts []TypeExpr, old, repl TypeExpr) ([]TypeExpr, bool) {
	out := make([]TypeExpr, len(ts))
	changed := false
	for i, t := range ts {
		out[i] = Replace(t, old, repl)
		if out[i] != t {
			changed = true
		}
	}
	return out, changed
}

func joinExprs(ts []TypeExpr) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
