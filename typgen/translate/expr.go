package translate

import (
	"fmt"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
)

// Branch is one symbolic execution path: the inferred result type and the
// scope at the end of the path.
type Branch struct {
	Type  ir.TypeExpr
	Scope *Scope
}

// Binary operators and the type-level operators they are rewritten to.
var operators = map[syntax.Kind]string{
	syntax.EQ:     "TypeEquals",
	syntax.ANDAND: "TAnd",
	syntax.LE:     "TLessThanEqual",
	syntax.PLUS:   "TAdd",
	syntax.MINUS:  "TSub",
	syntax.SLASH:  "TDivide",
}

// ifOperator selects between the two arms of an if expression.
const ifOperator = "TIf"

// Expr translates an expression. The result lists every execution path in
// source order. scope is never modified; paths that change it receive a child.
func (t *Translator) Expr(x syntax.Expr, scope *Scope) ([]Branch, error) {
	switch x := x.(type) {
	case *syntax.PathExpr:
		name, ok := x.Path.Ident()
		if !ok {
			return nil, typ.Errorf(typ.CodeUnsupportedExpressionForm, x.Pos(), "qualified path %s is not supported; use a bare identifier", x.Path)
		}
		return []Branch{{Type: scope.Resolve(name), Scope: scope}}, nil

	case *syntax.ParenExpr:
		return t.Expr(x.X, scope)

	case *syntax.TupleExpr:
		if len(x.Elems) == 0 {
			return []Branch{{Type: ir.Unit(), Scope: scope}}, nil
		}
		combos, err := t.thread(x.Elems, scope)
		if err != nil {
			return nil, err
		}
		out := make([]Branch, len(combos))
		for i, c := range combos {
			out[i] = Branch{Type: ir.TupleOf(c.types...), Scope: c.scope}
		}
		return out, nil

	case *syntax.BinaryExpr:
		op, ok := operators[x.Op]
		if !ok {
			return nil, typ.Errorf(typ.CodeUnsupportedOperator, x.Pos(), "operator %q is not supported", x.Op.String())
		}
		return t.call(op, []syntax.Expr{x.X, x.Y}, scope)

	case *syntax.IfExpr:
		if x.Else == nil {
			return nil, typ.NewError(typ.CodeMissingElseBranch, x.Pos(), "if expression must have an else branch")
		}
		return t.call(ifOperator, []syntax.Expr{x.Cond, x.Then, x.Else}, scope)

	case *syntax.MatchExpr:
		return t.match(x, scope)

	case *syntax.BlockExpr:
		return t.Block(x, scope)

	case *syntax.CallExpr:
		callee, ok := calleeName(x.Fun)
		if !ok {
			return nil, typ.NewError(typ.CodeInvalidCallee, x.Fun.Pos(), "callee must be a bare function name")
		}
		return t.call(callee, x.Args, scope)
	}
	return nil, typ.Errorf(typ.CodeUnsupportedExpressionForm, x.Pos(), "unsupported expression: %s", describeExpr(x))
}

func calleeName(fun syntax.Expr) (string, bool) {
	p, ok := fun.(*syntax.PathExpr)
	if !ok {
		return "", false
	}
	return p.Path.Ident()
}

// combo is one element of the cartesian product of argument branches.
type combo struct {
	types []ir.TypeExpr
	scope *Scope
}

// thread translates xs left to right, threading each path's scope into the
// next expression. The result is the cartesian product of all branches.
func (t *Translator) thread(xs []syntax.Expr, scope *Scope) ([]combo, error) {
	combos := []combo{{scope: scope}}
	for _, x := range xs {
		var next []combo
		for _, c := range combos {
			branches, err := t.Expr(x, c.scope)
			if err != nil {
				return nil, err
			}
			for _, b := range branches {
				types := make([]ir.TypeExpr, len(c.types), len(c.types)+1)
				copy(types, c.types)
				next = append(next, combo{types: append(types, b.Type), scope: b.Scope})
			}
		}
		combos = next
	}
	return combos, nil
}

// call encodes callee(args...): the first argument (the subject, or () when
// there are none) must implement <ComputePrefix>callee<rest...>, and the
// result is callee<args...>.
func (t *Translator) call(callee string, args []syntax.Expr, scope *Scope) ([]Branch, error) {
	combos, err := t.thread(args, scope)
	if err != nil {
		return nil, err
	}
	out := make([]Branch, 0, len(combos))
	for _, c := range combos {
		var subject ir.TypeExpr = ir.Unit()
		var rest []ir.TypeExpr
		if len(c.types) > 0 {
			subject, rest = c.types[0], c.types[1:]
		}
		s := c.scope.Child()
		s.AddConstraints(subject, ir.NewBoundSet(ir.B(t.computeName(callee), rest...)))
		out = append(out, Branch{Type: ir.Apply(callee, c.types...), Scope: s})
	}
	return out, nil
}

func (t *Translator) computeName(fn string) string {
	return t.opts.ComputePrefix + fn
}

// match translates each arm in a child scope in which the scrutinee is
// refined to the arm's variant. Arms are concatenated in order.
func (t *Translator) match(m *syntax.MatchExpr, scope *Scope) ([]Branch, error) {
	name, ok := scrutineeName(m.X)
	if !ok {
		return nil, typ.NewError(typ.CodeInvalidMatchScrutinee, m.X.Pos(), "match scrutinee must be an argument or variable name")
	}
	if _, bound := scope.Substitution(name); !bound && !scope.IsQuantifier(name) {
		return nil, typ.Errorf(typ.CodeInvalidMatchScrutinee, m.X.Pos(), "match scrutinee %q is not a bound argument or variable", name)
	}
	scrutinee := scope.Resolve(name)

	var out []Branch
	for _, arm := range m.Arms {
		if arm.Guard != nil {
			return nil, typ.NewError(typ.CodeUnsupportedExpressionForm, arm.Guard.Pos(), "match guards are not supported")
		}
		variant, fields, err := Destructure(arm.Pat)
		if err != nil {
			return nil, err
		}

		child := scope.Child()
		v, isVar := scrutinee.(*ir.Var)
		if isVar && child.IsQuantifier(v.Name) {
			child.RemoveQuantifier(v.Name)
		}

		args := make([]ir.TypeExpr, len(fields))
		for i, f := range fields {
			args[i] = ir.V(t.fieldVar(child, f.Name))
		}
		refined := ir.Apply(variant, args...)

		child.Rename(scrutinee, refined)
		child.BindSubstitution(name, refined)
		if isVar && v.Name != name {
			// name is a let alias; the aliased variable is refined too.
			child.BindSubstitution(v.Name, refined)
		}

		for i, f := range fields {
			q := args[i].(*ir.Var).Name
			if err := child.DeclareQuantifier(q, f.Pos); err != nil {
				return nil, err
			}
			// Field bindings shadow outer names.
			child.Unbind(f.Name)
			if q != f.Name {
				child.BindSubstitution(f.Name, args[i])
			}
			child.AddConstraints(args[i], ir.NewBoundSet(f.Capability))
		}

		branches, err := t.Expr(arm.Body, child)
		if err != nil {
			return nil, err
		}
		out = append(out, branches...)
	}
	return out, nil
}

// fieldVar returns the type variable for a pattern field. A field named
// like a quantifier that is still visible would be merged with it in the
// generated impl, so it gets a fresh prefixed name instead.
func (t *Translator) fieldVar(scope *Scope, field string) string {
	if !scope.IsQuantifier(field) {
		return field
	}
	name := t.opts.IdentPrefix + field
	for i := 2; scope.IsQuantifier(name); i++ {
		name = fmt.Sprintf("%s%s%d", t.opts.IdentPrefix, field, i)
	}
	return name
}

func scrutineeName(x syntax.Expr) (string, bool) {
	for {
		switch e := x.(type) {
		case *syntax.ParenExpr:
			x = e.X
		case *syntax.PathExpr:
			return e.Path.Ident()
		default:
			return "", false
		}
	}
}

// Block translates a block: statements thread the scope in order and the
// trailing expression, if any, produces the result. A block without one
// yields (). Bindings introduced by the block do not outlive it.
func (t *Translator) Block(b *syntax.BlockExpr, scope *Scope) ([]Branch, error) {
	branches, err := t.stmts(b.Stmts, b.Tail, scope)
	if err != nil {
		return nil, err
	}

	var bound []string
	for _, stmt := range b.Stmts {
		if let, ok := stmt.(*syntax.LetStmt); ok {
			if name, _, err := bindingOf(let.Pat); err == nil {
				bound = append(bound, name)
			}
		}
	}
	if len(bound) == 0 {
		return branches, nil
	}

	out := make([]Branch, len(branches))
	for i, br := range branches {
		s := br.Scope.Child()
		for _, name := range bound {
			if prev, ok := scope.Substitution(name); ok {
				s.BindSubstitution(name, prev)
			} else {
				s.Unbind(name)
			}
		}
		out[i] = Branch{Type: br.Type, Scope: s}
	}
	return out, nil
}

func (t *Translator) stmts(stmts []syntax.Stmt, tail syntax.Expr, scope *Scope) ([]Branch, error) {
	if len(stmts) == 0 {
		if tail == nil {
			return []Branch{{Type: ir.Unit(), Scope: scope}}, nil
		}
		return t.Expr(tail, scope)
	}

	heads, err := t.stmt(stmts[0], scope)
	if err != nil {
		return nil, err
	}
	var out []Branch
	for _, s := range heads {
		rest, err := t.stmts(stmts[1:], tail, s)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}

// stmt translates one statement and returns the scope of every path through it.
// A binding whose initializer branches forks the rest of the block.
func (t *Translator) stmt(stmt syntax.Stmt, scope *Scope) ([]*Scope, error) {
	switch s := stmt.(type) {
	case *syntax.ItemStmt:
		return nil, typ.Errorf(typ.CodeInBlockItemNotSupported, s.Pos(), "%s: items inside function bodies are not supported", syntax.Describe(s.Item))

	case *syntax.ExprStmt:
		branches, err := t.Expr(s.X, scope)
		if err != nil {
			return nil, err
		}
		return scopesOf(branches), nil

	case *syntax.LetStmt:
		if s.Init == nil {
			return nil, typ.NewError(typ.CodeMissingInitializer, s.Pos(), "local binding must have an initializer")
		}
		name, annot, err := bindingOf(s.Pat)
		if err != nil {
			return nil, err
		}
		bounds, err := boundsOfType(annot)
		if err != nil {
			return nil, err
		}
		branches, err := t.Expr(s.Init, scope)
		if err != nil {
			return nil, err
		}
		out := make([]*Scope, len(branches))
		for i, b := range branches {
			child := b.Scope.Child()
			child.AddConstraints(b.Type, bounds)
			child.BindSubstitution(name, b.Type)
			out[i] = child
		}
		return out, nil
	}
	return nil, typ.NewError(typ.CodeUnsupportedExpressionForm, stmt.Pos(), "unsupported statement")
}

// bindingOf accepts "name" and "name: Type" binding patterns.
func bindingOf(pat syntax.Pat) (string, syntax.Type, error) {
	var annot syntax.Type
	if tp, ok := pat.(*syntax.TypedPat); ok {
		pat, annot = tp.Pat, tp.Type
	}
	ident, ok := pat.(*syntax.IdentPat)
	if !ok || ident.Sub != nil || ident.Ref {
		return "", nil, typ.NewError(typ.CodeInvalidBindingPattern, pat.Pos(), "binding must be a plain identifier, optionally with a type annotation")
	}
	return ident.Name, annot, nil
}

func scopesOf(branches []Branch) []*Scope {
	out := make([]*Scope, len(branches))
	for i, b := range branches {
		out[i] = b.Scope
	}
	return out
}

func describeExpr(x syntax.Expr) string {
	switch x := x.(type) {
	case *syntax.LitExpr:
		return "literal " + x.Value
	case *syntax.MethodCallExpr:
		return "method call ." + x.Name + "()"
	case *syntax.FieldExpr:
		return "field access ." + x.Name
	case *syntax.UnaryExpr:
		return "unary " + x.Op
	case *syntax.ReturnExpr:
		return "return"
	}
	return "expression"
}
