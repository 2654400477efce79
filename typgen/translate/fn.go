package translate

import (
	"go/token"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
)

// Unit is the translation of one function or method.
type Unit struct {
	// Name is the function name.
	Name string

	// Vis is the function's visibility.
	Vis string

	Pos token.Position

	// Receiver is the receiver trait of a method, nil for free functions.
	Receiver *ir.Path

	// Generics are the generic parameter names, in declaration order.
	Generics []string

	// Args are the argument type variables. A method's receiver comes first.
	Args []ir.TypeExpr

	// InitialConstraints are the constraints derived from the signature.
	InitialConstraints []ir.Predicate

	// OutputBounds are the bounds derived from the return type.
	OutputBounds ir.BoundSet

	// Branches are the execution paths through the body.
	Branches []Branch
}

// Func translates a function. receiver is the receiver trait when fn is a
// method of an inherent impl, and nil for free functions. implGenerics are
// the generic parameters of the enclosing impl block, if any.
func (t *Translator) Func(fn *syntax.FnItem, receiver *ir.Path, implGenerics []*syntax.GenericParam) (*Unit, error) {
	sig := fn.Sig
	scope := NewScope()
	unit := &Unit{Name: sig.Name, Vis: fn.Vis, Pos: fn.Pos(), Receiver: receiver}

	generics := append(append([]*syntax.GenericParam(nil), implGenerics...), sig.Generics.Params...)
	for _, gp := range generics {
		switch gp.Kind {
		case syntax.GenericLifetime:
			return nil, typ.NewError(typ.CodeLifetimeNotAllowed, gp.Pos(), "lifetime is not allowed")
		case syntax.GenericConst:
			return nil, typ.NewError(typ.CodeConstGenericNotAllowed, gp.Pos(), "const generics is not allowed")
		}
	}
	for _, gp := range generics {
		if err := scope.DeclareQuantifier(gp.Name, gp.Pos()); err != nil {
			return nil, err
		}
		unit.Generics = append(unit.Generics, gp.Name)
	}
	for _, gp := range generics {
		bounds, err := boundsOf(gp.Bounds)
		if err != nil {
			return nil, err
		}
		scope.AddConstraints(ir.V(gp.Name), bounds)
	}
	if err := t.wherePredicates(sig.Generics.Where, scope); err != nil {
		return nil, err
	}

	for i, p := range sig.Params {
		arg, err := t.param(i, p, receiver, scope)
		if err != nil {
			return nil, err
		}
		unit.Args = append(unit.Args, arg)
	}
	if receiver != nil && (len(sig.Params) == 0 || sig.Params[0].Receiver == nil) {
		return nil, typ.NewError(typ.CodeInvalidReceiverPosition, sig.Pos(), `methods in impl block must place "self" at the first argument`)
	}
	scope.Track(unit.Args...)

	out, err := boundsOfType(sig.Output)
	if err != nil {
		return nil, err
	}
	unit.OutputBounds = out
	unit.InitialConstraints = scope.Predicates()

	branches, err := t.Block(fn.Body, scope)
	if err != nil {
		return nil, err
	}
	unit.Branches = branches
	return unit, nil
}

// wherePredicates merges "T: Bounds" clauses on generic parameters into the scope.
func (t *Translator) wherePredicates(preds []*syntax.WherePredicate, scope *Scope) error {
	for _, wp := range preds {
		if wp.Type == nil {
			return typ.NewError(typ.CodeLifetimeNotAllowed, wp.Pos(), "lifetime is not allowed")
		}
		pt, ok := wp.Type.(*syntax.PathType)
		name, isIdent := "", false
		if ok {
			name, isIdent = pt.Path.Ident()
		}
		if !isIdent || !scope.IsQuantifier(name) {
			return typ.NewError(typ.CodeUnsupportedTypeForm, wp.Pos(), "where clauses may only constrain generic parameters")
		}
		bounds, err := boundsOf(wp.Bounds)
		if err != nil {
			return err
		}
		scope.AddConstraints(ir.V(name), bounds)
	}
	return nil
}

// param declares the i-th parameter and returns its type variable.
func (t *Translator) param(i int, p *syntax.Param, receiver *ir.Path, scope *Scope) (ir.TypeExpr, error) {
	if p.Receiver != nil {
		if receiver == nil {
			return nil, typ.NewError(typ.CodeInvalidReceiverPosition, p.Pos(), `"self" is only allowed in methods of an impl block`)
		}
		if i != 0 {
			return nil, typ.NewError(typ.CodeInvalidReceiverPosition, p.Pos(), `"self" must be the first argument`)
		}
		if p.Receiver.Ref {
			return nil, typ.NewError(typ.CodeInvalidReceiverPosition, p.Pos(), `"self" must be taken by value, not by reference`)
		}
		if p.Receiver.Type != nil && !isSelfType(p.Receiver.Type) {
			return nil, typ.NewError(typ.CodeInvalidReceiverPosition, p.Receiver.Type.Pos(), `"self" must have type Self`)
		}

		name := t.opts.IdentPrefix + "Self"
		if err := scope.DeclareQuantifier(name, p.Pos()); err != nil {
			return nil, err
		}
		v := ir.V(name)
		scope.AddConstraints(v, ir.NewBoundSet(ir.Bound{Path: *receiver}))
		scope.BindSubstitution("self", v)
		return v, nil
	}

	name, annot, err := bindingOf(p.Pat)
	if err != nil {
		return nil, err
	}
	if annot != nil {
		return nil, typ.NewError(typ.CodeInvalidBindingPattern, p.Pat.Pos(), "argument pattern must be a plain identifier")
	}
	if err := scope.DeclareQuantifier(name, p.Pat.Pos()); err != nil {
		return nil, err
	}
	bounds, err := boundsOfType(p.Type)
	if err != nil {
		return nil, err
	}
	v := ir.V(name)
	scope.AddConstraints(v, bounds)
	return v, nil
}

func isSelfType(ty syntax.Type) bool {
	pt, ok := ty.(*syntax.PathType)
	if !ok {
		return false
	}
	name, ok := pt.Path.Ident()
	return ok && name == "Self"
}
