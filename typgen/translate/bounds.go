package translate

import (
	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
)

// boundsOfType derives the capability bounds a declared type contributes.
// A path type is its own sole bound, a bound union contributes each of its
// bounds, and the placeholder _ (or a missing type) contributes none.
func boundsOfType(ty syntax.Type) (ir.BoundSet, error) {
	switch ty := ty.(type) {
	case nil:
		return ir.BoundSet{}, nil
	case *syntax.InferType:
		return ir.BoundSet{}, nil
	case *syntax.PathType:
		b, err := boundOfPath(ty.Path)
		if err != nil {
			return ir.BoundSet{}, err
		}
		return ir.NewBoundSet(b), nil
	case *syntax.TraitObjectType:
		return boundsOf(ty.Bounds)
	}
	return ir.BoundSet{}, typ.Errorf(typ.CodeUnsupportedTypeForm, ty.Pos(), "unsupported type form: %s", describeType(ty))
}

func boundsOf(bounds []*syntax.TypeBound) (ir.BoundSet, error) {
	var set ir.BoundSet
	for _, tb := range bounds {
		if tb.Lifetime != "" {
			return ir.BoundSet{}, typ.NewError(typ.CodeLifetimeNotAllowed, tb.Pos(), "lifetime is not allowed")
		}
		b, err := boundOfPath(tb.Path)
		if err != nil {
			return ir.BoundSet{}, err
		}
		set = set.Insert(b)
	}
	return set, nil
}

func boundOfPath(p *syntax.Path) (ir.Bound, error) {
	path := ir.Path{Global: p.Global}
	for i, seg := range p.Segments {
		if len(seg.Args) > 0 && i != len(p.Segments)-1 {
			return ir.Bound{}, typ.Errorf(typ.CodeUnsupportedTypeForm, p.Pos(), "generic arguments are only allowed on the last segment of %s", p)
		}
		path.Segments = append(path.Segments, seg.Name)
	}
	args, err := typeExprs(p.Last().Args)
	if err != nil {
		return ir.Bound{}, err
	}
	return ir.Bound{Path: path, Args: args}, nil
}

// typeExprOf converts a type used as a generic argument.
func typeExprOf(ty syntax.Type) (ir.TypeExpr, error) {
	switch ty := ty.(type) {
	case *syntax.PathType:
		b, err := boundOfPath(ty.Path)
		if err != nil {
			return nil, err
		}
		return &ir.App{Path: b.Path, Args: b.Args}, nil
	case *syntax.TupleType:
		elems, err := typeExprs(ty.Elems)
		if err != nil {
			return nil, err
		}
		return ir.TupleOf(elems...), nil
	case *syntax.TraitObjectType:
		bounds, err := boundsOf(ty.Bounds)
		if err != nil {
			return nil, err
		}
		return &ir.Dyn{Bounds: bounds}, nil
	}
	return nil, typ.Errorf(typ.CodeUnsupportedTypeForm, ty.Pos(), "unsupported type form in generic arguments: %s", describeType(ty))
}

func typeExprs(tys []syntax.Type) ([]ir.TypeExpr, error) {
	if len(tys) == 0 {
		return nil, nil
	}
	out := make([]ir.TypeExpr, len(tys))
	for i, ty := range tys {
		t, err := typeExprOf(ty)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func describeType(ty syntax.Type) string {
	switch ty.(type) {
	case *syntax.RefType:
		return "reference"
	case *syntax.TupleType:
		return "tuple"
	case *syntax.ArrayType:
		return "array or slice"
	case *syntax.InferType:
		return "placeholder _"
	case *syntax.TraitObjectType:
		return "trait object"
	}
	return "type"
}
